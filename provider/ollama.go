package provider

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ollama/ollama/api"
)

// OllamaAdapter speaks the native Ollama /api/chat format with streaming
// disabled, so the whole reply arrives in one JSON object:
//
//	request:  api.ChatRequest{Model, Messages, Stream: false, Options: {temperature}}
//	response: api.ChatResponse.Message.Content
type OllamaAdapter struct{}

type ollamaResponse struct {
	Message *api.Message `json:"message"`
}

func (OllamaAdapter) BuildRequest(message string, temperature float64, model string) ([]byte, error) {
	stream := false
	req := api.ChatRequest{
		Model: model,
		Messages: []api.Message{
			{Role: "user", Content: message},
		},
		Stream: &stream,
		Options: map[string]any{
			"temperature": temperature,
		},
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal ollama request: %w", err)
	}
	return payload, nil
}

func (OllamaAdapter) ParseResponse(body []byte) (string, error) {
	var parsed ollamaResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", malformed("ollama body is not JSON: %v", err)
	}

	if parsed.Message == nil {
		return "", malformed("ollama response has no message")
	}

	return strings.TrimSpace(parsed.Message.Content), nil
}
