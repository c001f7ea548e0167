package provider

import (
	"encoding/json"
	"fmt"
	"strings"
)

// OpenAIAdapter speaks the OpenAI chat completions format:
//
//	request:  {"model", "messages": [{"role": "user", "content"}], "temperature"}
//	response: choices[0].message.content
type OpenAIAdapter struct{}

type openAIRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type openAIResponse struct {
	Choices []struct {
		Message *struct {
			Content *string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func (OpenAIAdapter) BuildRequest(message string, temperature float64, model string) ([]byte, error) {
	payload, err := json.Marshal(openAIRequest{
		Model:       model,
		Messages:    userMessages(message),
		Temperature: temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal openai request: %w", err)
	}
	return payload, nil
}

func (OpenAIAdapter) ParseResponse(body []byte) (string, error) {
	var parsed openAIResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", malformed("openai body is not JSON: %v", err)
	}

	if len(parsed.Choices) == 0 {
		return "", malformed("openai response has no choices")
	}

	msg := parsed.Choices[0].Message
	if msg == nil || msg.Content == nil {
		return "", malformed("openai response has no choices[0].message.content")
	}

	return strings.TrimSpace(*msg.Content), nil
}
