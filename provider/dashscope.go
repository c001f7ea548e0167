package provider

import (
	"encoding/json"
	"fmt"
	"strings"
)

// DashScopeAdapter speaks the DashScope native text-generation format:
//
//	request:  {"model", "input": {"messages": [...]}, "parameters": {"temperature"}}
//	response: output.text
type DashScopeAdapter struct{}

type dashScopeRequest struct {
	Model      string              `json:"model"`
	Input      dashScopeInput      `json:"input"`
	Parameters dashScopeParameters `json:"parameters"`
}

type dashScopeInput struct {
	Messages []chatMessage `json:"messages"`
}

type dashScopeParameters struct {
	Temperature float64 `json:"temperature"`
}

type dashScopeResponse struct {
	Output *struct {
		Text *string `json:"text"`
	} `json:"output"`
}

func (DashScopeAdapter) BuildRequest(message string, temperature float64, model string) ([]byte, error) {
	payload, err := json.Marshal(dashScopeRequest{
		Model:      model,
		Input:      dashScopeInput{Messages: userMessages(message)},
		Parameters: dashScopeParameters{Temperature: temperature},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal dashscope request: %w", err)
	}
	return payload, nil
}

func (DashScopeAdapter) ParseResponse(body []byte) (string, error) {
	var parsed dashScopeResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", malformed("dashscope body is not JSON: %v", err)
	}

	if parsed.Output == nil || parsed.Output.Text == nil {
		return "", malformed("dashscope response has no output.text")
	}

	return strings.TrimSpace(*parsed.Output.Text), nil
}
