package provider

import (
	"errors"
	"fmt"
)

// ErrMalformedResponse is returned by Adapter.ParseResponse when the body does
// not carry the expected fields. The Client treats it as retryable.
var ErrMalformedResponse = errors.New("malformed response")

// Adapter translates between the uniform request shape and one vendor's wire
// payload. Implementations are pure and hold no state.
type Adapter interface {
	// BuildRequest returns the JSON request body. Temperature is passed
	// through unchecked.
	BuildRequest(message string, temperature float64, model string) ([]byte, error)

	// ParseResponse extracts the generated text, trimmed of surrounding
	// whitespace. Missing fields yield an error wrapping ErrMalformedResponse.
	ParseResponse(body []byte) (string, error)
}

// AdapterFor returns the adapter of a style. Unknown styles get the
// OpenAI-compatible adapter.
func AdapterFor(style Style) Adapter {
	switch style {
	case StyleDashScope:
		return DashScopeAdapter{}
	case StyleOllama:
		return OllamaAdapter{}
	default:
		return OpenAIAdapter{}
	}
}

// chatMessage is the {role, content} pair shared by the openai and dashscope
// payloads.
type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

func userMessages(message string) []chatMessage {
	return []chatMessage{{Role: "user", Content: message}}
}

func malformed(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrMalformedResponse, fmt.Sprintf(format, args...))
}
