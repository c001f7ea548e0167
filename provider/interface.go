// Package provider talks to remote LLM endpoints.
//
// Vendors disagree on the chat wire format. The package hides that behind an
// Adapter per model style, so the rest of the application only deals with
// plain text in and plain text out.
//
// # Model Styles
//
//   - StyleOpenAI: OpenAI-compatible chat completions (DeepSeek, Moonshot,
//     OpenAI, DashScope compatible-mode, vLLM...)
//   - StyleDashScope: Alibaba DashScope native text-generation endpoint
//   - StyleOllama: native Ollama /api/chat endpoint
//
// The style is resolved from the model identifier through a fixed registry
// (see StyleForModel). Unknown models are treated as OpenAI-compatible.
//
// # Architecture
//
//   - Adapter builds the request payload and extracts the reply text
//   - Client performs the HTTP round trip with bounded retry
//   - ListModels / Ping query an endpoint for its available models
//
// # Usage
//
//	client := provider.NewClient(provider.Config{
//	    APIKey: os.Getenv("DASHSCOPE_API_KEY"),
//	    APIURL: "https://dashscope.aliyuncs.com/api/v1/services/aigc/text-generation/generation",
//	    Model:  "qwen-plus",
//	})
//	reply, err := client.Generate(ctx, "Hello!", provider.WithTemperature(0.7))
package provider

import "time"

// Style identifies the wire-format family of a model.
type Style string

const (
	StyleOpenAI    Style = "openai"
	StyleDashScope Style = "dashscope"
	StyleOllama    Style = "ollama"
)

const (
	defaultTimeout     = 120 * time.Second
	defaultRetryDelay  = 1 * time.Second
	defaultTemperature = 0.7
	defaultMaxRetries  = 3
)

// Config holds everything a Client needs. It is supplied once at
// construction and never reloaded.
type Config struct {
	APIKey string
	APIURL string
	Model  string

	// Style overrides the registry lookup when non-empty.
	Style Style

	// Timeout bounds a single attempt. Zero means 120s.
	Timeout time.Duration

	// InsecureSkipVerify disables TLS certificate verification. Off by default.
	InsecureSkipVerify bool
}

// ResolveStyle returns the explicit style when it is a known one, and the
// registry style for the model otherwise.
func (c Config) ResolveStyle() Style {
	if style, ok := ParseStyle(string(c.Style)); ok {
		return style
	}
	return StyleForModel(c.Model)
}

func (c Config) timeout() time.Duration {
	if c.Timeout <= 0 {
		return defaultTimeout
	}
	return c.Timeout
}
