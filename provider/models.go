package provider

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/ollama/ollama/api"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"companion/config"
)

// ModelInfo describes one model an endpoint offers.
type ModelInfo struct {
	Name  string
	Size  int64 // bytes, only reported by Ollama
	Style Style
}

// ListModels asks the configured endpoint which models it serves.
//
//   - ollama: GET /api/tags through the Ollama API client
//   - openai: GET /models through the OpenAI SDK
//   - dashscope: the native endpoint has no listing, so the registry's
//     DashScope models are returned
func ListModels(ctx context.Context, cfg Config) ([]ModelInfo, error) {
	style := cfg.ResolveStyle()
	hc := newHTTPClient(cfg.timeout(), cfg.InsecureSkipVerify)

	switch style {
	case StyleOllama:
		base, err := url.Parse(BaseURL(cfg.APIURL, style))
		if err != nil {
			return nil, fmt.Errorf("invalid Ollama URL: %w", err)
		}

		resp, err := api.NewClient(base, hc).List(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list Ollama models: %w", err)
		}

		models := make([]ModelInfo, len(resp.Models))
		for i, m := range resp.Models {
			models[i] = ModelInfo{Name: m.Name, Size: m.Size, Style: style}
		}
		return models, nil

	case StyleDashScope:
		names := ModelsForStyle(StyleDashScope)
		models := make([]ModelInfo, len(names))
		for i, name := range names {
			models[i] = ModelInfo{Name: name, Style: style}
		}
		return models, nil

	default:
		client := openai.NewClient(
			option.WithBaseURL(BaseURL(cfg.APIURL, style)),
			option.WithAPIKey(cfg.APIKey),
			option.WithHTTPClient(hc),
			option.WithMaxRetries(0),
		)

		page, err := client.Models.List(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list OpenAI-compatible models: %w", err)
		}

		models := make([]ModelInfo, 0, len(page.Data))
		for _, m := range page.Data {
			models = append(models, ModelInfo{Name: m.ID, Style: style})
		}

		if config.Debug {
			config.DebugLog.Printf("[Provider] Listed %d models from %s", len(models), cfg.APIURL)
		}
		return models, nil
	}
}

// Ping checks that the endpoint answers a model listing within 5 seconds.
func Ping(ctx context.Context, cfg Config) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if _, err := ListModels(ctx, cfg); err != nil {
		return fmt.Errorf("ping failed: %w", err)
	}
	return nil
}

// BaseURL derives the API root from a chat endpoint URL, e.g.
// https://api.deepseek.com/v1/chat/completions → https://api.deepseek.com/v1
// and http://localhost:11434/api/chat → http://localhost:11434.
func BaseURL(chatURL string, style Style) string {
	base := strings.TrimRight(chatURL, "/")
	switch style {
	case StyleOllama:
		base = strings.TrimSuffix(base, "/api/chat")
	default:
		base = strings.TrimSuffix(base, "/chat/completions")
	}
	return base
}
