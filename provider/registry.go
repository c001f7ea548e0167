package provider

import (
	"sort"
	"strings"
)

// modelStyles is the fixed model → style table. It is never written after
// package initialization, so lookups are safe from any goroutine.
var modelStyles = map[string]Style{
	// OpenAI-compatible
	"deepseek-chat":     StyleOpenAI,
	"deepseek-reasoner": StyleOpenAI,
	"gpt-4o":            StyleOpenAI,
	"gpt-4o-mini":       StyleOpenAI,
	"moonshot-v1-8k":    StyleOpenAI,

	// DashScope native
	"qwen-plus":  StyleDashScope,
	"qwen-turbo": StyleDashScope,
	"qwen-max":   StyleDashScope,
	"qwen-long":  StyleDashScope,

	// Ollama native
	"llama3.1:latest": StyleOllama,
	"qwen2.5:7b":      StyleOllama,
}

// StyleForModel returns the wire style registered for model. Unknown models
// resolve to StyleOpenAI; there is no failure path.
func StyleForModel(model string) Style {
	if style, ok := modelStyles[model]; ok {
		return style
	}
	return StyleOpenAI
}

// ParseStyle maps a user-facing style name ("openai", "DashScope", ...) to a
// Style. Returns false for empty or unknown names.
func ParseStyle(name string) (Style, bool) {
	switch Style(strings.ToLower(strings.TrimSpace(name))) {
	case StyleOpenAI:
		return StyleOpenAI, true
	case StyleDashScope:
		return StyleDashScope, true
	case StyleOllama:
		return StyleOllama, true
	default:
		return "", false
	}
}

// ModelsForStyle lists the registered model ids of one style, sorted.
func ModelsForStyle(style Style) []string {
	var models []string
	for model, s := range modelStyles {
		if s == style {
			models = append(models, model)
		}
	}
	sort.Strings(models)
	return models
}
