package provider

import "testing"

func TestStyleForModel(t *testing.T) {
	tests := []struct {
		model    string
		expected Style
	}{
		{"deepseek-chat", StyleOpenAI},
		{"gpt-4o-mini", StyleOpenAI},
		{"qwen-plus", StyleDashScope},
		{"qwen-max", StyleDashScope},
		{"llama3.1:latest", StyleOllama},
		{"some-new-model", StyleOpenAI},
		{"", StyleOpenAI},
		{"QWEN-PLUS", StyleOpenAI}, // lookups are exact
	}

	for _, tt := range tests {
		t.Run(tt.model, func(t *testing.T) {
			if got := StyleForModel(tt.model); got != tt.expected {
				t.Errorf("StyleForModel(%q) = %q, want %q", tt.model, got, tt.expected)
			}
		})
	}
}

func TestParseStyle(t *testing.T) {
	tests := []struct {
		input    string
		expected Style
		ok       bool
	}{
		{"openai", StyleOpenAI, true},
		{"DashScope", StyleDashScope, true},
		{" ollama ", StyleOllama, true},
		{"", "", false},
		{"anthropic", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := ParseStyle(tt.input)
			if got != tt.expected || ok != tt.ok {
				t.Errorf("ParseStyle(%q) = (%q, %v), want (%q, %v)", tt.input, got, ok, tt.expected, tt.ok)
			}
		})
	}
}

func TestConfigResolveStyle(t *testing.T) {
	tests := []struct {
		name     string
		cfg      Config
		expected Style
	}{
		{"registry", Config{Model: "qwen-plus"}, StyleDashScope},
		{"explicit override", Config{Model: "qwen-plus", Style: StyleOpenAI}, StyleOpenAI},
		{"unknown override falls back to registry", Config{Model: "qwen-plus", Style: "bogus"}, StyleDashScope},
		{"unknown model", Config{Model: "mystery"}, StyleOpenAI},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cfg.ResolveStyle(); got != tt.expected {
				t.Errorf("ResolveStyle() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestModelsForStyle(t *testing.T) {
	got := ModelsForStyle(StyleDashScope)
	expected := []string{"qwen-long", "qwen-max", "qwen-plus", "qwen-turbo"}

	if len(got) != len(expected) {
		t.Fatalf("got %v, want %v", got, expected)
	}
	for i := range expected {
		if got[i] != expected[i] {
			t.Errorf("index %d: got %q, want %q", i, got[i], expected[i])
		}
	}
}
