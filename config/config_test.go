package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func isolateEnv(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)
	t.Setenv("COMPANION_DATA_DIR", "")
	t.Setenv("COMPANION_API_KEY", "")
	t.Setenv("DASHSCOPE_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("COMPANION_API_URL", "")
	t.Setenv("COMPANION_MODEL", "")
	return home
}

func TestLoadCreatesDefaults(t *testing.T) {
	isolateEnv(t)
	dataDir := filepath.Join(t.TempDir(), "data")
	t.Setenv("COMPANION_DATA_DIR", dataDir)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Model != "qwen-plus" {
		t.Errorf("Model: got %q, want %q", cfg.Model, "qwen-plus")
	}
	if cfg.MaxTurns != 20 {
		t.Errorf("MaxTurns: got %d, want 20", cfg.MaxTurns)
	}
	if cfg.MaxRetries != 3 {
		t.Errorf("MaxRetries: got %d, want 3", cfg.MaxRetries)
	}
	if cfg.Timeout != 120*time.Second {
		t.Errorf("Timeout: got %v, want 120s", cfg.Timeout)
	}
	if cfg.Temperature != 0.7 {
		t.Errorf("Temperature: got %v, want 0.7", cfg.Temperature)
	}
	if cfg.InsecureSkipVerify {
		t.Error("InsecureSkipVerify must default to false")
	}
	if cfg.Persona == "" {
		t.Error("expected default persona")
	}
	if !FileExists(filepath.Join(dataDir, "config.toml")) {
		t.Error("expected config.toml template to be written")
	}

	info, err := os.Stat(dataDir)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0700 {
		t.Errorf("data dir perms: got %o, want 700", info.Mode().Perm())
	}
}

func TestLoadUserConfigOverridesDefaults(t *testing.T) {
	isolateEnv(t)
	dataDir := t.TempDir()
	t.Setenv("COMPANION_DATA_DIR", dataDir)

	content := `
[llm]
api_url = "https://api.deepseek.com/v1/chat/completions"
model = "deepseek-chat"
temperature = 0.0
insecure_skip_verify = true

[history]
max_turns = 8
`
	if err := os.WriteFile(filepath.Join(dataDir, "config.toml"), []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Model != "deepseek-chat" {
		t.Errorf("Model: got %q", cfg.Model)
	}
	if cfg.Temperature != 0 {
		t.Errorf("explicit zero temperature must survive, got %v", cfg.Temperature)
	}
	if !cfg.InsecureSkipVerify {
		t.Error("expected insecure_skip_verify = true")
	}
	if cfg.MaxTurns != 8 {
		t.Errorf("MaxTurns: got %d, want 8", cfg.MaxTurns)
	}
	// Keys absent from the file keep their defaults
	if cfg.MaxRetries != 3 {
		t.Errorf("MaxRetries: got %d, want 3", cfg.MaxRetries)
	}
	if cfg.Memories != 3 {
		t.Errorf("Memories: got %d, want 3", cfg.Memories)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	isolateEnv(t)
	t.Setenv("COMPANION_DATA_DIR", t.TempDir())
	t.Setenv("COMPANION_MODEL", "gpt-4o-mini")
	t.Setenv("COMPANION_API_URL", "http://localhost:9999/v1/chat/completions")
	t.Setenv("DASHSCOPE_API_KEY", "ds-key")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Model != "gpt-4o-mini" {
		t.Errorf("Model: got %q", cfg.Model)
	}
	if cfg.APIURL != "http://localhost:9999/v1/chat/completions" {
		t.Errorf("APIURL: got %q", cfg.APIURL)
	}
	if cfg.APIKey != "ds-key" {
		t.Errorf("APIKey: got %q", cfg.APIKey)
	}
}

func TestLookupAPIKeyPrecedence(t *testing.T) {
	tests := []struct {
		name      string
		companion string
		dashscope string
		openai    string
		want      string
	}{
		{"none set", "", "", "", ""},
		{"openai only", "", "", "sk-openai", "sk-openai"},
		{"dashscope beats openai", "", "sk-ds", "sk-openai", "sk-ds"},
		{"companion beats all", "sk-c", "sk-ds", "sk-openai", "sk-c"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("COMPANION_API_KEY", tt.companion)
			t.Setenv("DASHSCOPE_API_KEY", tt.dashscope)
			t.Setenv("OPENAI_API_KEY", tt.openai)

			if got := LookupAPIKey(); got != tt.want {
				t.Errorf("LookupAPIKey() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExpandPath(t *testing.T) {
	home := isolateEnv(t)

	if got := ExpandPath("~/x/y"); got != filepath.Join(home, "x", "y") {
		t.Errorf("ExpandPath(~/x/y) = %q", got)
	}
	if got := ExpandPath(""); got != "" {
		t.Errorf("ExpandPath(\"\") = %q", got)
	}
}

func TestUserConfigTemplateParses(t *testing.T) {
	isolateEnv(t)
	dataDir := t.TempDir()

	if err := CreateDefaultUserConfig(dataDir); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadUserConfig(dataDir)
	if err != nil {
		t.Fatalf("template does not parse: %v", err)
	}
	if cfg.LLM.Model != "qwen-plus" {
		t.Errorf("template model: got %q", cfg.LLM.Model)
	}
	if !strings.Contains(cfg.Persona.Prompt, "companion") {
		t.Errorf("template persona not decoded: %q", cfg.Persona.Prompt)
	}
}

func TestSaveUserConfigRoundTrip(t *testing.T) {
	dataDir := t.TempDir()
	in := DefaultUserConfig()
	in.LLM.Model = "qwen-max"
	in.History.MaxTurns = 6

	if err := SaveUserConfig(in, dataDir); err != nil {
		t.Fatal(err)
	}

	out, err := LoadUserConfig(dataDir)
	if err != nil {
		t.Fatal(err)
	}
	if out.LLM.Model != "qwen-max" || out.History.MaxTurns != 6 {
		t.Errorf("round trip mismatch: %+v", out)
	}
}
