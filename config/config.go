package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"
)

type SystemConfig struct {
	DataDirectory string `toml:"data_directory"`
}

type LLMConfig struct {
	APIURL             string  `toml:"api_url"`
	Model              string  `toml:"model"`
	Style              string  `toml:"style,omitempty"`
	Temperature        float64 `toml:"temperature"`
	MaxRetries         int     `toml:"max_retries"`
	TimeoutSeconds     int     `toml:"timeout_seconds"`
	InsecureSkipVerify bool    `toml:"insecure_skip_verify"`
	StructuredReplies  bool    `toml:"structured_replies"`
}

type HistoryConfig struct {
	MaxTurns    int    `toml:"max_turns"`
	Memories    int    `toml:"memories"`
	ArchivePath string `toml:"archive_path,omitempty"`
}

type PersonaConfig struct {
	Prompt string `toml:"prompt"`
}

type UserConfig struct {
	LLM     LLMConfig     `toml:"llm"`
	History HistoryConfig `toml:"history"`
	Persona PersonaConfig `toml:"persona"`
}

// Config is the resolved runtime configuration. It is built once at startup
// and never reloaded.
type Config struct {
	DataDirectory string

	APIKey             string
	APIURL             string
	Model              string
	Style              string
	Temperature        float64
	MaxRetries         int
	Timeout            time.Duration
	InsecureSkipVerify bool
	StructuredReplies  bool

	MaxTurns    int
	Memories    int
	ArchivePath string

	Persona string
}

var Debug = false
var DebugLog *log.Logger

func (c *Config) DataDir() string {
	return ExpandPath(c.DataDirectory)
}

// ArchiveDSN returns the SQLite DSN for the archive store. Empty means the
// archive stays in process memory.
func (c *Config) ArchiveDSN() string {
	if c.ArchivePath == "" {
		return ""
	}
	return ExpandPath(c.ArchivePath)
}

func (c *Config) applyUserConfig(u *UserConfig) {
	c.APIURL = u.LLM.APIURL
	c.Model = u.LLM.Model
	c.Style = u.LLM.Style
	c.Temperature = u.LLM.Temperature
	c.MaxRetries = u.LLM.MaxRetries
	c.InsecureSkipVerify = u.LLM.InsecureSkipVerify
	c.StructuredReplies = u.LLM.StructuredReplies
	if u.LLM.TimeoutSeconds > 0 {
		c.Timeout = time.Duration(u.LLM.TimeoutSeconds) * time.Second
	}
	c.MaxTurns = u.History.MaxTurns
	c.Memories = u.History.Memories
	c.ArchivePath = u.History.ArchivePath
	if u.Persona.Prompt != "" {
		c.Persona = u.Persona.Prompt
	}
}

func (c *Config) applyEnvOverrides() {
	if url := os.Getenv("COMPANION_API_URL"); url != "" {
		c.APIURL = url
	}
	if model := os.Getenv("COMPANION_MODEL"); model != "" {
		c.Model = model
	}
	c.APIKey = LookupAPIKey()
}

// normalize fills zero values left by a partial config.toml.
func (c *Config) normalize() {
	defaults := DefaultUserConfig()
	if c.APIURL == "" {
		c.APIURL = defaults.LLM.APIURL
	}
	if c.Model == "" {
		c.Model = defaults.LLM.Model
	}
	if c.MaxRetries < 1 {
		c.MaxRetries = defaults.LLM.MaxRetries
	}
	if c.Timeout <= 0 {
		c.Timeout = time.Duration(defaults.LLM.TimeoutSeconds) * time.Second
	}
	if c.MaxTurns < 1 {
		c.MaxTurns = defaults.History.MaxTurns
	}
	if c.Memories < 0 {
		c.Memories = 0
	}
	if c.Persona == "" {
		c.Persona = defaults.Persona.Prompt
	}
}

// LookupAPIKey returns the first non-empty key from COMPANION_API_KEY,
// DASHSCOPE_API_KEY and OPENAI_API_KEY.
func LookupAPIKey() string {
	for _, name := range []string{"COMPANION_API_KEY", "DASHSCOPE_API_KEY", "OPENAI_API_KEY"} {
		if v := os.Getenv(name); v != "" {
			return v
		}
	}
	return ""
}

func CheckDebug() bool {
	debug := os.Getenv("COMPANION_DEBUG")
	return debug == "true" || debug == "1"
}

func InitDebugLog(dataDir string) {
	if !CheckDebug() {
		return
	}

	Debug = true
	logPath := filepath.Join(dataDir, "debug.log")

	// 0600: the log carries raw model responses
	f, err := os.OpenFile(logPath, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0600)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Could not open debug log at %s: %v\n", logPath, err)
		return
	}

	DebugLog = log.New(f, "", log.Ldate|log.Ltime|log.Lmicroseconds|log.Lshortfile)
	DebugLog.Printf("=== Debug logging started (COMPANION_DEBUG=%s) ===", os.Getenv("COMPANION_DEBUG"))
	DebugLog.Printf("Log path: %s", logPath)
}

// Warnf reports conditions that must not stay silent. It goes to the debug
// log when enabled and to stderr otherwise.
func Warnf(format string, args ...any) {
	if Debug && DebugLog != nil {
		DebugLog.Printf("[Warning] "+format, args...)
		return
	}
	fmt.Fprintf(os.Stderr, "Warning: "+format+"\n", args...)
}

func Load() (*Config, error) {
	defaults := DefaultUserConfig()
	cfg := &Config{
		DataDirectory: GetDefaultDataDir(),
	}
	cfg.applyUserConfig(defaults)

	if dataDir := os.Getenv("COMPANION_DATA_DIR"); dataDir != "" {
		cfg.DataDirectory = dataDir
	} else {
		systemCfg, err := LoadSystemConfig()
		if err != nil {
			return nil, fmt.Errorf("failed to load system config: %w", err)
		}
		if systemCfg.DataDirectory != "" {
			cfg.DataDirectory = systemCfg.DataDirectory
		}
	}

	dataDir := cfg.DataDir()
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	if err := EnsureDataDirPermissions(dataDir); err != nil {
		return nil, fmt.Errorf("failed to set data directory permissions: %w", err)
	}

	userCfg, err := LoadUserConfig(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load user config: %w", err)
	}
	cfg.applyUserConfig(userCfg)
	cfg.applyEnvOverrides()
	cfg.normalize()

	return cfg, nil
}
