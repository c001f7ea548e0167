package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"companion/chat"
	"companion/config"
	"companion/history"
	"companion/provider"
	"companion/storage"
	"companion/ui"
)

const Version = "v0.1.0"

func usage() {
	fmt.Fprintf(os.Stderr, `companion %s

Usage:
  companion [chat]       Start the terminal chat
  companion ask <text>   Send one message on the default session and print the reply
  companion models       List models offered by the configured endpoint
  companion ping         Check that the configured endpoint answers
  companion init         Write default config files
  companion version      Print the version

Environment:
  COMPANION_API_KEY      API key (falls back to DASHSCOPE_API_KEY, OPENAI_API_KEY)
  COMPANION_API_URL      Override the endpoint URL
  COMPANION_MODEL        Override the model
  COMPANION_DATA_DIR     Override the data directory
  COMPANION_DEBUG        Set to 1 to write debug.log in the data directory
`, Version)
}

func main() {
	cmd := "chat"
	args := os.Args[1:]
	if len(args) > 0 {
		cmd, args = args[0], args[1:]
	}

	var err error
	switch cmd {
	case "chat":
		err = runChat()
	case "ask":
		err = runAsk(args)
	case "models":
		err = runModels()
	case "ping":
		err = runPing()
	case "init":
		err = runInit()
	case "version", "--version", "-v":
		fmt.Println(Version)
	case "help", "--help", "-h":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		usage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func providerConfig(cfg *config.Config) provider.Config {
	return provider.Config{
		APIKey:             cfg.APIKey,
		APIURL:             cfg.APIURL,
		Model:              cfg.Model,
		Style:              provider.Style(cfg.Style),
		Timeout:            cfg.Timeout,
		InsecureSkipVerify: cfg.InsecureSkipVerify,
	}
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	config.InitDebugLog(cfg.DataDir())

	pcfg := providerConfig(cfg)
	if cfg.APIKey == "" && pcfg.ResolveStyle() != provider.StyleOllama {
		return nil, fmt.Errorf("no API key set for %s: export COMPANION_API_KEY", cfg.Model)
	}

	return cfg, nil
}

// newOrchestrator builds the client, archive store and orchestrator. The
// returned func closes the store.
func newOrchestrator(cfg *config.Config) (*chat.Orchestrator, func(), error) {
	store, err := storage.NewArchiveStore(cfg.ArchiveDSN())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open archive: %w", err)
	}

	client := provider.NewClient(providerConfig(cfg))

	orch := chat.NewOrchestrator(client, chat.Options{
		Persona:     cfg.Persona,
		Model:       client.Model(),
		MaxTurns:    cfg.MaxTurns,
		Temperature: cfg.Temperature,
		MaxRetries:  cfg.MaxRetries,
		Memories:    cfg.Memories,
		Structured:  cfg.StructuredReplies,
		ArchiveFactory: func(sessionID string) history.Archive {
			return store.ForSession(sessionID)
		},
	})

	cleanup := func() {
		if err := store.Close(); err != nil && config.Debug {
			config.DebugLog.Printf("Warning: failed to close archive store: %v", err)
		}
	}

	return orch, cleanup, nil
}

func runChat() error {
	cfg, err := loadConfig()
	if err != nil {
		p := tea.NewProgram(ui.NewErrorModal("Configuration Error", err.Error()), tea.WithAltScreen())
		if _, runErr := p.Run(); runErr != nil {
			return runErr
		}
		os.Exit(1)
	}

	orch, cleanup, err := newOrchestrator(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	if config.Debug {
		config.DebugLog.Printf("[Main] Starting chat: model=%s url=%s", cfg.Model, cfg.APIURL)
	}

	view := ui.NewChatView(ui.Options{
		Orchestrator: orch,
		Model:        cfg.Model,
		ExportDir:    config.GetExportDir(cfg.DataDir()),
	})

	p := tea.NewProgram(view, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("failed to run chat: %w", err)
	}
	return nil
}

func runAsk(args []string) error {
	text := strings.TrimSpace(strings.Join(args, " "))
	if text == "" {
		return fmt.Errorf("usage: companion ask <text>")
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	orch, cleanup, err := newOrchestrator(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	reply, err := orch.Reply(ctx, chat.DefaultSessionID, text)
	if err != nil {
		return err
	}

	if reply.Expression != "" {
		fmt.Printf("[%s] ", reply.Expression)
	}
	fmt.Println(reply.Text)
	return nil
}

func runModels() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	config.InitDebugLog(cfg.DataDir())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	models, err := provider.ListModels(ctx, providerConfig(cfg))
	if err != nil {
		return err
	}

	for _, m := range models {
		marker := " "
		if m.Name == cfg.Model {
			marker = "*"
		}
		if m.Size > 0 {
			fmt.Printf("%s %-32s %s  %.1f GB\n", marker, m.Name, m.Style, float64(m.Size)/1e9)
		} else {
			fmt.Printf("%s %-32s %s\n", marker, m.Name, m.Style)
		}
	}
	return nil
}

func runPing() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	config.InitDebugLog(cfg.DataDir())

	pcfg := providerConfig(cfg)
	if err := provider.Ping(context.Background(), pcfg); err != nil {
		return err
	}

	fmt.Printf("%s (%s) is reachable\n", cfg.APIURL, pcfg.ResolveStyle())
	return nil
}

func runInit() error {
	path, err := config.InitFiles()
	if err != nil {
		return fmt.Errorf("failed to write config files: %w", err)
	}

	fmt.Printf("Settings: %s\n", config.GetSettingsFilePath())
	fmt.Printf("Config:   %s\n", path)
	return nil
}
