package ui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"companion/chat"
	"companion/config"
	"companion/storage"
)

// header + status + footer lines around the viewport and input
const chromeHeight = 3

const inputHeight = 3

type Options struct {
	Orchestrator *chat.Orchestrator
	Model        string
	ExportDir    string
	SessionID    string
}

type ChatView struct {
	orch      *chat.Orchestrator
	model     string
	exportDir string

	sessionID string
	entries   []Entry
	// epoch invalidates in-flight markdown renders when entries are replaced
	epoch int

	// Cached while a request is running; History is not safe to read then
	turns    int
	maxTurns int
	archived int

	viewport viewport.Model
	textarea textarea.Model
	spinner  spinner.Model

	width    int
	height   int
	ready    bool
	waiting  bool
	showHelp bool
	cancel   context.CancelFunc
}

func NewChatView(opts Options) ChatView {
	ta := textarea.New()
	ta.Placeholder = "Say something, or type /help"
	ta.Focus()
	ta.CharLimit = 0
	ta.ShowLineNumbers = false
	ta.SetHeight(inputHeight)
	ta.SetWidth(80)

	// Enter sends; Alt+Enter inserts a newline
	ta.KeyMap.InsertNewline = key.NewBinding(key.WithKeys("alt+enter"))

	ta.SetPromptFunc(2, func(lineIdx int) string {
		if lineIdx == 0 {
			return "> "
		}
		return "| "
	})

	sessionID := strings.TrimSpace(opts.SessionID)
	if sessionID == "" {
		sessionID = chat.DefaultSessionID
	}

	v := ChatView{
		orch:      opts.Orchestrator,
		model:     opts.Model,
		exportDir: opts.ExportDir,
		sessionID: sessionID,
		textarea:  ta,
		viewport:  viewport.New(0, 0),
		spinner:   newSpinner(),
	}
	v.loadSession()
	return v
}

func newSpinner() spinner.Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("15"))
	return s
}

// SessionID returns the active session.
func (v ChatView) SessionID() string {
	return v.sessionID
}

// Entries returns the entries currently on screen.
func (v ChatView) Entries() []Entry {
	return v.entries
}

func (v ChatView) Init() tea.Cmd {
	return textarea.Blink
}

func (v ChatView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height

		vpHeight := msg.Height - chromeHeight - inputHeight
		if vpHeight < 1 {
			vpHeight = 1
		}
		v.viewport.Width = msg.Width
		v.viewport.Height = vpHeight
		v.textarea.SetWidth(msg.Width)
		v.ready = true

		v.refreshViewport(true)
		return v, v.renderAll()

	case tea.KeyMsg:
		return v.handleKey(msg)

	case spinner.TickMsg:
		if !v.waiting {
			return v, nil
		}
		var cmd tea.Cmd
		v.spinner, cmd = v.spinner.Update(msg)
		v.refreshViewport(true)
		return v, cmd

	case replyMsg:
		v.finishRequest()
		if msg.Err != nil {
			v.appendFailure(msg.Err)
			return v, nil
		}
		if msg.SessionID != v.sessionID {
			return v, nil
		}
		idx := v.appendEntry(Entry{
			Role:       RoleAssistant,
			Content:    msg.Reply.Text,
			Expression: msg.Reply.Expression,
			Timestamp:  time.Now(),
		})
		return v, renderMarkdownCmd(v.epoch, idx, msg.Reply.Text, v.width)

	case summaryMsg:
		v.finishRequest()
		if msg.Err != nil {
			v.appendFailure(msg.Err)
			return v, nil
		}
		idx := v.appendEntry(Entry{
			Role:      RoleAssistant,
			Content:   msg.Summary,
			Timestamp: time.Now(),
		})
		return v, renderMarkdownCmd(v.epoch, idx, msg.Summary, v.width)

	case exportedMsg:
		if msg.Err != nil {
			v.appendFailure(msg.Err)
			return v, nil
		}
		v.appendSystem("Transcript exported to " + msg.Path)
		return v, nil

	case markdownRenderedMsg:
		if msg.Epoch == v.epoch && msg.Index < len(v.entries) {
			v.entries[msg.Index].Rendered = msg.Rendered
			v.refreshViewport(v.viewport.AtBottom())
		}
		return v, nil
	}

	var cmds []tea.Cmd
	var cmd tea.Cmd
	v.textarea, cmd = v.textarea.Update(msg)
	cmds = append(cmds, cmd)
	v.viewport, cmd = v.viewport.Update(msg)
	cmds = append(cmds, cmd)
	return v, tea.Batch(cmds...)
}

func (v ChatView) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		if v.cancel != nil {
			v.cancel()
		}
		return v, tea.Quit

	case "esc":
		if v.showHelp {
			v.showHelp = false
			return v, nil
		}
		if v.waiting && v.cancel != nil {
			if config.Debug {
				config.DebugLog.Printf("[UI] Cancelling request for session %q", v.sessionID)
			}
			v.cancel()
		}
		return v, nil

	case "alt+y":
		v.copyLastReply()
		return v, nil

	case "pgup":
		v.viewport.PageUp()
		return v, nil

	case "pgdown":
		v.viewport.PageDown()
		return v, nil

	case "alt+k", "alt+up":
		v.viewport.HalfPageUp()
		return v, nil

	case "alt+j", "alt+down":
		v.viewport.HalfPageDown()
		return v, nil
	}

	if msg.Type == tea.KeyEnter && !msg.Alt {
		return v.submit()
	}

	var cmd tea.Cmd
	v.textarea, cmd = v.textarea.Update(msg)
	return v, cmd
}

func (v ChatView) submit() (tea.Model, tea.Cmd) {
	input := strings.TrimSpace(v.textarea.Value())
	if input == "" {
		return v, nil
	}

	if c, ok := ParseCommand(input); ok {
		v.textarea.Reset()
		return v.runCommand(c)
	}

	// Keep the draft until the current reply lands
	if v.waiting {
		return v, nil
	}

	v.textarea.Reset()

	if config.Debug {
		config.DebugLog.Printf("[UI] Sending message on session %q (%d chars)", v.sessionID, len(input))
	}

	idx := v.appendEntry(Entry{
		Role:      RoleUser,
		Content:   input,
		Timestamp: time.Now(),
	})

	ctx := v.startRequest()
	return v, tea.Batch(
		renderMarkdownCmd(v.epoch, idx, input, v.width),
		v.sendMessage(ctx, v.sessionID, input),
		v.spinner.Tick,
	)
}

func (v *ChatView) startRequest() context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	v.cancel = cancel
	v.waiting = true
	v.spinner = newSpinner()
	v.refreshViewport(true)
	return ctx
}

func (v *ChatView) finishRequest() {
	if v.cancel != nil {
		v.cancel()
		v.cancel = nil
	}
	v.waiting = false
	v.refreshStats()
}

func (v ChatView) sendMessage(ctx context.Context, sessionID, text string) tea.Cmd {
	orch := v.orch
	return func() tea.Msg {
		reply, err := orch.Reply(ctx, sessionID, text)
		return replyMsg{SessionID: sessionID, Reply: reply, Err: err}
	}
}

func (v ChatView) summarizeFile(ctx context.Context, path string) tea.Cmd {
	orch := v.orch
	return func() tea.Msg {
		data, err := os.ReadFile(path)
		if err != nil {
			return summaryMsg{Path: path, Err: fmt.Errorf("failed to read file: %w", err)}
		}
		summary, err := orch.Summarize(ctx, string(data))
		return summaryMsg{Path: path, Summary: summary, Err: err}
	}
}

func exportTranscript(path string, t storage.Transcript) tea.Cmd {
	return func() tea.Msg {
		return exportedMsg{Path: path, Err: storage.ExportTranscript(path, t)}
	}
}

func (v ChatView) runCommand(c Command) (tea.Model, tea.Cmd) {
	if !c.Known() {
		v.appendSystem(fmt.Sprintf("Unknown command /%s. Type /help for the list.", c.Name))
		return v, nil
	}
	if c.NeedsArg() {
		v.appendSystem("Usage: " + c.Usage())
		return v, nil
	}

	switch c.Name {
	case "help":
		v.showHelp = !v.showHelp
		return v, nil

	case "quit":
		if v.cancel != nil {
			v.cancel()
		}
		return v, tea.Quit

	case "copy":
		v.copyLastReply()
		return v, nil
	}

	if v.waiting {
		v.appendSystem("Wait for the current reply to finish first.")
		return v, nil
	}

	switch c.Name {
	case "sessions":
		v.appendSystem("Sessions: " + strings.Join(v.orch.Sessions(), ", "))
		return v, nil

	case "session":
		target, ok := v.orch.FindSession(c.Arg)
		if !ok {
			target = c.Arg
		}
		return v.switchSession(target)

	case "new":
		return v.switchSession(c.Arg)

	case "export":
		path := storage.GenerateExportPath(v.exportDir, v.sessionID)
		return v, exportTranscript(path, v.orch.Transcript(v.sessionID))

	case "summarize":
		path := config.ExpandPath(c.Arg)
		v.appendSystem("Summarizing " + filepath.Base(path) + "...")
		ctx := v.startRequest()
		return v, tea.Batch(v.summarizeFile(ctx, path), v.spinner.Tick)
	}

	return v, nil
}

func (v ChatView) switchSession(id string) (tea.Model, tea.Cmd) {
	v.sessionID = id
	v.loadSession()
	v.appendSystem(fmt.Sprintf("Switched to session %q (%d turns)", id, v.turns))
	return v, v.renderAll()
}

// loadSession rebuilds the entries from the active session's live window.
func (v *ChatView) loadSession() {
	v.epoch++
	v.entries = nil

	now := time.Now()
	for _, turn := range v.orch.History(v.sessionID).Turns() {
		v.entries = append(v.entries, Entry{Role: RoleUser, Content: turn.Ask, Timestamp: now})
		if turn.Answer != "" {
			v.entries = append(v.entries, Entry{Role: RoleAssistant, Content: turn.Answer, Timestamp: now})
		}
	}

	v.refreshStats()
	v.refreshViewport(true)
}

func (v *ChatView) refreshStats() {
	h := v.orch.History(v.sessionID)
	v.turns = h.Len()
	v.maxTurns = h.MaxTurns()
	v.archived = h.Archive().Len()
}

func (v ChatView) renderAll() tea.Cmd {
	if !v.ready {
		return nil
	}

	var cmds []tea.Cmd
	for i, e := range v.entries {
		if e.Role == RoleUser || e.Role == RoleAssistant {
			cmds = append(cmds, renderMarkdownCmd(v.epoch, i, e.Content, v.width))
		}
	}
	return tea.Batch(cmds...)
}

func (v *ChatView) copyLastReply() {
	for i := len(v.entries) - 1; i >= 0; i-- {
		if v.entries[i].Role == RoleAssistant {
			if err := clipboard.WriteAll(v.entries[i].Content); err != nil {
				v.appendFailure(fmt.Errorf("failed to copy to clipboard: %w", err))
				return
			}
			v.appendSystem("Copied last reply to the clipboard")
			return
		}
	}
	v.appendSystem("Nothing to copy yet")
}

func (v *ChatView) appendEntry(e Entry) int {
	v.entries = append(v.entries, e)
	v.refreshViewport(true)
	return len(v.entries) - 1
}

func (v *ChatView) appendSystem(text string) {
	v.appendEntry(Entry{Role: RoleSystem, Content: text, Timestamp: time.Now()})
}

func (v *ChatView) appendFailure(err error) {
	if errors.Is(err, context.Canceled) {
		v.appendSystem("Request cancelled")
		return
	}

	if config.Debug {
		config.DebugLog.Printf("[UI] Request failed on session %q: %v", v.sessionID, err)
	}
	v.appendEntry(Entry{Role: RoleError, Content: err.Error(), Timestamp: time.Now()})
}

func (v *ChatView) refreshViewport(gotoBottom bool) {
	var content strings.Builder

	if len(v.entries) == 0 && !v.waiting {
		content.WriteString(DimStyle.Render("No messages yet. Say hello!"))
	}

	for _, e := range v.entries {
		content.WriteString(formatEntry(e))
	}

	if v.waiting {
		content.WriteString(fmt.Sprintf("%s %s\n", v.spinner.View(), DimStyle.Render("Thinking...")))
	}

	v.viewport.SetContent(content.String())
	if gotoBottom {
		v.viewport.GotoBottom()
	}
}

func (v ChatView) status() string {
	return statusLine(v.width,
		"session: "+v.sessionID,
		"model: "+v.model,
		fmt.Sprintf("turns %d/%d", v.turns, v.maxTurns),
		fmt.Sprintf("archived %d", v.archived),
	)
}

func (v ChatView) View() string {
	if !v.ready {
		return "Starting..."
	}

	if v.showHelp {
		return renderHelp(v.width, v.height)
	}

	header := TitleStyle.Render("Companion") + " " + DimStyle.Render(v.sessionID)
	footer := FormatFooter("Enter", "Send", "Alt+Enter", "Newline", "Esc", "Cancel", "/help", "Commands", "Ctrl+C", "Quit")

	return lipgloss.JoinVertical(
		lipgloss.Left,
		header,
		v.viewport.View(),
		StatusStyle.Render(v.status()),
		v.textarea.View(),
		footer,
	)
}
