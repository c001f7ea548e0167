// Package chat ties a model client to per-session conversation histories.
package chat

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/sahilm/fuzzy"

	"companion/config"
	"companion/history"
	"companion/provider"
	"companion/storage"
)

const DefaultSessionID = "default"

var (
	ErrEmptyMessage       = errors.New("message is empty")
	ErrBadStructuredReply = errors.New("structured reply is missing a reply field")
)

// Generator is the part of provider.Client the orchestrator needs.
type Generator interface {
	Generate(ctx context.Context, message string, opts ...provider.GenerateOption) (string, error)
	GenerateJSON(ctx context.Context, message string, opts ...provider.GenerateOption) (any, error)
}

type Options struct {
	Persona string
	// Model is recorded in exported transcripts.
	Model       string
	MaxTurns    int
	Temperature float64
	MaxRetries  int
	// Memories is how many recent answers are quoted back in the prompt.
	Memories int
	// Structured asks the model for {"reply", "expression"} JSON.
	Structured bool
	// ArchiveFactory supplies the archive for a new session. Nil means the
	// in-memory default.
	ArchiveFactory func(sessionID string) history.Archive
}

// Reply is one assistant answer.
type Reply struct {
	Text       string `json:"message"`
	Expression string `json:"expression,omitempty"`
}

type session struct {
	mu      sync.Mutex
	history *history.History
}

type Orchestrator struct {
	gen  Generator
	opts Options

	mu       sync.Mutex
	sessions map[string]*session
}

func NewOrchestrator(gen Generator, opts Options) *Orchestrator {
	if opts.Memories < 0 {
		opts.Memories = 0
	}
	if strings.TrimSpace(opts.Persona) == "" {
		opts.Persona = config.DefaultPersona
	}

	return &Orchestrator{
		gen:      gen,
		opts:     opts,
		sessions: make(map[string]*session),
	}
}

func normalizeSessionID(id string) string {
	id = strings.TrimSpace(id)
	if id == "" {
		return DefaultSessionID
	}
	return id
}

func (o *Orchestrator) session(id string) *session {
	o.mu.Lock()
	defer o.mu.Unlock()

	s, ok := o.sessions[id]
	if !ok {
		var opts []history.Option
		if o.opts.ArchiveFactory != nil {
			opts = append(opts, history.WithArchive(o.opts.ArchiveFactory(id)))
		}
		s = &session{history: history.New(o.opts.MaxTurns, opts...)}
		o.sessions[id] = s

		if config.Debug {
			config.DebugLog.Printf("[Chat] Created session %q", id)
		}
	}
	return s
}

func (o *Orchestrator) generateOptions() []provider.GenerateOption {
	return []provider.GenerateOption{
		provider.WithTemperature(o.opts.Temperature),
		provider.WithMaxRetries(o.opts.MaxRetries),
	}
}

// Reply answers message within sessionID. An empty session id means the
// default session. The session's history is only updated on success.
func (o *Orchestrator) Reply(ctx context.Context, sessionID, message string) (Reply, error) {
	if strings.TrimSpace(message) == "" {
		return Reply{}, ErrEmptyMessage
	}

	sessionID = normalizeSessionID(sessionID)
	s := o.session(sessionID)

	s.mu.Lock()
	defer s.mu.Unlock()

	var memories []string
	if o.opts.Memories > 0 {
		memories = s.history.Retrieve(message, o.opts.Memories)
	}
	prompt := buildPrompt(o.opts.Persona, memories, s.history.GetContext(), message, o.opts.Structured)

	if config.Debug {
		config.DebugLog.Printf("[Chat] Session %q: prompt with %d turns, %d memories", sessionID, s.history.Len(), len(memories))
	}

	var reply Reply
	if o.opts.Structured {
		v, err := o.gen.GenerateJSON(ctx, prompt, o.generateOptions()...)
		if err != nil {
			return Reply{}, fmt.Errorf("failed to generate reply: %w", err)
		}
		reply, err = parseStructuredReply(v)
		if err != nil {
			return Reply{}, err
		}
	} else {
		text, err := o.gen.Generate(ctx, prompt, o.generateOptions()...)
		if err != nil {
			return Reply{}, fmt.Errorf("failed to generate reply: %w", err)
		}
		reply.Text = text
	}

	s.history.AddDialog(message, reply.Text)
	return reply, nil
}

func parseStructuredReply(v any) (Reply, error) {
	obj, ok := v.(map[string]any)
	if !ok {
		return Reply{}, fmt.Errorf("%w: got %T", ErrBadStructuredReply, v)
	}

	text, ok := obj["reply"].(string)
	if !ok || strings.TrimSpace(text) == "" {
		return Reply{}, ErrBadStructuredReply
	}

	expression, _ := obj["expression"].(string)
	return Reply{
		Text:       strings.TrimSpace(text),
		Expression: strings.TrimSpace(expression),
	}, nil
}

// Summarize asks the model, in persona, to retell text. Nothing is recorded in
// any session.
func (o *Orchestrator) Summarize(ctx context.Context, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyMessage
	}

	summary, err := o.gen.Generate(ctx, buildSummaryPrompt(o.opts.Persona, text), o.generateOptions()...)
	if err != nil {
		return "", fmt.Errorf("failed to summarize: %w", err)
	}
	return summary, nil
}

// History returns the live history for sessionID, creating the session if
// needed. Callers must not use it concurrently with Reply on that session.
func (o *Orchestrator) History(sessionID string) *history.History {
	return o.session(normalizeSessionID(sessionID)).history
}

// Sessions lists known session ids in sorted order.
func (o *Orchestrator) Sessions() []string {
	o.mu.Lock()
	defer o.mu.Unlock()

	ids := make([]string, 0, len(o.sessions))
	for id := range o.sessions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// FindSession fuzzy-matches query against the known session ids and returns
// the best match.
func (o *Orchestrator) FindSession(query string) (string, bool) {
	query = strings.TrimSpace(query)
	if query == "" {
		return "", false
	}

	ids := o.Sessions()
	for _, id := range ids {
		if id == query {
			return id, true
		}
	}

	matches := fuzzy.Find(query, ids)
	if len(matches) == 0 {
		return "", false
	}
	return matches[0].Str, true
}

// Transcript snapshots a session for export.
func (o *Orchestrator) Transcript(sessionID string) storage.Transcript {
	sessionID = normalizeSessionID(sessionID)
	s := o.session(sessionID)

	s.mu.Lock()
	defer s.mu.Unlock()

	return storage.Transcript{
		SessionID:  sessionID,
		Model:      o.opts.Model,
		ExportedAt: time.Now(),
		Turns:      s.history.Turns(),
		Archive:    s.history.Archive().Records(),
	}
}
