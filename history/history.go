// Package history keeps the rolling window of dialogue turns for one
// conversation.
//
// The live window is bounded by maxTurns. Reaching the bound moves the oldest
// half of the window into the archive. Every turn is also archived when it is
// added, so older turns end up with two archive records.
//
// A History is not safe for concurrent use; callers serialize access per
// session.
package history

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"companion/config"
)

const DefaultMaxTurns = 20

// Turn is one (question, answer) pair. Values are immutable once created.
type Turn struct {
	Ask    string `json:"ask"`
	Answer string `json:"answer"`
}

func (t Turn) String() string {
	return fmt.Sprintf("user: %s\nassistant: %s", t.Ask, t.Answer)
}

type History struct {
	turns    []Turn
	maxTurns int
	archive  Archive
	now      func() time.Time
	newID    func() string
}

// Option customizes a History.
type Option func(*History)

// WithArchive replaces the default in-memory archive.
func WithArchive(a Archive) Option {
	return func(h *History) {
		h.archive = a
	}
}

// WithClock replaces time.Now for archive timestamps.
func WithClock(now func() time.Time) Option {
	return func(h *History) {
		h.now = now
	}
}

// WithIDFunc replaces the uuid v4 generator for archive IDs.
func WithIDFunc(newID func() string) Option {
	return func(h *History) {
		h.newID = newID
	}
}

// New creates an empty history. maxTurns below 1 falls back to
// DefaultMaxTurns.
func New(maxTurns int, opts ...Option) *History {
	if maxTurns < 1 {
		maxTurns = DefaultMaxTurns
	}

	h := &History{
		maxTurns: maxTurns,
		now:      time.Now,
		newID:    func() string { return uuid.New().String() },
	}

	for _, opt := range opts {
		opt(h)
	}

	if h.archive == nil {
		h.archive = NewMemoryArchive()
	}

	return h
}

// AddDialog appends a turn and archives a copy of it. When the live window
// reaches maxTurns the oldest half is archived and dropped.
func (h *History) AddDialog(userMessage, assistantMessage string) {
	turn := Turn{Ask: userMessage, Answer: assistantMessage}
	h.turns = append(h.turns, turn)
	h.store(turn)

	if len(h.turns) >= h.maxTurns {
		h.autoArchive()
	}
}

func (h *History) autoArchive() {
	archiveCount := len(h.turns) / 2

	for _, turn := range h.turns[:archiveCount] {
		h.store(turn)
	}

	// Copy so the dropped turns are not pinned by the old backing array
	remaining := make([]Turn, len(h.turns)-archiveCount)
	copy(remaining, h.turns[archiveCount:])
	h.turns = remaining

	if config.Debug {
		config.DebugLog.Printf("[History] Archived %d turns, %d live, %d archive records", archiveCount, len(h.turns), h.archive.Len())
	}
}

func (h *History) store(turn Turn) {
	rec := Record{
		ID:               h.newID(),
		Timestamp:        h.now(),
		UserMessage:      turn.Ask,
		AssistantMessage: turn.Answer,
	}

	// AddDialog cannot fail; a lost archive record is logged only.
	if err := h.archive.Put(rec); err != nil && config.Debug {
		config.DebugLog.Printf("[History] Failed to archive record %s: %v", rec.ID, err)
	}
}

// GetContext renders the live window as alternating "user: ..." and
// "assistant: ..." lines in chronological order.
func (h *History) GetContext() string {
	lines := make([]string, len(h.turns))
	for i, turn := range h.turns {
		lines[i] = turn.String()
	}
	return strings.Join(lines, "\n")
}

// Retrieve returns the answers of the last n live turns, oldest first, with
// empty answers removed. The query is not used: retrieval is by recency only.
func (h *History) Retrieve(query string, n int) []string {
	if n <= 0 {
		return []string{}
	}

	start := len(h.turns) - n
	if start < 0 {
		start = 0
	}

	answers := make([]string, 0, len(h.turns)-start)
	for _, turn := range h.turns[start:] {
		if turn.Answer != "" {
			answers = append(answers, turn.Answer)
		}
	}
	return answers
}

// Turns returns a copy of the live window.
func (h *History) Turns() []Turn {
	turns := make([]Turn, len(h.turns))
	copy(turns, h.turns)
	return turns
}

func (h *History) Len() int {
	return len(h.turns)
}

func (h *History) MaxTurns() int {
	return h.maxTurns
}

func (h *History) Archive() Archive {
	return h.archive
}
