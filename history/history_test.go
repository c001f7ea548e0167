package history

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"
)

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("rec-%03d", n)
	}
}

func TestNew_ClampsMaxTurns(t *testing.T) {
	tests := []struct {
		input    int
		expected int
	}{
		{20, 20},
		{4, 4},
		{1, 1},
		{0, DefaultMaxTurns},
		{-5, DefaultMaxTurns},
	}

	for _, tt := range tests {
		if got := New(tt.input).MaxTurns(); got != tt.expected {
			t.Errorf("New(%d).MaxTurns() = %d, want %d", tt.input, got, tt.expected)
		}
	}
}

func TestGetContext_Empty(t *testing.T) {
	h := New(20)
	if got := h.GetContext(); got != "" {
		t.Errorf("expected empty context, got %q", got)
	}
}

func TestGetContext_Format(t *testing.T) {
	h := New(20)
	h.AddDialog("hi", "hello")
	h.AddDialog("how are you?", "great")

	expected := "user: hi\nassistant: hello\nuser: how are you?\nassistant: great"
	if got := h.GetContext(); got != expected {
		t.Errorf("GetContext() =\n%q\nwant\n%q", got, expected)
	}

	lines := strings.Split(h.GetContext(), "\n")
	if len(lines) != 2*h.Len() {
		t.Errorf("expected %d lines, got %d", 2*h.Len(), len(lines))
	}
}

func TestAddDialog_ArchivesEveryTurn(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	h := New(20, WithClock(func() time.Time { return now }), WithIDFunc(sequentialIDs()))

	h.AddDialog("q1", "a1")

	records := h.Archive().Records()
	if len(records) != 1 {
		t.Fatalf("expected 1 archive record, got %d", len(records))
	}

	rec := records[0]
	if rec.ID != "rec-001" || !rec.Timestamp.Equal(now) || rec.UserMessage != "q1" || rec.AssistantMessage != "a1" {
		t.Errorf("unexpected record: %+v", rec)
	}
}

func TestAddDialog_DefaultIDsAreUnique(t *testing.T) {
	h := New(20)
	for i := 0; i < 5; i++ {
		h.AddDialog("q", "a")
	}

	seen := make(map[string]bool)
	for _, rec := range h.Archive().Records() {
		if rec.ID == "" {
			t.Fatal("record has empty ID")
		}
		if seen[rec.ID] {
			t.Fatalf("duplicate ID %s", rec.ID)
		}
		seen[rec.ID] = true
	}
	if len(seen) != 5 {
		t.Errorf("expected 5 records, got %d", len(seen))
	}
}

func TestAutoArchive(t *testing.T) {
	h := New(20, WithIDFunc(sequentialIDs()))

	for i := 0; i < 19; i++ {
		h.AddDialog(fmt.Sprintf("q%d", i), fmt.Sprintf("a%d", i))
	}
	if h.Len() != 19 {
		t.Fatalf("expected 19 live turns before the bound, got %d", h.Len())
	}

	h.AddDialog("q19", "a19")

	if h.Len() != 10 {
		t.Fatalf("expected 10 live turns after archiving, got %d", h.Len())
	}

	turns := h.Turns()
	if turns[0].Ask != "q10" || turns[9].Ask != "q19" {
		t.Errorf("expected the newest half to remain, got %q..%q", turns[0].Ask, turns[9].Ask)
	}

	// 20 per-turn records plus the 10 oldest archived again
	if got := h.Archive().Len(); got != 30 {
		t.Errorf("expected 30 archive records, got %d", got)
	}

	records := h.Archive().Records()
	for i, rec := range records[20:] {
		if rec.UserMessage != fmt.Sprintf("q%d", i) {
			t.Errorf("re-archived record %d: got %q", i, rec.UserMessage)
		}
	}
}

func TestAutoArchive_OddWindow(t *testing.T) {
	h := New(5)
	for i := 0; i < 5; i++ {
		h.AddDialog(fmt.Sprintf("q%d", i), "a")
	}

	// 5/2 = 2 archived, 3 remain
	if h.Len() != 3 {
		t.Errorf("expected 3 live turns, got %d", h.Len())
	}
	if h.Archive().Len() != 7 {
		t.Errorf("expected 7 archive records, got %d", h.Archive().Len())
	}
}

func TestAutoArchive_MaxTurnsOne(t *testing.T) {
	h := New(1)
	h.AddDialog("q", "a")

	// 1/2 = 0, nothing is dropped
	if h.Len() != 1 {
		t.Errorf("expected 1 live turn, got %d", h.Len())
	}
	h.AddDialog("q2", "a2")
	if h.Len() != 1 || h.Turns()[0].Ask != "q2" {
		t.Errorf("expected only the newest turn, got %+v", h.Turns())
	}
}

func TestWindowNeverReachesBound(t *testing.T) {
	h := New(6)
	for i := 0; i < 100; i++ {
		h.AddDialog("q", "a")
		if h.Len() >= h.MaxTurns() {
			t.Fatalf("after add %d: %d live turns with max %d", i, h.Len(), h.MaxTurns())
		}
	}
}

func TestRetrieve(t *testing.T) {
	h := New(20)
	for i := 0; i < 5; i++ {
		h.AddDialog(fmt.Sprintf("q%d", i), fmt.Sprintf("a%d", i))
	}

	tests := []struct {
		name     string
		n        int
		expected []string
	}{
		{"last three", 3, []string{"a2", "a3", "a4"}},
		{"exact window", 5, []string{"a0", "a1", "a2", "a3", "a4"}},
		{"larger than window", 50, []string{"a0", "a1", "a2", "a3", "a4"}},
		{"zero", 0, []string{}},
		{"negative", -1, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := h.Retrieve("ignored query", tt.n)
			if got == nil {
				t.Fatal("Retrieve must not return nil")
			}
			if strings.Join(got, ",") != strings.Join(tt.expected, ",") {
				t.Errorf("Retrieve(%d) = %v, want %v", tt.n, got, tt.expected)
			}
		})
	}
}

func TestRetrieve_SkipsEmptyAnswers(t *testing.T) {
	h := New(20)
	h.AddDialog("q1", "a1")
	h.AddDialog("q2", "")
	h.AddDialog("q3", "a3")

	got := h.Retrieve("", 3)
	if len(got) != 2 || got[0] != "a1" || got[1] != "a3" {
		t.Errorf("expected [a1 a3], got %v", got)
	}
}

func TestRetrieve_QueryIgnored(t *testing.T) {
	h := New(20)
	h.AddDialog("q1", "apples")
	h.AddDialog("q2", "oranges")

	a := h.Retrieve("apples", 1)
	b := h.Retrieve("something else", 1)
	if len(a) != 1 || a[0] != b[0] || a[0] != "oranges" {
		t.Errorf("retrieval should be by recency only: %v vs %v", a, b)
	}
}

func TestTurns_ReturnsCopy(t *testing.T) {
	h := New(20)
	h.AddDialog("q", "a")

	turns := h.Turns()
	turns[0].Answer = "changed"

	if h.Turns()[0].Answer != "a" {
		t.Error("mutating the returned slice changed the history")
	}
}

type failingArchive struct {
	MemoryArchive
	calls int
}

func (f *failingArchive) Put(rec Record) error {
	f.calls++
	return errors.New("disk full")
}

func TestAddDialog_ArchiveErrorIgnored(t *testing.T) {
	archive := &failingArchive{}
	h := New(4, WithArchive(archive))

	for i := 0; i < 4; i++ {
		h.AddDialog("q", "a")
	}

	if h.Len() != 2 {
		t.Errorf("window should still be maintained, got %d turns", h.Len())
	}
	if archive.calls != 6 {
		t.Errorf("expected 6 archive attempts, got %d", archive.calls)
	}
}

func TestMemoryArchive(t *testing.T) {
	a := NewMemoryArchive()
	a.Put(Record{ID: "b", UserMessage: "first"})
	a.Put(Record{ID: "a", UserMessage: "second"})
	a.Put(Record{ID: "b", UserMessage: "replaced"})

	if a.Len() != 2 {
		t.Errorf("expected 2 records, got %d", a.Len())
	}

	records := a.Records()
	if records[0].ID != "b" || records[0].UserMessage != "replaced" || records[1].ID != "a" {
		t.Errorf("unexpected order or content: %+v", records)
	}

	if _, ok := a.Get("missing"); ok {
		t.Error("expected missing record lookup to fail")
	}
}
