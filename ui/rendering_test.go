package ui

import (
	"strings"
	"testing"
	"time"

	"github.com/mattn/go-runewidth"
)

func TestPreprocessLinks(t *testing.T) {
	got := preprocessLinks("see [the docs](https://example.com/a) and [x](ftp://nope)")
	expected := "see https://example.com/a and [x](ftp://nope)"
	if got != expected {
		t.Errorf("got %q, want %q", got, expected)
	}
}

func TestFixInlineCode(t *testing.T) {
	got := fixInlineCode("run \x1b[44;3mgo test\x1b[0m now")
	if got != "run \x1b[31mgo test\x1b[0m now" {
		t.Errorf("got %q", got)
	}
}

func TestColorURLs_SkipsCodeBlocks(t *testing.T) {
	input := "visit https://example.com\n" + codeBlockBar + " curl https://example.com"
	lines := strings.Split(colorURLs(input), "\n")

	if !strings.Contains(lines[0], "\x1b[31mhttps://example.com\x1b[0m") {
		t.Errorf("expected URL colored: %q", lines[0])
	}
	if strings.Contains(lines[1], "\x1b[31m") {
		t.Errorf("code block line should be untouched: %q", lines[1])
	}
}

func TestRenderMarkdown(t *testing.T) {
	rendered := renderMarkdown("Hello **world**", 80)
	if !strings.Contains(rendered, "Hello") || !strings.Contains(rendered, "world") {
		t.Errorf("unexpected rendering: %q", rendered)
	}
	if strings.Contains(rendered, "**") {
		t.Errorf("emphasis markers should be rendered: %q", rendered)
	}
}

func TestRenderMarkdownCmd(t *testing.T) {
	msg := renderMarkdownCmd(3, 7, "plain text", 60)()

	rendered, ok := msg.(markdownRenderedMsg)
	if !ok {
		t.Fatalf("expected markdownRenderedMsg, got %T", msg)
	}
	if rendered.Epoch != 3 || rendered.Index != 7 || !strings.Contains(rendered.Rendered, "plain text") {
		t.Errorf("unexpected message: %+v", rendered)
	}
}

func TestFormatEntry(t *testing.T) {
	ts := time.Date(2026, 1, 1, 9, 30, 0, 0, time.UTC)

	tests := []struct {
		name     string
		entry    Entry
		contains []string
	}{
		{
			name:     "user",
			entry:    Entry{Role: RoleUser, Content: "line one\nline two", Timestamp: ts},
			contains: []string{"You", "line one", "line two", "09:30"},
		},
		{
			name:     "assistant with expression",
			entry:    Entry{Role: RoleAssistant, Content: "raw", Rendered: "pretty", Expression: "happy", Timestamp: ts},
			contains: []string{"Companion", "(happy)", "pretty"},
		},
		{
			name:     "error",
			entry:    Entry{Role: RoleError, Content: "boom", Timestamp: ts},
			contains: []string{"Sorry, something went wrong", "boom"},
		},
		{
			name:     "system",
			entry:    Entry{Role: RoleSystem, Content: "Switched", Timestamp: ts},
			contains: []string{"Switched"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := formatEntry(tt.entry)
			for _, s := range tt.contains {
				if !strings.Contains(out, s) {
					t.Errorf("expected %q in output:\n%s", s, out)
				}
			}
		})
	}
}

func TestFormatEntry_PrefersRendered(t *testing.T) {
	out := formatEntry(Entry{Role: RoleAssistant, Content: "raw", Rendered: "pretty"})
	if strings.Contains(out, "raw") {
		t.Errorf("rendered text should replace raw content: %q", out)
	}
}

func TestStatusLine(t *testing.T) {
	line := statusLine(0, "session: default", "model: qwen-plus")
	if line != "session: default · model: qwen-plus" {
		t.Errorf("got %q", line)
	}

	truncated := statusLine(12, "session: 日本語のセッション", "model: qwen-plus")
	if w := runewidth.StringWidth(truncated); w > 12 {
		t.Errorf("expected width <= 12, got %d (%q)", w, truncated)
	}
	if !strings.HasSuffix(truncated, "…") {
		t.Errorf("expected ellipsis, got %q", truncated)
	}
}
