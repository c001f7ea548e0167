package ui

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	markdown "github.com/MichaelMure/go-term-markdown"
	tea "github.com/charmbracelet/bubbletea"
	gomarkdown "github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/parser"
	"github.com/mattn/go-runewidth"

	"companion/config"
)

var (
	inlineCodeRegex = regexp.MustCompile(`(?s)\x1b\[44;3m(.*?)\x1b\[0m`)
	mdLinkRegex     = regexp.MustCompile(`\[([^\]]+)\]\((https?://[^\)]+)\)`)
	urlRegex        = regexp.MustCompile(`(https?://[^\s]+)`)
)

const codeBlockBar = "┃"

// renderMarkdown renders content for a terminal of the given width.
func renderMarkdown(content string, width int) string {
	if width < 20 {
		width = 20
	}

	content = preprocessLinks(content)

	// Autolink stays off so terminals can detect URLs themselves
	ext := markdown.Extensions() &^ parser.Autolink
	p := parser.NewWithExtensions(ext)
	r := markdown.NewRenderer(width-4, 0)
	doc := p.Parse([]byte(content))
	rendered := gomarkdown.Render(doc, r)

	return postProcessMarkdown(strings.TrimRight(string(rendered), "\n"))
}

func renderMarkdownCmd(epoch, index int, content string, width int) tea.Cmd {
	return func() tea.Msg {
		start := time.Now()
		rendered := renderMarkdown(content, width)

		if config.Debug {
			config.DebugLog.Printf("[UI] Rendered entry %d (%d chars) in %v", index, len(content), time.Since(start))
		}

		return markdownRenderedMsg{
			Epoch:    epoch,
			Index:    index,
			Rendered: rendered,
		}
	}
}

func postProcessMarkdown(rendered string) string {
	rendered = fixInlineCode(rendered)
	return colorURLs(rendered)
}

// preprocessLinks turns [text](url) into a bare url.
func preprocessLinks(content string) string {
	return mdLinkRegex.ReplaceAllString(content, "$2")
}

// fixInlineCode swaps the blue-background italic inline code for red text.
func fixInlineCode(s string) string {
	return inlineCodeRegex.ReplaceAllString(s, "\x1b[31m$1\x1b[0m")
}

func colorURLs(s string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		// Leave code blocks alone
		if !strings.Contains(line, codeBlockBar) {
			lines[i] = urlRegex.ReplaceAllString(line, "\x1b[31m$1\x1b[0m")
		}
	}
	return strings.Join(lines, "\n")
}

func formatUserMessage(timestamp, role, content string) string {
	bar := UserStyle.Render(codeBlockBar)

	var result strings.Builder
	result.WriteString(fmt.Sprintf("%s %s %s\n", bar, timestamp, role))
	for _, line := range strings.Split(content, "\n") {
		result.WriteString(fmt.Sprintf("%s %s\n", bar, line))
	}
	result.WriteString("\n")

	return result.String()
}

func formatEntry(e Entry) string {
	timestamp := DimStyle.Render(e.Timestamp.Format("[15:04]"))

	body := e.Rendered
	if body == "" {
		body = e.Content
	}

	switch e.Role {
	case RoleUser:
		return formatUserMessage(timestamp, UserStyle.Render("You"), body)
	case RoleAssistant:
		header := fmt.Sprintf("%s %s", timestamp, AssistantStyle.Render("Companion"))
		if e.Expression != "" {
			header += " " + ExpressionStyle.Render("("+e.Expression+")")
		}
		return fmt.Sprintf("%s\n%s\n\n", header, body)
	case RoleError:
		return fmt.Sprintf("%s %s\n%s\n\n", timestamp, ErrorStyle.Render("Sorry, something went wrong"), DimStyle.Render(body))
	default:
		return fmt.Sprintf("%s %s\n\n", timestamp, DimStyle.Render(body))
	}
}

// statusLine joins parts with a separator and truncates to width cells.
func statusLine(width int, parts ...string) string {
	line := strings.Join(parts, " · ")
	if width > 0 && runewidth.StringWidth(line) > width {
		line = runewidth.Truncate(line, width, "…")
	}
	return line
}
