package ui

import (
	"time"

	"companion/chat"
)

// Role of a transcript entry as shown in the chat view
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
	RoleError     Role = "error"
)

// Entry is one line item in the chat view. Only user and assistant entries
// come from the conversation history; system and error entries are local.
type Entry struct {
	Role       Role
	Content    string
	Rendered   string // Cached markdown rendering
	Expression string
	Timestamp  time.Time
}

type replyMsg struct {
	SessionID string
	Reply     chat.Reply
	Err       error
}

type summaryMsg struct {
	Path    string
	Summary string
	Err     error
}

type exportedMsg struct {
	Path string
	Err  error
}

type markdownRenderedMsg struct {
	Epoch    int
	Index    int
	Rendered string
}
