package ui

import (
	"strings"
)

// Command is a parsed slash command.
type Command struct {
	Name string
	Arg  string
}

type commandInfo struct {
	usage       string
	description string
}

var commands = map[string]commandInfo{
	"help":      {"/help", "Toggle this help"},
	"session":   {"/session <name>", "Switch to a session (fuzzy) or create it"},
	"new":       {"/new <name>", "Create a session with exactly this name"},
	"sessions":  {"/sessions", "List sessions"},
	"copy":      {"/copy", "Copy the last reply to the clipboard"},
	"export":    {"/export", "Write this session's transcript to JSON"},
	"summarize": {"/summarize <file>", "Summarize a plain-text file"},
	"quit":      {"/quit", "Exit"},
}

var commandOrder = []string{"help", "session", "new", "sessions", "copy", "export", "summarize", "quit"}

// ParseCommand splits "/name arg..." into a Command. ok is false for input
// that is not a slash command.
func ParseCommand(input string) (Command, bool) {
	input = strings.TrimSpace(input)
	if !strings.HasPrefix(input, "/") || len(input) < 2 {
		return Command{}, false
	}

	name, arg, _ := strings.Cut(input[1:], " ")
	return Command{
		Name: strings.ToLower(name),
		Arg:  strings.TrimSpace(arg),
	}, true
}

// Known reports whether c names a supported command.
func (c Command) Known() bool {
	_, ok := commands[c.Name]
	return ok
}

// NeedsArg reports whether c is missing a required argument.
func (c Command) NeedsArg() bool {
	switch c.Name {
	case "session", "new", "summarize":
		return c.Arg == ""
	}
	return false
}

// Usage returns the usage string for c, or "" for unknown commands.
func (c Command) Usage() string {
	return commands[c.Name].usage
}
