package ui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

func renderHelp(width, height int) string {
	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(successColor).
		Render("Companion - Commands")

	blue := lipgloss.NewStyle().Foreground(accentColor)

	lines := []string{blue.Render("## Slash commands")}
	for _, name := range commandOrder {
		info := commands[name]
		lines = append(lines, fmt.Sprintf("• %-19s %s", info.usage, info.description))
	}

	keys := lipgloss.JoinVertical(
		lipgloss.Left,
		blue.Render("## Keys"),
		"• Enter               Send message",
		"• Alt+Enter           New line",
		"• Alt+Y               Copy last reply",
		"• PgUp/PgDn           Scroll",
		"• Esc                 Cancel request / close help",
		"• Ctrl+C              Quit",
	)

	content := lipgloss.JoinVertical(
		lipgloss.Left,
		title,
		"",
		lipgloss.JoinVertical(lipgloss.Left, lines...),
		"",
		keys,
		"",
		DimStyle.Render("Press Esc or type /help to close"),
	)

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("8")).
		Padding(1, 2)

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box.Render(content))
}
