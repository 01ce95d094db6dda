package steps

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/leefowlercu/restore2fa/internal/tui/styles"
)

// NavigationHelp returns the help line for choice steps.
func NavigationHelp(shortcuts string) string {
	return renderHelp([]helpItem{
		{key: shortcuts, desc: "choose"},
		{key: "↑/↓", desc: "navigate"},
		{key: "enter", desc: "select"},
		{key: "esc", desc: "back"},
		{key: "ctrl+c", desc: "quit"},
	})
}

// NavigationHelpWithInput returns the help line for steps with text input.
func NavigationHelpWithInput() string {
	return renderHelp([]helpItem{
		{key: "enter", desc: "continue"},
		{key: "esc", desc: "back"},
		{key: "ctrl+c", desc: "quit"},
	})
}

type helpItem struct {
	key  string
	desc string
}

func renderHelp(items []helpItem) string {
	keyStyle := lipgloss.NewStyle().
		Foreground(styles.Secondary).
		Bold(true)

	descStyle := lipgloss.NewStyle().
		Foreground(styles.Muted)

	sep := lipgloss.NewStyle().
		Foreground(styles.Muted).
		Render(" • ")

	parts := make([]string, 0, len(items))
	for _, item := range items {
		parts = append(parts, keyStyle.Render(item.key)+" "+descStyle.Render(item.desc))
	}
	return strings.Join(parts, sep)
}

// FormatError returns a formatted error message.
func FormatError(err error) string {
	if err == nil {
		return ""
	}
	return styles.ErrorText.Render("Error: " + err.Error())
}

func question(text string) string {
	return lipgloss.NewStyle().
		Bold(true).
		Foreground(styles.Secondary).
		Render(text)
}
