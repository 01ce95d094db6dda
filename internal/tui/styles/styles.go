// Package styles provides shared lipgloss styles for the interactive picker
// and command output.
package styles

import "github.com/charmbracelet/lipgloss"

// Color palette using ANSI colors for broad terminal compatibility.
var (
	Primary   = lipgloss.Color("4")   // Blue
	Secondary = lipgloss.Color("245") // Light gray (visible on dark backgrounds)
	Success   = lipgloss.Color("2")   // Green
	Warning   = lipgloss.Color("3")   // Yellow
	Error     = lipgloss.Color("1")   // Red
	Highlight = lipgloss.Color("12")  // Bright blue
	Muted     = lipgloss.Color("245") // Light gray (visible on dark backgrounds)
)

// Text styles.
var (
	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(Primary).
		MarginBottom(1)

	ErrorText = lipgloss.NewStyle().
			Foreground(Error).
			Bold(true)

	WarningText = lipgloss.NewStyle().
			Foreground(Warning)

	SuccessText = lipgloss.NewStyle().
			Foreground(Success)

	MutedText = lipgloss.NewStyle().
			Foreground(Muted)
)

// Component styles.
var (
	Unfocused = lipgloss.NewStyle().
			Foreground(Secondary)

	Cursor = lipgloss.NewStyle().
		Foreground(Highlight).
		Bold(true)
)

// Layout styles.
var (
	Container = lipgloss.NewStyle().
		PaddingTop(1).
		PaddingLeft(2).
		PaddingRight(2)
)

// Indicators.
const (
	ProgressFilled = "●"
	ProgressEmpty  = "○"

	CursorIndicator = "▸"
)
