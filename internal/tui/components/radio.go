// Package components provides reusable TUI components for interactive prompts.
package components

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/leefowlercu/restore2fa/internal/tui/styles"
)

// RadioOption represents a single option in a radio group.
type RadioOption struct {
	Label       string
	Value       string
	Description string
	// Shortcut selects the option with a single key press, e.g. "1" or "y".
	Shortcut string
}

// RadioGroup is a component for selecting one option from a list.
type RadioGroup struct {
	options []RadioOption
	cursor  int
}

// NewRadioGroup creates a new radio group with the given options.
func NewRadioGroup(options []RadioOption) RadioGroup {
	return RadioGroup{
		options: options,
		cursor:  0,
	}
}

// Init implements tea.Model.
func (r RadioGroup) Init() tea.Cmd {
	return nil
}

// Update handles keyboard input for navigation.
func (r RadioGroup) Update(msg tea.Msg) (RadioGroup, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok || len(r.options) == 0 {
		return r, nil
	}

	switch keyMsg.Type {
	case tea.KeyUp, tea.KeyShiftTab:
		r.move(-1)
		return r, nil
	case tea.KeyDown, tea.KeyTab:
		r.move(1)
		return r, nil
	}

	switch keyMsg.String() {
	case "k":
		r.move(-1)
	case "j":
		r.move(1)
	}

	return r, nil
}

func (r *RadioGroup) move(delta int) {
	r.cursor = (r.cursor + delta + len(r.options)) % len(r.options)
}

// Shortcut moves the cursor to the option bound to key. It reports whether
// key matched an option; matching ignores case.
func (r *RadioGroup) Shortcut(key string) bool {
	for i, opt := range r.options {
		if opt.Shortcut != "" && strings.EqualFold(opt.Shortcut, key) {
			r.cursor = i
			return true
		}
	}
	return false
}

// View renders the radio group.
func (r RadioGroup) View() string {
	var b strings.Builder

	descStyle := lipgloss.NewStyle().
		Foreground(styles.Muted).
		MarginLeft(4)

	for i, opt := range r.options {
		cursor := "  "
		style := styles.Unfocused

		if i == r.cursor {
			cursor = styles.CursorIndicator + " "
			style = styles.Cursor
		}

		label := opt.Label
		if opt.Shortcut != "" {
			label = fmt.Sprintf("[%s] %s", opt.Shortcut, opt.Label)
		}
		b.WriteString(cursor + style.Render(label) + "\n")

		if opt.Description != "" {
			b.WriteString(descStyle.Render(opt.Description))
			b.WriteString("\n")
		}
	}

	return b.String()
}

// Selected returns the value of the currently selected option.
func (r RadioGroup) Selected() string {
	if len(r.options) == 0 {
		return ""
	}
	return r.options[r.cursor].Value
}

// SelectValue moves the cursor to the option with value v, if present.
func (r *RadioGroup) SelectValue(v string) {
	for i, opt := range r.options {
		if opt.Value == v {
			r.cursor = i
			return
		}
	}
}
