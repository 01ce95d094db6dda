// Package picker provides the interactive prompt used when no input file is
// given and none is found in the working directory.
package picker

import (
	"log/slog"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/leefowlercu/restore2fa/internal/tui/components"
	"github.com/leefowlercu/restore2fa/internal/tui/picker/steps"
	"github.com/leefowlercu/restore2fa/internal/tui/styles"
)

// Re-export step types for convenience.
type (
	Step       = steps.Step
	StepResult = steps.StepResult
	Selection  = steps.Selection
	Source     = steps.Source
)

const (
	StepContinue = steps.StepContinue
	StepNext     = steps.StepNext
	StepPrev     = steps.StepPrev

	SourceArchive  = steps.SourceArchive
	SourceDatabase = steps.SourceDatabase
)

// Result holds the outcome of the picker.
type Result struct {
	Selection Selection
	// Confirmed is true when every active step was answered.
	Confirmed bool
	Cancelled bool
	Err       error
}

// DefaultSteps returns the source, location and path steps.
func DefaultSteps() []Step {
	return []Step{
		steps.NewSourceStep(),
		steps.NewCopiedStep(),
		steps.NewPathStep(),
	}
}

// Model is the bubbletea model driving the picker steps.
type Model struct {
	steps     []Step
	current   int
	sel       *Selection
	progress  components.Progress
	err       error
	cancelled bool
	confirmed bool
	quitting  bool
}

// New creates a picker over stepList. sel carries the default file names.
func New(sel Selection, stepList []Step) Model {
	m := Model{
		steps: stepList,
		sel:   &sel,
	}
	m.syncProgress()
	return m
}

// Init initializes the first active step.
func (m Model) Init() tea.Cmd {
	if len(m.steps) == 0 {
		slog.Warn("picker initialized with no steps")
		return tea.Quit
	}
	return m.steps[m.current].Init(m.sel)
}

// Update handles input messages and delegates to the current step.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyCtrlC {
		slog.Debug("picker cancelled via Ctrl+C")
		m.cancelled = true
		m.quitting = true
		return m, tea.Quit
	}

	if m.current < 0 || m.current >= len(m.steps) {
		return m, nil
	}

	cmd, result := m.steps[m.current].Update(msg)
	switch result {
	case StepNext:
		return m.nextStep()
	case StepPrev:
		return m.prevStep()
	}

	return m, cmd
}

// View renders the picker UI.
func (m Model) View() string {
	if m.quitting {
		if m.cancelled {
			return styles.ErrorText.Render("Cancelled.") + "\n"
		}
		return ""
	}

	var b strings.Builder

	header := lipgloss.NewStyle().
		Bold(true).
		Foreground(styles.Primary).
		MarginBottom(1).
		Render("restore2fa")

	b.WriteString(header)
	b.WriteString("\n\n")
	b.WriteString(m.progress.View())
	b.WriteString("\n")

	if m.current >= 0 && m.current < len(m.steps) {
		b.WriteString(m.steps[m.current].View())
	}

	if m.err != nil {
		b.WriteString("\n\n")
		b.WriteString(steps.FormatError(m.err))
	}

	return styles.Container.Render(b.String())
}

// nextStep validates and applies the current step, then advances to the next
// active one.
func (m Model) nextStep() (tea.Model, tea.Cmd) {
	step := m.steps[m.current]

	if err := step.Validate(); err != nil {
		m.err = err
		return m, nil
	}
	if err := step.Apply(m.sel); err != nil {
		m.err = err
		return m, nil
	}
	m.err = nil

	next := m.findActive(m.current+1, 1)
	if next < 0 {
		slog.Debug("picker completed", "source", m.sel.Source, "copied", m.sel.Copied)
		m.confirmed = true
		m.quitting = true
		return m, tea.Quit
	}

	m.current = next
	m.syncProgress()
	return m, m.steps[m.current].Init(m.sel)
}

// prevStep goes back to the previous active step.
func (m Model) prevStep() (tea.Model, tea.Cmd) {
	prev := m.findActive(m.current-1, -1)
	if prev < 0 {
		return m, nil
	}

	m.err = nil
	m.current = prev
	m.syncProgress()
	return m, m.steps[m.current].Init(m.sel)
}

func (m Model) findActive(from, dir int) int {
	for i := from; i >= 0 && i < len(m.steps); i += dir {
		if m.steps[i].Active(m.sel) {
			return i
		}
	}
	return -1
}

// syncProgress rebuilds the indicator from the steps that currently apply.
func (m *Model) syncProgress() {
	var titles []string
	pos := 0
	for i, s := range m.steps {
		if i != m.current && !s.Active(m.sel) {
			continue
		}
		if i == m.current {
			pos = len(titles)
		}
		titles = append(titles, s.Title())
	}
	m.progress.SetSteps(titles)
	m.progress.SetCurrent(pos)
}

// Result returns the picker result after completion.
func (m Model) Result() Result {
	return Result{
		Selection: *m.sel,
		Confirmed: m.confirmed,
		Cancelled: m.cancelled,
		Err:       m.err,
	}
}

// Run shows the picker and blocks until the user finishes or cancels.
func Run(sel Selection, opts ...tea.ProgramOption) (Result, error) {
	p := tea.NewProgram(New(sel, DefaultSteps()), opts...)
	finalModel, err := p.Run()
	if err != nil {
		return Result{Err: err}, err
	}

	if m, ok := finalModel.(Model); ok {
		return m.Result(), nil
	}

	return Result{}, nil
}
