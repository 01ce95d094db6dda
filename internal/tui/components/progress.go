package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/leefowlercu/restore2fa/internal/tui/styles"
)

// Progress displays the current step of a multi-step prompt. The step list
// can change while the prompt runs, since later steps depend on earlier
// answers.
type Progress struct {
	steps   []string
	current int
}

// NewProgress creates a new progress indicator with the given step names.
func NewProgress(steps []string) Progress {
	return Progress{steps: steps}
}

// SetSteps replaces the step names and clamps the current position.
func (p *Progress) SetSteps(steps []string) {
	p.steps = steps
	p.SetCurrent(p.current)
}

// SetCurrent sets the current step, clamping to valid range.
func (p *Progress) SetCurrent(step int) {
	switch {
	case step < 0 || len(p.steps) == 0:
		p.current = 0
	case step >= len(p.steps):
		p.current = len(p.steps) - 1
	default:
		p.current = step
	}
}

// CurrentName returns the name of the current step.
func (p Progress) CurrentName() string {
	if p.current < 0 || p.current >= len(p.steps) {
		return ""
	}
	return p.steps[p.current]
}

// View renders the progress indicator.
func (p Progress) View() string {
	if len(p.steps) == 0 {
		return ""
	}

	var b strings.Builder

	filledStyle := lipgloss.NewStyle().Foreground(styles.Primary)
	emptyStyle := lipgloss.NewStyle().Foreground(styles.Muted)

	for i := range p.steps {
		if i <= p.current {
			b.WriteString(filledStyle.Render(styles.ProgressFilled))
		} else {
			b.WriteString(emptyStyle.Render(styles.ProgressEmpty))
		}
		if i < len(p.steps)-1 {
			b.WriteString(" ")
		}
	}

	b.WriteString("  ")
	b.WriteString(styles.MutedText.Render(fmt.Sprintf("Step %d of %d:", p.current+1, len(p.steps))))
	b.WriteString(" ")
	b.WriteString(styles.Title.Render(p.CurrentName()))
	b.WriteString("\n")

	return b.String()
}
