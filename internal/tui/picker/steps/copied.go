package steps

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/leefowlercu/restore2fa/internal/tui/components"
)

const (
	answerYes = "yes"
	answerNo  = "no"
)

// CopiedStep asks whether the chosen file was copied into the working
// directory under its default name.
type CopiedStep struct {
	BaseStep

	radio  components.RadioGroup
	prompt string
}

// NewCopiedStep creates the working-directory question step.
func NewCopiedStep() *CopiedStep {
	return &CopiedStep{
		BaseStep: NewBaseStep("Location"),
		radio: components.NewRadioGroup([]components.RadioOption{
			{Label: "Yes", Value: answerYes, Shortcut: "y"},
			{Label: "No, I will enter its path", Value: answerNo, Shortcut: "n"},
		}),
	}
}

// Init builds the question from the chosen source.
func (s *CopiedStep) Init(sel *Selection) tea.Cmd {
	s.prompt = fmt.Sprintf("Have you copied the %s to the working directory as %q?", sel.Noun(), sel.DefaultPath())
	if sel.Source != "" && !sel.Copied && sel.Path != "" {
		s.radio.SelectValue(answerNo)
	}
	return nil
}

// Update handles input.
func (s *CopiedStep) Update(msg tea.Msg) (tea.Cmd, StepResult) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.Type {
		case tea.KeyEnter:
			return nil, StepNext
		case tea.KeyEsc:
			return nil, StepPrev
		}
		if s.radio.Shortcut(keyMsg.String()) {
			return nil, StepNext
		}
	}

	var cmd tea.Cmd
	s.radio, cmd = s.radio.Update(msg)
	return cmd, StepContinue
}

// View renders the step.
func (s *CopiedStep) View() string {
	var b strings.Builder
	b.WriteString(question(s.prompt))
	b.WriteString("\n\n")
	b.WriteString(s.radio.View())
	b.WriteString("\n")
	b.WriteString(NavigationHelp("y/n"))
	return b.String()
}

// Validate always passes.
func (s *CopiedStep) Validate() error {
	return nil
}

// Apply records the answer. A yes answer resolves the path to the default
// file name.
func (s *CopiedStep) Apply(sel *Selection) error {
	sel.Copied = s.radio.Selected() == answerYes
	if sel.Copied {
		sel.Path = sel.DefaultPath()
	}
	return nil
}
