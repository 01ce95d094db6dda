package steps

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/leefowlercu/restore2fa/internal/tui/components"
)

// SourceStep asks whether to recover from a backup archive or a bare
// database file.
type SourceStep struct {
	BaseStep

	radio components.RadioGroup
}

// NewSourceStep creates the source choice step.
func NewSourceStep() *SourceStep {
	return &SourceStep{
		BaseStep: NewBaseStep("Source"),
		radio: components.NewRadioGroup([]components.RadioOption{
			{
				Label:       "Backup archive",
				Value:       string(SourceArchive),
				Description: "A .tar.gz app data backup containing the authenticator database",
				Shortcut:    "1",
			},
			{
				Label:       "Database file",
				Value:       string(SourceDatabase),
				Description: "The databases file copied out of the app's data directory",
				Shortcut:    "2",
			},
		}),
	}
}

// Init restores the previous answer, if any.
func (s *SourceStep) Init(sel *Selection) tea.Cmd {
	if sel.Source != "" {
		s.radio.SelectValue(string(sel.Source))
	}
	return nil
}

// Update handles input.
func (s *SourceStep) Update(msg tea.Msg) (tea.Cmd, StepResult) {
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
func (s *SourceStep) View() string {
	var b strings.Builder
	b.WriteString(question("What do you want to recover from?"))
	b.WriteString("\n\n")
	b.WriteString(s.radio.View())
	b.WriteString("\n")
	b.WriteString(NavigationHelp("1/2"))
	return b.String()
}

// Validate always passes; one option is always selected.
func (s *SourceStep) Validate() error {
	return nil
}

// Apply records the chosen source.
func (s *SourceStep) Apply(sel *Selection) error {
	sel.Source = Source(s.radio.Selected())
	return nil
}
