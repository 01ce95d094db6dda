package steps

import (
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/leefowlercu/restore2fa/internal/config"
	"github.com/leefowlercu/restore2fa/internal/fsutil"
	"github.com/leefowlercu/restore2fa/internal/tui/components"
)

// PathStep asks for the location of the chosen file. It only runs when the
// file was not copied into the working directory.
type PathStep struct {
	BaseStep

	input components.TextInput
}

// NewPathStep creates the path prompt step.
func NewPathStep() *PathStep {
	s := &PathStep{
		BaseStep: NewBaseStep("Path"),
		input:    components.NewTextInput("Path", ""),
	}
	s.input.SetValidator(validatePath)
	return s
}

func validatePath(value string) error {
	path := strings.TrimSpace(value)
	if path == "" {
		return errors.New("path is required")
	}
	if !fsutil.FileExists(config.ExpandPath(path)) {
		return fmt.Errorf("file %s does not exist", path)
	}
	return nil
}

// Active reports whether the path still needs to be asked for.
func (s *PathStep) Active(sel *Selection) bool {
	return !sel.Copied
}

// Init focuses the input and labels it for the chosen source.
func (s *PathStep) Init(sel *Selection) tea.Cmd {
	s.input.SetLabel(fmt.Sprintf("Path to the %s:", sel.Noun()))
	s.input.SetPlaceholder(sel.DefaultPath())
	if sel.Path != "" && !sel.Copied {
		s.input.SetValue(sel.Path)
	}
	return s.input.Focus()
}

// Update handles input.
func (s *PathStep) Update(msg tea.Msg) (tea.Cmd, StepResult) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.Type {
		case tea.KeyEnter:
			return nil, StepNext
		case tea.KeyEsc:
			s.input.Blur()
			return nil, StepPrev
		}
	}

	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	return cmd, StepContinue
}

// View renders the step.
func (s *PathStep) View() string {
	var b strings.Builder
	b.WriteString(s.input.View())
	b.WriteString("\n\n")
	b.WriteString(NavigationHelpWithInput())
	return b.String()
}

// Validate checks that the entered file exists.
func (s *PathStep) Validate() error {
	return s.input.Validate()
}

// Apply records the entered path with ~ expanded.
func (s *PathStep) Apply(sel *Selection) error {
	sel.Path = config.ExpandPath(strings.TrimSpace(s.input.Value()))
	s.input.Blur()
	return nil
}
