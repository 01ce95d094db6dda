// Package steps provides the steps of the interactive source picker.
package steps

import (
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
)

// Source is the kind of input the user wants to recover from.
type Source string

const (
	SourceArchive  Source = "archive"
	SourceDatabase Source = "database"
)

// Selection accumulates the answers given so far.
type Selection struct {
	Source Source
	// Copied is true when the user placed the file in the working directory.
	Copied bool
	Path   string

	// DefaultArchive and DefaultDatabase name the files looked for in the
	// working directory when Copied is true.
	DefaultArchive  string
	DefaultDatabase string
}

// DefaultPath returns the working-directory file name for the chosen source.
func (s *Selection) DefaultPath() string {
	name := s.DefaultArchive
	if s.Source == SourceDatabase {
		name = s.DefaultDatabase
	}
	return filepath.Clean(name)
}

// Noun returns a short description of the chosen source for prompts.
func (s *Selection) Noun() string {
	if s.Source == SourceDatabase {
		return "database file"
	}
	return "backup archive"
}

// StepResult indicates the result of a step update.
type StepResult int

const (
	// StepContinue indicates the step should continue processing.
	StepContinue StepResult = iota
	// StepNext indicates the picker should advance to the next step.
	StepNext
	// StepPrev indicates the picker should go back to the previous step.
	StepPrev
)

// Step is the interface that all picker steps implement.
type Step interface {
	// Init prepares the step from the answers so far. It is called when the
	// step becomes active.
	Init(sel *Selection) tea.Cmd

	// Update handles input messages and returns the result.
	Update(msg tea.Msg) (tea.Cmd, StepResult)

	// View renders the step's UI.
	View() string

	// Title returns the step's title for the progress indicator.
	Title() string

	// Active reports whether the step applies given the answers so far.
	Active(sel *Selection) bool

	// Validate checks if the step's input is valid.
	Validate() error

	// Apply records the step's answer. It is called when advancing.
	Apply(sel *Selection) error
}

// BaseStep provides common functionality for steps.
type BaseStep struct {
	title string
}

// NewBaseStep creates a new base step with the given title.
func NewBaseStep(title string) BaseStep {
	return BaseStep{title: title}
}

// Title returns the step's title.
func (b BaseStep) Title() string {
	return b.title
}

// Active returns true; steps that depend on earlier answers override it.
func (b BaseStep) Active(*Selection) bool {
	return true
}
