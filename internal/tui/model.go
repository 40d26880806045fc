// Package tui renders the progress and outcome of a one-shot campaign run,
// either as a spinner TUI on a terminal or as plain text lines.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/smileynet/campaignmgr/internal/campaign"
)

// Step names of a run, in order.
const (
	StepHealth   = "health check"
	StepGenerate = "generate campaign"
)

// Steps lists the run steps in display order.
var Steps = []string{StepHealth, StepGenerate}

// StepStatus represents the current state of a run step.
type StepStatus string

const (
	StatusPending StepStatus = "pending"
	StatusRunning StepStatus = "running"
	StatusPassed  StepStatus = "passed"
	StatusFailed  StepStatus = "failed"
)

// StepState tracks the display state of a single step.
type StepState struct {
	Name     string
	Status   StepStatus
	Detail   string
	Duration time.Duration
}

// StepUpdateMsg reports progress of one step.
type StepUpdateMsg struct {
	Step     string
	Status   StepStatus
	Detail   string
	Duration time.Duration
}

// RunDoneMsg carries the generated campaign and the task list after it.
type RunDoneMsg struct {
	Result campaign.Result
	Tasks  []campaign.ReviewTask
}

// RunErrorMsg signals that the run failed.
type RunErrorMsg struct {
	Err error
}

// Model is the Bubble Tea model for run progress.
type Model struct {
	steps      []StepState
	spinner    spinner.Model
	done       bool
	result     *RunDoneMsg
	err        error
	cancelFunc context.CancelFunc
}

// ModelOption configures a Model.
type ModelOption func(*Model)

// WithCancelFunc sets the function called when the user quits early.
func WithCancelFunc(cancel context.CancelFunc) ModelOption {
	return func(m *Model) { m.cancelFunc = cancel }
}

// NewModel creates a Model with the given steps pending.
func NewModel(stepNames []string, opts ...ModelOption) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot

	steps := make([]StepState, len(stepNames))
	for i, name := range stepNames {
		steps[i] = StepState{Name: name, Status: StatusPending}
	}

	m := Model{steps: steps, spinner: s}
	for _, opt := range opts {
		opt(&m)
	}
	return m
}

// Init starts the spinner tick.
func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update handles incoming messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case StepUpdateMsg:
		for i := range m.steps {
			if m.steps[i].Name == msg.Step {
				m.steps[i].Status = msg.Status
				m.steps[i].Detail = msg.Detail
				if msg.Duration > 0 {
					m.steps[i].Duration = msg.Duration
				}
				break
			}
		}
		return m, nil

	case RunDoneMsg:
		m.done = true
		m.result = &msg
		return m, tea.Quit

	case RunErrorMsg:
		m.done = true
		m.err = msg.Err
		return m, tea.Quit

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			if m.cancelFunc != nil {
				m.cancelFunc()
			}
			m.done = true
			return m, tea.Quit
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

// View renders the step list and, once finished, the outcome.
func (m Model) View() string {
	var b strings.Builder

	for _, step := range m.steps {
		line := fmt.Sprintf("  %s %s", statusIndicator(step.Status, m.spinner.View()), step.Name)
		if step.Duration > 0 {
			line += fmt.Sprintf(" %.1fs", step.Duration.Seconds())
		}
		if step.Detail != "" {
			line += ": " + step.Detail
		}
		b.WriteString(line + "\n")
	}

	switch {
	case m.result != nil:
		b.WriteString("\n")
		FormatResult(&b, m.result.Result, m.result.Tasks)
	case m.done && m.err != nil:
		fmt.Fprintf(&b, "\n  Error: %s\n", m.err)
	}

	return b.String()
}

// statusIndicator returns the Unicode indicator for a step status.
func statusIndicator(status StepStatus, spinnerView string) string {
	switch status {
	case StatusPending:
		return "○"
	case StatusRunning:
		return spinnerView
	case StatusPassed:
		return "✓"
	case StatusFailed:
		return "✗"
	default:
		return "?"
	}
}
