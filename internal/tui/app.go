// Package tui renders live gate progress for interactive check runs.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/relgate/relgate/internal/gate"
	"github.com/relgate/relgate/pkg/release"
)

// StepStartedMsg marks a pipeline step as running.
type StepStartedMsg struct {
	Step release.Step
}

// StepFinishedMsg records the outcome of a finished step.
type StepFinishedMsg struct {
	Step   release.Step
	Passed bool
	Detail string
}

// RunDoneMsg signals that the gate run has completed.
type RunDoneMsg struct {
	Status  release.RunStatus
	Message string
}

// Step display states.
const (
	stepPending = iota
	stepRunning
	stepPassed
	stepFailed
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true)
	passStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	failStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	pendingStyle = lipgloss.NewStyle().Faint(true)
	detailStyle  = lipgloss.NewStyle().Faint(true)
)

// stepView holds the display state of one pipeline step.
type stepView struct {
	step   release.Step
	status int
	detail string
}

// App is the bubbletea model for an interactive gate run.
type App struct {
	// project is the display name shown in the header.
	project string
	// steps is the pipeline in execution order.
	steps []stepView
	// spin animates the currently running step.
	spin spinner.Model
	// done indicates the gate run has completed.
	done bool
	// status is the final run status once done.
	status release.RunStatus
	// message holds the final verdict line.
	message string
	// quitting suppresses the final render on exit.
	quitting bool
	// width and height track the terminal size.
	width  int
	height int
}

// New creates an App for the given project and pipeline.
func New(project string, steps []release.Step) *App {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	views := make([]stepView, len(steps))
	for i, step := range steps {
		views[i] = stepView{step: step, status: stepPending}
	}

	return &App{
		project: project,
		steps:   views,
		spin:    s,
	}
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	return a.spin.Tick
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			a.quitting = true
			return a, tea.Quit
		}

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height

	case spinner.TickMsg:
		var cmd tea.Cmd
		a.spin, cmd = a.spin.Update(msg)
		return a, cmd

	case StepStartedMsg:
		a.setStep(msg.Step, stepRunning, "")

	case StepFinishedMsg:
		status := stepPassed
		if !msg.Passed {
			status = stepFailed
		}
		a.setStep(msg.Step, status, msg.Detail)

	case RunDoneMsg:
		a.done = true
		a.status = msg.Status
		a.message = msg.Message
	}

	return a, nil
}

// setStep updates the display state of a step.
func (a *App) setStep(step release.Step, status int, detail string) {
	for i := range a.steps {
		if a.steps[i].step == step {
			a.steps[i].status = status
			a.steps[i].detail = detail
			return
		}
	}
}

// View implements tea.Model.
func (a *App) View() string {
	if a.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("Release gate: %s", a.project)))
	b.WriteString("\n\n")

	for _, sv := range a.steps {
		// Pad before styling so ANSI codes do not skew the column.
		title := fmt.Sprintf("%-24s", sv.step.Title())

		var glyph string
		switch sv.status {
		case stepRunning:
			glyph = a.spin.View()
		case stepPassed:
			glyph = passStyle.Render("✓")
		case stepFailed:
			glyph = failStyle.Render("✗")
		default:
			glyph = pendingStyle.Render("·")
			title = pendingStyle.Render(title)
		}

		line := fmt.Sprintf("  %s %s", glyph, title)
		if sv.detail != "" {
			line += " " + detailStyle.Render(sv.detail)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(a.viewFooter())
	b.WriteString("\n")
	return b.String()
}

// viewFooter renders the verdict line or the key hint.
func (a *App) viewFooter() string {
	if a.done {
		if a.status == release.RunPassed {
			return passStyle.Render(fmt.Sprintf("✓ %s", a.message)) + " | Press q to exit"
		}
		return failStyle.Render(fmt.Sprintf("✗ %s", a.message)) + " | Press q to exit"
	}
	return "Press q to quit"
}

// Done reports whether the gate run has completed.
func (a *App) Done() bool {
	return a.done
}

// Status returns the final run status once Done reports true.
func (a *App) Status() release.RunStatus {
	return a.status
}

// eventToMsg translates a gate event into the program message it
// should produce.
func eventToMsg(ev gate.Event) tea.Msg {
	if ev.Result == nil {
		return StepStartedMsg{Step: ev.Step}
	}
	detail := ev.Result.Detail
	if !ev.Result.Passed && ev.Result.Err != nil {
		detail = ev.Result.Err.Error()
	}
	return StepFinishedMsg{Step: ev.Step, Passed: ev.Result.Passed, Detail: detail}
}

// Observer returns a gate observer that forwards step events to the
// program. The engine calls it from the run goroutine; Send is safe
// for concurrent use.
func Observer(p *tea.Program) gate.Observer {
	return func(ev gate.Event) {
		p.Send(eventToMsg(ev))
	}
}

// NewProgram creates a bubbletea program for an interactive gate run.
// The returned program receives gate progress via Send.
func NewProgram(project string, steps []release.Step) (*tea.Program, *App) {
	app := New(project, steps)
	p := tea.NewProgram(app, tea.WithAltScreen())
	return p, app
}
