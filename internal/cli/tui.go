package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/archmap/pkg/pipeline"
)

// =============================================================================
// ProgressModel - Interactive pipeline progress
// =============================================================================

// progressFrames are the spinner glyphs, shared with the plain spinner.
var progressFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// doneSteps lists the step order so completed stages can be ticked off.
var doneSteps = []pipeline.Step{
	pipeline.StepReadFolder,
	pipeline.StepConnectServer,
	pipeline.StepRetrieveSymbols,
	pipeline.StepRetrieveReferences,
	pipeline.StepBuildArchitecture,
	pipeline.StepLiftCrossScope,
	pipeline.StepComputeMetrics,
	pipeline.StepSort,
	pipeline.StepLayout,
	pipeline.StepBuildViewModels,
}

// ProgressModel is the bubbletea model that renders pipeline progress from
// the controller's state stream.
type ProgressModel struct {
	states <-chan pipeline.State
	state  pipeline.State
	frame  int
	quit   bool
}

type stateMsg pipeline.State

type tickMsg time.Time

// NewProgressModel creates a progress model reading from the given stream.
func NewProgressModel(states <-chan pipeline.State) ProgressModel {
	return ProgressModel{states: states}
}

func (m ProgressModel) Init() tea.Cmd {
	return tea.Batch(m.waitForState(), tick())
}

func (m ProgressModel) waitForState() tea.Cmd {
	return func() tea.Msg {
		s, ok := <-m.states
		if !ok {
			return nil
		}
		return stateMsg(s)
	}
}

func tick() tea.Cmd {
	return tea.Tick(80*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m ProgressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" || msg.String() == "q" {
			m.quit = true
			return m, tea.Quit
		}
	case stateMsg:
		m.state = pipeline.State(msg)
		if m.state.Terminal() {
			return m, tea.Quit
		}
		return m, m.waitForState()
	case tickMsg:
		m.frame++
		return m, tick()
	}
	return m, nil
}

func (m ProgressModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("archmap"))
	b.WriteString("\n\n")

	current := m.state.Step
	for _, step := range doneSteps {
		switch {
		case m.state.Kind == pipeline.StateReady || step < current:
			b.WriteString("  " + styleIconSuccess.Render(iconSuccess) + " " + StyleDim.Render(step.String()))
		case step == current && !m.state.Terminal():
			frame := progressFrames[m.frame%len(progressFrames)]
			b.WriteString("  " + styleIconSpinner.Render(frame) + " " + StyleValue.Render(step.String()))
		default:
			b.WriteString("    " + StyleDim.Render(step.String()))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	switch m.state.Kind {
	case pipeline.StateReady:
		b.WriteString(StyleSuccess.Render("done") + "\n")
	case pipeline.StateFailed:
		b.WriteString(styleIconError.Render(iconError) + " " + m.state.Message + "\n")
	default:
		b.WriteString(StyleDim.Render(m.state.Describe()) + "\n")
	}
	return b.String()
}

// runWithProgressView runs the pipeline while displaying interactive
// progress, and returns the pipeline's result.
func runWithProgressView(ctx context.Context, ctrl *pipeline.Controller) (*pipeline.Result, error) {
	states, cancel := ctrl.Subscribe()
	defer cancel()

	runCtx, stop := context.WithCancel(ctx)
	defer stop()

	type outcome struct {
		result *pipeline.Result
		err    error
	}
	done := make(chan outcome, 1)
	go func() {
		result, err := ctrl.Run(runCtx)
		done <- outcome{result: result, err: err}
	}()

	program := tea.NewProgram(NewProgressModel(states), tea.WithContext(ctx))
	finalModel, err := program.Run()
	if err != nil {
		stop()
		<-done
		return nil, err
	}
	if m, ok := finalModel.(ProgressModel); ok && m.quit {
		stop()
	}

	out := <-done
	if out.err != nil {
		return nil, out.err
	}
	fmt.Println()
	return out.result, nil
}
