package ui

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"

	"abapai/config"
	"abapai/model"
)

// CancelledMessage is the failure reported when the user aborts a running analysis.
const CancelledMessage = "Analysis cancelled."

type analysisDoneMsg struct {
	result model.AnalysisResult
}

// progressModel shows a spinner while an analysis runs.
type progressModel struct {
	spinner   spinner.Model
	label     string
	started   time.Time
	run       func() model.AnalysisResult
	cancel    context.CancelFunc
	result    model.AnalysisResult
	done      bool
	cancelled bool
}

func newProgressModel(label string, run func() model.AnalysisResult, cancel context.CancelFunc) progressModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = SuccessStyle

	return progressModel{
		spinner: s,
		label:   label,
		started: time.Now(),
		run:     run,
		cancel:  cancel,
	}
}

func (m progressModel) Init() tea.Cmd {
	run := m.run
	return tea.Batch(m.spinner.Tick, func() tea.Msg {
		return analysisDoneMsg{result: run()}
	})
}

func (m progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case analysisDoneMsg:
		m.result = msg.result
		m.done = true
		return m, tea.Quit

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			if !m.cancelled {
				m.cancelled = true
				m.cancel()
			}
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m progressModel) View() string {
	if m.done {
		return ""
	}
	if m.cancelled {
		return m.spinner.View() + " " + DimStyle.Render("Cancelling...") + "\n"
	}

	elapsed := time.Since(m.started).Truncate(time.Second)
	return fmt.Sprintf("%s %s %s\n%s\n",
		m.spinner.View(), m.label, DimStyle.Render(elapsed.String()),
		HelpStyle.Render(FormatFooter("Ctrl+C", "Cancel")))
}

// Outcome returns the analysis result, or a cancellation failure when the
// user aborted before the provider answered.
func (m progressModel) Outcome() model.AnalysisResult {
	if m.cancelled {
		return model.Failure(CancelledMessage)
	}
	return m.result
}

// IsTerminal reports whether w is an interactive terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// RunAnalysis runs fn while showing a spinner with label on out. When out is
// not a terminal fn runs directly with no output.
func RunAnalysis(ctx context.Context, out io.Writer, label string, fn func(context.Context) model.AnalysisResult) model.AnalysisResult {
	if !IsTerminal(out) {
		return fn(ctx)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	m := newProgressModel(label, func() model.AnalysisResult { return fn(ctx) }, cancel)

	opts := []tea.ProgramOption{tea.WithOutput(out), tea.WithContext(ctx)}
	if !IsTerminal(os.Stdin) {
		opts = append(opts, tea.WithInput(nil))
	}

	final, err := tea.NewProgram(m, opts...).Run()
	if err != nil {
		config.Logger.Debug().Err(err).Msg("progress view stopped")
		if ctx.Err() != nil {
			return model.Failure(CancelledMessage)
		}
		return model.FailureFromError(err)
	}

	pm, ok := final.(progressModel)
	if !ok || !pm.done {
		return model.Failure(CancelledMessage)
	}
	return pm.Outcome()
}
