// Package progress provides the spinner view shown while a document is analysed.
package progress

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/reqscan/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/reqscan/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/reqscan/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/reqscan/internal/core/domain"
)

// Stage markers.
const (
	markDone    = "✓"
	markFailed  = "✗"
	markPending = "·"
	markSkipped = "-"
)

// Model renders pipeline stages with a spinner on the running one.
// It implements tea.Model.
type Model struct {
	styles  *styles.Styles
	keys    *keymap.KeyMap
	spinner spinner.Model

	title  string
	cancel context.CancelFunc

	current domain.Stage
	detail  string
	seen    map[domain.Stage]bool

	finished  bool
	cancelled bool
	result    *domain.AnalysisResult
	err       error
}

// New creates a progress view. cancel is called when the user aborts.
func New(title string, cancel context.CancelFunc) *Model {
	s := styles.DefaultStyles()
	sp := spinner.New(
		spinner.WithSpinner(spinner.Dot),
		spinner.WithStyle(s.Spinner),
	)
	return &Model{
		styles:  s,
		keys:    keymap.DefaultKeyMap(),
		spinner: sp,
		title:   title,
		cancel:  cancel,
		seen:    make(map[domain.Stage]bool),
	}
}

// Init starts the spinner.
func (m *Model) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update handles pipeline events, key presses and spinner ticks.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case messages.StageStarted:
		m.current = msg.Progress.Stage
		m.detail = msg.Progress.Detail
		m.seen[m.current] = true
		return m, nil

	case messages.RunFinished:
		m.finished = true
		m.result = msg.Result
		m.err = msg.Err
		return m, tea.Quit

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Cancel) && !m.cancelled {
			m.cancelled = true
			if m.cancel != nil {
				m.cancel()
			}
		}
		return m, nil

	case spinner.TickMsg:
		if m.finished {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

// View renders the stage list.
func (m *Model) View() string {
	var b strings.Builder
	b.WriteString(m.styles.Title.Render(m.title))
	b.WriteString("\n\n")

	failed, hasFailed := domain.FailedStage(m.err)
	for _, stage := range domain.AllStages() {
		if stage == domain.StageDone {
			continue
		}
		b.WriteString("  ")
		b.WriteString(m.stageLine(stage, failed, hasFailed))
		b.WriteString("\n")
	}

	switch {
	case m.cancelled && !m.finished:
		b.WriteString("\n")
		b.WriteString(m.styles.Warning.Render("Cancelling..."))
		b.WriteString("\n")
	case !m.finished:
		help := m.keys.Cancel.Help()
		b.WriteString("\n")
		b.WriteString(m.styles.Help.Render(fmt.Sprintf("%s %s", help.Key, help.Desc)))
		b.WriteString("\n")
	}
	return b.String()
}

func (m *Model) stageLine(stage, failed domain.Stage, hasFailed bool) string {
	label := stage.Description()

	switch {
	case hasFailed && stage == failed:
		return m.styles.Error.Render(markFailed + " " + label)
	case stage == m.current && !m.finished:
		line := m.spinner.View() + " " + m.styles.Active.Render(label)
		if m.detail != "" {
			line += " " + m.styles.Detail.Render("("+m.detail+")")
		}
		return line
	case m.seen[stage]:
		return m.styles.Done.Render(markDone + " " + label)
	case m.finished:
		return m.styles.Pending.Render(markSkipped + " " + label)
	default:
		return m.styles.Pending.Render(markPending + " " + label)
	}
}

// Result returns the analysis result once finished.
func (m *Model) Result() *domain.AnalysisResult {
	return m.result
}

// Err returns the analysis error once finished.
func (m *Model) Err() error {
	return m.err
}

// Finished reports whether the run has ended.
func (m *Model) Finished() bool {
	return m.finished
}

// Cancelled reports whether the user aborted the run.
func (m *Model) Cancelled() bool {
	return m.cancelled
}
