package progress

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/reqscan/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/reqscan/internal/core/domain"
)

func started(stage domain.Stage, detail string) messages.StageStarted {
	return messages.StageStarted{Progress: domain.Progress{Stage: stage, Detail: detail}}
}

func TestNew(t *testing.T) {
	m := New("Analysing spec.pdf", nil)

	require.NotNil(t, m)
	assert.NotNil(t, m.Init())
	assert.False(t, m.Finished())
	assert.False(t, m.Cancelled())
}

func TestModel_View_ShowsStages(t *testing.T) {
	m := New("Analysing spec.pdf", nil)

	view := m.View()

	assert.Contains(t, view, "Analysing spec.pdf")
	for _, stage := range []domain.Stage{
		domain.StageReading, domain.StageCleaning, domain.StageAnalysing,
		domain.StageParsing, domain.StageExporting,
	} {
		assert.Contains(t, view, stage.Description())
	}
	assert.Contains(t, view, "ctrl+c cancel")
}

func TestModel_StageProgress(t *testing.T) {
	m := New("run", nil)

	m.Update(started(domain.StageReading, ""))
	m.Update(started(domain.StageAnalysing, "segment 2/3"))

	view := m.View()
	assert.Contains(t, view, markDone+" "+domain.StageReading.Description())
	assert.Contains(t, view, "(segment 2/3)")
	assert.Contains(t, view, markPending+" "+domain.StageExporting.Description())
}

func TestModel_RunFinished_Quits(t *testing.T) {
	m := New("run", nil)
	result := &domain.AnalysisResult{RunID: "r1"}
	for _, stage := range domain.AllStages() {
		m.Update(started(stage, ""))
	}

	_, cmd := m.Update(messages.RunFinished{Result: result})

	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.True(t, m.Finished())
	assert.Same(t, result, m.Result())
	assert.NoError(t, m.Err())
	assert.Contains(t, m.View(), markDone+" "+domain.StageExporting.Description())
	assert.NotContains(t, m.View(), "ctrl+c")
}

func TestModel_RunFinished_MarksFailedStage(t *testing.T) {
	m := New("run", nil)
	m.Update(started(domain.StageReading, ""))
	m.Update(started(domain.StageCleaning, ""))
	m.Update(started(domain.StageAnalysing, ""))

	err := domain.WrapStage(domain.StageAnalysing, domain.ErrLLMUnavailable)
	m.Update(messages.RunFinished{Err: err})

	view := m.View()
	assert.Contains(t, view, markDone+" "+domain.StageCleaning.Description())
	assert.Contains(t, view, markFailed+" "+domain.StageAnalysing.Description())
	assert.Contains(t, view, markSkipped+" "+domain.StageExporting.Description())
	assert.ErrorIs(t, m.Err(), domain.ErrLLMUnavailable)
}

func TestModel_CancelKey(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	m := New("run", cancel)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})

	assert.Nil(t, cmd, "the view waits for the run to stop")
	assert.True(t, m.Cancelled())
	assert.ErrorIs(t, ctx.Err(), context.Canceled)
	assert.Contains(t, m.View(), "Cancelling...")

	_, cmd = m.Update(messages.RunFinished{Err: context.Canceled})
	require.NotNil(t, cmd)
	assert.True(t, errors.Is(m.Err(), context.Canceled))
}

func TestModel_OtherKeysIgnored(t *testing.T) {
	called := false
	m := New("run", func() { called = true })

	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'x'}})

	assert.False(t, called)
	assert.False(t, m.Cancelled())
}
