package tui

import (
	"bytes"
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/reqscan/internal/core/domain"
)

func testProgramOptions(out *bytes.Buffer) []tea.ProgramOption {
	return []tea.ProgramOption{
		tea.WithInput(nil),
		tea.WithOutput(out),
		tea.WithoutSignalHandler(),
	}
}

func TestRunWithProgress_ReturnsResult(t *testing.T) {
	var out bytes.Buffer
	want := &domain.AnalysisResult{RunID: "r1"}

	got, err := RunWithProgress(context.Background(), "Analysing spec.pdf",
		func(_ context.Context, report domain.ProgressFunc) (*domain.AnalysisResult, error) {
			for _, stage := range domain.AllStages() {
				report(domain.Progress{Stage: stage})
			}
			return want, nil
		},
		testProgramOptions(&out)...)

	require.NoError(t, err)
	assert.Same(t, want, got)
	assert.Contains(t, out.String(), "Analysing spec.pdf")
}

func TestRunWithProgress_ReturnsError(t *testing.T) {
	var out bytes.Buffer
	runErr := domain.WrapStage(domain.StageReading, domain.ErrNotFound)

	got, err := RunWithProgress(context.Background(), "run",
		func(context.Context, domain.ProgressFunc) (*domain.AnalysisResult, error) {
			return nil, runErr
		},
		testProgramOptions(&out)...)

	assert.Nil(t, got)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRunWithProgress_ContextCancelled(t *testing.T) {
	var out bytes.Buffer
	ctx, cancel := context.WithCancel(context.Background())

	_, err := RunWithProgress(ctx, "run",
		func(ctx context.Context, _ domain.ProgressFunc) (*domain.AnalysisResult, error) {
			cancel()
			<-ctx.Done()
			return nil, ctx.Err()
		},
		testProgramOptions(&out)...)

	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunWithProgress_NilFunc(t *testing.T) {
	_, err := RunWithProgress(context.Background(), "run", nil)

	assert.ErrorIs(t, err, ErrMissingRunFunc)
}
