// Package tui provides the terminal progress display for analysis runs.
package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/reqscan/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/reqscan/internal/adapters/driving/tui/progress"
	"github.com/custodia-labs/reqscan/internal/core/domain"
)

// RunFunc performs an analysis, reporting stage transitions through report.
type RunFunc func(ctx context.Context, report domain.ProgressFunc) (*domain.AnalysisResult, error)

// RunWithProgress runs fn in the background while a spinner view tracks its
// stages. Cancelling from the keyboard cancels the context passed to fn.
func RunWithProgress(ctx context.Context, title string, fn RunFunc, opts ...tea.ProgramOption) (*domain.AnalysisResult, error) {
	if fn == nil {
		return nil, ErrMissingRunFunc
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	model := progress.New(title, cancel)
	p := tea.NewProgram(model, append([]tea.ProgramOption{tea.WithContext(ctx)}, opts...)...)

	type outcome struct {
		result *domain.AnalysisResult
		err    error
	}
	done := make(chan outcome, 1)
	go func() {
		result, err := fn(ctx, func(pr domain.Progress) {
			p.Send(messages.StageStarted{Progress: pr})
		})
		done <- outcome{result: result, err: err}
		p.Send(messages.RunFinished{Result: result, Err: err})
	}()

	_, runErr := p.Run()

	// The program may stop before the run does (killed, context cancelled).
	cancel()
	out := <-done

	if runErr != nil && out.err == nil && out.result == nil {
		return nil, fmt.Errorf("progress view: %w", runErr)
	}
	return out.result, out.err
}
