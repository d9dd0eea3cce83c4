// Package messages defines Bubbletea message types for the TUI.
// Messages carry pipeline events from the analysis goroutine into the view.
package messages

import (
	"github.com/custodia-labs/reqscan/internal/core/domain"
)

// StageStarted is sent when the pipeline enters a new stage.
type StageStarted struct {
	Progress domain.Progress
}

// RunFinished carries the outcome of the analysis back to the model.
// Result may be set together with Err when only some reports failed.
type RunFinished struct {
	Result *domain.AnalysisResult
	Err    error
}
