package driving

import (
	"context"

	"github.com/custodia-labs/reqscan/internal/core/domain"
)

// WatchOptions configures watch mode.
type WatchOptions struct {
	// Analyze is applied to every file analysed.
	Analyze domain.AnalyzeOptions

	// OnResult is called after each file. Exactly one of result and err is set.
	OnResult func(path string, result *domain.AnalysisResult, err error)
}

// WatchService analyses documents as they appear in a directory.
type WatchService interface {
	// Watch blocks until ctx is cancelled. Failures on single files are
	// reported through OnResult and do not stop watching.
	Watch(ctx context.Context, dir string, opts WatchOptions) error
}
