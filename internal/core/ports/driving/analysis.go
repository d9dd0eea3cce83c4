package driving

import (
	"context"

	"github.com/custodia-labs/reqscan/internal/core/domain"
)

// AnalysisService runs the requirements analysis pipeline.
type AnalysisService interface {
	// Analyze reads, cleans, analyses and exports a single document.
	// Errors carry the failing stage (see domain.FailedStage).
	Analyze(ctx context.Context, path string, opts domain.AnalyzeOptions) (*domain.AnalysisResult, error)

	// Extract reads and cleans a document without calling the model.
	// The raw extraction is returned alongside the cleaned text.
	Extract(ctx context.Context, path string) (domain.CleanedText, *domain.ExtractedText, error)

	// ParseAndExport parses a saved model response and writes reports for sourcePath.
	ParseAndExport(ctx context.Context, response, sourcePath string, opts domain.AnalyzeOptions) (*domain.AnalysisResult, error)
}
