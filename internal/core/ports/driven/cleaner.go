package driven

import (
	"context"

	"github.com/custodia-labs/reqscan/internal/core/domain"
)

// TextCleaner is one step of the text preprocessing pipeline.
// Cleaners are chained (e.g., header removal, dehyphenation, whitespace).
type TextCleaner interface {
	// Name returns the cleaner name for logging and configuration.
	Name() string

	// Clean takes page-ordered text and returns the cleaned pages.
	// The number of pages may not change.
	Clean(ctx context.Context, pages []string) ([]string, error)
}

// TextPreprocessor chains TextCleaners and produces the text sent to the model.
type TextPreprocessor interface {
	// Process runs every cleaner over the pages and joins the result.
	Process(ctx context.Context, text *domain.ExtractedText) (domain.CleanedText, error)
}

// TextSegmenter splits cleaned text into pieces that fit the model input limit.
type TextSegmenter interface {
	// Split returns segments of at most maxChars runes each, in text order.
	Split(text string, maxChars int) []string
}
