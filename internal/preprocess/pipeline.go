// Package preprocess provides the text cleaning pipeline that runs between
// document reading and model analysis.
package preprocess

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/reqscan/internal/core/domain"
	"github.com/custodia-labs/reqscan/internal/core/ports/driven"
)

// Ensure Pipeline implements the interface.
var _ driven.TextPreprocessor = (*Pipeline)(nil)

// Pipeline chains multiple TextCleaners and runs them in order.
type Pipeline struct {
	cleaners []driven.TextCleaner
}

// NewPipeline creates a new cleaning pipeline with the given cleaners.
// Cleaners are executed in the order provided.
func NewPipeline(cleaners ...driven.TextCleaner) *Pipeline {
	return &Pipeline{
		cleaners: cleaners,
	}
}

// Process runs the pages through all cleaners in order and joins the
// non-blank pages with a paragraph break.
func (p *Pipeline) Process(ctx context.Context, text *domain.ExtractedText) (domain.CleanedText, error) {
	if text == nil {
		return "", fmt.Errorf("%w: text is nil", domain.ErrInvalidInput)
	}

	pages := make([]string, len(text.Pages))
	copy(pages, text.Pages)

	for _, cleaner := range p.cleaners {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		out, err := cleaner.Clean(ctx, pages)
		if err != nil {
			return "", fmt.Errorf("cleaner %s: %w", cleaner.Name(), err)
		}
		if len(out) != len(pages) {
			return "", fmt.Errorf("cleaner %s: returned %d pages, expected %d", cleaner.Name(), len(out), len(pages))
		}
		pages = out
	}

	kept := make([]string, 0, len(pages))
	for _, page := range pages {
		if page = strings.TrimSpace(page); page != "" {
			kept = append(kept, page)
		}
	}
	return domain.CleanedText(strings.Join(kept, "\n\n")), nil
}

// Add appends a cleaner to the pipeline.
func (p *Pipeline) Add(cleaner driven.TextCleaner) {
	p.cleaners = append(p.cleaners, cleaner)
}

// Len returns the number of cleaners in the pipeline.
func (p *Pipeline) Len() int {
	return len(p.cleaners)
}

// Names returns the cleaner names in execution order.
func (p *Pipeline) Names() []string {
	names := make([]string, 0, len(p.cleaners))
	for _, c := range p.cleaners {
		names = append(names, c.Name())
	}
	return names
}
