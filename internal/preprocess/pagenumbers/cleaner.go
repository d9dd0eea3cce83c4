// Package pagenumbers drops page markers left behind by text extraction.
package pagenumbers

import (
	"context"
	"regexp"
	"strings"

	"github.com/custodia-labs/reqscan/internal/core/ports/driven"
)

// Ensure Cleaner implements the interface.
var _ driven.TextCleaner = (*Cleaner)(nil)

// Name is the cleaner name used in configuration.
const Name = "pagenumbers"

// markerLine matches lines that hold nothing but a page marker:
// "12", "- 12 -", "12/40", "Page 3", "Page 3 of 10", "Seite 3 von 10", "S. 3".
var markerLine = regexp.MustCompile(`(?i)^(?:` +
	`\d{1,4}` +
	`|[-–—]\s*\d{1,4}\s*[-–—]` +
	`|\d{1,4}\s*/\s*\d{1,4}` +
	`|(?:page|seite|pg\.|p\.|s\.)\s*\d{1,4}(?:\s*(?:of|von|/)\s*\d{1,4})?` +
	`)$`)

// inlineMarker matches page markers embedded in a longer line.
var inlineMarker = regexp.MustCompile(`(?i)\b(?:seite\s+\d+\s+von\s+\d+|page\s+\d+\s+of\s+\d+)\b`)

// Cleaner removes page number lines.
type Cleaner struct {
	inline bool
}

// Option configures the cleaner.
type Option func(*Cleaner)

// WithInline toggles removal of markers inside longer lines.
func WithInline(enabled bool) Option {
	return func(c *Cleaner) {
		c.inline = enabled
	}
}

// New creates a page number cleaner.
func New(opts ...Option) *Cleaner {
	c := &Cleaner{inline: true}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Name returns the cleaner name.
func (c *Cleaner) Name() string {
	return Name
}

// Clean drops marker-only lines from every page.
func (c *Cleaner) Clean(_ context.Context, pages []string) ([]string, error) {
	out := make([]string, len(pages))
	for i, page := range pages {
		lines := strings.Split(page, "\n")
		kept := make([]string, 0, len(lines))
		for _, line := range lines {
			if IsMarker(line) {
				continue
			}
			if c.inline {
				stripped := inlineMarker.ReplaceAllString(line, "")
				if stripped != line && strings.TrimSpace(stripped) == "" {
					continue
				}
				line = stripped
			}
			kept = append(kept, line)
		}
		out[i] = strings.Join(kept, "\n")
	}
	return out, nil
}

// IsMarker reports whether line consists only of a page marker.
func IsMarker(line string) bool {
	return markerLine.MatchString(strings.TrimSpace(line))
}
