// Package headerfooter removes running headers and footers from page text.
//
// A line is treated as a header or footer when it sits near the top or
// bottom of a page and, after digits are normalised, the same line appears
// in that position on enough other pages.
package headerfooter

import (
	"context"
	"math"
	"regexp"
	"strings"

	"github.com/custodia-labs/reqscan/internal/core/ports/driven"
)

// Ensure Cleaner implements the interface.
var _ driven.TextCleaner = (*Cleaner)(nil)

// Name is the cleaner name used in configuration.
const Name = "headerfooter"

// DefaultScanLines is the number of non-blank lines checked at each page edge.
const DefaultScanLines = 2

// DefaultMinRatio is the share of pages a line must repeat on.
const DefaultMinRatio = 0.6

var (
	digitRun = regexp.MustCompile(`\d+`)
	spaceRun = regexp.MustCompile(`\s+`)
)

// Cleaner strips repeated edge lines.
type Cleaner struct {
	scanLines int
	minRatio  float64
}

// Option configures the cleaner.
type Option func(*Cleaner)

// WithScanLines sets how many lines at each edge are candidates.
func WithScanLines(n int) Option {
	return func(c *Cleaner) {
		if n > 0 {
			c.scanLines = n
		}
	}
}

// WithMinRatio sets the share of pages a line must appear on.
func WithMinRatio(ratio float64) Option {
	return func(c *Cleaner) {
		if ratio > 0 && ratio <= 1 {
			c.minRatio = ratio
		}
	}
}

// New creates a header/footer cleaner with the given options.
func New(opts ...Option) *Cleaner {
	c := &Cleaner{
		scanLines: DefaultScanLines,
		minRatio:  DefaultMinRatio,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Name returns the cleaner name.
func (c *Cleaner) Name() string {
	return Name
}

// Clean removes the repeated edge lines. Documents with fewer than two
// pages are returned unchanged.
func (c *Cleaner) Clean(_ context.Context, pages []string) ([]string, error) {
	if len(pages) < 2 {
		return pages, nil
	}

	split := make([][]string, len(pages))
	candidates := make([]map[int]string, len(pages))
	counts := make(map[string]int)

	for i, page := range pages {
		lines := strings.Split(page, "\n")
		split[i] = lines
		candidates[i] = c.edgeLines(lines)

		seen := make(map[string]bool)
		for _, key := range candidates[i] {
			if !seen[key] {
				seen[key] = true
				counts[key]++
			}
		}
	}

	threshold := int(math.Ceil(c.minRatio * float64(len(pages))))
	if threshold < 2 {
		threshold = 2
	}

	out := make([]string, len(pages))
	for i, lines := range split {
		kept := make([]string, 0, len(lines))
		for j, line := range lines {
			if key, ok := candidates[i][j]; ok && counts[key] >= threshold {
				continue
			}
			kept = append(kept, line)
		}
		out[i] = strings.Join(kept, "\n")
	}
	return out, nil
}

// edgeLines returns the normalised keys of the first and last scanLines
// non-blank lines, indexed by line number.
func (c *Cleaner) edgeLines(lines []string) map[int]string {
	keys := make(map[int]string)

	found := 0
	for j := 0; j < len(lines) && found < c.scanLines; j++ {
		if key := normalise(lines[j]); key != "" {
			keys[j] = key
			found++
		}
	}

	found = 0
	for j := len(lines) - 1; j >= 0 && found < c.scanLines; j-- {
		if key := normalise(lines[j]); key != "" {
			keys[j] = key
			found++
		}
	}
	return keys
}

// normalise folds case and whitespace and replaces numbers with '#', so
// "Page 3 of 10" and "Page 4 of 10" share a key.
func normalise(line string) string {
	line = strings.ToLower(strings.TrimSpace(line))
	line = digitRun.ReplaceAllString(line, "#")
	return spaceRun.ReplaceAllString(line, " ")
}
