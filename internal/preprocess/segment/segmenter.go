// Package segment splits cleaned text into model-sized pieces.
package segment

import (
	"strings"
	"unicode"

	"github.com/custodia-labs/reqscan/internal/core/ports/driven"
)

// Ensure Segmenter implements the interface.
var _ driven.TextSegmenter = (*Segmenter)(nil)

// DefaultMinFill is the smallest share of maxChars a segment is cut at
// when looking for a natural boundary.
const DefaultMinFill = 0.5

// Segmenter cuts text at paragraph, sentence or word boundaries.
type Segmenter struct {
	minFill float64
}

// Option configures the segmenter.
type Option func(*Segmenter)

// WithMinFill sets how full a segment must be before a boundary is accepted.
func WithMinFill(ratio float64) Option {
	return func(s *Segmenter) {
		if ratio > 0 && ratio < 1 {
			s.minFill = ratio
		}
	}
}

// New creates a segmenter with the given options.
func New(opts ...Option) *Segmenter {
	s := &Segmenter{minFill: DefaultMinFill}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Split returns trimmed segments of at most maxChars runes in text order.
// A maxChars of zero or less returns the whole text as one segment.
func (s *Segmenter) Split(text string, maxChars int) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	runes := []rune(text)
	if maxChars <= 0 || len(runes) <= maxChars {
		return []string{text}
	}

	minCut := int(float64(maxChars) * s.minFill)
	if minCut < 1 {
		minCut = 1
	}

	var segments []string
	start := 0
	for start < len(runes) {
		for start < len(runes) && unicode.IsSpace(runes[start]) {
			start++
		}
		if start >= len(runes) {
			break
		}
		if len(runes)-start <= maxChars {
			segments = append(segments, strings.TrimSpace(string(runes[start:])))
			break
		}

		window := runes[start : start+maxChars]
		cut := boundary(window, minCut)
		if seg := strings.TrimSpace(string(runes[start : start+cut])); seg != "" {
			segments = append(segments, seg)
		}
		start += cut
	}
	return segments
}

// boundary returns the cut position inside window, preferring a paragraph
// break, then a sentence end, then a space. Falls back to a hard cut.
func boundary(window []rune, minCut int) int {
	if i := lastParagraph(window); i >= minCut {
		return i
	}
	if i := lastSentence(window); i >= minCut {
		return i
	}
	for i := len(window) - 1; i >= minCut; i-- {
		if unicode.IsSpace(window[i]) {
			return i + 1
		}
	}
	return len(window)
}

func lastParagraph(window []rune) int {
	for i := len(window) - 1; i > 0; i-- {
		if window[i] == '\n' && window[i-1] == '\n' {
			return i + 1
		}
	}
	return -1
}

func lastSentence(window []rune) int {
	for i := len(window) - 2; i >= 0; i-- {
		switch window[i] {
		case '.', '!', '?':
			if unicode.IsSpace(window[i+1]) {
				return i + 1
			}
		}
	}
	return -1
}

// Truncate returns the first segment of text and whether anything was cut.
func Truncate(s driven.TextSegmenter, text string, maxChars int) (string, bool) {
	segments := s.Split(text, maxChars)
	if len(segments) == 0 {
		return "", false
	}
	return segments[0], len(segments) > 1
}
