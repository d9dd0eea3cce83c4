// Package whitespace normalises spacing and unwraps hard line breaks.
package whitespace

import (
	"context"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/custodia-labs/reqscan/internal/core/ports/driven"
)

// Ensure Cleaner implements the interface.
var _ driven.TextCleaner = (*Cleaner)(nil)

// Name is the cleaner name used in configuration.
const Name = "whitespace"

var (
	blankRun = regexp.MustCompile(`[ \t\f\v\x{00a0}\x{2007}\x{202f}]+`)
	listItem = regexp.MustCompile(`^(?:[-*+•▪◦–]|\d+(?:\.\d+)*[.)]?|[a-zA-Z][.)])\s`)
)

// invisible strips zero-width characters and normalises line endings.
var invisible = strings.NewReplacer(
	"\u00ad", "",
	"\u200b", "",
	"\u200c", "",
	"\u200d", "",
	"\ufeff", "",
	"\r\n", "\n",
	"\r", "\n",
)

// Cleaner collapses whitespace.
type Cleaner struct {
	joinLines bool
}

// Option configures the cleaner.
type Option func(*Cleaner)

// WithJoinLines toggles joining of wrapped lines.
func WithJoinLines(enabled bool) Option {
	return func(c *Cleaner) {
		c.joinLines = enabled
	}
}

// New creates a whitespace cleaner.
func New(opts ...Option) *Cleaner {
	c := &Cleaner{joinLines: true}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Name returns the cleaner name.
func (c *Cleaner) Name() string {
	return Name
}

// Clean normalises every page.
func (c *Cleaner) Clean(_ context.Context, pages []string) ([]string, error) {
	out := make([]string, len(pages))
	for i, page := range pages {
		out[i] = c.normalise(page)
	}
	return out, nil
}

// normalise trims lines, keeps at most one blank line between paragraphs,
// and joins a line onto the previous one when it looks like a soft wrap.
func (c *Cleaner) normalise(text string) string {
	text = invisible.Replace(text)

	var lines []string
	blank := false
	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(blankRun.ReplaceAllString(raw, " "))
		if line == "" {
			blank = len(lines) > 0
			continue
		}
		if blank {
			lines = append(lines, "")
			blank = false
		} else if c.joinLines && len(lines) > 0 && isContinuation(lines[len(lines)-1], line) {
			lines[len(lines)-1] += " " + line
			continue
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

// isContinuation reports whether next continues the sentence in prev.
// A wrapped line starts in lower case and follows a line without closing
// punctuation.
func isContinuation(prev, next string) bool {
	if prev == "" || listItem.MatchString(next) {
		return false
	}
	last, _ := utf8.DecodeLastRuneInString(prev)
	if strings.ContainsRune(".!?:;", last) {
		return false
	}
	first, _ := utf8.DecodeRuneInString(next)
	return unicode.IsLower(first)
}
