// Package dehyphenate rejoins words that were hyphenated at a line break.
package dehyphenate

import (
	"context"
	"regexp"
	"strings"

	"github.com/custodia-labs/reqscan/internal/core/ports/driven"
)

// Ensure Cleaner implements the interface.
var _ driven.TextCleaner = (*Cleaner)(nil)

// Name is the cleaner name used in configuration.
const Name = "dehyphenate"

// split matches a letter, a hyphen or soft hyphen at the end of a line,
// and the lower-case word that continues on the next line.
var split = regexp.MustCompile(`(\p{L})[-\x{00ad}][ \t]*\n[ \t]*(\p{Ll}[\p{L}\p{N}]*)`)

// conjunctions follow a suspended hyphen ("Lese- und Schreibzugriff") and
// must not be glued to the preceding word.
var conjunctions = map[string]bool{
	"und":   true,
	"oder":  true,
	"bzw":   true,
	"sowie": true,
	"and":   true,
	"or":    true,
	"nor":   true,
}

// Cleaner joins hyphenated line breaks.
type Cleaner struct{}

// New creates a dehyphenation cleaner.
func New() *Cleaner {
	return &Cleaner{}
}

// Name returns the cleaner name.
func (c *Cleaner) Name() string {
	return Name
}

// Clean rejoins split words on every page.
func (c *Cleaner) Clean(_ context.Context, pages []string) ([]string, error) {
	out := make([]string, len(pages))
	for i, page := range pages {
		out[i] = Join(page)
	}
	return out, nil
}

// Join rejoins words hyphenated across a line break in text.
func Join(text string) string {
	matches := split.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return text
	}

	var b strings.Builder
	last := 0
	for _, m := range matches {
		word := text[m[4]:m[5]]
		if conjunctions[strings.ToLower(word)] {
			continue
		}
		b.WriteString(text[last:m[0]])
		b.WriteString(text[m[2]:m[3]])
		b.WriteString(word)
		last = m[1]
	}
	b.WriteString(text[last:])
	return b.String()
}
