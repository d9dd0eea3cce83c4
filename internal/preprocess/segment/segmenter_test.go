package segment

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	assert.Equal(t, DefaultMinFill, New().minFill)
	assert.Equal(t, 0.8, New(WithMinFill(0.8)).minFill)
	assert.Equal(t, DefaultMinFill, New(WithMinFill(1.2)).minFill)
}

func TestSplit(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		max      int
		expected []string
	}{
		{"empty", "  ", 10, nil},
		{"fits", "short text", 100, []string{"short text"}},
		{"no limit", "short text", 0, []string{"short text"}},
		{"paragraph boundary", "aaaa aaaa.\n\nbbbb bbbb.", 15, []string{"aaaa aaaa.", "bbbb bbbb."}},
		{"sentence then word", "One two. Three four five", 12, []string{"One two.", "Three four", "five"}},
		{"hard cut keeps runes whole", "äöüäöüäöü", 4, []string{"äöüä", "öüäö", "ü"}},
	}

	s := New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, s.Split(tt.text, tt.max))
		})
	}
}

func TestSplit_RespectsLimitAndKeepsWords(t *testing.T) {
	text := strings.Repeat("Die Anwendung muss Rechnungen exportieren. ", 50)

	segments := New().Split(text, 200)

	assert.Greater(t, len(segments), 1)
	for _, seg := range segments {
		assert.LessOrEqual(t, utf8.RuneCountInString(seg), 200)
	}
	assert.Equal(t, strings.Fields(text), strings.Fields(strings.Join(segments, " ")))
}

func TestTruncate(t *testing.T) {
	first, cut := Truncate(New(), "aaaa aaaa.\n\nbbbb bbbb.", 15)
	assert.Equal(t, "aaaa aaaa.", first)
	assert.True(t, cut)

	first, cut = Truncate(New(), "short", 15)
	assert.Equal(t, "short", first)
	assert.False(t, cut)

	first, cut = Truncate(New(), "", 15)
	assert.Empty(t, first)
	assert.False(t, cut)
}
