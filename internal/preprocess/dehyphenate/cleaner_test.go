package dehyphenate

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJoin(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"simple", "Anforde-\nrung", "Anforderung"},
		{"spaces around break", "Anforde- \n  rung ist", "Anforderung ist"},
		{"soft hyphen", "Anforde\u00ad\nrung", "Anforderung"},
		{"umlaut", "Prüf-\nung", "Prüfung"},
		{"suspended hyphen", "Lese-\nund Schreibzugriff", "Lese-\nund Schreibzugriff"},
		{"english conjunction", "read-\nand write", "read-\nand write"},
		{"capitalised next line", "Single-Sign-\nOn", "Single-Sign-\nOn"},
		{"digits", "2024-\n2025", "2024-\n2025"},
		{"hyphen inside line", "e-mail address", "e-mail address"},
		{"multiple", "Anfor-\nderung und Prü-\nfung", "Anforderung und Prüfung"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Join(tt.input))
		})
	}
}

func TestClean(t *testing.T) {
	got, err := New().Clean(context.Background(), []string{"Lasten-\nheft", "plain"})

	require.NoError(t, err)
	assert.Equal(t, []string{"Lastenheft", "plain"}, got)
	assert.Equal(t, "dehyphenate", New().Name())
}
