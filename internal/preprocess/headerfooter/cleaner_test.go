package headerfooter

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Run("default values", func(t *testing.T) {
		c := New()
		assert.Equal(t, DefaultScanLines, c.scanLines)
		assert.Equal(t, DefaultMinRatio, c.minRatio)
		assert.Equal(t, "headerfooter", c.Name())
	})

	t.Run("invalid values ignored", func(t *testing.T) {
		c := New(WithScanLines(0), WithMinRatio(1.5))
		assert.Equal(t, DefaultScanLines, c.scanLines)
		assert.Equal(t, DefaultMinRatio, c.minRatio)
	})

	t.Run("custom values", func(t *testing.T) {
		c := New(WithScanLines(3), WithMinRatio(0.9))
		assert.Equal(t, 3, c.scanLines)
		assert.Equal(t, 0.9, c.minRatio)
	})
}

func TestClean_RemovesRepeatedEdges(t *testing.T) {
	pages := []string{
		"ACME Corp - Confidential\nRequirements Spec v1\nThe system shall export invoices.\nUsers need reports.\nPage 1 of 3",
		"ACME Corp - Confidential\nRequirements Spec v1\nUsers must log in.\nPage 2 of 3",
		"ACME Corp - Confidential\nRequirements Spec v1\nData is retained.\nPage 3 of 3",
	}

	got, err := New().Clean(context.Background(), pages)

	require.NoError(t, err)
	assert.Equal(t, []string{
		"The system shall export invoices.\nUsers need reports.",
		"Users must log in.",
		"Data is retained.",
	}, got)
}

func TestClean_KeepsBodyLines(t *testing.T) {
	// Repeated text in the middle of a page is content, not a header.
	pages := []string{
		"Title A\nline\nshared body line\nline\nend A",
		"Title B\nline\nshared body line\nline\nend B",
	}

	got, err := New(WithScanLines(1)).Clean(context.Background(), pages)

	require.NoError(t, err)
	assert.Equal(t, pages, got)
}

func TestClean_SinglePageUnchanged(t *testing.T) {
	pages := []string{"Header\nBody\nFooter"}

	got, err := New().Clean(context.Background(), pages)

	require.NoError(t, err)
	assert.Equal(t, pages, got)
}

func TestClean_SkipsBlankEdgeLines(t *testing.T) {
	pages := []string{
		"\n\nRunning Head\nBody one",
		"Running Head\nBody two\n\n",
	}

	got, err := New(WithScanLines(1)).Clean(context.Background(), pages)

	require.NoError(t, err)
	assert.Equal(t, []string{"\n\nBody one", "Body two\n\n"}, got)
}

func TestNormalise(t *testing.T) {
	assert.Equal(t, "page # of #", normalise("  Page 12 of  40 "))
	assert.Equal(t, "", normalise(" \t "))
}
