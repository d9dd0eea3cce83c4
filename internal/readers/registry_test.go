package readers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/reqscan/internal/core/domain"
)

type stubReader struct {
	formats []domain.Format
}

func (s *stubReader) Formats() []domain.Format { return s.formats }

func (s *stubReader) Read(_ context.Context, _ *domain.Document) (*domain.ExtractedText, error) {
	return &domain.ExtractedText{Pages: []string{"stub"}}, nil
}

func TestRegistry_GetUnknown(t *testing.T) {
	r := NewRegistry()

	reader, err := r.Get(domain.FormatPDF)

	assert.ErrorIs(t, err, domain.ErrUnsupportedType)
	assert.Nil(t, reader)
	assert.Empty(t, r.Formats())
}

func TestRegistry_RegisterReplaces(t *testing.T) {
	r := NewRegistry()
	first := &stubReader{formats: []domain.Format{domain.FormatDOCX}}
	second := &stubReader{formats: []domain.Format{domain.FormatDOCX}}

	r.Register(first)
	r.Register(second)

	got, err := r.Get(domain.FormatDOCX)
	require.NoError(t, err)
	assert.Same(t, second, got)
}

func TestNewDefaultRegistry(t *testing.T) {
	r := NewDefaultRegistry()

	assert.Equal(t, []domain.Format{domain.FormatPDF, domain.FormatDOCX}, r.Formats())
	for _, f := range domain.AllFormats() {
		reader, err := r.Get(f)
		require.NoError(t, err)
		assert.Contains(t, reader.Formats(), f)
	}
}
