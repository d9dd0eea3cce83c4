package readers

import (
	"fmt"
	"sync"

	"github.com/custodia-labs/reqscan/internal/core/domain"
	"github.com/custodia-labs/reqscan/internal/core/ports/driven"
	"github.com/custodia-labs/reqscan/internal/readers/docx"
	"github.com/custodia-labs/reqscan/internal/readers/pdf"
)

// Ensure Registry implements the interface.
var _ driven.ReaderRegistry = (*Registry)(nil)

// Registry maps formats to readers.
type Registry struct {
	mu      sync.RWMutex
	readers map[domain.Format]driven.DocumentReader
}

// NewRegistry creates an empty reader registry.
func NewRegistry() *Registry {
	return &Registry{
		readers: make(map[domain.Format]driven.DocumentReader),
	}
}

// NewDefaultRegistry returns a registry with the PDF and DOCX readers.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(pdf.New())
	r.Register(docx.New())
	return r
}

// Register adds a reader for every format it reports.
// A later registration for the same format replaces the earlier one.
func (r *Registry) Register(reader driven.DocumentReader) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, f := range reader.Formats() {
		r.readers[f] = reader
	}
}

// Get returns the reader for a format.
func (r *Registry) Get(format domain.Format) (driven.DocumentReader, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	reader, ok := r.readers[format]
	if !ok {
		return nil, fmt.Errorf("%w: no reader for format %q", domain.ErrUnsupportedType, format)
	}
	return reader, nil
}

// Formats returns the registered formats in display order.
func (r *Registry) Formats() []domain.Format {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []domain.Format
	for _, f := range domain.AllFormats() {
		if _, ok := r.readers[f]; ok {
			out = append(out, f)
		}
	}
	return out
}
