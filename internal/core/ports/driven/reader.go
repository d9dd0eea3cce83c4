package driven

import (
	"context"

	"github.com/custodia-labs/reqscan/internal/core/domain"
)

// DocumentReader extracts text from one document container format.
type DocumentReader interface {
	// Formats returns the formats this reader handles.
	Formats() []domain.Format

	// Read extracts page-ordered text. It fails with domain.ErrReadFailed
	// when the container cannot be parsed and domain.ErrEmptyDocument
	// when it holds no text.
	Read(ctx context.Context, doc *domain.Document) (*domain.ExtractedText, error)
}

// ReaderRegistry selects the reader for a document.
type ReaderRegistry interface {
	// Register adds a reader for every format it reports.
	Register(reader DocumentReader)

	// Get returns the reader for a format.
	// Returns domain.ErrUnsupportedType when none is registered.
	Get(format domain.Format) (DocumentReader, error)
}

// DocumentLoader opens an input file.
type DocumentLoader interface {
	// Load checks that path is a regular file of a supported format and reads it.
	// Returns domain.ErrNotFound, domain.ErrUnsupportedType or domain.ErrReadFailed.
	Load(path string) (*domain.Document, error)
}
