package readers

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/custodia-labs/reqscan/internal/core/domain"
	"github.com/custodia-labs/reqscan/internal/core/ports/driven"
)

// magic holds the leading bytes every file of a format starts with.
var magic = map[domain.Format][]byte{
	domain.FormatPDF:  []byte("%PDF-"),
	domain.FormatDOCX: []byte("PK\x03\x04"),
}

// pdfHeaderWindow is how far into a file the PDF header may appear.
// Some producers prepend garbage before %PDF-.
const pdfHeaderWindow = 1024

// DetectFormat returns the format of path based on its extension.
func DetectFormat(path string) (domain.Format, error) {
	format, ok := domain.FormatFromPath(path)
	if ok {
		return format, nil
	}
	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".doc" {
		return "", fmt.Errorf("%w: legacy .doc files are not supported, save the file as .docx", domain.ErrUnsupportedType)
	}
	if ext == "" {
		return "", fmt.Errorf("%w: %s has no file extension", domain.ErrUnsupportedType, filepath.Base(path))
	}
	return "", fmt.Errorf("%w: %s files are not supported (use .pdf or .docx)", domain.ErrUnsupportedType, ext)
}

// LoadDocument checks that path is a readable regular file of a supported
// format and loads its bytes.
func LoadDocument(path string) (*domain.Document, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("%w: empty path", domain.ErrInvalidInput)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve path: %w", err)
	}

	info, err := os.Stat(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, abs)
		}
		return nil, fmt.Errorf("stat %s: %w", abs, err)
	}
	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("%w: %s is not a regular file", domain.ErrInvalidInput, abs)
	}

	format, err := DetectFormat(abs)
	if err != nil {
		return nil, err
	}

	content, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrReadFailed, err)
	}
	if len(content) == 0 {
		return nil, fmt.Errorf("%w: %s is empty", domain.ErrReadFailed, filepath.Base(abs))
	}
	if !hasMagic(format, content) {
		return nil, fmt.Errorf("%w: %s does not contain %s data", domain.ErrReadFailed, filepath.Base(abs), strings.ToUpper(format.String()))
	}

	return &domain.Document{
		Path:    abs,
		Format:  format,
		Content: content,
	}, nil
}

// hasMagic checks the file signature for format.
func hasMagic(format domain.Format, content []byte) bool {
	sig := magic[format]
	if format == domain.FormatPDF {
		window := content
		if len(window) > pdfHeaderWindow {
			window = window[:pdfHeaderWindow]
		}
		return bytes.Contains(window, sig)
	}
	return bytes.HasPrefix(content, sig)
}

// Ensure Loader implements the interface.
var _ driven.DocumentLoader = Loader{}

// Loader implements driven.DocumentLoader with LoadDocument.
type Loader struct{}

// Load reads path with LoadDocument.
func (Loader) Load(path string) (*domain.Document, error) {
	return LoadDocument(path)
}
