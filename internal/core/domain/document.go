package domain

import (
	"path/filepath"
	"strings"
)

// Format identifies a supported document container.
type Format string

// Supported formats.
const (
	// FormatPDF is a Portable Document Format file.
	FormatPDF Format = "pdf"

	// FormatDOCX is an Office Open XML word processing file.
	FormatDOCX Format = "docx"
)

// IsValid returns true if the format is recognised.
func (f Format) IsValid() bool {
	switch f {
	case FormatPDF, FormatDOCX:
		return true
	default:
		return false
	}
}

// Extension returns the file extension including the leading dot.
func (f Format) Extension() string {
	return "." + string(f)
}

// String returns the string representation.
func (f Format) String() string {
	return string(f)
}

// MIMEType returns the registered media type for the format.
func (f Format) MIMEType() string {
	switch f {
	case FormatPDF:
		return "application/pdf"
	case FormatDOCX:
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	default:
		return "application/octet-stream"
	}
}

// AllFormats returns every supported format in display order.
func AllFormats() []Format {
	return []Format{FormatPDF, FormatDOCX}
}

// FormatFromPath maps a file name to its format using the extension.
// The comparison is case-insensitive. Legacy .doc files are not supported.
func FormatFromPath(path string) (Format, bool) {
	ext := strings.ToLower(filepath.Ext(path))
	for _, f := range AllFormats() {
		if ext == f.Extension() {
			return f, true
		}
	}
	return "", false
}

// Document is an input file loaded into memory.
// It is read once and never modified.
type Document struct {
	// Path is the absolute path of the source file.
	Path string

	// Format is the detected container format.
	Format Format

	// Content is the raw file bytes.
	Content []byte
}

// Name returns the base file name.
func (d *Document) Name() string {
	return filepath.Base(d.Path)
}

// Stem returns the file name without its extension.
func (d *Document) Stem() string {
	name := d.Name()
	return strings.TrimSuffix(name, filepath.Ext(name))
}

// ExtractedText is the text content of a document as produced by a reader.
// Pages keep their original order. Formats without a page concept
// produce one entry per explicit page break.
type ExtractedText struct {
	// Title is the document title from metadata, or a name derived from the file.
	Title string

	// Pages holds the text of each page with line breaks preserved.
	Pages []string
}

// PageCount returns the number of pages.
func (e *ExtractedText) PageCount() int {
	return len(e.Pages)
}

// Text joins all pages separated by a blank line.
func (e *ExtractedText) Text() string {
	return strings.Join(e.Pages, "\n\n")
}

// IsEmpty returns true when no page holds any non-whitespace text.
func (e *ExtractedText) IsEmpty() bool {
	for _, p := range e.Pages {
		if strings.TrimSpace(p) != "" {
			return false
		}
	}
	return true
}

// CleanedText is normalised document text ready to be sent to a model.
type CleanedText string

// String returns the text.
func (c CleanedText) String() string {
	return string(c)
}

// Len returns the length in characters (runes).
func (c CleanedText) Len() int {
	return len([]rune(string(c)))
}
