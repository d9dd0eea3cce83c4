// Package docx reads text from Office Open XML word processing documents.
package docx

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/custodia-labs/reqscan/internal/core/domain"
	"github.com/custodia-labs/reqscan/internal/core/ports/driven"
)

// Ensure Reader implements the interface.
var _ driven.DocumentReader = (*Reader)(nil)

const (
	documentPart = "word/document.xml"
	corePart     = "docProps/core.xml"

	// maxPartSize caps how much of a single zip entry is decompressed.
	maxPartSize = 64 << 20
)

// Reader extracts page text from DOCX files.
type Reader struct{}

// New creates a new DOCX reader.
func New() *Reader {
	return &Reader{}
}

// Formats returns the formats this reader handles.
func (r *Reader) Formats() []domain.Format {
	return []domain.Format{domain.FormatDOCX}
}

// Read returns the body text split at explicit and rendered page breaks.
// Headers and footers live in separate parts and are not read.
func (r *Reader) Read(ctx context.Context, doc *domain.Document) (*domain.ExtractedText, error) {
	if doc == nil {
		return nil, domain.ErrInvalidInput
	}

	zr, err := zip.NewReader(bytes.NewReader(doc.Content), int64(len(doc.Content)))
	if err != nil {
		return nil, fmt.Errorf("%w: not a DOCX archive: %w", domain.ErrReadFailed, err)
	}

	body, err := readPart(zr, documentPart)
	if err != nil {
		return nil, err
	}

	pages, err := parseBody(ctx, body)
	if err != nil {
		return nil, err
	}

	text := &domain.ExtractedText{
		Title: extractTitle(zr, doc.Path),
		Pages: pages,
	}
	if text.IsEmpty() {
		return nil, fmt.Errorf("%w: %s", domain.ErrEmptyDocument, doc.Name())
	}
	return text, nil
}

// readPart returns the decompressed contents of a zip entry.
func readPart(zr *zip.Reader, name string) ([]byte, error) {
	for _, file := range zr.File {
		if file.Name != name {
			continue
		}
		rc, err := file.Open()
		if err != nil {
			return nil, fmt.Errorf("%w: open %s: %w", domain.ErrReadFailed, name, err)
		}
		defer rc.Close()

		content, err := io.ReadAll(io.LimitReader(rc, maxPartSize))
		if err != nil {
			return nil, fmt.Errorf("%w: read %s: %w", domain.ErrReadFailed, name, err)
		}
		return content, nil
	}
	return nil, fmt.Errorf("%w: missing %s", domain.ErrReadFailed, name)
}

// pageCollector accumulates paragraphs into pages.
type pageCollector struct {
	pages []string
	page  strings.Builder
	para  strings.Builder
}

func (c *pageCollector) endParagraph() {
	c.page.WriteString(c.para.String())
	c.page.WriteByte('\n')
	c.para.Reset()
}

// breakPage starts a new page unless the current one is still blank.
// Word writes a rendered break after an explicit one, which would otherwise
// produce empty pages.
func (c *pageCollector) breakPage() {
	if strings.TrimSpace(c.page.String()) == "" && strings.TrimSpace(c.para.String()) == "" {
		return
	}
	c.page.WriteString(c.para.String())
	c.para.Reset()
	c.pages = append(c.pages, strings.Trim(c.page.String(), "\n"))
	c.page.Reset()
}

func (c *pageCollector) finish() []string {
	if c.para.Len() > 0 {
		c.endParagraph()
	}
	if rest := strings.Trim(c.page.String(), "\n"); strings.TrimSpace(rest) != "" || len(c.pages) == 0 {
		c.pages = append(c.pages, rest)
	}
	return c.pages
}

// parseBody streams word/document.xml and collects text per page.
func parseBody(ctx context.Context, body []byte) ([]string, error) {
	dec := xml.NewDecoder(bytes.NewReader(body))
	var c pageCollector
	inText := false
	tokens := 0

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", domain.ErrReadFailed, documentPart, err)
		}
		tokens++
		if tokens%4096 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				inText = true
			case "tab":
				c.para.WriteByte('\t')
			case "br":
				if attr(t, "type") == "page" {
					c.breakPage()
				} else {
					c.para.WriteByte('\n')
				}
			case "cr":
				c.para.WriteByte('\n')
			case "lastRenderedPageBreak":
				c.breakPage()
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				c.endParagraph()
			}
		case xml.CharData:
			if inText {
				c.para.Write(t)
			}
		}
	}

	return c.finish(), nil
}

// attr returns the value of the attribute with the given local name.
func attr(el xml.StartElement, local string) string {
	for _, a := range el.Attr {
		if a.Name.Local == local {
			return a.Value
		}
	}
	return ""
}

// coreXML represents the structure of docProps/core.xml.
type coreXML struct {
	Title string `xml:"title"`
}

// extractTitle extracts the title from docProps/core.xml or falls back to the filename.
func extractTitle(zr *zip.Reader, path string) string {
	if content, err := readPart(zr, corePart); err == nil {
		var core coreXML
		if err := xml.Unmarshal(content, &core); err == nil && strings.TrimSpace(core.Title) != "" {
			return strings.TrimSpace(core.Title)
		}
	}

	filename := filepath.Base(path)
	filename = strings.TrimSuffix(filename, filepath.Ext(filename))
	filename = strings.ReplaceAll(filename, "_", " ")
	return strings.ReplaceAll(filename, "-", " ")
}
