// Package pdf reads text from PDF documents.
//
// The container is validated with pdfcpu before ledongthuc/pdf tokenises the
// content streams. Shown strings are placed with the text and graphics
// matrices and regrouped into rows by baseline, so running headers and
// footers stay on lines of their own.
package pdf

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	lpdf "github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/custodia-labs/reqscan/internal/core/domain"
	"github.com/custodia-labs/reqscan/internal/core/ports/driven"
	"github.com/custodia-labs/reqscan/internal/logger"
)

// Ensure Reader implements the interface.
var _ driven.DocumentReader = (*Reader)(nil)

var disableConfigDir sync.Once

// Reader extracts page text from PDF files.
type Reader struct {
	conf *model.Configuration
}

// New creates a new PDF reader.
func New() *Reader {
	// pdfcpu would otherwise create a config directory in the user's home.
	disableConfigDir.Do(api.DisableConfigDir)

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return &Reader{conf: conf}
}

// Formats returns the formats this reader handles.
func (r *Reader) Formats() []domain.Format {
	return []domain.Format{domain.FormatPDF}
}

// Read returns the text of every page in document order.
// Pages without text are kept as empty strings so page positions survive.
func (r *Reader) Read(ctx context.Context, doc *domain.Document) (*domain.ExtractedText, error) {
	if doc == nil {
		return nil, domain.ErrInvalidInput
	}

	if err := api.Validate(bytes.NewReader(doc.Content), r.conf); err != nil {
		return nil, fmt.Errorf("%w: invalid PDF: %w", domain.ErrReadFailed, err)
	}
	if n, err := api.PageCount(bytes.NewReader(doc.Content), r.conf); err == nil {
		logger.Debug("pdf %s: %d pages", doc.Name(), n)
	}

	pages, title, err := extract(ctx, doc.Content)
	if err != nil {
		return nil, err
	}

	text := &domain.ExtractedText{
		Title: title,
		Pages: pages,
	}
	if text.Title == "" {
		text.Title = titleFromPath(doc.Path)
	}
	if text.IsEmpty() {
		return nil, fmt.Errorf("%w: %s (scanned PDFs need OCR first)", domain.ErrEmptyDocument, doc.Name())
	}
	return text, nil
}

// extract walks the pages with ledongthuc/pdf.
// The library panics on some malformed streams, so panics become read errors.
func extract(ctx context.Context, content []byte) (pages []string, title string, err error) {
	defer func() {
		if p := recover(); p != nil {
			pages, title = nil, ""
			err = fmt.Errorf("%w: pdf parser: %v", domain.ErrReadFailed, p)
		}
	}()

	reader, err := lpdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, "", fmt.Errorf("%w: %w", domain.ErrReadFailed, err)
	}

	n := reader.NumPage()
	pages = make([]string, 0, n)
	for i := 1; i <= n; i++ {
		if err := ctx.Err(); err != nil {
			return nil, "", err
		}
		page := reader.Page(i)
		if page.V.IsNull() {
			pages = append(pages, "")
			continue
		}
		text, perr := pageText(page)
		if perr != nil {
			logger.Warn("pdf page %d: %v", i, perr)
			text = ""
		}
		pages = append(pages, text)
	}

	title = strings.TrimSpace(reader.Trailer().Key("Info").Key("Title").Text())
	return pages, title, nil
}

// pageText rebuilds the lines of a page from its positioned text runs.
// GetPlainText is used only when no runs can be placed.
func pageText(page lpdf.Page) (text string, err error) {
	defer func() {
		if p := recover(); p != nil {
			text, err = "", fmt.Errorf("%w: page content: %v", domain.ErrReadFailed, p)
		}
	}()

	if runs := newWalker(page).walk(); len(runs) > 0 {
		return strings.Join(layoutRows(runs), "\n"), nil
	}

	fonts := make(map[string]*lpdf.Font)
	for _, name := range page.Fonts() {
		f := page.Font(name)
		fonts[name] = &f
	}
	return page.GetPlainText(fonts)
}

// titleFromPath derives a title from the file name.
func titleFromPath(path string) string {
	name := filepath.Base(path)
	name = strings.TrimSuffix(name, filepath.Ext(name))
	name = strings.ReplaceAll(name, "_", " ")
	return strings.ReplaceAll(name, "-", " ")
}
