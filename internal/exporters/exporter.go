// Package exporters writes requirement reports to disk.
//
// Each output format has a ReportRenderer. The Exporter resolves output
// paths, runs the renderers concurrently and writes every file atomically.
package exporters

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/reqscan/internal/core/domain"
	"github.com/custodia-labs/reqscan/internal/core/ports/driven"
	"github.com/custodia-labs/reqscan/internal/exporters/docx"
	"github.com/custodia-labs/reqscan/internal/exporters/pdf"
	"github.com/custodia-labs/reqscan/internal/logger"
)

// Ensure Exporter implements the interface.
var _ driven.ReportExporter = (*Exporter)(nil)

// Exporter writes reports in one or more formats.
type Exporter struct {
	renderers map[domain.Format]driven.ReportRenderer
	suffix    string
}

// Option configures the exporter.
type Option func(*Exporter)

// WithSuffix sets the text appended to the source stem.
func WithSuffix(suffix string) Option {
	return func(e *Exporter) {
		e.suffix = suffix
	}
}

// WithRenderer adds or replaces the renderer for its format.
func WithRenderer(r driven.ReportRenderer) Option {
	return func(e *Exporter) {
		e.renderers[r.Format()] = r
	}
}

// New creates an exporter with the built-in PDF and DOCX renderers.
func New(opts ...Option) *Exporter {
	e := &Exporter{
		renderers: map[domain.Format]driven.ReportRenderer{
			domain.FormatPDF:  pdf.New(),
			domain.FormatDOCX: docx.New(),
		},
		suffix: domain.DefaultReportSuffix,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ReportPath returns where the report for sourcePath is written.
// An empty outputDir means the directory of the source file.
func (e *Exporter) ReportPath(sourcePath, outputDir string, format domain.Format) string {
	if outputDir == "" {
		outputDir = filepath.Dir(sourcePath)
	}
	base := filepath.Base(sourcePath)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(outputDir, stem+e.suffix+format.Extension())
}

// IsReportPath reports whether path looks like a report written by e.
func (e *Exporter) IsReportPath(path string) bool {
	if e.suffix == "" {
		return false
	}
	base := filepath.Base(path)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return strings.HasSuffix(stem, e.suffix)
}

// Export renders the report in every requested format. Formats fail
// independently: the written files are returned together with the joined
// errors of the formats that failed.
func (e *Exporter) Export(
	ctx context.Context,
	report *domain.Report,
	sourcePath, outputDir string,
	formats []domain.Format,
) ([]domain.ReportFile, error) {
	if report == nil {
		return nil, fmt.Errorf("%w: report is nil", domain.ErrInvalidInput)
	}
	formats = uniqueFormats(formats)

	if outputDir != "" {
		if err := os.MkdirAll(outputDir, 0755); err != nil {
			return nil, fmt.Errorf("%w: create output directory: %w", domain.ErrExportFailed, err)
		}
	}

	written := make([]*domain.ReportFile, len(formats))
	errs := make([]error, len(formats))

	// Each goroutine records its own error and returns nil so that one
	// failing format does not cancel the others.
	var g errgroup.Group
	for i, format := range formats {
		g.Go(func() error {
			path := e.ReportPath(sourcePath, outputDir, format)
			if err := e.write(ctx, report, format, path); err != nil {
				errs[i] = fmt.Errorf("%w: %s: %w", domain.ErrExportFailed, format, err)
				return nil
			}
			logger.Debug("wrote %s report: %s", format, path)
			written[i] = &domain.ReportFile{Format: format, Path: path}
			return nil
		})
	}
	_ = g.Wait()

	files := make([]domain.ReportFile, 0, len(formats))
	for _, f := range written {
		if f != nil {
			files = append(files, *f)
		}
	}
	return files, errors.Join(errs...)
}

// write renders into a temp file next to path and renames it into place.
func (e *Exporter) write(ctx context.Context, report *domain.Report, format domain.Format, path string) error {
	renderer, ok := e.renderers[format]
	if !ok {
		return fmt.Errorf("%w: no renderer for %q", domain.ErrUnsupportedType, format)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+"-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		if tmpPath != "" {
			_ = os.Remove(tmpPath)
		}
	}()

	bw := bufio.NewWriter(tmp)
	if err := renderer.Render(ctx, report, bw); err != nil {
		tmp.Close()
		return fmt.Errorf("render: %w", err)
	}
	if err := bw.Flush(); err != nil {
		tmp.Close()
		return fmt.Errorf("write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close: %w", err)
	}
	if err := os.Chmod(tmpPath, 0644); err != nil {
		return fmt.Errorf("chmod: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("rename: %w", err)
	}
	tmpPath = ""
	return nil
}

// uniqueFormats drops duplicates and falls back to every format when empty.
func uniqueFormats(formats []domain.Format) []domain.Format {
	if len(formats) == 0 {
		return domain.AllFormats()
	}
	seen := make(map[domain.Format]bool, len(formats))
	out := make([]domain.Format, 0, len(formats))
	for _, f := range formats {
		if !seen[f] {
			seen[f] = true
			out = append(out, f)
		}
	}
	return out
}
