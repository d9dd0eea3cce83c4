package driven

import (
	"context"
	"io"

	"github.com/custodia-labs/reqscan/internal/core/domain"
)

// ReportRenderer writes a report in one output format.
type ReportRenderer interface {
	// Format returns the output format.
	Format() domain.Format

	// Render writes the complete document to w.
	Render(ctx context.Context, report *domain.Report, w io.Writer) error
}

// ReportExporter writes reports for an analysed document.
type ReportExporter interface {
	// Export renders the report in each requested format next to the source
	// (or into outputDir). It returns the files written even when some
	// formats fail; the error then joins every per-format failure.
	Export(ctx context.Context, report *domain.Report, sourcePath, outputDir string, formats []domain.Format) ([]domain.ReportFile, error)

	// IsReportPath reports whether path looks like a report this exporter writes.
	IsReportPath(path string) bool
}
