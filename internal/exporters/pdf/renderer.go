// Package pdf renders requirement reports as PDF using go-pdf/fpdf.
//
// Text is set in the embedded Go fonts so that report content survives
// verbatim. Only symbols the fonts have no glyph for are replaced with
// ASCII stand-ins.
package pdf

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/go-pdf/fpdf"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/sfnt"

	"github.com/custodia-labs/reqscan/internal/core/domain"
	"github.com/custodia-labs/reqscan/internal/core/ports/driven"
)

// Ensure Renderer implements the interface.
var _ driven.ReportRenderer = (*Renderer)(nil)

const (
	fontFamily = "Go"
	margin     = 20.0
	lineHeight = 6.0
	bulletGap  = 6.0
)

// substitutions holds stand-ins for symbols the Go fonts may lack.
var substitutions = map[rune]string{
	'\u2714': "[OK]",
	'\u2713': "[OK]",
	'\u274c': "[X]",
	'\u2717': "[X]",
	'\u2192': "->",
	'\u2190': "<-",
	'\u2264': "<=",
	'\u2265': ">=",
	'\u2260': "!=",
	'\u00a0': " ",
	'\u200b': "",
}

var glyphs, _ = sfnt.Parse(goregular.TTF)

// hasGlyph reports whether the body font can draw r.
func hasGlyph(buf *sfnt.Buffer, r rune) bool {
	if glyphs == nil {
		return false
	}
	idx, err := glyphs.GlyphIndex(buf, r)
	return err == nil && idx != 0
}

// substitute replaces symbols without a glyph by their stand-in. Anything
// else is kept as is, including runes neither table nor font know.
func substitute(s string) string {
	var (
		b   strings.Builder
		buf sfnt.Buffer
	)
	b.Grow(len(s))
	for _, r := range s {
		if sub, ok := substitutions[r]; ok && !hasGlyph(&buf, r) {
			b.WriteString(sub)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Renderer writes A4 PDF reports.
type Renderer struct {
	pageSize string
}

// Option configures the renderer.
type Option func(*Renderer)

// WithPageSize sets the page size, such as "A4" or "Letter".
func WithPageSize(size string) Option {
	return func(r *Renderer) {
		if size != "" {
			r.pageSize = size
		}
	}
}

// New creates a PDF renderer.
func New(opts ...Option) *Renderer {
	r := &Renderer{pageSize: "A4"}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Format returns the output format.
func (r *Renderer) Format() domain.Format {
	return domain.FormatPDF
}

// Render writes the report to w.
func (r *Renderer) Render(ctx context.Context, report *domain.Report, w io.Writer) error {
	if report == nil {
		return domain.ErrInvalidInput
	}

	pdf := fpdf.New("P", "mm", r.pageSize, "")
	pdf.AddUTF8FontFromBytes(fontFamily, "", goregular.TTF)
	pdf.AddUTF8FontFromBytes(fontFamily, "B", gobold.TTF)
	pdf.AddUTF8FontFromBytes(fontFamily, "I", goitalic.TTF)

	pdf.SetTitle(report.Heading(), true)
	pdf.SetSubject(report.SourceName, true)
	pdf.SetAuthor("reqscan", true)
	pdf.SetCreator("reqscan", true)
	pdf.SetMargins(margin, margin, margin)
	pdf.SetAutoPageBreak(true, margin)
	pdf.AliasNbPages("")
	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont(fontFamily, "I", 8)
		pdf.SetTextColor(128, 128, 128)
		pdf.CellFormat(0, 10, fmt.Sprintf("Page %d/{nb}", pdf.PageNo()), "", 0, "C", false, 0, "")
	})
	pdf.AddPage()

	pdf.SetFont(fontFamily, "B", 18)
	pdf.SetTextColor(0, 0, 0)
	pdf.CellFormat(0, 12, substitute(report.Heading()), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont(fontFamily, "", 10)
	pdf.SetTextColor(80, 80, 80)
	for _, field := range report.Metadata() {
		pdf.CellFormat(28, lineHeight, substitute(field.Label+":"), "", 0, "L", false, 0, "")
		pdf.MultiCell(0, lineHeight, substitute(field.Value), "", "L", false)
	}
	pdf.SetTextColor(0, 0, 0)

	set := report.Requirements
	if summary := strings.TrimSpace(set.Summary); summary != "" {
		heading(pdf, "Summary")
		pdf.SetFont(fontFamily, "", 11)
		for _, para := range strings.Split(summary, "\n\n") {
			pdf.MultiCell(0, lineHeight, substitute(strings.Join(strings.Fields(para), " ")), "", "L", false)
			pdf.Ln(2)
		}
	}

	for _, c := range domain.AllCategories() {
		if err := ctx.Err(); err != nil {
			return err
		}
		heading(pdf, c.Title())

		items := set.Items(c)
		if len(items) == 0 {
			pdf.SetFont(fontFamily, "I", 11)
			pdf.MultiCell(0, lineHeight, domain.NoneIdentified, "", "L", false)
			continue
		}

		pdf.SetFont(fontFamily, "", 11)
		for _, item := range items {
			pdf.CellFormat(bulletGap, lineHeight, "-", "", 0, "L", false, 0, "")
			pdf.MultiCell(0, lineHeight, substitute(strings.Join(strings.Fields(item), " ")), "", "L", false)
			pdf.Ln(1)
		}
	}

	if err := pdf.Error(); err != nil {
		return fmt.Errorf("build pdf: %w", err)
	}
	return pdf.Output(w)
}

// heading writes a level-1 section heading.
func heading(pdf *fpdf.Fpdf, title string) {
	pdf.Ln(4)
	pdf.SetFont(fontFamily, "B", 14)
	pdf.CellFormat(0, 9, title, "", 1, "L", false, 0, "")
	pdf.Ln(1)
}
