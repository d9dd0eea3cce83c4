// Package docx renders requirement reports as Office Open XML documents.
package docx

import (
	"archive/zip"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/custodia-labs/reqscan/internal/core/domain"
	"github.com/custodia-labs/reqscan/internal/core/ports/driven"
)

// Ensure Renderer implements the interface.
var _ driven.ReportRenderer = (*Renderer)(nil)

// Renderer writes DOCX reports.
type Renderer struct {
	now func() time.Time
}

// New creates a DOCX renderer.
func New() *Renderer {
	return &Renderer{now: time.Now}
}

// Format returns the output format.
func (r *Renderer) Format() domain.Format {
	return domain.FormatDOCX
}

// Render writes the report package to w.
func (r *Renderer) Render(ctx context.Context, report *domain.Report, w io.Writer) error {
	if report == nil {
		return domain.ErrInvalidInput
	}

	created := report.GeneratedAt
	if created.IsZero() {
		created = r.now()
	}

	parts := []struct {
		name    string
		content string
	}{
		{"[Content_Types].xml", contentTypesXML},
		{"_rels/.rels", rootRelsXML},
		{"word/_rels/document.xml.rels", documentRelsXML},
		{"word/document.xml", documentXML(report)},
		{"word/styles.xml", stylesXML},
		{"word/numbering.xml", numberingXML},
		{"docProps/core.xml", coreXML(report, created)},
		{"docProps/app.xml", appXML},
	}

	zw := zip.NewWriter(w)
	for _, part := range parts {
		if err := ctx.Err(); err != nil {
			return err
		}
		fw, err := zw.CreateHeader(&zip.FileHeader{
			Name:     part.name,
			Method:   zip.Deflate,
			Modified: created,
		})
		if err != nil {
			return fmt.Errorf("create %s: %w", part.name, err)
		}
		if _, err := io.WriteString(fw, part.content); err != nil {
			return fmt.Errorf("write %s: %w", part.name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("close package: %w", err)
	}
	return nil
}

// documentXML builds word/document.xml.
func documentXML(report *domain.Report) string {
	var b strings.Builder
	b.WriteString(xmlHeader)
	b.WriteString(`<w:document xmlns:w="` + nsMain + `"><w:body>`)

	paragraph(&b, "Title", report.Heading(), false)
	for _, field := range report.Metadata() {
		metadata(&b, field)
	}

	set := report.Requirements
	if summary := strings.TrimSpace(set.Summary); summary != "" {
		paragraph(&b, "Heading1", "Summary", false)
		for _, para := range strings.Split(summary, "\n\n") {
			paragraph(&b, "", strings.Join(strings.Fields(para), " "), false)
		}
	}

	for _, c := range domain.AllCategories() {
		paragraph(&b, "Heading1", c.Title(), false)
		items := set.Items(c)
		if len(items) == 0 {
			paragraph(&b, "", domain.NoneIdentified, true)
			continue
		}
		for _, item := range items {
			bulletItem(&b, strings.Join(strings.Fields(item), " "))
		}
	}

	b.WriteString(`<w:sectPr><w:pgSz w:w="11906" w:h="16838"/>` +
		`<w:pgMar w:top="1134" w:right="1134" w:bottom="1134" w:left="1134" w:header="709" w:footer="709" w:gutter="0"/>` +
		`</w:sectPr>`)
	b.WriteString(`</w:body></w:document>`)
	return b.String()
}

// paragraph writes a paragraph with an optional style.
func paragraph(b *strings.Builder, style, text string, italic bool) {
	b.WriteString(`<w:p>`)
	if style != "" {
		b.WriteString(`<w:pPr><w:pStyle w:val="` + style + `"/></w:pPr>`)
	}
	run(b, text, false, italic)
	b.WriteString(`</w:p>`)
}

// metadata writes a "Label: value" line with a bold label.
func metadata(b *strings.Builder, field domain.MetadataField) {
	b.WriteString(`<w:p><w:pPr><w:pStyle w:val="Metadata"/></w:pPr>`)
	run(b, field.Label+": ", true, false)
	run(b, field.Value, false, false)
	b.WriteString(`</w:p>`)
}

// bulletItem writes a list paragraph bound to the bullet numbering.
func bulletItem(b *strings.Builder, text string) {
	b.WriteString(`<w:p><w:pPr><w:pStyle w:val="ListBullet"/>` +
		`<w:numPr><w:ilvl w:val="0"/><w:numId w:val="1"/></w:numPr></w:pPr>`)
	run(b, text, false, false)
	b.WriteString(`</w:p>`)
}

func run(b *strings.Builder, text string, bold, italic bool) {
	b.WriteString(`<w:r>`)
	if bold || italic {
		b.WriteString(`<w:rPr>`)
		if bold {
			b.WriteString(`<w:b/>`)
		}
		if italic {
			b.WriteString(`<w:i/>`)
		}
		b.WriteString(`</w:rPr>`)
	}
	b.WriteString(`<w:t xml:space="preserve">`)
	b.WriteString(escape(text))
	b.WriteString(`</w:t></w:r>`)
}

// coreXML builds docProps/core.xml.
func coreXML(report *domain.Report, created time.Time) string {
	stamp := created.UTC().Format(time.RFC3339)
	return xmlHeader +
		`<cp:coreProperties xmlns:cp="http://schemas.openxmlformats.org/package/2006/metadata/core-properties" ` +
		`xmlns:dc="http://purl.org/dc/elements/1.1/" xmlns:dcterms="http://purl.org/dc/terms/" ` +
		`xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance">` +
		`<dc:title>` + escape(report.Heading()) + `</dc:title>` +
		`<dc:subject>` + escape(report.SourceName) + `</dc:subject>` +
		`<dc:creator>reqscan</dc:creator>` +
		`<dc:identifier>` + escape(report.RunID) + `</dc:identifier>` +
		`<dcterms:created xsi:type="dcterms:W3CDTF">` + stamp + `</dcterms:created>` +
		`<dcterms:modified xsi:type="dcterms:W3CDTF">` + stamp + `</dcterms:modified>` +
		`</cp:coreProperties>`
}

// escape returns text safe for XML character data. Characters that XML
// cannot carry are replaced with U+FFFD.
func escape(s string) string {
	var b strings.Builder
	_ = xml.EscapeText(&b, []byte(s))
	return b.String()
}
