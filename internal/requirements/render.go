package requirements

import (
	"strings"

	"github.com/custodia-labs/reqscan/internal/core/domain"
)

// Render writes a requirement set as Markdown in the layout Parse reads.
func Render(set domain.RequirementSet) string {
	var b strings.Builder
	b.WriteString("# ")
	b.WriteString(domain.ReportTitle)
	b.WriteString("\n")

	if summary := strings.TrimSpace(set.Summary); summary != "" {
		b.WriteString("\n## Summary\n\n")
		b.WriteString(summary)
		b.WriteString("\n")
	}

	for _, c := range domain.AllCategories() {
		b.WriteString("\n## ")
		b.WriteString(c.Title())
		b.WriteString("\n\n")

		items := set.Items(c)
		if len(items) == 0 {
			b.WriteString(domain.NoneIdentified)
			b.WriteString("\n")
			continue
		}
		for _, item := range items {
			b.WriteString("- ")
			b.WriteString(strings.Join(strings.Fields(item), " "))
			b.WriteString("\n")
		}
	}
	return b.String()
}
