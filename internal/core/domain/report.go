package domain

import "time"

// ReportTitle is the heading printed at the top of every report.
const ReportTitle = "Requirements Analysis Report"

// Report is the data rendered into an output document.
type Report struct {
	// Title is the report heading.
	Title string

	// SourceName is the base name of the analysed file.
	SourceName string

	// Model is the model that produced the analysis.
	Model string

	// RunID identifies the analysis run.
	RunID string

	// GeneratedAt is when the report was produced.
	GeneratedAt time.Time

	// Requirements is the parsed requirement set.
	Requirements RequirementSet
}

// ReportFile describes a written report.
type ReportFile struct {
	// Format is the output format.
	Format Format `json:"format"`

	// Path is where the file was written.
	Path string `json:"path"`
}

// NoneIdentified is printed in place of an empty section.
const NoneIdentified = "None identified."

// MetadataField is a labelled value printed under the report title.
type MetadataField struct {
	Label string
	Value string
}

// Metadata returns the fields shown under the title. Empty values are skipped.
func (r *Report) Metadata() []MetadataField {
	fields := []MetadataField{
		{Label: "Source", Value: r.SourceName},
		{Label: "Model", Value: r.Model},
	}
	if !r.GeneratedAt.IsZero() {
		fields = append(fields, MetadataField{Label: "Generated", Value: r.GeneratedAt.Format("2006-01-02 15:04")})
	}
	fields = append(fields, MetadataField{Label: "Run ID", Value: r.RunID})

	out := fields[:0]
	for _, f := range fields {
		if f.Value != "" {
			out = append(out, f)
		}
	}
	return out
}

// Heading returns the report title, falling back to ReportTitle.
func (r *Report) Heading() string {
	if r.Title == "" {
		return ReportTitle
	}
	return r.Title
}
