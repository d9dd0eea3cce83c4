package domain

import "time"

// Stage identifies a step of the analysis pipeline.
type Stage string

// Pipeline stages in execution order.
const (
	StageReading   Stage = "reading"
	StageCleaning  Stage = "cleaning"
	StageAnalysing Stage = "analysing"
	StageParsing   Stage = "parsing"
	StageExporting Stage = "exporting"
	StageDone      Stage = "done"
)

// Description returns a human-readable label for the stage.
func (s Stage) Description() string {
	switch s {
	case StageReading:
		return "reading document"
	case StageCleaning:
		return "cleaning text"
	case StageAnalysing:
		return "analysing with model"
	case StageParsing:
		return "parsing response"
	case StageExporting:
		return "exporting reports"
	case StageDone:
		return "done"
	default:
		return string(s)
	}
}

// AllStages returns the stages in execution order.
func AllStages() []Stage {
	return []Stage{StageReading, StageCleaning, StageAnalysing, StageParsing, StageExporting, StageDone}
}

// Progress reports a pipeline transition.
type Progress struct {
	// Stage is the stage that just started.
	Stage Stage

	// Detail is optional extra context, such as "segment 2/3".
	Detail string
}

// ProgressFunc receives pipeline transitions. It must not block.
type ProgressFunc func(Progress)

// AnalyzeOptions configures a single analysis run.
// Zero values fall back to the configured settings.
type AnalyzeOptions struct {
	// OutputDir overrides the report directory.
	OutputDir string

	// Formats overrides which report formats are written.
	Formats []Format

	// NoExport skips report generation.
	NoExport bool

	// Overflow overrides the handling of text longer than the input limit.
	Overflow OverflowPolicy

	// Progress receives stage transitions. May be nil.
	Progress ProgressFunc
}

// Report emits a progress event when a callback is set.
func (o AnalyzeOptions) Report(stage Stage, detail string) {
	if o.Progress != nil {
		o.Progress(Progress{Stage: stage, Detail: detail})
	}
}

// AnalysisResult is the outcome of one analysis run.
type AnalysisResult struct {
	// RunID uniquely identifies the run.
	RunID string `json:"run_id"`

	// SourcePath is the analysed file.
	SourcePath string `json:"source_path"`

	// Model is the model that produced the response.
	Model string `json:"model"`

	// Segments is the number of model calls made.
	Segments int `json:"segments"`

	// Truncated is true when text beyond the input limit was dropped.
	Truncated bool `json:"truncated"`

	// Requirements is the parsed set.
	Requirements RequirementSet `json:"requirements"`

	// Reports lists the files written.
	Reports []ReportFile `json:"reports"`

	// StartedAt is when the run began.
	StartedAt time.Time `json:"started_at"`

	// Duration is the wall-clock time of the run.
	Duration time.Duration `json:"duration"`
}
