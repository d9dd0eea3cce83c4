package services

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/reqscan/internal/core/domain"
	"github.com/custodia-labs/reqscan/internal/core/ports/driven"
	"github.com/custodia-labs/reqscan/internal/core/ports/driving"
	"github.com/custodia-labs/reqscan/internal/logger"
)

// Ensure AnalysisService implements the interface.
var _ driving.AnalysisService = (*AnalysisService)(nil)

// AnalysisService runs read -> clean -> prompt -> parse -> export for one document.
type AnalysisService struct {
	loader       driven.DocumentLoader
	readers      driven.ReaderRegistry
	preprocessor driven.TextPreprocessor
	segmenter    driven.TextSegmenter
	llm          driven.LLMService
	prompts      driven.PromptStore
	parser       driven.ResponseParser
	exporter     driven.ReportExporter
	settings     domain.AppSettings

	now   func() time.Time
	newID func() string
}

// NewAnalysisService creates a new analysis service.
// llm may be nil; Analyze then fails in the analysing stage while Extract
// and ParseAndExport keep working.
func NewAnalysisService(
	loader driven.DocumentLoader,
	readers driven.ReaderRegistry,
	preprocessor driven.TextPreprocessor,
	segmenter driven.TextSegmenter,
	llm driven.LLMService,
	prompts driven.PromptStore,
	parser driven.ResponseParser,
	exporter driven.ReportExporter,
	settings domain.AppSettings,
) *AnalysisService {
	return &AnalysisService{
		loader:       loader,
		readers:      readers,
		preprocessor: preprocessor,
		segmenter:    segmenter,
		llm:          llm,
		prompts:      prompts,
		parser:       parser,
		exporter:     exporter,
		settings:     settings,
		now:          time.Now,
		newID:        uuid.NewString,
	}
}

// Analyze reads, cleans, analyses and exports a single document.
// When some report formats fail, the result still lists the files that were
// written and the returned error describes the failures.
func (s *AnalysisService) Analyze(ctx context.Context, path string, opts domain.AnalyzeOptions) (*domain.AnalysisResult, error) {
	started := s.now()
	runID := s.newID()
	logger.Section("Analysis " + runID)

	doc, text, err := s.extract(ctx, path, opts)
	if err != nil {
		return nil, err
	}

	if s.llm == nil {
		return nil, domain.WrapStage(domain.StageAnalysing,
			fmt.Errorf("%w: no model configured", domain.ErrLLMUnavailable))
	}

	segments, truncated := s.segments(text, opts)
	if truncated {
		logger.Warn("%s: text exceeds %d characters, only the first part is analysed (set analysis.overflow=split to analyse all of it)",
			doc.Name(), s.settings.Analysis.MaxInputChars)
	}

	set := domain.NewRequirementSet()
	for i, segment := range segments {
		detail := ""
		if len(segments) > 1 {
			detail = fmt.Sprintf("segment %d/%d", i+1, len(segments))
		}

		opts.Report(domain.StageAnalysing, detail)
		resp, err := s.ask(ctx, segment)
		if err != nil {
			return nil, domain.WrapStage(domain.StageAnalysing, err)
		}
		logger.Debug("model response (%d chars):\n%s", len(resp.Text), resp.Text)

		opts.Report(domain.StageParsing, detail)
		parsed, err := s.parser.Parse(resp.Text)
		if err != nil {
			return nil, domain.WrapStage(domain.StageParsing, err)
		}
		set.Merge(parsed)
	}
	logger.Infow("parsed requirements",
		"functional", len(set.Functional),
		"non_functional", len(set.NonFunctional),
		"risks", len(set.Risks))

	result := &domain.AnalysisResult{
		RunID:        runID,
		SourcePath:   doc.Path,
		Model:        s.llm.ModelName(),
		Segments:     len(segments),
		Truncated:    truncated,
		Requirements: set,
		StartedAt:    started,
	}

	err = s.export(ctx, result, opts)
	result.Duration = s.now().Sub(started)
	if err != nil {
		return result, err
	}
	opts.Report(domain.StageDone, "")
	return result, nil
}

// Extract reads and cleans a document without calling the model.
func (s *AnalysisService) Extract(ctx context.Context, path string) (domain.CleanedText, *domain.ExtractedText, error) {
	doc, err := s.loader.Load(path)
	if err != nil {
		return "", nil, domain.WrapStage(domain.StageReading, err)
	}
	extracted, err := s.read(ctx, doc)
	if err != nil {
		return "", nil, domain.WrapStage(domain.StageReading, err)
	}
	cleaned, err := s.clean(ctx, extracted)
	if err != nil {
		return "", extracted, domain.WrapStage(domain.StageCleaning, err)
	}
	return cleaned, extracted, nil
}

// ParseAndExport parses a saved model response and writes reports for sourcePath.
// The source file itself is not read; it only determines report names and placement.
func (s *AnalysisService) ParseAndExport(ctx context.Context, response, sourcePath string, opts domain.AnalyzeOptions) (*domain.AnalysisResult, error) {
	if strings.TrimSpace(sourcePath) == "" {
		return nil, fmt.Errorf("%w: source path is required", domain.ErrInvalidInput)
	}
	started := s.now()

	opts.Report(domain.StageParsing, "")
	set, err := s.parser.Parse(response)
	if err != nil {
		return nil, domain.WrapStage(domain.StageParsing, err)
	}

	result := &domain.AnalysisResult{
		RunID:        s.newID(),
		SourcePath:   sourcePath,
		Requirements: set,
		StartedAt:    started,
	}
	err = s.export(ctx, result, opts)
	result.Duration = s.now().Sub(started)
	if err != nil {
		return result, err
	}
	opts.Report(domain.StageDone, "")
	return result, nil
}

// extract runs the reading and cleaning stages.
func (s *AnalysisService) extract(ctx context.Context, path string, opts domain.AnalyzeOptions) (*domain.Document, domain.CleanedText, error) {
	opts.Report(domain.StageReading, "")
	doc, err := s.loader.Load(path)
	if err != nil {
		return nil, "", domain.WrapStage(domain.StageReading, err)
	}
	extracted, err := s.read(ctx, doc)
	if err != nil {
		return nil, "", domain.WrapStage(domain.StageReading, err)
	}
	logger.Infow("document read", "path", doc.Path, "format", doc.Format, "pages", extracted.PageCount())

	opts.Report(domain.StageCleaning, "")
	cleaned, err := s.clean(ctx, extracted)
	if err != nil {
		return nil, "", domain.WrapStage(domain.StageCleaning, err)
	}
	logger.Infow("text cleaned", "chars", cleaned.Len())
	return doc, cleaned, nil
}

func (s *AnalysisService) read(ctx context.Context, doc *domain.Document) (*domain.ExtractedText, error) {
	reader, err := s.readers.Get(doc.Format)
	if err != nil {
		return nil, err
	}
	extracted, err := reader.Read(ctx, doc)
	if err != nil {
		return nil, err
	}
	if extracted == nil || extracted.IsEmpty() {
		return nil, fmt.Errorf("%w: %s", domain.ErrEmptyDocument, doc.Name())
	}
	return extracted, nil
}

func (s *AnalysisService) clean(ctx context.Context, extracted *domain.ExtractedText) (domain.CleanedText, error) {
	cleaned, err := s.preprocessor.Process(ctx, extracted)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(cleaned.String()) == "" {
		return "", fmt.Errorf("%w: nothing left after cleaning", domain.ErrEmptyDocument)
	}
	return cleaned, nil
}

// segments applies the overflow policy. The bool reports dropped text.
func (s *AnalysisService) segments(text domain.CleanedText, opts domain.AnalyzeOptions) ([]string, bool) {
	limit := s.settings.Analysis.MaxInputChars
	if limit <= 0 || text.Len() <= limit {
		return []string{text.String()}, false
	}

	parts := s.segmenter.Split(text.String(), limit)
	if len(parts) == 0 {
		return []string{text.String()}, false
	}

	policy := opts.Overflow
	if !policy.IsValid() {
		policy = s.settings.Analysis.Overflow
	}
	if policy == domain.OverflowSplit {
		return parts, false
	}
	return parts[:1], len(parts) > 1
}

// ask sends one segment to the model.
func (s *AnalysisService) ask(ctx context.Context, text string) (*domain.ModelResponse, error) {
	system, err := s.prompt(driven.PromptAnalysisSystem, s.settings.Analysis.Language)
	if err != nil {
		return nil, err
	}
	user, err := s.prompt(driven.PromptAnalysisUser, text)
	if err != nil {
		return nil, err
	}

	reply, err := s.llm.Chat(ctx, []driven.ChatMessage{
		{Role: driven.RoleSystem, Content: system},
		{Role: driven.RoleUser, Content: user},
	}, driven.ChatOptions{
		Temperature:   s.settings.LLM.Temperature,
		ContextWindow: s.settings.LLM.ContextWindow,
	})
	if err != nil {
		return nil, err
	}
	return &domain.ModelResponse{Model: s.llm.ModelName(), Text: reply}, nil
}

// prompt loads a template and fills its single %s placeholder.
// Templates without a placeholder get the value appended.
func (s *AnalysisService) prompt(name, value string) (string, error) {
	tmpl, err := s.prompts.Load(name)
	if err != nil {
		return "", fmt.Errorf("load prompt %s: %w", name, err)
	}
	if strings.Contains(tmpl, "%s") {
		return strings.Replace(tmpl, "%s", value, 1), nil
	}
	return tmpl + "\n\n" + value, nil
}

// export writes the reports for result unless disabled.
func (s *AnalysisService) export(ctx context.Context, result *domain.AnalysisResult, opts domain.AnalyzeOptions) error {
	if opts.NoExport {
		return nil
	}
	opts.Report(domain.StageExporting, "")

	outputDir := opts.OutputDir
	if outputDir == "" {
		outputDir = s.settings.Export.OutputDir
	}
	formats := opts.Formats
	if len(formats) == 0 {
		formats = s.settings.Export.Formats
	}

	report := &domain.Report{
		Title:        domain.ReportTitle,
		SourceName:   filepath.Base(result.SourcePath),
		Model:        result.Model,
		RunID:        result.RunID,
		GeneratedAt:  s.now(),
		Requirements: result.Requirements,
	}

	files, err := s.exporter.Export(ctx, report, result.SourcePath, outputDir, formats)
	result.Reports = files
	for _, f := range files {
		logger.Infow("report written", "format", f.Format, "path", f.Path)
	}
	if err != nil {
		if !errors.Is(err, domain.ErrExportFailed) {
			err = fmt.Errorf("%w: %w", domain.ErrExportFailed, err)
		}
		return domain.WrapStage(domain.StageExporting, err)
	}
	return nil
}
