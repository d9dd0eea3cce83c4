package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/custodia-labs/reqscan/internal/core/domain"
	"github.com/custodia-labs/reqscan/internal/core/ports/driven"
)

// stubLoader returns a document for any path.
type stubLoader struct {
	err error
}

func (l *stubLoader) Load(path string) (*domain.Document, error) {
	if l.err != nil {
		return nil, l.err
	}
	format, ok := domain.FormatFromPath(path)
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedType, path)
	}
	return &domain.Document{Path: path, Format: format, Content: []byte("x")}, nil
}

// stubReader returns fixed pages.
type stubReader struct {
	pages []string
	err   error
}

func (r *stubReader) Formats() []domain.Format { return domain.AllFormats() }

func (r *stubReader) Read(_ context.Context, _ *domain.Document) (*domain.ExtractedText, error) {
	if r.err != nil {
		return nil, r.err
	}
	return &domain.ExtractedText{Title: "t", Pages: r.pages}, nil
}

// stubRegistry serves a single reader for every format.
type stubRegistry struct {
	reader driven.DocumentReader
}

func (r *stubRegistry) Register(reader driven.DocumentReader) { r.reader = reader }

func (r *stubRegistry) Get(format domain.Format) (driven.DocumentReader, error) {
	if r.reader == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedType, format)
	}
	return r.reader, nil
}

// joinPreprocessor joins pages without cleaning.
type joinPreprocessor struct {
	err error
}

func (p *joinPreprocessor) Process(_ context.Context, text *domain.ExtractedText) (domain.CleanedText, error) {
	if p.err != nil {
		return "", p.err
	}
	return domain.CleanedText(strings.TrimSpace(text.Text())), nil
}

// fixedSegmenter cuts text into pieces of exactly maxChars bytes.
type fixedSegmenter struct{}

func (fixedSegmenter) Split(text string, maxChars int) []string {
	var out []string
	for len(text) > maxChars {
		out = append(out, text[:maxChars])
		text = text[maxChars:]
	}
	if text != "" {
		out = append(out, text)
	}
	return out
}

// mapPrompts serves templates from a map.
type mapPrompts map[string]string

func (p mapPrompts) Load(name string) (string, error) {
	if t, ok := p[name]; ok {
		return t, nil
	}
	return "", errors.New("no prompt " + name)
}

func (mapPrompts) Reload() {}

func testPrompts() mapPrompts {
	return mapPrompts{
		driven.PromptAnalysisSystem: "Answer in %s.",
		driven.PromptAnalysisUser:   "Input Text:\n\n%s",
	}
}

// stubLLM replays replies in order and records the conversations.
type stubLLM struct {
	mu      sync.Mutex
	replies []string
	err     error
	calls   [][]driven.ChatMessage
	opts    []driven.ChatOptions
}

func (m *stubLLM) Chat(ctx context.Context, messages []driven.ChatMessage, opts driven.ChatOptions) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return "", err
	}
	m.calls = append(m.calls, messages)
	m.opts = append(m.opts, opts)
	if m.err != nil {
		return "", m.err
	}
	if len(m.replies) == 0 {
		return "", domain.ErrEmptyResponse
	}
	reply := m.replies[0]
	if len(m.replies) > 1 {
		m.replies = m.replies[1:]
	}
	return reply, nil
}

func (m *stubLLM) ModelName() string { return "stub-model" }

func (m *stubLLM) Ping(_ context.Context) error { return nil }

func (m *stubLLM) Close() error { return nil }

func (m *stubLLM) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

// stubParser splits "F:x" / "N:x" / "R:x" lines.
type stubParser struct {
	err error
}

func (p *stubParser) Parse(resp string) (domain.RequirementSet, error) {
	if p.err != nil {
		return domain.NewRequirementSet(), p.err
	}
	set := domain.NewRequirementSet()
	for _, line := range strings.Split(resp, "\n") {
		kind, text, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		switch kind {
		case "F":
			set.Add(domain.CategoryFunctional, text)
		case "N":
			set.Add(domain.CategoryNonFunctional, text)
		case "R":
			set.Add(domain.CategoryRisk, text)
		}
	}
	return set, nil
}

// recordingExporter records Export calls.
type recordingExporter struct {
	mu      sync.Mutex
	reports []*domain.Report
	dirs    []string
	formats [][]domain.Format
	files   []domain.ReportFile
	err     error
}

func (e *recordingExporter) Export(
	_ context.Context,
	report *domain.Report,
	sourcePath, outputDir string,
	formats []domain.Format,
) ([]domain.ReportFile, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.reports = append(e.reports, report)
	e.dirs = append(e.dirs, outputDir)
	e.formats = append(e.formats, formats)
	files := e.files
	if files == nil {
		files = []domain.ReportFile{{Format: domain.FormatPDF, Path: sourcePath + "_Report.pdf"}}
	}
	return files, e.err
}

func (e *recordingExporter) IsReportPath(path string) bool {
	return strings.Contains(path, "_Report.")
}
