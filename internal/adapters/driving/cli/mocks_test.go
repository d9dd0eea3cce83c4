package cli

import (
	"bytes"
	"context"
	"sort"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/custodia-labs/reqscan/internal/core/domain"
	"github.com/custodia-labs/reqscan/internal/core/ports/driving"
)

// mockSettingsService keeps settings in memory.
type mockSettingsService struct {
	settings    domain.AppSettings
	values      map[string]string
	getErr      error
	setErr      error
	validateErr error
	pingErr     error
	provider    domain.AIProvider
	model       string
	apiKey      string
}

func newMockSettingsService() *mockSettingsService {
	return &mockSettingsService{
		settings: domain.DefaultAppSettings(),
		values:   make(map[string]string),
	}
}

func (m *mockSettingsService) Get() (*domain.AppSettings, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	s := m.settings
	return &s, nil
}

func (m *mockSettingsService) Save(settings *domain.AppSettings) error {
	m.settings = *settings
	return nil
}

func (m *mockSettingsService) SetLLMProvider(provider domain.AIProvider, model, apiKey string) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.provider, m.model, m.apiKey = provider, model, apiKey
	m.settings.LLM.Provider = provider
	m.settings.LLM.Model = model
	m.settings.LLM.APIKey = apiKey
	return nil
}

func (m *mockSettingsService) SetValue(key, value string) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.values[key] = value
	return nil
}

func (m *mockSettingsService) Keys() []string {
	keys := []string{"llm.provider", "llm.model", "analysis.overflow"}
	sort.Strings(keys)
	return keys
}

func (m *mockSettingsService) Validate() error { return m.validateErr }

func (m *mockSettingsService) GetDefaults() domain.AppSettings { return domain.DefaultAppSettings() }

func (m *mockSettingsService) ValidateLLMConfig() error { return m.pingErr }

func (m *mockSettingsService) ConfigPath() string { return "/home/test/.reqscan/config.toml" }

// mockAnalysis returns a canned result and records the call.
type mockAnalysis struct {
	path     string
	opts     domain.AnalyzeOptions
	response string
	source   string
	result   *domain.AnalysisResult
	err      error

	cleaned   domain.CleanedText
	extracted *domain.ExtractedText
}

func (m *mockAnalysis) Analyze(_ context.Context, path string, opts domain.AnalyzeOptions) (*domain.AnalysisResult, error) {
	m.path = path
	m.opts = opts
	for _, stage := range domain.AllStages() {
		opts.Report(stage, "")
	}
	return m.result, m.err
}

func (m *mockAnalysis) Extract(_ context.Context, path string) (domain.CleanedText, *domain.ExtractedText, error) {
	m.path = path
	return m.cleaned, m.extracted, m.err
}

func (m *mockAnalysis) ParseAndExport(_ context.Context, response, sourcePath string, opts domain.AnalyzeOptions) (*domain.AnalysisResult, error) {
	m.response = response
	m.source = sourcePath
	m.opts = opts
	return m.result, m.err
}

// mockWatch reports one analysed file and returns.
type mockWatch struct {
	dir  string
	opts driving.WatchOptions
	err  error
}

func (m *mockWatch) Watch(_ context.Context, dir string, opts driving.WatchOptions) error {
	m.dir = dir
	m.opts = opts
	if opts.OnResult != nil {
		opts.OnResult(dir+"/spec.pdf", &domain.AnalysisResult{
			Requirements: testResult().Requirements,
			Reports:      []domain.ReportFile{{Format: domain.FormatPDF, Path: dir + "/spec_Report.pdf"}},
		}, nil)
		opts.OnResult(dir+"/broken.docx", nil, domain.WrapStage(domain.StageReading, domain.ErrReadFailed))
	}
	return m.err
}

// mockPipeline hands out the mocks above.
type mockPipeline struct {
	analysis    *mockAnalysis
	watch       *mockWatch
	analysisErr error
	pingErr     error

	settings []domain.AppSettings
	pinged   *domain.LLMSettings
	released bool
	offline  bool
}

func (m *mockPipeline) Analysis(_ context.Context, settings domain.AppSettings) (driving.AnalysisService, func(), error) {
	m.settings = append(m.settings, settings)
	if m.analysisErr != nil {
		return nil, nil, m.analysisErr
	}
	return m.analysis, func() { m.released = true }, nil
}

func (m *mockPipeline) Offline(settings domain.AppSettings) (driving.AnalysisService, error) {
	m.settings = append(m.settings, settings)
	m.offline = true
	return m.analysis, nil
}

func (m *mockPipeline) Watch(_ driving.AnalysisService, settings domain.AppSettings) driving.WatchService {
	m.settings = append(m.settings, settings)
	return m.watch
}

func (m *mockPipeline) Ping(_ context.Context, settings *domain.LLMSettings) error {
	s := *settings
	m.pinged = &s
	return m.pingErr
}

func testResult() *domain.AnalysisResult {
	return &domain.AnalysisResult{
		RunID:      "run-1",
		SourcePath: "/docs/spec.pdf",
		Model:      "qwen2.5:3b",
		Segments:   1,
		Requirements: domain.RequirementSet{
			Functional:    []string{"The system shall export invoices."},
			NonFunctional: []string{"Pages load in under 2 seconds."},
			Risks:         []string{},
		},
		Reports: []domain.ReportFile{
			{Format: domain.FormatPDF, Path: "/docs/spec_Report.pdf"},
			{Format: domain.FormatDOCX, Path: "/docs/spec_Report.docx"},
		},
	}
}

// setupTestServices installs mock services for the next command run.
func setupTestServices(t *testing.T) (*mockSettingsService, *mockPipeline) {
	t.Helper()

	settings := newMockSettingsService()
	p := &mockPipeline{
		analysis: &mockAnalysis{result: testResult()},
		watch:    &mockWatch{},
	}
	SetBootstrap(func(Options) (*Services, error) {
		return &Services{Settings: settings, Pipeline: p}, nil
	})
	t.Cleanup(resetCLI)
	return settings, p
}

// resetCLI clears services and flag values left by a previous run.
func resetCLI() {
	bootstrap = nil
	settingsService = nil
	pipeline = nil
	globalOpts = Options{}
	resetFlags(rootCmd)
	rootCmd.SetArgs(nil)
	rootCmd.SetIn(nil)
}

func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

// execute runs the root command with args and returns its output.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
	})

	err := rootCmd.Execute()
	return buf.String(), err
}
