package services

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/custodia-labs/reqscan/internal/core/domain"
	"github.com/custodia-labs/reqscan/internal/core/ports/driven"
	"github.com/custodia-labs/reqscan/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyLLMProvider      = "llm.provider"
	keyLLMModel         = "llm.model"
	keyLLMBaseURL       = "llm.base_url"
	keyLLMAPIKey        = "llm.api_key"
	keyLLMTimeout       = "llm.timeout_seconds"
	keyLLMTemperature   = "llm.temperature"
	keyLLMContextWindow = "llm.context_window"
	keyMaxInputChars    = "analysis.max_input_chars"
	keyOverflow         = "analysis.overflow"
	keyLanguage         = "analysis.language"
	keyPreprocessSteps  = "preprocess.steps"
	keyExportFormats    = "export.formats"
	keyExportOutputDir  = "export.output_dir"
	keyExportSuffix     = "export.suffix"
	keyWatchPerMinute   = "watch.max_per_minute"
)

// preprocessPrefix starts per-cleaner keys such as "preprocess.headerfooter.min_ratio".
const preprocessPrefix = "preprocess."

// valueKind is the type a setting is stored as.
type valueKind int

const (
	kindString valueKind = iota
	kindInt
	kindFloat
	kindList
)

// settingKinds lists every supported key.
var settingKinds = map[string]valueKind{
	keyLLMProvider:      kindString,
	keyLLMModel:         kindString,
	keyLLMBaseURL:       kindString,
	keyLLMAPIKey:        kindString,
	keyLLMTimeout:       kindInt,
	keyLLMTemperature:   kindFloat,
	keyLLMContextWindow: kindInt,
	keyMaxInputChars:    kindInt,
	keyOverflow:         kindString,
	keyLanguage:         kindString,
	keyPreprocessSteps:  kindList,
	keyExportFormats:    kindList,
	keyExportOutputDir:  kindString,
	keyExportSuffix:     kindString,
	keyWatchPerMinute:   kindInt,
}

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
	aiValidator driven.AIConfigValidator
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore, aiValidator driven.AIConfigValidator) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		aiValidator: aiValidator,
	}
}

// Get retrieves current application settings.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()
	provider := s.getProvider(keyLLMProvider, defaults.LLM.Provider)

	settings := &domain.AppSettings{
		LLM: domain.LLMSettings{
			Provider:       provider,
			Model:          s.getString(keyLLMModel, domain.DefaultLLMModels()[provider]),
			BaseURL:        s.configStore.GetString(keyLLMBaseURL), // Empty means provider default.
			APIKey:         s.configStore.GetString(keyLLMAPIKey),
			TimeoutSeconds: s.getInt(keyLLMTimeout, defaults.LLM.TimeoutSeconds),
			Temperature:    s.getFloat(keyLLMTemperature, defaults.LLM.Temperature),
			ContextWindow:  s.getIntAllowZero(keyLLMContextWindow, defaults.LLM.ContextWindow),
		},
		Analysis: domain.AnalysisSettings{
			MaxInputChars: s.getInt(keyMaxInputChars, defaults.Analysis.MaxInputChars),
			Overflow:      s.getOverflow(defaults.Analysis.Overflow),
			Language:      s.getString(keyLanguage, defaults.Analysis.Language),
		},
		Preprocess: s.GetPipelineConfig(),
		Export: domain.ExportSettings{
			Formats:   s.getFormats(defaults.Export.Formats),
			OutputDir: s.configStore.GetString(keyExportOutputDir),
			Suffix:    s.getString(keyExportSuffix, defaults.Export.Suffix),
		},
		Watch: domain.WatchSettings{
			MaxPerMinute: s.getInt(keyWatchPerMinute, defaults.Watch.MaxPerMinute),
		},
	}

	return settings, nil
}

// Save persists application settings.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	formats := make([]string, len(settings.Export.Formats))
	for i, f := range settings.Export.Formats {
		formats[i] = f.String()
	}

	values := []struct {
		key   string
		label string
		value any
	}{
		{keyLLMProvider, "llm provider", settings.LLM.Provider.String()},
		{keyLLMModel, "llm model", settings.LLM.Model},
		{keyLLMBaseURL, "llm base_url", settings.LLM.BaseURL},
		{keyLLMTimeout, "llm timeout", settings.LLM.TimeoutSeconds},
		{keyLLMTemperature, "llm temperature", settings.LLM.Temperature},
		{keyLLMContextWindow, "llm context window", settings.LLM.ContextWindow},
		{keyMaxInputChars, "max input chars", settings.Analysis.MaxInputChars},
		{keyOverflow, "overflow policy", settings.Analysis.Overflow.String()},
		{keyLanguage, "language", settings.Analysis.Language},
		{keyPreprocessSteps, "preprocess steps", settings.Preprocess.Steps},
		{keyExportFormats, "export formats", formats},
		{keyExportOutputDir, "export output_dir", settings.Export.OutputDir},
		{keyExportSuffix, "export suffix", settings.Export.Suffix},
		{keyWatchPerMinute, "watch rate", settings.Watch.MaxPerMinute},
	}
	for _, v := range values {
		if err := s.configStore.Set(v.key, v.value); err != nil {
			return fmt.Errorf("save %s: %w", v.label, err)
		}
	}

	// An empty key must not overwrite one loaded from the environment or an earlier save.
	if settings.LLM.APIKey != "" {
		if err := s.configStore.Set(keyLLMAPIKey, settings.LLM.APIKey); err != nil {
			return fmt.Errorf("save llm api_key: %w", err)
		}
	}

	return nil
}

// SetLLMProvider configures the LLM provider.
func (s *SettingsService) SetLLMProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("%w: invalid LLM provider: %s", domain.ErrInvalidInput, provider)
	}

	// Validate API key if required
	if provider.RequiresAPIKey() && apiKey == "" {
		return fmt.Errorf("%w: API key required for %s", domain.ErrInvalidInput, provider)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	previous := settings.LLM.Provider
	settings.LLM.Provider = provider

	// Set model - use provided or default
	if model != "" {
		settings.LLM.Model = model
	} else {
		settings.LLM.Model = domain.DefaultLLMModels()[provider]
	}

	// Local providers keep a custom base URL unless it was another provider's default.
	if provider.IsLocal() {
		if settings.LLM.BaseURL == "" || settings.LLM.BaseURL == domain.DefaultBaseURLs()[previous] {
			settings.LLM.BaseURL = domain.DefaultBaseURLs()[provider]
		}
	} else {
		settings.LLM.BaseURL = ""
	}

	settings.LLM.APIKey = apiKey

	return s.Save(settings)
}

// Keys returns every supported setting key, sorted.
func (s *SettingsService) Keys() []string {
	keys := make([]string, 0, len(settingKinds))
	for k := range settingKinds {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// SetValue sets a single setting by its dotted key, converting the string
// value to the key's type. Keys of the form "preprocess.<cleaner>.<option>"
// are accepted and stored as bool, int, float or string, whichever parses first.
func (s *SettingsService) SetValue(key, value string) error {
	key = strings.ToLower(strings.TrimSpace(key))
	value = strings.TrimSpace(value)

	kind, ok := settingKinds[key]
	if !ok {
		if isCleanerOption(key) {
			return s.configStore.Set(key, inferValue(value))
		}
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}

	var stored any
	switch kind {
	case kindInt:
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return fmt.Errorf("%w: %s must be a non-negative integer, got %q", domain.ErrInvalidInput, key, value)
		}
		stored = n
	case kindFloat:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil || f < 0 {
			return fmt.Errorf("%w: %s must be a non-negative number, got %q", domain.ErrInvalidInput, key, value)
		}
		stored = f
	case kindList:
		stored = splitList(value)
	default:
		stored = value
	}

	if err := checkValue(key, stored); err != nil {
		return err
	}
	if err := s.configStore.Set(key, stored); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// checkValue rejects enum values that Get would silently replace.
func checkValue(key string, value any) error {
	switch key {
	case keyLLMProvider:
		if p := domain.AIProvider(value.(string)); !p.IsValid() {
			return fmt.Errorf("%w: invalid LLM provider %q", domain.ErrInvalidInput, p)
		}
	case keyOverflow:
		if o := domain.OverflowPolicy(value.(string)); !o.IsValid() {
			return fmt.Errorf("%w: overflow must be %q or %q", domain.ErrInvalidInput,
				domain.OverflowTruncate, domain.OverflowSplit)
		}
	case keyExportFormats:
		for _, f := range value.([]string) {
			if !domain.Format(f).IsValid() {
				return fmt.Errorf("%w: unknown export format %q", domain.ErrInvalidInput, f)
			}
		}
	case keyPreprocessSteps:
		if len(value.([]string)) == 0 {
			return fmt.Errorf("%w: preprocess.steps may not be empty", domain.ErrInvalidInput)
		}
	}
	return nil
}

// Validate checks that current settings are usable.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}

	if !settings.LLM.IsConfigured() {
		return fmt.Errorf("%w: LLM provider %q requires an API key (set llm.api_key)",
			domain.ErrInvalidInput, settings.LLM.Provider)
	}
	if settings.LLM.Model == "" {
		return fmt.Errorf("%w: llm.model is empty", domain.ErrInvalidInput)
	}
	if settings.Analysis.MaxInputChars <= 0 {
		return fmt.Errorf("%w: analysis.max_input_chars must be positive", domain.ErrInvalidInput)
	}
	if len(settings.Export.Formats) == 0 {
		return fmt.Errorf("%w: export.formats is empty", domain.ErrInvalidInput)
	}
	for _, f := range settings.Export.Formats {
		if !f.IsValid() {
			return fmt.Errorf("%w: unknown export format %q", domain.ErrInvalidInput, f)
		}
	}
	return nil
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// ValidateLLMConfig validates the current LLM configuration by pinging the provider.
func (s *SettingsService) ValidateLLMConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateLLM(&settings.LLM)
}

// ConfigPath returns where settings are persisted.
func (s *SettingsService) ConfigPath() string {
	return s.configStore.Path()
}

// GetPipelineConfig returns the preprocessing pipeline configuration.
// Returns default configuration if nothing is configured.
func (s *SettingsService) GetPipelineConfig() domain.PipelineConfig {
	defaults := domain.DefaultPipelineConfig()

	if steps := s.configStore.GetStringSlice(keyPreprocessSteps); len(steps) > 0 {
		defaults.Steps = steps
	}

	// Merge per-cleaner options over the defaults.
	for _, key := range s.configStore.Keys() {
		if !isCleanerOption(key) {
			continue
		}
		rest := strings.TrimPrefix(key, preprocessPrefix)
		name, option, _ := strings.Cut(rest, ".")
		val, ok := s.configStore.Get(key)
		if !ok {
			continue
		}
		if defaults.StepConfigs == nil {
			defaults.StepConfigs = make(map[string]map[string]any)
		}
		existing := defaults.StepConfigs[name]
		if existing == nil {
			existing = make(map[string]any)
		}
		existing[option] = val
		defaults.StepConfigs[name] = existing
	}

	return defaults
}

// isCleanerOption reports whether key has the form "preprocess.<cleaner>.<option>".
func isCleanerOption(key string) bool {
	if !strings.HasPrefix(key, preprocessPrefix) || key == keyPreprocessSteps {
		return false
	}
	name, option, ok := strings.Cut(strings.TrimPrefix(key, preprocessPrefix), ".")
	return ok && name != "" && option != "" && !strings.Contains(option, ".")
}

// inferValue converts a free-form option value to its most specific type.
func inferValue(v string) any {
	if b, err := strconv.ParseBool(v); err == nil {
		return b
	}
	if n, err := strconv.Atoi(v); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(v, 64); err == nil {
		return f
	}
	return v
}

// splitList parses "pdf, docx" into ["pdf", "docx"].
func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.ToLower(strings.TrimSpace(part)); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	val := s.configStore.GetInt(key)
	if val <= 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getIntAllowZero(key string, defaultVal int) int {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetInt(key)
}

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetFloat(key)
}

func (s *SettingsService) getProvider(key string, defaultVal domain.AIProvider) domain.AIProvider {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	provider := domain.AIProvider(strings.ToLower(val))
	if !provider.IsValid() {
		return defaultVal
	}
	return provider
}

func (s *SettingsService) getOverflow(defaultVal domain.OverflowPolicy) domain.OverflowPolicy {
	val := s.configStore.GetString(keyOverflow)
	if val == "" {
		return defaultVal
	}
	policy := domain.OverflowPolicy(strings.ToLower(val))
	if !policy.IsValid() {
		return defaultVal
	}
	return policy
}

func (s *SettingsService) getFormats(defaultVal []domain.Format) []domain.Format {
	vals := s.configStore.GetStringSlice(keyExportFormats)
	if len(vals) == 0 {
		return defaultVal
	}
	formats := make([]domain.Format, 0, len(vals))
	for _, v := range vals {
		formats = append(formats, domain.Format(strings.ToLower(strings.TrimSpace(v))))
	}
	return formats
}
