package domain

import "time"

const unknownDescription = "Unknown"

// AIProvider identifies a model server implementation.
type AIProvider string

// Available AI providers.
const (
	// AIProviderOllama is a local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is any OpenAI-compatible server such as LM Studio or llama.cpp.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderGemini is the Google Gemini API.
	AIProviderGemini AIProvider = "gemini"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOllama, AIProviderOpenAI, AIProviderGemini:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
// OpenAI-compatible servers are assumed to be local and accept any key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderGemini
}

// IsLocal returns true if this provider runs locally.
func (p AIProvider) IsLocal() bool {
	return p == AIProviderOllama || p == AIProviderOpenAI
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI-compatible (local)"
	case AIProviderGemini:
		return "Gemini (cloud)"
	default:
		return unknownDescription
	}
}

// LLMSettings holds model server configuration.
type LLMSettings struct {
	// Provider is the model server implementation.
	Provider AIProvider

	// Model is the model name.
	Model string

	// BaseURL is the API endpoint. Empty means the provider default.
	BaseURL string

	// APIKey is the API key (for Gemini).
	APIKey string

	// TimeoutSeconds bounds a single model request.
	TimeoutSeconds int

	// Temperature controls randomness (0.0 = deterministic).
	Temperature float64

	// ContextWindow is the number of context tokens requested from the server.
	// Zero leaves the server default in place.
	ContextWindow int
}

// IsConfigured returns true if the LLM provider is set up.
func (l LLMSettings) IsConfigured() bool {
	if !l.Provider.IsValid() {
		return false
	}
	if l.Provider.RequiresAPIKey() && l.APIKey == "" {
		return false
	}
	return true
}

// Timeout returns the request timeout as a duration.
func (l LLMSettings) Timeout() time.Duration {
	if l.TimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(l.TimeoutSeconds) * time.Second
}

// OverflowPolicy controls what happens to text longer than the model input limit.
type OverflowPolicy string

// Available overflow policies.
const (
	// OverflowTruncate sends only the leading segment.
	OverflowTruncate OverflowPolicy = "truncate"

	// OverflowSplit analyses every segment and merges the results.
	OverflowSplit OverflowPolicy = "split"
)

// IsValid returns true if the policy is recognised.
func (o OverflowPolicy) IsValid() bool {
	return o == OverflowTruncate || o == OverflowSplit
}

// String returns the string representation.
func (o OverflowPolicy) String() string {
	return string(o)
}

// AnalysisSettings controls how cleaned text is sent to the model.
type AnalysisSettings struct {
	// MaxInputChars is the largest amount of text sent in one request.
	MaxInputChars int

	// Overflow selects the handling of longer text.
	Overflow OverflowPolicy

	// Language is the language the model is asked to answer in.
	Language string
}

// PipelineConfig holds text preprocessing pipeline configuration.
// Uses generic map-based config for extensibility - new cleaners can be added
// without modifying this struct.
type PipelineConfig struct {
	// Steps is the ordered list of cleaner names to run.
	Steps []string

	// StepConfigs holds per-cleaner configuration as generic maps.
	// Key is cleaner name, value is cleaner-specific config.
	StepConfigs map[string]map[string]any
}

// GetStepConfig returns config for a specific cleaner, or nil if not set.
func (c *PipelineConfig) GetStepConfig(name string) map[string]any {
	if c.StepConfigs == nil {
		return nil
	}
	return c.StepConfigs[name]
}

// DefaultPipelineConfig returns the default preprocessing pipeline.
func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		Steps: []string{"headerfooter", "pagenumbers", "dehyphenate", "whitespace"},
		StepConfigs: map[string]map[string]any{
			"headerfooter": {
				"scan_lines": 2,
				"min_ratio":  0.6,
			},
		},
	}
}

// ExportSettings controls report output.
type ExportSettings struct {
	// Formats lists the report formats to write.
	Formats []Format

	// OutputDir overrides the report directory. Empty means next to the input.
	OutputDir string

	// Suffix is appended to the input stem to build report names.
	Suffix string
}

// WatchSettings controls watch mode.
type WatchSettings struct {
	// MaxPerMinute caps how many files are analysed per minute.
	MaxPerMinute int
}

// AppSettings holds all application settings.
type AppSettings struct {
	// LLM holds model server settings.
	LLM LLMSettings

	// Analysis holds prompt input settings.
	Analysis AnalysisSettings

	// Preprocess holds the cleaning pipeline.
	Preprocess PipelineConfig

	// Export holds report output settings.
	Export ExportSettings

	// Watch holds watch mode settings.
	Watch WatchSettings
}

// Defaults used when nothing is configured.
const (
	DefaultLLMTimeoutSeconds = 300
	DefaultTemperature       = 0.2
	DefaultContextWindow     = 8192
	DefaultMaxInputChars     = 12000
	DefaultLanguage          = "English"
	DefaultReportSuffix      = "_Report"
	DefaultWatchPerMinute    = 6
)

// DefaultAppSettings returns settings that work against a stock local Ollama install.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		LLM: LLMSettings{
			Provider:       AIProviderOllama,
			Model:          DefaultLLMModels()[AIProviderOllama],
			TimeoutSeconds: DefaultLLMTimeoutSeconds,
			Temperature:    DefaultTemperature,
			ContextWindow:  DefaultContextWindow,
		},
		Analysis: AnalysisSettings{
			MaxInputChars: DefaultMaxInputChars,
			Overflow:      OverflowTruncate,
			Language:      DefaultLanguage,
		},
		Preprocess: DefaultPipelineConfig(),
		Export: ExportSettings{
			Formats: AllFormats(),
			Suffix:  DefaultReportSuffix,
		},
		Watch: WatchSettings{
			MaxPerMinute: DefaultWatchPerMinute,
		},
	}
}

// AllLLMProviders returns providers that support LLM operations.
func AllLLMProviders() []AIProvider {
	return []AIProvider{
		AIProviderOllama,
		AIProviderOpenAI,
		AIProviderGemini,
	}
}

// DefaultLLMModels returns default models for each LLM provider.
func DefaultLLMModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama: "qwen2.5:3b",
		AIProviderOpenAI: "qwen2.5-3b-instruct",
		AIProviderGemini: "gemini-2.5-flash",
	}
}

// DefaultBaseURLs returns the endpoint each local provider listens on out of the box.
func DefaultBaseURLs() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama: "http://localhost:11434",
		AIProviderOpenAI: "http://localhost:1234/v1",
	}
}
