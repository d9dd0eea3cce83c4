package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAIProvider_IsValid(t *testing.T) {
	tests := []struct {
		provider AIProvider
		expected bool
	}{
		{AIProviderOllama, true},
		{AIProviderOpenAI, true},
		{AIProviderGemini, true},
		{AIProvider("anthropic"), false},
		{AIProvider(""), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.provider), func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.provider.IsValid())
		})
	}
}

func TestAIProvider_Traits(t *testing.T) {
	assert.False(t, AIProviderOllama.RequiresAPIKey())
	assert.False(t, AIProviderOpenAI.RequiresAPIKey())
	assert.True(t, AIProviderGemini.RequiresAPIKey())

	assert.True(t, AIProviderOllama.IsLocal())
	assert.True(t, AIProviderOpenAI.IsLocal())
	assert.False(t, AIProviderGemini.IsLocal())

	assert.Equal(t, "Ollama (local)", AIProviderOllama.Description())
	assert.Equal(t, "Unknown", AIProvider("x").Description())
}

func TestLLMSettings_IsConfigured(t *testing.T) {
	assert.True(t, LLMSettings{Provider: AIProviderOllama}.IsConfigured())
	assert.False(t, LLMSettings{Provider: AIProviderGemini}.IsConfigured())
	assert.True(t, LLMSettings{Provider: AIProviderGemini, APIKey: "k"}.IsConfigured())
	assert.False(t, LLMSettings{}.IsConfigured())
}

func TestLLMSettings_Timeout(t *testing.T) {
	assert.Equal(t, 30*time.Second, LLMSettings{TimeoutSeconds: 30}.Timeout())
	assert.Equal(t, time.Duration(0), LLMSettings{}.Timeout())
}

func TestOverflowPolicy_IsValid(t *testing.T) {
	assert.True(t, OverflowTruncate.IsValid())
	assert.True(t, OverflowSplit.IsValid())
	assert.False(t, OverflowPolicy("drop").IsValid())
}

func TestDefaultAppSettings(t *testing.T) {
	s := DefaultAppSettings()

	assert.Equal(t, AIProviderOllama, s.LLM.Provider)
	assert.Equal(t, "qwen2.5:3b", s.LLM.Model)
	assert.True(t, s.LLM.IsConfigured())
	assert.Equal(t, 12000, s.Analysis.MaxInputChars)
	assert.Equal(t, OverflowTruncate, s.Analysis.Overflow)
	assert.Equal(t, []string{"headerfooter", "pagenumbers", "dehyphenate", "whitespace"}, s.Preprocess.Steps)
	assert.Equal(t, []Format{FormatPDF, FormatDOCX}, s.Export.Formats)
	assert.Equal(t, "_Report", s.Export.Suffix)
	assert.Equal(t, 6, s.Watch.MaxPerMinute)
}

func TestPipelineConfig_GetStepConfig(t *testing.T) {
	cfg := DefaultPipelineConfig()
	assert.Equal(t, 2, cfg.GetStepConfig("headerfooter")["scan_lines"])
	assert.Nil(t, cfg.GetStepConfig("whitespace"))

	var empty PipelineConfig
	assert.Nil(t, empty.GetStepConfig("headerfooter"))
}
