package driven

import "github.com/custodia-labs/reqscan/internal/core/domain"

// AIConfigValidator validates model server configurations.
// Implementations verify that configurations are valid by testing connectivity.
type AIConfigValidator interface {
	// ValidateLLM validates an LLM configuration by pinging the provider.
	// Returns nil if configuration is valid or not configured.
	ValidateLLM(config *domain.LLMSettings) error
}
