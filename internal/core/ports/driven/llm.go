// Package driven provides interfaces for infrastructure adapters (secondary/outbound ports).
package driven

import "context"

// LLMService sends prompts to a language model server.
//
// Implementations include:
//   - Ollama (local models)
//   - OpenAI-compatible servers (LM Studio, llama.cpp, vLLM)
//   - Gemini (remote)
type LLMService interface {
	// Chat sends the conversation and returns the reply text.
	// Implementations map transport failures to domain.ErrLLMUnavailable,
	// error statuses to domain.ErrLLMRequestFailed and empty replies to
	// domain.ErrEmptyResponse.
	Chat(ctx context.Context, messages []ChatMessage, opts ChatOptions) (string, error)

	// ModelName returns the name of the LLM model being used.
	ModelName() string

	// Ping validates the service is reachable by making a lightweight test request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// Chat message roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatMessage represents a single message in a conversation.
type ChatMessage struct {
	// Role is one of "system", "user", or "assistant".
	Role string

	// Content is the message text.
	Content string
}

// ChatOptions configures chat behaviour.
type ChatOptions struct {
	// MaxTokens is the maximum number of tokens to generate.
	MaxTokens int

	// Temperature controls randomness (0.0 = deterministic, 1.0 = creative).
	Temperature float64

	// ContextWindow asks the server for a context of this many tokens.
	// Only honoured by servers that allow it per request.
	ContextWindow int
}
