package driven

// PromptStore provides access to LLM prompt templates.
// Implementations may load prompts from files or embed them in the binary.
type PromptStore interface {
	// Load returns the prompt template for the given name.
	// If the prompt is not found, implementations should return a sensible default
	// or an error, depending on whether the prompt is required.
	Load(name string) (string, error)

	// Reload clears any cached prompts, forcing fresh loads on next access.
	// This is useful when prompts may have been edited on disk.
	Reload()
}

// Well-known prompt names.
const (
	// PromptAnalysisSystem instructs the model to act as a requirements analyst
	// and fixes the Markdown layout of the answer.
	// The template expects one %s placeholder for the answer language.
	PromptAnalysisSystem = "analysis_system"

	// PromptAnalysisUser wraps the document text.
	// The template expects one %s placeholder for the cleaned text.
	PromptAnalysisUser = "analysis_user"
)

// PromptNames returns all prompt names in a stable order.
func PromptNames() []string {
	return []string{PromptAnalysisSystem, PromptAnalysisUser}
}
