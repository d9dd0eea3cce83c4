// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - DocumentReader: Extracts page text from a PDF or DOCX container
//   - TextCleaner: One step of the preprocessing pipeline
//   - LLMService: Sends prompts to a model server
//   - ReportRenderer: Writes a report in one output format
//   - ConfigStore: Application configuration
//   - PromptStore: User-editable prompt templates
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - FileWatcher: Only needed by watch mode.
//   - AIConfigValidator: Without it, settings are saved without a connectivity check.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter, reader, or exporter package
package driven
