// Package driving declares what the front ends (CLI and progress view) call
// into: AnalysisService for single documents, WatchService for a directory
// and SettingsService for configuration.
//
// internal/core/services provides the implementations.
package driving
