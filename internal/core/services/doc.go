// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// AnalysisService runs the requirements pipeline for one file, WatchService
// feeds it from a directory and SettingsService manages configuration.
package services
