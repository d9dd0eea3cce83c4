// Package cli implements the reqscan command line interface.
package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/reqscan/internal/core/domain"
	"github.com/custodia-labs/reqscan/internal/core/ports/driving"
	"github.com/custodia-labs/reqscan/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

// Options holds the global flags.
type Options struct {
	// ConfigDir overrides the configuration directory (default ~/.reqscan).
	ConfigDir string

	// Verbose enables debug logging.
	Verbose bool
}

// PipelineFactory builds the services a command needs from the effective settings.
type PipelineFactory interface {
	// Analysis builds the full pipeline including the model client.
	// The returned func releases the model client.
	Analysis(ctx context.Context, settings domain.AppSettings) (driving.AnalysisService, func(), error)

	// Offline builds a pipeline without a model client. Analyze fails on it
	// while Extract and ParseAndExport work.
	Offline(settings domain.AppSettings) (driving.AnalysisService, error)

	// Watch wraps an analysis service for watch mode.
	Watch(analysis driving.AnalysisService, settings domain.AppSettings) driving.WatchService

	// Ping checks that the model server for settings is reachable.
	Ping(ctx context.Context, settings *domain.LLMSettings) error
}

// Services holds everything the commands call into.
type Services struct {
	Settings driving.SettingsService
	Pipeline PipelineFactory
}

// BootstrapFunc creates the services once the global flags are parsed.
type BootstrapFunc func(opts Options) (*Services, error)

var (
	globalOpts Options
	bootstrap  BootstrapFunc

	settingsService driving.SettingsService
	pipeline        PipelineFactory
)

// ErrNotConfigured is returned when a command runs without services.
var ErrNotConfigured = errors.New("services not configured")

var rootCmd = &cobra.Command{
	Use:   "reqscan",
	Short: "Extract requirements from specification documents",
	Long: `reqscan reads a PDF or DOCX specification, sends the cleaned text to a
language model and writes the functional requirements, non-functional
requirements and open risks it finds to PDF and DOCX reports.

The model runs on a local server (Ollama or any OpenAI-compatible server)
or on Gemini. Settings live in ~/.reqscan/config.toml.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&globalOpts.Verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&globalOpts.ConfigDir, "config-dir", "", "configuration directory (default ~/.reqscan)")
}

// SetBootstrap sets the function that creates services before a command runs.
func SetBootstrap(fn BootstrapFunc) {
	bootstrap = fn
}

// SetVersion sets the version printed by the version command.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// setup applies global flags and creates the services.
func setup(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(globalOpts.Verbose)

	if cmd == versionCmd || bootstrap == nil {
		return nil
	}
	s, err := bootstrap(globalOpts)
	if err != nil {
		return err
	}
	settingsService = s.Settings
	pipeline = s.Pipeline
	return nil
}

// commandContext returns the command context, falling back to Background.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// currentSettings loads the settings the command starts from.
func currentSettings() (*domain.AppSettings, error) {
	if settingsService == nil || pipeline == nil {
		return nil, ErrNotConfigured
	}
	return settingsService.Get()
}
