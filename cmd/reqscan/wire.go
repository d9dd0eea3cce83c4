package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/custodia-labs/reqscan/internal/adapters/driven/ai"
	"github.com/custodia-labs/reqscan/internal/adapters/driven/config/env"
	"github.com/custodia-labs/reqscan/internal/adapters/driven/config/file"
	"github.com/custodia-labs/reqscan/internal/adapters/driven/watcher"
	"github.com/custodia-labs/reqscan/internal/adapters/driving/cli"
	"github.com/custodia-labs/reqscan/internal/core/domain"
	"github.com/custodia-labs/reqscan/internal/core/ports/driven"
	"github.com/custodia-labs/reqscan/internal/core/ports/driving"
	"github.com/custodia-labs/reqscan/internal/core/services"
	"github.com/custodia-labs/reqscan/internal/exporters"
	"github.com/custodia-labs/reqscan/internal/logger"
	"github.com/custodia-labs/reqscan/internal/preprocess"
	"github.com/custodia-labs/reqscan/internal/preprocess/segment"
	"github.com/custodia-labs/reqscan/internal/readers"
	"github.com/custodia-labs/reqscan/internal/requirements"
)

// bootstrap opens the configuration and builds the services the commands use.
func bootstrap(opts cli.Options) (*cli.Services, error) {
	dir := opts.ConfigDir
	if dir == "" {
		d, err := file.DefaultDir()
		if err != nil {
			return nil, err
		}
		dir = d
	}

	// A .env in the working directory wins over the one in the config directory.
	if _, err := env.LoadDotEnv(".env", filepath.Join(dir, ".env")); err != nil {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	store, err := file.NewConfigStore(dir)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	prompts, err := file.NewPromptStore(filepath.Join(dir, "prompts"))
	if err != nil {
		return nil, fmt.Errorf("open prompts: %w", err)
	}
	logger.Debug("config: %s", store.Path())

	return &cli.Services{
		Settings: services.NewSettingsService(env.New(store), ai.NewConfigValidator()),
		Pipeline: &pipelineFactory{prompts: prompts},
	}, nil
}

// Ensure pipelineFactory implements the interface.
var _ cli.PipelineFactory = (*pipelineFactory)(nil)

// pipelineFactory assembles the concrete readers, cleaners, model client
// and exporters behind the core services.
type pipelineFactory struct {
	prompts driven.PromptStore
}

// Analysis builds the pipeline with a model client. The client is not pinged
// so that an unreachable server is reported by the analysing stage.
func (f *pipelineFactory) Analysis(ctx context.Context, settings domain.AppSettings) (driving.AnalysisService, func(), error) {
	llm, err := ai.CreateLLMService(ctx, &settings.LLM)
	if err != nil {
		return nil, nil, err
	}
	svc, err := f.build(settings, llm)
	if err != nil {
		_ = llm.Close()
		return nil, nil, err
	}
	logger.Debug("model: %s via %s", llm.ModelName(), settings.LLM.Provider)
	return svc, func() { _ = llm.Close() }, nil
}

// Offline builds the pipeline without a model client.
func (f *pipelineFactory) Offline(settings domain.AppSettings) (driving.AnalysisService, error) {
	return f.build(settings, nil)
}

// Watch wraps analysis in a directory watcher.
func (f *pipelineFactory) Watch(analysis driving.AnalysisService, settings domain.AppSettings) driving.WatchService {
	return services.NewWatchService(watcher.New(), analysis, newExporter(settings), settings.Watch.MaxPerMinute)
}

// Ping creates the model client and checks the server.
func (f *pipelineFactory) Ping(ctx context.Context, settings *domain.LLMSettings) error {
	llm, err := ai.CreateAndValidateLLMService(ctx, settings)
	if err != nil {
		return err
	}
	return llm.Close()
}

func (f *pipelineFactory) build(settings domain.AppSettings, llm driven.LLMService) (*services.AnalysisService, error) {
	cleaners, err := preprocess.NewDefaultRegistry().BuildPipeline(settings.Preprocess)
	if err != nil {
		return nil, fmt.Errorf("preprocess: %w", err)
	}
	logger.Debug("cleaners: %v", cleaners.Names())

	return services.NewAnalysisService(
		readers.Loader{},
		readers.NewDefaultRegistry(),
		cleaners,
		segment.New(),
		llm,
		f.prompts,
		requirements.Parser{},
		newExporter(settings),
		settings,
	), nil
}

func newExporter(settings domain.AppSettings) *exporters.Exporter {
	return exporters.New(exporters.WithSuffix(settings.Export.Suffix))
}
