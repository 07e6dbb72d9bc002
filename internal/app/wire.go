//go:build wireinject
// +build wireinject

package app

import (
	"context"

	"github.com/google/wire"
	"go.uber.org/zap"

	"captionflow/internal/app/pipeline"
	"captionflow/internal/config"
)

// InitializeApp wires every component from settings. ctx bounds the storage
// backend checks made at startup.
func InitializeApp(ctx context.Context, settings *config.Settings, logger *zap.Logger) (*App, error) {
	wire.Build(
		providePrometheus,
		provideMetrics,
		provideRegistry,
		provideResolver,
		provideTracker,
		provideJobTable,
		providePipelineConfig,
		pipeline.NewOrchestrator,
		provideTranslator,
		providePersister,
		provideServices,
		newApp,
	)
	return &App{}, nil
}
