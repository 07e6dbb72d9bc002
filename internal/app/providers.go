package app

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"captionflow/internal/api/server"
	"captionflow/internal/api/v1/routes"
	"captionflow/internal/api/v1/services"
	"captionflow/internal/app/api/provider"
	"captionflow/internal/app/delivery"
	"captionflow/internal/app/media"
	"captionflow/internal/app/pipeline"
	"captionflow/internal/app/tracker"
	"captionflow/internal/app/translate"
	"captionflow/internal/app/util/command"
	"captionflow/internal/config"
	"captionflow/internal/downloader"

	// adapters register their creators in init
	_ "captionflow/internal/app/api/assemblyai"
	_ "captionflow/internal/app/api/elevenlabs"
	_ "captionflow/internal/app/api/openai/whisper"
	_ "captionflow/internal/app/api/speechmatics"
	_ "captionflow/internal/app/api/whisper_cpp"
	_ "captionflow/internal/app/api/whisper_server"
)

// App holds the long-lived components shared by the CLI and the HTTP server.
type App struct {
	Settings     *config.Settings
	Logger       *zap.Logger
	Registry     *provider.Registry
	Orchestrator *pipeline.Orchestrator
	Translator   *translate.Translator
	Persister    delivery.Persister
	Metrics      *prometheus.Registry
	Services     *routes.ServiceContainer
}

func newApp(
	settings *config.Settings,
	logger *zap.Logger,
	registry *provider.Registry,
	orchestrator *pipeline.Orchestrator,
	translator *translate.Translator,
	persister delivery.Persister,
	metrics *prometheus.Registry,
	container *routes.ServiceContainer,
) *App {
	return &App{
		Settings:     settings,
		Logger:       logger,
		Registry:     registry,
		Orchestrator: orchestrator,
		Translator:   translator,
		Persister:    persister,
		Metrics:      metrics,
		Services:     container,
	}
}

// Server builds the HTTP surface over the app's services.
func (a *App) Server() *server.Server {
	cfg := server.DefaultConfig(a.Settings.Addr(), a.Settings.Env)
	// multipart overhead on top of the largest accepted upload
	cfg.MaxBodyBytes = a.Settings.MaxUploadBytes() + 1<<20
	cfg.CORSOrigins = a.Settings.Server.CORSOrigins
	return server.NewServer(cfg, a.Services, a.Metrics, a.Logger)
}

func providePrometheus() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

func provideMetrics(reg *prometheus.Registry) *provider.Metrics {
	return provider.NewMetrics(reg)
}

func provideRegistry(settings *config.Settings, logger *zap.Logger) (*provider.Registry, error) {
	cfg, err := settings.ProviderConfiguration()
	if err != nil {
		return nil, err
	}
	return provider.BuildRegistry(cfg, logger)
}

// provideResolver tries the generic extractors first (yt-dlp when
// configured, then OpenGraph tags) and the host-specific APIs after them.
func provideResolver(settings *config.Settings, logger *zap.Logger) *media.Resolver {
	client := &http.Client{Timeout: 30 * time.Second}

	var extractors []media.Extractor
	if settings.YtDlpBinary != "" {
		extractors = append(extractors, media.NewYtDlpExtractor(settings.YtDlpBinary, command.NewCmdRunner()))
	}
	extractors = append(extractors, media.NewOpenGraphExtractor(client))

	return media.NewResolver(
		media.WithExtractors(extractors...),
		media.WithFallbacks(downloader.NewXiaoyuzhouExtractor(client)),
		media.WithLogger(logger),
		media.WithMaxBytes(settings.MaxUploadBytes()),
	)
}

func provideTracker(settings *config.Settings, metrics *provider.Metrics, logger *zap.Logger) *tracker.Tracker {
	return tracker.New(settings.PollInterval, tracker.WithMetrics(metrics), tracker.WithLogger(logger))
}

// provideJobTable keeps jobs in memory, written through to Redis when
// REDIS_URL is set so several servers can answer /job-status.
func provideJobTable(ctx context.Context, settings *config.Settings, logger *zap.Logger) (*tracker.JobTable, error) {
	if settings.RedisURL == "" {
		return tracker.NewJobTable(settings.JobTTL), nil
	}
	store, err := tracker.NewRedisStore(settings.RedisURL, settings.JobTTL)
	if err != nil {
		return nil, err
	}
	if err := store.Ping(ctx); err != nil {
		store.Close()
		return nil, err
	}
	return tracker.NewJobTable(settings.JobTTL, tracker.WithStore(store, logger)), nil
}

func providePipelineConfig(settings *config.Settings) pipeline.Config {
	return pipeline.Config{
		DefaultLanguage: settings.DefaultLanguage,
		PollTimeout:     settings.PollTimeout,
	}
}

func provideTranslator(settings *config.Settings, metrics *provider.Metrics, logger *zap.Logger) *translate.Translator {
	return NewTranslator(settings, metrics, logger)
}

// NewTranslator builds the configured translation backend. extra options are
// applied last, so callers can attach progress reporting.
func NewTranslator(settings *config.Settings, metrics *provider.Metrics, logger *zap.Logger, extra ...translate.Option) *translate.Translator {
	opts := []translate.Option{
		translate.WithBatchSize(settings.Translation.BatchSize),
		translate.WithPollInterval(settings.ContextPollInterval),
		translate.WithLogger(logger),
		translate.WithMetrics(metrics),
	}

	var generator translate.Generator
	switch settings.Translation.Provider {
	case "openai":
		generator = translate.NewOpenAIGenerator("", settings.Translation.OpenAIModel)
	default:
		generator = translate.NewGeminiGenerator(settings.Translation.GeminiModel, "")
		opts = append(opts, translate.WithContextStore(translate.NewGeminiContextStore("")))
	}
	return translate.NewTranslator(generator, append(opts, extra...)...)
}

func providePersister(ctx context.Context, settings *config.Settings) (delivery.Persister, error) {
	return delivery.NewPersister(ctx, settings.Storage)
}

func provideServices(
	settings *config.Settings,
	orchestrator *pipeline.Orchestrator,
	translator *translate.Translator,
	persister delivery.Persister,
	registry *provider.Registry,
) *routes.ServiceContainer {
	return &routes.ServiceContainer{
		TranscriptionService: services.NewTranscriptionService(orchestrator, settings.WorkDir),
		TranslationService: services.NewTranslationService(
			translator, settings.TranslationCredential(), settings.WorkDir, settings.MaxUploadBytes()),
		ExportService:   services.NewExportService(persister),
		StorageService:  services.NewStorageService(persister, settings.MaxUploadBytes()),
		ProviderService: services.NewProviderService(registry),
	}
}
