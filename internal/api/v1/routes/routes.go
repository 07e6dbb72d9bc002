package routes

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"captionflow/internal/api/v1/handlers"
	"captionflow/internal/api/v1/services"
)

// ServiceContainer holds all services needed by handlers
type ServiceContainer struct {
	TranscriptionService services.TranscriptionService
	TranslationService   services.TranslationService
	ExportService        services.ExportService
	StorageService       services.StorageService
	ProviderService      services.ProviderService
}

// RegisterRoutes registers the caption workflow routes on root and the
// versioned API on /api/v1.
func RegisterRoutes(router gin.IRouter, container *ServiceContainer, logger *zap.Logger) {
	transcriptionHandler := handlers.NewTranscriptionHandler(container.TranscriptionService, logger)
	router.POST("/transcribe-from-file", transcriptionHandler.FromFile)
	router.POST("/transcribe-from-url", transcriptionHandler.FromURL)
	router.POST("/start-transcription-from-url", transcriptionHandler.FromURL)
	router.POST("/process-stored-file", transcriptionHandler.FromStoredFile)
	router.GET("/job-status/:job_id", transcriptionHandler.JobStatus)

	translationHandler := handlers.NewTranslationHandler(container.TranslationService, logger)
	router.POST("/translate", translationHandler.Translate)

	exportHandler := handlers.NewExportHandler(container.ExportService, logger)
	router.POST("/export", exportHandler.Export)
	router.POST("/persist", exportHandler.Persist)

	storageHandler := handlers.NewStorageHandler(container.StorageService, logger)
	router.POST("/upload-to-storage", storageHandler.Upload)

	v1 := router.Group("/api/v1")
	{
		providerHandler := handlers.NewProviderHandler(container.ProviderService, logger)
		v1.GET("/providers", providerHandler.List)
	}
}
