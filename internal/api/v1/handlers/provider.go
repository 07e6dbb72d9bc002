package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"captionflow/internal/api/middleware"
	"captionflow/internal/api/v1/services"
)

// ProviderHandler handles provider-related API endpoints
type ProviderHandler struct {
	service services.ProviderService
	logger  *zap.Logger
}

// NewProviderHandler creates a new provider handler
func NewProviderHandler(service services.ProviderService, logger *zap.Logger) *ProviderHandler {
	return &ProviderHandler{
		service: service,
		logger:  logger,
	}
}

// List handles GET /api/v1/providers
// Lists all registered transcription providers
//
// @Summary List all available providers
// @Description Retrieves every registered ASR provider with its capabilities, credential presence and health
// @Tags providers
// @Produce json
// @Success 200 {object} map[string]interface{} "List of providers" SchemaExample({"providers": [{"id": "speechmatics", "name": "Speechmatics", "type": "remote", "mode": "async", "available": true, "health_status": "healthy"}]})
// @Failure 500 {object} errors.APIError "Internal server error"
// @Router /api/v1/providers [get]
func (h *ProviderHandler) List(c *gin.Context) {
	providers, err := h.service.ListProviders(c.Request.Context())
	if err != nil {
		middleware.HandleError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"providers": providers,
	})
}
