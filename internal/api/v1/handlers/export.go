package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"captionflow/internal/api/middleware"
	"captionflow/internal/api/v1/dto"
	"captionflow/internal/api/v1/services"
)

// ExportHandler handles export-related HTTP requests
type ExportHandler struct {
	service services.ExportService
	logger  *zap.Logger
}

// NewExportHandler creates a new export handler
func NewExportHandler(service services.ExportService, logger *zap.Logger) *ExportHandler {
	return &ExportHandler{
		service: service,
		logger:  logger,
	}
}

// Export handles POST /export
//
// @Summary Download captions as a subtitle file
// @Tags export
// @Accept json
// @Produce application/x-subrip
// @Param request body dto.ExportRequest true "Captions, title and format"
// @Success 200 {file} file "Subtitle attachment"
// @Failure 422 {object} errors.APIError "Validation error"
// @Router /export [post]
func (h *ExportHandler) Export(c *gin.Context) {
	var req dto.ExportRequest
	if err := middleware.ValidateRequest(c, &req); err != nil {
		middleware.HandleError(c, h.logger, err)
		return
	}

	artifact, err := h.service.Export(c.Request.Context(), &req)
	if err != nil {
		middleware.HandleError(c, h.logger, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", artifact.Filename))
	c.Data(http.StatusOK, artifact.ContentType, artifact.Data)
}

// Persist handles POST /persist
//
// @Summary Export captions into the storage backend
// @Tags export
// @Accept json
// @Produce json
// @Param request body dto.ExportRequest true "Captions, title and format"
// @Success 200 {object} dto.StoredObjectResponse
// @Failure 503 {object} errors.APIError "Storage disabled"
// @Router /persist [post]
func (h *ExportHandler) Persist(c *gin.Context) {
	var req dto.ExportRequest
	if err := middleware.ValidateRequest(c, &req); err != nil {
		middleware.HandleError(c, h.logger, err)
		return
	}

	ref, err := h.service.Persist(c.Request.Context(), &req)
	if err != nil {
		middleware.HandleError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, ref)
}
