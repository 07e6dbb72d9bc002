package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"captionflow/internal/api/middleware"
	"captionflow/internal/api/v1/services"
)

type StorageHandler struct {
	service services.StorageService
	logger  *zap.Logger
}

func NewStorageHandler(service services.StorageService, logger *zap.Logger) *StorageHandler {
	return &StorageHandler{service: service, logger: logger}
}

// Upload handles POST /upload-to-storage
//
// @Summary Store media for later transcription
// @Description The returned file_url can be passed to /process-stored-file
// @Tags storage
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Media file"
// @Success 200 {object} dto.StoredObjectResponse
// @Failure 413 {object} errors.APIError "File too large"
// @Failure 503 {object} errors.APIError "Storage disabled"
// @Router /upload-to-storage [post]
func (h *StorageHandler) Upload(c *gin.Context) {
	upload, f, err := formFile(c, "file", true)
	if err != nil {
		middleware.HandleError(c, h.logger, err)
		return
	}
	defer f.Close()

	resp, err := h.service.Upload(c.Request.Context(), *upload)
	if err != nil {
		middleware.HandleError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
