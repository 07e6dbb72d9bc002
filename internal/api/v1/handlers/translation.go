package handlers

import (
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"captionflow/internal/api/middleware"
	"captionflow/internal/api/v1/dto"
	"captionflow/internal/api/v1/services"
)

type TranslationHandler struct {
	service services.TranslationService
	logger  *zap.Logger
}

func NewTranslationHandler(service services.TranslationService, logger *zap.Logger) *TranslationHandler {
	return &TranslationHandler{service: service, logger: logger}
}

// Translate handles POST /translate. JSON bodies carry captions directly;
// multipart bodies carry them as a JSON string next to an optional
// contextFile part.
//
// @Summary Translate captions
// @Description Returns the same cues with translated text; timing and numbering never change
// @Tags translation
// @Accept json,multipart/form-data
// @Produce json
// @Param request body dto.TranslateRequest true "Captions and target language"
// @Success 200 {object} dto.TranslateResponse
// @Failure 422 {object} errors.APIError "Validation error"
// @Failure 502 {object} errors.APIError "Model output changed the caption structure"
// @Router /translate [post]
func (h *TranslationHandler) Translate(c *gin.Context) {
	var req dto.TranslateRequest
	var contextFile *services.UploadedFile

	if strings.HasPrefix(c.ContentType(), "multipart/") {
		if err := middleware.ValidateForm(c, &req); err != nil {
			middleware.HandleError(c, h.logger, err)
			return
		}
		if err := req.DecodeCaptionsField(c.PostForm("captions")); err != nil {
			middleware.HandleError(c, h.logger, err)
			return
		}
		var f multipart.File
		var err error
		contextFile, f, err = formFile(c, "contextFile", false)
		if err != nil {
			middleware.HandleError(c, h.logger, err)
			return
		}
		if f != nil {
			defer f.Close()
		}
	} else if err := middleware.ValidateRequest(c, &req); err != nil {
		middleware.HandleError(c, h.logger, err)
		return
	}

	resp, err := h.service.Translate(c.Request.Context(), c.GetString(middleware.RequestIDKey), &req, contextFile)
	if err != nil {
		middleware.HandleError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
