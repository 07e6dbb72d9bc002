package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"captionflow/internal/api/middleware"
	"captionflow/internal/api/v1/dto"
	"captionflow/internal/api/v1/services"
)

// TranscriptionHandler handles transcription-related API endpoints
type TranscriptionHandler struct {
	service services.TranscriptionService
	logger  *zap.Logger
}

// NewTranscriptionHandler creates a new transcription handler
func NewTranscriptionHandler(service services.TranscriptionService, logger *zap.Logger) *TranscriptionHandler {
	return &TranscriptionHandler{
		service: service,
		logger:  logger,
	}
}

// FromFile handles POST /transcribe-from-file
//
// @Summary Transcribe an uploaded media file
// @Description Synchronous providers answer with captions; asynchronous ones with a job id to poll
// @Tags transcriptions
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Audio or video file"
// @Param apiKey formData string false "Provider API key"
// @Param language formData string false "Language code or auto" default(hu)
// @Param provider formData string false "Provider name"
// @Success 200 {object} dto.JobResponse
// @Failure 415 {object} errors.APIError "Unsupported media"
// @Failure 422 {object} errors.APIError "Validation error"
// @Failure 502 {object} errors.APIError "Provider failure"
// @Router /transcribe-from-file [post]
func (h *TranscriptionHandler) FromFile(c *gin.Context) {
	var form dto.TranscribeFileForm
	if err := middleware.ValidateForm(c, &form); err != nil {
		middleware.HandleError(c, h.logger, err)
		return
	}

	upload, f, err := formFile(c, "file", true)
	if err != nil {
		middleware.HandleError(c, h.logger, err)
		return
	}
	defer f.Close()

	resp, err := h.service.TranscribeUpload(c.Request.Context(), c.GetString(middleware.RequestIDKey), *upload, form)
	if err != nil {
		middleware.HandleError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// FromURL handles POST /transcribe-from-url
//
// @Summary Transcribe media behind a URL
// @Description The URL may point at a media file or at a page embedding one
// @Tags transcriptions
// @Accept json
// @Produce json
// @Param request body dto.TranscribeURLRequest true "Media URL and options"
// @Success 200 {object} dto.JobResponse
// @Failure 422 {object} errors.APIError "Media could not be resolved"
// @Failure 502 {object} errors.APIError "Provider failure"
// @Router /transcribe-from-url [post]
func (h *TranscriptionHandler) FromURL(c *gin.Context) {
	var req dto.TranscribeURLRequest
	if err := middleware.ValidateRequest(c, &req); err != nil {
		middleware.HandleError(c, h.logger, err)
		return
	}

	resp, err := h.service.TranscribeURL(c.Request.Context(), c.GetString(middleware.RequestIDKey), req)
	if err != nil {
		middleware.HandleError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// FromStoredFile handles POST /process-stored-file
//
// @Summary Transcribe a previously stored upload
// @Tags transcriptions
// @Accept json
// @Produce json
// @Param request body dto.ProcessStoredFileRequest true "Stored file URL and options"
// @Success 200 {object} dto.JobResponse
// @Failure 422 {object} errors.APIError "Validation error"
// @Router /process-stored-file [post]
func (h *TranscriptionHandler) FromStoredFile(c *gin.Context) {
	var req dto.ProcessStoredFileRequest
	if err := middleware.ValidateRequest(c, &req); err != nil {
		middleware.HandleError(c, h.logger, err)
		return
	}

	resp, err := h.service.ProcessStoredFile(c.Request.Context(), c.GetString(middleware.RequestIDKey), req)
	if err != nil {
		middleware.HandleError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// JobStatus handles GET /job-status/:job_id
//
// @Summary Probe an asynchronous job
// @Tags transcriptions
// @Produce json
// @Param job_id path string true "Provider job id"
// @Param apiKey query string false "Provider API key"
// @Param provider query string false "Provider name"
// @Success 200 {object} dto.JobResponse
// @Failure 404 {object} errors.APIError "Unknown job"
// @Router /job-status/{job_id} [get]
func (h *TranscriptionHandler) JobStatus(c *gin.Context) {
	var query dto.JobStatusQuery
	if err := middleware.ValidateQuery(c, &query); err != nil {
		middleware.HandleError(c, h.logger, err)
		return
	}

	resp, err := h.service.JobStatus(c.Request.Context(), c.Param("job_id"), query)
	if err != nil {
		middleware.HandleError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
