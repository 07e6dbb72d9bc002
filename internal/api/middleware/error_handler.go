package middleware

import (
	stderrors "errors"
	"fmt"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"captionflow/internal/api/errors"
	apperrors "captionflow/internal/app/errors"
)

// ErrorHandler recovers panics and answers with an internal error.
func ErrorHandler(logger *zap.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		requestID := c.GetString(RequestIDKey)

		err, ok := recovered.(error)
		if !ok {
			err = fmt.Errorf("panic: %v", recovered)
		}
		logger.Error("Recovered from panic",
			zap.Error(err),
			zap.String("request_id", requestID),
			zap.String("path", c.Request.URL.Path),
			zap.String("method", c.Request.Method),
		)

		apiErr := errors.NewInternalError("Internal server error")
		apiErr.RequestID = requestID
		c.AbortWithStatusJSON(apiErr.HTTPStatus(), apiErr)
	})
}

// HandleError writes err as an APIError response. Upstream provider details
// and internal causes go to the log, not to the client.
func HandleError(c *gin.Context, logger *zap.Logger, err error) {
	if err == nil {
		return
	}

	apiErr := errors.FromDomain(err)
	// copy so shared APIError values are not mutated across requests
	resp := *apiErr
	resp.RequestID = c.GetString(RequestIDKey)

	fields := []zap.Field{
		zap.String("request_id", resp.RequestID),
		zap.String("path", c.Request.URL.Path),
		zap.Int("status", resp.HTTPStatus()),
		zap.Error(err),
	}
	var providerErr *apperrors.ProviderError
	if stderrors.As(err, &providerErr) {
		fields = append(fields,
			zap.String("provider", providerErr.Provider),
			zap.Int("upstream_status", providerErr.StatusCode),
			zap.Bool("retryable", providerErr.Retryable),
		)
	}
	if resp.Kind == errors.KindInternal {
		logger.Error("Request failed", fields...)
	} else {
		logger.Warn("Request failed", fields...)
	}

	c.Error(err)
	c.AbortWithStatusJSON(resp.HTTPStatus(), &resp)
}
