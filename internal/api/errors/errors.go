package errors

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"

	apperrors "captionflow/internal/app/errors"
)

// ErrorKind represents different types of API errors
type ErrorKind string

const (
	KindValidation         ErrorKind = "validation"
	KindNotFound           ErrorKind = "not_found"
	KindUnauthorized       ErrorKind = "unauthorized"
	KindForbidden          ErrorKind = "forbidden"
	KindConflict           ErrorKind = "conflict"
	KindInternal           ErrorKind = "internal"
	KindServiceUnavailable ErrorKind = "service_unavailable"
	KindBadRequest         ErrorKind = "bad_request"
	KindUnsupportedMedia   ErrorKind = "unsupported_media"
	KindTooLarge           ErrorKind = "too_large"
	KindRateLimited        ErrorKind = "rate_limited"
	KindUpstream           ErrorKind = "upstream"
	KindTimeout            ErrorKind = "timeout"
)

// APIError represents a structured API error response
type APIError struct {
	Kind      ErrorKind         `json:"kind"`
	Message   string            `json:"error"`
	Details   map[string]string `json:"details,omitempty"`
	RequestID string            `json:"request_id,omitempty"`
	Code      string            `json:"code,omitempty"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	return e.Message
}

// HTTPStatus returns the appropriate HTTP status code for the error kind
func (e *APIError) HTTPStatus() int {
	switch e.Kind {
	case KindValidation:
		return http.StatusUnprocessableEntity
	case KindBadRequest:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindConflict:
		return http.StatusConflict
	case KindServiceUnavailable:
		return http.StatusServiceUnavailable
	case KindUnsupportedMedia:
		return http.StatusUnsupportedMediaType
	case KindTooLarge:
		return http.StatusRequestEntityTooLarge
	case KindRateLimited:
		return http.StatusTooManyRequests
	case KindUpstream:
		return http.StatusBadGateway
	case KindTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// NewValidationError creates a validation error with field details
func NewValidationError(message string, fields map[string]string) *APIError {
	return &APIError{
		Kind:    KindValidation,
		Message: message,
		Details: fields,
	}
}

// NewNotFoundError creates a not found error
func NewNotFoundError(resource string) *APIError {
	return &APIError{
		Kind:    KindNotFound,
		Message: fmt.Sprintf("%s not found", resource),
	}
}

// NewInternalError creates an internal server error
func NewInternalError(message string) *APIError {
	return &APIError{
		Kind:    KindInternal,
		Message: message,
	}
}

// NewBadRequestError creates a bad request error
func NewBadRequestError(message string) *APIError {
	return &APIError{
		Kind:    KindBadRequest,
		Message: message,
	}
}

// NewServiceUnavailableError creates a service unavailable error
func NewServiceUnavailableError(message string) *APIError {
	return &APIError{
		Kind:    KindServiceUnavailable,
		Message: message,
	}
}

// providerKinds keeps client-meaningful provider statuses; everything else
// becomes a bad gateway.
var providerKinds = map[int]ErrorKind{
	http.StatusUnauthorized:          KindUnauthorized,
	http.StatusForbidden:             KindForbidden,
	http.StatusNotFound:              KindNotFound,
	http.StatusRequestEntityTooLarge: KindTooLarge,
	http.StatusTooManyRequests:       KindRateLimited,
}

// FromDomain maps any error onto the client-facing shape. Unknown errors
// keep their message out of the response.
func FromDomain(err error) *APIError {
	if err == nil {
		return nil
	}

	var apiErr *APIError
	if stderrors.As(err, &apiErr) {
		return apiErr
	}

	var (
		resolution  *apperrors.ResolutionError
		unsupported *apperrors.UnsupportedMediaError
		providerErr *apperrors.ProviderError
		format      *apperrors.TranslationFormatError
		upload      *apperrors.ContextUploadError
		configErr   *apperrors.ConfigurationError
	)

	switch {
	case stderrors.As(err, &resolution):
		return &APIError{Kind: KindValidation, Message: resolution.Error(), Code: "resolution_failed"}
	case stderrors.As(err, &unsupported):
		return &APIError{Kind: KindUnsupportedMedia, Message: unsupported.Error(), Code: "unsupported_media"}
	case stderrors.As(err, &configErr):
		return &APIError{Kind: KindInternal, Message: configErr.Error(), Code: "configuration"}
	case stderrors.As(err, &format):
		return &APIError{Kind: KindUpstream, Message: format.Error(), Code: "translation_format"}
	case stderrors.As(err, &upload):
		return &APIError{Kind: KindUpstream, Message: upload.Error(), Code: "context_upload"}
	case stderrors.As(err, &providerErr):
		kind, ok := providerKinds[providerErr.StatusCode]
		if !ok {
			kind = KindUpstream
		}
		msg := fmt.Sprintf("%s request failed", providerErr.Provider)
		if providerErr.Detail != "" {
			msg += ": " + providerErr.Detail
		}
		return &APIError{Kind: kind, Message: msg, Code: "provider_error"}
	case stderrors.Is(err, context.DeadlineExceeded):
		return &APIError{Kind: KindTimeout, Message: "the operation timed out", Code: "timeout"}
	case stderrors.Is(err, apperrors.ErrProviderNotFound),
		stderrors.Is(err, apperrors.ErrJobNotFound):
		return &APIError{Kind: KindNotFound, Message: err.Error()}
	case stderrors.Is(err, apperrors.ErrProviderDisabled):
		return &APIError{Kind: KindBadRequest, Message: err.Error()}
	case stderrors.Is(err, apperrors.ErrFileTooLarge):
		return &APIError{Kind: KindTooLarge, Message: err.Error()}
	case stderrors.Is(err, apperrors.ErrStorageDisabled):
		return &APIError{Kind: KindServiceUnavailable, Message: err.Error()}
	case stderrors.Is(err, apperrors.ErrJobNotReady):
		return &APIError{Kind: KindConflict, Message: err.Error()}
	}

	var domainErr *apperrors.Error
	if stderrors.As(err, &domainErr) && domainErr.Unwrap() == nil {
		// cause-less domain errors are input problems such as "captions is required"
		return &APIError{Kind: KindBadRequest, Message: err.Error()}
	}
	return NewInternalError("Internal server error")
}
