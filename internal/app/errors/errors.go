package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// Common error types
var (
	// Configuration errors
	ErrMissingAPIKey = New("API key is required")
	ErrInvalidAPIKey = New("invalid API key format")
	ErrInvalidConfig = New("invalid configuration")

	// Provider errors
	ErrProviderNotFound = New("provider not found")
	ErrProviderDisabled = New("provider is disabled")
	ErrJobNotReady      = New("transcription job is not finished")
	ErrJobNotFound      = New("job not found")

	// Storage errors
	ErrStorageDisabled = New("no storage backend configured")

	// File errors
	ErrFileNotFound    = New("file not found")
	ErrFileTooLarge    = New("file exceeds the upload limit")
	ErrFileWriteFailed = New("file write failed")
)

// Error represents a standardized error
type Error struct {
	message string
	cause   error
}

// New creates a new error
func New(message string) *Error {
	return &Error{message: message}
}

// Newf creates a new formatted error
func Newf(format string, args ...interface{}) *Error {
	return &Error{message: fmt.Sprintf(format, args...)}
}

// Wrap wraps an error with additional context
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return &Error{
		message: message,
		cause:   err,
	}
}

// Wrapf wraps an error with formatted context
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return &Error{
		message: fmt.Sprintf(format, args...),
		cause:   err,
	}
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.message, e.cause)
	}
	return e.message
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.cause
}

// Is checks if the error matches target
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.message == t.message
}

// ResolutionError reports that no extractor could turn a media source into
// a fetchable resource. Causes holds one entry per attempted extractor.
type ResolutionError struct {
	Source string
	Causes []error
}

func (e *ResolutionError) Error() string {
	if len(e.Causes) == 0 {
		return fmt.Sprintf("cannot resolve media source %q", e.Source)
	}
	msgs := make([]string, 0, len(e.Causes))
	for _, c := range e.Causes {
		msgs = append(msgs, c.Error())
	}
	return fmt.Sprintf("cannot resolve media source %q: %s", e.Source, strings.Join(msgs, "; "))
}

func (e *ResolutionError) Unwrap() []error {
	return e.Causes
}

// UnsupportedMediaError is raised when the media type cannot be handled by
// the resolver or by the selected provider.
type UnsupportedMediaError struct {
	MediaType string
	Provider  string
}

func (e *UnsupportedMediaError) Error() string {
	if e.Provider != "" {
		return fmt.Sprintf("media type %q is not supported by provider %s", e.MediaType, e.Provider)
	}
	return fmt.Sprintf("unsupported media type %q", e.MediaType)
}

// ProviderError wraps a failure reported by a remote ASR or generative
// provider. Detail carries the provider's own message when it sent one.
type ProviderError struct {
	Provider   string
	StatusCode int
	Detail     string
	Retryable  bool
	Cause      error
}

func (e *ProviderError) Error() string {
	detail := e.Detail
	if detail == "" && e.Cause != nil {
		detail = e.Cause.Error()
	}
	if detail == "" {
		detail = "unknown provider error"
	}
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s: %s (status %d)", e.Provider, detail, e.StatusCode)
	}
	return fmt.Sprintf("%s: %s", e.Provider, detail)
}

func (e *ProviderError) Unwrap() error {
	return e.Cause
}

// TranslationFormatError means the translated output broke the cue structure
// of the source document.
type TranslationFormatError struct {
	Reason string
}

func (e *TranslationFormatError) Error() string {
	return "translation changed caption structure: " + e.Reason
}

// ContextUploadError is returned when a context attachment could not be made
// available to the translation provider.
type ContextUploadError struct {
	Name   string
	Reason string
	Cause  error
}

func (e *ContextUploadError) Error() string {
	msg := "context upload failed"
	if e.Name != "" {
		msg += " for " + e.Name
	}
	if e.Reason != "" {
		msg += ": " + e.Reason
	} else if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *ContextUploadError) Unwrap() error {
	return e.Cause
}

// ConfigurationError flags a missing or malformed setting.
type ConfigurationError struct {
	Key    string
	Reason string
}

func (e *ConfigurationError) Error() string {
	if e.Key == "" {
		return "configuration error: " + e.Reason
	}
	return fmt.Sprintf("configuration error: %s %s", e.Key, e.Reason)
}

// As is a shorthand for errors.As so callers don't need both packages.
func As(err error, target interface{}) bool {
	return stderrors.As(err, target)
}

// Is is a shorthand for errors.Is.
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

// Helper functions for common patterns

// RequiredField returns an error for missing required fields
func RequiredField(field string) error {
	return Newf("%s is required", field)
}

// InvalidField returns an error for invalid field values
func InvalidField(field string, reason string) error {
	return Newf("%s is invalid: %s", field, reason)
}

// TooShort returns an error for values that are too short
func TooShort(field string, minLength int) error {
	return Newf("%s too short (minimum %d characters)", field, minLength)
}

// Timeout returns a timeout error
func Timeout(operation string, duration string) error {
	return Newf("%s timeout after %s", operation, duration)
}

// IsRetryable reports whether err is a provider error that may succeed on retry.
func IsRetryable(err error) bool {
	var pe *ProviderError
	if stderrors.As(err, &pe) {
		return pe.Retryable
	}
	return false
}
