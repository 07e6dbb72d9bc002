package openai

import (
	"errors"
	"net/http"

	"github.com/sashabaranov/go-openai"

	"captionflow/internal/app/api/provider"
	apperrors "captionflow/internal/app/errors"
)

// NewClient builds a client for apiKey. An empty baseURL keeps the public
// endpoint.
func NewClient(apiKey, baseURL string) *openai.Client {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return openai.NewClientWithConfig(cfg)
}

// ProviderError maps a go-openai failure onto the shared error type.
func ProviderError(providerName string, err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		detail := apiErr.Message
		if detail == "" {
			detail = http.StatusText(apiErr.HTTPStatusCode)
		}
		return &apperrors.ProviderError{
			Provider:   providerName,
			StatusCode: apiErr.HTTPStatusCode,
			Detail:     detail,
			Retryable:  apiErr.HTTPStatusCode == http.StatusTooManyRequests || apiErr.HTTPStatusCode >= 500,
			Cause:      err,
		}
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		body := provider.ErrorDetail(reqErr.Body)
		if body == "" {
			body = http.StatusText(reqErr.HTTPStatusCode)
		}
		return &apperrors.ProviderError{
			Provider:   providerName,
			StatusCode: reqErr.HTTPStatusCode,
			Detail:     body,
			Retryable:  reqErr.HTTPStatusCode == http.StatusTooManyRequests || reqErr.HTTPStatusCode >= 500,
			Cause:      err,
		}
	}

	return provider.NetworkError(providerName, err)
}
