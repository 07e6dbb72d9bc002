package provider

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	apperrors "captionflow/internal/app/errors"
)

const maxErrorBody = 64 << 10

// HandleHTTPError turns a non-2xx response into a ProviderError, carrying the
// provider's own message when the body has one.
func HandleHTTPError(providerName string, resp *http.Response) *apperrors.ProviderError {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	detail := ErrorDetail(body)
	if detail == "" {
		switch resp.StatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			detail = "API key is invalid or missing"
		case http.StatusTooManyRequests:
			detail = "rate limit exceeded"
		case http.StatusRequestEntityTooLarge:
			detail = "audio file is too large"
		default:
			detail = http.StatusText(resp.StatusCode)
		}
	}

	return &apperrors.ProviderError{
		Provider:   providerName,
		StatusCode: resp.StatusCode,
		Detail:     detail,
		Retryable:  resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500,
	}
}

// ErrorDetail extracts a message from common JSON error shapes: detail,
// error (string or {message}), message. Non-JSON bodies are returned trimmed.
func ErrorDetail(body []byte) string {
	text := strings.TrimSpace(string(body))
	if text == "" {
		return ""
	}

	var payload map[string]json.RawMessage
	if err := json.Unmarshal(body, &payload); err != nil {
		if len(text) > 512 {
			text = text[:512]
		}
		return text
	}
	for _, key := range []string{"detail", "error", "message"} {
		raw, ok := payload[key]
		if !ok {
			continue
		}
		if msg := rawMessage(raw); msg != "" {
			return msg
		}
	}
	return ""
}

func rawMessage(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var obj struct {
		Message string `json:"message"`
		Msg     string `json:"msg"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil {
		if obj.Message != "" {
			return obj.Message
		}
		return obj.Msg
	}
	var list []json.RawMessage
	if err := json.Unmarshal(raw, &list); err == nil && len(list) > 0 {
		return rawMessage(list[0])
	}
	return ""
}

// NetworkError wraps a transport failure.
func NetworkError(providerName string, err error) *apperrors.ProviderError {
	return &apperrors.ProviderError{
		Provider:  providerName,
		Detail:    fmt.Sprintf("request failed: %v", err),
		Retryable: true,
		Cause:     err,
	}
}
