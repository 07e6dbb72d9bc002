package config

import (
	"fmt"
	"strings"
	"time"

	apperrors "captionflow/internal/app/errors"
)

func invalid(key, reason string) error {
	return &apperrors.ConfigurationError{Key: key, Reason: reason}
}

// ValidateTimeout rejects non-positive durations and anything above max.
func ValidateTimeout(timeout time.Duration, key string, max time.Duration) error {
	if timeout <= 0 {
		return invalid(key, "must be positive")
	}
	if max > 0 && timeout > max {
		return invalid(key, fmt.Sprintf("too large (max %s)", max))
	}
	return nil
}

// ValidateAPIKey checks the format of a configured key. Empty keys pass;
// requests may bring their own.
func ValidateAPIKey(apiKey, key string) error {
	if apiKey == "" {
		return nil
	}
	switch key {
	case "OPENAI_API_KEY":
		if !strings.HasPrefix(apiKey, "sk-") {
			return invalid(key, "must start with 'sk-'")
		}
		if len(apiKey) < 20 {
			return invalid(key, "too short")
		}
	case "GEMINI_API_KEY":
		if !strings.HasPrefix(apiKey, "AIza") {
			return invalid(key, "must start with 'AIza'")
		}
		if len(apiKey) < 30 {
			return invalid(key, "too short")
		}
	case "ELEVENLABS_API_KEY":
		if len(apiKey) < 32 {
			return invalid(key, "too short")
		}
	default:
		if strings.ContainsAny(apiKey, " \t\n") {
			return invalid(key, "must not contain whitespace")
		}
	}
	return nil
}

// ValidateURL requires an http or https URL.
func ValidateURL(url, key string) error {
	if url == "" {
		return invalid(key, "is required")
	}
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		return invalid(key, "must start with http:// or https://")
	}
	return nil
}

// ValidatePort accepts 1..65535.
func ValidatePort(port, key string) error {
	var n int
	if _, err := fmt.Sscanf(port, "%d", &n); err != nil || n < 1 || n > 65535 || fmt.Sprint(n) != port {
		return invalid(key, fmt.Sprintf("%q is not a valid port", port))
	}
	return nil
}
