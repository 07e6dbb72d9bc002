package dto

import (
	"captionflow/internal/app/api/provider"
)

// ProviderResponse represents a provider in API responses
type ProviderResponse struct {
	ID                   string `json:"id"`
	Name                 string `json:"name"`
	Description          string `json:"description"`
	Type                 string `json:"type"`
	Mode                 string `json:"mode"`
	Available            bool   `json:"available"`
	HealthStatus         string `json:"health_status"`
	RequiresAPIKey       bool   `json:"requires_api_key"`
	HasCredential        bool   `json:"has_credential"`
	IsDefault            bool   `json:"is_default"`
	AcceptsURL           bool   `json:"accepts_url"`
	AcceptsUpload        bool   `json:"accepts_upload"`
	SupportsAutoLanguage bool   `json:"supports_auto_language"`
	MaxFileSizeMB        int    `json:"max_file_size_mb,omitempty"`
	DefaultModel         string `json:"default_model,omitempty"`
}

// ToProviderResponse converts provider info to response DTO. healthErr is
// the result of the adapter's health check, or nil when it has none.
func ToProviderResponse(info provider.ProviderInfo, healthErr error, hasCredential, isDefault bool) ProviderResponse {
	healthStatus := "healthy"
	if healthErr != nil {
		healthStatus = "unhealthy"
	}

	description := info.DisplayName
	if info.Type == provider.ProviderTypeLocal {
		description += " (local)"
	} else if info.Type == provider.ProviderTypeRemote {
		description += " (remote API)"
	}

	return ProviderResponse{
		ID:                   info.Name,
		Name:                 info.DisplayName,
		Description:          description,
		Type:                 string(info.Type),
		Mode:                 string(info.Mode),
		Available:            healthErr == nil,
		HealthStatus:         healthStatus,
		RequiresAPIKey:       info.RequiresAPIKey,
		HasCredential:        hasCredential,
		IsDefault:            isDefault,
		AcceptsURL:           info.AcceptsURL,
		AcceptsUpload:        info.AcceptsUpload,
		SupportsAutoLanguage: info.SupportsAutoLanguage,
		MaxFileSizeMB:        info.MaxFileSizeMB,
		DefaultModel:         info.DefaultModel,
	}
}
