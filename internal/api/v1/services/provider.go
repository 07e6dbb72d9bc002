package services

import (
	"context"

	"captionflow/internal/api/v1/dto"
	"captionflow/internal/app/api/provider"
)

// ProviderServiceImpl implements ProviderService
type ProviderServiceImpl struct {
	registry *provider.Registry
}

// NewProviderService creates a new provider service
func NewProviderService(registry *provider.Registry) ProviderService {
	return &ProviderServiceImpl{
		registry: registry,
	}
}

// ListProviders lists all registered providers with their health
func (s *ProviderServiceImpl) ListProviders(ctx context.Context) ([]dto.ProviderResponse, error) {
	health := s.registry.HealthCheckAll(ctx)
	defaultName := s.registry.DefaultName()

	infos := s.registry.List()
	responses := make([]dto.ProviderResponse, 0, len(infos))
	for _, info := range infos {
		hasCredential := s.registry.Credential(info.Name) != ""
		responses = append(responses, dto.ToProviderResponse(info, health[info.Name], hasCredential, info.Name == defaultName))
	}
	return responses, nil
}
