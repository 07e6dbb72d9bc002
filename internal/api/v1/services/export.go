package services

import (
	"context"

	"captionflow/internal/api/v1/dto"
	"captionflow/internal/app/delivery"
)

// ExportServiceImpl implements the ExportService interface
type ExportServiceImpl struct {
	persister delivery.Persister
}

// NewExportService creates a new export service
func NewExportService(persister delivery.Persister) ExportService {
	return &ExportServiceImpl{
		persister: persister,
	}
}

// Export renders the captions in the requested format
func (s *ExportServiceImpl) Export(ctx context.Context, req *dto.ExportRequest) (*delivery.Artifact, error) {
	doc, err := req.Document()
	if err != nil {
		return nil, err
	}
	format, err := delivery.ParseFormat(req.Format)
	if err != nil {
		return nil, err
	}
	return delivery.Export(doc, req.Title, format)
}

// Persist exports and forwards the artifact to the storage backend
func (s *ExportServiceImpl) Persist(ctx context.Context, req *dto.ExportRequest) (*dto.StoredObjectResponse, error) {
	artifact, err := s.Export(ctx, req)
	if err != nil {
		return nil, err
	}
	ref, err := s.persister.Persist(ctx, artifact)
	if err != nil {
		return nil, err
	}
	return &dto.StoredObjectResponse{Key: ref.Key, URL: ref.URL}, nil
}
