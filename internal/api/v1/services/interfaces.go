package services

import (
	"context"
	"io"

	"captionflow/internal/api/v1/dto"
	"captionflow/internal/app/delivery"
)

// UploadedFile is a multipart file part handed to a service.
type UploadedFile struct {
	Reader      io.Reader
	Filename    string
	ContentType string
	Size        int64
}

// TranscriptionService defines the interface for transcription operations
type TranscriptionService interface {
	TranscribeUpload(ctx context.Context, requestID string, file UploadedFile, form dto.TranscribeFileForm) (*dto.JobResponse, error)
	TranscribeURL(ctx context.Context, requestID string, req dto.TranscribeURLRequest) (*dto.JobResponse, error)
	ProcessStoredFile(ctx context.Context, requestID string, req dto.ProcessStoredFileRequest) (*dto.JobResponse, error)
	JobStatus(ctx context.Context, jobID string, query dto.JobStatusQuery) (*dto.JobResponse, error)
}

// TranslationService translates caption documents. contextFile may be nil.
type TranslationService interface {
	Translate(ctx context.Context, requestID string, req *dto.TranslateRequest, contextFile *UploadedFile) (*dto.TranslateResponse, error)
}

// ExportService defines the interface for export operations
type ExportService interface {
	Export(ctx context.Context, req *dto.ExportRequest) (*delivery.Artifact, error)
	Persist(ctx context.Context, req *dto.ExportRequest) (*dto.StoredObjectResponse, error)
}

// StorageService keeps raw media in the storage backend.
type StorageService interface {
	Upload(ctx context.Context, file UploadedFile) (*dto.StoredObjectResponse, error)
}

// ProviderService defines the interface for provider operations
type ProviderService interface {
	ListProviders(ctx context.Context) ([]dto.ProviderResponse, error)
}
