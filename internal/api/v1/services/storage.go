package services

import (
	"context"

	"captionflow/internal/api/v1/dto"
	"captionflow/internal/app/delivery"
	apperrors "captionflow/internal/app/errors"
)

// StorageServiceImpl uploads media to the configured backend
type StorageServiceImpl struct {
	persister delivery.Persister
	maxBytes  int64
}

// NewStorageService creates a storage service. Backends that cannot hold
// media make Upload fail with ErrStorageDisabled.
func NewStorageService(persister delivery.Persister, maxBytes int64) StorageService {
	return &StorageServiceImpl{
		persister: persister,
		maxBytes:  maxBytes,
	}
}

func (s *StorageServiceImpl) Upload(ctx context.Context, file UploadedFile) (*dto.StoredObjectResponse, error) {
	store, ok := s.persister.(delivery.MediaStore)
	if !ok {
		return nil, apperrors.ErrStorageDisabled
	}
	if file.Filename == "" {
		return nil, apperrors.RequiredField("file")
	}
	if s.maxBytes > 0 && file.Size > s.maxBytes {
		return nil, apperrors.ErrFileTooLarge
	}

	ref, err := store.StoreMedia(ctx, file.Reader, file.Size, file.Filename, file.ContentType)
	if err != nil {
		return nil, err
	}
	return &dto.StoredObjectResponse{Key: ref.Key, URL: ref.URL, FileURL: ref.URL}, nil
}
