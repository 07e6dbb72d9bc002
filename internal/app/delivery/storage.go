package delivery

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	apperrors "captionflow/internal/app/errors"
)

const (
	BackendNone  = "none"
	BackendMinio = "minio"
	BackendS3    = "s3"
)

// Reference points at a stored object.
type Reference struct {
	Key string `json:"key"`
	URL string `json:"url"`
}

// Persister stores exported artifacts.
type Persister interface {
	Backend() string
	Persist(ctx context.Context, artifact *Artifact) (*Reference, error)
}

// MediaStore keeps raw media and hands out URLs a provider can fetch.
type MediaStore interface {
	StoreMedia(ctx context.Context, r io.Reader, size int64, filename, contentType string) (*Reference, error)
}

type StorageSettings struct {
	Backend string
	Minio   MinioConfig
	S3      S3Config
}

// NewPersister selects the backend named by settings.Backend. An empty name
// means none.
func NewPersister(ctx context.Context, settings StorageSettings) (Persister, error) {
	switch strings.ToLower(settings.Backend) {
	case "", BackendNone:
		return disabled{}, nil
	case BackendMinio:
		return NewMinioPersister(ctx, settings.Minio)
	case BackendS3:
		return NewS3Persister(ctx, settings.S3)
	default:
		return nil, &apperrors.ConfigurationError{
			Key:    "STORAGE_BACKEND",
			Reason: fmt.Sprintf("unknown backend %q (want minio, s3 or none)", settings.Backend),
		}
	}
}

type disabled struct{}

func (disabled) Backend() string { return BackendNone }

func (disabled) Persist(context.Context, *Artifact) (*Reference, error) {
	return nil, apperrors.ErrStorageDisabled
}

// objectKey builds prefix/yyyy/mm/dd/<short uuid>-<name>.
func objectKey(prefix, name string, now time.Time) string {
	return path.Join(prefix, now.UTC().Format("2006/01/02"), uuid.New().String()[:8]+"-"+name)
}
