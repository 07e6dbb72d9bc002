package delivery

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"captionflow/internal/app/util/files"
)

const DefaultPresignExpiry = 24 * time.Hour

type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	Region    string
	// Expiry bounds presigned GET URLs.
	Expiry time.Duration
}

// minioAPI is the part of *minio.Client the persister uses.
type minioAPI interface {
	BucketExists(ctx context.Context, bucketName string) (bool, error)
	MakeBucket(ctx context.Context, bucketName string, opts minio.MakeBucketOptions) error
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	PresignedGetObject(ctx context.Context, bucketName, objectName string, expires time.Duration, reqParams url.Values) (*url.URL, error)
}

// MinioPersister stores artifacts and media in a MinIO bucket and returns
// presigned GET URLs.
type MinioPersister struct {
	client minioAPI
	bucket string
	expiry time.Duration
	now    func() time.Time
}

func NewMinioPersister(ctx context.Context, cfg MinioConfig) (*MinioPersister, error) {
	if cfg.Endpoint == "" {
		cfg.Endpoint = "localhost:9000"
	}
	if cfg.Bucket == "" {
		cfg.Bucket = "captionflow"
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}
	return newMinioPersister(ctx, client, cfg.Bucket, cfg.Expiry)
}

func newMinioPersister(ctx context.Context, client minioAPI, bucket string, expiry time.Duration) (*MinioPersister, error) {
	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket existence: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("failed to create bucket: %w", err)
		}
	}
	if expiry <= 0 {
		expiry = DefaultPresignExpiry
	}
	return &MinioPersister{client: client, bucket: bucket, expiry: expiry, now: time.Now}, nil
}

func (p *MinioPersister) Backend() string { return BackendMinio }

func (p *MinioPersister) Persist(ctx context.Context, artifact *Artifact) (*Reference, error) {
	key := objectKey("captions", keyName(artifact.Filename), p.now())
	return p.put(ctx, key, bytes.NewReader(artifact.Data), int64(len(artifact.Data)), artifact.ContentType, map[string]string{
		"original-name": artifact.Filename,
	})
}

// StoreMedia uploads raw media for URL-based provider submission.
func (p *MinioPersister) StoreMedia(ctx context.Context, r io.Reader, size int64, filename, contentType string) (*Reference, error) {
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	key := objectKey("media", keyName(filename), p.now())
	return p.put(ctx, key, r, size, contentType, map[string]string{
		"original-name": filename,
		"uploaded-at":   p.now().UTC().Format(time.RFC3339),
	})
}

func (p *MinioPersister) put(ctx context.Context, key string, r io.Reader, size int64, contentType string, meta map[string]string) (*Reference, error) {
	_, err := p.client.PutObject(ctx, p.bucket, key, r, size, minio.PutObjectOptions{
		ContentType:  contentType,
		UserMetadata: meta,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upload %s to MinIO: %w", key, err)
	}

	signed, err := p.client.PresignedGetObject(ctx, p.bucket, key, p.expiry, url.Values{})
	if err != nil {
		return nil, fmt.Errorf("failed to presign %s: %w", key, err)
	}
	return &Reference{Key: key, URL: signed.String()}, nil
}

func keyName(name string) string {
	return strings.ReplaceAll(files.SanitizeFilename(name), " ", "_")
}
