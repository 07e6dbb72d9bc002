package delivery

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

type S3Config struct {
	Bucket string
	Region string
	// Expiry bounds presigned media URLs; zero means DefaultPresignExpiry.
	Expiry time.Duration
}

type s3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type s3Presigner interface {
	PresignGetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

// S3Persister writes artifacts to S3 and returns the virtual-hosted object URL.
// Credentials come from the default AWS chain.
type S3Persister struct {
	client  s3API
	presign s3Presigner
	bucket  string
	region  string
	expiry  time.Duration
	now     func() time.Time
}

func NewS3Persister(ctx context.Context, cfg S3Config) (*S3Persister, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("S3_BUCKET is required for the s3 backend")
	}
	if cfg.Region == "" {
		cfg.Region = "us-east-1"
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	if cfg.Expiry <= 0 {
		cfg.Expiry = DefaultPresignExpiry
	}
	client := s3.NewFromConfig(awsCfg)
	return &S3Persister{
		client:  client,
		presign: s3.NewPresignClient(client),
		bucket:  cfg.Bucket,
		region:  cfg.Region,
		expiry:  cfg.Expiry,
		now:     time.Now,
	}, nil
}

func (p *S3Persister) Backend() string { return BackendS3 }

func (p *S3Persister) Persist(ctx context.Context, artifact *Artifact) (*Reference, error) {
	key := objectKey("captions", keyName(artifact.Filename), p.now())
	_, err := p.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(p.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(artifact.Data),
		ContentType: aws.String(artifact.ContentType),
		Metadata:    map[string]string{"original-name": artifact.Filename},
	})
	if err != nil {
		return nil, fmt.Errorf("S3 upload failed for %s: %w", key, err)
	}
	return &Reference{
		Key: key,
		URL: fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", p.bucket, p.region, key),
	}, nil
}

// StoreMedia uploads raw media and returns a presigned GET URL so remote
// providers can fetch the object without bucket credentials.
func (p *S3Persister) StoreMedia(ctx context.Context, r io.Reader, size int64, filename, contentType string) (*Reference, error) {
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	key := objectKey("media", keyName(filename), p.now())
	_, err := p.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(p.bucket),
		Key:           aws.String(key),
		Body:          r,
		ContentLength: aws.Int64(size),
		ContentType:   aws.String(contentType),
		Metadata: map[string]string{
			"original-name": filename,
			"uploaded-at":   p.now().UTC().Format(time.RFC3339),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("S3 upload failed for %s: %w", key, err)
	}

	signed, err := p.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(p.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(p.expiry))
	if err != nil {
		return nil, fmt.Errorf("failed to presign %s: %w", key, err)
	}
	return &Reference{Key: key, URL: signed.URL}, nil
}
