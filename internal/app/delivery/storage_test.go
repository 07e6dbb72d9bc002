package delivery

import (
	"context"
	"errors"
	"io"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "captionflow/internal/app/errors"
)

type fakeMinio struct {
	exists  bool
	made    []string
	objects map[string][]byte
	opts    map[string]minio.PutObjectOptions
	putErr  error
}

func newFakeMinio(exists bool) *fakeMinio {
	return &fakeMinio{exists: exists, objects: map[string][]byte{}, opts: map[string]minio.PutObjectOptions{}}
}

func (f *fakeMinio) BucketExists(context.Context, string) (bool, error) { return f.exists, nil }

func (f *fakeMinio) MakeBucket(_ context.Context, bucket string, _ minio.MakeBucketOptions) error {
	f.made = append(f.made, bucket)
	return nil
}

func (f *fakeMinio) PutObject(_ context.Context, bucket, object string, r io.Reader, size int64, opts minio.PutObjectOptions) (minio.UploadInfo, error) {
	if f.putErr != nil {
		return minio.UploadInfo{}, f.putErr
	}
	data, _ := io.ReadAll(r)
	f.objects[object] = data
	f.opts[object] = opts
	return minio.UploadInfo{Bucket: bucket, Key: object, Size: size}, nil
}

func (f *fakeMinio) PresignedGetObject(_ context.Context, bucket, object string, expires time.Duration, _ url.Values) (*url.URL, error) {
	return url.Parse("http://minio.local/" + bucket + "/" + object + "?X-Amz-Expires=" + expires.String())
}

func fixedNow() time.Time { return time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC) }

func TestMinioPersisterCreatesBucket(t *testing.T) {
	fake := newFakeMinio(false)
	_, err := newMinioPersister(context.Background(), fake, "captions", 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"captions"}, fake.made)

	fake = newFakeMinio(true)
	p, err := newMinioPersister(context.Background(), fake, "captions", 0)
	require.NoError(t, err)
	assert.Empty(t, fake.made)
	assert.Equal(t, DefaultPresignExpiry, p.expiry)
}

func TestMinioPersist(t *testing.T) {
	fake := newFakeMinio(true)
	p, err := newMinioPersister(context.Background(), fake, "captions", time.Hour)
	require.NoError(t, err)
	p.now = fixedNow

	ref, err := p.Persist(context.Background(), &Artifact{Filename: "My Talk.srt", ContentType: ContentTypeSRT, Data: []byte("1\n")})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(ref.Key, "captions/2025/03/14/"), ref.Key)
	assert.True(t, strings.HasSuffix(ref.Key, "-My_Talk.srt"), ref.Key)
	assert.Equal(t, []byte("1\n"), fake.objects[ref.Key])
	assert.Equal(t, ContentTypeSRT, fake.opts[ref.Key].ContentType)
	assert.Equal(t, "My Talk.srt", fake.opts[ref.Key].UserMetadata["original-name"])
	assert.Contains(t, ref.URL, ref.Key)
	assert.Contains(t, ref.URL, "X-Amz-Expires=1h0m0s")
}

func TestMinioStoreMedia(t *testing.T) {
	fake := newFakeMinio(true)
	p, err := newMinioPersister(context.Background(), fake, "captions", 0)
	require.NoError(t, err)
	p.now = fixedNow

	ref, err := p.StoreMedia(context.Background(), strings.NewReader("RIFF"), 4, "clip.wav", "")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(ref.Key, "media/2025/03/14/"))
	assert.Equal(t, "application/octet-stream", fake.opts[ref.Key].ContentType)
	assert.Equal(t, "2025-03-14T09:00:00Z", fake.opts[ref.Key].UserMetadata["uploaded-at"])
}

func TestMinioPersistError(t *testing.T) {
	fake := newFakeMinio(true)
	fake.putErr = errors.New("connection refused")
	p, err := newMinioPersister(context.Background(), fake, "captions", 0)
	require.NoError(t, err)

	_, err = p.Persist(context.Background(), &Artifact{Filename: "a.srt", Data: []byte("x")})
	assert.ErrorContains(t, err, "connection refused")
}

type fakeS3 struct {
	input *s3.PutObjectInput
	body  []byte
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.input = in
	f.body, _ = io.ReadAll(in.Body)
	return &s3.PutObjectOutput{}, nil
}

func TestS3Persist(t *testing.T) {
	fake := &fakeS3{}
	p := &S3Persister{client: fake, bucket: "subs", region: "eu-central-1", now: fixedNow}

	ref, err := p.Persist(context.Background(), &Artifact{Filename: "talk.xlsx", ContentType: ContentTypeXLSX, Data: []byte("PK")})
	require.NoError(t, err)

	assert.Equal(t, "subs", aws.ToString(fake.input.Bucket))
	assert.Equal(t, ref.Key, aws.ToString(fake.input.Key))
	assert.Equal(t, ContentTypeXLSX, aws.ToString(fake.input.ContentType))
	assert.Equal(t, []byte("PK"), fake.body)
	assert.Equal(t, "https://subs.s3.eu-central-1.amazonaws.com/"+ref.Key, ref.URL)
}

type fakePresigner struct {
	input   *s3.GetObjectInput
	expires time.Duration
}

func (f *fakePresigner) PresignGetObject(_ context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
	f.input = in
	opts := s3.PresignOptions{}
	for _, fn := range optFns {
		fn(&opts)
	}
	f.expires = opts.Expires
	return &v4.PresignedHTTPRequest{URL: "https://subs.example/" + aws.ToString(in.Key) + "?X-Amz-Signature=abc"}, nil
}

func TestS3StoreMedia(t *testing.T) {
	fake := &fakeS3{}
	presign := &fakePresigner{}
	p := &S3Persister{client: fake, presign: presign, bucket: "subs", region: "eu-central-1", expiry: time.Hour, now: fixedNow}

	ref, err := p.StoreMedia(context.Background(), strings.NewReader("ID3data"), 7, "ep 1.mp3", "")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(ref.Key, "media/2025/03/14/"))
	assert.True(t, strings.HasSuffix(ref.Key, "-ep_1.mp3"))
	assert.Equal(t, "application/octet-stream", aws.ToString(fake.input.ContentType))
	assert.Equal(t, int64(7), aws.ToInt64(fake.input.ContentLength))
	assert.Equal(t, []byte("ID3data"), fake.body)
	assert.Equal(t, ref.Key, aws.ToString(presign.input.Key))
	assert.Equal(t, time.Hour, presign.expires)
	assert.Contains(t, ref.URL, "X-Amz-Signature")
}

func TestNewPersister(t *testing.T) {
	p, err := NewPersister(context.Background(), StorageSettings{})
	require.NoError(t, err)
	assert.Equal(t, BackendNone, p.Backend())

	_, err = p.Persist(context.Background(), &Artifact{})
	assert.ErrorIs(t, err, apperrors.ErrStorageDisabled)

	_, err = NewPersister(context.Background(), StorageSettings{Backend: "gcs"})
	var ce *apperrors.ConfigurationError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "STORAGE_BACKEND", ce.Key)

	_, err = NewPersister(context.Background(), StorageSettings{Backend: "s3"})
	assert.ErrorContains(t, err, "S3_BUCKET")
}
