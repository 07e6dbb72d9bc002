package services

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"captionflow/internal/api/v1/dto"
	"captionflow/internal/app/api/provider"
	"captionflow/internal/app/delivery"
	apperrors "captionflow/internal/app/errors"
	"captionflow/internal/app/media"
	"captionflow/internal/app/pipeline"
	"captionflow/internal/app/testutil"
	"captionflow/internal/app/tracker"
	"captionflow/internal/app/translate"
)

var fakeMP3 = append([]byte("ID3"), bytes.Repeat([]byte{0x01}, 64)...)

func newTranscriptionService(t *testing.T, adapters ...provider.Transcriber) (TranscriptionService, *provider.Registry) {
	t.Helper()
	registry := provider.NewRegistry()
	for _, a := range adapters {
		require.NoError(t, registry.Register(a.Info().Name, a))
	}
	o := pipeline.NewOrchestrator(
		media.NewResolver(),
		registry,
		tracker.New(time.Millisecond),
		tracker.NewJobTable(time.Hour),
		provider.NewMetrics(nil),
		nil,
		pipeline.Config{PollTimeout: time.Second},
	)
	return NewTranscriptionService(o, t.TempDir()), registry
}

func TestTranscribeUploadSync(t *testing.T) {
	svc, _ := newTranscriptionService(t, testutil.NewSyncMock("whisper_cpp", testutil.HelloWorld()))

	resp, err := svc.TranscribeUpload(context.Background(), "req-1", UploadedFile{
		Reader:   bytes.NewReader(fakeMP3),
		Filename: "Interview.mp3",
	}, dto.TranscribeFileForm{})
	require.NoError(t, err)

	assert.Equal(t, dto.StatusDone, resp.Status)
	assert.Equal(t, "whisper_cpp", resp.Provider)
	assert.Equal(t, "Interview", resp.Title)
	require.Len(t, resp.Captions, 1)
	assert.Equal(t, "Hello world", resp.Captions[0].Text)
}

func TestTranscribeURLThenPollStatus(t *testing.T) {
	remote := testutil.NewAsyncMock("speechmatics", "job-7", testutil.ThreeCues(),
		provider.StatusReport{State: provider.StateRunning},
		provider.StatusReport{State: provider.StateDone},
	)
	svc, _ := newTranscriptionService(t, remote)
	ctx := context.Background()

	resp, err := svc.TranscribeURL(ctx, "req-2", dto.TranscribeURLRequest{
		URL:    "https://cdn.example.com/ep1.mp3",
		APIKey: "client-key",
	})
	require.NoError(t, err)
	assert.Equal(t, dto.StatusRunning, resp.Status)
	assert.Equal(t, "job-7", resp.JobID)

	first, err := svc.JobStatus(ctx, "job-7", dto.JobStatusQuery{APIKey: "client-key"})
	require.NoError(t, err)
	assert.Equal(t, dto.StatusRunning, first.Status)

	second, err := svc.JobStatus(ctx, "job-7", dto.JobStatusQuery{APIKey: "client-key", Provider: "speechmatics"})
	require.NoError(t, err)
	assert.Equal(t, dto.StatusDone, second.Status)
	assert.Len(t, second.Captions, 3)
}

func TestJobStatusReportsProviderFailure(t *testing.T) {
	remote := testutil.NewAsyncMock("assemblyai", "job-9", nil,
		provider.StatusReport{State: provider.StateFailed, Message: "audio too short"},
	)
	svc, registry := newTranscriptionService(t, remote)
	registry.SetCredential("assemblyai", "configured")

	resp, err := svc.JobStatus(context.Background(), "job-9", dto.JobStatusQuery{Provider: "assemblyai"})
	require.NoError(t, err)
	assert.Equal(t, dto.StatusError, resp.Status)
	assert.Contains(t, resp.Error, "audio too short")
}

func TestProcessStoredFileUsesDirectURL(t *testing.T) {
	remote := testutil.NewAsyncMock("openai", "job-3", testutil.HelloWorld())
	svc, _ := newTranscriptionService(t, remote)

	_, err := svc.ProcessStoredFile(context.Background(), "", dto.ProcessStoredFileRequest{
		FileURL: "https://minio.local/media/2025/03/14/ab12cd34-talk.mp3?X-Amz-Signature=x",
		APIKey:  "k",
	})
	require.NoError(t, err)

	reqs := remote.Requests()
	require.Len(t, reqs, 1)
	u, ok := reqs[0].Media.URL()
	require.True(t, ok)
	assert.Contains(t, u, "ab12cd34-talk.mp3")
}

func TestTranscribeURLInvalid(t *testing.T) {
	svc, _ := newTranscriptionService(t, testutil.NewSyncMock("whisper_cpp", testutil.HelloWorld()))
	_, err := svc.TranscribeURL(context.Background(), "", dto.TranscribeURLRequest{URL: "ftp://example.com/a.mp3"})
	assert.Error(t, err)
}

// replyGenerator answers every prompt with a fixed SRT body.
type replyGenerator struct {
	reply string
	mu    sync.Mutex
	reqs  []translate.GenerateRequest
}

func (g *replyGenerator) Name() string { return "fake" }

func (g *replyGenerator) Generate(_ context.Context, req translate.GenerateRequest) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.reqs = append(g.reqs, req)
	return g.reply, nil
}

func TestTranslate(t *testing.T) {
	gen := &replyGenerator{reply: "1\n00:00:00,000 --> 00:00:02,000\nSzia világ\n"}
	svc := NewTranslationService(translate.NewTranslator(gen), "server-key", t.TempDir(), 1<<20)

	req := &dto.TranslateRequest{
		CaptionsInput:  dto.CaptionsInput{Captions: testutil.HelloWorld().Cues},
		TargetLanguage: "hu",
	}
	resp, err := svc.Translate(context.Background(), "req-1", req, nil)
	require.NoError(t, err)

	assert.Equal(t, "fake", resp.Provider)
	require.Len(t, resp.TranslatedCaptions, 1)
	assert.Equal(t, "Szia világ", resp.TranslatedCaptions[0].Text)
	assert.Equal(t, int64(2000), resp.TranslatedCaptions[0].EndMs)
	assert.Equal(t, "server-key", gen.reqs[0].Credential)

	req.GeminiAPIKey = "client-key"
	_, err = svc.Translate(context.Background(), "req-2", req, nil)
	require.NoError(t, err)
	assert.Equal(t, "client-key", gen.reqs[1].Credential)
}

func TestTranslateContextFileIsCleanedUp(t *testing.T) {
	workDir := t.TempDir()
	gen := &replyGenerator{}
	svc := NewTranslationService(translate.NewTranslator(gen), "k", workDir, 1<<20)

	_, err := svc.Translate(context.Background(), "req-1", &dto.TranslateRequest{
		CaptionsInput:  dto.CaptionsInput{SRT: testutil.ThreeCuesSRT},
		TargetLanguage: "de",
	}, &UploadedFile{Reader: strings.NewReader("fake video"), Filename: "clip.mp4"})

	var uploadErr *apperrors.ContextUploadError
	require.ErrorAs(t, err, &uploadErr)
	assert.Empty(t, gen.reqs)

	entries, err := os.ReadDir(workDir)
	require.NoError(t, err)
	assert.Empty(t, entries, "request workspace is removed")
}

func TestTranslateRejectsMissingCaptions(t *testing.T) {
	svc := NewTranslationService(translate.NewTranslator(&replyGenerator{}), "k", t.TempDir(), 0)
	_, err := svc.Translate(context.Background(), "", &dto.TranslateRequest{TargetLanguage: "en"}, nil)
	assert.Error(t, err)
}

func TestContextMIMEType(t *testing.T) {
	assert.Equal(t, "video/mp4", contextMIMEType(&UploadedFile{Filename: "a.mp4", ContentType: "video/mp4"}))
	assert.Equal(t, "application/pdf", contextMIMEType(&UploadedFile{Filename: "notes.pdf", ContentType: "application/octet-stream"}))
	assert.Equal(t, "application/octet-stream", contextMIMEType(&UploadedFile{Filename: "blob"}))
}

type memoryStore struct {
	artifacts []*delivery.Artifact
	media     map[string][]byte
	err       error
}

func (m *memoryStore) Backend() string { return "memory" }

func (m *memoryStore) Persist(_ context.Context, a *delivery.Artifact) (*delivery.Reference, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.artifacts = append(m.artifacts, a)
	return &delivery.Reference{Key: "captions/" + a.Filename, URL: "https://store.local/captions/" + a.Filename}, nil
}

func (m *memoryStore) StoreMedia(_ context.Context, r io.Reader, _ int64, filename, _ string) (*delivery.Reference, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if m.media == nil {
		m.media = make(map[string][]byte)
	}
	m.media[filename] = data
	return &delivery.Reference{Key: "media/" + filename, URL: "https://store.local/media/" + filename}, nil
}

// persistOnly hides StoreMedia.
type persistOnly struct{ inner *memoryStore }

func (p persistOnly) Backend() string { return "persist-only" }

func (p persistOnly) Persist(ctx context.Context, a *delivery.Artifact) (*delivery.Reference, error) {
	return p.inner.Persist(ctx, a)
}

func TestExportAndPersist(t *testing.T) {
	store := &memoryStore{}
	svc := NewExportService(store)
	req := &dto.ExportRequest{
		CaptionsInput: dto.CaptionsInput{Captions: testutil.ThreeCues().Cues},
		Title:         "Morning: Show?",
	}

	artifact, err := svc.Export(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "Morning Show.srt", artifact.Filename)
	assert.Equal(t, testutil.ThreeCuesSRT, string(artifact.Data))

	ref, err := svc.Persist(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "captions/Morning Show.srt", ref.Key)
	assert.Equal(t, "https://store.local/captions/Morning Show.srt", ref.URL)
	require.Len(t, store.artifacts, 1)

	req.Format = "docx"
	_, err = svc.Export(context.Background(), req)
	assert.Error(t, err)
}

func TestPersistStorageError(t *testing.T) {
	svc := NewExportService(&memoryStore{err: errors.New("bucket gone")})
	_, err := svc.Persist(context.Background(), &dto.ExportRequest{
		CaptionsInput: dto.CaptionsInput{Captions: testutil.HelloWorld().Cues},
	})
	assert.ErrorContains(t, err, "bucket gone")
}

func TestStorageUpload(t *testing.T) {
	store := &memoryStore{}
	svc := NewStorageService(store, 1<<20)

	resp, err := svc.Upload(context.Background(), UploadedFile{Reader: bytes.NewReader(fakeMP3), Filename: "ep.mp3", Size: int64(len(fakeMP3))})
	require.NoError(t, err)
	assert.Equal(t, "media/ep.mp3", resp.Key)
	assert.Equal(t, resp.URL, resp.FileURL)
	assert.Equal(t, fakeMP3, store.media["ep.mp3"])

	_, err = svc.Upload(context.Background(), UploadedFile{Reader: bytes.NewReader(nil), Filename: "big.mp3", Size: 2 << 20})
	assert.ErrorIs(t, err, apperrors.ErrFileTooLarge)

	_, err = NewStorageService(persistOnly{store}, 0).Upload(context.Background(), UploadedFile{Filename: "a.mp3"})
	assert.ErrorIs(t, err, apperrors.ErrStorageDisabled)
}

func TestListProviders(t *testing.T) {
	registry := provider.NewRegistry()
	require.NoError(t, registry.Register("speechmatics", testutil.NewAsyncMock("speechmatics", "j", nil)))
	require.NoError(t, registry.Register("whisper_cpp", testutil.NewSyncMock("whisper_cpp", nil)))
	require.NoError(t, registry.SetDefault("whisper_cpp"))
	registry.SetCredential("speechmatics", "key")

	providers, err := NewProviderService(registry).ListProviders(context.Background())
	require.NoError(t, err)
	require.Len(t, providers, 2)

	assert.Equal(t, "speechmatics", providers[0].ID)
	assert.True(t, providers[0].HasCredential)
	assert.Equal(t, "async", providers[0].Mode)
	assert.False(t, providers[0].IsDefault)

	assert.Equal(t, "whisper_cpp", providers[1].ID)
	assert.True(t, providers[1].IsDefault)
	assert.Equal(t, "Mock whisper_cpp (local)", providers[1].Description)
	assert.True(t, providers[1].Available)
}
