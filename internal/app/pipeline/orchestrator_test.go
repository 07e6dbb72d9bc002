package pipeline

import (
	"bytes"
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"captionflow/internal/app/api/provider"
	"captionflow/internal/app/caption"
	apperrors "captionflow/internal/app/errors"
	"captionflow/internal/app/media"
	"captionflow/internal/app/testutil"
	"captionflow/internal/app/tracker"
)

var fakeMP3 = append([]byte("ID3"), bytes.Repeat([]byte{0x01}, 64)...)

func newOrchestrator(t *testing.T, adapters ...provider.Transcriber) (*Orchestrator, *provider.Registry) {
	t.Helper()
	registry := provider.NewRegistry()
	for _, a := range adapters {
		require.NoError(t, registry.Register(a.Info().Name, a))
	}
	o := NewOrchestrator(
		media.NewResolver(),
		registry,
		tracker.New(time.Millisecond),
		tracker.NewJobTable(time.Hour),
		provider.NewMetrics(nil),
		nil,
		Config{PollTimeout: time.Second},
	)
	return o, registry
}

func newSession(t *testing.T, credential string) *Session {
	t.Helper()
	s, err := NewSession(t.TempDir(), "req-1", credential)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestTranscribeSyncUpload(t *testing.T) {
	local := testutil.NewSyncMock("whisper_cpp", testutil.HelloWorld())
	o, _ := newOrchestrator(t, local)
	session := newSession(t, "")

	job, err := o.Transcribe(context.Background(), session, media.FromUpload(bytes.NewReader(fakeMP3), "Interview 01.mp3"), Options{})
	require.NoError(t, err)

	assert.Equal(t, provider.StateDone, job.State)
	assert.Equal(t, "Hello world", job.Document.Cues[0].Text)
	assert.Equal(t, "Interview 01", job.Title)
	assert.True(t, job.Local)
	assert.Zero(t, o.jobs.Len(), "synchronous results are not recorded")

	reqs := local.Requests()
	require.Len(t, reqs, 1)
	path, isFile := reqs[0].Media.Path()
	require.True(t, isFile)
	assert.Equal(t, DefaultLanguage, reqs[0].Language)
	assert.NoFileExists(t, path, "resolved upload is released after submit")
}

func TestTranscribeAsyncURLIsPassedThrough(t *testing.T) {
	remote := testutil.NewAsyncMock("speechmatics", "job-42", testutil.ThreeCues())
	o, registry := newOrchestrator(t, remote)
	registry.SetCredential("speechmatics", "configured-key")
	session := newSession(t, "")

	job, err := o.Transcribe(context.Background(), session, media.FromDirectURL("https://cdn.example.com/ep1.mp3"), Options{Language: "auto"})
	require.NoError(t, err)

	assert.Equal(t, "job-42", job.ID)
	assert.Equal(t, provider.StateSubmitted, job.State)

	reqs := remote.Requests()
	require.Len(t, reqs, 1)
	u, isURL := reqs[0].Media.URL()
	require.True(t, isURL)
	assert.Equal(t, "https://cdn.example.com/ep1.mp3", u)
	assert.Equal(t, "configured-key", reqs[0].Credential)
	assert.Equal(t, "auto", reqs[0].Language)
	assert.Equal(t, "ep1", reqs[0].Title)
}

func TestTranscribeRequestCredentialWins(t *testing.T) {
	remote := testutil.NewAsyncMock("speechmatics", "job-1", testutil.HelloWorld())
	o, registry := newOrchestrator(t, remote)
	registry.SetCredential("speechmatics", "configured-key")

	_, err := o.Transcribe(context.Background(), newSession(t, "request-key"), media.FromDirectURL("https://cdn.example.com/a.mp3"), Options{})
	require.NoError(t, err)
	assert.Equal(t, "request-key", remote.Requests()[0].Credential)
}

func TestTranscribeMissingCredential(t *testing.T) {
	remote := testutil.NewAsyncMock("speechmatics", "job-1", testutil.HelloWorld())
	o, _ := newOrchestrator(t, remote)

	_, err := o.Transcribe(context.Background(), newSession(t, ""), media.FromDirectURL("https://cdn.example.com/a.mp3"), Options{})

	var ce *apperrors.ConfigurationError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "SPEECHMATICS_API_KEY", ce.Key)
	assert.Empty(t, remote.Requests())
}

func TestTranscribeWaitsForAsyncJob(t *testing.T) {
	remote := testutil.NewAsyncMock("assemblyai", "tx-9", testutil.ThreeCues(),
		provider.StatusReport{State: provider.StateRunning},
		provider.StatusReport{State: provider.StateDone},
	)
	o, _ := newOrchestrator(t, remote)

	var mu sync.Mutex
	var seen []provider.JobState
	job, err := o.Transcribe(context.Background(), newSession(t, "key"), media.FromDirectURL("https://cdn.example.com/a.mp3"), Options{
		Wait: true,
		OnUpdate: func(j *provider.Job) {
			mu.Lock()
			seen = append(seen, j.State)
			mu.Unlock()
		},
	})
	require.NoError(t, err)

	assert.Equal(t, provider.StateDone, job.State)
	assert.Equal(t, 3, job.Document.Len())
	assert.Equal(t, []provider.JobState{provider.StateRunning, provider.StateDone}, seen)
	assert.Equal(t, 1, remote.FetchCalls())

	// the finished job is served from the table
	again, err := o.JobStatus(context.Background(), "assemblyai", "tx-9", "key")
	require.NoError(t, err)
	assert.Equal(t, provider.StateDone, again.State)
	assert.Equal(t, 1, remote.FetchCalls())
	assert.Equal(t, 2, remote.StatusCalls())
}

func TestTranscribeWaitTimeoutKeepsJob(t *testing.T) {
	remote := testutil.NewAsyncMock("speechmatics", "slow", testutil.HelloWorld(),
		provider.StatusReport{State: provider.StateRunning})
	o, _ := newOrchestrator(t, remote)
	o.config.PollTimeout = 20 * time.Millisecond

	job, err := o.Transcribe(context.Background(), newSession(t, "key"), media.FromDirectURL("https://cdn.example.com/a.mp3"), Options{Wait: true})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, provider.StateRunning, job.State)

	stored, ok := o.jobs.Get("speechmatics", "slow")
	require.True(t, ok)
	assert.False(t, stored.State.Terminal())
}

func TestTranscribeDownloadFailureForUploadOnlyAdapter(t *testing.T) {
	local := testutil.NewSyncMock("whisper_cpp", testutil.HelloWorld())
	o, _ := newOrchestrator(t, local)

	// the resolver must download for an upload-only adapter; the URL is unreachable
	_, err := o.Transcribe(context.Background(), newSession(t, ""), media.FromDirectURL("http://127.0.0.1:1/a.mp3"), Options{})

	var re *apperrors.ResolutionError
	require.ErrorAs(t, err, &re)
	assert.Empty(t, local.Requests())
}

func TestTranscribeSubmitError(t *testing.T) {
	remote := testutil.NewAsyncMock("speechmatics", "x", nil)
	remote.SubmitErr = &apperrors.ProviderError{Provider: "speechmatics", StatusCode: 401, Detail: "unauthorized"}
	o, _ := newOrchestrator(t, remote)

	_, err := o.Transcribe(context.Background(), newSession(t, "bad"), media.FromDirectURL("https://cdn.example.com/a.mp3"), Options{})

	var pe *apperrors.ProviderError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, 401, pe.StatusCode)
	assert.Zero(t, o.jobs.Len())
}

func TestTranscribeUnknownProvider(t *testing.T) {
	o, _ := newOrchestrator(t, testutil.NewSyncMock("whisper_cpp", testutil.HelloWorld()))
	_, err := o.Transcribe(context.Background(), newSession(t, ""), media.FromDirectURL("https://cdn.example.com/a.mp3"), Options{Provider: "nope"})
	assert.ErrorIs(t, err, apperrors.ErrProviderNotFound)
}

func TestJobStatusReattachesUnknownJob(t *testing.T) {
	remote := testutil.NewAsyncMock("speechmatics", "", testutil.HelloWorld(),
		provider.StatusReport{State: provider.StateDone})
	o, _ := newOrchestrator(t, remote)

	job, err := o.JobStatus(context.Background(), "", "from-another-process", "key")
	require.NoError(t, err)
	assert.Equal(t, provider.StateDone, job.State)
	assert.Equal(t, "speechmatics", job.Provider)
	assert.Equal(t, "Hello world", job.Document.Cues[0].Text)
}

func TestJobStatusRejected(t *testing.T) {
	remote := testutil.NewAsyncMock("speechmatics", "", nil,
		provider.StatusReport{State: provider.StateRejected, Message: "audio too short"})
	o, _ := newOrchestrator(t, remote)

	job, err := o.JobStatus(context.Background(), "speechmatics", "j1", "key")
	require.NoError(t, err)
	assert.Equal(t, provider.StateRejected, job.State)
	assert.Equal(t, "audio too short", job.Error)
	assert.Zero(t, remote.FetchCalls())
}

func TestJobStatusSyncProvider(t *testing.T) {
	o, _ := newOrchestrator(t, syncOnly{testutil.NewSyncMock("openai", testutil.HelloWorld())})

	_, err := o.JobStatus(context.Background(), "openai", "unknown", "")
	assert.ErrorIs(t, err, apperrors.ErrJobNotFound)

	_, err = o.JobStatus(context.Background(), "openai", "", "")
	assert.ErrorContains(t, err, "job_id is required")
}

func TestJobStatusProviderError(t *testing.T) {
	remote := testutil.NewAsyncMock("speechmatics", "", nil)
	remote.StatusErr = errors.New("boom")
	o, _ := newOrchestrator(t, remote)

	job, err := o.JobStatus(context.Background(), "speechmatics", "j1", "key")
	assert.ErrorContains(t, err, "boom")
	assert.Equal(t, provider.StateSubmitted, job.State)
}

func TestSessionClose(t *testing.T) {
	s, err := NewSession(t.TempDir(), "", "k")
	require.NoError(t, err)
	assert.NotEmpty(t, s.RequestID)

	dir := s.Workspace.Dir()
	require.DirExists(t, dir)
	require.NoError(t, s.Close())
	require.NoError(t, s.Close())
	_, statErr := os.Stat(dir)
	assert.True(t, os.IsNotExist(statErr))
}

// syncOnly hides the mock's Status method.
type syncOnly struct {
	inner *testutil.MockTranscriber
}

func (s syncOnly) Info() provider.ProviderInfo { return s.inner.Info() }

func (s syncOnly) Submit(ctx context.Context, req *provider.TranscriptionRequest) (*provider.Job, error) {
	return s.inner.Submit(ctx, req)
}

func (s syncOnly) FetchResult(ctx context.Context, job *provider.Job, credential string) (*caption.Document, error) {
	return s.inner.FetchResult(ctx, job, credential)
}
