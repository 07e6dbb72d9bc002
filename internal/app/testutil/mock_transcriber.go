package testutil

import (
	"context"
	"sync"

	"captionflow/internal/app/api/provider"
	"captionflow/internal/app/caption"
	apperrors "captionflow/internal/app/errors"
)

// MockTranscriber is a scriptable provider.Transcriber and StatusChecker.
// Async mocks hand out Statuses one per Status call and repeat the last one.
type MockTranscriber struct {
	ProviderInfo provider.ProviderInfo

	// Result is returned by FetchResult (async) or attached by Submit (sync).
	Result *caption.Document
	// JobID is the id returned by an async Submit.
	JobID string
	// Statuses scripts the async lifecycle.
	Statuses []provider.StatusReport

	SubmitErr error
	StatusErr error
	FetchErr  error

	mu          sync.Mutex
	requests    []provider.TranscriptionRequest
	statusCalls int
	fetchCalls  int
}

// NewSyncMock returns a local synchronous mock producing doc.
func NewSyncMock(name string, doc *caption.Document) *MockTranscriber {
	return &MockTranscriber{
		ProviderInfo: provider.ProviderInfo{
			Name:          name,
			DisplayName:   "Mock " + name,
			Type:          provider.ProviderTypeLocal,
			Mode:          provider.ModeSync,
			AcceptsUpload: true,
		},
		Result: doc,
	}
}

// NewAsyncMock returns a remote asynchronous mock that walks statuses.
func NewAsyncMock(name, jobID string, doc *caption.Document, statuses ...provider.StatusReport) *MockTranscriber {
	return &MockTranscriber{
		ProviderInfo: provider.ProviderInfo{
			Name:                 name,
			DisplayName:          "Mock " + name,
			Type:                 provider.ProviderTypeRemote,
			Mode:                 provider.ModeAsync,
			AcceptsURL:           true,
			AcceptsUpload:        true,
			SupportsAutoLanguage: true,
			RequiresAPIKey:       true,
		},
		Result:   doc,
		JobID:    jobID,
		Statuses: statuses,
	}
}

func (m *MockTranscriber) Info() provider.ProviderInfo { return m.ProviderInfo }

func (m *MockTranscriber) Submit(ctx context.Context, req *provider.TranscriptionRequest) (*provider.Job, error) {
	m.mu.Lock()
	m.requests = append(m.requests, *req)
	m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if m.SubmitErr != nil {
		return nil, m.SubmitErr
	}
	if err := provider.CheckMedia(m.ProviderInfo, req.Media); err != nil {
		return nil, err
	}
	if m.ProviderInfo.Mode == provider.ModeSync {
		return provider.NewDoneJob(m.ProviderInfo.Name, m.Result.Clone()), nil
	}
	return provider.NewSubmittedJob(m.ProviderInfo.Name, m.JobID), nil
}

func (m *MockTranscriber) Status(ctx context.Context, jobID, credential string) (provider.StatusReport, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return provider.StatusReport{}, err
	}
	if m.StatusErr != nil {
		return provider.StatusReport{}, m.StatusErr
	}
	if len(m.Statuses) == 0 {
		return provider.StatusReport{State: provider.StateRunning}, nil
	}
	i := m.statusCalls
	if i >= len(m.Statuses) {
		i = len(m.Statuses) - 1
	}
	m.statusCalls++
	return m.Statuses[i], nil
}

func (m *MockTranscriber) FetchResult(ctx context.Context, job *provider.Job, credential string) (*caption.Document, error) {
	m.mu.Lock()
	m.fetchCalls++
	m.mu.Unlock()

	if m.FetchErr != nil {
		return nil, m.FetchErr
	}
	if m.ProviderInfo.Mode == provider.ModeSync {
		if job.Document == nil {
			return nil, apperrors.ErrJobNotReady
		}
		return job.Document, nil
	}
	return m.Result.Clone(), nil
}

// Requests returns copies of the submitted requests.
func (m *MockTranscriber) Requests() []provider.TranscriptionRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]provider.TranscriptionRequest(nil), m.requests...)
}

func (m *MockTranscriber) StatusCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.statusCalls
}

func (m *MockTranscriber) FetchCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.fetchCalls
}
