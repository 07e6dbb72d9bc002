package services

import (
	"context"

	"captionflow/internal/api/errors"
	"captionflow/internal/api/v1/dto"
	"captionflow/internal/app/media"
	"captionflow/internal/app/pipeline"
)

// TranscriptionServiceImpl implements TranscriptionService
type TranscriptionServiceImpl struct {
	orchestrator *pipeline.Orchestrator
	workDir      string
}

// NewTranscriptionService creates a new transcription service. Request
// workspaces are created under workDir.
func NewTranscriptionService(orchestrator *pipeline.Orchestrator, workDir string) TranscriptionService {
	return &TranscriptionServiceImpl{
		orchestrator: orchestrator,
		workDir:      workDir,
	}
}

func (s *TranscriptionServiceImpl) TranscribeUpload(ctx context.Context, requestID string, file UploadedFile, form dto.TranscribeFileForm) (*dto.JobResponse, error) {
	src := media.FromUpload(file.Reader, file.Filename)
	return s.run(ctx, requestID, src, form.APIKey, pipeline.Options{Provider: form.Provider, Language: form.Language})
}

func (s *TranscriptionServiceImpl) TranscribeURL(ctx context.Context, requestID string, req dto.TranscribeURLRequest) (*dto.JobResponse, error) {
	src, err := media.SourceFromURL(req.URL)
	if err != nil {
		return nil, errors.NewValidationError("Invalid URL", map[string]string{"url": err.Error()})
	}
	return s.run(ctx, requestID, src, req.APIKey, pipeline.Options{Provider: req.Provider, Language: req.Language})
}

// ProcessStoredFile treats the stored object URL as direct media.
func (s *TranscriptionServiceImpl) ProcessStoredFile(ctx context.Context, requestID string, req dto.ProcessStoredFileRequest) (*dto.JobResponse, error) {
	src := media.FromDirectURL(req.FileURL)
	return s.run(ctx, requestID, src, req.APIKey, pipeline.Options{Provider: req.Provider, Language: req.Language})
}

func (s *TranscriptionServiceImpl) JobStatus(ctx context.Context, jobID string, query dto.JobStatusQuery) (*dto.JobResponse, error) {
	job, err := s.orchestrator.JobStatus(ctx, query.Provider, jobID, query.APIKey)
	if err != nil {
		return nil, err
	}
	resp := dto.ToJobResponse(job)
	return &resp, nil
}

func (s *TranscriptionServiceImpl) run(ctx context.Context, requestID string, src media.Source, apiKey string, opts pipeline.Options) (*dto.JobResponse, error) {
	session, err := pipeline.NewSession(s.workDir, requestID, apiKey)
	if err != nil {
		return nil, err
	}
	defer session.Close()

	job, err := s.orchestrator.Transcribe(ctx, session, src, opts)
	if err != nil {
		return nil, err
	}
	resp := dto.ToJobResponse(job)
	return &resp, nil
}
