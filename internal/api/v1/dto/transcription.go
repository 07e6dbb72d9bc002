package dto

import (
	"captionflow/internal/app/api/provider"
	"captionflow/internal/app/caption"
)

// Job statuses reported to clients.
const (
	StatusRunning = "running"
	StatusDone    = "done"
	StatusError   = "error"
)

// TranscribeFileForm is the multipart form of POST /transcribe-from-file.
// The media itself travels in the "file" part.
type TranscribeFileForm struct {
	APIKey   string `form:"apiKey"`
	Language string `form:"language"`
	Provider string `form:"provider"`
}

// TranscribeURLRequest is the body of POST /transcribe-from-url. The url may
// point at media or at a page embedding it.
type TranscribeURLRequest struct {
	URL      string `json:"url" binding:"required,url"`
	APIKey   string `json:"apiKey"`
	Language string `json:"language"`
	Provider string `json:"provider"`
}

// ProcessStoredFileRequest transcribes an object previously uploaded
// through POST /upload-to-storage.
type ProcessStoredFileRequest struct {
	FileURL  string `json:"file_url" binding:"required,url"`
	APIKey   string `json:"apiKey"`
	Language string `json:"language"`
	Provider string `json:"provider"`
}

// JobStatusQuery carries the optional credential and adapter of a status probe.
type JobStatusQuery struct {
	APIKey   string `form:"apiKey"`
	Provider string `form:"provider"`
}

// JobResponse is returned by every transcription route and by the status probe.
type JobResponse struct {
	JobID    string        `json:"job_id,omitempty"`
	Provider string        `json:"provider,omitempty"`
	Status   string        `json:"status"`
	Title    string        `json:"title,omitempty"`
	Captions []caption.Cue `json:"captions,omitempty"`
	Error    string        `json:"error,omitempty"`
}

// ToJobResponse collapses the job lifecycle onto running, done and error.
// Synchronous results carry no job id.
func ToJobResponse(job provider.Job) JobResponse {
	resp := JobResponse{
		Provider: job.Provider,
		Title:    job.Title,
	}
	if !job.Local {
		resp.JobID = job.ID
	}
	switch job.State {
	case provider.StateDone:
		resp.Status = StatusDone
		if job.Document != nil {
			resp.Captions = job.Document.Cues
		}
	case provider.StateFailed, provider.StateRejected:
		resp.Status = StatusError
		resp.Error = job.Error
		if resp.Error == "" {
			resp.Error = "transcription " + string(job.State)
		}
	default:
		resp.Status = StatusRunning
	}
	return resp
}
