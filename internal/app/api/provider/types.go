package provider

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"captionflow/internal/app/caption"
	apperrors "captionflow/internal/app/errors"
	"captionflow/internal/app/media"
)

// ProviderType defines the type of transcription provider
type ProviderType string

const (
	ProviderTypeLocal  ProviderType = "local"
	ProviderTypeRemote ProviderType = "remote"
)

// Mode tells whether Submit finishes the work inline.
type Mode string

const (
	ModeSync  Mode = "sync"
	ModeAsync Mode = "async"
)

// AutoLanguage asks the provider to detect the spoken language.
const AutoLanguage = "auto"

// ProviderInfo contains metadata about a transcription provider
type ProviderInfo struct {
	Name        string       `json:"name"`
	DisplayName string       `json:"display_name"`
	Type        ProviderType `json:"type"`
	Mode        Mode         `json:"mode"`

	// Media the provider can consume. At least one is true.
	AcceptsURL    bool `json:"accepts_url"`
	AcceptsUpload bool `json:"accepts_upload"`

	SupportsAutoLanguage bool   `json:"supports_auto_language"`
	RequiresAPIKey       bool   `json:"requires_api_key"`
	MaxFileSizeMB        int    `json:"max_file_size_mb,omitempty"`
	DefaultModel         string `json:"default_model,omitempty"`
}

// JobState is the normalized lifecycle of a transcription job.
type JobState string

const (
	StateSubmitted JobState = "submitted"
	StateRunning   JobState = "running"
	StateDone      JobState = "done"
	StateFailed    JobState = "failed"
	StateRejected  JobState = "rejected"
)

// Terminal reports whether no further transitions are possible.
func (s JobState) Terminal() bool {
	return s == StateDone || s == StateFailed || s == StateRejected
}

// Job is a handle to provider-side work.
type Job struct {
	ID       string            `json:"id"`
	Provider string            `json:"provider"`
	State    JobState          `json:"state"`
	Error    string            `json:"error,omitempty"`
	Document *caption.Document `json:"document,omitempty"`
	Title    string            `json:"title,omitempty"`
	// Local marks an id made up in-process for a synchronous result. It is
	// never shown to clients and cannot be probed.
	Local     bool      `json:"local,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewSubmittedJob records a job accepted by an asynchronous provider.
func NewSubmittedJob(providerName, id string) *Job {
	now := time.Now()
	return &Job{ID: id, Provider: providerName, State: StateSubmitted, CreatedAt: now, UpdatedAt: now}
}

// NewDoneJob wraps the result of a synchronous provider. The id is
// generated locally and never leaves the process.
func NewDoneJob(providerName string, doc *caption.Document) *Job {
	now := time.Now()
	return &Job{
		ID:        uuid.NewString(),
		Provider:  providerName,
		State:     StateDone,
		Document:  doc,
		Local:     true,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// StatusReport is one normalized status observation.
type StatusReport struct {
	State   JobState
	Message string
}

// MediaInput is what an adapter sends to its backend: either a URL the
// provider fetches itself or a local file uploaded with the request. The
// zero value is invalid; use MediaFromURL or MediaFromFile.
type MediaInput struct {
	url  string
	path string
}

func MediaFromURL(u string) (MediaInput, error) {
	if strings.TrimSpace(u) == "" {
		return MediaInput{}, apperrors.RequiredField("media url")
	}
	return MediaInput{url: u}, nil
}

func MediaFromFile(path string) (MediaInput, error) {
	if strings.TrimSpace(path) == "" {
		return MediaInput{}, apperrors.RequiredField("media file")
	}
	return MediaInput{path: path}, nil
}

// MediaInputFor maps a resolution onto the wire choice.
func MediaInputFor(res *media.Resolved) (MediaInput, error) {
	if res == nil {
		return MediaInput{}, apperrors.RequiredField("resolved media")
	}
	if res.IsLocal {
		return MediaFromFile(res.Location)
	}
	return MediaFromURL(res.Location)
}

// URL returns the fetchable URL, if this input is one.
func (m MediaInput) URL() (string, bool) { return m.url, m.url != "" }

// Path returns the local file, if this input is one.
func (m MediaInput) Path() (string, bool) { return m.path, m.path != "" }

func (m MediaInput) IsZero() bool { return m.url == "" && m.path == "" }

func (m MediaInput) String() string {
	if m.url != "" {
		return m.url
	}
	return m.path
}

// TranscriptionRequest selects exactly one adapter through the registry;
// Credential is empty for local providers.
type TranscriptionRequest struct {
	Media      MediaInput
	Language   string
	Credential string
	Title      string
}

// LanguageHint applies the auto-detection rule at the adapter boundary.
// When ok is false the adapter must send no language constraint at all.
func LanguageHint(lang string, supportsAuto bool) (code string, ok bool) {
	lang = strings.TrimSpace(lang)
	if lang == "" || strings.EqualFold(lang, AutoLanguage) {
		if supportsAuto {
			return AutoLanguage, true
		}
		return "", false
	}
	return lang, true
}

// CheckMedia rejects inputs the provider cannot consume.
func CheckMedia(info ProviderInfo, in MediaInput) error {
	if in.IsZero() {
		return apperrors.RequiredField("media")
	}
	if _, isURL := in.URL(); isURL && !info.AcceptsURL {
		return &apperrors.UnsupportedMediaError{MediaType: "url", Provider: info.Name}
	}
	if _, isFile := in.Path(); isFile && !info.AcceptsUpload {
		return &apperrors.UnsupportedMediaError{MediaType: "upload", Provider: info.Name}
	}
	return nil
}

// PickCredential prefers the per-request credential over the configured one.
func PickCredential(info ProviderInfo, requested, configured string) (string, error) {
	if !info.RequiresAPIKey {
		return "", nil
	}
	if requested != "" {
		return requested, nil
	}
	if configured != "" {
		return configured, nil
	}
	return "", &apperrors.ConfigurationError{
		Key:    fmt.Sprintf("%s_API_KEY", strings.ToUpper(info.Name)),
		Reason: "is not set and the request carries no apiKey",
	}
}

// ErrNoDocument is returned by synchronous adapters asked for the result of
// a job they did not finish.
func ErrNoDocument(providerName string, job *Job) error {
	return apperrors.Wrapf(apperrors.ErrJobNotReady, "%s job %s has no document", providerName, job.ID)
}
