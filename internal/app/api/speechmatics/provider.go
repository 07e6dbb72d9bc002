package speechmatics

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"captionflow/internal/app/api/provider"
	"captionflow/internal/app/caption"
)

const (
	name           = "speechmatics"
	DefaultBaseURL = "https://asr.api.speechmatics.com/v2"
)

// Config represents configuration for the Speechmatics batch API
type Config struct {
	APIKey         string `yaml:"api_key"`
	BaseURL        string `yaml:"base_url"`
	OperatingPoint string `yaml:"operating_point"`
	Timeout        int    `yaml:"timeout_sec"`
}

// Provider submits batch jobs to Speechmatics. Jobs are asynchronous: Submit
// returns the provider id and Status/FetchResult finish the work.
type Provider struct {
	config Config
	client *http.Client
}

type jobConfig struct {
	Type                string              `json:"type"`
	TranscriptionConfig transcriptionConfig `json:"transcription_config"`
	FetchData           *fetchData          `json:"fetch_data,omitempty"`
}

type transcriptionConfig struct {
	Language       string `json:"language"`
	OperatingPoint string `json:"operating_point,omitempty"`
}

type fetchData struct {
	URL string `json:"url"`
}

type submitResponse struct {
	ID string `json:"id"`
}

type jobResponse struct {
	Job struct {
		ID     string `json:"id"`
		Status string `json:"status"`
		Errors []struct {
			Timestamp string `json:"timestamp"`
			Message   string `json:"message"`
		} `json:"errors"`
	} `json:"job"`
}

// NewProvider creates a new Speechmatics provider
func NewProvider(config Config) *Provider {
	if config.BaseURL == "" {
		config.BaseURL = DefaultBaseURL
	}
	config.BaseURL = strings.TrimRight(config.BaseURL, "/")
	if config.Timeout == 0 {
		config.Timeout = 120
	}
	return &Provider{
		config: config,
		client: &http.Client{Timeout: time.Duration(config.Timeout) * time.Second},
	}
}

// NewProviderFromSettings creates a provider from generic settings
func NewProviderFromSettings(settings map[string]interface{}, apiKey string) *Provider {
	return NewProvider(Config{
		APIKey:         apiKey,
		BaseURL:        provider.StringSetting(settings, "base_url"),
		OperatingPoint: provider.StringSetting(settings, "operating_point"),
		Timeout:        provider.IntSetting(settings, "timeout_sec"),
	})
}

func (p *Provider) Info() provider.ProviderInfo {
	return provider.ProviderInfo{
		Name:                 name,
		DisplayName:          "Speechmatics Batch",
		Type:                 provider.ProviderTypeRemote,
		Mode:                 provider.ModeAsync,
		AcceptsURL:           true,
		AcceptsUpload:        true,
		SupportsAutoLanguage: true,
		RequiresAPIKey:       true,
		MaxFileSizeMB:        1024,
	}
}

// Submit creates a job. A URL goes into fetch_data and no file part is
// written; a local file goes into data_file and fetch_data is omitted.
func (p *Provider) Submit(ctx context.Context, req *provider.TranscriptionRequest) (*provider.Job, error) {
	if err := provider.CheckMedia(p.Info(), req.Media); err != nil {
		return nil, err
	}
	credential, err := provider.PickCredential(p.Info(), req.Credential, p.config.APIKey)
	if err != nil {
		return nil, err
	}

	language, _ := provider.LanguageHint(req.Language, true)
	cfg := jobConfig{
		Type: "transcription",
		TranscriptionConfig: transcriptionConfig{
			Language:       language,
			OperatingPoint: p.config.OperatingPoint,
		},
	}
	if u, ok := req.Media.URL(); ok {
		cfg.FetchData = &fetchData{URL: u}
	}

	body, contentType, err := buildJobForm(cfg, req.Media)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.config.BaseURL+"/jobs", body)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP request: %w", err)
	}
	httpReq.Header.Set("Content-Type", contentType)
	p.authorize(httpReq, credential)

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, provider.NetworkError(name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return nil, provider.HandleHTTPError(name, resp)
	}

	var created submitResponse
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return nil, fmt.Errorf("failed to parse submit response: %w", err)
	}
	if created.ID == "" {
		return nil, fmt.Errorf("speechmatics returned no job id")
	}

	job := provider.NewSubmittedJob(name, created.ID)
	job.Title = req.Title
	return job, nil
}

// Status reads job.status and maps it onto the shared state enum.
func (p *Provider) Status(ctx context.Context, jobID, credential string) (provider.StatusReport, error) {
	credential, err := provider.PickCredential(p.Info(), credential, p.config.APIKey)
	if err != nil {
		return provider.StatusReport{}, err
	}

	resp, err := p.get(ctx, "/jobs/"+url.PathEscape(jobID), credential)
	if err != nil {
		return provider.StatusReport{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return provider.StatusReport{}, provider.HandleHTTPError(name, resp)
	}

	var payload jobResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return provider.StatusReport{}, fmt.Errorf("failed to parse job status: %w", err)
	}

	var message string
	if len(payload.Job.Errors) > 0 {
		message = payload.Job.Errors[0].Message
	}
	return mapStatus(payload.Job.Status, message), nil
}

func mapStatus(status, message string) provider.StatusReport {
	switch strings.ToLower(status) {
	case "running":
		return provider.StatusReport{State: provider.StateRunning}
	case "done":
		return provider.StatusReport{State: provider.StateDone}
	case "rejected":
		return provider.StatusReport{State: provider.StateRejected, Message: message}
	case "deleted", "expired":
		if message == "" {
			message = fmt.Sprintf("job was %s before it finished", strings.ToLower(status))
		}
		return provider.StatusReport{State: provider.StateFailed, Message: message}
	default:
		return provider.StatusReport{
			State:   provider.StateFailed,
			Message: fmt.Sprintf("unexpected job status %q", status),
		}
	}
}

// FetchResult downloads the transcript in SRT form.
func (p *Provider) FetchResult(ctx context.Context, job *provider.Job, credential string) (*caption.Document, error) {
	if job.Document != nil {
		return job.Document, nil
	}
	credential, err := provider.PickCredential(p.Info(), credential, p.config.APIKey)
	if err != nil {
		return nil, err
	}

	resp, err := p.get(ctx, "/jobs/"+url.PathEscape(job.ID)+"/transcript?format=srt", credential)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, provider.HandleHTTPError(name, resp)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, provider.NetworkError(name, err)
	}
	doc, err := caption.ParseProviderSRT(data)
	if err != nil {
		return nil, fmt.Errorf("speechmatics transcript: %w", err)
	}
	return doc, nil
}

func (p *Provider) get(ctx context.Context, path, credential string) (*http.Response, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, p.config.BaseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP request: %w", err)
	}
	p.authorize(httpReq, credential)

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, provider.NetworkError(name, err)
	}
	return resp, nil
}

func (p *Provider) authorize(req *http.Request, credential string) {
	req.Header.Set("Authorization", "Bearer "+credential)
	req.Header.Set("User-Agent", "captionflow/1.0")
}

func buildJobForm(cfg jobConfig, in provider.MediaInput) (io.Reader, string, error) {
	raw, err := json.Marshal(cfg)
	if err != nil {
		return nil, "", fmt.Errorf("failed to encode job config: %w", err)
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	if err := writer.WriteField("config", string(raw)); err != nil {
		return nil, "", fmt.Errorf("failed to add config field: %w", err)
	}

	if path, ok := in.Path(); ok {
		file, err := os.Open(path)
		if err != nil {
			return nil, "", fmt.Errorf("failed to open audio file: %w", err)
		}
		defer file.Close()

		part, err := writer.CreateFormFile("data_file", filepath.Base(path))
		if err != nil {
			return nil, "", fmt.Errorf("failed to create form: %w", err)
		}
		if _, err := io.Copy(part, file); err != nil {
			return nil, "", fmt.Errorf("failed to copy file data: %w", err)
		}
	}

	if err := writer.Close(); err != nil {
		return nil, "", err
	}
	return &body, writer.FormDataContentType(), nil
}
