package assemblyai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"captionflow/internal/app/api/provider"
	"captionflow/internal/app/caption"
)

const (
	name           = "assemblyai"
	DefaultBaseURL = "https://api.assemblyai.com/v2"
)

// Config represents configuration for the AssemblyAI transcript API
type Config struct {
	APIKey       string `yaml:"api_key"`
	BaseURL      string `yaml:"base_url"`
	SpeechModel  string `yaml:"speech_model"`
	CharsPerLine int    `yaml:"chars_per_caption"`
	Timeout      int    `yaml:"timeout_sec"`
}

// Provider talks to AssemblyAI. Local files are first pushed to /upload and
// the returned upload_url is then submitted like any other URL.
type Provider struct {
	config Config
	client *http.Client
}

type transcriptRequest struct {
	AudioURL          string `json:"audio_url"`
	LanguageCode      string `json:"language_code,omitempty"`
	LanguageDetection bool   `json:"language_detection,omitempty"`
	SpeechModel       string `json:"speech_model,omitempty"`
}

type transcriptResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Error  string `json:"error"`
}

type uploadResponse struct {
	UploadURL string `json:"upload_url"`
}

func NewProvider(config Config) *Provider {
	if config.BaseURL == "" {
		config.BaseURL = DefaultBaseURL
	}
	config.BaseURL = strings.TrimRight(config.BaseURL, "/")
	if config.Timeout == 0 {
		config.Timeout = 300
	}
	return &Provider{
		config: config,
		client: &http.Client{Timeout: time.Duration(config.Timeout) * time.Second},
	}
}

func NewProviderFromSettings(settings map[string]interface{}, apiKey string) *Provider {
	return NewProvider(Config{
		APIKey:       apiKey,
		BaseURL:      provider.StringSetting(settings, "base_url"),
		SpeechModel:  provider.StringSetting(settings, "speech_model"),
		CharsPerLine: provider.IntSetting(settings, "chars_per_caption"),
		Timeout:      provider.IntSetting(settings, "timeout_sec"),
	})
}

func (p *Provider) Info() provider.ProviderInfo {
	return provider.ProviderInfo{
		Name:                 name,
		DisplayName:          "AssemblyAI",
		Type:                 provider.ProviderTypeRemote,
		Mode:                 provider.ModeAsync,
		AcceptsURL:           true,
		AcceptsUpload:        true,
		SupportsAutoLanguage: true,
		RequiresAPIKey:       true,
		MaxFileSizeMB:        2200,
		DefaultModel:         p.config.SpeechModel,
	}
}

func (p *Provider) Submit(ctx context.Context, req *provider.TranscriptionRequest) (*provider.Job, error) {
	if err := provider.CheckMedia(p.Info(), req.Media); err != nil {
		return nil, err
	}
	credential, err := provider.PickCredential(p.Info(), req.Credential, p.config.APIKey)
	if err != nil {
		return nil, err
	}

	audioURL, isURL := req.Media.URL()
	if !isURL {
		path, _ := req.Media.Path()
		if audioURL, err = p.upload(ctx, path, credential); err != nil {
			return nil, err
		}
	}

	body := transcriptRequest{AudioURL: audioURL, SpeechModel: p.config.SpeechModel}
	// AssemblyAI has no "auto" code; detection is a separate flag.
	if lang, ok := provider.LanguageHint(req.Language, true); ok && lang != provider.AutoLanguage {
		body.LanguageCode = lang
	} else {
		body.LanguageDetection = true
	}

	raw, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to encode transcript request: %w", err)
	}
	resp, err := p.do(ctx, http.MethodPost, "/transcript", bytes.NewReader(raw), "application/json", credential)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, provider.HandleHTTPError(name, resp)
	}

	var created transcriptResponse
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return nil, fmt.Errorf("failed to parse transcript response: %w", err)
	}
	if created.ID == "" {
		return nil, fmt.Errorf("assemblyai returned no transcript id")
	}

	job := provider.NewSubmittedJob(name, created.ID)
	job.Title = req.Title
	return job, nil
}

func (p *Provider) upload(ctx context.Context, path, credential string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open audio file: %w", err)
	}
	defer file.Close()

	resp, err := p.do(ctx, http.MethodPost, "/upload", file, "application/octet-stream", credential)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", provider.HandleHTTPError(name, resp)
	}

	var uploaded uploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&uploaded); err != nil {
		return "", fmt.Errorf("failed to parse upload response: %w", err)
	}
	if uploaded.UploadURL == "" {
		return "", fmt.Errorf("assemblyai returned no upload_url")
	}
	return uploaded.UploadURL, nil
}

// Status reads the top-level status field of the transcript resource.
func (p *Provider) Status(ctx context.Context, jobID, credential string) (provider.StatusReport, error) {
	credential, err := provider.PickCredential(p.Info(), credential, p.config.APIKey)
	if err != nil {
		return provider.StatusReport{}, err
	}

	resp, err := p.do(ctx, http.MethodGet, "/transcript/"+url.PathEscape(jobID), nil, "", credential)
	if err != nil {
		return provider.StatusReport{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return provider.StatusReport{}, provider.HandleHTTPError(name, resp)
	}

	var payload transcriptResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return provider.StatusReport{}, fmt.Errorf("failed to parse transcript status: %w", err)
	}
	return mapStatus(payload.Status, payload.Error), nil
}

func mapStatus(status, message string) provider.StatusReport {
	switch strings.ToLower(status) {
	case "queued":
		return provider.StatusReport{State: provider.StateSubmitted}
	case "processing":
		return provider.StatusReport{State: provider.StateRunning}
	case "completed":
		return provider.StatusReport{State: provider.StateDone}
	case "error":
		return provider.StatusReport{State: provider.StateFailed, Message: message}
	default:
		return provider.StatusReport{
			State:   provider.StateFailed,
			Message: fmt.Sprintf("unexpected transcript status %q", status),
		}
	}
}

// FetchResult downloads the SRT export of a completed transcript.
func (p *Provider) FetchResult(ctx context.Context, job *provider.Job, credential string) (*caption.Document, error) {
	if job.Document != nil {
		return job.Document, nil
	}
	credential, err := provider.PickCredential(p.Info(), credential, p.config.APIKey)
	if err != nil {
		return nil, err
	}

	path := "/transcript/" + url.PathEscape(job.ID) + "/srt"
	if p.config.CharsPerLine > 0 {
		path += fmt.Sprintf("?chars_per_caption=%d", p.config.CharsPerLine)
	}
	resp, err := p.do(ctx, http.MethodGet, path, nil, "", credential)
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
		return nil, fmt.Errorf("assemblyai transcript: %w", err)
	}
	return doc, nil
}

func (p *Provider) do(ctx context.Context, method, path string, body io.Reader, contentType, credential string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, p.config.BaseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Authorization", credential)
	req.Header.Set("User-Agent", "captionflow/1.0")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, provider.NetworkError(name, err)
	}
	return resp, nil
}
