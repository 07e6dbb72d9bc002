package elevenlabs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"captionflow/internal/app/api/provider"
	"captionflow/internal/app/caption"
)

const name = "elevenlabs"

// STTProvider implements the Transcriber interface for the ElevenLabs
// Speech-to-Text API. The call blocks until the transcript is ready.
type STTProvider struct {
	config Config
	client *http.Client
}

// Config represents configuration for the ElevenLabs STT provider
type Config struct {
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"`
	Model   string `yaml:"model"`
	Timeout int    `yaml:"timeout_sec"`

	// Grouping of word timings into cues.
	MaxCueChars int `yaml:"max_cue_chars"`
}

// Response represents the response from the ElevenLabs STT API
type Response struct {
	LanguageCode string `json:"language_code"`
	Text         string `json:"text"`
	Words        []Word `json:"words"`
}

// Word represents word-level timing information from ElevenLabs
type Word struct {
	Text  string  `json:"text"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Type  string  `json:"type"`
}

func NewSTTProvider(config Config) *STTProvider {
	if config.BaseURL == "" {
		config.BaseURL = "https://api.elevenlabs.io/v1"
	}
	config.BaseURL = strings.TrimRight(config.BaseURL, "/")
	if config.Model == "" {
		config.Model = "scribe_v1"
	}
	if config.Timeout == 0 {
		config.Timeout = 600
	}
	return &STTProvider{
		config: config,
		client: &http.Client{Timeout: time.Duration(config.Timeout) * time.Second},
	}
}

// NewSTTProviderFromSettings creates a provider from generic settings
func NewSTTProviderFromSettings(settings map[string]interface{}, apiKey string) *STTProvider {
	return NewSTTProvider(Config{
		APIKey:      apiKey,
		BaseURL:     provider.StringSetting(settings, "base_url"),
		Model:       provider.StringSetting(settings, "model"),
		Timeout:     provider.IntSetting(settings, "timeout_sec"),
		MaxCueChars: provider.IntSetting(settings, "max_cue_chars"),
	})
}

func (el *STTProvider) Info() provider.ProviderInfo {
	return provider.ProviderInfo{
		Name:           name,
		DisplayName:    "ElevenLabs Speech-to-Text",
		Type:           provider.ProviderTypeRemote,
		Mode:           provider.ModeSync,
		AcceptsURL:     true,
		AcceptsUpload:  true,
		RequiresAPIKey: true,
		MaxFileSizeMB:  1000,
		DefaultModel:   el.config.Model,
	}
}

func (el *STTProvider) Submit(ctx context.Context, req *provider.TranscriptionRequest) (*provider.Job, error) {
	if err := provider.CheckMedia(el.Info(), req.Media); err != nil {
		return nil, err
	}
	credential, err := provider.PickCredential(el.Info(), req.Credential, el.config.APIKey)
	if err != nil {
		return nil, err
	}

	httpReq, err := el.createHTTPRequest(ctx, req, credential)
	if err != nil {
		return nil, err
	}

	resp, err := el.client.Do(httpReq)
	if err != nil {
		return nil, provider.NetworkError(name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, provider.HandleHTTPError(name, resp)
	}

	var parsed Response
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to parse API response: %w", err)
	}

	job := provider.NewDoneJob(name, el.toDocument(parsed))
	job.Title = req.Title
	return job, nil
}

func (el *STTProvider) FetchResult(_ context.Context, job *provider.Job, _ string) (*caption.Document, error) {
	if job.Document == nil {
		return nil, provider.ErrNoDocument(name, job)
	}
	return job.Document, nil
}

// createHTTPRequest writes exactly one of file or cloud_storage_url.
func (el *STTProvider) createHTTPRequest(ctx context.Context, req *provider.TranscriptionRequest, credential string) (*http.Request, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	if err := writer.WriteField("model_id", el.config.Model); err != nil {
		return nil, fmt.Errorf("failed to add model field: %w", err)
	}
	// ElevenLabs detects the language when language_code is absent.
	if lang, ok := provider.LanguageHint(req.Language, false); ok {
		if err := writer.WriteField("language_code", lang); err != nil {
			return nil, fmt.Errorf("failed to add language field: %w", err)
		}
	}
	if err := writer.WriteField("timestamps_granularity", "word"); err != nil {
		return nil, fmt.Errorf("failed to add granularity field: %w", err)
	}

	if u, ok := req.Media.URL(); ok {
		if err := writer.WriteField("cloud_storage_url", u); err != nil {
			return nil, fmt.Errorf("failed to add url field: %w", err)
		}
	} else {
		path, _ := req.Media.Path()
		file, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open audio file: %w", err)
		}
		defer file.Close()

		part, err := writer.CreateFormFile("file", filepath.Base(path))
		if err != nil {
			return nil, fmt.Errorf("failed to create form: %w", err)
		}
		if _, err := io.Copy(part, file); err != nil {
			return nil, fmt.Errorf("failed to copy file data: %w", err)
		}
	}

	if err := writer.Close(); err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, el.config.BaseURL+"/speech-to-text", &body)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP request: %w", err)
	}
	httpReq.Header.Set("Content-Type", writer.FormDataContentType())
	httpReq.Header.Set("xi-api-key", credential)
	httpReq.Header.Set("User-Agent", "captionflow/1.0")
	return httpReq, nil
}

// toDocument keeps word tokens only; spacing and audio events carry no text
// worth a cue.
func (el *STTProvider) toDocument(resp Response) *caption.Document {
	words := make([]caption.Word, 0, len(resp.Words))
	for _, w := range resp.Words {
		if w.Type != "" && w.Type != "word" {
			continue
		}
		text := strings.TrimSpace(w.Text)
		if text == "" {
			continue
		}
		words = append(words, caption.Word{
			Text:    text,
			StartMs: secondsToMs(w.Start),
			EndMs:   secondsToMs(w.End),
		})
	}

	opts := caption.DefaultGroupOptions()
	if el.config.MaxCueChars > 0 {
		opts.MaxChars = el.config.MaxCueChars
	}
	return caption.FromWords(words, opts)
}

func secondsToMs(s float64) int64 {
	return int64(math.Round(s * 1000))
}

// HealthCheck verifies the configured key against the user endpoint.
func (el *STTProvider) HealthCheck(ctx context.Context) error {
	if el.config.APIKey == "" {
		return nil
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, el.config.BaseURL+"/user", nil)
	if err != nil {
		return fmt.Errorf("failed to create health check request: %w", err)
	}
	req.Header.Set("xi-api-key", el.config.APIKey)

	resp, err := el.client.Do(req)
	if err != nil {
		return provider.NetworkError(name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return provider.HandleHTTPError(name, resp)
	}
	return nil
}
