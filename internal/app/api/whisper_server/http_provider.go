package whisper_server

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"captionflow/internal/app/api/provider"
	"captionflow/internal/app/caption"
)

const name = "whisper_server"

// WhisperServerProvider implements transcription via HTTP to a whisper-server instance
type WhisperServerProvider struct {
	config Config
	client *http.Client
}

// Config represents configuration for the whisper-server HTTP API
type Config struct {
	BaseURL       string            // e.g. "http://192.168.1.100:8080"
	InferencePath string            // default "/inference"
	Timeout       int               // seconds
	Temperature   float64           // decoding temperature (0.0-1.0)
	AuthToken     string            // sent as a bearer token when set
	CustomHeaders map[string]string // extra headers for reverse proxies
}

// NewWhisperServerProvider creates a new whisper-server HTTP provider
func NewWhisperServerProvider(config Config) *WhisperServerProvider {
	if config.InferencePath == "" {
		config.InferencePath = "/inference"
	}
	config.BaseURL = strings.TrimRight(config.BaseURL, "/")
	if config.Timeout == 0 {
		config.Timeout = 1800
	}
	return &WhisperServerProvider{
		config: config,
		client: &http.Client{Timeout: time.Duration(config.Timeout) * time.Second},
	}
}

func (wsp *WhisperServerProvider) Info() provider.ProviderInfo {
	return provider.ProviderInfo{
		Name:                 name,
		DisplayName:          "whisper.cpp server",
		Type:                 provider.ProviderTypeLocal,
		Mode:                 provider.ModeSync,
		AcceptsUpload:        true,
		SupportsAutoLanguage: true,
	}
}

func (wsp *WhisperServerProvider) Submit(ctx context.Context, req *provider.TranscriptionRequest) (*provider.Job, error) {
	if err := provider.CheckMedia(wsp.Info(), req.Media); err != nil {
		return nil, err
	}
	path, _ := req.Media.Path()

	body, contentType, err := wsp.createMultipartForm(path, req.Language)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, wsp.config.BaseURL+wsp.config.InferencePath, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP request: %w", err)
	}
	httpReq.Header.Set("Content-Type", contentType)
	for k, v := range wsp.config.CustomHeaders {
		httpReq.Header.Set(k, v)
	}
	if wsp.config.AuthToken != "" {
		httpReq.Header.Set("Authorization", "Bearer "+wsp.config.AuthToken)
	}

	resp, err := wsp.client.Do(httpReq)
	if err != nil {
		return nil, provider.NetworkError(name, err)
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
		return nil, fmt.Errorf("whisper-server output: %w", err)
	}

	job := provider.NewDoneJob(name, doc)
	job.Title = req.Title
	return job, nil
}

func (wsp *WhisperServerProvider) createMultipartForm(path, language string) (*bytes.Buffer, string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open audio file: %w", err)
	}
	defer file.Close()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return nil, "", fmt.Errorf("failed to create form: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, "", fmt.Errorf("failed to copy file data: %w", err)
	}

	lang, _ := provider.LanguageHint(language, true)
	fields := map[string]string{
		"response_format": "srt",
		"language":        lang,
		"temperature":     strconv.FormatFloat(wsp.config.Temperature, 'f', 2, 64),
	}
	for k, v := range fields {
		if err := writer.WriteField(k, v); err != nil {
			return nil, "", fmt.Errorf("failed to add %s field: %w", k, err)
		}
	}

	if err := writer.Close(); err != nil {
		return nil, "", err
	}
	return &body, writer.FormDataContentType(), nil
}

func (wsp *WhisperServerProvider) FetchResult(_ context.Context, job *provider.Job, _ string) (*caption.Document, error) {
	if job.Document == nil {
		return nil, provider.ErrNoDocument(name, job)
	}
	return job.Document, nil
}

// HealthCheck performs a GET on the server root.
func (wsp *WhisperServerProvider) HealthCheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, wsp.config.BaseURL+"/", nil)
	if err != nil {
		return fmt.Errorf("failed to create health check request: %w", err)
	}
	resp, err := wsp.client.Do(req)
	if err != nil {
		return provider.NetworkError(name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return provider.HandleHTTPError(name, resp)
	}
	return nil
}
