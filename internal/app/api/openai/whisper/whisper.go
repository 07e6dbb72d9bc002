package whisper

import (
	"context"
	"fmt"
	"os"

	"github.com/sashabaranov/go-openai"

	openaiclient "captionflow/internal/app/api/openai"
	"captionflow/internal/app/api/provider"
	"captionflow/internal/app/caption"
)

const name = "openai"

// Config represents configuration specific to the OpenAI Whisper provider
type Config struct {
	APIKey      string  `yaml:"api_key"`
	Model       string  `yaml:"model"`
	Prompt      string  `yaml:"prompt"`
	Temperature float32 `yaml:"temperature"`
	BaseURL     string  `yaml:"base_url"`
}

// RemoteTranscriber runs the whole transcription inside Submit. The API is
// asked for SRT so the response parses straight into a document.
type RemoteTranscriber struct {
	config Config
}

func NewRemoteTranscriber(config Config) *RemoteTranscriber {
	if config.Model == "" {
		config.Model = openai.Whisper1
	}
	return &RemoteTranscriber{config: config}
}

// NewRemoteTranscriberFromSettings creates a transcriber from generic settings
func NewRemoteTranscriberFromSettings(settings map[string]interface{}, apiKey string) *RemoteTranscriber {
	config := Config{
		APIKey:  apiKey,
		Model:   provider.StringSetting(settings, "model"),
		Prompt:  provider.StringSetting(settings, "prompt"),
		BaseURL: provider.StringSetting(settings, "base_url"),
	}
	if temperature, ok := settings["temperature"].(float64); ok {
		config.Temperature = float32(temperature)
	}
	return NewRemoteTranscriber(config)
}

func (rt *RemoteTranscriber) Info() provider.ProviderInfo {
	return provider.ProviderInfo{
		Name:           name,
		DisplayName:    "OpenAI Whisper API",
		Type:           provider.ProviderTypeRemote,
		Mode:           provider.ModeSync,
		AcceptsUpload:  true,
		RequiresAPIKey: true,
		MaxFileSizeMB:  25,
		DefaultModel:   rt.config.Model,
	}
}

func (rt *RemoteTranscriber) Submit(ctx context.Context, req *provider.TranscriptionRequest) (*provider.Job, error) {
	if err := provider.CheckMedia(rt.Info(), req.Media); err != nil {
		return nil, err
	}
	credential, err := provider.PickCredential(rt.Info(), req.Credential, rt.config.APIKey)
	if err != nil {
		return nil, err
	}

	path, _ := req.Media.Path()
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("input file not found: %w", err)
	}

	audioRequest := openai.AudioRequest{
		Model:       rt.config.Model,
		FilePath:    path,
		Prompt:      rt.config.Prompt,
		Temperature: rt.config.Temperature,
		Format:      openai.AudioResponseFormatSRT,
	}
	// Whisper detects the language when none is sent.
	if lang, ok := provider.LanguageHint(req.Language, false); ok {
		audioRequest.Language = lang
	}

	client := openaiclient.NewClient(credential, rt.config.BaseURL)
	resp, err := client.CreateTranscription(ctx, audioRequest)
	if err != nil {
		return nil, openaiclient.ProviderError(name, err)
	}

	doc, err := caption.ParseProviderSRT([]byte(resp.Text))
	if err != nil {
		return nil, fmt.Errorf("openai transcript: %w", err)
	}

	job := provider.NewDoneJob(name, doc)
	job.Title = req.Title
	return job, nil
}

func (rt *RemoteTranscriber) FetchResult(_ context.Context, job *provider.Job, _ string) (*caption.Document, error) {
	if job.Document == nil {
		return nil, provider.ErrNoDocument(name, job)
	}
	return job.Document, nil
}
