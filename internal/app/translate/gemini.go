package translate

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/genai"

	apperrors "captionflow/internal/app/errors"
)

const (
	geminiName         = "gemini"
	DefaultGeminiModel = "gemini-2.5-flash"
)

// GeminiGenerator calls Models.GenerateContent. A client is built per call
// because the API key may come with the request.
type GeminiGenerator struct {
	model   string
	baseURL string
}

func NewGeminiGenerator(model, baseURL string) *GeminiGenerator {
	if model == "" {
		model = DefaultGeminiModel
	}
	return &GeminiGenerator{model: model, baseURL: baseURL}
}

func (g *GeminiGenerator) Name() string { return geminiName }

func (g *GeminiGenerator) Generate(ctx context.Context, req GenerateRequest) (string, error) {
	client, err := newGeminiClient(ctx, req.Credential, g.baseURL)
	if err != nil {
		return "", err
	}

	parts := make([]*genai.Part, 0, 2)
	if req.Attachment != nil {
		parts = append(parts, genai.NewPartFromURI(req.Attachment.URI, req.Attachment.MIMEType))
	}
	parts = append(parts, genai.NewPartFromText(req.Prompt))

	config := &genai.GenerateContentConfig{
		Temperature: genai.Ptr[float32](0.2),
	}
	if req.System != "" {
		config.SystemInstruction = genai.NewContentFromText(req.System, genai.RoleUser)
	}

	resp, err := client.Models.GenerateContent(ctx, g.model,
		[]*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}, config)
	if err != nil {
		return "", geminiError(err)
	}

	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return "", &apperrors.ProviderError{Provider: geminiName, Detail: "model returned no text"}
	}
	return text, nil
}

// GeminiContextStore keeps context attachments in the Gemini Files API.
type GeminiContextStore struct {
	baseURL string
}

func NewGeminiContextStore(baseURL string) *GeminiContextStore {
	return &GeminiContextStore{baseURL: baseURL}
}

func (s *GeminiContextStore) Upload(ctx context.Context, credential, path, mimeType string) (*RemoteFile, error) {
	client, err := newGeminiClient(ctx, credential, s.baseURL)
	if err != nil {
		return nil, err
	}
	file, err := client.Files.UploadFromPath(ctx, path, &genai.UploadFileConfig{MIMEType: mimeType})
	if err != nil {
		return nil, geminiError(err)
	}
	return remoteFromGenai(file), nil
}

func (s *GeminiContextStore) Get(ctx context.Context, credential, name string) (*RemoteFile, error) {
	client, err := newGeminiClient(ctx, credential, s.baseURL)
	if err != nil {
		return nil, err
	}
	file, err := client.Files.Get(ctx, name, nil)
	if err != nil {
		return nil, geminiError(err)
	}
	return remoteFromGenai(file), nil
}

func (s *GeminiContextStore) Delete(ctx context.Context, credential, name string) error {
	client, err := newGeminiClient(ctx, credential, s.baseURL)
	if err != nil {
		return err
	}
	if _, err := client.Files.Delete(ctx, name, nil); err != nil {
		return geminiError(err)
	}
	return nil
}

func remoteFromGenai(file *genai.File) *RemoteFile {
	remote := &RemoteFile{
		Name:     file.Name,
		URI:      file.URI,
		MIMEType: file.MIMEType,
		State:    mapFileState(file.State),
	}
	if file.Error != nil {
		remote.Error = file.Error.Message
	}
	return remote
}

func mapFileState(state genai.FileState) FileState {
	switch state {
	case genai.FileStateActive:
		return FileReady
	case genai.FileStateFailed:
		return FileFailed
	default:
		return FileProcessing
	}
}

func newGeminiClient(ctx context.Context, apiKey, baseURL string) (*genai.Client, error) {
	if apiKey == "" {
		return nil, &apperrors.ConfigurationError{Key: "GEMINI_API_KEY", Reason: "is not set and the request carries no geminiApiKey"}
	}
	cfg := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if baseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: baseURL}
	}
	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return client, nil
}

func geminiError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErrorToProvider(apiErr, err)
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return apiErrorToProvider(*apiErrPtr, err)
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return &apperrors.ProviderError{Provider: geminiName, Detail: err.Error(), Retryable: true, Cause: err}
}

func apiErrorToProvider(apiErr genai.APIError, cause error) error {
	detail := apiErr.Message
	if detail == "" {
		detail = http.StatusText(apiErr.Code)
	}
	return &apperrors.ProviderError{
		Provider:   geminiName,
		StatusCode: apiErr.Code,
		Detail:     detail,
		Retryable:  apiErr.Code == http.StatusTooManyRequests || apiErr.Code >= 500,
		Cause:      cause,
	}
}
