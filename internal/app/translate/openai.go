package translate

import (
	"context"

	"captionflow/internal/app/api/openai/chat"
	apperrors "captionflow/internal/app/errors"
)

// OpenAIGenerator translates through chat completions. It takes no
// attachments, so a Translator built on it has no context store.
type OpenAIGenerator struct {
	completer *chat.Completer
}

func NewOpenAIGenerator(baseURL, model string) *OpenAIGenerator {
	return &OpenAIGenerator{completer: chat.NewCompleter(baseURL, model)}
}

func (g *OpenAIGenerator) Name() string { return "openai" }

func (g *OpenAIGenerator) Generate(ctx context.Context, req GenerateRequest) (string, error) {
	if req.Credential == "" {
		return "", &apperrors.ConfigurationError{Key: "OPENAI_API_KEY", Reason: "is not set and the request carries no apiKey"}
	}
	return g.completer.Chat(ctx, req.Credential, req.System, req.Prompt)
}
