package chat

import (
	"context"
	"fmt"

	"github.com/sashabaranov/go-openai"

	openai2 "captionflow/internal/app/api/openai"
)

const DefaultModel = openai.GPT4oMini

// Completer sends one system and one user message and returns the reply.
type Completer struct {
	baseURL string
	model   string
}

func NewCompleter(baseURL, model string) *Completer {
	if model == "" {
		model = DefaultModel
	}
	return &Completer{baseURL: baseURL, model: model}
}

func (c *Completer) Model() string {
	return c.model
}

func (c *Completer) Chat(ctx context.Context, apiKey, system, text string) (string, error) {
	client := openai2.NewClient(apiKey, c.baseURL)

	request := openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: system,
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: text,
			},
		},
		Temperature: 0.2,
	}
	resp, err := client.CreateChatCompletion(ctx, request)
	if err != nil {
		return "", openai2.ProviderError("openai", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}
