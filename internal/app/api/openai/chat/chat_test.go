package chat

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "captionflow/internal/app/errors"
)

func TestChat(t *testing.T) {
	var got openai.ChatCompletionRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-chat", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"c1","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":"Szia világ"},"finish_reason":"stop"}]}`))
	}))
	defer server.Close()

	c := NewCompleter(server.URL+"/v1", "")
	reply, err := c.Chat(context.Background(), "sk-chat", "translate", "Hello world")
	require.NoError(t, err)

	assert.Equal(t, "Szia világ", reply)
	assert.Equal(t, DefaultModel, got.Model)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, openai.ChatMessageRoleSystem, got.Messages[0].Role)
	assert.Equal(t, "Hello world", got.Messages[1].Content)
}

func TestChatProviderError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"error":{"message":"overloaded","type":"server_error"}}`))
	}))
	defer server.Close()

	c := NewCompleter(server.URL+"/v1", "gpt-4o")
	_, err := c.Chat(context.Background(), "sk-chat", "s", "u")

	var pe *apperrors.ProviderError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, http.StatusServiceUnavailable, pe.StatusCode)
	assert.Equal(t, "overloaded", pe.Detail)
	assert.True(t, pe.Retryable)
}
