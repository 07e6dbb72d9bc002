package translate

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "captionflow/internal/app/errors"
	"captionflow/internal/app/testutil"
)

func TestOpenAIGeneratorTranslates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"c1","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":"1\n00:00:00,000 --> 00:00:02,000\nHallo Welt\n"},"finish_reason":"stop"}]}`))
	}))
	defer server.Close()

	tr := NewTranslator(NewOpenAIGenerator(server.URL+"/v1", ""))
	assert.Equal(t, "openai", tr.GeneratorName())

	out, err := tr.Translate(context.Background(), Request{Document: testutil.HelloWorld(), TargetLanguage: "de", Credential: "sk-test"})
	require.NoError(t, err)
	assert.Equal(t, "Hallo Welt", out.Cues[0].Text)
	assert.Equal(t, int64(2000), int64(out.Cues[0].EndMs))
}

func TestOpenAIGeneratorRequiresCredential(t *testing.T) {
	_, err := NewOpenAIGenerator("", "").Generate(context.Background(), GenerateRequest{Prompt: "hi"})

	var ce *apperrors.ConfigurationError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "OPENAI_API_KEY", ce.Key)
}
