package translate

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	apperrors "captionflow/internal/app/errors"
	"captionflow/internal/app/testutil"
)

func geminiServer(t *testing.T, status int, body string, seen *map[string]interface{}) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, ":generateContent") {
			http.NotFound(w, r)
			return
		}
		if seen != nil {
			raw, _ := io.ReadAll(r.Body)
			_ = json.Unmarshal(raw, seen)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(server.Close)
	return server
}

func TestGeminiGenerate(t *testing.T) {
	var seen map[string]interface{}
	server := geminiServer(t, http.StatusOK,
		`{"candidates":[{"content":{"role":"model","parts":[{"text":"1\n00:00:00,000 --> 00:00:02,000\nSzia világ\n"}]}}]}`, &seen)

	tr := NewTranslator(NewGeminiGenerator("", server.URL))
	out, err := tr.Translate(context.Background(), Request{Document: testutil.HelloWorld(), TargetLanguage: "hu", Credential: "AIza-test"})
	require.NoError(t, err)
	assert.Equal(t, "Szia világ", out.Cues[0].Text)

	assert.Contains(t, seen, "systemInstruction")
	assert.Contains(t, seen, "contents")
}

func TestGeminiGenerateAPIError(t *testing.T) {
	server := geminiServer(t, http.StatusBadRequest,
		`{"error":{"code":400,"message":"API key not valid. Please pass a valid API key.","status":"INVALID_ARGUMENT"}}`, nil)

	_, err := NewGeminiGenerator("gemini-2.5-flash", server.URL).Generate(context.Background(), GenerateRequest{
		Credential: "bad",
		Prompt:     "hi",
	})

	var pe *apperrors.ProviderError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "gemini", pe.Provider)
	assert.Equal(t, http.StatusBadRequest, pe.StatusCode)
	assert.False(t, pe.Retryable)
}

func TestGeminiGenerateEmptyText(t *testing.T) {
	server := geminiServer(t, http.StatusOK, `{"candidates":[{"content":{"role":"model","parts":[{"text":"  "}]}}]}`, nil)

	_, err := NewGeminiGenerator("", server.URL).Generate(context.Background(), GenerateRequest{Credential: "k", Prompt: "hi"})

	var pe *apperrors.ProviderError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "model returned no text", pe.Detail)
}

func TestGeminiRequiresCredential(t *testing.T) {
	_, err := NewGeminiGenerator("", "").Generate(context.Background(), GenerateRequest{Prompt: "hi"})

	var ce *apperrors.ConfigurationError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "GEMINI_API_KEY", ce.Key)

	_, err = NewGeminiContextStore("").Upload(context.Background(), "", "/tmp/x.mp4", "video/mp4")
	require.ErrorAs(t, err, &ce)
}

func TestRemoteFromGenai(t *testing.T) {
	tests := []struct {
		state genai.FileState
		want  FileState
	}{
		{genai.FileStateActive, FileReady},
		{genai.FileStateFailed, FileFailed},
		{genai.FileStateProcessing, FileProcessing},
		{genai.FileStateUnspecified, FileProcessing},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, mapFileState(tt.state), string(tt.state))
	}

	remote := remoteFromGenai(&genai.File{
		Name:     "files/abc",
		URI:      "https://generativelanguage.googleapis.com/v1beta/files/abc",
		MIMEType: "video/mp4",
		State:    genai.FileStateFailed,
		Error:    &genai.FileStatus{Message: "unsupported codec"},
	})
	assert.Equal(t, FileFailed, remote.State)
	assert.Equal(t, "unsupported codec", remote.Error)
	assert.Equal(t, "files/abc", remote.Name)
}

func TestGeminiErrorPassesContextErrors(t *testing.T) {
	assert.ErrorIs(t, geminiError(context.Canceled), context.Canceled)

	var pe *apperrors.ProviderError
	require.ErrorAs(t, geminiError(io.ErrUnexpectedEOF), &pe)
	assert.True(t, pe.Retryable)
}
