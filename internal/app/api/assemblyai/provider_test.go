package assemblyai

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"captionflow/internal/app/api/provider"
	apperrors "captionflow/internal/app/errors"
	"captionflow/internal/app/testutil"
)

type mockAssembly struct {
	*httptest.Server

	mu        sync.Mutex
	uploaded  []byte
	submitted []transcriptRequest
	auth      []string
}

func newMockAssembly(t *testing.T) *mockAssembly {
	t.Helper()
	m := &mockAssembly{}
	m.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m.mu.Lock()
		m.auth = append(m.auth, r.Header.Get("Authorization"))
		m.mu.Unlock()

		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/upload":
			data, _ := io.ReadAll(r.Body)
			m.mu.Lock()
			m.uploaded = data
			m.mu.Unlock()
			w.Write([]byte(`{"upload_url":"https://cdn.assemblyai.com/upload/abc"}`))

		case r.Method == http.MethodPost && r.URL.Path == "/transcript":
			var body transcriptRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			m.mu.Lock()
			m.submitted = append(m.submitted, body)
			m.mu.Unlock()
			w.Write([]byte(`{"id":"tr-1","status":"queued"}`))

		case r.URL.Path == "/transcript/tr-1":
			w.Write([]byte(`{"id":"tr-1","status":"completed"}`))

		case r.URL.Path == "/transcript/tr-err":
			w.Write([]byte(`{"id":"tr-err","status":"error","error":"Audio duration is too short."}`))

		case r.URL.Path == "/transcript/tr-1/srt":
			w.Write([]byte(testutil.ThreeCuesSRT))

		default:
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"error":"Transcript not found"}`))
		}
	}))
	t.Cleanup(m.Server.Close)
	return m
}

func TestSubmitURL(t *testing.T) {
	m := newMockAssembly(t)
	p := NewProvider(Config{BaseURL: m.URL})

	in, err := provider.MediaFromURL("https://cdn.example.com/a.mp3")
	require.NoError(t, err)

	job, err := p.Submit(context.Background(), &provider.TranscriptionRequest{Media: in, Language: "en", Credential: "aai"})
	require.NoError(t, err)

	assert.Equal(t, "tr-1", job.ID)
	assert.Equal(t, provider.StateSubmitted, job.State)
	require.Len(t, m.submitted, 1)
	assert.Equal(t, "https://cdn.example.com/a.mp3", m.submitted[0].AudioURL)
	assert.Equal(t, "en", m.submitted[0].LanguageCode)
	assert.False(t, m.submitted[0].LanguageDetection)
	assert.Nil(t, m.uploaded)
	assert.Equal(t, []string{"aai"}, m.auth)
}

func TestSubmitUploadThenDetect(t *testing.T) {
	m := newMockAssembly(t)
	p := NewProvider(Config{BaseURL: m.URL, APIKey: "configured"})

	path := filepath.Join(t.TempDir(), "a.m4a")
	require.NoError(t, os.WriteFile(path, []byte("m4a-bytes"), 0644))
	in, err := provider.MediaFromFile(path)
	require.NoError(t, err)

	_, err = p.Submit(context.Background(), &provider.TranscriptionRequest{Media: in, Language: "auto"})
	require.NoError(t, err)

	assert.Equal(t, "m4a-bytes", string(m.uploaded))
	require.Len(t, m.submitted, 1)
	assert.Equal(t, "https://cdn.assemblyai.com/upload/abc", m.submitted[0].AudioURL)
	assert.Empty(t, m.submitted[0].LanguageCode)
	assert.True(t, m.submitted[0].LanguageDetection)
}

func TestStatusAndResult(t *testing.T) {
	m := newMockAssembly(t)
	p := NewProvider(Config{BaseURL: m.URL, APIKey: "k"})
	ctx := context.Background()

	report, err := p.Status(ctx, "tr-1", "")
	require.NoError(t, err)
	assert.Equal(t, provider.StateDone, report.State)

	report, err = p.Status(ctx, "tr-err", "")
	require.NoError(t, err)
	assert.Equal(t, provider.StateFailed, report.State)
	assert.Equal(t, "Audio duration is too short.", report.Message)

	doc, err := p.FetchResult(ctx, provider.NewSubmittedJob(name, "tr-1"), "")
	require.NoError(t, err)
	assert.Equal(t, 3, doc.Len())
	assert.Equal(t, "Good morning.", doc.Cues[0].Text)
}

func TestStatusNotFound(t *testing.T) {
	m := newMockAssembly(t)
	p := NewProvider(Config{BaseURL: m.URL, APIKey: "k"})

	_, err := p.Status(context.Background(), "nope", "")

	var pe *apperrors.ProviderError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, http.StatusNotFound, pe.StatusCode)
	assert.Equal(t, "Transcript not found", pe.Detail)
}

func TestMapStatus(t *testing.T) {
	assert.Equal(t, provider.StateSubmitted, mapStatus("queued", "").State)
	assert.Equal(t, provider.StateRunning, mapStatus("processing", "").State)
	assert.Equal(t, provider.StateDone, mapStatus("completed", "").State)

	failed := mapStatus("error", "boom")
	assert.Equal(t, provider.StateFailed, failed.State)
	assert.Equal(t, "boom", failed.Message)

	unknown := mapStatus("archived", "")
	assert.Equal(t, provider.StateFailed, unknown.State)
	assert.Contains(t, unknown.Message, "archived")
}
