package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"captionflow/internal/app/delivery"
	"captionflow/internal/config"
)

func testSettings(t *testing.T) *config.Settings {
	return &config.Settings{
		Env:             "development",
		Server:          config.ServerSettings{Host: "127.0.0.1", Port: "8080"},
		DefaultProvider: "speechmatics",
		DefaultLanguage: "hu",
		PollInterval:    time.Second,
		PollTimeout:     time.Minute,
		Translation: config.Translation{
			Provider:    "gemini",
			GeminiModel: config.DefaultGeminiModel,
			BatchSize:   config.DefaultBatchSize,
		},
		Storage:     delivery.StorageSettings{Backend: delivery.BackendNone},
		WorkDir:     t.TempDir(),
		MaxUploadMB: 10,
		YtDlpBinary: "yt-dlp",
	}
}

func TestInitializeApp(t *testing.T) {
	a, err := InitializeApp(context.Background(), testSettings(t), zap.NewNop())
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"speechmatics", "assemblyai", "openai", "elevenlabs"}, a.Registry.Names())
	assert.Equal(t, "speechmatics", a.Registry.DefaultName())
	assert.Equal(t, "gemini", a.Translator.GeneratorName())
	assert.Equal(t, delivery.BackendNone, a.Persister.Backend())
	require.NotNil(t, a.Services)
	assert.NotNil(t, a.Services.TranscriptionService)
	assert.NotNil(t, a.Services.ProviderService)

	w := httptest.NewRecorder()
	a.Server().Router().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestInitializeAppOpenAITranslator(t *testing.T) {
	s := testSettings(t)
	s.Translation.Provider = "openai"
	s.Translation.OpenAIModel = "gpt-4o-mini"

	a, err := InitializeApp(context.Background(), s, nil)
	require.NoError(t, err)
	assert.Equal(t, "openai", a.Translator.GeneratorName())
}

func TestInitializeAppRejectsUnknownDefault(t *testing.T) {
	s := testSettings(t)
	s.DefaultProvider = "whisper_cpp"

	_, err := InitializeApp(context.Background(), s, zap.NewNop())
	assert.Error(t, err)
}

func TestInitializeAppWithRedisJobStore(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	s := testSettings(t)
	s.RedisURL = "redis://" + mr.Addr()

	_, err = InitializeApp(context.Background(), s, zap.NewNop())
	require.NoError(t, err)

	mr.Close()
	_, err = InitializeApp(context.Background(), s, zap.NewNop())
	assert.Error(t, err, "an unreachable redis fails startup")
}
