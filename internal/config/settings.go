package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/samber/lo"

	"captionflow/internal/app/api/provider"
	"captionflow/internal/app/delivery"
)

// APIKeys holds the configured provider credentials. Each one is optional.
type APIKeys struct {
	Speechmatics string
	AssemblyAI   string
	OpenAI       string
	ElevenLabs   string
	Gemini       string
}

type ServerSettings struct {
	Host string
	Port string
	// CORSOrigins is empty when any origin may call the API.
	CORSOrigins []string
}

type LocalInference struct {
	Enabled    bool
	BinaryPath string
	ModelPath  string
	FFmpeg     string
	FFprobe    string
}

type Translation struct {
	// Provider is "gemini" or "openai".
	Provider    string
	GeminiModel string
	OpenAIModel string
	BatchSize   int
}

// Settings is the process configuration read from the environment.
type Settings struct {
	Env    string
	Server ServerSettings
	Keys   APIKeys

	DefaultProvider string
	DefaultLanguage string

	LocalInference   LocalInference
	WhisperServerURL string
	// YtDlpBinary is empty when page extraction through yt-dlp is disabled.
	YtDlpBinary string

	PollInterval        time.Duration
	PollTimeout         time.Duration
	ContextPollInterval time.Duration

	Translation Translation
	Storage     delivery.StorageSettings

	// RedisURL enables the shared job store when set.
	RedisURL string
	JobTTL   time.Duration

	WorkDir     string
	MaxUploadMB int
	// ProvidersConfig is the optional yaml override file.
	ProvidersConfig string
	// providersConfigExplicit is set when PROVIDERS_CONFIG names the file.
	providersConfigExplicit bool
}

// Load reads and validates the environment. Call LoadEnv first to pick up
// a .env file.
func Load() (*Settings, error) {
	s := &Settings{
		Env: getEnvOrDefault("APP_ENV", "development"),
		Server: ServerSettings{
			Host: getEnvOrDefault("SERVER_HOST", "0.0.0.0"),
			Port: getEnvOrDefault("SERVER_PORT", DefaultHTTPPort),
			CORSOrigins: lo.Compact(lo.Map(strings.Split(os.Getenv("CORS_ALLOW_ORIGINS"), ","), func(o string, _ int) string {
				return strings.TrimSpace(o)
			})),
		},
		Keys: APIKeys{
			Speechmatics: strings.TrimSpace(os.Getenv("SPEECHMATICS_API_KEY")),
			AssemblyAI:   strings.TrimSpace(os.Getenv("ASSEMBLYAI_API_KEY")),
			OpenAI:       strings.TrimSpace(os.Getenv("OPENAI_API_KEY")),
			ElevenLabs:   strings.TrimSpace(os.Getenv("ELEVENLABS_API_KEY")),
			Gemini:       strings.TrimSpace(os.Getenv("GEMINI_API_KEY")),
		},
		DefaultProvider: getEnvOrDefault("ASR_DEFAULT_PROVIDER", DefaultProvider),
		DefaultLanguage: getEnvOrDefault("DEFAULT_LANGUAGE", DefaultLanguage),
		LocalInference: LocalInference{
			BinaryPath: getEnvOrDefault("WHISPER_CPP_BINARY", ""),
			ModelPath:  getEnvOrDefault("WHISPER_CPP_MODEL", ""),
			FFmpeg:     getEnvOrDefault("FFMPEG_BINARY", "ffmpeg"),
			FFprobe:    getEnvOrDefault("FFPROBE_BINARY", "ffprobe"),
		},
		WhisperServerURL: getEnvOrDefault("WHISPER_SERVER_URL", ""),
		Translation: Translation{
			Provider:    strings.ToLower(getEnvOrDefault("TRANSLATION_PROVIDER", "gemini")),
			GeminiModel: getEnvOrDefault("GEMINI_MODEL", DefaultGeminiModel),
			OpenAIModel: getEnvOrDefault("OPENAI_CHAT_MODEL", ""),
		},
		Storage: delivery.StorageSettings{
			Backend: strings.ToLower(getEnvOrDefault("STORAGE_BACKEND", delivery.BackendNone)),
			Minio: delivery.MinioConfig{
				Endpoint:  getEnvOrDefault("MINIO_ENDPOINT", "localhost:9000"),
				AccessKey: getEnvOrDefault("MINIO_ACCESS_KEY", "minioadmin"),
				SecretKey: getEnvOrDefault("MINIO_SECRET_KEY", "minioadmin"),
				Bucket:    getEnvOrDefault("MINIO_BUCKET", "captionflow"),
				Region:    getEnvOrDefault("MINIO_REGION", ""),
			},
			S3: delivery.S3Config{
				Bucket: getEnvOrDefault("S3_BUCKET", ""),
				Region: getEnvOrDefault("AWS_REGION", "us-east-1"),
			},
		},
		RedisURL: getEnvOrDefault("REDIS_URL", ""),
		WorkDir:  getEnvOrDefault("WORK_DIR", os.TempDir()),
	}

	// an explicitly empty YTDLP_BINARY disables the extractor
	if v, ok := os.LookupEnv("YTDLP_BINARY"); ok {
		s.YtDlpBinary = strings.TrimSpace(v)
	} else {
		s.YtDlpBinary = "yt-dlp"
	}

	if path := getEnvOrDefault("PROVIDERS_CONFIG", ""); path != "" {
		s.ProvidersConfig = path
		s.providersConfigExplicit = true
	} else {
		s.ProvidersConfig = provider.GetDefaultConfigPath()
	}

	var err error
	if s.LocalInference.Enabled, err = getBool("LOCAL_INFERENCE_ENABLED", false); err != nil {
		return nil, err
	}
	if s.Storage.Minio.UseSSL, err = getBool("MINIO_USE_SSL", false); err != nil {
		return nil, err
	}
	if s.PollInterval, err = getDuration("POLL_INTERVAL", DefaultPollInterval); err != nil {
		return nil, err
	}
	if s.PollTimeout, err = getDuration("POLL_TIMEOUT", DefaultPollTimeout); err != nil {
		return nil, err
	}
	if s.ContextPollInterval, err = getDuration("CONTEXT_POLL_INTERVAL", DefaultContextPollInterval); err != nil {
		return nil, err
	}
	if s.JobTTL, err = getDuration("JOB_TTL", DefaultJobTTL); err != nil {
		return nil, err
	}
	if s.Translation.BatchSize, err = getInt("TRANSLATION_BATCH_SIZE", DefaultBatchSize); err != nil {
		return nil, err
	}
	if s.MaxUploadMB, err = getInt("MAX_UPLOAD_MB", DefaultMaxUploadMB); err != nil {
		return nil, err
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Validate applies the format and consistency rules. Missing credentials are
// allowed.
func (s *Settings) Validate() error {
	keys := []struct{ name, value string }{
		{"SPEECHMATICS_API_KEY", s.Keys.Speechmatics},
		{"ASSEMBLYAI_API_KEY", s.Keys.AssemblyAI},
		{"OPENAI_API_KEY", s.Keys.OpenAI},
		{"ELEVENLABS_API_KEY", s.Keys.ElevenLabs},
		{"GEMINI_API_KEY", s.Keys.Gemini},
	}
	for _, k := range keys {
		if err := ValidateAPIKey(k.value, k.name); err != nil {
			return err
		}
	}

	if s.LocalInference.Enabled {
		if s.LocalInference.BinaryPath == "" {
			return invalid("WHISPER_CPP_BINARY", "is required when LOCAL_INFERENCE_ENABLED is true")
		}
		if s.LocalInference.ModelPath == "" {
			return invalid("WHISPER_CPP_MODEL", "is required when LOCAL_INFERENCE_ENABLED is true")
		}
	}
	if s.WhisperServerURL != "" {
		if err := ValidateURL(s.WhisperServerURL, "WHISPER_SERVER_URL"); err != nil {
			return err
		}
	}

	if err := ValidateTimeout(s.PollInterval, "POLL_INTERVAL", time.Minute); err != nil {
		return err
	}
	if err := ValidateTimeout(s.PollTimeout, "POLL_TIMEOUT", 2*time.Hour); err != nil {
		return err
	}
	if err := ValidateTimeout(s.ContextPollInterval, "CONTEXT_POLL_INTERVAL", time.Minute); err != nil {
		return err
	}

	if err := ValidateTimeout(s.JobTTL, "JOB_TTL", 7*24*time.Hour); err != nil {
		return err
	}
	if s.RedisURL != "" && !strings.HasPrefix(s.RedisURL, "redis://") && !strings.HasPrefix(s.RedisURL, "rediss://") {
		return invalid("REDIS_URL", "must start with redis:// or rediss://")
	}

	switch s.Translation.Provider {
	case "gemini", "openai":
	default:
		return invalid("TRANSLATION_PROVIDER", fmt.Sprintf("unknown provider %q (want gemini or openai)", s.Translation.Provider))
	}
	if s.Translation.BatchSize <= 0 {
		return invalid("TRANSLATION_BATCH_SIZE", "must be positive")
	}

	switch s.Storage.Backend {
	case delivery.BackendNone, delivery.BackendMinio:
	case delivery.BackendS3:
		if s.Storage.S3.Bucket == "" {
			return invalid("S3_BUCKET", "is required when STORAGE_BACKEND is s3")
		}
	default:
		return invalid("STORAGE_BACKEND", fmt.Sprintf("unknown backend %q (want minio, s3 or none)", s.Storage.Backend))
	}

	if s.MaxUploadMB <= 0 {
		return invalid("MAX_UPLOAD_MB", "must be positive")
	}
	return ValidatePort(s.Server.Port, "SERVER_PORT")
}

func (s *Settings) IsDevelopment() bool {
	return s.Env != "production"
}

func (s *Settings) Addr() string {
	return s.Server.Host + ":" + s.Server.Port
}

func (s *Settings) MaxUploadBytes() int64 {
	return int64(s.MaxUploadMB) << 20
}

// TranslationCredential is the configured key of the translation provider.
func (s *Settings) TranslationCredential() string {
	if s.Translation.Provider == "openai" {
		return s.Keys.OpenAI
	}
	return s.Keys.Gemini
}
