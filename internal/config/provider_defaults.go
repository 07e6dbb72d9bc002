package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"captionflow/internal/app/api/provider"
)

const (
	DefaultProvider = "speechmatics"
	DefaultLanguage = "hu"

	DefaultPollInterval        = 3 * time.Second
	DefaultPollTimeout         = 10 * time.Minute
	DefaultContextPollInterval = 2 * time.Second
	DefaultJobTTL              = time.Hour

	DefaultGeminiModel = "gemini-2.5-flash"
	DefaultBatchSize   = 200
	DefaultMaxUploadMB = 500

	DefaultHTTPPort = "8080"

	// Per-call provider timeouts, in seconds.
	DefaultRemoteTimeoutSec     = 300
	DefaultWhisperCppTimeoutSec = 1800
	DefaultHTTPTimeoutSec       = 1800
)

// remoteProviders are always registered; the credential may come with the request.
var remoteProviders = []struct {
	name string
	key  func(APIKeys) string
}{
	{"speechmatics", func(k APIKeys) string { return k.Speechmatics }},
	{"assemblyai", func(k APIKeys) string { return k.AssemblyAI }},
	{"openai", func(k APIKeys) string { return k.OpenAI }},
	{"elevenlabs", func(k APIKeys) string { return k.ElevenLabs }},
}

// ProviderConfiguration derives the adapter set from the environment and
// overlays the yaml file at s.ProvidersConfig when present. A file named
// explicitly through PROVIDERS_CONFIG must exist.
func (s *Settings) ProviderConfiguration() (*provider.ProviderConfiguration, error) {
	cfg := &provider.ProviderConfiguration{
		DefaultProvider: s.DefaultProvider,
		Providers:       make(map[string]provider.ProviderConfig),
	}

	for _, rp := range remoteProviders {
		cfg.Providers[rp.name] = provider.ProviderConfig{
			Type:        rp.name,
			Enabled:     true,
			Auth:        provider.AuthConfig{APIKey: rp.key(s.Keys)},
			Performance: provider.PerformanceConfig{TimeoutSec: DefaultRemoteTimeoutSec},
		}
	}

	if s.LocalInference.Enabled {
		cfg.Providers["whisper_cpp"] = provider.ProviderConfig{
			Type:    "whisper_cpp",
			Enabled: true,
			Settings: map[string]interface{}{
				"binary_path":  s.LocalInference.BinaryPath,
				"model_path":   s.LocalInference.ModelPath,
				"ffmpeg_path":  s.LocalInference.FFmpeg,
				"ffprobe_path": s.LocalInference.FFprobe,
			},
			Performance: provider.PerformanceConfig{TimeoutSec: DefaultWhisperCppTimeoutSec},
		}
	}

	if s.WhisperServerURL != "" {
		cfg.Providers["whisper_server"] = provider.ProviderConfig{
			Type:        "whisper_server",
			Enabled:     true,
			Settings:    map[string]interface{}{"base_url": s.WhisperServerURL},
			Performance: provider.PerformanceConfig{TimeoutSec: DefaultHTTPTimeoutSec},
		}
	}

	if s.ProvidersConfig == "" {
		return cfg, nil
	}
	override, err := provider.NewConfigManager(s.ProvidersConfig).LoadConfig()
	switch {
	case err == nil:
		cfg.Merge(override)
	case errors.Is(err, os.ErrNotExist) && !s.providersConfigExplicit:
	default:
		return nil, invalid("PROVIDERS_CONFIG", fmt.Sprintf("%s: %v", s.ProvidersConfig, err))
	}
	return cfg, nil
}
