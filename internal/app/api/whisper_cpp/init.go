package whisper_cpp

import (
	"fmt"

	"captionflow/internal/app/api/provider"
)

func init() {
	provider.RegisterProvider("whisper_cpp", createWhisperCppProvider)
}

// createWhisperCppProvider creates a whisper.cpp provider from configuration
func createWhisperCppProvider(config map[string]interface{}) (provider.Transcriber, error) {
	settings := provider.SettingsOf(config)

	cfg := LocalConfig{
		BinaryPath: provider.StringSetting(settings, "binary_path"),
		ModelPath:  provider.StringSetting(settings, "model_path"),
		Prompt:     provider.StringSetting(settings, "prompt"),
		Threads:    provider.IntSetting(settings, "threads"),
		FFmpeg:     provider.StringSetting(settings, "ffmpeg_path"),
		FFprobe:    provider.StringSetting(settings, "ffprobe_path"),
	}
	if cfg.BinaryPath == "" {
		return nil, fmt.Errorf("whisper_cpp provider requires 'binary_path' setting")
	}
	if cfg.ModelPath == "" {
		return nil, fmt.Errorf("whisper_cpp provider requires 'model_path' setting")
	}
	return NewLocalTranscriber(cfg, nil), nil
}
