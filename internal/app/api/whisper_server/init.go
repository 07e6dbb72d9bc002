package whisper_server

import (
	"fmt"

	"captionflow/internal/app/api/provider"
)

func init() {
	provider.RegisterProvider("whisper_server", createWhisperServerProvider)
}

func createWhisperServerProvider(config map[string]interface{}) (provider.Transcriber, error) {
	settings := provider.SettingsOf(config)
	auth := provider.AuthOf(config)

	cfg := Config{
		BaseURL:       provider.StringSetting(settings, "base_url"),
		InferencePath: provider.StringSetting(settings, "inference_path"),
		Timeout:       provider.IntSetting(settings, "timeout_sec"),
		AuthToken:     provider.StringSetting(auth, "api_key"),
	}
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("whisper_server provider requires 'base_url' setting")
	}
	if headers, ok := auth["headers"].(map[string]interface{}); ok {
		cfg.CustomHeaders = make(map[string]string, len(headers))
		for k, v := range headers {
			if s, ok := v.(string); ok {
				cfg.CustomHeaders[k] = s
			}
		}
	}
	if temperature, ok := settings["temperature"].(float64); ok {
		cfg.Temperature = temperature
	}
	return NewWhisperServerProvider(cfg), nil
}
