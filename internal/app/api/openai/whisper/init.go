package whisper

import (
	"captionflow/internal/app/api/provider"
)

func init() {
	provider.RegisterProvider("openai", createOpenAIProvider)
}

// createOpenAIProvider creates an OpenAI Whisper provider from configuration
func createOpenAIProvider(config map[string]interface{}) (provider.Transcriber, error) {
	settings := provider.SettingsOf(config)
	auth := provider.AuthOf(config)
	return NewRemoteTranscriberFromSettings(settings, provider.StringSetting(auth, "api_key")), nil
}
