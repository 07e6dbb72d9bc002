package elevenlabs

import (
	"captionflow/internal/app/api/provider"
)

func init() {
	provider.RegisterProvider("elevenlabs", createElevenLabsProvider)
}

func createElevenLabsProvider(config map[string]interface{}) (provider.Transcriber, error) {
	settings := provider.SettingsOf(config)
	auth := provider.AuthOf(config)
	return NewSTTProviderFromSettings(settings, provider.StringSetting(auth, "api_key")), nil
}
