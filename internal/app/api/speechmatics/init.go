package speechmatics

import (
	"captionflow/internal/app/api/provider"
)

func init() {
	provider.RegisterProvider("speechmatics", createSpeechmaticsProvider)
}

func createSpeechmaticsProvider(config map[string]interface{}) (provider.Transcriber, error) {
	settings := provider.SettingsOf(config)
	auth := provider.AuthOf(config)

	// The key may also arrive per request, so it is optional here.
	return NewProviderFromSettings(settings, provider.StringSetting(auth, "api_key")), nil
}
