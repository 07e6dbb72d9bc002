package assemblyai

import (
	"captionflow/internal/app/api/provider"
)

func init() {
	provider.RegisterProvider("assemblyai", createAssemblyAIProvider)
}

func createAssemblyAIProvider(config map[string]interface{}) (provider.Transcriber, error) {
	settings := provider.SettingsOf(config)
	auth := provider.AuthOf(config)
	return NewProviderFromSettings(settings, provider.StringSetting(auth, "api_key")), nil
}
