package provider

import (
	"fmt"
	"sort"
	"sync"
)

// ProviderCreator is a function that creates a provider from configuration.
// config carries a "settings" map and an "auth" map, as in the yaml file.
type ProviderCreator func(config map[string]interface{}) (Transcriber, error)

// providerRegistry stores provider creation functions
var (
	providerRegistry = make(map[string]ProviderCreator)
	registryMutex    sync.RWMutex
)

// RegisterProvider registers a provider creator function
func RegisterProvider(providerType string, creator ProviderCreator) {
	registryMutex.Lock()
	defer registryMutex.Unlock()
	providerRegistry[providerType] = creator
}

// GetProviderCreator returns the creator function for a provider type
func GetProviderCreator(providerType string) (ProviderCreator, error) {
	registryMutex.RLock()
	defer registryMutex.RUnlock()

	creator, ok := providerRegistry[providerType]
	if !ok {
		return nil, fmt.Errorf("provider type %s not registered", providerType)
	}
	return creator, nil
}

// ListRegisteredProviders returns all registered provider types, sorted.
func ListRegisteredProviders() []string {
	registryMutex.RLock()
	defer registryMutex.RUnlock()

	providers := make([]string, 0, len(providerRegistry))
	for providerType := range providerRegistry {
		providers = append(providers, providerType)
	}
	sort.Strings(providers)
	return providers
}

// Settings helpers shared by adapter creators.

func SettingsOf(config map[string]interface{}) map[string]interface{} {
	settings, ok := config["settings"].(map[string]interface{})
	if !ok {
		return map[string]interface{}{}
	}
	return settings
}

func AuthOf(config map[string]interface{}) map[string]interface{} {
	auth, ok := config["auth"].(map[string]interface{})
	if !ok {
		return map[string]interface{}{}
	}
	return auth
}

func StringSetting(m map[string]interface{}, key string) string {
	s, _ := m[key].(string)
	return s
}

// IntSetting accepts the numeric types yaml and json decoders produce.
func IntSetting(m map[string]interface{}, key string) int {
	switch v := m[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return 0
}
