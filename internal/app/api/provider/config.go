package provider

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	apperrors "captionflow/internal/app/errors"
	"captionflow/internal/app/logging"
)

// ProviderConfiguration represents the complete provider configuration
type ProviderConfiguration struct {
	// Default provider to use when none is specified
	DefaultProvider string `yaml:"default_provider"`

	// Provider-specific configurations
	Providers map[string]ProviderConfig `yaml:"providers"`
}

// ProviderConfig represents configuration for a single provider
type ProviderConfig struct {
	// Provider type (speechmatics, assemblyai, openai, elevenlabs, whisper_cpp)
	Type string `yaml:"type"`

	// Whether this provider is enabled
	Enabled bool `yaml:"enabled"`

	// Provider-specific settings
	Settings map[string]interface{} `yaml:"settings"`

	// Authentication settings
	Auth AuthConfig `yaml:"auth,omitempty"`

	// Performance settings
	Performance PerformanceConfig `yaml:"performance,omitempty"`
}

// AuthConfig represents authentication configuration
type AuthConfig struct {
	// API key (can be environment variable reference like ${OPENAI_API_KEY})
	APIKey string `yaml:"api_key,omitempty"`

	// Additional headers for HTTP-based providers
	Headers map[string]string `yaml:"headers,omitempty"`

	// Base URL override, mostly for self-hosted or regional endpoints
	BaseURL string `yaml:"base_url,omitempty"`
}

// PerformanceConfig represents performance-related configuration
type PerformanceConfig struct {
	// Timeout for a single provider HTTP call
	TimeoutSec int `yaml:"timeout_sec,omitempty"`
}

// ConfigManager manages provider configuration
type ConfigManager struct {
	configPath string
	config     *ProviderConfiguration
}

// NewConfigManager creates a new configuration manager
func NewConfigManager(configPath string) *ConfigManager {
	return &ConfigManager{
		configPath: configPath,
	}
}

func (cm *ConfigManager) Path() string {
	return cm.configPath
}

// LoadConfig loads configuration from the YAML file. A missing file yields
// an error matching os.ErrNotExist.
func (cm *ConfigManager) LoadConfig() (*ProviderConfiguration, error) {
	data, err := os.ReadFile(cm.configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config ProviderConfiguration
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config YAML: %w", err)
	}

	cm.expandEnvironmentVariables(&config)

	if err := cm.validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	cm.config = &config
	return &config, nil
}

// SaveConfig saves configuration to the YAML file
func (cm *ConfigManager) SaveConfig(config *ProviderConfiguration) error {
	dir := filepath.Dir(cm.configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config to YAML: %w", err)
	}

	if err := os.WriteFile(cm.configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	cm.config = config
	return nil
}

// GetConfig returns the current configuration
func (cm *ConfigManager) GetConfig() *ProviderConfiguration {
	return cm.config
}

// DefaultTemplate is the file written by `v2s providers init`. Keys are left
// as environment references.
func DefaultTemplate() *ProviderConfiguration {
	return &ProviderConfiguration{
		DefaultProvider: "speechmatics",
		Providers: map[string]ProviderConfig{
			"speechmatics": {
				Type:     "speechmatics",
				Enabled:  true,
				Auth:     AuthConfig{APIKey: "${SPEECHMATICS_API_KEY}"},
				Settings: map[string]interface{}{"base_url": "https://asr.api.speechmatics.com/v2"},
			},
			"assemblyai": {
				Type:     "assemblyai",
				Enabled:  false,
				Auth:     AuthConfig{APIKey: "${ASSEMBLYAI_API_KEY}"},
				Settings: map[string]interface{}{"base_url": "https://api.assemblyai.com/v2"},
			},
			"openai": {
				Type:     "openai",
				Enabled:  false,
				Auth:     AuthConfig{APIKey: "${OPENAI_API_KEY}"},
				Settings: map[string]interface{}{"model": "whisper-1"},
			},
			"elevenlabs": {
				Type:     "elevenlabs",
				Enabled:  false,
				Auth:     AuthConfig{APIKey: "${ELEVENLABS_API_KEY}"},
				Settings: map[string]interface{}{"model": "scribe_v1"},
			},
			"whisper_cpp": {
				Type:    "whisper_cpp",
				Enabled: false,
				Settings: map[string]interface{}{
					"binary_path": "${WHISPER_CPP_BINARY}",
					"model_path":  "${WHISPER_CPP_MODEL}",
				},
				Performance: PerformanceConfig{TimeoutSec: 1800},
			},
		},
	}
}

// Merge overlays o onto c. Providers present in o replace the enabled flag
// and add or override settings, auth, and performance values.
func (c *ProviderConfiguration) Merge(o *ProviderConfiguration) {
	if o == nil {
		return
	}
	if o.DefaultProvider != "" {
		c.DefaultProvider = o.DefaultProvider
	}
	if c.Providers == nil {
		c.Providers = make(map[string]ProviderConfig)
	}
	for name, override := range o.Providers {
		base, ok := c.Providers[name]
		if !ok {
			c.Providers[name] = override
			continue
		}
		base.Enabled = override.Enabled
		if override.Type != "" {
			base.Type = override.Type
		}
		if base.Settings == nil {
			base.Settings = make(map[string]interface{})
		}
		for k, v := range override.Settings {
			base.Settings[k] = v
		}
		if override.Auth.APIKey != "" {
			base.Auth.APIKey = override.Auth.APIKey
		}
		if override.Auth.BaseURL != "" {
			base.Auth.BaseURL = override.Auth.BaseURL
		}
		if len(override.Auth.Headers) > 0 {
			base.Auth.Headers = override.Auth.Headers
		}
		if override.Performance.TimeoutSec > 0 {
			base.Performance.TimeoutSec = override.Performance.TimeoutSec
		}
		c.Providers[name] = base
	}
}

// CreatorConfig flattens a ProviderConfig into the map creators read.
func (pc ProviderConfig) CreatorConfig() map[string]interface{} {
	settings := make(map[string]interface{}, len(pc.Settings)+2)
	for k, v := range pc.Settings {
		settings[k] = v
	}
	if pc.Auth.BaseURL != "" {
		settings["base_url"] = pc.Auth.BaseURL
	}
	if pc.Performance.TimeoutSec > 0 {
		settings["timeout_sec"] = pc.Performance.TimeoutSec
	}

	headers := make(map[string]interface{}, len(pc.Auth.Headers))
	for k, v := range pc.Auth.Headers {
		headers[k] = v
	}
	return map[string]interface{}{
		"settings": settings,
		"auth": map[string]interface{}{
			"api_key": pc.Auth.APIKey,
			"headers": headers,
		},
	}
}

// BuildRegistry instantiates every enabled provider of cfg.
func BuildRegistry(cfg *ProviderConfiguration, logger *zap.Logger) (*Registry, error) {
	logger = logging.OrNop(logger)
	registry := NewRegistry()

	names := make([]string, 0, len(cfg.Providers))
	for name := range cfg.Providers {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		pc := cfg.Providers[name]
		if !pc.Enabled {
			continue
		}
		providerType := pc.Type
		if providerType == "" {
			providerType = name
		}
		creator, err := GetProviderCreator(providerType)
		if err != nil {
			return nil, &apperrors.ConfigurationError{Key: "providers." + name, Reason: err.Error()}
		}
		t, err := creator(pc.CreatorConfig())
		if err != nil {
			return nil, &apperrors.ConfigurationError{Key: "providers." + name, Reason: err.Error()}
		}
		if err := registry.Register(name, t); err != nil {
			return nil, err
		}
		registry.SetCredential(name, pc.Auth.APIKey)
		logger.Debug("registered provider", zap.String("provider", name), zap.String("type", providerType))
	}

	if len(registry.Names()) == 0 {
		return nil, &apperrors.ConfigurationError{Key: "providers", Reason: "no provider is enabled"}
	}
	if cfg.DefaultProvider != "" {
		if err := registry.SetDefault(cfg.DefaultProvider); err != nil {
			return nil, &apperrors.ConfigurationError{
				Key:    "ASR_DEFAULT_PROVIDER",
				Reason: fmt.Sprintf("names %q which is not enabled", cfg.DefaultProvider),
			}
		}
	}
	return registry, nil
}

// expandEnvironmentVariables expands environment variable references in the config
func (cm *ConfigManager) expandEnvironmentVariables(config *ProviderConfiguration) {
	for name, providerConfig := range config.Providers {
		providerConfig.Auth.APIKey = os.ExpandEnv(providerConfig.Auth.APIKey)
		providerConfig.Auth.BaseURL = os.ExpandEnv(providerConfig.Auth.BaseURL)
		for key, value := range providerConfig.Auth.Headers {
			providerConfig.Auth.Headers[key] = os.ExpandEnv(value)
		}
		for key, value := range providerConfig.Settings {
			if s, ok := value.(string); ok {
				providerConfig.Settings[key] = os.ExpandEnv(s)
			}
		}
		config.Providers[name] = providerConfig
	}
}

// validateConfig validates the configuration
func (cm *ConfigManager) validateConfig(config *ProviderConfiguration) error {
	if config.DefaultProvider != "" {
		defaultConfig, exists := config.Providers[config.DefaultProvider]
		if exists && !defaultConfig.Enabled {
			return fmt.Errorf("default provider '%s' is disabled", config.DefaultProvider)
		}
	}

	for name, providerConfig := range config.Providers {
		if providerConfig.Performance.TimeoutSec < 0 {
			return fmt.Errorf("provider '%s' has invalid timeout", name)
		}
	}
	return nil
}

// GetDefaultConfigPath returns the default configuration file path
func GetDefaultConfigPath() string {
	if homeDir, err := os.UserHomeDir(); err == nil {
		return filepath.Join(homeDir, ".captionflow", "providers.yaml")
	}
	return "./config/providers.yaml"
}
