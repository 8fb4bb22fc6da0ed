package config

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"iotower.com/console/config/providers"
)

// ConfigManager resolves configuration keys against a primary provider with
// the process environment as fallback.
type ConfigManager struct {
	configSource     string
	provider         providers.ConfigProvider
	fallbackProvider providers.ConfigProvider
	log              *slog.Logger
}

// NewConfigManager creates a configuration manager from the bootstrap
// variables CONFIG_SOURCE (default env-file) and CONFIG_SOURCE_CONFIG (JSON
// provider settings).
func NewConfigManager() (*ConfigManager, error) {
	// These two are read directly: the config system is not available yet
	configSource := os.Getenv("CONFIG_SOURCE")
	if configSource == "" {
		configSource = string(providers.ProviderTypeEnvFile)
	}

	configSourceConfig := make(map[string]interface{})
	if raw := os.Getenv("CONFIG_SOURCE_CONFIG"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &configSourceConfig); err != nil {
			return nil, fmt.Errorf("failed to parse CONFIG_SOURCE_CONFIG: %w", err)
		}
	}

	factory := &providers.ProviderFactory{}
	providerConfig := providers.ProviderConfig{
		ProviderType: providers.ProviderType(configSource),
		Config:       configSourceConfig,
	}
	if err := factory.ValidateProviderConfig(providerConfig); err != nil {
		return nil, fmt.Errorf("invalid provider configuration: %w", err)
	}

	provider, err := factory.NewProvider(providerConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create primary provider: %w", err)
	}

	// Fallback is always the environment, without prefix
	fallbackProvider, err := factory.NewProvider(providers.ProviderConfig{
		ProviderType: providers.ProviderTypeEnvFile,
		Config:       make(map[string]interface{}),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create fallback provider: %w", err)
	}

	cm := NewConfigManagerWithProviders(configSource, provider, fallbackProvider)

	if err := provider.TestConnection(context.Background()); err != nil {
		cm.log.Warn("config_primary_provider_unreachable",
			slog.String("source", configSource),
			slog.String("err", err.Error()),
		)
	}

	cm.log.Debug("config_manager_initialized", slog.String("source", configSource))
	return cm, nil
}

// NewConfigManagerWithProviders assembles a manager from existing providers
func NewConfigManagerWithProviders(source string, primary, fallback providers.ConfigProvider) *ConfigManager {
	return &ConfigManager{
		configSource:     source,
		provider:         primary,
		fallbackProvider: fallback,
		log:              slog.Default(),
	}
}

// Get retrieves a configuration value, empty when unset everywhere
func (cm *ConfigManager) Get(key string) string {
	return cm.GetWithDefault(key, "")
}

// GetWithDefault retrieves a configuration value with fallback
func (cm *ConfigManager) GetWithDefault(key, defaultValue string) string {
	ctx := context.Background()

	value, err := cm.provider.Get(ctx, key)
	if err == nil && value != "" {
		return value
	}

	// the fallback is the same source when running on env-file
	if cm.configSource == string(providers.ProviderTypeEnvFile) || cm.fallbackProvider == nil {
		return defaultValue
	}

	if err != nil {
		cm.log.Debug("config_primary_lookup_failed", slog.String("key", key), slog.String("err", err.Error()))
	}
	value, err = cm.fallbackProvider.Get(ctx, key)
	if err != nil || value == "" {
		return defaultValue
	}
	return value
}

// IsKeyVaultEnabled returns true if Azure Key Vault is the primary provider
func (cm *ConfigManager) IsKeyVaultEnabled() bool {
	return cm.configSource == string(providers.ProviderTypeAzureKeyVault)
}

// GetConfigSource returns the current configuration source
func (cm *ConfigManager) GetConfigSource() string {
	return cm.configSource
}
