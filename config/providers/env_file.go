package providers

import (
	"context"
	"fmt"
	"os"
)

// EnvFileProvider implements ConfigProvider for environment variables. An
// optional "prefix" setting namespaces every key, so that with prefix
// IOTOWER_ the key BACKEND_API_BASE reads IOTOWER_BACKEND_API_BASE.
type EnvFileProvider struct {
	prefix string
}

// NewEnvFileProvider creates a new environment provider
func NewEnvFileProvider(config ProviderConfig) (ConfigProvider, error) {
	prefix, _ := config.Config["prefix"].(string)
	return &EnvFileProvider{prefix: prefix}, nil
}

// Get retrieves a configuration value from environment variables
func (ep *EnvFileProvider) Get(ctx context.Context, key string) (string, error) {
	name := ep.prefix + key
	value := os.Getenv(name)
	if value == "" {
		return "", fmt.Errorf("environment variable '%s' not set", name)
	}
	return value, nil
}

// GetWithDefault retrieves a configuration value with fallback
func (ep *EnvFileProvider) GetWithDefault(ctx context.Context, key, defaultValue string) (string, error) {
	value := os.Getenv(ep.prefix + key)
	if value == "" {
		return defaultValue, nil
	}
	return value, nil
}

// TestConnection always succeeds, the environment is always there
func (ep *EnvFileProvider) TestConnection(ctx context.Context) error {
	return nil
}
