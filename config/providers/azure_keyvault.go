package providers

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/security/keyvault/azsecrets"
)

// secretGetter is the part of azsecrets.Client the provider uses
type secretGetter interface {
	GetSecret(ctx context.Context, name string, version string, options *azsecrets.GetSecretOptions) (azsecrets.GetSecretResponse, error)
}

// AzureKeyVaultProvider implements ConfigProvider for Azure Key Vault.
// Values are cached for cacheDuration after the last fetch.
type AzureKeyVaultProvider struct {
	client        secretGetter
	vaultURL      string
	secretPrefix  string
	cache         map[string]string
	cacheMutex    sync.RWMutex
	cacheExpiry   time.Time
	cacheDuration time.Duration
	now           func() time.Time
}

// secretName converts an environment style key to a Key Vault secret name.
// Key Vault names allow only alphanumerics and hyphens:
// BACKEND_API_BASE -> [prefix-]BACKEND-API-BASE
func (akp *AzureKeyVaultProvider) secretName(key string) string {
	return akp.secretPrefix + strings.ReplaceAll(key, "_", "-")
}

// NewAzureKeyVaultProvider creates a new Azure Key Vault provider
func NewAzureKeyVaultProvider(config ProviderConfig) (ConfigProvider, error) {
	if err := validateAzureKeyVaultConfig(config); err != nil {
		return nil, err
	}
	vaultURL := config.Config["vault_url"].(string)

	credential, err := azidentity.NewDefaultAzureCredential(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create Azure credential: %w", err)
	}

	client, err := azsecrets.NewClient(vaultURL, credential, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create Key Vault client: %w", err)
	}

	prefix, _ := config.Config["secret_prefix"].(string)
	provider := newAzureKeyVaultProvider(client, vaultURL, prefix)

	slog.Info("azure_keyvault_provider_initialized", slog.String("vault_url", vaultURL))
	return provider, nil
}

func newAzureKeyVaultProvider(client secretGetter, vaultURL, prefix string) *AzureKeyVaultProvider {
	return &AzureKeyVaultProvider{
		client:        client,
		vaultURL:      vaultURL,
		secretPrefix:  prefix,
		cache:         make(map[string]string),
		cacheDuration: 5 * time.Minute,
		now:           time.Now,
	}
}

// Get retrieves a configuration value from Azure Key Vault
func (akp *AzureKeyVaultProvider) Get(ctx context.Context, key string) (string, error) {
	akp.cacheMutex.RLock()
	if value, exists := akp.cache[key]; exists && akp.now().Before(akp.cacheExpiry) {
		akp.cacheMutex.RUnlock()
		return value, nil
	}
	akp.cacheMutex.RUnlock()

	akp.cacheMutex.Lock()
	defer akp.cacheMutex.Unlock()

	// Double-check cache after acquiring write lock
	if value, exists := akp.cache[key]; exists && akp.now().Before(akp.cacheExpiry) {
		return value, nil
	}

	name := akp.secretName(key)
	secret, err := akp.getSecretFromKeyVault(ctx, name)
	if err != nil {
		return "", err
	}

	akp.cache[key] = secret
	akp.cacheExpiry = akp.now().Add(akp.cacheDuration)
	return secret, nil
}

// GetWithDefault retrieves a configuration value with fallback
func (akp *AzureKeyVaultProvider) GetWithDefault(ctx context.Context, key, defaultValue string) (string, error) {
	value, err := akp.Get(ctx, key)
	if err != nil {
		return defaultValue, nil
	}
	return value, nil
}

// TestConnection fetches the backend base URL secret, which every
// deployment defines.
func (akp *AzureKeyVaultProvider) TestConnection(ctx context.Context) error {
	_, err := akp.getSecretFromKeyVault(ctx, akp.secretName("BACKEND_API_BASE"))
	return err
}

func (akp *AzureKeyVaultProvider) getSecretFromKeyVault(ctx context.Context, secretName string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	resp, err := akp.client.GetSecret(ctx, secretName, "", nil)
	if err != nil {
		return "", fmt.Errorf("failed to get secret '%s': %w", secretName, err)
	}
	if resp.Value == nil {
		return "", fmt.Errorf("secret '%s' has no value", secretName)
	}
	return *resp.Value, nil
}
