package driving

import "github.com/custodia-labs/dossier/internal/core/domain"

// SettingsService manages application settings.
type SettingsService interface {
	// Get retrieves current application settings, including environment overrides.
	Get() (*domain.AppSettings, error)

	// Save persists application settings.
	Save(settings *domain.AppSettings) error

	// SetEmbeddingProvider configures the embedding provider.
	SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error

	// SetLLMProvider configures the LLM provider.
	SetLLMProvider(provider domain.AIProvider, model, apiKey string) error

	// SetSearchProvider configures the web search provider.
	SetSearchProvider(provider domain.SearchProviderType, apiKey, cx string) error

	// SetLinkedIn stores LinkedIn OAuth settings; empty arguments keep stored values.
	SetLinkedIn(clientID, clientSecret, redirectURL, accessToken string) error

	// Validate checks that the settings are internally consistent.
	Validate() error

	// GetDefaults returns default settings.
	GetDefaults() domain.AppSettings

	// ValidateEmbeddingConfig validates the current embedding configuration by pinging the provider.
	ValidateEmbeddingConfig() error

	// ValidateLLMConfig validates the current LLM configuration by pinging the provider.
	ValidateLLMConfig() error

	// ValidateSearchConfig validates the current search configuration with a probe query.
	ValidateSearchConfig() error
}
