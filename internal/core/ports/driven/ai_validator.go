package driven

import "github.com/custodia-labs/dossier/internal/core/domain"

// AIConfigValidator validates provider configurations by testing connectivity.
type AIConfigValidator interface {
	// ValidateEmbedding pings the embedding provider.
	// Returns nil if configuration is valid or not configured.
	ValidateEmbedding(config *domain.EmbeddingSettings) error

	// ValidateLLM pings the LLM provider.
	// Returns nil if configuration is valid or not configured.
	ValidateLLM(config *domain.LLMSettings) error

	// ValidateSearch issues a one-hit probe query against the search provider.
	// Returns nil if configuration is valid or not configured.
	ValidateSearch(config *domain.SearchSettings) error
}
