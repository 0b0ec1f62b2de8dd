package ai

import (
	"context"
	"fmt"

	"github.com/custodia-labs/dossier/internal/adapters/driven/search"
	"github.com/custodia-labs/dossier/internal/core/domain"
	"github.com/custodia-labs/dossier/internal/core/ports/driven"
)

// Ensure ConfigValidator implements the interface.
var _ driven.AIConfigValidator = (*ConfigValidator)(nil)

// probeQuery is the query used to check search credentials.
const probeQuery = "annual report"

// ConfigValidator validates AI and search provider configurations.
type ConfigValidator struct {
	newSearch func(domain.SearchSettings) (driven.SearchProvider, error)
}

// NewConfigValidator creates a new config validator.
func NewConfigValidator() *ConfigValidator {
	return &ConfigValidator{newSearch: search.New}
}

// ValidateEmbedding validates an embedding configuration by pinging the provider.
func (v *ConfigValidator) ValidateEmbedding(config *domain.EmbeddingSettings) error {
	return ValidateEmbeddingConfig(config)
}

// ValidateLLM validates an LLM configuration by pinging the provider.
func (v *ConfigValidator) ValidateLLM(config *domain.LLMSettings) error {
	return ValidateLLMConfig(config)
}

// ValidateSearch runs a one-hit probe query. An empty result is accepted;
// only transport and authentication failures are reported.
func (v *ConfigValidator) ValidateSearch(config *domain.SearchSettings) error {
	if config == nil || !config.IsConfigured() {
		return nil
	}
	provider, err := v.newSearch(*config)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*pingTimeout)
	defer cancel()
	if _, err := provider.Search(ctx, probeQuery, 1); err != nil {
		return fmt.Errorf("%s probe failed: %w", provider.Name(), err)
	}
	return nil
}
