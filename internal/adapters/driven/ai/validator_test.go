package ai

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/dossier/internal/core/domain"
	"github.com/custodia-labs/dossier/internal/core/ports/driven"
)

type stubSearch struct {
	err     error
	queries []string
}

func (s *stubSearch) Search(_ context.Context, query string, _ int) ([]domain.SearchHit, error) {
	s.queries = append(s.queries, query)
	return nil, s.err
}

func (s *stubSearch) Name() string { return "stub" }

func TestNewConfigValidator(t *testing.T) {
	require.NotNil(t, NewConfigValidator())
}

func TestConfigValidator_NilAndUnconfigured(t *testing.T) {
	v := NewConfigValidator()

	assert.NoError(t, v.ValidateEmbedding(nil))
	assert.NoError(t, v.ValidateLLM(nil))
	assert.NoError(t, v.ValidateSearch(nil))
	assert.NoError(t, v.ValidateEmbedding(&domain.EmbeddingSettings{Model: "m"}))
	assert.NoError(t, v.ValidateLLM(&domain.LLMSettings{Provider: domain.AIProviderOpenAI}))
	assert.NoError(t, v.ValidateSearch(&domain.SearchSettings{Provider: domain.SearchProviderSerpAPI}))
}

func TestConfigValidator_ValidateEmbedding_Unsupported(t *testing.T) {
	err := NewConfigValidator().ValidateEmbedding(&domain.EmbeddingSettings{
		Provider: domain.AIProviderAnthropic,
		APIKey:   "k",
	})
	assert.Error(t, err)
}

func TestConfigValidator_ValidateSearch(t *testing.T) {
	stub := &stubSearch{}
	v := &ConfigValidator{newSearch: func(domain.SearchSettings) (driven.SearchProvider, error) {
		return stub, nil
	}}
	settings := &domain.SearchSettings{Provider: domain.SearchProviderBrave, APIKey: "k"}

	require.NoError(t, v.ValidateSearch(settings))
	assert.Equal(t, []string{probeQuery}, stub.queries)

	stub.err = domain.ErrSearchUnavailable
	err := v.ValidateSearch(settings)
	assert.ErrorIs(t, err, domain.ErrSearchUnavailable)
	assert.Contains(t, err.Error(), "stub probe failed")
}

func TestConfigValidator_ValidateSearch_FactoryError(t *testing.T) {
	v := &ConfigValidator{newSearch: func(domain.SearchSettings) (driven.SearchProvider, error) {
		return nil, errors.New("bad")
	}}
	err := v.ValidateSearch(&domain.SearchSettings{Provider: domain.SearchProviderDuckDuckGo})
	assert.EqualError(t, err, "bad")
}
