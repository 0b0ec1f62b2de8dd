package services

import (
	"context"

	"github.com/custodia-labs/dossier/internal/core/domain"
	"github.com/custodia-labs/dossier/internal/core/ports/driven"
	"github.com/custodia-labs/dossier/internal/logger"
)

const (
	defaultSnippetCount = 6
	maxSnippets         = 20
)

// RetrieverAgent runs queries through the search provider and merges the hits.
type RetrieverAgent struct {
	search driven.SearchProvider
}

// NewRetrieverAgent creates a retriever. search may be nil, in which case
// every gather returns no snippets.
func NewRetrieverAgent(search driven.SearchProvider) *RetrieverAgent {
	return &RetrieverAgent{search: search}
}

// GatherSnippets searches each query with up to count results (6 when count <= 0),
// drops hits without a URL, removes duplicate URLs keeping the first, and caps at 20.
// A failing query is logged and skipped.
func (r *RetrieverAgent) GatherSnippets(ctx context.Context, queries []string, count int) []domain.SearchHit {
	if count <= 0 {
		count = defaultSnippetCount
	}

	out := make([]domain.SearchHit, 0, maxSnippets)
	if r.search == nil {
		logger.Warn("Retriever: no search provider configured")
		return out
	}

	seen := make(map[string]struct{})
	for _, q := range queries {
		hits, err := r.search.Search(ctx, q, count)
		if err != nil {
			logger.Warn("Retriever: query %q failed: %v", q, err)
			continue
		}
		for _, h := range hits {
			if h.URL == "" {
				continue
			}
			if _, dup := seen[h.URL]; dup {
				continue
			}
			seen[h.URL] = struct{}{}
			out = append(out, h)
		}
	}

	if len(out) > maxSnippets {
		out = out[:maxSnippets]
	}
	logger.Debug("Retriever: %d unique snippets from %d queries", len(out), len(queries))
	return out
}
