package driven

import (
	"context"

	"github.com/custodia-labs/dossier/internal/core/domain"
)

// SearchProvider issues a text query to a web search backend.
// Results are best-effort: an empty slice is a valid answer.
type SearchProvider interface {
	// Search returns at most count hits for query.
	Search(ctx context.Context, query string, count int) ([]domain.SearchHit, error)

	// Name identifies the backend in logs.
	Name() string
}
