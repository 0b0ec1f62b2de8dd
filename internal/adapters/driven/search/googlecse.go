package search

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/api/customsearch/v1"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/custodia-labs/dossier/internal/core/domain"
	"github.com/custodia-labs/dossier/internal/core/ports/driven"
)

// Ensure GoogleCSE implements the interface.
var _ driven.SearchProvider = (*GoogleCSE)(nil)

// GoogleCSE queries a Google Programmable Search engine.
type GoogleCSE struct {
	APIKey string
	CX     string
	// Endpoint overrides the API base path when set.
	Endpoint string
	limiter  *RateLimiter
}

// NewGoogleCSE constructs a Programmable Search backend. The generated
// client owns its transport: a custom http.Client would drop the API key.
func NewGoogleCSE(apiKey, cx string, limiter *RateLimiter) *GoogleCSE {
	return &GoogleCSE{APIKey: apiKey, CX: cx, limiter: limiter}
}

// Name identifies the backend.
func (g *GoogleCSE) Name() string { return string(domain.SearchProviderGoogleCSE) }

// Search runs cse.list for the query.
func (g *GoogleCSE) Search(ctx context.Context, query string, count int) ([]domain.SearchHit, error) {
	if g.APIKey == "" || g.CX == "" {
		return []domain.SearchHit{}, nil
	}
	count = clampCount(count)

	ctx, cancel := context.WithTimeout(ctx, DefaultTimeout)
	defer cancel()

	opts := []option.ClientOption{option.WithAPIKey(g.APIKey)}
	if g.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(g.Endpoint))
	}
	svc, err := customsearch.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("google_cse: create service: %w", err)
	}

	var res *customsearch.Search
	for attempt := 0; ; attempt++ {
		if err := g.limiter.Wait(ctx); err != nil {
			return nil, err
		}
		res, err = svc.Cse.List().Cx(g.CX).Q(query).Num(int64(count)).Context(ctx).Do()
		if err == nil {
			break
		}

		var gerr *googleapi.Error
		if !errors.As(err, &gerr) {
			return nil, fmt.Errorf("google_cse: %w", err)
		}
		switch gerr.Code {
		case http.StatusTooManyRequests:
			if attempt >= maxRetries {
				return nil, fmt.Errorf("%w: google_cse: %w", domain.ErrRateLimited, err)
			}
			g.limiter.RecordRateLimit(initialBackoff << attempt)
		case http.StatusUnauthorized, http.StatusForbidden, http.StatusBadRequest:
			return nil, fmt.Errorf("%w: google_cse: %w", domain.ErrSearchUnavailable, err)
		default:
			return nil, fmt.Errorf("google_cse: %w", err)
		}
	}

	hits := make([]domain.SearchHit, 0, len(res.Items))
	for _, item := range res.Items {
		hits = append(hits, hit(item.Title, item.Link, item.Snippet))
		if len(hits) >= count {
			break
		}
	}
	return hits, nil
}
