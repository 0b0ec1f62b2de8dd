package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/custodia-labs/dossier/internal/core/domain"
	"github.com/custodia-labs/dossier/internal/core/ports/driven"
)

// Ensure Brave implements the interface.
var _ driven.SearchProvider = (*Brave)(nil)

// BraveEndpoint is the Brave web search endpoint.
const BraveEndpoint = "https://api.search.brave.com/res/v1/web/search"

// Brave uses the Brave Search API. The key goes in X-Subscription-Token.
type Brave struct {
	APIKey   string
	Endpoint string
	client   *http.Client
	limiter  *RateLimiter
}

// NewBrave constructs a Brave backend.
func NewBrave(apiKey string, client *http.Client, limiter *RateLimiter) *Brave {
	return &Brave{APIKey: apiKey, Endpoint: BraveEndpoint, client: client, limiter: limiter}
}

// Name identifies the backend.
func (b *Brave) Name() string { return string(domain.SearchProviderBrave) }

// Search executes a Brave query.
func (b *Brave) Search(ctx context.Context, query string, count int) ([]domain.SearchHit, error) {
	if b.APIKey == "" {
		return []domain.SearchHit{}, nil
	}
	count = clampCount(count)

	params := url.Values{}
	params.Set("q", query)
	params.Set("count", strconv.Itoa(count))

	resp, err := b.limiter.Do(ctx, b.client, func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.Endpoint+"?"+params.Encode(), http.NoBody)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("X-Subscription-Token", b.APIKey)
		return req, nil
	})
	if err != nil {
		return nil, fmt.Errorf("brave: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, statusError("brave", resp.StatusCode)
	}

	var payload struct {
		Web struct {
			Results []struct {
				Title       string `json:"title"`
				URL         string `json:"url"`
				Description string `json:"description"`
			} `json:"results"`
		} `json:"web"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("brave: decode response: %w", err)
	}

	hits := make([]domain.SearchHit, 0, len(payload.Web.Results))
	for _, r := range payload.Web.Results {
		hits = append(hits, hit(r.Title, r.URL, r.Description))
		if len(hits) >= count {
			break
		}
	}
	return hits, nil
}
