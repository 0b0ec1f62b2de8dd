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

// Ensure SerpAPI implements the interface.
var _ driven.SearchProvider = (*SerpAPI)(nil)

// SerpAPIEndpoint is the SerpAPI JSON endpoint.
const SerpAPIEndpoint = "https://serpapi.com/search.json"

// SerpAPI queries Google through serpapi.com.
type SerpAPI struct {
	APIKey   string
	Endpoint string
	client   *http.Client
	limiter  *RateLimiter
}

// NewSerpAPI constructs a SerpAPI backend.
func NewSerpAPI(apiKey string, client *http.Client, limiter *RateLimiter) *SerpAPI {
	return &SerpAPI{APIKey: apiKey, Endpoint: SerpAPIEndpoint, client: client, limiter: limiter}
}

// Name identifies the backend.
func (s *SerpAPI) Name() string { return string(domain.SearchProviderSerpAPI) }

// Search returns Google organic results.
func (s *SerpAPI) Search(ctx context.Context, query string, count int) ([]domain.SearchHit, error) {
	if s.APIKey == "" {
		return []domain.SearchHit{}, nil
	}
	count = clampCount(count)

	params := url.Values{}
	params.Set("engine", "google")
	params.Set("q", query)
	params.Set("num", strconv.Itoa(count))
	params.Set("api_key", s.APIKey)

	resp, err := s.limiter.Do(ctx, s.client, func(ctx context.Context) (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet, s.Endpoint+"?"+params.Encode(), http.NoBody)
	})
	if err != nil {
		return nil, fmt.Errorf("serpapi: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, statusError("serpapi", resp.StatusCode)
	}

	var payload struct {
		Error          string `json:"error"`
		OrganicResults []struct {
			Title   string `json:"title"`
			Link    string `json:"link"`
			Snippet string `json:"snippet"`
		} `json:"organic_results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("serpapi: decode response: %w", err)
	}
	if payload.Error != "" && len(payload.OrganicResults) == 0 {
		// SerpAPI reports "no results" as an error string with HTTP 200.
		return []domain.SearchHit{}, nil
	}

	hits := make([]domain.SearchHit, 0, len(payload.OrganicResults))
	for _, r := range payload.OrganicResults {
		hits = append(hits, hit(r.Title, r.Link, r.Snippet))
		if len(hits) >= count {
			break
		}
	}
	return hits, nil
}
