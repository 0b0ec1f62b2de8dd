package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/custodia-labs/dossier/internal/core/domain"
	"github.com/custodia-labs/dossier/internal/core/ports/driven"
)

// Ensure Tavily implements the interface.
var _ driven.SearchProvider = (*Tavily)(nil)

// TavilyEndpoint is the Tavily search endpoint.
const TavilyEndpoint = "https://api.tavily.com/search"

// Tavily calls the Tavily search API.
type Tavily struct {
	APIKey   string
	Endpoint string
	// Depth is Tavily's search_depth (basic or advanced).
	Depth   string
	client  *http.Client
	limiter *RateLimiter
}

// NewTavily constructs a Tavily backend with basic depth.
func NewTavily(apiKey string, client *http.Client, limiter *RateLimiter) *Tavily {
	return &Tavily{APIKey: apiKey, Endpoint: TavilyEndpoint, Depth: "basic", client: client, limiter: limiter}
}

// Name identifies the backend.
func (t *Tavily) Name() string { return string(domain.SearchProviderTavily) }

// Search posts a query to Tavily.
func (t *Tavily) Search(ctx context.Context, query string, count int) ([]domain.SearchHit, error) {
	if t.APIKey == "" {
		return []domain.SearchHit{}, nil
	}
	count = clampCount(count)

	payload, err := json.Marshal(map[string]any{
		"api_key":      t.APIKey,
		"query":        query,
		"search_depth": t.Depth,
		"max_results":  count,
	})
	if err != nil {
		return nil, fmt.Errorf("tavily: encode request: %w", err)
	}

	resp, err := t.limiter.Do(ctx, t.client, func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.Endpoint, bytes.NewReader(payload))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		return req, nil
	})
	if err != nil {
		return nil, fmt.Errorf("tavily: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, statusError("tavily", resp.StatusCode)
	}

	var response struct {
		Results []struct {
			Title   string `json:"title"`
			URL     string `json:"url"`
			Content string `json:"content"`
		} `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("tavily: decode response: %w", err)
	}

	hits := make([]domain.SearchHit, 0, len(response.Results))
	for _, r := range response.Results {
		hits = append(hits, hit(r.Title, r.URL, r.Content))
		if len(hits) >= count {
			break
		}
	}
	return hits, nil
}
