package search

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/custodia-labs/dossier/internal/core/domain"
	"github.com/custodia-labs/dossier/internal/core/ports/driven"
)

// DefaultTimeout bounds a single search request.
const DefaultTimeout = 20 * time.Second

// maxPerRequest is the largest page every keyed backend accepts.
const maxPerRequest = 10

// New builds the backend selected by settings.
// It returns domain.ErrSearchUnavailable when required credentials are missing.
func New(settings domain.SearchSettings) (driven.SearchProvider, error) {
	if !settings.IsConfigured() {
		return nil, fmt.Errorf("%w: %s is not configured", domain.ErrSearchUnavailable, settings.Provider)
	}

	client := &http.Client{Timeout: DefaultTimeout}
	limiter := NewRateLimiter(settings.Provider, settings.RequestsPerSecond)

	switch settings.Provider {
	case domain.SearchProviderSerpAPI:
		return NewSerpAPI(settings.APIKey, client, limiter), nil
	case domain.SearchProviderGoogleCSE:
		return NewGoogleCSE(settings.APIKey, settings.CX, limiter), nil
	case domain.SearchProviderBrave:
		return NewBrave(settings.APIKey, client, limiter), nil
	case domain.SearchProviderTavily:
		return NewTavily(settings.APIKey, client, limiter), nil
	case domain.SearchProviderDuckDuckGo:
		return NewDuckDuckGo(client, limiter), nil
	default:
		return nil, fmt.Errorf("%w: unknown provider %q", domain.ErrSearchUnavailable, settings.Provider)
	}
}

// clampCount keeps count within 1..maxPerRequest.
func clampCount(count int) int {
	if count <= 0 {
		return 1
	}
	return min(count, maxPerRequest)
}

// hit builds a SearchHit with trimmed fields.
func hit(title, url, snippet string) domain.SearchHit {
	return domain.SearchHit{
		Title:   strings.TrimSpace(title),
		URL:     strings.TrimSpace(url),
		Snippet: strings.TrimSpace(snippet),
	}
}

// statusError reports a non-success response from a backend.
func statusError(name string, status int) error {
	if status == http.StatusUnauthorized || status == http.StatusForbidden {
		return fmt.Errorf("%w: %s rejected the API key (http %d)", domain.ErrSearchUnavailable, name, status)
	}
	return fmt.Errorf("%s http %d", name, status)
}
