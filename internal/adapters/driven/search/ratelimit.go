package search

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/dossier/internal/core/domain"
	"github.com/custodia-labs/dossier/internal/logger"
)

// Backoff bounds for HTTP 429 responses.
const (
	initialBackoff = time.Second
	maxBackoff     = 30 * time.Second
	maxRetries     = 4
)

// RateLimitConfig holds rate limiting configuration for a backend.
type RateLimitConfig struct {
	// RequestsPerSecond is the sustained rate limit.
	RequestsPerSecond float64
	// BurstSize is the maximum burst size.
	BurstSize int
}

// DefaultRateLimits are conservative per-backend defaults.
var DefaultRateLimits = map[domain.SearchProviderType]RateLimitConfig{
	domain.SearchProviderSerpAPI:    {RequestsPerSecond: 5, BurstSize: 5},
	domain.SearchProviderGoogleCSE:  {RequestsPerSecond: 5, BurstSize: 10},
	domain.SearchProviderBrave:      {RequestsPerSecond: 1, BurstSize: 1},
	domain.SearchProviderTavily:     {RequestsPerSecond: 2, BurstSize: 4},
	domain.SearchProviderDuckDuckGo: {RequestsPerSecond: 1, BurstSize: 1},
}

// RateLimiter combines a token bucket with a shared retry-after window.
type RateLimiter struct {
	mu      sync.Mutex
	limiter *rate.Limiter
	retryAt time.Time
	sleep   func(ctx context.Context, d time.Duration) error
}

// NewRateLimiter creates a limiter for the backend. A positive rps
// overrides the backend default.
func NewRateLimiter(provider domain.SearchProviderType, rps float64) *RateLimiter {
	cfg, ok := DefaultRateLimits[provider]
	if !ok {
		cfg = RateLimitConfig{RequestsPerSecond: 2, BurstSize: 2}
	}
	if rps > 0 {
		cfg.RequestsPerSecond = rps
	}
	return &RateLimiter{
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.BurstSize),
		sleep:   sleepCtx,
	}
}

// Wait blocks until a request may be made.
func (r *RateLimiter) Wait(ctx context.Context) error {
	r.mu.Lock()
	retryAt := r.retryAt
	r.mu.Unlock()

	if wait := time.Until(retryAt); wait > 0 {
		if err := r.sleep(ctx, wait); err != nil {
			return err
		}
	}
	return r.limiter.Wait(ctx)
}

// RecordRateLimit pushes the next allowed request time out by d.
func (r *RateLimiter) RecordRateLimit(d time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if at := time.Now().Add(d); at.After(r.retryAt) {
		r.retryAt = at
	}
}

// Do sends the request built by newReq, retrying on HTTP 429 with a delay
// that starts at one second and doubles up to thirty. A Retry-After header
// takes precedence when present. The caller closes the returned body.
func (r *RateLimiter) Do(
	ctx context.Context,
	client *http.Client,
	newReq func(ctx context.Context) (*http.Request, error),
) (*http.Response, error) {
	delay := initialBackoff
	for attempt := 0; ; attempt++ {
		if err := r.Wait(ctx); err != nil {
			return nil, err
		}

		req, err := newReq(ctx)
		if err != nil {
			return nil, fmt.Errorf("create request: %w", err)
		}
		resp, err := client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("send request: %w", err)
		}
		if resp.StatusCode != http.StatusTooManyRequests {
			return resp, nil
		}
		resp.Body.Close()

		if attempt >= maxRetries {
			return nil, fmt.Errorf("%w: %s", domain.ErrRateLimited, req.URL.Host)
		}

		wait := delay
		if secs, err := strconv.Atoi(resp.Header.Get("Retry-After")); err == nil && secs > 0 {
			wait = time.Duration(secs) * time.Second
		}
		logger.Debug("search: %s returned 429, backing off %s", req.URL.Host, wait)
		r.RecordRateLimit(wait)
		if delay < maxBackoff {
			delay = min(delay*2, maxBackoff)
		}
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
