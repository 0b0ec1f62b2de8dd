package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotImplemented indicates functionality is not yet available.
	ErrNotImplemented = errors.New("not implemented")

	// ErrLLMUnavailable indicates the LLM service is not configured.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrEmbeddingUnavailable indicates the embedding service is not configured.
	// The evidence index falls back to deterministic pseudo-random vectors.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrSearchUnavailable indicates the web search provider is not configured.
	ErrSearchUnavailable = errors.New("search provider unavailable")

	// ErrExtractorUnavailable indicates no document text extractor is available.
	ErrExtractorUnavailable = errors.New("text extractor unavailable")

	// ErrFetcherUnavailable indicates no document fetcher is available.
	ErrFetcherUnavailable = errors.New("document fetcher unavailable")

	// ErrRendererUnavailable indicates no report renderer is available.
	ErrRendererUnavailable = errors.New("report renderer unavailable")

	// ErrFeedUnavailable indicates the company updates feed is not configured.
	ErrFeedUnavailable = errors.New("company feed unavailable")

	// Provider Errors.

	// ErrModelNotFound indicates the provider does not know the requested model.
	// Model selection reacts to it by re-resolving once.
	ErrModelNotFound = errors.New("model not found")

	// ErrQuotaExceeded indicates the provider rejected the call for quota reasons.
	ErrQuotaExceeded = errors.New("quota exceeded")

	// ErrRateLimited indicates the API rate limit was exceeded.
	ErrRateLimited = errors.New("rate limited")

	// ErrInputBlocked indicates user input was rejected by the guardrails.
	ErrInputBlocked = errors.New("input blocked by policy")

	// ErrOffTopic indicates a question unrelated to account planning.
	ErrOffTopic = errors.New("question unrelated to account planning")
)
