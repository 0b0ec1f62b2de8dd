// Package noop provides stand-in collaborators for capabilities that are
// not configured. Each reports its capability as unavailable so the core
// takes its documented degraded path.
package noop

import (
	"context"

	"github.com/custodia-labs/dossier/internal/core/domain"
	"github.com/custodia-labs/dossier/internal/core/ports/driven"
)

// Verify interface compliance.
var (
	_ driven.LLMService       = LLM{}
	_ driven.EmbeddingService = Embedder{}
	_ driven.SearchProvider   = Search{}
	_ driven.DocumentFetcher  = Fetcher{}
	_ driven.TextExtractor    = Extractor{}
	_ driven.ReportRenderer   = Renderer{}
	_ driven.CompanyFeed      = Feed{}
)

// LLM is an unconfigured language model.
type LLM struct{}

func (LLM) Generate(context.Context, string, string, driven.GenerateOptions) (string, error) {
	return "", domain.ErrLLMUnavailable
}

func (LLM) ListModels(context.Context) ([]string, error) { return nil, domain.ErrLLMUnavailable }
func (LLM) ModelName() string { return "" }
func (LLM) Ping(context.Context) error { return domain.ErrLLMUnavailable }
func (LLM) Close() error { return nil }

// Embedder is an unconfigured embedding service. The evidence index falls
// back to its seeded vectors when embedding fails.
type Embedder struct{}

func (Embedder) Embed(context.Context, string) ([]float32, error) {
	return nil, domain.ErrEmbeddingUnavailable
}

func (Embedder) EmbedBatch(context.Context, []string) ([][]float32, error) {
	return nil, domain.ErrEmbeddingUnavailable
}

func (Embedder) Dimensions() int { return 0 }
func (Embedder) ModelName() string { return "" }
func (Embedder) Ping(context.Context) error { return domain.ErrEmbeddingUnavailable }
func (Embedder) Close() error { return nil }

// Search is an unconfigured web search provider.
type Search struct{}

func (Search) Search(context.Context, string, int) ([]domain.SearchHit, error) {
	return nil, domain.ErrSearchUnavailable
}

func (Search) Name() string { return "none" }

// Fetcher cannot discover or download documents.
type Fetcher struct{}

func (Fetcher) FindPDFLinks(context.Context, string, int) ([]string, error) {
	return nil, domain.ErrFetcherUnavailable
}

func (Fetcher) Download(context.Context, string, string) error {
	return domain.ErrFetcherUnavailable
}

// Extractor cannot read documents.
type Extractor struct{}

func (Extractor) ExtractText(context.Context, string, int) (string, error) {
	return "", domain.ErrExtractorUnavailable
}

// Renderer cannot produce report documents.
type Renderer struct{}

func (Renderer) Render(context.Context, string, string, string) error {
	return domain.ErrRendererUnavailable
}

func (Renderer) RenderChart(context.Context, string, []domain.RevenuePoint, string) error {
	return domain.ErrRendererUnavailable
}

func (Renderer) Extension() string { return ".txt" }

// Feed has no company updates source.
type Feed struct{}

func (Feed) Updates(context.Context, string) ([]domain.CompanyUpdate, error) {
	return nil, domain.ErrFeedUnavailable
}
