package services

import (
	"context"
	"errors"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/dossier/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/dossier/internal/core/domain"
	"github.com/custodia-labs/dossier/internal/core/ports/driven"
)

// scriptedLLM answers each prompt through respond and records the user prompts.
type scriptedLLM struct {
	mu      sync.Mutex
	respond func(user string) (string, error)
	prompts []string
	opts    []driven.GenerateOptions
}

func (m *scriptedLLM) Generate(_ context.Context, _, user string, opts driven.GenerateOptions) (string, error) {
	m.mu.Lock()
	m.prompts = append(m.prompts, user)
	m.opts = append(m.opts, opts)
	m.mu.Unlock()
	if m.respond == nil {
		return "", nil
	}
	return m.respond(user)
}

func (m *scriptedLLM) ListModels(context.Context) ([]string, error) { return nil, nil }
func (m *scriptedLLM) ModelName() string                           { return "scripted" }
func (m *scriptedLLM) Ping(context.Context) error                  { return nil }
func (m *scriptedLLM) Close() error                                { return nil }

// count returns how many prompts contained marker.
func (m *scriptedLLM) count(marker string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, p := range m.prompts {
		if strings.Contains(p, marker) {
			n++
		}
	}
	return n
}

// failingLLM always errors.
func failingLLM() *scriptedLLM {
	return &scriptedLLM{respond: func(string) (string, error) {
		return "", errors.New("model offline")
	}}
}

// Markers that identify the built-in prompts.
const (
	plannerMarker    = "Derive 2–4 focused web search queries"
	synthesizeMarker = "Use ALL available context"
	structuredMarker = "Return ONLY a JSON object"
	reportMarker     = "Create a structured account plan"
	overviewMarker   = "Summarize these search snippets"
	claimMarker      = "Answer concisely:"
	cardMarker       = "Evidence Card"
	hybridMarker     = "PDF sources:"
	quickMarker      = "using ONLY these snippets"
)

// stubSearch returns canned hits per query and records the queries.
type stubSearch struct {
	mu      sync.Mutex
	hits    map[string][]domain.SearchHit
	fail    map[string]bool
	all     []domain.SearchHit
	queries []string
}

func (s *stubSearch) Search(_ context.Context, query string, _ int) ([]domain.SearchHit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queries = append(s.queries, query)
	if s.fail[query] {
		return nil, domain.ErrSearchUnavailable
	}
	if hits, ok := s.hits[query]; ok {
		return hits, nil
	}
	return s.all, nil
}

func (s *stubSearch) Name() string { return "stub" }

// stubEmbedder maps texts to vectors with vector, or fails.
type stubEmbedder struct {
	vector func(text string) []float32
	err    error
	short  bool
}

func (e *stubEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	rows, err := e.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return rows[0], nil
}

func (e *stubEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	if e.err != nil {
		return nil, e.err
	}
	rows := make([][]float32, 0, len(texts))
	for _, t := range texts {
		rows = append(rows, e.vector(t))
	}
	if e.short && len(rows) > 0 {
		rows = rows[:len(rows)-1]
	}
	return rows, nil
}

func (e *stubEmbedder) Dimensions() int             { return 3 }
func (e *stubEmbedder) ModelName() string           { return "stub" }
func (e *stubEmbedder) Ping(context.Context) error { return nil }
func (e *stubEmbedder) Close() error               { return nil }

// stubFetcher returns links per page and writes a placeholder file on download.
type stubFetcher struct {
	links     map[string][]string
	failPage  map[string]bool
	failFetch map[string]bool
	downloads []string
}

func (f *stubFetcher) FindPDFLinks(_ context.Context, pageURL string, limit int) ([]string, error) {
	if f.failPage[pageURL] {
		return nil, errors.New("page unavailable")
	}
	links := f.links[pageURL]
	if len(links) > limit {
		links = links[:limit]
	}
	return links, nil
}

func (f *stubFetcher) Download(_ context.Context, url, dest string) error {
	if f.failFetch[url] {
		return errors.New("download failed")
	}
	f.downloads = append(f.downloads, url)
	return os.WriteFile(dest, []byte("%PDF-1.4 "+url), 0o600)
}

// stubExtractor returns text per path, or the file contents.
type stubExtractor struct {
	text map[string]string
}

func (e *stubExtractor) ExtractText(_ context.Context, path string, _ int) (string, error) {
	if t, ok := e.text[path]; ok {
		return t, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// stubRenderer records what it rendered.
type stubRenderer struct {
	title    string
	markdown string
	dest     string
	err      error

	chartPoints []domain.RevenuePoint
	chartDest   string
	chartErr    error
}

func (r *stubRenderer) Render(_ context.Context, title, markdown, dest string) error {
	r.title, r.markdown, r.dest = title, markdown, dest
	return r.err
}

func (r *stubRenderer) RenderChart(_ context.Context, _ string, points []domain.RevenuePoint, dest string) error {
	r.chartPoints, r.chartDest = points, dest
	if r.chartErr != nil {
		return r.chartErr
	}
	return os.WriteFile(dest, []byte("PNG"), 0o600)
}

func (r *stubRenderer) Extension() string { return ".html" }

// stubFeed returns canned updates.
type stubFeed struct {
	updates []domain.CompanyUpdate
	err     error
	company string
}

func (f *stubFeed) Updates(_ context.Context, company string) ([]domain.CompanyUpdate, error) {
	f.company = company
	return f.updates, f.err
}

func testSettings() domain.AppSettings {
	return domain.AppSettings{
		LLM: domain.LLMSettings{Temperature: 0.1},
		Research: domain.ResearchSettings{
			Years:          3,
			TimeboxMinutes: 5,
			CacheTTLDays:   30,
			EURUSDRate:     1.08,
			MaxPDFs:        10,
			MaxPages:       40,
		},
	}
}

func newMemoryCache(t *testing.T) *memory.CacheStore {
	t.Helper()
	cache, err := memory.NewCacheStore(t.TempDir())
	require.NoError(t, err)
	return cache
}

// newTestAgent builds an agent for "Acme" with an in-memory cache.
func newTestAgent(t *testing.T, deps ResearchDeps) *ResearchAgent {
	t.Helper()
	if deps.Cache == nil {
		deps.Cache = newMemoryCache(t)
	}
	agent, err := NewResearchAgent(domain.CompanyProfile{Name: "Acme"}, deps, testSettings())
	require.NoError(t, err)
	return agent
}
