// Package main is the composition root for the dossier binary.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/custodia-labs/dossier/internal/adapters/driven/ai"
	"github.com/custodia-labs/dossier/internal/adapters/driven/config/file"
	"github.com/custodia-labs/dossier/internal/adapters/driven/extract"
	"github.com/custodia-labs/dossier/internal/adapters/driven/linkedin"
	"github.com/custodia-labs/dossier/internal/adapters/driven/noop"
	"github.com/custodia-labs/dossier/internal/adapters/driven/render/html"
	"github.com/custodia-labs/dossier/internal/adapters/driven/scrape"
	"github.com/custodia-labs/dossier/internal/adapters/driven/search"
	filestore "github.com/custodia-labs/dossier/internal/adapters/driven/storage/file"
	"github.com/custodia-labs/dossier/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/dossier/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/dossier/internal/adapters/driving/cli"
	"github.com/custodia-labs/dossier/internal/core/domain"
	"github.com/custodia-labs/dossier/internal/core/ports/driven"
	"github.com/custodia-labs/dossier/internal/core/services"
	"github.com/custodia-labs/dossier/internal/logger"
	"github.com/custodia-labs/dossier/internal/postprocessors/chunker"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	configStore, err := file.NewConfigStore("")
	if err != nil {
		return fmt.Errorf("opening config: %w", err)
	}
	settingsService := services.NewSettingsService(configStore, ai.NewConfigValidator())
	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("loading settings: %w", err)
	}

	aiServices := ai.Init(settings)
	defer aiServices.Close()

	cache, closeCache, err := openCache(settings.Cache)
	if err != nil {
		return err
	}
	defer closeCache()

	prompts, err := file.NewPromptStore("")
	if err != nil {
		return fmt.Errorf("opening prompts: %w", err)
	}
	go func() {
		if werr := prompts.Watch(ctx, nil); werr != nil {
			logger.Debug("prompt hot reload disabled: %v", werr)
		}
	}()

	deps := services.ResearchDeps{
		LLM:       llmOrNoop(aiServices.LLMService),
		Embedder:  aiServices.EmbeddingService,
		Search:    searchOrNoop(settings.Search),
		Cache:     cache,
		Fetcher:   scrape.NewFetcher(scrape.Config{Renderer: pageRenderer(settings.Research)}),
		Extractor: newExtractor(settings.Extractor),
		Splitter:  chunker.New(),
		Renderer:  html.New(),
		Feed:      feedOrNoop(settings.LinkedIn),
		Prompts:   prompts,
	}

	pool := services.NewSessionPool(services.NewAgentFactory(deps, *settings))

	cli.SetServices(cli.Services{
		Sessions:       pool,
		Settings:       settingsService,
		Guard:          services.NewGuardrails(true),
		FeedAuthorizer: linkedin.NewAuthorizer(settings.LinkedIn),
		CacheTTLDays:   settings.Research.CacheTTLDays,
	})

	return cli.Execute(ctx)
}

// openCache returns the configured cache backend and its release function.
func openCache(cfg domain.CacheSettings) (driven.CacheStore, func(), error) {
	switch cfg.Backend {
	case domain.CacheBackendSQLite:
		store, err := sqlite.NewStore(cfg.Dir)
		if err != nil {
			return nil, nil, fmt.Errorf("opening sqlite cache: %w", err)
		}
		return store, func() { _ = store.Close() }, nil
	case domain.CacheBackendMemory:
		store, err := memory.NewCacheStore("")
		if err != nil {
			return nil, nil, fmt.Errorf("creating memory cache: %w", err)
		}
		return store, func() {}, nil
	default:
		store, err := filestore.NewCacheStore(cfg.Dir)
		if err != nil {
			return nil, nil, fmt.Errorf("opening cache directory: %w", err)
		}
		return store, func() {}, nil
	}
}

func llmOrNoop(svc driven.LLMService) driven.LLMService {
	if svc == nil {
		return noop.LLM{}
	}
	return svc
}

func searchOrNoop(cfg domain.SearchSettings) driven.SearchProvider {
	provider, err := search.New(cfg)
	if err != nil {
		logger.Warn("web search disabled: %v", err)
		return noop.Search{}
	}
	return provider
}

func newExtractor(cfg domain.ExtractorSettings) driven.TextExtractor {
	if cfg.Backend == domain.ExtractorTika && cfg.TikaURL != "" {
		return extract.NewTika(cfg.TikaURL, nil)
	}
	return extract.NewPDFToText()
}

// pageRenderer returns the headless browser used for script-built pages, or nil.
func pageRenderer(cfg domain.ResearchSettings) scrape.PageRenderer {
	if !cfg.RenderPages {
		return nil
	}
	return scrape.NewChromeRenderer(scrape.DefaultRenderTimeout, os.Getenv("CHROME_PATH"))
}

func feedOrNoop(cfg domain.LinkedInSettings) driven.CompanyFeed {
	if !cfg.IsConfigured() {
		return noop.Feed{}
	}
	return linkedin.NewFeed(cfg)
}
