package services

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/custodia-labs/dossier/internal/core/domain"
	"github.com/custodia-labs/dossier/internal/logger"
)

const (
	linksPerPage = 5
	day          = 24 * time.Hour
)

// DeepCollect discovers PDF links on the cached overview result pages,
// downloads them into the company cache, indexes their text and records the
// collection. With ttlDays > 0 a fresh cache is reused and stale files are pruned.
func (a *ResearchAgent) DeepCollect(ctx context.Context, ttlDays int) (*domain.DeepCollection, error) {
	logger.Section("Deep Collect")
	company := a.profile.Name
	rs := a.settings.Research

	if ttlDays > 0 {
		if !a.cacheStale(ctx, ttlDays) {
			if cached := a.cachedDownloads(ctx); len(cached) > 0 {
				logger.Info("Reusing %d cached documents", len(cached))
				rec := &domain.DeepCollection{PDFLinks: documentURLs(cached), Downloaded: cached}
				if err := a.deps.Cache.Put(ctx, company, domain.CacheKeyDeepCollect, rec); err != nil {
					return nil, fmt.Errorf("write deep collect cache: %w", err)
				}
				a.indexMu.Lock()
				a.indexDocuments(ctx, cached)
				a.indexMu.Unlock()
				return rec, nil
			}
		}
		cutoff := a.now().Add(-time.Duration(ttlDays) * day)
		n, err := a.deps.Cache.Prune(ctx, company, cutoff)
		if err != nil {
			logger.Warn("Pruning cache: %v", err)
		} else {
			logger.Debug("Pruned %d stale cache entries", n)
		}
	}

	if a.deps.Fetcher == nil {
		return nil, fmt.Errorf("deep collect: %w", domain.ErrFetcherUnavailable)
	}

	start := a.now()
	timebox := time.Duration(rs.TimeboxMinutes) * time.Minute

	var links []string
	for _, r := range a.cachedOverview(ctx).Results {
		if a.now().Sub(start) > timebox {
			logger.Warn("Deep collect timebox of %s reached", timebox)
			break
		}
		if r.URL == "" {
			continue
		}
		found, err := a.deps.Fetcher.FindPDFLinks(ctx, r.URL, linksPerPage)
		if err != nil {
			logger.Warn("Link discovery on %s failed: %v", r.URL, err)
			continue
		}
		links = append(links, found...)
	}
	links = firstUnique(links, 0)
	logger.Info("Discovered %d PDF links", len(links))

	downloaded := []domain.DownloadedDocument{}
	for i, link := range links {
		if rs.MaxPDFs > 0 && i >= rs.MaxPDFs {
			break
		}
		dest, err := a.deps.Cache.PathFor(company, fmt.Sprintf("doc_%d.pdf", i+1))
		if err != nil {
			return nil, fmt.Errorf("resolve download path: %w", err)
		}
		if err := a.deps.Fetcher.Download(ctx, link, dest); err != nil {
			logger.Warn("Download %s failed: %v", link, err)
			continue
		}
		downloaded = append(downloaded, domain.DownloadedDocument{Path: dest, URL: link})
	}

	a.indexMu.Lock()
	a.indexDocuments(ctx, downloaded)
	a.indexMu.Unlock()

	rec := &domain.DeepCollection{PDFLinks: links, Downloaded: downloaded}
	if rec.PDFLinks == nil {
		rec.PDFLinks = []string{}
	}
	if err := a.deps.Cache.Put(ctx, company, domain.CacheKeyDeepCollect, rec); err != nil {
		return nil, fmt.Errorf("write deep collect cache: %w", err)
	}
	logger.Info("Deep collect: %d of %d documents downloaded", len(downloaded), len(links))
	return rec, nil
}

// EnsureIndexLoaded rebuilds an empty evidence index from the documents of
// the last deep collection. Concurrent callers wait for a single load.
func (a *ResearchAgent) EnsureIndexLoaded(ctx context.Context) {
	if a.index.Len() > 0 {
		return
	}
	a.indexMu.Lock()
	defer a.indexMu.Unlock()
	if a.index.Len() > 0 {
		return
	}
	var deep domain.DeepCollection
	found, err := a.deps.Cache.Get(ctx, a.profile.Name, domain.CacheKeyDeepCollect, &deep)
	if err != nil {
		logger.Warn("Reading deep collect cache: %v", err)
		return
	}
	if !found || len(deep.Downloaded) == 0 {
		return
	}
	a.indexDocuments(ctx, deep.Downloaded)
}

// indexDocuments extracts each document and adds its text to the index.
// Documents without extractable text are skipped.
func (a *ResearchAgent) indexDocuments(ctx context.Context, docs []domain.DownloadedDocument) {
	var texts []string
	var metas []domain.EvidenceMetadata
	for _, d := range docs {
		text := a.extractText(ctx, d.Path)
		if text == "" {
			continue
		}
		meta := domain.EvidenceMetadata{Source: d.URL, Path: d.Path}
		for _, chunk := range a.split(text) {
			texts = append(texts, chunk)
			metas = append(metas, meta)
		}
	}
	if len(texts) > 0 {
		a.index.Add(ctx, texts, metas)
	}
}

func (a *ResearchAgent) split(text string) []string {
	if a.deps.Splitter == nil {
		return []string{text}
	}
	return a.deps.Splitter.Split(text)
}

func (a *ResearchAgent) extractText(ctx context.Context, path string) string {
	if a.deps.Extractor == nil {
		return ""
	}
	text, err := a.deps.Extractor.ExtractText(ctx, path, a.settings.Research.MaxPages)
	if err != nil {
		logger.Warn("Extracting %s: %v", path, err)
		return ""
	}
	return text
}

// cacheStale reports whether nothing is cached or the newest entry is older than ttlDays.
func (a *ResearchAgent) cacheStale(ctx context.Context, ttlDays int) bool {
	latest, err := a.deps.Cache.LastModified(ctx, a.profile.Name)
	if err != nil {
		logger.Warn("Reading cache age: %v", err)
		return true
	}
	if latest.IsZero() {
		return true
	}
	return a.now().Sub(latest) > time.Duration(ttlDays)*day
}

// cachedDownloads returns the recorded downloads that are still on disk.
func (a *ResearchAgent) cachedDownloads(ctx context.Context) []domain.DownloadedDocument {
	var deep domain.DeepCollection
	if _, err := a.deps.Cache.Get(ctx, a.profile.Name, domain.CacheKeyDeepCollect, &deep); err != nil {
		logger.Warn("Reading deep collect cache: %v", err)
		return nil
	}
	present := make([]domain.DownloadedDocument, 0, len(deep.Downloaded))
	for _, d := range deep.Downloaded {
		if d.URL == "" || d.Path == "" {
			continue
		}
		if _, err := os.Stat(d.Path); err == nil {
			present = append(present, d)
		}
	}
	return present
}

func documentURLs(docs []domain.DownloadedDocument) []string {
	urls := make([]string, 0, len(docs))
	for _, d := range docs {
		urls = append(urls, d.URL)
	}
	return urls
}
