// Package scrape discovers PDF links on web pages and downloads them.
package scrape

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/custodia-labs/dossier/internal/core/ports/driven"
	"github.com/custodia-labs/dossier/internal/logger"
)

// Ensure Fetcher implements the interface.
var _ driven.DocumentFetcher = (*Fetcher)(nil)

// Default configuration values.
const (
	DefaultPageTimeout     = 20 * time.Second
	DefaultDownloadTimeout = 60 * time.Second
	DefaultMaxDownload     = 100 << 20

	UserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 " +
		"(KHTML, like Gecko) Chrome/120.0 Safari/537.36"

	// minStaticLinks is the static link count below which a page is rendered.
	minStaticLinks = 2
	// DefaultRenderedLinks caps links taken from a rendered page.
	DefaultRenderedLinks = 3
)

// pdfPattern matches links ending in .pdf, optionally followed by a query or fragment.
var pdfPattern = regexp.MustCompile(`(?i)\.pdf([?#].*)?$`)

// Config tunes the fetcher.
type Config struct {
	PageTimeout     time.Duration
	DownloadTimeout time.Duration
	// MaxDownloadBytes caps a single file.
	MaxDownloadBytes int64

	// Renderer, when set, loads pages whose static HTML has fewer than two
	// PDF links. RenderedLinks caps what it contributes.
	Renderer      PageRenderer
	RenderedLinks int
}

// Fetcher scrapes static HTML and falls back to a rendered page when one is configured.
type Fetcher struct {
	pageClient     *http.Client
	downloadClient *http.Client
	maxBytes       int64
	renderer       PageRenderer
	renderedLinks  int
}

// NewFetcher creates a fetcher, filling defaults for zero config values.
func NewFetcher(cfg Config) *Fetcher {
	if cfg.PageTimeout == 0 {
		cfg.PageTimeout = DefaultPageTimeout
	}
	if cfg.DownloadTimeout == 0 {
		cfg.DownloadTimeout = DefaultDownloadTimeout
	}
	if cfg.MaxDownloadBytes == 0 {
		cfg.MaxDownloadBytes = DefaultMaxDownload
	}
	if cfg.RenderedLinks == 0 {
		cfg.RenderedLinks = DefaultRenderedLinks
	}
	return &Fetcher{
		pageClient:     &http.Client{Timeout: cfg.PageTimeout},
		downloadClient: &http.Client{Timeout: cfg.DownloadTimeout},
		maxBytes:       cfg.MaxDownloadBytes,
		renderer:       cfg.Renderer,
		renderedLinks:  cfg.RenderedLinks,
	}
}

// FindPDFLinks returns up to limit distinct absolute PDF links from pageURL
// in document order. Relative hrefs are resolved against the page. When the
// static page fails or yields fewer than two links and a renderer is set,
// links from the rendered page are appended.
func (f *Fetcher) FindPDFLinks(ctx context.Context, pageURL string, limit int) ([]string, error) {
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("parse page url: %w", err)
	}

	links, err := f.staticLinks(ctx, base, limit)
	if f.renderer == nil || (err == nil && len(links) >= minStaticLinks) {
		return links, err
	}

	rendered, rerr := f.renderedLinksOf(ctx, base)
	if rerr != nil {
		logger.Debug("rendering %s: %v", pageURL, rerr)
		return links, err
	}
	merged := append([]string{}, links...)
	seen := make(map[string]bool, len(links)+len(rendered))
	for _, l := range links {
		seen[l] = true
	}
	for _, l := range rendered {
		if limit > 0 && len(merged) >= limit {
			break
		}
		if !seen[l] {
			seen[l] = true
			merged = append(merged, l)
		}
	}
	logger.Debug("found %d PDF links on %s after rendering", len(merged), pageURL)
	return merged, nil
}

func (f *Fetcher) staticLinks(ctx context.Context, base *url.URL, limit int) ([]string, error) {
	resp, err := f.get(ctx, f.pageClient, base.String())
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	links, err := extractPDFLinks(base, resp.Body, limit)
	if err != nil {
		return nil, err
	}
	logger.Debug("found %d PDF links on %s", len(links), base)
	return links, nil
}

func (f *Fetcher) renderedLinksOf(ctx context.Context, base *url.URL) ([]string, error) {
	doc, err := f.renderer.RenderHTML(ctx, base.String())
	if err != nil {
		return nil, err
	}
	return extractPDFLinks(base, strings.NewReader(doc), f.renderedLinks)
}

// extractPDFLinks parses an HTML document and collects up to limit distinct
// PDF links from its anchors.
func extractPDFLinks(base *url.URL, r io.Reader, limit int) ([]string, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", base, err)
	}

	links := []string{}
	seen := make(map[string]bool)
	var walk func(*html.Node) bool
	walk = func(n *html.Node) bool {
		if n.Type == html.ElementNode && n.Data == "a" {
			if link := pdfHref(base, n); link != "" && !seen[link] {
				seen[link] = true
				links = append(links, link)
				if limit > 0 && len(links) >= limit {
					return false
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if !walk(c) {
				return false
			}
		}
		return true
	}
	walk(doc)
	return links, nil
}

// Download streams url into dest, replacing dest only when the transfer completes.
func (f *Fetcher) Download(ctx context.Context, rawURL, dest string) error {
	resp, err := f.get(ctx, f.downloadClient, rawURL)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := os.MkdirAll(filepath.Dir(dest), 0o700); err != nil {
		return fmt.Errorf("create download directory: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(dest), ".download-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	n, err := io.Copy(tmp, io.LimitReader(resp.Body, f.maxBytes+1))
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return fmt.Errorf("download %s: %w", rawURL, err)
	}
	if n > f.maxBytes {
		return fmt.Errorf("download %s: larger than %d bytes", rawURL, f.maxBytes)
	}

	if err := os.Rename(tmp.Name(), dest); err != nil {
		return fmt.Errorf("save %s: %w", dest, err)
	}
	logger.Debug("downloaded %s -> %s (%d bytes)", rawURL, dest, n)
	return nil
}

func (f *Fetcher) get(ctx context.Context, client *http.Client, rawURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", UserAgent)

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", rawURL, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, fmt.Errorf("fetch %s: http %d", rawURL, resp.StatusCode)
	}
	return resp, nil
}

// pdfHref returns the absolute PDF link of an anchor, or "".
func pdfHref(base *url.URL, n *html.Node) string {
	for _, a := range n.Attr {
		if a.Key != "href" {
			continue
		}
		href := strings.TrimSpace(a.Val)
		if href == "" || !pdfPattern.MatchString(href) {
			return ""
		}
		ref, err := url.Parse(href)
		if err != nil {
			return ""
		}
		abs := base.ResolveReference(ref)
		if abs.Scheme != "http" && abs.Scheme != "https" {
			return ""
		}
		return abs.String()
	}
	return ""
}
