package search

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/net/html"

	"github.com/custodia-labs/dossier/internal/core/domain"
	"github.com/custodia-labs/dossier/internal/core/ports/driven"
)

// Ensure DuckDuckGo implements the interface.
var _ driven.SearchProvider = (*DuckDuckGo)(nil)

// DuckDuckGoEndpoint is the lite HTML interface.
const DuckDuckGoEndpoint = "https://lite.duckduckgo.com/lite/"

// UserAgent is sent by keyless scrapers.
const UserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 " +
	"(KHTML, like Gecko) Chrome/120.0 Safari/537.36"

// DuckDuckGo scrapes DuckDuckGo's lite results page. It needs no key.
type DuckDuckGo struct {
	Endpoint string
	client   *http.Client
	limiter  *RateLimiter
}

// NewDuckDuckGo constructs a DuckDuckGo backend.
func NewDuckDuckGo(client *http.Client, limiter *RateLimiter) *DuckDuckGo {
	return &DuckDuckGo{Endpoint: DuckDuckGoEndpoint, client: client, limiter: limiter}
}

// Name identifies the backend.
func (d *DuckDuckGo) Name() string { return string(domain.SearchProviderDuckDuckGo) }

// Search posts the query form and parses the result table.
func (d *DuckDuckGo) Search(ctx context.Context, query string, count int) ([]domain.SearchHit, error) {
	if strings.TrimSpace(query) == "" {
		return []domain.SearchHit{}, nil
	}
	count = clampCount(count)

	form := url.Values{}
	form.Set("q", query)

	resp, err := d.limiter.Do(ctx, d.client, func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.Endpoint, strings.NewReader(form.Encode()))
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", UserAgent)
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		return req, nil
	})
	if err != nil {
		return nil, fmt.Errorf("duckduckgo: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, statusError("duckduckgo", resp.StatusCode)
	}

	doc, err := html.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("duckduckgo: parse page: %w", err)
	}

	hits := parseLiteResults(doc)
	if len(hits) > count {
		hits = hits[:count]
	}
	return hits, nil
}

// parseLiteResults walks the lite page. Each result is an anchor with class
// result-link followed by a cell with class result-snippet.
func parseLiteResults(doc *html.Node) []domain.SearchHit {
	hits := []domain.SearchHit{}
	snippetPending := false

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch {
			case n.Data == "a" && hasClass(n, "result-link"):
				target := resolveRedirect(attr(n, "href"))
				title := textContent(n)
				if target != "" && title != "" {
					hits = append(hits, hit(title, target, ""))
					snippetPending = true
				}
				return
			case n.Data == "td" && hasClass(n, "result-snippet"):
				if snippetPending {
					hits[len(hits)-1].Snippet = textContent(n)
					snippetPending = false
				}
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return hits
}

// resolveRedirect unwraps "//duckduckgo.com/l/?uddg=<url>" links.
func resolveRedirect(href string) string {
	href = strings.TrimSpace(href)
	if strings.HasPrefix(href, "//") {
		href = "https:" + href
	}
	u, err := url.Parse(href)
	if err != nil {
		return ""
	}
	if strings.HasSuffix(u.Host, "duckduckgo.com") {
		if target := u.Query().Get("uddg"); target != "" {
			return target
		}
		return ""
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return ""
	}
	return href
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func hasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(attr(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}

func textContent(n *html.Node) string {
	var b strings.Builder
	var collect func(*html.Node)
	collect = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			collect(c)
		}
	}
	collect(n)
	return strings.Join(strings.Fields(b.String()), " ")
}
