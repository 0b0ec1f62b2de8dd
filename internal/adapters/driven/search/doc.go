// Package search provides web search backends for the research agents.
//
// Every backend implements driven.SearchProvider and returns at most the
// requested number of hits. Keyed backends cap a single request at ten hits,
// the lowest common page size. Outgoing requests go through a RateLimiter that
// paces calls with a token bucket and backs off after HTTP 429.
//
// Backends:
//   - SerpAPI: Google results through serpapi.com
//   - GoogleCSE: Google Programmable Search through google.golang.org/api
//   - Brave: Brave Search API
//   - Tavily: Tavily search API
//   - DuckDuckGo: the keyless lite HTML page, parsed with golang.org/x/net/html
package search
