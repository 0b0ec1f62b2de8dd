package domain

// SearchHit is a single result returned by a web search provider.
// URL is the identity key used for deduplication.
type SearchHit struct {
	// Title is the page title. Serialised as "name" to stay compatible
	// with cached overview records.
	Title string `json:"name"`

	// URL is the result location.
	URL string `json:"url"`

	// Snippet is the provider's text excerpt.
	Snippet string `json:"snippet"`
}

// FormatBullet renders the hit as "- name: snippet (url)".
func (h SearchHit) FormatBullet() string {
	return "- " + h.Title + ": " + h.Snippet + " (" + h.URL + ")"
}

// SearchURLs returns the non-empty URLs of hits in order.
func SearchURLs(hits []SearchHit) []string {
	urls := make([]string, 0, len(hits))
	for _, h := range hits {
		if h.URL != "" {
			urls = append(urls, h.URL)
		}
	}
	return urls
}
