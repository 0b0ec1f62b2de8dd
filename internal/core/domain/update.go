package domain

import "time"

// CompanyUpdate is a social post or share statistic about a company.
type CompanyUpdate struct {
	ID          string    `json:"id"`
	Text        string    `json:"text"`
	URL         string    `json:"url,omitempty"`
	Impressions int64     `json:"impressions,omitempty"`
	Engagement  float64   `json:"engagement,omitempty"`
	PublishedAt time.Time `json:"published_at,omitempty"`
}
