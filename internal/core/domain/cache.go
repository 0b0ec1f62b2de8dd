package domain

import (
	"strings"
	"unicode"
)

// Logical cache keys. Each key maps to one JSON record per company.
const (
	// CacheKeyOverview holds an Overview.
	CacheKeyOverview = "basic_overview"

	// CacheKeyDeepCollect holds a DeepCollection.
	CacheKeyDeepCollect = "deep_collect"

	// CacheKeyFinancials holds a FinancialSeries.
	CacheKeyFinancials = "financials"

	// CacheKeyReport holds the last generated ReportSections.
	CacheKeyReport = "report_sections"
)

// Overview is the cached company-level summary built from broad web snippets.
type Overview struct {
	Summary string      `json:"summary"`
	Results []SearchHit `json:"results"`
}

// DownloadedDocument is a PDF fetched during deep collection.
type DownloadedDocument struct {
	Path string `json:"path"`
	URL  string `json:"url"`
}

// DeepCollection is the cached record of a deep collection pass.
type DeepCollection struct {
	PDFLinks   []string             `json:"pdf_links"`
	Downloaded []DownloadedDocument `json:"downloaded"`
}

// CompanySlug returns the directory-safe, lower-case form of a company name.
// Only letters, digits, '-' and '_' are kept.
func CompanySlug(company string) string {
	var b strings.Builder
	for _, r := range company {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_' {
			b.WriteRune(r)
		}
	}
	return strings.ToLower(b.String())
}
