package domain

import "strings"

// Report section names.
const (
	SectionDirectiveResponse  = "Directive Response"
	SectionOverview           = "Overview"
	SectionCompetitors        = "Competitors"
	SectionMarketPosition     = "Market Position"
	SectionFinancialSummary   = "Financial Summary"
	SectionSWOT               = "SWOT"
	SectionStrategy           = "Strategy"
	SectionTopProductsTable   = "TOP PRODUCTS TABLE"
	SectionRevenueGraph       = "Revenue Graph"
	SectionStructuredInsights = "Structured Insights"
)

// ExpectedSectionKeys lists every section a generated report carries.
func ExpectedSectionKeys() []string {
	return []string{
		SectionDirectiveResponse,
		SectionOverview,
		SectionCompetitors,
		SectionMarketPosition,
		SectionFinancialSummary,
		SectionSWOT,
		SectionStrategy,
		SectionTopProductsTable,
		SectionRevenueGraph,
		SectionStructuredInsights,
	}
}

// ReportSections maps a section name to its Markdown body.
type ReportSections map[string]string

// HasContent reports whether any section has non-blank text.
func (r ReportSections) HasContent() bool {
	for _, v := range r {
		if strings.TrimSpace(v) != "" {
			return true
		}
	}
	return false
}

// Competitor is a competitor name with an optional one-line descriptor.
type Competitor struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// SWOT groups analysis bullets by quadrant.
type SWOT struct {
	Strengths     []string `json:"strengths"`
	Weaknesses    []string `json:"weaknesses"`
	Opportunities []string `json:"opportunities"`
	Threats       []string `json:"threats"`
}

// RevenuePoint is one yearly revenue figure mined from a document.
type RevenuePoint struct {
	Year        int     `json:"year"`
	ValueBilUSD float64 `json:"value_bil_usd"`
	Currency    string  `json:"currency"`
	Raw         string  `json:"raw"`
	Source      string  `json:"source"`
}

// FinancialSeries is a year-ordered revenue series with extraction notes.
type FinancialSeries struct {
	Series []RevenuePoint `json:"series"`
	Notes  string         `json:"notes"`
}
