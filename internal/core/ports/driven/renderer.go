package driven

import (
	"context"

	"github.com/custodia-labs/dossier/internal/core/domain"
)

// ReportRenderer turns a Markdown report into a document on disk.
type ReportRenderer interface {
	// Render writes the report titled title with Markdown body to dest.
	Render(ctx context.Context, title, markdown, dest string) error

	// RenderChart draws the yearly revenue series as a PNG image at dest.
	// Fewer than two points is an error.
	RenderChart(ctx context.Context, title string, points []domain.RevenuePoint, dest string) error

	// Extension is the file extension (with dot) of rendered documents.
	Extension() string
}

// CompanyFeed returns recent social updates about a company.
type CompanyFeed interface {
	Updates(ctx context.Context, company string) ([]domain.CompanyUpdate, error)
}
