package driven

import "context"

// DocumentFetcher discovers and downloads documents linked from web pages.
type DocumentFetcher interface {
	// FindPDFLinks returns up to max absolute PDF links found on pageURL.
	FindPDFLinks(ctx context.Context, pageURL string, max int) ([]string, error)

	// Download writes the resource at url to dest.
	Download(ctx context.Context, url, dest string) error
}

// TextExtractor extracts plain text from a local document.
type TextExtractor interface {
	// ExtractText returns the text of the first maxPages pages of path.
	ExtractText(ctx context.Context, path string, maxPages int) (string, error)
}

// TextSplitter breaks long document text into evidence-sized chunks.
type TextSplitter interface {
	Split(text string) []string
}
