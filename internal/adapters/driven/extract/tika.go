package extract

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/custodia-labs/dossier/internal/core/domain"
	"github.com/custodia-labs/dossier/internal/core/ports/driven"
)

// Verify interface compliance.
var _ driven.TextExtractor = (*Tika)(nil)

// DefaultTikaTimeout bounds a single extraction request.
const DefaultTikaTimeout = 60 * time.Second

// formFeed separates pages in Tika's plain text output.
const formFeed = "\f"

// Tika extracts text through an Apache Tika server.
type Tika struct {
	baseURL string
	client  *http.Client
}

// NewTika creates an extractor for the Tika server at baseURL.
func NewTika(baseURL string, client *http.Client) *Tika {
	if client == nil {
		client = &http.Client{Timeout: DefaultTikaTimeout}
	}
	return &Tika{baseURL: strings.TrimRight(baseURL, "/"), client: client}
}

// ExtractText uploads the file at path and returns its text.
// Tika has no page limit, so maxPages is applied to the form-feed separated
// output when the server emits page breaks.
func (t *Tika) ExtractText(ctx context.Context, path string, maxPages int) (string, error) {
	if t.baseURL == "" {
		return "", fmt.Errorf("%w: tika URL not set", domain.ErrExtractorUnavailable)
	}
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, t.baseURL+"/tika", f)
	if err != nil {
		return "", fmt.Errorf("create tika request: %w", err)
	}
	req.Header.Set("Content-Type", "application/pdf")
	req.Header.Set("Accept", "text/plain")

	resp, err := t.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrExtractorUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("tika returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read tika response: %w", err)
	}
	return limitPages(string(data), maxPages), nil
}

func limitPages(text string, maxPages int) string {
	if maxPages <= 0 || !strings.Contains(text, formFeed) {
		return text
	}
	pages := strings.Split(text, formFeed)
	if len(pages) <= maxPages {
		return text
	}
	return strings.Join(pages[:maxPages], formFeed)
}
