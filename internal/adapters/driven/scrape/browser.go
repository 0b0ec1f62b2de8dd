package scrape

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"
)

// DefaultRenderTimeout bounds one headless page load, including browser start.
const DefaultRenderTimeout = 15 * time.Second

// PageRenderer returns the HTML of a page after its scripts have run.
type PageRenderer interface {
	RenderHTML(ctx context.Context, pageURL string) (string, error)
}

// ChromeRenderer loads pages in a headless Chrome through the DevTools protocol.
// Each call starts and stops its own browser.
type ChromeRenderer struct {
	timeout  time.Duration
	execPath string
}

// NewChromeRenderer creates a renderer. A zero timeout uses
// DefaultRenderTimeout; an empty execPath lets chromedp find Chrome.
func NewChromeRenderer(timeout time.Duration, execPath string) *ChromeRenderer {
	if timeout <= 0 {
		timeout = DefaultRenderTimeout
	}
	return &ChromeRenderer{timeout: timeout, execPath: execPath}
}

// RenderHTML navigates to pageURL, waits for the first anchor and returns
// the rendered document.
func (c *ChromeRenderer) RenderHTML(ctx context.Context, pageURL string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.UserAgent(UserAgent),
		chromedp.WindowSize(1920, 1080),
		chromedp.DisableGPU,
	)
	if c.execPath != "" {
		opts = append(opts, chromedp.ExecPath(c.execPath))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	var doc string
	err := chromedp.Run(browserCtx,
		chromedp.Navigate(pageURL),
		chromedp.WaitReady("a", chromedp.ByQuery),
		chromedp.OuterHTML("html", &doc, chromedp.ByQuery),
	)
	if err != nil {
		return "", fmt.Errorf("render %s: %w", pageURL, err)
	}
	return doc, nil
}
