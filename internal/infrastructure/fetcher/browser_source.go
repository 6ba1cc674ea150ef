package fetcher

import (
	"context"
	"strings"
	"time"

	"github.com/chromedp/chromedp"

	"rasid/internal/discovery"
	"rasid/internal/ports"
)

// BrowserSource fetches listing pages through a headless browser session for
// the occasions the portal serves script-rendered markup to plain HTTP
// clients. It satisfies the same contract as HTTPSource, so the rest of the
// pipeline does not know which transport produced a page.
type BrowserSource struct {
	baseURL       string
	publishDateID int
	pageTimeout   time.Duration
}

var _ ports.PageSource = (*BrowserSource)(nil)

// NewBrowserSource configures a rendered-page fetcher.
func NewBrowserSource(baseURL string, publishDateID int, pageTimeout time.Duration) *BrowserSource {
	if pageTimeout <= 0 {
		pageTimeout = 30 * time.Second
	}
	return &BrowserSource{baseURL: baseURL, publishDateID: publishDateID, pageTimeout: pageTimeout}
}

// Fetch navigates to the listing page and returns the rendered document.
func (s *BrowserSource) Fetch(ctx context.Context, categoryID, page int) ([]byte, error) {
	pageURL, err := listingURL(s.baseURL, s.publishDateID, categoryID, page)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.pageTimeout)
	defer cancel()

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, chromedp.DefaultExecAllocatorOptions[:]...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	var html string
	err = chromedp.Run(browserCtx,
		chromedp.Navigate(pageURL),
		chromedp.WaitReady("body"),
		chromedp.OuterHTML("html", &html),
	)
	if err != nil {
		return nil, &discovery.FetchError{Kind: discovery.FetchNetwork, Err: err}
	}
	if strings.TrimSpace(html) == "" {
		return nil, &discovery.FetchError{Kind: discovery.FetchEmpty}
	}

	return []byte(html), nil
}
