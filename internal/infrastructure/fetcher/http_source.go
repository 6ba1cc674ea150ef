// Package fetcher provides PageSource implementations for the tender portal.
package fetcher

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"rasid/internal/discovery"
	"rasid/internal/ports"
)

const (
	listingPath = "/Tender/AllTendersForVisitor"

	// The portal varies its response shape for non-browser clients, so the
	// request carries a conventional browser User-Agent.
	browserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64)"

	maxBodySize = 4 << 20
)

// HTTPSource fetches listing pages with a plain HTTP GET.
type HTTPSource struct {
	baseURL       string
	publishDateID int
	client        *http.Client
}

var _ ports.PageSource = (*HTTPSource)(nil)

// NewHTTPSource wires an HTTP client; a nil client gets a 20s timeout default.
func NewHTTPSource(baseURL string, publishDateID int, client *http.Client) *HTTPSource {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	return &HTTPSource{baseURL: baseURL, publishDateID: publishDateID, client: client}
}

// Fetch retrieves one listing page. Failures are typed for the paginator:
// network problems, non-success statuses and blank bodies each map to their
// own FetchError kind. No retries happen here.
func (s *HTTPSource) Fetch(ctx context.Context, categoryID, page int) ([]byte, error) {
	pageURL, err := listingURL(s.baseURL, s.publishDateID, categoryID, page)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", browserUserAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, &discovery.FetchError{Kind: discovery.FetchNetwork, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, &discovery.FetchError{Kind: discovery.FetchUpstreamStatus, Status: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, &discovery.FetchError{Kind: discovery.FetchNetwork, Err: err}
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, &discovery.FetchError{Kind: discovery.FetchEmpty}
	}

	return body, nil
}

// listingURL reproduces the portal's visitor search query. PublishDateId
// narrows results to recently published tenders; the remaining parameters are
// required by the endpoint even when blank.
func listingURL(baseURL string, publishDateID, categoryID, page int) (string, error) {
	parsed, err := url.Parse(baseURL + listingPath)
	if err != nil {
		return "", fmt.Errorf("invalid base url %s: %w", baseURL, err)
	}

	query := parsed.Query()
	query.Set("MultipleSearch", "")
	query.Set("TenderCategory", "")
	query.Set("TenderActivityId", strconv.Itoa(categoryID))
	query.Set("ReferenceNumber", "")
	query.Set("TenderNumber", "")
	query.Set("agency", "")
	query.Set("ConditionaBookletRange", "")
	query.Set("PublishDateId", strconv.Itoa(publishDateID))
	query.Set("page", strconv.Itoa(page))
	parsed.RawQuery = query.Encode()

	return parsed.String(), nil
}
