package discovery

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"rasid/internal/domain"
	"rasid/internal/parser"
	"rasid/internal/ports"
)

// Paginator drives the fetch/extract loop across listing pages up to a bound
// and merges the results into one ordered, deduplicated dataset. Pages are
// fetched sequentially because the stopping condition depends on what the
// previous page yielded.
type Paginator struct {
	source    ports.PageSource
	extractor *parser.Extractor
	retries   int // same-page attempts after the first, for transient failures
	backoff   time.Duration
	logger    *slog.Logger
}

// NewPaginator wires a page source and extractor. One bounded same-page retry
// with backoff is allowed before a page counts as failed.
func NewPaginator(source ports.PageSource, extractor *parser.Extractor, logger *slog.Logger) *Paginator {
	return &Paginator{
		source:    source,
		extractor: extractor,
		retries:   1,
		backoff:   2 * time.Second,
		logger:    logger,
	}
}

// Paginate walks pages 1..maxPages for the category. Forward progress is
// decided from page content alone: an empty page means the listing is
// exhausted, a page contributing no new records means the upstream pager is
// looping, and the bound is a deliberate cap. Once at least one page has
// merged, later failures return the partial dataset instead of an error.
func (p *Paginator) Paginate(ctx context.Context, categoryID, maxPages int) (domain.Dataset, error) {
	var (
		dataset domain.Dataset
		seen    = map[domain.RecordKey]struct{}{}
	)

	for page := 1; page <= maxPages; page++ {
		raw, err := p.fetchPage(ctx, categoryID, page)
		if err != nil {
			if len(dataset) == 0 {
				return nil, &Error{Kind: FetchFailed, Err: err}
			}
			p.warn("page fetch failed, returning partial dataset",
				"category", categoryID, "page", page, "records", len(dataset), "error", err)
			return dataset, nil
		}

		candidates, err := p.extractor.Extract(raw, categoryID)
		if err != nil {
			if len(dataset) == 0 {
				return nil, &Error{Kind: FetchFailed, Err: &FetchError{Kind: FetchEmpty, Err: err}}
			}
			p.warn("page unparseable, returning partial dataset",
				"category", categoryID, "page", page, "error", err)
			return dataset, nil
		}

		if len(candidates) == 0 {
			if page == 1 {
				return nil, &Error{Kind: NoResults}
			}
			p.debug("listing exhausted", "category", categoryID, "page", page)
			return dataset, nil
		}

		added := 0
		for _, candidate := range candidates {
			key := candidate.Key()
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			dataset = append(dataset, candidate)
			added++
		}

		p.debug("page merged", "category", categoryID, "page", page, "new", added, "total", len(dataset))

		// A page of nothing but duplicates means the upstream pager has
		// stalled; trust the content over any has-next control.
		if added == 0 {
			return dataset, nil
		}
	}

	return dataset, nil
}

func (p *Paginator) fetchPage(ctx context.Context, categoryID, page int) ([]byte, error) {
	raw, err := p.source.Fetch(ctx, categoryID, page)
	if err == nil {
		return raw, nil
	}

	var fetchErr *FetchError
	for attempt := 0; attempt < p.retries && errors.As(err, &fetchErr) && fetchErr.Transient(); attempt++ {
		p.warn("retrying page after transient failure",
			"category", categoryID, "page", page, "error", err)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(p.backoff):
		}

		raw, err = p.source.Fetch(ctx, categoryID, page)
		if err == nil {
			return raw, nil
		}
	}

	return nil, err
}

func (p *Paginator) debug(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Debug(msg, args...)
	}
}

func (p *Paginator) warn(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Warn(msg, args...)
	}
}
