// Package discovery composes page fetching, extraction and pagination into a
// single operation with a uniform failure taxonomy.
package discovery

import (
	"context"
	"log/slog"

	"rasid/internal/domain"
)

// Pipeline resolves a category name and delegates to the paginator.
type Pipeline struct {
	categories domain.CategoryMap
	paginator  *Paginator
	logger     *slog.Logger
}

// NewPipeline wires the immutable category table with a paginator.
func NewPipeline(categories domain.CategoryMap, paginator *Paginator, logger *slog.Logger) *Pipeline {
	return &Pipeline{categories: categories, paginator: paginator, logger: logger}
}

// Discover returns the deduplicated dataset for a category, in discovery
// order. Unknown names fail before any network activity; an empty listing is
// reported as NoResults so callers never materialize an empty report.
func (p *Pipeline) Discover(ctx context.Context, categoryName string, maxPages int) (domain.Dataset, error) {
	categoryID, err := p.categories.Resolve(categoryName)
	if err != nil {
		return nil, &Error{Kind: UnknownCategory, Err: err}
	}

	if p.logger != nil {
		p.logger.Info("discovery started", "category", categoryName, "category_id", categoryID, "max_pages", maxPages)
	}

	dataset, err := p.paginator.Paginate(ctx, categoryID, maxPages)
	if err != nil {
		return nil, err
	}
	if len(dataset) == 0 {
		return nil, &Error{Kind: NoResults}
	}

	if p.logger != nil {
		p.logger.Info("discovery finished", "category", categoryName, "records", len(dataset))
	}
	return dataset, nil
}
