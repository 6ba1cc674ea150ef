package discovery

import (
	"context"
	"errors"
	"testing"

	"rasid/internal/domain"
	"rasid/internal/parser"
)

func TestDiscoverUnknownCategoryFailsBeforeNetwork(t *testing.T) {
	t.Parallel()

	source := &fakeSource{pages: map[int]fakePage{}}
	pipeline := NewPipeline(domain.NewCategoryMap(), newTestPaginator(source), nil)

	_, err := pipeline.Discover(context.Background(), "NotARealCategory", 3)

	var discErr *Error
	if !errors.As(err, &discErr) || discErr.Kind != UnknownCategory {
		t.Fatalf("expected UnknownCategory error, got %v", err)
	}
	if source.calls != 0 {
		t.Fatalf("expected zero network calls, got %d", source.calls)
	}
}

func TestDiscoverReturnsOrderedDataset(t *testing.T) {
	t.Parallel()

	source := &fakeSource{pages: map[int]fakePage{
		1: {titles: []string{"B tender", "A tender"}},
		2: {titles: []string{}},
	}}
	pipeline := NewPipeline(domain.NewCategoryMap(), newTestPaginator(source), nil)

	dataset, err := pipeline.Discover(context.Background(), "Contracting", 3)
	if err != nil {
		t.Fatalf("Discover error: %v", err)
	}

	if len(dataset) != 2 {
		t.Fatalf("expected 2 records, got %d", len(dataset))
	}
	// Discovery order, not lexical order.
	if dataset[0].Title != "B tender" || dataset[1].Title != "A tender" {
		t.Fatalf("unexpected order: %q, %q", dataset[0].Title, dataset[1].Title)
	}
	if dataset[0].CategoryID != 2 {
		t.Fatalf("expected Contracting id 2, got %d", dataset[0].CategoryID)
	}
}

func TestDiscoverEmptyListingIsNoResults(t *testing.T) {
	t.Parallel()

	source := &fakeSource{pages: map[int]fakePage{
		1: {titles: []string{}},
	}}
	pipeline := NewPipeline(domain.NewCategoryMap(), NewPaginator(source, parser.NewExtractor(nil), nil), nil)

	_, err := pipeline.Discover(context.Background(), "Trade", 3)

	var discErr *Error
	if !errors.As(err, &discErr) || discErr.Kind != NoResults {
		t.Fatalf("expected NoResults error, got %v", err)
	}
}
