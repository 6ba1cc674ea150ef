package discovery

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"rasid/internal/parser"
)

// fakeSource serves canned pages keyed by page index and counts fetches.
type fakeSource struct {
	pages map[int]fakePage
	calls int
}

type fakePage struct {
	titles []string
	err    error
	// errOnce fails the first attempt only, to exercise the retry path.
	errOnce error
	served  bool
}

func (f *fakeSource) Fetch(ctx context.Context, categoryID, page int) ([]byte, error) {
	f.calls++
	p, ok := f.pages[page]
	if !ok {
		return []byte(listingHTML()), nil
	}
	if p.errOnce != nil && !p.served {
		p.served = true
		f.pages[page] = p
		return nil, p.errOnce
	}
	if p.err != nil {
		return nil, p.err
	}
	return []byte(listingHTML(p.titles...)), nil
}

func listingHTML(titles ...string) string {
	var b strings.Builder
	b.WriteString("<html><body>")
	for _, title := range titles {
		fmt.Fprintf(&b, `<div class="tender-card">
		  <div><span>2026-03-01</span><p>Some agency</p></div>
		  <h3><a href="#">%s</a></h3>
		</div>`, title)
	}
	b.WriteString("</body></html>")
	return b.String()
}

func newTestPaginator(source *fakeSource) *Paginator {
	p := NewPaginator(source, parser.NewExtractor(nil), nil)
	p.backoff = 0
	return p
}

func TestPaginateDeduplicatesAcrossPages(t *testing.T) {
	t.Parallel()

	source := &fakeSource{pages: map[int]fakePage{
		1: {titles: []string{"Alpha", "Beta"}},
		2: {titles: []string{"Beta", "Gamma"}},
		3: {titles: []string{}},
	}}

	dataset, err := newTestPaginator(source).Paginate(context.Background(), 1, 5)
	if err != nil {
		t.Fatalf("Paginate error: %v", err)
	}

	want := []string{"Alpha", "Beta", "Gamma"}
	if len(dataset) != len(want) {
		t.Fatalf("expected %d records, got %d", len(want), len(dataset))
	}
	for i, title := range want {
		if dataset[i].Title != title {
			t.Fatalf("record %d: expected %q, got %q", i, title, dataset[i].Title)
		}
	}
}

func TestPaginateRespectsPageBound(t *testing.T) {
	t.Parallel()

	// The source would happily serve pages forever.
	source := &fakeSource{pages: map[int]fakePage{
		1: {titles: []string{"A1"}},
		2: {titles: []string{"A2"}},
		3: {titles: []string{"A3"}},
		4: {titles: []string{"A4"}},
	}}

	dataset, err := newTestPaginator(source).Paginate(context.Background(), 1, 3)
	if err != nil {
		t.Fatalf("Paginate error: %v", err)
	}
	if source.calls != 3 {
		t.Fatalf("expected exactly 3 fetches, got %d", source.calls)
	}
	if len(dataset) != 3 {
		t.Fatalf("expected 3 records, got %d", len(dataset))
	}
}

func TestPaginateEmptyFirstPageIsNoResults(t *testing.T) {
	t.Parallel()

	source := &fakeSource{pages: map[int]fakePage{
		1: {titles: []string{}},
	}}

	_, err := newTestPaginator(source).Paginate(context.Background(), 1, 3)

	var discErr *Error
	if !errors.As(err, &discErr) || discErr.Kind != NoResults {
		t.Fatalf("expected NoResults error, got %v", err)
	}
	if source.calls != 1 {
		t.Fatalf("expected no second page attempt, got %d fetches", source.calls)
	}
}

func TestPaginateEmptyLaterPageEndsRun(t *testing.T) {
	t.Parallel()

	source := &fakeSource{pages: map[int]fakePage{
		1: {titles: []string{"Only"}},
		2: {titles: []string{}},
	}}

	dataset, err := newTestPaginator(source).Paginate(context.Background(), 1, 5)
	if err != nil {
		t.Fatalf("Paginate error: %v", err)
	}
	if len(dataset) != 1 || dataset[0].Title != "Only" {
		t.Fatalf("unexpected dataset: %+v", dataset)
	}
	if source.calls != 2 {
		t.Fatalf("expected 2 fetches, got %d", source.calls)
	}
}

func TestPaginateStallsOnAllDuplicatePage(t *testing.T) {
	t.Parallel()

	source := &fakeSource{pages: map[int]fakePage{
		1: {titles: []string{"Same"}},
		2: {titles: []string{"Same"}},
		3: {titles: []string{"Never reached"}},
	}}

	dataset, err := newTestPaginator(source).Paginate(context.Background(), 1, 5)
	if err != nil {
		t.Fatalf("Paginate error: %v", err)
	}
	if len(dataset) != 1 {
		t.Fatalf("expected 1 record, got %d", len(dataset))
	}
	if source.calls != 2 {
		t.Fatalf("expected pagination to stop after the stalled page, got %d fetches", source.calls)
	}
}

func TestPaginateFirstPageFailureIsFetchFailed(t *testing.T) {
	t.Parallel()

	source := &fakeSource{pages: map[int]fakePage{
		1: {err: &FetchError{Kind: FetchUpstreamStatus, Status: 403}},
	}}

	_, err := newTestPaginator(source).Paginate(context.Background(), 1, 3)

	var discErr *Error
	if !errors.As(err, &discErr) || discErr.Kind != FetchFailed {
		t.Fatalf("expected FetchFailed error, got %v", err)
	}
}

func TestPaginateLaterFailureReturnsPartialDataset(t *testing.T) {
	t.Parallel()

	source := &fakeSource{pages: map[int]fakePage{
		1: {titles: []string{"Kept"}},
		2: {err: &FetchError{Kind: FetchUpstreamStatus, Status: 404}},
	}}

	dataset, err := newTestPaginator(source).Paginate(context.Background(), 1, 3)
	if err != nil {
		t.Fatalf("expected partial success, got error: %v", err)
	}
	if len(dataset) != 1 || dataset[0].Title != "Kept" {
		t.Fatalf("unexpected dataset: %+v", dataset)
	}
}

func TestPaginateRetriesTransientFailureOnce(t *testing.T) {
	t.Parallel()

	source := &fakeSource{pages: map[int]fakePage{
		1: {
			titles:  []string{"After retry"},
			errOnce: &FetchError{Kind: FetchNetwork, Err: errors.New("connection reset")},
		},
	}}

	dataset, err := newTestPaginator(source).Paginate(context.Background(), 1, 1)
	if err != nil {
		t.Fatalf("Paginate error: %v", err)
	}
	if len(dataset) != 1 || dataset[0].Title != "After retry" {
		t.Fatalf("unexpected dataset: %+v", dataset)
	}
	if source.calls != 2 {
		t.Fatalf("expected 2 attempts on page 1, got %d", source.calls)
	}
}

func TestPaginateDoesNotRetryPermanentFailure(t *testing.T) {
	t.Parallel()

	source := &fakeSource{pages: map[int]fakePage{
		1: {err: &FetchError{Kind: FetchUpstreamStatus, Status: 404}},
	}}

	_, err := newTestPaginator(source).Paginate(context.Background(), 1, 3)
	if err == nil {
		t.Fatal("expected error")
	}
	if source.calls != 1 {
		t.Fatalf("expected a single attempt for a permanent failure, got %d", source.calls)
	}
}
