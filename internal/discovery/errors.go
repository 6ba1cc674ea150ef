package discovery

import "fmt"

// FetchKind classifies a single page fetch failure.
type FetchKind int

const (
	FetchNetwork FetchKind = iota
	FetchUpstreamStatus
	FetchEmpty
)

// FetchError is a typed failure from a PageSource. Retry policy lives in the
// paginator, so the error only describes what went wrong.
type FetchError struct {
	Kind   FetchKind
	Status int // HTTP status for FetchUpstreamStatus
	Err    error
}

func (e *FetchError) Error() string {
	switch e.Kind {
	case FetchUpstreamStatus:
		return fmt.Sprintf("upstream returned status %d", e.Status)
	case FetchEmpty:
		return "upstream returned an unparseable body"
	default:
		return fmt.Sprintf("fetch failed: %v", e.Err)
	}
}

func (e *FetchError) Unwrap() error { return e.Err }

// Transient reports whether the same page is worth one more attempt.
func (e *FetchError) Transient() bool {
	return e.Kind == FetchNetwork || (e.Kind == FetchUpstreamStatus && e.Status >= 500)
}

// ErrorKind classifies the terminal failure of one discovery run.
type ErrorKind int

const (
	// UnknownCategory means the requested name is not in the category table.
	// Surfaced before any network activity.
	UnknownCategory ErrorKind = iota
	// NoResults means the listing produced zero records. Not a system fault,
	// but callers must not deliver an empty report.
	NoResults
	// FetchFailed means no page could be retrieved at all.
	FetchFailed
)

// Error is the uniform failure returned by the discovery pipeline.
type Error struct {
	Kind ErrorKind
	Err  error
}

func (e *Error) Error() string {
	switch e.Kind {
	case UnknownCategory:
		return fmt.Sprintf("discovery: %v", e.Err)
	case NoResults:
		return "discovery: no tenders found"
	default:
		return fmt.Sprintf("discovery: fetch failed: %v", e.Err)
	}
}

func (e *Error) Unwrap() error { return e.Err }
