package ports

import (
	"context"
	"time"

	"rasid/internal/domain"
)

// PageSource retrieves one listing page of raw markup for a category. The
// pagination loop decides whether another page is needed; implementations
// never retry on their own.
type PageSource interface {
	Fetch(ctx context.Context, categoryID, page int) ([]byte, error)
}

// SubscriberStore is the persistent user directory keyed by email.
type SubscriberStore interface {
	Get(ctx context.Context, email string) (domain.Subscriber, error)
	Upsert(ctx context.Context, sub domain.Subscriber) error
	ListDue(ctx context.Context, now time.Time) ([]domain.Subscriber, error)
	MarkRun(ctx context.Context, email string, ranAt time.Time) error
}

// ReportMaterializer converts a dataset into a file on disk and returns its
// path. The caller owns the file and removes it when done.
type ReportMaterializer interface {
	Materialize(ctx context.Context, ds domain.Dataset) (string, error)
}

// DeliveryChannel sends a finished artifact to the given recipients.
type DeliveryChannel interface {
	Send(ctx context.Context, artifactPath string, to []string, subject, body string) error
}

// Scheduler controls when batch ticks execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
