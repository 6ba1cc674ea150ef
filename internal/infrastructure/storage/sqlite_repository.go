// Package storage persists the subscriber directory in SQLite.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "modernc.org/sqlite"

	"rasid/internal/domain"
	"rasid/internal/ports"
)

// ErrNotFound is returned when no subscriber row exists for an email.
var ErrNotFound = errors.New("subscriber not found")

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04:05"
)

const schema = `
CREATE TABLE IF NOT EXISTS subscribers (
    email          TEXT PRIMARY KEY,
    company_name   TEXT NOT NULL,
    category       TEXT NOT NULL,
    frequency      TEXT NOT NULL,
    start_date     TEXT NOT NULL,
    preferred_time TEXT NOT NULL,
    last_run_at    TEXT NOT NULL DEFAULT ''
)`

var subscriberColumns = []string{
	"email", "company_name", "category", "frequency",
	"start_date", "preferred_time", "last_run_at",
}

// SubscriberRepository stores one row per subscriber keyed by email. Updates
// touch single rows, so concurrent runs for different subscribers do not
// contend beyond SQLite's write serialization.
type SubscriberRepository struct {
	db *sql.DB
}

var _ ports.SubscriberStore = (*SubscriberRepository)(nil)

// Open creates or opens the database file and ensures the schema exists.
func Open(dbPath string) (*SubscriberRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting journal mode: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &SubscriberRepository{db: db}, nil
}

// Close closes the underlying connection.
func (r *SubscriberRepository) Close() error {
	return r.db.Close()
}

// Get loads one subscriber or ErrNotFound.
func (r *SubscriberRepository) Get(ctx context.Context, email string) (domain.Subscriber, error) {
	query, args, err := sq.Select(subscriberColumns...).
		From("subscribers").
		Where(sq.Eq{"email": email}).
		ToSql()
	if err != nil {
		return domain.Subscriber{}, fmt.Errorf("build select: %w", err)
	}

	sub, err := scanSubscriber(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Subscriber{}, ErrNotFound
	}
	if err != nil {
		return domain.Subscriber{}, fmt.Errorf("load subscriber: %w", err)
	}
	return sub, nil
}

// Upsert inserts the subscriber or updates the existing row in place.
func (r *SubscriberRepository) Upsert(ctx context.Context, sub domain.Subscriber) error {
	lastRun := ""
	if !sub.LastRunAt.IsZero() {
		lastRun = sub.LastRunAt.UTC().Format(time.RFC3339)
	}

	query, args, err := sq.Insert("subscribers").
		Columns(subscriberColumns...).
		Values(
			sub.Email,
			sub.Company,
			sub.Category,
			string(sub.Frequency),
			sub.StartDate.Format(dateLayout),
			formatPreferredTime(sub.PreferredTime),
			lastRun,
		).
		Suffix(`ON CONFLICT(email) DO UPDATE SET
            company_name = excluded.company_name,
            category = excluded.category,
            frequency = excluded.frequency,
            start_date = excluded.start_date,
            preferred_time = excluded.preferred_time`).
		ToSql()
	if err != nil {
		return fmt.Errorf("build upsert: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert subscriber: %w", err)
	}
	return nil
}

// ListDue returns every subscriber whose schedule is due at now.
func (r *SubscriberRepository) ListDue(ctx context.Context, now time.Time) ([]domain.Subscriber, error) {
	query, args, err := sq.Select(subscriberColumns...).
		From("subscribers").
		OrderBy("email").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query subscribers: %w", err)
	}
	defer rows.Close()

	var due []domain.Subscriber
	for rows.Next() {
		sub, err := scanSubscriber(rows)
		if err != nil {
			return nil, fmt.Errorf("scan subscriber: %w", err)
		}
		if sub.Due(now) {
			due = append(due, sub)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return due, nil
}

// MarkRun advances last_run_at for one subscriber row. Called only after a
// fully successful pipeline run.
func (r *SubscriberRepository) MarkRun(ctx context.Context, email string, ranAt time.Time) error {
	query, args, err := sq.Update("subscribers").
		Set("last_run_at", ranAt.UTC().Format(time.RFC3339)).
		Where(sq.Eq{"email": email}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("mark run: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSubscriber(row rowScanner) (domain.Subscriber, error) {
	var (
		sub                    domain.Subscriber
		frequency, startDate   string
		preferredTime, lastRun string
	)
	err := row.Scan(&sub.Email, &sub.Company, &sub.Category, &frequency,
		&startDate, &preferredTime, &lastRun)
	if err != nil {
		return domain.Subscriber{}, err
	}

	sub.Frequency, err = domain.ParseFrequency(frequency)
	if err != nil {
		return domain.Subscriber{}, err
	}
	sub.StartDate, err = time.Parse(dateLayout, startDate)
	if err != nil {
		return domain.Subscriber{}, fmt.Errorf("start_date: %w", err)
	}
	sub.PreferredTime, err = parsePreferredTime(preferredTime)
	if err != nil {
		return domain.Subscriber{}, fmt.Errorf("preferred_time: %w", err)
	}
	if lastRun != "" {
		sub.LastRunAt, err = time.Parse(time.RFC3339, lastRun)
		if err != nil {
			return domain.Subscriber{}, fmt.Errorf("last_run_at: %w", err)
		}
	}
	return sub, nil
}

func formatPreferredTime(offset time.Duration) string {
	return time.Time{}.Add(offset).Format(timeLayout)
}

func parsePreferredTime(value string) (time.Duration, error) {
	parsed, err := time.Parse(timeLayout, value)
	if err != nil {
		return 0, err
	}
	return time.Duration(parsed.Hour())*time.Hour +
		time.Duration(parsed.Minute())*time.Minute +
		time.Duration(parsed.Second())*time.Second, nil
}
