package domain

import (
	"fmt"
	"strings"
	"time"
)

// Frequency controls how often a subscriber receives a report.
type Frequency string

const (
	FrequencyDaily   Frequency = "daily"
	FrequencyWeekly  Frequency = "weekly"
	FrequencyMonthly Frequency = "monthly"
)

// ParseFrequency normalizes a stored frequency value.
func ParseFrequency(value string) (Frequency, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "daily", "every day":
		return FrequencyDaily, nil
	case "weekly", "every week":
		return FrequencyWeekly, nil
	case "monthly", "every month":
		return FrequencyMonthly, nil
	default:
		return "", fmt.Errorf("unknown frequency %q", value)
	}
}

// Next returns the instant one period after from.
func (f Frequency) Next(from time.Time) time.Time {
	switch f {
	case FrequencyWeekly:
		return from.AddDate(0, 0, 7)
	case FrequencyMonthly:
		return from.AddDate(0, 1, 0)
	default:
		return from.AddDate(0, 0, 1)
	}
}

// Subscriber is one schedule row owned by the user directory.
type Subscriber struct {
	Email         string
	Company       string
	Category      string
	Frequency     Frequency
	StartDate     time.Time
	PreferredTime time.Duration // offset from midnight in the schedule timezone
	LastRunAt     time.Time     // zero until the first successful run
}

// FirstDue combines the start date with the preferred time of day.
func (s Subscriber) FirstDue() time.Time {
	day := time.Date(s.StartDate.Year(), s.StartDate.Month(), s.StartDate.Day(),
		0, 0, 0, 0, s.StartDate.Location())
	return day.Add(s.PreferredTime)
}

// Due reports whether the subscriber should be processed at now. A failed run
// leaves LastRunAt untouched, so the same period is retried at the next tick.
func (s Subscriber) Due(now time.Time) bool {
	first := s.FirstDue()
	if now.Before(first) {
		return false
	}
	if s.LastRunAt.IsZero() {
		return true
	}
	return !now.Before(s.Frequency.Next(s.LastRunAt))
}
