package domain

import "strings"

// ActivityUnknown is the sentinel stored when a card carries no activity type.
const ActivityUnknown = "unknown"

// TenderRecord is a core entity describing one procurement opportunity
// discovered on the remote listing.
type TenderRecord struct {
	Title        string
	Description  string
	ActivityType string
	Deadline     string
	CategoryID   int
}

// RecordKey identifies a tender across pages; two records sharing a key are
// the same tender and collapse to the first-seen instance.
type RecordKey struct {
	Title    string
	Deadline string
}

// Key derives the dedup key for the record.
func (r TenderRecord) Key() RecordKey {
	return RecordKey{Title: r.Title, Deadline: r.Deadline}
}

// Valid reports whether the record may enter a dataset. Title is the primary
// dedup component, so records without one are discarded outright.
func (r TenderRecord) Valid() bool {
	return strings.TrimSpace(r.Title) != ""
}

// Dataset is an ordered, duplicate-free sequence of records. Order is
// discovery order; the slice is never mutated after a pipeline returns it.
type Dataset []TenderRecord
