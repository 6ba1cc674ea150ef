// Package parser extracts tender records from listing-page markup. All
// knowledge of the portal's DOM shape lives here, so a structural change
// upstream touches one file.
package parser

import (
	"bytes"
	"fmt"
	"log/slog"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"rasid/internal/domain"
)

// cardSelector is the structural marker the portal renders around each
// tender. It is an external contract and may drift.
const cardSelector = "div.tender-card"

// Extractor turns raw page markup into candidate records.
type Extractor struct {
	logger *slog.Logger
}

// NewExtractor wires an optional logger for per-card warnings.
func NewExtractor(logger *slog.Logger) *Extractor {
	return &Extractor{logger: logger}
}

// Extract returns the candidates found on one page, in page order. Each card
// is read independently: a malformed sub-field degrades to a sentinel, and a
// card without a usable title is dropped without affecting its neighbours.
// The only error is markup that cannot be parsed at all, which the caller
// treats as a fetch-level failure rather than an extraction one.
func (e *Extractor) Extract(raw []byte, categoryID int) ([]domain.TenderRecord, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("parse page markup: %w", err)
	}

	var records []domain.TenderRecord
	doc.Find(cardSelector).Each(func(i int, card *goquery.Selection) {
		record := readCard(card, categoryID)
		if !record.Valid() {
			e.warn("dropping card without title", "card", i)
			return
		}
		records = append(records, record)
	})

	return records, nil
}

// readCard pulls each sub-field on its own; one missing field never blocks
// the others.
func readCard(card *goquery.Selection, categoryID int) domain.TenderRecord {
	title := strings.TrimSpace(card.Find("h3 a").First().Text())
	description := strings.TrimSpace(card.Find("div p").First().Text())
	deadline := strings.TrimSpace(card.Find("div span").First().Text())

	activity := strings.TrimSpace(card.Find("label.ml-3 + span").First().Text())
	if activity == "" {
		activity = domain.ActivityUnknown
	}

	return domain.TenderRecord{
		Title:        title,
		Description:  description,
		ActivityType: activity,
		Deadline:     deadline,
		CategoryID:   categoryID,
	}
}

func (e *Extractor) warn(msg string, args ...any) {
	if e.logger != nil {
		e.logger.Warn(msg, args...)
	}
}
