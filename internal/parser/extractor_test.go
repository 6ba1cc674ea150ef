package parser

import (
	"fmt"
	"testing"
)

func card(title, description, deadline, activity string) string {
	titleHTML := ""
	if title != "" {
		titleHTML = fmt.Sprintf(`<h3><a href="#">%s</a></h3>`, title)
	}
	activityHTML := ""
	if activity != "" {
		activityHTML = fmt.Sprintf(`<label class="ml-3">Activity</label><span>%s</span>`, activity)
	}
	return fmt.Sprintf(`
	<div class="tender-card">
	  <div>
	    <span>%s</span>
	    <p>%s</p>
	  </div>
	  %s
	  %s
	</div>`, deadline, description, titleHTML, activityHTML)
}

func TestExtractReadsAllFields(t *testing.T) {
	t.Parallel()

	html := "<html><body>" + card("Road works", "Ministry of Transport", "2026-01-15", "Contracting") + "</body></html>"

	records, err := NewExtractor(nil).Extract([]byte(html), 2)
	if err != nil {
		t.Fatalf("Extract error: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}

	got := records[0]
	if got.Title != "Road works" {
		t.Fatalf("unexpected title: %q", got.Title)
	}
	if got.Description != "Ministry of Transport" {
		t.Fatalf("unexpected description: %q", got.Description)
	}
	if got.Deadline != "2026-01-15" {
		t.Fatalf("unexpected deadline: %q", got.Deadline)
	}
	if got.ActivityType != "Contracting" {
		t.Fatalf("unexpected activity type: %q", got.ActivityType)
	}
	if got.CategoryID != 2 {
		t.Fatalf("unexpected category id: %d", got.CategoryID)
	}
}

func TestExtractDropsOnlyTitlelessCards(t *testing.T) {
	t.Parallel()

	html := "<html><body>" +
		card("First tender", "Agency A", "2026-02-01", "Trade") +
		card("", "Agency B", "2026-02-02", "Trade") +
		card("Third tender", "Agency C", "2026-02-03", "Trade") +
		"</body></html>"

	records, err := NewExtractor(nil).Extract([]byte(html), 1)
	if err != nil {
		t.Fatalf("Extract error: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].Title != "First tender" || records[1].Title != "Third tender" {
		t.Fatalf("unexpected record order: %q, %q", records[0].Title, records[1].Title)
	}
}

func TestExtractMissingFieldsDegradeToSentinels(t *testing.T) {
	t.Parallel()

	html := `<html><body>
	<div class="tender-card">
	  <h3><a href="#">Bare tender</a></h3>
	</div>
	</body></html>`

	records, err := NewExtractor(nil).Extract([]byte(html), 7)
	if err != nil {
		t.Fatalf("Extract error: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}

	got := records[0]
	if got.Description != "" {
		t.Fatalf("expected empty description, got %q", got.Description)
	}
	if got.Deadline != "" {
		t.Fatalf("expected empty deadline, got %q", got.Deadline)
	}
	if got.ActivityType != "unknown" {
		t.Fatalf("expected unknown activity, got %q", got.ActivityType)
	}
}

func TestExtractZeroCardsIsValid(t *testing.T) {
	t.Parallel()

	records, err := NewExtractor(nil).Extract([]byte("<html><body><p>nothing here</p></body></html>"), 1)
	if err != nil {
		t.Fatalf("Extract error: %v", err)
	}
	if len(records) != 0 {
		t.Fatalf("expected no records, got %d", len(records))
	}
}
