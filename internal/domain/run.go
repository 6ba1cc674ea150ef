package domain

import "time"

// Outcome classifies one orchestrator attempt for a subscriber.
type Outcome string

const (
	OutcomeSuccess         Outcome = "success"
	OutcomeNoResults       Outcome = "no_results"
	OutcomeDiscoveryFailed Outcome = "discovery_failed"
	OutcomeReportFailed    Outcome = "report_failed"
	OutcomeDeliveryFailed  Outcome = "delivery_failed"
)

// PipelineRun records a single execution attempt. It lives for one
// orchestrator invocation and is used for logging only, never persisted.
type PipelineRun struct {
	Email     string
	Category  string
	StartedAt time.Time
	Outcome   Outcome
	Records   int
	Err       error
}
