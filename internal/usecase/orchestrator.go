// Package usecase sequences discovery, report materialization and delivery
// per subscriber.
package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"rasid/internal/discovery"
	"rasid/internal/domain"
	"rasid/internal/ports"
)

// budgetSlack pads the per-subscriber wall-clock budget beyond the raw
// maxPages × pageTimeout product to leave room for report and delivery work.
const budgetSlack = 30 * time.Second

// Discoverer is the discovery pipeline as the orchestrator sees it.
type Discoverer interface {
	Discover(ctx context.Context, categoryName string, maxPages int) (domain.Dataset, error)
}

// OrchestratorDeps wires all collaborators into the orchestrator.
type OrchestratorDeps struct {
	Store        ports.SubscriberStore
	Discoverer   Discoverer
	Materializer ports.ReportMaterializer
	Delivery     ports.DeliveryChannel
	Logger       *slog.Logger
}

// Options bound a single subscriber run.
type Options struct {
	MaxPages    int
	PageTimeout time.Duration
	Workers     int
}

// Orchestrator processes due subscribers independently: one subscriber's
// failure is recorded as an outcome and never stops the batch.
type Orchestrator struct {
	store        ports.SubscriberStore
	discoverer   Discoverer
	materializer ports.ReportMaterializer
	delivery     ports.DeliveryChannel
	logger       *slog.Logger
	opts         Options
}

// NewOrchestrator constructs the orchestration component.
func NewOrchestrator(deps OrchestratorDeps, opts Options) *Orchestrator {
	if opts.MaxPages <= 0 {
		opts.MaxPages = 3
	}
	if opts.PageTimeout <= 0 {
		opts.PageTimeout = 20 * time.Second
	}
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	return &Orchestrator{
		store:        deps.Store,
		discoverer:   deps.Discoverer,
		materializer: deps.Materializer,
		delivery:     deps.Delivery,
		logger:       deps.Logger,
		opts:         opts,
	}
}

// ProcessDue runs the pipeline for every subscriber due at now, across a
// bounded worker pool, and returns one outcome per subscriber.
func (o *Orchestrator) ProcessDue(ctx context.Context, now time.Time) ([]domain.PipelineRun, error) {
	subscribers, err := o.store.ListDue(ctx, now)
	if err != nil {
		return nil, fmt.Errorf("list due subscribers: %w", err)
	}
	if len(subscribers) == 0 {
		o.log().Debug("no subscribers due", "now", now)
		return nil, nil
	}

	o.log().Info("processing due subscribers", "count", len(subscribers))

	var (
		wg      sync.WaitGroup
		sem     = make(chan struct{}, o.opts.Workers)
		results = make([]domain.PipelineRun, len(subscribers))
	)
	for i, sub := range subscribers {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, sub domain.Subscriber) {
			defer wg.Done()
			defer func() { <-sem }()
			results[i] = o.runIsolated(ctx, sub)
		}(i, sub)
	}
	wg.Wait()

	for _, run := range results {
		o.log().Info("subscriber run finished",
			"email", run.Email, "outcome", run.Outcome, "records", run.Records, "error", run.Err)
	}
	return results, nil
}

// runIsolated shields the batch from a panicking subscriber run.
func (o *Orchestrator) runIsolated(ctx context.Context, sub domain.Subscriber) (run domain.PipelineRun) {
	defer func() {
		if r := recover(); r != nil {
			run = domain.PipelineRun{
				Email:     sub.Email,
				Category:  sub.Category,
				StartedAt: time.Now(),
				Outcome:   domain.OutcomeDiscoveryFailed,
				Err:       fmt.Errorf("subscriber run panicked: %v", r),
			}
			o.log().Error("subscriber run panicked", "email", sub.Email, "panic", r)
		}
	}()
	return o.RunOnce(ctx, sub)
}

// RunOnce executes one full pipeline attempt for a subscriber. The schedule
// only advances after discovery, materialization and delivery all succeed;
// any temporary artifact is removed on every exit path.
func (o *Orchestrator) RunOnce(ctx context.Context, sub domain.Subscriber) domain.PipelineRun {
	run := domain.PipelineRun{
		Email:     sub.Email,
		Category:  sub.Category,
		StartedAt: time.Now(),
	}

	budget := time.Duration(o.opts.MaxPages)*o.opts.PageTimeout + budgetSlack
	runCtx, cancel := context.WithTimeout(ctx, budget)
	defer cancel()

	dataset, err := o.discoverer.Discover(runCtx, sub.Category, o.opts.MaxPages)
	if err != nil {
		run.Outcome = classifyDiscovery(err)
		run.Err = err
		return run
	}
	// A run that outlived its budget may hold a half-collected dataset;
	// discard it rather than deliver a truncated report.
	if runCtx.Err() != nil {
		run.Outcome = domain.OutcomeDiscoveryFailed
		run.Err = fmt.Errorf("discovery budget exhausted: %w", runCtx.Err())
		return run
	}
	run.Records = len(dataset)

	artifact, err := o.materializer.Materialize(runCtx, dataset)
	if err != nil {
		run.Outcome = domain.OutcomeReportFailed
		run.Err = err
		return run
	}
	defer func() {
		if removeErr := os.Remove(artifact); removeErr != nil && !os.IsNotExist(removeErr) {
			o.log().Warn("report cleanup failed", "path", artifact, "error", removeErr)
		}
	}()

	subject := fmt.Sprintf("Rasid Tenders Report - %s", run.StartedAt.Format("2006-01-02"))
	body := "Hello,\n\nPlease find the attached Rasid tender opportunities report.\n\nRegards."
	if err := o.delivery.Send(runCtx, artifact, []string{sub.Email}, subject, body); err != nil {
		run.Outcome = domain.OutcomeDeliveryFailed
		run.Err = err
		return run
	}

	if err := o.store.MarkRun(ctx, sub.Email, run.StartedAt); err != nil {
		// The report went out; a retry next tick would duplicate it, so
		// record the error without failing the run.
		o.log().Error("schedule update failed after delivery", "email", sub.Email, "error", err)
		run.Err = err
	}

	run.Outcome = domain.OutcomeSuccess
	return run
}

func classifyDiscovery(err error) domain.Outcome {
	var discErr *discovery.Error
	if errors.As(err, &discErr) && discErr.Kind == discovery.NoResults {
		return domain.OutcomeNoResults
	}
	return domain.OutcomeDiscoveryFailed
}

func (o *Orchestrator) log() *slog.Logger {
	if o.logger != nil {
		return o.logger
	}
	return slog.Default()
}
