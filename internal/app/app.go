package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"rasid/internal/config"
	"rasid/internal/discovery"
	"rasid/internal/domain"
	"rasid/internal/infrastructure/fetcher"
	"rasid/internal/infrastructure/mail"
	"rasid/internal/infrastructure/report"
	"rasid/internal/infrastructure/scheduler"
	"rasid/internal/infrastructure/storage"
	"rasid/internal/logging"
	"rasid/internal/parser"
	"rasid/internal/ports"
	"rasid/internal/usecase"
)

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg          config.Config
	store        *storage.SubscriberRepository
	orchestrator *usecase.Orchestrator
	scheduler    ports.Scheduler
	logger       *slog.Logger
}

// New builds a runnable application instance.
func New(cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	store, err := storage.Open(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("open subscriber store: %w", err)
	}

	source, err := newPageSource(cfg.Source)
	if err != nil {
		store.Close()
		return nil, err
	}

	extractor := parser.NewExtractor(baseLogger.With("component", "extractor"))
	paginator := discovery.NewPaginator(source, extractor, baseLogger.With("component", "paginator"))
	pipeline := discovery.NewPipeline(domain.NewCategoryMap(), paginator, baseLogger.With("component", "discovery"))

	materializer, err := report.NewExcelMaterializer(cfg.Report.Dir)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("report materializer: %w", err)
	}

	mailer := mail.NewMailer(cfg.Mail.Host, cfg.Mail.Port, cfg.Mail.Username, cfg.Mail.Password, cfg.Mail.From)

	orchestrator := usecase.NewOrchestrator(usecase.OrchestratorDeps{
		Store:        store,
		Discoverer:   pipeline,
		Materializer: materializer,
		Delivery:     mailer,
		Logger:       baseLogger.With("component", "orchestrator"),
	}, usecase.Options{
		MaxPages:    cfg.Source.MaxPages,
		PageTimeout: cfg.Source.PageTimeout(),
		Workers:     cfg.Orchestrator.Workers,
	})

	return &Application{
		cfg:          cfg,
		store:        store,
		orchestrator: orchestrator,
		scheduler:    scheduler.NewCronScheduler(cfg.Scheduler.CronExpression, cfg.Scheduler.Location()),
		logger:       baseLogger.With("component", "app"),
	}, nil
}

func newPageSource(cfg config.SourceConfig) (ports.PageSource, error) {
	switch cfg.Strategy {
	case "", "http":
		return fetcher.NewHTTPSource(cfg.BaseURL, cfg.PublishDateID, nil), nil
	case "browser":
		return fetcher.NewBrowserSource(cfg.BaseURL, cfg.PublishDateID, cfg.PageTimeout()), nil
	default:
		return nil, fmt.Errorf("unknown source strategy %q", cfg.Strategy)
	}
}

// Run starts the tick scheduler and blocks until the context is cancelled.
func (a *Application) Run(ctx context.Context) error {
	job := func(tick time.Time) {
		if _, err := a.orchestrator.ProcessDue(ctx, tick); err != nil {
			a.logger.Error("batch tick failed", "error", err)
		}
	}

	if err := a.scheduler.Start(ctx, job); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}
	a.logger.Info("scheduler started", "cron", a.cfg.Scheduler.CronExpression)

	<-ctx.Done()

	stopCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := a.scheduler.Stop(stopCtx); err != nil {
		a.logger.Warn("scheduler stop timed out", "error", err)
	}

	if err := a.store.Close(); err != nil {
		return fmt.Errorf("close subscriber store: %w", err)
	}
	return nil
}
