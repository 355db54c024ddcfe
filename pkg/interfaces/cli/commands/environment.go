package commands

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/vsinha/supplyadvisor/pkg/application/services/advisory"
	"github.com/vsinha/supplyadvisor/pkg/application/services/alerts"
	"github.com/vsinha/supplyadvisor/pkg/application/services/criticalpath"
	"github.com/vsinha/supplyadvisor/pkg/application/services/forecasting"
	"github.com/vsinha/supplyadvisor/pkg/application/services/mrp"
	"github.com/vsinha/supplyadvisor/pkg/application/services/orchestration"
	"github.com/vsinha/supplyadvisor/pkg/application/services/shared"
	"github.com/vsinha/supplyadvisor/pkg/domain/repositories"
	"github.com/vsinha/supplyadvisor/pkg/infrastructure/ai"
	"github.com/vsinha/supplyadvisor/pkg/infrastructure/config"
	"github.com/vsinha/supplyadvisor/pkg/infrastructure/events"
	"github.com/vsinha/supplyadvisor/pkg/infrastructure/logging"
	"github.com/vsinha/supplyadvisor/pkg/infrastructure/metrics"
	csvrepo "github.com/vsinha/supplyadvisor/pkg/infrastructure/repositories/csv"
	"github.com/vsinha/supplyadvisor/pkg/infrastructure/repositories/postgres"
)

// DataSource is everything the services read from
type DataSource interface {
	repositories.BOMRepository
	repositories.DeliveryRepository
	repositories.SubstituteRepository
	repositories.ShortageDocumentRepository
	repositories.UsageRepository
	repositories.StockRepository
	repositories.HolidayRepository
}

// Environment holds the wired services of one command invocation
type Environment struct {
	Config       *config.Config
	Log          *slog.Logger
	Metrics      *metrics.Metrics
	Events       *events.InMemoryEventStore
	Orchestrator *orchestration.PlanningOrchestrator
	RunID        string

	db *postgres.Repository
}

// NewEnvironment opens the configured data source and wires the services on top of it
func NewEnvironment(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Environment, error) {
	env := &Environment{
		Config:  cfg,
		Log:     logger,
		Metrics: metrics.New(metrics.DefaultConfig()),
		Events:  events.NewInMemoryEventStore(logger, cfg.Audit.MaxEntries),
		RunID:   events.NewRunID(),
	}

	shortages := events.NewShortageLogger(logger)
	if err := env.Events.Subscribe(shortages.EventTypes(), shortages); err != nil {
		return nil, fmt.Errorf("failed to subscribe shortage logger: %w", err)
	}

	source, err := env.openSource(ctx)
	if err != nil {
		return nil, err
	}
	if err := env.wire(ctx, source); err != nil {
		_ = env.Close(ctx)
		return nil, err
	}
	return env, nil
}

func (e *Environment) openSource(ctx context.Context) (DataSource, error) {
	switch e.Config.Data.Source {
	case "db":
		repo, err := postgres.New(ctx, e.Log, e.Config.DBConfig)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		e.db = repo
		return repo, nil
	default:
		data, err := csvrepo.NewLoader().LoadScenario(e.Config.Data.ScenarioDir)
		if err != nil {
			return nil, fmt.Errorf("failed to load scenario %s: %w", e.Config.Data.ScenarioDir, err)
		}
		e.Log.Debug("scenario loaded", slog.String("dir", e.Config.Data.ScenarioDir))
		return data, nil
	}
}

func (e *Environment) wire(ctx context.Context, source DataSource) error {
	cfg := e.Config

	calendar := forecasting.HolidayCalendar(forecasting.NewPolishHolidays())
	if days, err := source.GetHolidays(ctx); err != nil {
		e.Log.Warn("company holidays unavailable", logging.Err(err))
	} else if len(days) > 0 {
		calendar = forecasting.CombineCalendars(calendar, forecasting.NewHolidaySet(days))
	}
	forecaster := forecasting.New(e.Log, cfg.ML, forecasting.WithHolidayCalendar(calendar))

	simulator := mrp.NewSimulator(e.Log, source,
		mrp.WithDeliveryRepository(source),
		mrp.WithSubstituteRepository(source),
		mrp.WithShortageDocumentRepository(source),
		mrp.WithCache(shared.NewBOMCache(cfg.MRP.CacheEntries)),
		mrp.WithMaxDepth(cfg.MRP.MaxBOMDepth),
		mrp.WithEventStore(e.Events, e.RunID),
	)

	narrator, err := ai.NewNarrator(cfg.AI, e.Log)
	if err != nil {
		return fmt.Errorf("failed to configure narrator: %w", err)
	}
	advisorOpts := []advisory.Option{advisory.WithEventStore(e.Events, e.RunID)}
	if narrator != nil {
		advisorOpts = append(advisorOpts, advisory.WithNarrator(narrator))
	}
	if cfg.AI.Anonymize {
		advisorOpts = append(advisorOpts, advisory.WithAnonymizer(ai.NewAnonymizer()))
	}

	e.Orchestrator = orchestration.NewPlanningOrchestrator(e.Log, source,
		forecaster,
		simulator,
		criticalpath.NewService(e.Log),
		alerts.NewService(e.Log, source, source,
			alerts.WithMinimumStockDays(cfg.Alerts.MinimumStockDays),
			alerts.WithWindowWeeks(cfg.Alerts.WindowWeeks),
		),
		advisory.NewAdvisor(e.Log, simulator, advisorOpts...),
		orchestration.WithRecorder(e.Metrics),
		orchestration.WithEventStore(e.Events, e.RunID),
	)
	return nil
}

// Ping checks the database when one is configured
func (e *Environment) Ping(ctx context.Context) error {
	if e.db == nil {
		return nil
	}
	return e.db.Ping(ctx)
}

// WriteAudit exports the audit trail when an audit file is configured
func (e *Environment) WriteAudit(context.Context) error {
	if e.Config.Audit.File == "" {
		return nil
	}
	if err := e.Events.WriteFile(e.Config.Audit.File); err != nil {
		return fmt.Errorf("failed to write audit trail: %w", err)
	}
	e.Log.Debug("audit trail written",
		slog.String("file", e.Config.Audit.File),
		slog.Int("events", e.Events.Len()))
	return nil
}

// Close writes the audit trail and releases the database
func (e *Environment) Close(ctx context.Context) error {
	auditErr := e.WriteAudit(ctx)
	if e.db != nil {
		if err := e.db.Shutdown(ctx); err != nil {
			return err
		}
	}
	return auditErr
}
