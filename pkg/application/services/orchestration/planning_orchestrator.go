package orchestration

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/vsinha/supplyadvisor/pkg/application/dto"
	"github.com/vsinha/supplyadvisor/pkg/application/services/advisory"
	"github.com/vsinha/supplyadvisor/pkg/application/services/alerts"
	"github.com/vsinha/supplyadvisor/pkg/application/services/criticalpath"
	"github.com/vsinha/supplyadvisor/pkg/application/services/forecasting"
	"github.com/vsinha/supplyadvisor/pkg/application/services/mrp"
	"github.com/vsinha/supplyadvisor/pkg/application/services/preprocessing"
	"github.com/vsinha/supplyadvisor/pkg/domain/entities"
	apperrors "github.com/vsinha/supplyadvisor/pkg/domain/errors"
	"github.com/vsinha/supplyadvisor/pkg/domain/repositories"
	"github.com/vsinha/supplyadvisor/pkg/infrastructure/events"
)

// Simulation kinds reported to the recorder
const (
	KindBasic       = "basic"
	KindDelivery    = "delivery"
	KindSubstitutes = "substitutes"
	KindAnalysis    = "analysis"
)

// Recorder receives operational measurements
type Recorder interface {
	RecordSimulation(kind, outcome string)
	RecordForecast(model string, points int, duration time.Duration)
	RecordAdvice(llmAvailable bool)
	SetStockAlerts(counts map[string]int)
}

type nopRecorder struct{}

func (nopRecorder) RecordSimulation(string, string)           {}
func (nopRecorder) RecordForecast(string, int, time.Duration) {}
func (nopRecorder) RecordAdvice(bool)                         {}
func (nopRecorder) SetStockAlerts(map[string]int)             {}

// PlanningOrchestrator coordinates forecasting, production simulation,
// critical path analysis, stock alerts and narrated advice
type PlanningOrchestrator struct {
	log          *slog.Logger
	usageRepo    repositories.UsageRepository
	forecaster   *forecasting.Forecaster
	simulator    *mrp.Simulator
	criticalPath *criticalpath.Service
	alerts       *alerts.Service
	advisor      *advisory.Advisor
	eventStore   events.EventStore
	runID        string
	recorder     Recorder
	now          func() time.Time
}

type Option func(*PlanningOrchestrator)

// WithRecorder reports measurements to r
func WithRecorder(r Recorder) Option {
	return func(po *PlanningOrchestrator) {
		if r != nil {
			po.recorder = r
		}
	}
}

// WithEventStore records forecast runs in the audit trail
func WithEventStore(store events.EventStore, runID string) Option {
	return func(po *PlanningOrchestrator) {
		po.eventStore = store
		po.runID = runID
	}
}

// WithClock overrides the clock used for planning dates
func WithClock(now func() time.Time) Option {
	return func(po *PlanningOrchestrator) { po.now = now }
}

// NewPlanningOrchestrator creates a new planning orchestrator
func NewPlanningOrchestrator(
	logger *slog.Logger,
	usageRepo repositories.UsageRepository,
	forecaster *forecasting.Forecaster,
	simulator *mrp.Simulator,
	criticalPath *criticalpath.Service,
	alertService *alerts.Service,
	advisor *advisory.Advisor,
	opts ...Option,
) *PlanningOrchestrator {
	po := &PlanningOrchestrator{
		log:          logger.With(slog.String("component", "orchestrator")),
		usageRepo:    usageRepo,
		forecaster:   forecaster,
		simulator:    simulator,
		criticalPath: criticalPath,
		alerts:       alertService,
		advisor:      advisor,
		recorder:     nopRecorder{},
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(po)
	}
	if po.runID == "" {
		po.runID = simulator.RunID()
	}
	return po
}

// Simulator exposes the underlying simulator
func (po *PlanningOrchestrator) Simulator() *mrp.Simulator {
	return po.simulator
}

// Forecaster exposes the underlying forecaster
func (po *PlanningOrchestrator) Forecaster() *forecasting.Forecaster {
	return po.forecaster
}

// NarratorAvailable reports whether narrated advice can be produced
func (po *PlanningOrchestrator) NarratorAvailable() bool {
	return po.advisor.NarratorAvailable()
}

// ForecastRequest selects the usage history and model of a forecast run
type ForecastRequest struct {
	Model      entities.ModelType   `json:"model"`
	WeeksAhead int                  `json:"weeks_ahead"`
	ProductIDs []entities.ProductID `json:"product_ids,omitempty"`
	From       *time.Time           `json:"from,omitempty"`
	To         *time.Time           `json:"to,omitempty"`
	Evaluate   bool                 `json:"evaluate,omitempty"`
}

// ForecastResult is the output of one forecast run
type ForecastResult struct {
	RunID      string                           `json:"run_id"`
	Model      entities.ModelType               `json:"model"`
	ModelLabel string                           `json:"model_label"`
	WeeksAhead int                              `json:"weeks_ahead"`
	Products   int                              `json:"products"`
	Points     []entities.ForecastPoint         `json:"forecast"`
	Validation []entities.CrossValidationResult `json:"validation,omitempty"`
	Duration   time.Duration                    `json:"duration"`
	Summary    string                           `json:"summary"`
}

// Forecast loads weekly usage, fills gaps and forecasts every product
func (po *PlanningOrchestrator) Forecast(ctx context.Context, req ForecastRequest) (*ForecastResult, error) {
	if req.Model == "" {
		req.Model = entities.ModelBaseline
	}
	if req.WeeksAhead <= 0 {
		req.WeeksAhead = po.forecaster.Config().WeeksAhead
	}

	records, err := po.usageRepo.GetWeeklyUsage(ctx, repositories.UsageQuery{
		From:       req.From,
		To:         req.To,
		ProductIDs: req.ProductIDs,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load usage history: %w", err)
	}
	if len(records) == 0 {
		return nil, apperrors.ErrInsufficientData("no usage history for the selected products")
	}

	series, err := preprocessing.Prepare(records)
	if err != nil {
		return nil, err
	}
	products, _ := preprocessing.GroupByProduct(series)

	start := time.Now()
	points, err := po.forecaster.TrainPredict(series, req.WeeksAhead, req.Model)
	if err != nil {
		return nil, err
	}
	duration := time.Since(start)

	result := &ForecastResult{
		RunID:      po.runID,
		Model:      req.Model,
		ModelLabel: req.Model.Label(),
		WeeksAhead: req.WeeksAhead,
		Products:   len(products),
		Points:     points,
		Duration:   duration,
		Summary:    advisory.ForecastSummary(points),
	}

	if req.Evaluate || po.forecaster.Config().EnableCrossValidation {
		result.Validation = po.crossValidate(series, products, req.Model)
	}

	po.recorder.RecordForecast(string(req.Model), len(points), duration)
	po.publish(events.NewForecastCompletedEvent(po.runID, req.Model, len(products), len(points), duration))
	return result, nil
}

func (po *PlanningOrchestrator) crossValidate(series []entities.TimeSeriesPoint, products []entities.ProductID, model entities.ModelType) []entities.CrossValidationResult {
	results := make([]entities.CrossValidationResult, 0, len(products))
	for _, product := range products {
		cv, err := po.forecaster.CrossValidate(series, product, model, 0, 0)
		if err != nil {
			po.log.Debug("cross-validation skipped",
				slog.Int64("product_id", int64(product)),
				slog.String("error", err.Error()))
			continue
		}
		results = append(results, cv)
	}
	return results
}

// Simulate runs the basic production simulation
func (po *PlanningOrchestrator) Simulate(ctx context.Context, req mrp.ProductionRequest) (*entities.SimulationResult, error) {
	result, err := po.simulator.SimulateProduction(ctx, req)
	po.recordSimulation(KindBasic, result, err)
	return result, err
}

// SimulateWithDelivery runs the delivery-aware simulation
func (po *PlanningOrchestrator) SimulateWithDelivery(ctx context.Context, req mrp.ProductionRequest) (*entities.DeliverySimulationResult, error) {
	result, err := po.simulator.SimulateProductionWithDelivery(ctx, req)
	var base *entities.SimulationResult
	if result != nil {
		base = &result.SimulationResult
	}
	po.recordSimulation(KindDelivery, base, err)
	return result, err
}

// Substitutes lists substitutes of every short ingredient
func (po *PlanningOrchestrator) Substitutes(ctx context.Context, req mrp.ProductionRequest) (*entities.SubstituteAnalysis, error) {
	result, err := po.simulator.ShortagesWithSubstitutes(ctx, req)
	var base *entities.SimulationResult
	if result != nil {
		base = &result.SimulationResult
	}
	po.recordSimulation(KindSubstitutes, base, err)
	return result, err
}

// Analyze runs the comprehensive production analysis
func (po *PlanningOrchestrator) Analyze(ctx context.Context, req mrp.ProductionRequest) (*entities.ProductionReport, error) {
	report, err := po.simulator.ComprehensiveAnalysis(ctx, req)
	var base *entities.SimulationResult
	if report != nil {
		base = &report.Delivery.SimulationResult
	}
	po.recordSimulation(KindAnalysis, base, err)
	return report, err
}

// BOMTree explodes the request into its gross requirement tree
func (po *PlanningOrchestrator) BOMTree(ctx context.Context, req mrp.ProductionRequest) (*dto.BOMTree, error) {
	return po.simulator.Explode(ctx, req)
}

// AnalyzeCriticalPath explodes the request and ranks its delivery paths
func (po *PlanningOrchestrator) AnalyzeCriticalPath(ctx context.Context, req mrp.ProductionRequest, topPaths int) (*entities.CriticalPathAnalysis, error) {
	tree, err := po.simulator.Explode(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to explode BOM: %w", err)
	}
	return po.criticalPath.Analyze(tree, topPaths)
}

// StockAlerts evaluates stock coverage and updates the alert gauges
func (po *PlanningOrchestrator) StockAlerts(ctx context.Context, warehouseIDs []int64, includeAll bool) ([]entities.StockAlert, alerts.Summary, error) {
	list, err := po.alerts.CriticalShortages(ctx, warehouseIDs, includeAll)
	if err != nil {
		return nil, alerts.Summary{}, err
	}
	summary := alerts.Summarize(list)
	po.recorder.SetStockAlerts(map[string]int{
		string(entities.AlertCritical): summary.Critical,
		string(entities.AlertLow):      summary.Low,
		string(entities.AlertOK):       summary.OK,
		string(entities.AlertNoUsage):  summary.NoUsage,
	})
	return list, summary, nil
}

// ExplainAlerts renders the alert brief and asks the narrator about it
func (po *PlanningOrchestrator) ExplainAlerts(ctx context.Context, list []entities.StockAlert) (brief, explanation string, llm bool) {
	brief = alerts.Brief(list, po.now())
	explanation, llm = po.advisor.ExplainAlerts(ctx, list, brief)
	return brief, explanation, llm
}

// Advise runs the comprehensive analysis and asks the narrator for a recommendation
func (po *PlanningOrchestrator) Advise(ctx context.Context, req mrp.ProductionRequest) (*entities.Advice, error) {
	advice, err := po.advisor.AnalyzeWithLLM(ctx, req)
	if err != nil {
		po.recorder.RecordSimulation(KindAnalysis, outcomeOf(nil, err))
		return nil, err
	}
	po.recorder.RecordSimulation(KindAnalysis, outcomeOf(&advice.Report.Delivery.SimulationResult, nil))
	po.recorder.RecordAdvice(advice.LLMAvailable)
	return advice, nil
}

// PlanningResult contains the production analysis together with the
// critical path of the same request
type PlanningResult struct {
	Report            *entities.ProductionReport     `json:"report"`
	CriticalPath      *entities.CriticalPathAnalysis `json:"critical_path"`
	PlanningDate      time.Time                      `json:"planning_date"`
	TotalLeadTime     int                            `json:"total_lead_time"`
	EffectiveLeadTime int                            `json:"effective_lead_time"`
}

// RunCompletePlanning performs the comprehensive analysis followed by the
// stock-aware critical path analysis
func (po *PlanningOrchestrator) RunCompletePlanning(ctx context.Context, req mrp.ProductionRequest, topPaths int) (*PlanningResult, error) {
	report, err := po.Analyze(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to run production analysis: %w", err)
	}

	result := &PlanningResult{
		Report:       report,
		PlanningDate: po.now(),
	}
	if report.Delivery.MissingTechnology() {
		return result, nil
	}

	cp, err := po.AnalyzeCriticalPath(ctx, req, topPaths)
	if err != nil {
		return nil, fmt.Errorf("failed to analyze critical path: %w", err)
	}
	result.CriticalPath = cp
	result.TotalLeadTime = cp.CriticalPath.TotalLeadTime
	result.EffectiveLeadTime = cp.CriticalPath.EffectiveLeadTime
	return result, nil
}

// Summary returns a formatted summary of the planning results
func (result *PlanningResult) Summary() string {
	d := result.Report.Delivery
	summary := fmt.Sprintf("Planning summary for product %d:\n", result.Report.ProductID)
	summary += fmt.Sprintf("  Production: can produce %s, %d shortages, earliest %s\n",
		yesNo(d.CanProduce), len(d.Shortages), d.EarliestProductionLabel())
	if result.CriticalPath != nil {
		summary += fmt.Sprintf("  %s\n", result.CriticalPath.Summary())
	}
	return summary
}

func (po *PlanningOrchestrator) recordSimulation(kind string, result *entities.SimulationResult, err error) {
	po.recorder.RecordSimulation(kind, outcomeOf(result, err))
}

func (po *PlanningOrchestrator) publish(event events.Event) {
	if po.eventStore == nil {
		return
	}
	if err := po.eventStore.AppendEvent(po.runID, event); err != nil {
		po.log.Warn("failed to record event", slog.String("type", event.Type()), slog.String("error", err.Error()))
	}
}

func outcomeOf(result *entities.SimulationResult, err error) string {
	switch {
	case err != nil || result == nil:
		return "error"
	case result.MissingTechnology():
		return "missing_technology"
	case result.CanProduce:
		return "producible"
	default:
		return "shortage"
	}
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}
