package mrp

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vsinha/supplyadvisor/pkg/application/services/shared"
	"github.com/vsinha/supplyadvisor/pkg/domain/entities"
	apperrors "github.com/vsinha/supplyadvisor/pkg/domain/errors"
	"github.com/vsinha/supplyadvisor/pkg/domain/repositories"
	"github.com/vsinha/supplyadvisor/pkg/infrastructure/events"
)

// shortageTolerance is the deficit, as a fraction of the requirement, up to
// which a line is reported as BRAK rather than KRYTYCZNY
var shortageTolerance = decimal.NewFromFloat(0.1)

// DefaultMaxBOMDepth bounds recursive BOM explosion
const DefaultMaxBOMDepth = 5

// ProductionRequest asks whether a quantity of a final product can be made
type ProductionRequest struct {
	ProductID    entities.ProductID `json:"product_id"`
	Quantity     decimal.Decimal    `json:"quantity"`
	TechnologyID *int64             `json:"technology_id,omitempty"`
	WarehouseIDs []int64            `json:"warehouse_ids,omitempty"`
}

// Validate checks the request before any data is fetched
func (r ProductionRequest) Validate() error {
	if r.ProductID <= 0 {
		return apperrors.ErrValidation(fmt.Sprintf("product id must be positive, got %d", r.ProductID))
	}
	if !r.Quantity.IsPositive() {
		return apperrors.ErrValidation(fmt.Sprintf("quantity must be positive, got %s", r.Quantity))
	}
	return nil
}

func (r ProductionRequest) query() repositories.BOMQuery {
	return repositories.BOMQuery{
		ProductID:    r.ProductID,
		TechnologyID: r.TechnologyID,
		WarehouseIDs: r.WarehouseIDs,
	}
}

// Simulator evaluates production feasibility of final products against
// current ingredient stock
type Simulator struct {
	log *slog.Logger

	bomRepo        repositories.BOMRepository
	deliveryRepo   repositories.DeliveryRepository
	substituteRepo repositories.SubstituteRepository
	documentRepo   repositories.ShortageDocumentRepository

	cache    *shared.BOMCache
	now      func() time.Time
	maxDepth int

	eventStore events.EventStore
	runID      string
}

// SimulatorOption customizes a Simulator
type SimulatorOption func(*Simulator)

// WithDeliveryRepository enables delivery-aware simulations
func WithDeliveryRepository(repo repositories.DeliveryRepository) SimulatorOption {
	return func(s *Simulator) { s.deliveryRepo = repo }
}

// WithSubstituteRepository enables substitute lookups for shortages
func WithSubstituteRepository(repo repositories.SubstituteRepository) SimulatorOption {
	return func(s *Simulator) { s.substituteRepo = repo }
}

// WithShortageDocumentRepository enables the cross-check against the
// externally maintained shortage list
func WithShortageDocumentRepository(repo repositories.ShortageDocumentRepository) SimulatorOption {
	return func(s *Simulator) { s.documentRepo = repo }
}

// WithCache replaces the session BOM cache
func WithCache(cache *shared.BOMCache) SimulatorOption {
	return func(s *Simulator) { s.cache = cache }
}

// WithClock overrides the time source used for earliest production dates
func WithClock(now func() time.Time) SimulatorOption {
	return func(s *Simulator) { s.now = now }
}

// WithMaxDepth bounds recursive BOM explosion
func WithMaxDepth(depth int) SimulatorOption {
	return func(s *Simulator) { s.maxDepth = depth }
}

// WithEventStore records simulation outcomes in the audit trail under runID.
// An empty runID starts a new run.
func WithEventStore(store events.EventStore, runID string) SimulatorOption {
	return func(s *Simulator) {
		s.eventStore = store
		s.runID = runID
	}
}

// NewSimulator creates a simulator over a BOM source
func NewSimulator(logger *slog.Logger, bomRepo repositories.BOMRepository, opts ...SimulatorOption) *Simulator {
	s := &Simulator{
		log:      logger.With(slog.String("component", "mrp_simulator")),
		bomRepo:  bomRepo,
		cache:    shared.NewBOMCache(10000),
		now:      time.Now,
		maxDepth: DefaultMaxBOMDepth,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.maxDepth <= 0 {
		s.maxDepth = DefaultMaxBOMDepth
	}
	if s.runID == "" {
		s.runID = events.NewRunID()
	}
	return s
}

// RunID identifies the audit stream of this simulator
func (s *Simulator) RunID() string {
	return s.runID
}

// ClearCache drops every memoized BOM lookup of the session
func (s *Simulator) ClearCache() {
	s.cache.Invalidate()
}

// CacheStats returns BOM cache hits and misses
func (s *Simulator) CacheStats() (hits, misses int64) {
	return s.cache.Stats()
}

// SimulateProduction checks whether the requested quantity can be produced
// from current stock. A product without a BOM yields a result with
// ErrorCode MISSING_TECHNOLOGY, not an error.
func (s *Simulator) SimulateProduction(ctx context.Context, req ProductionRequest) (*entities.SimulationResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	lines, err := s.loadBOM(ctx, req.query(), 0)
	if err != nil {
		return nil, fmt.Errorf("failed to load BOM for product %d: %w", req.ProductID, err)
	}

	result := EvaluateBOM(req.ProductID, lines, req.Quantity)
	s.logResult(result)
	s.publish(result, false)
	return &result, nil
}

func (s *Simulator) loadBOM(ctx context.Context, query repositories.BOMQuery, level int) ([]*entities.BOMLine, error) {
	return s.cache.GetOrLoad(ctx, query, level, s.bomRepo.GetBOMWithStock)
}

func (s *Simulator) logResult(result entities.SimulationResult) {
	if result.MissingTechnology() {
		s.log.Warn("product has no technology defined", slog.Int64("product_id", int64(result.ProductID)))
		return
	}
	s.log.Debug("simulation completed",
		slog.Int64("product_id", int64(result.ProductID)),
		slog.String("quantity", result.TargetQuantity.String()),
		slog.Bool("can_produce", result.CanProduce),
		slog.Int("shortages", len(result.Shortages)),
	)
}

func (s *Simulator) publish(result entities.SimulationResult, deliveryAware bool) {
	if s.eventStore == nil {
		return
	}

	batch := []events.Event{events.NewSimulationCompletedEvent(s.runID, result, deliveryAware)}
	for _, line := range result.Shortages {
		batch = append(batch, events.NewShortageIdentifiedEvent(s.runID, result.ProductID, line))
	}
	for _, e := range batch {
		if err := s.eventStore.AppendEvent(s.runID, e); err != nil {
			s.log.Warn("failed to record audit event", slog.String("event_type", e.Type()), slog.String("error", err.Error()))
		}
	}
}

// EvaluateBOM computes per-line requirements, shortages and statuses, the
// maximum producible quantity and the limiting ingredient. It does not
// modify lines.
func EvaluateBOM(productID entities.ProductID, lines []*entities.BOMLine, quantity decimal.Decimal) entities.SimulationResult {
	result := entities.SimulationResult{
		ProductID:      productID,
		TargetQuantity: quantity,
		BOM:            []entities.ShortageLine{},
		Shortages:      []entities.ShortageLine{},
	}

	if len(lines) == 0 {
		err := apperrors.ErrNoTechnology(int64(productID))
		result.Error = err.Message
		result.ErrorCode = err.Code
		return result
	}

	limiting := -1
	for _, line := range lines {
		evaluated := evaluateLine(*line, quantity)
		result.BOM = append(result.BOM, evaluated)
		if evaluated.IsShortage() {
			result.Shortages = append(result.Shortages, evaluated)
		}

		if evaluated.Unconstrained {
			continue
		}
		// ties keep the first line in BOM order
		if limiting < 0 || evaluated.MaxProducibleUnits.LessThan(result.BOM[limiting].MaxProducibleUnits) {
			limiting = len(result.BOM) - 1
		}
	}

	if limiting < 0 {
		result.Unconstrained = true
		result.MaxProducible = decimal.Zero
	} else {
		factor := result.BOM[limiting]
		result.LimitingFactor = &factor
		result.MaxProducible = decimal.Max(factor.MaxProducibleUnits, decimal.Zero)
	}

	result.CanProduce = len(result.Shortages) == 0
	return result
}

func evaluateLine(line entities.BOMLine, quantity decimal.Decimal) entities.ShortageLine {
	required := line.QuantityPerUnit.Mul(quantity)
	shortage := line.CurrentStock.Sub(required)

	evaluated := entities.ShortageLine{
		BOMLine:          line,
		QuantityRequired: required,
		Shortage:         shortage,
		Status:           classify(shortage, required),
	}

	if line.QuantityPerUnit.IsZero() {
		evaluated.Unconstrained = true
	} else {
		evaluated.MaxProducibleUnits = line.CurrentStock.Div(line.QuantityPerUnit)
	}
	return evaluated
}

func classify(shortage, required decimal.Decimal) entities.ShortageStatus {
	switch {
	case !shortage.IsNegative():
		return entities.StatusOK
	case shortage.GreaterThanOrEqual(required.Mul(shortageTolerance).Neg()):
		return entities.StatusShort
	default:
		return entities.StatusCritical
	}
}
