package mrp

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/vsinha/supplyadvisor/pkg/domain/entities"
	apperrors "github.com/vsinha/supplyadvisor/pkg/domain/errors"
	"github.com/vsinha/supplyadvisor/pkg/domain/repositories"
)

// deliveryLevel keeps delivery-enriched lookups apart from plain ones in the cache
const deliveryLevel = -1

// SimulateProductionWithDelivery runs the simulation on a BOM enriched with
// vendor lead times and derives the earliest production date. When the
// enrichment source is missing or fails, the plain BOM is used and the
// result is marked as not delivery aware.
func (s *Simulator) SimulateProductionWithDelivery(ctx context.Context, req ProductionRequest) (*entities.DeliverySimulationResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	lines, aware, err := s.loadDeliveryBOM(ctx, req.query())
	if err != nil {
		return nil, fmt.Errorf("failed to load BOM for product %d: %w", req.ProductID, err)
	}

	base := EvaluateBOM(req.ProductID, lines, req.Quantity)
	s.logResult(base)
	s.publish(base, aware)

	result := &entities.DeliverySimulationResult{
		SimulationResult:      base,
		DeliveryAware:         aware,
		ShortagesWithDelivery: []entities.ShortageLine{},
	}
	if base.MissingTechnology() {
		result.EarliestProduction = result.EarliestProductionLabel()
		return result, nil
	}

	for _, line := range base.Shortages {
		result.ShortagesWithDelivery = append(result.ShortagesWithDelivery, line)
		if line.DeliveryTimeDays > result.MaxDeliveryTimeDays {
			result.MaxDeliveryTimeDays = line.DeliveryTimeDays
		}
	}

	if len(base.Shortages) > 0 {
		earliest := s.now().AddDate(0, 0, result.MaxDeliveryTimeDays)
		result.EarliestProductionDate = &earliest
	}
	result.EarliestProduction = result.EarliestProductionLabel()
	return result, nil
}

func (s *Simulator) loadDeliveryBOM(ctx context.Context, query repositories.BOMQuery) ([]*entities.BOMLine, bool, error) {
	if s.deliveryRepo == nil {
		s.log.Warn("delivery information not configured, using plain BOM",
			slog.Int64("product_id", int64(query.ProductID)))
		lines, err := s.loadBOM(ctx, query, 0)
		return lines, false, err
	}

	lines, err := s.cache.GetOrLoad(ctx, query, deliveryLevel, s.deliveryRepo.GetBOMWithDeliveryInfo)
	if err == nil {
		return lines, true, nil
	}

	s.log.Warn("delivery information unavailable, using plain BOM",
		slog.Int64("product_id", int64(query.ProductID)),
		slog.String("error", apperrors.ErrEnhancementNotAvailable("delivery information", err).Error()),
	)
	lines, err = s.loadBOM(ctx, query, 0)
	return lines, false, err
}

// PurchasePlan proposes one purchase order per short line, ordered today and
// raised to the vendor minimum. Lines arriving last come first.
func (s *Simulator) PurchasePlan(result *entities.DeliverySimulationResult) []entities.PurchaseSuggestion {
	today := s.now()
	plan := make([]entities.PurchaseSuggestion, 0, len(result.Shortages))
	for _, line := range result.Shortages {
		suggestion, err := entities.NewPurchaseSuggestion(line, today)
		if err != nil {
			s.log.Debug("skipping purchase suggestion", slog.String("ingredient_code", line.IngredientCode), slog.String("reason", err.Error()))
			continue
		}
		plan = append(plan, *suggestion)
	}

	sort.SliceStable(plan, func(i, j int) bool {
		if !plan[i].ExpectedDate.Equal(plan[j].ExpectedDate) {
			return plan[i].ExpectedDate.After(plan[j].ExpectedDate)
		}
		return plan[i].IngredientCode < plan[j].IngredientCode
	})
	return plan
}
