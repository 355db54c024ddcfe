package mrp

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/vsinha/supplyadvisor/pkg/application/services/shared"
	"github.com/vsinha/supplyadvisor/pkg/domain/entities"
)

// ShortagesWithSubstitutes simulates production and attaches the allowed
// substitutes of every short ingredient. Lookup failures leave the line
// without substitutes.
func (s *Simulator) ShortagesWithSubstitutes(ctx context.Context, req ProductionRequest) (*entities.SubstituteAnalysis, error) {
	base, err := s.SimulateProduction(ctx, req)
	if err != nil {
		return nil, err
	}
	return s.attachSubstitutes(ctx, *base, req.WarehouseIDs), nil
}

func (s *Simulator) attachSubstitutes(ctx context.Context, base entities.SimulationResult, warehouseIDs []int64) *entities.SubstituteAnalysis {
	analysis := &entities.SubstituteAnalysis{
		SimulationResult:         base,
		ShortagesWithSubstitutes: []entities.ShortageWithSubstitutes{},
	}

	if base.MissingTechnology() {
		analysis.Summary = base.Error
		return analysis
	}
	if len(base.Shortages) == 0 {
		analysis.Summary = "No shortages, substitutes not needed."
		return analysis
	}

	for _, line := range base.Shortages {
		subs := s.lookupSubstitutes(ctx, line.IngredientCode, warehouseIDs)
		if len(subs) > 0 {
			analysis.SubstitutesAvailable = true
		}
		analysis.ShortagesWithSubstitutes = append(analysis.ShortagesWithSubstitutes, entities.ShortageWithSubstitutes{
			ShortageLine: line,
			Substitutes:  subs,
		})
	}

	analysis.Summary = substituteSummary(analysis.ShortagesWithSubstitutes)
	return analysis
}

func (s *Simulator) lookupSubstitutes(ctx context.Context, code string, warehouseIDs []int64) []entities.Substitute {
	if s.substituteRepo == nil {
		return []entities.Substitute{}
	}

	subs, err := s.substituteRepo.GetSubstitutes(ctx, code, warehouseIDs)
	if err != nil {
		s.log.Warn("substitute lookup failed",
			slog.String("ingredient_code", code),
			slog.String("error", err.Error()),
		)
		return []entities.Substitute{}
	}
	return shared.AllowedSubstitutes(subs)
}

func substituteSummary(lines []entities.ShortageWithSubstitutes) string {
	var b strings.Builder
	b.WriteString("## Substitute analysis\n\n")
	for _, l := range lines {
		fmt.Fprintf(&b, "### %s - %s\n", l.IngredientCode, l.IngredientName)
		fmt.Fprintf(&b, "- **Missing:** %s %s\n", l.ToOrder().StringFixed(2), l.Unit)
		if len(l.Substitutes) == 0 {
			b.WriteString("- *No substitutes defined*\n\n")
			continue
		}
		b.WriteString("- **Substitutes:**\n")
		for _, sub := range l.Substitutes {
			fmt.Fprintf(&b, "  - %s (%s): stock %s %s\n", sub.Code, sub.Name, sub.CurrentStock.StringFixed(2), sub.Unit)
		}
		b.WriteString("\n")
	}
	return b.String()
}
