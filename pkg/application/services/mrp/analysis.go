package mrp

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/vsinha/supplyadvisor/pkg/application/services/shared"
	"github.com/vsinha/supplyadvisor/pkg/domain/entities"
)

// ComprehensiveAnalysis combines the delivery-aware simulation, substitute
// options and the external shortage list into one production report
func (s *Simulator) ComprehensiveAnalysis(ctx context.Context, req ProductionRequest) (*entities.ProductionReport, error) {
	delivery, err := s.SimulateProductionWithDelivery(ctx, req)
	if err != nil {
		return nil, err
	}

	report := &entities.ProductionReport{
		ProductID:       req.ProductID,
		TargetQuantity:  req.Quantity,
		Delivery:        *delivery,
		Recommendations: []string{},
	}
	if delivery.MissingTechnology() {
		report.Error = delivery.Error
		report.Substitutes = entities.SubstituteAnalysis{
			SimulationResult:         delivery.SimulationResult,
			ShortagesWithSubstitutes: []entities.ShortageWithSubstitutes{},
			Summary:                  delivery.Error,
		}
		report.Markdown = fmt.Sprintf("**Error:** %s", delivery.Error)
		return report, nil
	}

	report.Substitutes = *s.attachSubstitutes(ctx, delivery.SimulationResult, req.WarehouseIDs)

	if lf := delivery.LimitingFactor; lf != nil && !delivery.CanProduce {
		for _, sw := range report.Substitutes.ShortagesWithSubstitutes {
			if sw.IngredientCode == lf.IngredientCode {
				report.SmartSubstitutes = shared.RankSubstitutes(sw.Substitutes, lf.ToOrder())
				break
			}
		}
	}

	report.PurchasePlan = s.PurchasePlan(delivery)
	report.ShortageDocuments = s.compareShortageDocuments(ctx, delivery.Shortages)
	report.Recommendations = recommendationsFor(report)
	report.Markdown = renderReport(report)

	s.log.Info("production analysis completed",
		slog.Int64("product_id", int64(req.ProductID)),
		slog.Bool("can_produce", delivery.CanProduce),
		slog.Int("shortages", len(delivery.Shortages)),
		slog.Bool("substitutes_available", report.Substitutes.SubstitutesAvailable),
	)
	return report, nil
}

func (s *Simulator) compareShortageDocuments(ctx context.Context, shortages []entities.ShortageLine) entities.ShortageDocumentComparison {
	comparison := entities.ShortageDocumentComparison{
		Matched:        []string{},
		OnlyCalculated: []string{},
		OnlyExternal:   []string{},
	}
	if s.documentRepo == nil {
		return comparison
	}

	docs, err := s.documentRepo.GetOpenShortageDocuments(ctx)
	if err != nil {
		s.log.Warn("shortage documents unavailable", slog.String("error", err.Error()))
		return comparison
	}
	return CompareShortageDocuments(shortages, docs)
}

// CompareShortageDocuments cross-checks calculated shortages against the
// ingredient codes on external shortage documents
func CompareShortageDocuments(shortages []entities.ShortageLine, docs []entities.ShortageDocument) entities.ShortageDocumentComparison {
	comparison := entities.ShortageDocumentComparison{
		Matched:        []string{},
		OnlyCalculated: []string{},
		OnlyExternal:   []string{},
		Available:      true,
	}

	external := make(map[string]bool, len(docs))
	for _, d := range docs {
		external[d.IngredientCode] = true
	}
	calculated := make(map[string]bool, len(shortages))
	for _, l := range shortages {
		calculated[l.IngredientCode] = true
	}

	for code := range calculated {
		if external[code] {
			comparison.Matched = append(comparison.Matched, code)
		} else {
			comparison.OnlyCalculated = append(comparison.OnlyCalculated, code)
		}
	}
	for code := range external {
		if !calculated[code] {
			comparison.OnlyExternal = append(comparison.OnlyExternal, code)
		}
	}

	sort.Strings(comparison.Matched)
	sort.Strings(comparison.OnlyCalculated)
	sort.Strings(comparison.OnlyExternal)
	return comparison
}

func recommendationsFor(report *entities.ProductionReport) []string {
	d := report.Delivery
	if d.CanProduce {
		return []string{"All ingredients available, production can start."}
	}

	recs := []string{fmt.Sprintf("Order %d missing ingredients.", len(d.Shortages))}
	if d.MaxDeliveryTimeDays > 0 {
		recs = append(recs, fmt.Sprintf("Schedule production after %s.", d.EarliestProductionLabel()))
	}
	if report.Substitutes.SubstitutesAvailable {
		recs = append(recs, "Consider substitutes to shorten the lead time.")
	}
	if n := len(report.ShortageDocuments.OnlyCalculated); n > 0 {
		recs = append(recs, fmt.Sprintf("Add %d ingredients missing from the shortage list.", n))
	}
	return recs
}

func renderReport(report *entities.ProductionReport) string {
	d := report.Delivery
	var b strings.Builder

	fmt.Fprintf(&b, "# Production analysis: product %d, quantity %s\n\n", report.ProductID, report.TargetQuantity.String())

	b.WriteString("## 1. Production status\n")
	if d.CanProduce {
		b.WriteString("- **Can produce:** yes\n")
	} else {
		b.WriteString("- **Can produce:** no\n")
	}
	if d.Unconstrained {
		b.WriteString("- **Max producible:** unconstrained\n")
	} else {
		fmt.Fprintf(&b, "- **Max producible:** %s\n", d.MaxProducible.StringFixed(2))
	}
	fmt.Fprintf(&b, "- **Earliest production date:** %s\n", d.EarliestProductionLabel())
	fmt.Fprintf(&b, "- **Longest delivery:** %d days\n\n", d.MaxDeliveryTimeDays)

	if lf := d.LimitingFactor; lf != nil && !d.CanProduce {
		b.WriteString("## 2. Bottleneck\n")
		fmt.Fprintf(&b, "- **Ingredient:** %s - %s\n", lf.IngredientCode, lf.IngredientName)
		fmt.Fprintf(&b, "- **Missing:** %s %s\n", lf.ToOrder().StringFixed(2), lf.Unit)
		fmt.Fprintf(&b, "- **Vendor:** %s, delivery %d days\n", orDash(lf.VendorName), lf.DeliveryTimeDays)
		if len(report.SmartSubstitutes) > 0 {
			b.WriteString("- **Best substitutes:**\n")
			for i, sub := range report.SmartSubstitutes {
				if i == 3 {
					break
				}
				fmt.Fprintf(&b, "  - %s (%s): stock %s, coverage %s%%\n",
					sub.Code, sub.Name, sub.CurrentStock.StringFixed(2), sub.Coverage.String())
			}
		}
		b.WriteString("\n")
	}

	if lines := report.Substitutes.ShortagesWithSubstitutes; len(lines) > 0 {
		b.WriteString("## 3. Shortages and substitutes\n")
		b.WriteString("| Ingredient | Missing | Substitutes |\n")
		b.WriteString("|------------|---------|-------------|\n")
		for i, l := range lines {
			if i == 10 {
				break
			}
			fmt.Fprintf(&b, "| %s | %s | %s |\n", l.IngredientCode, l.ToOrder().StringFixed(2), substituteCodes(l.Substitutes, 3))
		}
		b.WriteString("\n")
	}

	if docs := report.ShortageDocuments; docs.Available {
		b.WriteString("## 4. Shortage list sync\n")
		fmt.Fprintf(&b, "- **Matched:** %d\n", len(docs.Matched))
		fmt.Fprintf(&b, "- **Calculated only:** %s\n", joinOrDash(docs.OnlyCalculated))
		fmt.Fprintf(&b, "- **On the list only:** %s\n\n", joinOrDash(docs.OnlyExternal))
	}

	b.WriteString("## 5. Recommendations\n")
	for _, r := range report.Recommendations {
		fmt.Fprintf(&b, "- %s\n", r)
	}
	return b.String()
}

func substituteCodes(subs []entities.Substitute, n int) string {
	if len(subs) == 0 {
		return "-"
	}
	codes := make([]string, 0, n)
	for i, s := range subs {
		if i == n {
			break
		}
		codes = append(codes, s.Code)
	}
	return strings.Join(codes, ", ")
}

func joinOrDash(codes []string) string {
	if len(codes) == 0 {
		return "-"
	}
	return strings.Join(codes, ", ")
}
