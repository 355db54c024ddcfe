package advisory

import (
	"fmt"
	"sort"
	"strings"

	"github.com/vsinha/supplyadvisor/pkg/domain/entities"
)

// BuildPrompt renders a production report as a purchasing-expert prompt
func BuildPrompt(report *entities.ProductionReport) string {
	d := report.Delivery

	var b strings.Builder
	b.WriteString("As a purchasing and production planning expert, analyse the following situation:\n\n")
	b.WriteString("## Input\n")
	fmt.Fprintf(&b, "- Product to produce: ID %d\n", report.ProductID)
	fmt.Fprintf(&b, "- Target quantity: %s\n", report.TargetQuantity.String())
	if report.Error != "" {
		fmt.Fprintf(&b, "- Error: %s\n", report.Error)
	}
	fmt.Fprintf(&b, "- Can produce: %s\n", yesNo(d.CanProduce))
	if d.Unconstrained {
		b.WriteString("- Max producible: unconstrained\n")
	} else {
		fmt.Fprintf(&b, "- Max producible: %s\n", d.MaxProducible.StringFixed(0))
	}

	if len(d.Shortages) > 0 {
		fmt.Fprintf(&b, "\n## Ingredient shortages (%d items)\n", len(d.Shortages))
		for i, l := range d.Shortages {
			if i == 5 {
				break
			}
			fmt.Fprintf(&b, "- %s: missing %s\n", l.IngredientCode, l.ToOrder().StringFixed(2))
		}
	}

	if lf := d.LimitingFactor; lf != nil {
		b.WriteString("\n## Limiting factor\n")
		fmt.Fprintf(&b, "- Ingredient: %s (%s)\n", lf.IngredientName, lf.IngredientCode)
		fmt.Fprintf(&b, "- Stock: %s, required: %s\n", lf.CurrentStock.StringFixed(2), lf.QuantityRequired.StringFixed(2))
	}

	if d.MaxDeliveryTimeDays > 0 {
		b.WriteString("\n## Delivery\n")
		fmt.Fprintf(&b, "- Longest delivery: %d days\n", d.MaxDeliveryTimeDays)
		fmt.Fprintf(&b, "- Earliest production date: %s\n", d.EarliestProductionLabel())
	}

	if len(report.SmartSubstitutes) > 0 {
		b.WriteString("\n## Substitutes for the limiting factor\n")
		for _, s := range report.SmartSubstitutes {
			fmt.Fprintf(&b, "- %s: stock %s, covers shortage: %s\n", s.Code, s.CurrentStock.StringFixed(2), yesNo(s.CoversShortage))
		}
	}

	b.WriteString("\n## Task\n")
	b.WriteString("Based on the data above:\n")
	b.WriteString("1. Assess the situation and the priority of actions\n")
	b.WriteString("2. Propose concrete steps for the purchasing department\n")
	b.WriteString("3. Point out risks and alternatives (e.g. substitutes)\n\n")
	b.WriteString("Answer in bullet points with concrete numbers.\n")
	return b.String()
}

// ForecastSummary renders forecast points per product for the narrator
func ForecastSummary(points []entities.ForecastPoint) string {
	if len(points) == 0 {
		return "No forecast available."
	}

	type summary struct {
		model string
		weeks int
		total float64
		peak  entities.ForecastPoint
	}
	byProduct := make(map[entities.ProductID]*summary)
	var ids []entities.ProductID
	for _, p := range points {
		s, ok := byProduct[p.ProductID]
		if !ok {
			s = &summary{model: p.Model, peak: p}
			byProduct[p.ProductID] = s
			ids = append(ids, p.ProductID)
		}
		s.weeks++
		s.total += p.PredictedQuantity
		if p.PredictedQuantity > s.peak.PredictedQuantity {
			s.peak = p
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	var b strings.Builder
	b.WriteString("## Demand forecast\n\n")
	b.WriteString("| Product | Model | Weeks | Total | Avg/week | Peak week |\n")
	b.WriteString("|---------|-------|-------|-------|----------|-----------|\n")
	for _, id := range ids {
		s := byProduct[id]
		fmt.Fprintf(&b, "| %d | %s | %d | %.2f | %.2f | %s (%.2f) |\n",
			id, s.model, s.weeks, s.total, s.total/float64(s.weeks),
			s.peak.Date.Format("2006-01-02"), s.peak.PredictedQuantity)
	}
	return b.String()
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}
