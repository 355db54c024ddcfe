package mrp

import (
	"fmt"
	"sort"
	"strings"

	"github.com/vsinha/supplyadvisor/pkg/domain/entities"
)

// ShortageReport returns the short lines ordered by shortage percent, worst first
func ShortageReport(result entities.SimulationResult) []entities.ShortageLine {
	report := append([]entities.ShortageLine(nil), result.Shortages...)
	sort.SliceStable(report, func(i, j int) bool {
		return report[i].ShortagePercent().GreaterThan(report[j].ShortagePercent())
	})
	return report
}

// Recommendations renders a simulation as a markdown brief
func Recommendations(result entities.SimulationResult) string {
	if result.Error != "" {
		return fmt.Sprintf("**Error:** %s", result.Error)
	}

	var b strings.Builder
	b.WriteString("## Production analysis\n\n")
	writeStatus(&b, result)

	if result.LimitingFactor != nil && !result.CanProduce {
		lf := result.LimitingFactor
		b.WriteString("### Bottleneck\n")
		fmt.Fprintf(&b, "- **Ingredient:** %s - %s\n", lf.IngredientCode, lf.IngredientName)
		fmt.Fprintf(&b, "- **Stock:** %s %s\n", lf.CurrentStock.StringFixed(2), lf.Unit)
		fmt.Fprintf(&b, "- **Required:** %s %s\n\n", lf.QuantityRequired.StringFixed(2), lf.Unit)
	}

	report := ShortageReport(result)
	if len(report) > 0 {
		b.WriteString("### Shortages\n")
		b.WriteString("| Code | Name | Required | Stock | To order |\n")
		b.WriteString("|------|------|----------|-------|----------|\n")
		for _, l := range head(report, 10) {
			fmt.Fprintf(&b, "| %s | %s | %s | %s | %s |\n",
				l.IngredientCode, truncate(l.IngredientName, 30),
				l.QuantityRequired.StringFixed(2), l.CurrentStock.StringFixed(2), l.ToOrder().StringFixed(2))
		}
	}
	return b.String()
}

// DeliveryRecommendations renders a delivery-aware simulation as a markdown brief
func DeliveryRecommendations(result entities.DeliverySimulationResult) string {
	if result.Error != "" {
		return fmt.Sprintf("**Error:** %s", result.Error)
	}

	var b strings.Builder
	b.WriteString("## Production analysis with delivery times\n\n")
	writeStatus(&b, result.SimulationResult)

	if !result.CanProduce {
		fmt.Fprintf(&b, "**Earliest production date:** %s\n", result.EarliestProductionLabel())
		fmt.Fprintf(&b, "**Longest delivery:** %d days\n\n", result.MaxDeliveryTimeDays)
	}

	if result.LimitingFactor != nil && !result.CanProduce {
		lf := result.LimitingFactor
		b.WriteString("### Bottleneck\n")
		fmt.Fprintf(&b, "- **Ingredient:** %s - %s\n", lf.IngredientCode, lf.IngredientName)
		fmt.Fprintf(&b, "- **Vendor:** %s\n", orDash(lf.VendorName))
		fmt.Fprintf(&b, "- **Delivery time:** %d days\n\n", lf.DeliveryTimeDays)
	}

	if len(result.ShortagesWithDelivery) > 0 {
		lines := append([]entities.ShortageLine(nil), result.ShortagesWithDelivery...)
		sort.SliceStable(lines, func(i, j int) bool {
			return lines[i].DeliveryTimeDays > lines[j].DeliveryTimeDays
		})

		b.WriteString("### Shortages with delivery times\n")
		b.WriteString("| Code | Name | To order | Vendor | Delivery |\n")
		b.WriteString("|------|------|----------|--------|----------|\n")
		for _, l := range head(lines, 15) {
			fmt.Fprintf(&b, "| %s | %s | %s | %s | %d days |\n",
				l.IngredientCode, truncate(l.IngredientName, 25),
				l.ToOrder().StringFixed(2), orDash(l.VendorCode), l.DeliveryTimeDays)
		}
	}
	return b.String()
}

func writeStatus(b *strings.Builder, result entities.SimulationResult) {
	if result.CanProduce {
		b.WriteString("**Status:** production possible\n")
	} else {
		b.WriteString("**Status:** ingredient shortages\n")
	}
	if result.Unconstrained {
		b.WriteString("**Max producible:** unconstrained\n\n")
		return
	}
	fmt.Fprintf(b, "**Max producible:** %s\n\n", result.MaxProducible.StringFixed(2))
}

func head(lines []entities.ShortageLine, n int) []entities.ShortageLine {
	if len(lines) > n {
		return lines[:n]
	}
	return lines
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
