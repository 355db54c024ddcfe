package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"

	"github.com/vsinha/supplyadvisor/pkg/application/services/alerts"
	"github.com/vsinha/supplyadvisor/pkg/application/services/criticalpath"
	"github.com/vsinha/supplyadvisor/pkg/application/services/mrp"
	"github.com/vsinha/supplyadvisor/pkg/application/services/orchestration"
	"github.com/vsinha/supplyadvisor/pkg/domain/entities"
	csvrepo "github.com/vsinha/supplyadvisor/pkg/infrastructure/repositories/csv"
)

// Format selects how results are written
type Format string

const (
	Text Format = "text"
	JSON Format = "json"
	CSV  Format = "csv"
)

// ParseFormat accepts text, json or csv
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case Text, JSON, CSV:
		return f, nil
	default:
		return "", fmt.Errorf("unsupported output format: %s", s)
	}
}

var (
	heading = color.New(color.FgCyan, color.Bold)
	good    = color.New(color.FgGreen, color.Bold)
	bad     = color.New(color.FgRed, color.Bold)
	warn    = color.New(color.FgYellow)
)

// Printer writes command results in one format
type Printer struct {
	out    io.Writer
	format Format
}

func NewPrinter(out io.Writer, format Format) *Printer {
	return &Printer{out: out, format: format}
}

// Forecast writes forecast points. CSV output matches the forecast file layout.
func (p *Printer) Forecast(r *orchestration.ForecastResult) error {
	switch p.format {
	case JSON:
		return p.json(r)
	case CSV:
		return csvrepo.WriteForecasts(p.out, r.Points)
	}

	heading.Fprintf(p.out, "Forecast: %s, %d weeks ahead\n", r.ModelLabel, r.WeeksAhead)
	fmt.Fprintf(p.out, "Products: %d, points: %d, run: %s\n\n", r.Products, len(r.Points), r.RunID)
	fmt.Fprintf(p.out, "%-10s %-12s %12s\n", "Product", "Week", "Predicted")
	fmt.Fprintf(p.out, "%-10s %-12s %12s\n", "----------", "------------", "------------")
	for _, pt := range r.Points {
		fmt.Fprintf(p.out, "%-10d %-12s %12.2f\n", pt.ProductID, pt.Date.Format("2006-01-02"), pt.PredictedQuantity)
	}

	if len(r.Validation) > 0 {
		fmt.Fprintln(p.out)
		heading.Fprintln(p.out, "Cross-validation")
		fmt.Fprintf(p.out, "%-10s %8s %8s %8s %8s\n", "Product", "MAPE", "RMSE", "MAE", "R2")
		for _, v := range r.Validation {
			fmt.Fprintf(p.out, "%-10d %8.2f %8.2f %8.2f %8.2f\n", v.ProductID, v.Mean.MAPE, v.Mean.RMSE, v.Mean.MAE, v.Mean.R2)
		}
	}
	return nil
}

// Simulation writes a basic simulation result
func (p *Printer) Simulation(r *entities.SimulationResult) error {
	switch p.format {
	case JSON:
		return p.json(r)
	case CSV:
		return p.shortagesCSV(r.Shortages)
	}

	p.status(r.CanProduce, r.Error)
	fmt.Fprintln(p.out, mrp.Recommendations(*r))
	return nil
}

// Delivery writes a delivery-aware simulation with its purchase plan
func (p *Printer) Delivery(r *entities.DeliverySimulationResult, plan []entities.PurchaseSuggestion) error {
	switch p.format {
	case JSON:
		return p.json(struct {
			Result       *entities.DeliverySimulationResult `json:"result"`
			PurchasePlan []entities.PurchaseSuggestion      `json:"purchase_plan"`
		}{r, plan})
	case CSV:
		return p.purchasePlanCSV(plan)
	}

	p.status(r.CanProduce, r.Error)
	if !r.DeliveryAware {
		warn.Fprintln(p.out, "Delivery information unavailable, lead times are not included.")
	}
	fmt.Fprintln(p.out, mrp.DeliveryRecommendations(*r))

	if len(plan) > 0 {
		heading.Fprintln(p.out, "Purchase plan")
		for _, s := range plan {
			fmt.Fprintf(p.out, "- %s: order %s %s from %s on %s, expected %s\n",
				s.IngredientCode, s.Quantity.StringFixed(2), s.Unit, orDash(s.VendorName),
				s.OrderDate.Format("2006-01-02"), s.ExpectedDate.Format("2006-01-02"))
		}
	}
	return nil
}

// Substitutes writes the substitute analysis
func (p *Printer) Substitutes(a *entities.SubstituteAnalysis) error {
	switch p.format {
	case JSON:
		return p.json(a)
	case CSV:
		w := csv.NewWriter(p.out)
		_ = w.Write([]string{"ingredient_code", "to_order", "substitute_code", "substitute_name", "substitute_stock"})
		for _, l := range a.ShortagesWithSubstitutes {
			for _, s := range l.Substitutes {
				_ = w.Write([]string{l.IngredientCode, l.ToOrder().StringFixed(2), s.Code, s.Name, s.CurrentStock.StringFixed(2)})
			}
		}
		w.Flush()
		return w.Error()
	}

	p.status(a.CanProduce, a.Error)
	fmt.Fprintln(p.out, a.Summary)
	return nil
}

// Planning writes the comprehensive report followed by the critical path
func (p *Printer) Planning(r *orchestration.PlanningResult) error {
	switch p.format {
	case JSON:
		return p.json(r)
	case CSV:
		return p.purchasePlanCSV(r.Report.PurchasePlan)
	}

	p.status(r.Report.Delivery.CanProduce, r.Report.Error)
	fmt.Fprintln(p.out, r.Report.Markdown)
	if r.CriticalPath != nil {
		fmt.Fprintln(p.out)
		heading.Fprintln(p.out, "Critical path")
		for _, line := range criticalpath.Describe(r.CriticalPath) {
			fmt.Fprintln(p.out, line)
		}
	}
	return nil
}

// Alerts writes stock alerts with their summary and optional explanation
func (p *Printer) Alerts(list []entities.StockAlert, summary alerts.Summary, explanation string) error {
	switch p.format {
	case JSON:
		return p.json(struct {
			Summary     alerts.Summary        `json:"summary"`
			Alerts      []entities.StockAlert `json:"alerts"`
			Explanation string                `json:"explanation,omitempty"`
		}{summary, list, explanation})
	case CSV:
		w := csv.NewWriter(p.out)
		_ = w.Write([]string{"product_id", "code", "name", "stock", "unit", "avg_weekly_usage", "days_of_stock", "status"})
		for _, a := range list {
			_ = w.Write([]string{
				strconv.FormatInt(int64(a.ProductID), 10), a.Code, a.Name,
				strconv.FormatFloat(a.Quantity, 'f', 2, 64), a.Unit,
				strconv.FormatFloat(a.AvgWeeklyUsage, 'f', 2, 64),
				alerts.FormatDays(a.DaysOfStock), string(a.Status),
			})
		}
		w.Flush()
		return w.Error()
	}

	heading.Fprintln(p.out, "Stock alerts")
	fmt.Fprintf(p.out, "Total %d: ", summary.Total)
	bad.Fprintf(p.out, "%d critical", summary.Critical)
	fmt.Fprint(p.out, ", ")
	warn.Fprintf(p.out, "%d low", summary.Low)
	fmt.Fprintf(p.out, ", %d ok, %d without usage\n\n", summary.OK, summary.NoUsage)

	fmt.Fprintf(p.out, "%-14s %-28s %10s %10s %8s  %s\n", "Code", "Name", "Stock", "Weekly", "Days", "Status")
	for _, a := range list {
		c := color.New(color.Reset)
		switch a.Status {
		case entities.AlertCritical:
			c = bad
		case entities.AlertLow:
			c = warn
		}
		fmt.Fprintf(p.out, "%-14s %-28s %10.2f %10.2f %8s  ", a.Code, truncate(a.Name, 28), a.Quantity, a.AvgWeeklyUsage, alerts.FormatDays(a.DaysOfStock))
		c.Fprintln(p.out, string(a.Status))
	}

	if explanation != "" {
		fmt.Fprintln(p.out)
		fmt.Fprintln(p.out, explanation)
	}
	return nil
}

// Advice writes the analysis and the narrated recommendation
func (p *Printer) Advice(a *entities.Advice) error {
	switch p.format {
	case JSON:
		return p.json(a)
	case CSV:
		if a.Report == nil {
			return fmt.Errorf("advice for product %d has no report", a.ProductID)
		}
		return p.purchasePlanCSV(a.Report.PurchasePlan)
	}

	fmt.Fprintln(p.out, a.Analysis)
	fmt.Fprintln(p.out)
	heading.Fprintln(p.out, "Recommendation")
	if !a.LLMAvailable {
		warn.Fprintln(p.out, "Language model unavailable, showing the rule-based analysis.")
	}
	fmt.Fprintln(p.out, a.Recommendation)
	return nil
}

func (p *Printer) status(canProduce bool, errMsg string) {
	switch {
	case errMsg != "":
		bad.Fprintf(p.out, "Error: %s\n\n", errMsg)
	case canProduce:
		good.Fprintln(p.out, "Production possible")
	default:
		bad.Fprintln(p.out, "Ingredient shortages")
	}
}

func (p *Printer) json(v any) error {
	enc := json.NewEncoder(p.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (p *Printer) shortagesCSV(lines []entities.ShortageLine) error {
	w := csv.NewWriter(p.out)
	_ = w.Write([]string{"ingredient_code", "ingredient_name", "required", "stock", "to_order", "unit", "delivery_days"})
	for _, l := range lines {
		_ = w.Write([]string{
			l.IngredientCode, l.IngredientName,
			l.QuantityRequired.StringFixed(2), l.CurrentStock.StringFixed(2), l.ToOrder().StringFixed(2),
			l.Unit, strconv.Itoa(l.DeliveryTimeDays),
		})
	}
	w.Flush()
	return w.Error()
}

func (p *Printer) purchasePlanCSV(plan []entities.PurchaseSuggestion) error {
	w := csv.NewWriter(p.out)
	_ = w.Write([]string{"ingredient_code", "quantity", "unit", "vendor_code", "order_date", "expected_date"})
	for _, s := range plan {
		_ = w.Write([]string{
			s.IngredientCode, s.Quantity.StringFixed(2), s.Unit, s.VendorCode,
			s.OrderDate.Format("2006-01-02"), s.ExpectedDate.Format("2006-01-02"),
		})
	}
	w.Flush()
	return w.Error()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
