package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/shopspring/decimal"

	"github.com/vsinha/supplyadvisor/pkg/application/services/alerts"
	"github.com/vsinha/supplyadvisor/pkg/application/services/orchestration"
	"github.com/vsinha/supplyadvisor/pkg/domain/entities"
)

func init() {
	color.NoColor = true
}

func sampleForecast() *orchestration.ForecastResult {
	week := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)
	return &orchestration.ForecastResult{
		RunID:      "run-1",
		Model:      entities.ModelBaseline,
		ModelLabel: entities.ModelBaseline.Label(),
		WeeksAhead: 2,
		Products:   1,
		Points: []entities.ForecastPoint{
			{ProductID: 1, Date: week, PredictedQuantity: 45, Model: entities.ModelBaseline.Label()},
			{ProductID: 1, Date: week.AddDate(0, 0, 7), PredictedQuantity: 45, Model: entities.ModelBaseline.Label()},
		},
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"text", Text, false},
		{"JSON", JSON, false},
		{"csv", CSV, false},
		{"xml", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseFormat(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, expected %q", tt.in, got, tt.want)
		}
	}
}

func TestPrinter_Forecast(t *testing.T) {
	var buf bytes.Buffer
	if err := NewPrinter(&buf, CSV).Forecast(sampleForecast()); err != nil {
		t.Fatalf("CSV forecast failed: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 || lines[0] != "TowarId,Date,Predicted_Qty,Model" {
		t.Fatalf("Unexpected CSV output:\n%s", buf.String())
	}
	if lines[1] != "1,2024-06-10,45.00,Baseline (SMA-4)" {
		t.Errorf("Unexpected first row %q", lines[1])
	}

	buf.Reset()
	if err := NewPrinter(&buf, JSON).Forecast(sampleForecast()); err != nil {
		t.Fatalf("JSON forecast failed: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("Invalid JSON: %v", err)
	}
	if points, _ := decoded["forecast"].([]any); len(points) != 2 {
		t.Errorf("Expected 2 points under forecast, got %v", decoded["forecast"])
	}

	buf.Reset()
	if err := NewPrinter(&buf, Text).Forecast(sampleForecast()); err != nil {
		t.Fatalf("Text forecast failed: %v", err)
	}
	if !strings.Contains(buf.String(), "Forecast: Baseline (SMA-4), 2 weeks ahead") {
		t.Errorf("Expected heading in text output, got:\n%s", buf.String())
	}
}

func TestPrinter_Alerts(t *testing.T) {
	days := 3.5
	list := []entities.StockAlert{
		{
			StockLevel:     entities.StockLevel{ProductID: 2, Code: "SUGAR", Name: "White sugar", Unit: "kg", Quantity: 5},
			AvgWeeklyUsage: 10,
			DaysOfStock:    &days,
			Status:         entities.AlertCritical,
		},
		{
			StockLevel: entities.StockLevel{ProductID: 4, Code: "SALT", Name: "Salt", Unit: "kg"},
			Status:     entities.AlertNoUsage,
		},
	}
	summary := alerts.Summarize(list)

	var buf bytes.Buffer
	if err := NewPrinter(&buf, Text).Alerts(list, summary, "Order sugar now."); err != nil {
		t.Fatalf("Text alerts failed: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"Total 2: 1 critical", "KRYTYCZNY", "SALT", "Order sugar now."} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected %q in output:\n%s", want, out)
		}
	}

	buf.Reset()
	if err := NewPrinter(&buf, CSV).Alerts(list, summary, ""); err != nil {
		t.Fatalf("CSV alerts failed: %v", err)
	}
	if !strings.Contains(buf.String(), "2,SUGAR,White sugar,5.00,kg,10.00,4,KRYTYCZNY") {
		t.Errorf("Unexpected CSV alerts:\n%s", buf.String())
	}
	if !strings.Contains(buf.String(), "∞") {
		t.Errorf("Expected infinite days for unused product:\n%s", buf.String())
	}
}

func TestPrinter_Simulation(t *testing.T) {
	line := entities.ShortageLine{
		BOMLine: entities.BOMLine{
			IngredientCode: "SUGAR",
			IngredientName: "White sugar",
			Unit:           "kg",
			CurrentStock:   decimal.NewFromInt(45),
		},
		QuantityRequired: decimal.NewFromInt(50),
		Shortage:         decimal.NewFromInt(-5),
	}
	result := &entities.SimulationResult{
		ProductID:      100,
		TargetQuantity: decimal.NewFromInt(50),
		MaxProducible:  decimal.NewFromInt(45),
		BOM:            []entities.ShortageLine{line},
		Shortages:      []entities.ShortageLine{line},
		LimitingFactor: &line,
	}

	var buf bytes.Buffer
	if err := NewPrinter(&buf, Text).Simulation(result); err != nil {
		t.Fatalf("Text simulation failed: %v", err)
	}
	if !strings.Contains(buf.String(), "Ingredient shortages") || !strings.Contains(buf.String(), "SUGAR") {
		t.Errorf("Unexpected text output:\n%s", buf.String())
	}

	buf.Reset()
	if err := NewPrinter(&buf, CSV).Simulation(result); err != nil {
		t.Fatalf("CSV simulation failed: %v", err)
	}
	if !strings.Contains(buf.String(), "SUGAR,White sugar,50.00,45.00,5.00,kg,0") {
		t.Errorf("Unexpected CSV output:\n%s", buf.String())
	}
}
