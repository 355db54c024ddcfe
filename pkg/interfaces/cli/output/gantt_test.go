package output

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vsinha/supplyadvisor/pkg/domain/entities"
)

func samplePlan() []entities.PurchaseSuggestion {
	today := time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)
	return []entities.PurchaseSuggestion{
		{
			IngredientCode: "SUGAR",
			Quantity:       decimal.NewFromInt(55),
			Unit:           "kg",
			VendorName:     "Sweet & Co",
			OrderDate:      today,
			ExpectedDate:   today.AddDate(0, 0, 14),
			Status:         entities.StatusCritical,
		},
		{
			IngredientCode: "EGGS",
			Quantity:       decimal.NewFromInt(30),
			Unit:           "pcs",
			OrderDate:      today,
			ExpectedDate:   today.AddDate(0, 0, 2),
			Status:         entities.StatusShort,
		},
	}
}

func TestGanttChart_GenerateSVG(t *testing.T) {
	plan := samplePlan()
	chart := NewGanttChart(plan, "SUGAR")

	if !chart.StartTime.Before(plan[0].OrderDate) || !chart.EndTime.After(plan[0].ExpectedDate) {
		t.Errorf("Expected padded range around the plan, got %s - %s", chart.StartTime, chart.EndTime)
	}

	svg := chart.GenerateSVG(plan)
	if !strings.HasPrefix(svg, "<svg") || !strings.HasSuffix(svg, "</svg>") {
		t.Fatal("Expected a complete SVG document")
	}
	for _, want := range []string{"SUGAR", "EGGS", "#F44336", "#2196F3", "Sweet &amp; Co"} {
		if !strings.Contains(svg, want) {
			t.Errorf("Expected %q in SVG", want)
		}
	}

	// earliest arrival is drawn on the first row
	if strings.Index(svg, ">EGGS<") > strings.Index(svg, ">SUGAR<") {
		t.Error("Expected EGGS row before SUGAR row")
	}
}

func TestGanttChart_CriticalWithoutBottleneck(t *testing.T) {
	plan := samplePlan()
	svg := NewGanttChart(plan, "").GenerateSVG(plan)
	if !strings.Contains(svg, `fill="#FF9800" class="order-bar"`) {
		t.Error("Expected critical shortage color")
	}
}

func TestGanttChart_EmptyPlan(t *testing.T) {
	svg := NewGanttChart(nil, "").GenerateSVG(nil)
	if !strings.Contains(svg, "No purchases needed") {
		t.Errorf("Expected empty chart, got %s", svg)
	}
}

func TestGanttChart_WriteFile(t *testing.T) {
	plan := samplePlan()
	path := filepath.Join(t.TempDir(), "plan.svg")

	if err := NewGanttChart(plan, "SUGAR").WriteFile(path, plan); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Expected file: %v", err)
	}
	if !strings.Contains(string(content), "Purchase plan") {
		t.Error("Expected chart title in file")
	}
}
