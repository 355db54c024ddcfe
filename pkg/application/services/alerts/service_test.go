package alerts

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	testhelpers "github.com/vsinha/supplyadvisor/pkg/application/services/testing"
	"github.com/vsinha/supplyadvisor/pkg/domain/entities"
	"github.com/vsinha/supplyadvisor/pkg/domain/repositories"
	"github.com/vsinha/supplyadvisor/pkg/infrastructure/repositories/memory"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func fixedClock() time.Time {
	return testhelpers.ScenarioStart
}

// windowStart is the Monday of the first week in the default alert window
var windowStart = testhelpers.ScenarioStart.AddDate(0, 0, -7*(DefaultWindowWeeks-1))

func weeksOf(qty float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = qty
	}
	return out
}

// buildAlertScenario adds twelve weeks of 70 units usage to FLOUR, SUGAR and
// EGGS, i.e. 10 units a day. SALT usage a year ago falls outside the window.
func buildAlertScenario() *memory.DataSource {
	d := testhelpers.BuildCakeScenario()
	for _, id := range []entities.ProductID{testhelpers.Flour, testhelpers.Sugar, testhelpers.Eggs} {
		testhelpers.AddWeeklyUsage(d, id, windowStart, weeksOf(70, DefaultWindowWeeks))
	}
	testhelpers.AddWeeklyUsage(d, testhelpers.Salt, testhelpers.ScenarioStart.AddDate(-1, 0, 0), []float64{500})
	return d
}

func TestService_CriticalShortages(t *testing.T) {
	d := buildAlertScenario()
	service := NewService(testLogger(), d, d, WithClock(fixedClock))

	alerts, err := service.CriticalShortages(context.Background(), nil, false)
	if err != nil {
		t.Fatalf("CriticalShortages failed: %v", err)
	}
	if len(alerts) != 2 {
		t.Fatalf("Expected SUGAR and EGGS alerts, got %d: %+v", len(alerts), alerts)
	}

	sugar := alerts[0]
	if sugar.Code != "SUGAR" || sugar.Status != entities.AlertCritical || sugar.Priority != 1 {
		t.Errorf("Expected SUGAR critical first, got %s %s %d", sugar.Code, sugar.Status, sugar.Priority)
	}
	if sugar.DaysOfStock == nil || *sugar.DaysOfStock != 4.5 {
		t.Errorf("Expected 4.5 days of sugar, got %s", FormatDays(sugar.DaysOfStock))
	}
	if sugar.AvgWeeklyUsage != 70 {
		t.Errorf("Expected average weekly usage 70, got %f", sugar.AvgWeeklyUsage)
	}

	eggs := alerts[1]
	if eggs.Code != "EGGS" || eggs.Status != entities.AlertLow {
		t.Errorf("Expected EGGS low second, got %s %s", eggs.Code, eggs.Status)
	}
}

func TestService_CriticalShortages_IncludeAll(t *testing.T) {
	d := buildAlertScenario()
	service := NewService(testLogger(), d, d, WithClock(fixedClock))

	alerts, err := service.CriticalShortages(context.Background(), nil, true)
	if err != nil {
		t.Fatalf("CriticalShortages failed: %v", err)
	}

	want := []string{"SUGAR", "EGGS", "FLOUR", "BROWN-SUGAR", "CAKE", "HONEY", "PIE", "SALT", "XYLITOL"}
	if len(alerts) != len(want) {
		t.Fatalf("Expected %d alerts, got %d", len(want), len(alerts))
	}
	for i, code := range want {
		if alerts[i].Code != code {
			t.Errorf("Position %d: expected %s, got %s", i, code, alerts[i].Code)
		}
	}

	if alerts[2].Status != entities.AlertOK || *alerts[2].DaysOfStock != 15 {
		t.Errorf("Expected FLOUR OK with 15 days, got %s %s", alerts[2].Status, FormatDays(alerts[2].DaysOfStock))
	}
	salt := alerts[7]
	if salt.Status != entities.AlertNoUsage || salt.DaysOfStock != nil || salt.Priority != 4 {
		t.Errorf("Expected SALT without usage in window, got %+v", salt)
	}

	summary := Summarize(alerts)
	expected := Summary{Total: 9, Critical: 1, Low: 1, OK: 1, NoUsage: 6}
	if summary != expected {
		t.Errorf("Expected summary %+v, got %+v", expected, summary)
	}
}

func TestService_CriticalShortages_WarehouseFilter(t *testing.T) {
	d := buildAlertScenario()
	service := NewService(testLogger(), d, d, WithClock(fixedClock))

	alerts, err := service.CriticalShortages(context.Background(), []int64{2}, false)
	if err != nil {
		t.Fatalf("CriticalShortages failed: %v", err)
	}

	want := []string{"EGGS", "SUGAR", "FLOUR"}
	if len(alerts) != len(want) {
		t.Fatalf("Expected %d alerts, got %d", len(want), len(alerts))
	}
	for i, code := range want {
		if alerts[i].Code != code || alerts[i].Status != entities.AlertCritical {
			t.Errorf("Position %d: expected critical %s, got %s %s", i, code, alerts[i].Code, alerts[i].Status)
		}
	}
}

func TestService_MinimumStockDays(t *testing.T) {
	d := buildAlertScenario()
	service := NewService(testLogger(), d, d, WithClock(fixedClock), WithMinimumStockDays(30))

	alerts, err := service.CriticalShortages(context.Background(), nil, false)
	if err != nil {
		t.Fatalf("CriticalShortages failed: %v", err)
	}

	statuses := map[string]entities.AlertStatus{}
	for _, a := range alerts {
		statuses[a.Code] = a.Status
	}
	if statuses["FLOUR"] != entities.AlertLow {
		t.Errorf("Expected FLOUR low against 30 days, got %s", statuses["FLOUR"])
	}
	if statuses["EGGS"] != entities.AlertCritical {
		t.Errorf("Expected EGGS critical against 30 days, got %s", statuses["EGGS"])
	}
}

func TestService_StaleUsageCountsIdleWeeks(t *testing.T) {
	d := testhelpers.BuildCakeScenario()
	// four weeks of 84 units ending eight weeks before the current week
	testhelpers.AddWeeklyUsage(d, testhelpers.Eggs, windowStart, []float64{84, 84, 84, 84})
	service := NewService(testLogger(), d, d, WithClock(fixedClock))

	alerts, err := service.CriticalShortages(context.Background(), nil, true)
	if err != nil {
		t.Fatalf("CriticalShortages failed: %v", err)
	}

	var eggs *entities.StockAlert
	for i := range alerts {
		if alerts[i].Code == "EGGS" {
			eggs = &alerts[i]
		}
	}
	if eggs == nil {
		t.Fatal("Expected an EGGS row")
	}
	if eggs.AvgWeeklyUsage != 28 {
		t.Errorf("Expected 336 units over 12 weeks = 28, got %g", eggs.AvgWeeklyUsage)
	}
	if eggs.DaysOfStock == nil || *eggs.DaysOfStock != 25 {
		t.Errorf("Expected 25 days of eggs, got %s", FormatDays(eggs.DaysOfStock))
	}
	if eggs.Status != entities.AlertOK {
		t.Errorf("Expected EGGS OK, got %s", eggs.Status)
	}
}

type failingUsageRepo struct{}

func (failingUsageRepo) GetWeeklyUsage(context.Context, repositories.UsageQuery) ([]entities.WeeklyUsageRecord, error) {
	return nil, errors.New("connection refused")
}

func TestService_UsageFailure(t *testing.T) {
	d := buildAlertScenario()
	service := NewService(testLogger(), d, failingUsageRepo{}, WithClock(fixedClock))

	if _, err := service.CriticalShortages(context.Background(), nil, false); err == nil {
		t.Error("Expected error when usage history cannot be loaded")
	}
}

func TestBrief(t *testing.T) {
	if got := Brief(nil, fixedClock()); got != "No critical stock shortages." {
		t.Errorf("Unexpected empty brief %q", got)
	}

	days := 4.5
	brief := Brief([]entities.StockAlert{{
		StockLevel:     entities.StockLevel{Code: "SUGAR", Name: "White sugar", Quantity: 45},
		AvgWeeklyUsage: 70,
		DaysOfStock:    &days,
		Status:         entities.AlertCritical,
		Priority:       1,
	}}, fixedClock())

	for _, want := range []string{"## Critical stock analysis", "**Alerts:** 1", "| SUGAR | White sugar | 45.0 | 70.00 | 4 | **KRYTYCZNY** |"} {
		if !strings.Contains(brief, want) {
			t.Errorf("Expected brief to contain %q, got:\n%s", want, brief)
		}
	}
}
