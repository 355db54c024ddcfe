package mrp

import (
	"context"
	"errors"
	"testing"
	"time"

	testhelpers "github.com/vsinha/supplyadvisor/pkg/application/services/testing"
	"github.com/vsinha/supplyadvisor/pkg/domain/entities"
	"github.com/vsinha/supplyadvisor/pkg/domain/repositories"
)

type failingDeliveryRepo struct{}

func (failingDeliveryRepo) GetBOMWithDeliveryInfo(context.Context, repositories.BOMQuery) ([]*entities.BOMLine, error) {
	return nil, errors.New("vendor table missing")
}

func fixedClock() time.Time {
	return testhelpers.ScenarioStart
}

func TestSimulator_SimulateProductionWithDelivery(t *testing.T) {
	ctx := context.Background()
	data := testhelpers.BuildCakeScenario()
	sim := NewSimulator(testLogger(), data, WithDeliveryRepository(data), WithClock(fixedClock))

	result, err := sim.SimulateProductionWithDelivery(ctx, ProductionRequest{ProductID: testhelpers.Cake, Quantity: dec("50")})
	if err != nil {
		t.Fatalf("SimulateProductionWithDelivery failed: %v", err)
	}
	if !result.DeliveryAware {
		t.Errorf("Expected a delivery-aware result")
	}
	if result.MaxDeliveryTimeDays != 14 {
		t.Errorf("Expected max delivery of 14 days, got %d", result.MaxDeliveryTimeDays)
	}
	if result.EarliestProduction != "2024-06-17" {
		t.Errorf("Expected earliest production 2024-06-17, got %s", result.EarliestProduction)
	}
	if len(result.ShortagesWithDelivery) != 1 || result.ShortagesWithDelivery[0].VendorCode != "V-SUGAR" {
		t.Errorf("Expected SUGAR shortage with vendor V-SUGAR, got %+v", result.ShortagesWithDelivery)
	}

	ok, err := sim.SimulateProductionWithDelivery(ctx, ProductionRequest{ProductID: testhelpers.Cake, Quantity: dec("40")})
	if err != nil {
		t.Fatalf("SimulateProductionWithDelivery failed: %v", err)
	}
	if ok.EarliestProductionDate != nil || ok.EarliestProduction != "immediately" {
		t.Errorf("Expected immediate production, got %s", ok.EarliestProduction)
	}
	if ok.MaxDeliveryTimeDays != 0 {
		t.Errorf("Expected no delivery wait, got %d days", ok.MaxDeliveryTimeDays)
	}
}

func TestSimulator_DeliveryFallback(t *testing.T) {
	ctx := context.Background()
	data := testhelpers.BuildCakeScenario()
	req := ProductionRequest{ProductID: testhelpers.Cake, Quantity: dec("50")}

	testCases := []struct {
		name string
		sim  *Simulator
	}{
		{"failing source", NewSimulator(testLogger(), data, WithDeliveryRepository(failingDeliveryRepo{}), WithClock(fixedClock))},
		{"no source", NewSimulator(testLogger(), data, WithClock(fixedClock))},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			result, err := tc.sim.SimulateProductionWithDelivery(ctx, req)
			if err != nil {
				t.Fatalf("Expected fallback instead of error, got %v", err)
			}
			if result.DeliveryAware {
				t.Errorf("Expected result not to be delivery aware")
			}
			if len(result.Shortages) != 1 || !result.MaxProducible.Equal(dec("45")) {
				t.Errorf("Expected the plain simulation result, got %+v", result.SimulationResult)
			}
			if result.EarliestProduction != "2024-06-03" {
				t.Errorf("Expected today without lead times, got %s", result.EarliestProduction)
			}
		})
	}
}

func TestSimulator_PurchasePlan(t *testing.T) {
	data := testhelpers.BuildCakeScenario()
	sim := NewSimulator(testLogger(), data, WithDeliveryRepository(data), WithClock(fixedClock))

	result, err := sim.SimulateProductionWithDelivery(context.Background(), ProductionRequest{ProductID: testhelpers.Cake, Quantity: dec("80")})
	if err != nil {
		t.Fatalf("SimulateProductionWithDelivery failed: %v", err)
	}

	plan := sim.PurchasePlan(result)
	if len(plan) != 2 {
		t.Fatalf("Expected orders for FLOUR and SUGAR, got %d", len(plan))
	}
	// sugar arrives last, so it comes first
	if plan[0].IngredientCode != "SUGAR" || plan[1].IngredientCode != "FLOUR" {
		t.Errorf("Expected SUGAR before FLOUR, got %s, %s", plan[0].IngredientCode, plan[1].IngredientCode)
	}
	if !plan[0].Quantity.Equal(dec("35")) {
		t.Errorf("Expected 35 kg of sugar, got %s", plan[0].Quantity)
	}
	if !plan[1].Quantity.Equal(dec("100")) || !plan[1].Missing.Equal(dec("10")) {
		t.Errorf("Expected 10 kg flour missing raised to 100, got %s for %s", plan[1].Quantity, plan[1].Missing)
	}
}
