package mrp

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vsinha/supplyadvisor/pkg/application/dto"
	testhelpers "github.com/vsinha/supplyadvisor/pkg/application/services/testing"
	"github.com/vsinha/supplyadvisor/pkg/domain/entities"
	apperrors "github.com/vsinha/supplyadvisor/pkg/domain/errors"
	"github.com/vsinha/supplyadvisor/pkg/infrastructure/repositories/memory"
)

func TestSimulator_Explode(t *testing.T) {
	sim := NewSimulator(testLogger(), testhelpers.BuildBreadScenario())

	tree, err := sim.Explode(context.Background(), ProductionRequest{ProductID: testhelpers.Bread, Quantity: dec("10")})
	if err != nil {
		t.Fatalf("Explode failed: %v", err)
	}
	if len(tree.Roots) != 2 {
		t.Fatalf("Expected DOUGH and BAG as roots, got %d", len(tree.Roots))
	}

	dough := tree.Roots[0]
	if !dough.Line.IsAssembly || len(dough.Children) != 2 {
		t.Fatalf("Expected DOUGH to be an assembly with 2 children, got %+v", dough)
	}
	if !dough.GrossRequired.Equal(dec("8")) {
		t.Errorf("Expected 8 kg of dough, got %s", dough.GrossRequired)
	}
	if dough.Children[0].Level != 2 {
		t.Errorf("Expected children at level 2, got %d", dough.Children[0].Level)
	}

	leaves := tree.Leaves()
	want := map[entities.ProductID]string{
		testhelpers.Flour: "4.8",
		testhelpers.Water: "3.2",
		testhelpers.Bag:   "10",
	}
	for id, qty := range want {
		if !leaves[id].Equal(dec(qty)) {
			t.Errorf("Expected %s of product %d, got %s", qty, id, leaves[id])
		}
	}
}

func TestSimulator_Explode_DepthLimit(t *testing.T) {
	sim := NewSimulator(testLogger(), testhelpers.BuildBreadScenario(), WithMaxDepth(1))

	tree, err := sim.Explode(context.Background(), ProductionRequest{ProductID: testhelpers.Bread, Quantity: dec("1")})
	if err != nil {
		t.Fatalf("Explode failed: %v", err)
	}
	dough := tree.Roots[0]
	if !dough.Truncated || len(dough.Children) != 0 {
		t.Errorf("Expected DOUGH truncated at depth 1, got %+v", dough)
	}
}

func TestSimulator_Explode_Cycle(t *testing.T) {
	d := memory.NewDataSource()
	for id, code := range map[entities.ProductID]string{1: "A", 2: "B"} {
		p, _ := entities.NewProduct(id, code, code, "pcs", entities.Assembly)
		d.AddProduct(*p)
	}
	day := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	a, _ := entities.NewTechnology(1, 1, "a", day, []entities.TechnologyLine{{IngredientID: 2, QuantityPerUnit: decimal.NewFromInt(1)}})
	b, _ := entities.NewTechnology(2, 2, "b", day, []entities.TechnologyLine{{IngredientID: 1, QuantityPerUnit: decimal.NewFromInt(1)}})
	d.AddTechnology(a)
	d.AddTechnology(b)

	sim := NewSimulator(testLogger(), d)
	tree, err := sim.Explode(context.Background(), ProductionRequest{ProductID: 1, Quantity: dec("1")})
	if err != nil {
		t.Fatalf("Explode failed: %v", err)
	}

	var truncated int
	tree.Walk(func(n *dto.BOMTreeNode, _ []*dto.BOMTreeNode) {
		if n.Truncated {
			truncated++
		}
	})
	if truncated != 1 {
		t.Errorf("Expected the cycle to be cut once, got %d truncated nodes", truncated)
	}
}

func TestSimulator_Explode_MissingTechnology(t *testing.T) {
	sim := NewSimulator(testLogger(), testhelpers.BuildCakeScenario())

	_, err := sim.Explode(context.Background(), ProductionRequest{ProductID: testhelpers.Pie, Quantity: dec("1")})
	if !errors.Is(err, apperrors.ErrMissingTechnology) {
		t.Errorf("Expected missing technology error, got %v", err)
	}
}

func TestSimulator_Explode_WithDeliveryInfo(t *testing.T) {
	data := testhelpers.BuildBreadScenario()
	sim := NewSimulator(testLogger(), data, WithDeliveryRepository(data))

	tree, err := sim.Explode(context.Background(), ProductionRequest{ProductID: testhelpers.Bread, Quantity: dec("10")})
	if err != nil {
		t.Fatalf("Explode failed: %v", err)
	}

	days := map[string]int{}
	tree.Walk(func(n *dto.BOMTreeNode, _ []*dto.BOMTreeNode) {
		days[n.Line.IngredientCode] = n.Line.DeliveryTimeDays
	})
	want := map[string]int{"DOUGH": 1, "FLOUR": 5, "WATER": 0, "BAG": 21}
	for code, d := range want {
		if days[code] != d {
			t.Errorf("Expected %d delivery days for %s, got %d", d, code, days[code])
		}
	}
}
