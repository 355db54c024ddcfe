package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vsinha/supplyadvisor/pkg/domain/entities"
	apperrors "github.com/vsinha/supplyadvisor/pkg/domain/errors"
	"github.com/vsinha/supplyadvisor/pkg/domain/repositories"
)

func mustProduct(id entities.ProductID, code string, category entities.ProductCategory) entities.Product {
	p, err := entities.NewProduct(id, code, code+" name", "kg", category)
	if err != nil {
		panic(err)
	}
	return *p
}

func mustTechnology(id int64, product entities.ProductID, validFrom time.Time, lines map[entities.ProductID]int64) *entities.Technology {
	var tl []entities.TechnologyLine
	for ingredient := entities.ProductID(1); ingredient < 100; ingredient++ {
		if qty, ok := lines[ingredient]; ok {
			tl = append(tl, entities.TechnologyLine{IngredientID: ingredient, QuantityPerUnit: decimal.NewFromInt(qty)})
		}
	}
	tech, err := entities.NewTechnology(id, product, "tech", validFrom, tl)
	if err != nil {
		panic(err)
	}
	return tech
}

func newTestDataSource() *DataSource {
	d := NewDataSource()
	d.AddProduct(mustProduct(1, "FLOUR", entities.RawMaterial))
	d.AddProduct(mustProduct(2, "SUGAR", entities.RawMaterial))
	d.AddProduct(mustProduct(3, "BROWN-SUGAR", entities.RawMaterial))
	d.AddProduct(mustProduct(4, "HONEY", entities.RawMaterial))
	d.AddProduct(mustProduct(10, "CAKE", entities.FinishedGood))
	d.AddProduct(mustProduct(20, "TRANSPORT", entities.Service))

	jan := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	d.AddTechnology(mustTechnology(100, 10, jan, map[entities.ProductID]int64{1: 2, 2: 1}))
	d.AddTechnology(mustTechnology(101, 10, jan.AddDate(0, 3, 0), map[entities.ProductID]int64{1: 3, 2: 1}))

	d.SetStock(entities.StockEntry{ProductID: 1, WarehouseID: 1, Quantity: decimal.NewFromInt(100)})
	d.SetStock(entities.StockEntry{ProductID: 1, WarehouseID: 2, Quantity: decimal.NewFromInt(50)})
	d.SetStock(entities.StockEntry{ProductID: 2, WarehouseID: 1, Quantity: decimal.NewFromInt(5)})
	d.SetStock(entities.StockEntry{ProductID: 3, WarehouseID: 1, Quantity: decimal.NewFromInt(40)})
	d.SetStock(entities.StockEntry{ProductID: 4, WarehouseID: 2, Quantity: decimal.NewFromInt(80)})
	return d
}

func TestDataSource_GetBOMWithStock(t *testing.T) {
	d := newTestDataSource()
	ctx := context.Background()

	lines, err := d.GetBOMWithStock(ctx, repositories.BOMQuery{ProductID: 10})
	if err != nil {
		t.Fatalf("Failed to get BOM: %v", err)
	}
	if len(lines) != 2 {
		t.Fatalf("Expected 2 BOM lines, got %d", len(lines))
	}
	if !lines[0].QuantityPerUnit.Equal(decimal.NewFromInt(3)) {
		t.Errorf("Expected newest technology with 3 kg flour, got %s", lines[0].QuantityPerUnit)
	}
	if !lines[0].CurrentStock.Equal(decimal.NewFromInt(150)) {
		t.Errorf("Expected flour stock summed over all warehouses, got %s", lines[0].CurrentStock)
	}

	tech := int64(100)
	lines, err = d.GetBOMWithStock(ctx, repositories.BOMQuery{ProductID: 10, TechnologyID: &tech, WarehouseIDs: []int64{2}})
	if err != nil {
		t.Fatalf("Failed to get BOM: %v", err)
	}
	if !lines[0].QuantityPerUnit.Equal(decimal.NewFromInt(2)) {
		t.Errorf("Expected technology 100 with 2 kg flour, got %s", lines[0].QuantityPerUnit)
	}
	if !lines[0].CurrentStock.Equal(decimal.NewFromInt(50)) {
		t.Errorf("Expected flour stock of warehouse 2, got %s", lines[0].CurrentStock)
	}
	if !lines[1].CurrentStock.IsZero() {
		t.Errorf("Expected no sugar in warehouse 2, got %s", lines[1].CurrentStock)
	}

	missing := int64(999)
	if _, err := d.GetBOMWithStock(ctx, repositories.BOMQuery{ProductID: 10, TechnologyID: &missing}); !errors.Is(err, apperrors.ErrResourceNotFound) {
		t.Errorf("Expected not found for unknown technology, got %v", err)
	}

	empty, err := d.GetBOMWithStock(ctx, repositories.BOMQuery{ProductID: 1})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(empty) != 0 {
		t.Errorf("Expected empty BOM for a raw material, got %d lines", len(empty))
	}
}

func TestDataSource_GetBOMWithDeliveryInfo(t *testing.T) {
	d := newTestDataSource()
	ctx := context.Background()

	if _, err := d.GetBOMWithDeliveryInfo(ctx, repositories.BOMQuery{ProductID: 10}); !errors.Is(err, apperrors.ErrEnhancementUnavailable) {
		t.Fatalf("Expected enhancement unavailable without vendor data, got %v", err)
	}

	d.AddVendorTerms(entities.VendorTerms{ProductID: 2, VendorCode: "V-SLOW", DeliveryTimeDays: 21})
	d.AddVendorTerms(entities.VendorTerms{ProductID: 2, VendorCode: "V-MAIN", DeliveryTimeDays: 7, IsDefault: true})

	lines, err := d.GetBOMWithDeliveryInfo(ctx, repositories.BOMQuery{ProductID: 10})
	if err != nil {
		t.Fatalf("Failed to get delivery BOM: %v", err)
	}
	if lines[0].VendorCode != "" {
		t.Errorf("Expected flour without vendor terms, got %s", lines[0].VendorCode)
	}
	if lines[1].VendorCode != "V-MAIN" || lines[1].DeliveryTimeDays != 7 {
		t.Errorf("Expected default vendor V-MAIN with 7 days, got %s with %d", lines[1].VendorCode, lines[1].DeliveryTimeDays)
	}
}

func TestDataSource_GetSubstitutes(t *testing.T) {
	d := newTestDataSource()
	d.AddSubstitute("SUGAR", 3, true)
	d.AddSubstitute("SUGAR", 4, false)

	subs, err := d.GetSubstitutes(context.Background(), "SUGAR", nil)
	if err != nil {
		t.Fatalf("Failed to get substitutes: %v", err)
	}
	if len(subs) != 2 {
		t.Fatalf("Expected 2 substitutes, got %d", len(subs))
	}
	if subs[0].Code != "HONEY" || subs[0].Allowed {
		t.Errorf("Expected disallowed HONEY first by stock, got %+v", subs[0])
	}

	subs, _ = d.GetSubstitutes(context.Background(), "SUGAR", []int64{1})
	if subs[0].Code != "BROWN-SUGAR" {
		t.Errorf("Expected BROWN-SUGAR first in warehouse 1, got %s", subs[0].Code)
	}

	none, err := d.GetSubstitutes(context.Background(), "FLOUR", nil)
	if err != nil || len(none) != 0 {
		t.Errorf("Expected no substitutes for FLOUR, got %v (%v)", none, err)
	}
}

func TestDataSource_GetCurrentStock(t *testing.T) {
	d := newTestDataSource()

	levels, err := d.GetCurrentStock(context.Background(), []int64{1})
	if err != nil {
		t.Fatalf("Failed to get stock: %v", err)
	}
	for _, l := range levels {
		if l.Code == "TRANSPORT" {
			t.Errorf("Expected services to be excluded")
		}
	}
	if levels[0].Code != "FLOUR" || levels[0].Quantity != 100 {
		t.Errorf("Expected 100 FLOUR in warehouse 1, got %g %s", levels[0].Quantity, levels[0].Code)
	}
}

func TestDataSource_GetWeeklyUsage(t *testing.T) {
	d := newTestDataSource()
	d.AddUsage(entities.WeeklyUsageRecord{ProductID: 2, Year: 2024, ISOWeek: 3, Quantity: 10})
	d.AddUsage(entities.WeeklyUsageRecord{ProductID: 1, Year: 2024, ISOWeek: 2, Quantity: 5})
	d.AddUsage(entities.WeeklyUsageRecord{ProductID: 1, Year: 2024, ISOWeek: 2, Quantity: 7})
	d.AddUsage(entities.WeeklyUsageRecord{ProductID: 1, Year: 2023, ISOWeek: 52, Quantity: 1})

	all, err := d.GetWeeklyUsage(context.Background(), repositories.UsageQuery{})
	if err != nil {
		t.Fatalf("Failed to get usage: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("Expected duplicate weeks merged into 3 records, got %d", len(all))
	}
	if all[0].Year != 2023 || all[1].Quantity != 12 {
		t.Errorf("Expected ordered records with merged quantity 12, got %+v", all)
	}

	from := time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC) // week 2
	windowed, _ := d.GetWeeklyUsage(context.Background(), repositories.UsageQuery{
		From:       &from,
		ProductIDs: []entities.ProductID{1},
	})
	if len(windowed) != 1 || windowed[0].ISOWeek != 2 {
		t.Errorf("Expected only week 2 of product 1, got %+v", windowed)
	}
}
