package entities

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestProduct_Validation(t *testing.T) {
	valid, err := NewProduct(1, "MAKA-01", "Wheat flour", "kg", RawMaterial)
	if err != nil {
		t.Fatalf("Expected valid product creation to succeed: %v", err)
	}
	if valid.Code != "MAKA-01" {
		t.Errorf("Expected code MAKA-01, got %s", valid.Code)
	}

	testCases := []struct {
		name        string
		id          ProductID
		code        string
		unit        string
		expectError string
	}{
		{"zero id", 0, "X", "kg", "product id must be positive, got 0"},
		{"empty code", 1, "", "kg", "product code cannot be empty"},
		{"empty unit", 1, "X", "", "unit of measure cannot be empty"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewProduct(tc.id, tc.code, "name", tc.unit, RawMaterial)
			if err == nil {
				t.Fatalf("Expected error for %s", tc.name)
			}
			if err.Error() != tc.expectError {
				t.Errorf("Expected error %q, got %q", tc.expectError, err.Error())
			}
		})
	}
}

func TestParseProductCategory(t *testing.T) {
	testCases := map[string]ProductCategory{
		"":         RawMaterial,
		"assembly": Assembly,
		"finished": FinishedGood,
		"Service":  Service,
	}
	for in, want := range testCases {
		got, err := ParseProductCategory(in)
		if err != nil {
			t.Fatalf("Unexpected error for %q: %v", in, err)
		}
		if got != want {
			t.Errorf("%q: expected %s, got %s", in, want, got)
		}
	}
	if _, err := ParseProductCategory("gadget"); err == nil {
		t.Errorf("Expected error for unknown category")
	}
}

func TestVendorTerms_Validation(t *testing.T) {
	if _, err := NewVendorTerms(1, "", "Vendor", 5, decimal.Zero, true); err == nil {
		t.Errorf("Expected error for empty vendor code")
	}
	if _, err := NewVendorTerms(1, "V1", "Vendor", -1, decimal.Zero, true); err == nil {
		t.Errorf("Expected error for negative delivery time")
	}
	if _, err := NewVendorTerms(1, "V1", "Vendor", 5, decimal.NewFromInt(-1), true); err == nil {
		t.Errorf("Expected error for negative minimum order")
	}
}

func TestTechnology_Validation(t *testing.T) {
	day := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	lines := []TechnologyLine{{IngredientID: 2, QuantityPerUnit: decimal.NewFromInt(1)}}

	tech, err := NewTechnology(1, 10, "v1", day, lines)
	if err != nil {
		t.Fatalf("Expected valid technology: %v", err)
	}

	if _, err := NewTechnology(2, 10, "self", day, []TechnologyLine{{IngredientID: 10, QuantityPerUnit: decimal.NewFromInt(1)}}); err == nil {
		t.Errorf("Expected error for self-referencing technology")
	}
	dup := append(lines, TechnologyLine{IngredientID: 2, QuantityPerUnit: decimal.NewFromInt(3)})
	if _, err := NewTechnology(3, 10, "dup", day, dup); err == nil {
		t.Errorf("Expected error for duplicated ingredient")
	}

	later, _ := NewTechnology(4, 10, "v2", day.AddDate(0, 1, 0), lines)
	if !later.Newer(tech) || tech.Newer(later) {
		t.Errorf("Expected later technology to supersede the earlier one")
	}
	sameDay, _ := NewTechnology(5, 10, "v1b", day, lines)
	if !sameDay.Newer(tech) {
		t.Errorf("Expected higher id to win on equal dates")
	}
}

func TestPurchaseSuggestion(t *testing.T) {
	line := ShortageLine{
		BOMLine: BOMLine{
			IngredientCode:   "CUKIER",
			Unit:             "kg",
			DeliveryTimeDays: 7,
			MinOrderQty:      decimal.NewFromInt(50),
		},
		QuantityRequired: decimal.NewFromInt(100),
		Shortage:         decimal.NewFromInt(-20),
		Status:           StatusCritical,
	}
	day := time.Date(2024, 5, 6, 0, 0, 0, 0, time.UTC)

	s, err := NewPurchaseSuggestion(line, day)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !s.Quantity.Equal(decimal.NewFromInt(50)) {
		t.Errorf("Expected quantity raised to minimum order 50, got %s", s.Quantity)
	}
	if !s.Missing.Equal(decimal.NewFromInt(20)) {
		t.Errorf("Expected missing 20, got %s", s.Missing)
	}
	if !s.ExpectedDate.Equal(day.AddDate(0, 0, 7)) {
		t.Errorf("Expected delivery a week after ordering, got %s", s.ExpectedDate)
	}

	line.Shortage = decimal.NewFromInt(5)
	if _, err := NewPurchaseSuggestion(line, day); err == nil {
		t.Errorf("Expected error for a line without shortage")
	}
}
