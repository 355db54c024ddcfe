package entities

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// BOMLine is one ingredient of a product's technology joined with its stock
// and, when delivery enrichment is available, its default vendor terms
type BOMLine struct {
	IngredientID     ProductID       `json:"ingredient_id" db:"ingredient_id"`
	IngredientCode   string          `json:"ingredient_code" db:"ingredient_code"`
	IngredientName   string          `json:"ingredient_name" db:"ingredient_name"`
	QuantityPerUnit  decimal.Decimal `json:"quantity_per_unit" db:"quantity_per_unit"`
	Unit             string          `json:"unit" db:"unit"`
	CurrentStock     decimal.Decimal `json:"current_stock" db:"current_stock"`
	DeliveryTimeDays int             `json:"delivery_time_days,omitempty" db:"delivery_time_days"`
	VendorCode       string          `json:"vendor_code,omitempty" db:"vendor_code"`
	VendorName       string          `json:"vendor_name,omitempty" db:"vendor_name"`
	MinOrderQty      decimal.Decimal `json:"min_order_qty,omitempty" db:"min_order_qty"`
	IsAssembly       bool            `json:"is_assembly,omitempty" db:"is_assembly"`
}

// NewBOMLine creates a validated BOMLine. A zero quantity per unit is allowed
// and means the ingredient does not constrain production.
func NewBOMLine(ingredientID ProductID, code, name string, qtyPerUnit decimal.Decimal, unit string, stock decimal.Decimal) (*BOMLine, error) {
	if code == "" {
		return nil, fmt.Errorf("ingredient code cannot be empty")
	}
	if qtyPerUnit.IsNegative() {
		return nil, fmt.Errorf("quantity per unit cannot be negative, got %s", qtyPerUnit)
	}
	if stock.IsNegative() {
		return nil, fmt.Errorf("current stock cannot be negative, got %s", stock)
	}

	return &BOMLine{
		IngredientID:    ingredientID,
		IngredientCode:  code,
		IngredientName:  name,
		QuantityPerUnit: qtyPerUnit,
		Unit:            unit,
		CurrentStock:    stock,
	}, nil
}

// WithDelivery returns a copy of the line enriched with vendor terms
func (l BOMLine) WithDelivery(days int, vendorCode, vendorName string, minOrder decimal.Decimal) BOMLine {
	l.DeliveryTimeDays = days
	l.VendorCode = vendorCode
	l.VendorName = vendorName
	l.MinOrderQty = minOrder
	return l
}
