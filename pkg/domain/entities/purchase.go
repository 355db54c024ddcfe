package entities

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// PurchaseSuggestion is a proposed purchase order covering an ingredient shortage
type PurchaseSuggestion struct {
	IngredientID   ProductID       `json:"ingredient_id"`
	IngredientCode string          `json:"ingredient_code"`
	IngredientName string          `json:"ingredient_name"`
	Quantity       decimal.Decimal `json:"quantity"`
	Missing        decimal.Decimal `json:"missing"`
	Unit           string          `json:"unit"`
	VendorCode     string          `json:"vendor_code,omitempty"`
	VendorName     string          `json:"vendor_name,omitempty"`
	OrderDate      time.Time       `json:"order_date"`
	ExpectedDate   time.Time       `json:"expected_date"`
	Status         ShortageStatus  `json:"status"`
}

// NewPurchaseSuggestion creates a validated PurchaseSuggestion. The ordered
// quantity is the missing quantity raised to the vendor minimum.
func NewPurchaseSuggestion(line ShortageLine, orderDate time.Time) (*PurchaseSuggestion, error) {
	if line.IngredientCode == "" {
		return nil, fmt.Errorf("ingredient code cannot be empty")
	}
	missing := line.ToOrder()
	if !missing.IsPositive() {
		return nil, fmt.Errorf("nothing to order for %s", line.IngredientCode)
	}

	return &PurchaseSuggestion{
		IngredientID:   line.IngredientID,
		IngredientCode: line.IngredientCode,
		IngredientName: line.IngredientName,
		Quantity:       decimal.Max(missing, line.MinOrderQty),
		Missing:        missing,
		Unit:           line.Unit,
		VendorCode:     line.VendorCode,
		VendorName:     line.VendorName,
		OrderDate:      orderDate,
		ExpectedDate:   orderDate.AddDate(0, 0, line.DeliveryTimeDays),
		Status:         line.Status,
	}, nil
}
