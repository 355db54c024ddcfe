package entities

import (
	"time"

	"github.com/shopspring/decimal"

	apperrors "github.com/vsinha/supplyadvisor/pkg/domain/errors"
)

// ShortageStatus classifies a single BOM line against the requested quantity
type ShortageStatus string

const (
	StatusOK       ShortageStatus = "OK"
	StatusShort    ShortageStatus = "BRAK"
	StatusCritical ShortageStatus = "KRYTYCZNY"
)

// Severity orders statuses from healthy (0) to critical (2)
func (s ShortageStatus) Severity() int {
	switch s {
	case StatusCritical:
		return 2
	case StatusShort:
		return 1
	default:
		return 0
	}
}

var hundred = decimal.NewFromInt(100)

// ShortageLine is a BOM line evaluated for a target production quantity
type ShortageLine struct {
	BOMLine
	QuantityRequired   decimal.Decimal `json:"quantity_required"`
	Shortage           decimal.Decimal `json:"shortage"`
	Status             ShortageStatus  `json:"status"`
	MaxProducibleUnits decimal.Decimal `json:"max_producible_units"`
	Unconstrained      bool            `json:"unconstrained,omitempty"`
}

// IsShortage reports whether stock does not cover the requirement
func (l ShortageLine) IsShortage() bool {
	return l.Shortage.IsNegative()
}

// ToOrder is the quantity missing to cover the requirement
func (l ShortageLine) ToOrder() decimal.Decimal {
	if !l.IsShortage() {
		return decimal.Zero
	}
	return l.Shortage.Neg()
}

// ShortagePercent is the missing quantity as a percentage of the requirement
func (l ShortageLine) ShortagePercent() decimal.Decimal {
	if !l.IsShortage() || l.QuantityRequired.IsZero() {
		return decimal.Zero
	}
	return l.ToOrder().Div(l.QuantityRequired).Mul(hundred).Round(2)
}

// SimulationResult is the outcome of a production simulation
type SimulationResult struct {
	ProductID      ProductID       `json:"product_id"`
	TargetQuantity decimal.Decimal `json:"target_quantity"`
	CanProduce     bool            `json:"can_produce"`
	MaxProducible  decimal.Decimal `json:"max_producible"`
	Unconstrained  bool            `json:"unconstrained,omitempty"`
	BOM            []ShortageLine  `json:"bom"`
	Shortages      []ShortageLine  `json:"shortages"`
	LimitingFactor *ShortageLine   `json:"limiting_factor"`
	Error          string          `json:"error,omitempty"`
	ErrorCode      string          `json:"error_code,omitempty"`
}

// MissingTechnology reports a simulation for a product without a BOM
func (r SimulationResult) MissingTechnology() bool {
	return r.ErrorCode == apperrors.CodeMissingTechnology
}

// DeliverySimulationResult extends a simulation with vendor lead times
type DeliverySimulationResult struct {
	SimulationResult
	DeliveryAware          bool           `json:"delivery_aware"`
	ShortagesWithDelivery  []ShortageLine `json:"shortages_with_delivery"`
	MaxDeliveryTimeDays    int            `json:"max_delivery_time"`
	EarliestProductionDate *time.Time     `json:"-"`
	EarliestProduction     string         `json:"earliest_production_date"`
}

// EarliestProductionLabel renders the earliest production date, or
// "immediately" when nothing has to be ordered
func (r DeliverySimulationResult) EarliestProductionLabel() string {
	if r.EarliestProductionDate == nil {
		return "immediately"
	}
	return r.EarliestProductionDate.Format("2006-01-02")
}

// ShortageDocument is a line of an externally maintained shortage list
type ShortageDocument struct {
	DocumentNumber string          `json:"document_number" db:"document_number"`
	IngredientCode string          `json:"ingredient_code" db:"ingredient_code"`
	IngredientName string          `json:"ingredient_name" db:"ingredient_name"`
	Quantity       decimal.Decimal `json:"quantity" db:"quantity"`
}
