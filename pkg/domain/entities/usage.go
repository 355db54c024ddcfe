package entities

import (
	"fmt"
	"time"
)

// ProductID identifies a product or ingredient in the ERP
type ProductID int64

// WeeklyUsageRecord is the consumption of one product in one ISO week
type WeeklyUsageRecord struct {
	ProductID ProductID `json:"TowarId" db:"product_id"`
	Year      int       `json:"Year" db:"iso_year"`
	ISOWeek   int       `json:"Week" db:"iso_week"`
	Quantity  float64   `json:"Quantity" db:"quantity"`
}

// NewWeeklyUsageRecord creates a validated usage record. Calendar validity is
// checked during time-series conversion.
func NewWeeklyUsageRecord(productID ProductID, year, week int, quantity float64) (*WeeklyUsageRecord, error) {
	if productID <= 0 {
		return nil, fmt.Errorf("product id must be positive, got %d", productID)
	}
	if quantity < 0 {
		return nil, fmt.Errorf("quantity cannot be negative, got %g", quantity)
	}
	return &WeeklyUsageRecord{
		ProductID: productID,
		Year:      year,
		ISOWeek:   week,
		Quantity:  quantity,
	}, nil
}

// TimeSeriesPoint is a weekly observation keyed by the Monday of its ISO week
type TimeSeriesPoint struct {
	ProductID ProductID `json:"TowarId"`
	Date      time.Time `json:"Date"`
	Quantity  float64   `json:"Quantity"`
}

// StockLevel is the on-hand quantity of one product summed over the selected warehouses
type StockLevel struct {
	ProductID ProductID `json:"product_id" db:"product_id"`
	Code      string    `json:"code" db:"code"`
	Name      string    `json:"name" db:"name"`
	Unit      string    `json:"unit" db:"unit"`
	Quantity  float64   `json:"quantity" db:"quantity"`
}
