package entities

// AlertStatus classifies how long the current stock of a product will last
type AlertStatus string

const (
	AlertCritical AlertStatus = "KRYTYCZNY"
	AlertLow      AlertStatus = "NISKI"
	AlertOK       AlertStatus = "OK"
	AlertNoUsage  AlertStatus = "BRAK UŻYCIA"
)

// Priority orders alerts for purchasing, 1 being the most urgent
func (s AlertStatus) Priority() int {
	switch s {
	case AlertCritical:
		return 1
	case AlertLow:
		return 2
	case AlertOK:
		return 3
	default:
		return 4
	}
}

// StockAlert is the stock coverage of one product
type StockAlert struct {
	StockLevel
	AvgWeeklyUsage float64     `json:"avg_weekly_usage"`
	DaysOfStock    *float64    `json:"days_of_stock"`
	Status         AlertStatus `json:"status"`
	Priority       int         `json:"priority"`
}
