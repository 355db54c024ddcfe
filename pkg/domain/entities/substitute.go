package entities

import "github.com/shopspring/decimal"

// Substitute is an alternative ingredient that may replace another in production
type Substitute struct {
	OriginalCode string          `json:"original_code" db:"original_code"`
	ProductID    ProductID       `json:"product_id" db:"substitute_id"`
	Code         string          `json:"code" db:"substitute_code"`
	Name         string          `json:"name" db:"substitute_name"`
	Unit         string          `json:"unit" db:"unit"`
	CurrentStock decimal.Decimal `json:"current_stock" db:"current_stock"`
	Allowed      bool            `json:"allowed" db:"is_allowed"`
}

// Covers reports whether the substitute's stock alone covers the quantity
func (s Substitute) Covers(quantity decimal.Decimal) bool {
	return s.CurrentStock.GreaterThanOrEqual(quantity)
}

// ShortageWithSubstitutes pairs a short ingredient with its allowed replacements
type ShortageWithSubstitutes struct {
	ShortageLine
	Substitutes []Substitute `json:"substitutes"`
}

// SubstituteAnalysis is a simulation enriched with substitute options
type SubstituteAnalysis struct {
	SimulationResult
	ShortagesWithSubstitutes []ShortageWithSubstitutes `json:"shortages_with_substitutes"`
	SubstitutesAvailable     bool                      `json:"substitutes_available"`
	Summary                  string                    `json:"summary"`
}
