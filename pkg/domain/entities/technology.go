package entities

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Technology is a revision of the recipe of a product
type Technology struct {
	ID        int64            `json:"id" db:"id"`
	ProductID ProductID        `json:"product_id" db:"product_id"`
	Name      string           `json:"name" db:"name"`
	ValidFrom time.Time        `json:"valid_from" db:"valid_from"`
	Lines     []TechnologyLine `json:"lines"`
}

// TechnologyLine is one ingredient of a technology
type TechnologyLine struct {
	IngredientID    ProductID       `json:"ingredient_id" db:"ingredient_id"`
	QuantityPerUnit decimal.Decimal `json:"quantity_per_unit" db:"quantity_per_unit"`
}

// NewTechnology creates a validated Technology
func NewTechnology(id int64, productID ProductID, name string, validFrom time.Time, lines []TechnologyLine) (*Technology, error) {
	if id <= 0 {
		return nil, fmt.Errorf("technology id must be positive, got %d", id)
	}
	if productID <= 0 {
		return nil, fmt.Errorf("product id must be positive, got %d", productID)
	}
	seen := make(map[ProductID]bool, len(lines))
	for _, l := range lines {
		if l.IngredientID == productID {
			return nil, fmt.Errorf("product %d cannot be its own ingredient", productID)
		}
		if l.QuantityPerUnit.IsNegative() {
			return nil, fmt.Errorf("quantity per unit cannot be negative, got %s", l.QuantityPerUnit)
		}
		if seen[l.IngredientID] {
			return nil, fmt.Errorf("ingredient %d listed twice", l.IngredientID)
		}
		seen[l.IngredientID] = true
	}

	return &Technology{
		ID:        id,
		ProductID: productID,
		Name:      name,
		ValidFrom: validFrom,
		Lines:     lines,
	}, nil
}

// Newer reports whether t supersedes other. Later ValidFrom wins, then the higher ID.
func (t *Technology) Newer(other *Technology) bool {
	if other == nil {
		return true
	}
	if !t.ValidFrom.Equal(other.ValidFrom) {
		return t.ValidFrom.After(other.ValidFrom)
	}
	return t.ID > other.ID
}
