package memory

import (
	"context"
	"fmt"

	"github.com/vsinha/supplyadvisor/pkg/domain/entities"
	apperrors "github.com/vsinha/supplyadvisor/pkg/domain/errors"
	"github.com/vsinha/supplyadvisor/pkg/domain/repositories"
)

// AddTechnology registers a technology revision of a product
func (d *DataSource) AddTechnology(tech *entities.Technology) {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	d.technologies[tech.ProductID] = append(d.technologies[tech.ProductID], tech)
}

// LoadTechnologies registers technology revisions
func (d *DataSource) LoadTechnologies(techs []*entities.Technology) error {
	for _, t := range techs {
		d.AddTechnology(t)
	}
	return nil
}

// GetBOMWithStock returns the lines of the selected technology joined with
// ingredient stock summed over the selected warehouses. A product without a
// technology has an empty BOM.
func (d *DataSource) GetBOMWithStock(ctx context.Context, query repositories.BOMQuery) ([]*entities.BOMLine, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	d.mutex.RLock()
	defer d.mutex.RUnlock()
	return d.bomLines(query)
}

// GetBOMWithDeliveryInfo returns the BOM enriched with the terms of each
// ingredient's default vendor
func (d *DataSource) GetBOMWithDeliveryInfo(ctx context.Context, query repositories.BOMQuery) ([]*entities.BOMLine, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	d.mutex.RLock()
	defer d.mutex.RUnlock()

	if len(d.vendors) == 0 {
		return nil, apperrors.ErrEnhancementNotAvailable("vendor terms", nil)
	}

	lines, err := d.bomLines(query)
	if err != nil {
		return nil, err
	}
	for i, line := range lines {
		if terms := d.defaultVendor(line.IngredientID); terms != nil {
			enriched := line.WithDelivery(terms.DeliveryTimeDays, terms.VendorCode, terms.VendorName, terms.MinOrderQty)
			lines[i] = &enriched
		}
	}
	return lines, nil
}

func (d *DataSource) bomLines(query repositories.BOMQuery) ([]*entities.BOMLine, error) {
	tech, err := d.selectTechnology(query)
	if err != nil {
		return nil, err
	}
	if tech == nil {
		return []*entities.BOMLine{}, nil
	}

	lines := make([]*entities.BOMLine, 0, len(tech.Lines))
	for _, tl := range tech.Lines {
		ingredient, ok := d.products[tl.IngredientID]
		if !ok {
			return nil, fmt.Errorf("ingredient %d of technology %d not in catalog", tl.IngredientID, tech.ID)
		}
		line, err := entities.NewBOMLine(ingredient.ID, ingredient.Code, ingredient.Name,
			tl.QuantityPerUnit, ingredient.Unit, d.stockOf(ingredient.ID, query.WarehouseIDs))
		if err != nil {
			return nil, fmt.Errorf("invalid BOM line %s: %w", ingredient.Code, err)
		}
		line.IsAssembly = len(d.technologies[ingredient.ID]) > 0
		lines = append(lines, line)
	}
	return lines, nil
}

func (d *DataSource) selectTechnology(query repositories.BOMQuery) (*entities.Technology, error) {
	techs := d.technologies[query.ProductID]
	if query.TechnologyID != nil {
		for _, t := range techs {
			if t.ID == *query.TechnologyID {
				return t, nil
			}
		}
		return nil, apperrors.ErrNotFound(fmt.Sprintf("technology %d of product %d", *query.TechnologyID, query.ProductID))
	}

	var newest *entities.Technology
	for _, t := range techs {
		if t.Newer(newest) {
			newest = t
		}
	}
	return newest, nil
}
