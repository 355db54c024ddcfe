package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/vsinha/supplyadvisor/pkg/domain/entities"
	apperrors "github.com/vsinha/supplyadvisor/pkg/domain/errors"
	"github.com/vsinha/supplyadvisor/pkg/domain/repositories"
)

// GetBOMWithStock returns the lines of the selected technology with stock
// summed over the requested warehouses. A product without technology yields
// no lines.
func (r *Repository) GetBOMWithStock(ctx context.Context, query repositories.BOMQuery) ([]*entities.BOMLine, error) {
	op := "Repository.GetBOMWithStock"
	return r.bomLines(ctx, op, query, false)
}

// GetBOMWithDeliveryInfo returns the BOM enriched with default vendor terms
func (r *Repository) GetBOMWithDeliveryInfo(ctx context.Context, query repositories.BOMQuery) ([]*entities.BOMLine, error) {
	op := "Repository.GetBOMWithDeliveryInfo"

	var hasTerms bool
	if err := r.DB.GetContext(ctx, &hasTerms, `SELECT EXISTS (SELECT 1 FROM vendor_terms)`); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !hasTerms {
		return nil, apperrors.ErrEnhancementNotAvailable("vendor terms", nil)
	}
	return r.bomLines(ctx, op, query, true)
}

func (r *Repository) bomLines(ctx context.Context, op string, query repositories.BOMQuery, withDelivery bool) ([]*entities.BOMLine, error) {
	techID, found, err := r.selectTechnology(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !found {
		return []*entities.BOMLine{}, nil
	}

	sqlQuery, args, err := bomQuery(techID, query.WarehouseIDs, withDelivery)
	if err != nil {
		return nil, fmt.Errorf("%s: build query: %w", op, err)
	}

	var lines []*entities.BOMLine
	if err := r.DB.SelectContext(ctx, &lines, r.DB.Rebind(sqlQuery), args...); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if lines == nil {
		lines = []*entities.BOMLine{}
	}
	return lines, nil
}

// selectTechnology resolves the requested technology, or the newest one of
// the product when none is requested
func (r *Repository) selectTechnology(ctx context.Context, query repositories.BOMQuery) (int64, bool, error) {
	var id int64
	if query.TechnologyID != nil {
		err := r.DB.GetContext(ctx, &id,
			`SELECT id FROM technologies WHERE id = $1 AND product_id = $2`,
			*query.TechnologyID, int64(query.ProductID))
		if errors.Is(err, sql.ErrNoRows) {
			return 0, false, apperrors.ErrNotFound(fmt.Sprintf("technology %d of product %d", *query.TechnologyID, query.ProductID))
		}
		if err != nil {
			return 0, false, err
		}
		return id, true, nil
	}

	err := r.DB.GetContext(ctx, &id,
		`SELECT id FROM technologies WHERE product_id = $1 ORDER BY valid_from DESC, id DESC LIMIT 1`,
		int64(query.ProductID))
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return id, true, nil
}
