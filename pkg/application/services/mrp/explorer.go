package mrp

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/vsinha/supplyadvisor/pkg/application/dto"
	"github.com/vsinha/supplyadvisor/pkg/domain/entities"
	apperrors "github.com/vsinha/supplyadvisor/pkg/domain/errors"
	"github.com/vsinha/supplyadvisor/pkg/domain/repositories"
)

// Explode walks sub-assemblies recursively and returns the gross requirement
// tree of a production request. An ingredient is treated as an assembly when
// it has a BOM of its own. Sub-assemblies use their newest technology. Lines
// carry vendor lead times when delivery information is configured.
func (s *Simulator) Explode(ctx context.Context, req ProductionRequest) (*dto.BOMTree, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	lines, err := s.loadTreeBOM(ctx, req.query(), 0)
	if err != nil {
		return nil, fmt.Errorf("failed to load BOM for product %d: %w", req.ProductID, err)
	}
	if len(lines) == 0 {
		return nil, apperrors.ErrNoTechnology(int64(req.ProductID))
	}

	tree := &dto.BOMTree{
		ProductID: req.ProductID,
		Quantity:  req.Quantity,
		MaxDepth:  s.maxDepth,
	}

	visiting := map[entities.ProductID]bool{req.ProductID: true}
	for _, line := range lines {
		node, err := s.explodeLine(ctx, *line, req.Quantity, 1, req.WarehouseIDs, visiting)
		if err != nil {
			return nil, err
		}
		tree.Roots = append(tree.Roots, node)
	}
	return tree, nil
}

func (s *Simulator) explodeLine(
	ctx context.Context,
	line entities.BOMLine,
	parentQty decimal.Decimal,
	level int,
	warehouseIDs []int64,
	visiting map[entities.ProductID]bool,
) (*dto.BOMTreeNode, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	node := &dto.BOMTreeNode{
		Line:          line,
		Level:         level,
		GrossRequired: line.QuantityPerUnit.Mul(parentQty),
	}

	if visiting[line.IngredientID] {
		s.log.Warn("BOM cycle detected",
			slog.Int64("ingredient_id", int64(line.IngredientID)),
			slog.Int("level", level))
		node.Truncated = true
		return node, nil
	}

	query := repositories.BOMQuery{ProductID: line.IngredientID, WarehouseIDs: warehouseIDs}
	children, err := s.loadTreeBOM(ctx, query, level)
	if err != nil {
		return nil, fmt.Errorf("failed to load BOM for ingredient %s: %w", line.IngredientCode, err)
	}
	if len(children) == 0 {
		return node, nil
	}

	node.Line.IsAssembly = true
	if level >= s.maxDepth {
		node.Truncated = true
		return node, nil
	}

	visiting[line.IngredientID] = true
	defer delete(visiting, line.IngredientID)

	for _, child := range children {
		childNode, err := s.explodeLine(ctx, *child, node.GrossRequired, level+1, warehouseIDs, visiting)
		if err != nil {
			return nil, err
		}
		node.Children = append(node.Children, childNode)
	}
	return node, nil
}

// loadTreeBOM prefers delivery-enriched lines. Enriched lookups are cached
// below deliveryLevel, one slot per recursion level.
func (s *Simulator) loadTreeBOM(ctx context.Context, query repositories.BOMQuery, level int) ([]*entities.BOMLine, error) {
	if s.deliveryRepo != nil {
		lines, err := s.cache.GetOrLoad(ctx, query, deliveryLevel-level, s.deliveryRepo.GetBOMWithDeliveryInfo)
		if err == nil {
			return lines, nil
		}
		s.log.Debug("delivery information unavailable for BOM tree",
			slog.Int64("product_id", int64(query.ProductID)),
			slog.Int("level", level),
			slog.String("error", err.Error()),
		)
	}
	return s.loadBOM(ctx, query, level)
}
