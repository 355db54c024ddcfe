package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/vsinha/supplyadvisor/pkg/domain/entities"
)

// BOMCacheKey memoizes a BOM lookup for one product at one recursion level
type BOMCacheKey struct {
	ProductID entities.ProductID
	Level     int
	Query     string // technology and warehouse selection
}

// CachedBOM is a memoized BOM lookup
type CachedBOM struct {
	Lines      []*entities.BOMLine
	ComputedAt time.Time
}

// BOMTreeNode is an ingredient in an exploded multi-level BOM
type BOMTreeNode struct {
	Line          entities.BOMLine `json:"line"`
	Level         int              `json:"level"`
	GrossRequired decimal.Decimal  `json:"gross_required"`
	Children      []*BOMTreeNode   `json:"children,omitempty"`
	Truncated     bool             `json:"truncated,omitempty"` // depth limit or cycle reached
}

// BOMTree is the exploded bill of materials of a product
type BOMTree struct {
	ProductID entities.ProductID `json:"product_id"`
	Quantity  decimal.Decimal    `json:"quantity"`
	MaxDepth  int                `json:"max_depth"`
	Roots     []*BOMTreeNode     `json:"roots"`
}

// Walk visits every node depth-first, parents before children
func (t *BOMTree) Walk(visit func(node *BOMTreeNode, path []*BOMTreeNode)) {
	var walk func(n *BOMTreeNode, path []*BOMTreeNode)
	walk = func(n *BOMTreeNode, path []*BOMTreeNode) {
		path = append(path, n)
		visit(n, path)
		for _, c := range n.Children {
			walk(c, path)
		}
	}
	for _, r := range t.Roots {
		walk(r, nil)
	}
}

// Leaves returns the raw materials of the tree with their requirements
// summed by ingredient
func (t *BOMTree) Leaves() map[entities.ProductID]decimal.Decimal {
	leaves := make(map[entities.ProductID]decimal.Decimal)
	t.Walk(func(n *BOMTreeNode, _ []*BOMTreeNode) {
		if len(n.Children) == 0 {
			leaves[n.Line.IngredientID] = leaves[n.Line.IngredientID].Add(n.GrossRequired)
		}
	})
	return leaves
}
