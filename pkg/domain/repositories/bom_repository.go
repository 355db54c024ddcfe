package repositories

import (
	"context"
	"sort"

	"github.com/vsinha/supplyadvisor/pkg/domain/entities"
)

// BOMQuery selects the technology and warehouses a BOM lookup is evaluated against
type BOMQuery struct {
	ProductID    entities.ProductID
	TechnologyID *int64  // nil selects the most recent technology
	WarehouseIDs []int64 // empty sums stock over all warehouses
}

// Key is a stable string identifying the query, used for memoization
func (q BOMQuery) Key() string {
	tech := int64(-1)
	if q.TechnologyID != nil {
		tech = *q.TechnologyID
	}
	ids := append([]int64(nil), q.WarehouseIDs...)
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return formatKey(q.ProductID, tech, ids)
}

// BOMRepository provides the bill of materials of a product joined with ingredient stock
type BOMRepository interface {
	GetBOMWithStock(ctx context.Context, query BOMQuery) ([]*entities.BOMLine, error)
}

// DeliveryRepository provides the bill of materials enriched with default vendor terms
type DeliveryRepository interface {
	GetBOMWithDeliveryInfo(ctx context.Context, query BOMQuery) ([]*entities.BOMLine, error)
}
