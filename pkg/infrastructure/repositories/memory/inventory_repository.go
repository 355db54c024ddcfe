package memory

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/vsinha/supplyadvisor/pkg/domain/entities"
)

// SetStock records the on-hand quantity of a product in a warehouse
func (d *DataSource) SetStock(entry entities.StockEntry) {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	byWarehouse, ok := d.stock[entry.ProductID]
	if !ok {
		byWarehouse = make(map[int64]decimal.Decimal)
		d.stock[entry.ProductID] = byWarehouse
	}
	byWarehouse[entry.WarehouseID] = entry.Quantity
}

// LoadStock records stock entries
func (d *DataSource) LoadStock(entries []*entities.StockEntry) error {
	for _, e := range entries {
		d.SetStock(*e)
	}
	return nil
}

// GetCurrentStock returns the stock of every non-service product summed over
// the selected warehouses (all when empty), ordered by product id
func (d *DataSource) GetCurrentStock(ctx context.Context, warehouseIDs []int64) ([]entities.StockLevel, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	d.mutex.RLock()
	defer d.mutex.RUnlock()

	levels := make([]entities.StockLevel, 0, len(d.products))
	for _, p := range d.products {
		if p.Category == entities.Service {
			continue
		}
		levels = append(levels, entities.StockLevel{
			ProductID: p.ID,
			Code:      p.Code,
			Name:      p.Name,
			Unit:      p.Unit,
			Quantity:  d.stockOf(p.ID, warehouseIDs).InexactFloat64(),
		})
	}
	sort.Slice(levels, func(i, j int) bool { return levels[i].ProductID < levels[j].ProductID })
	return levels, nil
}

func (d *DataSource) stockOf(id entities.ProductID, warehouseIDs []int64) decimal.Decimal {
	byWarehouse := d.stock[id]
	total := decimal.Zero
	if len(warehouseIDs) == 0 {
		for _, q := range byWarehouse {
			total = total.Add(q)
		}
		return total
	}
	for _, w := range warehouseIDs {
		total = total.Add(byWarehouse[w])
	}
	return total
}
