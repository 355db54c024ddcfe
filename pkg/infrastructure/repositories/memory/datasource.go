package memory

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vsinha/supplyadvisor/pkg/domain/entities"
	"github.com/vsinha/supplyadvisor/pkg/domain/repositories"
)

// substituteLink registers a substitute product for an ingredient code
type substituteLink struct {
	substituteID entities.ProductID
	allowed      bool
}

// DataSource is an in-memory ERP snapshot implementing every repository
// interface. It is safe for concurrent use.
type DataSource struct {
	mutex sync.RWMutex

	products     map[entities.ProductID]entities.Product
	codes        map[string]entities.ProductID
	technologies map[entities.ProductID][]*entities.Technology
	stock        map[entities.ProductID]map[int64]decimal.Decimal
	vendors      map[entities.ProductID][]entities.VendorTerms
	substitutes  map[string][]substituteLink
	documents    []entities.ShortageDocument
	usage        []entities.WeeklyUsageRecord
	holidays     []time.Time
}

// NewDataSource creates an empty data source
func NewDataSource() *DataSource {
	return &DataSource{
		products:     make(map[entities.ProductID]entities.Product),
		codes:        make(map[string]entities.ProductID),
		technologies: make(map[entities.ProductID][]*entities.Technology),
		stock:        make(map[entities.ProductID]map[int64]decimal.Decimal),
		vendors:      make(map[entities.ProductID][]entities.VendorTerms),
		substitutes:  make(map[string][]substituteLink),
	}
}

// Verify interface compliance
var (
	_ repositories.BOMRepository              = (*DataSource)(nil)
	_ repositories.DeliveryRepository         = (*DataSource)(nil)
	_ repositories.SubstituteRepository       = (*DataSource)(nil)
	_ repositories.ShortageDocumentRepository = (*DataSource)(nil)
	_ repositories.UsageRepository            = (*DataSource)(nil)
	_ repositories.StockRepository            = (*DataSource)(nil)
	_ repositories.HolidayRepository          = (*DataSource)(nil)
)

// AddProduct adds or replaces a catalog entry
func (d *DataSource) AddProduct(p entities.Product) {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	if old, ok := d.products[p.ID]; ok {
		delete(d.codes, old.Code)
	}
	d.products[p.ID] = p
	d.codes[p.Code] = p.ID
}

// LoadProducts adds catalog entries
func (d *DataSource) LoadProducts(products []*entities.Product) error {
	for _, p := range products {
		d.AddProduct(*p)
	}
	return nil
}

// GetProduct returns a catalog entry
func (d *DataSource) GetProduct(id entities.ProductID) (*entities.Product, error) {
	d.mutex.RLock()
	defer d.mutex.RUnlock()

	p, ok := d.products[id]
	if !ok {
		return nil, fmt.Errorf("product not found: %d", id)
	}
	return &p, nil
}

// ProductByCode looks a product up by its catalog code
func (d *DataSource) ProductByCode(code string) (*entities.Product, error) {
	d.mutex.RLock()
	id, ok := d.codes[code]
	d.mutex.RUnlock()
	if !ok {
		return nil, fmt.Errorf("product not found: %s", code)
	}
	return d.GetProduct(id)
}

// Products returns the catalog ordered by id
func (d *DataSource) Products() []entities.Product {
	d.mutex.RLock()
	defer d.mutex.RUnlock()

	products := make([]entities.Product, 0, len(d.products))
	for _, p := range d.products {
		products = append(products, p)
	}
	sort.Slice(products, func(i, j int) bool { return products[i].ID < products[j].ID })
	return products
}
