package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/vsinha/supplyadvisor/pkg/domain/entities"
)

// AddVendorTerms records purchasing terms of a product
func (d *DataSource) AddVendorTerms(terms entities.VendorTerms) {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	d.vendors[terms.ProductID] = append(d.vendors[terms.ProductID], terms)
}

// defaultVendor returns the default terms of a product, else the first recorded
func (d *DataSource) defaultVendor(id entities.ProductID) *entities.VendorTerms {
	terms := d.vendors[id]
	for i := range terms {
		if terms[i].IsDefault {
			return &terms[i]
		}
	}
	if len(terms) > 0 {
		return &terms[0]
	}
	return nil
}

// AddSubstitute registers substituteID as a replacement for the ingredient code
func (d *DataSource) AddSubstitute(originalCode string, substituteID entities.ProductID, allowed bool) {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	d.substitutes[originalCode] = append(d.substitutes[originalCode], substituteLink{
		substituteID: substituteID,
		allowed:      allowed,
	})
}

// GetSubstitutes returns every registered substitute of an ingredient with
// its stock over the selected warehouses, ordered by stock descending
func (d *DataSource) GetSubstitutes(ctx context.Context, ingredientCode string, warehouseIDs []int64) ([]entities.Substitute, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	d.mutex.RLock()
	defer d.mutex.RUnlock()

	links := d.substitutes[ingredientCode]
	subs := make([]entities.Substitute, 0, len(links))
	for _, link := range links {
		p, ok := d.products[link.substituteID]
		if !ok {
			return nil, fmt.Errorf("substitute %d of %s not in catalog", link.substituteID, ingredientCode)
		}
		subs = append(subs, entities.Substitute{
			OriginalCode: ingredientCode,
			ProductID:    p.ID,
			Code:         p.Code,
			Name:         p.Name,
			Unit:         p.Unit,
			CurrentStock: d.stockOf(p.ID, warehouseIDs),
			Allowed:      link.allowed,
		})
	}

	sort.SliceStable(subs, func(i, j int) bool {
		return subs[i].CurrentStock.GreaterThan(subs[j].CurrentStock)
	})
	return subs, nil
}

// AddShortageDocument records a line of the external shortage list
func (d *DataSource) AddShortageDocument(doc entities.ShortageDocument) {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	d.documents = append(d.documents, doc)
}

// GetOpenShortageDocuments returns the external shortage list
func (d *DataSource) GetOpenShortageDocuments(ctx context.Context) ([]entities.ShortageDocument, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	d.mutex.RLock()
	defer d.mutex.RUnlock()
	return append([]entities.ShortageDocument(nil), d.documents...), nil
}
