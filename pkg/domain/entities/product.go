package entities

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// ProductCategory separates raw materials from what the plant makes
type ProductCategory int

const (
	RawMaterial ProductCategory = iota
	Assembly
	FinishedGood
	Service
)

// String method for ProductCategory enum
func (c ProductCategory) String() string {
	switch c {
	case RawMaterial:
		return "RawMaterial"
	case Assembly:
		return "Assembly"
	case FinishedGood:
		return "FinishedGood"
	case Service:
		return "Service"
	default:
		return "Unknown"
	}
}

// ParseProductCategory converts a category name, defaulting to RawMaterial
func ParseProductCategory(s string) (ProductCategory, error) {
	switch s {
	case "", "RawMaterial", "raw":
		return RawMaterial, nil
	case "Assembly", "assembly":
		return Assembly, nil
	case "FinishedGood", "finished":
		return FinishedGood, nil
	case "Service", "service":
		return Service, nil
	default:
		return RawMaterial, fmt.Errorf("unknown product category %q", s)
	}
}

// Product is an entry of the ERP product catalog
type Product struct {
	ID       ProductID       `json:"id" db:"id"`
	Code     string          `json:"code" db:"code"`
	Name     string          `json:"name" db:"name"`
	Unit     string          `json:"unit" db:"unit"`
	Category ProductCategory `json:"category" db:"category"`
}

// NewProduct creates a validated Product
func NewProduct(id ProductID, code, name, unit string, category ProductCategory) (*Product, error) {
	if id <= 0 {
		return nil, fmt.Errorf("product id must be positive, got %d", id)
	}
	if code == "" {
		return nil, fmt.Errorf("product code cannot be empty")
	}
	if unit == "" {
		return nil, fmt.Errorf("unit of measure cannot be empty")
	}

	return &Product{
		ID:       id,
		Code:     code,
		Name:     name,
		Unit:     unit,
		Category: category,
	}, nil
}

// VendorTerms are the purchasing terms of one vendor for one product
type VendorTerms struct {
	ProductID        ProductID       `json:"product_id" db:"product_id"`
	VendorCode       string          `json:"vendor_code" db:"vendor_code"`
	VendorName       string          `json:"vendor_name" db:"vendor_name"`
	DeliveryTimeDays int             `json:"delivery_time_days" db:"delivery_time_days"`
	MinOrderQty      decimal.Decimal `json:"min_order_qty" db:"min_order_qty"`
	IsDefault        bool            `json:"is_default" db:"is_default"`
}

// NewVendorTerms creates validated VendorTerms
func NewVendorTerms(productID ProductID, vendorCode, vendorName string, deliveryDays int, minOrder decimal.Decimal, isDefault bool) (*VendorTerms, error) {
	if vendorCode == "" {
		return nil, fmt.Errorf("vendor code cannot be empty")
	}
	if deliveryDays < 0 {
		return nil, fmt.Errorf("delivery time cannot be negative, got %d", deliveryDays)
	}
	if minOrder.IsNegative() {
		return nil, fmt.Errorf("minimum order quantity cannot be negative, got %s", minOrder)
	}

	return &VendorTerms{
		ProductID:        productID,
		VendorCode:       vendorCode,
		VendorName:       vendorName,
		DeliveryTimeDays: deliveryDays,
		MinOrderQty:      minOrder,
		IsDefault:        isDefault,
	}, nil
}

// StockEntry is the on-hand quantity of a product in one warehouse
type StockEntry struct {
	ProductID   ProductID       `json:"product_id" db:"product_id"`
	WarehouseID int64           `json:"warehouse_id" db:"warehouse_id"`
	Quantity    decimal.Decimal `json:"quantity" db:"quantity"`
}

// NewStockEntry creates a validated StockEntry
func NewStockEntry(productID ProductID, warehouseID int64, quantity decimal.Decimal) (*StockEntry, error) {
	if productID <= 0 {
		return nil, fmt.Errorf("product id must be positive, got %d", productID)
	}
	if quantity.IsNegative() {
		return nil, fmt.Errorf("stock cannot be negative, got %s", quantity)
	}
	return &StockEntry{ProductID: productID, WarehouseID: warehouseID, Quantity: quantity}, nil
}
