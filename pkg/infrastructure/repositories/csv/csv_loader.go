package csv

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vsinha/supplyadvisor/pkg/domain/entities"
	"github.com/vsinha/supplyadvisor/pkg/domain/services"
	"github.com/vsinha/supplyadvisor/pkg/infrastructure/repositories/memory"
)

// Scenario file names inside a scenario directory
const (
	ProductsFile          = "products.csv"
	BOMFile               = "bom.csv"
	StockFile             = "stock.csv"
	DeliveryFile          = "delivery.csv"
	SubstitutesFile       = "substitutes.csv"
	ShortageDocumentsFile = "shortage_documents.csv"
	UsageFile             = "usage.csv"
	HolidaysFile          = "holidays.csv"
)

// SubstituteLink is one row of substitutes.csv
type SubstituteLink struct {
	IngredientCode string
	SubstituteID   entities.ProductID
	Allowed        bool
}

// Loader handles loading advisor data from CSV files
type Loader struct{}

// NewLoader creates a new CSV loader
func NewLoader() *Loader {
	return &Loader{}
}

// LoadScenario reads a scenario directory into an in-memory data source.
// products.csv, bom.csv and stock.csv are required, the other files are
// optional.
func (l *Loader) LoadScenario(dir string) (*memory.DataSource, error) {
	d := memory.NewDataSource()

	products, err := l.LoadProducts(filepath.Join(dir, ProductsFile))
	if err != nil {
		return nil, err
	}
	if err := d.LoadProducts(products); err != nil {
		return nil, fmt.Errorf("failed to load products into data source: %w", err)
	}

	techs, err := l.LoadTechnologies(filepath.Join(dir, BOMFile))
	if err != nil {
		return nil, err
	}
	validator := services.NewBOMValidator()
	if err := validator.ValidateProductCodes(products).Err(); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", ProductsFile, err)
	}
	if err := validator.ValidateTechnologies(techs, products).Err(); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", BOMFile, err)
	}
	if err := d.LoadTechnologies(techs); err != nil {
		return nil, fmt.Errorf("failed to load technologies into data source: %w", err)
	}

	stock, err := l.LoadStock(filepath.Join(dir, StockFile))
	if err != nil {
		return nil, err
	}
	if err := d.LoadStock(stock); err != nil {
		return nil, fmt.Errorf("failed to load stock into data source: %w", err)
	}

	terms, err := optional(l.LoadVendorTerms(filepath.Join(dir, DeliveryFile)))
	if err != nil {
		return nil, err
	}
	for _, t := range terms {
		d.AddVendorTerms(*t)
	}

	links, err := optional(l.LoadSubstitutes(filepath.Join(dir, SubstitutesFile)))
	if err != nil {
		return nil, err
	}
	for _, s := range links {
		d.AddSubstitute(s.IngredientCode, s.SubstituteID, s.Allowed)
	}

	docs, err := optional(l.LoadShortageDocuments(filepath.Join(dir, ShortageDocumentsFile)))
	if err != nil {
		return nil, err
	}
	for _, doc := range docs {
		d.AddShortageDocument(doc)
	}

	usage, err := optional(l.LoadUsage(filepath.Join(dir, UsageFile)))
	if err != nil {
		return nil, err
	}
	if err := d.LoadUsage(usage); err != nil {
		return nil, fmt.Errorf("failed to load usage into data source: %w", err)
	}

	holidays, err := optional(l.LoadHolidays(filepath.Join(dir, HolidaysFile)))
	if err != nil {
		return nil, err
	}
	for _, day := range holidays {
		d.AddHoliday(day)
	}

	return d, nil
}

// LoadProducts loads the product catalog
func (l *Loader) LoadProducts(filename string) ([]*entities.Product, error) {
	records, err := readRecords(filename, "products", []string{"product_id", "code", "name", "unit", "category"})
	if err != nil {
		return nil, err
	}

	products := make([]*entities.Product, 0, len(records))
	for i, record := range records {
		id, err := parseID(record[0], "product_id")
		if err != nil {
			return nil, rowError("products", i, err)
		}
		category, err := entities.ParseProductCategory(record[4])
		if err != nil {
			return nil, rowError("products", i, err)
		}
		p, err := entities.NewProduct(id, record[1], record[2], record[3], category)
		if err != nil {
			return nil, rowError("products", i, err)
		}
		products = append(products, p)
	}
	return products, nil
}

// LoadTechnologies loads technology lines, one row per ingredient, and
// groups them by technology id
func (l *Loader) LoadTechnologies(filename string) ([]*entities.Technology, error) {
	records, err := readRecords(filename, "BOM",
		[]string{"technology_id", "product_id", "name", "valid_from", "ingredient_id", "quantity_per_unit"})
	if err != nil {
		return nil, err
	}

	type header struct {
		productID entities.ProductID
		name      string
		validFrom time.Time
	}
	headers := make(map[int64]header)
	lines := make(map[int64][]entities.TechnologyLine)
	var order []int64

	for i, record := range records {
		techID, err := strconv.ParseInt(strings.TrimSpace(record[0]), 10, 64)
		if err != nil {
			return nil, rowError("BOM", i, fmt.Errorf("invalid technology_id: %s", record[0]))
		}
		productID, err := parseID(record[1], "product_id")
		if err != nil {
			return nil, rowError("BOM", i, err)
		}
		validFrom, err := parseDate(record[3], "valid_from")
		if err != nil {
			return nil, rowError("BOM", i, err)
		}
		ingredientID, err := parseID(record[4], "ingredient_id")
		if err != nil {
			return nil, rowError("BOM", i, err)
		}
		qty, err := parseDecimal(record[5], "quantity_per_unit")
		if err != nil {
			return nil, rowError("BOM", i, err)
		}

		h, seen := headers[techID]
		if !seen {
			headers[techID] = header{productID: productID, name: record[2], validFrom: validFrom}
			order = append(order, techID)
		} else if h.productID != productID {
			return nil, rowError("BOM", i, fmt.Errorf("technology %d belongs to product %d, got %d", techID, h.productID, productID))
		}
		lines[techID] = append(lines[techID], entities.TechnologyLine{IngredientID: ingredientID, QuantityPerUnit: qty})
	}

	sort.Slice(order, func(i, j int) bool { return order[i] < order[j] })
	techs := make([]*entities.Technology, 0, len(order))
	for _, id := range order {
		h := headers[id]
		tech, err := entities.NewTechnology(id, h.productID, h.name, h.validFrom, lines[id])
		if err != nil {
			return nil, fmt.Errorf("BOM CSV technology %d: %w", id, err)
		}
		techs = append(techs, tech)
	}
	return techs, nil
}

// LoadStock loads on-hand quantities per warehouse
func (l *Loader) LoadStock(filename string) ([]*entities.StockEntry, error) {
	records, err := readRecords(filename, "stock", []string{"product_id", "warehouse_id", "quantity"})
	if err != nil {
		return nil, err
	}

	entries := make([]*entities.StockEntry, 0, len(records))
	for i, record := range records {
		id, err := parseID(record[0], "product_id")
		if err != nil {
			return nil, rowError("stock", i, err)
		}
		warehouse, err := strconv.ParseInt(strings.TrimSpace(record[1]), 10, 64)
		if err != nil {
			return nil, rowError("stock", i, fmt.Errorf("invalid warehouse_id: %s", record[1]))
		}
		qty, err := parseDecimal(record[2], "quantity")
		if err != nil {
			return nil, rowError("stock", i, err)
		}
		entry, err := entities.NewStockEntry(id, warehouse, qty)
		if err != nil {
			return nil, rowError("stock", i, err)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// LoadVendorTerms loads vendor delivery terms
func (l *Loader) LoadVendorTerms(filename string) ([]*entities.VendorTerms, error) {
	records, err := readRecords(filename, "delivery",
		[]string{"product_id", "vendor_code", "vendor_name", "delivery_time_days", "min_order_qty", "is_default"})
	if err != nil {
		return nil, err
	}

	terms := make([]*entities.VendorTerms, 0, len(records))
	for i, record := range records {
		id, err := parseID(record[0], "product_id")
		if err != nil {
			return nil, rowError("delivery", i, err)
		}
		days, err := strconv.Atoi(strings.TrimSpace(record[3]))
		if err != nil {
			return nil, rowError("delivery", i, fmt.Errorf("invalid delivery_time_days: %s", record[3]))
		}
		minOrder := decimal.Zero
		if strings.TrimSpace(record[4]) != "" {
			if minOrder, err = parseDecimal(record[4], "min_order_qty"); err != nil {
				return nil, rowError("delivery", i, err)
			}
		}
		isDefault, err := parseBool(record[5], "is_default")
		if err != nil {
			return nil, rowError("delivery", i, err)
		}
		t, err := entities.NewVendorTerms(id, record[1], record[2], days, minOrder, isDefault)
		if err != nil {
			return nil, rowError("delivery", i, err)
		}
		terms = append(terms, t)
	}
	return terms, nil
}

// LoadSubstitutes loads substitute links between ingredient codes and products
func (l *Loader) LoadSubstitutes(filename string) ([]SubstituteLink, error) {
	records, err := readRecords(filename, "substitutes", []string{"ingredient_code", "substitute_id", "allowed"})
	if err != nil {
		return nil, err
	}

	links := make([]SubstituteLink, 0, len(records))
	for i, record := range records {
		id, err := parseID(record[1], "substitute_id")
		if err != nil {
			return nil, rowError("substitutes", i, err)
		}
		allowed, err := parseBool(record[2], "allowed")
		if err != nil {
			return nil, rowError("substitutes", i, err)
		}
		links = append(links, SubstituteLink{IngredientCode: strings.TrimSpace(record[0]), SubstituteID: id, Allowed: allowed})
	}
	return links, nil
}

// LoadShortageDocuments loads the externally maintained shortage list
func (l *Loader) LoadShortageDocuments(filename string) ([]entities.ShortageDocument, error) {
	records, err := readRecords(filename, "shortage documents", []string{"document_number", "ingredient_code", "quantity"})
	if err != nil {
		return nil, err
	}

	docs := make([]entities.ShortageDocument, 0, len(records))
	for i, record := range records {
		qty, err := parseDecimal(record[2], "quantity")
		if err != nil {
			return nil, rowError("shortage documents", i, err)
		}
		docs = append(docs, entities.ShortageDocument{
			DocumentNumber: record[0],
			IngredientCode: strings.TrimSpace(record[1]),
			Quantity:       qty,
		})
	}
	return docs, nil
}

// LoadUsage loads weekly usage in the TowarId, Year, Week, Quantity layout
func (l *Loader) LoadUsage(filename string) ([]*entities.WeeklyUsageRecord, error) {
	records, err := readRecords(filename, "usage", []string{"towarid", "year", "week", "quantity"})
	if err != nil {
		return nil, err
	}

	usage := make([]*entities.WeeklyUsageRecord, 0, len(records))
	for i, record := range records {
		id, err := parseID(record[0], "TowarId")
		if err != nil {
			return nil, rowError("usage", i, err)
		}
		year, err := strconv.Atoi(strings.TrimSpace(record[1]))
		if err != nil {
			return nil, rowError("usage", i, fmt.Errorf("invalid Year: %s", record[1]))
		}
		week, err := strconv.Atoi(strings.TrimSpace(record[2]))
		if err != nil {
			return nil, rowError("usage", i, fmt.Errorf("invalid Week: %s", record[2]))
		}
		qty, err := strconv.ParseFloat(strings.TrimSpace(record[3]), 64)
		if err != nil {
			return nil, rowError("usage", i, fmt.Errorf("invalid Quantity: %s", record[3]))
		}
		r, err := entities.NewWeeklyUsageRecord(id, year, week, qty)
		if err != nil {
			return nil, rowError("usage", i, err)
		}
		usage = append(usage, r)
	}
	return usage, nil
}

// LoadHolidays loads company holidays
func (l *Loader) LoadHolidays(filename string) ([]time.Time, error) {
	records, err := readRecords(filename, "holidays", []string{"date"})
	if err != nil {
		return nil, err
	}

	days := make([]time.Time, 0, len(records))
	for i, record := range records {
		day, err := parseDate(record[0], "date")
		if err != nil {
			return nil, rowError("holidays", i, err)
		}
		days = append(days, day)
	}
	return days, nil
}

// Helper functions for parsing CSV records

// readRecords opens a CSV file, validates its header and returns the data rows
func readRecords(filename, name string, expectedHeader []string) ([][]string, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s file %s: %w", name, filename, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.TrimLeadingSpace = true
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s CSV: %w", name, err)
	}

	if len(records) < 1 {
		return nil, fmt.Errorf("%s CSV must have a header", name)
	}

	header := records[0]
	if !validateHeader(header, expectedHeader) {
		return nil, fmt.Errorf("%s CSV header mismatch. Expected: %v, Got: %v", name, expectedHeader, header)
	}

	rows := records[1:]
	for i, record := range rows {
		if len(record) != len(expectedHeader) {
			return nil, fmt.Errorf("%s CSV row %d: expected %d columns, got %d", name, i+2, len(expectedHeader), len(record))
		}
	}
	return rows, nil
}

// optional turns a missing file into an empty result
func optional[T any](rows []T, err error) ([]T, error) {
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	return rows, err
}

func rowError(name string, index int, err error) error {
	return fmt.Errorf("%s CSV row %d: %w", name, index+2, err)
}

func validateHeader(actual, expected []string) bool {
	if len(actual) != len(expected) {
		return false
	}

	for i, col := range expected {
		if strings.ToLower(strings.TrimSpace(strings.TrimPrefix(actual[i], "\uFEFF"))) != col {
			return false
		}
	}

	return true
}

func parseID(s, column string) (entities.ProductID, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %s", column, s)
	}
	return entities.ProductID(id), nil
}

func parseDecimal(s, column string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid %s: %s", column, s)
	}
	return d, nil
}

func parseDate(s, column string) (time.Time, error) {
	day, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid %s format: %s (expected YYYY-MM-DD)", column, s)
	}
	return day, nil
}

func parseBool(s, column string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "t":
		return true, nil
	case "0", "false", "no", "f", "":
		return false, nil
	default:
		return false, fmt.Errorf("invalid %s: %s (expected true or false)", column, s)
	}
}
