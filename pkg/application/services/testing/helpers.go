package testing

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/vsinha/supplyadvisor/pkg/domain/entities"
	"github.com/vsinha/supplyadvisor/pkg/infrastructure/repositories/memory"
)

// Product ids of the test scenarios
const (
	Flour      entities.ProductID = 1
	Sugar      entities.ProductID = 2
	Eggs       entities.ProductID = 3
	Salt       entities.ProductID = 4
	BrownSugar entities.ProductID = 5
	Honey      entities.ProductID = 6
	Xylitol    entities.ProductID = 7
	Cake       entities.ProductID = 100
	Pie        entities.ProductID = 200
	Bread      entities.ProductID = 300
	Dough      entities.ProductID = 301
	Bag        entities.ProductID = 302
	Water      entities.ProductID = 303
)

// ScenarioStart is the Monday the scenario clock points at
var ScenarioStart = time.Date(2024, time.June, 3, 0, 0, 0, 0, time.UTC)

// mustCreateProduct is a helper for tests - panics on validation error
func mustCreateProduct(id entities.ProductID, code, name, unit string, category entities.ProductCategory) *entities.Product {
	p, err := entities.NewProduct(id, code, name, unit, category)
	if err != nil {
		panic(err)
	}
	return p
}

// mustCreateTechnology is a helper for tests - panics on validation error
func mustCreateTechnology(id int64, product entities.ProductID, validFrom time.Time, lines ...entities.TechnologyLine) *entities.Technology {
	tech, err := entities.NewTechnology(id, product, "standard", validFrom, lines)
	if err != nil {
		panic(err)
	}
	return tech
}

// mustCreateVendorTerms is a helper for tests - panics on validation error
func mustCreateVendorTerms(product entities.ProductID, code, name string, days int, minOrder int64) entities.VendorTerms {
	terms, err := entities.NewVendorTerms(product, code, name, days, decimal.NewFromInt(minOrder), true)
	if err != nil {
		panic(err)
	}
	return *terms
}

func line(ingredient entities.ProductID, qty string) entities.TechnologyLine {
	return entities.TechnologyLine{IngredientID: ingredient, QuantityPerUnit: decimal.RequireFromString(qty)}
}

func stock(d *memory.DataSource, product entities.ProductID, warehouse int64, qty string) {
	entry, err := entities.NewStockEntry(product, warehouse, decimal.RequireFromString(qty))
	if err != nil {
		panic(err)
	}
	d.SetStock(*entry)
}

// BuildCakeScenario creates a single-level bakery scenario.
//
// CAKE needs 2 FLOUR, 1 SUGAR, 0.5 EGGS and 0 SALT per unit. Stock covers
// 75 cakes of flour, 45 of sugar and 200 of eggs, so sugar is the limiting
// ingredient. SUGAR has three substitutes, HONEY not allowed. PIE has no
// technology. Vendor terms exist for every raw material except SALT.
func BuildCakeScenario() *memory.DataSource {
	d := memory.NewDataSource()

	products := []*entities.Product{
		mustCreateProduct(Flour, "FLOUR", "Wheat flour type 650", "kg", entities.RawMaterial),
		mustCreateProduct(Sugar, "SUGAR", "White sugar", "kg", entities.RawMaterial),
		mustCreateProduct(Eggs, "EGGS", "Eggs L", "pcs", entities.RawMaterial),
		mustCreateProduct(Salt, "SALT", "Salt", "kg", entities.RawMaterial),
		mustCreateProduct(BrownSugar, "BROWN-SUGAR", "Brown sugar", "kg", entities.RawMaterial),
		mustCreateProduct(Honey, "HONEY", "Honey", "kg", entities.RawMaterial),
		mustCreateProduct(Xylitol, "XYLITOL", "Xylitol", "kg", entities.RawMaterial),
		mustCreateProduct(Cake, "CAKE", "Sponge cake", "pcs", entities.FinishedGood),
		mustCreateProduct(Pie, "PIE", "Apple pie", "pcs", entities.FinishedGood),
	}
	if err := d.LoadProducts(products); err != nil {
		panic(err)
	}

	d.AddTechnology(mustCreateTechnology(1000, Cake, ScenarioStart.AddDate(-1, 0, 0),
		line(Flour, "2"), line(Sugar, "1"), line(Eggs, "0.5"), line(Salt, "0")))

	stock(d, Flour, 1, "100")
	stock(d, Flour, 2, "50")
	stock(d, Sugar, 1, "45")
	stock(d, Eggs, 1, "100")
	stock(d, BrownSugar, 1, "30")
	stock(d, Honey, 2, "200")
	stock(d, Xylitol, 1, "10")

	d.AddVendorTerms(mustCreateVendorTerms(Flour, "V-MILL", "Mill Co", 5, 100))
	d.AddVendorTerms(mustCreateVendorTerms(Sugar, "V-SUGAR", "Sugar Works", 14, 25))
	d.AddVendorTerms(mustCreateVendorTerms(Eggs, "V-FARM", "Farm", 2, 0))

	d.AddSubstitute("SUGAR", BrownSugar, true)
	d.AddSubstitute("SUGAR", Honey, false)
	d.AddSubstitute("SUGAR", Xylitol, true)

	d.AddShortageDocument(entities.ShortageDocument{DocumentNumber: "ZB/1/2024", IngredientCode: "SUGAR", Quantity: decimal.NewFromInt(5)})
	d.AddShortageDocument(entities.ShortageDocument{DocumentNumber: "ZB/2/2024", IngredientCode: "YEAST", Quantity: decimal.NewFromInt(2)})
	return d
}

// BuildBreadScenario creates a multi-level scenario. BREAD is made of DOUGH
// and a BAG; DOUGH is made of FLOUR and WATER.
func BuildBreadScenario() *memory.DataSource {
	d := memory.NewDataSource()

	products := []*entities.Product{
		mustCreateProduct(Flour, "FLOUR", "Wheat flour type 650", "kg", entities.RawMaterial),
		mustCreateProduct(Water, "WATER", "Water", "l", entities.RawMaterial),
		mustCreateProduct(Bag, "BAG", "Paper bag", "pcs", entities.RawMaterial),
		mustCreateProduct(Dough, "DOUGH", "Bread dough", "kg", entities.Assembly),
		mustCreateProduct(Bread, "BREAD", "Rye bread", "pcs", entities.FinishedGood),
	}
	if err := d.LoadProducts(products); err != nil {
		panic(err)
	}

	start := ScenarioStart.AddDate(-1, 0, 0)
	d.AddTechnology(mustCreateTechnology(3000, Bread, start, line(Dough, "0.8"), line(Bag, "1")))
	d.AddTechnology(mustCreateTechnology(3010, Dough, start, line(Flour, "0.6"), line(Water, "0.4")))

	stock(d, Flour, 1, "100")
	stock(d, Water, 1, "1000")
	stock(d, Bag, 1, "20")
	stock(d, Dough, 1, "10")

	d.AddVendorTerms(mustCreateVendorTerms(Flour, "V-MILL", "Mill Co", 5, 100))
	d.AddVendorTerms(mustCreateVendorTerms(Bag, "V-PACK", "Pack Ltd", 21, 500))
	d.AddVendorTerms(mustCreateVendorTerms(Dough, "V-SELF", "Own production", 1, 0))
	return d
}

// AddWeeklyUsage records consecutive weekly usage of a product starting at
// the ISO week containing from
func AddWeeklyUsage(d *memory.DataSource, product entities.ProductID, from time.Time, quantities []float64) {
	for i, q := range quantities {
		year, week := from.AddDate(0, 0, 7*i).ISOWeek()
		record, err := entities.NewWeeklyUsageRecord(product, year, week, q)
		if err != nil {
			panic(err)
		}
		d.AddUsage(*record)
	}
}
