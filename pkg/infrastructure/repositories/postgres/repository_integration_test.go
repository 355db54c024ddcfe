package postgres

import (
	"context"
	"os"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"github.com/vsinha/supplyadvisor/pkg/domain/repositories"
	"github.com/vsinha/supplyadvisor/pkg/infrastructure/logging"
)

func setupTestDB(t *testing.T) *Repository {
	t.Helper()
	_ = godotenv.Load("../../../../.env")

	// Set TEST_DATABASE_URL to run integration tests against a scratch database.
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping integration test")
	}

	ctx := context.Background()
	db, err := sqlx.ConnectContext(ctx, "pgx", dsn)
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := NewMigrator(db, logging.Discard(), "public").Run(ctx); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	_, err = db.ExecContext(ctx, `
		TRUNCATE TABLE production_order_lines, production_orders, shortage_documents, substitutes,
			vendor_terms, technology_lines, technologies, stock, holidays, products CASCADE;

		INSERT INTO products (id, code, name, unit, category) VALUES
		(1, 'FLOUR', 'Wheat flour', 'kg', 0),
		(2, 'SUGAR', 'White sugar', 'kg', 0),
		(5, 'BROWN-SUGAR', 'Brown sugar', 'kg', 0),
		(100, 'CAKE', 'Sponge cake', 'pcs', 2);

		INSERT INTO technologies (id, product_id, name, valid_from) VALUES
		(10, 100, 'old', '2023-01-01'),
		(11, 100, 'new', '2024-01-01');

		INSERT INTO technology_lines (technology_id, position, ingredient_id, quantity_per_unit) VALUES
		(10, 1, 1, 3), (10, 2, 2, 1),
		(11, 1, 1, 2), (11, 2, 2, 1);

		INSERT INTO stock (product_id, warehouse_id, quantity) VALUES
		(1, 1, 100), (1, 2, 50), (2, 1, 45), (5, 1, 30);

		INSERT INTO vendor_terms (product_id, vendor_code, vendor_name, delivery_time_days, min_order_qty, is_default) VALUES
		(2, 'V-SUGAR', 'Sugar Works', 14, 25, true);

		INSERT INTO substitutes (ingredient_code, substitute_id, is_allowed) VALUES ('SUGAR', 5, true);
		INSERT INTO holidays (day) VALUES ('2024-05-01');

		INSERT INTO production_orders (id, number, completed_at) VALUES
		(1, 'ZP/1', '2024-03-05 10:00'), (2, 'ZP/2', '2024-03-07 10:00'), (3, 'ZP/3', NULL);
		INSERT INTO production_order_lines (order_id, product_id, line_type, quantity) VALUES
		(1, 1, 1, 20), (2, 1, 1, 30), (2, 100, 3, 10), (3, 1, 1, 99);
	`)
	if err != nil {
		t.Fatalf("Failed to seed test database: %v", err)
	}

	return NewWithDB(db, logging.Discard(), "public")
}

func TestRepository_GetBOMWithDeliveryInfo(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()

	lines, err := repo.GetBOMWithDeliveryInfo(ctx, repositories.BOMQuery{ProductID: 100, WarehouseIDs: []int64{1}})
	if err != nil {
		t.Fatalf("Failed to get BOM: %v", err)
	}
	if len(lines) != 2 {
		t.Fatalf("Expected 2 lines, got %d", len(lines))
	}
	if !lines[0].QuantityPerUnit.Equal(decimal.NewFromInt(2)) {
		t.Errorf("Expected newest technology, got %s per unit", lines[0].QuantityPerUnit)
	}
	if !lines[0].CurrentStock.Equal(decimal.NewFromInt(100)) {
		t.Errorf("Expected flour stock 100 in warehouse 1, got %s", lines[0].CurrentStock)
	}
	if lines[1].DeliveryTimeDays != 14 || lines[1].VendorCode != "V-SUGAR" {
		t.Errorf("Expected sugar vendor terms, got %+v", lines[1])
	}
	if lines[0].VendorCode != "" {
		t.Errorf("Expected no vendor for flour, got %s", lines[0].VendorCode)
	}
}

func TestRepository_GetWeeklyUsage(t *testing.T) {
	repo := setupTestDB(t)

	records, err := repo.GetWeeklyUsage(context.Background(), repositories.UsageQuery{})
	if err != nil {
		t.Fatalf("Failed to get usage: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("Expected one aggregated week, got %+v", records)
	}
	if records[0].Year != 2024 || records[0].ISOWeek != 10 || records[0].Quantity != 50 {
		t.Errorf("Expected 50 in 2024-W10, got %+v", records[0])
	}
}

func TestRepository_GetSubstitutesAndHolidays(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()

	subs, err := repo.GetSubstitutes(ctx, "SUGAR", nil)
	if err != nil {
		t.Fatalf("Failed to get substitutes: %v", err)
	}
	if len(subs) != 1 || subs[0].Code != "BROWN-SUGAR" || !subs[0].Allowed {
		t.Errorf("Expected allowed BROWN-SUGAR, got %+v", subs)
	}

	days, err := repo.GetHolidays(ctx)
	if err != nil {
		t.Fatalf("Failed to get holidays: %v", err)
	}
	if len(days) != 1 {
		t.Errorf("Expected 1 holiday, got %d", len(days))
	}
}
