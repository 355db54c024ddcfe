package postgres

import (
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/vsinha/supplyadvisor/pkg/domain/repositories"
)

// Consumed material line types of a production order
const (
	lineTypeMaterial     = 1
	lineTypeSemiFinished = 2
)

const bomColumns = `
	p.id   AS ingredient_id,
	p.code AS ingredient_code,
	p.name AS ingredient_name,
	l.quantity_per_unit,
	p.unit,
	COALESCE(s.quantity, 0) AS current_stock,
	EXISTS (SELECT 1 FROM technologies t2 WHERE t2.product_id = p.id) AS is_assembly`

const deliveryColumns = `,
	COALESCE(v.delivery_time_days, 0) AS delivery_time_days,
	COALESCE(v.vendor_code, '')       AS vendor_code,
	COALESCE(v.vendor_name, '')       AS vendor_name,
	COALESCE(v.min_order_qty, 0)      AS min_order_qty`

// stockSubquery sums stock per product, optionally over selected warehouses
func stockSubquery(warehouseIDs []int64) (string, []interface{}) {
	if len(warehouseIDs) == 0 {
		return `SELECT product_id, SUM(quantity) AS quantity FROM stock GROUP BY product_id`, nil
	}
	return `SELECT product_id, SUM(quantity) AS quantity FROM stock WHERE warehouse_id IN (?) GROUP BY product_id`,
		[]interface{}{warehouseIDs}
}

// bomQuery renders the BOM lookup of one technology. Placeholders are in
// "?" form and must be rebound for the driver.
func bomQuery(technologyID int64, warehouseIDs []int64, withDelivery bool) (string, []interface{}, error) {
	stockSQL, args := stockSubquery(warehouseIDs)

	var b strings.Builder
	b.WriteString("SELECT")
	b.WriteString(bomColumns)
	if withDelivery {
		b.WriteString(deliveryColumns)
	}
	b.WriteString(`
FROM technology_lines l
JOIN products p ON p.id = l.ingredient_id
LEFT JOIN (`)
	b.WriteString(stockSQL)
	b.WriteString(`) s ON s.product_id = p.id`)
	if withDelivery {
		b.WriteString(`
LEFT JOIN vendor_terms v ON v.product_id = p.id AND v.is_default`)
	}
	b.WriteString(`
WHERE l.technology_id = ?
ORDER BY l.position`)

	args = append(args, technologyID)
	return sqlx.In(b.String(), args...)
}

// substitutesQuery lists every substitute of an ingredient code with stock
func substitutesQuery(ingredientCode string, warehouseIDs []int64) (string, []interface{}, error) {
	stockSQL, args := stockSubquery(warehouseIDs)
	query := fmt.Sprintf(`SELECT
	sub.ingredient_code AS original_code,
	p.id   AS substitute_id,
	p.code AS substitute_code,
	p.name AS substitute_name,
	p.unit,
	COALESCE(s.quantity, 0) AS current_stock,
	sub.is_allowed
FROM substitutes sub
JOIN products p ON p.id = sub.substitute_id
LEFT JOIN (%s) s ON s.product_id = p.id
WHERE sub.ingredient_code = ?
ORDER BY current_stock DESC, p.code`, stockSQL)

	args = append(args, ingredientCode)
	return sqlx.In(query, args...)
}

// currentStockQuery lists stock per product over the selected warehouses
func currentStockQuery(warehouseIDs []int64) (string, []interface{}, error) {
	stockSQL, args := stockSubquery(warehouseIDs)
	query := fmt.Sprintf(`SELECT
	p.id AS product_id,
	p.code,
	p.name,
	p.unit,
	s.quantity::float8 AS quantity
FROM products p
JOIN (%s) s ON s.product_id = p.id
ORDER BY p.code`, stockSQL)
	return sqlx.In(query, args...)
}

// weeklyUsageQuery aggregates consumed materials of completed production
// orders by ISO year and week
func weeklyUsageQuery(q repositories.UsageQuery) (string, []interface{}, error) {
	var b strings.Builder
	args := []interface{}{[]int{lineTypeMaterial, lineTypeSemiFinished}}

	b.WriteString(`SELECT
	l.product_id,
	EXTRACT(ISOYEAR FROM o.completed_at)::int AS iso_year,
	EXTRACT(WEEK FROM o.completed_at)::int    AS iso_week,
	SUM(l.quantity)::float8                   AS quantity
FROM production_order_lines l
JOIN production_orders o ON o.id = l.order_id
WHERE o.completed_at IS NOT NULL
	AND l.line_type IN (?)`)

	if q.From != nil {
		b.WriteString("\n\tAND o.completed_at >= ?")
		args = append(args, startOfDay(*q.From))
	}
	if q.To != nil {
		b.WriteString("\n\tAND o.completed_at < ?")
		args = append(args, startOfDay(*q.To).AddDate(0, 0, 1))
	}
	if len(q.ProductIDs) > 0 {
		ids := make([]int64, len(q.ProductIDs))
		for i, id := range q.ProductIDs {
			ids[i] = int64(id)
		}
		b.WriteString("\n\tAND l.product_id IN (?)")
		args = append(args, ids)
	}

	b.WriteString(`
GROUP BY l.product_id, iso_year, iso_week
ORDER BY l.product_id, iso_year, iso_week`)
	return sqlx.In(b.String(), args...)
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
