package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/vsinha/supplyadvisor/pkg/domain/entities"
	"github.com/vsinha/supplyadvisor/pkg/domain/repositories"
)

// GetWeeklyUsage aggregates realized production consumption per ISO week
func (r *Repository) GetWeeklyUsage(ctx context.Context, q repositories.UsageQuery) ([]entities.WeeklyUsageRecord, error) {
	op := "Repository.GetWeeklyUsage"

	query, args, err := weeklyUsageQuery(q)
	if err != nil {
		return nil, fmt.Errorf("%s: build query: %w", op, err)
	}

	records := []entities.WeeklyUsageRecord{}
	if err := r.DB.SelectContext(ctx, &records, r.DB.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return records, nil
}

// GetCurrentStock returns on-hand stock of every stocked product
func (r *Repository) GetCurrentStock(ctx context.Context, warehouseIDs []int64) ([]entities.StockLevel, error) {
	op := "Repository.GetCurrentStock"

	query, args, err := currentStockQuery(warehouseIDs)
	if err != nil {
		return nil, fmt.Errorf("%s: build query: %w", op, err)
	}

	levels := []entities.StockLevel{}
	if err := r.DB.SelectContext(ctx, &levels, r.DB.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return levels, nil
}

// GetHolidays returns company holidays
func (r *Repository) GetHolidays(ctx context.Context) ([]time.Time, error) {
	op := "Repository.GetHolidays"

	days := []time.Time{}
	if err := r.DB.SelectContext(ctx, &days, `SELECT day FROM holidays ORDER BY day`); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return days, nil
}
