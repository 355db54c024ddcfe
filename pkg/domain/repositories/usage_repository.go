package repositories

import (
	"context"
	"time"

	"github.com/vsinha/supplyadvisor/pkg/domain/entities"
)

// UsageQuery bounds the historical usage window. Nil bounds are open.
type UsageQuery struct {
	From       *time.Time
	To         *time.Time
	ProductIDs []entities.ProductID
}

// UsageRepository provides weekly ingredient consumption from realized production
type UsageRepository interface {
	GetWeeklyUsage(ctx context.Context, query UsageQuery) ([]entities.WeeklyUsageRecord, error)
}

// StockRepository provides current on-hand stock
type StockRepository interface {
	GetCurrentStock(ctx context.Context, warehouseIDs []int64) ([]entities.StockLevel, error)
}

// HolidayRepository provides company holidays used as a forecasting feature
type HolidayRepository interface {
	GetHolidays(ctx context.Context) ([]time.Time, error)
}
