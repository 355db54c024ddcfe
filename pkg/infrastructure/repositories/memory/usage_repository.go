package memory

import (
	"context"
	"sort"
	"time"

	"github.com/vsinha/supplyadvisor/pkg/domain/entities"
	"github.com/vsinha/supplyadvisor/pkg/domain/repositories"
)

// AddUsage records weekly consumption. Records for the same product and
// week are summed.
func (d *DataSource) AddUsage(record entities.WeeklyUsageRecord) {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	for i := range d.usage {
		u := &d.usage[i]
		if u.ProductID == record.ProductID && u.Year == record.Year && u.ISOWeek == record.ISOWeek {
			u.Quantity += record.Quantity
			return
		}
	}
	d.usage = append(d.usage, record)
}

// LoadUsage records weekly consumption
func (d *DataSource) LoadUsage(records []*entities.WeeklyUsageRecord) error {
	for _, r := range records {
		d.AddUsage(*r)
	}
	return nil
}

// GetWeeklyUsage returns usage records inside the query window ordered by
// product, year and week
func (d *DataSource) GetWeeklyUsage(ctx context.Context, query repositories.UsageQuery) ([]entities.WeeklyUsageRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	d.mutex.RLock()
	defer d.mutex.RUnlock()

	wanted := make(map[entities.ProductID]bool, len(query.ProductIDs))
	for _, id := range query.ProductIDs {
		wanted[id] = true
	}

	records := make([]entities.WeeklyUsageRecord, 0, len(d.usage))
	for _, u := range d.usage {
		if len(wanted) > 0 && !wanted[u.ProductID] {
			continue
		}
		if query.From != nil && weekBefore(u.Year, u.ISOWeek, *query.From) {
			continue
		}
		if query.To != nil && weekAfter(u.Year, u.ISOWeek, *query.To) {
			continue
		}
		records = append(records, u)
	}

	sort.Slice(records, func(i, j int) bool {
		a, b := records[i], records[j]
		if a.ProductID != b.ProductID {
			return a.ProductID < b.ProductID
		}
		if a.Year != b.Year {
			return a.Year < b.Year
		}
		return a.ISOWeek < b.ISOWeek
	})
	return records, nil
}

func weekBefore(year, week int, t time.Time) bool {
	y, w := t.ISOWeek()
	return year < y || (year == y && week < w)
}

func weekAfter(year, week int, t time.Time) bool {
	y, w := t.ISOWeek()
	return year > y || (year == y && week > w)
}

// AddHoliday records a company holiday
func (d *DataSource) AddHoliday(day time.Time) {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	d.holidays = append(d.holidays, day)
}

// GetHolidays returns the recorded company holidays
func (d *DataSource) GetHolidays(ctx context.Context) ([]time.Time, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	d.mutex.RLock()
	defer d.mutex.RUnlock()
	return append([]time.Time(nil), d.holidays...), nil
}
