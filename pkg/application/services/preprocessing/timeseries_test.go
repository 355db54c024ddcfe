package preprocessing

import (
	"errors"
	"testing"
	"time"

	apperrors "github.com/vsinha/supplyadvisor/pkg/domain/errors"
	"github.com/vsinha/supplyadvisor/pkg/domain/entities"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestISOWeekMonday(t *testing.T) {
	testCases := []struct {
		name    string
		year    int
		week    int
		want    time.Time
		wantErr bool
	}{
		{"2024 week 1", 2024, 1, date(2024, time.January, 1), false},
		{"2023 week 1", 2023, 1, date(2023, time.January, 2), false},
		{"2021 week 1 starts in January", 2021, 1, date(2021, time.January, 4), false},
		{"2025 week 1 starts in previous December", 2025, 1, date(2024, time.December, 30), false},
		{"2020 week 53", 2020, 53, date(2020, time.December, 28), false},
		{"2024 week 10", 2024, 10, date(2024, time.March, 4), false},
		{"2023 has no week 53", 2023, 53, time.Time{}, true},
		{"week 54", 2023, 54, time.Time{}, true},
		{"week 0", 2023, 0, time.Time{}, true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ISOWeekMonday(tc.year, tc.week)
			if tc.wantErr {
				if !errors.Is(err, apperrors.ErrInvalidCalendar) {
					t.Fatalf("Expected invalid calendar week error, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if !got.Equal(tc.want) {
				t.Errorf("Expected %s, got %s", tc.want.Format("2006-01-02"), got.Format("2006-01-02"))
			}
			if got.Weekday() != time.Monday {
				t.Errorf("Expected a Monday, got %s", got.Weekday())
			}
		})
	}
}

func TestToTimeSeries_SortsByDate(t *testing.T) {
	records := []entities.WeeklyUsageRecord{
		{ProductID: 2, Year: 2024, ISOWeek: 3, Quantity: 30},
		{ProductID: 1, Year: 2024, ISOWeek: 1, Quantity: 10},
		{ProductID: 1, Year: 2023, ISOWeek: 52, Quantity: 5},
	}

	points, err := ToTimeSeries(records)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(points) != 3 {
		t.Fatalf("Expected 3 points, got %d", len(points))
	}
	for i := 1; i < len(points); i++ {
		if points[i].Date.Before(points[i-1].Date) {
			t.Errorf("Points not sorted at index %d", i)
		}
	}
	if !points[0].Date.Equal(date(2023, time.December, 25)) {
		t.Errorf("Expected first date 2023-12-25, got %s", points[0].Date.Format("2006-01-02"))
	}
}

func TestToTimeSeries_InvalidWeek(t *testing.T) {
	records := []entities.WeeklyUsageRecord{
		{ProductID: 1, Year: 2024, ISOWeek: 1, Quantity: 10},
		{ProductID: 1, Year: 2023, ISOWeek: 54, Quantity: 10},
	}

	_, err := ToTimeSeries(records)
	if !errors.Is(err, apperrors.ErrInvalidCalendar) {
		t.Fatalf("Expected invalid calendar week error, got %v", err)
	}
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) || appErr.Details["week"] != "54" {
		t.Errorf("Expected error to name week 54, got %v", err)
	}
}

func TestFillGaps_GlobalGrid(t *testing.T) {
	w1 := date(2024, time.January, 1)
	w2 := w1.AddDate(0, 0, 7)
	w3 := w1.AddDate(0, 0, 14)

	points := []entities.TimeSeriesPoint{
		{ProductID: 1, Date: w1, Quantity: 10},
		{ProductID: 1, Date: w3, Quantity: 30},
		{ProductID: 2, Date: w2, Quantity: 20},
	}

	filled := FillGaps(points)
	if len(filled) != 6 {
		t.Fatalf("Expected 2 products x 3 weeks = 6 rows, got %d", len(filled))
	}

	expected := []struct {
		product entities.ProductID
		date    time.Time
		qty     float64
	}{
		{1, w1, 10}, {1, w2, 0}, {1, w3, 30},
		{2, w1, 0}, {2, w2, 20}, {2, w3, 0},
	}
	for i, e := range expected {
		got := filled[i]
		if got.ProductID != e.product || !got.Date.Equal(e.date) || got.Quantity != e.qty {
			t.Errorf("Row %d: expected (%d, %s, %g), got (%d, %s, %g)",
				i, e.product, e.date.Format("2006-01-02"), e.qty,
				got.ProductID, got.Date.Format("2006-01-02"), got.Quantity)
		}
	}
}

func TestFillGaps_Properties(t *testing.T) {
	start := date(2023, time.October, 2)
	var points []entities.TimeSeriesPoint
	for i := 0; i < 10; i += 3 {
		points = append(points, entities.TimeSeriesPoint{ProductID: 5, Date: start.AddDate(0, 0, 7*i), Quantity: float64(i + 1)})
	}
	points = append(points, entities.TimeSeriesPoint{ProductID: 9, Date: start.AddDate(0, 0, 7*4), Quantity: 2})

	filled := FillGaps(points)

	var originalTotal, filledTotal float64
	for _, p := range points {
		originalTotal += p.Quantity
	}
	seen := make(map[entities.ProductID]map[int64]bool)
	for _, p := range filled {
		filledTotal += p.Quantity
		if seen[p.ProductID] == nil {
			seen[p.ProductID] = make(map[int64]bool)
		}
		if seen[p.ProductID][p.Date.Unix()] {
			t.Fatalf("Duplicate row for product %d at %s", p.ProductID, p.Date)
		}
		seen[p.ProductID][p.Date.Unix()] = true
	}

	if originalTotal != filledTotal {
		t.Errorf("Expected total quantity preserved (%g), got %g", originalTotal, filledTotal)
	}
	for product, dates := range seen {
		if len(dates) != 10 {
			t.Errorf("Expected product %d on all 10 grid weeks, got %d", product, len(dates))
		}
	}
}

func TestFillGaps_SumsDuplicates(t *testing.T) {
	d := date(2024, time.January, 8)
	filled := FillGaps([]entities.TimeSeriesPoint{
		{ProductID: 1, Date: d, Quantity: 4},
		{ProductID: 1, Date: d, Quantity: 6},
	})
	if len(filled) != 1 || filled[0].Quantity != 10 {
		t.Fatalf("Expected a single row with quantity 10, got %+v", filled)
	}
}

func TestFillGaps_Empty(t *testing.T) {
	if got := FillGaps(nil); len(got) != 0 {
		t.Errorf("Expected empty output, got %d rows", len(got))
	}
}

func TestGroupByProduct(t *testing.T) {
	d := date(2024, time.January, 1)
	products, groups := GroupByProduct([]entities.TimeSeriesPoint{
		{ProductID: 3, Date: d.AddDate(0, 0, 7), Quantity: 2},
		{ProductID: 1, Date: d, Quantity: 1},
		{ProductID: 3, Date: d, Quantity: 1},
	})

	if len(products) != 2 || products[0] != 1 || products[1] != 3 {
		t.Fatalf("Expected products [1 3], got %v", products)
	}
	if len(groups[3]) != 2 || !groups[3][0].Date.Equal(d) {
		t.Errorf("Expected product 3 sorted by date, got %+v", groups[3])
	}
}
