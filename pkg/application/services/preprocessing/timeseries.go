package preprocessing

import (
	"sort"
	"time"

	apperrors "github.com/vsinha/supplyadvisor/pkg/domain/errors"
	"github.com/vsinha/supplyadvisor/pkg/domain/entities"
)

const week = 7 * 24 * time.Hour

// ISOWeeksInYear returns 52 or 53. December 28th always falls in the last ISO week.
func ISOWeeksInYear(year int) int {
	_, w := time.Date(year, time.December, 28, 0, 0, 0, 0, time.UTC).ISOWeek()
	return w
}

// ISOWeekMonday returns the Monday that starts the given ISO week
func ISOWeekMonday(year, isoWeek int) (time.Time, error) {
	if year < 1 || isoWeek < 1 || isoWeek > ISOWeeksInYear(year) {
		return time.Time{}, apperrors.ErrInvalidCalendarWeek(year, isoWeek)
	}

	// January 4th is always in week 1
	jan4 := time.Date(year, time.January, 4, 0, 0, 0, 0, time.UTC)
	offset := (int(jan4.Weekday()) + 6) % 7
	week1Monday := jan4.AddDate(0, 0, -offset)
	return week1Monday.AddDate(0, 0, (isoWeek-1)*7), nil
}

// ToTimeSeries converts (year, ISO week) records into dated points sorted
// ascending by date, ties broken by product
func ToTimeSeries(records []entities.WeeklyUsageRecord) ([]entities.TimeSeriesPoint, error) {
	points := make([]entities.TimeSeriesPoint, 0, len(records))
	for _, r := range records {
		date, err := ISOWeekMonday(r.Year, r.ISOWeek)
		if err != nil {
			return nil, err
		}
		points = append(points, entities.TimeSeriesPoint{
			ProductID: r.ProductID,
			Date:      date,
			Quantity:  r.Quantity,
		})
	}

	sort.SliceStable(points, func(i, j int) bool {
		if !points[i].Date.Equal(points[j].Date) {
			return points[i].Date.Before(points[j].Date)
		}
		return points[i].ProductID < points[j].ProductID
	})
	return points, nil
}

type seriesKey struct {
	product entities.ProductID
	date    int64
}

// FillGaps expands every product onto the global weekly grid spanning the
// earliest to the latest date of the whole input. Missing weeks get zero
// quantity and duplicate (product, date) pairs are summed. Output is ordered
// by product, then date.
func FillGaps(points []entities.TimeSeriesPoint) []entities.TimeSeriesPoint {
	if len(points) == 0 {
		return []entities.TimeSeriesPoint{}
	}

	minDate, maxDate := points[0].Date, points[0].Date
	observed := make(map[seriesKey]float64, len(points))
	productSet := make(map[entities.ProductID]struct{})
	for _, p := range points {
		if p.Date.Before(minDate) {
			minDate = p.Date
		}
		if p.Date.After(maxDate) {
			maxDate = p.Date
		}
		observed[seriesKey{p.ProductID, p.Date.Unix()}] += p.Quantity
		productSet[p.ProductID] = struct{}{}
	}

	products := sortedProducts(productSet)
	grid := weeklyGrid(minDate, maxDate)

	filled := make([]entities.TimeSeriesPoint, 0, len(products)*len(grid))
	for _, product := range products {
		for _, date := range grid {
			filled = append(filled, entities.TimeSeriesPoint{
				ProductID: product,
				Date:      date,
				Quantity:  observed[seriesKey{product, date.Unix()}],
			})
		}
	}
	return filled
}

// Prepare converts usage records and fills gaps on the global grid
func Prepare(records []entities.WeeklyUsageRecord) ([]entities.TimeSeriesPoint, error) {
	points, err := ToTimeSeries(records)
	if err != nil {
		return nil, err
	}
	return FillGaps(points), nil
}

// GroupByProduct splits a series per product. Products are returned in
// ascending order and each product's points are sorted by date.
func GroupByProduct(points []entities.TimeSeriesPoint) ([]entities.ProductID, map[entities.ProductID][]entities.TimeSeriesPoint) {
	groups := make(map[entities.ProductID][]entities.TimeSeriesPoint)
	productSet := make(map[entities.ProductID]struct{})
	for _, p := range points {
		groups[p.ProductID] = append(groups[p.ProductID], p)
		productSet[p.ProductID] = struct{}{}
	}
	for _, g := range groups {
		sort.SliceStable(g, func(i, j int) bool { return g[i].Date.Before(g[j].Date) })
	}
	return sortedProducts(productSet), groups
}

// Quantities extracts the quantity column of a series
func Quantities(points []entities.TimeSeriesPoint) []float64 {
	values := make([]float64, len(points))
	for i, p := range points {
		values[i] = p.Quantity
	}
	return values
}

func weeklyGrid(from, to time.Time) []time.Time {
	var grid []time.Time
	for d := from; !d.After(to); d = d.Add(week) {
		grid = append(grid, d)
	}
	return grid
}

func sortedProducts(set map[entities.ProductID]struct{}) []entities.ProductID {
	products := make([]entities.ProductID, 0, len(set))
	for p := range set {
		products = append(products, p)
	}
	sort.Slice(products, func(i, j int) bool { return products[i] < products[j] })
	return products
}
