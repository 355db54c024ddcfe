package alerts

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/vsinha/supplyadvisor/pkg/application/services/preprocessing"
	"github.com/vsinha/supplyadvisor/pkg/domain/entities"
	"github.com/vsinha/supplyadvisor/pkg/domain/repositories"
)

const (
	// DefaultMinimumStockDays is the stock coverage purchasing aims to keep
	DefaultMinimumStockDays = 14
	// DefaultWindowWeeks is the usage history averaged per product
	DefaultWindowWeeks = 12
)

// Service detects products whose stock will not last the minimum coverage
type Service struct {
	log         *slog.Logger
	stockRepo   repositories.StockRepository
	usageRepo   repositories.UsageRepository
	minimumDays int
	windowWeeks int
	now         func() time.Time
}

// Option configures the alert service
type Option func(*Service)

// WithMinimumStockDays overrides the minimum coverage in days
func WithMinimumStockDays(days int) Option {
	return func(s *Service) {
		if days > 0 {
			s.minimumDays = days
		}
	}
}

// WithWindowWeeks overrides the number of weeks of usage averaged
func WithWindowWeeks(weeks int) Option {
	return func(s *Service) {
		if weeks > 0 {
			s.windowWeeks = weeks
		}
	}
}

// WithClock sets the reference time of the usage window
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates a new stock alert service
func NewService(logger *slog.Logger, stockRepo repositories.StockRepository, usageRepo repositories.UsageRepository, opts ...Option) *Service {
	s := &Service{
		log:         logger.With(slog.String("component", "alerts")),
		stockRepo:   stockRepo,
		usageRepo:   usageRepo,
		minimumDays: DefaultMinimumStockDays,
		windowWeeks: DefaultWindowWeeks,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CriticalShortages compares current stock with the average weekly usage of
// the recent window. Only KRYTYCZNY and NISKI products are returned unless
// includeAll is set. Alerts are ordered by priority, then days of stock.
func (s *Service) CriticalShortages(ctx context.Context, warehouseIDs []int64, includeAll bool) ([]entities.StockAlert, error) {
	levels, err := s.stockRepo.GetCurrentStock(ctx, warehouseIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load current stock: %w", err)
	}
	if len(levels) == 0 {
		return []entities.StockAlert{}, nil
	}

	usage, err := s.averageUsage(ctx)
	if err != nil {
		return nil, err
	}
	if len(usage) == 0 {
		s.log.Warn("no usage history in the alert window", slog.Int("weeks", s.windowWeeks))
	}

	alerts := make([]entities.StockAlert, 0, len(levels))
	for _, level := range levels {
		alert := s.classify(level, usage[level.ProductID])
		if !includeAll && alert.Status != entities.AlertCritical && alert.Status != entities.AlertLow {
			continue
		}
		alerts = append(alerts, alert)
	}

	sort.SliceStable(alerts, func(i, j int) bool {
		if alerts[i].Priority != alerts[j].Priority {
			return alerts[i].Priority < alerts[j].Priority
		}
		di, dj := daysOrInf(alerts[i]), daysOrInf(alerts[j])
		if di != dj {
			return di < dj
		}
		return alerts[i].Code < alerts[j].Code
	})

	s.log.Info("stock alerts evaluated",
		slog.Int("products", len(levels)),
		slog.Int("alerts", len(alerts)),
	)
	return alerts, nil
}

// averageUsage returns the mean weekly usage per product over the whole
// window ending at the current week. Weeks without usage count as zero.
func (s *Service) averageUsage(ctx context.Context) (map[entities.ProductID]float64, error) {
	now := s.now()
	from := now.AddDate(0, 0, -7*(s.windowWeeks-1))

	records, err := s.usageRepo.GetWeeklyUsage(ctx, repositories.UsageQuery{From: &from, To: &now})
	if err != nil {
		return nil, fmt.Errorf("failed to load usage history: %w", err)
	}

	series, err := preprocessing.Prepare(records)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare usage history: %w", err)
	}

	products, groups := preprocessing.GroupByProduct(series)
	averages := make(map[entities.ProductID]float64, len(products))
	for _, id := range products {
		points := groups[id]
		if len(points) > s.windowWeeks {
			points = points[len(points)-s.windowWeeks:]
		}
		var total float64
		for _, p := range points {
			total += p.Quantity
		}
		averages[id] = total / float64(s.windowWeeks)
	}
	return averages, nil
}

func (s *Service) classify(level entities.StockLevel, avgWeekly float64) entities.StockAlert {
	alert := entities.StockAlert{
		StockLevel:     level,
		AvgWeeklyUsage: math.Round(avgWeekly*100) / 100,
		Status:         entities.AlertNoUsage,
	}

	if avgWeekly > 0 {
		days := level.Quantity / (avgWeekly / 7)
		alert.DaysOfStock = &days

		minimum := float64(s.minimumDays)
		switch {
		case days < minimum*0.5:
			alert.Status = entities.AlertCritical
		case days < minimum:
			alert.Status = entities.AlertLow
		default:
			alert.Status = entities.AlertOK
		}
	}

	alert.Priority = alert.Status.Priority()
	return alert
}

func daysOrInf(a entities.StockAlert) float64 {
	if a.DaysOfStock == nil {
		return math.Inf(1)
	}
	return *a.DaysOfStock
}

// Summary counts alerts per status
type Summary struct {
	Total    int `json:"total_items"`
	Critical int `json:"critical_count"`
	Low      int `json:"low_count"`
	OK       int `json:"ok_count"`
	NoUsage  int `json:"no_usage_count"`
}

// Summarize counts alerts per status
func Summarize(alerts []entities.StockAlert) Summary {
	summary := Summary{Total: len(alerts)}
	for _, a := range alerts {
		switch a.Status {
		case entities.AlertCritical:
			summary.Critical++
		case entities.AlertLow:
			summary.Low++
		case entities.AlertOK:
			summary.OK++
		default:
			summary.NoUsage++
		}
	}
	return summary
}

// Brief renders alerts as markdown context for the narrator
func Brief(alerts []entities.StockAlert, at time.Time) string {
	if len(alerts) == 0 {
		return "No critical stock shortages."
	}

	var b strings.Builder
	b.WriteString("## Critical stock analysis\n\n")
	fmt.Fprintf(&b, "**Analysis date:** %s\n", at.Format("2006-01-02 15:04"))
	fmt.Fprintf(&b, "**Alerts:** %d\n\n", len(alerts))
	b.WriteString("| Code | Name | Stock | Avg weekly | Days of stock | Status |\n")
	b.WriteString("|------|------|-------|------------|---------------|--------|\n")

	const limit = 15
	for i, a := range alerts {
		if i == limit {
			fmt.Fprintf(&b, "\n*... and %d more*\n", len(alerts)-limit)
			break
		}
		fmt.Fprintf(&b, "| %s | %s | %.1f | %.2f | %s | **%s** |\n",
			a.Code, truncate(a.Name, 30), a.Quantity, a.AvgWeeklyUsage, FormatDays(a.DaysOfStock), a.Status)
	}

	b.WriteString("\n### Please provide\n")
	b.WriteString("1. Likely causes of the low stock\n")
	b.WriteString("2. Purchasing recommendations\n")
	b.WriteString("3. Urgency of each item\n")
	return b.String()
}

// FormatDays renders days of stock rounded to whole days, or ∞ without usage
func FormatDays(days *float64) string {
	if days == nil {
		return "∞"
	}
	return fmt.Sprintf("%.0f", *days)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
