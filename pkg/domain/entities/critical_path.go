package entities

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// CriticalPathNode is one ingredient on a delivery path through the BOM tree
type CriticalPathNode struct {
	IngredientID      ProductID
	IngredientCode    string
	IngredientName    string
	DeliveryTimeDays  int
	CumulativeDays    int
	Level             int
	HasStock          bool
	CurrentStock      decimal.Decimal
	RequiredQty       decimal.Decimal
	EffectiveLeadTime int // zero when stock covers the requirement
}

// CriticalPath is a root-to-leaf path through the BOM with its lead times
type CriticalPath struct {
	TotalLeadTime     int
	EffectiveLeadTime int
	PathLength        int
	Path              []string
	PathDetails       []CriticalPathNode
	Bottleneck        string // ingredient with the longest delivery time on the path
}

// CriticalPathAnalysis contains the longest delivery paths for a product
type CriticalPathAnalysis struct {
	ProductID    ProductID
	Quantity     decimal.Decimal
	AnalysisDate time.Time
	CriticalPath CriticalPath
	TopPaths     []CriticalPath
	TotalPaths   int
}

// Summary returns a one-line description of the critical path
func (a *CriticalPathAnalysis) Summary() string {
	if len(a.TopPaths) == 0 {
		return "No critical path found"
	}

	cp := a.CriticalPath
	summary := fmt.Sprintf("Critical path: %d days (%d effective)", cp.TotalLeadTime, cp.EffectiveLeadTime)
	if cp.Bottleneck != "" {
		summary += fmt.Sprintf(" | Bottleneck: %s", cp.Bottleneck)
	}
	return summary
}

// Summary returns a one-line description of the path
func (p *CriticalPath) Summary() string {
	return fmt.Sprintf("%d days (%d effective) - %d levels - %s",
		p.TotalLeadTime, p.EffectiveLeadTime, p.PathLength, p.Bottleneck)
}

// StockCoverage returns the percentage of top paths with at least one
// ingredient already in stock
func (a *CriticalPathAnalysis) StockCoverage() float64 {
	if len(a.TopPaths) == 0 {
		return 0.0
	}

	covered := 0
	for _, path := range a.TopPaths {
		for _, node := range path.PathDetails {
			if node.HasStock {
				covered++
				break
			}
		}
	}

	return float64(covered) / float64(len(a.TopPaths)) * 100.0
}
