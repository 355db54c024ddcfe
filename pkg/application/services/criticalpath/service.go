package criticalpath

import (
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vsinha/supplyadvisor/pkg/application/dto"
	"github.com/vsinha/supplyadvisor/pkg/domain/entities"
	apperrors "github.com/vsinha/supplyadvisor/pkg/domain/errors"
)

// Service performs critical path analysis on exploded BOM trees
type Service struct {
	log *slog.Logger
	now func() time.Time
}

// NewService creates a new critical path service
func NewService(logger *slog.Logger) *Service {
	return &Service{
		log: logger.With(slog.String("component", "criticalpath")),
		now: time.Now,
	}
}

// Analyze finds the root-to-leaf delivery paths of a BOM tree and returns the
// top N ordered by effective lead time. A non-positive topN keeps every path.
func (s *Service) Analyze(tree *dto.BOMTree, topN int) (*entities.CriticalPathAnalysis, error) {
	if tree == nil {
		return nil, apperrors.ErrValidation("BOM tree is required")
	}

	allPaths := FindPaths(tree)

	analysis := &entities.CriticalPathAnalysis{
		ProductID:    tree.ProductID,
		Quantity:     tree.Quantity,
		AnalysisDate: s.now(),
		TotalPaths:   len(allPaths),
	}
	if len(allPaths) == 0 {
		return analysis, nil
	}

	sort.SliceStable(allPaths, func(i, j int) bool {
		if allPaths[i].EffectiveLeadTime != allPaths[j].EffectiveLeadTime {
			return allPaths[i].EffectiveLeadTime > allPaths[j].EffectiveLeadTime
		}
		if allPaths[i].TotalLeadTime != allPaths[j].TotalLeadTime {
			return allPaths[i].TotalLeadTime > allPaths[j].TotalLeadTime
		}
		return allPaths[i].PathLength > allPaths[j].PathLength
	})

	topPaths := allPaths
	if topN > 0 && len(allPaths) > topN {
		topPaths = allPaths[:topN]
	}

	analysis.CriticalPath = allPaths[0]
	analysis.TopPaths = topPaths

	s.log.Debug("critical path analysis completed",
		slog.Int64("product_id", int64(tree.ProductID)),
		slog.Int("paths", len(allPaths)),
		slog.Int("total_lead_time", analysis.CriticalPath.TotalLeadTime),
		slog.Int("effective_lead_time", analysis.CriticalPath.EffectiveLeadTime),
		slog.String("bottleneck", analysis.CriticalPath.Bottleneck),
	)
	return analysis, nil
}

// FindPaths returns one path per leaf of the tree in depth-first order
func FindPaths(tree *dto.BOMTree) []entities.CriticalPath {
	var paths []entities.CriticalPath
	tree.Walk(func(n *dto.BOMTreeNode, path []*dto.BOMTreeNode) {
		if len(n.Children) > 0 {
			return
		}
		paths = append(paths, buildPath(path))
	})
	return paths
}

func buildPath(nodes []*dto.BOMTreeNode) entities.CriticalPath {
	cp := entities.CriticalPath{
		PathLength:  len(nodes),
		Path:        make([]string, 0, len(nodes)),
		PathDetails: make([]entities.CriticalPathNode, 0, len(nodes)),
	}

	bottleneckDays := -1
	for _, n := range nodes {
		effective := EffectiveLeadTime(n.Line.DeliveryTimeDays, n.Line.CurrentStock, n.GrossRequired)
		cp.TotalLeadTime += n.Line.DeliveryTimeDays
		cp.EffectiveLeadTime += effective

		cp.Path = append(cp.Path, n.Line.IngredientCode)
		cp.PathDetails = append(cp.PathDetails, entities.CriticalPathNode{
			IngredientID:      n.Line.IngredientID,
			IngredientCode:    n.Line.IngredientCode,
			IngredientName:    n.Line.IngredientName,
			DeliveryTimeDays:  n.Line.DeliveryTimeDays,
			CumulativeDays:    cp.TotalLeadTime,
			Level:             n.Level,
			HasStock:          n.Line.CurrentStock.IsPositive(),
			CurrentStock:      n.Line.CurrentStock,
			RequiredQty:       n.GrossRequired,
			EffectiveLeadTime: effective,
		})

		// ties keep the ingredient closest to the root
		if n.Line.DeliveryTimeDays > bottleneckDays {
			bottleneckDays = n.Line.DeliveryTimeDays
			cp.Bottleneck = n.Line.IngredientCode
		}
	}
	return cp
}

// EffectiveLeadTime is zero when stock covers the requirement and is reduced
// in proportion to partial coverage otherwise
func EffectiveLeadTime(days int, stock, required decimal.Decimal) int {
	switch {
	case days <= 0:
		return 0
	case !required.IsPositive() || stock.GreaterThanOrEqual(required):
		return 0
	case !stock.IsPositive():
		return days
	}

	uncovered := decimal.NewFromInt(1).Sub(stock.Div(required))
	return int(decimal.NewFromInt(int64(days)).Mul(uncovered).IntPart())
}

// Describe renders an analysis as text lines for reports
func Describe(a *entities.CriticalPathAnalysis) []string {
	lines := []string{a.Summary()}
	for i, p := range a.TopPaths {
		lines = append(lines, fmt.Sprintf("%d. %s", i+1, p.Summary()))
	}
	return lines
}
