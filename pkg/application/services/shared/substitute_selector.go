package shared

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/vsinha/supplyadvisor/pkg/domain/entities"
)

// AllowedSubstitutes keeps only substitutes permitted for production
func AllowedSubstitutes(subs []entities.Substitute) []entities.Substitute {
	allowed := make([]entities.Substitute, 0, len(subs))
	for _, s := range subs {
		if s.Allowed {
			allowed = append(allowed, s)
		}
	}
	return allowed
}

// RankSubstitutes orders allowed substitutes for a missing quantity: those
// whose stock covers the shortage first, then by stock descending, then by code
func RankSubstitutes(subs []entities.Substitute, missing decimal.Decimal) []entities.SmartSubstitute {
	allowed := AllowedSubstitutes(subs)
	ranked := make([]entities.SmartSubstitute, 0, len(allowed))
	for _, s := range allowed {
		coverage := decimal.NewFromInt(100)
		if missing.IsPositive() {
			coverage = s.CurrentStock.Div(missing).Mul(decimal.NewFromInt(100)).Round(1)
		}
		ranked = append(ranked, entities.SmartSubstitute{
			Substitute:     s,
			CoversShortage: s.Covers(missing),
			Coverage:       coverage,
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].CoversShortage != ranked[j].CoversShortage {
			return ranked[i].CoversShortage
		}
		if !ranked[i].CurrentStock.Equal(ranked[j].CurrentStock) {
			return ranked[i].CurrentStock.GreaterThan(ranked[j].CurrentStock)
		}
		return ranked[i].Code < ranked[j].Code
	})
	return ranked
}

// SelectBestSubstitute returns the top-ranked substitute, or nil when none is allowed
func SelectBestSubstitute(subs []entities.Substitute, missing decimal.Decimal) *entities.SmartSubstitute {
	ranked := RankSubstitutes(subs, missing)
	if len(ranked) == 0 {
		return nil
	}
	return &ranked[0]
}
