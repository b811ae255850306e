package domain

import (
	"sort"

	"github.com/shopspring/decimal"
)

// DefaultTiers returns the built-in tier table, ordered descending by
// MinPoints. A tier is reached by either point balance or lifetime spend.
func DefaultTiers() []LoyaltyTier {
	return []LoyaltyTier{
		{Name: "Platinum", MinPoints: 10000, MinSpend: decimal.NewFromInt(500000)},
		{Name: "Gold", MinPoints: 5000, MinSpend: decimal.NewFromInt(200000)},
		{Name: "Silver", MinPoints: 1500, MinSpend: decimal.NewFromInt(50000)},
		{Name: "Bronze", MinPoints: 0, MinSpend: decimal.Zero},
	}
}

// EvaluateTier maps (points, lifetime spend) onto the first tier whose
// points or spend threshold is satisfied. Pure function, safe on every
// read path. Tiers are normalized to descending MinPoints order first, so
// callers may pass the table in any order.
func EvaluateTier(points int64, totalSpent decimal.Decimal, tiers []LoyaltyTier) TierStatus {
	if len(tiers) == 0 {
		return TierStatus{Progress: 1}
	}

	ordered := make([]LoyaltyTier, len(tiers))
	copy(ordered, tiers)
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].MinPoints > ordered[j].MinPoints
	})

	idx := len(ordered) - 1
	for i, tier := range ordered {
		if points >= tier.MinPoints || totalSpent.GreaterThanOrEqual(tier.MinSpend) {
			idx = i
			break
		}
	}

	status := TierStatus{Tier: ordered[idx], Progress: 1}
	if idx > 0 {
		next := ordered[idx-1]
		status.Next = &next
		if next.MinPoints > 0 {
			status.Progress = float64(points) / float64(next.MinPoints)
			if status.Progress > 1 {
				status.Progress = 1
			}
			if status.Progress < 0 {
				status.Progress = 0
			}
		}
	}
	return status
}
