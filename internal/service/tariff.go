package service

import (
	"math"

	"github.com/shopspring/decimal"
)

// tariffTier charges rate for every kWh up to upTo that earlier tiers did not cover.
type tariffTier struct {
	upTo decimal.Decimal
	rate decimal.Decimal
}

var (
	tariffTiers = []tariffTier{
		{upTo: decimal.RequireFromString("15"), rate: decimal.RequireFromString("2.3488")},
		{upTo: decimal.RequireFromString("25"), rate: decimal.RequireFromString("2.9882")},
		{upTo: decimal.RequireFromString("35"), rate: decimal.RequireFromString("3.2405")},
		{upTo: decimal.RequireFromString("100"), rate: decimal.RequireFromString("3.6237")},
		{upTo: decimal.RequireFromString("150"), rate: decimal.RequireFromString("3.7171")},
		{upTo: decimal.RequireFromString("400"), rate: decimal.RequireFromString("4.2218")},
	}
	// rate for everything above the last bounded tier
	tariffTopRate = decimal.RequireFromString("4.4217")
)

const tariffPlaces = 4

// MonthlyCost prices energyKWh on the progressive residential schedule and
// rounds to 4 decimal places. Negative or non-finite input costs 0.
func MonthlyCost(energyKWh float64) float64 {
	if math.IsNaN(energyKWh) || math.IsInf(energyKWh, 0) || energyKWh <= 0 {
		return 0
	}
	return monthlyCost(decimal.NewFromFloat(energyKWh)).Round(tariffPlaces).InexactFloat64()
}

func monthlyCost(energy decimal.Decimal) decimal.Decimal {
	cost := decimal.Zero
	lower := decimal.Zero
	for _, t := range tariffTiers {
		if energy.LessThanOrEqual(lower) {
			return cost
		}
		portion := decimal.Min(energy, t.upTo).Sub(lower)
		cost = cost.Add(portion.Mul(t.rate))
		lower = t.upTo
	}
	if energy.GreaterThan(lower) {
		cost = cost.Add(energy.Sub(lower).Mul(tariffTopRate))
	}
	return cost
}
