package policy

import (
	"log/slog"

	"github.com/talgya/econsim/internal/economy"
)

// DefaultScaling is how aggressively the monetary rule closes the inflation gap.
const DefaultScaling = 0.5

// MonetaryRule returns a proportional rule: rate += scaling * (inflation - target).
// The rate itself is never bounded; consumers clamp their derived effects.
func MonetaryRule(scaling float64) Rule {
	return func(a *Authority, ind *economy.Indicators) float64 {
		gap := ind.InflationRate - a.TargetInflation
		adjustment := scaling * gap
		rate := a.InterestRate + adjustment

		slog.Debug("monetary policy applied",
			"inflation_gap", gap,
			"adjustment", adjustment,
			"interest_rate", rate,
		)
		return rate
	}
}

// HoldRule keeps the interest rate unchanged.
func HoldRule(a *Authority, _ *economy.Indicators) float64 {
	return a.InterestRate
}
