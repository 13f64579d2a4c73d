// Macro update rules: the damped feedback equations applied after agents act.
package engine

// LaggedInflation smooths the raw reading with the two readings that preceded
// it: 0.6·raw + 0.3·prior[n-1] + 0.1·prior[n-2]. Until the history (prior plus
// raw) holds three readings, raw is returned unchanged.
func LaggedInflation(prior []float64, raw float64) float64 {
	n := len(prior)
	if n+1 < 3 {
		return raw
	}
	return 0.6*raw + 0.3*prior[n-1] + 0.1*prior[n-2]
}

// GrowthRate is the monthly GDP growth given the interest rate, the raw
// inflation reading and a uniform draw u in [0,1) for the shock.
func GrowthRate(rate, inflation, u float64) float64 {
	const base = 0.01

	interestEffect := 1.0 - rate/20.0
	inflationEffect := 1.0
	if inflation > 3.0 {
		inflationEffect = 1.0 - (inflation-3.0)/20.0
	}
	shock := (u - 0.5) * 0.01 // ±0.5%

	return clamp(base*interestEffect*inflationEffect+shock, -0.05, 0.10)
}

// NextEmployment passes half of the GDP change through to employment.
func NextEmployment(employment, gdp, previousGDP float64) float64 {
	gdpChangePct := 0.0
	if previousGDP != 0 {
		gdpChangePct = (gdp - previousGDP) / previousGDP * 100
	}
	change := gdpChangePct * 0.5
	return clamp(employment+change/100, 50.0, 100.0)
}

// NextDemand damps demand by rates, smoothed inflation and employment, then
// applies market sentiment drawn from u in [0,1).
func NextDemand(demand, rate, smoothedInflation, employment, u float64) float64 {
	interestEffect := max(0.7, 1.0-rate/20.0)
	inflationEffect := max(0.7, 1.0-smoothedInflation/15.0)
	employmentEffect := employment / 100.0
	sentiment := 0.95 + u*0.1

	next := demand * interestEffect * inflationEffect * employmentEffect * sentiment
	return clamp(next, 0.5, 1.5)
}

// NextSupply creeps toward rate-damped demand as a 0.9/0.1 moving average.
func NextSupply(supply, demand, rate float64) float64 {
	interestEffect := max(0.8, 1.0-rate/25.0)
	return clamp(supply*0.9+demand*interestEffect*0.1, 0.5, 1.5)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
