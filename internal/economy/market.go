package economy

// Market inflation bounds.
const (
	MinInflation = -5.0
	MaxInflation = 15.0

	// DefaultSmoothing weights the previous pressure in the EMA.
	DefaultSmoothing = 0.8
)

// MarketState is the cross-period memory of market statistics: an exponential
// moving average of market pressure. It is a value; Next returns the successor.
type MarketState struct {
	LastPressure float64 `json:"last_pressure"`
	Smoothing    float64 `json:"smoothing"`
}

// NewMarketState returns the state at the start of a run.
func NewMarketState() MarketState {
	return MarketState{LastPressure: 1.0, Smoothing: DefaultSmoothing}
}

// Pressure is the responsiveness-weighted mean responsiveness: Σr² / Σr.
// Higher-responsiveness firms dominate the index.
func Pressure(responsiveness []float64) float64 {
	total := 0.0
	weighted := 0.0
	for _, r := range responsiveness {
		total += r
		weighted += r * r
	}
	if total <= 0 {
		return 1.0
	}
	return weighted / total
}

// Next computes this period's raw inflation reading from firm responsiveness
// and the advanced state. An empty population yields zero inflation and leaves
// the state untouched.
func (s MarketState) Next(responsiveness []float64) (MarketState, float64) {
	if len(responsiveness) == 0 {
		return s, 0
	}

	pressure := Pressure(responsiveness)

	inflation := 0.0
	if s.LastPressure > 0 {
		inflation = (pressure - s.LastPressure) / s.LastPressure * 100
	}

	next := s
	next.LastPressure = s.Smoothing*s.LastPressure + (1-s.Smoothing)*pressure

	return next, clamp(inflation, MinInflation, MaxInflation)
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
