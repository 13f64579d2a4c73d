package agents

import (
	"errors"

	"github.com/talgya/econsim/internal/entropy"
)

// Responsiveness bounds enforced on every adjustment.
const (
	MinResponsiveness = 0.75
	MaxResponsiveness = 1.25
)

// ErrUnknownFirmSize signals a size with no configured template. It indicates a
// programming or configuration mismatch and aborts population construction.
var ErrUnknownFirmSize = errors.New("unknown firm size")

// Firm is a producer whose responsiveness feeds the market pressure index.
type Firm struct {
	Size           FirmSize        `json:"size"`
	Responsiveness float64         `json:"responsiveness"`
	Style          InvestmentStyle `json:"style"`

	// Drawn at creation for reporting; the dynamics do not use them.
	Capital   float64 `json:"capital"`
	Threshold float64 `json:"threshold"`
}

// Adjust moves responsiveness by the net demand/inflation pressure, clamped.
func (f *Firm) Adjust(demandFactor, inflation float64) {
	pressure := demandFactor - inflation*0.01
	f.Responsiveness = clamp(f.Responsiveness*(1.0+pressure), MinResponsiveness, MaxResponsiveness)
}

// Act runs the firm's monthly behavior: one adjustment to consumer demand,
// then a second one through its investment style.
func (f *Firm) Act(v View) {
	rate := v.InterestRate()
	inflation := v.PolicyInflation()
	demand := v.Indicators().ConsumerDemand

	f.Adjust(demand, inflation)
	f.Invest(rate, inflation, v.Rand())
}

// Invest applies the style multiplier to the firm's own responsiveness.
func (f *Firm) Invest(rate, inflation float64, src entropy.Source) {
	demandFactor := f.Responsiveness
	f.Adjust(demandFactor*f.Style.Multiplier(rate, inflation, src), inflation)
}
