package agents

import (
	"fmt"

	"github.com/talgya/econsim/internal/entropy"
)

// InvestmentStyle is how a firm re-scales its responsiveness after reacting to demand.
type InvestmentStyle uint8

const (
	StyleAggressive    InvestmentStyle = iota // Expands in stable conditions
	StyleCautious                             // Contracts under high inflation
	StyleOpportunistic                        // Randomized flexibility
)

func (s InvestmentStyle) String() string {
	switch s {
	case StyleAggressive:
		return "aggressive"
	case StyleCautious:
		return "cautious"
	case StyleOpportunistic:
		return "opportunistic"
	default:
		return fmt.Sprintf("InvestmentStyle(%d)", uint8(s))
	}
}

// Multiplier returns the factor applied to the firm's responsiveness.
// Only StyleOpportunistic draws from src.
func (s InvestmentStyle) Multiplier(rate, inflation float64, src entropy.Source) float64 {
	switch s {
	case StyleAggressive:
		if rate < 6.0 && inflation < 8.0 {
			return 1.2
		}
		return 1.0
	case StyleCautious:
		if inflation > 10.0 {
			return 0.9
		}
		return 1.0
	case StyleOpportunistic:
		return entropy.Uniform(src, 0.9, 1.1)
	default:
		return 1.0
	}
}

// StyleForSize is the fixed size-to-style mapping.
func StyleForSize(size FirmSize) (InvestmentStyle, error) {
	switch size {
	case SizeSmall:
		return StyleAggressive, nil
	case SizeMedium:
		return StyleCautious, nil
	case SizeLarge:
		return StyleOpportunistic, nil
	default:
		return 0, fmt.Errorf("%w: %s", ErrUnknownFirmSize, size)
	}
}
