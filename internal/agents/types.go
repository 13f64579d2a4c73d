// Package agents provides the household and firm agents, their per-period
// behavior, and the spawner that builds a population from configured mixes.
package agents

import (
	"fmt"
	"strings"

	"github.com/talgya/econsim/internal/economy"
	"github.com/talgya/econsim/internal/entropy"
)

// FirmSize classifies a firm and fixes its starting flexibility and style.
type FirmSize uint8

const (
	SizeSmall FirmSize = iota
	SizeMedium
	SizeLarge
)

var firmSizeNames = [...]string{"SMALL", "MEDIUM", "LARGE"}

func (s FirmSize) String() string {
	if int(s) < len(firmSizeNames) {
		return firmSizeNames[s]
	}
	return fmt.Sprintf("FirmSize(%d)", uint8(s))
}

// ParseFirmSize maps "small", "MEDIUM", ... to a FirmSize.
func ParseFirmSize(name string) (FirmSize, error) {
	for i, n := range firmSizeNames {
		if strings.EqualFold(n, name) {
			return FirmSize(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownFirmSize, name)
}

// HouseholdArchetype is the behavioral template a household is drawn from.
type HouseholdArchetype uint8

const (
	ArchAggressive   HouseholdArchetype = iota // Low savings, high rate sensitivity
	ArchConservative                           // High savings, low sensitivity
	ArchReactive                               // Moderate on both
)

func (a HouseholdArchetype) String() string {
	switch a {
	case ArchAggressive:
		return "aggressive"
	case ArchConservative:
		return "conservative"
	case ArchReactive:
		return "reactive"
	default:
		return fmt.Sprintf("HouseholdArchetype(%d)", uint8(a))
	}
}

// View is what an agent may read from its environment during a period.
// Agents never see each other; all coupling goes through these aggregates.
type View interface {
	InterestRate() float64
	// PolicyInflation is the authority's last recorded inflation (0 before any).
	PolicyInflation() float64
	Indicators() economy.Indicators
	EmploymentRate() float64
	Rand() entropy.Source
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
