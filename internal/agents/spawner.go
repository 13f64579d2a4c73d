// Agent spawning: builds the initial household and firm populations from
// configured proportions with randomized attributes.
package agents

import (
	"fmt"

	"github.com/talgya/econsim/internal/entropy"
)

// HouseholdMix gives the share of each household archetype.
type HouseholdMix struct {
	Aggressive   float64
	Conservative float64
	Reactive     float64 // informational; reactive households take the remainder
}

// FirmMix gives the share of each firm size.
type FirmMix struct {
	Small  float64
	Medium float64
	Large  float64 // informational; large firms take the remainder
}

// householdTemplate holds the base traits of an archetype before jitter.
type householdTemplate struct {
	savingsBase     float64
	sensitivityBase float64
}

var householdTemplates = map[HouseholdArchetype]householdTemplate{
	ArchAggressive:   {savingsBase: 0.05, sensitivityBase: 0.4},
	ArchConservative: {savingsBase: 0.3, sensitivityBase: 0.1},
	ArchReactive:     {savingsBase: 0.15, sensitivityBase: 0.25},
}

// firmTemplate holds the size-dependent ranges for a new firm.
type firmTemplate struct {
	capitalMin, capitalSpan     float64
	thresholdMin, thresholdSpan float64
	priceFlex                   float64
}

var firmTemplates = map[FirmSize]firmTemplate{
	SizeSmall:  {capitalMin: 5000, capitalSpan: 10000, thresholdMin: 2000, thresholdSpan: 1000, priceFlex: 0.3},
	SizeMedium: {capitalMin: 20000, capitalSpan: 10000, thresholdMin: 5000, thresholdSpan: 2000, priceFlex: 0.2},
	SizeLarge:  {capitalMin: 50000, capitalSpan: 50000, thresholdMin: 10000, thresholdSpan: 5000, priceFlex: 0.1},
}

// Spawner creates agents for the simulation.
type Spawner struct {
	rng entropy.Source
}

// NewSpawner creates a spawner drawing from src.
func NewSpawner(src entropy.Source) *Spawner {
	return &Spawner{rng: src}
}

// split divides total into three counts; the third takes the remainder.
func split(total int, p1, p2 float64) (int, int, int) {
	n1 := int(float64(total) * p1)
	n2 := int(float64(total) * p2)
	n3 := total - n1 - n2
	if n3 < 0 {
		n3 = 0
	}
	return n1, n2, n3
}

// SpawnHouseholds creates count households in archetype order:
// aggressive, then conservative, then reactive.
func (s *Spawner) SpawnHouseholds(count int, mix HouseholdMix) []*Household {
	nAgg, nCon, nReact := split(count, mix.Aggressive, mix.Conservative)

	households := make([]*Household, 0, count)
	for i := 0; i < nAgg; i++ {
		households = append(households, s.NewHousehold(ArchAggressive))
	}
	for i := 0; i < nCon; i++ {
		households = append(households, s.NewHousehold(ArchConservative))
	}
	for i := 0; i < nReact; i++ {
		households = append(households, s.NewHousehold(ArchReactive))
	}
	return households
}

// NewHousehold creates one household of the given archetype. Unknown
// archetypes get the reactive template.
func (s *Spawner) NewHousehold(arch HouseholdArchetype) *Household {
	tmpl, ok := householdTemplates[arch]
	if !ok {
		arch = ArchReactive
		tmpl = householdTemplates[ArchReactive]
	}

	income := s.income()
	return &Household{
		Archetype:           arch,
		Income:              income,
		SavingsRate:         tmpl.savingsBase + 0.02*s.rng.Float64(),
		InterestSensitivity: tmpl.sensitivityBase + 0.02*s.rng.Float64(),
	}
}

// income draws from a three-band distribution: 30% low, 40% middle, 30% high.
func (s *Spawner) income() float64 {
	const (
		floor  = 2500.0
		low    = 5000.0
		middle = 15000.0
		top    = 30000.0
	)

	r := s.rng.Float64()
	switch {
	case r < 0.3:
		return floor + s.rng.Float64()*(low-floor)
	case r < 0.7:
		return low + s.rng.Float64()*(middle-low)
	default:
		return middle + s.rng.Float64()*(top-middle)
	}
}

// SpawnFirms creates count firms in size order: small, medium, large.
func (s *Spawner) SpawnFirms(count int, mix FirmMix) ([]*Firm, error) {
	nSmall, nMedium, nLarge := split(count, mix.Small, mix.Medium)

	firms := make([]*Firm, 0, count)
	for _, batch := range []struct {
		size FirmSize
		n    int
	}{
		{SizeSmall, nSmall},
		{SizeMedium, nMedium},
		{SizeLarge, nLarge},
	} {
		for i := 0; i < batch.n; i++ {
			f, err := s.NewFirm(batch.size)
			if err != nil {
				return nil, fmt.Errorf("spawn firms: %w", err)
			}
			firms = append(firms, f)
		}
	}
	return firms, nil
}

// NewFirm creates one firm of the given size. Its starting responsiveness is
// the size's price flexibility.
func (s *Spawner) NewFirm(size FirmSize) (*Firm, error) {
	tmpl, ok := firmTemplates[size]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownFirmSize, size)
	}
	style, err := StyleForSize(size)
	if err != nil {
		return nil, err
	}

	return &Firm{
		Size:           size,
		Responsiveness: tmpl.priceFlex,
		Style:          style,
		Capital:        tmpl.capitalMin + s.rng.Float64()*tmpl.capitalSpan,
		Threshold:      tmpl.thresholdMin + s.rng.Float64()*tmpl.thresholdSpan,
	}, nil
}
