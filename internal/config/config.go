// Package config loads simulation parameters from a flat key/value source.
// It reads YAML files (nested maps flatten to dotted keys) and properties-style
// key=value files. Malformed values fall back to their defaults with a warning;
// configuration problems never abort a run.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"
)

// Recognized keys.
const (
	KeyMonthsToSimulate   = "months_to_simulate"
	KeySimulationDuration = "simulation.duration"
	KeyStartMonth         = "start.month"
	KeySeed               = "simulation.seed"
	KeyEntropy            = "simulation.entropy"

	KeyInitialGDP          = "initial.gdp"
	KeyInitialMoneySupply  = "initial.moneySupply"
	KeyInitialEmployment   = "initial.employmentRate"
	KeyInitialInflation    = "initial.inflation"
	KeyInitialInterestRate = "initial.interestRate"
	KeyInflationTarget     = "inflation.target"

	KeyHouseholds = "agents.households"
	KeyFirms      = "agents.firms"

	KeyHouseholdAggressive   = "household.aggressive.prob"
	KeyHouseholdConservative = "household.conservative.prob"
	KeyHouseholdReactive     = "household.reactive.prob"

	KeyFirmSmall  = "firm.small.prob"
	KeyFirmMedium = "firm.medium.prob"
	KeyFirmLarge  = "firm.large.prob"

	KeyConsumerSpendingProb = "prob.consumerSpending"
	KeyFirmHiringProb       = "prob.firmHiring"
	KeyPriceAdjustmentProb  = "prob.priceAdjustment"
)

// Config contains every simulation parameter.
type Config struct {
	MonthsToSimulate   int    `json:"months_to_simulate"`
	SimulationDuration int    `json:"simulation_duration"` // informational
	StartMonth         int    `json:"start_month"`
	Seed               int64  `json:"seed"`    // 0 = pick one at run time
	Entropy            string `json:"entropy"` // seeded, crypto or noise

	InitialGDP          float64 `json:"initial_gdp"`
	InitialMoneySupply  float64 `json:"initial_money_supply"` // unused by the core
	InitialEmployment   float64 `json:"initial_employment_rate"`
	InitialInflation    float64 `json:"initial_inflation"`
	InitialInterestRate float64 `json:"initial_interest_rate"`
	InflationTarget     float64 `json:"inflation_target"`

	Households int `json:"households"`
	Firms      int `json:"firms"`

	HouseholdAggressive   float64 `json:"household_aggressive_prob"`
	HouseholdConservative float64 `json:"household_conservative_prob"`
	HouseholdReactive     float64 `json:"household_reactive_prob"`

	FirmSmall  float64 `json:"firm_small_prob"`
	FirmMedium float64 `json:"firm_medium_prob"`
	FirmLarge  float64 `json:"firm_large_prob"`

	// Loaded and reported; no component consumes them yet.
	ConsumerSpendingProb float64 `json:"consumer_spending_prob"`
	FirmHiringProb       float64 `json:"firm_hiring_prob"`
	PriceAdjustmentProb  float64 `json:"price_adjustment_prob"`
}

// Default returns the documented defaults.
func Default() *Config {
	return &Config{
		MonthsToSimulate:   12,
		SimulationDuration: 12,
		StartMonth:         1,
		Entropy:            "seeded",

		InitialGDP:          1000.0,
		InitialMoneySupply:  500.0,
		InitialEmployment:   0.95,
		InitialInflation:    2.0,
		InitialInterestRate: 0.02,
		InflationTarget:     0.02,

		Households: 1000,
		Firms:      100,

		HouseholdAggressive:   0.3,
		HouseholdConservative: 0.4,
		HouseholdReactive:     0.3,

		FirmSmall:  0.5,
		FirmMedium: 0.3,
		FirmLarge:  0.2,

		ConsumerSpendingProb: 0.6,
		FirmHiringProb:       0.5,
		PriceAdjustmentProb:  0.3,
	}
}

// Load reads the file at path and applies it over the defaults. An unreadable
// or unparsable file is logged and the defaults are used.
func Load(path string) *Config {
	cfg := Default()
	values, err := ReadValues(path)
	if err != nil {
		slog.Warn("error loading configuration file, using defaults", "path", path, "error", err)
		return cfg
	}
	cfg.Apply(values)
	return cfg
}

// FromValues builds a config from defaults plus the given overrides.
func FromValues(values map[string]string) *Config {
	cfg := Default()
	cfg.Apply(values)
	return cfg
}

// Apply overlays values onto c. Unknown keys are ignored; malformed numbers
// keep the current value and log a warning.
func (c *Config) Apply(values map[string]string) {
	p := parser{values: values}

	p.int(KeyMonthsToSimulate, &c.MonthsToSimulate)
	p.int(KeySimulationDuration, &c.SimulationDuration)
	p.int(KeyStartMonth, &c.StartMonth)
	p.int64(KeySeed, &c.Seed)
	if v, ok := values[KeyEntropy]; ok && strings.TrimSpace(v) != "" {
		c.Entropy = strings.TrimSpace(v)
	}

	p.float(KeyInitialGDP, &c.InitialGDP)
	p.float(KeyInitialMoneySupply, &c.InitialMoneySupply)
	p.float(KeyInitialEmployment, &c.InitialEmployment)
	p.float(KeyInitialInflation, &c.InitialInflation)
	p.float(KeyInitialInterestRate, &c.InitialInterestRate)
	p.float(KeyInflationTarget, &c.InflationTarget)

	p.int(KeyHouseholds, &c.Households)
	p.int(KeyFirms, &c.Firms)

	p.float(KeyHouseholdAggressive, &c.HouseholdAggressive)
	p.float(KeyHouseholdConservative, &c.HouseholdConservative)
	p.float(KeyHouseholdReactive, &c.HouseholdReactive)

	p.float(KeyFirmSmall, &c.FirmSmall)
	p.float(KeyFirmMedium, &c.FirmMedium)
	p.float(KeyFirmLarge, &c.FirmLarge)

	p.float(KeyConsumerSpendingProb, &c.ConsumerSpendingProb)
	p.float(KeyFirmHiringProb, &c.FirmHiringProb)
	p.float(KeyPriceAdjustmentProb, &c.PriceAdjustmentProb)
}

// ApplyEnv applies ECONSIM_* environment overrides.
func (c *Config) ApplyEnv() {
	env := map[string]string{}
	for envKey, key := range map[string]string{
		"ECONSIM_MONTHS":  KeyMonthsToSimulate,
		"ECONSIM_SEED":    KeySeed,
		"ECONSIM_ENTROPY": KeyEntropy,
	} {
		if v := os.Getenv(envKey); v != "" {
			env[key] = v
		}
	}
	if len(env) > 0 {
		c.Apply(env)
	}
}

// Validate checks ranges that would make population construction meaningless.
func (c *Config) Validate() error {
	var errs []error
	if c.MonthsToSimulate < 0 {
		errs = append(errs, fmt.Errorf("%s must be non-negative, got %d", KeyMonthsToSimulate, c.MonthsToSimulate))
	}
	if c.Households < 0 {
		errs = append(errs, fmt.Errorf("%s must be non-negative, got %d", KeyHouseholds, c.Households))
	}
	if c.Firms < 0 {
		errs = append(errs, fmt.Errorf("%s must be non-negative, got %d", KeyFirms, c.Firms))
	}

	probs := []struct {
		key string
		v   float64
	}{
		{KeyHouseholdAggressive, c.HouseholdAggressive},
		{KeyHouseholdConservative, c.HouseholdConservative},
		{KeyHouseholdReactive, c.HouseholdReactive},
		{KeyFirmSmall, c.FirmSmall},
		{KeyFirmMedium, c.FirmMedium},
		{KeyFirmLarge, c.FirmLarge},
	}
	for _, p := range probs {
		if math.IsNaN(p.v) || p.v < 0 || p.v > 1 {
			errs = append(errs, fmt.Errorf("%s must be between 0 and 1, got %g", p.key, p.v))
		}
	}

	finite := []struct {
		key string
		v   float64
	}{
		{KeyInitialGDP, c.InitialGDP},
		{KeyInitialEmployment, c.InitialEmployment},
		{KeyInitialInflation, c.InitialInflation},
		{KeyInitialInterestRate, c.InitialInterestRate},
		{KeyInflationTarget, c.InflationTarget},
	}
	for _, f := range finite {
		if math.IsNaN(f.v) || math.IsInf(f.v, 0) {
			errs = append(errs, fmt.Errorf("%s must be a finite number, got %g", f.key, f.v))
		}
	}

	if c.HouseholdAggressive+c.HouseholdConservative > 1 {
		errs = append(errs, errors.New("household aggressive and conservative proportions exceed 1"))
	}
	if c.FirmSmall+c.FirmMedium > 1 {
		errs = append(errs, errors.New("firm small and medium proportions exceed 1"))
	}
	return errors.Join(errs...)
}

// Values renders c back into the flat key space.
func (c *Config) Values() map[string]string {
	f := func(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }
	return map[string]string{
		KeyMonthsToSimulate:      strconv.Itoa(c.MonthsToSimulate),
		KeySimulationDuration:    strconv.Itoa(c.SimulationDuration),
		KeyStartMonth:            strconv.Itoa(c.StartMonth),
		KeySeed:                  strconv.FormatInt(c.Seed, 10),
		KeyEntropy:               c.Entropy,
		KeyInitialGDP:            f(c.InitialGDP),
		KeyInitialMoneySupply:    f(c.InitialMoneySupply),
		KeyInitialEmployment:     f(c.InitialEmployment),
		KeyInitialInflation:      f(c.InitialInflation),
		KeyInitialInterestRate:   f(c.InitialInterestRate),
		KeyInflationTarget:       f(c.InflationTarget),
		KeyHouseholds:            strconv.Itoa(c.Households),
		KeyFirms:                 strconv.Itoa(c.Firms),
		KeyHouseholdAggressive:   f(c.HouseholdAggressive),
		KeyHouseholdConservative: f(c.HouseholdConservative),
		KeyHouseholdReactive:     f(c.HouseholdReactive),
		KeyFirmSmall:             f(c.FirmSmall),
		KeyFirmMedium:            f(c.FirmMedium),
		KeyFirmLarge:             f(c.FirmLarge),
		KeyConsumerSpendingProb:  f(c.ConsumerSpendingProb),
		KeyFirmHiringProb:        f(c.FirmHiringProb),
		KeyPriceAdjustmentProb:   f(c.PriceAdjustmentProb),
	}
}

// Keys returns the keys of values in sorted order.
func Keys(values map[string]string) []string {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

type parser struct {
	values map[string]string
}

func (p parser) lookup(key string) (string, bool) {
	v, ok := p.values[key]
	if !ok {
		return "", false
	}
	v = strings.TrimSpace(v)
	return v, v != ""
}

func (p parser) float(key string, dst *float64) {
	raw, ok := p.lookup(key)
	if !ok {
		return
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		slog.Warn("invalid format for key, using default", "key", key, "value", raw, "default", *dst)
		return
	}
	*dst = v
}

func (p parser) int(key string, dst *int) {
	raw, ok := p.lookup(key)
	if !ok {
		return
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		slog.Warn("invalid format for key, using default", "key", key, "value", raw, "default", *dst)
		return
	}
	*dst = v
}

func (p parser) int64(key string, dst *int64) {
	raw, ok := p.lookup(key)
	if !ok {
		return
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		slog.Warn("invalid format for key, using default", "key", key, "value", raw, "default", *dst)
		return
	}
	*dst = v
}
