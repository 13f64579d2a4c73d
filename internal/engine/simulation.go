// Simulation ties agents, market statistics and the monetary authority
// together and advances them one month at a time.
package engine

import (
	"fmt"
	"log/slog"

	"github.com/talgya/econsim/internal/agents"
	"github.com/talgya/econsim/internal/config"
	"github.com/talgya/econsim/internal/economy"
	"github.com/talgya/econsim/internal/entropy"
	"github.com/talgya/econsim/internal/policy"
)

// Initial normalized demand and supply indices.
const (
	initialDemand = 1.0
	initialSupply = 1.0
)

// MacroState is the environment's own macro bookkeeping. Indicators mirror it
// after every period.
type MacroState struct {
	GDP            float64 `json:"gdp"`
	PreviousGDP    float64 `json:"previous_gdp"`
	MoneySupply    float64 `json:"money_supply"`
	EmploymentRate float64 `json:"employment_rate"`
	ConsumerDemand float64 `json:"consumer_demand"`
	SupplyLevel    float64 `json:"supply_level"`
}

// Period is the record of one completed month.
type Period struct {
	Month             int     `json:"month" db:"month"`
	RawInflation      float64 `json:"raw_inflation" db:"raw_inflation"`
	Inflation         float64 `json:"inflation" db:"inflation"`
	InterestRate      float64 `json:"interest_rate" db:"interest_rate"`
	GDP               float64 `json:"gdp" db:"gdp"`
	EmploymentRate    float64 `json:"employment_rate" db:"employment_rate"`
	ConsumerDemand    float64 `json:"consumer_demand" db:"consumer_demand"`
	SupplyLevel       float64 `json:"supply_level" db:"supply_level"`
	MarketPressure    float64 `json:"market_pressure" db:"market_pressure"`
	HouseholdSpending float64 `json:"household_spending" db:"household_spending"`
}

// Simulation holds the complete economy and wires systems together.
type Simulation struct {
	Config     *config.Config
	Households []*agents.Household
	Firms      []*agents.Firm

	Office    policy.Office
	Authority *policy.Authority

	Market           economy.MarketState
	InflationHistory []float64 // Raw readings, starting with the configured initial inflation

	// Completed periods, in order.
	History []Period

	// Called after each completed period, in registration order.
	Observers []func(Period)

	macro      MacroState
	indicators *economy.Indicators
	initial    economy.Indicators
	clock      *Engine
	rng        entropy.Source
	runID      string
	spending   float64 // household spending accumulated during the current month
}

// Option customizes a Simulation at construction.
type Option func(*Simulation)

// WithRule replaces the default monetary rule.
func WithRule(rule policy.Rule) Option {
	return func(s *Simulation) {
		s.Authority.SetRule(rule)
	}
}

// WithObserver registers a period observer.
func WithObserver(fn func(Period)) Option {
	return func(s *Simulation) {
		s.Observers = append(s.Observers, fn)
	}
}

// WithRunID fixes the ID reported by Result instead of generating one.
func WithRunID(id string) Option {
	return func(s *Simulation) {
		s.runID = id
	}
}

// WithPopulation replaces the spawned agents. Used by tests that need exact
// populations.
func WithPopulation(households []*agents.Household, firms []*agents.Firm) Option {
	return func(s *Simulation) {
		s.Households = households
		s.Firms = firms
	}
}

// NewSimulation builds the environment from cfg: macro state, the monetary
// authority, and the agent populations drawn from src. An unknown firm size
// aborts construction.
func NewSimulation(cfg *config.Config, src entropy.Source, opts ...Option) (*Simulation, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if src == nil {
		src = entropy.NewSeeded(cfg.Seed)
	}

	s := &Simulation{
		Config: cfg,
		Market: economy.NewMarketState(),
		macro: MacroState{
			GDP:            cfg.InitialGDP,
			PreviousGDP:    cfg.InitialGDP,
			MoneySupply:    cfg.InitialMoneySupply,
			EmploymentRate: cfg.InitialEmployment,
			ConsumerDemand: initialDemand,
			SupplyLevel:    initialSupply,
		},
		InflationHistory: []float64{cfg.InitialInflation},
		rng:              src,
	}

	s.Authority = s.Office.Establish(cfg.InitialInterestRate, cfg.InflationTarget, policy.MonetaryRule(policy.DefaultScaling))

	s.indicators = economy.NewIndicators(
		cfg.InitialInflation, s.macro.GDP, s.macro.EmploymentRate,
		s.macro.ConsumerDemand, s.macro.SupplyLevel,
	)
	s.initial = *s.indicators

	if err := s.initializeAgents(); err != nil {
		return nil, fmt.Errorf("initialize agents: %w", err)
	}

	s.clock = NewEngine(cfg.StartMonth)
	s.clock.OnMonth = s.tickMonth
	s.clock.OnQuarter = s.logQuarter
	s.clock.OnYear = s.logYear

	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *Simulation) initializeAgents() error {
	spawner := agents.NewSpawner(s.rng)

	s.Households = spawner.SpawnHouseholds(s.Config.Households, agents.HouseholdMix{
		Aggressive:   s.Config.HouseholdAggressive,
		Conservative: s.Config.HouseholdConservative,
		Reactive:     s.Config.HouseholdReactive,
	})

	firms, err := spawner.SpawnFirms(s.Config.Firms, agents.FirmMix{
		Small:  s.Config.FirmSmall,
		Medium: s.Config.FirmMedium,
		Large:  s.Config.FirmLarge,
	})
	if err != nil {
		return err
	}
	s.Firms = firms
	return nil
}

// ── agents.View ───────────────────────────────────────────────────────

// InterestRate returns the authority's current rate.
func (s *Simulation) InterestRate() float64 { return s.Authority.InterestRate }

// PolicyInflation returns the authority's last recorded inflation.
func (s *Simulation) PolicyInflation() float64 { return s.Authority.CurrentInflation() }

// Indicators returns a copy of the shared snapshot.
func (s *Simulation) Indicators() economy.Indicators { return *s.indicators }

// EmploymentRate returns the environment's employment rate.
func (s *Simulation) EmploymentRate() float64 { return s.macro.EmploymentRate }

// Rand returns the simulation's single random source.
func (s *Simulation) Rand() entropy.Source { return s.rng }

// ──────────────────────────────────────────────────────────────────────

// Macro returns the environment's macro bookkeeping.
func (s *Simulation) Macro() MacroState { return s.macro }

// CurrentMonth returns the calendar month of the last completed period.
func (s *Simulation) CurrentMonth() int { return s.clock.Month }

// InitialIndicators returns the snapshot as it was before the first period.
func (s *Simulation) InitialIndicators() economy.Indicators { return s.initial }

// Run executes the configured number of months.
func (s *Simulation) Run() {
	s.clock.Run(s.Config.MonthsToSimulate)
}

// Step executes exactly one month.
func (s *Simulation) Step() {
	s.clock.Step()
}

// tickMonth is one full period: agents act, market statistics produce a raw
// inflation reading, indicators are recomputed and policy responds.
func (s *Simulation) tickMonth(month int) {
	s.spending = 0
	for _, h := range s.Households {
		s.spending += h.Act(s)
	}
	for _, f := range s.Firms {
		f.Act(s)
	}

	var raw float64
	s.Market, raw = s.Market.Next(s.responsiveness())
	s.InflationHistory = append(s.InflationHistory, raw)

	s.updateEconomicIndicators()
	s.Authority.UpdatePolicy(s.indicators)

	p := Period{
		Month:             month,
		RawInflation:      raw,
		Inflation:         s.indicators.InflationRate,
		InterestRate:      s.Authority.InterestRate,
		GDP:               s.macro.GDP,
		EmploymentRate:    s.macro.EmploymentRate,
		ConsumerDemand:    s.macro.ConsumerDemand,
		SupplyLevel:       s.macro.SupplyLevel,
		MarketPressure:    s.Market.LastPressure,
		HouseholdSpending: s.spending,
	}
	s.History = append(s.History, p)

	slog.Debug("monthly report",
		"month", month,
		"inflation", fmt.Sprintf("%.2f", p.Inflation),
		"interest_rate", fmt.Sprintf("%.2f", p.InterestRate),
		"gdp", fmt.Sprintf("%.2f", p.GDP),
		"employment", fmt.Sprintf("%.2f", p.EmploymentRate),
	)

	for _, obs := range s.Observers {
		obs(p)
	}
}

// updateEconomicIndicators recomputes macro state in dependency order:
// smoothed inflation, GDP, employment (needs new GDP), demand (needs smoothed
// inflation and new employment), supply (needs new demand).
func (s *Simulation) updateEconomicIndicators() {
	n := len(s.InflationHistory)
	raw := s.InflationHistory[n-1]
	smoothed := LaggedInflation(s.InflationHistory[:n-1], raw)

	rate := s.Authority.InterestRate

	growth := GrowthRate(rate, raw, s.rng.Float64())
	s.macro.PreviousGDP = s.macro.GDP
	s.macro.GDP = s.macro.GDP * (1 + growth)

	s.macro.EmploymentRate = NextEmployment(s.macro.EmploymentRate, s.macro.GDP, s.macro.PreviousGDP)
	s.macro.ConsumerDemand = NextDemand(s.macro.ConsumerDemand, rate, smoothed, s.macro.EmploymentRate, s.rng.Float64())
	s.macro.SupplyLevel = NextSupply(s.macro.SupplyLevel, s.macro.ConsumerDemand, rate)

	s.indicators.Update(
		smoothed,
		s.macro.GDP,
		s.macro.EmploymentRate,
		s.macro.ConsumerDemand,
		s.macro.SupplyLevel,
	)
}

func (s *Simulation) responsiveness() []float64 {
	out := make([]float64, len(s.Firms))
	for i, f := range s.Firms {
		out[i] = f.Responsiveness
	}
	return out
}

func (s *Simulation) logQuarter(month int) {
	last := s.History[len(s.History)-1]
	slog.Info("quarterly summary",
		"month", month,
		"inflation", fmt.Sprintf("%.2f", last.Inflation),
		"interest_rate", fmt.Sprintf("%.2f", last.InterestRate),
		"gdp", fmt.Sprintf("%.2f", last.GDP),
		"employment", fmt.Sprintf("%.2f", last.EmploymentRate),
	)
}

func (s *Simulation) logYear(month int) {
	window := s.History
	if len(window) > MonthsPerYear {
		window = window[len(window)-MonthsPerYear:]
	}
	first, last := window[0], window[len(window)-1]

	growth := 0.0
	if first.GDP != 0 {
		growth = (last.GDP - first.GDP) / first.GDP * 100
	}
	slog.Info("annual summary",
		"month", month,
		"gdp_growth_pct", fmt.Sprintf("%.2f", growth),
		"avg_inflation", fmt.Sprintf("%.2f", meanInflation(window)),
		"interest_rate", fmt.Sprintf("%.2f", last.InterestRate),
	)
}

func meanInflation(ps []Period) float64 {
	if len(ps) == 0 {
		return 0
	}
	sum := 0.0
	for _, p := range ps {
		sum += p.Inflation
	}
	return sum / float64(len(ps))
}
