package engine

import (
	"time"

	"github.com/google/uuid"

	"github.com/talgya/econsim/internal/config"
	"github.com/talgya/econsim/internal/economy"
	"github.com/talgya/econsim/internal/entropy"
)

// Result is a completed run: the configuration it used, the indicators before
// the first month and one Period per simulated month.
type Result struct {
	RunID     string             `json:"id"`
	CreatedAt time.Time          `json:"created_at"`
	Seed      int64              `json:"seed"`
	Entropy   string             `json:"entropy"`
	Config    *config.Config     `json:"config"`
	Initial   economy.Indicators `json:"initial"`
	Periods   []Period           `json:"periods"`
}

// Final returns the last period, or false for a zero-month run.
func (r *Result) Final() (Period, bool) {
	if len(r.Periods) == 0 {
		return Period{}, false
	}
	return r.Periods[len(r.Periods)-1], true
}

// seeder is a source that can report the seed it was built from, including
// one picked from the clock.
type seeder interface {
	Seed() int64
}

// Result snapshots the simulation's history as a run. Without WithRunID a
// fresh ID is generated on every call.
func (s *Simulation) Result() *Result {
	seed := s.Config.Seed
	if sd, ok := s.rng.(seeder); ok {
		seed = sd.Seed()
	}
	kind := s.Config.Entropy
	if kind == "" {
		kind = entropy.KindSeeded
	}

	id := s.runID
	if id == "" {
		id = uuid.New().String()
	}

	periods := make([]Period, len(s.History))
	copy(periods, s.History)

	return &Result{
		RunID:     id,
		CreatedAt: time.Now().UTC(),
		Seed:      seed,
		Entropy:   kind,
		Config:    s.Config,
		Initial:   s.initial,
		Periods:   periods,
	}
}

// Execute builds a simulation from cfg, runs it to completion and returns
// the result. The random source is chosen from cfg.Entropy and cfg.Seed.
func Execute(cfg *config.Config, opts ...Option) (*Result, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	src, err := entropy.Parse(cfg.Entropy, cfg.Seed)
	if err != nil {
		return nil, err
	}
	sim, err := NewSimulation(cfg, src, opts...)
	if err != nil {
		return nil, err
	}
	sim.Run()
	return sim.Result(), nil
}
