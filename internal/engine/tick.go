// Package engine provides the monthly simulation loop.
package engine

import "log/slog"

// Calendar boundaries counted in elapsed months.
const (
	MonthsPerQuarter = 3
	MonthsPerYear    = 12
)

// Engine drives the simulation forward one month at a time. It runs
// synchronously: every callback completes before the next month starts.
type Engine struct {
	Month   int // Calendar month counter; advanced before callbacks fire
	Elapsed int // Months stepped since creation

	// Callbacks, populated during setup.
	OnMonth   func(month int) // Every month
	OnQuarter func(month int) // Every 3 elapsed months
	OnYear    func(month int) // Every 12 elapsed months
}

// NewEngine creates an engine positioned at startMonth. The first Step
// reports startMonth+1.
func NewEngine(startMonth int) *Engine {
	return &Engine{Month: startMonth}
}

// Run steps the engine n times. n <= 0 does nothing.
func (e *Engine) Run(n int) {
	if n <= 0 {
		return
	}
	slog.Debug("simulation engine started", "month", e.Month, "months", n)
	for i := 0; i < n; i++ {
		e.Step()
	}
	slog.Debug("simulation engine stopped", "month", e.Month)
}

// Step advances the simulation by one month.
func (e *Engine) Step() {
	e.Month++
	e.Elapsed++

	if e.OnMonth != nil {
		e.OnMonth(e.Month)
	}
	if e.Elapsed%MonthsPerQuarter == 0 && e.OnQuarter != nil {
		e.OnQuarter(e.Month)
	}
	if e.Elapsed%MonthsPerYear == 0 && e.OnYear != nil {
		e.OnYear(e.Month)
	}
}
