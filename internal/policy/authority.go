// Package policy holds the monetary authority: the interest rate, the inflation
// target and the rule that moves one toward the other.
package policy

import (
	"errors"
	"log/slog"
	"math"
	"sync"

	"github.com/talgya/econsim/internal/economy"
)

// ErrNoAuthority is returned by Office.Authority before Establish has been called.
var ErrNoAuthority = errors.New("policy authority has not been established")

// Rule maps the authority's state and the latest indicators to a new interest rate.
type Rule func(a *Authority, ind *economy.Indicators) float64

// Authority is the central bank of one simulation run.
type Authority struct {
	InterestRate    float64
	TargetInflation float64

	currentInflation float64 // NaN until the first UpdatePolicy
	rule             Rule
}

// NewAuthority creates an authority with no inflation reading yet.
func NewAuthority(rate, target float64, rule Rule) *Authority {
	return &Authority{
		InterestRate:     rate,
		TargetInflation:  target,
		currentInflation: math.NaN(),
		rule:             rule,
	}
}

// CurrentInflation returns the last recorded inflation, or 0 before any update.
func (a *Authority) CurrentInflation() float64 {
	if math.IsNaN(a.currentInflation) {
		return 0
	}
	return a.currentInflation
}

// HasInflation reports whether UpdatePolicy has recorded a reading.
func (a *Authority) HasInflation() bool {
	return !math.IsNaN(a.currentInflation)
}

// SetRule swaps the active rule. A nil rule is rejected and the old one kept.
func (a *Authority) SetRule(rule Rule) {
	if rule == nil {
		slog.Warn("attempted to set a nil policy rule; keeping the active rule")
		return
	}
	a.rule = rule
}

// HasRule reports whether a rule is active.
func (a *Authority) HasRule() bool { return a.rule != nil }

// UpdatePolicy records the indicators' inflation and applies the active rule.
func (a *Authority) UpdatePolicy(ind *economy.Indicators) {
	if ind == nil {
		slog.Warn("economic indicators unavailable for policy update")
		return
	}

	a.currentInflation = ind.InflationRate

	if a.rule == nil {
		slog.Error("no policy rule set for interest rate adjustment")
		return
	}
	a.InterestRate = a.rule(a, ind)
}

// Office owns at most one Authority. The first Establish wins; later calls
// return the existing authority and discard their arguments. Reset clears it
// so a fresh run can establish a new one.
type Office struct {
	mu        sync.Mutex
	authority *Authority
}

// Establish creates the authority on first call and returns it.
func (o *Office) Establish(rate, target float64, rule Rule) *Authority {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.authority == nil {
		o.authority = NewAuthority(rate, target, rule)
	} else {
		slog.Debug("policy authority already established; ignoring new parameters",
			"rate", rate, "target", target)
	}
	return o.authority
}

// Authority returns the established authority.
func (o *Office) Authority() (*Authority, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.authority == nil {
		return nil, ErrNoAuthority
	}
	return o.authority, nil
}

// Reset drops the authority. Only call between runs.
func (o *Office) Reset() {
	o.mu.Lock()
	o.authority = nil
	o.mu.Unlock()
}
