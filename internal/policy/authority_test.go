package policy

import (
	"errors"
	"math"
	"testing"

	"github.com/talgya/econsim/internal/economy"
)

func TestMonetaryRule(t *testing.T) {
	a := NewAuthority(0.02, 0.02, MonetaryRule(DefaultScaling))
	a.UpdatePolicy(&economy.Indicators{InflationRate: 0.04})
	if math.Abs(a.InterestRate-0.03) > 1e-12 {
		t.Errorf("InterestRate = %v, want 0.03", a.InterestRate)
	}
	if a.CurrentInflation() != 0.04 {
		t.Errorf("CurrentInflation = %v, want 0.04", a.CurrentInflation())
	}
}

func TestMonetaryRuleHasNoFloor(t *testing.T) {
	a := NewAuthority(0.5, 2.0, MonetaryRule(DefaultScaling))
	a.UpdatePolicy(&economy.Indicators{InflationRate: -5})
	if a.InterestRate != 0.5+0.5*(-7) {
		t.Errorf("InterestRate = %v, want %v", a.InterestRate, 0.5+0.5*(-7))
	}
}

func TestCurrentInflationUndefinedIsZero(t *testing.T) {
	a := NewAuthority(1, 2, HoldRule)
	if a.HasInflation() {
		t.Error("fresh authority should have no inflation reading")
	}
	if got := a.CurrentInflation(); got != 0 {
		t.Errorf("CurrentInflation = %v, want 0", got)
	}
}

func TestUpdatePolicyNilIndicators(t *testing.T) {
	a := NewAuthority(1.5, 2, MonetaryRule(DefaultScaling))
	a.UpdatePolicy(nil)
	if a.InterestRate != 1.5 || a.HasInflation() {
		t.Errorf("nil indicators changed state: rate=%v hasInflation=%v", a.InterestRate, a.HasInflation())
	}
}

func TestUpdatePolicyWithoutRule(t *testing.T) {
	a := NewAuthority(1.5, 2, nil)
	a.UpdatePolicy(&economy.Indicators{InflationRate: 9})
	if a.InterestRate != 1.5 {
		t.Errorf("InterestRate = %v, want unchanged 1.5", a.InterestRate)
	}
	if a.CurrentInflation() != 9 {
		t.Errorf("CurrentInflation = %v, want 9 recorded even without a rule", a.CurrentInflation())
	}
}

func TestSetRuleNilKeepsPrevious(t *testing.T) {
	a := NewAuthority(1, 0, MonetaryRule(1))
	a.SetRule(nil)
	if !a.HasRule() {
		t.Fatal("rule was cleared by SetRule(nil)")
	}
	a.UpdatePolicy(&economy.Indicators{InflationRate: 2})
	if a.InterestRate != 3 {
		t.Errorf("InterestRate = %v, want 3 from the previous rule", a.InterestRate)
	}

	a.SetRule(HoldRule)
	a.UpdatePolicy(&economy.Indicators{InflationRate: 10})
	if a.InterestRate != 3 {
		t.Errorf("InterestRate = %v, want 3 after switching to HoldRule", a.InterestRate)
	}
}

func TestOfficeFirstEstablishWins(t *testing.T) {
	var o Office
	if _, err := o.Authority(); !errors.Is(err, ErrNoAuthority) {
		t.Fatalf("Authority() before Establish: err = %v, want ErrNoAuthority", err)
	}

	first := o.Establish(0.02, 0.02, MonetaryRule(DefaultScaling))
	second := o.Establish(5, 9, HoldRule)
	if first != second {
		t.Fatal("second Establish returned a different authority")
	}
	if second.InterestRate != 0.02 || second.TargetInflation != 0.02 {
		t.Errorf("second Establish arguments leaked: %+v", second)
	}

	got, err := o.Authority()
	if err != nil || got != first {
		t.Errorf("Authority() = %p, %v; want %p", got, err, first)
	}

	o.Reset()
	if _, err := o.Authority(); !errors.Is(err, ErrNoAuthority) {
		t.Errorf("after Reset: err = %v, want ErrNoAuthority", err)
	}
	fresh := o.Establish(3, 4, HoldRule)
	if fresh == first || fresh.InterestRate != 3 {
		t.Errorf("Establish after Reset = %+v", fresh)
	}
}
