package agents

// Household is a consumer with fixed savings and rate-sensitivity traits.
type Household struct {
	Archetype           HouseholdArchetype `json:"archetype"`
	Income              float64            `json:"income"`
	SavingsRate         float64            `json:"savings_rate"`
	InterestSensitivity float64            `json:"interest_sensitivity"`
}

// Act computes the household's planned spending for the month.
//
// The figure is returned for reporting only. Nothing in the macro model
// consumes it: households currently have no effect on demand or GDP.
func (h *Household) Act(v View) float64 {
	return h.Spending(v.InterestRate(), v.EmploymentRate(), v.Indicators().InflationRate)
}

// Spending is planned consumption under the given conditions.
func (h *Household) Spending(rate, employment, inflation float64) float64 {
	inflationFactor := 1 - 0.5*(inflation/100)
	if inflationFactor < 0.3 {
		inflationFactor = 0.3
	}

	employmentFactor := employment / 100
	if employmentFactor < 0.5 {
		employmentFactor = 0.5
	}

	return h.Income *
		(1 - h.SavingsRate) *
		(1 - h.InterestSensitivity*(rate/100)) *
		employmentFactor *
		inflationFactor
}
