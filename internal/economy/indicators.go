// Package economy provides the macro indicators snapshot and the market
// statistics that turn firm behavior into an inflation reading.
package economy

// Indicators is the shared snapshot agents and policy read each period.
// It reflects the previous completed period until Update is called.
type Indicators struct {
	InflationRate  float64 `json:"inflation_rate"`
	GDP            float64 `json:"gdp"`
	EmploymentRate float64 `json:"employment_rate"`
	ConsumerDemand float64 `json:"consumer_demand"`
	SupplyLevel    float64 `json:"supply_level"`
}

// NewIndicators creates a snapshot from initial values.
func NewIndicators(inflation, gdp, employment, demand, supply float64) *Indicators {
	return &Indicators{
		InflationRate:  inflation,
		GDP:            gdp,
		EmploymentRate: employment,
		ConsumerDemand: demand,
		SupplyLevel:    supply,
	}
}

// Update replaces every field at once.
func (i *Indicators) Update(inflation, gdp, employment, demand, supply float64) {
	*i = Indicators{
		InflationRate:  inflation,
		GDP:            gdp,
		EmploymentRate: employment,
		ConsumerDemand: demand,
		SupplyLevel:    supply,
	}
}
