// Package metrics exposes simulation indicators as Prometheus gauges.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/talgya/econsim/internal/engine"
)

const namespace = "econsim"

// Recorder publishes the latest period of each run.
type Recorder struct {
	inflation      *prometheus.GaugeVec
	interestRate   *prometheus.GaugeVec
	gdp            *prometheus.GaugeVec
	employment     *prometheus.GaugeVec
	demand         *prometheus.GaugeVec
	supply         *prometheus.GaugeVec
	marketPressure *prometheus.GaugeVec
	spending       *prometheus.GaugeVec
	periods        *prometheus.CounterVec
	runs           prometheus.Counter
}

// NewRecorder registers the simulation metrics with reg.
func NewRecorder(reg prometheus.Registerer) *Recorder {
	f := promauto.With(reg)
	gauge := func(name, help string) *prometheus.GaugeVec {
		return f.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      name,
				Help:      help,
			},
			[]string{"run"},
		)
	}

	return &Recorder{
		inflation:      gauge("inflation_rate", "Smoothed inflation rate of the last completed month (percent)"),
		interestRate:   gauge("interest_rate", "Policy interest rate after the last completed month"),
		gdp:            gauge("gdp", "Gross domestic product"),
		employment:     gauge("employment_rate", "Employment rate [50,100]"),
		demand:         gauge("consumer_demand", "Consumer demand index [0.5,1.5]"),
		supply:         gauge("supply_level", "Supply level index [0.5,1.5]"),
		marketPressure: gauge("market_pressure", "Smoothed market pressure"),
		spending:       gauge("household_spending", "Total planned household spending (diagnostic)"),
		periods: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "periods_total",
				Help:      "Simulated months",
			},
			[]string{"run"},
		),
		runs: f.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "runs_total",
				Help:      "Completed simulation runs",
			},
		),
	}
}

// Observe records one period for run.
func (r *Recorder) Observe(run string, p engine.Period) {
	r.inflation.WithLabelValues(run).Set(p.Inflation)
	r.interestRate.WithLabelValues(run).Set(p.InterestRate)
	r.gdp.WithLabelValues(run).Set(p.GDP)
	r.employment.WithLabelValues(run).Set(p.EmploymentRate)
	r.demand.WithLabelValues(run).Set(p.ConsumerDemand)
	r.supply.WithLabelValues(run).Set(p.SupplyLevel)
	r.marketPressure.WithLabelValues(run).Set(p.MarketPressure)
	r.spending.WithLabelValues(run).Set(p.HouseholdSpending)
	r.periods.WithLabelValues(run).Inc()
}

// Observer returns a period callback bound to run, for engine.WithObserver.
func (r *Recorder) Observer(run string) func(engine.Period) {
	return func(p engine.Period) { r.Observe(run, p) }
}

// RunCompleted counts a finished run.
func (r *Recorder) RunCompleted() { r.runs.Inc() }

// Forget drops every series labelled with run.
func (r *Recorder) Forget(run string) {
	for _, g := range []*prometheus.GaugeVec{
		r.inflation, r.interestRate, r.gdp, r.employment,
		r.demand, r.supply, r.marketPressure, r.spending,
	} {
		g.DeleteLabelValues(run)
	}
	r.periods.DeleteLabelValues(run)
}
