// Package report renders simulation output for people: a plain-text console
// report and a CSV export of the period ledger.
package report

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/dustin/go-humanize"

	"github.com/talgya/econsim/internal/config"
	"github.com/talgya/econsim/internal/economy"
	"github.com/talgya/econsim/internal/engine"
)

// Console writes the initialization banner and monthly reports.
type Console struct {
	w io.Writer
}

// NewConsole creates a console report writing to w.
func NewConsole(w io.Writer) *Console {
	return &Console{w: w}
}

// billions renders a GDP figure (millions) as billions with thousands separators.
func billions(gdp float64) string {
	return "$" + humanize.CommafWithDigits(gdp/1000, 2) + " billion"
}

// Initialization prints the starting conditions of a run.
func (c *Console) Initialization(cfg *config.Config, initial economy.Indicators) error {
	_, err := fmt.Fprintf(c.w,
		"=== ECONOMIC SIMULATION INITIALIZATION ===\n"+
			"• Start Month:           %d\n"+
			"• Months to Simulate:    %d\n"+
			"• Households / Firms:    %s / %s\n"+
			"• Initial GDP:           %s\n"+
			"• Initial Inflation:     %.2f%%\n"+
			"• Inflation Target:      %.2f%%\n"+
			"• Initial Interest Rate: %.2f%%\n"+
			"• Initial Employment:    %.2f%%\n"+
			"• Consumer Demand:       %.2f (index)\n"+
			"• Supply Level:          %.2f (index)\n\n",
		cfg.StartMonth,
		cfg.MonthsToSimulate,
		humanize.Comma(int64(cfg.Households)), humanize.Comma(int64(cfg.Firms)),
		billions(initial.GDP),
		initial.InflationRate,
		cfg.InflationTarget,
		cfg.InitialInterestRate,
		initial.EmploymentRate,
		initial.ConsumerDemand,
		initial.SupplyLevel,
	)
	return err
}

// Month prints the report for one completed period.
func (c *Console) Month(p engine.Period) error {
	_, err := fmt.Fprintf(c.w,
		"=== MONTH %d ECONOMIC REPORT ===\n"+
			"• Inflation Rate:   %.2f%%\n"+
			"• Interest Rate:    %.2f%%\n"+
			"• GDP:              %s\n"+
			"• Consumer Demand:  %.2f (index)\n"+
			"• Supply Level:     %.2f (index)\n\n"+
			"Month %d Summary: Inflation = %.2f%%, Interest Rate = %.2f%%, GDP = %.2f, Employment = %.2f%%\n\n",
		p.Month,
		p.Inflation,
		p.InterestRate,
		billions(p.GDP),
		p.ConsumerDemand,
		p.SupplyLevel,
		p.Month, p.Inflation, p.InterestRate, p.GDP, p.EmploymentRate,
	)
	return err
}

// Observer adapts Month to a period callback. Write failures are logged.
func (c *Console) Observer() func(engine.Period) {
	return func(p engine.Period) {
		if err := c.Month(p); err != nil {
			slog.Warn("console report failed", "month", p.Month, "error", err)
		}
	}
}

// Summary prints the closing lines of a run.
func (c *Console) Summary(res *engine.Result) error {
	last, ok := res.Final()
	if !ok {
		_, err := fmt.Fprintf(c.w, "Run %s simulated no months.\n", res.RunID)
		return err
	}

	growth := 0.0
	if res.Initial.GDP != 0 {
		growth = (last.GDP - res.Initial.GDP) / res.Initial.GDP * 100
	}
	_, err := fmt.Fprintf(c.w,
		"=== SIMULATION COMPLETE ===\n"+
			"• Run:               %s\n"+
			"• Months Simulated:  %d\n"+
			"• Final GDP:         %s (%+.2f%%)\n"+
			"• Final Inflation:   %.2f%%\n"+
			"• Final Rate:        %.2f%%\n"+
			"• Final Employment:  %.2f%%\n",
		res.RunID,
		len(res.Periods),
		billions(last.GDP), growth,
		last.Inflation,
		last.InterestRate,
		last.EmploymentRate,
	)
	return err
}
