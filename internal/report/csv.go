package report

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"

	"github.com/talgya/econsim/internal/engine"
)

var ledgerHeader = []string{
	"month",
	"raw_inflation",
	"inflation",
	"interest_rate",
	"gdp",
	"employment_rate",
	"consumer_demand",
	"supply_level",
	"market_pressure",
	"household_spending",
}

// WriteCSVFile writes the period ledger to path.
func WriteCSVFile(path string, periods []engine.Period) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := WriteCSV(f, periods); err != nil {
		return err
	}
	return f.Close()
}

// WriteCSV writes the period ledger with a header row.
func WriteCSV(out io.Writer, periods []engine.Period) error {
	w := csv.NewWriter(out)

	if err := w.Write(ledgerHeader); err != nil {
		return err
	}
	for _, p := range periods {
		row := []string{
			strconv.Itoa(p.Month),
			fmtFloat(p.RawInflation),
			fmtFloat(p.Inflation),
			fmtFloat(p.InterestRate),
			fmtFloat(p.GDP),
			fmtFloat(p.EmploymentRate),
			fmtFloat(p.ConsumerDemand),
			fmtFloat(p.SupplyLevel),
			fmtFloat(p.MarketPressure),
			fmtFloat(p.HouseholdSpending),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

func fmtFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}
