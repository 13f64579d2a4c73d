package report

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/talgya/econsim/internal/config"
	"github.com/talgya/econsim/internal/economy"
	"github.com/talgya/econsim/internal/engine"
)

func TestInitialization(t *testing.T) {
	var buf bytes.Buffer
	cfg := config.Default()
	initial := economy.Indicators{InflationRate: 2, GDP: 1234560, EmploymentRate: 0.95, ConsumerDemand: 1, SupplyLevel: 1}

	if err := NewConsole(&buf).Initialization(cfg, initial); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{
		"=== ECONOMIC SIMULATION INITIALIZATION ===",
		"• Months to Simulate:    12",
		"• Households / Firms:    1,000 / 100",
		"• Initial GDP:           $1,234.56 billion",
		"• Initial Inflation:     2.00%",
		"• Initial Employment:    0.95%",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestMonth(t *testing.T) {
	var buf bytes.Buffer
	p := engine.Period{Month: 4, Inflation: 1.5, InterestRate: 0.03, GDP: 1009.99, EmploymentRate: 50, ConsumerDemand: 0.5, SupplyLevel: 0.95}

	NewConsole(&buf).Observer()(p)

	out := buf.String()
	if !strings.Contains(out, "=== MONTH 4 ECONOMIC REPORT ===") {
		t.Errorf("missing header:\n%s", out)
	}
	if !strings.Contains(out, "Month 4 Summary: Inflation = 1.50%, Interest Rate = 0.03%, GDP = 1009.99, Employment = 50.00%") {
		t.Errorf("missing summary line:\n%s", out)
	}
}

func TestSummary(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf)

	res := &engine.Result{RunID: "r1", Initial: economy.Indicators{GDP: 1000}}
	if err := c.Summary(res); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "simulated no months") {
		t.Errorf("zero-month summary = %q", buf.String())
	}

	buf.Reset()
	res.Periods = []engine.Period{{Month: 2, GDP: 1100}}
	if err := c.Summary(res); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "(+10.00%)") {
		t.Errorf("growth missing: %q", buf.String())
	}
}

func TestWriteCSV(t *testing.T) {
	periods := []engine.Period{
		{Month: 2, RawInflation: 0.5, Inflation: 0.5, InterestRate: 0.01, GDP: 1009.99},
		{Month: 3, RawInflation: -1, Inflation: 0.2, InterestRate: 0.02, GDP: 1020},
	}
	path := filepath.Join(t.TempDir(), "ledger.csv")
	if err := WriteCSVFile(path, periods); err != nil {
		t.Fatalf("WriteCSVFile: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 3 {
		t.Fatalf("rows = %d, want 3", len(rows))
	}
	if rows[0][0] != "month" || len(rows[0]) != len(ledgerHeader) {
		t.Errorf("header = %v", rows[0])
	}
	if rows[1][0] != "2" || rows[1][4] != "1009.990000" {
		t.Errorf("first row = %v", rows[1])
	}
	if rows[2][1] != "-1.000000" {
		t.Errorf("raw inflation = %q", rows[2][1])
	}
}
