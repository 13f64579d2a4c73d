package main

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// execute runs the root command with args and returns stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	var out, errOut bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(append(args, "--log-level", "error"))
	err := root.Execute()
	return out.String(), err
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, version) {
		t.Errorf("version output = %q", out)
	}

	out, err = execute(t, "version", "--json")
	if err != nil {
		t.Fatal(err)
	}
	var v map[string]string
	if err := json.Unmarshal([]byte(out), &v); err != nil || v["version"] != version {
		t.Errorf("json version = %q (%v)", out, err)
	}
}

func TestRunPrintsReports(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "sim.properties")
	props := "months_to_simulate=3\nagents.households=10\nagents.firms=5\ninitial.gdp=oops\n"
	if err := os.WriteFile(cfgPath, []byte(props), 0644); err != nil {
		t.Fatal(err)
	}
	csvPath := filepath.Join(dir, "ledger.csv")

	out, err := execute(t, "run", "--config", cfgPath, "--seed", "42", "--csv", csvPath)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	for _, want := range []string{
		"=== ECONOMIC SIMULATION INITIALIZATION ===",
		"• Initial GDP:           $1 billion",
		"=== MONTH 2 ECONOMIC REPORT ===",
		"=== MONTH 4 ECONOMIC REPORT ===",
		"=== SIMULATION COMPLETE ===",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}
	if strings.Contains(out, "MONTH 5") {
		t.Error("ran more months than configured")
	}

	data, err := os.ReadFile(csvPath)
	if err != nil {
		t.Fatal(err)
	}
	if lines := strings.Count(string(data), "\n"); lines != 4 {
		t.Errorf("csv lines = %d, want 4", lines)
	}
}

func TestRunStoreShowAndDelete(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "runs.db")

	out, err := execute(t, "run", "--months", "2", "--seed", "7", "--db", dbPath, "--json")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	var res struct {
		ID      string `json:"id"`
		Seed    int64  `json:"seed"`
		Periods []struct {
			Month int `json:"month"`
		} `json:"periods"`
	}
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		t.Fatalf("run --json output: %v\n%s", err, out)
	}
	if res.Seed != 7 || len(res.Periods) != 2 {
		t.Errorf("result = %+v", res)
	}

	out, err = execute(t, "runs", "--db", dbPath)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, res.ID) {
		t.Errorf("runs listing missing %s:\n%s", res.ID, out)
	}
	if !strings.Contains(out, "now") && !strings.Contains(out, "ago") {
		t.Errorf("runs listing should show a relative creation time:\n%s", out)
	}

	out, err = execute(t, "show", res.ID, "--db", dbPath)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "=== MONTH 3 ECONOMIC REPORT ===") {
		t.Errorf("show output:\n%s", out)
	}

	if _, err := execute(t, "delete", res.ID, "--db", dbPath); err != nil {
		t.Fatal(err)
	}
	if _, err := execute(t, "show", res.ID, "--db", dbPath); err == nil {
		t.Error("show after delete should fail")
	}
}

func TestRunRejectsBadInput(t *testing.T) {
	if _, err := execute(t, "run", "--months", "-1"); err == nil {
		t.Error("expected error for negative months")
	}
	if _, err := execute(t, "run", "--months", "1", "--entropy", "quantum"); err == nil {
		t.Error("expected error for unknown entropy")
	}
}

func TestReadCommandsDoNotCreateDatabase(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "data", "missing.db")
	for _, args := range [][]string{
		{"runs", "--db", dbPath},
		{"show", "abc", "--db", dbPath},
		{"delete", "abc", "--db", dbPath},
	} {
		_, err := execute(t, args...)
		if err == nil || !strings.Contains(err.Error(), "no database") {
			t.Errorf("%s: err = %v, want no database error", args[0], err)
		}
	}
	if _, err := os.Stat(filepath.Dir(dbPath)); !os.IsNotExist(err) {
		t.Errorf("database directory was created: %v", err)
	}
}
