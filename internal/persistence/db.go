// Package persistence stores completed simulation runs in SQLite.
package persistence

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/talgya/econsim/internal/config"
	"github.com/talgya/econsim/internal/economy"
	"github.com/talgya/econsim/internal/engine"
)

// ErrRunNotFound is returned when no run has the requested ID.
var ErrRunNotFound = errors.New("run not found")

// Meta keys written by SaveRun.
const (
	MetaLastRunID = "last_run_id"
	MetaRunCount  = "run_count"
)

// Fixed-width timestamps keep created_at ordering lexical.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// DB wraps a SQLite connection for run storage.
type DB struct {
	conn *sqlx.DB
}

// RunSummary is one row of the runs table.
type RunSummary struct {
	ID                string  `db:"id" json:"id"`
	CreatedAt         string  `db:"created_at" json:"created_at"`
	Seed              int64   `db:"seed" json:"seed"`
	Entropy           string  `db:"entropy" json:"entropy"`
	StartMonth        int     `db:"start_month" json:"start_month"`
	Months            int     `db:"months" json:"months"`
	Households        int     `db:"households" json:"households"`
	Firms             int     `db:"firms" json:"firms"`
	FinalInflation    float64 `db:"final_inflation" json:"final_inflation"`
	FinalInterestRate float64 `db:"final_interest_rate" json:"final_interest_rate"`
	FinalGDP          float64 `db:"final_gdp" json:"final_gdp"`
	FinalEmployment   float64 `db:"final_employment" json:"final_employment"`

	ConfigJSON  string `db:"config_json" json:"-"`
	InitialJSON string `db:"initial_json" json:"-"`
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		created_at TEXT NOT NULL,
		seed INTEGER NOT NULL,
		entropy TEXT NOT NULL,
		start_month INTEGER NOT NULL,
		months INTEGER NOT NULL,
		households INTEGER NOT NULL,
		firms INTEGER NOT NULL,
		final_inflation REAL NOT NULL,
		final_interest_rate REAL NOT NULL,
		final_gdp REAL NOT NULL,
		final_employment REAL NOT NULL,
		config_json TEXT NOT NULL,
		initial_json TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS periods (
		run_id TEXT NOT NULL,
		month INTEGER NOT NULL,
		raw_inflation REAL NOT NULL,
		inflation REAL NOT NULL,
		interest_rate REAL NOT NULL,
		gdp REAL NOT NULL,
		employment_rate REAL NOT NULL,
		consumer_demand REAL NOT NULL,
		supply_level REAL NOT NULL,
		market_pressure REAL NOT NULL,
		household_spending REAL NOT NULL,
		PRIMARY KEY (run_id, month)
	);

	CREATE TABLE IF NOT EXISTS run_meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created_at);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// SaveRun writes a run and all of its periods in one transaction.
func (db *DB) SaveRun(res *engine.Result) error {
	if res == nil {
		return errors.New("save run: nil result")
	}

	configJSON, err := json.Marshal(res.Config)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	initialJSON, err := json.Marshal(res.Initial)
	if err != nil {
		return fmt.Errorf("encode initial indicators: %w", err)
	}

	final, ok := res.Final()
	if !ok {
		final = engine.Period{
			Inflation:      res.Initial.InflationRate,
			GDP:            res.Initial.GDP,
			EmploymentRate: res.Initial.EmploymentRate,
		}
		if res.Config != nil {
			final.InterestRate = res.Config.InitialInterestRate
		}
	}

	var startMonth, households, firms int
	if res.Config != nil {
		startMonth, households, firms = res.Config.StartMonth, res.Config.Households, res.Config.Firms
	}

	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.Exec(`INSERT INTO runs
		(id, created_at, seed, entropy, start_month, months, households, firms,
		 final_inflation, final_interest_rate, final_gdp, final_employment,
		 config_json, initial_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		res.RunID, res.CreatedAt.UTC().Format(timeLayout), res.Seed, res.Entropy,
		startMonth, len(res.Periods), households, firms,
		final.Inflation, final.InterestRate, final.GDP, final.EmploymentRate,
		string(configJSON), string(initialJSON),
	)
	if err != nil {
		return fmt.Errorf("insert run %s: %w", res.RunID, err)
	}

	stmt, err := tx.Preparex(`INSERT INTO periods
		(run_id, month, raw_inflation, inflation, interest_rate, gdp, employment_rate,
		 consumer_demand, supply_level, market_pressure, household_spending)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, p := range res.Periods {
		_, err := stmt.Exec(
			res.RunID, p.Month, p.RawInflation, p.Inflation, p.InterestRate, p.GDP,
			p.EmploymentRate, p.ConsumerDemand, p.SupplyLevel, p.MarketPressure,
			p.HouseholdSpending,
		)
		if err != nil {
			return fmt.Errorf("insert period %d: %w", p.Month, err)
		}
	}

	if _, err := tx.Exec("INSERT OR REPLACE INTO run_meta (key, value) VALUES (?, ?)", MetaLastRunID, res.RunID); err != nil {
		return fmt.Errorf("save meta: %w", err)
	}
	if _, err := tx.Exec(`INSERT OR REPLACE INTO run_meta (key, value)
		VALUES (?, (SELECT CAST(COUNT(*) AS TEXT) FROM runs))`, MetaRunCount); err != nil {
		return fmt.Errorf("save meta: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	slog.Info("run saved", "run", res.RunID, "periods", len(res.Periods))
	return nil
}

// ListRuns returns the most recent runs, newest first. limit <= 0 means all.
func (db *DB) ListRuns(limit int) ([]RunSummary, error) {
	if limit <= 0 {
		limit = -1
	}
	var runs []RunSummary
	err := db.conn.Select(&runs,
		"SELECT * FROM runs ORDER BY created_at DESC, rowid DESC LIMIT ?",
		limit,
	)
	return runs, err
}

// GetRun returns the summary row for id.
func (db *DB) GetRun(id string) (*RunSummary, error) {
	var run RunSummary
	err := db.conn.Get(&run, "SELECT * FROM runs WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return &run, nil
}

// LoadPeriods returns the periods of run id in month order.
func (db *DB) LoadPeriods(id string) ([]engine.Period, error) {
	if _, err := db.GetRun(id); err != nil {
		return nil, err
	}
	var periods []engine.Period
	err := db.conn.Select(&periods, `SELECT month, raw_inflation, inflation, interest_rate,
		gdp, employment_rate, consumer_demand, supply_level, market_pressure, household_spending
		FROM periods WHERE run_id = ? ORDER BY month`, id)
	return periods, err
}

// LoadRun rebuilds a full result from storage.
func (db *DB) LoadRun(id string) (*engine.Result, error) {
	run, err := db.GetRun(id)
	if err != nil {
		return nil, err
	}
	cfg, err := run.Config()
	if err != nil {
		return nil, err
	}
	var initial economy.Indicators
	if err := json.Unmarshal([]byte(run.InitialJSON), &initial); err != nil {
		return nil, fmt.Errorf("decode initial indicators: %w", err)
	}
	periods, err := db.LoadPeriods(id)
	if err != nil {
		return nil, err
	}
	return &engine.Result{
		RunID:     run.ID,
		CreatedAt: run.Created(),
		Seed:      run.Seed,
		Entropy:   run.Entropy,
		Config:    cfg,
		Initial:   initial,
		Periods:   periods,
	}, nil
}

// DeleteRun removes a run and its periods.
func (db *DB) DeleteRun(id string) error {
	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.Exec("DELETE FROM runs WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	if _, err := tx.Exec("DELETE FROM periods WHERE run_id = ?", id); err != nil {
		return err
	}
	return tx.Commit()
}

// SaveMeta stores a key-value pair in run metadata.
func (db *DB) SaveMeta(key, value string) error {
	_, err := db.conn.Exec(
		"INSERT OR REPLACE INTO run_meta (key, value) VALUES (?, ?)",
		key, value,
	)
	return err
}

// GetMeta retrieves a metadata value.
func (db *DB) GetMeta(key string) (string, error) {
	var value string
	err := db.conn.Get(&value, "SELECT value FROM run_meta WHERE key = ?", key)
	return value, err
}

// Created parses CreatedAt. A malformed value yields the zero time.
func (r *RunSummary) Created() time.Time {
	t, _ := time.Parse(timeLayout, r.CreatedAt)
	return t
}

// Config decodes the configuration the run was executed with.
func (r *RunSummary) Config() (*config.Config, error) {
	cfg := config.Default()
	if err := json.Unmarshal([]byte(r.ConfigJSON), cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}
