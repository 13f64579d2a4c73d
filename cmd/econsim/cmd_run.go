package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/talgya/econsim/internal/config"
	"github.com/talgya/econsim/internal/engine"
	"github.com/talgya/econsim/internal/entropy"
	"github.com/talgya/econsim/internal/report"
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a simulation and print the monthly reports",
		Long: `Run a simulation from a configuration file (YAML or key=value properties).

Missing or malformed configuration values fall back to their defaults.
Flags override the file; ECONSIM_MONTHS, ECONSIM_SEED and ECONSIM_ENTROPY
override the file but not the flags.`,
		Example: `  econsim run --months 24 --seed 42
  econsim run --config simulation.properties --csv ledger.csv --db data/econsim.db`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := runConfig(cmd)
			if err != nil {
				return err
			}

			src, err := entropy.Parse(cfg.Entropy, cfg.Seed)
			if err != nil {
				return err
			}

			jsonOut, _ := cmd.Flags().GetBool("json")
			quiet, _ := cmd.Flags().GetBool("quiet")
			quiet = quiet || jsonOut

			console := report.NewConsole(cmd.OutOrStdout())
			var opts []engine.Option
			if !quiet {
				opts = append(opts, engine.WithObserver(console.Observer()))
			}

			sim, err := engine.NewSimulation(cfg, src, opts...)
			if err != nil {
				return fmt.Errorf("simulation setup failed: %w", err)
			}
			if !quiet {
				if err := console.Initialization(cfg, sim.InitialIndicators()); err != nil {
					return err
				}
			}

			sim.Run()
			res := sim.Result()
			slog.Info("simulation finished", "run", res.RunID, "months", len(res.Periods), "seed", res.Seed)

			if csvPath, _ := cmd.Flags().GetString("csv"); csvPath != "" {
				if err := report.WriteCSVFile(csvPath, res.Periods); err != nil {
					return fmt.Errorf("write csv: %w", err)
				}
				slog.Info("period ledger written", "path", csvPath)
			}

			if dbPath, _ := cmd.Flags().GetString("db"); dbPath != "" {
				db, err := openDB(dbPath)
				if err != nil {
					return err
				}
				defer db.Close()
				if err := db.SaveRun(res); err != nil {
					return fmt.Errorf("save run: %w", err)
				}
			}

			if jsonOut {
				return writeJSON(cmd, res)
			}
			return console.Summary(res)
		},
	}

	cmd.Flags().StringP("config", "c", "", "Configuration file (.yaml, .yml or key=value properties)")
	cmd.Flags().Int64("seed", 0, "Random seed (0 = time-based)")
	cmd.Flags().String("entropy", "", "Random source: seeded, crypto or noise")
	cmd.Flags().Int("months", 0, "Months to simulate (overrides the configuration)")
	cmd.Flags().String("db", "", "Store the run in this SQLite database")
	cmd.Flags().String("csv", "", "Write the period ledger to this CSV file")
	cmd.Flags().BoolP("quiet", "q", false, "Only print the final summary")

	return cmd
}

// runConfig resolves configuration: defaults, then file, then environment,
// then explicitly set flags.
func runConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.Default()
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		cfg = config.Load(path)
	}
	cfg.ApplyEnv()

	if cmd.Flags().Changed("seed") {
		cfg.Seed, _ = cmd.Flags().GetInt64("seed")
	}
	if cmd.Flags().Changed("entropy") {
		cfg.Entropy, _ = cmd.Flags().GetString("entropy")
	}
	if cmd.Flags().Changed("months") {
		months, _ := cmd.Flags().GetInt("months")
		if months < 0 {
			return nil, fmt.Errorf("--months must be non-negative, got %d", months)
		}
		cfg.MonthsToSimulate = months
	}
	return cfg, nil
}
