package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/talgya/econsim/internal/report"
)

func newRunsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List stored runs, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			dbPath, _ := cmd.Flags().GetString("db")
			limit, _ := cmd.Flags().GetInt("limit")
			jsonOut, _ := cmd.Flags().GetBool("json")

			db, err := openExistingDB(dbPath)
			if err != nil {
				return err
			}
			defer db.Close()

			runs, err := db.ListRuns(limit)
			if err != nil {
				return fmt.Errorf("list runs: %w", err)
			}
			if jsonOut {
				return writeJSON(cmd, runs)
			}
			if len(runs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No stored runs.")
				return nil
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tCREATED\tSEED\tMONTHS\tAGENTS\tFINAL GDP\tINFLATION\tRATE")
			for _, r := range runs {
				fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%s\t%s\t%.2f%%\t%.4f\n",
					r.ID, humanize.Time(r.Created()), r.Seed, r.Months,
					humanize.Comma(int64(r.Households+r.Firms)),
					humanize.CommafWithDigits(r.FinalGDP, 2),
					r.FinalInflation, r.FinalInterestRate,
				)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().String("db", defaultDBPath, "SQLite database path")
	cmd.Flags().Int("limit", 20, "Maximum runs to list (0 = all)")
	return cmd
}

func newShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <run-id>",
		Short: "Show the monthly reports of a stored run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dbPath, _ := cmd.Flags().GetString("db")
			csvPath, _ := cmd.Flags().GetString("csv")
			jsonOut, _ := cmd.Flags().GetBool("json")

			db, err := openExistingDB(dbPath)
			if err != nil {
				return err
			}
			defer db.Close()

			res, err := db.LoadRun(args[0])
			if err != nil {
				return err
			}

			if csvPath != "" {
				if err := report.WriteCSVFile(csvPath, res.Periods); err != nil {
					return fmt.Errorf("write csv: %w", err)
				}
			}
			if jsonOut {
				return writeJSON(cmd, res)
			}

			console := report.NewConsole(cmd.OutOrStdout())
			if err := console.Initialization(res.Config, res.Initial); err != nil {
				return err
			}
			for _, p := range res.Periods {
				if err := console.Month(p); err != nil {
					return err
				}
			}
			return console.Summary(res)
		},
	}
	cmd.Flags().String("db", defaultDBPath, "SQLite database path")
	cmd.Flags().String("csv", "", "Also write the period ledger to this CSV file")
	return cmd
}

func newDeleteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <run-id>",
		Short: "Delete a stored run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dbPath, _ := cmd.Flags().GetString("db")
			db, err := openExistingDB(dbPath)
			if err != nil {
				return err
			}
			defer db.Close()

			if err := db.DeleteRun(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted run %s\n", args[0])
			return nil
		},
	}
	cmd.Flags().String("db", defaultDBPath, "SQLite database path")
	return cmd
}
