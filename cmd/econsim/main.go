// Command econsim runs the agent-based macroeconomic simulation.
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/talgya/econsim/internal/logging"
	"github.com/talgya/econsim/internal/persistence"
)

var version = "0.1.0-dev"

const defaultDBPath = "data/econsim.db"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "econsim",
		Short: "Agent-based macroeconomic simulator",
		Long: `econsim simulates an economy of households and firms under a central bank.

Each month households and firms react to the interest rate and the latest
indicators, market statistics turn firm responsiveness into an inflation
reading, and the monetary authority adjusts the rate toward its target.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level, _ := cmd.Flags().GetString("log-level")
			format, _ := cmd.Flags().GetString("log-format")
			logging.Setup(level, format, cmd.ErrOrStderr())
		},
	}

	// Global flags
	rootCmd.PersistentFlags().String("log-level", "info", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().String("log-format", "text", "Log format: text or json")
	rootCmd.PersistentFlags().Bool("json", false, "Output as JSON")

	rootCmd.AddCommand(
		newVersionCmd(),
		newRunCmd(),
		newRunsCmd(),
		newShowCmd(),
		newDeleteCmd(),
		newServeCmd(),
	)
	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")
			if jsonOut {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]string{"version": version})
			}
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "econsim version %s\n", version)
			return err
		},
	}
}

// openDB opens the run store, creating its directory if needed.
func openDB(path string) (*persistence.DB, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}
	return persistence.Open(path)
}

// openExistingDB opens the run store without creating it. Commands that only
// read or remove runs use it so a mistyped --db path does not leave an empty
// database behind.
func openExistingDB(path string) (*persistence.DB, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("no database at %s", path)
		}
		return nil, fmt.Errorf("stat database: %w", err)
	}
	return persistence.Open(path)
}

func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
