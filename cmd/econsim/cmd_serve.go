package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/talgya/econsim/internal/api"
	"github.com/talgya/econsim/internal/config"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve stored runs and run new simulations over HTTP",
		Long: `Start the HTTP API.

  GET    /health
  GET    /metrics
  GET    /api/v1/runs?limit=N
  POST   /api/v1/runs
  GET    /api/v1/runs/:id
  GET    /api/v1/runs/:id/periods
  DELETE /api/v1/runs/:id

POST and DELETE require "Authorization: Bearer <key>" when --admin-key or
ECONSIM_ADMIN_KEY is set.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			addr, _ := cmd.Flags().GetString("addr")
			dbPath, _ := cmd.Flags().GetString("db")
			cfgPath, _ := cmd.Flags().GetString("config")
			adminKey, _ := cmd.Flags().GetString("admin-key")
			maxMonths, _ := cmd.Flags().GetInt("max-months")
			maxHouseholds, _ := cmd.Flags().GetInt("max-households")
			maxFirms, _ := cmd.Flags().GetInt("max-firms")

			if adminKey == "" {
				adminKey = os.Getenv("ECONSIM_ADMIN_KEY")
			}

			defaults := config.Default()
			if cfgPath != "" {
				defaults = config.Load(cfgPath)
			}
			if err := defaults.Validate(); err != nil {
				return err
			}

			db, err := openDB(dbPath)
			if err != nil {
				return err
			}
			defer db.Close()

			if os.Getenv("ECONSIM_ENV") == "production" {
				gin.SetMode(gin.ReleaseMode)
			}

			srv := api.New(db, defaults)
			srv.AdminKey = adminKey
			srv.MaxMonths = maxMonths
			srv.MaxHouseholds = maxHouseholds
			srv.MaxFirms = maxFirms

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return srv.ListenAndServe(ctx, addr)
		},
	}
	cmd.Flags().String("addr", ":8080", "Listen address")
	cmd.Flags().String("db", defaultDBPath, "SQLite database path")
	cmd.Flags().StringP("config", "c", "", "Base configuration for runs created over HTTP")
	cmd.Flags().String("admin-key", "", "Bearer token required for POST and DELETE")
	cmd.Flags().Int("max-months", api.DefaultMaxMonths, "Longest run accepted over HTTP")
	cmd.Flags().Int("max-households", api.DefaultMaxHouseholds, "Largest household population accepted over HTTP")
	cmd.Flags().Int("max-firms", api.DefaultMaxFirms, "Largest firm population accepted over HTTP")
	return cmd
}
