// Package api serves stored simulation runs over HTTP and runs new ones on
// request. GET endpoints are public. POST and DELETE require a bearer token
// when an admin key is configured.
package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	"github.com/talgya/econsim/internal/config"
	"github.com/talgya/econsim/internal/engine"
	"github.com/talgya/econsim/internal/metrics"
	"github.com/talgya/econsim/internal/persistence"
)

// Bounds on runs requested over HTTP.
const (
	DefaultMaxMonths     = 1200
	DefaultMaxHouseholds = 100_000
	DefaultMaxFirms      = 10_000
)

// Server serves simulation runs over HTTP.
type Server struct {
	DB       *persistence.DB
	Metrics  *metrics.Recorder
	Gatherer prometheus.Gatherer
	Defaults *config.Config // Base configuration for POSTed runs
	AdminKey string         // Bearer token for POST/DELETE. Empty = open.

	MaxMonths     int
	MaxHouseholds int
	MaxFirms      int
	Limiter       *RateLimiter
}

// New creates a server backed by db. Metrics are registered on a fresh
// registry that also serves /metrics.
func New(db *persistence.DB, defaults *config.Config) *Server {
	reg := prometheus.NewRegistry()
	if defaults == nil {
		defaults = config.Default()
	}
	return &Server{
		DB:        db,
		Metrics:   metrics.NewRecorder(reg),
		Gatherer:  reg,
		Defaults:  defaults,
		MaxMonths:     DefaultMaxMonths,
		MaxHouseholds: DefaultMaxHouseholds,
		MaxFirms:      DefaultMaxFirms,
		Limiter:       NewRateLimiter(30, time.Minute),
	}
}

// Router builds the gin engine with every route registered.
func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(requestLogger())
	router.Use(recovery())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if s.Gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.Gatherer, promhttp.HandlerOpts{})))
	}

	v1 := router.Group("/api/v1")
	{
		v1.GET("/runs", s.listRuns)
		v1.GET("/runs/:id", s.getRun)
		v1.GET("/runs/:id/periods", s.getPeriods)

		create := []gin.HandlerFunc{s.adminOnly()}
		if s.Limiter != nil {
			create = append(create, RateLimit(s.Limiter))
		}
		v1.POST("/runs", append(create, s.createRun)...)
		v1.DELETE("/runs/:id", s.adminOnly(), s.deleteRun)
	}

	router.NoRoute(func(c *gin.Context) {
		writeError(c, http.StatusNotFound, "NOT_FOUND", "no route for "+c.Request.URL.Path)
	})
	return router
}

// Handler wraps the router with CORS handling.
func (s *Server) Handler() http.Handler {
	return cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
	}).Handler(s.Router())
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("HTTP API listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		slog.Info("HTTP API shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

// adminOnly rejects requests without the admin bearer token.
func (s *Server) adminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.AdminKey == "" {
			c.Next()
			return
		}
		auth := c.GetHeader("Authorization")
		if !strings.HasPrefix(auth, "Bearer ") || strings.TrimPrefix(auth, "Bearer ") != s.AdminKey {
			abortWithError(c, http.StatusUnauthorized, "UNAUTHORIZED", "missing or invalid bearer token")
			return
		}
		c.Next()
	}
}

func (s *Server) listRuns(c *gin.Context) {
	limit := 50
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	runs, err := s.DB.ListRuns(limit)
	if err != nil {
		s.internalError(c, "list runs", err)
		return
	}
	if runs == nil {
		runs = []persistence.RunSummary{}
	}
	c.JSON(http.StatusOK, gin.H{"runs": runs, "count": len(runs)})
}

func (s *Server) getRun(c *gin.Context) {
	run, err := s.DB.GetRun(c.Param("id"))
	if err != nil {
		s.storeError(c, "get run", err)
		return
	}
	cfg, err := run.Config()
	if err != nil {
		s.internalError(c, "decode run config", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"run": run, "config": cfg})
}

func (s *Server) getPeriods(c *gin.Context) {
	periods, err := s.DB.LoadPeriods(c.Param("id"))
	if err != nil {
		s.storeError(c, "load periods", err)
		return
	}
	if periods == nil {
		periods = []engine.Period{}
	}
	c.JSON(http.StatusOK, gin.H{"periods": periods})
}

// createRunRequest is the body of POST /api/v1/runs. Unset fields keep the
// server's defaults; overrides use the configuration file's key names.
type createRunRequest struct {
	Months     *int              `json:"months"`
	Seed       *int64            `json:"seed"`
	Entropy    string            `json:"entropy"`
	Households *int              `json:"households"`
	Firms      *int              `json:"firms"`
	Overrides  map[string]string `json:"overrides"`
}

func (s *Server) createRun(c *gin.Context) {
	var req createRunRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			writeError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
			return
		}
	}

	cfg := s.runConfig(req)
	if msg := s.checkBounds(cfg); msg != "" {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", msg)
		return
	}

	runID := uuid.NewString()
	opts := []engine.Option{engine.WithRunID(runID)}
	if s.Metrics != nil {
		opts = append(opts, engine.WithObserver(s.Metrics.Observer(runID)))
	}
	res, err := engine.Execute(cfg, opts...)
	if err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_CONFIG", err.Error())
		return
	}
	if s.Metrics != nil {
		s.Metrics.RunCompleted()
	}

	if err := s.DB.SaveRun(res); err != nil {
		if s.Metrics != nil {
			s.Metrics.Forget(runID)
		}
		s.internalError(c, "save run", err)
		return
	}
	run, err := s.DB.GetRun(runID)
	if err != nil {
		s.internalError(c, "reload run", err)
		return
	}

	slog.Info("run created via API", "run", runID, "months", len(res.Periods))
	c.JSON(http.StatusCreated, gin.H{"run": run})
}

func (s *Server) deleteRun(c *gin.Context) {
	id := c.Param("id")
	if err := s.DB.DeleteRun(id); err != nil {
		s.storeError(c, "delete run", err)
		return
	}
	if s.Metrics != nil {
		s.Metrics.Forget(id)
	}
	c.Status(http.StatusNoContent)
}

// runConfig layers a request over a copy of the server defaults.
func (s *Server) runConfig(req createRunRequest) *config.Config {
	cfg := *s.Defaults
	cfg.Apply(req.Overrides)

	if req.Months != nil {
		cfg.MonthsToSimulate = *req.Months
	}
	if req.Seed != nil {
		cfg.Seed = *req.Seed
	}
	if req.Entropy != "" {
		cfg.Entropy = req.Entropy
	}
	if req.Households != nil {
		cfg.Households = *req.Households
	}
	if req.Firms != nil {
		cfg.Firms = *req.Firms
	}
	return &cfg
}

// checkBounds returns a message for the first size limit cfg exceeds.
// Agents are allocated up front, so counts are capped before construction.
func (s *Server) checkBounds(cfg *config.Config) string {
	switch {
	case cfg.MonthsToSimulate > s.MaxMonths:
		return "months must be at most " + strconv.Itoa(s.MaxMonths)
	case cfg.Households > s.MaxHouseholds:
		return "households must be at most " + strconv.Itoa(s.MaxHouseholds)
	case cfg.Firms > s.MaxFirms:
		return "firms must be at most " + strconv.Itoa(s.MaxFirms)
	}
	return ""
}

func (s *Server) storeError(c *gin.Context, op string, err error) {
	if errors.Is(err, persistence.ErrRunNotFound) {
		writeError(c, http.StatusNotFound, "RUN_NOT_FOUND", err.Error())
		return
	}
	s.internalError(c, op, err)
}

func (s *Server) internalError(c *gin.Context, op string, err error) {
	slog.Error("api request failed", "op", op, "error", err)
	writeError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "an unexpected error occurred")
}
