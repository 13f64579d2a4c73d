package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/talgya/econsim/internal/config"
	"github.com/talgya/econsim/internal/persistence"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	db, err := persistence.Open(filepath.Join(t.TempDir(), "api.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })

	defaults := config.Default()
	defaults.Households = 10
	defaults.Firms = 5
	defaults.Seed = 1
	return New(db, defaults)
}

func do(t *testing.T, h http.Handler, method, path, body string, header map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var r *http.Request
	if body != "" {
		r = httptest.NewRequest(method, path, strings.NewReader(body))
		r.Header.Set("Content-Type", "application/json")
	} else {
		r = httptest.NewRequest(method, path, nil)
	}
	for k, v := range header {
		r.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	return w
}

type runResponse struct {
	Run persistence.RunSummary `json:"run"`
}

func createRun(t *testing.T, h http.Handler, body string) persistence.RunSummary {
	t.Helper()
	w := do(t, h, http.MethodPost, "/api/v1/runs", body, nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("POST /runs = %d: %s", w.Code, w.Body.String())
	}
	var resp runResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	return resp.Run
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	w := do(t, s.Handler(), http.MethodGet, "/health", "", nil)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"ok"`) {
		t.Errorf("GET /health = %d %s", w.Code, w.Body.String())
	}
}

func TestCreateGetAndListRuns(t *testing.T) {
	s := newTestServer(t)
	h := s.Handler()

	run := createRun(t, h, `{"months": 6, "seed": 5, "overrides": {"initial.gdp": "2000"}}`)
	if run.Months != 6 || run.Seed != 5 || run.Households != 10 {
		t.Errorf("created run = %+v", run)
	}

	w := do(t, h, http.MethodGet, "/api/v1/runs/"+run.ID, "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("GET run = %d", w.Code)
	}
	var detail struct {
		Run    persistence.RunSummary `json:"run"`
		Config config.Config          `json:"config"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &detail); err != nil {
		t.Fatal(err)
	}
	if detail.Config.InitialGDP != 2000 {
		t.Errorf("override not applied: initial GDP = %v", detail.Config.InitialGDP)
	}

	w = do(t, h, http.MethodGet, "/api/v1/runs/"+run.ID+"/periods", "", nil)
	var periods struct {
		Periods []map[string]float64 `json:"periods"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &periods); err != nil {
		t.Fatal(err)
	}
	if len(periods.Periods) != 6 || periods.Periods[0]["month"] != 2 {
		t.Errorf("periods = %v", periods.Periods)
	}

	createRun(t, h, "")
	w = do(t, h, http.MethodGet, "/api/v1/runs?limit=1", "", nil)
	var list struct {
		Runs  []persistence.RunSummary `json:"runs"`
		Count int                      `json:"count"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &list); err != nil {
		t.Fatal(err)
	}
	if list.Count != 1 || len(list.Runs) != 1 {
		t.Errorf("list = %+v", list)
	}
}

func TestRunNotFound(t *testing.T) {
	s := newTestServer(t)
	w := do(t, s.Handler(), http.MethodGet, "/api/v1/runs/nope", "", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d", w.Code)
	}
	var resp ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Error.Code != "RUN_NOT_FOUND" {
		t.Errorf("code = %q", resp.Error.Code)
	}
}

func TestCreateRunValidation(t *testing.T) {
	s := newTestServer(t)
	s.MaxMonths = 24
	h := s.Handler()

	tests := []struct {
		name string
		body string
		code string
	}{
		{"bad json", `{"months": "x"}`, "INVALID_REQUEST"},
		{"too long", `{"months": 25}`, "INVALID_REQUEST"},
		{"too many households", `{"households": 1000000000}`, "INVALID_REQUEST"},
		{"too many firms", `{"firms": 1099511627776}`, "INVALID_REQUEST"},
		{"households via override", `{"overrides": {"agents.households": "100001"}}`, "INVALID_REQUEST"},
		{"firms via override", `{"overrides": {"agents.firms": "10001"}}`, "INVALID_REQUEST"},
		{"bad proportions", `{"overrides": {"firm.small.prob": "0.9", "firm.medium.prob": "0.5"}}`, "INVALID_CONFIG"},
		{"bad entropy", `{"entropy": "quantum"}`, "INVALID_CONFIG"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, h, http.MethodPost, "/api/v1/runs", tt.body, nil)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("status = %d: %s", w.Code, w.Body.String())
			}
			var resp ErrorResponse
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatal(err)
			}
			if resp.Error.Code != tt.code {
				t.Errorf("code = %q, want %q", resp.Error.Code, tt.code)
			}
		})
	}
}

func TestAdminKeyAndDelete(t *testing.T) {
	s := newTestServer(t)
	s.AdminKey = "secret"
	h := s.Handler()

	w := do(t, h, http.MethodPost, "/api/v1/runs", `{"months": 1}`, nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("unauthenticated POST = %d", w.Code)
	}

	auth := map[string]string{"Authorization": "Bearer secret"}
	w = do(t, h, http.MethodPost, "/api/v1/runs", `{"months": 1}`, auth)
	if w.Code != http.StatusCreated {
		t.Fatalf("authenticated POST = %d: %s", w.Code, w.Body.String())
	}
	var resp runResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}

	if w := do(t, h, http.MethodDelete, "/api/v1/runs/"+resp.Run.ID, "", nil); w.Code != http.StatusUnauthorized {
		t.Errorf("unauthenticated DELETE = %d", w.Code)
	}
	if w := do(t, h, http.MethodDelete, "/api/v1/runs/"+resp.Run.ID, "", auth); w.Code != http.StatusNoContent {
		t.Errorf("DELETE = %d", w.Code)
	}
	if w := do(t, h, http.MethodDelete, "/api/v1/runs/"+resp.Run.ID, "", auth); w.Code != http.StatusNotFound {
		t.Errorf("second DELETE = %d", w.Code)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t)
	h := s.Handler()
	run := createRun(t, h, `{"months": 3}`)

	w := do(t, h, http.MethodGet, "/metrics", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("GET /metrics = %d", w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, `econsim_periods_total{run="`+run.ID+`"} 3`) {
		t.Errorf("periods counter missing from /metrics:\n%s", body)
	}
	if !strings.Contains(body, "econsim_runs_total 1") {
		t.Errorf("runs counter missing from /metrics")
	}
}

func TestFailedSaveDropsRunMetrics(t *testing.T) {
	s := newTestServer(t)
	h := s.Handler()
	if err := s.DB.Close(); err != nil {
		t.Fatal(err)
	}

	w := do(t, h, http.MethodPost, "/api/v1/runs", `{"months": 2}`, nil)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("POST with closed store = %d: %s", w.Code, w.Body.String())
	}

	families, err := s.Gatherer.Gather()
	if err != nil {
		t.Fatal(err)
	}
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			for _, lp := range m.GetLabel() {
				if lp.GetName() == "run" {
					t.Errorf("%s still has a series for run %q", mf.GetName(), lp.GetValue())
				}
			}
		}
	}
}

func TestCORSPreflight(t *testing.T) {
	s := newTestServer(t)
	r := httptest.NewRequest(http.MethodOptions, "/api/v1/runs", nil)
	r.Header.Set("Origin", "http://example.com")
	r.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, r)

	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Access-Control-Allow-Origin = %q", got)
	}
}

func TestRateLimit(t *testing.T) {
	s := newTestServer(t)
	s.Limiter = NewRateLimiter(1, time.Hour)
	h := s.Handler()

	createRun(t, h, `{"months": 1}`)
	w := do(t, h, http.MethodPost, "/api/v1/runs", `{"months": 1}`, nil)
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("second POST = %d", w.Code)
	}
	if w.Header().Get("Retry-After") == "" {
		t.Error("Retry-After header missing")
	}
}

func TestRateLimiterWindow(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(2, time.Minute)
	rl.now = func() time.Time { return now }

	if !rl.Allow("a") || !rl.Allow("a") {
		t.Fatal("first two requests should pass")
	}
	if rl.Allow("a") {
		t.Error("third request in window should be limited")
	}
	if !rl.Allow("b") {
		t.Error("other clients are independent")
	}
	if got := rl.RetryAfter("a"); got != 61 {
		t.Errorf("RetryAfter = %d, want 61", got)
	}

	now = now.Add(time.Minute)
	if !rl.Allow("a") {
		t.Error("window reset should allow again")
	}
}
