package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobhunt-harvester/internal/config"
	"jobhunt-harvester/internal/domain"
	"jobhunt-harvester/internal/events"
	"jobhunt-harvester/internal/runner"
	"jobhunt-harvester/internal/store"
)

type fakeHarvester struct {
	mu    sync.Mutex
	busy  bool
	calls []config.Config
	ran   chan struct{}
}

func (f *fakeHarvester) RunOnce(_ context.Context, cfg config.Config) (domain.Run, error) {
	f.mu.Lock()
	f.calls = append(f.calls, cfg)
	f.mu.Unlock()
	if f.ran != nil {
		f.ran <- struct{}{}
	}
	return domain.Run{ID: "r1"}, nil
}

func (f *fakeHarvester) Status() runner.Status {
	return runner.Status{Running: f.Busy(), LastListings: 7}
}

func (f *fakeHarvester) Busy() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.busy
}

type testEnv struct {
	srv   *httptest.Server
	db    *store.DB
	h     *fakeHarvester
	cfg   *atomic.Value
	cfgAt string
}

func newEnv(t *testing.T) *testEnv {
	t.Helper()
	dir := t.TempDir()
	db, err := store.Open(context.Background(), filepath.Join(dir, "harvest.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	cfgPath := filepath.Join(dir, "config.yml")
	cfgVal := &atomic.Value{}
	cfgVal.Store(config.Default())

	h := &fakeHarvester{ran: make(chan struct{}, 1)}
	srv := httptest.NewServer(NewHandler(Deps{
		Store:       db,
		Hub:         events.NewHub(),
		Harvester:   h,
		RunCtx:      context.Background(),
		CfgVal:      cfgVal,
		UserCfgPath: cfgPath,
		LoadCfg:     func() (config.Config, error) { return config.Load(cfgPath) },
	}))
	t.Cleanup(srv.Close)
	return &testEnv{srv: srv, db: db, h: h, cfg: cfgVal, cfgAt: cfgPath}
}

func (e *testEnv) do(t *testing.T, method, path string, body []byte) *http.Response {
	t.Helper()
	return e.doFrom(t, "", method, path, body)
}

// doFrom sends the request with an Origin header, as a browser page would.
func (e *testEnv) doFrom(t *testing.T, origin, method, path string, body []byte) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, e.srv.URL+path, bytes.NewReader(body))
	require.NoError(t, err)
	if origin != "" {
		req.Header.Set("Origin", origin)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func TestHealthAndRequestID(t *testing.T) {
	e := newEnv(t)
	resp := e.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))
	assert.Equal(t, true, decode[map[string]any](t, resp)["ok"])
}

func TestMethodNotAllowed(t *testing.T) {
	e := newEnv(t)
	resp := e.do(t, http.MethodDelete, "/runs", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
	assert.Equal(t, "method_not_allowed", decode[APIError](t, resp).Error.Code)
}

func TestRunsListAndDetail(t *testing.T) {
	e := newEnv(t)
	started := time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)
	require.NoError(t, e.db.SaveRun(context.Background(), domain.Run{
		ID: "run-1", Query: "Receptionist", Location: "United States",
		StartedAt: started, FinishedAt: started, StopReason: "quota",
		Listings: []domain.EnrichedListing{{
			ListingSummary: domain.ListingSummary{Title: "Front Desk", Company: "Acme"},
			EmploymentType: domain.FullTime,
			Pay:            domain.PayRange{Unit: domain.PayHour},
		}},
	}))

	runs := decode[[]store.RunSummary](t, e.do(t, http.MethodGet, "/runs?limit=5", nil))
	require.Len(t, runs, 1)
	assert.Equal(t, "run-1", runs[0].ID)
	assert.Equal(t, 1, runs[0].Listings)

	d := decode[runDetail](t, e.do(t, http.MethodGet, "/runs/run-1", nil))
	assert.Equal(t, "quota", d.Run.StopReason)
	require.Len(t, d.Listings, 1)
	assert.Equal(t, "Front Desk", d.Listings[0].Title)

	assert.Equal(t, http.StatusNotFound, e.do(t, http.MethodGet, "/runs/missing", nil).StatusCode)
}

func TestConfigGetPut(t *testing.T) {
	e := newEnv(t)

	cur := decode[config.Config](t, e.do(t, http.MethodGet, "/config", nil))
	assert.Equal(t, "Receptionist", cur.Search.Query)

	cur.Search.Query = "Dental Receptionist"
	cur.Pacing.ListingMax = config.Duration(8 * time.Second)
	body, err := json.Marshal(cur)
	require.NoError(t, err)

	resp := e.do(t, http.MethodPut, "/config", body)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	saved := decode[config.Config](t, resp)
	assert.Equal(t, "Dental Receptionist", saved.Search.Query)
	assert.Equal(t, "Dental Receptionist", e.cfg.Load().(config.Config).Search.Query)

	onDisk, err := config.Load(e.cfgAt)
	require.NoError(t, err)
	assert.Equal(t, 8*time.Second, onDisk.Pacing.ListingMax.Std())
}

func TestConfigPutInvalid(t *testing.T) {
	e := newEnv(t)
	bad := config.Default()
	bad.Limits.MaxListings = 0
	body, _ := json.Marshal(bad)

	resp := e.do(t, http.MethodPut, "/config", body)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	v := decode[config.Validation](t, resp)
	assert.Contains(t, v.Errors, "limits.max_listings must be > 0")

	resp = e.do(t, http.MethodPut, "/config", []byte(`{"nope": 1}`))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestScrapeRunAndStatus(t *testing.T) {
	e := newEnv(t)

	resp := e.do(t, http.MethodPost, "/scrape/run", nil)
	assert.Equal(t, http.StatusAccepted, resp.StatusCode)
	select {
	case <-e.h.ran:
	case <-time.After(2 * time.Second):
		t.Fatal("run was not started")
	}

	st := decode[runner.Status](t, e.do(t, http.MethodGet, "/scrape/status", nil))
	assert.Equal(t, 7, st.LastListings)
}

func TestScrapeRunWhileBusy(t *testing.T) {
	e := newEnv(t)
	e.h.busy = true

	resp := e.do(t, http.MethodPost, "/scrape/run", nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Empty(t, e.h.calls)
}

func TestCleanupFromLoopback(t *testing.T) {
	e := newEnv(t)
	resp := e.do(t, http.MethodPost, "/db/cleanup?older_than=24h", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = e.do(t, http.MethodPost, "/db/cleanup?older_than=soon", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestForeignOriginRefused(t *testing.T) {
	e := newEnv(t)
	const evil = "https://evil.example"

	resp := e.doFrom(t, evil, http.MethodOptions, "/config", nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Empty(t, resp.Header.Get("Access-Control-Allow-Origin"))

	hijack := config.Default()
	hijack.Output.Dir = "/tmp/attacker-chosen"
	hijack.Search.BaseURL = "http://169.254.169.254"
	body, err := json.Marshal(hijack)
	require.NoError(t, err)

	resp = e.doFrom(t, evil, http.MethodPut, "/config", body)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "origin_not_allowed", decode[APIError](t, resp).Error.Code)

	cur := e.cfg.Load().(config.Config)
	assert.Equal(t, ".", cur.Output.Dir)
	assert.Equal(t, "https://www.indeed.com", cur.Search.BaseURL)
	assert.NoFileExists(t, e.cfgAt)

	resp = e.doFrom(t, evil, http.MethodPost, "/scrape/run", nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	e.h.mu.Lock()
	assert.Empty(t, e.h.calls)
	e.h.mu.Unlock()
}

func TestAllowedOriginGetsCorsHeaders(t *testing.T) {
	e := newEnv(t)
	const dash = "http://localhost:5173"
	cfg := config.Default()
	cfg.Serve.AllowedOrigins = []string{dash}
	e.cfg.Store(cfg)

	resp := e.doFrom(t, dash, http.MethodOptions, "/config", nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, dash, resp.Header.Get("Access-Control-Allow-Origin"))

	resp = e.doFrom(t, dash, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, dash, resp.Header.Get("Access-Control-Allow-Origin"))

	resp = e.doFrom(t, "http://localhost:5174", http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestLoopbackSameOriginPasses(t *testing.T) {
	e := newEnv(t)
	// httptest listens on 127.0.0.1, so the page's origin is the server URL.
	resp := e.doFrom(t, e.srv.URL, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestErrorBodyCarriesCodeAndRequestID(t *testing.T) {
	e := newEnv(t)
	req, err := http.NewRequest(http.MethodGet, e.srv.URL+"/runs/nope", nil)
	require.NoError(t, err)
	req.Header.Set("X-Request-ID", "req-42")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	body := decode[APIError](t, resp)
	assert.Equal(t, CodeNotFound, body.Error.Code)
	assert.Equal(t, "req-42", body.Error.RequestID)
	assert.Equal(t, "no run nope", body.Error.Message)
}
