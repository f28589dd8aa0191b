package bootstrap

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Domenick1991/flightdesk/internal/directory"
	"github.com/Domenick1991/flightdesk/internal/domain"
	"github.com/Domenick1991/flightdesk/internal/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

type countingCatalog struct {
	mu    sync.Mutex
	loads int
}

func (c *countingCatalog) Load(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.loads++
	return errors.New("remote down")
}

func (c *countingCatalog) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loads
}

type failingFetcher struct {
	mu  sync.Mutex
	err error
}

func (f *failingFetcher) List(ctx context.Context) ([]domain.Flight, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return []domain.Flight{{ID: "a1"}}, nil
}

func status(t *testing.T, h *DirectoryHealth) healthpb.HealthCheckResponse_ServingStatus {
	t.Helper()
	resp, err := h.server.Check(context.Background(), &healthpb.HealthCheckRequest{Service: DirectoryService})
	require.NoError(t, err)
	return resp.Status
}

func TestDirectoryHealth_StartsNotServing(t *testing.T) {
	h := NewDirectoryHealth()
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, status(t, h))
}

func TestDirectoryHealth_FollowsEveryLoad(t *testing.T) {
	h := NewDirectoryHealth()
	fetcher := &failingFetcher{}
	dir := directory.New(fetcher, directory.WithObserver(h))
	ctx := context.Background()

	require.NoError(t, dir.Load(ctx))
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, status(t, h))

	// A single failed reload, such as the one after an admin write, flips
	// the status right away.
	fetcher.mu.Lock()
	fetcher.err = errors.New("connection refused")
	fetcher.mu.Unlock()
	require.Error(t, dir.Load(ctx))
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, status(t, h))

	fetcher.mu.Lock()
	fetcher.err = nil
	fetcher.mu.Unlock()
	require.NoError(t, dir.Load(ctx))
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, status(t, h))
}

func TestRefreshCatalog_ReloadsUntilCanceled(t *testing.T) {
	catalog := &countingCatalog{}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		RefreshCatalog(ctx, catalog, 5*time.Millisecond)
		close(done)
	}()

	assert.Eventually(t, func() bool { return catalog.count() >= 2 }, time.Second, time.Millisecond)
	cancel()
	<-done
}

func TestNewHandler_Routes(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "flightdesk.swagger.json"), []byte(`{"swagger":"2.0"}`), 0o644))

	reg := metrics.NewMetricsRegistry()
	reg.CacheHit("flights")

	app := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	gateway := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{}`))
	})
	h := NewHandler(dir, app, gateway, reg)

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest("GET", "/api/v1/flights", nil))
	assert.Equal(t, http.StatusTeapot, w.Code)

	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest("GET", "/healthz", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest("GET", "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), "flightdesk_cache_hits_total"), w.Body.String())

	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest("GET", "/swagger/flightdesk.swagger.json", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"swagger":"2.0"}`, w.Body.String())
}

func TestNewHandler_NoSwaggerDir(t *testing.T) {
	app := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	h := NewHandler("", app, http.NotFoundHandler(), nil)

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest("GET", "/swagger/flightdesk.swagger.json", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDialTarget(t *testing.T) {
	assert.Equal(t, "localhost:9090", dialTarget(":9090"))
	assert.Equal(t, "grpc:9090", dialTarget("grpc:9090"))
	assert.Equal(t, "bogus", dialTarget("bogus"))
}
