package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/riskibarqy/wato-stats/internal/config"
	"github.com/riskibarqy/wato-stats/internal/platform/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func memoryConfig(t *testing.T) config.Config {
	t.Helper()

	seoul, err := time.LoadLocation("Asia/Seoul")
	require.NoError(t, err)
	return config.Config{
		AppEnv:                   config.EnvDev,
		ServiceName:              "wato-stats",
		HTTPAddr:                 ":0",
		CacheEnabled:             true,
		CacheTTL:                 time.Minute,
		CORSAllowedOrigins:       []string{"*"},
		MetricsEnabled:           true,
		CrawlerSecretKey:         "secret",
		Slugs:                    []string{"pan_setkacup"},
		CrawlPages:               1,
		CrawlWorkers:             2,
		CrawlTimeout:             time.Second,
		CrawlCircuitFailureCount: 5,
		CrawlCircuitOpenTimeout:  time.Second,
		SourceTimezone:           seoul,
		DayBoundaryHour:          5,
	}
}

func TestNew_InMemoryWiring(t *testing.T) {
	t.Parallel()

	cfg := memoryConfig(t)
	a, err := New(context.Background(), cfg, logging.NewNop())
	require.NoError(t, err)
	t.Cleanup(a.Close)

	require.NotNil(t, a.Stats)
	require.NotNil(t, a.Crawl)
	require.NotNil(t, a.Trigger)
	require.NotNil(t, a.Metrics)

	srv, err := a.NewHTTPServer(cfg)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")

	rec = httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/stats/daily?nickname=nobody", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestNew_MetricsDisabled(t *testing.T) {
	t.Parallel()

	cfg := memoryConfig(t)
	cfg.MetricsEnabled = false
	a, err := New(context.Background(), cfg, logging.NewNop())
	require.NoError(t, err)
	assert.Nil(t, a.Metrics)

	srv, err := a.NewHTTPServer(cfg)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestNewHTTPServer_RequiresAddr(t *testing.T) {
	t.Parallel()

	cfg := memoryConfig(t)
	a, err := New(context.Background(), cfg, logging.NewNop())
	require.NoError(t, err)

	cfg.HTTPAddr = ""
	_, err = a.NewHTTPServer(cfg)
	assert.Error(t, err)
}
