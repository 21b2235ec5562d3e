package crawler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/riskibarqy/wato-stats/internal/platform/logging"
	"github.com/riskibarqy/wato-stats/internal/platform/resilience"
	"github.com/riskibarqy/wato-stats/internal/usecase"
)

func newTestFetcher(maxRetries int, breaker resilience.CircuitBreakerConfig) *Fetcher {
	return NewFetcher(FetcherConfig{
		UserAgent:      "wato-test",
		Timeout:        2 * time.Second,
		MaxRetries:     maxRetries,
		RetryBackoff:   time.Millisecond,
		Logger:         logging.NewNop(),
		CircuitBreaker: breaker,
	})
}

func TestFetcher_RetriesTransientStatus(t *testing.T) {
	t.Parallel()

	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") != "wato-test" {
			t.Errorf("unexpected user agent %q", r.Header.Get("User-Agent"))
		}
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte("<html>ok</html>"))
	}))
	defer srv.Close()

	body, err := newTestFetcher(2, resilience.CircuitBreakerConfig{}).Fetch(context.Background(), srv.URL+"/board/x/1")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if string(body) != "<html>ok</html>" {
		t.Fatalf("unexpected body %q", body)
	}
	if got := atomic.LoadInt32(&calls); got != 3 {
		t.Fatalf("expected 3 attempts, got %d", got)
	}
}

func TestFetcher_NotFoundIsPermanent(t *testing.T) {
	t.Parallel()

	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := newTestFetcher(3, resilience.CircuitBreakerConfig{}).Fetch(context.Background(), srv.URL)
	if err == nil {
		t.Fatalf("expected error for 404")
	}
	if IsTransient(err) {
		t.Fatalf("404 must not be transient: %v", err)
	}
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Fatalf("expected a single attempt, got %d", got)
	}
}

func TestFetcher_CircuitBreakerOpensOnTransientFailures(t *testing.T) {
	t.Parallel()

	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	fetcher := newTestFetcher(0, resilience.CircuitBreakerConfig{
		Enabled:          true,
		FailureThreshold: 1,
		OpenTimeout:      time.Minute,
		HalfOpenMaxReq:   1,
	})

	_, err := fetcher.Fetch(context.Background(), srv.URL)
	if !IsTransient(err) {
		t.Fatalf("expected transient error, got %v", err)
	}

	_, err = fetcher.Fetch(context.Background(), srv.URL)
	if !errors.Is(err, usecase.ErrDependencyUnavailable) {
		t.Fatalf("expected dependency unavailable, got %v", err)
	}
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Fatalf("open breaker must not reach the server, calls=%d", got)
	}
}

func TestFetcher_CanceledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestFetcher(0, resilience.CircuitBreakerConfig{}).Fetch(ctx, "http://127.0.0.1:1/")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context canceled, got %v", err)
	}
}
