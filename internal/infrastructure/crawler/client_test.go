package crawler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/riskibarqy/wato-stats/internal/platform/logging"
	"github.com/riskibarqy/wato-stats/internal/platform/resilience"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient_ValidatesBaseURL(t *testing.T) {
	t.Parallel()

	fetcher := newTestFetcher(0, resilience.CircuitBreakerConfig{})
	for _, raw := range []string{"ftp://ygosu.com", "https://", "://bad"} {
		if _, err := NewClient(ClientConfig{BaseURL: raw, Fetcher: fetcher}); err == nil {
			t.Fatalf("expected error for base url %q", raw)
		}
	}

	_, err := NewClient(ClientConfig{BaseURL: DefaultBaseURL})
	require.Error(t, err)
}

func TestClient_URLs(t *testing.T) {
	t.Parallel()

	client, err := NewClient(ClientConfig{
		BaseURL: "https://ygosu.com/",
		Fetcher: newTestFetcher(0, resilience.CircuitBreakerConfig{}),
	})
	require.NoError(t, err)

	assert.Equal(t, "https://ygosu.com/board/pan_setkacup/?s_wato=Y&page=2", client.ListURL("pan_setkacup", 2))
	assert.Equal(t, "https://ygosu.com/board/pan_setkacup/1002", client.PostURL("pan_setkacup", 1002))
}

func TestClient_ListAndFetchPost(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /board/pan_setkacup/{$}", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("s_wato") != "Y" || r.URL.Query().Get("page") != "1" {
			t.Errorf("unexpected list query %q", r.URL.RawQuery)
		}
		_, _ = w.Write([]byte(listPageHTML))
	})
	mux.HandleFunc("GET /board/pan_setkacup/1002", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(closedPostHTML))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	client, err := NewClient(ClientConfig{
		BaseURL:  srv.URL,
		Location: seoul,
		Fetcher:  newTestFetcher(0, resilience.CircuitBreakerConfig{}),
		Logger:   logging.NewNop(),
	})
	require.NoError(t, err)

	ids, err := client.ListClosedPostIDs(context.Background(), "pan_setkacup", 1)
	require.NoError(t, err)
	require.Equal(t, []int64{1002}, ids)

	parsed, err := client.FetchPost(context.Background(), "pan_setkacup", ids[0])
	require.NoError(t, err)
	assert.Equal(t, "pan_setkacup", parsed.BoardSlug)
	assert.Equal(t, int64(1002), parsed.PostID)
	require.NotNil(t, parsed.Deadline)
	assert.True(t, parsed.Deadline.Equal(time.Date(2025, 3, 10, 12, 30, 0, 0, time.UTC)))
	assert.Len(t, parsed.Rows, 3)
}

func TestClient_ListClosedPostIDs_InvalidInput(t *testing.T) {
	t.Parallel()

	client, err := NewClient(ClientConfig{Fetcher: newTestFetcher(0, resilience.CircuitBreakerConfig{})})
	require.NoError(t, err)

	_, err = client.ListClosedPostIDs(context.Background(), " ", 1)
	assert.Error(t, err)
	_, err = client.ListClosedPostIDs(context.Background(), "pan_setkacup", 0)
	assert.Error(t, err)
}
