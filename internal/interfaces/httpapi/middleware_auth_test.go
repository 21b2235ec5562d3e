package httpapi

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestRequireSharedSecret(t *testing.T) {
	tests := []struct {
		name       string
		secret     string
		header     string
		wantStatus int
	}{
		{name: "valid key", secret: "s3cret", header: "s3cret", wantStatus: http.StatusOK},
		{name: "missing key", secret: "s3cret", header: "", wantStatus: http.StatusUnauthorized},
		{name: "wrong key", secret: "s3cret", header: "nope", wantStatus: http.StatusUnauthorized},
		{name: "secret not configured", secret: " ", header: "anything", wantStatus: http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				called = true
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodPost, "/v1/internal/crawl", nil)
			if tt.header != "" {
				req.Header.Set(apiKeyHeader, tt.header)
			}
			rec := httptest.NewRecorder()
			RequireSharedSecret(tt.secret, next).ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("expected status %d, got %d", tt.wantStatus, rec.Code)
			}
			if called != (tt.wantStatus == http.StatusOK) {
				t.Fatalf("unexpected next handler call state: %v", called)
			}
		})
	}
}
