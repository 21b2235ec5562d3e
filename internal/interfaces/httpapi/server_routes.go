package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler, swaggerEnabled bool, metricsHandler http.Handler) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
	if metricsHandler != nil {
		mux.Handle("GET /metrics", metricsHandler)
	}
	if !swaggerEnabled {
		return
	}

	mux.HandleFunc("GET /openapi.yaml", handler.OpenAPI)
	mux.HandleFunc("GET /docs", handler.SwaggerUI)
	mux.HandleFunc("GET /docs/", handler.SwaggerUI)
}

func registerStatsRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/stats/daily", handler.GetDailyStats)
	mux.HandleFunc("GET /v1/stats/monthly", handler.GetMonthlyStats)
	mux.HandleFunc("GET /v1/rankings/daily", handler.GetDailyRanking)
	mux.HandleFunc("GET /v1/rankings/monthly", handler.GetMonthlyRanking)
}

func registerInternalCrawlRoutes(mux *http.ServeMux, handler *Handler, crawlerSecretKey string) {
	mux.Handle("POST /v1/internal/crawl", RequireSharedSecret(crawlerSecretKey, http.HandlerFunc(handler.TriggerCrawl)))
	mux.Handle("GET /v1/internal/crawl/runs/{runID}", RequireSharedSecret(crawlerSecretKey, http.HandlerFunc(handler.GetCrawlRun)))
}
