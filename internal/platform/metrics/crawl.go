package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/riskibarqy/wato-stats/internal/domain/crawlrun"
)

const namespace = "wato"

// CrawlMetrics exports crawl counters. It satisfies usecase.CrawlRecorder.
type CrawlMetrics struct {
	registry *prometheus.Registry

	listPages       *prometheus.CounterVec
	posts           *prometheus.CounterVec
	recordsInserted *prometheus.CounterVec
	runs            *prometheus.CounterVec
	runDuration     prometheus.Histogram
	lastRunSuccess  prometheus.Gauge
}

// NewCrawlMetrics registers the crawl collectors plus the Go and process
// collectors on a private registry.
func NewCrawlMetrics() *CrawlMetrics {
	m := &CrawlMetrics{
		registry: prometheus.NewRegistry(),
		listPages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "crawl_list_pages_total",
			Help:      "List pages requested, by board and result.",
		}, []string{"board", "result"}),
		posts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "crawl_posts_total",
			Help:      "Posts processed, by board and outcome.",
		}, []string{"board", "outcome"}),
		recordsInserted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "crawl_records_inserted_total",
			Help:      "Wager rows inserted, by board.",
		}, []string{"board"}),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "crawl_runs_total",
			Help:      "Finished crawl runs, by trigger and status.",
		}, []string{"trigger", "status"}),
		runDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "crawl_run_duration_seconds",
			Help:      "Wall time of finished crawl runs.",
			Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600, 1200},
		}),
		lastRunSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "crawl_last_run_success",
			Help:      "1 if the last finished crawl run completed, 0 if it failed.",
		}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.listPages,
		m.posts,
		m.recordsInserted,
		m.runs,
		m.runDuration,
		m.lastRunSuccess,
	)
	return m
}

func (m *CrawlMetrics) ListPageFetched(board string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.listPages.WithLabelValues(board, result).Inc()
}

func (m *CrawlMetrics) PostProcessed(board string, outcome string) {
	m.posts.WithLabelValues(board, outcome).Inc()
}

func (m *CrawlMetrics) RecordsInserted(board string, n int) {
	if n <= 0 {
		return
	}
	m.recordsInserted.WithLabelValues(board).Add(float64(n))
}

func (m *CrawlMetrics) RunFinished(run crawlrun.Run) {
	m.runs.WithLabelValues(string(run.Trigger), string(run.Status)).Inc()
	if run.FinishedAt != nil {
		m.runDuration.Observe(run.FinishedAt.Sub(run.StartedAt).Seconds())
	}
	if run.Status == crawlrun.StatusCompleted {
		m.lastRunSuccess.Set(1)
		return
	}
	m.lastRunSuccess.Set(0)
}

// Handler serves the registry in the Prometheus exposition format.
func (m *CrawlMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
