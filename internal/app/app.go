package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/riskibarqy/wato-stats/internal/config"
	"github.com/riskibarqy/wato-stats/internal/domain/bettingstats"
	"github.com/riskibarqy/wato-stats/internal/domain/crawlrun"
	"github.com/riskibarqy/wato-stats/internal/domain/identity"
	"github.com/riskibarqy/wato-stats/internal/domain/wager"
	"github.com/riskibarqy/wato-stats/internal/infrastructure/crawler"
	cacherepo "github.com/riskibarqy/wato-stats/internal/infrastructure/repository/cache"
	"github.com/riskibarqy/wato-stats/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/wato-stats/internal/infrastructure/repository/postgres"
	"github.com/riskibarqy/wato-stats/internal/interfaces/httpapi"
	basecache "github.com/riskibarqy/wato-stats/internal/platform/cache"
	"github.com/riskibarqy/wato-stats/internal/platform/logging"
	"github.com/riskibarqy/wato-stats/internal/platform/metrics"
	"github.com/riskibarqy/wato-stats/internal/platform/resilience"
	"github.com/riskibarqy/wato-stats/internal/usecase"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"
	"go.opentelemetry.io/otel/attribute"
)

const dbPingTimeout = 5 * time.Second

// App holds the wired services shared by the api and crawler binaries.
type App struct {
	Stats   *usecase.StatsService
	Crawl   *usecase.CrawlService
	Trigger *usecase.CrawlTrigger
	Metrics *metrics.CrawlMetrics

	db     *sqlx.DB
	logger *logging.Logger
}

type stores struct {
	wagers     wager.Store
	identities identity.Repository
	stats      bettingstats.QueryRepository
	runs       crawlrun.Repository
}

// New wires storage, crawler and use cases. Without a database URL every
// store is kept in memory for the life of the process.
func New(ctx context.Context, cfg config.Config, logger *logging.Logger) (*App, error) {
	if logger == nil {
		logger = logging.Default()
	}

	a := &App{logger: logger}
	st, err := a.openStores(ctx, cfg)
	if err != nil {
		return nil, err
	}

	identities := st.identities
	statsRepo := st.stats
	var invalidator usecase.StatsCacheInvalidator
	if cfg.CacheEnabled {
		// One store for both so a flush after ingestion also drops cached
		// identity misses.
		store := basecache.NewStore(cfg.CacheTTL)
		statsCache := cacherepo.NewStatsRepository(st.stats, store)
		identities = cacherepo.NewIdentityRepository(st.identities, store)
		statsRepo = statsCache
		invalidator = statsCache
	}

	clock := bettingstats.NewDayClock(cfg.SourceTimezone, cfg.DayBoundaryHour)
	aggregator := usecase.NewAggregationService(clock, logger.Named("aggregation"))
	ingestion := usecase.NewIngestionService(st.wagers, aggregator, invalidator, logger.Named("ingestion"))

	fetcher := crawler.NewFetcher(crawler.FetcherConfig{
		UserAgent:  cfg.CrawlUserAgent,
		Timeout:    cfg.CrawlTimeout,
		MaxRetries: cfg.CrawlMaxRetries,
		Logger:     logger.Named("fetcher"),
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          cfg.CrawlCircuitEnabled,
			FailureThreshold: cfg.CrawlCircuitFailureCount,
			OpenTimeout:      cfg.CrawlCircuitOpenTimeout,
			HalfOpenMaxReq:   cfg.CrawlCircuitHalfOpenMaxReq,
		},
	})
	client, err := crawler.NewClient(crawler.ClientConfig{
		BaseURL:  cfg.CrawlBaseURL,
		Location: cfg.SourceTimezone,
		Fetcher:  fetcher,
		Logger:   logger.Named("crawler"),
	})
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("build crawler client: %w", err)
	}

	var recorder usecase.CrawlRecorder
	if cfg.MetricsEnabled {
		a.Metrics = metrics.NewCrawlMetrics()
		recorder = a.Metrics
	}

	a.Stats = usecase.NewStatsService(identities, statsRepo, clock)
	a.Crawl = usecase.NewCrawlService(usecase.CrawlConfig{
		Boards:    cfg.Slugs,
		Pages:     cfg.CrawlPages,
		Workers:   cfg.CrawlWorkers,
		PostDelay: cfg.CrawlPostDelay,
		PageDelay: cfg.CrawlPageDelay,
	}, client, ingestion, st.runs, recorder, logger.Named("crawl"))
	a.Trigger = usecase.NewCrawlTrigger(a.Crawl, logger.Named("crawl_trigger"))

	return a, nil
}

// NewHTTPServer builds the public HTTP server around the wired use cases.
func (a *App) NewHTTPServer(cfg config.Config) (*http.Server, error) {
	if cfg.HTTPAddr == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	var metricsHandler http.Handler
	if a.Metrics != nil {
		metricsHandler = a.Metrics.Handler()
	}

	handler := httpapi.NewHandler(a.Stats, a.Crawl, a.Trigger, a.logger.Named("httpapi"))
	router := httpapi.NewRouter(handler, a.logger, cfg.SwaggerEnabled, cfg.CORSAllowedOrigins, cfg.CrawlerSecretKey, metricsHandler)

	return &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
	}, nil
}

// Close releases the database handle, if any.
func (a *App) Close() {
	if a.db == nil {
		return
	}
	if err := a.db.Close(); err != nil {
		a.logger.Warn("close database failed", "error", err)
	}
	a.db = nil
}

func (a *App) openStores(ctx context.Context, cfg config.Config) (stores, error) {
	if cfg.DBURL == "" {
		a.logger.Warn("DB_URL not set, using in-memory store")
		store := memory.NewStore()
		return stores{
			wagers:     store,
			identities: store,
			stats:      store,
			runs:       memory.NewCrawlRunRepository(),
		}, nil
	}

	db, err := openDB(ctx, cfg)
	if err != nil {
		return stores{}, err
	}
	a.db = db
	a.logger.Info("database connected", "db_name", dbNameFromURL(cfg.DBURL))

	statsRepo := postgres.NewStatsRepository(db)
	return stores{
		wagers:     postgres.NewWagerStore(db),
		identities: statsRepo,
		stats:      statsRepo,
		runs:       postgres.NewCrawlRunRepository(db),
	}, nil
}

func openDB(ctx context.Context, cfg config.Config) (*sqlx.DB, error) {
	dsn := normalizeDBURL(cfg.DBURL, cfg.DBBinaryParameters)
	db, err := otelsqlx.Open("postgres", dsn,
		otelsql.WithAttributes(attribute.String("db.system", "postgresql")),
		otelsql.WithDBName(dbNameFromURL(dsn)),
		otelsql.WithQueryFormatter(formatDBQueryForTrace),
	)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxIdleTime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, dbPingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return db, nil
}
