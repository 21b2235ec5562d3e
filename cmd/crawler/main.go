package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	_ "time/tzdata"

	"github.com/riskibarqy/wato-stats/internal/app"
	"github.com/riskibarqy/wato-stats/internal/config"
	"github.com/riskibarqy/wato-stats/internal/domain/crawlrun"
	"github.com/riskibarqy/wato-stats/internal/observability"
	"github.com/riskibarqy/wato-stats/internal/platform/logging"
	"github.com/riskibarqy/wato-stats/internal/usecase"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "wato-stats crawler: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	pages := flag.Int("pages", 0, "list pages per board (0 uses CRAWL_PAGES)")
	boards := flag.String("boards", "", "comma separated board slugs (empty uses SLUGS)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := logging.NewJSON(cfg.LogLevel).With("service", cfg.ServiceName, "env", cfg.AppEnv, "component", "crawler")
	logging.SetDefault(logger)
	defer func() { _ = logger.Sync() }()

	shutdownTracing, err := observability.InitUptrace(cfg, logger)
	if err != nil {
		return fmt.Errorf("init uptrace: %w", err)
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			logger.Warn("uptrace shutdown failed", "error", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	application, err := app.New(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("build app: %w", err)
	}
	defer application.Close()

	result, err := application.Crawl.Run(ctx, usecase.CrawlInput{
		Boards:  splitBoards(*boards),
		Pages:   *pages,
		Trigger: crawlrun.TriggerCLI,
	})
	logger.Info("crawl finished",
		"run_id", result.ID,
		"status", result.Status,
		"pages_fetched", result.PagesFetched,
		"posts_seen", result.PostsSeen,
		"posts_ingested", result.PostsIngested,
		"posts_duplicate", result.PostsDuplicate,
		"posts_skipped", result.PostsSkipped,
		"records_inserted", result.RecordsInserted,
		"last_error", result.LastError,
	)
	if err != nil {
		return fmt.Errorf("crawl: %w", err)
	}
	return nil
}

func splitBoards(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if slug := strings.TrimSpace(part); slug != "" {
			out = append(out, slug)
		}
	}
	return out
}
