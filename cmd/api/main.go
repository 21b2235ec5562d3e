package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	_ "time/tzdata"

	"github.com/riskibarqy/wato-stats/internal/app"
	"github.com/riskibarqy/wato-stats/internal/config"
	"github.com/riskibarqy/wato-stats/internal/observability"
	"github.com/riskibarqy/wato-stats/internal/platform/logging"
	"golang.org/x/sync/errgroup"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "wato-stats api: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := logging.NewJSON(cfg.LogLevel).With("service", cfg.ServiceName, "env", cfg.AppEnv)
	logging.SetDefault(logger)
	defer func() { _ = logger.Sync() }()

	shutdownTracing, err := observability.InitUptrace(cfg, logger)
	if err != nil {
		return fmt.Errorf("init uptrace: %w", err)
	}
	stopProfiler, err := observability.InitPyroscope(cfg, logger)
	if err != nil {
		return fmt.Errorf("init pyroscope: %w", err)
	}
	defer func() {
		if err := stopProfiler(); err != nil {
			logger.Warn("stop pyroscope failed", "error", err)
		}
	}()
	pprofSrv, err := observability.StartPprofServer(cfg, logger)
	if err != nil {
		return fmt.Errorf("start pprof: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	application, err := app.New(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("build app: %w", err)
	}
	defer application.Close()

	srv, err := application.NewHTTPServer(cfg)
	if err != nil {
		return fmt.Errorf("build http server: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("http server starting", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		var errs []error
		if err := srv.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("http shutdown: %w", err))
		}
		if err := application.Trigger.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("crawl trigger shutdown: %w", err))
		}
		if err := observability.StopPprofServer(pprofSrv, logger, cfg.ShutdownTimeout); err != nil {
			errs = append(errs, fmt.Errorf("pprof shutdown: %w", err))
		}
		if err := shutdownTracing(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("uptrace shutdown: %w", err))
		}
		return errors.Join(errs...)
	})

	if err := g.Wait(); err != nil {
		logger.Error("api stopped with error", "error", err)
		return err
	}
	logger.Info("http server stopped")
	return nil
}
