package usecase

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/riskibarqy/wato-stats/internal/domain/crawlrun"
	"github.com/riskibarqy/wato-stats/internal/platform/id"
	"github.com/riskibarqy/wato-stats/internal/platform/logging"
	"github.com/sourcegraph/conc"
	"github.com/sourcegraph/conc/panics"
	"go.opentelemetry.io/otel/trace"
)

type crawlRunner interface {
	Run(ctx context.Context, input CrawlInput) (crawlrun.Run, error)
}

// CrawlTrigger starts crawl runs in the background, one at a time.
type CrawlTrigger struct {
	runner crawlRunner
	logger *logging.Logger

	running atomic.Bool
	workers conc.WaitGroup
	baseCtx context.Context
	cancel  context.CancelFunc
}

func NewCrawlTrigger(runner crawlRunner, logger *logging.Logger) *CrawlTrigger {
	if logger == nil {
		logger = logging.Default()
	}
	baseCtx, cancel := context.WithCancel(context.Background())
	return &CrawlTrigger{
		runner:  runner,
		logger:  logger,
		baseCtx: baseCtx,
		cancel:  cancel,
	}
}

// Start launches a run and returns its id without waiting for it. While a
// run is active it returns ErrConflict.
func (t *CrawlTrigger) Start(ctx context.Context, input CrawlInput) (string, error) {
	_, span := startUsecaseSpan(ctx, "usecase.CrawlTrigger.Start")
	defer span.End()

	if t.baseCtx.Err() != nil {
		return "", fmt.Errorf("%w: crawl trigger is shutting down", ErrDependencyUnavailable)
	}
	if !t.running.CompareAndSwap(false, true) {
		return "", fmt.Errorf("%w: a crawl run is already in progress", ErrConflict)
	}

	input.RunID = id.New()
	if input.Trigger == "" {
		input.Trigger = crawlrun.TriggerAPI
	}

	// The run outlives the request but stays in its trace.
	runCtx := trace.ContextWithSpanContext(t.baseCtx, trace.SpanContextFromContext(ctx))
	t.workers.Go(func() {
		defer t.running.Store(false)

		var catcher panics.Catcher
		catcher.Try(func() {
			if _, err := t.runner.Run(runCtx, input); err != nil {
				if IsCrawlCanceled(err) {
					t.logger.Warn("background crawl run canceled", "run_id", input.RunID, "error", err)
					return
				}
				t.logger.Error("background crawl run failed", "run_id", input.RunID, "error", err)
			}
		})
		if recovered := catcher.Recovered(); recovered != nil {
			t.logger.Error("background crawl run panicked", "run_id", input.RunID, "error", recovered.AsError())
		}
	})

	return input.RunID, nil
}

func (t *CrawlTrigger) Running() bool {
	return t.running.Load()
}

// Shutdown cancels the active run and waits for it or for ctx to end.
func (t *CrawlTrigger) Shutdown(ctx context.Context) error {
	t.cancel()

	done := make(chan struct{})
	go func() {
		t.workers.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Wait blocks until the active run, if any, returns.
func (t *CrawlTrigger) Wait() {
	t.workers.Wait()
}
