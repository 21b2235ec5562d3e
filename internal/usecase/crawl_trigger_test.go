package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/riskibarqy/wato-stats/internal/domain/crawlrun"
	"github.com/riskibarqy/wato-stats/internal/platform/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type blockingRunner struct {
	started chan CrawlInput
	release chan struct{}
	err     error
	panic   bool

	mu    sync.Mutex
	calls int
}

func newBlockingRunner() *blockingRunner {
	return &blockingRunner{
		started: make(chan CrawlInput, 4),
		release: make(chan struct{}),
	}
}

func (r *blockingRunner) Run(ctx context.Context, input CrawlInput) (crawlrun.Run, error) {
	r.mu.Lock()
	r.calls++
	r.mu.Unlock()

	r.started <- input
	if r.panic {
		panic("parser exploded")
	}
	select {
	case <-r.release:
	case <-ctx.Done():
		return crawlrun.Run{ID: input.RunID, Status: crawlrun.StatusFailed}, ctx.Err()
	}
	return crawlrun.Run{ID: input.RunID, Status: crawlrun.StatusCompleted}, r.err
}

func waitStarted(t *testing.T, runner *blockingRunner) CrawlInput {
	t.Helper()
	select {
	case input := <-runner.started:
		return input
	case <-time.After(2 * time.Second):
		t.Fatalf("runner was not started")
		return CrawlInput{}
	}
}

func TestCrawlTrigger_RejectsConcurrentRun(t *testing.T) {
	t.Parallel()

	runner := newBlockingRunner()
	trigger := NewCrawlTrigger(runner, logging.NewNop())

	runID, err := trigger.Start(context.Background(), CrawlInput{Boards: []string{"pan_setkacup"}})
	require.NoError(t, err)
	require.NoError(t, uuid.Validate(runID))

	input := waitStarted(t, runner)
	assert.Equal(t, runID, input.RunID)
	assert.Equal(t, crawlrun.TriggerAPI, input.Trigger)
	assert.True(t, trigger.Running())

	_, err = trigger.Start(context.Background(), CrawlInput{})
	assert.ErrorIs(t, err, ErrConflict)

	close(runner.release)
	trigger.Wait()
	assert.False(t, trigger.Running())

	runner.release = make(chan struct{})
	close(runner.release)
	_, err = trigger.Start(context.Background(), CrawlInput{})
	require.NoError(t, err)
	waitStarted(t, runner)
	trigger.Wait()
	assert.Equal(t, 2, runner.calls)
}

func TestCrawlTrigger_FailedRunReleasesSlot(t *testing.T) {
	t.Parallel()

	runner := newBlockingRunner()
	runner.err = errors.New("ingest failed")
	close(runner.release)
	trigger := NewCrawlTrigger(runner, logging.NewNop())

	_, err := trigger.Start(context.Background(), CrawlInput{})
	require.NoError(t, err)
	waitStarted(t, runner)
	trigger.Wait()
	assert.False(t, trigger.Running())
}

func TestCrawlTrigger_RecoversPanic(t *testing.T) {
	t.Parallel()

	runner := newBlockingRunner()
	runner.panic = true
	trigger := NewCrawlTrigger(runner, logging.NewNop())

	_, err := trigger.Start(context.Background(), CrawlInput{})
	require.NoError(t, err)
	waitStarted(t, runner)

	assert.NotPanics(t, trigger.Wait)
	assert.False(t, trigger.Running())
}

func TestCrawlTrigger_ShutdownCancelsActiveRun(t *testing.T) {
	t.Parallel()

	runner := newBlockingRunner()
	trigger := NewCrawlTrigger(runner, logging.NewNop())

	_, err := trigger.Start(context.Background(), CrawlInput{})
	require.NoError(t, err)
	waitStarted(t, runner)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, trigger.Shutdown(ctx))
	assert.False(t, trigger.Running())

	_, err = trigger.Start(context.Background(), CrawlInput{})
	assert.ErrorIs(t, err, ErrDependencyUnavailable)
}
