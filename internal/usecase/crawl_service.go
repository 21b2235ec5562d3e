package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/riskibarqy/wato-stats/internal/domain/crawlrun"
	"github.com/riskibarqy/wato-stats/internal/domain/wager"
	"github.com/riskibarqy/wato-stats/internal/platform/id"
	"github.com/riskibarqy/wato-stats/internal/platform/logging"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/time/rate"
)

const (
	DefaultCrawlPages = 8
	maxCrawlPages     = 100
	maxCrawlWorkers   = 16
)

// PostSource reads the forum.
type PostSource interface {
	ListClosedPostIDs(ctx context.Context, slug string, page int) ([]int64, error)
	FetchPost(ctx context.Context, slug string, postID int64) (wager.ParsedPost, error)
}

// CrawlRecorder receives crawl counters. Implementations must be safe for
// concurrent use.
type CrawlRecorder interface {
	ListPageFetched(board string, err error)
	PostProcessed(board string, outcome string)
	RecordsInserted(board string, n int)
	RunFinished(run crawlrun.Run)
}

type noopCrawlRecorder struct{}

func (noopCrawlRecorder) ListPageFetched(string, error) {}
func (noopCrawlRecorder) PostProcessed(string, string)  {}
func (noopCrawlRecorder) RecordsInserted(string, int)   {}
func (noopCrawlRecorder) RunFinished(crawlrun.Run)      {}

const (
	postOutcomeFetchFailed = "fetch_failed"
	postOutcomeDuplicate   = "duplicate"
	postOutcomeIngested    = "ingested"
)

type CrawlConfig struct {
	Boards    []string
	Pages     int
	Workers   int
	PostDelay time.Duration
	PageDelay time.Duration
}

type CrawlInput struct {
	RunID   string
	Boards  []string
	Pages   int
	Trigger crawlrun.Trigger
}

// CrawlService walks board list pages, fetches the closed posts on each page
// and ingests every page as one batch.
type CrawlService struct {
	cfg       CrawlConfig
	source    PostSource
	ingestion *IngestionService
	runs      crawlrun.Repository
	recorder  CrawlRecorder
	logger    *logging.Logger
	now       func() time.Time
}

func NewCrawlService(
	cfg CrawlConfig,
	source PostSource,
	ingestion *IngestionService,
	runs crawlrun.Repository,
	recorder CrawlRecorder,
	logger *logging.Logger,
) *CrawlService {
	if logger == nil {
		logger = logging.Default()
	}
	if recorder == nil {
		recorder = noopCrawlRecorder{}
	}
	if cfg.Pages <= 0 {
		cfg.Pages = DefaultCrawlPages
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.Workers > maxCrawlWorkers {
		cfg.Workers = maxCrawlWorkers
	}

	return &CrawlService{
		cfg:       cfg,
		source:    source,
		ingestion: ingestion,
		runs:      runs,
		recorder:  recorder,
		logger:    logger,
		now:       time.Now,
	}
}

// Run executes one crawl synchronously. A list page failure stops that board
// only; a failed post is skipped. Ingestion errors and cancellation fail the
// whole run.
func (s *CrawlService) Run(ctx context.Context, input CrawlInput) (crawlrun.Run, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.CrawlService.Run",
		attribute.String("crawl.trigger", string(input.Trigger)),
		attribute.StringSlice("crawl.boards", input.Boards),
	)
	defer span.End()

	boards, pages, err := s.resolveInput(input)
	if err != nil {
		return crawlrun.Run{}, err
	}

	run := crawlrun.Run{
		ID:        strings.TrimSpace(input.RunID),
		Trigger:   input.Trigger,
		Status:    crawlrun.StatusRunning,
		Boards:    boards,
		Pages:     pages,
		StartedAt: s.now().UTC(),
	}
	if run.ID == "" {
		run.ID = id.New()
	}
	if run.Trigger == "" {
		run.Trigger = crawlrun.TriggerCLI
	}
	if err := s.runs.Upsert(ctx, run); err != nil {
		return crawlrun.Run{}, fmt.Errorf("record crawl run start: %w", err)
	}

	logger := s.logger.With("run_id", run.ID, "trigger", string(run.Trigger))
	logger.InfoContext(ctx, "crawl run started", "boards", boards, "pages", pages)

	pageLimiter := newDelayLimiter(s.cfg.PageDelay)
	postLimiter := newDelayLimiter(s.cfg.PostDelay)

	var runErr error
	for _, slug := range boards {
		if runErr = s.crawlBoard(ctx, logger, &run, slug, pages, pageLimiter, postLimiter); runErr != nil {
			break
		}
	}

	finishedAt := s.now().UTC()
	run.FinishedAt = &finishedAt
	run.Status = crawlrun.StatusCompleted
	if runErr != nil {
		run.Status = crawlrun.StatusFailed
		run.LastError = runErr.Error()
	}

	// the request context may already be done; the final state must still land.
	saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()
	if err := s.runs.Upsert(saveCtx, run); err != nil {
		logger.ErrorContext(ctx, "record crawl run finish failed", "error", err)
	}
	s.recorder.RunFinished(run)

	logger.InfoContext(ctx, "crawl run finished",
		"status", string(run.Status),
		"pages_fetched", run.PagesFetched,
		"posts_seen", run.PostsSeen,
		"posts_ingested", run.PostsIngested,
		"posts_duplicate", run.PostsDuplicate,
		"posts_skipped", run.PostsSkipped,
		"records_inserted", run.RecordsInserted,
		"duration_ms", finishedAt.Sub(run.StartedAt).Milliseconds(),
	)
	span.SetAttributes(
		attribute.String("crawl.run_id", run.ID),
		attribute.Int("crawl.records_inserted", run.RecordsInserted),
	)
	if runErr != nil {
		markSpanError(span, runErr)
		return run, fmt.Errorf("crawl run %s: %w", run.ID, runErr)
	}
	return run, nil
}

func (s *CrawlService) GetRun(ctx context.Context, runID string) (crawlrun.Run, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.CrawlService.GetRun", attribute.String("crawl.run_id", runID))
	defer span.End()

	runID = strings.TrimSpace(runID)
	if err := id.Validate(runID); err != nil {
		return crawlrun.Run{}, fmt.Errorf("%w: run id must be a uuid", ErrInvalidInput)
	}

	run, ok, err := s.runs.GetByID(ctx, runID)
	if err != nil {
		return crawlrun.Run{}, fmt.Errorf("get crawl run: %w", err)
	}
	if !ok {
		return crawlrun.Run{}, fmt.Errorf("%w: crawl run=%s", ErrNotFound, runID)
	}
	return run, nil
}

func (s *CrawlService) crawlBoard(
	ctx context.Context,
	logger *logging.Logger,
	run *crawlrun.Run,
	slug string,
	pages int,
	pageLimiter *rate.Limiter,
	postLimiter *rate.Limiter,
) error {
	for page := 1; page <= pages; page++ {
		if err := pageLimiter.Wait(ctx); err != nil {
			return err
		}

		ids, err := s.source.ListClosedPostIDs(ctx, slug, page)
		s.recorder.ListPageFetched(slug, err)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			logger.WarnContext(ctx, "list page failed, skipping remaining pages of board", "board", slug, "page", page, "error", err)
			run.LastError = err.Error()
			return nil
		}
		run.PagesFetched++
		run.PostsSeen += len(ids)

		posts, skipped, err := s.collectPosts(ctx, logger, slug, ids, postLimiter)
		if err != nil {
			return err
		}
		run.PostsSkipped += skipped

		if len(posts) > 0 {
			result, err := s.ingestion.Ingest(ctx, wager.Batch{Posts: posts})
			if err != nil {
				return fmt.Errorf("board=%s page=%d: %w", slug, page, err)
			}
			run.PostsIngested += result.PostsIngested
			run.PostsDuplicate += result.PostsDuplicate
			run.RecordsInserted += result.RecordsInserted
			for i := 0; i < result.PostsIngested; i++ {
				s.recorder.PostProcessed(slug, postOutcomeIngested)
			}
			for i := 0; i < result.PostsDuplicate; i++ {
				s.recorder.PostProcessed(slug, postOutcomeDuplicate)
			}
			s.recorder.RecordsInserted(slug, result.RecordsInserted)
		}

		if err := s.runs.Upsert(ctx, *run); err != nil {
			logger.WarnContext(ctx, "record crawl run progress failed", "error", err)
		}
		logger.DebugContext(ctx, "page crawled", "board", slug, "page", page, "posts", len(ids), "ingestible", len(posts), "skipped", skipped)
	}
	return nil
}

// collectPosts fetches the page's posts on a bounded pool and returns the
// ingestible ones in list order.
func (s *CrawlService) collectPosts(
	ctx context.Context,
	logger *logging.Logger,
	slug string,
	ids []int64,
	limiter *rate.Limiter,
) ([]wager.Post, int, error) {
	if len(ids) == 0 {
		return nil, 0, nil
	}

	pool, err := ants.NewPool(min(s.cfg.Workers, len(ids)))
	if err != nil {
		return nil, 0, fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	outcomes := make([]wager.Outcome, len(ids))
	var skipped atomic.Int32
	var workers sync.WaitGroup
	for i, postID := range ids {
		workers.Add(1)
		if err := pool.Submit(func() {
			defer workers.Done()

			if err := limiter.Wait(ctx); err != nil {
				skipped.Add(1)
				return
			}
			parsed, err := s.source.FetchPost(ctx, slug, postID)
			if err != nil {
				logger.WarnContext(ctx, "post fetch failed, skipping", "board", slug, "post_id", postID, "error", err)
				s.recorder.PostProcessed(slug, postOutcomeFetchFailed)
				skipped.Add(1)
				return
			}

			outcome := wager.Decide(parsed)
			outcomes[i] = outcome
			if !outcome.Ingestible() {
				logger.DebugContext(ctx, "post skipped", "board", slug, "post_id", postID, "outcome", string(outcome.Kind), "reason", outcome.Reason)
				s.recorder.PostProcessed(slug, string(outcome.Kind))
				skipped.Add(1)
			}
		}); err != nil {
			workers.Done()
			return nil, 0, fmt.Errorf("submit post fetch: %w", err)
		}
	}
	workers.Wait()

	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}

	posts := make([]wager.Post, 0, len(ids))
	for _, outcome := range outcomes {
		if outcome.Ingestible() {
			posts = append(posts, outcome.Post)
		}
	}
	return posts, int(skipped.Load()), nil
}

func (s *CrawlService) resolveInput(input CrawlInput) ([]string, int, error) {
	boards := normalizeSlugs(input.Boards)
	if len(boards) == 0 {
		boards = normalizeSlugs(s.cfg.Boards)
	}
	if len(boards) == 0 {
		return nil, 0, fmt.Errorf("%w: at least one board slug is required", ErrInvalidInput)
	}

	pages := input.Pages
	if pages == 0 {
		pages = s.cfg.Pages
	}
	if pages < 0 || pages > maxCrawlPages {
		return nil, 0, fmt.Errorf("%w: pages must be between 1 and %d", ErrInvalidInput, maxCrawlPages)
	}
	return boards, pages, nil
}

func normalizeSlugs(values []string) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, value := range values {
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}
		if _, ok := seen[value]; ok {
			continue
		}
		seen[value] = struct{}{}
		out = append(out, value)
	}
	return out
}

func newDelayLimiter(delay time.Duration) *rate.Limiter {
	if delay <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(delay), 1)
}

// IsCrawlCanceled reports whether a run stopped because its context ended.
func IsCrawlCanceled(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
