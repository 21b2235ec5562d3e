package usecase

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/riskibarqy/wato-stats/internal/domain/wager"
	"github.com/riskibarqy/wato-stats/internal/platform/logging"
	"go.opentelemetry.io/otel/attribute"
)

// IngestResult summarizes one batch.
type IngestResult struct {
	Posts           int `json:"posts"`
	PostsIngested   int `json:"posts_ingested"`
	PostsDuplicate  int `json:"posts_duplicate"`
	RecordsInserted int `json:"records_inserted"`
	DailyRows       int `json:"daily_rows"`
	MonthlyRows     int `json:"monthly_rows"`
}

// StatsCacheInvalidator drops cached stat reads after new facts land.
type StatsCacheInvalidator interface {
	Flush(ctx context.Context)
}

// IdentityCache memoizes board and user ids for a single batch. It must not
// outlive the transaction that filled it.
type IdentityCache struct {
	boards map[string]int64
	users  map[string]int64
}

func NewIdentityCache() *IdentityCache {
	return &IdentityCache{
		boards: make(map[string]int64, 4),
		users:  make(map[string]int64, 64),
	}
}

func (c *IdentityCache) BoardID(ctx context.Context, tx wager.BatchTx, slug string) (int64, error) {
	if id, ok := c.boards[slug]; ok {
		return id, nil
	}
	id, err := tx.EnsureBoard(ctx, slug)
	if err != nil {
		return 0, fmt.Errorf("ensure board slug=%s: %w", slug, err)
	}
	c.boards[slug] = id
	return id, nil
}

func (c *IdentityCache) UserID(ctx context.Context, tx wager.BatchTx, nickname string) (int64, error) {
	if id, ok := c.users[nickname]; ok {
		return id, nil
	}
	id, err := tx.EnsureUser(ctx, nickname)
	if err != nil {
		return 0, fmt.Errorf("ensure user nickname=%s: %w", nickname, err)
	}
	c.users[nickname] = id
	return id, nil
}

type IngestionService struct {
	store       wager.Store
	aggregator  *AggregationService
	invalidator StatsCacheInvalidator
	logger      *logging.Logger

	// one batch at a time per process; cross-process races fall back to the
	// uniqueness constraints.
	mu sync.Mutex
}

func NewIngestionService(
	store wager.Store,
	aggregator *AggregationService,
	invalidator StatsCacheInvalidator,
	logger *logging.Logger,
) *IngestionService {
	if logger == nil {
		logger = logging.Default()
	}
	return &IngestionService{
		store:       store,
		aggregator:  aggregator,
		invalidator: invalidator,
		logger:      logger,
	}
}

// Ingest writes every new post of the batch and recomputes the aggregates in
// the same transaction. A post already present for its board is skipped as a
// whole. Any failure rolls the entire batch back.
func (s *IngestionService) Ingest(ctx context.Context, batch wager.Batch) (IngestResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.IngestionService.Ingest", attribute.Int("ingest.posts", batch.Len()))
	defer span.End()

	if batch.Len() == 0 {
		return IngestResult{}, nil
	}
	posts, err := normalizeBatch(batch)
	if err != nil {
		return IngestResult{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var result IngestResult
	err = s.store.WithinBatch(ctx, func(ctx context.Context, tx wager.BatchTx) error {
		result = IngestResult{Posts: len(posts)}
		identities := NewIdentityCache()

		for _, post := range posts {
			inserted, duplicate, err := ingestPost(ctx, tx, identities, post)
			if err != nil {
				return fmt.Errorf("board=%s post_id=%d: %w", post.BoardSlug, post.PostID, err)
			}
			if duplicate {
				result.PostsDuplicate++
				continue
			}
			result.PostsIngested++
			result.RecordsInserted += inserted
		}

		recomputed, err := s.aggregator.Recompute(ctx, tx)
		if err != nil {
			return err
		}
		result.DailyRows = recomputed.DailyRows
		result.MonthlyRows = recomputed.MonthlyRows
		return nil
	})
	if err != nil {
		markSpanError(span, err)
		return IngestResult{}, fmt.Errorf("ingest batch: %w", err)
	}
	span.SetAttributes(attribute.Int("ingest.records_inserted", result.RecordsInserted))

	if s.invalidator != nil {
		s.invalidator.Flush(ctx)
	}
	s.logger.InfoContext(ctx, "wager batch ingested",
		"posts", result.Posts,
		"posts_ingested", result.PostsIngested,
		"posts_duplicate", result.PostsDuplicate,
		"records_inserted", result.RecordsInserted,
	)
	return result, nil
}

func ingestPost(ctx context.Context, tx wager.BatchTx, identities *IdentityCache, post wager.Post) (int, bool, error) {
	boardID, err := identities.BoardID(ctx, tx, post.BoardSlug)
	if err != nil {
		return 0, false, err
	}

	exists, err := tx.PostExists(ctx, boardID, post.PostID)
	if err != nil {
		return 0, false, fmt.Errorf("check post exists: %w", err)
	}
	if exists {
		return 0, true, nil
	}

	records := make([]wager.Record, 0, len(post.Rows))
	for _, row := range post.Rows {
		userID, err := identities.UserID(ctx, tx, row.Nickname)
		if err != nil {
			return 0, false, err
		}
		records = append(records, wager.Record{
			PostID:   post.PostID,
			UserID:   userID,
			BoardID:  boardID,
			Side:     row.Side,
			Stake:    row.Stake,
			Payout:   row.Payout,
			Deadline: post.Deadline,
		})
	}

	inserted, err := tx.InsertRecords(ctx, records)
	if err != nil {
		return 0, false, fmt.Errorf("insert records: %w", err)
	}
	return inserted, false, nil
}

func normalizeBatch(batch wager.Batch) ([]wager.Post, error) {
	posts := make([]wager.Post, 0, batch.Len())
	for _, post := range batch.Posts {
		post.BoardSlug = strings.TrimSpace(post.BoardSlug)
		if post.BoardSlug == "" {
			return nil, fmt.Errorf("%w: board slug is required", ErrInvalidInput)
		}
		if post.PostID <= 0 {
			return nil, fmt.Errorf("%w: post id must be greater than zero", ErrInvalidInput)
		}
		if post.Deadline.IsZero() {
			return nil, fmt.Errorf("%w: post %d has no deadline", ErrInvalidInput, post.PostID)
		}
		post.Deadline = post.Deadline.UTC()
		if len(post.Rows) == 0 {
			return nil, fmt.Errorf("%w: post %d has no rows", ErrInvalidInput, post.PostID)
		}

		rows := make([]wager.Row, 0, len(post.Rows))
		for _, row := range post.Rows {
			row.Nickname = strings.TrimSpace(row.Nickname)
			if row.Nickname == "" || !row.Side.Valid() || row.Stake <= 0 || row.Payout < 0 {
				return nil, fmt.Errorf("%w: post %d has an invalid row", ErrInvalidInput, post.PostID)
			}
			rows = append(rows, row)
		}
		post.Rows = rows
		posts = append(posts, post)
	}
	return posts, nil
}
