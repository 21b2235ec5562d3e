package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	jsoniter "github.com/json-iterator/go"
	"github.com/riskibarqy/wato-stats/internal/domain/crawlrun"
	qb "github.com/riskibarqy/wato-stats/internal/platform/querybuilder"
)

type CrawlRunRepository struct {
	db *sqlx.DB
}

func NewCrawlRunRepository(db *sqlx.DB) *CrawlRunRepository {
	return &CrawlRunRepository{db: db}
}

func (r *CrawlRunRepository) Upsert(ctx context.Context, run crawlrun.Run) error {
	query, args, err := buildUpsertCrawlRunQuery(run)
	if err != nil {
		return err
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert crawl run run_id=%s status=%s: %w", run.ID, run.Status, err)
	}
	return nil
}

func (r *CrawlRunRepository) GetByID(ctx context.Context, runID string) (crawlrun.Run, bool, error) {
	query, args, err := qb.Select(
		"run_id",
		"trigger",
		"status",
		"boards",
		"pages",
		"pages_fetched",
		"posts_seen",
		"posts_ingested",
		"posts_duplicate",
		"posts_skipped",
		"records_inserted",
		"last_error",
		"started_at",
		"finished_at",
	).From("crawl_runs").
		Where(qb.Eq("run_id", runID)).
		Limit(1).
		ToSQL()
	if err != nil {
		return crawlrun.Run{}, false, fmt.Errorf("build get crawl run query: %w", err)
	}

	var row crawlRunRow
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return crawlrun.Run{}, false, nil
		}
		return crawlrun.Run{}, false, fmt.Errorf("get crawl run run_id=%s: %w", runID, err)
	}

	run, err := crawlRunFromRow(row)
	if err != nil {
		return crawlrun.Run{}, false, err
	}
	return run, true, nil
}

func buildUpsertCrawlRunQuery(run crawlrun.Run) (string, []any, error) {
	runID := strings.TrimSpace(run.ID)
	if runID == "" {
		return "", nil, fmt.Errorf("crawl run id is required")
	}

	boards, err := marshalBoards(run.Boards)
	if err != nil {
		return "", nil, fmt.Errorf("marshal crawl run boards: %w", err)
	}

	model := crawlRunInsertModel{
		RunID:           runID,
		Trigger:         string(run.Trigger),
		Status:          string(run.Status),
		Boards:          boards,
		Pages:           run.Pages,
		PagesFetched:    run.PagesFetched,
		PostsSeen:       run.PostsSeen,
		PostsIngested:   run.PostsIngested,
		PostsDuplicate:  run.PostsDuplicate,
		PostsSkipped:    run.PostsSkipped,
		RecordsInserted: run.RecordsInserted,
		LastError:       optionalString(run.LastError),
		StartedAt:       run.StartedAt.UTC(),
		FinishedAt:      run.FinishedAt,
	}

	query, args, err := qb.UpsertModel("crawl_runs", model)
	if err != nil {
		return "", nil, fmt.Errorf("build upsert crawl run query: %w", err)
	}
	return query, args, nil
}

func crawlRunFromRow(row crawlRunRow) (crawlrun.Run, error) {
	var boards []string
	if len(row.Boards) > 0 {
		if err := jsoniter.Unmarshal(row.Boards, &boards); err != nil {
			return crawlrun.Run{}, fmt.Errorf("decode crawl run boards run_id=%s: %w", row.RunID, err)
		}
	}

	run := crawlrun.Run{
		ID:              row.RunID,
		Trigger:         crawlrun.Trigger(row.Trigger),
		Status:          crawlrun.Status(row.Status),
		Boards:          boards,
		Pages:           row.Pages,
		PagesFetched:    row.PagesFetched,
		PostsSeen:       row.PostsSeen,
		PostsIngested:   row.PostsIngested,
		PostsDuplicate:  row.PostsDuplicate,
		PostsSkipped:    row.PostsSkipped,
		RecordsInserted: row.RecordsInserted,
		LastError:       stringValue(row.LastError),
		StartedAt:       row.StartedAt.UTC(),
	}
	if row.FinishedAt.Valid {
		finishedAt := row.FinishedAt.Time.UTC()
		run.FinishedAt = &finishedAt
	}
	return run, nil
}

func marshalBoards(boards []string) (string, error) {
	if len(boards) == 0 {
		return "[]", nil
	}
	raw, err := jsoniter.Marshal(boards)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}
