package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/wato-stats/internal/domain/bettingstats"
	"github.com/riskibarqy/wato-stats/internal/domain/wager"
	qb "github.com/riskibarqy/wato-stats/internal/platform/querybuilder"
)

// statUpsertChunk keeps one upsert statement well below the 65535 bind
// parameter limit of the wire protocol.
const statUpsertChunk = 1000

type WagerStore struct {
	db *sqlx.DB
}

func NewWagerStore(db *sqlx.DB) *WagerStore {
	return &WagerStore{db: db}
}

func (s *WagerStore) WithinBatch(ctx context.Context, fn func(ctx context.Context, tx wager.BatchTx) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx ingest batch: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := fn(ctx, &wagerTx{tx: tx}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit ingest batch tx: %w", err)
	}
	return nil
}

type wagerTx struct {
	tx *sqlx.Tx
}

func (w *wagerTx) EnsureBoard(ctx context.Context, slug string) (int64, error) {
	insertQuery, insertArgs, err := qb.InsertInto("boards").
		Columns("slug", "name").
		Values(slug, slug).
		Suffix("ON CONFLICT (slug) DO NOTHING").
		ToSQL()
	if err != nil {
		return 0, fmt.Errorf("build ensure board query: %w", err)
	}
	if _, err := w.tx.ExecContext(ctx, insertQuery, insertArgs...); err != nil {
		return 0, fmt.Errorf("insert board slug=%s: %w", slug, err)
	}

	query, args, err := qb.Select("id").From("boards").Where(qb.Eq("slug", slug)).Limit(1).ToSQL()
	if err != nil {
		return 0, fmt.Errorf("build get board id query: %w", err)
	}
	var id int64
	if err := w.tx.GetContext(ctx, &id, query, args...); err != nil {
		return 0, fmt.Errorf("get board id slug=%s: %w", slug, err)
	}
	return id, nil
}

func (w *wagerTx) EnsureUser(ctx context.Context, nickname string) (int64, error) {
	insertQuery, insertArgs, err := qb.InsertInto("users").
		Columns("nickname").
		Values(nickname).
		Suffix("ON CONFLICT (nickname) DO NOTHING").
		ToSQL()
	if err != nil {
		return 0, fmt.Errorf("build ensure user query: %w", err)
	}
	if _, err := w.tx.ExecContext(ctx, insertQuery, insertArgs...); err != nil {
		return 0, fmt.Errorf("insert user nickname=%s: %w", nickname, err)
	}

	query, args, err := qb.Select("id").From("users").Where(qb.Eq("nickname", nickname)).Limit(1).ToSQL()
	if err != nil {
		return 0, fmt.Errorf("build get user id query: %w", err)
	}
	var id int64
	if err := w.tx.GetContext(ctx, &id, query, args...); err != nil {
		return 0, fmt.Errorf("get user id nickname=%s: %w", nickname, err)
	}
	return id, nil
}

func (w *wagerTx) PostExists(ctx context.Context, boardID, postID int64) (bool, error) {
	query, args, err := qb.Select("1").
		From("betting_stats").
		Where(
			qb.Eq("board_id", boardID),
			qb.Eq("post_id", postID),
		).
		Limit(1).
		ToSQL()
	if err != nil {
		return false, fmt.Errorf("build post exists query: %w", err)
	}

	var exists bool
	if err := w.tx.GetContext(ctx, &exists, "SELECT EXISTS ("+query+")", args...); err != nil {
		return false, fmt.Errorf("check post exists board_id=%d post_id=%d: %w", boardID, postID, err)
	}
	return exists, nil
}

func (w *wagerTx) InsertRecords(ctx context.Context, records []wager.Record) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}

	builder := qb.InsertInto("betting_stats").
		Columns("post_id", "deadline", "user_id", "board_id", "bet_side", "bet_amount", "payout_amount").
		Suffix("ON CONFLICT (user_id, board_id, post_id, bet_side) DO NOTHING")
	for _, record := range records {
		builder.Values(
			record.PostID,
			record.Deadline.UTC(),
			record.UserID,
			record.BoardID,
			int16(record.Side),
			record.Stake,
			record.Payout,
		)
	}

	query, args, err := builder.ToSQL()
	if err != nil {
		return 0, fmt.Errorf("build insert betting stats query: %w", err)
	}
	result, err := w.tx.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("insert betting stats rows=%d: %w", builder.RowCount(), err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("read inserted betting stats count: %w", err)
	}
	return int(affected), nil
}

func (w *wagerTx) ListFacts(ctx context.Context) ([]bettingstats.Fact, error) {
	query, args, err := qb.Select(
		"user_id",
		"board_id",
		"post_id",
		"bet_side",
		"bet_amount",
		"profit",
		"deadline",
	).From("betting_stats").
		OrderBy("board_id ASC", "post_id ASC").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list facts query: %w", err)
	}

	var rows []factRow
	if err := w.tx.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list facts: %w", err)
	}

	facts := make([]bettingstats.Fact, 0, len(rows))
	for _, row := range rows {
		facts = append(facts, bettingstats.Fact{
			UserID:   row.UserID,
			BoardID:  row.BoardID,
			PostID:   row.PostID,
			Side:     row.Side,
			Stake:    row.Stake,
			Profit:   row.Profit,
			Deadline: row.Deadline.UTC(),
		})
	}
	return facts, nil
}

func (w *wagerTx) ReplaceDailyStats(ctx context.Context, rows []bettingstats.Stat) error {
	return w.replaceStats(ctx, dailyStatTable.name, dailyStatTable.period, rows)
}

func (w *wagerTx) ReplaceMonthlyStats(ctx context.Context, rows []bettingstats.Stat) error {
	return w.replaceStats(ctx, monthlyStatTable.name, monthlyStatTable.period, rows)
}

// replaceStats upserts every produced row and then deletes the rows this
// transaction did not touch. NOW() is fixed for the whole transaction, so
// updated_at < NOW() selects exactly the stale keys.
func (w *wagerTx) replaceStats(ctx context.Context, table, periodColumn string, rows []bettingstats.Stat) error {
	err := chunkRange(len(rows), statUpsertChunk, func(start, end int) error {
		query, args, err := buildUpsertStatsQuery(table, periodColumn, rows[start:end])
		if err != nil {
			return err
		}
		if _, err := w.tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("upsert %s rows=%d: %w", table, end-start, err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	deleteQuery, deleteArgs, err := buildDeleteStaleStatsQuery(table)
	if err != nil {
		return err
	}
	if _, err := w.tx.ExecContext(ctx, deleteQuery, deleteArgs...); err != nil {
		return fmt.Errorf("delete stale %s: %w", table, err)
	}
	return nil
}

func buildUpsertStatsQuery(table, periodColumn string, rows []bettingstats.Stat) (string, []any, error) {
	suffix := fmt.Sprintf(`ON CONFLICT (%s, user_id, board_id)
DO UPDATE SET
    total_bets = EXCLUDED.total_bets,
    total_amount = EXCLUDED.total_amount,
    total_profit = EXCLUDED.total_profit,
    wins = EXCLUDED.wins,
    updated_at = NOW()`, periodColumn)

	builder := qb.InsertInto(table).
		Columns(periodColumn, "user_id", "board_id", "total_bets", "total_amount", "total_profit", "wins").
		Suffix(suffix)
	for _, row := range rows {
		builder.Values(
			dateOnly(row.Period),
			row.UserID,
			row.BoardID,
			row.TotalBets,
			row.TotalAmount,
			row.TotalProfit,
			row.Wins,
		)
	}

	query, args, err := builder.ToSQL()
	if err != nil {
		return "", nil, fmt.Errorf("build upsert %s query: %w", table, err)
	}
	return query, args, nil
}

func buildDeleteStaleStatsQuery(table string) (string, []any, error) {
	query, args, err := qb.DeleteFrom(table).
		Where(qb.Expr("updated_at < NOW()")).
		ToSQL()
	if err != nil {
		return "", nil, fmt.Errorf("build delete stale %s query: %w", table, err)
	}
	return query, args, nil
}

func dateOnly(value time.Time) string {
	return value.UTC().Format(time.DateOnly)
}
