package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/wato-stats/internal/domain/bettingstats"
	"github.com/riskibarqy/wato-stats/internal/domain/identity"
	qb "github.com/riskibarqy/wato-stats/internal/platform/querybuilder"
)

type statTable struct {
	name   string
	period string
}

var (
	dailyStatTable   = statTable{name: "daily_betting_stats", period: "stat_date"}
	monthlyStatTable = statTable{name: "monthly_betting_stats", period: "stat_month"}
)

// StatsRepository reads the precomputed aggregate tables and the identity
// tables. It never touches betting_stats.
type StatsRepository struct {
	db *sqlx.DB
}

func NewStatsRepository(db *sqlx.DB) *StatsRepository {
	return &StatsRepository{db: db}
}

func (r *StatsRepository) GetUserByNickname(ctx context.Context, nickname string) (identity.User, bool, error) {
	query, args, err := qb.Select("id", "nickname", "created_at").
		From("users").
		Where(qb.Eq("nickname", nickname)).
		Limit(1).
		ToSQL()
	if err != nil {
		return identity.User{}, false, fmt.Errorf("build get user query: %w", err)
	}

	var row userRow
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return identity.User{}, false, nil
		}
		return identity.User{}, false, fmt.Errorf("get user nickname=%s: %w", nickname, err)
	}
	return identity.User{ID: row.ID, Nickname: row.Nickname, CreatedAt: row.CreatedAt}, true, nil
}

func (r *StatsRepository) GetBoardBySlug(ctx context.Context, slug string) (identity.Board, bool, error) {
	query, args, err := qb.Select("id", "slug", "name", "created_at").
		From("boards").
		Where(qb.Eq("slug", slug)).
		Limit(1).
		ToSQL()
	if err != nil {
		return identity.Board{}, false, fmt.Errorf("build get board query: %w", err)
	}

	var row boardRow
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return identity.Board{}, false, nil
		}
		return identity.Board{}, false, fmt.Errorf("get board slug=%s: %w", slug, err)
	}
	return identity.Board{ID: row.ID, Slug: row.Slug, Name: row.Name, CreatedAt: row.CreatedAt}, true, nil
}

func (r *StatsRepository) ListDaily(ctx context.Context, filter bettingstats.Filter) ([]bettingstats.Stat, error) {
	return r.listStats(ctx, dailyStatTable, filter)
}

func (r *StatsRepository) ListMonthly(ctx context.Context, filter bettingstats.Filter) ([]bettingstats.Stat, error) {
	return r.listStats(ctx, monthlyStatTable, filter)
}

func (r *StatsRepository) RankDaily(ctx context.Context, filter bettingstats.RankingFilter) ([]bettingstats.RankingEntry, error) {
	return r.rank(ctx, dailyStatTable, filter)
}

func (r *StatsRepository) RankMonthly(ctx context.Context, filter bettingstats.RankingFilter) ([]bettingstats.RankingEntry, error) {
	return r.rank(ctx, monthlyStatTable, filter)
}

func (r *StatsRepository) listStats(ctx context.Context, table statTable, filter bettingstats.Filter) ([]bettingstats.Stat, error) {
	query, args, err := buildListStatsQuery(table, filter)
	if err != nil {
		return nil, fmt.Errorf("build list %s query: %w", table.name, err)
	}

	var rows []statRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list %s user_id=%d: %w", table.name, filter.UserID, err)
	}

	out := make([]bettingstats.Stat, 0, len(rows))
	for _, row := range rows {
		out = append(out, bettingstats.Stat{
			Period:  row.Period.UTC(),
			UserID:  row.UserID,
			BoardID: row.BoardID,
			Totals: bettingstats.Totals{
				TotalBets:   row.TotalBets,
				TotalAmount: row.TotalAmount,
				TotalProfit: row.TotalProfit,
				Wins:        row.Wins,
			},
		})
	}
	return out, nil
}

func (r *StatsRepository) rank(ctx context.Context, table statTable, filter bettingstats.RankingFilter) ([]bettingstats.RankingEntry, error) {
	query, args, err := buildRankingQuery(table, filter)
	if err != nil {
		return nil, fmt.Errorf("build rank %s query: %w", table.name, err)
	}

	var rows []rankingRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("rank %s period=%s: %w", table.name, dateOnly(filter.Period), err)
	}

	out := make([]bettingstats.RankingEntry, 0, len(rows))
	for _, row := range rows {
		out = append(out, bettingstats.RankingEntry{
			UserID:   row.UserID,
			Nickname: row.Nickname,
			Totals: bettingstats.Totals{
				TotalBets:   row.TotalBets,
				TotalAmount: row.TotalAmount,
				TotalProfit: row.TotalProfit,
				Wins:        row.Wins,
			},
		})
	}
	return out, nil
}

// buildListStatsQuery sums the boards per period when no board is selected.
func buildListStatsQuery(table statTable, filter bettingstats.Filter) (string, []any, error) {
	periodColumn := table.period + " AS period"
	builder := qb.Select(
		periodColumn,
		"user_id",
		"board_id",
		"total_bets",
		"total_amount",
		"total_profit",
		"wins",
	)
	if filter.BoardID == 0 {
		builder = qb.Select(
			periodColumn,
			"user_id",
			"0::bigint AS board_id",
			"SUM(total_bets)::bigint AS total_bets",
			"SUM(total_amount)::bigint AS total_amount",
			"SUM(total_profit)::bigint AS total_profit",
			"SUM(wins)::bigint AS wins",
		).GroupBy(table.period, "user_id")
	}

	return builder.
		From(table.name).
		Where(qb.Eq("user_id", filter.UserID)).
		WhereIf(filter.BoardID != 0, qb.Eq("board_id", filter.BoardID)).
		WhereIf(!filter.From.IsZero(), qb.Gte(table.period, dateOnly(filter.From))).
		WhereIf(!filter.To.IsZero(), qb.Lte(table.period, dateOnly(filter.To))).
		OrderBy(table.period + " DESC").
		Limit(filter.Limit).
		ToSQL()
}

func buildRankingQuery(table statTable, filter bettingstats.RankingFilter) (string, []any, error) {
	return qb.Select(
		"u.id AS user_id",
		"u.nickname",
		"SUM(s.total_bets)::bigint AS total_bets",
		"SUM(s.total_amount)::bigint AS total_amount",
		"SUM(s.total_profit)::bigint AS total_profit",
		"SUM(s.wins)::bigint AS wins",
	).From(table.name+" s JOIN users u ON u.id = s.user_id").
		Where(qb.Eq("s."+table.period, dateOnly(filter.Period))).
		WhereIf(filter.BoardID != 0, qb.Eq("s.board_id", filter.BoardID)).
		GroupBy("u.id", "u.nickname").
		OrderBy("total_amount DESC", "total_profit DESC", "u.nickname ASC").
		Limit(filter.Limit).
		ToSQL()
}
