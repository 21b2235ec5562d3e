package postgres

import (
	"database/sql"
	"strings"
	"testing"
	"time"

	"github.com/riskibarqy/wato-stats/internal/domain/bettingstats"
	"github.com/riskibarqy/wato-stats/internal/domain/crawlrun"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildListStatsQuery_SumsBoardsWithoutBoardFilter(t *testing.T) {
	t.Parallel()

	query, args, err := buildListStatsQuery(dailyStatTable, bettingstats.Filter{
		UserID: 7,
		From:   time.Date(2025, 2, 9, 0, 0, 0, 0, time.UTC),
		To:     time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	assert.Equal(t, "SELECT stat_date AS period, user_id, 0::bigint AS board_id, "+
		"SUM(total_bets)::bigint AS total_bets, SUM(total_amount)::bigint AS total_amount, "+
		"SUM(total_profit)::bigint AS total_profit, SUM(wins)::bigint AS wins "+
		"FROM daily_betting_stats WHERE user_id = $1 AND stat_date >= $2 AND stat_date <= $3 "+
		"GROUP BY stat_date, user_id ORDER BY stat_date DESC", query)
	assert.Equal(t, []any{int64(7), "2025-02-09", "2025-03-10"}, args)
}

func TestBuildListStatsQuery_BoardAndLimit(t *testing.T) {
	t.Parallel()

	query, args, err := buildListStatsQuery(monthlyStatTable, bettingstats.Filter{UserID: 7, BoardID: 3, Limit: 12})
	require.NoError(t, err)

	assert.Equal(t, "SELECT stat_month AS period, user_id, board_id, total_bets, total_amount, total_profit, wins "+
		"FROM monthly_betting_stats WHERE user_id = $1 AND board_id = $2 ORDER BY stat_month DESC LIMIT 12", query)
	assert.Equal(t, []any{int64(7), int64(3)}, args)
}

func TestBuildRankingQuery(t *testing.T) {
	t.Parallel()

	query, args, err := buildRankingQuery(dailyStatTable, bettingstats.RankingFilter{
		Period:  time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
		BoardID: 3,
		Limit:   50,
	})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(query, "SELECT u.id AS user_id, u.nickname, "))
	assert.Contains(t, query, "FROM daily_betting_stats s JOIN users u ON u.id = s.user_id")
	assert.Contains(t, query, "WHERE s.stat_date = $1 AND s.board_id = $2")
	assert.True(t, strings.HasSuffix(query, "ORDER BY total_amount DESC, total_profit DESC, u.nickname ASC LIMIT 50"))
	assert.Equal(t, []any{"2025-03-10", int64(3)}, args)
}

func TestBuildUpsertCrawlRunQuery(t *testing.T) {
	t.Parallel()

	started := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	query, args, err := buildUpsertCrawlRunQuery(crawlrun.Run{
		ID:        "5b0f3c2e-6a0f-4d0c-9a8e-0c1f3a6b7d21",
		Trigger:   crawlrun.TriggerAPI,
		Status:    crawlrun.StatusRunning,
		Boards:    []string{"pan_setkacup"},
		Pages:     8,
		StartedAt: started,
	})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(query, "INSERT INTO crawl_runs (run_id, trigger, status, boards, pages,"))
	assert.Contains(t, query, "ON CONFLICT (run_id) DO UPDATE SET status = EXCLUDED.status")
	assert.NotContains(t, query, "trigger = EXCLUDED")
	assert.NotContains(t, query, "started_at = EXCLUDED")
	assert.True(t, strings.HasSuffix(query, "finished_at = EXCLUDED.finished_at"))
	require.Len(t, args, 14)
	assert.Equal(t, `["pan_setkacup"]`, args[3])
	assert.Nil(t, args[11].(*string))

	_, _, err = buildUpsertCrawlRunQuery(crawlrun.Run{ID: " "})
	assert.Error(t, err)
}

func TestCrawlRunFromRow(t *testing.T) {
	t.Parallel()

	finished := time.Date(2025, 3, 10, 12, 5, 0, 0, time.UTC)
	run, err := crawlRunFromRow(crawlRunRow{
		RunID:        "5b0f3c2e-6a0f-4d0c-9a8e-0c1f3a6b7d21",
		Trigger:      "cli",
		Status:       "completed",
		Boards:       []byte(`["a","b"]`),
		PagesFetched: 3,
		LastError:    sql.NullString{String: "list page 502", Valid: true},
		FinishedAt:   sql.NullTime{Time: finished, Valid: true},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, run.Boards)
	assert.Equal(t, crawlrun.StatusCompleted, run.Status)
	assert.Equal(t, "list page 502", run.LastError)
	require.NotNil(t, run.FinishedAt)
	assert.True(t, run.FinishedAt.Equal(finished))

	_, err = crawlRunFromRow(crawlRunRow{Boards: []byte(`{`)})
	assert.Error(t, err)
}
