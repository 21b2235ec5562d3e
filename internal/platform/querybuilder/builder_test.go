package querybuilder

import (
	"testing"
	"time"
)

func TestSelectBuilder(t *testing.T) {
	from := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	query, args, err := Select("stat_date", "SUM(total_bets) AS total_bets").
		From("daily_betting_stats").
		Where(Eq("user_id", int64(3)), Gte("stat_date", from)).
		WhereIf(false, Eq("board_id", int64(9))).
		GroupBy("stat_date").
		OrderBy("stat_date DESC").
		Limit(10).
		ToSQL()
	if err != nil {
		t.Fatalf("build select query: %v", err)
	}

	wantQuery := "SELECT stat_date, SUM(total_bets) AS total_bets FROM daily_betting_stats WHERE user_id = $1 AND stat_date >= $2 GROUP BY stat_date ORDER BY stat_date DESC LIMIT 10"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 2 || args[0] != int64(3) || args[1] != from {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestSelectBuilder_InAndExpr(t *testing.T) {
	query, args, err := Select("1").
		From("betting_stats").
		Where(In("board_id", []any{1, 2}), Expr("post_id = ? OR post_id = ?", 10, 11), In("user_id", nil)).
		ToSQL()
	if err != nil {
		t.Fatalf("build select query: %v", err)
	}

	wantQuery := "SELECT 1 FROM betting_stats WHERE board_id IN ($1, $2) AND post_id = $3 OR post_id = $4 AND 1=0"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 4 {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestInsertBuilder_MultiRow(t *testing.T) {
	builder := InsertInto("betting_stats").
		Columns("post_id", "user_id", "bet_side").
		Values(10, 1, 0).
		Values(10, 2, 1).
		Suffix("ON CONFLICT (user_id, board_id, post_id, bet_side) DO NOTHING")
	query, args, err := builder.ToSQL()
	if err != nil {
		t.Fatalf("build insert query: %v", err)
	}

	wantQuery := "INSERT INTO betting_stats (post_id, user_id, bet_side) VALUES ($1, $2, $3), ($4, $5, $6) ON CONFLICT (user_id, board_id, post_id, bet_side) DO NOTHING"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 6 || builder.RowCount() != 2 {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestInsertBuilder_RowWidthMismatch(t *testing.T) {
	_, _, err := InsertInto("users").Columns("nickname").Values("a", "b").ToSQL()
	if err == nil {
		t.Fatalf("expected row width error")
	}
}

func TestDeleteBuilder(t *testing.T) {
	query, args, err := DeleteFrom("daily_betting_stats").
		Where(Expr("created_at < NOW()")).
		ToSQL()
	if err != nil {
		t.Fatalf("build delete query: %v", err)
	}
	if query != "DELETE FROM daily_betting_stats WHERE created_at < NOW()" {
		t.Fatalf("unexpected query: %s", query)
	}
	if len(args) != 0 {
		t.Fatalf("unexpected args: %+v", args)
	}

	if _, _, err := DeleteFrom("users").ToSQL(); err == nil {
		t.Fatalf("expected error for unbounded delete")
	}
}

func TestUpsertModel(t *testing.T) {
	type model struct {
		RunID     string `db:"run_id,key"`
		Trigger   string `db:"trigger,keep"`
		Status    string `db:"status"`
		LastError string `db:"last_error"`
	}

	query, args, err := UpsertModel("crawl_runs", &model{RunID: "r1", Trigger: "api", Status: "completed"})
	if err != nil {
		t.Fatalf("build upsert model query: %v", err)
	}

	wantQuery := "INSERT INTO crawl_runs (run_id, trigger, status, last_error) VALUES ($1, $2, $3, $4) " +
		"ON CONFLICT (run_id) DO UPDATE SET status = EXCLUDED.status, last_error = EXCLUDED.last_error"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 4 || args[0] != "r1" || args[1] != "api" {
		t.Fatalf("unexpected args: %+v", args)
	}

	type keyless struct {
		Status string `db:"status"`
	}
	if _, _, err := UpsertModel("crawl_runs", keyless{Status: "x"}); err == nil {
		t.Fatalf("expected error for model without key columns")
	}
}
