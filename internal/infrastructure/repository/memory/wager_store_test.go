package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/riskibarqy/wato-stats/internal/domain/bettingstats"
	"github.com/riskibarqy/wato-stats/internal/domain/wager"
)

func TestStore_WithinBatch_RollsBackOnError(t *testing.T) {
	t.Parallel()

	store := NewStore()
	errBoom := errors.New("boom")
	err := store.WithinBatch(context.Background(), func(ctx context.Context, tx wager.BatchTx) error {
		boardID, _ := tx.EnsureBoard(ctx, "pan_setkacup")
		userID, _ := tx.EnsureUser(ctx, "alice")
		if _, err := tx.InsertRecords(ctx, []wager.Record{{PostID: 1, UserID: userID, BoardID: boardID, Stake: 100}}); err != nil {
			t.Fatalf("insert records: %v", err)
		}
		return errBoom
	})
	if !errors.Is(err, errBoom) {
		t.Fatalf("expected batch error, got %v", err)
	}
	if store.RecordCount() != 0 {
		t.Fatalf("expected no records after rollback, got %d", store.RecordCount())
	}
	if _, ok, _ := store.GetUserByNickname(context.Background(), "alice"); ok {
		t.Fatalf("user must not survive a rolled back batch")
	}
}

func TestStore_InsertRecordsIgnoresConflicts(t *testing.T) {
	t.Parallel()

	store := NewStore()
	err := store.WithinBatch(context.Background(), func(ctx context.Context, tx wager.BatchTx) error {
		record := wager.Record{PostID: 7, UserID: 1, BoardID: 1, Side: wager.SideFirst, Stake: 100}
		n, err := tx.InsertRecords(ctx, []wager.Record{record, record, {PostID: 7, UserID: 1, BoardID: 1, Side: wager.SideSecond, Stake: 50}})
		if err != nil {
			return err
		}
		if n != 2 {
			t.Fatalf("expected 2 inserted rows, got %d", n)
		}
		exists, err := tx.PostExists(ctx, 1, 7)
		if err != nil || !exists {
			t.Fatalf("expected post to exist, exists=%t err=%v", exists, err)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("within batch: %v", err)
	}
}

func TestStore_ListAndRank(t *testing.T) {
	t.Parallel()

	store := NewStore()
	day1 := time.Date(2025, 3, 9, 0, 0, 0, 0, time.UTC)
	day2 := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

	err := store.WithinBatch(context.Background(), func(ctx context.Context, tx wager.BatchTx) error {
		b1, _ := tx.EnsureBoard(ctx, "a")
		b2, _ := tx.EnsureBoard(ctx, "b")
		alice, _ := tx.EnsureUser(ctx, "alice")
		bob, _ := tx.EnsureUser(ctx, "bob")
		return tx.ReplaceDailyStats(ctx, []bettingstats.Stat{
			{Period: day1, UserID: alice, BoardID: b1, Totals: bettingstats.Totals{TotalBets: 1, TotalAmount: 100, TotalProfit: 50, Wins: 1}},
			{Period: day2, UserID: alice, BoardID: b1, Totals: bettingstats.Totals{TotalBets: 1, TotalAmount: 100, TotalProfit: -100}},
			{Period: day2, UserID: alice, BoardID: b2, Totals: bettingstats.Totals{TotalBets: 2, TotalAmount: 300, TotalProfit: 10, Wins: 1}},
			{Period: day2, UserID: bob, BoardID: b1, Totals: bettingstats.Totals{TotalBets: 1, TotalAmount: 400, TotalProfit: 0}},
		})
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	rows, err := store.ListDaily(context.Background(), bettingstats.Filter{UserID: 1})
	if err != nil {
		t.Fatalf("list daily: %v", err)
	}
	if len(rows) != 2 || !rows[0].Period.Equal(day2) {
		t.Fatalf("expected two rows newest first, got %+v", rows)
	}
	if rows[0].TotalBets != 3 || rows[0].TotalAmount != 400 || rows[0].TotalProfit != -90 {
		t.Fatalf("expected boards summed per day, got %+v", rows[0].Totals)
	}

	ranking, err := store.RankDaily(context.Background(), bettingstats.RankingFilter{Period: day2, BoardID: 1})
	if err != nil {
		t.Fatalf("rank daily: %v", err)
	}
	if len(ranking) != 2 || ranking[0].Nickname != "bob" || ranking[1].Nickname != "alice" {
		t.Fatalf("unexpected ranking: %+v", ranking)
	}
}
