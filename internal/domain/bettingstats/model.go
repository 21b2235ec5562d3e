package bettingstats

import (
	"math"
	"time"
)

// Fact is the projection of a stored wager row used by the aggregation.
type Fact struct {
	UserID   int64
	BoardID  int64
	PostID   int64
	Side     int16
	Stake    int64
	Profit   int64
	Deadline time.Time
}

// Totals are the derived counters shared by daily, monthly and ranking rows.
// TotalBets counts posts, not wager rows.
type Totals struct {
	TotalBets   int64
	TotalAmount int64
	TotalProfit int64
	Wins        int64
}

func (t Totals) Add(other Totals) Totals {
	return Totals{
		TotalBets:   t.TotalBets + other.TotalBets,
		TotalAmount: t.TotalAmount + other.TotalAmount,
		TotalProfit: t.TotalProfit + other.TotalProfit,
		Wins:        t.Wins + other.Wins,
	}
}

// WinRate returns wins/total_bets*100 rounded to two decimals, 0 without bets.
func (t Totals) WinRate() float64 {
	if t.TotalBets <= 0 {
		return 0
	}
	rate := float64(t.Wins) / float64(t.TotalBets) * 100
	return math.Round(rate*100) / 100
}

// Stat is one aggregate row keyed by (period, user, board). Period is a UTC
// midnight date; for monthly rows it is the first day of the month.
type Stat struct {
	Period  time.Time
	UserID  int64
	BoardID int64
	Totals
}

// RankingEntry is one user's totals for a single period.
type RankingEntry struct {
	UserID   int64
	Nickname string
	Totals
}
