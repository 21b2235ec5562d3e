package bettingstats

import (
	"context"
	"time"
)

// RecomputeTx is the transactional surface the aggregation needs. Replace
// upserts every row keyed by (period, user, board) and drops keys that are
// no longer produced by the facts.
type RecomputeTx interface {
	ListFacts(ctx context.Context) ([]Fact, error)
	ReplaceDailyStats(ctx context.Context, rows []Stat) error
	ReplaceMonthlyStats(ctx context.Context, rows []Stat) error
}

// Filter selects one user's aggregate rows. BoardID 0 sums all boards per
// period. From/To are inclusive; a zero value leaves that side open.
type Filter struct {
	UserID  int64
	BoardID int64
	From    time.Time
	To      time.Time
	Limit   int
}

type RankingFilter struct {
	Period  time.Time
	BoardID int64
	Limit   int
}

// QueryRepository reads precomputed aggregates only. Lists are ordered by
// period descending; rankings by total amount descending.
type QueryRepository interface {
	ListDaily(ctx context.Context, filter Filter) ([]Stat, error)
	ListMonthly(ctx context.Context, filter Filter) ([]Stat, error)
	RankDaily(ctx context.Context, filter RankingFilter) ([]RankingEntry, error)
	RankMonthly(ctx context.Context, filter RankingFilter) ([]RankingEntry, error)
}
