package bettingstats

import (
	"sort"
	"time"
)

type statKey struct {
	period  int64
	userID  int64
	boardID int64
}

type postKey struct {
	statKey
	postID int64
}

type postTotals struct {
	netProfit      int64
	representative int64
}

// Aggregate recomputes daily and monthly rows from the full fact history.
//
// All sides of one post are folded first: profit is summed across sides and
// the largest stake stands in as the post's amount, so a hedged post counts
// as one bet. A post is a win when its summed profit is positive.
func Aggregate(facts []Fact, clock DayClock) (daily []Stat, monthly []Stat) {
	daily = aggregateBy(facts, clock.Day)
	monthly = aggregateBy(facts, clock.Month)
	return daily, monthly
}

func aggregateBy(facts []Fact, bucket func(time.Time) time.Time) []Stat {
	if len(facts) == 0 {
		return nil
	}

	posts := make(map[postKey]*postTotals, len(facts))
	for _, fact := range facts {
		period := bucket(fact.Deadline)
		key := postKey{
			statKey: statKey{period: period.Unix(), userID: fact.UserID, boardID: fact.BoardID},
			postID:  fact.PostID,
		}
		totals, ok := posts[key]
		if !ok {
			totals = &postTotals{}
			posts[key] = totals
		}
		totals.netProfit += fact.Profit
		if fact.Stake > totals.representative {
			totals.representative = fact.Stake
		}
	}

	stats := make(map[statKey]*Totals, len(posts))
	for key, post := range posts {
		totals, ok := stats[key.statKey]
		if !ok {
			totals = &Totals{}
			stats[key.statKey] = totals
		}
		totals.TotalBets++
		totals.TotalAmount += post.representative
		totals.TotalProfit += post.netProfit
		if post.netProfit > 0 {
			totals.Wins++
		}
	}

	out := make([]Stat, 0, len(stats))
	for key, totals := range stats {
		out = append(out, Stat{
			Period:  time.Unix(key.period, 0).UTC(),
			UserID:  key.userID,
			BoardID: key.boardID,
			Totals:  *totals,
		})
	}
	SortStats(out)
	return out
}

// SortStats orders rows by (period, user, board) ascending.
func SortStats(rows []Stat) {
	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].Period.Equal(rows[j].Period) {
			return rows[i].Period.Before(rows[j].Period)
		}
		if rows[i].UserID != rows[j].UserID {
			return rows[i].UserID < rows[j].UserID
		}
		return rows[i].BoardID < rows[j].BoardID
	})
}

// SortRanking orders entries by total amount desc, then total profit desc,
// then nickname.
func SortRanking(entries []RankingEntry) {
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].TotalAmount != entries[j].TotalAmount {
			return entries[i].TotalAmount > entries[j].TotalAmount
		}
		if entries[i].TotalProfit != entries[j].TotalProfit {
			return entries[i].TotalProfit > entries[j].TotalProfit
		}
		return entries[i].Nickname < entries[j].Nickname
	})
}
