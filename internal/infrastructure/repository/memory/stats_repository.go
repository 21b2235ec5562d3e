package memory

import (
	"context"
	"sort"
	"time"

	"github.com/riskibarqy/wato-stats/internal/domain/bettingstats"
	"github.com/riskibarqy/wato-stats/internal/domain/identity"
)

func (s *Store) GetUserByNickname(_ context.Context, nickname string) (identity.User, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.state.users[nickname]
	return user, ok, nil
}

func (s *Store) GetBoardBySlug(_ context.Context, slug string) (identity.Board, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	board, ok := s.state.boards[slug]
	return board, ok, nil
}

func (s *Store) ListDaily(_ context.Context, filter bettingstats.Filter) ([]bettingstats.Stat, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return listStats(s.state.daily, filter), nil
}

func (s *Store) ListMonthly(_ context.Context, filter bettingstats.Filter) ([]bettingstats.Stat, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return listStats(s.state.monthly, filter), nil
}

func (s *Store) RankDaily(_ context.Context, filter bettingstats.RankingFilter) ([]bettingstats.RankingEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return rankStats(s.state.daily, s.nicknamesLocked(), filter), nil
}

func (s *Store) RankMonthly(_ context.Context, filter bettingstats.RankingFilter) ([]bettingstats.RankingEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return rankStats(s.state.monthly, s.nicknamesLocked(), filter), nil
}

func (s *Store) nicknamesLocked() map[int64]string {
	out := make(map[int64]string, len(s.state.users))
	for nickname, user := range s.state.users {
		out[user.ID] = nickname
	}
	return out
}

func listStats(rows map[statKey]bettingstats.Stat, filter bettingstats.Filter) []bettingstats.Stat {
	byPeriod := make(map[time.Time]bettingstats.Stat)
	for key, row := range rows {
		if key.userID != filter.UserID {
			continue
		}
		if filter.BoardID > 0 && key.boardID != filter.BoardID {
			continue
		}
		if !filter.From.IsZero() && row.Period.Before(filter.From) {
			continue
		}
		if !filter.To.IsZero() && row.Period.After(filter.To) {
			continue
		}

		current, ok := byPeriod[key.period]
		if !ok {
			current = bettingstats.Stat{Period: row.Period, UserID: row.UserID, BoardID: filter.BoardID}
		}
		current.Totals = current.Totals.Add(row.Totals)
		byPeriod[key.period] = current
	}

	out := make([]bettingstats.Stat, 0, len(byPeriod))
	for _, row := range byPeriod {
		out = append(out, row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Period.After(out[j].Period) })
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out
}

func rankStats(rows map[statKey]bettingstats.Stat, nicknames map[int64]string, filter bettingstats.RankingFilter) []bettingstats.RankingEntry {
	byUser := make(map[int64]bettingstats.RankingEntry)
	for key, row := range rows {
		if !key.period.Equal(filter.Period) {
			continue
		}
		if filter.BoardID > 0 && key.boardID != filter.BoardID {
			continue
		}
		entry, ok := byUser[key.userID]
		if !ok {
			entry = bettingstats.RankingEntry{UserID: key.userID, Nickname: nicknames[key.userID]}
		}
		entry.Totals = entry.Totals.Add(row.Totals)
		byUser[key.userID] = entry
	}

	out := make([]bettingstats.RankingEntry, 0, len(byUser))
	for _, entry := range byUser {
		out = append(out, entry)
	}
	bettingstats.SortRanking(out)
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out
}
