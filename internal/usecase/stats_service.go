package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/wato-stats/internal/domain/bettingstats"
	"github.com/riskibarqy/wato-stats/internal/domain/identity"
	"go.opentelemetry.io/otel/attribute"
)

const (
	DateLayout  = "2006-01-02"
	MonthLayout = "2006-01"

	defaultDailyWindowDays = 30
	defaultMonthlyRows     = 12
	DefaultRankingLimit    = 50
	MaxRankingLimit        = 200
)

type DailyStatsQuery struct {
	Nickname  string
	BoardSlug string
	StartDate string
	EndDate   string
}

type MonthlyStatsQuery struct {
	Nickname   string
	BoardSlug  string
	StartMonth string
	EndMonth   string
}

type RankingQuery struct {
	Period    string
	BoardSlug string
	Limit     int
}

type StatView struct {
	Period      string  `json:"period"`
	TotalBets   int64   `json:"total_bets"`
	TotalAmount int64   `json:"total_amount"`
	TotalProfit int64   `json:"total_profit"`
	Wins        int64   `json:"wins"`
	WinRate     float64 `json:"win_rate"`
}

type UserStats struct {
	Nickname  string     `json:"nickname"`
	BoardSlug string     `json:"board_slug,omitempty"`
	From      string     `json:"from,omitempty"`
	To        string     `json:"to,omitempty"`
	Rows      []StatView `json:"rows"`
}

type RankingRow struct {
	Rank        int     `json:"rank"`
	Nickname    string  `json:"nickname"`
	TotalBets   int64   `json:"total_bets"`
	TotalAmount int64   `json:"total_amount"`
	TotalProfit int64   `json:"total_profit"`
	Wins        int64   `json:"wins"`
	WinRate     float64 `json:"win_rate"`
}

type Ranking struct {
	Period    string       `json:"period"`
	BoardSlug string       `json:"board_slug,omitempty"`
	Rows      []RankingRow `json:"rows"`
}

// StatsService answers read queries from the precomputed aggregate tables.
type StatsService struct {
	identities identity.Repository
	stats      bettingstats.QueryRepository
	clock      bettingstats.DayClock
	now        func() time.Time
}

func NewStatsService(identities identity.Repository, stats bettingstats.QueryRepository, clock bettingstats.DayClock) *StatsService {
	return &StatsService{
		identities: identities,
		stats:      stats,
		clock:      clock,
		now:        time.Now,
	}
}

func (s *StatsService) DailyStats(ctx context.Context, query DailyStatsQuery) (UserStats, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.StatsService.DailyStats",
		attribute.String("stats.nickname", query.Nickname),
		attribute.String("stats.board", query.BoardSlug),
	)
	defer span.End()

	user, boardID, err := s.resolveSubject(ctx, query.Nickname, query.BoardSlug)
	if err != nil {
		return UserStats{}, err
	}

	from, err := parseOptionalDate(query.StartDate, DateLayout, "start_date")
	if err != nil {
		return UserStats{}, err
	}
	to, err := parseOptionalDate(query.EndDate, DateLayout, "end_date")
	if err != nil {
		return UserStats{}, err
	}
	if to.IsZero() {
		to = s.clock.Day(s.now())
	}
	if from.IsZero() {
		from = to.AddDate(0, 0, -(defaultDailyWindowDays - 1))
	}
	if from.After(to) {
		return UserStats{}, fmt.Errorf("%w: start_date must not be after end_date", ErrInvalidInput)
	}

	rows, err := s.stats.ListDaily(ctx, bettingstats.Filter{
		UserID:  user.ID,
		BoardID: boardID,
		From:    from,
		To:      to,
	})
	if err != nil {
		return UserStats{}, fmt.Errorf("list daily stats: %w", err)
	}

	return UserStats{
		Nickname:  user.Nickname,
		BoardSlug: strings.TrimSpace(query.BoardSlug),
		From:      from.Format(DateLayout),
		To:        to.Format(DateLayout),
		Rows:      toStatViews(rows, DateLayout),
	}, nil
}

// MonthlyStats returns the latest twelve months when no range is given.
func (s *StatsService) MonthlyStats(ctx context.Context, query MonthlyStatsQuery) (UserStats, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.StatsService.MonthlyStats",
		attribute.String("stats.nickname", query.Nickname),
		attribute.String("stats.board", query.BoardSlug),
	)
	defer span.End()

	user, boardID, err := s.resolveSubject(ctx, query.Nickname, query.BoardSlug)
	if err != nil {
		return UserStats{}, err
	}

	from, err := parseOptionalDate(query.StartMonth, MonthLayout, "start_month")
	if err != nil {
		return UserStats{}, err
	}
	to, err := parseOptionalDate(query.EndMonth, MonthLayout, "end_month")
	if err != nil {
		return UserStats{}, err
	}
	if !from.IsZero() && !to.IsZero() && from.After(to) {
		return UserStats{}, fmt.Errorf("%w: start_month must not be after end_month", ErrInvalidInput)
	}

	filter := bettingstats.Filter{
		UserID:  user.ID,
		BoardID: boardID,
		From:    from,
		To:      to,
	}
	if from.IsZero() && to.IsZero() {
		filter.Limit = defaultMonthlyRows
	}

	rows, err := s.stats.ListMonthly(ctx, filter)
	if err != nil {
		return UserStats{}, fmt.Errorf("list monthly stats: %w", err)
	}

	out := UserStats{
		Nickname:  user.Nickname,
		BoardSlug: strings.TrimSpace(query.BoardSlug),
		Rows:      toStatViews(rows, MonthLayout),
	}
	if !from.IsZero() {
		out.From = from.Format(MonthLayout)
	}
	if !to.IsZero() {
		out.To = to.Format(MonthLayout)
	}
	return out, nil
}

func (s *StatsService) DailyRanking(ctx context.Context, query RankingQuery) (Ranking, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.StatsService.DailyRanking")
	defer span.End()

	period, err := parseOptionalDate(query.Period, DateLayout, "stat_date")
	if err != nil {
		return Ranking{}, err
	}
	if period.IsZero() {
		period = s.clock.Day(s.now())
	}
	return s.rank(ctx, period, DateLayout, query, s.stats.RankDaily)
}

func (s *StatsService) MonthlyRanking(ctx context.Context, query RankingQuery) (Ranking, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.StatsService.MonthlyRanking")
	defer span.End()

	period, err := parseOptionalDate(query.Period, MonthLayout, "stat_month")
	if err != nil {
		return Ranking{}, err
	}
	if period.IsZero() {
		period = s.clock.Month(s.now())
	}
	return s.rank(ctx, period, MonthLayout, query, s.stats.RankMonthly)
}

func (s *StatsService) rank(
	ctx context.Context,
	period time.Time,
	layout string,
	query RankingQuery,
	load func(context.Context, bettingstats.RankingFilter) ([]bettingstats.RankingEntry, error),
) (Ranking, error) {
	boardID, err := s.resolveBoard(ctx, query.BoardSlug)
	if err != nil {
		return Ranking{}, err
	}

	entries, err := load(ctx, bettingstats.RankingFilter{
		Period:  period,
		BoardID: boardID,
		Limit:   normalizeRankingLimit(query.Limit),
	})
	if err != nil {
		return Ranking{}, fmt.Errorf("load ranking: %w", err)
	}

	rows := make([]RankingRow, 0, len(entries))
	for i, entry := range entries {
		rows = append(rows, RankingRow{
			Rank:        i + 1,
			Nickname:    entry.Nickname,
			TotalBets:   entry.TotalBets,
			TotalAmount: entry.TotalAmount,
			TotalProfit: entry.TotalProfit,
			Wins:        entry.Wins,
			WinRate:     entry.WinRate(),
		})
	}

	return Ranking{
		Period:    period.Format(layout),
		BoardSlug: strings.TrimSpace(query.BoardSlug),
		Rows:      rows,
	}, nil
}

func (s *StatsService) resolveSubject(ctx context.Context, nickname, boardSlug string) (identity.User, int64, error) {
	nickname = strings.TrimSpace(nickname)
	if nickname == "" {
		return identity.User{}, 0, fmt.Errorf("%w: nickname is required", ErrInvalidInput)
	}

	user, ok, err := s.identities.GetUserByNickname(ctx, nickname)
	if err != nil {
		return identity.User{}, 0, fmt.Errorf("get user by nickname: %w", err)
	}
	if !ok {
		return identity.User{}, 0, fmt.Errorf("%w: user=%s", ErrNotFound, nickname)
	}

	boardID, err := s.resolveBoard(ctx, boardSlug)
	if err != nil {
		return identity.User{}, 0, err
	}
	return user, boardID, nil
}

// resolveBoard returns 0 for an empty slug, meaning all boards.
func (s *StatsService) resolveBoard(ctx context.Context, slug string) (int64, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return 0, nil
	}

	board, ok, err := s.identities.GetBoardBySlug(ctx, slug)
	if err != nil {
		return 0, fmt.Errorf("get board by slug: %w", err)
	}
	if !ok {
		return 0, fmt.Errorf("%w: board=%s", ErrNotFound, slug)
	}
	return board.ID, nil
}

func parseOptionalDate(raw, layout, field string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, nil
	}
	value, err := time.Parse(layout, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s must match %s", ErrInvalidInput, field, layout)
	}
	return value, nil
}

func normalizeRankingLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultRankingLimit
	case limit > MaxRankingLimit:
		return MaxRankingLimit
	default:
		return limit
	}
}

func toStatViews(rows []bettingstats.Stat, layout string) []StatView {
	out := make([]StatView, 0, len(rows))
	for _, row := range rows {
		out = append(out, StatView{
			Period:      row.Period.Format(layout),
			TotalBets:   row.TotalBets,
			TotalAmount: row.TotalAmount,
			TotalProfit: row.TotalProfit,
			Wins:        row.Wins,
			WinRate:     row.WinRate(),
		})
	}
	return out
}
