package cache

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/riskibarqy/wato-stats/internal/domain/bettingstats"
	"github.com/riskibarqy/wato-stats/internal/domain/identity"
	basecache "github.com/riskibarqy/wato-stats/internal/platform/cache"
)

// StatsRepository caches aggregate reads. Entries are dropped as a whole by
// Flush once an ingestion batch commits new facts.
type StatsRepository struct {
	next  bettingstats.QueryRepository
	cache *basecache.Store
}

func NewStatsRepository(next bettingstats.QueryRepository, cache *basecache.Store) *StatsRepository {
	return &StatsRepository{next: next, cache: cache}
}

func (r *StatsRepository) ListDaily(ctx context.Context, filter bettingstats.Filter) ([]bettingstats.Stat, error) {
	return r.listStats(ctx, "stats:daily:"+filterKey(filter), filter, r.next.ListDaily)
}

func (r *StatsRepository) ListMonthly(ctx context.Context, filter bettingstats.Filter) ([]bettingstats.Stat, error) {
	return r.listStats(ctx, "stats:monthly:"+filterKey(filter), filter, r.next.ListMonthly)
}

func (r *StatsRepository) RankDaily(ctx context.Context, filter bettingstats.RankingFilter) ([]bettingstats.RankingEntry, error) {
	return r.rank(ctx, "ranking:daily:"+rankingKey(filter), filter, r.next.RankDaily)
}

func (r *StatsRepository) RankMonthly(ctx context.Context, filter bettingstats.RankingFilter) ([]bettingstats.RankingEntry, error) {
	return r.rank(ctx, "ranking:monthly:"+rankingKey(filter), filter, r.next.RankMonthly)
}

func (r *StatsRepository) Flush(ctx context.Context) {
	r.cache.Flush(ctx)
}

func (r *StatsRepository) listStats(
	ctx context.Context,
	key string,
	filter bettingstats.Filter,
	load func(context.Context, bettingstats.Filter) ([]bettingstats.Stat, error),
) ([]bettingstats.Stat, error) {
	v, err := r.cache.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		items, err := load(ctx, filter)
		if err != nil {
			return nil, err
		}
		return append([]bettingstats.Stat(nil), items...), nil
	})
	if err != nil {
		return nil, err
	}

	items, _ := v.([]bettingstats.Stat)
	return append([]bettingstats.Stat(nil), items...), nil
}

func (r *StatsRepository) rank(
	ctx context.Context,
	key string,
	filter bettingstats.RankingFilter,
	load func(context.Context, bettingstats.RankingFilter) ([]bettingstats.RankingEntry, error),
) ([]bettingstats.RankingEntry, error) {
	v, err := r.cache.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		items, err := load(ctx, filter)
		if err != nil {
			return nil, err
		}
		return append([]bettingstats.RankingEntry(nil), items...), nil
	})
	if err != nil {
		return nil, err
	}

	items, _ := v.([]bettingstats.RankingEntry)
	return append([]bettingstats.RankingEntry(nil), items...), nil
}

type IdentityRepository struct {
	next  identity.Repository
	cache *basecache.Store
}

func NewIdentityRepository(next identity.Repository, cache *basecache.Store) *IdentityRepository {
	return &IdentityRepository{next: next, cache: cache}
}

func (r *IdentityRepository) GetUserByNickname(ctx context.Context, nickname string) (identity.User, bool, error) {
	v, err := r.cache.GetOrLoad(ctx, "user:nickname:"+nickname, func(ctx context.Context) (any, error) {
		item, exists, err := r.next.GetUserByNickname(ctx, nickname)
		if err != nil {
			return nil, err
		}
		return cachedUser{value: item, exists: exists}, nil
	})
	if err != nil {
		return identity.User{}, false, err
	}

	cached, _ := v.(cachedUser)
	return cached.value, cached.exists, nil
}

func (r *IdentityRepository) GetBoardBySlug(ctx context.Context, slug string) (identity.Board, bool, error) {
	v, err := r.cache.GetOrLoad(ctx, "board:slug:"+slug, func(ctx context.Context) (any, error) {
		item, exists, err := r.next.GetBoardBySlug(ctx, slug)
		if err != nil {
			return nil, err
		}
		return cachedBoard{value: item, exists: exists}, nil
	})
	if err != nil {
		return identity.Board{}, false, err
	}

	cached, _ := v.(cachedBoard)
	return cached.value, cached.exists, nil
}

type cachedUser struct {
	value  identity.User
	exists bool
}

type cachedBoard struct {
	value  identity.Board
	exists bool
}

func filterKey(filter bettingstats.Filter) string {
	return strings.Join([]string{
		strconv.FormatInt(filter.UserID, 10),
		strconv.FormatInt(filter.BoardID, 10),
		dateKey(filter.From),
		dateKey(filter.To),
		strconv.Itoa(filter.Limit),
	}, ":")
}

func rankingKey(filter bettingstats.RankingFilter) string {
	return strings.Join([]string{
		dateKey(filter.Period),
		strconv.FormatInt(filter.BoardID, 10),
		strconv.Itoa(filter.Limit),
	}, ":")
}

func dateKey(value time.Time) string {
	if value.IsZero() {
		return "-"
	}
	return value.UTC().Format(time.DateOnly)
}
