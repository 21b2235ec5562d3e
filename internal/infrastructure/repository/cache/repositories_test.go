package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/riskibarqy/wato-stats/internal/domain/bettingstats"
	"github.com/riskibarqy/wato-stats/internal/domain/identity"
	bettingstatsmock "github.com/riskibarqy/wato-stats/internal/mocks/domain/bettingstats"
	identitymock "github.com/riskibarqy/wato-stats/internal/mocks/domain/identity"
	basecache "github.com/riskibarqy/wato-stats/internal/platform/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatsRepository_CachesUntilFlush(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	next := bettingstatsmock.NewQueryRepository(t)
	repo := NewStatsRepository(next, basecache.NewStore(time.Minute))

	filter := bettingstats.Filter{UserID: 7, Limit: 12}
	first := []bettingstats.Stat{{UserID: 7, Totals: bettingstats.Totals{TotalBets: 1}}}
	second := []bettingstats.Stat{{UserID: 7, Totals: bettingstats.Totals{TotalBets: 2}}}
	next.On("ListMonthly", ctx, filter).Return(first, nil).Once()

	got, err := repo.ListMonthly(ctx, filter)
	require.NoError(t, err)
	assert.Equal(t, first, got)

	got[0].TotalBets = 99
	again, err := repo.ListMonthly(ctx, filter)
	require.NoError(t, err)
	assert.Equal(t, int64(1), again[0].TotalBets, "cached slice must not be shared with callers")

	repo.Flush(ctx)
	next.On("ListMonthly", ctx, filter).Return(second, nil).Once()
	got, err = repo.ListMonthly(ctx, filter)
	require.NoError(t, err)
	assert.Equal(t, second, got)
}

func TestStatsRepository_KeysDifferByFilter(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	next := bettingstatsmock.NewQueryRepository(t)
	repo := NewStatsRepository(next, basecache.NewStore(time.Minute))

	day := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	allBoards := bettingstats.RankingFilter{Period: day, Limit: 50}
	oneBoard := bettingstats.RankingFilter{Period: day, BoardID: 3, Limit: 50}
	next.On("RankDaily", ctx, allBoards).Return([]bettingstats.RankingEntry{{Nickname: "bob"}}, nil).Once()
	next.On("RankDaily", ctx, oneBoard).Return([]bettingstats.RankingEntry{{Nickname: "alice"}}, nil).Once()
	next.On("RankMonthly", ctx, allBoards).Return([]bettingstats.RankingEntry{}, nil).Once()

	for range 2 {
		got, err := repo.RankDaily(ctx, allBoards)
		require.NoError(t, err)
		assert.Equal(t, "bob", got[0].Nickname)

		got, err = repo.RankDaily(ctx, oneBoard)
		require.NoError(t, err)
		assert.Equal(t, "alice", got[0].Nickname)

		got, err = repo.RankMonthly(ctx, allBoards)
		require.NoError(t, err)
		assert.Empty(t, got)
	}
}

func TestStatsRepository_DoesNotCacheErrors(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	next := bettingstatsmock.NewQueryRepository(t)
	repo := NewStatsRepository(next, basecache.NewStore(time.Minute))

	filter := bettingstats.Filter{UserID: 7}
	next.On("ListDaily", ctx, filter).Return(nil, errors.New("db down")).Once()
	next.On("ListDaily", ctx, filter).Return([]bettingstats.Stat{}, nil).Once()

	_, err := repo.ListDaily(ctx, filter)
	require.Error(t, err)
	got, err := repo.ListDaily(ctx, filter)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestIdentityRepository_CachesMisses(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	next := identitymock.NewRepository(t)
	store := basecache.NewStore(time.Minute)
	repo := NewIdentityRepository(next, store)

	next.On("GetUserByNickname", ctx, "ghost").Return(identity.User{}, false, nil).Once()
	next.On("GetBoardBySlug", ctx, "pan_setkacup").Return(identity.Board{ID: 3, Slug: "pan_setkacup"}, true, nil).Once()

	for range 2 {
		_, ok, err := repo.GetUserByNickname(ctx, "ghost")
		require.NoError(t, err)
		assert.False(t, ok)

		board, ok, err := repo.GetBoardBySlug(ctx, "pan_setkacup")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, int64(3), board.ID)
	}
}
