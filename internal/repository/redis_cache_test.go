package repository

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/mansoorceksport/fitledger/internal/domain"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRedis(t *testing.T) (*miniredis.Miniredis, *RedisCacheRepository) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, NewRedisCacheRepository(client)
}

func TestRedisCacheGenericMiss(t *testing.T) {
	_, cache := setupRedis(t)

	var dest map[string]int
	err := cache.Get(context.Background(), "missing", &dest)
	assert.ErrorIs(t, err, domain.ErrCacheMiss)
}

func TestRedisCacheProfileMetrics(t *testing.T) {
	mr, cache := setupRedis(t)
	ctx := context.Background()

	got, err := cache.GetProfileMetrics(ctx, "user-1")
	require.NoError(t, err)
	assert.Nil(t, got)

	bmi := 24.7
	require.NoError(t, cache.SetProfileMetrics(ctx, "user-1", &domain.ProfileMetrics{BMI: &bmi, DailyCalorieGoal: 2759}, time.Minute))
	assert.True(t, mr.Exists("profile:metrics:user-1"))

	got, err = cache.GetProfileMetrics(ctx, "user-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 2759, got.DailyCalorieGoal)
	assert.Equal(t, 24.7, *got.BMI)

	mr.FastForward(2 * time.Minute)
	got, err = cache.GetProfileMetrics(ctx, "user-1")
	require.NoError(t, err)
	assert.Nil(t, got, "entry expires with its ttl")
}

func TestRedisCacheLeaderboardPage(t *testing.T) {
	mr, cache := setupRedis(t)
	ctx := context.Background()
	start := time.Date(2024, 5, 13, 0, 0, 0, 0, time.UTC)

	page := &domain.LeaderboardPage{
		Leaderboard: &domain.Leaderboard{ID: "lb-1", Name: "Weekly burn"},
		PeriodStart: start,
		PeriodEnd:   start.AddDate(0, 0, 6),
		Entries:     []domain.LeaderboardEntry{{UserID: "u1", Rank: 1, Score: 900}},
	}
	require.NoError(t, cache.SetLeaderboardPage(ctx, page, time.Hour))
	assert.True(t, mr.Exists("leaderboard:page:lb-1:2024-05-13"))

	got, err := cache.GetLeaderboardPage(ctx, "lb-1", start)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Len(t, got.Entries, 1)
	assert.Equal(t, 900.0, got.Entries[0].Score)
}

func TestRedisCacheDailySummaryInvalidate(t *testing.T) {
	mr, cache := setupRedis(t)
	ctx := context.Background()
	day := time.Date(2024, 5, 15, 0, 0, 0, 0, time.UTC)

	require.NoError(t, cache.SetDailySummary(ctx, "user-1", &domain.EnergyBalance{Date: day, DailyCalorieGoal: 2000}, time.Hour))
	require.NoError(t, cache.InvalidateDailySummary(ctx, "user-1", day))
	assert.False(t, mr.Exists("nutrition:daily:user-1:2024-05-15"))

	require.NoError(t, cache.Set(ctx, "leaderboard:page:a:1", 1, time.Hour))
	require.NoError(t, cache.Set(ctx, "leaderboard:page:b:1", 2, time.Hour))
	require.NoError(t, cache.DeleteByPattern(ctx, "leaderboard:page:*"))
	assert.Empty(t, mr.Keys())
}
