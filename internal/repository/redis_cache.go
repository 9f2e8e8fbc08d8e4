package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/mansoorceksport/fitledger/internal/domain"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	profileMetricsKeyPrefix  = "profile:metrics:"
	leaderboardPageKeyPrefix = "leaderboard:page:"
	dailySummaryKeyPrefix    = "nutrition:daily:"
)

// RedisCacheRepository implements domain.CacheRepository using Redis
type RedisCacheRepository struct {
	client *redis.Client
}

// NewRedisCacheRepository creates a new Redis cache repository
func NewRedisCacheRepository(client *redis.Client) *RedisCacheRepository {
	return &RedisCacheRepository{
		client: client,
	}
}

func leaderboardPageKey(leaderboardID string, periodStart time.Time) string {
	return leaderboardPageKeyPrefix + leaderboardID + ":" + periodStart.UTC().Format(time.DateOnly)
}

func dailySummaryKey(userID string, date time.Time) string {
	return dailySummaryKeyPrefix + userID + ":" + date.UTC().Format(time.DateOnly)
}

// =============================================================================
// Generic Cache Operations with OpenTelemetry Tracing
// =============================================================================

// Get retrieves a value from cache by key with OTel tracing
func (r *RedisCacheRepository) Get(ctx context.Context, key string, dest interface{}) error {
	tracer := otel.Tracer("redis")
	ctx, span := tracer.Start(ctx, "redis.Get",
		trace.WithAttributes(attribute.String("cache.key", key)),
	)
	defer span.End()

	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			span.SetAttributes(attribute.String("cache.result", "miss"))
			return domain.ErrCacheMiss
		}
		span.RecordError(err)
		return fmt.Errorf("redis get error: %w", err)
	}

	span.SetAttributes(attribute.String("cache.result", "hit"))
	if err := json.Unmarshal(data, dest); err != nil {
		span.RecordError(err)
		return fmt.Errorf("unmarshal error: %w", err)
	}

	return nil
}

// Set stores a value in cache with TTL and OTel tracing
func (r *RedisCacheRepository) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	tracer := otel.Tracer("redis")
	ctx, span := tracer.Start(ctx, "redis.Set",
		trace.WithAttributes(
			attribute.String("cache.key", key),
			attribute.Int64("cache.ttl_seconds", int64(ttl.Seconds())),
		),
	)
	defer span.End()

	data, err := json.Marshal(value)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("marshal error: %w", err)
	}

	if err := r.client.Set(ctx, key, data, ttl).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("redis set error: %w", err)
	}

	return nil
}

// Delete removes keys from cache with OTel tracing
func (r *RedisCacheRepository) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}

	tracer := otel.Tracer("redis")
	ctx, span := tracer.Start(ctx, "redis.Delete",
		trace.WithAttributes(attribute.Int("cache.key_count", len(keys))),
	)
	defer span.End()

	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("redis delete error: %w", err)
	}

	return nil
}

// DeleteByPattern removes keys matching a pattern (use sparingly - O(N))
func (r *RedisCacheRepository) DeleteByPattern(ctx context.Context, pattern string) error {
	tracer := otel.Tracer("redis")
	ctx, span := tracer.Start(ctx, "redis.DeleteByPattern",
		trace.WithAttributes(attribute.String("cache.pattern", pattern)),
	)
	defer span.End()

	keys, err := r.client.Keys(ctx, pattern).Result()
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("redis keys error: %w", err)
	}

	if len(keys) == 0 {
		return nil
	}

	span.SetAttributes(attribute.Int("cache.matched_keys", len(keys)))
	return r.client.Del(ctx, keys...).Err()
}

// getTyped wraps Get and turns a miss into nil, nil
func getTyped[T any](ctx context.Context, r *RedisCacheRepository, key string) (*T, error) {
	var v T
	if err := r.Get(ctx, key, &v); err != nil {
		if errors.Is(err, domain.ErrCacheMiss) {
			return nil, nil
		}
		return nil, err
	}
	return &v, nil
}

// =============================================================================
// Derived Value Caching Methods
// =============================================================================

// GetProfileMetrics retrieves the cached bmi/bmr/tdee view for a user
func (r *RedisCacheRepository) GetProfileMetrics(ctx context.Context, userID string) (*domain.ProfileMetrics, error) {
	return getTyped[domain.ProfileMetrics](ctx, r, profileMetricsKeyPrefix+userID)
}

// SetProfileMetrics caches the profile metrics for a user
func (r *RedisCacheRepository) SetProfileMetrics(ctx context.Context, userID string, metrics *domain.ProfileMetrics, ttl time.Duration) error {
	return r.Set(ctx, profileMetricsKeyPrefix+userID, metrics, ttl)
}

// InvalidateProfileMetrics removes cached metrics after a profile change
func (r *RedisCacheRepository) InvalidateProfileMetrics(ctx context.Context, userID string) error {
	return r.Delete(ctx, profileMetricsKeyPrefix+userID)
}

// GetLeaderboardPage retrieves a published leaderboard period
func (r *RedisCacheRepository) GetLeaderboardPage(ctx context.Context, leaderboardID string, periodStart time.Time) (*domain.LeaderboardPage, error) {
	return getTyped[domain.LeaderboardPage](ctx, r, leaderboardPageKey(leaderboardID, periodStart))
}

// SetLeaderboardPage caches a published leaderboard period
func (r *RedisCacheRepository) SetLeaderboardPage(ctx context.Context, page *domain.LeaderboardPage, ttl time.Duration) error {
	return r.Set(ctx, leaderboardPageKey(page.Leaderboard.ID, page.PeriodStart), page, ttl)
}

// GetDailySummary retrieves a user's cached energy balance for a day
func (r *RedisCacheRepository) GetDailySummary(ctx context.Context, userID string, date time.Time) (*domain.EnergyBalance, error) {
	return getTyped[domain.EnergyBalance](ctx, r, dailySummaryKey(userID, date))
}

// SetDailySummary caches a user's energy balance for a day
func (r *RedisCacheRepository) SetDailySummary(ctx context.Context, userID string, summary *domain.EnergyBalance, ttl time.Duration) error {
	return r.Set(ctx, dailySummaryKey(userID, summary.Date), summary, ttl)
}

// InvalidateDailySummary removes the cached balance after a meal or workout change
func (r *RedisCacheRepository) InvalidateDailySummary(ctx context.Context, userID string, date time.Time) error {
	return r.Delete(ctx, dailySummaryKey(userID, date))
}
