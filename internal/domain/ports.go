package domain

import (
	"context"
	"errors"
	"time"
)

// ErrCacheMiss is returned by CacheRepository.Get when the key is absent
var ErrCacheMiss = errors.New("cache miss")

// CacheRepository is the read-through cache in front of derived values.
// Typed getters return nil, nil on a miss; the generic Get returns ErrCacheMiss.
type CacheRepository interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error

	GetProfileMetrics(ctx context.Context, userID string) (*ProfileMetrics, error)
	SetProfileMetrics(ctx context.Context, userID string, metrics *ProfileMetrics, ttl time.Duration) error
	InvalidateProfileMetrics(ctx context.Context, userID string) error

	GetLeaderboardPage(ctx context.Context, leaderboardID string, periodStart time.Time) (*LeaderboardPage, error)
	SetLeaderboardPage(ctx context.Context, page *LeaderboardPage, ttl time.Duration) error

	GetDailySummary(ctx context.Context, userID string, date time.Time) (*EnergyBalance, error)
	SetDailySummary(ctx context.Context, userID string, summary *EnergyBalance, ttl time.Duration) error
	InvalidateDailySummary(ctx context.Context, userID string, date time.Time) error
}

// ArchiveRepository stores immutable documents (published leaderboard periods) in object storage
type ArchiveRepository interface {
	Put(ctx context.Context, key string, body []byte, contentType string) (string, error)
}

// SequenceRepository hands out monotonic sequence numbers per named counter
type SequenceRepository interface {
	Next(ctx context.Context, name string) (int64, error)
}
