package domain

import (
	"context"
	"errors"
	"time"
)

var ErrLeaderboardNotFound = errors.New("leaderboard not found")

type LeaderboardType string

const (
	LeaderboardGlobalCalories    LeaderboardType = "global_calories"
	LeaderboardGlobalWorkouts    LeaderboardType = "global_workouts"
	LeaderboardWeeklyActive      LeaderboardType = "weekly_active"
	LeaderboardMonthlyConsistent LeaderboardType = "monthly_consistent"
	LeaderboardChallenge         LeaderboardType = "challenge_specific"
)

type TimePeriod string

const (
	PeriodDaily   TimePeriod = "daily"
	PeriodWeekly  TimePeriod = "weekly"
	PeriodMonthly TimePeriod = "monthly"
	PeriodAllTime TimePeriod = "all_time"
)

type Leaderboard struct {
	ID              string          `json:"id" bson:"_id,omitempty"`
	Name            string          `json:"name" bson:"name"`
	Description     string          `json:"description,omitempty" bson:"description,omitempty"`
	LeaderboardType LeaderboardType `json:"leaderboard_type" bson:"leaderboard_type"`
	TimePeriod      TimePeriod      `json:"time_period" bson:"time_period"`
	MaxEntries      int             `json:"max_entries" bson:"max_entries"`
	ChallengeID     string          `json:"challenge_id,omitempty" bson:"challenge_id,omitempty"`
	IsActive        bool            `json:"is_active" bson:"is_active"`
	CreatedAt       time.Time       `json:"created_at" bson:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at" bson:"updated_at"`
}

// LeaderboardEntry is unique per (leaderboard, user, period start)
type LeaderboardEntry struct {
	ID            string    `json:"id" bson:"_id,omitempty"`
	LeaderboardID string    `json:"leaderboard_id" bson:"leaderboard_id"`
	UserID        string    `json:"user_id" bson:"user_id"`
	Rank          int       `json:"rank" bson:"rank"`
	Score         float64   `json:"score" bson:"score"`
	PeriodStart   time.Time `json:"period_start" bson:"period_start"`
	PeriodEnd     time.Time `json:"period_end" bson:"period_end"`
	CreatedAt     time.Time `json:"created_at" bson:"created_at"`
}

// UserScore is one user's score for a period. FirstActivityAt and Seq break ties between equal scores.
type UserScore struct {
	UserID          string
	Score           float64
	FirstActivityAt time.Time
	Seq             int64
}

// LeaderboardPage is a published period as served to clients
type LeaderboardPage struct {
	Leaderboard *Leaderboard       `json:"leaderboard"`
	PeriodStart time.Time          `json:"period_start"`
	PeriodEnd   time.Time          `json:"period_end"`
	Entries     []LeaderboardEntry `json:"entries"`
	ArchiveURL  string             `json:"archive_url,omitempty"`
}

type LeaderboardRepository interface {
	Create(ctx context.Context, lb *Leaderboard) error
	GetByID(ctx context.Context, id string) (*Leaderboard, error)
	ListActive(ctx context.Context) ([]*Leaderboard, error)
	// ReplaceEntries swaps the stored entries of one period for the given set
	ReplaceEntries(ctx context.Context, leaderboardID string, periodStart time.Time, entries []LeaderboardEntry) error
	GetEntries(ctx context.Context, leaderboardID string, periodStart time.Time) ([]LeaderboardEntry, error)
}
