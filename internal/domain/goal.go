package domain

import (
	"context"
	"errors"
	"time"
)

var ErrGoalNotFound = errors.New("goal not found")

type GoalStatus string

const (
	GoalStatusActive    GoalStatus = "active"
	GoalStatusCompleted GoalStatus = "completed"
	GoalStatusPaused    GoalStatus = "paused"
	GoalStatusCancelled GoalStatus = "cancelled"
)

// Goal is a user target such as weight loss, steps or workout frequency
type Goal struct {
	ID           string     `json:"id" bson:"_id,omitempty"`
	UserID       string     `json:"user_id" bson:"user_id"`
	GoalType     string     `json:"goal_type" bson:"goal_type"`
	Title        string     `json:"title" bson:"title"`
	Description  string     `json:"description,omitempty" bson:"description,omitempty"`
	TargetValue  float64    `json:"target_value" bson:"target_value"`
	CurrentValue float64    `json:"current_value" bson:"current_value"`
	Unit         string     `json:"unit" bson:"unit"`
	StartDate    time.Time  `json:"start_date" bson:"start_date"`
	TargetDate   time.Time  `json:"target_date" bson:"target_date"`
	Status       GoalStatus `json:"status" bson:"status"`
	IsDailyGoal  bool       `json:"is_daily_goal" bson:"is_daily_goal"`
	CreatedAt    time.Time  `json:"created_at" bson:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at" bson:"updated_at"`
}

// GoalProgress is a dated sample recorded against a goal; one per goal per day
type GoalProgress struct {
	ID        string    `json:"id" bson:"_id,omitempty"`
	GoalID    string    `json:"goal_id" bson:"goal_id"`
	Date      time.Time `json:"date" bson:"date"`
	Value     float64   `json:"value" bson:"value"`
	Notes     string    `json:"notes,omitempty" bson:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}

// GoalProgressView is the always-live progress of a goal as of a given day
type GoalProgressView struct {
	ProgressPercentage float64 `json:"progress_percentage"`
	DaysRemaining      int     `json:"days_remaining"`
	IsOverdue          bool    `json:"is_overdue"`
}

type GoalWithProgress struct {
	*Goal
	Progress GoalProgressView `json:"progress"`
}

type GoalRepository interface {
	Create(ctx context.Context, goal *Goal) error
	GetByID(ctx context.Context, id string) (*Goal, error)
	ListByUser(ctx context.Context, userID string, status GoalStatus) ([]*Goal, error)
	UpdateProgress(ctx context.Context, id string, currentValue float64, status GoalStatus) error
	UpdateStatus(ctx context.Context, id string, status GoalStatus) error
	// UpsertProgressEntry records the day's sample, replacing an earlier one for the same date
	UpsertProgressEntry(ctx context.Context, entry *GoalProgress) error
}
