package service

import (
	"context"
	"fmt"
	"time"

	"github.com/mansoorceksport/fitledger/internal/domain"
	"github.com/mansoorceksport/fitledger/internal/engine"
	"golang.org/x/sync/errgroup"
)

// DashboardSummary is the member's home screen: today's energy balance and the metrics around it
type DashboardSummary struct {
	Date          time.Time                  `json:"date"`
	Metrics       *domain.ProfileMetrics     `json:"metrics"`
	EnergyBalance *domain.EnergyBalance      `json:"energy_balance"`
	Water         *domain.WaterProgress      `json:"water"`
	WorkoutStreak int                        `json:"workout_streak"`
	ActiveGoals   []*domain.GoalWithProgress `json:"active_goals"`
	Workouts      []*domain.Workout          `json:"workouts"`
}

// DashboardService aggregates the per-user views of the other services
type DashboardService struct {
	profiles  *ProfileService
	workouts  *WorkoutService
	nutrition *NutritionService
	goals     *GoalService
}

// NewDashboardService creates a new DashboardService instance
func NewDashboardService(profiles *ProfileService, workouts *WorkoutService, nutrition *NutritionService, goals *GoalService) *DashboardService {
	return &DashboardService{
		profiles:  profiles,
		workouts:  workouts,
		nutrition: nutrition,
		goals:     goals,
	}
}

// GetSummary fetches every section concurrently for the given day
func (s *DashboardService) GetSummary(ctx context.Context, userID string, date time.Time) (*DashboardSummary, error) {
	day := engine.DateOf(date)
	summary := &DashboardSummary{Date: day}

	// Use errgroup for concurrent fetching
	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		metrics, err := s.profiles.GetMetrics(gCtx, userID)
		if err != nil {
			return fmt.Errorf("profile metrics: %w", err)
		}
		summary.Metrics = metrics
		return nil
	})

	g.Go(func() error {
		balance, err := s.nutrition.DailySummary(gCtx, userID, day)
		if err != nil {
			return fmt.Errorf("energy balance: %w", err)
		}
		summary.EnergyBalance = balance
		return nil
	})

	g.Go(func() error {
		water, err := s.nutrition.GetWater(gCtx, userID, day)
		if err != nil {
			return fmt.Errorf("water: %w", err)
		}
		summary.Water = water
		return nil
	})

	g.Go(func() error {
		streak, err := s.workouts.Streak(gCtx, userID, day)
		if err != nil {
			return fmt.Errorf("streak: %w", err)
		}
		summary.WorkoutStreak = streak
		return nil
	})

	g.Go(func() error {
		goals, err := s.goals.List(gCtx, userID, domain.GoalStatusActive)
		if err != nil {
			return fmt.Errorf("goals: %w", err)
		}
		summary.ActiveGoals = goals
		return nil
	})

	g.Go(func() error {
		workouts, err := s.workouts.List(gCtx, userID, day, day)
		if err != nil {
			return fmt.Errorf("workouts: %w", err)
		}
		summary.Workouts = workouts
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return summary, nil
}
