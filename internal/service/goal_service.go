package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mansoorceksport/fitledger/internal/domain"
	"github.com/mansoorceksport/fitledger/internal/engine"
)

type GoalService struct {
	goalRepo domain.GoalRepository
	now      func() time.Time
}

func NewGoalService(goalRepo domain.GoalRepository) *GoalService {
	return &GoalService{goalRepo: goalRepo, now: time.Now}
}

func (s *GoalService) Create(ctx context.Context, userID string, goal *domain.Goal) (*domain.GoalWithProgress, error) {
	goal.Title = strings.TrimSpace(goal.Title)
	if goal.Title == "" || goal.GoalType == "" {
		return nil, fmt.Errorf("%w: goal title and type are required", domain.ErrInvalidInput)
	}
	if goal.TargetValue < 0 || goal.CurrentValue < 0 {
		return nil, fmt.Errorf("%w: goal values must not be negative", domain.ErrInvalidInput)
	}
	if goal.StartDate.IsZero() {
		goal.StartDate = s.now()
	}
	goal.StartDate = engine.DateOf(goal.StartDate)
	goal.TargetDate = engine.DateOf(goal.TargetDate)
	if goal.TargetDate.Before(goal.StartDate) {
		return nil, fmt.Errorf("%w: target date is before start date", domain.ErrInvalidInput)
	}

	goal.ID = ""
	goal.UserID = userID
	goal.Status = domain.GoalStatusActive
	if goal.TargetValue > 0 && goal.CurrentValue >= goal.TargetValue {
		goal.Status = domain.GoalStatusCompleted
	}

	if err := s.goalRepo.Create(ctx, goal); err != nil {
		return nil, fmt.Errorf("failed to create goal: %w", err)
	}
	return s.withProgress(goal), nil
}

func (s *GoalService) Get(ctx context.Context, userID, goalID string) (*domain.GoalWithProgress, error) {
	goal, err := s.owned(ctx, userID, goalID)
	if err != nil {
		return nil, err
	}
	return s.withProgress(goal), nil
}

// List returns the user's goals with live progress; an empty status lists all
func (s *GoalService) List(ctx context.Context, userID string, status domain.GoalStatus) ([]*domain.GoalWithProgress, error) {
	goals, err := s.goalRepo.ListByUser(ctx, userID, status)
	if err != nil {
		return nil, err
	}
	out := make([]*domain.GoalWithProgress, 0, len(goals))
	for _, g := range goals {
		out = append(out, s.withProgress(g))
	}
	return out, nil
}

// RecordProgress stores the day's value as the goal's current value and
// completes an active goal once the target is reached.
func (s *GoalService) RecordProgress(ctx context.Context, userID, goalID string, value float64, date time.Time, notes string) (*domain.GoalWithProgress, error) {
	if value < 0 {
		return nil, fmt.Errorf("%w: progress value must not be negative", domain.ErrInvalidInput)
	}
	goal, err := s.owned(ctx, userID, goalID)
	if err != nil {
		return nil, err
	}
	if goal.Status == domain.GoalStatusCancelled {
		return nil, fmt.Errorf("%w: goal is cancelled", domain.ErrInvalidInput)
	}
	if date.IsZero() {
		date = s.now()
	}

	entry := &domain.GoalProgress{
		GoalID: goal.ID,
		Date:   engine.DateOf(date),
		Value:  value,
		Notes:  notes,
	}
	if err := s.goalRepo.UpsertProgressEntry(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to record goal progress: %w", err)
	}

	goal.CurrentValue = value
	if goal.Status == domain.GoalStatusActive && goal.TargetValue > 0 && value >= goal.TargetValue {
		goal.Status = domain.GoalStatusCompleted
	}
	if err := s.goalRepo.UpdateProgress(ctx, goal.ID, goal.CurrentValue, goal.Status); err != nil {
		return nil, err
	}
	return s.withProgress(goal), nil
}

func (s *GoalService) UpdateStatus(ctx context.Context, userID, goalID string, status domain.GoalStatus) (*domain.GoalWithProgress, error) {
	switch status {
	case domain.GoalStatusActive, domain.GoalStatusCompleted, domain.GoalStatusPaused, domain.GoalStatusCancelled:
	default:
		return nil, fmt.Errorf("%w: unknown goal status %q", domain.ErrInvalidInput, status)
	}
	goal, err := s.owned(ctx, userID, goalID)
	if err != nil {
		return nil, err
	}
	if err := s.goalRepo.UpdateStatus(ctx, goal.ID, status); err != nil {
		return nil, err
	}
	goal.Status = status
	return s.withProgress(goal), nil
}

func (s *GoalService) owned(ctx context.Context, userID, goalID string) (*domain.Goal, error) {
	goal, err := s.goalRepo.GetByID(ctx, goalID)
	if err != nil {
		return nil, err
	}
	if goal.UserID != userID {
		return nil, domain.ErrForbidden
	}
	return goal, nil
}

func (s *GoalService) withProgress(goal *domain.Goal) *domain.GoalWithProgress {
	return &domain.GoalWithProgress{Goal: goal, Progress: engine.GoalProgress(*goal, s.now())}
}
