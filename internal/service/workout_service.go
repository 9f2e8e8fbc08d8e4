package service

import (
	"context"
	"fmt"
	"time"

	"github.com/mansoorceksport/fitledger/internal/domain"
	"github.com/mansoorceksport/fitledger/internal/engine"
	"github.com/mansoorceksport/fitledger/internal/telemetry"
)

// streakWindowDays is the first lookback used when computing a streak; it doubles while the streak fills it
const streakWindowDays = 30

type WorkoutService struct {
	exerciseRepo domain.ExerciseRepository
	workoutRepo  domain.WorkoutRepository
	profiles     *ProfileService
	cache        domain.CacheRepository
	metrics      *telemetry.Metrics
	now          func() time.Time
}

func NewWorkoutService(
	exerciseRepo domain.ExerciseRepository,
	workoutRepo domain.WorkoutRepository,
	profiles *ProfileService,
	cache domain.CacheRepository,
	metrics *telemetry.Metrics,
) *WorkoutService {
	return &WorkoutService{
		exerciseRepo: exerciseRepo,
		workoutRepo:  workoutRepo,
		profiles:     profiles,
		cache:        cache,
		metrics:      metrics,
		now:          time.Now,
	}
}

// ExerciseUpdate carries the editable fields of a logged entry; nil leaves a field unchanged
type ExerciseUpdate struct {
	Sets            *int     `json:"sets"`
	Reps            *int     `json:"reps"`
	DurationMinutes *int     `json:"duration_minutes"`
	LoadKg          *float64 `json:"load_kg"`
	DistanceMeters  *int     `json:"distance_meters"`
	Notes           *string  `json:"notes"`
	PersonalRecord  *bool    `json:"personal_record"`
}

// ListExercises returns the movement library, optionally filtered by category
func (s *WorkoutService) ListExercises(ctx context.Context, category, query string) ([]*domain.Exercise, error) {
	filter := map[string]interface{}{}
	if category != "" {
		filter["category"] = category
	}
	if query != "" {
		filter["name"] = query
	}
	return s.exerciseRepo.List(ctx, filter)
}

// Create starts a new workout for the user on the given day
func (s *WorkoutService) Create(ctx context.Context, userID string, workout *domain.Workout) (*domain.Workout, error) {
	if workout.Name == "" {
		return nil, fmt.Errorf("%w: workout name is required", domain.ErrInvalidInput)
	}
	if workout.Status == "" {
		workout.Status = domain.WorkoutPlanned
	}
	if !validWorkoutStatus(workout.Status) {
		return nil, fmt.Errorf("%w: unknown workout status %q", domain.ErrInvalidInput, workout.Status)
	}
	if workout.Rating != nil && (*workout.Rating < 1 || *workout.Rating > 5) {
		return nil, fmt.Errorf("%w: rating must be between 1 and 5", domain.ErrInvalidInput)
	}
	if workout.Date.IsZero() {
		workout.Date = s.now()
	}

	workout.ID = ""
	workout.UserID = userID
	workout.Date = engine.DateOf(workout.Date)
	workout.Exercises = []*domain.WorkoutExercise{}
	workout.WorkoutAggregate = domain.WorkoutAggregate{}

	if err := s.workoutRepo.Create(ctx, workout); err != nil {
		return nil, fmt.Errorf("failed to create workout: %w", err)
	}
	s.invalidateDay(ctx, workout)
	return workout, nil
}

// Get returns one of the user's workouts
func (s *WorkoutService) Get(ctx context.Context, userID, workoutID string) (*domain.Workout, error) {
	workout, err := s.workoutRepo.GetByID(ctx, workoutID)
	if err != nil {
		return nil, err
	}
	if workout.UserID != userID {
		return nil, domain.ErrForbidden
	}
	return workout, nil
}

// List returns the user's workouts between two days, newest first
func (s *WorkoutService) List(ctx context.Context, userID string, from, to time.Time) ([]*domain.Workout, error) {
	if to.IsZero() {
		to = s.now()
	}
	if from.IsZero() {
		from = to.AddDate(0, 0, -streakWindowDays)
	}
	from, to = engine.DateOf(from), engine.DateOf(to)
	if from.After(to) {
		return nil, fmt.Errorf("%w: from is after to", domain.ErrInvalidPeriod)
	}
	workouts, err := s.workoutRepo.ListByUser(ctx, userID, from, to)
	if err != nil {
		return nil, err
	}
	if workouts == nil {
		workouts = []*domain.Workout{}
	}
	return workouts, nil
}

// AddExercise logs an exercise against the workout. Calories are frozen from
// the body weight on the profile right now (70 kg when unknown).
func (s *WorkoutService) AddExercise(ctx context.Context, userID, workoutID, exerciseID string, in engine.ExerciseInput) (*domain.WorkoutExercise, error) {
	workout, err := s.Get(ctx, userID, workoutID)
	if err != nil {
		return nil, err
	}
	if workout.Status == domain.WorkoutCancelled {
		return nil, fmt.Errorf("%w: workout is cancelled", domain.ErrInvalidInput)
	}

	exercise, err := s.exerciseRepo.GetByID(ctx, exerciseID)
	if err != nil {
		return nil, err
	}

	weight, err := s.profiles.bodyWeight(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to read body weight: %w", err)
	}

	entry, err := engine.SnapshotExerciseEntry(generateULID(), *exercise, engine.ResolveWeightSnapshot(weight), in, s.now())
	if err != nil {
		return nil, err
	}
	entry.Order = len(workout.Exercises) + 1
	workout.Exercises = append(workout.Exercises, entry)

	if err := s.saveExercises(ctx, workout); err != nil {
		return nil, err
	}
	s.metrics.RecordSnapshot(ctx, "exercise")
	return entry, nil
}

// UpdateExercise edits a logged entry. Changing the duration refreezes calories
// from the weight snapshot taken when the entry was created.
func (s *WorkoutService) UpdateExercise(ctx context.Context, userID, workoutID, entryID string, upd ExerciseUpdate) (*domain.WorkoutExercise, error) {
	workout, err := s.Get(ctx, userID, workoutID)
	if err != nil {
		return nil, err
	}
	entry, _ := workout.FindExercise(entryID)
	if entry == nil {
		return nil, domain.ErrWorkoutEntryNotFound
	}

	if upd.Sets != nil {
		if *upd.Sets < 1 {
			return nil, fmt.Errorf("%w: sets must be at least 1", domain.ErrInvalidInput)
		}
		entry.Sets = *upd.Sets
	}
	if upd.Reps != nil {
		entry.Reps = upd.Reps
	}
	if upd.LoadKg != nil {
		entry.LoadKg = upd.LoadKg
	}
	if upd.DistanceMeters != nil {
		entry.DistanceMeters = upd.DistanceMeters
	}
	if upd.Notes != nil {
		entry.Notes = *upd.Notes
	}
	if upd.PersonalRecord != nil {
		entry.PersonalRecord = *upd.PersonalRecord
	}
	if upd.DurationMinutes != nil {
		entry.DurationMinutes = upd.DurationMinutes
		if err := engine.RefreezeCalories(entry); err != nil {
			return nil, err
		}
	}

	if err := s.saveExercises(ctx, workout); err != nil {
		return nil, err
	}
	return entry, nil
}

// RemoveExercise deletes an entry and renumbers the remaining ones
func (s *WorkoutService) RemoveExercise(ctx context.Context, userID, workoutID, entryID string) (*domain.Workout, error) {
	workout, err := s.Get(ctx, userID, workoutID)
	if err != nil {
		return nil, err
	}
	_, idx := workout.FindExercise(entryID)
	if idx < 0 {
		return nil, domain.ErrWorkoutEntryNotFound
	}

	workout.Exercises = append(workout.Exercises[:idx], workout.Exercises[idx+1:]...)
	for i, e := range workout.Exercises {
		e.Order = i + 1
	}

	if err := s.saveExercises(ctx, workout); err != nil {
		return nil, err
	}
	return workout, nil
}

// SetStatus moves the workout to a new status; completed and cancelled are final
func (s *WorkoutService) SetStatus(ctx context.Context, userID, workoutID string, status domain.WorkoutStatus) (*domain.Workout, error) {
	if !validWorkoutStatus(status) {
		return nil, fmt.Errorf("%w: unknown workout status %q", domain.ErrInvalidInput, status)
	}
	workout, err := s.Get(ctx, userID, workoutID)
	if err != nil {
		return nil, err
	}
	if workout.Status == status {
		return workout, nil
	}
	if workout.Status == domain.WorkoutCompleted || workout.Status == domain.WorkoutCancelled {
		return nil, fmt.Errorf("%w: workout is already %s", domain.ErrInvalidInput, workout.Status)
	}

	if err := s.workoutRepo.UpdateStatus(ctx, workout.ID, status); err != nil {
		return nil, err
	}
	workout.Status = status
	s.invalidateDay(ctx, workout)
	return workout, nil
}

// Complete marks the workout completed; it then counts toward streaks, leaderboards and the energy balance
func (s *WorkoutService) Complete(ctx context.Context, userID, workoutID string) (*domain.Workout, error) {
	return s.SetStatus(ctx, userID, workoutID, domain.WorkoutCompleted)
}

func (s *WorkoutService) Delete(ctx context.Context, userID, workoutID string) error {
	workout, err := s.Get(ctx, userID, workoutID)
	if err != nil {
		return err
	}
	if err := s.workoutRepo.Delete(ctx, workout.ID); err != nil {
		return err
	}
	s.invalidateDay(ctx, workout)
	return nil
}

// Streak counts consecutive days with a completed workout ending on asOf
func (s *WorkoutService) Streak(ctx context.Context, userID string, asOf time.Time) (int, error) {
	if asOf.IsZero() {
		asOf = s.now()
	}
	asOf = engine.DateOf(asOf)

	window := streakWindowDays
	for {
		since := asOf.AddDate(0, 0, -window)
		dates, err := s.workoutRepo.CompletedDates(ctx, userID, since)
		if err != nil {
			return 0, fmt.Errorf("failed to load workout dates: %w", err)
		}
		streak := engine.WorkoutStreak(engine.NewDaySet(dates), asOf)
		// The window holds window+1 days; a streak that fills it may run further back
		if streak <= window || since.Before(time.Unix(0, 0)) {
			return streak, nil
		}
		window *= 2
	}
}

// RecalculateTotals rebuilds the stored aggregate of every workout of the user.
// Frozen entry calories are summed as stored. It returns how many workouts changed.
func (s *WorkoutService) RecalculateTotals(ctx context.Context, userID string) (int, error) {
	workouts, err := s.workoutRepo.ListByUser(ctx, userID, time.Unix(0, 0).UTC(), s.now())
	if err != nil {
		return 0, err
	}

	changed := 0
	for _, w := range workouts {
		agg := engine.AggregateWorkout(w.Exercises)
		if agg == w.WorkoutAggregate {
			continue
		}
		w.WorkoutAggregate = agg
		if err := s.workoutRepo.SaveExercises(ctx, w); err != nil {
			return changed, fmt.Errorf("failed to save workout %s: %w", w.ID, err)
		}
		changed++
	}
	return changed, nil
}

// saveExercises recomputes the aggregate and persists it with the entry set
func (s *WorkoutService) saveExercises(ctx context.Context, workout *domain.Workout) error {
	workout.WorkoutAggregate = engine.AggregateWorkout(workout.Exercises)
	if err := s.workoutRepo.SaveExercises(ctx, workout); err != nil {
		return fmt.Errorf("failed to save workout: %w", err)
	}
	s.invalidateDay(ctx, workout)
	return nil
}

func (s *WorkoutService) invalidateDay(ctx context.Context, workout *domain.Workout) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateDailySummary(ctx, workout.UserID, workout.Date); err != nil {
		fmt.Printf("Warning: failed to invalidate daily summary cache: %v\n", err)
	}
}

func validWorkoutStatus(status domain.WorkoutStatus) bool {
	switch status {
	case domain.WorkoutPlanned, domain.WorkoutInProgress, domain.WorkoutCompleted, domain.WorkoutCancelled:
		return true
	}
	return false
}
