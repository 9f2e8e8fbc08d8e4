package engine

import (
	"fmt"
	"math"
	"time"

	"github.com/mansoorceksport/fitledger/internal/domain"
)

// DefaultBodyWeightKg is used for calorie burn when the profile has no weight
const DefaultBodyWeightKg = 70.0

// CaloriesBurned returns round(met * weight * minutes / 60). A nil or zero
// duration is a planned entry and burns nothing.
func CaloriesBurned(metValue, weightKg float64, durationMinutes *int) (int, error) {
	if metValue <= 0 {
		return 0, fmt.Errorf("%w: met value must be positive", domain.ErrInvalidInput)
	}
	if weightKg <= 0 {
		return 0, fmt.Errorf("%w: body weight must be positive", domain.ErrInvalidInput)
	}
	if durationMinutes == nil || *durationMinutes == 0 {
		return 0, nil
	}
	if *durationMinutes < 0 {
		return 0, fmt.Errorf("%w: duration must not be negative", domain.ErrInvalidInput)
	}
	return int(math.Round(metValue * weightKg * float64(*durationMinutes) / 60)), nil
}

// ResolveWeightSnapshot picks the body weight to freeze on a new entry
func ResolveWeightSnapshot(profileWeightKg *float64) float64 {
	if w, ok := positive(profileWeightKg); ok {
		return w
	}
	return DefaultBodyWeightKg
}

// ExerciseInput is what a caller logs for one exercise
type ExerciseInput struct {
	Sets            int
	Reps            *int
	DurationMinutes *int
	LoadKg          *float64
	DistanceMeters  *int
	Notes           string
}

// SnapshotExerciseEntry builds a workout entry with its calories frozen from
// the weight captured now. The result is stored and never recomputed on read.
func SnapshotExerciseEntry(id string, exercise domain.Exercise, weightSnapshotKg float64, in ExerciseInput, now time.Time) (*domain.WorkoutExercise, error) {
	calories, err := CaloriesBurned(exercise.METValue, weightSnapshotKg, in.DurationMinutes)
	if err != nil {
		return nil, err
	}
	sets := in.Sets
	if sets <= 0 {
		sets = 1
	}
	return &domain.WorkoutExercise{
		ID:               id,
		ExerciseID:       exercise.ID,
		Name:             exercise.Name,
		METValue:         exercise.METValue,
		Sets:             sets,
		Reps:             in.Reps,
		DurationMinutes:  in.DurationMinutes,
		LoadKg:           in.LoadKg,
		DistanceMeters:   in.DistanceMeters,
		WeightKgSnapshot: weightSnapshotKg,
		CaloriesBurned:   calories,
		Notes:            in.Notes,
		CreatedAt:        now,
	}, nil
}

// RefreezeCalories recomputes an entry's calories after its duration was edited.
// The weight snapshot taken at creation is kept.
func RefreezeCalories(entry *domain.WorkoutExercise) error {
	calories, err := CaloriesBurned(entry.METValue, entry.WeightKgSnapshot, entry.DurationMinutes)
	if err != nil {
		return err
	}
	entry.CaloriesBurned = calories
	return nil
}

// AggregateWorkout sums present durations and the frozen calories of every entry
func AggregateWorkout(entries []*domain.WorkoutExercise) domain.WorkoutAggregate {
	var agg domain.WorkoutAggregate
	for _, e := range entries {
		if e == nil {
			continue
		}
		if e.DurationMinutes != nil {
			agg.TotalDurationMinutes += *e.DurationMinutes
		}
		agg.TotalCaloriesBurned += e.CaloriesBurned
	}
	return agg
}
