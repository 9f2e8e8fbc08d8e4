package domain

import (
	"context"
	"errors"
	"time"
)

var (
	ErrWorkoutNotFound      = errors.New("workout not found")
	ErrWorkoutEntryNotFound = errors.New("workout exercise entry not found")
)

type WorkoutStatus string

const (
	WorkoutPlanned    WorkoutStatus = "planned"
	WorkoutInProgress WorkoutStatus = "in_progress"
	WorkoutCompleted  WorkoutStatus = "completed"
	WorkoutCancelled  WorkoutStatus = "cancelled"
)

// WorkoutExercise is one logged exercise inside a workout.
// WeightKgSnapshot is the body weight captured when the entry was created and
// CaloriesBurned is frozen from it; neither is refreshed on read.
type WorkoutExercise struct {
	ID               string    `json:"id" bson:"id"` // ULID
	ExerciseID       string    `json:"exercise_id" bson:"exercise_id"`
	Name             string    `json:"name" bson:"name"` // Denormalized for easy display
	METValue         float64   `json:"met_value" bson:"met_value"`
	Sets             int       `json:"sets" bson:"sets"`
	Reps             *int      `json:"reps,omitempty" bson:"reps,omitempty"`
	DurationMinutes  *int      `json:"duration_minutes,omitempty" bson:"duration_minutes,omitempty"`
	LoadKg           *float64  `json:"load_kg,omitempty" bson:"load_kg,omitempty"`
	DistanceMeters   *int      `json:"distance_meters,omitempty" bson:"distance_meters,omitempty"`
	WeightKgSnapshot float64   `json:"weight_kg_snapshot" bson:"weight_kg_snapshot"`
	CaloriesBurned   int       `json:"calories_burned" bson:"calories_burned"`
	Order            int       `json:"order" bson:"order"`
	Notes            string    `json:"notes,omitempty" bson:"notes,omitempty"`
	PersonalRecord   bool      `json:"personal_record" bson:"personal_record"`
	CreatedAt        time.Time `json:"created_at" bson:"created_at"`
}

// WorkoutAggregate is the persisted rollup of a workout's exercise entries
type WorkoutAggregate struct {
	TotalDurationMinutes int `json:"total_duration_minutes" bson:"total_duration_minutes"`
	TotalCaloriesBurned  int `json:"total_calories_burned" bson:"total_calories_burned"`
}

type Workout struct {
	ID               string             `json:"id" bson:"_id,omitempty"`
	UserID           string             `json:"user_id" bson:"user_id"`
	Name             string             `json:"name" bson:"name"`
	Date             time.Time          `json:"date" bson:"date"` // Calendar day, UTC midnight
	Status           WorkoutStatus      `json:"status" bson:"status"`
	Exercises        []*WorkoutExercise `json:"exercises" bson:"exercises"`
	WorkoutAggregate `bson:",inline"`
	Rating           *int      `json:"rating,omitempty" bson:"rating,omitempty"`
	Notes            string    `json:"notes,omitempty" bson:"notes,omitempty"`
	CreatedAt        time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt        time.Time `json:"updated_at" bson:"updated_at"`
}

// FindExercise returns the entry with the given ID and its index
func (w *Workout) FindExercise(entryID string) (*WorkoutExercise, int) {
	for i, e := range w.Exercises {
		if e.ID == entryID {
			return e, i
		}
	}
	return nil, -1
}

type WorkoutRepository interface {
	Create(ctx context.Context, workout *Workout) error
	GetByID(ctx context.Context, id string) (*Workout, error)
	ListByUser(ctx context.Context, userID string, from, to time.Time) ([]*Workout, error)
	// SaveExercises overwrites the entry set together with its recomputed aggregate
	SaveExercises(ctx context.Context, workout *Workout) error
	UpdateStatus(ctx context.Context, id string, status WorkoutStatus) error
	Delete(ctx context.Context, id string) error
	// CompletedDates returns the distinct days on which the user completed a workout, newest first
	CompletedDates(ctx context.Context, userID string, since time.Time) ([]time.Time, error)
	// ListCompletedBetween returns completed workouts of every user inside [from, to]
	ListCompletedBetween(ctx context.Context, from, to time.Time) ([]*Workout, error)
}
