package domain

import (
	"context"
	"errors"
	"time"
)

var ErrProfileNotFound = errors.New("body profile not found")

type Sex string

const (
	SexMale        Sex = "male"
	SexFemale      Sex = "female"
	SexOther       Sex = "other"
	SexUnspecified Sex = "unspecified" // "prefer not to say"; still counts as provided
)

type ActivityLevel string

const (
	ActivitySedentary        ActivityLevel = "sedentary"
	ActivityLightlyActive    ActivityLevel = "lightly_active"
	ActivityModeratelyActive ActivityLevel = "moderately_active"
	ActivityVeryActive       ActivityLevel = "very_active"
	ActivityExtraActive      ActivityLevel = "extra_active"
)

type FitnessGoal string

const (
	GoalWeightLoss  FitnessGoal = "weight_loss"
	GoalWeightGain  FitnessGoal = "weight_gain"
	GoalMuscleGain  FitnessGoal = "muscle_gain"
	GoalMaintenance FitnessGoal = "maintenance"
	GoalEndurance   FitnessGoal = "endurance"
	GoalStrength    FitnessGoal = "strength"
)

// BodyProfile holds the body and lifestyle attributes the energy calculations read.
// Nil pointers (and an empty Sex) mean the user has not provided the value.
type BodyProfile struct {
	ID            string        `json:"id" bson:"_id,omitempty"`
	UserID        string        `json:"user_id" bson:"user_id"`
	Age           *int          `json:"age,omitempty" bson:"age,omitempty"`
	HeightCm      *float64      `json:"height_cm,omitempty" bson:"height_cm,omitempty"`
	WeightKg      *float64      `json:"weight_kg,omitempty" bson:"weight_kg,omitempty"`
	Sex           Sex           `json:"sex,omitempty" bson:"sex,omitempty"`
	ActivityLevel ActivityLevel `json:"activity_level" bson:"activity_level"`
	FitnessGoal   FitnessGoal   `json:"fitness_goal" bson:"fitness_goal"`
	CreatedAt     time.Time     `json:"created_at" bson:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at" bson:"updated_at"`
}

// ProfileMetrics is the always-live view derived from a BodyProfile. Nil fields are unavailable.
type ProfileMetrics struct {
	BMI              *float64 `json:"bmi"`
	BMR              *float64 `json:"bmr"`
	TDEE             *float64 `json:"tdee"`
	DailyCalorieGoal int      `json:"daily_calorie_goal"`
}

type ProfileRepository interface {
	GetByUserID(ctx context.Context, userID string) (*BodyProfile, error)
	Upsert(ctx context.Context, profile *BodyProfile) error
}
