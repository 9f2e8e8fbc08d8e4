package engine

import (
	"math"

	"github.com/mansoorceksport/fitledger/internal/domain"
)

// DefaultDailyCalorieGoal is returned whenever the profile is missing age, weight, height or sex
const DefaultDailyCalorieGoal = 2000

const defaultActivityMultiplier = 1.55

var activityMultipliers = map[domain.ActivityLevel]float64{
	domain.ActivitySedentary:        1.2,
	domain.ActivityLightlyActive:    1.375,
	domain.ActivityModeratelyActive: 1.55,
	domain.ActivityVeryActive:       1.725,
	domain.ActivityExtraActive:      1.9,
}

var goalAdjustments = map[domain.FitnessGoal]float64{
	domain.GoalWeightLoss: -500,
	domain.GoalWeightGain: 500,
}

// ActivityMultiplier returns the TDEE factor for a level, 1.55 when the level is unknown
func ActivityMultiplier(level domain.ActivityLevel) float64 {
	if m, ok := activityMultipliers[level]; ok {
		return m
	}
	return defaultActivityMultiplier
}

// GoalAdjustment returns the daily kcal offset applied for a fitness goal
func GoalAdjustment(goal domain.FitnessGoal) float64 {
	return goalAdjustments[goal]
}

func positive(v *float64) (float64, bool) {
	if v == nil || *v <= 0 {
		return 0, false
	}
	return *v, true
}

// BMI returns weight / height(m)^2 rounded to 1 decimal place
func BMI(p domain.BodyProfile) (float64, bool) {
	height, okH := positive(p.HeightCm)
	weight, okW := positive(p.WeightKg)
	if !okH || !okW {
		return 0, false
	}
	heightM := height / 100
	return roundTo(weight/(heightM*heightM), 1), true
}

// bmr is the unrounded Mifflin-St Jeor value
func bmr(p domain.BodyProfile) (float64, bool) {
	height, okH := positive(p.HeightCm)
	weight, okW := positive(p.WeightKg)
	if !okH || !okW || p.Age == nil || *p.Age <= 0 || p.Sex == "" {
		return 0, false
	}
	base := 10*weight + 6.25*height - 5*float64(*p.Age)
	if p.Sex == domain.SexMale {
		return base + 5, true
	}
	return base - 161, true
}

// BMR returns the Mifflin-St Jeor basal metabolic rate, rounded to 1 decimal place.
// Males get +5, every other sex value -161.
func BMR(p domain.BodyProfile) (float64, bool) {
	v, ok := bmr(p)
	if !ok {
		return 0, false
	}
	return roundTo(v, 1), true
}

// TDEE returns BMR times the activity multiplier, rounded to 1 decimal place
func TDEE(p domain.BodyProfile) (float64, bool) {
	v, ok := bmr(p)
	if !ok {
		return 0, false
	}
	return roundTo(v*ActivityMultiplier(p.ActivityLevel), 1), true
}

// DailyCalorieGoal returns TDEE plus the goal adjustment, rounded to an integer.
// Incomplete profiles get DefaultDailyCalorieGoal.
func DailyCalorieGoal(p domain.BodyProfile) int {
	v, ok := bmr(p)
	if !ok {
		return DefaultDailyCalorieGoal
	}
	return int(math.Round(v*ActivityMultiplier(p.ActivityLevel) + GoalAdjustment(p.FitnessGoal)))
}

// ProfileMetrics bundles the live profile view
func ProfileMetrics(p domain.BodyProfile) domain.ProfileMetrics {
	m := domain.ProfileMetrics{DailyCalorieGoal: DailyCalorieGoal(p)}
	if v, ok := BMI(p); ok {
		m.BMI = &v
	}
	if v, ok := BMR(p); ok {
		m.BMR = &v
	}
	if v, ok := TDEE(p); ok {
		m.TDEE = &v
	}
	return m
}
