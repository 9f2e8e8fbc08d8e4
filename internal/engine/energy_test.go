package engine

import (
	"testing"

	"github.com/mansoorceksport/fitledger/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int           { return &v }
func floatPtr(v float64) *float64 { return &v }

func fullProfile(sex domain.Sex, age int, height, weight float64) domain.BodyProfile {
	return domain.BodyProfile{
		Age:           intPtr(age),
		HeightCm:      floatPtr(height),
		WeightKg:      floatPtr(weight),
		Sex:           sex,
		ActivityLevel: domain.ActivityModeratelyActive,
		FitnessGoal:   domain.GoalMaintenance,
	}
}

func TestBMI(t *testing.T) {
	bmi, ok := BMI(fullProfile(domain.SexMale, 30, 180, 80))
	require.True(t, ok)
	assert.Equal(t, 24.7, bmi)

	_, ok = BMI(domain.BodyProfile{WeightKg: floatPtr(80)})
	assert.False(t, ok, "height missing")

	_, ok = BMI(domain.BodyProfile{HeightCm: floatPtr(180), WeightKg: floatPtr(0)})
	assert.False(t, ok, "zero weight counts as missing")
}

func TestBMIMonotonic(t *testing.T) {
	prev := 1000.0
	for h := 150.0; h <= 200; h += 5 {
		bmi, ok := BMI(domain.BodyProfile{HeightCm: floatPtr(h), WeightKg: floatPtr(75)})
		require.True(t, ok)
		assert.LessOrEqual(t, bmi, prev, "height %v", h)
		prev = bmi
	}

	prev = 0
	for w := 50.0; w <= 120; w += 5 {
		bmi, ok := BMI(domain.BodyProfile{HeightCm: floatPtr(175), WeightKg: floatPtr(w)})
		require.True(t, ok)
		assert.GreaterOrEqual(t, bmi, prev, "weight %v", w)
		prev = bmi
	}
}

func TestBMRAndTDEE(t *testing.T) {
	male := fullProfile(domain.SexMale, 30, 180, 80)
	bmr, ok := BMR(male)
	require.True(t, ok)
	assert.Equal(t, 1780.0, bmr)

	tdee, ok := TDEE(male)
	require.True(t, ok)
	assert.InDelta(t, 2759.0, tdee, 1e-9)

	female := fullProfile(domain.SexFemale, 25, 165, 60)
	female.ActivityLevel = domain.ActivitySedentary
	bmr, ok = BMR(female)
	require.True(t, ok)
	assert.InDelta(t, 1345.3, bmr, 1e-9)

	tdee, ok = TDEE(female)
	require.True(t, ok)
	assert.InDelta(t, 1614.3, tdee, 1e-9)

	_, ok = BMR(domain.BodyProfile{HeightCm: floatPtr(180), WeightKg: floatPtr(80)})
	assert.False(t, ok)
}

func TestDailyCalorieGoal(t *testing.T) {
	tests := []struct {
		name    string
		profile domain.BodyProfile
		want    int
	}{
		{
			name:    "male moderately active maintenance",
			profile: fullProfile(domain.SexMale, 30, 180, 80),
			want:    2759,
		},
		{
			name: "male weight loss",
			profile: func() domain.BodyProfile {
				p := fullProfile(domain.SexMale, 30, 180, 80)
				p.FitnessGoal = domain.GoalWeightLoss
				return p
			}(),
			want: 2259,
		},
		{
			name: "female sedentary weight gain",
			profile: func() domain.BodyProfile {
				p := fullProfile(domain.SexFemale, 25, 165, 60)
				p.ActivityLevel = domain.ActivitySedentary
				p.FitnessGoal = domain.GoalWeightGain
				return p
			}(),
			want: 2114,
		},
		{
			name: "unspecified sex uses the non-male branch",
			profile: func() domain.BodyProfile {
				p := fullProfile(domain.SexUnspecified, 25, 165, 60)
				p.ActivityLevel = domain.ActivitySedentary
				return p
			}(),
			want: 1614,
		},
		{
			name: "unknown activity level defaults to 1.55",
			profile: func() domain.BodyProfile {
				p := fullProfile(domain.SexMale, 30, 180, 80)
				p.ActivityLevel = "couch"
				return p
			}(),
			want: 2759,
		},
		{
			name: "muscle gain has no adjustment",
			profile: func() domain.BodyProfile {
				p := fullProfile(domain.SexMale, 30, 180, 80)
				p.FitnessGoal = domain.GoalMuscleGain
				return p
			}(),
			want: 2759,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DailyCalorieGoal(tt.profile))
		})
	}
}

func TestDailyCalorieGoalDefaultsWhenIncomplete(t *testing.T) {
	base := fullProfile(domain.SexMale, 30, 180, 80)

	noAge := base
	noAge.Age = nil
	noHeight := base
	noHeight.HeightCm = nil
	noWeight := base
	noWeight.WeightKg = nil
	noSex := base
	noSex.Sex = ""

	for name, p := range map[string]domain.BodyProfile{
		"age": noAge, "height": noHeight, "weight": noWeight, "sex": noSex, "empty": {},
	} {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, DefaultDailyCalorieGoal, DailyCalorieGoal(p))
		})
	}
}

func TestProfileMetrics(t *testing.T) {
	m := ProfileMetrics(fullProfile(domain.SexMale, 30, 180, 80))
	require.NotNil(t, m.BMI)
	require.NotNil(t, m.BMR)
	require.NotNil(t, m.TDEE)
	assert.Equal(t, 24.7, *m.BMI)
	assert.Equal(t, 2759, m.DailyCalorieGoal)

	partial := ProfileMetrics(domain.BodyProfile{HeightCm: floatPtr(180), WeightKg: floatPtr(80)})
	assert.NotNil(t, partial.BMI)
	assert.Nil(t, partial.BMR)
	assert.Nil(t, partial.TDEE)
	assert.Equal(t, DefaultDailyCalorieGoal, partial.DailyCalorieGoal)
}

func TestActivityAndGoalTables(t *testing.T) {
	assert.Equal(t, 1.2, ActivityMultiplier(domain.ActivitySedentary))
	assert.Equal(t, 1.9, ActivityMultiplier(domain.ActivityExtraActive))
	assert.Equal(t, 1.55, ActivityMultiplier(""))
	assert.Equal(t, -500.0, GoalAdjustment(domain.GoalWeightLoss))
	assert.Equal(t, 0.0, GoalAdjustment(domain.GoalEndurance))
}
