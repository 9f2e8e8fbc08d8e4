package engine

import (
	"testing"
	"time"

	"github.com/mansoorceksport/fitledger/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestGoalProgress(t *testing.T) {
	today := day(2024, 1, 1)

	tests := []struct {
		name        string
		goal        domain.Goal
		wantPct     float64
		wantDays    int
		wantOverdue bool
	}{
		{
			name:     "zero target is zero percent",
			goal:     domain.Goal{TargetValue: 0, CurrentValue: 10, TargetDate: day(2024, 1, 11), Status: domain.GoalStatusActive},
			wantPct:  0,
			wantDays: 10,
		},
		{
			name:     "reached target caps at 100",
			goal:     domain.Goal{TargetValue: 100, CurrentValue: 120, TargetDate: day(2024, 1, 11), Status: domain.GoalStatusActive},
			wantPct:  100,
			wantDays: 10,
		},
		{
			name:     "exactly reached",
			goal:     domain.Goal{TargetValue: 100, CurrentValue: 100, TargetDate: day(2024, 1, 1), Status: domain.GoalStatusActive},
			wantPct:  100,
			wantDays: 0,
		},
		{
			name:     "partial",
			goal:     domain.Goal{TargetValue: 200, CurrentValue: 25, TargetDate: day(2024, 2, 1), Status: domain.GoalStatusActive},
			wantPct:  12.5,
			wantDays: 31,
		},
		{
			name:        "active past target date is overdue",
			goal:        domain.Goal{TargetValue: 10, CurrentValue: 5, TargetDate: day(2023, 12, 20), Status: domain.GoalStatusActive},
			wantPct:     50,
			wantDays:    0,
			wantOverdue: true,
		},
		{
			name:     "paused past target date is not overdue",
			goal:     domain.Goal{TargetValue: 10, CurrentValue: 5, TargetDate: day(2023, 12, 20), Status: domain.GoalStatusPaused},
			wantPct:  50,
			wantDays: 0,
		},
		{
			name:     "negative progress clamps to zero",
			goal:     domain.Goal{TargetValue: 10, CurrentValue: -5, TargetDate: day(2024, 1, 2), Status: domain.GoalStatusActive},
			wantPct:  0,
			wantDays: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := GoalProgress(tt.goal, today)
			assert.Equal(t, tt.wantPct, got.ProgressPercentage)
			assert.Equal(t, tt.wantDays, got.DaysRemaining)
			assert.Equal(t, tt.wantOverdue, got.IsOverdue)
		})
	}
}

func TestGoalProgressSameDayIsNotOverdue(t *testing.T) {
	goal := domain.Goal{TargetValue: 10, TargetDate: day(2024, 1, 1), Status: domain.GoalStatusActive}
	late := time.Date(2024, 1, 1, 23, 59, 0, 0, time.UTC)
	assert.False(t, GoalProgress(goal, late).IsOverdue)
}

func TestWaterProgress(t *testing.T) {
	p := WaterProgress(1500, 2000)
	assert.Equal(t, 75.0, p.ProgressPercentage)
	assert.Equal(t, 6.0, p.GlassesConsumed)

	over := WaterProgress(2500, 2000)
	assert.Equal(t, 100.0, over.ProgressPercentage)
	assert.Equal(t, 10.0, over.GlassesConsumed)

	noGoal := WaterProgress(500, 0)
	assert.Equal(t, 0.0, noGoal.ProgressPercentage)
	assert.Equal(t, 2.0, noGoal.GlassesConsumed)

	assert.Equal(t, 1.3, WaterProgress(333, 2000).GlassesConsumed)
}

func TestWorkoutStreak(t *testing.T) {
	d := day(2024, 5, 15)

	tests := []struct {
		name  string
		dates []time.Time
		asOf  time.Time
		want  int
	}{
		{name: "three consecutive days", dates: []time.Time{d, d.AddDate(0, 0, -1), d.AddDate(0, 0, -2)}, asOf: d, want: 3},
		{name: "as-of day missing", dates: []time.Time{d.AddDate(0, 0, -1)}, asOf: d, want: 0},
		{name: "gap ends the streak", dates: []time.Time{d, d.AddDate(0, 0, -1), d.AddDate(0, 0, -3), d.AddDate(0, 0, -4)}, asOf: d, want: 2},
		{name: "times within the day count", dates: []time.Time{d.Add(18 * time.Hour), d.Add(-2 * time.Hour)}, asOf: d.Add(9 * time.Hour), want: 2},
		{name: "duplicates on one day", dates: []time.Time{d, d.Add(time.Hour)}, asOf: d, want: 1},
		{name: "no history", dates: nil, asOf: d, want: 0},
		{name: "zero as-of", dates: []time.Time{d}, asOf: time.Time{}, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, WorkoutStreak(NewDaySet(tt.dates), tt.asOf))
		})
	}
}

func TestPeriodBounds(t *testing.T) {
	wednesday := time.Date(2024, 5, 15, 13, 45, 0, 0, time.UTC)

	start, end, err := PeriodBounds(domain.PeriodDaily, wednesday)
	require.NoError(t, err)
	assert.Equal(t, day(2024, 5, 15), start)
	assert.Equal(t, day(2024, 5, 15), end)

	start, end, err = PeriodBounds(domain.PeriodWeekly, wednesday)
	require.NoError(t, err)
	assert.Equal(t, day(2024, 5, 13), start)
	assert.Equal(t, day(2024, 5, 19), end)

	start, _, err = PeriodBounds(domain.PeriodWeekly, day(2024, 5, 19))
	require.NoError(t, err)
	assert.Equal(t, day(2024, 5, 13), start, "sunday belongs to the week that started monday")

	start, end, err = PeriodBounds(domain.PeriodMonthly, day(2024, 2, 10))
	require.NoError(t, err)
	assert.Equal(t, day(2024, 2, 1), start)
	assert.Equal(t, day(2024, 2, 29), end)

	start, end, err = PeriodBounds(domain.PeriodAllTime, wednesday)
	require.NoError(t, err)
	assert.Equal(t, day(1970, 1, 1), start)
	assert.Equal(t, day(2024, 5, 15), end)

	_, _, err = PeriodBounds("fortnightly", wednesday)
	assert.ErrorIs(t, err, domain.ErrInvalidPeriod)
}

func TestDaysBetween(t *testing.T) {
	assert.Equal(t, 10, DaysBetween(day(2024, 1, 1), day(2024, 1, 11)))
	assert.Equal(t, -1, DaysBetween(day(2024, 1, 2), day(2024, 1, 1)))
	assert.Equal(t, 1, DaysBetween(time.Date(2024, 3, 9, 23, 0, 0, 0, time.UTC), time.Date(2024, 3, 10, 1, 0, 0, 0, time.UTC)))
}
