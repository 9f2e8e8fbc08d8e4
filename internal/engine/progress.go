package engine

import (
	"fmt"
	"math"
	"time"

	"github.com/mansoorceksport/fitledger/internal/domain"
)

// GlassMl is the volume of one standard glass of water
const GlassMl = 250.0

// DateOf truncates t to its calendar day at UTC midnight
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the whole calendar days from a to b, negative when b is earlier
func DaysBetween(a, b time.Time) int {
	return int(math.Round(DateOf(b).Sub(DateOf(a)).Hours() / 24))
}

// Percentage applies the clamp rule shared by goals and challenges, rounded to 1 decimal place
func Percentage(current, target float64) float64 {
	return roundTo(clampPercentage(current, target), 1)
}

// GoalProgress computes the live progress view of a goal on the given day
func GoalProgress(goal domain.Goal, today time.Time) domain.GoalProgressView {
	left := DaysBetween(today, goal.TargetDate)
	if left < 0 {
		left = 0
	}
	return domain.GoalProgressView{
		ProgressPercentage: Percentage(goal.CurrentValue, goal.TargetValue),
		DaysRemaining:      left,
		IsOverdue:          goal.Status == domain.GoalStatusActive && DateOf(today).After(DateOf(goal.TargetDate)),
	}
}

// WaterProgress returns the share of the daily goal reached and the glass count
func WaterProgress(amountMl, dailyGoalMl int) domain.WaterProgress {
	return domain.WaterProgress{
		AmountMl:           amountMl,
		DailyGoalMl:        dailyGoalMl,
		ProgressPercentage: Percentage(float64(amountMl), float64(dailyGoalMl)),
		GlassesConsumed:    roundTo(float64(amountMl)/GlassMl, 1),
	}
}

// DaySet is a set of calendar days
type DaySet map[time.Time]struct{}

// NewDaySet normalises every time to its calendar day
func NewDaySet(dates []time.Time) DaySet {
	set := make(DaySet, len(dates))
	for _, d := range dates {
		set[DateOf(d)] = struct{}{}
	}
	return set
}

func (s DaySet) Has(t time.Time) bool {
	_, ok := s[DateOf(t)]
	return ok
}

// WorkoutStreak counts consecutive days with a completed workout ending at
// asOf. The walk stops at the first missing day, so asOf itself must be present.
func WorkoutStreak(days DaySet, asOf time.Time) int {
	if asOf.IsZero() {
		return 0
	}
	streak := 0
	for d := DateOf(asOf); days.Has(d); d = d.AddDate(0, 0, -1) {
		streak++
	}
	return streak
}

var allTimeStart = time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC)

// PeriodBounds returns the inclusive calendar-day window of the period containing asOf.
// Weeks start on Monday; all_time runs from the Unix epoch to asOf.
func PeriodBounds(period domain.TimePeriod, asOf time.Time) (time.Time, time.Time, error) {
	day := DateOf(asOf)
	switch period {
	case domain.PeriodDaily:
		return day, day, nil
	case domain.PeriodWeekly:
		offset := (int(day.Weekday()) + 6) % 7
		start := day.AddDate(0, 0, -offset)
		return start, start.AddDate(0, 0, 6), nil
	case domain.PeriodMonthly:
		start := time.Date(day.Year(), day.Month(), 1, 0, 0, 0, 0, time.UTC)
		return start, start.AddDate(0, 1, -1), nil
	case domain.PeriodAllTime:
		return allTimeStart, day, nil
	}
	return time.Time{}, time.Time{}, fmt.Errorf("%w: unknown time period %q", domain.ErrInvalidPeriod, period)
}
