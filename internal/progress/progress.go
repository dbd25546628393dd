package progress

import (
	"time"

	"github.com/julianstephens/weeklit/internal/calendar"
	"github.com/julianstephens/weeklit/internal/constants"
	"github.com/julianstephens/weeklit/internal/models"
	"github.com/julianstephens/weeklit/internal/status"
)

// Compute returns the minutes logged over dates as a percentage of the weekly goal.
// The result is unbounded above; a non-positive goal yields 0.
func Compute(a models.Activity, dates []time.Time) float64 {
	if a.WeeklyGoalHours <= 0 {
		return 0
	}
	hours := float64(a.History.Total(dates)) / 60
	return hours / a.WeeklyGoalHours * 100
}

// Expected returns how far through week today is, as a percentage.
// Past weeks are 100, future weeks 0, and the current week counts days up to and including today.
func Expected(week calendar.Week, today time.Time) float64 {
	t := calendar.DateOnly(today)
	if week.End().Before(t) {
		return 100
	}
	if week.Start().After(t) {
		return 0
	}
	passed := 0
	for _, d := range week {
		if !d.After(t) {
			passed++
		}
	}
	return float64(passed) / constants.DaysPerWeek * 100
}

// Ratio compares actual progress to the expectation, treating a zero expectation as 1
func Ratio(actual, expected float64) float64 {
	if expected == 0 {
		expected = 1
	}
	return actual / expected
}

// Day is one cell of a weekly summary
type Day struct {
	Date    time.Time
	Minutes int
	Tier    status.DailyTier
}

// Summary bundles the weekly numbers shown for one activity
type Summary struct {
	Week     calendar.Week
	Minutes  int
	Progress float64
	Expected float64
	Ratio    float64
	Tier     status.Tier
	Days     []Day
}

// Summarize computes progress, expectation and per-day grades for a over week
func Summarize(a models.Activity, week calendar.Week, today time.Time) Summary {
	dates := week.Dates()
	s := Summary{
		Week:     week,
		Minutes:  a.History.Total(dates),
		Progress: Compute(a, dates),
		Expected: Expected(week, today),
	}
	s.Ratio = Ratio(s.Progress, s.Expected)
	s.Tier = status.Classify(s.Ratio)
	for _, d := range dates {
		m := a.History.Minutes(d)
		s.Days = append(s.Days, Day{Date: d, Minutes: m, Tier: status.ClassifyDaily(m, a.WeeklyGoalHours)})
	}
	return s
}

// PastWeeks summarizes the n weeks ending with the week containing anchor, most recent first
func PastWeeks(a models.Activity, anchor time.Time, n int, today time.Time) []Summary {
	out := make([]Summary, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, Summarize(a, calendar.WeeksAgo(anchor, i), today))
	}
	return out
}

// DayPoint is one sample of a daily minutes series
type DayPoint struct {
	Date    time.Time
	Minutes int
}

// DailySeries returns minutes per day for the days-long window ending on end, oldest first
func DailySeries(a models.Activity, end time.Time, days int) []DayPoint {
	if days <= 0 {
		return nil
	}
	last := calendar.DateOnly(end)
	dates := calendar.DateRange(last.AddDate(0, 0, -(days-1)), last)
	points := make([]DayPoint, 0, len(dates))
	for _, d := range dates {
		points = append(points, DayPoint{Date: d, Minutes: a.History.Minutes(d)})
	}
	return points
}
