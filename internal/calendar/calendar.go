package calendar

import (
	"fmt"
	"time"

	"github.com/julianstephens/weeklit/internal/constants"
)

// Week is a Monday-to-Sunday run of seven consecutive calendar dates.
type Week [constants.DaysPerWeek]time.Time

// Start returns the Monday of the week.
func (w Week) Start() time.Time { return w[0] }

// End returns the Sunday of the week.
func (w Week) End() time.Time { return w[len(w)-1] }

// Dates returns the week as a slice.
func (w Week) Dates() []time.Time {
	return append([]time.Time(nil), w[:]...)
}

// Contains reports whether t falls on one of the week's days.
func (w Week) Contains(t time.Time) bool {
	d := DateOnly(t)
	return !d.Before(w.Start()) && !d.After(w.End())
}

// DateOnly truncates t to midnight of its local calendar day.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// MonthKey returns the history bucket key (YYYY-MM) for t.
func MonthKey(t time.Time) string {
	return t.Format(constants.MonthKeyFormat)
}

// DayIndex returns the zero-based position of t within its month bucket.
func DayIndex(t time.Time) int {
	return t.Day() - 1
}

// DaysInMonth returns the number of days in the month containing t.
func DaysInMonth(t time.Time) int {
	// Day 0 of the next month normalizes to the last day of this one.
	return time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, t.Location()).Day()
}

// DaysInMonthKey returns the number of days in the month named by a YYYY-MM key.
func DaysInMonthKey(key string) (int, error) {
	t, err := time.ParseInLocation(constants.MonthKeyFormat, key, time.Local)
	if err != nil {
		return 0, fmt.Errorf("invalid month key %q: %w", key, err)
	}
	return DaysInMonth(t), nil
}

// FromAddress rebuilds the date addressed by a month key and day index.
func FromAddress(monthKey string, dayIndex int) (time.Time, error) {
	t, err := time.ParseInLocation(constants.MonthKeyFormat, monthKey, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid month key %q: %w", monthKey, err)
	}
	if dayIndex < 0 || dayIndex >= DaysInMonth(t) {
		return time.Time{}, fmt.Errorf("day index %d out of range for %s", dayIndex, monthKey)
	}
	return t.AddDate(0, 0, dayIndex), nil
}

// WeekWindow returns the Monday-start week containing anchor.
// A Sunday anchor belongs to the week that started the previous Monday.
func WeekWindow(anchor time.Time) Week {
	d := DateOnly(anchor)
	offset := (int(d.Weekday()) + 6) % 7
	monday := d.AddDate(0, 0, -offset)

	var w Week
	for i := range w {
		w[i] = monday.AddDate(0, 0, i)
	}
	return w
}

// WeeksAgo returns the week n weeks before the one containing anchor.
func WeeksAgo(anchor time.Time, n int) Week {
	return WeekWindow(DateOnly(anchor).AddDate(0, 0, -7*n))
}

// DateRange returns every day from start to end inclusive, in order.
// An end before start yields an empty range.
func DateRange(start, end time.Time) []time.Time {
	s, e := DateOnly(start), DateOnly(end)
	if e.Before(s) {
		return []time.Time{}
	}
	var dates []time.Time
	for d := s; !d.After(e); d = d.AddDate(0, 0, 1) {
		dates = append(dates, d)
	}
	return dates
}

// FormatDate renders t as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format(constants.DateFormat)
}

// ParseDate parses a YYYY-MM-DD string as a local calendar date.
func ParseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(constants.DateFormat, s, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (expected YYYY-MM-DD): %w", s, err)
	}
	return t, nil
}

// Today returns the current local date.
func Today() time.Time {
	return DateOnly(time.Now())
}
