package models

import (
	"time"

	"github.com/julianstephens/weeklit/internal/calendar"
)

// MonthBucket holds one month of daily minutes; Days[0] is the 1st
type MonthBucket struct {
	Days []int `json:"days"`
}

// History maps a month key (YYYY-MM) to that month's bucket.
// Buckets are created lazily, so readers must not assume a key is present.
type History map[string]MonthBucket

// Minutes returns the minutes logged on date, or 0 when the month or day is absent
func (h History) Minutes(date time.Time) int {
	bucket, ok := h[calendar.MonthKey(date)]
	if !ok {
		return 0
	}
	idx := calendar.DayIndex(date)
	if idx < 0 || idx >= len(bucket.Days) {
		return 0
	}
	return bucket.Days[idx]
}

// WithMinutes returns a copy of h with minutes set on date.
// The month bucket is materialized at full length if missing or short.
func (h History) WithMinutes(date time.Time, minutes int) History {
	out := h.Clone()
	if out == nil {
		out = History{}
	}
	key := calendar.MonthKey(date)
	days := make([]int, calendar.DaysInMonth(date))
	copy(days, out[key].Days)
	days[calendar.DayIndex(date)] = minutes
	out[key] = MonthBucket{Days: days}
	return out
}

// Clone returns a deep copy; a nil history stays nil
func (h History) Clone() History {
	if h == nil {
		return nil
	}
	out := make(History, len(h))
	for k, b := range h {
		days := make([]int, len(b.Days))
		copy(days, b.Days)
		out[k] = MonthBucket{Days: days}
	}
	return out
}

// Seed returns a copy of h with zero-filled buckets for every month touched by dates
func (h History) Seed(dates []time.Time) History {
	out := h.Clone()
	if out == nil {
		out = History{}
	}
	for _, d := range dates {
		key := calendar.MonthKey(d)
		if _, ok := out[key]; ok {
			continue
		}
		out[key] = MonthBucket{Days: make([]int, calendar.DaysInMonth(d))}
	}
	return out
}

// Total sums the minutes logged across dates
func (h History) Total(dates []time.Time) int {
	total := 0
	for _, d := range dates {
		total += h.Minutes(d)
	}
	return total
}
