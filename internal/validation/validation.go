package validation

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/julianstephens/weeklit/internal/calendar"
	"github.com/julianstephens/weeklit/internal/constants"
	apperrors "github.com/julianstephens/weeklit/internal/errors"
	"github.com/julianstephens/weeklit/internal/models"
)

// ConflictType represents the type of data integrity conflict
type ConflictType string

const (
	ConflictDuplicateName   ConflictType = "duplicate_activity_name"
	ConflictInvalidGoal     ConflictType = "invalid_goal"
	ConflictBadMonthKey     ConflictType = "bad_month_key"
	ConflictBucketLength    ConflictType = "bucket_length"
	ConflictMinutesOutRange ConflictType = "minutes_out_of_range"
)

// Conflict represents a detected integrity problem in stored activities
type Conflict struct {
	Type        ConflictType
	Description string
	ActivityIDs []string
	MonthKey    string
}

// ValidationResult contains all detected conflicts
type ValidationResult struct {
	Conflicts []Conflict
}

// HasConflicts returns true if there are any conflicts
func (vr *ValidationResult) HasConflicts() bool {
	return len(vr.Conflicts) > 0
}

// FormatReport returns a human-readable report of all conflicts
func (vr *ValidationResult) FormatReport() string {
	if !vr.HasConflicts() {
		return "No conflicts detected."
	}

	var b strings.Builder
	b.WriteString("Conflicts detected:\n")
	for _, c := range vr.Conflicts {
		fmt.Fprintf(&b, "- %s\n", c.Description)
	}
	return b.String()
}

// Validator checks activities for integrity problems
type Validator struct{}

// New creates a new Validator
func New() *Validator {
	return &Validator{}
}

// ValidateActivities checks names, goals and history buckets across activities
func (v *Validator) ValidateActivities(activities []models.Activity) ValidationResult {
	var result ValidationResult

	byName := make(map[string][]string)
	for _, a := range activities {
		key := strings.ToLower(strings.TrimSpace(a.Name))
		byName[key] = append(byName[key], a.ID)

		if !validGoal(a.WeeklyGoalHours) {
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:        ConflictInvalidGoal,
				Description: fmt.Sprintf("Activity %q has a non-positive weekly goal (%v)", a.Name, a.WeeklyGoalHours),
				ActivityIDs: []string{a.ID},
			})
		}
		result.Conflicts = append(result.Conflicts, historyConflicts(a)...)
	}

	names := make([]string, 0, len(byName))
	for name := range byName {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if ids := byName[name]; len(ids) > 1 {
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:        ConflictDuplicateName,
				Description: fmt.Sprintf("%d activities share the name %q", len(ids), name),
				ActivityIDs: ids,
			})
		}
	}

	return result
}

func historyConflicts(a models.Activity) []Conflict {
	keys := make([]string, 0, len(a.History))
	for k := range a.History {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var conflicts []Conflict
	for _, key := range keys {
		bucket := a.History[key]
		want, err := calendar.DaysInMonthKey(key)
		if err != nil {
			conflicts = append(conflicts, Conflict{
				Type:        ConflictBadMonthKey,
				Description: fmt.Sprintf("Activity %q has a bucket with invalid key %q", a.Name, key),
				ActivityIDs: []string{a.ID},
				MonthKey:    key,
			})
			continue
		}
		if len(bucket.Days) != want {
			conflicts = append(conflicts, Conflict{
				Type:        ConflictBucketLength,
				Description: fmt.Sprintf("Activity %q bucket %s has %d days, want %d", a.Name, key, len(bucket.Days), want),
				ActivityIDs: []string{a.ID},
				MonthKey:    key,
			})
		}
		for i, m := range bucket.Days {
			if m < constants.MinMinutesPerDay || m > constants.MaxMinutesPerDay {
				conflicts = append(conflicts, Conflict{
					Type:        ConflictMinutesOutRange,
					Description: fmt.Sprintf("Activity %q has %d minutes on %s-%02d", a.Name, m, key, i+1),
					ActivityIDs: []string{a.ID},
					MonthKey:    key,
				})
			}
		}
	}
	return conflicts
}

func validGoal(g float64) bool {
	return g > 0 && !math.IsInf(g, 0) && !math.IsNaN(g)
}

// ValidateName trims name and rejects it when empty
func ValidateName(name string) (string, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return "", apperrors.Validation("name", "activity name is required")
	}
	return trimmed, nil
}

// ValidateGoal rejects non-positive or non-finite weekly goals
func ValidateGoal(hours float64) error {
	if !validGoal(hours) {
		return apperrors.Validation("weeklyGoalHours", "weekly goal must be a positive number of hours")
	}
	return nil
}

// ValidateDraft checks a draft before any service call and returns it normalized
func ValidateDraft(d models.ActivityDraft) (models.ActivityDraft, error) {
	name, err := ValidateName(d.Name)
	if err != nil {
		return d, err
	}
	if err := ValidateGoal(d.WeeklyGoalHours); err != nil {
		return d, err
	}
	d.Name = name
	d.Description = strings.TrimSpace(d.Description)
	return d, nil
}

// ValidatePatch checks the fields a patch sets and returns it normalized
func ValidatePatch(p models.ActivityPatch) (models.ActivityPatch, error) {
	if p.Name != nil {
		name, err := ValidateName(*p.Name)
		if err != nil {
			return p, err
		}
		p.Name = &name
	}
	if p.WeeklyGoalHours != nil {
		if err := ValidateGoal(*p.WeeklyGoalHours); err != nil {
			return p, err
		}
	}
	if p.Description != nil {
		desc := strings.TrimSpace(*p.Description)
		p.Description = &desc
	}
	return p, nil
}

// ParseMinutes parses raw minutes input. Surrounding whitespace is ignored and
// empty input means 0. Anything that is not an integer in [0, 999] is rejected.
func ParseMinutes(raw string) (int, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, true
	}
	// plain digits only: Atoi would also take "+5" and "-0"
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < constants.MinMinutesPerDay || n > constants.MaxMinutesPerDay {
		return 0, false
	}
	return n, true
}

// ValidateRange checks an export range: end not before start and at most two
// years (730 days) between them
func ValidateRange(start, end time.Time) error {
	if start.IsZero() || end.IsZero() {
		return apperrors.Validation("range", "both start and end dates are required")
	}
	s, e := calendar.DateOnly(start), calendar.DateOnly(end)
	if e.Before(s) {
		return apperrors.Validation("range", "end date must be on or after start date")
	}
	// rounded so a DST shift inside the range does not count as a day
	if days := int(math.Round(e.Sub(s).Hours() / 24)); days > constants.MaxExportRangeDays {
		return apperrors.Validation("range", "date range cannot exceed 2 years")
	}
	return nil
}

// ValidateHistory rejects bad month keys, wrong bucket lengths and out-of-range minutes
func ValidateHistory(h models.History) error {
	for key, bucket := range h {
		want, err := calendar.DaysInMonthKey(key)
		if err != nil {
			return apperrors.Validation("history", "invalid month key %q", key)
		}
		if len(bucket.Days) != want {
			return apperrors.Validation("history", "month %s has %d days, want %d", key, len(bucket.Days), want)
		}
		for i, m := range bucket.Days {
			if m < constants.MinMinutesPerDay || m > constants.MaxMinutesPerDay {
				return apperrors.Validation("history", "%d minutes on %s-%02d is outside 0-%d", m, key, i+1, constants.MaxMinutesPerDay)
			}
		}
	}
	return nil
}
