package validation

import (
	"math"
	"testing"
	"time"

	apperrors "github.com/julianstephens/weeklit/internal/errors"
	"github.com/julianstephens/weeklit/internal/models"
)

func TestValidateDraft(t *testing.T) {
	tests := []struct {
		name     string
		draft    models.ActivityDraft
		wantErr  bool
		wantName string
	}{
		{"valid", models.ActivityDraft{Name: "Reading", WeeklyGoalHours: 3}, false, "Reading"},
		{"name trimmed", models.ActivityDraft{Name: "  Piano \t", WeeklyGoalHours: 0.5}, false, "Piano"},
		{"blank name", models.ActivityDraft{Name: "   ", WeeklyGoalHours: 3}, true, ""},
		{"zero goal", models.ActivityDraft{Name: "Run", WeeklyGoalHours: 0}, true, ""},
		{"negative goal", models.ActivityDraft{Name: "Run", WeeklyGoalHours: -2}, true, ""},
		{"infinite goal", models.ActivityDraft{Name: "Run", WeeklyGoalHours: math.Inf(1)}, true, ""},
		{"nan goal", models.ActivityDraft{Name: "Run", WeeklyGoalHours: math.NaN()}, true, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ValidateDraft(tt.draft)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateDraft() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				if apperrors.Classify(err) != apperrors.KindValidation {
					t.Errorf("error kind = %s, want validation", apperrors.Classify(err))
				}
				return
			}
			if got.Name != tt.wantName {
				t.Errorf("Name = %q, want %q", got.Name, tt.wantName)
			}
		})
	}
}

func TestValidatePatch(t *testing.T) {
	blank := " "
	zero := 0.0
	name := " Swim "
	goal := 4.0

	if _, err := ValidatePatch(models.ActivityPatch{Name: &blank}); err == nil {
		t.Error("blank name should be rejected")
	}
	if _, err := ValidatePatch(models.ActivityPatch{WeeklyGoalHours: &zero}); err == nil {
		t.Error("zero goal should be rejected")
	}
	got, err := ValidatePatch(models.ActivityPatch{Name: &name, WeeklyGoalHours: &goal})
	if err != nil {
		t.Fatalf("ValidatePatch() error: %v", err)
	}
	if *got.Name != "Swim" {
		t.Errorf("Name = %q, want Swim", *got.Name)
	}
	if name != " Swim " {
		t.Error("caller's value must not be modified")
	}
}

func TestParseMinutes(t *testing.T) {
	tests := []struct {
		raw    string
		want   int
		wantOK bool
	}{
		{"0", 0, true},
		{"1", 1, true},
		{"999", 999, true},
		{"", 0, true},
		{"  42 ", 42, true},
		{"1000", 0, false},
		{"-1", 0, false},
		{"abc", 0, false},
		{"12.5", 0, false},
		{"1e2", 0, false},
		{"+5", 0, false},
		{"-0", 0, false},
		{" +42", 0, false},
		{"007", 7, true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, ok := ParseMinutes(tt.raw)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("ParseMinutes(%q) = (%d, %v), want (%d, %v)", tt.raw, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestValidateRange(t *testing.T) {
	d := func(y int, m time.Month, day int) time.Time { return time.Date(y, m, day, 0, 0, 0, 0, time.Local) }

	tests := []struct {
		name       string
		start, end time.Time
		wantErr    bool
	}{
		{"same day", d(2024, 1, 1), d(2024, 1, 1), false},
		{"reversed", d(2024, 1, 3), d(2024, 1, 1), true},
		{"missing start", time.Time{}, d(2024, 1, 1), true},
		{"730 days apart", d(2023, 1, 1), d(2024, 12, 31), false},
		{"731 days apart", d(2023, 1, 1), d(2025, 1, 1), true},
		{"across DST", d(2023, 3, 1), d(2025, 2, 28), false},
		{"far apart", d(1900, 1, 1), d(2024, 1, 1), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := ValidateRange(tt.start, tt.end); (err != nil) != tt.wantErr {
				t.Errorf("ValidateRange() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateActivities(t *testing.T) {
	good := models.History{"2024-02": {Days: make([]int, 29)}}
	short := models.History{"2024-02": {Days: make([]int, 28)}}
	bad := models.History{"2024-03": {Days: append(make([]int, 30), 1200)}, "24-3": {}}

	activities := []models.Activity{
		{ID: "a1", Name: "Run", WeeklyGoalHours: 2, History: good},
		{ID: "a2", Name: "run ", WeeklyGoalHours: 1, History: short},
		{ID: "a3", Name: "Read", WeeklyGoalHours: 0, History: bad},
	}

	result := New().ValidateActivities(activities)

	counts := make(map[ConflictType]int)
	for _, c := range result.Conflicts {
		counts[c.Type]++
	}
	want := map[ConflictType]int{
		ConflictDuplicateName:   1,
		ConflictBucketLength:    1,
		ConflictInvalidGoal:     1,
		ConflictMinutesOutRange: 1,
		ConflictBadMonthKey:     1,
	}
	for typ, n := range want {
		if counts[typ] != n {
			t.Errorf("%s conflicts = %d, want %d (report:\n%s)", typ, counts[typ], n, result.FormatReport())
		}
	}

	clean := New().ValidateActivities(activities[:1])
	if clean.HasConflicts() || clean.FormatReport() != "No conflicts detected." {
		t.Errorf("unexpected conflicts: %s", clean.FormatReport())
	}
}

func TestValidateHistory(t *testing.T) {
	tests := []struct {
		name    string
		history models.History
		wantErr bool
	}{
		{"nil", nil, false},
		{"full month", models.History{"2024-02": {Days: make([]int, 29)}}, false},
		{"short month", models.History{"2024-02": {Days: make([]int, 28)}}, true},
		{"bad key", models.History{"Feb": {Days: make([]int, 29)}}, true},
		{"too many minutes", models.History{"2023-02": {Days: append(make([]int, 27), 1000)}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := ValidateHistory(tt.history); (err != nil) != tt.wantErr {
				t.Errorf("ValidateHistory() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
