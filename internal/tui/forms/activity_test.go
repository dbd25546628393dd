package forms

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/julianstephens/weeklit/internal/errors"
	"github.com/julianstephens/weeklit/internal/models"
)

func TestDraft(t *testing.T) {
	fm := &ActivityFormModel{Name: "  Piano ", Goal: "3.5", Description: " scales "}
	d, err := fm.Draft()
	require.NoError(t, err)
	assert.Equal(t, "Piano", d.Name)
	assert.Equal(t, 3.5, d.WeeklyGoalHours)
	assert.Equal(t, "scales", d.Description)
}

func TestDraftRejectsBadInput(t *testing.T) {
	tests := []struct {
		name string
		fm   ActivityFormModel
		bad  string
	}{
		{"empty name", ActivityFormModel{Name: " ", Goal: "1"}, "name"},
		{"text goal", ActivityFormModel{Name: "Run", Goal: "lots"}, "weeklyGoalHours"},
		{"zero goal", ActivityFormModel{Name: "Run", Goal: "0"}, "weeklyGoalHours"},
		{"negative goal", ActivityFormModel{Name: "Run", Goal: "-2"}, "weeklyGoalHours"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.fm.Draft()
			ve, ok := apperrors.AsValidation(err)
			require.True(t, ok, "expected validation error, got %v", err)
			assert.Equal(t, tt.bad, ve.Field)
		})
	}
}

func TestPatchOnlyChangedFields(t *testing.T) {
	orig := models.Activity{ID: "a", Name: "Run", WeeklyGoalHours: 2, Description: "outside"}

	fm := FromActivity(orig)
	p, err := fm.Patch(orig)
	require.NoError(t, err)
	assert.True(t, p.IsEmpty())

	fm.Goal = "2.5"
	fm.Description = "track"
	p, err = fm.Patch(orig)
	require.NoError(t, err)
	assert.Nil(t, p.Name)
	require.NotNil(t, p.WeeklyGoalHours)
	assert.Equal(t, 2.5, *p.WeeklyGoalHours)
	require.NotNil(t, p.Description)
	assert.Equal(t, "track", *p.Description)
}

func TestNewActivityFormBuilds(t *testing.T) {
	fm := &ActivityFormModel{}
	assert.NotNil(t, NewActivityForm(fm, "New activity"))
}
