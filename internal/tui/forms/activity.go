// Package forms holds the huh forms shared by the TUI and the interactive CLI.
package forms

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/julianstephens/weeklit/internal/models"
	"github.com/julianstephens/weeklit/internal/validation"
)

// ActivityFormModel backs the add and edit activity forms. Fields are kept
// as strings so huh can bind them directly.
type ActivityFormModel struct {
	Name        string
	Goal        string
	Description string
}

// FromActivity prefills the form with a's current values
func FromActivity(a models.Activity) *ActivityFormModel {
	return &ActivityFormModel{
		Name:        a.Name,
		Goal:        strconv.FormatFloat(a.WeeklyGoalHours, 'f', -1, 64),
		Description: a.Description,
	}
}

// NewActivityForm builds the add/edit form bound to fm
func NewActivityForm(fm *ActivityFormModel, title string) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewNote().Title(title),
			huh.NewInput().
				Title("Name").
				Value(&fm.Name).
				Validate(func(s string) error {
					_, err := validation.ValidateName(s)
					return err
				}),
			huh.NewInput().
				Title("Weekly goal (hours)").
				Value(&fm.Goal).
				Validate(func(s string) error {
					_, err := ParseGoal(s)
					return err
				}),
			huh.NewText().
				Title("Description").
				Lines(3).
				Value(&fm.Description),
		),
	).WithTheme(huh.ThemeDracula())
}

// ParseGoal parses a weekly goal in hours
func ParseGoal(s string) (float64, error) {
	g, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, validation.ValidateGoal(0)
	}
	if err := validation.ValidateGoal(g); err != nil {
		return 0, err
	}
	return g, nil
}

// Draft converts the form into a creation request
func (fm *ActivityFormModel) Draft() (models.ActivityDraft, error) {
	goal, err := ParseGoal(fm.Goal)
	if err != nil {
		return models.ActivityDraft{}, err
	}
	return validation.ValidateDraft(models.ActivityDraft{
		Name:            fm.Name,
		Description:     fm.Description,
		WeeklyGoalHours: goal,
	})
}

// Patch returns the fields that differ from orig
func (fm *ActivityFormModel) Patch(orig models.Activity) (models.ActivityPatch, error) {
	var p models.ActivityPatch
	if name := strings.TrimSpace(fm.Name); name != orig.Name {
		p.Name = &name
	}
	goal, err := ParseGoal(fm.Goal)
	if err != nil {
		return p, err
	}
	if goal != orig.WeeklyGoalHours {
		p.WeeklyGoalHours = &goal
	}
	if desc := strings.TrimSpace(fm.Description); desc != orig.Description {
		p.Description = &desc
	}
	return validation.ValidatePatch(p)
}
