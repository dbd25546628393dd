package activities

import (
	"context"
	"fmt"

	"github.com/julianstephens/weeklit/internal/cli"
	"github.com/julianstephens/weeklit/internal/models"
	"github.com/julianstephens/weeklit/internal/tui/forms"
)

type ActivityAddCmd struct {
	Name        string  `arg:"" optional:"" help:"Activity name."`
	Goal        float64 `short:"g" help:"Weekly goal in hours."`
	Description string  `short:"d" help:"Optional description."`
	Interactive bool    `short:"i" help:"Fill in the activity with a form."`
}

func (c *ActivityAddCmd) Validate() error {
	if c.Interactive {
		return nil
	}
	if c.Name == "" {
		return fmt.Errorf("activity name is required (or use --interactive)")
	}
	if c.Goal <= 0 {
		return fmt.Errorf("--goal must be a positive number of hours")
	}
	return nil
}

func (c *ActivityAddCmd) Run(ctx *cli.Context) error {
	draft := models.ActivityDraft{
		Name:            c.Name,
		Description:     c.Description,
		WeeklyGoalHours: c.Goal,
	}
	if c.Interactive {
		fm := &forms.ActivityFormModel{Name: c.Name, Description: c.Description}
		if c.Goal > 0 {
			fm.Goal = fmt.Sprint(c.Goal)
		}
		if err := forms.NewActivityForm(fm, "New activity").Run(); err != nil {
			return fmt.Errorf("form cancelled: %w", err)
		}
		var err error
		if draft, err = fm.Draft(); err != nil {
			return err
		}
	}

	bg := context.Background()
	s, err := ctx.Store(bg)
	if err != nil {
		return err
	}
	if existing, err := s.Lookup(draft.Name); err == nil {
		return fmt.Errorf("activity %q already exists (ID: %s)", existing.Name, existing.ID)
	}

	a, err := s.Create(bg, draft)
	if err != nil {
		return fmt.Errorf("failed to add activity: %w", err)
	}
	fmt.Printf("✓ Added activity: %s (%gh/week, ID: %s)\n", a.Name, a.WeeklyGoalHours, a.ID)
	return nil
}
