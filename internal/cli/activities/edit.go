package activities

import (
	"context"
	"fmt"

	"github.com/julianstephens/weeklit/internal/cli"
	"github.com/julianstephens/weeklit/internal/models"
	"github.com/julianstephens/weeklit/internal/tui/forms"
)

type ActivityEditCmd struct {
	Ref         string   `arg:"" help:"Activity name or ID."`
	Name        *string  `help:"New name."`
	Goal        *float64 `short:"g" help:"New weekly goal in hours."`
	Description *string  `short:"d" help:"New description."`
	Interactive bool     `short:"i" help:"Edit the activity with a form."`
}

func (c *ActivityEditCmd) Run(ctx *cli.Context) error {
	bg := context.Background()
	s, err := ctx.Store(bg)
	if err != nil {
		return err
	}
	a, err := s.Lookup(c.Ref)
	if err != nil {
		return fmt.Errorf("failed to find activity %q: %w", c.Ref, err)
	}

	var patch models.ActivityPatch
	if c.Interactive {
		fm := forms.FromActivity(a)
		if err := forms.NewActivityForm(fm, "Edit activity").Run(); err != nil {
			return fmt.Errorf("form cancelled: %w", err)
		}
		if patch, err = fm.Patch(a); err != nil {
			return err
		}
	} else {
		patch = models.ActivityPatch{Name: c.Name, WeeklyGoalHours: c.Goal, Description: c.Description}
	}

	if patch.IsEmpty() {
		fmt.Println("Nothing to change.")
		return nil
	}
	if patch.Name != nil {
		if other, err := s.Lookup(*patch.Name); err == nil && other.ID != a.ID {
			return fmt.Errorf("activity %q already exists (ID: %s)", other.Name, other.ID)
		}
	}

	updated, err := s.Edit(bg, a.ID, patch)
	if err != nil {
		return fmt.Errorf("failed to update activity: %w", err)
	}
	fmt.Printf("✓ Updated activity: %s (%gh/week)\n", updated.Name, updated.WeeklyGoalHours)
	return nil
}
