package activities

import (
	"context"
	"fmt"

	"github.com/julianstephens/weeklit/internal/cli"
)

type ActivityDeleteCmd struct {
	Ref string `arg:"" help:"Activity name or ID to delete."`
	Yes bool   `short:"y" help:"Skip the confirmation prompt."`
}

func (c *ActivityDeleteCmd) Run(ctx *cli.Context) error {
	bg := context.Background()
	s, err := ctx.Store(bg)
	if err != nil {
		return err
	}
	a, err := s.Lookup(c.Ref)
	if err != nil {
		return fmt.Errorf("failed to find activity %q: %w", c.Ref, err)
	}

	if !c.Yes {
		ok, err := ctx.Confirm(fmt.Sprintf("Delete %q and all of its history?", a.Name))
		if err != nil {
			return err
		}
		if !ok {
			fmt.Println("Delete cancelled.")
			return nil
		}
	}

	if err := s.Delete(bg, a.ID); err != nil {
		return fmt.Errorf("failed to delete activity: %w", err)
	}
	fmt.Printf("Deleted activity: %s (ID: %s)\n", a.Name, a.ID)
	return nil
}
