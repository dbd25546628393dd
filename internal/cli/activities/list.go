package activities

import (
	"context"
	"fmt"

	"github.com/julianstephens/weeklit/internal/calendar"
	"github.com/julianstephens/weeklit/internal/cli"
	"github.com/julianstephens/weeklit/internal/progress"
)

const nameWidth = 24

type ActivityListCmd struct {
	ShowIDs bool `help:"Include activity IDs."`
}

func (c *ActivityListCmd) Run(ctx *cli.Context) error {
	s, err := ctx.Store(context.Background())
	if err != nil {
		return err
	}
	list := s.Activities()
	if len(list) == 0 {
		fmt.Println("No activities yet. Add one with 'weeklit activity add NAME --goal HOURS'.")
		return nil
	}

	today := ctx.Today()
	week := calendar.WeekWindow(today)
	fmt.Printf("Activities (week of %s):\n\n", calendar.FormatDate(week.Start()))
	for _, a := range list {
		sum := progress.Summarize(a, week, today)
		line := fmt.Sprintf("  %s %s %5.1fh goal  %8s  %5.1f%%", sum.Tier.Icon(), cli.FitName(a.Name, nameWidth), a.WeeklyGoalHours, cli.FormatMinutes(sum.Minutes), sum.Progress)
		if c.ShowIDs {
			line += "  " + a.ID
		}
		fmt.Println(line)
		if a.Description != "" {
			fmt.Printf("     %s\n", a.Description)
		}
	}
	return nil
}
