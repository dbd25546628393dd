package activities

import (
	"context"
	"fmt"

	"github.com/julianstephens/weeklit/internal/calendar"
	"github.com/julianstephens/weeklit/internal/cli"
	"github.com/julianstephens/weeklit/internal/progress"
	"github.com/julianstephens/weeklit/internal/status"
)

type ActivityShowCmd struct {
	Ref   string `arg:"" help:"Activity name or ID."`
	Weeks int    `short:"w" help:"Number of past weeks to summarize." default:"${past_weeks}"`
	Days  int    `short:"n" help:"Length of the daily minutes series." default:"${series_days}"`
}

func (c *ActivityShowCmd) Validate() error {
	if c.Weeks < 1 {
		return fmt.Errorf("--weeks must be at least 1")
	}
	if c.Days < 1 {
		return fmt.Errorf("--days must be at least 1")
	}
	return nil
}

func (c *ActivityShowCmd) Run(ctx *cli.Context) error {
	s, err := ctx.Store(context.Background())
	if err != nil {
		return err
	}
	a, err := s.Lookup(c.Ref)
	if err != nil {
		return fmt.Errorf("failed to find activity %q: %w", c.Ref, err)
	}

	today := ctx.Today()
	fmt.Printf("%s\n", a.Name)
	if a.Description != "" {
		fmt.Printf("%s\n", a.Description)
	}
	fmt.Printf("Goal: %gh/week  ID: %s\n\n", a.WeeklyGoalHours, a.ID)

	fmt.Printf("Last %d weeks:\n", c.Weeks)
	for _, w := range progress.PastWeeks(a, today, c.Weeks, today) {
		fmt.Printf("  %s  %s %8s  %6.1f%%  %s\n",
			calendar.FormatDate(w.Week.Start()),
			w.Tier.Icon(),
			cli.FormatMinutes(w.Minutes),
			w.Progress,
			w.Tier,
		)
	}

	series := progress.DailySeries(a, today, c.Days)
	total, active := 0, 0
	values := make([]int, len(series))
	for i, p := range series {
		values[i] = p.Minutes
		total += p.Minutes
		if p.Minutes > 0 {
			active++
		}
	}
	fmt.Printf("\nLast %d days (%s to %s):\n", len(series), calendar.FormatDate(series[0].Date), calendar.FormatDate(series[len(series)-1].Date))
	fmt.Printf("  %s\n", status.Sparkline(values))
	fmt.Printf("  Total %s over %d active days\n", cli.FormatMinutes(total), active)
	return nil
}
