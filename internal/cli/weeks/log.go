package weeks

import (
	"context"
	"fmt"
	"strconv"

	"github.com/julianstephens/weeklit/internal/calendar"
	"github.com/julianstephens/weeklit/internal/cli"
	"github.com/julianstephens/weeklit/internal/constants"
)

type LogCmd struct {
	Ref     string `arg:"" help:"Activity name or ID."`
	Minutes string `arg:"" help:"Minutes spent (0-999). 0 clears the day."`
	Date    string `short:"d" help:"Day to log (YYYY-MM-DD, today, yesterday)." default:"today"`
	Add     bool   `help:"Add to the minutes already logged instead of replacing them."`
}

func (c *LogCmd) Run(ctx *cli.Context) error {
	date, err := ctx.ParseDateArg(c.Date)
	if err != nil {
		return err
	}
	bg := context.Background()
	s, err := ctx.Store(bg)
	if err != nil {
		return err
	}
	a, err := s.Lookup(c.Ref)
	if err != nil {
		return fmt.Errorf("failed to find activity %q: %w", c.Ref, err)
	}

	raw := c.Minutes
	if c.Add {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("invalid minutes %q", c.Minutes)
		}
		raw = strconv.Itoa(s.Minutes(a.ID, date) + n)
	}
	if !s.SetMinutes(a.ID, date, raw) {
		return fmt.Errorf("invalid minutes %q: must be a whole number between 0 and %d", raw, constants.MaxMinutesPerDay)
	}
	if err := s.FlushAll(bg); err != nil {
		return fmt.Errorf("failed to save minutes: %w", err)
	}

	fmt.Printf("✓ %s on %s: %s\n", a.Name, calendar.FormatDate(date), cli.FormatMinutes(s.Minutes(a.ID, date)))
	return nil
}
