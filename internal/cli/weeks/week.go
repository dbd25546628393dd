package weeks

import (
	"context"
	"fmt"
	"strings"

	"github.com/julianstephens/weeklit/internal/calendar"
	"github.com/julianstephens/weeklit/internal/cli"
	"github.com/julianstephens/weeklit/internal/progress"
	"github.com/julianstephens/weeklit/internal/status"
)

const (
	nameWidth = 20
	cellWidth = 7
)

type WeekCmd struct {
	Date string `short:"d" help:"Any date in the week to show (YYYY-MM-DD, today, yesterday)." default:"today"`
	Ago  int    `short:"a" help:"Show the week N weeks before --date." default:"0"`
}

func (c *WeekCmd) Validate() error {
	if c.Ago < 0 {
		return fmt.Errorf("--ago cannot be negative")
	}
	return nil
}

func (c *WeekCmd) Run(ctx *cli.Context) error {
	anchor, err := ctx.ParseDateArg(c.Date)
	if err != nil {
		return err
	}
	s, err := ctx.Store(context.Background())
	if err != nil {
		return err
	}

	today := ctx.Today()
	week := calendar.WeeksAgo(anchor, c.Ago)
	expected := progress.Expected(week, today)

	fmt.Printf("Week of %s to %s (expected %.0f%%)\n\n", calendar.FormatDate(week.Start()), calendar.FormatDate(week.End()), expected)
	fmt.Println(header(week))

	list := s.Activities()
	if len(list) == 0 {
		fmt.Println("\nNo activities yet.")
		return nil
	}
	for _, a := range list {
		fmt.Println(row(progress.Summarize(a, week, today), a.Name))
	}

	fmt.Println()
	legend := make([]string, 0, len(status.Tiers()))
	for _, t := range status.Tiers() {
		legend = append(legend, t.Icon()+" "+t.String())
	}
	fmt.Println(strings.Join(legend, "  "))
	return nil
}

func header(week calendar.Week) string {
	var b strings.Builder
	b.WriteString("   ")
	b.WriteString(cli.FitName("Activity", nameWidth))
	for _, d := range week.Dates() {
		fmt.Fprintf(&b, "%*s", cellWidth, d.Format("Mon 02"))
	}
	fmt.Fprintf(&b, "%*s%*s", cellWidth+2, "Total", cellWidth+1, "Done")
	return b.String()
}

func row(sum progress.Summary, name string) string {
	var b strings.Builder
	b.WriteString(sum.Tier.Icon())
	b.WriteString(" ")
	b.WriteString(cli.FitName(name, nameWidth))
	for _, d := range sum.Days {
		fmt.Fprintf(&b, "%*s", cellWidth, cli.FormatMinutes(d.Minutes))
	}
	fmt.Fprintf(&b, "%*s%*.0f%%", cellWidth+2, cli.FormatMinutes(sum.Minutes), cellWidth, sum.Progress)
	return b.String()
}
