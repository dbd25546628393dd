package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/weeklit/internal/calendar"
	"github.com/julianstephens/weeklit/internal/cli"
	"github.com/julianstephens/weeklit/internal/constants"
	"github.com/julianstephens/weeklit/internal/progress"
	"github.com/julianstephens/weeklit/internal/status"
	"github.com/julianstephens/weeklit/internal/syncer"
)

const (
	nameWidth    = 20
	cellWidth    = 8
	barWidth     = 20
	markerColumn = 2
)

var syncMarkers = map[syncer.State]string{
	syncer.StatePending:  "•",
	syncer.StateSaving:   "↻",
	syncer.StateRetrying: "↻",
	syncer.StateFailed:   "!",
}

func (m Model) View() string {
	if m.quitting {
		return "Saving…\n"
	}

	var content string
	switch m.state {
	case constants.StateAddActivity, constants.StateEditActivity:
		content = m.form.View()
	case constants.StateConfirmDelete:
		content = m.viewConfirmDelete()
	case constants.StateDetail:
		content = m.viewDetail()
	default:
		content = m.viewWeek()
	}

	return docStyle.Render(lipgloss.JoinVertical(
		lipgloss.Left,
		m.viewTitle(),
		content,
		m.viewStatus(),
		m.help.View(m),
	))
}

func (m Model) viewTitle() string {
	week := m.nav.Week()
	title := titleStyle.Render(constants.AppName) + "  " +
		fmt.Sprintf("%s to %s", week.Start().Format("Jan 02"), week.End().Format("Jan 02, 2006"))
	if m.nav.IsCurrentWeek() {
		title += mutedStyle.Render("  (this week)")
	}
	if n := m.store.Sync().Count(); n > 0 {
		title += warningStyle.Render(fmt.Sprintf("  • %d unsaved", n))
	}
	if m.validationWarning != "" {
		title += "  " + warningStyle.Render(m.validationWarning)
	}
	if m.syncFailure != "" {
		title += "\n" + dangerStyle.Render(m.syncFailure)
	}
	return title + "\n"
}

func (m Model) viewWeek() string {
	week := m.nav.Week()
	today := calendar.DateOnly(m.today())
	expected := progress.Expected(week, today)

	var b strings.Builder
	b.WriteString(strings.Repeat(" ", markerColumn+3))
	b.WriteString(headerStyle.Render(cli.FitName("Activity", nameWidth)))
	for _, d := range week {
		label := fmt.Sprintf("%*s", cellWidth, d.Format("Mon 02"))
		if d.Equal(today) {
			b.WriteString(todayStyle.Render(label))
		} else {
			b.WriteString(headerStyle.Render(label))
		}
	}
	b.WriteString(headerStyle.Render(fmt.Sprintf("%*s  %s", cellWidth, "Total", fmt.Sprintf("Progress (expected %.0f%%)", expected))))
	b.WriteString("\n")

	if len(m.activities) == 0 {
		b.WriteString("\n")
		b.WriteString(mutedStyle.Render("No activities yet. Press a to add one."))
		b.WriteString("\n")
		return b.String()
	}

	for i, a := range m.activities {
		sum := progress.Summarize(a, week, today)
		b.WriteString(fmt.Sprintf("%-*s", markerColumn, syncMarkers[m.store.Sync().Status(a.ID)]))
		b.WriteString(sum.Tier.Icon())
		b.WriteString(" ")
		b.WriteString(cli.FitName(a.Name, nameWidth))
		for j, d := range sum.Days {
			b.WriteString(m.viewCell(i, j, d))
		}
		b.WriteString(fmt.Sprintf("%*s  ", cellWidth, formatCell(sum.Minutes)))
		b.WriteString(tierStyle(sum.Tier).Render(fmt.Sprintf("%s %5.1f%%", bar(sum.Progress), sum.Progress)))
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) viewCell(row, col int, d progress.Day) string {
	if row == m.row && col == m.col {
		if m.state == constants.StateEditCell {
			return fmt.Sprintf("%*s", cellWidth-m.input.Width, "") + selectedStyle.Render(m.input.View())
		}
		return fmt.Sprintf("%*s", cellWidth-6, "") + selectedStyle.Render(fmt.Sprintf("%6s", formatCell(d.Minutes)))
	}
	return dailyStyle(d.Tier).Render(fmt.Sprintf("%*s", cellWidth, formatCell(d.Minutes)))
}

func (m Model) viewDetail() string {
	a, ok := m.selected()
	if !ok {
		return ""
	}
	today := calendar.DateOnly(m.today())

	var b strings.Builder
	b.WriteString(titleStyle.Render(a.Name))
	b.WriteString(mutedStyle.Render(fmt.Sprintf("  %gh/week", a.WeeklyGoalHours)))
	b.WriteString("\n")
	if a.Description != "" {
		b.WriteString(a.Description + "\n")
	}

	b.WriteString("\n" + headerStyle.Render(fmt.Sprintf("Last %d weeks", constants.DefaultPastWeeks)) + "\n")
	for _, w := range progress.PastWeeks(a, m.nav.Anchor(), constants.DefaultPastWeeks, today) {
		b.WriteString(fmt.Sprintf("%s %s %8s  ", w.Week.Start().Format("Jan 02"), w.Tier.Icon(), formatCell(w.Minutes)))
		b.WriteString(tierStyle(w.Tier).Render(fmt.Sprintf("%s %5.1f%%", bar(w.Progress), w.Progress)))
		b.WriteString("\n")
	}

	series := progress.DailySeries(a, today, constants.DefaultSeriesDays)
	values := make([]int, len(series))
	total := 0
	for i, p := range series {
		values[i] = p.Minutes
		total += p.Minutes
	}
	b.WriteString("\n" + headerStyle.Render(fmt.Sprintf("Last %d days", constants.DefaultSeriesDays)) + "\n")
	b.WriteString(tierStyle(status.Achieved).Render(status.Sparkline(values)) + "\n")
	b.WriteString(mutedStyle.Render(fmt.Sprintf("%s total", cli.FormatMinutes(total))) + "\n")
	return b.String()
}

func (m Model) viewConfirmDelete() string {
	name := m.deleteID
	if a, ok := m.store.Get(m.deleteID); ok {
		name = a.Name
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		"",
		dangerStyle.Render(fmt.Sprintf("Delete %s and all of its history?", name)),
		"",
		"[y] Yes",
		"[n] No",
		"",
	)
}

func (m Model) viewStatus() string {
	if m.message == "" {
		return ""
	}
	if m.isError {
		return dangerStyle.Render(m.message)
	}
	return mutedStyle.Render(m.message)
}

func formatCell(minutes int) string {
	return cli.FormatMinutes(minutes)
}

// bar renders pct of barWidth, capped at full
func bar(pct float64) string {
	filled := int(pct / 100 * barWidth)
	filled = max(0, min(filled, barWidth))
	return strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled)
}
