// Package navigation remembers which week the user was last looking at.
package navigation

import (
	"context"
	"errors"
	"time"

	"github.com/julianstephens/weeklit/internal/calendar"
	"github.com/julianstephens/weeklit/internal/constants"
	"github.com/julianstephens/weeklit/internal/logger"
	"github.com/julianstephens/weeklit/internal/storage"
)

// Navigator tracks the anchor date of the displayed week
type Navigator struct {
	prefs  storage.Preferences
	today  func() time.Time
	anchor time.Time
}

// Load restores the saved anchor, falling back to today when none is stored
// or the stored value is unreadable
func Load(ctx context.Context, prefs storage.Preferences, today func() time.Time) *Navigator {
	if today == nil {
		today = calendar.Today
	}
	n := &Navigator{prefs: prefs, today: today, anchor: calendar.DateOnly(today())}

	raw, err := prefs.GetPreference(ctx, constants.PrefWeekAnchor)
	switch {
	case errors.Is(err, storage.ErrPreferenceNotFound):
		return n
	case err != nil:
		logger.Warn("failed to read week anchor", "error", err)
		return n
	}
	anchor, err := calendar.ParseDate(raw)
	if err != nil {
		logger.Warn("ignoring invalid week anchor", "value", raw)
		return n
	}
	n.anchor = anchor
	return n
}

// Anchor returns the current anchor date
func (n *Navigator) Anchor() time.Time { return n.anchor }

// Week returns the Monday-Sunday window containing the anchor
func (n *Navigator) Week() calendar.Week { return calendar.WeekWindow(n.anchor) }

// IsCurrentWeek reports whether the displayed week contains today
func (n *Navigator) IsCurrentWeek() bool { return n.Week().Contains(n.today()) }

// Prev moves one week back
func (n *Navigator) Prev(ctx context.Context) error {
	return n.Set(ctx, n.anchor.AddDate(0, 0, -constants.DaysPerWeek))
}

// Next moves one week forward
func (n *Navigator) Next(ctx context.Context) error {
	return n.Set(ctx, n.anchor.AddDate(0, 0, constants.DaysPerWeek))
}

// Today jumps back to the current week
func (n *Navigator) Today(ctx context.Context) error {
	return n.Set(ctx, n.today())
}

// Set moves the anchor to t and persists it. The in-memory anchor moves
// even when saving fails.
func (n *Navigator) Set(ctx context.Context, t time.Time) error {
	n.anchor = calendar.DateOnly(t)
	return n.prefs.SetPreference(ctx, constants.PrefWeekAnchor, calendar.FormatDate(n.anchor))
}
