package navigation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/julianstephens/weeklit/internal/constants"
	"github.com/julianstephens/weeklit/internal/storage"
)

type memPrefs struct {
	values map[string]string
	err    error
}

func (m *memPrefs) GetPreference(_ context.Context, key string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	v, ok := m.values[key]
	if !ok {
		return "", storage.ErrPreferenceNotFound
	}
	return v, nil
}

func (m *memPrefs) SetPreference(_ context.Context, key, value string) error {
	if m.err != nil {
		return m.err
	}
	m.values[key] = value
	return nil
}

func fixedToday() time.Time {
	return time.Date(2024, time.May, 15, 0, 0, 0, 0, time.Local)
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name   string
		prefs  *memPrefs
		expect string
	}{
		{"nothing stored", &memPrefs{values: map[string]string{}}, "2024-05-15"},
		{"stored anchor", &memPrefs{values: map[string]string{constants.PrefWeekAnchor: "2024-01-03"}}, "2024-01-03"},
		{"garbage", &memPrefs{values: map[string]string{constants.PrefWeekAnchor: "yesterday"}}, "2024-05-15"},
		{"read error", &memPrefs{err: errors.New("disk gone")}, "2024-05-15"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := Load(context.Background(), tt.prefs, fixedToday)
			if got := n.Anchor().Format(constants.DateFormat); got != tt.expect {
				t.Errorf("Anchor() = %s, want %s", got, tt.expect)
			}
		})
	}
}

func TestNavigatePersists(t *testing.T) {
	ctx := context.Background()
	prefs := &memPrefs{values: map[string]string{}}
	n := Load(ctx, prefs, fixedToday)

	if !n.IsCurrentWeek() {
		t.Fatal("fresh navigator should show the current week")
	}
	if err := n.Prev(ctx); err != nil {
		t.Fatal(err)
	}
	if n.IsCurrentWeek() {
		t.Error("Prev() should leave the current week")
	}
	if got := prefs.values[constants.PrefWeekAnchor]; got != "2024-05-08" {
		t.Errorf("stored anchor = %s, want 2024-05-08", got)
	}
	if start := n.Week().Start().Format(constants.DateFormat); start != "2024-05-06" {
		t.Errorf("week start = %s", start)
	}

	if err := n.Next(ctx); err != nil {
		t.Fatal(err)
	}
	if err := n.Next(ctx); err != nil {
		t.Fatal(err)
	}
	if err := n.Today(ctx); err != nil {
		t.Fatal(err)
	}
	if got := prefs.values[constants.PrefWeekAnchor]; got != "2024-05-15" {
		t.Errorf("stored anchor after Today() = %s", got)
	}

	// a new session resumes where the last one left off
	_ = n.Prev(ctx)
	resumed := Load(ctx, prefs, fixedToday)
	if !resumed.Anchor().Equal(n.Anchor()) {
		t.Errorf("resumed anchor = %v, want %v", resumed.Anchor(), n.Anchor())
	}
}

func TestSetFailureStillMoves(t *testing.T) {
	prefs := &memPrefs{values: map[string]string{}}
	n := Load(context.Background(), prefs, fixedToday)
	prefs.err = errors.New("read only")

	if err := n.Prev(context.Background()); err == nil {
		t.Fatal("expected save error")
	}
	if got := n.Anchor().Format(constants.DateFormat); got != "2024-05-08" {
		t.Errorf("Anchor() = %s", got)
	}
}
