package postgres

import (
	"context"
	"os"
	"testing"
	"time"

	apperrors "github.com/julianstephens/weeklit/internal/errors"
	"github.com/julianstephens/weeklit/internal/models"
	"github.com/julianstephens/weeklit/internal/storage"
)

var _ storage.Provider = (*Store)(nil)

// Set POSTGRES_TEST_URL to run, e.g.
// POSTGRES_TEST_URL="postgres://weeklit_user@localhost:5432/weeklit_test?sslmode=disable"
func TestStore_Integration(t *testing.T) {
	connStr := os.Getenv("POSTGRES_TEST_URL")
	if connStr == "" {
		t.Skip("POSTGRES_TEST_URL not set, skipping PostgreSQL integration test")
	}

	ctx := context.Background()
	store := New(connStr)
	if err := store.Init(); err != nil {
		t.Fatalf("Failed to initialize store: %v", err)
	}
	defer store.Close()
	t.Cleanup(func() {
		store.db.Exec("DELETE FROM activities")
		store.db.Exec("DELETE FROM preferences")
	})

	created, err := store.CreateActivity(ctx, models.ActivityDraft{Name: "Climb", Description: "gym", WeeklyGoalHours: 4})
	if err != nil {
		t.Fatalf("CreateActivity() error: %v", err)
	}

	day := time.Date(2024, time.March, 3, 0, 0, 0, 0, time.Local)
	h := models.History{}.WithMinutes(day, 90)
	updated, err := store.UpdateActivity(ctx, created.ID, models.ActivityPatch{History: &h})
	if err != nil {
		t.Fatalf("UpdateActivity() error: %v", err)
	}
	if updated.History.Minutes(day) != 90 || updated.Description != "gym" || updated.WeeklyGoalHours != 4 {
		t.Errorf("merge update = %+v", updated)
	}

	list, err := store.ListActivities(ctx)
	if err != nil || len(list) != 1 {
		t.Fatalf("ListActivities() = %v, %v", list, err)
	}

	if err := store.SetPreference(ctx, "nav.week_anchor", "2024-03-04"); err != nil {
		t.Fatal(err)
	}
	if v, err := store.GetPreference(ctx, "nav.week_anchor"); err != nil || v != "2024-03-04" {
		t.Errorf("GetPreference() = %q, %v", v, err)
	}

	if err := store.DeleteActivity(ctx, created.ID); err != nil {
		t.Fatal(err)
	}
	if err := store.DeleteActivity(ctx, created.ID); !apperrors.IsNotFound(err) {
		t.Errorf("second delete error = %v, want not found", err)
	}
}
