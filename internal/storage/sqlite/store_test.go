package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	apperrors "github.com/julianstephens/weeklit/internal/errors"
	"github.com/julianstephens/weeklit/internal/models"
	"github.com/julianstephens/weeklit/internal/storage"
)

func setupTestSQLiteStore(t *testing.T) *Store {
	t.Helper()
	store := NewStore(filepath.Join(t.TempDir(), "weeklit.db"))
	if err := store.Init(); err != nil {
		t.Fatalf("failed to init store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestLoadRequiresInit(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "missing.db"))
	if err := store.Load(); err == nil {
		t.Error("Load() on a missing database should fail")
	}
}

func TestInitThenLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "weeklit.db")
	first := NewStore(path)
	if err := first.Init(); err != nil {
		t.Fatal(err)
	}
	first.Close()

	second := NewStore(path)
	if err := second.Load(); err != nil {
		t.Fatalf("Load() after Init() failed: %v", err)
	}
	defer second.Close()

	if err := second.CheckTables(); err != nil {
		t.Errorf("CheckTables() = %v", err)
	}
	current, latest, err := second.SchemaStatus()
	if err != nil || current != latest || current < 1 {
		t.Errorf("SchemaStatus() = %d, %d, %v", current, latest, err)
	}
}

func TestTableExists(t *testing.T) {
	store := setupTestSQLiteStore(t)

	tests := []struct {
		table string
		want  bool
	}{
		{"activities", true},
		{"ACTIVITIES", true},
		{"preferences", true},
		{"habits", false},
	}
	for _, tt := range tests {
		got, err := store.tableExists(tt.table)
		if err != nil {
			t.Fatalf("tableExists(%q) error: %v", tt.table, err)
		}
		if got != tt.want {
			t.Errorf("tableExists(%q) = %v, want %v", tt.table, got, tt.want)
		}
	}
}

func TestActivityLifecycle(t *testing.T) {
	ctx := context.Background()
	store := setupTestSQLiteStore(t)

	first, err := store.CreateActivity(ctx, models.ActivityDraft{Name: " Run ", WeeklyGoalHours: 3})
	if err != nil {
		t.Fatalf("CreateActivity() error: %v", err)
	}
	if first.ID == "" || first.Name != "Run" || first.History == nil {
		t.Errorf("CreateActivity() = %+v", first)
	}
	second, err := store.CreateActivity(ctx, models.ActivityDraft{Name: "Read", Description: "novels", WeeklyGoalHours: 1})
	if err != nil {
		t.Fatal(err)
	}

	list, err := store.ListActivities(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 2 || list[0].ID != first.ID || list[1].ID != second.ID {
		t.Fatalf("ListActivities() order = %+v", list)
	}

	day := time.Date(2024, time.February, 29, 0, 0, 0, 0, time.Local)
	h := models.History{}.WithMinutes(day, 45)
	updated, err := store.UpdateActivity(ctx, second.ID, models.ActivityPatch{History: &h})
	if err != nil {
		t.Fatalf("UpdateActivity() error: %v", err)
	}
	if updated.History.Minutes(day) != 45 {
		t.Errorf("minutes after update = %d", updated.History.Minutes(day))
	}
	if updated.Name != "Read" || updated.Description != "novels" || updated.WeeklyGoalHours != 1 {
		t.Errorf("unset fields should be preserved, got %+v", updated)
	}

	name := "Reading"
	renamed, err := store.UpdateActivity(ctx, second.ID, models.ActivityPatch{Name: &name})
	if err != nil {
		t.Fatal(err)
	}
	if renamed.History.Minutes(day) != 45 {
		t.Error("renaming should keep the stored history")
	}

	if err := store.DeleteActivity(ctx, first.ID); err != nil {
		t.Fatalf("DeleteActivity() error: %v", err)
	}
	if err := store.DeleteActivity(ctx, first.ID); !apperrors.IsNotFound(err) {
		t.Errorf("second delete error = %v, want not found", err)
	}
	if _, err := store.UpdateActivity(ctx, first.ID, models.ActivityPatch{Name: &name}); !apperrors.IsNotFound(err) {
		t.Errorf("update of deleted activity error = %v, want not found", err)
	}

	list, _ = store.ListActivities(ctx)
	if len(list) != 1 || list[0].Name != "Reading" {
		t.Errorf("final list = %+v", list)
	}
}

func TestActivityValidation(t *testing.T) {
	ctx := context.Background()
	store := setupTestSQLiteStore(t)

	if _, err := store.CreateActivity(ctx, models.ActivityDraft{Name: "", WeeklyGoalHours: 1}); apperrors.Classify(err) != apperrors.KindValidation {
		t.Errorf("blank name error = %v, want validation", err)
	}
	if _, err := store.CreateActivity(ctx, models.ActivityDraft{Name: "Run", WeeklyGoalHours: -1}); apperrors.Classify(err) != apperrors.KindValidation {
		t.Errorf("negative goal error = %v, want validation", err)
	}

	a, err := store.CreateActivity(ctx, models.ActivityDraft{Name: "Run", WeeklyGoalHours: 1})
	if err != nil {
		t.Fatal(err)
	}
	bad := models.History{"2024-01": {Days: []int{1000}}}
	if _, err := store.UpdateActivity(ctx, a.ID, models.ActivityPatch{History: &bad}); apperrors.Classify(err) != apperrors.KindValidation {
		t.Errorf("bad history error = %v, want validation", err)
	}
}

func TestPreferences(t *testing.T) {
	ctx := context.Background()
	store := setupTestSQLiteStore(t)

	if _, err := store.GetPreference(ctx, "nav.week_anchor"); !errors.Is(err, storage.ErrPreferenceNotFound) {
		t.Errorf("missing preference error = %v", err)
	}
	if err := store.SetPreference(ctx, "nav.week_anchor", "2024-01-15"); err != nil {
		t.Fatal(err)
	}
	if err := store.SetPreference(ctx, "nav.week_anchor", "2024-01-22"); err != nil {
		t.Fatal(err)
	}
	got, err := store.GetPreference(ctx, "nav.week_anchor")
	if err != nil || got != "2024-01-22" {
		t.Errorf("GetPreference() = %q, %v", got, err)
	}
}

var _ storage.Provider = (*Store)(nil)
