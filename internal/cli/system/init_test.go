package system

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/julianstephens/weeklit/internal/models"
	"github.com/julianstephens/weeklit/internal/storage/sqlite"
)

func TestInitCmd_Success(t *testing.T) {
	ctx, dbPath := setupTestContext(t)

	if err := (&InitCmd{}).Run(ctx); err != nil {
		t.Fatalf("init command failed: %v", err)
	}
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Errorf("database file was not created at %s", dbPath)
	}
	if _, err := os.Stat(ctx.Config.Path); os.IsNotExist(err) {
		t.Errorf("config file was not written at %s", ctx.Config.Path)
	}
}

func TestInitCmd_Idempotent(t *testing.T) {
	ctx, _ := setupTestContext(t)

	cmd := &InitCmd{}
	if err := cmd.Run(ctx); err != nil {
		t.Fatalf("first init failed: %v", err)
	}
	if err := cmd.Run(ctx); err != nil {
		t.Errorf("second init failed (should be idempotent): %v", err)
	}
}

func TestInitCmd_ForceDeletesExisting(t *testing.T) {
	ctx, _ := setupTestContext(t)
	if err := (&InitCmd{}).Run(ctx); err != nil {
		t.Fatalf("initial init failed: %v", err)
	}
	if _, err := ctx.Service.CreateActivity(context.Background(), models.ActivityDraft{Name: "Run", WeeklyGoalHours: 1}); err != nil {
		t.Fatal(err)
	}

	if err := (&InitCmd{Force: true}).Run(ctx); err != nil {
		t.Fatalf("force init failed: %v", err)
	}

	list, err := ctx.Service.ListActivities(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 0 {
		t.Errorf("expected an empty database after --force, got %d activities", len(list))
	}
}

func TestInitCmd_ForceRejectsSameSource(t *testing.T) {
	ctx, dbPath := setupTestContext(t)
	if err := (&InitCmd{}).Run(ctx); err != nil {
		t.Fatal(err)
	}

	err := (&InitCmd{Force: true, Source: dbPath}).Run(ctx)
	if err == nil {
		t.Error("expected error when source equals destination")
	}
}

func TestInitCmd_CopiesFromSource(t *testing.T) {
	sourcePath := filepath.Join(t.TempDir(), "source.db")
	source := sqlite.NewStore(sourcePath)
	if err := source.Init(); err != nil {
		t.Fatal(err)
	}
	bg := context.Background()
	history := models.History{}
	for _, name := range []string{"Run", "Read"} {
		if _, err := source.CreateActivity(bg, models.ActivityDraft{Name: name, WeeklyGoalHours: 2, History: history}); err != nil {
			t.Fatal(err)
		}
	}
	source.Close()

	ctx, _ := setupTestContext(t)
	if err := (&InitCmd{}).Run(ctx); err != nil {
		t.Fatal(err)
	}
	if _, err := ctx.Service.CreateActivity(bg, models.ActivityDraft{Name: "run", WeeklyGoalHours: 1}); err != nil {
		t.Fatal(err)
	}

	if err := (&InitCmd{Source: sourcePath}).Run(ctx); err != nil {
		t.Fatalf("init with source failed: %v", err)
	}

	list, err := ctx.Service.ListActivities(bg)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 2 {
		t.Errorf("expected the existing activity plus Read, got %d", len(list))
	}
}

func TestMigrateCmd(t *testing.T) {
	ctx, _ := setupTestContext(t)
	if err := (&MigrateCmd{}).Run(ctx); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}
	if err := (&MigrateCmd{}).Run(ctx); err != nil {
		t.Fatalf("second migrate failed: %v", err)
	}
}
