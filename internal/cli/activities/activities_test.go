package activities

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/julianstephens/weeklit/internal/cli"
	"github.com/julianstephens/weeklit/internal/config"
)

var fixedNow = time.Date(2024, 2, 28, 9, 0, 0, 0, time.Local)

func setupContext(t *testing.T) *cli.Context {
	t.Helper()
	dir := t.TempDir()
	cfg := config.Default(dir)
	cfg.Database = config.DefaultDBPathIn(dir)
	ctx, err := cli.NewContext(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if err := ctx.Provider.Init(); err != nil {
		t.Fatal(err)
	}
	ctx.Now = func() time.Time { return fixedNow }
	t.Cleanup(func() { _ = ctx.Close(context.Background()) })
	return ctx
}

func addActivity(t *testing.T, ctx *cli.Context, name string, goal float64) {
	t.Helper()
	if err := (&ActivityAddCmd{Name: name, Goal: goal}).Run(ctx); err != nil {
		t.Fatalf("add %q failed: %v", name, err)
	}
}

func TestActivityAddValidate(t *testing.T) {
	tests := []struct {
		name    string
		cmd     ActivityAddCmd
		wantErr bool
	}{
		{"valid", ActivityAddCmd{Name: "Run", Goal: 2}, false},
		{"missing name", ActivityAddCmd{Goal: 2}, true},
		{"zero goal", ActivityAddCmd{Name: "Run"}, true},
		{"negative goal", ActivityAddCmd{Name: "Run", Goal: -1}, true},
		{"interactive fills later", ActivityAddCmd{Interactive: true}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cmd.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestActivityAddAndList(t *testing.T) {
	ctx := setupContext(t)
	addActivity(t, ctx, "Piano", 3)

	s, err := ctx.Store(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	a, err := s.Lookup("piano")
	if err != nil {
		t.Fatalf("lookup failed: %v", err)
	}
	if a.WeeklyGoalHours != 3 {
		t.Errorf("goal = %v, want 3", a.WeeklyGoalHours)
	}
	if len(a.History) == 0 {
		t.Error("expected the current week to be seeded")
	}

	if err := (&ActivityListCmd{ShowIDs: true}).Run(ctx); err != nil {
		t.Errorf("list failed: %v", err)
	}
}

func TestActivityAddRejectsDuplicateName(t *testing.T) {
	ctx := setupContext(t)
	addActivity(t, ctx, "Piano", 3)

	err := (&ActivityAddCmd{Name: "PIANO", Goal: 1}).Run(ctx)
	if err == nil || !strings.Contains(err.Error(), "already exists") {
		t.Errorf("expected duplicate error, got %v", err)
	}
}

func TestActivityEdit(t *testing.T) {
	ctx := setupContext(t)
	addActivity(t, ctx, "Piano", 3)

	name := "Guitar"
	goal := 4.5
	if err := (&ActivityEditCmd{Ref: "Piano", Name: &name, Goal: &goal}).Run(ctx); err != nil {
		t.Fatalf("edit failed: %v", err)
	}

	s, _ := ctx.Store(context.Background())
	a, err := s.Lookup("guitar")
	if err != nil {
		t.Fatalf("renamed activity not found: %v", err)
	}
	if a.WeeklyGoalHours != 4.5 {
		t.Errorf("goal = %v, want 4.5", a.WeeklyGoalHours)
	}

	if err := (&ActivityEditCmd{Ref: "Guitar"}).Run(ctx); err != nil {
		t.Errorf("empty edit should be a no-op, got %v", err)
	}

	bad := 0.0
	if err := (&ActivityEditCmd{Ref: "Guitar", Goal: &bad}).Run(ctx); err == nil {
		t.Error("expected zero goal to be rejected")
	}
	if err := (&ActivityEditCmd{Ref: "missing", Goal: &goal}).Run(ctx); err == nil {
		t.Error("expected unknown activity to fail")
	}
}

func TestActivityEditRejectsNameClash(t *testing.T) {
	ctx := setupContext(t)
	addActivity(t, ctx, "Piano", 3)
	addActivity(t, ctx, "Run", 2)

	name := "piano"
	err := (&ActivityEditCmd{Ref: "Run", Name: &name}).Run(ctx)
	if err == nil || !strings.Contains(err.Error(), "already exists") {
		t.Errorf("expected clash error, got %v", err)
	}
}

func TestActivityDelete(t *testing.T) {
	ctx := setupContext(t)
	addActivity(t, ctx, "Piano", 3)

	ctx.Stdin = strings.NewReader("n\n")
	if err := (&ActivityDeleteCmd{Ref: "Piano"}).Run(ctx); err != nil {
		t.Fatalf("cancelled delete failed: %v", err)
	}
	s, _ := ctx.Store(context.Background())
	if _, err := s.Lookup("Piano"); err != nil {
		t.Fatal("activity should survive a declined prompt")
	}

	ctx.Stdin = strings.NewReader("y\n")
	if err := (&ActivityDeleteCmd{Ref: "Piano"}).Run(ctx); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, err := s.Lookup("Piano"); err == nil {
		t.Error("activity still present after delete")
	}

	list, err := ctx.Service.ListActivities(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 0 {
		t.Errorf("expected database to be empty, got %d activities", len(list))
	}
}

func TestActivityShow(t *testing.T) {
	ctx := setupContext(t)
	addActivity(t, ctx, "Piano", 3)

	s, _ := ctx.Store(context.Background())
	a, _ := s.Lookup("Piano")
	s.SetMinutes(a.ID, fixedNow, "45")

	if err := (&ActivityShowCmd{Ref: "Piano", Weeks: 4, Days: 30}).Run(ctx); err != nil {
		t.Errorf("show failed: %v", err)
	}
	if err := (&ActivityShowCmd{Ref: "Piano", Weeks: 0, Days: 30}).Validate(); err == nil {
		t.Error("expected zero weeks to be rejected")
	}
}
