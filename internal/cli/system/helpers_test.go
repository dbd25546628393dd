package system

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/julianstephens/weeklit/internal/cli"
	"github.com/julianstephens/weeklit/internal/config"
)

func setupTestContext(t *testing.T) (*cli.Context, string) {
	t.Helper()
	dir := t.TempDir()
	cfg := config.Default(dir)
	cfg.Path = filepath.Join(dir, "config.toml")
	cfg.Database = config.DefaultDBPathIn(dir)

	ctx, err := cli.NewContext(cfg)
	if err != nil {
		t.Fatalf("failed to build context: %v", err)
	}
	t.Cleanup(func() {
		if err := ctx.Close(context.Background()); err != nil {
			t.Errorf("failed to close context: %v", err)
		}
	})
	return ctx, cfg.Database
}

func setupInitializedContext(t *testing.T) (*cli.Context, string) {
	t.Helper()
	ctx, dbPath := setupTestContext(t)
	if err := ctx.Provider.Init(); err != nil {
		t.Fatalf("failed to initialize store: %v", err)
	}
	return ctx, dbPath
}
