package system

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/julianstephens/weeklit/internal/cli"
	"github.com/julianstephens/weeklit/internal/config"
	"github.com/julianstephens/weeklit/internal/constants"
	"github.com/julianstephens/weeklit/internal/models"
	"github.com/julianstephens/weeklit/internal/storage"
	"github.com/julianstephens/weeklit/internal/storage/postgres"
	"github.com/julianstephens/weeklit/internal/storage/sqlite"
)

type InitCmd struct {
	Force  bool   `help:"Force reset by deleting the existing SQLite database before initialization."`
	Source string `help:"Source database path or connection string to copy activities from."`
}

func (c *InitCmd) Run(ctx *cli.Context) error {
	if c.Force {
		if err := c.reset(ctx); err != nil {
			return err
		}
	}

	if err := ctx.Provider.Init(); err != nil {
		return err
	}
	fmt.Printf("Initialized %s storage at: %s\n", constants.AppName, ctx.Provider.GetConfigPath())

	if ctx.Config.Path != "" {
		written, err := config.WriteDefault(ctx.Config)
		if err != nil {
			return err
		}
		if written {
			fmt.Printf("Wrote default config to: %s\n", ctx.Config.Path)
		}
	}

	if c.Source != "" {
		fmt.Printf("Copying activities from: %s\n", c.Source)
		n, err := c.copyActivities(context.Background(), ctx)
		if err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
		fmt.Printf("Copied %d activities.\n", n)
	}
	return nil
}

func (c *InitCmd) reset(ctx *cli.Context) error {
	if ctx.Config.Backend == constants.BackendPostgres {
		return errors.New("--force only supports SQLite databases")
	}
	dbPath := ctx.Provider.GetConfigPath()
	if c.Source != "" {
		if absDB, err := filepath.Abs(dbPath); err == nil {
			dbPath = absDB
		}
		if absSource, err := filepath.Abs(c.Source); err == nil && absSource == dbPath {
			return fmt.Errorf("cannot use --force when source and destination are the same: %s", dbPath)
		}
	}

	if _, err := os.Stat(dbPath); err == nil {
		if err := ctx.Provider.Close(); err != nil {
			return fmt.Errorf("failed to close existing database: %w", err)
		}
		if err := os.Remove(dbPath); err != nil {
			return fmt.Errorf("failed to delete existing database: %w", err)
		}
		fmt.Printf("Deleted existing database at: %s\n", dbPath)
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("failed to access existing database: %w", err)
	}
	return nil
}

// copyActivities recreates every activity of the source in the destination.
// The destination issues new ids.
func (c *InitCmd) copyActivities(ctx context.Context, appCtx *cli.Context) (int, error) {
	var source storage.Provider
	if cli.IsPostgresConnString(c.Source) {
		if ok, err := postgres.ValidateConnString(c.Source); !ok {
			if errors.Is(err, postgres.ErrEmbeddedCredentials) {
				return 0, fmt.Errorf("PostgreSQL source connection string contains embedded credentials. Use environment variables or .pgpass instead")
			}
			return 0, err
		}
		source = postgres.New(c.Source)
	} else {
		source = sqlite.NewStore(c.Source)
	}

	if err := source.Load(); err != nil {
		return 0, fmt.Errorf("failed to load source database: %w", err)
	}
	defer source.Close()

	activities, err := source.ListActivities(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list source activities: %w", err)
	}

	existing, err := appCtx.Service.ListActivities(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list destination activities: %w", err)
	}
	taken := make(map[string]bool, len(existing))
	for _, a := range existing {
		taken[strings.ToLower(a.Name)] = true
	}

	copied := 0
	for _, a := range activities {
		if taken[strings.ToLower(a.Name)] {
			fmt.Printf("  Skipping %q (already exists)\n", a.Name)
			continue
		}
		_, err := appCtx.Service.CreateActivity(ctx, models.ActivityDraft{
			Name:            a.Name,
			Description:     a.Description,
			WeeklyGoalHours: a.WeeklyGoalHours,
			History:         a.History,
		})
		if err != nil {
			return copied, fmt.Errorf("failed to copy activity %q: %w", a.Name, err)
		}
		copied++
	}
	return copied, nil
}
