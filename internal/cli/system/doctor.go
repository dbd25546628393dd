package system

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/julianstephens/weeklit/internal/auth"
	"github.com/julianstephens/weeklit/internal/backup"
	"github.com/julianstephens/weeklit/internal/cli"
	"github.com/julianstephens/weeklit/internal/constants"
	"github.com/julianstephens/weeklit/internal/keyring"
	"github.com/julianstephens/weeklit/internal/validation"
)

type DoctorCmd struct{}

type check struct {
	name string
	// requiresDB skips the check when the database could not be loaded
	requiresDB bool
	// warnOnly reports failures without failing the run
	warnOnly bool
	run      func(ctx *cli.Context) error
}

func (cmd *DoctorCmd) Run(ctx *cli.Context) error {
	fmt.Println("Running diagnostics...")
	fmt.Printf("Config: %s (backend %s)\n\n", ctx.Config.Path, ctx.Config.Backend)

	checks := []check{
		{name: "Database reachable", run: checkDBReachable},
		{name: "Schema version", requiresDB: true, run: checkSchemaVersion},
		{name: "Migrations complete", requiresDB: true, run: checkMigrationsComplete},
		{name: "Backups present", warnOnly: true, run: checkBackupsPresent},
		{name: "Clock/timezone", run: checkClockTimezone},
		{name: "Keyring available", warnOnly: true, run: checkKeyring},
	}
	if ctx.IsRemote() {
		checks = append(checks,
			check{name: "API token", run: checkToken},
			check{name: "API reachable", run: checkAPIHealth},
		)
	}
	checks = append(checks, check{name: "Data validation", requiresDB: !ctx.IsRemote(), run: checkValidation})

	hasError := false
	dbReachable := false
	for i, c := range checks {
		if c.requiresDB && !dbReachable {
			fmt.Printf("⊘ %s: SKIPPED (database not reachable)\n", c.name)
			continue
		}
		err := c.run(ctx)
		switch {
		case err == nil:
			fmt.Printf("✓ %s: OK\n", c.name)
			if i == 0 {
				dbReachable = true
			}
		case c.warnOnly:
			fmt.Printf("⚠ %s: WARNING\n", c.name)
			fmt.Printf("   %v\n", err)
		default:
			fmt.Printf("❌ %s: FAIL\n", c.name)
			fmt.Printf("   Error: %v\n", err)
			hasError = true
		}
	}

	fmt.Println()
	if hasError {
		fmt.Println("Diagnostics completed with errors.")
		return fmt.Errorf("one or more health checks failed")
	}
	fmt.Println("All diagnostics passed!")
	return nil
}

func checkDBReachable(ctx *cli.Context) error {
	if err := ctx.Provider.Load(); err != nil {
		return fmt.Errorf("failed to load database: %w", err)
	}
	return nil
}

func schemaStatus(ctx *cli.Context) (int, int, error) {
	reporter, ok := ctx.Provider.(schemaReporter)
	if !ok {
		return 0, 0, errors.New("storage backend does not report a schema version")
	}
	current, latest, err := reporter.SchemaStatus()
	if err != nil {
		return 0, 0, fmt.Errorf("failed to get schema version: %w", err)
	}
	return current, latest, nil
}

func checkSchemaVersion(ctx *cli.Context) error {
	current, latest, err := schemaStatus(ctx)
	if err != nil {
		return err
	}
	if current > latest {
		return fmt.Errorf("database schema version (%d) is newer than supported version (%d)", current, latest)
	}
	return nil
}

func checkMigrationsComplete(ctx *cli.Context) error {
	current, latest, err := schemaStatus(ctx)
	if err != nil {
		return err
	}
	if current < latest {
		return fmt.Errorf("migrations incomplete: current version %d, latest version %d", current, latest)
	}
	return nil
}

func checkBackupsPresent(ctx *cli.Context) error {
	if ctx.Config.Backend != constants.BackendSQLite {
		return nil
	}
	mgr := backup.NewManager(ctx.Provider.GetConfigPath())
	backups, err := mgr.ListBackups()
	if err != nil {
		return fmt.Errorf("failed to list backups: %w", err)
	}
	if len(backups) == 0 {
		return fmt.Errorf("no backups found - consider creating one with '%s backup create'", constants.AppName)
	}
	return nil
}

func checkClockTimezone(*cli.Context) error {
	now := time.Now()
	if now.Year() < 2020 || now.Year() > 2100 {
		return fmt.Errorf("system time appears incorrect: %s", now.Format(time.RFC3339))
	}
	return nil
}

func checkKeyring(*cli.Context) error {
	if !keyring.IsAvailable() {
		return errors.New("OS keyring is not available; set " + auth.TokenEnv + " instead")
	}
	return nil
}

func checkToken(*cli.Context) error {
	token, err := auth.KeyringSource{}.Token()
	if err != nil {
		return err
	}
	claims, err := auth.Check(token, time.Now())
	if err != nil {
		return err
	}
	if !claims.ExpiresAt.IsZero() {
		fmt.Printf("   token for %s expires %s\n", claims.Email, claims.ExpiresAt.Format(time.RFC1123))
	}
	return nil
}

func checkAPIHealth(ctx *cli.Context) error {
	reqCtx, cancel := context.WithTimeout(context.Background(), ctx.Config.RequestTimeout)
	defer cancel()
	if err := ctx.Remote.Health(reqCtx); err != nil {
		return fmt.Errorf("%s: %w", ctx.Config.APIURL, err)
	}
	return nil
}

func checkValidation(ctx *cli.Context) error {
	activities, err := ctx.Service.ListActivities(context.Background())
	if err != nil {
		return fmt.Errorf("failed to list activities: %w", err)
	}
	result := validation.New().ValidateActivities(activities)
	if result.HasConflicts() {
		return errors.New(result.FormatReport())
	}
	return nil
}
