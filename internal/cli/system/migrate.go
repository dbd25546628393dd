package system

import (
	"fmt"

	"github.com/julianstephens/weeklit/internal/cli"
	"github.com/julianstephens/weeklit/internal/storage/postgres"
	"github.com/julianstephens/weeklit/internal/storage/sqlite"
)

type schemaReporter interface {
	SchemaStatus() (current, latest int, err error)
}

type MigrateCmd struct{}

func (c *MigrateCmd) Run(ctx *cli.Context) error {
	printLine := func(msg string) { fmt.Println(msg) }
	switch s := ctx.Provider.(type) {
	case *sqlite.Store:
		s.MigrationLog = printLine
	case *postgres.Store:
		s.MigrationLog = printLine
	}

	reporter, ok := ctx.Provider.(schemaReporter)
	if !ok {
		return fmt.Errorf("migrate is not supported for this storage backend")
	}

	if err := ctx.Provider.Init(); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	current, latest, err := reporter.SchemaStatus()
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	if current == latest {
		fmt.Printf("Database is up to date (schema version %d).\n", current)
		return nil
	}
	return fmt.Errorf("schema version %d does not match latest %d after migrating", current, latest)
}
