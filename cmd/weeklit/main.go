package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/alecthomas/kong"

	"github.com/julianstephens/weeklit/internal/cli"
	"github.com/julianstephens/weeklit/internal/cli/activities"
	"github.com/julianstephens/weeklit/internal/cli/backups"
	"github.com/julianstephens/weeklit/internal/cli/system"
	"github.com/julianstephens/weeklit/internal/cli/weeks"
	"github.com/julianstephens/weeklit/internal/config"
	"github.com/julianstephens/weeklit/internal/constants"
	apperrors "github.com/julianstephens/weeklit/internal/errors"
	"github.com/julianstephens/weeklit/internal/logger"
)

// flushTimeout bounds the final flush on exit or signal
const flushTimeout = 10 * time.Second

var CLI struct {
	Version  kong.VersionFlag
	Config   string `help:"Path to the TOML config file." type:"path" default:"${config_path}"`
	Backend  string `help:"Override the configured backend (remote|sqlite|postgres)."`
	Database string `help:"Override the SQLite path or PostgreSQL connection string. Credentials must NOT be embedded; use 'weeklit auth set-db' instead."`
	Debug    bool   `help:"Enable debug logging to stderr."`

	Init     system.InitCmd    `cmd:"" help:"Initialize weeklit storage and config."`
	Migrate  system.MigrateCmd `cmd:"" help:"Run database migrations."`
	Doctor   system.DoctorCmd  `cmd:"" help:"Run health checks and diagnostics."`
	Tui      system.TuiCmd     `cmd:"" help:"Launch the weekly grid." default:"1"`
	Week     weeks.WeekCmd     `cmd:"" help:"Show weekly progress for every activity."`
	Log      weeks.LogCmd      `cmd:"" help:"Log minutes for an activity."`
	Export   weeks.ExportCmd   `cmd:"" help:"Export daily minutes to CSV."`
	Auth     system.AuthCmd    `cmd:"" help:"Manage API and database credentials."`
	DebugCmd system.DebugCmd   `cmd:"" name:"debug" help:"Debug commands for troubleshooting."`

	Activity struct {
		Add    activities.ActivityAddCmd    `cmd:"" help:"Add a new activity."`
		List   activities.ActivityListCmd   `cmd:"" help:"List activities with this week's progress." default:"1"`
		Edit   activities.ActivityEditCmd   `cmd:"" help:"Edit an existing activity."`
		Delete activities.ActivityDeleteCmd `cmd:"" help:"Delete an activity."`
		Show   activities.ActivityShowCmd   `cmd:"" help:"Show recent weeks and daily minutes for an activity."`
	} `cmd:"" help:"Manage activities."`
	Backup struct {
		Create  backups.BackupCreateCmd  `cmd:"" help:"Create a manual backup." default:"1"`
		List    backups.BackupListCmd    `cmd:"" help:"List available backups."`
		Restore backups.BackupRestoreCmd `cmd:"" help:"Restore from a backup."`
	} `cmd:"" help:"Manage database backups."`
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name(constants.AppName),
		kong.Description("Weekly activity tracker"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{
			"version":     constants.Version,
			"config_path": config.DefaultConfigPath(),
			"past_weeks":  strconv.Itoa(constants.DefaultPastWeeks),
			"series_days": strconv.Itoa(constants.DefaultSeriesDays),
		},
	)

	cfg, err := config.Load(CLI.Config)
	if err != nil {
		apperrors.Fatal(err)
	}
	if CLI.Backend != "" {
		cfg.Backend = constants.Backend(CLI.Backend)
	}
	if CLI.Database != "" {
		cfg.Database = config.ExpandHome(CLI.Database)
	}
	cfg.Debug = cfg.Debug || CLI.Debug
	if err := cfg.Validate(); err != nil {
		apperrors.Fatal(err)
	}

	command := ctx.Command()
	if err := logger.Init(logger.Config{
		Debug:     cfg.Debug,
		ConfigDir: cfg.Dir,
		Quiet:     command == "tui",
	}); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to initialize logger: %v\n", err)
	}

	appCtx, err := cli.NewContext(cfg)
	if err != nil {
		apperrors.Fatal(err)
	}

	if err := openStorage(appCtx, command); err != nil {
		apperrors.Fatal(err)
	}

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-sigs
		logger.Info("signal received, flushing pending minutes", "signal", sig)
		flushCtx, cancel := context.WithTimeout(context.Background(), flushTimeout)
		defer cancel()
		if err := appCtx.Close(flushCtx); err != nil {
			fmt.Fprintln(os.Stderr, apperrors.Format(err))
		}
		os.Exit(130)
	}()

	runErr := ctx.Run(appCtx)
	signal.Stop(sigs)

	flushCtx, cancel := context.WithTimeout(context.Background(), flushTimeout)
	closeErr := appCtx.Close(flushCtx)
	cancel()

	if runErr != nil {
		apperrors.Fatal(runErr)
	}
	if closeErr != nil {
		apperrors.Fatal(fmt.Errorf("failed to save pending minutes: %w", closeErr))
	}
}

// openStorage prepares the local database for the selected command. Init and
// migrate manage the schema themselves. The remote backend keeps only
// preferences locally, so that database is created on demand.
func openStorage(appCtx *cli.Context, command string) error {
	switch {
	case command == "init" || command == "migrate":
		return nil
	case appCtx.IsRemote():
		return appCtx.Provider.Init()
	default:
		return appCtx.Provider.Load()
	}
}
