package constants

import "time"

// SessionState represents the current state of the TUI application
type SessionState int

// Backend selects which Activity Service implementation the client talks to
type Backend string

const (
	AppName            = "weeklit"
	DefaultKeyringUser = "database-connection"
	TokenKeyringUser   = "api-token"
	ConfigFileName     = "config.toml"
	Version            = "v0.1.0"

	// DateFormat is the standard date format used throughout the application (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// MonthKeyFormat is the history bucket key layout (YYYY-MM)
	MonthKeyFormat = "2006-01"

	DaysPerWeek = 7

	// Minutes constants
	MinMinutesPerDay = 0
	MaxMinutesPerDay = 999

	// Detail view defaults
	DefaultPastWeeks   = 12
	DefaultSeriesDays  = 90
	MaxExportRangeDays = 2 * 365

	// Sync constants
	DefaultDebounce       = 1 * time.Second
	DefaultSweepInterval  = 5 * time.Second
	DefaultRetryDelay     = 2 * time.Second
	DefaultMaxAttempts    = 3
	DefaultRequestTimeout = 10 * time.Second

	// Backend names
	BackendRemote   Backend = "remote"
	BackendSQLite   Backend = "sqlite"
	BackendPostgres Backend = "postgres"

	DefaultAPIURL = "http://localhost:5000/api"

	// Preference keys
	PrefWeekAnchor = "nav.week_anchor"

	// Backup constants
	MaxBackups       = 14
	BackupDirName    = "backups"
	BackupFilePrefix = "weeklit-"
	BackupFileSuffix = ".db"

	// Export constants
	ExportFilePrefix = "activities_"
	ExportFileSuffix = ".csv"
)

// Session States
const (
	StateWeek SessionState = iota
	StateDetail
	StateEditCell
	StateAddActivity
	StateEditActivity
	StateConfirmDelete
)
