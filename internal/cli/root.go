package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/mattn/go-runewidth"

	"github.com/julianstephens/weeklit/internal/auth"
	"github.com/julianstephens/weeklit/internal/backup"
	"github.com/julianstephens/weeklit/internal/calendar"
	"github.com/julianstephens/weeklit/internal/config"
	"github.com/julianstephens/weeklit/internal/constants"
	"github.com/julianstephens/weeklit/internal/keyring"
	"github.com/julianstephens/weeklit/internal/logger"
	"github.com/julianstephens/weeklit/internal/service"
	"github.com/julianstephens/weeklit/internal/service/remote"
	"github.com/julianstephens/weeklit/internal/storage"
	"github.com/julianstephens/weeklit/internal/storage/postgres"
	"github.com/julianstephens/weeklit/internal/storage/sqlite"
	"github.com/julianstephens/weeklit/internal/store"
	"github.com/julianstephens/weeklit/internal/syncer"
)

// Context is handed to every command's Run method
type Context struct {
	Config config.Config
	// Provider is the local database. With the remote backend it only holds preferences.
	Provider storage.Provider
	// Service is where activities live: the remote client or Provider itself
	Service service.Service
	// Remote is set for the remote backend
	Remote *remote.Client
	Stdin  io.Reader
	Now    func() time.Time

	mu    sync.Mutex
	store *store.Store
}

// NewContext wires the provider and service selected by cfg
func NewContext(cfg config.Config) (*Context, error) {
	c := &Context{Config: cfg, Stdin: os.Stdin, Now: time.Now}

	switch cfg.Backend {
	case constants.BackendPostgres:
		connStr, err := postgresConnString(cfg.Database)
		if err != nil {
			return nil, err
		}
		pg := postgres.New(connStr)
		c.Provider = pg
		c.Service = pg
	case constants.BackendRemote:
		c.Provider = sqlite.NewStore(cfg.Database)
		c.Remote = remote.New(cfg.APIURL, auth.KeyringSource{}, remote.WithTimeout(cfg.RequestTimeout))
		c.Service = c.Remote
	default:
		s := sqlite.NewStore(cfg.Database)
		c.Provider = s
		c.Service = s
	}
	return c, nil
}

// postgresConnString uses the configured database when it is a connection
// string and falls back to the keyring otherwise. Only the keyring may hold
// a password.
func postgresConnString(database string) (string, error) {
	if IsPostgresConnString(database) {
		if ok, err := postgres.ValidateConnString(database); !ok {
			return "", err
		}
		return database, nil
	}
	connStr, err := keyring.GetConnectionString()
	if err != nil {
		return "", fmt.Errorf("no PostgreSQL connection string configured; set 'database' or run 'weeklit auth set-db': %w", err)
	}
	return connStr, nil
}

// IsPostgresConnString reports whether s looks like a URL or key=value DSN
func IsPostgresConnString(s string) bool {
	return strings.HasPrefix(s, "postgres://") || strings.HasPrefix(s, "postgresql://") || strings.Contains(s, "host=")
}

// IsRemote reports whether activities are served by the remote API
func (c *Context) IsRemote() bool {
	return c.Remote != nil
}

// SyncOptions maps the configured timings onto the coordinator
func (c *Context) SyncOptions() syncer.Options {
	return syncer.Options{
		Debounce:      c.Config.Sync.Debounce,
		SweepInterval: c.Config.Sync.SweepInterval,
		RetryDelay:    c.Config.Sync.RetryDelay,
		MaxAttempts:   c.Config.Sync.MaxAttempts,
		OnError: func(err error) {
			logger.Error("sync failed", "error", err)
		},
	}
}

// Store returns the loaded activity store, creating it on first use
func (c *Context) Store(ctx context.Context) (*store.Store, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.store != nil {
		return c.store, nil
	}
	s := store.New(c.Service, c.SyncOptions())
	if err := s.Load(ctx); err != nil {
		_ = s.Close(ctx)
		return nil, fmt.Errorf("failed to load activities: %w", err)
	}
	c.store = s
	return s, nil
}

// Today returns the current local date
func (c *Context) Today() time.Time {
	if c.Now == nil {
		return calendar.Today()
	}
	return calendar.DateOnly(c.Now())
}

// Flush persists pending minutes without stopping the store. It is safe to
// call from a signal handler while a command runs.
func (c *Context) Flush(ctx context.Context) error {
	c.mu.Lock()
	s := c.store
	c.mu.Unlock()
	if s == nil {
		return nil
	}
	return s.FlushAll(ctx)
}

// Close flushes pending minutes and closes the database
func (c *Context) Close(ctx context.Context) error {
	c.mu.Lock()
	s := c.store
	c.store = nil
	c.mu.Unlock()

	var flushErr error
	if s != nil {
		flushErr = s.Close(ctx)
	}
	if c.Provider != nil {
		if err := c.Provider.Close(); err != nil {
			logger.Warn("failed to close database", "error", err)
		}
	}
	return flushErr
}

// PerformAutomaticBackup snapshots a local SQLite database and only logs failures
func (c *Context) PerformAutomaticBackup() {
	if c.Config.Backend != constants.BackendSQLite {
		return
	}
	mgr := backup.NewManager(c.Provider.GetConfigPath())
	if _, err := mgr.CreateBackup(); err != nil {
		logger.Warn("Automatic backup failed", "error", err)
	}
}

// ParseDateArg accepts YYYY-MM-DD, "today" or "yesterday"
func (c *Context) ParseDateArg(s string) (time.Time, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "today":
		return c.Today(), nil
	case "yesterday":
		return c.Today().AddDate(0, 0, -1), nil
	}
	d, err := calendar.ParseDate(s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (expected YYYY-MM-DD, today or yesterday)", s)
	}
	return d, nil
}

// Confirm asks a yes/no question on Stdin
func (c *Context) Confirm(prompt string) (bool, error) {
	fmt.Printf("%s [y/N]: ", prompt)
	response, err := bufio.NewReader(c.Stdin).ReadString('\n')
	if err != nil && err != io.EOF {
		return false, err
	}
	response = strings.TrimSpace(strings.ToLower(response))
	return response == "y" || response == "yes", nil
}

// FormatMinutes renders minutes as "1h 05m", "45m" or "-" for none
func FormatMinutes(m int) string {
	switch {
	case m <= 0:
		return "-"
	case m < 60:
		return fmt.Sprintf("%dm", m)
	default:
		return fmt.Sprintf("%dh %02dm", m/60, m%60)
	}
}

// FitName pads or truncates an activity name to width terminal cells
func FitName(name string, width int) string {
	return runewidth.FillRight(runewidth.Truncate(name, width, "…"), width)
}
