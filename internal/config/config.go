// Package config loads client settings from a TOML file and WEEKLIT_* environment overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/julianstephens/weeklit/internal/constants"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Backend        *string    `toml:"backend"`
	APIURL         *string    `toml:"api_url"`
	Database       *string    `toml:"database"`
	RequestTimeout *string    `toml:"request_timeout"`
	Debug          *bool      `toml:"debug"`
	Sync           SyncConfig `toml:"sync"`
}

// SyncConfig maps the [sync] table.
type SyncConfig struct {
	Debounce      *string `toml:"debounce"`
	SweepInterval *string `toml:"sweep_interval"`
	RetryDelay    *string `toml:"retry_delay"`
	MaxAttempts   *int    `toml:"max_attempts"`
}

// Config is the resolved runtime configuration.
type Config struct {
	Path           string
	Dir            string
	Backend        constants.Backend
	APIURL         string
	Database       string
	RequestTimeout time.Duration
	Debug          bool
	Sync           Sync
}

// Sync holds the coordinator timings.
type Sync struct {
	Debounce      time.Duration
	SweepInterval time.Duration
	RetryDelay    time.Duration
	MaxAttempts   int
}

// Default returns the built-in configuration rooted at dir.
func Default(dir string) Config {
	return Config{
		Dir:            dir,
		Backend:        constants.BackendSQLite,
		APIURL:         constants.DefaultAPIURL,
		RequestTimeout: constants.DefaultRequestTimeout,
		Sync: Sync{
			Debounce:      constants.DefaultDebounce,
			SweepInterval: constants.DefaultSweepInterval,
			RetryDelay:    constants.DefaultRetryDelay,
			MaxAttempts:   constants.DefaultMaxAttempts,
		},
	}
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	return cfg, nil
}

// Load resolves defaults, then the file at path, then environment overrides.
func Load(path string) (Config, error) {
	path = ExpandHome(path)
	dir := DefaultConfigDir()
	if path == "" {
		path = DefaultConfigPath()
	} else {
		dir = filepath.Dir(path)
	}

	cfg := Default(dir)
	cfg.Path = path
	cfg.Database = DefaultDBPathIn(dir)

	file, err := LoadConfig(path)
	if err != nil {
		return Config{}, err
	}
	if err := cfg.apply(file); err != nil {
		return Config{}, fmt.Errorf("invalid config %s: %w", path, err)
	}
	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) apply(f FileConfig) error {
	if f.Backend != nil {
		c.Backend = constants.Backend(strings.ToLower(*f.Backend))
	}
	if f.APIURL != nil {
		c.APIURL = *f.APIURL
	}
	if f.Database != nil {
		c.Database = ExpandHome(*f.Database)
	}
	if f.Debug != nil {
		c.Debug = *f.Debug
	}
	if f.Sync.MaxAttempts != nil {
		c.Sync.MaxAttempts = *f.Sync.MaxAttempts
	}

	durations := []struct {
		name string
		raw  *string
		dst  *time.Duration
	}{
		{"request_timeout", f.RequestTimeout, &c.RequestTimeout},
		{"sync.debounce", f.Sync.Debounce, &c.Sync.Debounce},
		{"sync.sweep_interval", f.Sync.SweepInterval, &c.Sync.SweepInterval},
		{"sync.retry_delay", f.Sync.RetryDelay, &c.Sync.RetryDelay},
	}
	for _, d := range durations {
		if d.raw == nil {
			continue
		}
		parsed, err := time.ParseDuration(*d.raw)
		if err != nil {
			return fmt.Errorf("%s: %w", d.name, err)
		}
		*d.dst = parsed
	}
	return nil
}

func (c *Config) applyEnv() {
	c.Backend = constants.Backend(strings.ToLower(getEnv("WEEKLIT_BACKEND", string(c.Backend))))
	c.APIURL = getEnv("WEEKLIT_API_URL", c.APIURL)
	c.Database = ExpandHome(getEnv("WEEKLIT_DB", c.Database))
	c.RequestTimeout = getDurationEnv("WEEKLIT_REQUEST_TIMEOUT", c.RequestTimeout)
	c.Sync.Debounce = getDurationEnv("WEEKLIT_DEBOUNCE", c.Sync.Debounce)
	c.Sync.SweepInterval = getDurationEnv("WEEKLIT_SWEEP_INTERVAL", c.Sync.SweepInterval)
	c.Sync.RetryDelay = getDurationEnv("WEEKLIT_RETRY_DELAY", c.Sync.RetryDelay)
	c.Sync.MaxAttempts = getIntEnv("WEEKLIT_MAX_ATTEMPTS", c.Sync.MaxAttempts)
	c.Debug = getBoolEnv("WEEKLIT_DEBUG", c.Debug)
}

// Validate rejects settings the client cannot run with.
func (c Config) Validate() error {
	switch c.Backend {
	case constants.BackendRemote:
		if strings.TrimSpace(c.APIURL) == "" {
			return fmt.Errorf("api_url is required for the remote backend")
		}
	case constants.BackendSQLite, constants.BackendPostgres:
		if strings.TrimSpace(c.Database) == "" {
			return fmt.Errorf("database is required for the %s backend", c.Backend)
		}
	default:
		return fmt.Errorf("unknown backend %q (expected remote, sqlite or postgres)", c.Backend)
	}
	if c.Sync.Debounce <= 0 || c.Sync.SweepInterval <= 0 || c.Sync.RetryDelay < 0 {
		return fmt.Errorf("sync intervals must be positive")
	}
	if c.Sync.MaxAttempts < 1 {
		return fmt.Errorf("sync.max_attempts must be at least 1")
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("request_timeout must be positive")
	}
	return nil
}

// DefaultDBPathIn returns the SQLite path inside a config directory.
func DefaultDBPathIn(dir string) string {
	return filepath.Join(dir, constants.AppName+".db")
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getIntEnv(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getBoolEnv(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return fallback
}

// FileConfigFrom converts resolved settings back to their file form.
func FileConfigFrom(c Config) FileConfig {
	backend := string(c.Backend)
	timeout := c.RequestTimeout.String()
	debounce := c.Sync.Debounce.String()
	sweep := c.Sync.SweepInterval.String()
	retry := c.Sync.RetryDelay.String()
	attempts := c.Sync.MaxAttempts
	f := FileConfig{
		Backend:        &backend,
		RequestTimeout: &timeout,
		Debug:          &c.Debug,
		Sync: SyncConfig{
			Debounce:      &debounce,
			SweepInterval: &sweep,
			RetryDelay:    &retry,
			MaxAttempts:   &attempts,
		},
	}
	if c.APIURL != "" {
		f.APIURL = &c.APIURL
	}
	// connection strings belong in the keyring, not the file
	if c.Database != "" && c.Backend != constants.BackendPostgres {
		f.Database = &c.Database
	}
	return f
}

// WriteDefault writes c to c.Path unless a file already exists there.
// It reports whether a file was written.
func WriteDefault(c Config) (bool, error) {
	if _, err := os.Stat(c.Path); err == nil {
		return false, nil
	} else if !os.IsNotExist(err) {
		return false, fmt.Errorf("failed to stat config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(c.Path), 0700); err != nil {
		return false, fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.OpenFile(c.Path, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0600)
	if err != nil {
		return false, fmt.Errorf("failed to create config: %w", err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(FileConfigFrom(c)); err != nil {
		return false, fmt.Errorf("failed to write config: %w", err)
	}
	return true, nil
}
