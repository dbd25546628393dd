package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/julianstephens/weeklit/internal/constants"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent.toml")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Backend != constants.BackendSQLite {
		t.Errorf("Backend = %s, want sqlite", cfg.Backend)
	}
	if cfg.Sync.Debounce != constants.DefaultDebounce || cfg.Sync.MaxAttempts != constants.DefaultMaxAttempts {
		t.Errorf("unexpected sync defaults: %+v", cfg.Sync)
	}
	if cfg.Database != filepath.Join(filepath.Dir(path), "weeklit.db") {
		t.Errorf("Database = %s", cfg.Database)
	}
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
backend = "remote"
api_url = "https://tracker.example/api"
request_timeout = "3s"

[sync]
debounce = "250ms"
sweep_interval = "10s"
max_attempts = 5
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Backend != constants.BackendRemote || cfg.APIURL != "https://tracker.example/api" {
		t.Errorf("unexpected backend settings: %+v", cfg)
	}
	if cfg.RequestTimeout != 3*time.Second {
		t.Errorf("RequestTimeout = %v", cfg.RequestTimeout)
	}
	if cfg.Sync.Debounce != 250*time.Millisecond || cfg.Sync.SweepInterval != 10*time.Second || cfg.Sync.MaxAttempts != 5 {
		t.Errorf("unexpected sync settings: %+v", cfg.Sync)
	}
	if cfg.Sync.RetryDelay != constants.DefaultRetryDelay {
		t.Errorf("unset retry_delay should keep default, got %v", cfg.Sync.RetryDelay)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "backend = \"remote\"\n[sync]\ndebounce = \"2s\"\n")
	t.Setenv("WEEKLIT_DEBOUNCE", "500ms")
	t.Setenv("WEEKLIT_BACKEND", "SQLITE")
	t.Setenv("WEEKLIT_DEBUG", "true")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Sync.Debounce != 500*time.Millisecond {
		t.Errorf("Debounce = %v, want 500ms", cfg.Sync.Debounce)
	}
	if cfg.Backend != constants.BackendSQLite || !cfg.Debug {
		t.Errorf("env overrides not applied: %+v", cfg)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"unknown backend", `backend = "mongo"`},
		{"bad duration", "[sync]\ndebounce = \"soon\"\n"},
		{"zero attempts", "[sync]\nmax_attempts = 0\n"},
		{"malformed toml", `backend = `},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load(writeConfig(t, tt.body)); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	if got := ExpandHome("~/x.db"); got != filepath.Join(home, "x.db") {
		t.Errorf("ExpandHome() = %s", got)
	}
	if got := ExpandHome("/abs/x.db"); got != "/abs/x.db" {
		t.Errorf("ExpandHome() changed an absolute path: %s", got)
	}
}

func TestWriteDefaultRoundTrip(t *testing.T) {
	dir := t.TempDir()
	cfg := Default(dir)
	cfg.Path = filepath.Join(dir, "config.toml")
	cfg.Database = DefaultDBPathIn(dir)
	cfg.Sync.Debounce = 750 * time.Millisecond

	written, err := WriteDefault(cfg)
	if err != nil {
		t.Fatalf("WriteDefault() error: %v", err)
	}
	if !written {
		t.Fatal("expected a new config file")
	}

	loaded, err := Load(cfg.Path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if loaded.Sync.Debounce != 750*time.Millisecond {
		t.Errorf("Debounce = %v", loaded.Sync.Debounce)
	}
	if loaded.Database != cfg.Database || loaded.Backend != cfg.Backend {
		t.Errorf("loaded = %+v", loaded)
	}

	written, err = WriteDefault(cfg)
	if err != nil || written {
		t.Errorf("second WriteDefault() = %v, %v; existing files are left alone", written, err)
	}
}
