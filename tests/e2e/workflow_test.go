package e2e

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const TEST_COMMAND_TIMEOUT = 30 * time.Second

func TestEndToEndWorkflow(t *testing.T) {
	// 1. Setup Environment
	// Allow overriding bin dir via env var, default to ../../bin (relative to tests/e2e)
	cwd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get cwd: %v", err)
	}

	binDir := os.Getenv("WEEKLIT_BIN_DIR")
	if binDir == "" {
		binDir = filepath.Join(cwd, "..", "..", "bin")
	}
	binDir, _ = filepath.Abs(binDir)
	t.Logf("Using bin dir: %s", binDir)

	cliPath := filepath.Join(binDir, "weeklit")
	if _, err := os.Stat(cliPath); os.IsNotExist(err) {
		t.Skipf("CLI binary not found at %s. Build it with 'go build -o bin/weeklit ./cmd/weeklit' first.", cliPath)
	}

	// Create temp home for isolation
	tempDir := t.TempDir()
	t.Logf("Running test in temp dir: %s", tempDir)

	var cleanEnv []string
	for _, e := range os.Environ() {
		if strings.HasPrefix(e, "XDG_CONFIG_HOME=") || strings.HasPrefix(e, "HOME=") || strings.HasPrefix(e, "WEEKLIT_") {
			continue
		}
		cleanEnv = append(cleanEnv, e)
	}
	cleanEnv = append(cleanEnv,
		fmt.Sprintf("XDG_CONFIG_HOME=%s", tempDir),
		fmt.Sprintf("HOME=%s", tempDir),
		"WEEKLIT_BACKEND=sqlite",
	)

	// 2. Initialize
	t.Log("Initializing CLI...")
	runCmd(t, cliPath, cleanEnv, "init")
	if _, err := os.Stat(filepath.Join(tempDir, "weeklit", "config.toml")); err != nil {
		t.Errorf("init did not write a config file: %v", err)
	}

	// 3. Activities
	runCmd(t, cliPath, cleanEnv, "activity", "add", "Piano", "--goal", "3", "--description", "scales")
	runCmd(t, cliPath, cleanEnv, "activity", "add", "Run", "--goal", "2")
	out := runCmd(t, cliPath, cleanEnv, "activity", "list")
	if !strings.Contains(out, "Piano") || !strings.Contains(out, "Run") {
		t.Errorf("activity list missing entries:\n%s", out)
	}

	// 4. Log minutes in separate processes; each must be persisted on exit
	today := time.Now()
	yesterday := today.AddDate(0, 0, -1)
	runCmd(t, cliPath, cleanEnv, "log", "Piano", "45")
	runCmd(t, cliPath, cleanEnv, "log", "piano", "20", "--date", "yesterday")
	runCmd(t, cliPath, cleanEnv, "log", "Piano", "15", "--add")
	if out, err := tryCmd(cliPath, cleanEnv, "log", "Run", "abc"); err == nil {
		t.Errorf("expected invalid minutes to fail:\n%s", out)
	}

	out = runCmd(t, cliPath, cleanEnv, "week")
	if !strings.Contains(out, "1h 00m") {
		t.Errorf("week view missing logged minutes:\n%s", out)
	}
	runCmd(t, cliPath, cleanEnv, "activity", "show", "Piano", "--weeks", "2", "--days", "7")

	// 5. Export
	exportDir := filepath.Join(tempDir, "export")
	if err := os.MkdirAll(exportDir, 0755); err != nil {
		t.Fatal(err)
	}
	from := yesterday.Format("2006-01-02")
	to := today.Format("2006-01-02")
	runCmd(t, cliPath, cleanEnv, "export", "--from", from, "--to", to, "--out", exportDir)

	f, err := os.Open(filepath.Join(exportDir, fmt.Sprintf("activities_%s_to_%s.csv", from, to)))
	if err != nil {
		t.Fatalf("export file missing: %v", err)
	}
	rows, err := csv.NewReader(f).ReadAll()
	f.Close()
	if err != nil {
		t.Fatalf("failed to read export: %v", err)
	}
	want := map[string][]string{
		"Piano": {"Piano", "20", "60"},
		"Run":   {"Run", "0", "0"},
	}
	for _, row := range rows[1:] {
		if exp, ok := want[row[0]]; ok && strings.Join(row, ",") != strings.Join(exp, ",") {
			t.Errorf("export row = %v, want %v", row, exp)
		}
	}

	// 6. Backups and diagnostics
	runCmd(t, cliPath, cleanEnv, "backup", "create")
	out = runCmd(t, cliPath, cleanEnv, "backup", "list")
	if !strings.Contains(out, "weeklit-") {
		t.Errorf("backup list missing backup:\n%s", out)
	}
	out = runCmd(t, cliPath, cleanEnv, "doctor")
	t.Logf("Doctor output: %s", out)

	// 7. Delete
	runCmd(t, cliPath, cleanEnv, "activity", "delete", "Run", "--yes")
	out = runCmd(t, cliPath, cleanEnv, "activity", "list")
	if strings.Contains(out, "Run") {
		t.Errorf("deleted activity still listed:\n%s", out)
	}
}

func tryCmd(path string, env []string, args ...string) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), TEST_COMMAND_TIMEOUT)
	defer cancel()
	cmd := exec.CommandContext(ctx, path, args...)
	cmd.Env = env
	out, err := cmd.CombinedOutput()
	return string(out), err
}

func runCmd(t *testing.T, path string, env []string, args ...string) string {
	t.Helper()
	out, err := tryCmd(path, env, args...)
	if err != nil {
		t.Fatalf("Command %s %v failed: %v\nOutput: %s", path, args, err, out)
	}
	return out
}
