package cli

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"toolbelt-mcp/internal/secrets"
)

// newTestRoot creates a fresh cobra root command wired to all subcommands.
// Each test gets an isolated command tree to avoid shared state.
func newTestRoot() *cobra.Command {
	root := &cobra.Command{
		Use:          "toolbelt-mcp",
		SilenceUsage: true,
	}
	root.AddCommand(NewServeCmd("test"))
	root.AddCommand(NewSecretCmd())
	return root
}

// executeCommand runs a cobra command with the given args and captures stdout/stderr.
func executeCommand(root *cobra.Command, args ...string) (stdout, stderr string, err error) {
	var outBuf, errBuf bytes.Buffer
	root.SetOut(&outBuf)
	root.SetErr(&errBuf)
	root.SetArgs(args)
	err = root.Execute()
	return outBuf.String(), errBuf.String(), err
}

func TestSecretSetRejectsUnknownKey(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "toolbelt.db")
	_, _, err := executeCommand(newTestRoot(), "secret", "set", "password", "hunter2", "--sqlite-path", dbPath)
	var exitErr *ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("expected ExitError, got %v", err)
	}
	if exitErr.Code != exitValidation {
		t.Errorf("exit code = %d, want %d", exitErr.Code, exitValidation)
	}
	if !strings.Contains(exitErr.Message, "unknown secret key") {
		t.Errorf("message = %q", exitErr.Message)
	}
	if _, err := os.Stat(dbPath); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("store file was created for a rejected key")
	}
}

func TestSecretSetRejectsEmptyValue(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "toolbelt.db")
	_, _, err := executeCommand(newTestRoot(), "secret", "set", secrets.KeyGithubToken, "   ", "--sqlite-path", dbPath)
	var exitErr *ExitError
	if !errors.As(err, &exitErr) || exitErr.Code != exitValidation {
		t.Fatalf("expected validation ExitError, got %v", err)
	}
}

func TestSecretSetRoundTrip(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "toolbelt.db")
	stdout, _, err := executeCommand(newTestRoot(), "secret", "set", secrets.KeyGithubToken, "ghp-test", "--sqlite-path", dbPath)
	if err != nil {
		t.Fatalf("secret set failed: %v", err)
	}
	if !strings.Contains(stdout, "Stored github_token") {
		t.Errorf("stdout = %q", stdout)
	}
	if strings.Contains(stdout, "ghp-test") {
		t.Errorf("stdout echoes the secret value")
	}

	store, err := secrets.NewSQLiteStore(secrets.SQLiteConfig{Path: dbPath})
	if err != nil {
		t.Fatalf("reopening store: %v", err)
	}
	defer store.Close()
	got, err := store.Get(context.Background(), secrets.KeyGithubToken)
	if err != nil {
		t.Fatalf("reading back: %v", err)
	}
	if got != "ghp-test" {
		t.Errorf("value = %q, want ghp-test", got)
	}
}

func TestServeRejectsMissingConfigFile(t *testing.T) {
	_, _, err := executeCommand(newTestRoot(), "serve", "--config", filepath.Join(t.TempDir(), "absent.yaml"))
	var exitErr *ExitError
	if !errors.As(err, &exitErr) || exitErr.Code != exitValidation {
		t.Fatalf("expected validation ExitError, got %v", err)
	}
}

func TestServeRejectsInvalidPort(t *testing.T) {
	_, _, err := executeCommand(newTestRoot(), "serve",
		"--port", "not-a-port",
		"--sqlite-path", filepath.Join(t.TempDir(), "toolbelt.db"))
	var exitErr *ExitError
	if !errors.As(err, &exitErr) || exitErr.Code != exitValidation {
		t.Fatalf("expected validation ExitError, got %v", err)
	}
	if !strings.Contains(exitErr.Message, "port") {
		t.Errorf("message = %q", exitErr.Message)
	}
}

func TestServeRejectsInvalidSweepSchedule(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "toolbelt.yaml")
	if err := os.WriteFile(cfgPath, []byte("sweep_schedule: banana\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, _, err := executeCommand(newTestRoot(), "serve",
		"--config", cfgPath,
		"--sqlite-path", filepath.Join(dir, "toolbelt.db"))
	var exitErr *ExitError
	if !errors.As(err, &exitErr) || exitErr.Code != exitValidation {
		t.Fatalf("expected validation ExitError, got %v", err)
	}
	if !strings.Contains(exitErr.Message, "cron") {
		t.Errorf("message = %q", exitErr.Message)
	}
}
