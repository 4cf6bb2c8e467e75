package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"toolbelt-mcp/internal/secrets"
)

// NewSecretCmd creates the "secret" subcommand tree.
func NewSecretCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "secret",
		Short: "Manage stored secrets",
	}
	cmd.AddCommand(newSecretSetCmd())
	return cmd
}

func newSecretSetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Store a secret without a running server",
		Long:  "Store a secret directly in the SQLite store. Valid keys: " + strings.Join(secrets.KnownKeys(), ", ") + ".",
		Args:  cobra.ExactArgs(2),
		RunE:  runSecretSet,
	}
	cmd.Flags().String("sqlite-path", "", "Path to the secret store database (default: ~/.toolbelt-mcp/toolbelt.db)")
	return cmd
}

func runSecretSet(cmd *cobra.Command, args []string) error {
	key, value := args[0], args[1]
	if !secrets.IsKnownKey(key) {
		return exitError(exitValidation, "unknown secret key %q (valid: %s)", key, strings.Join(secrets.KnownKeys(), ", "))
	}
	if strings.TrimSpace(value) == "" {
		return exitError(exitValidation, "secret value must not be empty")
	}

	path, _ := cmd.Flags().GetString("sqlite-path")
	if strings.TrimSpace(path) == "" {
		var err error
		path, err = secrets.DefaultPath()
		if err != nil {
			return exitError(exitRuntime, "resolving secret store path: %v", err)
		}
	}
	store, err := secrets.NewSQLiteStore(secrets.SQLiteConfig{Path: path})
	if err != nil {
		return exitError(exitRuntime, "opening secret store: %v", err)
	}
	defer func() {
		_ = store.Close()
	}()

	if err := store.Set(cmd.Context(), key, value); err != nil {
		return exitError(exitRuntime, "storing secret: %v", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Stored %s\n", key)
	return nil
}
