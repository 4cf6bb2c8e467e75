// Command toolbelt-mcp starts the MCP utility-tool server.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"toolbelt-mcp/internal/cli"
)

// Set via ldflags at build time.
var version = "dev"

func main() {
	if err := rootCmd.Execute(); err != nil {
		var exitErr *cli.ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "toolbelt-mcp",
	Short: "MCP utility-tool server",
	Long:  "toolbelt-mcp serves utility tools (time, formatting, conversions, random data, image generation) to MCP clients over SSE.",
	// SilenceUsage prevents printing usage on every error
	SilenceUsage: true,
}

func init() {
	rootCmd.Version = version
	rootCmd.SetVersionTemplate(fmt.Sprintf("toolbelt-mcp version %s\n", version))

	rootCmd.AddCommand(cli.NewServeCmd(version))
	rootCmd.AddCommand(cli.NewSecretCmd())
}
