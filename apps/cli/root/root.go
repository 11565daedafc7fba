package root

import (
	"github.com/spf13/cobra"

	"github.com/concoro/concoro-platform/apps/cli/internal/cliutil"
)

// rootCmd is the base command for the Concoro admin CLI. Subcommands (slug, sitemap, auth) are attached here.
var rootCmd = &cobra.Command{
	Use:           "concoro",
	Short:         "Concoro admin CLI",
	Long:          "Administrative utilities for Concoro (bandi slugs, sitemap publishing, dev tokens).",
	SilenceErrors: true,
	SilenceUsage:  true,
}

func init() {
	rootCmd.PersistentFlags().String(cliutil.LogLevelFlag, "warn", "log level written to stderr (debug, info, warn, error)")
}

// Execute runs the CLI.
func Execute() error {
	return rootCmd.Execute()
}

// Root returns the mutable root command for wiring from subpackages.
func Root() *cobra.Command {
	return rootCmd
}
