package commands

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

// NewVersionCommand creates the version command.
func NewVersionCommand(version, commit string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, _ []string) {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "starsql v%s (%s)\n", version, commit)
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "SQLite bridge for Starlark, %s\n", runtime.Version())
		},
	}
}
