// Package commands implements the starsql subcommands.
package commands

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.starlark.net/starlark"

	"github.com/starbase-labs/starsql/internal/sqlmodule"
)

// NewRunCommand creates the run command.
func NewRunCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "run SCRIPT",
		Short: "Run a Starlark script with the sql module available",
		Long: `Execute a Starlark script file.

The script sees the 'sql' module as a predeclared global. print() output
goes to stdout.`,
		Example: `  # Run a script
  starsql run etl.star`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScript(cmd, args[0])
		},
	}
}

func runScript(cmd *cobra.Command, path string) error {
	src, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read script: %w", err)
	}

	thread := &starlark.Thread{
		Name: "starsql/run",
		Print: func(_ *starlark.Thread, msg string) {
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), msg)
		},
	}

	_, err = starlark.ExecFile(thread, path, src, Predeclared()) //nolint:staticcheck // SA1019: will migrate to ExecFileOptions later
	var evalErr *starlark.EvalError
	if errors.As(err, &evalErr) {
		return fmt.Errorf("%s", evalErr.Backtrace())
	}
	return err
}

// Predeclared returns the globals every starsql script runs with.
func Predeclared() starlark.StringDict {
	return starlark.StringDict{
		"sql": sqlmodule.Module,
	}
}
