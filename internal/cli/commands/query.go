package commands

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.starlark.net/starlark"

	"github.com/starbase-labs/starsql/internal/cli/config"
	"github.com/starbase-labs/starsql/internal/engine"
	"github.com/starbase-labs/starsql/internal/sqlmodule"
)

// QueryOptions holds options for the query command.
type QueryOptions struct {
	Format string
	Input  string
	Params []string
}

// NewQueryCommand creates the query command.
func NewQueryCommand() *cobra.Command {
	opts := &QueryOptions{}

	cmd := &cobra.Command{
		Use:   "query [SQL]",
		Short: "Run SQL against a database",
		Long: `Execute SQL directly against the configured database.

The SQL text may contain several semicolon-separated statements; rows from
all of them are collected into one result. Use --param to bind positional
parameters. Supports multiple output formats for scripting and integration.

When invoked without arguments on a terminal, enters the REPL.`,
		Example: `  # One-shot query against a file database
  starsql query -d app.db "SELECT * FROM users"

  # Bind a parameter
  starsql query -d app.db "SELECT * FROM users WHERE name = ?" --param alice

  # Output as JSON
  starsql query -d app.db "SELECT * FROM users" --format json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Format, "format", "f", "", "Output format: table, json, csv, md")
	cmd.Flags().StringVarP(&opts.Input, "input", "i", "", "Read SQL from file")
	cmd.Flags().StringArrayVar(&opts.Params, "param", nil, "Positional parameter to bind (repeatable)")

	return cmd
}

func runQuery(cmd *cobra.Command, args []string, opts *QueryOptions) error {
	cfg := config.FromContext(cmd.Context())

	var sqlText string
	switch {
	case len(args) > 0:
		sqlText = strings.Join(args, " ")
	case opts.Input != "":
		content, err := os.ReadFile(opts.Input)
		if err != nil {
			return fmt.Errorf("failed to read file: %w", err)
		}
		sqlText = string(content)
	case !isTerminal(os.Stdin):
		content, err := io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("failed to read stdin: %w", err)
		}
		sqlText = string(content)
	default:
		return runREPL(cmd, cfg)
	}

	conn, err := engine.Open(cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	db := sqlmodule.NewDB(conn, cfg.Database)
	defer func() { _ = db.Close() }()

	callArgs := starlark.Tuple{starlark.String(sqlText)}
	for _, p := range opts.Params {
		callArgs = append(callArgs, starlark.String(p))
	}

	thread := &starlark.Thread{Name: "starsql/query"}
	result, err := starlark.Call(thread, db, callArgs, nil)
	if err != nil {
		return err
	}

	rows, ok := result.(*starlark.List)
	if !ok {
		return fmt.Errorf("unexpected result type %s", result.Type())
	}
	format := opts.Format
	if format == "" {
		format = cfg.Output
	}
	return renderRows(cmd.OutOrStdout(), rows, format)
}

func isTerminal(f *os.File) bool {
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return (fi.Mode() & os.ModeCharDevice) != 0
}
