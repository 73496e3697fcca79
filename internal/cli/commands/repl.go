package commands

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"
	"go.starlark.net/starlark"

	"github.com/starbase-labs/starsql/internal/cli/config"
	"github.com/starbase-labs/starsql/internal/engine"
	"github.com/starbase-labs/starsql/internal/sqlmodule"
)

// NewREPLCommand creates the repl command.
func NewREPLCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Interactive Starlark REPL with the sql module",
		Long: `Start an interactive Starlark session.

The 'sql' module and a 'db' handle for the configured database are
predeclared. Expressions print their value; statements (assignments,
defs) run for effect.`,
		Example: `  starsql repl -d app.db`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runREPL(cmd, config.FromContext(cmd.Context()))
		},
	}
}

func runREPL(cmd *cobra.Command, cfg *config.Config) error {
	conn, err := engine.Open(cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	db := sqlmodule.NewDB(conn, cfg.Database)
	defer func() { _ = db.Close() }()

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "starsql> ",
		HistoryFile:     cfg.HistoryFile,
		InterruptPrompt: "^C",
		EOFPrompt:       ".quit",
	})
	if err != nil {
		return fmt.Errorf("failed to initialize REPL: %w", err)
	}
	defer func() { _ = rl.Close() }()

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "starsql REPL (database: %s)\n", cfg.Database)
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Type .help for commands, .quit to exit")
	_, _ = fmt.Fprintln(cmd.OutOrStdout())

	thread := &starlark.Thread{
		Name: "starsql/repl",
		Print: func(_ *starlark.Thread, msg string) {
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), msg)
		},
	}

	// Session environment. Assignments persist across lines by merging each
	// line's globals back in.
	env := Predeclared()
	env["db"] = db

	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			continue
		}
		if errors.Is(err, io.EOF) {
			break
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, ".") {
			quit, newDB := handleDotCommand(cmd, db, line)
			if newDB != nil {
				db = newDB
				env["db"] = db
			}
			if quit {
				break
			}
			continue
		}

		evalLine(cmd, thread, env, line)
	}

	return nil
}

// evalLine evaluates one REPL line: as an expression first (printing its
// value), falling back to statement execution for assignments and defs.
func evalLine(cmd *cobra.Command, thread *starlark.Thread, env starlark.StringDict, line string) {
	v, err := starlark.Eval(thread, "<repl>", line, env) //nolint:staticcheck // SA1019: will migrate to EvalOptions later
	if err == nil {
		if v != starlark.None {
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), v.String())
		}
		return
	}

	var evalErr *starlark.EvalError
	if errors.As(err, &evalErr) {
		_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", evalErr)
		return
	}

	// Not an expression; run it as a statement and keep its bindings.
	globals, err := starlark.ExecFile(thread, "<repl>", line, env) //nolint:staticcheck // SA1019: will migrate to ExecFileOptions later
	if err != nil {
		_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
		return
	}
	for name, val := range globals {
		env[name] = val
	}
}

// handleDotCommand processes a REPL dot-command. It reports whether the
// REPL should exit and, for .open, the replacement handle.
func handleDotCommand(cmd *cobra.Command, db *sqlmodule.DB, line string) (quit bool, newDB *sqlmodule.DB) {
	parts := strings.Fields(line)
	switch strings.ToLower(parts[0]) {
	case ".quit", ".exit":
		return true, nil

	case ".help":
		printREPLHelp(cmd.OutOrStdout())
		return false, nil

	case ".open":
		if len(parts) != 2 {
			_, _ = fmt.Fprintln(cmd.ErrOrStderr(), "Usage: .open PATH")
			return false, nil
		}
		conn, err := engine.Open(parts[1])
		if err != nil {
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
			return false, nil
		}
		_ = db.Close()
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Opened %s\n", parts[1])
		return false, sqlmodule.NewDB(conn, parts[1])

	default:
		_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Unknown command: %s (try .help)\n", parts[0])
		return false, nil
	}
}

func printREPLHelp(w io.Writer) {
	_, _ = fmt.Fprintln(w, "Commands:")
	_, _ = fmt.Fprintln(w, "  .open PATH   Close the current database and open PATH")
	_, _ = fmt.Fprintln(w, "  .help        Show this help")
	_, _ = fmt.Fprintln(w, "  .quit        Exit the REPL")
	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintln(w, "Anything else is evaluated as Starlark, e.g.:")
	_, _ = fmt.Fprintln(w, `  db("CREATE TABLE t(a,b); INSERT INTO t VALUES (1,'x')")`)
	_, _ = fmt.Fprintln(w, `  db("SELECT * FROM t")`)
}
