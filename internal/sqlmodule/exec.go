package sqlmodule

import (
	"errors"
	"log/slog"
	"strings"

	"go.starlark.net/starlark"

	"github.com/starbase-labs/starsql/internal/engine"
)

// runScript executes every semicolon-separated statement in script against
// conn, re-binding the same parameter list for each one, and returns the
// rows produced by all statements as one list of dicts. On any failure the
// partially built list is discarded and a single *Error comes back.
func runScript(conn engine.Conn, script string, params starlark.Tuple) (*starlark.List, error) {
	if n := conn.MaxParameters(); len(params) > n {
		return nil, &Error{Kind: KindLimit, Msg: "too many parameters"}
	}

	rows := starlark.NewList(nil)
	remaining := script
	for {
		// Skip whitespace and stray semicolons so the engine only ever sees
		// the start of a real statement.
		remaining = strings.TrimLeft(remaining, " \t\r\n;")
		if remaining == "" {
			break
		}
		stmt, trailing, err := conn.Prepare(remaining)
		if err != nil {
			return nil, &Error{Kind: KindCompile, Msg: "SQL compiler error", Cause: err}
		}
		if stmt == nil {
			break
		}
		slog.Debug("executing statement", "sql", strings.TrimSpace(remaining[:len(remaining)-trailing]))
		if err := runStatement(stmt, params, rows); err != nil {
			return nil, err
		}
		remaining = remaining[len(remaining)-trailing:]
	}
	return rows, nil
}

// runStatement drives one prepared statement through bind and step,
// appending one dict per produced row to out. The statement is finalized on
// every path out of this function.
func runStatement(stmt engine.Stmt, params starlark.Tuple, out *starlark.List) error {
	defer func() { _ = stmt.Finalize() }()

	for i, p := range params {
		if err := bindParam(stmt, i+1, p); err != nil {
			return err
		}
	}

	names := columnNames(stmt)
	for {
		row, err := stmt.Step()
		if err != nil {
			if errors.Is(err, engine.ErrBusy) {
				return &Error{Kind: KindBusy, Msg: "database is busy (timeout)", Cause: err}
			}
			return &Error{Kind: KindEngine, Msg: "SQL error", Cause: err}
		}
		if !row {
			return nil
		}
		rec, err := decodeRow(stmt, names)
		if err != nil {
			return err
		}
		if err := out.Append(rec); err != nil {
			return &Error{Kind: KindEngine, Msg: "cannot collect result row", Cause: err}
		}
	}
}
