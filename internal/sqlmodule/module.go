// Package sqlmodule exposes a SQLite-backed `sql` module to Starlark code.
//
// The module carries three entry points:
//
//	db = sql.open(path)            # open a database, ":memory:" works
//	sql.close(db)                  # release the connection
//	sql.get_last_insert_rowid(db)  # last INSERT's rowid as a number
//
// The handle returned by open is itself callable. Calling it executes a
// script of one or more semicolon-separated SQL statements, binding any
// further arguments as positional parameters to each statement in turn, and
// returns a list with one dict per result row across the whole script:
//
//	rows = db("SELECT name, age FROM people WHERE age > ?", 30)
package sqlmodule

import (
	"fmt"

	"go.starlark.net/starlark"
	"go.starlark.net/starlarkstruct"

	"github.com/starbase-labs/starsql/internal/engine"
)

// Version is the module surface version, exposed as sql.version so host
// scripts can gate on it.
const Version = "0.1.0"

// Module is the `sql` Starlark module. It is built eagerly and never
// mutated after program start.
var Module = &starlarkstruct.Module{
	Name: "sql",
	Members: starlark.StringDict{
		"open":                  starlark.NewBuiltin("sql.open", openFn),
		"close":                 starlark.NewBuiltin("sql.close", closeFn),
		"get_last_insert_rowid": starlark.NewBuiltin("sql.get_last_insert_rowid", lastInsertRowIDFn),
		"version":               starlark.String(Version),
	},
}

func openFn(_ *starlark.Thread, _ *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var pathArg starlark.Value
	if err := starlark.UnpackPositionalArgs("sql.open", args, kwargs, 1, &pathArg); err != nil {
		return nil, err
	}
	path, ok := starlark.AsString(pathArg)
	if !ok {
		return nil, &Error{Kind: KindTypeMismatch, Msg: "expected string path as argument to sql.open", Blame: pathArg}
	}

	conn, err := engine.Open(path)
	if err != nil {
		return nil, &Error{Kind: KindEngine, Msg: "unable to open database", Blame: pathArg, Cause: err}
	}
	return NewDB(conn, path), nil
}

func closeFn(_ *starlark.Thread, _ *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	db, err := unpackDB("sql.close", args, kwargs)
	if err != nil {
		return nil, err
	}
	if err := db.Close(); err != nil {
		return nil, err
	}
	return starlark.None, nil
}

func lastInsertRowIDFn(_ *starlark.Thread, _ *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	db, err := unpackDB("sql.get_last_insert_rowid", args, kwargs)
	if err != nil {
		return nil, err
	}
	return db.LastInsertRowID()
}

func unpackDB(fname string, args starlark.Tuple, kwargs []starlark.Tuple) (*DB, error) {
	var v starlark.Value
	if err := starlark.UnpackPositionalArgs(fname, args, kwargs, 1, &v); err != nil {
		return nil, err
	}
	db, ok := v.(*DB)
	if !ok {
		return nil, &Error{Kind: KindTypeMismatch, Msg: fmt.Sprintf("expected database handle as argument to %s", fname), Blame: v}
	}
	return db, nil
}
