package sqlmodule

import (
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"

	"go.starlark.net/starlark"

	"github.com/starbase-labs/starsql/internal/engine"
)

// DB is a host-visible database handle wrapping one live engine connection.
// It is a Starlark value of type "sqldb" and is callable: db(sql, *params)
// runs a script and returns the produced rows. The engine connection is
// released by an explicit sql.close call, or best-effort by the garbage
// collector when the last reference to the handle is dropped.
type DB struct {
	mu   sync.Mutex
	conn engine.Conn // nil once closed
	path string
	hash uint32 // identity hash, assigned at construction
}

var handleCount atomic.Uint32

var (
	_ starlark.Value    = (*DB)(nil)
	_ starlark.Callable = (*DB)(nil)
)

// NewDB wraps an open engine connection in a host handle. The handle takes
// ownership of conn.
func NewDB(conn engine.Conn, path string) *DB {
	db := &DB{conn: conn, path: path, hash: handleCount.Add(1)}
	runtime.SetFinalizer(db, func(db *DB) {
		// Last reference dropped without an explicit close. Release the
		// connection and ignore the result.
		if db.conn != nil {
			_ = db.conn.Close()
		}
	})
	return db
}

func (d *DB) String() string       { return fmt.Sprintf("<sqldb %q>", d.path) }
func (d *DB) Type() string         { return "sqldb" }
func (d *DB) Freeze()              {}
func (d *DB) Truth() starlark.Bool { return starlark.True }
func (d *DB) Name() string         { return "sqldb" }

// Hash hashes the handle by identity. Handles compare by reference, so two
// handles on the same database file are distinct keys.
func (d *DB) Hash() (uint32, error) { return d.hash, nil }

// CallInternal runs a script. The first argument is the SQL text; any
// remaining arguments are bound as positional parameters to every statement
// in the script.
func (d *DB) CallInternal(_ *starlark.Thread, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	if len(kwargs) > 0 {
		return nil, &Error{Kind: KindTypeMismatch, Msg: "sqldb accepts no keyword arguments"}
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.conn == nil {
		return nil, &Error{Kind: KindClosed, Msg: "database has been closed"}
	}
	if len(args) == 0 {
		return nil, &Error{Kind: KindTypeMismatch, Msg: "expected SQL script (a string) as first argument"}
	}
	script, ok := starlark.AsString(args[0])
	if !ok {
		return nil, &Error{Kind: KindTypeMismatch, Msg: "expected SQL script (a string) as first argument", Blame: args[0]}
	}
	return runScript(d.conn, script, args[1:])
}

// Close synchronously releases the engine connection. A handle that is
// already closed fails with a closed error; the nil check is the only
// idempotence the handle provides.
func (d *DB) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.conn == nil {
		return &Error{Kind: KindClosed, Msg: "database has been closed"}
	}
	if err := d.conn.Close(); err != nil {
		return &Error{Kind: KindEngine, Msg: "unable to close database", Cause: err}
	}
	d.conn = nil
	runtime.SetFinalizer(d, nil)
	return nil
}

// LastInsertRowID reports the engine's last-insert-rowid counter as a host
// number, failing when the id exceeds the largest exactly representable
// host integer.
func (d *DB) LastInsertRowID() (starlark.Value, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.conn == nil {
		return nil, &Error{Kind: KindClosed, Msg: "database has been closed"}
	}
	id := d.conn.LastInsertRowID()
	if id > maxExactInt || id < -maxExactInt {
		return nil, &Error{Kind: KindLimit, Msg: "id out of range"}
	}
	return starlark.Float(id), nil
}
