// Package engine defines the narrow protocol used to drive the underlying
// SQL engine: prepare a statement, bind parameters, step through rows,
// finalize. The rest of the program never touches the engine through any
// wider surface, so alternative implementations (including test fakes) only
// have to satisfy these two interfaces.
package engine

import (
	"errors"
)

// ErrBusy reports that the underlying storage is locked by another
// connection or process and the engine's busy timeout elapsed. Implementations
// wrap step errors with ErrBusy so callers can classify them with errors.Is.
var ErrBusy = errors.New("database is busy")

// Conn is one live engine connection. A Conn is not safe for concurrent use;
// callers serialize access.
type Conn interface {
	// Prepare compiles the first statement in sql and reports how many
	// trailing bytes of sql were left unconsumed, so a caller can walk a
	// multi-statement script one statement at a time. A whitespace-only
	// input yields a nil Stmt with no error.
	Prepare(sql string) (stmt Stmt, trailing int, err error)

	// Close releases the connection. Not idempotent; callers guard it.
	Close() error

	// LastInsertRowID reports the rowid of the most recent successful INSERT.
	LastInsertRowID() int64

	// MaxParameters reports the largest parameter index bindable in a
	// single statement.
	MaxParameters() int
}

// ColumnType identifies the storage class of one result column value.
type ColumnType int

const (
	TypeNull ColumnType = iota
	TypeInteger
	TypeFloat
	TypeText
	TypeBlob
)

// Stmt is one compiled statement. Finalize must be called exactly once on
// every Stmt, on every path out of its use.
type Stmt interface {
	// Bind methods take 1-based parameter indices. Binding an index the
	// statement has no parameter for is an error.
	BindText(param int, value string) error
	BindBytes(param int, value []byte) error
	BindInt64(param int, value int64) error
	BindFloat(param int, value float64) error
	BindNull(param int) error

	// Step advances one row. It reports (true, nil) when a row is
	// available, (false, nil) when the statement has run to completion,
	// and (false, err) on failure. Busy errors satisfy errors.Is(err, ErrBusy).
	Step() (row bool, err error)

	ColumnCount() int
	ColumnName(col int) string
	ColumnType(col int) ColumnType
	ColumnFloat(col int) float64
	ColumnText(col int) string
	ColumnBytes(col int) []byte

	Finalize() error
}
