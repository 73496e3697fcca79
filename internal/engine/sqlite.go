package engine

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"zombiezen.com/go/sqlite"
)

// busyTimeout is how long the engine waits on a locked database before a
// step fails busy. Applied to every connection at open time; there is no
// retry above it.
const busyTimeout = time.Second

// Open opens a SQLite connection at path. Use ":memory:" for an in-memory
// database. On failure the partially opened connection is already released.
func Open(path string) (Conn, error) {
	conn, err := sqlite.OpenConn(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	conn.SetBusyTimeout(busyTimeout)
	slog.Debug("sqlite connection opened", "path", path)
	return &sqliteConn{conn: conn, path: path}, nil
}

type sqliteConn struct {
	conn *sqlite.Conn
	path string
}

func (c *sqliteConn) Prepare(sql string) (Stmt, int, error) {
	if strings.TrimSpace(sql) == "" {
		return nil, 0, nil
	}
	stmt, trailing, err := c.conn.PrepareTransient(sql)
	if err != nil {
		return nil, 0, err
	}
	return &sqliteStmt{stmt: stmt}, trailing, nil
}

func (c *sqliteConn) Close() error {
	slog.Debug("sqlite connection closed", "path", c.path)
	return c.conn.Close()
}

func (c *sqliteConn) LastInsertRowID() int64 {
	return c.conn.LastInsertRowID()
}

func (c *sqliteConn) MaxParameters() int {
	return int(c.conn.Limit(sqlite.LimitVariableNumber, -1))
}

type sqliteStmt struct {
	stmt *sqlite.Stmt
}

// checkParam validates a 1-based bind index. zombiezen defers bind errors
// until Step; the protocol wants them at bind time, so the range check
// happens here.
func (s *sqliteStmt) checkParam(param int) error {
	if n := s.stmt.BindParamCount(); param < 1 || param > n {
		return fmt.Errorf("bind parameter %d out of range (statement has %d)", param, n)
	}
	return nil
}

func (s *sqliteStmt) BindText(param int, value string) error {
	if err := s.checkParam(param); err != nil {
		return err
	}
	s.stmt.BindText(param, value)
	return nil
}

func (s *sqliteStmt) BindBytes(param int, value []byte) error {
	if err := s.checkParam(param); err != nil {
		return err
	}
	s.stmt.BindBytes(param, value)
	return nil
}

func (s *sqliteStmt) BindInt64(param int, value int64) error {
	if err := s.checkParam(param); err != nil {
		return err
	}
	s.stmt.BindInt64(param, value)
	return nil
}

func (s *sqliteStmt) BindFloat(param int, value float64) error {
	if err := s.checkParam(param); err != nil {
		return err
	}
	s.stmt.BindFloat(param, value)
	return nil
}

func (s *sqliteStmt) BindNull(param int) error {
	if err := s.checkParam(param); err != nil {
		return err
	}
	s.stmt.BindNull(param)
	return nil
}

func (s *sqliteStmt) Step() (bool, error) {
	row, err := s.stmt.Step()
	if err != nil && sqlite.ErrCode(err).ToPrimary() == sqlite.ResultBusy {
		return false, fmt.Errorf("%w: %v", ErrBusy, err)
	}
	return row, err
}

func (s *sqliteStmt) ColumnCount() int {
	return s.stmt.ColumnCount()
}

func (s *sqliteStmt) ColumnName(col int) string {
	return s.stmt.ColumnName(col)
}

func (s *sqliteStmt) ColumnType(col int) ColumnType {
	switch s.stmt.ColumnType(col) {
	case sqlite.TypeInteger:
		return TypeInteger
	case sqlite.TypeFloat:
		return TypeFloat
	case sqlite.TypeText:
		return TypeText
	case sqlite.TypeBlob:
		return TypeBlob
	default:
		return TypeNull
	}
}

func (s *sqliteStmt) ColumnFloat(col int) float64 {
	return s.stmt.ColumnFloat(col)
}

func (s *sqliteStmt) ColumnText(col int) string {
	return s.stmt.ColumnText(col)
}

func (s *sqliteStmt) ColumnBytes(col int) []byte {
	buf := make([]byte, s.stmt.ColumnLen(col))
	s.stmt.ColumnBytes(col, buf)
	return buf
}

func (s *sqliteStmt) Finalize() error {
	return s.stmt.Finalize()
}
