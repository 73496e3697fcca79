package sqlmodule

import (
	"errors"
	"strings"

	"go.starlark.net/starlark"
)

// Kind classifies a bridge failure. Host code sees both the classification
// and, through Cause and Blame, the precise reason.
type Kind int

const (
	KindTypeMismatch Kind = iota // wrong value variant supplied to an operation
	KindClosed                   // operation attempted on a closed handle
	KindLimit                    // parameter count, value size or numeric range exceeded
	KindCompile                  // the engine rejected the SQL text
	KindBind                     // the engine rejected a bound parameter
	KindBusy                     // the storage stayed locked past the busy timeout
	KindEngine                   // any other engine-level failure
)

func (k Kind) String() string {
	switch k {
	case KindTypeMismatch:
		return "type mismatch"
	case KindClosed:
		return "closed"
	case KindLimit:
		return "limit exceeded"
	case KindCompile:
		return "compile error"
	case KindBind:
		return "bind error"
	case KindBusy:
		return "busy"
	case KindEngine:
		return "engine error"
	default:
		return "unknown"
	}
}

// Error is the failure value returned from every bridge operation. Msg is
// the generic classification message; Cause carries the engine's own
// diagnostic and Blame the offending host value, when there is one.
type Error struct {
	Kind  Kind
	Msg   string
	Blame starlark.Value
	Cause error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Msg)
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	if e.Blame != nil {
		b.WriteString(" (")
		b.WriteString(e.Blame.String())
		b.WriteString(")")
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Cause }

// AsError unwraps err to a bridge *Error, if it is one. Starlark wraps
// errors from builtins in an EvalError; errors.As reaches through that.
func AsError(err error) (*Error, bool) {
	var be *Error
	if errors.As(err, &be) {
		return be, true
	}
	return nil, false
}
