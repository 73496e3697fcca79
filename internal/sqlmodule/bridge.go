package sqlmodule

import (
	"fmt"
	"math"

	"go.starlark.net/starlark"

	"github.com/starbase-labs/starsql/internal/engine"
)

// maxBindBytes is the largest text or blob the engine accepts in one bind
// call.
const maxBindBytes = math.MaxInt32

// maxExactInt is the largest integer a host number can carry without losing
// precision. Numbers leaving the bridge are float64-backed.
const maxExactInt = int64(1) << 53

// bindParam binds one host value as the statement parameter at the 1-based
// index. Unsupported value types fail with a type mismatch blaming the
// value rather than binding a placeholder.
func bindParam(st engine.Stmt, i int, v starlark.Value) error {
	var err error
	switch v := v.(type) {
	case starlark.String:
		if len(v) > maxBindBytes {
			return &Error{Kind: KindLimit, Msg: fmt.Sprintf("parameter %d is too large to bind", i), Blame: starlark.String(fmt.Sprintf("<%d byte string>", len(v)))}
		}
		err = st.BindText(i, string(v))
	case starlark.Bytes:
		if len(v) > maxBindBytes {
			return &Error{Kind: KindLimit, Msg: fmt.Sprintf("parameter %d is too large to bind", i), Blame: starlark.String(fmt.Sprintf("<%d byte blob>", len(v)))}
		}
		err = st.BindBytes(i, []byte(v))
	case starlark.NoneType:
		err = st.BindNull(i)
	case starlark.Int:
		n, ok := v.Int64()
		if !ok {
			return &Error{Kind: KindLimit, Msg: fmt.Sprintf("parameter %d does not fit in a 64-bit integer", i), Blame: v}
		}
		err = st.BindInt64(i, n)
	case starlark.Float:
		err = st.BindFloat(i, float64(v))
	default:
		return &Error{Kind: KindTypeMismatch, Msg: fmt.Sprintf("cannot bind %s value as SQL parameter %d", v.Type(), i), Blame: v}
	}
	if err != nil {
		return &Error{Kind: KindBind, Msg: "SQL parameter error", Cause: err}
	}
	return nil
}

// columnNames snapshots the statement's result column names once per
// statement, in engine column order.
func columnNames(st engine.Stmt) []starlark.String {
	names := make([]starlark.String, st.ColumnCount())
	for i := range names {
		names[i] = starlark.String(st.ColumnName(i))
	}
	return names
}

// decodeRow materializes the statement's current row as a dict keyed by the
// precomputed column names, in engine column order. Integer and float
// columns both decode to a host float; the engine's numeric distinction is
// not preserved past a query.
func decodeRow(st engine.Stmt, names []starlark.String) (*starlark.Dict, error) {
	row := starlark.NewDict(len(names))
	for i, name := range names {
		var v starlark.Value
		switch st.ColumnType(i) {
		case engine.TypeNull:
			v = starlark.None
		case engine.TypeInteger, engine.TypeFloat:
			v = starlark.Float(st.ColumnFloat(i))
		case engine.TypeText:
			v = starlark.String(st.ColumnText(i))
		case engine.TypeBlob:
			v = starlark.Bytes(st.ColumnBytes(i))
		}
		if err := row.SetKey(name, v); err != nil {
			return nil, &Error{Kind: KindEngine, Msg: fmt.Sprintf("cannot store column %s", name), Cause: err}
		}
	}
	return row, nil
}
