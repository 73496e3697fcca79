package sqlmodule

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.starlark.net/starlark"
)

// selectBack binds v as the only parameter of `SELECT ? AS v` and returns
// the value that comes back out of the bridge.
func selectBack(t *testing.T, db *DB, v starlark.Value) (starlark.Value, error) {
	t.Helper()
	out, err := call(t, db, starlark.String("SELECT ? AS v"), v)
	if err != nil {
		return nil, err
	}
	rows := out.(*starlark.List)
	require.Equal(t, 1, rows.Len())
	row := rows.Index(0).(*starlark.Dict)
	got, found, err := row.Get(starlark.String("v"))
	require.NoError(t, err)
	require.True(t, found)
	return got, nil
}

func TestParamRoundTrips(t *testing.T) {
	db := openMem(t)
	defer func() { _ = db.Close() }()

	tests := []struct {
		name string
		in   starlark.Value
		want starlark.Value
	}{
		{name: "string", in: starlark.String("hello"), want: starlark.String("hello")},
		{name: "empty string", in: starlark.String(""), want: starlark.String("")},
		{name: "string with NUL and high bytes", in: starlark.String("a\x00\xffb"), want: starlark.String("a\x00\xffb")},
		{name: "none", in: starlark.None, want: starlark.None},
		{name: "integer", in: starlark.MakeInt(42), want: starlark.Float(42)},
		{name: "negative integer", in: starlark.MakeInt(-7), want: starlark.Float(-7)},
		{name: "float", in: starlark.Float(3.25), want: starlark.Float(3.25)},
		{name: "bytes", in: starlark.Bytes("\x01\x02\x03"), want: starlark.Bytes("\x01\x02\x03")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := selectBack(t, db, tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestUnsupportedParamTypeFails(t *testing.T) {
	db := openMem(t)
	defer func() { _ = db.Close() }()

	for _, v := range []starlark.Value{
		starlark.True,
		starlark.NewList(nil),
		starlark.NewDict(0),
	} {
		_, err := selectBack(t, db, v)
		require.Error(t, err, "binding %s should fail", v.Type())
		be, ok := AsError(err)
		require.True(t, ok)
		assert.Equal(t, KindTypeMismatch, be.Kind)
		assert.Equal(t, v, be.Blame)
	}
}

func TestHugeIntFailsLimit(t *testing.T) {
	db := openMem(t)
	defer func() { _ = db.Close() }()

	big := starlark.MakeBigInt(new(big.Int).Lsh(big.NewInt(1), 70)) // does not fit in int64
	_, err := selectBack(t, db, big)
	require.Error(t, err)
	be, ok := AsError(err)
	require.True(t, ok)
	assert.Equal(t, KindLimit, be.Kind)
}

// Integer and float columns both come back as floats; the engine's numeric
// distinction does not survive a query.
func TestNumericCollapse(t *testing.T) {
	db := openMem(t)
	defer func() { _ = db.Close() }()

	out, err := call(t, db, starlark.String("SELECT 1 AS i, 1.5 AS f"))
	require.NoError(t, err)
	row := out.(*starlark.List).Index(0).(*starlark.Dict)

	i, _, err := row.Get(starlark.String("i"))
	require.NoError(t, err)
	assert.IsType(t, starlark.Float(0), i)
	assert.Equal(t, starlark.Float(1), i)

	f, _, err := row.Get(starlark.String("f"))
	require.NoError(t, err)
	assert.Equal(t, starlark.Float(1.5), f)
}

func TestNullColumnDecodesToNone(t *testing.T) {
	db := openMem(t)
	defer func() { _ = db.Close() }()

	out, err := call(t, db, starlark.String("SELECT NULL AS n"))
	require.NoError(t, err)
	row := out.(*starlark.List).Index(0).(*starlark.Dict)
	n, _, err := row.Get(starlark.String("n"))
	require.NoError(t, err)
	assert.Equal(t, starlark.None, n)
}

func TestBlobColumnDecodesToBytes(t *testing.T) {
	db := openMem(t)
	defer func() { _ = db.Close() }()

	out, err := call(t, db, starlark.String("SELECT x'deadbeef' AS b"))
	require.NoError(t, err)
	row := out.(*starlark.List).Index(0).(*starlark.Dict)
	b, _, err := row.Get(starlark.String("b"))
	require.NoError(t, err)
	assert.Equal(t, starlark.Bytes("\xde\xad\xbe\xef"), b)
}
