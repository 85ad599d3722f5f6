package musq

import "github.com/cortesi/musq/internal/core"

// Kind tags the dynamic storage class of a Value, mirroring SQLite's
// per-value (not per-column) typing.
type Kind = core.Kind

const (
	KindNull    = core.KindNull
	KindInteger = core.KindInteger
	KindDouble  = core.KindDouble
	KindText    = core.KindText
	KindBlob    = core.KindBlob
)

// Value is one SQLite cell: a tagged union over NULL, INTEGER, REAL, TEXT
// and BLOB. DeclType is the column's declared type, when known; it never
// changes what the Value actually holds.
type Value = core.Value

// Null returns a NULL value, optionally carrying a declared type.
func Null(declType string) Value { return core.Null(declType) }

// Int returns an INTEGER value. Booleans encode as 0/1 by convention.
func Int(v int64) Value { return core.Int(v) }

// Bool encodes a boolean as an INTEGER 0 or 1, matching SQLite's convention.
func Bool(v bool) Value { return core.Bool(v) }

// Float returns a REAL value.
func Float(v float64) Value { return core.Float(v) }

// Str returns a TEXT value. Empty strings and embedded NULs are permitted.
func Str(v string) Value { return core.Str(v) }

// Bytes returns a BLOB value.
func Bytes(v []byte) Value { return core.Bytes(v) }

// Column describes one position in a Row's originating statement.
type Column = core.Column

// Row is an immutable, ordered, contiguous sequence of Values paired with
// the column metadata of the statement that produced it. Rows own their
// data once materialised and are safe to pass across goroutines.
type Row = core.Row

// NewRow builds a Row.
func NewRow(columns []Column, values []Value) Row { return core.NewRow(columns, values) }
