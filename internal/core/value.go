// Package core holds the leaf data types shared by the root musq package
// and internal/worker: Value, Row, Column and Arguments. They live here,
// rather than in the root package, so that internal/worker (which needs
// them to move rows and bound parameters across its command channel) does
// not have to import the root package and create a cycle. The root package
// re-exports these via type aliases.
package core

import "fmt"

// Kind tags the dynamic storage class of a Value, mirroring SQLite's
// per-value (not per-column) typing.
type Kind uint8

const (
	KindNull Kind = iota
	KindInteger
	KindDouble
	KindText
	KindBlob
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindInteger:
		return "integer"
	case KindDouble:
		return "double"
	case KindText:
		return "text"
	case KindBlob:
		return "blob"
	default:
		return "unknown"
	}
}

// Value is one SQLite cell: a tagged union over NULL, INTEGER, REAL, TEXT
// and BLOB. DeclType is the column's declared type, when known; it never
// changes what the Value actually holds.
type Value struct {
	Kind     Kind
	Integer  int64
	Double   float64
	Text     string
	Blob     []byte
	DeclType string
}

// Null returns a NULL value, optionally carrying a declared type.
func Null(declType string) Value { return Value{Kind: KindNull, DeclType: declType} }

// Int returns an INTEGER value. Booleans encode as 0/1 by convention.
func Int(v int64) Value { return Value{Kind: KindInteger, Integer: v} }

// Bool encodes a boolean as an INTEGER 0 or 1, matching SQLite's convention.
func Bool(v bool) Value {
	if v {
		return Int(1)
	}
	return Int(0)
}

// Float returns a REAL value.
func Float(v float64) Value { return Value{Kind: KindDouble, Double: v} }

// Str returns a TEXT value. Empty strings and embedded NULs are permitted.
func Str(v string) Value { return Value{Kind: KindText, Text: v} }

// Bytes returns a BLOB value.
func Bytes(v []byte) Value { return Value{Kind: KindBlob, Blob: v} }

// IsNull reports whether the value is SQL NULL.
func (v Value) IsNull() bool { return v.Kind == KindNull }

// DriverValue converts a Value into something database/sql's driver accepts.
func (v Value) DriverValue() any {
	switch v.Kind {
	case KindNull:
		return nil
	case KindInteger:
		return v.Integer
	case KindDouble:
		return v.Double
	case KindText:
		return v.Text
	case KindBlob:
		return v.Blob
	default:
		return nil
	}
}

func (v Value) String() string {
	switch v.Kind {
	case KindNull:
		return "NULL"
	case KindInteger:
		return fmt.Sprintf("%d", v.Integer)
	case KindDouble:
		return fmt.Sprintf("%v", v.Double)
	case KindText:
		return v.Text
	case KindBlob:
		return fmt.Sprintf("<%d bytes>", len(v.Blob))
	default:
		return "?"
	}
}

// ValueFromDriver converts whatever database/sql handed back from a scan
// into a Value, preserving SQLite's dynamic per-value typing.
func ValueFromDriver(raw any, declType string) (Value, error) {
	switch t := raw.(type) {
	case nil:
		return Null(declType), nil
	case int64:
		return Value{Kind: KindInteger, Integer: t, DeclType: declType}, nil
	case float64:
		return Value{Kind: KindDouble, Double: t, DeclType: declType}, nil
	case []byte:
		// A []byte always becomes a BLOB value; declType is recorded but
		// does not change the kind.
		return Value{Kind: KindBlob, Blob: append([]byte(nil), t...), DeclType: declType}, nil
	case string:
		return Value{Kind: KindText, Text: t, DeclType: declType}, nil
	case bool:
		return Bool(t), nil
	default:
		return Value{}, fmt.Errorf("musq: unsupported driver value type %T", raw)
	}
}

// Column describes one position in a Row's originating statement.
type Column struct {
	Name     string
	Ordinal  int
	DeclType string
}

// Row is an immutable, ordered, contiguous sequence of Values paired with
// the column metadata of the statement that produced it. Rows own their
// data once materialised and are safe to pass across goroutines.
type Row struct {
	columns []Column
	values  []Value
}

// NewRow builds a Row.
func NewRow(columns []Column, values []Value) Row {
	return Row{columns: columns, values: values}
}

// Len returns the number of columns in the row.
func (r Row) Len() int { return len(r.values) }

// Columns returns the row's column metadata.
func (r Row) Columns() []Column { return r.columns }

// Get returns the value at a 0-based column index.
func (r Row) Get(i int) (Value, error) {
	if i < 0 || i >= len(r.values) {
		return Value{}, &ColumnNotFoundError{Index: i, Len: len(r.values)}
	}
	return r.values[i], nil
}

// GetNamed looks up a value by column name (first match wins).
func (r Row) GetNamed(name string) (Value, error) {
	for i, c := range r.columns {
		if c.Name == name {
			return r.values[i], nil
		}
	}
	return Value{}, &ColumnNotFoundError{Name: name, Len: len(r.values)}
}
