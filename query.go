package musq

import (
	"context"
	"iter"
)

// Query is raw SQL plus its bound arguments, ready to run against an
// Executor. The zero value is not usable; construct with NewQuery.
type Query struct {
	sql  string
	args *Arguments
	err  error
}

// NewQuery builds a Query from sql with no bound arguments yet.
func NewQuery(sql string) Query {
	return Query{sql: sql, args: NewArguments()}
}

// NewQueryWith builds a Query from sql using an already-populated Arguments
// value.
func NewQueryWith(sql string, args *Arguments) Query {
	return Query{sql: sql, args: args}
}

// SQL returns the query's source text.
func (q Query) SQL() string { return q.sql }

// Bind appends a positional bind parameter. A value that cannot be encoded
// is recorded and surfaced by the next Execute/Fetch* call rather than by
// Bind itself, so bind calls can be chained freely.
func (q Query) Bind(value any) Query {
	v, err := encodeValue(value)
	if err != nil {
		if q.err == nil {
			q.err = err
		}
		return q
	}
	q.args.Add(v)
	return q
}

// BindNamed appends a named bind parameter, deferring any encode error the
// same way Bind does.
func (q Query) BindNamed(name string, value any) Query {
	v, err := encodeValue(value)
	if err != nil {
		if q.err == nil {
			q.err = err
		}
		return q
	}
	q.args.AddNamed(name, v)
	return q
}

// Execute runs the query to completion against ex, discarding any result
// rows.
func (q Query) Execute(ctx context.Context, ex Executor) (rowsAffected, lastInsertID int64, err error) {
	if q.err != nil {
		return 0, 0, q.err
	}
	return ex.Execute(ctx, q.sql, q.args)
}

// Fetch streams the query's result rows from ex.
func (q Query) Fetch(ctx context.Context, ex Executor) iter.Seq2[Row, error] {
	if q.err != nil {
		err := q.err
		return func(yield func(Row, error) bool) { yield(Row{}, err) }
	}
	return ex.Fetch(ctx, q.sql, q.args)
}

// FetchAll materialises every result row from ex.
func (q Query) FetchAll(ctx context.Context, ex Executor) ([]Row, error) {
	if q.err != nil {
		return nil, q.err
	}
	return ex.FetchAll(ctx, q.sql, q.args)
}

// FetchOne returns the query's single expected row from ex, or
// ErrRowNotFound.
func (q Query) FetchOne(ctx context.Context, ex Executor) (Row, error) {
	if q.err != nil {
		return Row{}, q.err
	}
	return ex.FetchOne(ctx, q.sql, q.args)
}

// FetchOptional returns the query's first row from ex, or ok=false if
// empty.
func (q Query) FetchOptional(ctx context.Context, ex Executor) (row Row, ok bool, err error) {
	if q.err != nil {
		return Row{}, false, q.err
	}
	return ex.FetchOptional(ctx, q.sql, q.args)
}

// Map wraps a Query with a row-mapping function, deferring execution until
// one of its Fetch*/Execute methods runs. O is typically a struct
// implementing FromRow, or a scalar type via QueryScalar.
type Map[O any] struct {
	inner  Query
	mapper func(Row) (O, error)
}

// NewMap builds a Map from a Query and a mapper function.
func NewMap[O any](q Query, mapper func(Row) (O, error)) Map[O] {
	return Map[O]{inner: q, mapper: mapper}
}

// Bind appends a positional bind parameter.
func (m Map[O]) Bind(value any) Map[O] {
	m.inner = m.inner.Bind(value)
	return m
}

// BindNamed appends a named bind parameter.
func (m Map[O]) BindNamed(name string, value any) Map[O] {
	m.inner = m.inner.BindNamed(name, value)
	return m
}

// Fetch streams mapped results from ex, stopping at the first mapping or
// execution error.
func (m Map[O]) Fetch(ctx context.Context, ex Executor) iter.Seq2[O, error] {
	return func(yield func(O, error) bool) {
		for row, err := range m.inner.Fetch(ctx, ex) {
			if err != nil {
				var zero O
				yield(zero, err)
				return
			}
			o, merr := m.mapper(row)
			if merr != nil {
				yield(o, merr)
				return
			}
			if !yield(o, nil) {
				return
			}
		}
	}
}

// FetchAll materialises every mapped row from ex.
func (m Map[O]) FetchAll(ctx context.Context, ex Executor) ([]O, error) {
	var out []O
	for o, err := range m.Fetch(ctx, ex) {
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, nil
}

// FetchOne returns the single expected mapped row from ex, or
// ErrRowNotFound.
func (m Map[O]) FetchOne(ctx context.Context, ex Executor) (O, error) {
	for o, err := range m.Fetch(ctx, ex) {
		return o, err
	}
	var zero O
	return zero, ErrRowNotFound
}

// FetchOptional returns the first mapped row from ex, or ok=false if empty.
func (m Map[O]) FetchOptional(ctx context.Context, ex Executor) (o O, ok bool, err error) {
	for o, err = range m.Fetch(ctx, ex) {
		return o, true, err
	}
	return o, false, nil
}

// QueryAs builds a Map that decodes each result row via O's FromRow
// implementation. O is the struct type itself (e.g. QueryAs[Widget], not
// QueryAs[*Widget]); FromRow is called against a freshly allocated *O
// internally since it needs a mutable receiver to populate the struct, a
// detail the PO type parameter exists purely to express.
func QueryAs[O any, PO interface {
	*O
	FromRow
}](sql string) Map[O] {
	return NewMap(NewQuery(sql), func(row Row) (O, error) {
		var out O
		if err := PO(&out).FromRow(row); err != nil {
			return out, err
		}
		return out, nil
	})
}

// QueryAsWith is QueryAs with pre-populated Arguments.
func QueryAsWith[O any, PO interface {
	*O
	FromRow
}](sql string, args *Arguments) Map[O] {
	return NewMap(NewQueryWith(sql, args), func(row Row) (O, error) {
		var out O
		if err := PO(&out).FromRow(row); err != nil {
			return out, err
		}
		return out, nil
	})
}

// QueryScalar builds a Map that decodes each result row's first column
// into O, for built-in scalar types or types implementing Decoder.
func QueryScalar[O any](sql string) Map[O] {
	return NewMap(NewQuery(sql), func(row Row) (O, error) {
		v, err := row.Get(0)
		if err != nil {
			var zero O
			return zero, err
		}
		return decodeScalar[O](v)
	})
}

// QueryScalarWith is QueryScalar with pre-populated Arguments.
func QueryScalarWith[O any](sql string, args *Arguments) Map[O] {
	return NewMap(NewQueryWith(sql, args), func(row Row) (O, error) {
		v, err := row.Get(0)
		if err != nil {
			var zero O
			return zero, err
		}
		return decodeScalar[O](v)
	})
}
