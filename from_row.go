package musq

// FromRow is implemented by types that know how to populate themselves from
// a query result Row. musq does not generate implementations via codegen —
// callers write their own FromRow methods, or use QueryScalar for
// single-column results.
type FromRow interface {
	FromRow(row Row) error
}
