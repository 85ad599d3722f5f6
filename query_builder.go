package musq

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cortesi/musq/internal/core"
	"github.com/cortesi/musq/internal/lexsql"
)

// QueryBuilder incrementally assembles SQL text and its bound arguments.
// Unlike Query, its methods report errors immediately (empty-input misuse
// is a programmer error worth catching at the call site) rather than
// deferring them.
type QueryBuilder struct {
	sql     strings.Builder
	args    *Arguments
	tainted bool
}

// NewQueryBuilder returns an empty QueryBuilder.
func NewQueryBuilder() *QueryBuilder {
	return &QueryBuilder{args: NewArguments()}
}

// PushSQL appends raw SQL text verbatim.
func (b *QueryBuilder) PushSQL(sql string) *QueryBuilder {
	b.sql.WriteString(sql)
	return b
}

// PushBind adds a positional bind parameter and appends its placeholder.
func (b *QueryBuilder) PushBind(value any) error {
	v, err := encodeValue(value)
	if err != nil {
		return err
	}
	b.args.Add(v)
	b.sql.WriteByte('?')
	return nil
}

// PushBindNamed adds a named bind parameter and appends its placeholder.
func (b *QueryBuilder) PushBindNamed(name string, value any) error {
	v, err := encodeValue(value)
	if err != nil {
		return err
	}
	b.args.AddNamed(name, v)
	b.sql.WriteByte(':')
	b.sql.WriteString(name)
	return nil
}

// PushValues appends a comma-separated list of bound placeholders for
// values.
func (b *QueryBuilder) PushValues(values ...any) error {
	if len(values) == 0 {
		return core.ProtocolErrorf("empty values")
	}
	for i, v := range values {
		if i > 0 {
			b.sql.WriteString(", ")
		}
		if err := b.PushBind(v); err != nil {
			return err
		}
	}
	return nil
}

// PushIdents appends a comma-separated list of quoted identifiers.
func (b *QueryBuilder) PushIdents(idents ...string) error {
	if len(idents) == 0 {
		return core.ProtocolErrorf("empty idents")
	}
	for i, id := range idents {
		if i > 0 {
			b.sql.WriteString(", ")
		}
		b.sql.WriteString(QuoteIdentifier(id))
	}
	return nil
}

// PushInsert appends a "(col, ...) VALUES (?, ...)" clause from values, in
// the order columns were added to values.
func (b *QueryBuilder) PushInsert(values *Values) error {
	if values.IsEmpty() {
		return core.ProtocolErrorf("empty values")
	}
	b.sql.WriteByte('(')
	for i, key := range values.Keys() {
		if i > 0 {
			b.sql.WriteString(", ")
		}
		b.sql.WriteString(QuoteIdentifier(key))
	}
	b.sql.WriteString(") VALUES (")
	for i, key := range values.Keys() {
		if i > 0 {
			b.sql.WriteString(", ")
		}
		entry := values.get(key)
		if entry.IsExpr {
			b.pushFragment(entry.Expr, entry.Args, entry.Tainted, true)
		} else {
			b.sql.WriteByte('?')
			b.args.Add(entry.Value)
		}
	}
	b.sql.WriteByte(')')
	return nil
}

// PushSet appends a "col = ?, ..." SET clause from values.
func (b *QueryBuilder) PushSet(values *Values) error {
	if values.IsEmpty() {
		return core.ProtocolErrorf("empty values")
	}
	for i, key := range values.Keys() {
		if i > 0 {
			b.sql.WriteString(", ")
		}
		b.sql.WriteString(QuoteIdentifier(key))
		entry := values.get(key)
		if entry.IsExpr {
			b.sql.WriteString(" = ")
			b.pushFragment(entry.Expr, entry.Args, entry.Tainted, true)
		} else {
			b.sql.WriteString(" = ?")
			b.args.Add(entry.Value)
		}
	}
	return nil
}

// PushWhere appends a "col = ? AND ..." clause from values, using IS NULL
// for any column bound to a null Value. An empty values set pushes "1=1".
func (b *QueryBuilder) PushWhere(values *Values) error {
	if values.IsEmpty() {
		b.sql.WriteString("1=1")
		return nil
	}
	for i, key := range values.Keys() {
		if i > 0 {
			b.sql.WriteString(" AND ")
		}
		b.sql.WriteString(QuoteIdentifier(key))
		entry := values.get(key)
		switch {
		case entry.IsExpr:
			b.sql.WriteString(" = ")
			b.pushFragment(entry.Expr, entry.Args, entry.Tainted, true)
		case entry.Value.IsNull():
			b.sql.WriteString(" IS NULL")
		default:
			b.sql.WriteString(" = ?")
			b.args.Add(entry.Value)
		}
	}
	return nil
}

// PushUpsert appends an "col = excluded.col, ..." clause from values,
// skipping any column named in exclude (typically the conflict target
// columns).
func (b *QueryBuilder) PushUpsert(values *Values, exclude ...string) error {
	if values.IsEmpty() {
		return core.ProtocolErrorf("empty values")
	}
	excluded := make(map[string]bool, len(exclude))
	for _, e := range exclude {
		excluded[e] = true
	}

	wrote := false
	for _, key := range values.Keys() {
		if excluded[key] {
			continue
		}
		if wrote {
			b.sql.WriteString(", ")
		}
		wrote = true
		ident := QuoteIdentifier(key)
		b.sql.WriteString(ident)
		b.sql.WriteString(" = excluded.")
		b.sql.WriteString(ident)
	}
	if !wrote {
		return core.ProtocolErrorf("empty values")
	}
	return nil
}

// PushQuery appends another Query's SQL (separated by a single space if
// this builder already holds text), merging its arguments and renaming any
// named parameters that collide with ones already bound.
func (b *QueryBuilder) PushQuery(q Query) {
	if q.sql == "" {
		return
	}
	if b.sql.Len() > 0 {
		b.sql.WriteByte(' ')
	}
	b.pushFragment(q.sql, q.args, false, false)
}

// pushFragment splices sql (with its own arguments) into the builder,
// rebasing positional indices and renaming named parameters that would
// otherwise collide. namespaceNamed forces every named parameter in the
// fragment to be renamed unconditionally (used for
// PushInsert/PushSet/PushWhere/PushUpsert expressions, which are
// namespaced under "__musq_expr_" to avoid ever colliding with the
// caller's own named parameters); PushQuery instead only renames on an
// actual collision.
func (b *QueryBuilder) pushFragment(sql string, other *Arguments, tainted bool, namespaceNamed bool) {
	if other == nil {
		b.sql.WriteString(sql)
		b.tainted = b.tainted || tainted
		return
	}

	baseIndex := b.args.Len()
	for _, v := range other.Values() {
		b.args.Add(v)
	}

	if baseIndex > 0 {
		var rebased strings.Builder
		last := 0
		for _, p := range lexsql.Scan(sql) {
			n, err := strconv.Atoi(p.Name())
			if (p.Raw[0] != '?' && p.Raw[0] != '$') || err != nil {
				continue
			}
			rebased.WriteString(sql[last:p.Start])
			fmt.Fprintf(&rebased, "%c%d", p.Raw[0], n+baseIndex)
			last = p.End
		}
		rebased.WriteString(sql[last:])
		sql = rebased.String()
	}

	otherNamed := other.NamedIndices()
	if len(otherNamed) > 0 {
		existing := b.args.NamedIndices()
		rename := map[string]string{}

		for name, idx := range otherNamed {
			finalName := name
			switch {
			case namespaceNamed:
				finalName = disambiguateName(fmt.Sprintf("__musq_expr_%s", name), existing)
				rename[name] = finalName
			default:
				if _, taken := existing[finalName]; taken {
					finalName = disambiguateName(name, existing)
					rename[name] = finalName
				}
			}
			existing[finalName] = baseIndex + idx
			b.args.BindName(finalName, baseIndex+idx)
		}

		if len(rename) > 0 {
			sql = lexsql.Rewrite(sql, rename)
		}
	}

	b.sql.WriteString(sql)
	b.tainted = b.tainted || tainted
}

func disambiguateName(base string, existing map[string]int) string {
	if _, taken := existing[base]; !taken {
		return base
	}
	for suffix := 1; ; suffix++ {
		candidate := fmt.Sprintf("%s_%d", base, suffix)
		if _, taken := existing[candidate]; !taken {
			return candidate
		}
	}
}

// Build finalises the builder into a Query.
func (b *QueryBuilder) Build() Query {
	return Query{sql: b.sql.String(), args: b.args}
}
