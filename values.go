package musq

// ValuesEntry is one column's contribution to an INSERT/SET/WHERE/UPSERT
// clause built by QueryBuilder: either a bound Value or a raw SQL
// expression with its own arguments (e.g. "now()", "col + 1").
type ValuesEntry struct {
	Expr     string
	Args     *Arguments
	Tainted  bool
	IsExpr   bool
	Value    Value
}

// Values is an ordered column-name → ValuesEntry map, matching the
// original's Values type: insertion order is preserved so generated SQL is
// deterministic and column order in push_insert matches the order columns
// were added.
type Values struct {
	keys    []string
	entries map[string]ValuesEntry
}

// NewValues returns an empty, ordered Values set.
func NewValues() *Values {
	return &Values{entries: map[string]ValuesEntry{}}
}

// Set binds key to a plain value, encoding it via encodeValue.
func (vs *Values) Set(key string, value any) error {
	v, err := encodeValue(value)
	if err != nil {
		return err
	}
	vs.insert(key, ValuesEntry{Value: v})
	return nil
}

// SetExpr binds key to a raw SQL expression (with its own bind
// parameters), e.g. vs.SetExpr("updated_at", "unixepoch()", nil).
func (vs *Values) SetExpr(key, sql string, args *Arguments) {
	vs.insert(key, ValuesEntry{Expr: sql, Args: args, IsExpr: true, Tainted: true})
}

func (vs *Values) insert(key string, entry ValuesEntry) {
	if _, exists := vs.entries[key]; !exists {
		vs.keys = append(vs.keys, key)
	}
	vs.entries[key] = entry
}

// Keys returns the column names in insertion order.
func (vs *Values) Keys() []string { return vs.keys }

// Len returns the number of columns set.
func (vs *Values) Len() int { return len(vs.keys) }

// IsEmpty reports whether no columns have been set.
func (vs *Values) IsEmpty() bool { return len(vs.keys) == 0 }

func (vs *Values) get(key string) ValuesEntry { return vs.entries[key] }
