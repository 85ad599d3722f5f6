package musq

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueryBuilderPushBind(t *testing.T) {
	b := NewQueryBuilder()
	b.PushSQL("SELECT ")
	require.NoError(t, b.PushBind(7))
	q := b.Build()

	assert.Equal(t, "SELECT ?", q.sql)
	require.Equal(t, 1, q.args.Len())
	assert.Equal(t, int64(7), q.args.Values()[0].Integer)
}

func TestQueryBuilderPushBindNamed(t *testing.T) {
	b := NewQueryBuilder()
	b.PushSQL("SELECT ")
	require.NoError(t, b.PushBindNamed("a", 9))
	q := b.Build()

	assert.Equal(t, "SELECT :a", q.sql)
	assert.Equal(t, 1, q.args.Len())
}

func TestQueryBuilderPushValuesRequiresNonEmpty(t *testing.T) {
	b := NewQueryBuilder()
	err := b.PushValues()
	require.Error(t, err)
	var pe *ProtocolError
	require.ErrorAs(t, err, &pe)
}

func TestQueryBuilderPushValues(t *testing.T) {
	b := NewQueryBuilder()
	require.NoError(t, b.PushValues(1, 2, 3))
	q := b.Build()

	assert.Equal(t, "?, ?, ?", q.sql)
	assert.Equal(t, 3, q.args.Len())
}

func TestQueryBuilderPushIdents(t *testing.T) {
	b := NewQueryBuilder()
	require.NoError(t, b.PushIdents("a", "b"))
	assert.Equal(t, `"a", "b"`, b.Build().sql)

	b2 := NewQueryBuilder()
	require.Error(t, b2.PushIdents())
}

func TestQueryBuilderPushInsert(t *testing.T) {
	vs := NewValues()
	require.NoError(t, vs.Set("name", "bob"))
	require.NoError(t, vs.Set("age", 30))

	b := NewQueryBuilder()
	b.PushSQL("INSERT INTO users ")
	require.NoError(t, b.PushInsert(vs))
	q := b.Build()

	assert.Equal(t, `INSERT INTO users ("name", "age") VALUES (?, ?)`, q.sql)
	require.Equal(t, 2, q.args.Len())
	assert.Equal(t, "bob", q.args.Values()[0].Text)
	assert.Equal(t, int64(30), q.args.Values()[1].Integer)
}

func TestQueryBuilderPushInsertRejectsEmptyValues(t *testing.T) {
	b := NewQueryBuilder()
	err := b.PushInsert(NewValues())
	require.Error(t, err)
}

func TestQueryBuilderPushSet(t *testing.T) {
	vs := NewValues()
	require.NoError(t, vs.Set("name", "alice"))
	vs.SetExpr("updated_at", "unixepoch()", nil)

	b := NewQueryBuilder()
	b.PushSQL("UPDATE users SET ")
	require.NoError(t, b.PushSet(vs))
	q := b.Build()

	assert.Equal(t, `UPDATE users SET "name" = ?, "updated_at" = unixepoch()`, q.sql)
	assert.Equal(t, 1, q.args.Len())
}

func TestQueryBuilderPushWhereEmptyIsTautology(t *testing.T) {
	b := NewQueryBuilder()
	require.NoError(t, b.PushWhere(NewValues()))
	assert.Equal(t, "1=1", b.Build().sql)
}

func TestQueryBuilderPushWhereNullUsesIsNull(t *testing.T) {
	vs := NewValues()
	require.NoError(t, vs.Set("deleted_at", nil))
	require.NoError(t, vs.Set("id", 5))

	b := NewQueryBuilder()
	require.NoError(t, b.PushWhere(vs))
	q := b.Build()

	assert.Equal(t, `"deleted_at" IS NULL AND "id" = ?`, q.sql)
	assert.Equal(t, 1, q.args.Len())
}

func TestQueryBuilderPushUpsertExcludesConflictTarget(t *testing.T) {
	vs := NewValues()
	require.NoError(t, vs.Set("id", 1))
	require.NoError(t, vs.Set("name", "bob"))
	require.NoError(t, vs.Set("age", 9))

	b := NewQueryBuilder()
	require.NoError(t, b.PushUpsert(vs, "id"))
	assert.Equal(t, `"name" = excluded."name", "age" = excluded."age"`, b.Build().sql)
}

func TestQueryBuilderPushUpsertAllExcludedIsError(t *testing.T) {
	vs := NewValues()
	require.NoError(t, vs.Set("id", 1))

	b := NewQueryBuilder()
	err := b.PushUpsert(vs, "id")
	require.Error(t, err)
}

func TestQueryBuilderPushQueryMergesArgsAndRebasesPositionalIndex(t *testing.T) {
	inner := NewQuery("WHERE x = ?1").Bind(5)

	b := NewQueryBuilder()
	b.PushSQL("SELECT * FROM t")
	b.PushQuery(inner)
	q := b.Build()

	assert.Equal(t, "SELECT * FROM t WHERE x = ?1", q.sql)
	require.Equal(t, 1, q.args.Len())
	assert.Equal(t, int64(5), q.args.Values()[0].Integer)
}

func TestQueryBuilderPushQueryRenamesCollidingNamedParams(t *testing.T) {
	outer := NewQueryBuilder()
	require.NoError(t, outer.PushBindNamed("a", 1))
	outer.PushSQL(" ")

	inner := NewQuery(":a").BindNamed("a", 2)
	outer.PushQuery(inner)
	q := outer.Build()

	assert.NotEqual(t, ":a :a", q.sql, "colliding named parameter must be renamed, not left duplicated")
	assert.Equal(t, 2, q.args.Len())
}
