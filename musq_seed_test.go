package musq

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// These mirror the seed scenarios used to validate parameter resolution,
// transaction nesting, and pool bounds end to end against a real engine.

func mustOpen(t *testing.T) *Connection {
	t.Helper()
	conn, err := InMemory().Open(context.Background())
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close(context.Background()) })
	return conn
}

func TestSeedNamedPositionalMix(t *testing.T) {
	conn := mustOpen(t)
	ctx := context.Background()

	args := NewArguments()
	args.Add(Int(7))
	args.AddNamed("b", Int(8))
	args.AddNamed("a", Int(9))

	row, err := conn.FetchOne(ctx, "SELECT ?1, :b, :a", args)
	require.NoError(t, err)

	v0, _ := row.Get(0)
	v1, _ := row.Get(1)
	v2, _ := row.Get(2)
	assert.Equal(t, int64(7), v0.Integer)
	assert.Equal(t, int64(8), v1.Integer)
	assert.Equal(t, int64(9), v2.Integer)
}

func TestSeedSharedPositionalReuse(t *testing.T) {
	conn := mustOpen(t)
	ctx := context.Background()

	args := NewArguments()
	args.Add(Int(5))
	args.Add(Int(500))
	args.Add(Int(1020))

	row, err := conn.FetchOne(ctx, "SELECT ?1, ?1, ?3, ?2", args)
	require.NoError(t, err)

	v0, _ := row.Get(0)
	v1, _ := row.Get(1)
	v2, _ := row.Get(2)
	v3, _ := row.Get(3)
	assert.Equal(t, int64(5), v0.Integer)
	assert.Equal(t, int64(5), v1.Integer)
	assert.Equal(t, int64(1020), v2.Integer)
	assert.Equal(t, int64(500), v3.Integer)
}

func TestSeedTransactionNesting(t *testing.T) {
	conn := mustOpen(t)
	ctx := context.Background()

	_, _, err := conn.Execute(ctx, "CREATE TABLE foo(value INTEGER)", nil)
	require.NoError(t, err)

	tx0, err := conn.Begin(ctx)
	require.NoError(t, err)

	insertArgs := func(v int64) *Arguments {
		a := NewArguments()
		a.Add(Int(v))
		return a
	}

	_, _, err = tx0.Execute(ctx, "INSERT INTO foo(value) VALUES (?1)", insertArgs(0))
	require.NoError(t, err)

	tx1, err := tx0.Begin(ctx)
	require.NoError(t, err)
	_, _, err = tx1.Execute(ctx, "INSERT INTO foo(value) VALUES (?1)", insertArgs(1))
	require.NoError(t, err)
	require.NoError(t, tx1.Close(ctx)) // dropped without commit: rolls back the savepoint

	countWhere := func(ex Executor, value int64) int64 {
		a := NewArguments()
		a.Add(Int(value))
		row, err := ex.FetchOne(ctx, "SELECT count(*) FROM foo WHERE value = ?1", a)
		require.NoError(t, err)
		v, err := row.Get(0)
		require.NoError(t, err)
		return v.Integer
	}

	assert.Equal(t, int64(0), countWhere(tx0, 1))
	assert.Equal(t, int64(1), countWhere(tx0, 0))

	require.NoError(t, tx0.Commit(ctx))

	assert.Equal(t, int64(1), countWhere(conn, 0))
	assert.Equal(t, int64(0), countWhere(conn, 1))
}

func TestSeedPoolBounds(t *testing.T) {
	pool, err := InMemory().PoolMaxConnections(2).PoolAcquireTimeoutMillis(200).OpenPool(context.Background())
	require.NoError(t, err)
	t.Cleanup(func() { _ = pool.Close(context.Background()) })

	ctx := context.Background()
	c1, err := pool.Acquire(ctx)
	require.NoError(t, err)
	c2, err := pool.Acquire(ctx)
	require.NoError(t, err)

	start := time.Now()
	_, err = pool.Acquire(ctx)
	elapsed := time.Since(start)

	require.ErrorIs(t, err, ErrPoolTimedOut, "a third acquire with nothing released must time out")
	assert.GreaterOrEqual(t, elapsed, 150*time.Millisecond)

	c1.Release()
	c2.Release()

	c3, err := pool.Acquire(ctx)
	require.NoError(t, err, "acquiring after a release must succeed")
	c3.Release()
}

func TestSeedRebindOverwrite(t *testing.T) {
	conn := mustOpen(t)
	ctx := context.Background()

	args := NewArguments()
	args.AddNamed("a", Int(7))
	args.Add(Int(9))
	require.Equal(t, 2, args.Len())

	row, err := conn.FetchOne(ctx, "SELECT :a, :a, ?2", args)
	require.NoError(t, err)

	v0, _ := row.Get(0)
	v1, _ := row.Get(1)
	v2, _ := row.Get(2)
	assert.Equal(t, int64(7), v0.Integer)
	assert.Equal(t, int64(7), v1.Integer)
	assert.Equal(t, int64(9), v2.Integer)
}
