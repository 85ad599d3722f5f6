package musq

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithTransactionCommitsOnSuccess(t *testing.T) {
	conn := mustOpen(t)
	ctx := context.Background()

	_, _, err := conn.Execute(ctx, "CREATE TABLE t(v INTEGER)", nil)
	require.NoError(t, err)

	err = conn.WithTransaction(ctx, func(tx *Transaction) error {
		_, _, err := tx.Execute(ctx, "INSERT INTO t(v) VALUES (1)", nil)
		return err
	})
	require.NoError(t, err)

	row, err := conn.FetchOne(ctx, "SELECT count(*) FROM t", nil)
	require.NoError(t, err)
	v, _ := row.Get(0)
	assert.Equal(t, int64(1), v.Integer)
}

func TestWithTransactionRollsBackOnError(t *testing.T) {
	conn := mustOpen(t)
	ctx := context.Background()

	_, _, err := conn.Execute(ctx, "CREATE TABLE t(v INTEGER)", nil)
	require.NoError(t, err)

	sentinel := assert.AnError
	err = conn.WithTransaction(ctx, func(tx *Transaction) error {
		if _, _, err := tx.Execute(ctx, "INSERT INTO t(v) VALUES (1)", nil); err != nil {
			return err
		}
		return sentinel
	})
	assert.ErrorIs(t, err, sentinel)

	row, err := conn.FetchOne(ctx, "SELECT count(*) FROM t", nil)
	require.NoError(t, err)
	v, _ := row.Get(0)
	assert.Equal(t, int64(0), v.Integer, "a failing WithTransaction body must leave no committed rows")
}

func TestTransactionCommitTwiceIsNoop(t *testing.T) {
	conn := mustOpen(t)
	ctx := context.Background()

	tx, err := conn.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, tx.Commit(ctx))
	require.NoError(t, tx.Commit(ctx), "committing an already-committed Transaction must be a no-op")
}

func TestTransactionCloseAfterCommitIsNoop(t *testing.T) {
	conn := mustOpen(t)
	ctx := context.Background()

	tx, err := conn.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, tx.Commit(ctx))
	require.NoError(t, tx.Close(ctx))
}
