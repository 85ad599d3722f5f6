package musq

import (
	"context"
	"iter"
)

// Transaction represents one open BEGIN level or nested SAVEPOINT on a
// Connection. It implements Executor so callers can run queries against it
// exactly as they would against a Connection.
type Transaction struct {
	conn *Connection
	open bool
}

// Commit releases this transaction level. Calling Commit more than once, or
// after Rollback, is a no-op.
func (t *Transaction) Commit(ctx context.Context) error {
	if !t.open {
		return nil
	}
	t.open = false
	return t.conn.w.Commit(ctx)
}

// Rollback reverts this transaction level. Calling Rollback more than once,
// or after Commit, is a no-op.
func (t *Transaction) Rollback(ctx context.Context) error {
	if !t.open {
		return nil
	}
	t.open = false
	return t.conn.w.Rollback(ctx)
}

// Close rolls back the transaction if neither Commit nor Rollback has run
// yet, firing the rollback without waiting for the Worker to acknowledge
// it: Go has no destructor to await a reply from, so this must never
// block on ctx the way an explicit Rollback call does. The Worker's
// ignoreNextStartRollback bookkeeping exists to absorb exactly this
// fire-and-forget command when it arrives after the transaction has
// already been resolved by an orphaned Commit/Rollback.
// Callers that don't explicitly commit should defer Close to avoid
// leaving an open transaction on the connection.
func (t *Transaction) Close(ctx context.Context) error {
	if !t.open {
		return nil
	}
	t.open = false
	t.conn.w.StartRollback()
	return nil
}

// Prepare delegates to the underlying Connection; statements are shared
// across the whole connection's cache regardless of transaction nesting.
func (t *Transaction) Prepare(ctx context.Context, sql string) (*Statement, error) {
	return t.conn.Prepare(ctx, sql)
}

// Execute runs sql against the underlying Connection inside this
// transaction level.
func (t *Transaction) Execute(ctx context.Context, sql string, args *Arguments) (rowsAffected, lastInsertID int64, err error) {
	return t.conn.Execute(ctx, sql, args)
}

// Fetch streams rows for sql against the underlying Connection inside this
// transaction level.
func (t *Transaction) Fetch(ctx context.Context, sql string, args *Arguments) iter.Seq2[Row, error] {
	return t.conn.Fetch(ctx, sql, args)
}

// FetchAll materialises every row for sql.
func (t *Transaction) FetchAll(ctx context.Context, sql string, args *Arguments) ([]Row, error) {
	return t.conn.FetchAll(ctx, sql, args)
}

// FetchOne returns sql's single expected row, or ErrRowNotFound.
func (t *Transaction) FetchOne(ctx context.Context, sql string, args *Arguments) (Row, error) {
	return t.conn.FetchOne(ctx, sql, args)
}

// FetchOptional returns sql's first row, or ok=false if empty.
func (t *Transaction) FetchOptional(ctx context.Context, sql string, args *Arguments) (row Row, ok bool, err error) {
	return t.conn.FetchOptional(ctx, sql, args)
}

// Begin starts a nested savepoint under this transaction.
func (t *Transaction) Begin(ctx context.Context) (*Transaction, error) {
	return t.conn.Begin(ctx)
}
