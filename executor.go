package musq

import (
	"context"
	"iter"
	"time"
)

// Executor is implemented by Connection, Transaction, PoolConnection, and
// Pool: anything queries can run directly against.
type Executor interface {
	Prepare(ctx context.Context, sql string) (*Statement, error)
	Execute(ctx context.Context, sql string, args *Arguments) (rowsAffected, lastInsertID int64, err error)
	Fetch(ctx context.Context, sql string, args *Arguments) iter.Seq2[Row, error]
	FetchAll(ctx context.Context, sql string, args *Arguments) ([]Row, error)
	FetchOne(ctx context.Context, sql string, args *Arguments) (Row, error)
	FetchOptional(ctx context.Context, sql string, args *Arguments) (row Row, ok bool, err error)
}

var (
	_ Executor = (*Connection)(nil)
	_ Executor = (*Transaction)(nil)
	_ Executor = (*PoolConnection)(nil)
	_ Executor = (*Pool)(nil)
)

func contextWithMillisTimeout(ctx context.Context, ms int) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, time.Duration(ms)*time.Millisecond)
}
