package musq

import (
	"context"
	"iter"

	"github.com/cortesi/musq/internal/pool"
)

// Pool is a bounded collection of Connections, handed out to callers on
// Acquire and recycled on release.
type Pool struct {
	m    *Musq
	pool *pool.Pool[*Connection]
}

func newPool(ctx context.Context, m *Musq) (*Pool, error) {
	p := &Pool{m: m}
	p.pool = pool.New(m.poolMaxConnections, p.connectOne, func(c *Connection) error {
		return c.Close(context.Background())
	})
	return p, nil
}

func (p *Pool) connectOne(ctx context.Context) (*Connection, error) {
	return p.m.Open(ctx)
}

// Acquire checks out a Connection, opening a new one if the pool has spare
// capacity, waiting for a release otherwise. It honours both ctx and the
// configured pool_acquire_timeout.
func (p *Pool) Acquire(ctx context.Context) (*PoolConnection, error) {
	if p.m.poolAcquireTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = contextWithMillisTimeout(ctx, p.m.poolAcquireTimeout)
		defer cancel()
	}
	conn, err := p.pool.Acquire(ctx)
	if err != nil {
		if err == pool.ErrClosed {
			return nil, ErrPoolClosed
		}
		if ctx.Err() != nil {
			return nil, ErrPoolTimedOut
		}
		return nil, err
	}
	return &PoolConnection{conn: conn, pool: p}, nil
}

// Size returns the current number of live (idle + checked-out) connections.
func (p *Pool) Size() int64 { return p.pool.Size() }

// NumIdle returns the current number of idle connections.
func (p *Pool) NumIdle() int { return p.pool.NumIdle() }

// Close closes every idle connection and waits for checked-out connections
// to be released and closed.
func (p *Pool) Close(ctx context.Context) error {
	return p.pool.Close(ctx)
}

// Prepare acquires a connection, compiles sql on it, and releases the
// connection before returning.
func (p *Pool) Prepare(ctx context.Context, sql string) (*Statement, error) {
	pc, err := p.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer pc.Release()
	return pc.Prepare(ctx, sql)
}

// Execute acquires a connection, runs sql with args to completion on it, and
// releases the connection before returning.
func (p *Pool) Execute(ctx context.Context, sql string, args *Arguments) (rowsAffected, lastInsertID int64, err error) {
	pc, err := p.Acquire(ctx)
	if err != nil {
		return 0, 0, err
	}
	defer pc.Release()
	return pc.Execute(ctx, sql, args)
}

// Fetch acquires a connection and streams sql's rows from it, releasing the
// connection once the iterator is exhausted, errors, or the caller stops
// early.
func (p *Pool) Fetch(ctx context.Context, sql string, args *Arguments) iter.Seq2[Row, error] {
	return func(yield func(Row, error) bool) {
		pc, err := p.Acquire(ctx)
		if err != nil {
			yield(Row{}, err)
			return
		}
		defer pc.Release()
		for row, err := range pc.Fetch(ctx, sql, args) {
			if !yield(row, err) {
				return
			}
			if err != nil {
				return
			}
		}
	}
}

// FetchAll acquires a connection and materialises every row sql returns,
// releasing the connection before returning.
func (p *Pool) FetchAll(ctx context.Context, sql string, args *Arguments) ([]Row, error) {
	pc, err := p.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer pc.Release()
	return pc.FetchAll(ctx, sql, args)
}

// FetchOne acquires a connection and returns sql's single expected row, or
// ErrRowNotFound, releasing the connection before returning.
func (p *Pool) FetchOne(ctx context.Context, sql string, args *Arguments) (Row, error) {
	pc, err := p.Acquire(ctx)
	if err != nil {
		return Row{}, err
	}
	defer pc.Release()
	return pc.FetchOne(ctx, sql, args)
}

// FetchOptional acquires a connection and returns sql's first row, or
// ok=false if empty, releasing the connection before returning.
func (p *Pool) FetchOptional(ctx context.Context, sql string, args *Arguments) (row Row, ok bool, err error) {
	pc, err := p.Acquire(ctx)
	if err != nil {
		return Row{}, false, err
	}
	defer pc.Release()
	return pc.FetchOptional(ctx, sql, args)
}

// PoolConnection is a Connection checked out from a Pool. Release (not
// Close) returns it to the pool.
type PoolConnection struct {
	conn *Connection
	pool *Pool
}

// Release returns the connection to its pool.
func (pc *PoolConnection) Release() { pc.pool.pool.Release(pc.conn) }

// Discard closes the connection and drops it from the pool rather than
// returning it to the idle queue, for use when the connection is known to
// be broken.
func (pc *PoolConnection) Discard() { pc.pool.pool.Discard(pc.conn) }

func (pc *PoolConnection) Prepare(ctx context.Context, sql string) (*Statement, error) {
	return pc.conn.Prepare(ctx, sql)
}

func (pc *PoolConnection) Execute(ctx context.Context, sql string, args *Arguments) (rowsAffected, lastInsertID int64, err error) {
	return pc.conn.Execute(ctx, sql, args)
}

func (pc *PoolConnection) Fetch(ctx context.Context, sql string, args *Arguments) iter.Seq2[Row, error] {
	return pc.conn.Fetch(ctx, sql, args)
}

func (pc *PoolConnection) FetchAll(ctx context.Context, sql string, args *Arguments) ([]Row, error) {
	return pc.conn.FetchAll(ctx, sql, args)
}

func (pc *PoolConnection) FetchOne(ctx context.Context, sql string, args *Arguments) (Row, error) {
	return pc.conn.FetchOne(ctx, sql, args)
}

func (pc *PoolConnection) FetchOptional(ctx context.Context, sql string, args *Arguments) (row Row, ok bool, err error) {
	return pc.conn.FetchOptional(ctx, sql, args)
}

func (pc *PoolConnection) Begin(ctx context.Context) (*Transaction, error) {
	return pc.conn.Begin(ctx)
}

func (pc *PoolConnection) WithTransaction(ctx context.Context, fn func(*Transaction) error) error {
	return pc.conn.WithTransaction(ctx, fn)
}
