package musq

import (
	"context"
	"iter"

	"github.com/rs/zerolog"

	"github.com/cortesi/musq/internal/core"
	"github.com/cortesi/musq/internal/worker"
)

// Connection is an async façade over a single dedicated Connection Worker
// goroutine. It is safe to call concurrently from multiple goroutines;
// every request is serialised onto the worker internally.
type Connection struct {
	w               *worker.Worker
	rowChannelSize  int
	optimizeOnClose OptimizeOnClose

	logger      *zerolog.Logger
	logSettings LogSettings
}

// connect establishes a new Connection against dsn using m's configuration.
func connect(ctx context.Context, m *Musq) (*Connection, error) {
	w, err := worker.Spawn(ctx, m.dsn(), m.statementCacheCapacity, m.commandChannelSize)
	if err != nil {
		return nil, err
	}
	return &Connection{
		w:               w,
		rowChannelSize:  m.rowChannelSize,
		optimizeOnClose: m.optimizeOnClose,
		logger:          m.logger,
		logSettings:     m.logSettings,
	}, nil
}

// Close runs the configured optimize-on-close pragma sequence, if any, then
// shuts down the connection's worker goroutine.
func (c *Connection) Close(ctx context.Context) error {
	if c.optimizeOnClose.Enabled {
		pragma := c.optimizeOnClose.pragmaString()
		if _, err := c.Execute(ctx, pragma, nil); err != nil {
			return err
		}
	}
	return c.w.Close(ctx)
}

// Prepare compiles sql, populating its declared bind-parameter slot table.
func (c *Connection) Prepare(ctx context.Context, sql string) (*Statement, error) {
	handle, err := c.w.Prepare(ctx, sql)
	if err != nil {
		return nil, err
	}
	return &Statement{sql: handle.SQL, columns: handle.Columns, slots: handle.Slots}, nil
}

// Execute runs sql with args (nil means no bind parameters) to completion
// and returns the rows-affected and last-insert-rowid counters, discarding
// any result rows. Use Fetch for statements that return rows.
func (c *Connection) Execute(ctx context.Context, sql string, args *Arguments) (rowsAffected, lastInsertID int64, err error) {
	ql := newQueryLogger(c.logger, sql, c.logSettings)
	defer ql.Finish()

	stream, err := c.w.Execute(ctx, sql, args, c.rowChannelSize)
	if err != nil {
		return 0, 0, err
	}
	for item := range stream {
		if item.Err != nil {
			return 0, 0, item.Err
		}
		if item.Final {
			ql.incRowsAffected(item.RowsAffected)
			return item.RowsAffected, item.LastInsertID, nil
		}
	}
	return 0, 0, nil
}

// Fetch runs sql with args and streams the resulting rows. The iterator
// stops at the first error (yielded as the second value) or once the
// statement's final write-counter item arrives.
func (c *Connection) Fetch(ctx context.Context, sql string, args *Arguments) iter.Seq2[Row, error] {
	return func(yield func(Row, error) bool) {
		ql := newQueryLogger(c.logger, sql, c.logSettings)
		defer ql.Finish()

		stream, err := c.w.Execute(ctx, sql, args, c.rowChannelSize)
		if err != nil {
			yield(core.Row{}, err)
			return
		}
		for item := range stream {
			if item.Err != nil {
				yield(core.Row{}, item.Err)
				return
			}
			if item.Final {
				ql.incRowsAffected(item.RowsAffected)
				return
			}
			ql.incRowsReturned()
			if !yield(item.Row, nil) {
				return
			}
		}
	}
}

// FetchAll runs sql with args and materialises every resulting row.
func (c *Connection) FetchAll(ctx context.Context, sql string, args *Arguments) ([]Row, error) {
	var rows []Row
	for row, err := range c.Fetch(ctx, sql, args) {
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// FetchOne runs sql with args and returns its single expected row, or
// ErrRowNotFound if the result set is empty.
func (c *Connection) FetchOne(ctx context.Context, sql string, args *Arguments) (Row, error) {
	for row, err := range c.Fetch(ctx, sql, args) {
		if err != nil {
			return Row{}, err
		}
		return row, nil
	}
	return Row{}, ErrRowNotFound
}

// FetchOptional runs sql with args and returns its first row, or ok=false
// if the result set is empty.
func (c *Connection) FetchOptional(ctx context.Context, sql string, args *Arguments) (row Row, ok bool, err error) {
	for r, e := range c.Fetch(ctx, sql, args) {
		if e != nil {
			return Row{}, false, e
		}
		return r, true, nil
	}
	return Row{}, false, nil
}

// Begin starts a new transaction, or a nested savepoint if one is already
// open on this Connection.
func (c *Connection) Begin(ctx context.Context) (*Transaction, error) {
	if err := c.w.Begin(ctx); err != nil {
		return nil, err
	}
	return &Transaction{conn: c, open: true}, nil
}

// WithTransaction runs fn inside a Transaction, committing on a nil return
// and rolling back otherwise. The transaction (or savepoint) is passed to
// fn as an Executor.
func (c *Connection) WithTransaction(ctx context.Context, fn func(*Transaction) error) error {
	tx, err := c.Begin(ctx)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		// fn's error may itself be ctx.Err() (a cancelled/expired ctx), in
		// which case an acknowledged Rollback on that same ctx would never
		// reach the Worker and leave the transaction open on the
		// connection. Close fires the rollback without waiting on ctx.
		_ = tx.Close(ctx)
		return err
	}
	return tx.Commit(ctx)
}

// clearCachedStatements finalises every cached statement. Test-only.
func (c *Connection) clearCachedStatements(ctx context.Context) error {
	return c.w.ClearCache(ctx)
}

// cachedStatementsSize returns the current statement-cache depth.
func (c *Connection) cachedStatementsSize() int64 { return c.w.CacheSize() }
