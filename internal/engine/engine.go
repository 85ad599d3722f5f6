// Package engine owns the one physical SQLite connection that backs a
// single musq Worker. It is intentionally the only package in this module
// that imports modernc.org/sqlite directly — everything above it talks in
// terms of Value/Row/Statement.
//
// Engine pins database/sql to exactly one *sql.Conn (MaxOpenConns=1): a
// single physical handle gives a one-goroutine-per-connection
// serialisation without needing cgo or direct C-API plumbing, since
// modernc.org/sqlite is a cgo-free, pure-Go translation of the SQLite
// amalgamation.
package engine

import (
	"context"
	"database/sql"
	"sync"

	"github.com/pkg/errors"
	_ "modernc.org/sqlite"
)

// Engine owns one native database handle.
type Engine struct {
	db   *sql.DB
	conn *sql.Conn

	closeOnce sync.Once
	closeErr  error
}

// Open establishes the engine against dsn (a full SQLite connection string,
// already carrying any URI query parameters the Musq builder assembled).
func Open(ctx context.Context, dsn string) (*Engine, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "musq: open engine")
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	conn, err := db.Conn(ctx)
	if err != nil {
		db.Close()
		return nil, errors.Wrap(err, "musq: acquire engine connection")
	}

	return &Engine{db: db, conn: conn}, nil
}

// Exec compiles and runs a semicolon-separated script with no bind
// parameters. Used exclusively for PRAGMAs and transaction-control SQL.
func (e *Engine) Exec(ctx context.Context, script string) error {
	_, err := e.conn.ExecContext(ctx, script)
	if err != nil {
		return translateError(err)
	}
	return nil
}

// PrepareContext compiles sql against the pinned connection.
func (e *Engine) PrepareContext(ctx context.Context, sql string) (*sql.Stmt, error) {
	stmt, err := e.conn.PrepareContext(ctx, sql)
	if err != nil {
		return nil, translateError(err)
	}
	return stmt, nil
}

// Conn exposes the pinned connection for statement-level step/query
// execution; callers in internal/worker are the only consumers.
func (e *Engine) Conn() *sql.Conn { return e.conn }

// Changes returns the number of rows modified, inserted, or deleted by the
// most recently completed statement on this connection
// (https://sqlite.org/c3ref/changes.html). Safe to call because a Worker
// holds its Engine exclusively and serialises every call onto it.
func (e *Engine) Changes(ctx context.Context) (int64, error) {
	var n int64
	if err := e.conn.QueryRowContext(ctx, "SELECT changes()").Scan(&n); err != nil {
		return 0, translateError(err)
	}
	return n, nil
}

// LastInsertRowID returns the rowid of the most recent successful INSERT on
// this connection (https://sqlite.org/c3ref/last_insert_rowid.html).
func (e *Engine) LastInsertRowID(ctx context.Context) (int64, error) {
	var n int64
	if err := e.conn.QueryRowContext(ctx, "SELECT last_insert_rowid()").Scan(&n); err != nil {
		return 0, translateError(err)
	}
	return n, nil
}

// Close finalises the handle. Idempotent with respect to concurrent
// callers: only the first observes the real result.
func (e *Engine) Close() error {
	e.closeOnce.Do(func() {
		e.closeErr = e.conn.Close()
		if err := e.db.Close(); err != nil && e.closeErr == nil {
			e.closeErr = err
		}
	})
	return e.closeErr
}
