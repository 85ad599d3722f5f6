package engine

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/avast/retry-go"
)

// PreparedStatement wraps one compiled *sql.Stmt on the engine's pinned
// connection, minus the bind-parameter accessors (those live in package
// paramtable, derived statically from the SQL text rather than queried
// live from the engine, since database/sql does not expose
// sqlite3_bind_parameter_name).
type PreparedStatement struct {
	stmt *sql.Stmt
	sql  string
}

// Prepare compiles sql against e's pinned connection.
func Prepare(ctx context.Context, e *Engine, sqlText string) (*PreparedStatement, error) {
	stmt, err := e.PrepareContext(ctx, sqlText)
	if err != nil {
		return nil, err
	}
	return &PreparedStatement{stmt: stmt, sql: sqlText}, nil
}

// ColumnInfo describes one result column.
type ColumnInfo struct {
	Name     string
	DeclType string
}

// Rows streams the result of one Query call.
type Rows struct {
	rows *sql.Rows
}

// Columns returns the result column metadata. Valid even before the first
// call to Next.
func (r *Rows) Columns() ([]ColumnInfo, error) {
	names, err := r.rows.Columns()
	if err != nil {
		return nil, translateError(err)
	}
	types, err := r.rows.ColumnTypes()
	if err != nil {
		return nil, translateError(err)
	}
	out := make([]ColumnInfo, len(names))
	for i, n := range names {
		decl := ""
		if i < len(types) {
			decl = types[i].DatabaseTypeName()
		}
		out[i] = ColumnInfo{Name: n, DeclType: decl}
	}
	return out, nil
}

// Next advances to the next row, mapping DONE to false and ROW to true.
func (r *Rows) Next() bool { return r.rows.Next() }

// Scan materialises the current row's columns into dest (one *any per
// column), preserving SQLite's per-value dynamic typing.
func (r *Rows) Scan(dest ...any) error {
	if err := r.rows.Scan(dest...); err != nil {
		return translateError(err)
	}
	return nil
}

// Err returns any error encountered while iterating.
func (r *Rows) Err() error { return translateError(r.rows.Err()) }

// Close releases the statement's result set. Safe to call multiple times.
func (r *Rows) Close() error { return r.rows.Close() }

// Step runs the statement with the given bound driver values and returns a
// row stream. BUSY/LOCKED/LOCKED_SHAREDCACHE retries (bounded by
// DefaultMaxRetries, waiting on waitForUnlock between attempts), MISUSE is
// fatal, any other error is translated and returned immediately.
func (s *PreparedStatement) Step(ctx context.Context, args []any) (*Rows, error) {
	var rows *sql.Rows
	attempt := 0

	err := retry.Do(
		func() error {
			if ctx.Err() != nil {
				return retry.Unrecoverable(ctx.Err())
			}

			var execErr error
			rows, execErr = s.stmt.QueryContext(ctx, args...)
			if execErr == nil {
				return nil
			}

			se, ok := translateError(execErr).(*SqliteError)
			if !ok {
				return retry.Unrecoverable(execErr)
			}
			if isMisuse(se.Primary) {
				return retry.Unrecoverable(se)
			}
			if !(se.Extended == codeLockedSharedCache || isBusy(se.Primary) || isLocked(se.Primary)) {
				return retry.Unrecoverable(se)
			}

			attempt++
			if err := waitForUnlock(ctx, attempt); err != nil {
				return retry.Unrecoverable(err)
			}
			return se
		},
		retry.Attempts(DefaultMaxRetries),
		retry.LastErrorOnly(true),
		retry.Delay(0),
	)
	if err != nil {
		if se, ok := err.(*SqliteError); ok && (isBusy(se.Primary) || isLocked(se.Primary) || se.Extended == codeLockedSharedCache) {
			return nil, fmt.Errorf("unlock-notify retry budget exhausted: %w", se)
		}
		return nil, err
	}
	return &Rows{rows: rows}, nil
}

// Close finalises the statement. Reset is implicit in database/sql: each
// Step call opens a fresh result set, so there is no separately-observable
// reset-before-finalize step to perform here.
func (s *PreparedStatement) Close() error {
	if err := s.stmt.Close(); err != nil {
		return translateError(err)
	}
	return nil
}

// SQL returns the statement's source text.
func (s *PreparedStatement) SQL() string { return s.sql }
