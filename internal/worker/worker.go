// Package worker implements the Connection Worker: one goroutine per live
// database handle that owns an Engine and a Statement Cache exclusively,
// serialising every prepare/execute/begin/commit/rollback against them.
package worker

import (
	"context"
	"fmt"
	"sync"

	"github.com/cortesi/musq/internal/cache"
	"github.com/cortesi/musq/internal/core"
	"github.com/cortesi/musq/internal/engine"
	"github.com/cortesi/musq/internal/metrics"
	"github.com/cortesi/musq/internal/paramtable"
)

// DefaultCommandChannelSize and DefaultRowChannelSize are the default
// number of commands / rows allowed in flight.
const (
	DefaultCommandChannelSize = 50
	DefaultRowChannelSize     = 50
)

// Worker drives one SQLite connection from a dedicated goroutine. All
// exported methods are safe to call concurrently from multiple goroutines;
// internally every request is serialised onto the single worker loop.
type Worker struct {
	eng   *engine.Engine
	cache *cache.LRU

	cmdCh chan command

	closeOnce sync.Once
	closeErr  error
	done      chan struct{}
}

type cachedStatement struct {
	prepared *engine.PreparedStatement
	slots    []paramtable.Slot
	columns  []core.Column
}

func (c *cachedStatement) Close() error { return c.prepared.Close() }

// Spawn opens dsn and starts the worker goroutine. cacheCapacity <= 0 means
// an unbounded statement cache; commandChannelSize <= 0 falls back to
// DefaultCommandChannelSize.
func Spawn(ctx context.Context, dsn string, cacheCapacity, commandChannelSize int) (*Worker, error) {
	eng, err := engine.Open(ctx, dsn)
	if err != nil {
		return nil, err
	}
	if commandChannelSize <= 0 {
		commandChannelSize = DefaultCommandChannelSize
	}

	w := &Worker{
		eng:   eng,
		cache: cache.New(cacheCapacity),
		cmdCh: make(chan command, commandChannelSize),
		done:  make(chan struct{}),
	}
	go w.run()
	return w, nil
}

// CacheSize exposes the statement cache depth gauge for metrics collection.
func (w *Worker) CacheSize() int64 { return w.cache.SizeGauge().Load() }

func (w *Worker) run() {
	defer close(w.done)

	// ignoreNextStartRollback absorbs the fire-and-forget Rollback a dropped
	// Transaction sends after an orphaned (unacknowledged) Commit/Rollback
	// already landed, so it doesn't roll back a transaction that has since
	// moved on.
	ignoreNextStartRollback := false
	depth := 0

	for cmd := range w.cmdCh {
		switch cmd.kind {
		case kindPrepare:
			handle, err := w.prepare(cmd.ctx, cmd.sql)
			cmd.reply <- reply{statement: handle, err: err}

		case kindExecute:
			w.execute(cmd)

		case kindBegin:
			sql := beginSQL(depth)
			err := w.eng.Exec(cmd.ctx, sql)
			ok := err == nil
			if ok {
				depth++
			}
			if delivered := cmd.rv.send(cmd.ctx, reply{err: err}); !delivered && ok {
				metrics.RecordBeginTxRecovery()
				if rbErr := w.eng.Exec(context.Background(), rollbackSQL(depth)); rbErr != nil {
					w.closeErr = fmt.Errorf("musq: failed to roll back orphaned transaction: %w", rbErr)
					return
				}
				depth--
			}

		case kindCommit:
			var err error
			if depth > 0 {
				err = w.eng.Exec(cmd.ctx, commitSQL(depth))
				if err == nil {
					depth--
				}
			}
			ok := err == nil
			if delivered := cmd.rv.send(cmd.ctx, reply{err: err}); !delivered && ok {
				ignoreNextStartRollback = true
			}

		case kindRollback:
			if ignoreNextStartRollback && cmd.rv == nil {
				ignoreNextStartRollback = false
				continue
			}

			var err error
			if depth > 0 {
				err = w.eng.Exec(cmd.ctx, rollbackSQL(depth))
				if err == nil {
					depth--
				}
			}
			ok := err == nil
			if cmd.rv != nil {
				if delivered := cmd.rv.send(cmd.ctx, reply{err: err}); !delivered && ok {
					ignoreNextStartRollback = true
				}
			}

		case kindClearCache:
			err := w.cache.Clear()
			cmd.reply <- reply{err: err}

		case kindShutdown:
			_ = w.cache.Clear()
			err := w.eng.Close()
			cmd.reply <- reply{err: err}
			return
		}
	}
}

func (w *Worker) prepareCached(ctx context.Context, sqlText string) (*cachedStatement, error) {
	if entry, ok := w.cache.Get(sqlText); ok {
		return entry.(*cachedStatement), nil
	}

	slots, err := paramtable.Build(sqlText)
	if err != nil {
		return nil, err
	}
	ps, err := engine.Prepare(ctx, w.eng, sqlText)
	if err != nil {
		return nil, err
	}

	cs := &cachedStatement{prepared: ps, slots: slots}
	if err := w.cache.Put(sqlText, cs); err != nil {
		return nil, err
	}
	return cs, nil
}

func (w *Worker) prepare(ctx context.Context, sqlText string) (*PreparedHandle, error) {
	cs, err := w.prepareCached(ctx, sqlText)
	if err != nil {
		return nil, err
	}
	return &PreparedHandle{Key: sqlText, SQL: sqlText, Slots: cs.slots, Columns: cs.columns}, nil
}

func (w *Worker) execute(cmd command) {
	defer close(cmd.resultCh)

	cs, err := w.prepareCached(cmd.ctx, cmd.sql)
	if err != nil {
		w.send(cmd, StreamItem{Err: err})
		return
	}

	var driverArgs []any
	if cmd.args != nil {
		driverArgs, _, err = cmd.args.Resolve(cs.slots, 0)
		if err != nil {
			w.send(cmd, StreamItem{Err: err})
			return
		}
	}

	rows, err := cs.prepared.Step(cmd.ctx, driverArgs)
	if err != nil {
		w.send(cmd, StreamItem{Err: err})
		return
	}
	defer rows.Close()

	colInfo, err := rows.Columns()
	if err != nil {
		w.send(cmd, StreamItem{Err: err})
		return
	}
	columns := make([]core.Column, len(colInfo))
	for i, c := range colInfo {
		columns[i] = core.Column{Name: c.Name, Ordinal: i, DeclType: c.DeclType}
	}
	cs.columns = columns

	rawDest := make([]any, len(columns))
	scanDest := make([]any, len(columns))
	for i := range rawDest {
		scanDest[i] = &rawDest[i]
	}

	for rows.Next() {
		if err := rows.Scan(scanDest...); err != nil {
			w.send(cmd, StreamItem{Err: err})
			return
		}
		values := make([]core.Value, len(columns))
		for i, raw := range rawDest {
			v, err := core.ValueFromDriver(raw, columns[i].DeclType)
			if err != nil {
				w.send(cmd, StreamItem{Err: err})
				return
			}
			values[i] = v
		}
		if !w.send(cmd, StreamItem{Row: core.NewRow(columns, values), IsRow: true}) {
			return
		}
	}
	if err := rows.Err(); err != nil {
		w.send(cmd, StreamItem{Err: err})
		return
	}

	changes, err := w.eng.Changes(cmd.ctx)
	if err != nil {
		w.send(cmd, StreamItem{Err: err})
		return
	}
	lastID, err := w.eng.LastInsertRowID(cmd.ctx)
	if err != nil {
		w.send(cmd, StreamItem{Err: err})
		return
	}
	w.send(cmd, StreamItem{Final: true, RowsAffected: changes, LastInsertID: lastID, Columns: columns})
}

func (w *Worker) send(cmd command, item StreamItem) bool {
	select {
	case cmd.resultCh <- item:
		return true
	case <-cmd.ctx.Done():
		return false
	}
}

// beginSQL, commitSQL, rollbackSQL generate nested transaction control SQL:
// the outermost level is plain BEGIN/COMMIT/ROLLBACK; deeper levels use
// named SAVEPOINTs. depth is always the connection's transaction_depth
// read once before the operation runs.
func beginSQL(depth int) string {
	if depth == 0 {
		return "BEGIN"
	}
	return fmt.Sprintf("SAVEPOINT _musq_savepoint_%d", depth)
}

func commitSQL(depth int) string {
	if depth == 1 {
		return "COMMIT"
	}
	return fmt.Sprintf("RELEASE SAVEPOINT _musq_savepoint_%d", depth-1)
}

func rollbackSQL(depth int) string {
	if depth == 1 {
		return "ROLLBACK"
	}
	return fmt.Sprintf("ROLLBACK TO SAVEPOINT _musq_savepoint_%d", depth-1)
}
