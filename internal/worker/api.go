package worker

import (
	"context"

	"github.com/cortesi/musq/internal/core"
)

// Prepare compiles sql (or returns it from cache) and returns its declared
// parameter slot table.
func (w *Worker) Prepare(ctx context.Context, sql string) (*PreparedHandle, error) {
	reply, err := w.oneshot(ctx, command{kind: kindPrepare, ctx: ctx, sql: sql})
	if err != nil {
		return nil, err
	}
	return reply.statement, nil
}

// Execute runs sql with the given bound arguments, returning a channel the
// caller drains for the resulting rows (and, as the final item, the write
// counters). chanSize <= 0 falls back to DefaultRowChannelSize. The
// returned channel is always closed by the Worker, whether the statement
// completes, errors, or ctx is cancelled mid-stream.
func (w *Worker) Execute(ctx context.Context, sql string, args *core.Arguments, chanSize int) (<-chan StreamItem, error) {
	if chanSize <= 0 {
		chanSize = DefaultRowChannelSize
	}
	resultCh := make(chan StreamItem, chanSize)
	cmd := command{kind: kindExecute, ctx: ctx, sql: sql, args: args, resultCh: resultCh}
	select {
	case w.cmdCh <- cmd:
		return resultCh, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-w.done:
		return nil, ErrCrashed
	}
}

// Begin starts a transaction or, if one is already open, a nested
// savepoint, enforcing the rendezvous-ack protocol: if ctx is cancelled
// between the Worker committing the BEGIN and this call observing the
// result, the Worker itself rolls the orphaned level back.
func (w *Worker) Begin(ctx context.Context) error {
	return w.rendezvousCmd(ctx, kindBegin)
}

// Commit commits the innermost open transaction level (or releases the
// innermost savepoint).
func (w *Worker) Commit(ctx context.Context) error {
	return w.rendezvousCmd(ctx, kindCommit)
}

// Rollback rolls back the innermost open transaction level (or the
// innermost savepoint), awaiting acknowledgement.
func (w *Worker) Rollback(ctx context.Context) error {
	return w.rendezvousCmd(ctx, kindRollback)
}

// StartRollback fires a Rollback without waiting for the Worker to process
// or acknowledge it — used by a Transaction's implicit rollback-on-drop.
func (w *Worker) StartRollback() {
	cmd := command{kind: kindRollback, ctx: context.Background()}
	select {
	case w.cmdCh <- cmd:
	case <-w.done:
	}
}

// ClearCache finalises every cached statement.
func (w *Worker) ClearCache(ctx context.Context) error {
	_, err := w.oneshot(ctx, command{kind: kindClearCache, ctx: ctx})
	return err
}

// Close shuts the worker down: finalises the statement cache, closes the
// engine, and waits for the goroutine to exit. Idempotent.
func (w *Worker) Close(ctx context.Context) error {
	w.closeOnce.Do(func() {
		_, err := w.oneshot(ctx, command{kind: kindShutdown, ctx: ctx})
		if err != nil && w.closeErr == nil {
			w.closeErr = err
		}
		<-w.done
	})
	return w.closeErr
}

func (w *Worker) oneshot(ctx context.Context, cmd command) (reply, error) {
	cmd.reply = make(chan reply, 1)
	select {
	case w.cmdCh <- cmd:
	case <-ctx.Done():
		return reply{}, ctx.Err()
	case <-w.done:
		return reply{}, ErrCrashed
	}

	select {
	case r := <-cmd.reply:
		return r, r.err
	case <-ctx.Done():
		return reply{}, ctx.Err()
	case <-w.done:
		return reply{}, ErrCrashed
	}
}

func (w *Worker) rendezvousCmd(ctx context.Context, k kind) error {
	rv := newRendezvous()
	cmd := command{kind: k, ctx: ctx, rv: rv}
	select {
	case w.cmdCh <- cmd:
	case <-ctx.Done():
		return ctx.Err()
	case <-w.done:
		return ErrCrashed
	}

	r, delivered := rv.recv(ctx)
	if !delivered {
		return ctx.Err()
	}
	return r.err
}
