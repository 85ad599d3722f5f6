package worker

import (
	"context"

	"github.com/cortesi/musq/internal/core"
	"github.com/cortesi/musq/internal/paramtable"
)

// kind discriminates the Command variants a Worker accepts on its command
// channel.
type kind int

const (
	kindPrepare kind = iota
	kindExecute
	kindBegin
	kindCommit
	kindRollback
	kindClearCache
	kindShutdown
)

// command is the envelope sent down a Worker's channel. Exactly one of the
// payload fields is meaningful, selected by kind.
type command struct {
	kind kind
	ctx  context.Context

	sql  string
	args *core.Arguments

	// resultCh receives the row stream for kindExecute; unused otherwise.
	resultCh chan StreamItem

	// rv carries the rendezvous handshake for Begin/Commit/Rollback. Nil for
	// a fire-and-forget Rollback issued by a dropped Transaction.
	rv *rendezvous

	// reply is a plain one-shot channel for Prepare/ClearCache/Shutdown,
	// where no caller-observed-the-result bookkeeping is needed.
	reply chan reply
}

// reply is what Prepare/ClearCache/Shutdown and the transaction-control
// commands send back.
type reply struct {
	statement *PreparedHandle
	err       error
}

// PreparedHandle is what Prepare hands back to a Connection: the declared
// parameter slot table (computed statically by package paramtable) plus an
// opaque key the Worker uses to find the cached compiled statement again.
type PreparedHandle struct {
	Key     string
	SQL     string
	Slots   []paramtable.Slot
	Columns []core.Column
}

// StreamItem is one element of an Execute result stream: either a single
// Row, or (as the final item before the channel closes, after any rows) the
// statement's write counters, or an error that terminates the stream early.
type StreamItem struct {
	Row   core.Row
	IsRow bool

	Final        bool
	RowsAffected int64
	LastInsertID int64
	Columns      []core.Column

	Err error
}
