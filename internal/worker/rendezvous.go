package worker

import "context"

// rendezvous is a two-phase send/acknowledge handoff used for the three
// transaction-control replies (Begin/Commit/Rollback). A plain reply channel
// cannot tell the Worker whether its caller actually observed the result:
// if the caller's context is cancelled in the window between the Worker
// committing a transaction and the caller reading the reply, the caller
// walks away believing the operation never happened while the database
// disagrees. The Worker needs to know which of those happened so it can
// compensate (roll back an orphaned BEGIN, or remember to swallow the next
// fire-and-forget Rollback a dropped Transaction sends after an orphaned
// Commit/Rollback already landed).
type rendezvous struct {
	data chan reply
	ack  chan struct{}
}

func newRendezvous() *rendezvous {
	return &rendezvous{
		data: make(chan reply),
		ack:  make(chan struct{}, 1),
	}
}

// send delivers r to whoever calls recv, blocking until they acknowledge
// receipt or ctx ends first. The returned bool reports whether the receiver
// actually observed r: false means the caller must compensate.
func (rv *rendezvous) send(ctx context.Context, r reply) bool {
	select {
	case rv.data <- r:
	case <-ctx.Done():
		return false
	}
	select {
	case <-rv.ack:
		return true
	case <-ctx.Done():
		return false
	}
}

// recv waits for a value handed to send, acknowledging receipt immediately
// so the sender's send unblocks with delivered=true.
func (rv *rendezvous) recv(ctx context.Context) (reply, bool) {
	select {
	case r := <-rv.data:
		rv.ack <- struct{}{}
		return r, true
	case <-ctx.Done():
		var zero reply
		return zero, false
	}
}
