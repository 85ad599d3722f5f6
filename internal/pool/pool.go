// Package pool implements the connection-pool internals: a bounded idle
// queue plus a weighted semaphore limiting live connection count.
package pool

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
)

// ErrClosed is returned by Acquire once the pool has been closed.
var ErrClosed = errors.New("musq: pool is closed")

// ErrTimedOut names an acquire that ran out of time. Acquire itself does not
// return it: when ctx's deadline elapses first, Acquire returns ctx's error.
var ErrTimedOut = errors.New("musq: timed out acquiring connection from pool")

// Connector opens one new live connection. Supplied by the caller (root
// package) so this package stays storage-agnostic.
type Connector[C any] func(ctx context.Context) (C, error)

// Closer closes one live connection.
type Closer[C any] func(c C) error

// Pool manages up to maxConns live connections of type C, recycling idle
// ones through a bounded queue.
type Pool[C any] struct {
	connect Connector[C]
	closeFn Closer[C]

	sem      *semaphore.Weighted
	maxConns int64

	mu     sync.Mutex
	idle   []C
	size   atomic.Int64
	closed atomic.Bool

	closeOnce sync.Once
	closedCh  chan struct{}
}

// New constructs a Pool that opens connections via connect and finalises
// them via closeFn, capped at maxConns concurrently live connections.
func New[C any](maxConns int, connect Connector[C], closeFn Closer[C]) *Pool[C] {
	if maxConns <= 0 {
		maxConns = 10
	}
	return &Pool[C]{
		connect:  connect,
		closeFn:  closeFn,
		sem:      semaphore.NewWeighted(int64(maxConns)),
		maxConns: int64(maxConns),
		closedCh: make(chan struct{}),
	}
}

// Size returns the current number of live connections (idle + checked out).
func (p *Pool[C]) Size() int64 { return p.size.Load() }

// NumIdle returns the current number of idle connections.
func (p *Pool[C]) NumIdle() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.idle)
}

// IsClosed reports whether Close has been called.
func (p *Pool[C]) IsClosed() bool { return p.closed.Load() }

// Acquire returns an idle connection if one exists, opens a new one if the
// pool has spare capacity, or blocks until either becomes true. It returns
// ErrClosed if the pool closes while waiting, or ctx's error if ctx is
// cancelled first.
func (p *Pool[C]) Acquire(ctx context.Context) (C, error) {
	var zero C
	if p.closed.Load() {
		return zero, ErrClosed
	}

	waitCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		select {
		case <-p.closedCh:
			cancel()
		case <-waitCtx.Done():
		}
	}()

	for {
		if err := p.sem.Acquire(waitCtx, 1); err != nil {
			if p.closed.Load() {
				return zero, ErrClosed
			}
			return zero, ctx.Err()
		}
		if p.closed.Load() {
			p.sem.Release(1)
			return zero, ErrClosed
		}

		if conn, ok := p.popIdle(); ok {
			return conn, nil
		}

		if !p.size.CompareAndSwap(p.size.Load(), p.size.Load()+1) {
			// lost a race incrementing size; release and retry the whole loop.
			p.sem.Release(1)
			continue
		}

		conn, err := p.connect(ctx)
		if err != nil {
			p.size.Add(-1)
			p.sem.Release(1)
			return zero, err
		}
		return conn, nil
	}
}

// TryAcquire returns an idle connection without blocking, or ok=false if
// none is immediately available.
func (p *Pool[C]) TryAcquire() (conn C, ok bool) {
	if p.closed.Load() {
		return conn, false
	}
	if !p.sem.TryAcquire(1) {
		return conn, false
	}
	if c, found := p.popIdle(); found {
		return c, true
	}
	p.sem.Release(1)
	return conn, false
}

func (p *Pool[C]) popIdle() (conn C, ok bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.idle) == 0 {
		return conn, false
	}
	n := len(p.idle) - 1
	conn = p.idle[n]
	p.idle = p.idle[:n]
	return conn, true
}

// Release returns a live connection to the idle queue, making it available
// to the next Acquire.
func (p *Pool[C]) Release(conn C) {
	if p.closed.Load() {
		_ = p.closeFn(conn)
		p.size.Add(-1)
		p.sem.Release(1)
		return
	}
	p.mu.Lock()
	p.idle = append(p.idle, conn)
	p.mu.Unlock()
	p.sem.Release(1)
}

// Discard drops a connection without returning it to the idle queue
// (used when the connection is known to be broken), freeing its slot.
func (p *Pool[C]) Discard(conn C) {
	_ = p.closeFn(conn)
	p.size.Add(-1)
	p.sem.Release(1)
}

// Close marks the pool closed, closes every idle connection, and waits for
// all checked-out connections to be returned and closed.
func (p *Pool[C]) Close(ctx context.Context) error {
	var err error
	p.closeOnce.Do(func() {
		p.closed.Store(true)
		close(p.closedCh)

		for {
			p.mu.Lock()
			idle := p.idle
			p.idle = nil
			p.mu.Unlock()

			for _, conn := range idle {
				if cerr := p.closeFn(conn); cerr != nil && err == nil {
					err = cerr
				}
				p.size.Add(-1)
			}

			if p.size.Load() <= 0 {
				return
			}
			if !p.sem.TryAcquire(1) {
				select {
				case <-ctx.Done():
					return
				default:
				}
				if acqErr := p.sem.Acquire(ctx, 1); acqErr != nil {
					return
				}
			}
			p.sem.Release(1)
		}
	})
	return err
}
