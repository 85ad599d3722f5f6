package pool

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeConn struct{ id int64 }

func newCountingPool(t *testing.T, maxConns int) (*Pool[*fakeConn], *atomic.Int64) {
	t.Helper()
	var opened atomic.Int64
	var closed atomic.Int64
	p := New(maxConns, func(ctx context.Context) (*fakeConn, error) {
		return &fakeConn{id: opened.Add(1)}, nil
	}, func(c *fakeConn) error {
		closed.Add(1)
		return nil
	})
	t.Cleanup(func() { _ = p.Close(context.Background()) })
	return p, &opened
}

func TestPoolAcquireOpensUpToMax(t *testing.T) {
	p, opened := newCountingPool(t, 2)
	ctx := context.Background()

	c1, err := p.Acquire(ctx)
	require.NoError(t, err)
	c2, err := p.Acquire(ctx)
	require.NoError(t, err)

	assert.Equal(t, int64(2), opened.Load())
	assert.Equal(t, int64(2), p.Size())

	ctx2, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
	defer cancel()
	_, err = p.Acquire(ctx2)
	require.Error(t, err, "a third acquire beyond maxConns must not succeed without a release")

	p.Release(c1)
	p.Release(c2)
}

func TestPoolReleaseReturnsToIdleQueue(t *testing.T) {
	p, opened := newCountingPool(t, 1)
	ctx := context.Background()

	c1, err := p.Acquire(ctx)
	require.NoError(t, err)
	p.Release(c1)

	c2, err := p.Acquire(ctx)
	require.NoError(t, err)
	assert.Same(t, c1, c2, "a released connection should be reused rather than reopened")
	assert.Equal(t, int64(1), opened.Load())

	p.Release(c2)
}

func TestPoolDiscardFreesSlotWithoutReuse(t *testing.T) {
	p, opened := newCountingPool(t, 1)
	ctx := context.Background()

	c1, err := p.Acquire(ctx)
	require.NoError(t, err)
	p.Discard(c1)

	c2, err := p.Acquire(ctx)
	require.NoError(t, err)
	assert.NotSame(t, c1, c2)
	assert.Equal(t, int64(2), opened.Load())

	p.Release(c2)
}

func TestPoolAcquireAfterCloseReturnsErrClosed(t *testing.T) {
	p, _ := newCountingPool(t, 2)
	require.NoError(t, p.Close(context.Background()))

	_, err := p.Acquire(context.Background())
	assert.ErrorIs(t, err, ErrClosed)
}

func TestPoolTryAcquireWithoutIdleReturnsFalse(t *testing.T) {
	p, _ := newCountingPool(t, 1)
	_, ok := p.TryAcquire()
	assert.False(t, ok, "no connection has ever been released, so none should be idle")
}
