package cache

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type closeRecorder struct{ closed bool }

func (c *closeRecorder) Close() error {
	c.closed = true
	return nil
}

func TestLRUGetPromotesToFront(t *testing.T) {
	c := New(2)
	a, b := &closeRecorder{}, &closeRecorder{}
	require.NoError(t, c.Put("a", a))
	require.NoError(t, c.Put("b", b))

	_, ok := c.Get("a")
	require.True(t, ok)

	// Inserting a third entry should evict "b" (now least-recently-used),
	// not "a" (just promoted).
	c2 := &closeRecorder{}
	require.NoError(t, c.Put("c", c2))

	assert.True(t, b.closed)
	assert.False(t, a.closed)
	assert.Equal(t, 2, c.Len())
}

func TestLRUCapacityZeroIsUnbounded(t *testing.T) {
	c := New(0)
	for i := 0; i < 50; i++ {
		require.NoError(t, c.Put(fmt.Sprintf("key-%d", i), &closeRecorder{}))
	}
	assert.Equal(t, 50, c.Len())
}

func TestLRUSizeGaugeTracksLen(t *testing.T) {
	c := New(10)
	assert.Equal(t, int64(0), c.SizeGauge().Load())

	require.NoError(t, c.Put("a", &closeRecorder{}))
	assert.Equal(t, int64(1), c.SizeGauge().Load())

	require.NoError(t, c.Clear())
	assert.Equal(t, int64(0), c.SizeGauge().Load())
}

func TestLRUPutExistingKeyUpdatesWithoutGrowing(t *testing.T) {
	c := New(10)
	require.NoError(t, c.Put("a", &closeRecorder{}))
	second := &closeRecorder{}
	require.NoError(t, c.Put("a", second))

	assert.Equal(t, 1, c.Len())
	got, ok := c.Get("a")
	require.True(t, ok)
	assert.Same(t, second, got)
}
