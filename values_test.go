package musq

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValuesPreservesInsertionOrder(t *testing.T) {
	vs := NewValues()
	require.NoError(t, vs.Set("z", 1))
	require.NoError(t, vs.Set("a", 2))
	require.NoError(t, vs.Set("m", 3))

	assert.Equal(t, []string{"z", "a", "m"}, vs.Keys())
	assert.Equal(t, 3, vs.Len())
	assert.False(t, vs.IsEmpty())
}

func TestValuesSetOverwritesWithoutReordering(t *testing.T) {
	vs := NewValues()
	require.NoError(t, vs.Set("a", 1))
	require.NoError(t, vs.Set("b", 2))
	require.NoError(t, vs.Set("a", 99))

	assert.Equal(t, []string{"a", "b"}, vs.Keys())
	entry := vs.get("a")
	assert.Equal(t, int64(99), entry.Value.Integer)
}

func TestValuesSetExprMarksTaintedExpr(t *testing.T) {
	vs := NewValues()
	vs.SetExpr("updated_at", "unixepoch()", nil)

	entry := vs.get("updated_at")
	assert.True(t, entry.IsExpr)
	assert.True(t, entry.Tainted)
	assert.Equal(t, "unixepoch()", entry.Expr)
}

func TestValuesIsEmpty(t *testing.T) {
	vs := NewValues()
	assert.True(t, vs.IsEmpty())
	require.NoError(t, vs.Set("a", 1))
	assert.False(t, vs.IsEmpty())
}
