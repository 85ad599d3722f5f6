package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValueConstructors(t *testing.T) {
	assert.True(t, Null("").IsNull())
	assert.False(t, Int(0).IsNull())

	assert.Equal(t, int64(1), Bool(true).Integer)
	assert.Equal(t, int64(0), Bool(false).Integer)
	assert.Equal(t, KindInteger, Bool(true).Kind)
}

func TestValueDriverValue(t *testing.T) {
	assert.Nil(t, Null("").DriverValue())
	assert.Equal(t, int64(42), Int(42).DriverValue())
	assert.Equal(t, 3.5, Float(3.5).DriverValue())
	assert.Equal(t, "hi", Str("hi").DriverValue())
	assert.Equal(t, []byte{1, 2}, Bytes([]byte{1, 2}).DriverValue())
}

func TestValueFromDriverDisambiguatesBlobFromText(t *testing.T) {
	v, err := ValueFromDriver([]byte("raw"), "BLOB")
	require.NoError(t, err)
	assert.Equal(t, KindBlob, v.Kind)
	assert.Equal(t, []byte("raw"), v.Blob)

	v, err = ValueFromDriver("text", "TEXT")
	require.NoError(t, err)
	assert.Equal(t, KindText, v.Kind)
	assert.Equal(t, "text", v.Text)

	v, err = ValueFromDriver(nil, "")
	require.NoError(t, err)
	assert.True(t, v.IsNull())
}

func TestValueFromDriverCopiesBlobBytes(t *testing.T) {
	raw := []byte{1, 2, 3}
	v, err := ValueFromDriver(raw, "")
	require.NoError(t, err)
	raw[0] = 0xff
	assert.Equal(t, byte(1), v.Blob[0], "ValueFromDriver must copy, not alias, the driver's byte slice")
}

func TestRowGetOutOfBounds(t *testing.T) {
	row := NewRow(
		[]Column{{Name: "id", Ordinal: 0}},
		[]Value{Int(1)},
	)

	v, err := row.Get(0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), v.Integer)

	_, err = row.Get(1)
	require.Error(t, err)
	var cnf *ColumnNotFoundError
	require.ErrorAs(t, err, &cnf)
}

func TestRowGetNamed(t *testing.T) {
	row := NewRow(
		[]Column{{Name: "id"}, {Name: "name"}},
		[]Value{Int(7), Str("bob")},
	)

	v, err := row.GetNamed("name")
	require.NoError(t, err)
	assert.Equal(t, "bob", v.Text)

	_, err = row.GetNamed("missing")
	require.Error(t, err)
	var cnf *ColumnNotFoundError
	require.ErrorAs(t, err, &cnf)
}
