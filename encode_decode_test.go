package musq

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeValueBuiltinTypes(t *testing.T) {
	cases := []struct {
		in   any
		kind Kind
	}{
		{nil, KindNull},
		{int64(1), KindInteger},
		{int(1), KindInteger},
		{int32(1), KindInteger},
		{uint(1), KindInteger},
		{uint32(1), KindInteger},
		{float64(1.5), KindDouble},
		{float32(1.5), KindDouble},
		{"hi", KindText},
		{true, KindInteger},
		{[]byte("hi"), KindBlob},
	}
	for _, tc := range cases {
		v, err := encodeValue(tc.in)
		require.NoError(t, err, "encoding %T", tc.in)
		assert.Equal(t, tc.kind, v.Kind, "encoding %T", tc.in)
	}
}

func TestEncodeValuePassesThroughValue(t *testing.T) {
	want := Str("already a value")
	v, err := encodeValue(want)
	require.NoError(t, err)
	assert.Equal(t, want, v)
}

func TestEncodeValueRejectsUnsupportedType(t *testing.T) {
	_, err := encodeValue(struct{ X int }{1})
	require.Error(t, err)
}

type encodableID int64

func (e encodableID) Encode() (Value, error) { return Int(int64(e)), nil }

func TestEncodeValueDelegatesToEncoder(t *testing.T) {
	v, err := encodeValue(encodableID(42))
	require.NoError(t, err)
	assert.Equal(t, int64(42), v.Integer)
}

func TestDecodeScalarBuiltinTypes(t *testing.T) {
	i, err := decodeScalar[int64](Int(7))
	require.NoError(t, err)
	assert.Equal(t, int64(7), i)

	s, err := decodeScalar[string](Str("hi"))
	require.NoError(t, err)
	assert.Equal(t, "hi", s)

	f, err := decodeScalar[float64](Float(1.25))
	require.NoError(t, err)
	assert.Equal(t, 1.25, f)

	b, err := decodeScalar[bool](Int(1))
	require.NoError(t, err)
	assert.True(t, b)

	raw, err := decodeScalar[[]byte](Bytes([]byte("blob")))
	require.NoError(t, err)
	assert.Equal(t, []byte("blob"), raw)
}

type decodableID struct{ v int64 }

func (d *decodableID) Decode(v Value) error {
	d.v = v.Integer
	return nil
}

func TestDecodeScalarDelegatesToDecoder(t *testing.T) {
	out, err := decodeScalar[decodableID](Int(9))
	require.NoError(t, err)
	assert.Equal(t, int64(9), out.v)
}

func TestDecodeScalarRejectsUnsupportedType(t *testing.T) {
	_, err := decodeScalar[struct{ X int }](Int(1))
	require.Error(t, err)
}
