package musq

import "fmt"

// Decoder is implemented by Go types that know how to populate themselves
// from a single column Value. No code-generated implementation is
// provided, only the contract plus decoding for Go's built-in scalar
// types via decodeScalar.
type Decoder interface {
	Decode(v Value) error
}

// decodeScalar converts v into O for the built-in scalar types QueryScalar
// supports directly (int64 and its common aliases, float64, string, bool,
// []byte), or delegates to O's Decoder implementation otherwise.
func decodeScalar[O any](v Value) (O, error) {
	var out O
	switch any(out).(type) {
	case int64:
		out = any(v.Integer).(O)
	case int:
		out = any(int(v.Integer)).(O)
	case float64:
		out = any(v.Double).(O)
	case string:
		out = any(v.Text).(O)
	case bool:
		out = any(v.Integer != 0).(O)
	case []byte:
		out = any(v.Blob).(O)
	default:
		dec, ok := any(&out).(Decoder)
		if !ok {
			return out, fmt.Errorf("musq: %T does not implement Decoder and is not a built-in scalar type", out)
		}
		if err := dec.Decode(v); err != nil {
			return out, err
		}
	}
	return out, nil
}
