package musq

import "fmt"

// Encoder is implemented by Go types that know how to turn themselves into
// a bind-parameter Value. Built-in types (integers, float64, string,
// []byte, bool, nil) are handled directly by encodeValue without requiring
// this interface; Encoder exists for caller-defined types. There is no
// generated implementation, only the contract.
type Encoder interface {
	Encode() (Value, error)
}

// encodeValue converts an arbitrary Go value into a bind-parameter Value,
// for use by Query.Bind/QueryBuilder.PushBind, which accept `any` for
// ergonomics rather than requiring every caller to construct a Value by
// hand.
func encodeValue(v any) (Value, error) {
	switch t := v.(type) {
	case nil:
		return Null(""), nil
	case Value:
		return t, nil
	case int64:
		return Int(t), nil
	case int:
		return Int(int64(t)), nil
	case int32:
		return Int(int64(t)), nil
	case uint:
		return Int(int64(t)), nil
	case uint32:
		return Int(int64(t)), nil
	case float64:
		return Float(t), nil
	case float32:
		return Float(float64(t)), nil
	case string:
		return Str(t), nil
	case bool:
		return Bool(t), nil
	case []byte:
		return Bytes(t), nil
	case Encoder:
		return t.Encode()
	default:
		return Value{}, fmt.Errorf("musq: cannot encode value of type %T", v)
	}
}
