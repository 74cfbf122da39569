package codec

import (
	"bytes"
	"fmt"
	"math"
)

// Value is one decoded field. It is a tagged union over the primitive types:
// integers are held in u or i, floats in f, byte strings in b.
type Value struct {
	Type PrimType
	u    uint64
	i    int64
	f    float64
	b    []byte
}

func UintValue(t PrimType, v uint64) Value  { return Value{Type: t, u: v} }
func IntValue(t PrimType, v int64) Value    { return Value{Type: t, i: v} }
func FloatValue(t PrimType, v float64) Value { return Value{Type: t, f: v} }
func BytesValue(v []byte) Value              { return Value{Type: Bytes, b: v} }
func CharValue(c byte) Value                 { return Value{Type: Char, u: uint64(c)} }

// Uint returns the value as an unsigned integer. Signed values are converted,
// floats truncated.
func (v Value) Uint() uint64 {
	switch v.Type {
	case Int8, Int16, Int32:
		return uint64(v.i)
	case Float32, Float64:
		return uint64(v.f)
	default:
		return v.u
	}
}

// Int returns the value as a signed integer.
func (v Value) Int() int64 {
	switch v.Type {
	case Int8, Int16, Int32:
		return v.i
	case Float32, Float64:
		return int64(v.f)
	default:
		return int64(v.u)
	}
}

// Float returns the value as a float64.
func (v Value) Float() float64 {
	switch v.Type {
	case Float32, Float64:
		return v.f
	case Int8, Int16, Int32:
		return float64(v.i)
	default:
		return float64(v.u)
	}
}

// Bytes returns the raw bytes of a Bytes value, or the single character of a
// Char value.
func (v Value) Bytes() []byte {
	switch v.Type {
	case Bytes:
		return v.b
	case Char:
		return []byte{byte(v.u)}
	default:
		return nil
	}
}

// Equal compares type and payload. NaN floats compare equal to themselves so
// decoded messages can be compared byte-for-byte.
func (v Value) Equal(o Value) bool {
	if v.Type != o.Type {
		return false
	}
	switch v.Type {
	case Float32, Float64:
		return math.Float64bits(v.f) == math.Float64bits(o.f) || (math.IsNaN(v.f) && math.IsNaN(o.f))
	case Int8, Int16, Int32:
		return v.i == o.i
	case Bytes:
		return bytes.Equal(v.b, o.b)
	default:
		return v.u == o.u
	}
}

// Format renders the value with a fmt verb.
func (v Value) Format(verb string) string {
	switch v.Type {
	case Float32, Float64:
		return fmt.Sprintf(verb, v.f)
	case Int8, Int16, Int32:
		return fmt.Sprintf(verb, v.i)
	case Bytes:
		return fmt.Sprintf(verb, v.b)
	case Char:
		return fmt.Sprintf(verb, string(rune(v.u)))
	default:
		return fmt.Sprintf(verb, v.u)
	}
}

func (v Value) String() string {
	return v.Format(FieldSpec{Type: v.Type}.DisplayFormat())
}

// Field is a named decoded value.
type Field struct {
	Name  string
	Value Value
}
