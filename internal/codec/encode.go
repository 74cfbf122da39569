package codec

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Encode writes the body of m per d, without the trailing checksum. It is
// the inverse of Decode and exists to build fixtures and captures; receivers
// are never sent encoded messages.
func Encode(d *Descriptor, m *Message) ([]byte, error) {
	if d == nil {
		return nil, errNilDescriptor
	}
	switch d.Arity {
	case Opaque:
		return append([]byte(nil), m.Opaque...), nil

	case Fixed:
		if len(m.Fields) != len(d.Layout) {
			return nil, fmt.Errorf("codec: %s wants %d fields, got %d", d.ID, len(d.Layout), len(m.Fields))
		}
		out := make([]byte, 0, d.BodyLen())
		return appendFields(out, d.Layout, m.Fields)

	case Variable:
		out := make([]byte, 0, len(m.Elements)*d.Element.Width()+layoutWidth(d.Trailer))
		var err error
		for i, v := range m.Elements {
			if out, err = appendValue(out, d.Element, v); err != nil {
				return nil, fmt.Errorf("element %d: %w", i, err)
			}
		}
		if len(m.Trailer) != len(d.Trailer) {
			return nil, fmt.Errorf("codec: %s wants %d trailer fields, got %d", d.ID, len(d.Trailer), len(m.Trailer))
		}
		return appendFields(out, d.Trailer, m.Trailer)

	default:
		return nil, fmt.Errorf("codec: %s has unknown arity %d", d.ID, d.Arity)
	}
}

func appendFields(out []byte, layout []FieldSpec, fields []Field) ([]byte, error) {
	var err error
	for i, fs := range layout {
		if out, err = appendValue(out, fs, fields[i].Value); err != nil {
			return nil, fmt.Errorf("field %q: %w", fs.Name, err)
		}
	}
	return out, nil
}

func appendValue(out []byte, fs FieldSpec, v Value) ([]byte, error) {
	if v.Type != fs.Type {
		return nil, fmt.Errorf("codec: type %s, want %s", v.Type, fs.Type)
	}
	switch fs.Type {
	case Uint8, Char:
		return append(out, byte(v.Uint())), nil
	case Int8:
		return append(out, byte(int8(v.Int()))), nil
	case Uint16:
		return binary.LittleEndian.AppendUint16(out, uint16(v.Uint())), nil
	case Int16:
		return binary.LittleEndian.AppendUint16(out, uint16(int16(v.Int()))), nil
	case Uint32:
		return binary.LittleEndian.AppendUint32(out, uint32(v.Uint())), nil
	case Int32:
		return binary.LittleEndian.AppendUint32(out, uint32(int32(v.Int()))), nil
	case Float32:
		return binary.LittleEndian.AppendUint32(out, math.Float32bits(float32(v.Float()))), nil
	case Float64:
		return binary.LittleEndian.AppendUint64(out, math.Float64bits(v.Float())), nil
	case Bytes:
		b := v.Bytes()
		if len(b) != fs.Size {
			return nil, fmt.Errorf("codec: %d bytes, want %d", len(b), fs.Size)
		}
		return append(out, b...), nil
	default:
		return nil, fmt.Errorf("codec: cannot encode %s", fs.Type)
	}
}

// AppendChecksum appends a checksum of the given width in little-endian
// order.
func AppendChecksum(out []byte, width int, sum uint32) []byte {
	switch width {
	case 0:
		return out
	case 1:
		return append(out, byte(sum))
	case 2:
		return binary.LittleEndian.AppendUint16(out, uint16(sum))
	default:
		return binary.LittleEndian.AppendUint32(out, sum)
	}
}
