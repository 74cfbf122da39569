package codec

import (
	"encoding/binary"
	"errors"
	"math"
)

var errNilDescriptor = errors.New("codec: nil descriptor")

// Message is a decoded frame body.
type Message struct {
	ID   ID
	Name string

	// Fields holds a Fixed body in layout order.
	Fields []Field

	// Elements and Trailer hold a Variable body.
	Elements []Value
	Trailer  []Field

	// Checksum is the declared checksum that ended the body.
	Checksum uint32

	// Opaque is the raw body of a type that is known but not modeled.
	Opaque []byte
}

// IsOpaque reports whether the body was passed through undecoded.
func (m *Message) IsOpaque() bool {
	return m.Opaque != nil
}

// Get returns the named field from Fields or Trailer.
func (m *Message) Get(name string) (Value, bool) {
	for _, f := range m.Fields {
		if f.Name == name {
			return f.Value, true
		}
	}
	for _, f := range m.Trailer {
		if f.Name == name {
			return f.Value, true
		}
	}
	return Value{}, false
}

// Equal compares two messages value by value.
func (m *Message) Equal(o *Message) bool {
	if m.ID != o.ID || m.Checksum != o.Checksum || len(m.Fields) != len(o.Fields) ||
		len(m.Elements) != len(o.Elements) || len(m.Trailer) != len(o.Trailer) ||
		string(m.Opaque) != string(o.Opaque) || (m.Opaque == nil) != (o.Opaque == nil) {
		return false
	}
	for i := range m.Fields {
		if m.Fields[i].Name != o.Fields[i].Name || !m.Fields[i].Value.Equal(o.Fields[i].Value) {
			return false
		}
	}
	for i := range m.Elements {
		if !m.Elements[i].Equal(o.Elements[i]) {
			return false
		}
	}
	for i := range m.Trailer {
		if m.Trailer[i].Name != o.Trailer[i].Name || !m.Trailer[i].Value.Equal(o.Trailer[i].Value) {
			return false
		}
	}
	return true
}

// Decode interprets a valid frame with its descriptor. Every malformation is
// returned as a *DecodeError carrying the frame; Decode never panics on
// input data.
func Decode(f Frame, d *Descriptor) (Message, error) {
	if f.Kind != KindValid {
		return Message{}, ErrNotMessage
	}
	if d == nil {
		return Message{}, errNilDescriptor
	}

	if f.Truncated() {
		return Message{}, TruncatedError(f)
	}

	msg := Message{ID: f.ID, Name: d.Name}
	if d.Arity == Opaque {
		msg.Opaque = f.Body
		if msg.Opaque == nil {
			msg.Opaque = []byte{}
		}
		return msg, nil
	}

	body := f.Body

	switch d.Arity {
	case Fixed:
		want := d.BodyLen()
		if len(body) != want {
			return Message{}, &DecodeError{Kind: LengthMismatch, ID: f.ID, Expected: want, Actual: len(body), Frame: f}
		}
		msg.Fields, _ = readFields(body, d.Layout)

	case Variable:
		ew := d.Element.Width()
		tw := layoutWidth(d.Trailer)
		payload := len(body) - d.ChecksumWidth - tw
		if payload < 0 || payload%ew != 0 {
			return Message{}, &DecodeError{Kind: ElementAlignment, ID: f.ID, Expected: ew, Actual: len(body), Frame: f}
		}
		count := payload / ew
		msg.Elements = make([]Value, count)
		for i := 0; i < count; i++ {
			msg.Elements[i] = readValue(body[i*ew:], d.Element)
		}
		msg.Trailer, _ = readFields(body[payload:], d.Trailer)

	default:
		return Message{}, errNilDescriptor
	}

	msg.Checksum = readChecksum(body[len(body)-d.ChecksumWidth:])
	return msg, nil
}

func readFields(b []byte, layout []FieldSpec) ([]Field, int) {
	out := make([]Field, len(layout))
	off := 0
	for i, fs := range layout {
		out[i] = Field{Name: fs.Name, Value: readValue(b[off:], fs)}
		off += fs.Width()
	}
	return out, off
}

// readValue extracts one little-endian value. The caller guarantees that b
// holds at least fs.Width() bytes.
func readValue(b []byte, fs FieldSpec) Value {
	switch fs.Type {
	case Uint8:
		return UintValue(Uint8, uint64(b[0]))
	case Int8:
		return IntValue(Int8, int64(int8(b[0])))
	case Char:
		return CharValue(b[0])
	case Uint16:
		return UintValue(Uint16, uint64(binary.LittleEndian.Uint16(b)))
	case Int16:
		return IntValue(Int16, int64(int16(binary.LittleEndian.Uint16(b))))
	case Uint32:
		return UintValue(Uint32, uint64(binary.LittleEndian.Uint32(b)))
	case Int32:
		return IntValue(Int32, int64(int32(binary.LittleEndian.Uint32(b))))
	case Float32:
		return FloatValue(Float32, float64(math.Float32frombits(binary.LittleEndian.Uint32(b))))
	case Float64:
		return FloatValue(Float64, math.Float64frombits(binary.LittleEndian.Uint64(b)))
	case Bytes:
		return BytesValue(append([]byte(nil), b[:fs.Size]...))
	default:
		return Value{}
	}
}

func readChecksum(b []byte) uint32 {
	switch len(b) {
	case 0:
		return 0
	case 1:
		return uint32(b[0])
	case 2:
		return uint32(binary.LittleEndian.Uint16(b))
	default:
		return binary.LittleEndian.Uint32(b)
	}
}
