package codec

import (
	"fmt"
	"strconv"
)

// ID identifies a message type within one protocol family. GREIS messages
// use the two-character Tag, Novatel messages the numeric Num.
type ID struct {
	Tag [2]byte
	Num uint16
}

// TagID builds a GREIS identifier. Only the first two bytes of s are used.
func TagID(s string) ID {
	var id ID
	copy(id.Tag[:], s)
	return id
}

// NumID builds a Novatel identifier.
func NumID(n uint16) ID {
	return ID{Num: n}
}

// IsTag reports whether the identifier is a two-character tag.
func (id ID) IsTag() bool {
	return id.Tag != [2]byte{}
}

func (id ID) String() string {
	if id.IsTag() {
		return string(id.Tag[:])
	}
	return strconv.Itoa(int(id.Num))
}

// PrimType is the wire type of a single field.
type PrimType uint8

const (
	Uint8 PrimType = iota + 1
	Int8
	Uint16
	Int16
	Uint32
	Int32
	Float32
	Float64
	Bytes // fixed number of raw bytes, see FieldSpec.Size
	Char  // one ASCII character
)

var primNames = map[PrimType]string{
	Uint8:   "u1",
	Int8:    "i1",
	Uint16:  "u2",
	Int16:   "i2",
	Uint32:  "u4",
	Int32:   "i4",
	Float32: "f4",
	Float64: "f8",
	Bytes:   "a",
	Char:    "a1",
}

func (p PrimType) String() string {
	if s, ok := primNames[p]; ok {
		return s
	}
	return fmt.Sprintf("PrimType(%d)", uint8(p))
}

// Width is the encoded size of the type, 0 for Bytes (size is per field).
func (p PrimType) Width() int {
	switch p {
	case Uint8, Int8, Char:
		return 1
	case Uint16, Int16:
		return 2
	case Uint32, Int32, Float32:
		return 4
	case Float64:
		return 8
	default:
		return 0
	}
}

// FieldSpec describes one field of a message body.
type FieldSpec struct {
	Name string
	Type PrimType
	// Size is the byte count of a Bytes field and ignored otherwise.
	Size int
	// Format is a fmt verb used when rendering the value as text. Empty
	// selects the per-type default.
	Format string
}

// Width is the encoded size of the field in bytes.
func (f FieldSpec) Width() int {
	if f.Type == Bytes {
		return f.Size
	}
	return f.Type.Width()
}

// DisplayFormat returns the rendering verb for the field.
func (f FieldSpec) DisplayFormat() string {
	if f.Format != "" {
		return f.Format
	}
	switch f.Type {
	case Float32:
		return "%0.6e"
	case Float64:
		return "%0.15e"
	case Bytes, Char:
		return "%q"
	default:
		return "%d"
	}
}

// Field constructors keep the message tables readable. The optional format
// argument overrides the display default.

func U1(name string, format ...string) FieldSpec { return spec(name, Uint8, format) }
func I1(name string, format ...string) FieldSpec { return spec(name, Int8, format) }
func U2(name string, format ...string) FieldSpec { return spec(name, Uint16, format) }
func I2(name string, format ...string) FieldSpec { return spec(name, Int16, format) }
func U4(name string, format ...string) FieldSpec { return spec(name, Uint32, format) }
func I4(name string, format ...string) FieldSpec { return spec(name, Int32, format) }
func F4(name string, format ...string) FieldSpec { return spec(name, Float32, format) }
func F8(name string, format ...string) FieldSpec { return spec(name, Float64, format) }
func A1(name string, format ...string) FieldSpec { return spec(name, Char, format) }

// Raw is a fixed-size byte field.
func Raw(name string, size int, format ...string) FieldSpec {
	f := spec(name, Bytes, format)
	f.Size = size
	return f
}

func spec(name string, t PrimType, format []string) FieldSpec {
	f := FieldSpec{Name: name, Type: t}
	if len(format) > 0 {
		f.Format = format[0]
	}
	return f
}

func layoutWidth(fields []FieldSpec) int {
	n := 0
	for _, f := range fields {
		n += f.Width()
	}
	return n
}
