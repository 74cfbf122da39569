package codec

import (
	"errors"

	"gnssbin/internal/checksum"
)

// Kind distinguishes a synchronized message from unrecognized bytes.
type Kind uint8

const (
	KindNoise Kind = iota
	KindValid
)

func (k Kind) String() string {
	if k == KindValid {
		return "valid"
	}
	return "noise"
}

// Frame is one unit cut from the byte stream. Its slices are owned by the
// receiver; the Synchronizer never touches them after emission.
type Frame struct {
	Kind Kind

	// Offset is the stream position of the first byte of the frame.
	Offset int64

	// Valid frames.
	ID     ID
	Header []byte // complete header, sync bytes included
	Body   []byte // body as read, checksum included; short at end of source
	// Declared is the body length the header announced, checksum included.
	Declared int
	// Info is the adapter's decoded header, e.g. novatel.LongHeader.
	Info any

	// Noise frames.
	Raw []byte
}

// Truncated reports whether the source ended before the declared body.
func (f *Frame) Truncated() bool {
	return f.Kind == KindValid && len(f.Body) < f.Declared
}

// Bytes returns the frame exactly as it appeared on the wire.
func (f *Frame) Bytes() []byte {
	if f.Kind == KindNoise {
		return f.Raw
	}
	out := make([]byte, 0, len(f.Header)+len(f.Body))
	out = append(out, f.Header...)
	return append(out, f.Body...)
}

// Len is the number of stream bytes the frame covers.
func (f *Frame) Len() int {
	if f.Kind == KindNoise {
		return len(f.Raw)
	}
	return len(f.Header) + len(f.Body)
}

// ErrHeaderInvalid is returned by Adapter.ParseHeader when the lookahead
// bytes are not a frame header. It drives resynchronization and is never
// surfaced to callers of the Synchronizer.
var ErrHeaderInvalid = errors.New("codec: invalid header")

// Header is what an adapter learns from a valid frame header.
type Header struct {
	ID ID
	// Len is the number of header bytes, sync included.
	Len int
	// BodyLen is the number of bytes that follow the header, trailing
	// checksum included.
	BodyLen int
	Info    any
}

// Adapter supplies the format-specific rules of one wire protocol.
type Adapter interface {
	// Name is a short protocol label for logs and metrics.
	Name() string

	// MinHeaderLen is the lookahead needed before ParseHeader is first called.
	MinHeaderLen() int

	// ParseHeader inspects the lookahead buffer. A need greater than
	// len(buf) asks the caller to extend the buffer to need bytes and call
	// again. An error (wrapping ErrHeaderInvalid) rejects the buffer start.
	ParseHeader(buf []byte) (h Header, need int, err error)

	// Lookup returns the descriptor for a message type.
	Lookup(id ID) (*Descriptor, bool)

	// ParseID converts a user-facing identifier into an ID.
	ParseID(s string) (ID, error)

	// VerifyChecksum checks a valid frame. d is nil for unknown types. ok is
	// false when there is nothing to check.
	VerifyChecksum(f *Frame, d *Descriptor) (res checksum.Result, ok bool)
}
