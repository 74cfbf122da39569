package greis

import (
	"fmt"

	"gnssbin/internal/checksum"
	"gnssbin/internal/codec"
)

// Build frames payload as a binary standard message, appending the
// checksum. It is used to produce fixtures and captures.
func Build(id string, payload []byte) ([]byte, error) {
	out, err := header(id, len(payload)+1)
	if err != nil {
		return nil, err
	}
	out = append(out, payload...)
	return append(out, checksum.GREIS(out)), nil
}

// BuildASCII frames text as an ASCII message ending in two hex checksum
// characters.
func BuildASCII(id string, text []byte) ([]byte, error) {
	out, err := header(id, len(text)+2)
	if err != nil {
		return nil, err
	}
	out = append(out, text...)
	return append(out, fmt.Sprintf("%02X", checksum.GREIS(out))...), nil
}

// Encode renders m as a complete standard message using its descriptor.
func (a *Adapter) Encode(m *codec.Message) ([]byte, error) {
	d, ok := a.Lookup(m.ID)
	if !ok {
		return nil, fmt.Errorf("greis: unknown message id %s", m.ID)
	}
	body, err := codec.Encode(d, m)
	if err != nil {
		return nil, err
	}
	if d.Checksum == codec.ChecksumASCIIHex {
		return BuildASCII(m.ID.String(), body)
	}
	return Build(m.ID.String(), body)
}

func header(id string, n int) ([]byte, error) {
	if _, err := (&Adapter{}).ParseID(id); err != nil {
		return nil, err
	}
	if n > MaxBodyLen {
		return nil, fmt.Errorf("greis: body of %d bytes exceeds %d", n, MaxBodyLen)
	}
	out := make([]byte, 0, HeaderLen+n)
	out = append(out, id...)
	return append(out, fmt.Sprintf("%03X", n)...), nil
}
