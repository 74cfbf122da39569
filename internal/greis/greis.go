// Package greis adapts the Javad GREIS standard message stream to the
// generic codec.
//
// A standard message is
//
//	id[2]     two characters in '0'..'~'
//	length[3] body length as three uppercase hex digits, 000..FFF
//	body      length bytes, the last one being the checksum
//
// Messages rendered in ASCII ([PM], [SY]) end with the checksum as two hex
// characters instead of one binary byte.
package greis

import (
	"fmt"

	"gnssbin/internal/checksum"
	"gnssbin/internal/codec"
)

const (
	// HeaderLen is the size of the id and length fields.
	HeaderLen = 5
	// MaxBodyLen is the largest body a three digit hex length can declare.
	MaxBodyLen = 0xFFF
)

// Header is the decoded id and length of a standard message.
type Header struct {
	ID  codec.ID
	Len int
}

// Adapter implements codec.Adapter for GREIS.
type Adapter struct {
	reg *codec.Registry
}

// New returns an adapter backed by the built-in message tables.
func New() *Adapter {
	return &Adapter{reg: Registry}
}

// NewWithRegistry returns an adapter that looks message types up in reg.
func NewWithRegistry(reg *codec.Registry) *Adapter {
	return &Adapter{reg: reg}
}

func (a *Adapter) Name() string      { return "greis" }
func (a *Adapter) MinHeaderLen() int { return HeaderLen }

func (a *Adapter) Registry() *codec.Registry { return a.reg }

func (a *Adapter) Lookup(id codec.ID) (*codec.Descriptor, bool) {
	return a.reg.Lookup(id)
}

// ParseHeader accepts a header whose id characters are in '0'..'~' and whose
// length is three uppercase hex digits.
func (a *Adapter) ParseHeader(buf []byte) (codec.Header, int, error) {
	if len(buf) < HeaderLen {
		return codec.Header{}, HeaderLen, nil
	}
	if !isIDChar(buf[0]) || !isIDChar(buf[1]) {
		return codec.Header{}, 0, codec.ErrHeaderInvalid
	}
	n := 0
	for _, c := range buf[2:HeaderLen] {
		v, ok := hexValue(c)
		if !ok {
			return codec.Header{}, 0, codec.ErrHeaderInvalid
		}
		n = n<<4 | v
	}
	id := codec.TagID(string(buf[:2]))
	return codec.Header{
		ID:      id,
		Len:     HeaderLen,
		BodyLen: n,
		Info:    Header{ID: id, Len: n},
	}, HeaderLen, nil
}

// ParseID accepts a two character message id such as "PG" or "~~".
func (a *Adapter) ParseID(s string) (codec.ID, error) {
	if len(s) != 2 || !isIDChar(s[0]) || !isIDChar(s[1]) {
		return codec.ID{}, fmt.Errorf("greis: invalid message id %q", s)
	}
	return codec.TagID(s), nil
}

// VerifyChecksum checks the trailing checksum of f. Unknown ids are checked
// as binary messages since every standard binary message ends in one.
func (a *Adapter) VerifyChecksum(f *codec.Frame, d *codec.Descriptor) (checksum.Result, bool) {
	if f.Kind != codec.KindValid || f.Truncated() {
		return checksum.Result{}, false
	}
	kind := codec.ChecksumGREIS
	if d != nil {
		kind = d.Checksum
	}
	switch kind {
	case codec.ChecksumGREIS:
		return checksum.VerifyGREIS(f.Header, f.Body)
	case codec.ChecksumASCIIHex:
		return checksum.VerifyGREISASCII(f.Header, f.Body)
	default:
		return checksum.Result{}, false
	}
}

func isIDChar(c byte) bool {
	return c >= '0' && c <= '~'
}

func hexValue(c byte) (int, bool) {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0'), true
	case c >= 'A' && c <= 'F':
		return int(c-'A') + 10, true
	default:
		return 0, false
	}
}
