package novatel

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"gnssbin/internal/checksum"
	"gnssbin/internal/codec"
)

// HeaderMode selects which header variants the adapter synchronizes on.
type HeaderMode uint8

const (
	HeadersBoth HeaderMode = iota
	HeadersLong
	HeadersShort
)

// ParseHeaderMode accepts "both", "long" or "short". Empty means both.
func ParseHeaderMode(s string) (HeaderMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "both":
		return HeadersBoth, nil
	case "long":
		return HeadersLong, nil
	case "short":
		return HeadersShort, nil
	default:
		return 0, fmt.Errorf("novatel: unknown header mode %q", s)
	}
}

func (m HeaderMode) String() string {
	switch m {
	case HeadersLong:
		return "long"
	case HeadersShort:
		return "short"
	default:
		return "both"
	}
}

// Adapter implements codec.Adapter for Novatel OEM6 binary logs.
type Adapter struct {
	reg  *codec.Registry
	mode HeaderMode
}

func New(mode HeaderMode) *Adapter {
	return &Adapter{reg: Registry, mode: mode}
}

func (a *Adapter) Name() string              { return "novatel" }
func (a *Adapter) MinHeaderLen() int         { return minHeaderLen }
func (a *Adapter) Mode() HeaderMode          { return a.mode }
func (a *Adapter) Registry() *codec.Registry { return a.reg }

func (a *Adapter) Lookup(id codec.ID) (*codec.Descriptor, bool) {
	return a.reg.Lookup(id)
}

// ParseHeader recognizes the long and short sync sequences. A long header
// is read up to its declared length before its fields are decoded.
func (a *Adapter) ParseHeader(buf []byte) (codec.Header, int, error) {
	if len(buf) < minHeaderLen {
		return codec.Header{}, minHeaderLen, nil
	}
	switch {
	case a.mode != HeadersShort && bytes.Equal(buf[:3], LongSync[:]):
		hl := int(buf[3])
		if hl < minHeaderLen {
			return codec.Header{}, 0, codec.ErrHeaderInvalid
		}
		if len(buf) < hl {
			return codec.Header{}, hl, nil
		}
		h, err := ParseLongHeader(buf[:hl])
		if err != nil {
			return codec.Header{}, 0, fmt.Errorf("%w: %v", codec.ErrHeaderInvalid, err)
		}
		return codec.Header{
			ID:      codec.NumID(h.MsgID),
			Len:     hl,
			BodyLen: int(h.MsgLen) + CRCLen,
			Info:    h,
		}, hl, nil

	case a.mode != HeadersLong && bytes.Equal(buf[:3], ShortSync[:]):
		if len(buf) < ShortHeaderLen {
			return codec.Header{}, ShortHeaderLen, nil
		}
		h, err := ParseShortHeader(buf)
		if err != nil {
			return codec.Header{}, 0, fmt.Errorf("%w: %v", codec.ErrHeaderInvalid, err)
		}
		return codec.Header{
			ID:      codec.NumID(h.MsgID),
			Len:     ShortHeaderLen,
			BodyLen: int(h.MsgLen) + CRCLen,
			Info:    h,
		}, ShortHeaderLen, nil
	}
	return codec.Header{}, 0, codec.ErrHeaderInvalid
}

// ParseID accepts a numeric message id or a registered log name such as
// "BESTPOS".
func (a *Adapter) ParseID(s string) (codec.ID, error) {
	if n, err := strconv.ParseUint(s, 10, 16); err == nil {
		return codec.NumID(uint16(n)), nil
	}
	for _, id := range a.reg.IDs() {
		d, _ := a.reg.Lookup(id)
		if strings.EqualFold(d.Name, s) {
			return id, nil
		}
	}
	return codec.ID{}, fmt.Errorf("novatel: invalid message id %q", s)
}

// VerifyChecksum checks the CRC that closes every message, known or not.
func (a *Adapter) VerifyChecksum(f *codec.Frame, _ *codec.Descriptor) (checksum.Result, bool) {
	if f.Kind != codec.KindValid || f.Truncated() {
		return checksum.Result{}, false
	}
	return checksum.VerifyNovatel(f.Header, f.Body)
}
