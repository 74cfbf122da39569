package novatel

import (
	"encoding/binary"
	"fmt"
	"math"

	"gnssbin/internal/checksum"
	"gnssbin/internal/codec"
)

// BuildLong frames payload behind a long header and appends the CRC.
// HeaderLen and MsgLen are filled in.
func BuildLong(h LongHeader, payload []byte) ([]byte, error) {
	if len(payload) > math.MaxUint16 {
		return nil, fmt.Errorf("novatel: payload of %d bytes does not fit a long header", len(payload))
	}
	h.HeaderLen = LongHeaderLen
	h.MsgLen = uint16(len(payload))
	out := h.AppendTo(make([]byte, 0, LongHeaderLen+len(payload)+CRCLen))
	return appendCRC(append(out, payload...)), nil
}

// BuildShort frames payload behind a short header and appends the CRC.
func BuildShort(h ShortHeader, payload []byte) ([]byte, error) {
	if len(payload) > math.MaxUint8 {
		return nil, fmt.Errorf("novatel: payload of %d bytes does not fit a short header", len(payload))
	}
	h.MsgLen = uint8(len(payload))
	out := h.AppendTo(make([]byte, 0, ShortHeaderLen+len(payload)+CRCLen))
	return appendCRC(append(out, payload...)), nil
}

// Encode renders m behind a copy of h (a LongHeader or ShortHeader) whose
// message id is taken from m.
func (a *Adapter) Encode(h any, m *codec.Message) ([]byte, error) {
	d, ok := a.Lookup(m.ID)
	if !ok {
		return nil, fmt.Errorf("novatel: unknown message id %s", m.ID)
	}
	payload, err := codec.Encode(d, m)
	if err != nil {
		return nil, err
	}
	switch h := h.(type) {
	case LongHeader:
		h.MsgID = m.ID.Num
		return BuildLong(h, payload)
	case ShortHeader:
		h.MsgID = m.ID.Num
		return BuildShort(h, payload)
	default:
		return nil, fmt.Errorf("novatel: unsupported header %T", h)
	}
}

func appendCRC(frame []byte) []byte {
	return binary.LittleEndian.AppendUint32(frame, checksum.CRC32(frame))
}
