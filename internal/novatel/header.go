// Package novatel adapts the Novatel OEM6 binary log format to the generic
// codec.
//
// Every message starts with a three byte sync sequence. AA 44 12 introduces
// a long header that carries its own length, AA 44 13 a fixed 12 byte short
// header. The message data follows the header and is closed by a 4-byte
// little-endian CRC-32 over header and data.
package novatel

import (
	"encoding/binary"
	"errors"
	"fmt"
	"time"
)

const (
	// LongHeaderLen is the size of the long header layout, sync included.
	LongHeaderLen = 28
	// ShortHeaderLen is the size of a short header, sync included.
	ShortHeaderLen = 12
	// CRCLen is the size of the trailing CRC.
	CRCLen = 4

	// minHeaderLen is the smallest header length byte accepted before the
	// rest of the header is read.
	minHeaderLen = 4
)

var (
	LongSync  = [3]byte{0xAA, 0x44, 0x12}
	ShortSync = [3]byte{0xAA, 0x44, 0x13}
)

var errShortHeader = errors.New("novatel: header too short")

// LongHeader is the OEM6 binary message header.
type LongHeader struct {
	HeaderLen  uint8
	MsgID      uint16
	MsgType    uint8
	PortAddr   uint8
	MsgLen     uint16
	Sequence   uint16
	IdleTime   uint8
	TimeStatus uint8
	Week       uint16
	Msec       uint32
	RxStatus   ReceiverStatus
	Reserved   uint16
	SWVersion  uint16
}

// ParseLongHeader decodes a long header. b starts at the sync bytes and
// must hold at least LongHeaderLen bytes.
func ParseLongHeader(b []byte) (LongHeader, error) {
	if len(b) < LongHeaderLen {
		return LongHeader{}, errShortHeader
	}
	le := binary.LittleEndian
	return LongHeader{
		HeaderLen:  b[3],
		MsgID:      le.Uint16(b[4:]),
		MsgType:    b[6],
		PortAddr:   b[7],
		MsgLen:     le.Uint16(b[8:]),
		Sequence:   le.Uint16(b[10:]),
		IdleTime:   b[12],
		TimeStatus: b[13],
		Week:       le.Uint16(b[14:]),
		Msec:       le.Uint32(b[16:]),
		RxStatus:   ReceiverStatus(le.Uint32(b[20:])),
		Reserved:   le.Uint16(b[24:]),
		SWVersion:  le.Uint16(b[26:]),
	}, nil
}

// AppendTo writes the header, sync included. A zero HeaderLen is written as
// LongHeaderLen.
func (h LongHeader) AppendTo(out []byte) []byte {
	hl := h.HeaderLen
	if hl == 0 {
		hl = LongHeaderLen
	}
	le := binary.LittleEndian
	out = append(out, LongSync[:]...)
	out = append(out, hl)
	out = le.AppendUint16(out, h.MsgID)
	out = append(out, h.MsgType, h.PortAddr)
	out = le.AppendUint16(out, h.MsgLen)
	out = le.AppendUint16(out, h.Sequence)
	out = append(out, h.IdleTime, h.TimeStatus)
	out = le.AppendUint16(out, h.Week)
	out = le.AppendUint32(out, h.Msec)
	out = le.AppendUint32(out, uint32(h.RxStatus))
	out = le.AppendUint16(out, h.Reserved)
	return le.AppendUint16(out, h.SWVersion)
}

// Time is the GPS time the message was logged at.
func (h LongHeader) Time() time.Time { return GPSTime(h.Week, h.Msec) }

func (h LongHeader) String() string {
	return fmt.Sprintf("%d %d %02x %02x %d %d %d %02x %d %d %08x %04x %d",
		h.HeaderLen, h.MsgID, h.MsgType, h.PortAddr, h.MsgLen, h.Sequence,
		h.IdleTime, h.TimeStatus, h.Week, h.Msec, uint32(h.RxStatus), h.Reserved, h.SWVersion)
}

// ShortHeader is the compact header used by the "S" logs (e.g. INSPVAS).
type ShortHeader struct {
	MsgLen uint8
	MsgID  uint16
	Week   uint16
	Msec   uint32
}

func ParseShortHeader(b []byte) (ShortHeader, error) {
	if len(b) < ShortHeaderLen {
		return ShortHeader{}, errShortHeader
	}
	le := binary.LittleEndian
	return ShortHeader{
		MsgLen: b[3],
		MsgID:  le.Uint16(b[4:]),
		Week:   le.Uint16(b[6:]),
		Msec:   le.Uint32(b[8:]),
	}, nil
}

func (h ShortHeader) AppendTo(out []byte) []byte {
	le := binary.LittleEndian
	out = append(out, ShortSync[:]...)
	out = append(out, h.MsgLen)
	out = le.AppendUint16(out, h.MsgID)
	out = le.AppendUint16(out, h.Week)
	return le.AppendUint32(out, h.Msec)
}

func (h ShortHeader) Time() time.Time { return GPSTime(h.Week, h.Msec) }

func (h ShortHeader) String() string {
	return fmt.Sprintf("%d %d %d %d", h.MsgLen, h.MsgID, h.Week, h.Msec)
}
