package novatel

import (
	"encoding/binary"
	"fmt"
)

// RangeCmpID is the message id of RANGECMP.
const RangeCmpID = 140

const rangeCmpRecordLen = 24

// psrStdDev maps the 4-bit pseudorange standard deviation code to meters.
var psrStdDev = [16]float64{
	0.050, 0.075, 0.113, 0.169, 0.253, 0.380, 0.570, 0.854,
	1.281, 2.375, 4.750, 9.500, 19.000, 38.000, 76.000, 152.000,
}

// RangeObs is one compressed range record of RANGECMP.
type RangeObs struct {
	TrackingStatus uint32
	Doppler        float64 // Hz
	Pseudorange    float64 // m
	ADR            float64 // carrier phase, cycles
	PSRStdDev      float64 // m
	ADRStdDev      float64 // cycles
	PRN            uint8
	LockTime       float64 // s
	CNo            uint8   // dB-Hz
	GLONASSFreq    uint8
}

// ParseRangeCmp decodes the observations of a RANGECMP body. body is the
// message data as framed, trailing CRC included.
func ParseRangeCmp(body []byte) ([]RangeObs, error) {
	if len(body) < 4+CRCLen {
		return nil, fmt.Errorf("novatel: rangecmp body of %d bytes", len(body))
	}
	data := body[4 : len(body)-CRCLen]
	if len(data)%rangeCmpRecordLen != 0 {
		return nil, fmt.Errorf("novatel: rangecmp data of %d bytes is not a whole number of records", len(data))
	}
	held := len(data) / rangeCmpRecordLen
	n := int(binary.LittleEndian.Uint32(body))
	if n > held {
		return nil, fmt.Errorf("novatel: rangecmp declares %d observations, body holds %d", n, held)
	}

	out := make([]RangeObs, n)
	for i := range out {
		out[i] = parseRangeRecord(data[i*rangeCmpRecordLen:])
	}
	return out, nil
}

func parseRangeRecord(r []byte) RangeObs {
	le := binary.LittleEndian
	w1 := le.Uint32(r[4:])
	w2 := le.Uint32(r[8:])

	// Doppler: bits 32-59, signed, 1/256 Hz.
	dop := int32(w1<<4) >> 4
	// Pseudorange: bits 60-95, 1/128 m.
	psr := uint64(w1>>28) | uint64(w2)<<4

	return RangeObs{
		TrackingStatus: le.Uint32(r),
		Doppler:        float64(dop) / 256,
		Pseudorange:    float64(psr) / 128,
		ADR:            float64(int32(le.Uint32(r[12:]))) / 256,
		PSRStdDev:      psrStdDev[r[16]&0x0F],
		ADRStdDev:      float64(r[16]>>4+1) / 512,
		PRN:            r[17],
		LockTime:       float64(le.Uint32(r[18:])&0x1FFFFF) / 32,
		CNo:            uint8(le.Uint16(r[20:])>>5&0x1F) + 20,
		GLONASSFreq:    r[21] >> 2,
	}
}
