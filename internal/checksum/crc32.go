package checksum

import "encoding/binary"

// NovatelPolynomial is the reflected CRC-32 polynomial used by Novatel OEM
// receivers.
const NovatelPolynomial = 0xEDB88320

var crc32Table = func() [256]uint32 {
	var table [256]uint32
	for i := 0; i < 256; i++ {
		v := uint32(i)
		for bit := 0; bit < 8; bit++ {
			if v&1 != 0 {
				v = (v >> 1) ^ NovatelPolynomial
			} else {
				v >>= 1
			}
		}
		table[i] = v
	}
	return table
}()

// UpdateCRC32 continues a Novatel CRC over data.
func UpdateCRC32(crc uint32, data []byte) uint32 {
	for _, b := range data {
		crc = ((crc >> 8) & 0x00FFFFFF) ^ crc32Table[(crc^uint32(b))&0xFF]
	}
	return crc
}

// CRC32 computes the Novatel CRC-32 over the concatenation of parts. Unlike
// IEEE CRC-32 it starts from zero and applies no final inversion, so the CRC
// of an empty input is 0.
func CRC32(parts ...[]byte) uint32 {
	var crc uint32
	for _, p := range parts {
		crc = UpdateCRC32(crc, p)
	}
	return crc
}

// VerifyNovatel checks a Novatel message: header is the complete header
// including sync bytes, body ends with the little-endian CRC.
func VerifyNovatel(header, body []byte) (Result, bool) {
	if len(body) < 4 {
		return Result{}, false
	}
	n := len(body) - 4
	declared := binary.LittleEndian.Uint32(body[n:])
	return newResult(CRC32(header, body[:n]), declared), true
}

// CheckCRC32 compares the Novatel CRC of data against a declared value.
func CheckCRC32(data []byte, declared uint32) Result {
	return newResult(CRC32(data), declared)
}
