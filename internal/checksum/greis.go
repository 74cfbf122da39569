package checksum

import "strconv"

// rotl2 maps every byte to its value rotated left by two bits.
var rotl2 = func() [256]byte {
	var table [256]byte
	for c := 0; c < 256; c++ {
		table[c] = byte(c<<2) | byte(c>>6)
	}
	return table
}()

// GREIS computes the 8-bit rotate/xor checksum used by Javad GREIS standard
// messages. It is not a CRC: each step rotates the running value left by two
// bits and xors in the next byte, and the result is rotated once more.
func GREIS(data ...[]byte) byte {
	var res byte
	for _, part := range data {
		for _, b := range part {
			res = rotl2[res] ^ b
		}
	}
	return rotl2[res]
}

// VerifyGREIS checks a binary GREIS message. head is the 5-byte id+length
// header, body the full body whose last byte is the declared checksum.
func VerifyGREIS(head, body []byte) (Result, bool) {
	if len(body) < 1 {
		return Result{}, false
	}
	n := len(body) - 1
	return newResult(uint32(GREIS(head, body[:n])), uint32(body[n])), true
}

// VerifyGREISASCII checks an ASCII GREIS message (e.g. [PM], [SY]) whose body
// ends with the checksum rendered as two uppercase hex digits. The range that
// is summed excludes those two characters.
func VerifyGREISASCII(head, body []byte) (Result, bool) {
	if len(body) < 2 {
		return Result{}, false
	}
	n := len(body) - 2
	computed := uint32(GREIS(head, body[:n]))
	declared, err := strconv.ParseUint(string(body[n:]), 16, 8)
	if err != nil {
		// Not hex at all: report as a mismatch against an impossible value.
		return Result{Computed: computed, Declared: 0xFFFFFFFF}, true
	}
	return newResult(computed, uint32(declared)), true
}

// CheckGREIS compares the checksum of data against a declared value.
func CheckGREIS(data []byte, declared byte) Result {
	return newResult(uint32(GREIS(data)), uint32(declared))
}
