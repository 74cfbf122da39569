package codec

import (
	"fmt"

	"gnssbin/internal/checksum"
)

// testAdapter frames messages as "SY" + id byte + body length byte. An id of
// 'X' announces an extended header: one more byte whose value is added to
// the body length, read on demand.
type testAdapter struct {
	reg *Registry
}

func (testAdapter) Name() string      { return "test" }
func (testAdapter) MinHeaderLen() int { return 4 }

func (testAdapter) ParseHeader(buf []byte) (Header, int, error) {
	if buf[0] != 'S' || buf[1] != 'Y' || buf[2] < '0' || buf[2] > 'z' {
		return Header{}, 0, ErrHeaderInvalid
	}
	if buf[2] == 'X' {
		if len(buf) < 5 {
			return Header{}, 5, nil
		}
		return Header{ID: TagID("X" + string(buf[2])), Len: 5, BodyLen: int(buf[3]) + int(buf[4])}, 0, nil
	}
	return Header{ID: TagID("T" + string(buf[2])), Len: 4, BodyLen: int(buf[3])}, 0, nil
}

func (a testAdapter) Lookup(id ID) (*Descriptor, bool) { return a.reg.Lookup(id) }

func (testAdapter) ParseID(s string) (ID, error) {
	if len(s) != 2 {
		return ID{}, fmt.Errorf("bad id %q", s)
	}
	return TagID(s), nil
}

func (testAdapter) VerifyChecksum(f *Frame, d *Descriptor) (checksum.Result, bool) {
	return checksum.VerifyGREIS(f.Header, f.Body)
}

func testFrame(id byte, body ...byte) []byte {
	return append([]byte{'S', 'Y', id, byte(len(body))}, body...)
}

func join(parts ...[]byte) []byte {
	var out []byte
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}
