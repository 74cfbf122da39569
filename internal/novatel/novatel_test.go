package novatel

import (
	"bufio"
	"bytes"
	"encoding/hex"
	"os"
	"strings"
	"testing"
	"testing/iotest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gnssbin/internal/codec"
)

// loadCapture reads the hex dump of a RANGECMP log taken from a SPAN
// receiver.
func loadCapture(t *testing.T) []byte {
	t.Helper()
	f, err := os.Open("testdata/rangecmp.hex")
	require.NoError(t, err)
	defer f.Close()

	var sb strings.Builder
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		sb.WriteString(line)
	}
	require.NoError(t, sc.Err())
	b, err := hex.DecodeString(sb.String())
	require.NoError(t, err)
	return b
}

func readAll(t *testing.T, a *Adapter, in []byte) []codec.Frame {
	t.Helper()
	s := codec.NewSynchronizer(bytes.NewReader(in), a, codec.SyncOptions{})
	var out []codec.Frame
	for {
		f, ok := s.Next()
		if !ok {
			break
		}
		out = append(out, f)
	}
	require.NoError(t, s.Err())
	return out
}

func seq(n int, start byte) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = (start + byte(i)) % 0x40
	}
	return b
}

func mustLong(t *testing.T, id uint16, msec uint32, payload []byte) []byte {
	t.Helper()
	b, err := BuildLong(LongHeader{MsgID: id, Week: 1985, Msec: msec}, payload)
	require.NoError(t, err)
	return b
}

func mustShort(t *testing.T, id uint16, msec uint32, payload []byte) []byte {
	t.Helper()
	b, err := BuildShort(ShortHeader{MsgID: id, Week: 1985, Msec: msec}, payload)
	require.NoError(t, err)
	return b
}

func TestRegistry(t *testing.T) {
	require.NoError(t, Registry.Validate())
	assert.Equal(t, 20, Registry.Len())

	sizes := map[uint16]int{
		8: 108, 41: 102, 42: 72, 99: 44, 101: 44, 231: 40, 263: 40, 268: 40,
		320: 228, 325: 40, 423: 72, 506: 44, 507: 88, 508: 88, 616: 40,
		642: 48, 1068: 88, 1146: 24,
	}
	for id, want := range sizes {
		d, ok := Registry.Lookup(codec.NumID(id))
		require.True(t, ok, id)
		assert.Equal(t, want+CRCLen, d.BodyLen(), d.Name)
	}
	for _, id := range []uint16{140, 1270} {
		d, ok := Registry.Lookup(codec.NumID(id))
		require.True(t, ok)
		assert.Equal(t, codec.Opaque, d.Arity)
	}
	_, ok := Registry.Lookup(codec.NumID(43))
	assert.False(t, ok)
}

func TestRangeCmpCapture(t *testing.T) {
	raw := loadCapture(t)
	require.Len(t, raw, 636)

	in := append([]byte{0x00, 0xAA, 0x44}, raw...)
	in = append(in, 0xAA)
	frames := readAll(t, New(HeadersBoth), in)
	require.Len(t, frames, 3)
	assert.Equal(t, []byte{0x00, 0xAA, 0x44}, frames[0].Raw)
	assert.Equal(t, []byte{0xAA}, frames[2].Raw)

	f := frames[1]
	require.Equal(t, codec.KindValid, f.Kind)
	assert.Equal(t, int64(3), f.Offset)
	assert.Equal(t, codec.NumID(RangeCmpID), f.ID)
	assert.Equal(t, raw, f.Bytes())

	h, ok := f.Info.(LongHeader)
	require.True(t, ok)
	assert.Equal(t, LongHeader{
		HeaderLen: 28, MsgID: 140, MsgType: 0, PortAddr: 0x40, MsgLen: 604,
		Sequence: 0, IdleTime: 124, TimeStatus: 180, Week: 1985, Msec: 93069000,
		RxStatus: 0, Reserved: 38545, SWVersion: 13754,
	}, h)
	assert.Equal(t, time.Date(2018, time.January, 22, 1, 51, 9, 0, time.UTC), h.Time())

	a := New(HeadersBoth)
	d, ok := a.Lookup(f.ID)
	require.True(t, ok)
	res, ok := a.VerifyChecksum(&f, d)
	require.True(t, ok)
	assert.True(t, res.Matches)
	assert.Equal(t, uint32(0x081F7B0E), res.Computed)

	msg, err := codec.Decode(f, d)
	require.NoError(t, err)
	require.True(t, msg.IsOpaque())
	assert.Len(t, msg.Opaque, 608)

	obs, err := ParseRangeCmp(msg.Opaque)
	require.NoError(t, err)
	require.Len(t, obs, 25)

	assert.Equal(t, RangeObs{
		TrackingStatus: 0x08109C04,
		Doppler:        1831.16796875,
		Pseudorange:    21716243.9296875,
		ADR:            -5067732.2578125,
		PSRStdDev:      0.075,
		ADRStdDev:      16.0 / 512,
		PRN:            23,
		LockTime:       373.5625,
		CNo:            42,
		GLONASSFreq:    0,
	}, obs[0])

	assert.Equal(t, uint32(0x01303C0B), obs[1].TrackingStatus)
	assert.Equal(t, 1426.88671875, obs[1].Doppler)
	assert.Equal(t, 21716241.046875, obs[1].Pseudorange)
	assert.Equal(t, uint8(37), obs[1].CNo)

	last := obs[24]
	assert.Equal(t, uint32(0x42359E4B), last.TrackingStatus)
	assert.Equal(t, 35939146.7578125, last.Pseudorange)
	assert.Equal(t, uint8(195), last.PRN)
	assert.Equal(t, 344.34375, last.LockTime)
	assert.Equal(t, uint8(47), last.CNo)
}

func TestRangeCmpCaptureOneByteReads(t *testing.T) {
	raw := loadCapture(t)
	s := codec.NewSynchronizer(iotest.OneByteReader(bytes.NewReader(raw)), New(HeadersLong), codec.SyncOptions{})
	f, ok := s.Next()
	require.True(t, ok)
	assert.Equal(t, raw, f.Bytes())
	_, ok = s.Next()
	assert.False(t, ok)
}

func TestRangeCmpCorruptCRC(t *testing.T) {
	raw := loadCapture(t)
	raw[100] ^= 0x10
	frames := readAll(t, New(HeadersBoth), raw)
	require.Len(t, frames, 1)
	res, ok := New(HeadersBoth).VerifyChecksum(&frames[0], nil)
	require.True(t, ok)
	assert.False(t, res.Matches)
	assert.Equal(t, uint32(0x081F7B0E), res.Declared)
}

func TestParseRangeCmpRejects(t *testing.T) {
	_, err := ParseRangeCmp([]byte{1, 0, 0})
	assert.Error(t, err)

	body := make([]byte, 4+24+3+CRCLen)
	_, err = ParseRangeCmp(body)
	assert.Error(t, err)

	body = make([]byte, 4+24+CRCLen)
	body[0] = 2
	_, err = ParseRangeCmp(body)
	assert.Error(t, err)

	body[0] = 0
	obs, err := ParseRangeCmp(body)
	require.NoError(t, err)
	assert.Empty(t, obs)
}

func TestParseHeaderLong(t *testing.T) {
	a := New(HeadersBoth)
	wire := mustLong(t, 42, 5000, make([]byte, 72))

	_, need, err := a.ParseHeader(wire[:4])
	require.NoError(t, err)
	assert.Equal(t, LongHeaderLen, need)

	h, need, err := a.ParseHeader(wire[:LongHeaderLen])
	require.NoError(t, err)
	assert.Equal(t, LongHeaderLen, need)
	assert.Equal(t, codec.NumID(42), h.ID)
	assert.Equal(t, LongHeaderLen, h.Len)
	assert.Equal(t, 72+CRCLen, h.BodyLen)

	for _, hl := range []byte{0, 1, 3} {
		bad := append([]byte(nil), wire[:LongHeaderLen]...)
		bad[3] = hl
		_, _, err := a.ParseHeader(bad)
		assert.ErrorIs(t, err, codec.ErrHeaderInvalid, "hlen=%d", hl)
	}

	// A length byte that passes the first check but cannot hold the layout.
	bad := append([]byte(nil), wire[:LongHeaderLen]...)
	bad[3] = 10
	_, need, err = a.ParseHeader(bad[:4])
	require.NoError(t, err)
	assert.Equal(t, 10, need)
	_, _, err = a.ParseHeader(bad[:10])
	assert.ErrorIs(t, err, codec.ErrHeaderInvalid)
}

func TestParseHeaderExtendedLong(t *testing.T) {
	h := LongHeader{HeaderLen: 32, MsgID: 263, Week: 1985, Msec: 7, MsgLen: 40}
	wire := h.AppendTo(nil)
	wire = append(wire, 0xEE, 0xEE, 0xEE, 0xEE)
	wire = append(wire, make([]byte, 40)...)
	wire = appendCRC(wire)

	frames := readAll(t, New(HeadersBoth), wire)
	require.Len(t, frames, 1)
	f := frames[0]
	assert.Len(t, f.Header, 32)
	assert.Len(t, f.Body, 44)

	res, ok := New(HeadersBoth).VerifyChecksum(&f, nil)
	require.True(t, ok)
	assert.True(t, res.Matches)

	d, _ := Registry.Lookup(f.ID)
	_, err := codec.Decode(f, d)
	require.NoError(t, err)
}

func TestParseHeaderShort(t *testing.T) {
	a := New(HeadersBoth)
	wire := mustShort(t, 508, 250, make([]byte, 88))

	_, need, err := a.ParseHeader(wire[:4])
	require.NoError(t, err)
	assert.Equal(t, ShortHeaderLen, need)

	h, _, err := a.ParseHeader(wire[:ShortHeaderLen])
	require.NoError(t, err)
	assert.Equal(t, codec.NumID(508), h.ID)
	assert.Equal(t, 88+CRCLen, h.BodyLen)
	assert.Equal(t, ShortHeader{MsgLen: 88, MsgID: 508, Week: 1985, Msec: 250}, h.Info)
}

func TestHeaderModes(t *testing.T) {
	long := mustLong(t, 263, 1, seq(40, 1))
	short := mustShort(t, 325, 2, seq(40, 2))
	in := append(append([]byte(nil), long...), short...)

	kinds := func(mode HeaderMode) []codec.Kind {
		var out []codec.Kind
		for _, f := range readAll(t, New(mode), in) {
			out = append(out, f.Kind)
		}
		return out
	}
	assert.Equal(t, []codec.Kind{codec.KindValid, codec.KindValid}, kinds(HeadersBoth))
	assert.Equal(t, []codec.Kind{codec.KindValid, codec.KindNoise}, kinds(HeadersLong))
	assert.Equal(t, []codec.Kind{codec.KindNoise, codec.KindValid}, kinds(HeadersShort))

	for s, want := range map[string]HeaderMode{"": HeadersBoth, "both": HeadersBoth, "Long": HeadersLong, "short": HeadersShort} {
		got, err := ParseHeaderMode(s)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseHeaderMode("medium")
	assert.Error(t, err)
}

func TestParseID(t *testing.T) {
	a := New(HeadersBoth)
	for in, want := range map[string]uint16{"42": 42, "507": 507, "bestpos": 42, "INSPVAS": 508} {
		id, err := a.ParseID(in)
		require.NoError(t, err, in)
		assert.Equal(t, codec.NumID(want), id)
	}
	for _, bad := range []string{"", "-1", "70000", "NOPE"} {
		_, err := a.ParseID(bad)
		assert.Error(t, err, bad)
	}
}

func sampleValue(fs codec.FieldSpec, i int) codec.Value {
	switch fs.Type {
	case codec.Uint8:
		return codec.UintValue(fs.Type, uint64(i))
	case codec.Uint16:
		return codec.UintValue(fs.Type, uint64(1000+i))
	case codec.Uint32:
		return codec.UintValue(fs.Type, uint64(0x80000000+i))
	case codec.Int8, codec.Int16, codec.Int32:
		return codec.IntValue(fs.Type, int64(-100*i))
	case codec.Float32:
		return codec.FloatValue(fs.Type, float64(float32(i)/8))
	case codec.Float64:
		return codec.FloatValue(fs.Type, 51.0+float64(i)*0.001)
	default:
		return codec.BytesValue(bytes.Repeat([]byte{byte('a' + i)}, fs.Size))
	}
}

func TestFixedRoundTrip(t *testing.T) {
	a := New(HeadersBoth)
	for _, id := range Registry.IDs() {
		d, _ := Registry.Lookup(id)
		if d.Arity != codec.Fixed {
			continue
		}
		t.Run(d.Name, func(t *testing.T) {
			in := codec.Message{ID: id, Name: d.Name}
			for i, fs := range d.Layout {
				in.Fields = append(in.Fields, codec.Field{Name: fs.Name, Value: sampleValue(fs, i)})
			}

			headers := []any{
				LongHeader{Week: 1985, Msec: 93069000, RxStatus: 0x00040000},
				ShortHeader{Week: 1985, Msec: 93069000},
			}
			for _, h := range headers {
				wire, err := a.Encode(h, &in)
				if _, short := h.(ShortHeader); short && d.BodyLen()-CRCLen > 255 {
					require.Error(t, err)
					continue
				}
				require.NoError(t, err)

				frames := readAll(t, a, wire)
				require.Len(t, frames, 1)
				res, ok := a.VerifyChecksum(&frames[0], d)
				require.True(t, ok)
				require.True(t, res.Matches)

				out, err := codec.Decode(frames[0], d)
				require.NoError(t, err)
				want := in
				want.Checksum = res.Declared
				assert.True(t, want.Equal(&out), "%T: got %+v", h, out)
			}
		})
	}
}

func TestUnknownMessagePassesThrough(t *testing.T) {
	a := New(HeadersBoth)
	wire := mustLong(t, 9999, 0, seq(12, 0))
	frames := readAll(t, a, wire)
	require.Len(t, frames, 1)
	_, known := a.Lookup(frames[0].ID)
	assert.False(t, known)
	res, ok := a.VerifyChecksum(&frames[0], nil)
	require.True(t, ok)
	assert.True(t, res.Matches)
}

func TestTruncatedBody(t *testing.T) {
	wire := mustLong(t, 1270, 0, seq(46, 1))
	frames := readAll(t, New(HeadersBoth), wire[:LongHeaderLen+30])
	require.Len(t, frames, 1)
	f := frames[0]
	assert.Equal(t, 50, f.Declared)
	assert.Len(t, f.Body, 30)

	d := &codec.Descriptor{ID: f.ID, Arity: codec.Fixed, Layout: []codec.FieldSpec{codec.Raw("x", 46)}, ChecksumWidth: CRCLen}
	_, err := codec.Decode(f, d)
	require.ErrorIs(t, err, codec.ErrTruncatedBody)

	_, ok := New(HeadersBoth).VerifyChecksum(&f, nil)
	assert.False(t, ok)
}

func epochStream(t *testing.T) [][]byte {
	return [][]byte{
		mustLong(t, 263, 1000, seq(40, 1)),
		mustShort(t, 325, 1010, seq(40, 2)),
		mustLong(t, 42, 1020, seq(72, 3)),
		mustShort(t, 507, 1030, seq(88, 4)),
		mustLong(t, 1270, 1040, seq(16, 5)),
	}
}

func TestBoundedResync(t *testing.T) {
	msgs := epochStream(t)
	// sync bytes of every header, plus the length byte of the long header
	cases := []struct {
		victim    int
		positions []int
	}{
		{2, []int{0, 1, 2, 3}},
		{3, []int{0, 1, 2}},
	}
	for _, tc := range cases {
		for _, pos := range tc.positions {
			var in []byte
			for i, m := range msgs {
				m = append([]byte(nil), m...)
				if i == tc.victim {
					m[pos] = 0x00
				}
				in = append(in, m...)
			}

			frames := readAll(t, New(HeadersBoth), in)
			require.Len(t, frames, len(msgs), "victim=%d pos=%d", tc.victim, pos)
			for i, f := range frames {
				if i == tc.victim {
					require.Equal(t, codec.KindNoise, f.Kind)
					assert.Len(t, f.Raw, len(msgs[i]))
					continue
				}
				require.Equal(t, codec.KindValid, f.Kind, "victim=%d pos=%d frame=%d", tc.victim, pos, i)
				assert.Equal(t, msgs[i], f.Bytes())
			}
		}
	}
}

func TestReceiverStatus(t *testing.T) {
	s := ReceiverStatus(0x00040001 | 1<<31)
	assert.True(t, s.Has(0))
	assert.True(t, s.Has(18))
	assert.False(t, s.Has(1))
	assert.False(t, s.Has(40))

	flags := s.Flags()
	require.Len(t, flags, 3)
	assert.Equal(t, "Error flag", flags[0].Name)
	assert.Equal(t, "Almanac flag/UTC known", flags[1].Name)
	assert.Equal(t, "Auxiliary 1 status event flag", flags[2].Name)
	assert.Equal(t, "Error flag=Error; Almanac flag/UTC known=Invalid; Auxiliary 1 status event flag=Event", s.Describe())
	assert.Equal(t, "80040001", s.String())
	assert.Equal(t, "ok", ReceiverStatus(0).Describe())

	for i, f := range StatusFlags {
		assert.Equal(t, uint(i), f.Bit)
	}
}

func TestGPSTime(t *testing.T) {
	assert.Equal(t, time.Date(1980, time.January, 6, 0, 0, 0, 0, time.UTC), GPSTime(0, 0))
	assert.Equal(t, time.Date(1980, time.January, 13, 0, 0, 1, 500e6, time.UTC), GPSTime(1, 1500))
}

func TestBuildRejectsOversizedShort(t *testing.T) {
	_, err := BuildShort(ShortHeader{MsgID: 1}, make([]byte, 256))
	assert.Error(t, err)
	_, err = New(HeadersBoth).Encode(LongHeader{}, &codec.Message{ID: codec.NumID(9999)})
	assert.Error(t, err)
	_, err = New(HeadersBoth).Encode(struct{}{}, &codec.Message{ID: codec.NumID(1270)})
	assert.Error(t, err)
}
