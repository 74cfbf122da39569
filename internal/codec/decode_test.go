package codec

import (
	"bytes"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	fixedDesc = Descriptor{
		ID:    TagID("Ta"),
		Name:  "sample",
		Arity: Fixed,
		Layout: []FieldSpec{
			U1("u1"), I1("i1"), U2("u2"), I2("i2"), U4("u4"), I4("i4"),
			F4("f4"), F8("f8"), Raw("id", 4), A1("c"),
		},
		ChecksumWidth: 1,
		Checksum:      ChecksumGREIS,
	}
	varDesc = Descriptor{
		ID:            TagID("Tv"),
		Arity:         Variable,
		Element:       I2("v"),
		ChecksumWidth: 1,
		Checksum:      ChecksumGREIS,
	}
	trailerDesc = Descriptor{
		ID:            TagID("Tt"),
		Arity:         Variable,
		Element:       U1("ns"),
		Trailer:       []FieldSpec{U1("solType")},
		ChecksumWidth: 1,
		Checksum:      ChecksumGREIS,
	}
	opaqueDesc = Descriptor{ID: TagID("To"), Arity: Opaque}
)

func validFrame(id ID, body []byte) Frame {
	return Frame{Kind: KindValid, ID: id, Header: []byte("SY??"), Body: body, Declared: len(body)}
}

func sampleMessage() Message {
	return Message{
		ID:   fixedDesc.ID,
		Name: "sample",
		Fields: []Field{
			{"u1", UintValue(Uint8, 200)},
			{"i1", IntValue(Int8, -5)},
			{"u2", UintValue(Uint16, 0xBEEF)},
			{"i2", IntValue(Int16, -1234)},
			{"u4", UintValue(Uint32, 0xDEADBEEF)},
			{"i4", IntValue(Int32, -123456789)},
			{"f4", FloatValue(Float32, float64(float32(1.5)))},
			{"f8", FloatValue(Float64, -71.123456789)},
			{"id", BytesValue([]byte("AB\x00C"))},
			{"c", CharValue('G')},
		},
		Checksum: 0x5A,
	}
}

func TestDecode_FixedLittleEndian(t *testing.T) {
	body := []byte{
		0xC8,
		0xFB,
		0xEF, 0xBE,
		0x2E, 0xFB,
		0xEF, 0xBE, 0xAD, 0xDE,
		0xEB, 0x32, 0xA4, 0xF8,
		0x00, 0x00, 0xC0, 0x3F,
	}
	f8 := math.Float64bits(-71.123456789)
	for i := 0; i < 8; i++ {
		body = append(body, byte(f8>>(8*i)))
	}
	body = append(body, 'A', 'B', 0x00, 'C', 'G', 0x5A)

	msg, err := Decode(validFrame(fixedDesc.ID, body), &fixedDesc)
	require.NoError(t, err)

	want := sampleMessage()
	assert.True(t, want.Equal(&msg), "got %+v", msg)

	v, ok := msg.Get("i4")
	require.True(t, ok)
	assert.Equal(t, int64(-123456789), v.Int())
	v, _ = msg.Get("u2")
	assert.Equal(t, uint64(0xBEEF), v.Uint())
	v, _ = msg.Get("f4")
	assert.Equal(t, 1.5, v.Float())
	v, _ = msg.Get("c")
	assert.Equal(t, []byte("G"), v.Bytes())
	_, ok = msg.Get("missing")
	assert.False(t, ok)
}

func TestDecode_RoundTripFixed(t *testing.T) {
	in := sampleMessage()
	body, err := Encode(&fixedDesc, &in)
	require.NoError(t, err)
	require.Len(t, body, fixedDesc.BodyLen()-1)
	body = AppendChecksum(body, 1, in.Checksum)

	out, err := Decode(validFrame(in.ID, body), &fixedDesc)
	require.NoError(t, err)
	assert.True(t, in.Equal(&out))
}

func TestDecode_LengthMismatch(t *testing.T) {
	for _, n := range []int{0, 1, fixedDesc.BodyLen() - 1, fixedDesc.BodyLen() + 1} {
		f := validFrame(fixedDesc.ID, make([]byte, n))
		_, err := Decode(f, &fixedDesc)
		require.ErrorIs(t, err, ErrLengthMismatch, "len=%d", n)

		var de *DecodeError
		require.True(t, errors.As(err, &de))
		assert.Equal(t, fixedDesc.BodyLen(), de.Expected)
		assert.Equal(t, n, de.Actual)
		assert.Equal(t, f.Body, de.Frame.Body)
	}
}

func TestDecode_Variable(t *testing.T) {
	body := []byte{0x01, 0x00, 0xFF, 0xFF, 0x00, 0x80, 0x33}
	msg, err := Decode(validFrame(varDesc.ID, body), &varDesc)
	require.NoError(t, err)
	require.Len(t, msg.Elements, 3)
	assert.Equal(t, int64(1), msg.Elements[0].Int())
	assert.Equal(t, int64(-1), msg.Elements[1].Int())
	assert.Equal(t, int64(math.MinInt16), msg.Elements[2].Int())
	assert.Equal(t, uint32(0x33), msg.Checksum)
}

func TestDecode_VariableEmpty(t *testing.T) {
	msg, err := Decode(validFrame(varDesc.ID, []byte{0x10}), &varDesc)
	require.NoError(t, err)
	assert.Empty(t, msg.Elements)
	assert.Equal(t, uint32(0x10), msg.Checksum)
}

func TestDecode_VariableTrailer(t *testing.T) {
	body := []byte{1, 2, 3, 4, 0x07, 0xCC}
	msg, err := Decode(validFrame(trailerDesc.ID, body), &trailerDesc)
	require.NoError(t, err)
	require.Len(t, msg.Elements, 4)
	assert.Equal(t, uint64(4), msg.Elements[3].Uint())
	v, ok := msg.Get("solType")
	require.True(t, ok)
	assert.Equal(t, uint64(7), v.Uint())
	assert.Equal(t, uint32(0xCC), msg.Checksum)

	in := msg
	enc, err := Encode(&trailerDesc, &in)
	require.NoError(t, err)
	assert.Equal(t, body[:5], enc)
}

func TestDecode_ElementAlignment(t *testing.T) {
	for _, n := range []int{0, 2, 4, 6} {
		_, err := Decode(validFrame(varDesc.ID, make([]byte, n)), &varDesc)
		require.ErrorIs(t, err, ErrElementAlignment, "len=%d", n)
		kind, ok := KindOf(err)
		require.True(t, ok)
		assert.Equal(t, ElementAlignment, kind)
	}
	_, err := Decode(validFrame(trailerDesc.ID, []byte{0x01}), &trailerDesc)
	require.ErrorIs(t, err, ErrElementAlignment)
}

func TestDecode_Opaque(t *testing.T) {
	body := []byte{9, 8, 7}
	msg, err := Decode(validFrame(opaqueDesc.ID, body), &opaqueDesc)
	require.NoError(t, err)
	assert.True(t, msg.IsOpaque())
	assert.Equal(t, body, msg.Opaque)
	assert.Empty(t, msg.Fields)

	msg, err = Decode(validFrame(opaqueDesc.ID, nil), &opaqueDesc)
	require.NoError(t, err)
	assert.True(t, msg.IsOpaque())
}

func TestDecode_Truncated(t *testing.T) {
	f := validFrame(fixedDesc.ID, bytes.Repeat([]byte{1}, 30))
	f.Declared = 50
	_, err := Decode(f, &fixedDesc)
	require.ErrorIs(t, err, ErrTruncatedBody)

	var de *DecodeError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, 50, de.Expected)
	assert.Equal(t, 30, de.Actual)
	assert.Equal(t, f.Body, de.Frame.Body)
	assert.Contains(t, de.Error(), "expected=50 actual=30")
}

func TestDecode_TruncatedOpaque(t *testing.T) {
	f := validFrame(opaqueDesc.ID, []byte{9, 8, 7})
	f.Declared = 10
	_, err := Decode(f, &opaqueDesc)
	require.ErrorIs(t, err, ErrTruncatedBody)

	var de *DecodeError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, 10, de.Expected)
	assert.Equal(t, 3, de.Actual)
}

func TestDecode_NoiseAndNilDescriptor(t *testing.T) {
	_, err := Decode(Frame{Kind: KindNoise, Raw: []byte{1}}, &fixedDesc)
	assert.ErrorIs(t, err, ErrNotMessage)

	_, err = Decode(validFrame(fixedDesc.ID, nil), nil)
	assert.Error(t, err)
}

func TestDecode_NeverPanicsOnArbitraryLengths(t *testing.T) {
	descs := []*Descriptor{&fixedDesc, &varDesc, &trailerDesc, &opaqueDesc}
	for _, d := range descs {
		for n := 0; n < 64; n++ {
			assert.NotPanics(t, func() {
				_, _ = Decode(validFrame(d.ID, bytes.Repeat([]byte{0xA5}, n)), d)
			})
		}
	}
}

func TestEncode_RejectsTypeAndSizeMismatch(t *testing.T) {
	m := sampleMessage()
	m.Fields[0].Value = IntValue(Int8, 1)
	_, err := Encode(&fixedDesc, &m)
	assert.Error(t, err)

	m = sampleMessage()
	m.Fields[8].Value = BytesValue([]byte("ABC"))
	_, err = Encode(&fixedDesc, &m)
	assert.Error(t, err)

	m = sampleMessage()
	m.Fields = m.Fields[:3]
	_, err = Encode(&fixedDesc, &m)
	assert.Error(t, err)
}

func TestRegistry(t *testing.T) {
	alias := fixedDesc
	alias.Name = "replaced"
	reg := NewRegistry("test", []Descriptor{fixedDesc, varDesc}, []Descriptor{alias, opaqueDesc})
	require.NoError(t, reg.Validate())
	assert.Equal(t, 3, reg.Len())

	d, ok := reg.Lookup(TagID("Ta"))
	require.True(t, ok)
	assert.Equal(t, "replaced", d.Name)

	_, ok = reg.Lookup(TagID("zz"))
	assert.False(t, ok)

	var nilReg *Registry
	_, ok = nilReg.Lookup(TagID("Ta"))
	assert.False(t, ok)

	assert.Equal(t, []ID{TagID("Ta"), TagID("To"), TagID("Tv")}, reg.IDs())
}

func TestRegistry_ValidateRejectsBrokenTables(t *testing.T) {
	bad := []Descriptor{
		{ID: TagID("a1"), Arity: Fixed},
		{ID: TagID("a2"), Arity: Variable},
		{ID: TagID("a3"), Arity: Fixed, Layout: []FieldSpec{Raw("x", 0)}},
		{ID: TagID("a4"), Arity: Arity(99)},
	}
	for _, d := range bad {
		err := NewRegistry("bad", []Descriptor{d}).Validate()
		assert.Error(t, err, d.ID.String())
	}
}

func TestIDString(t *testing.T) {
	assert.Equal(t, "PG", TagID("PG").String())
	assert.Equal(t, "507", NumID(507).String())
	assert.True(t, TagID("~~").IsTag())
	assert.False(t, NumID(42).IsTag())
}

func TestValueFormat(t *testing.T) {
	assert.Equal(t, "1.500000e+00", FloatValue(Float32, 1.5).String())
	assert.Equal(t, "-7", IntValue(Int8, -7).String())
	assert.Equal(t, "0a", UintValue(Uint8, 10).Format("%02x"))
	assert.Equal(t, `"G"`, CharValue('G').String())
	assert.Equal(t, "G", CharValue('G').Format("%s"))
}
