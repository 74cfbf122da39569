package greis

import "gnssbin/internal/codec"

// fixed returns a fixed-layout descriptor with the 1-byte binary checksum.
func fixed(id, name string, layout ...codec.FieldSpec) codec.Descriptor {
	return codec.Descriptor{
		ID:            codec.TagID(id),
		Name:          name,
		Arity:         codec.Fixed,
		Layout:        layout,
		ChecksumWidth: 1,
		Checksum:      codec.ChecksumGREIS,
	}
}

// perSat returns one variable descriptor per id, all sharing elem.
func perSat(ids []string, elem codec.FieldSpec) []codec.Descriptor {
	out := make([]codec.Descriptor, 0, len(ids))
	for _, id := range ids {
		out = append(out, codec.Descriptor{
			ID:            codec.TagID(id),
			Name:          id,
			Arity:         codec.Variable,
			Element:       elem,
			ChecksumWidth: 1,
			Checksum:      codec.ChecksumGREIS,
		})
	}
	return out
}

var fixedMessages = []codec.Descriptor{
	fixed("~~", "RT", codec.U4("tod")),
	fixed("RT", "RT", codec.U4("tod")),
	fixed("GT", "GT", codec.U4("tow"), codec.U2("wn")),
	fixed("ST", "ST", codec.U4("time"), codec.U1("solType")),
	fixed("PG", "PG", codec.F8("lat"), codec.F8("lon"), codec.F8("alt"), codec.F4("pSigma"), codec.U1("solType")),
	fixed("VG", "VG", codec.F4("lat"), codec.F4("lon"), codec.F4("alt"), codec.F4("vSigma"), codec.U1("solType")),
	fixed("SG", "SG", codec.F4("hpos"), codec.F4("vpos"), codec.F4("hvel"), codec.F4("vvel"), codec.U1("solType")),
	fixed("PV", "PV",
		codec.F8("x"), codec.F8("y"), codec.F8("z"), codec.F4("pSigma"),
		codec.F4("vx"), codec.F4("vy"), codec.F4("vz"), codec.F4("vSigma"), codec.U1("solType")),
	fixed("TO", "TO", codec.F8("val"), codec.F8("sval")),
	fixed("DO", "DO", codec.F4("val"), codec.F4("sval")),
	fixed("RD", "RD", codec.U2("year"), codec.U1("month"), codec.U1("day"), codec.U1("base")),
	fixed("DP", "DP", codec.F4("hdop"), codec.F4("vdop"), codec.F4("tdop"), codec.U1("solType")),
	fixed("AR", "AR",
		codec.U4("time"), codec.F4("pitch"), codec.F4("roll"), codec.F4("heading"),
		codec.F4("pitchRms"), codec.F4("rollRms"), codec.F4("headingRms"), codec.U1("flags")),
	fixed("mR", "mR",
		codec.F4("q00"), codec.F4("q01"), codec.F4("q02"),
		codec.F4("q10"), codec.F4("q11"), codec.F4("q12"),
		codec.F4("q20"), codec.F4("q21"), codec.F4("q22")),
	fixed("PS", "PS",
		codec.U1("solType"), codec.U1("gpsLocked"), codec.U1("gloLocked"), codec.U1("gpsAvail"),
		codec.U1("gloAvail"), codec.U1("gpsUsed"), codec.U1("gloUsed"), codec.U1("fixProg")),
	fixed("UO", "UO",
		codec.F8("a0"), codec.F4("a1"), codec.U4("tot"), codec.U2("wnt"), codec.I1("dtls"),
		codec.U1("dn"), codec.U2("wnlsf"), codec.I1("dtlsf")),
}

var variableMessages = concat(
	perSat([]string{"AN"}, codec.A1("name", "%s")),
	perSat([]string{"SI", "NN"}, codec.U1("v")),
	perSat([]string{"EL"}, codec.I1("v")),
	perSat([]string{"AZ"}, codec.U1("v")),
	perSat([]string{"TC"}, codec.U2("v")),
	perSat([]string{"ID"}, codec.F4("v", "%06e")),
	perSat([]string{"EC", "E1", "E2", "E3", "E5", "EI", "CE", "1E", "2E", "3E", "5E", "IE"}, codec.U1("v")),
	perSat([]string{"FC", "F1", "F2", "F3", "F5", "FI"}, codec.U2("v", "%04x")),
	perSat([]string{
		"cc", "c1", "c2", "c3", "c5", "ec", "e1", "e2", "e3", "e5",
		"qc", "q1", "q2", "q3", "q5", "1d", "2d", "3d", "5d",
		"1r", "2r", "3r", "5r",
	}, codec.I2("v")),
	perSat([]string{"CP", "1P", "2P", "3P", "5P"}, codec.F4("v", "%f")),
	perSat([]string{"R1", "R2", "R3", "R5", "PC", "P1", "P2", "P3", "P5"}, codec.F8("v", "%f")),
	perSat([]string{
		"rc", "r1", "r2", "r3", "r5", "DC", "D1", "D2", "D3", "D5",
		"cp", "1p", "2p", "3p", "5p",
	}, codec.I4("v")),
	perSat([]string{"pc", "p1", "p2", "p3", "p5"}, codec.U4("v")),
	[]codec.Descriptor{
		// Satellite navigation status: one byte per satellite, then the
		// solution type of the epoch.
		{
			ID:            codec.TagID("SS"),
			Name:          "SS",
			Arity:         codec.Variable,
			Element:       codec.U1("ns", "%02x"),
			Trailer:       []codec.FieldSpec{codec.U1("solType", "%02x")},
			ChecksumWidth: 1,
			Checksum:      codec.ChecksumGREIS,
		},
	},
)

// ASCII messages are recognized so their checksum can be verified, but
// their text is passed through.
var asciiMessages = []codec.Descriptor{
	{ID: codec.TagID("PM"), Name: "PM", Arity: codec.Opaque, ChecksumWidth: 2, Checksum: codec.ChecksumASCIIHex},
	{ID: codec.TagID("SY"), Name: "SY", Arity: codec.Opaque, ChecksumWidth: 2, Checksum: codec.ChecksumASCIIHex},
}

// Registry holds every GREIS message type the decoder understands.
var Registry = codec.NewRegistry("greis", fixedMessages, variableMessages, asciiMessages)

func concat(tables ...[]codec.Descriptor) []codec.Descriptor {
	var out []codec.Descriptor
	for _, t := range tables {
		out = append(out, t...)
	}
	return out
}
