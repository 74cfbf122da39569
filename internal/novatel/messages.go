package novatel

import "gnssbin/internal/codec"

func fixed(id uint16, name string, layout ...codec.FieldSpec) codec.Descriptor {
	return codec.Descriptor{
		ID:            codec.NumID(id),
		Name:          name,
		Arity:         codec.Fixed,
		Layout:        layout,
		ChecksumWidth: CRCLen,
		Checksum:      codec.ChecksumCRC32,
	}
}

func opaque(id uint16, name string) codec.Descriptor {
	return codec.Descriptor{
		ID:            codec.NumID(id),
		Name:          name,
		Arity:         codec.Opaque,
		ChecksumWidth: CRCLen,
		Checksum:      codec.ChecksumCRC32,
	}
}

func f8s(names ...string) []codec.FieldSpec {
	out := make([]codec.FieldSpec, len(names))
	for i, n := range names {
		out[i] = codec.F8(n)
	}
	return out
}

func join(parts ...[]codec.FieldSpec) []codec.FieldSpec {
	var out []codec.FieldSpec
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

func one(f ...codec.FieldSpec) []codec.FieldSpec { return f }

var bestPos = join(
	one(codec.U4("sol_status"), codec.U4("pos_type"),
		codec.F8("lat", "%0.9f"), codec.F8("lon", "%0.9f"), codec.F8("hgt", "%0.4f"),
		codec.F4("undulation", "%0.4e"), codec.U4("datum_id"),
		codec.F4("lat_sigma", "%0.5f"), codec.F4("lon_sigma", "%0.5f"), codec.F4("hgt_sigma", "%0.3f"),
		codec.Raw("stn_id", 4), codec.F4("diff_age", "%f"), codec.F4("sol_age", "%f"),
		codec.U1("num_obs"), codec.U1("num_gpsl1"), codec.U1("num_l1"), codec.U1("num_l2")),
	one(codec.U1("resvd1"), codec.U1("resvd2"), codec.U1("resvd3"), codec.U1("resvd4")),
)

var bestVel = one(
	codec.U4("sol_status"), codec.U4("vel_type"), codec.F4("latency"), codec.F4("age"),
	codec.F8("hor_spd"), codec.F8("trk_gnd"), codec.F8("vert_spd"), codec.F4("resvd1"),
)

var rawIMU = one(
	codec.U4("week"), codec.F8("seconds", "%0.4f"), codec.U4("imu_status", "%08x"),
	codec.I4("z_acc"), codec.I4("y_acc"), codec.I4("x_acc"),
	codec.I4("z_gyro"), codec.I4("y_gyro"), codec.I4("x_gyro"),
)

var markTime = join(
	one(codec.U4("week"), codec.F8("seconds")),
	f8s("offset", "offset_std", "utc_offset"),
	one(codec.U4("status", "%08x")),
)

var insPVA = join(
	one(codec.U4("week"), codec.F8("seconds", "%0.4f"),
		codec.F8("lat", "%0.9f"), codec.F8("lon", "%0.9f"), codec.F8("hgt", "%0.4f"),
		codec.F8("vn", "%0.3f"), codec.F8("ve", "%0.3f"), codec.F8("vu", "%0.3f"),
		codec.F8("roll", "%0.3f"), codec.F8("pitch", "%0.3f"), codec.F8("azimuth", "%0.3f"),
		codec.U4("status", "%08x")),
)

var insCov = join(
	one(codec.U4("week"), codec.F8("seconds")),
	f8s("pxx", "pxy", "pxz", "pyx", "pyy", "pyz", "pzx", "pzy", "pzz"),
	f8s("axx", "axy", "axz", "ayx", "ayy", "ayz", "azx", "azy", "azz"),
	f8s("vxx", "vxy", "vxz", "vyx", "vyy", "vyz", "vzx", "vzy", "vzz"),
)

var messages = []codec.Descriptor{
	fixed(8, "IONUTC", join(
		f8s("a0", "a1", "a2", "a3", "b0", "b1", "b2", "b3"),
		one(codec.U4("utc_wn"), codec.U4("tot")),
		f8s("A0", "A1"),
		one(codec.U4("wn_lsf"), codec.U4("dn"), codec.I4("deltat_ls"), codec.I4("deltat_lsf"), codec.U4("resvd1")),
	)...),
	fixed(41, "RAWEPHEM",
		codec.U4("prn"), codec.U4("ref_week"), codec.U4("ref_secs"),
		codec.Raw("subframe1", 30, "%x"), codec.Raw("subframe2", 30, "%x"), codec.Raw("subframe3", 30, "%x")),
	fixed(42, "BESTPOS", bestPos...),
	fixed(99, "BESTVEL", bestVel...),
	fixed(101, "TIME",
		codec.U4("clock_status"), codec.F8("offset"), codec.F8("offset_std"), codec.F8("utc_offset"),
		codec.U4("utc_year"), codec.U1("utc_month"), codec.U1("utc_day"), codec.U1("utc_hour"),
		codec.U1("utc_min"), codec.U4("utc_ms"), codec.U4("utc_status")),
	opaque(140, "RANGECMP"),
	fixed(231, "MARKTIME", markTime...),
	fixed(263, "INSATT",
		codec.U4("week"), codec.F8("seconds", "%0.4f"),
		codec.F8("roll", "%f"), codec.F8("pitch", "%f"), codec.F8("azimuth", "%f"),
		codec.U4("status", "%08x")),
	fixed(268, "RAWIMU", rawIMU...),
	fixed(320, "INSCOV", insCov...),
	fixed(325, "RAWIMUS", rawIMU...),
	fixed(423, "BESTGPSPOS", bestPos...),
	fixed(506, "BESTGPSVEL", bestVel...),
	fixed(507, "INSPVA", insPVA...),
	fixed(508, "INSPVAS", insPVA...),
	fixed(616, "MARK2TIME", markTime...),
	fixed(642, "VEHICLEBODYROTATION", f8s("x_angle", "y_angle", "z_angle", "x_unc", "y_unc", "z_unc")...),
	fixed(1068, "MARK2PVA", insPVA...),
	fixed(1146, "LOGFILESTATUS",
		codec.U4("file_state"), codec.Raw("file_name", 12), codec.U4("file_size"), codec.U4("media")),
	opaque(1270, "IMUTOANTOFFSETS"),
}

// Registry holds every Novatel log the decoder understands.
var Registry = codec.NewRegistry("novatel", messages)
