// Package render turns decoded records into text: one line per record for
// the console, per-type breakout files and message totals.
package render

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"gnssbin/internal/codec"
	"gnssbin/internal/novatel"
	"gnssbin/internal/stream"
)

// Line renders rec as "ID [header] field ... checksum". Noise renders as
// "?? <n> bytes <hex>", unknown types as "ID [header] ? <n> bytes" and a
// decode failure is appended after " ! ".
func Line(rec stream.Record) string {
	f := rec.Frame
	if f.Kind == codec.KindNoise {
		return fmt.Sprintf("?? %d bytes %x", len(f.Raw), f.Raw)
	}

	var b strings.Builder
	b.WriteString(f.ID.String())
	if h := Header(rec); h != "" {
		b.WriteByte(' ')
		b.WriteString(h)
	}

	switch {
	case rec.Message != nil:
		if xds := Fields(rec); xds != "" {
			b.WriteByte(' ')
			b.WriteString(xds)
		}
	case !rec.Known:
		fmt.Fprintf(&b, " ? %d bytes", len(f.Body))
	}

	if rec.Err != nil {
		b.WriteString(" ! ")
		b.WriteString(rec.Err.Error())
	}
	return b.String()
}

// Header renders the Novatel frame header in wire order, or "" for
// protocols whose header is just the id and length.
func Header(rec stream.Record) string {
	switch h := rec.Frame.Info.(type) {
	case novatel.LongHeader:
		return h.String()
	case novatel.ShortHeader:
		return h.String()
	}
	return ""
}

// Fields renders the decoded body of rec followed by its checksum in hex.
// It returns "" when rec holds no message.
func Fields(rec stream.Record) string {
	m, d := rec.Message, rec.Descriptor
	if m == nil || d == nil {
		return ""
	}

	// Opaque bodies still hold their checksum.
	if m.IsOpaque() {
		if d.Checksum == codec.ChecksumASCIIHex {
			return strconv.Quote(string(m.Opaque))
		}
		return fmt.Sprintf("%x", m.Opaque)
	}

	parts := make([]string, 0, len(m.Fields)+len(m.Elements)+len(m.Trailer)+1)
	switch d.Arity {
	case codec.Variable:
		verb := d.Element.DisplayFormat()
		for _, v := range m.Elements {
			parts = append(parts, v.Format(verb))
		}
		parts = appendFields(parts, m.Trailer, d.Trailer)
	default:
		parts = appendFields(parts, m.Fields, d.Layout)
	}
	if d.ChecksumWidth > 0 {
		parts = append(parts, fmt.Sprintf(d.ChecksumFormat(), m.Checksum))
	}
	return strings.Join(parts, " ")
}

func appendFields(parts []string, fields []codec.Field, layout []codec.FieldSpec) []string {
	for i, f := range fields {
		s := f.Value.String()
		if i < len(layout) {
			s = f.Value.Format(layout[i].DisplayFormat())
		}
		parts = append(parts, s)
	}
	return parts
}

// Detail returns extra lines for rec: GPS time and receiver status for
// Novatel headers and one line per observation for RANGECMP.
func Detail(rec stream.Record) []string {
	var out []string
	switch h := rec.Frame.Info.(type) {
	case novatel.LongHeader:
		out = append(out, "time "+h.Time().Format(time.RFC3339Nano))
		if h.RxStatus != 0 {
			out = append(out, "rxstatus "+h.RxStatus.String()+" "+h.RxStatus.Describe())
		}
	case novatel.ShortHeader:
		out = append(out, "time "+h.Time().Format(time.RFC3339Nano))
	default:
		return nil
	}

	if rec.Frame.ID == codec.NumID(novatel.RangeCmpID) && rec.Err == nil && !rec.Frame.Truncated() {
		obs, err := novatel.ParseRangeCmp(rec.Frame.Body)
		if err != nil {
			return append(out, "rangecmp ! "+err.Error())
		}
		for i, o := range obs {
			out = append(out, RangeObs(i, o))
		}
	}
	return out
}

// RangeObs renders one compressed range record.
func RangeObs(i int, o novatel.RangeObs) string {
	return fmt.Sprintf("obs %2d prn=%d cts=%08x dfreq=%0.7f psr=%0.3f adr=%0.8f std_psr=%0.3f std_adr=%f locktime=%f cno=%d glofreq=%d",
		i, o.PRN, o.TrackingStatus, o.Doppler, o.Pseudorange, o.ADR, o.PSRStdDev, o.ADRStdDev, o.LockTime, o.CNo, o.GLONASSFreq)
}
