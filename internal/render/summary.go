package render

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"gnssbin/internal/codec"
	"gnssbin/internal/stream"
)

// Count is a message total.
type Count struct {
	ID    codec.ID
	Count int
}

// Totals sorts per-id counts by count, largest first, then by id.
func Totals(byID map[codec.ID]int) []Count {
	out := make([]Count, 0, len(byID))
	for id, n := range byID {
		out = append(out, Count{ID: id, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return lessID(out[i].ID, out[j].ID)
	})
	return out
}

func lessID(a, b codec.ID) bool {
	if a.IsTag() != b.IsTag() {
		return b.IsTag()
	}
	if a.IsTag() {
		return string(a.Tag[:]) < string(b.Tag[:])
	}
	return a.Num < b.Num
}

// WriteSummary prints message totals followed by noise and error counts.
func WriteSummary(w io.Writer, st stream.Stats) error {
	var b strings.Builder
	b.WriteString("Message totals:\n")
	for _, c := range Totals(st.ByID) {
		fmt.Fprintf(&b, "%s: %d\n", c.ID, c.Count)
	}
	fmt.Fprintf(&b, "records: %d\n", st.Records)
	fmt.Fprintf(&b, "noise: %d frames, %d bytes\n", st.Sync.NoiseFrames, st.Sync.NoiseBytes)
	if st.Sync.SkippedLines > 0 {
		fmt.Fprintf(&b, "line endings skipped: %d\n", st.Sync.SkippedLines)
	}
	if st.Unknown > 0 {
		fmt.Fprintf(&b, "unknown: %d\n", st.Unknown)
	}
	if st.Filtered > 0 {
		fmt.Fprintf(&b, "filtered: %d\n", st.Filtered)
	}
	if st.Dropped > 0 {
		fmt.Fprintf(&b, "dropped: %d\n", st.Dropped)
	}

	kinds := make([]codec.ErrorKind, 0, len(st.Errors))
	for k := range st.Errors {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	for _, k := range kinds {
		fmt.Fprintf(&b, "error %s: %d\n", k, st.Errors[k])
	}

	_, err := io.WriteString(w, b.String())
	return err
}
