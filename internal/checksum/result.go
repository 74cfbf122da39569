// Package checksum implements the integrity codes used by the GREIS and
// Novatel OEM6 binary protocols.
//
// Both engines are pure: they never mutate their input and never fail. A
// mismatch is reported in a Result and the caller decides what to do with
// the message.
package checksum

import "fmt"

// Result is the outcome of checking one message.
type Result struct {
	Computed uint32
	Declared uint32
	Matches  bool
}

func newResult(computed, declared uint32) Result {
	return Result{Computed: computed, Declared: declared, Matches: computed == declared}
}

func (r Result) String() string {
	if r.Matches {
		return fmt.Sprintf("ok(%08x)", r.Computed)
	}
	return fmt.Sprintf("mismatch(computed=%08x declared=%08x)", r.Computed, r.Declared)
}
