package novatel

import (
	"fmt"
	"strings"
)

// ReceiverStatus is the 32-bit receiver status word of a long header.
type ReceiverStatus uint32

// StatusFlag documents one bit of the receiver status word.
type StatusFlag struct {
	Bit   uint
	Name  string
	Clear string
	Set   string
}

// StatusFlags lists the receiver status bits of SPAN on OEM6.
var StatusFlags = [32]StatusFlag{
	{0, "Error flag", "No error", "Error"},
	{1, "Temperature status", "Within specifications", "Warning"},
	{2, "Voltage supply status", "OK", "Warning"},
	{3, "Antenna power status", "Powered", "Not powered"},
	{4, "LNA Failure", "0", "1"},
	{5, "Antenna open flag", "OK", "Open"},
	{6, "Antenna shorted flag", "OK", "Shorted"},
	{7, "CPU overload flag", "No overload", "Overload"},
	{8, "COM1 buffer overrun flag", "No overrun", "Overrun"},
	{9, "COM2 buffer overrun flag", "No overrun", "Overrun"},
	{10, "COM3 buffer overrun flag", "No overrun", "Overrun"},
	{11, "Link overrun flag", "No overrun", "Overrun"},
	{12, "Reserved", "0", "1"},
	{13, "Aux transmit overrun flag", "No overrun", "Overrun"},
	{14, "AGC out of range", "0", "1"},
	{15, "Reserved", "0", "1"},
	{16, "INS Reset", "No Reset", "INS filter has reset"},
	{17, "Reserved", "0", "1"},
	{18, "Almanac flag/UTC known", "Valid", "Invalid"},
	{19, "Position solution flag", "Valid", "Invalid"},
	{20, "Position fixed flag", "Not fixed", "Fixed"},
	{21, "Clock steering status", "Enabled", "Disabled"},
	{22, "Clock model flag", "Valid", "Invalid"},
	{23, "External oscillator locked flag", "Unlocked", "Locked"},
	{24, "Software resource", "OK", "Warning"},
	{25, "Reserved", "0", "1"},
	{26, "Bit 26", "0", "1"},
	{27, "Bit 27", "0", "1"},
	{28, "Bit 28", "0", "1"},
	{29, "Auxiliary 3 status event flag", "No event", "Event"},
	{30, "Auxiliary 2 status event flag", "No event", "Event"},
	{31, "Auxiliary 1 status event flag", "No event", "Event"},
}

// Has reports whether bit is set.
func (s ReceiverStatus) Has(bit uint) bool {
	return bit < 32 && s&(1<<bit) != 0
}

// Flags returns the documentation of every set bit in ascending order.
func (s ReceiverStatus) Flags() []StatusFlag {
	var out []StatusFlag
	for _, f := range StatusFlags {
		if s.Has(f.Bit) {
			out = append(out, f)
		}
	}
	return out
}

// Describe renders the set bits as "name=meaning" pairs.
func (s ReceiverStatus) Describe() string {
	flags := s.Flags()
	if len(flags) == 0 {
		return "ok"
	}
	parts := make([]string, len(flags))
	for i, f := range flags {
		parts[i] = fmt.Sprintf("%s=%s", f.Name, f.Set)
	}
	return strings.Join(parts, "; ")
}

func (s ReceiverStatus) String() string {
	return fmt.Sprintf("%08x", uint32(s))
}
