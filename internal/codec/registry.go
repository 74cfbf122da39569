package codec

import (
	"fmt"
	"sort"
)

// Arity selects how a body is laid out.
type Arity uint8

const (
	// Fixed bodies are exactly Layout followed by the checksum.
	Fixed Arity = iota + 1
	// Variable bodies are a run of Element values, then Trailer, then the
	// checksum.
	Variable
	// Opaque types are known but not modeled; their bodies pass through raw.
	Opaque
)

func (a Arity) String() string {
	switch a {
	case Fixed:
		return "fixed"
	case Variable:
		return "variable"
	case Opaque:
		return "opaque"
	default:
		return fmt.Sprintf("Arity(%d)", uint8(a))
	}
}

// ChecksumKind names the integrity rule that applies to a message type.
type ChecksumKind uint8

const (
	ChecksumNone ChecksumKind = iota
	// ChecksumGREIS is the 1-byte binary GREIS checksum.
	ChecksumGREIS
	// ChecksumASCIIHex is the GREIS checksum rendered as two hex digits.
	ChecksumASCIIHex
	// ChecksumCRC32 is the 4-byte little-endian Novatel CRC.
	ChecksumCRC32
)

// Descriptor is the static metadata needed to decode one message type.
type Descriptor struct {
	ID    ID
	Name  string
	Arity Arity

	// Layout is the field list of a Fixed body, excluding the checksum.
	Layout []FieldSpec

	// Element and Trailer describe a Variable body: a run of Element values
	// followed by Trailer, excluding the checksum.
	Element FieldSpec
	Trailer []FieldSpec

	ChecksumWidth int
	Checksum      ChecksumKind
}

// BodyLen is the exact body length of a Fixed descriptor including the
// checksum, or 0 for other arities.
func (d *Descriptor) BodyLen() int {
	if d.Arity != Fixed {
		return 0
	}
	return layoutWidth(d.Layout) + d.ChecksumWidth
}

// ChecksumFormat is the display verb of the trailing checksum.
func (d *Descriptor) ChecksumFormat() string {
	return fmt.Sprintf("%%0%dx", d.ChecksumWidth*2)
}

func (d *Descriptor) validate() error {
	if d.ChecksumWidth < 0 {
		return fmt.Errorf("%s: negative checksum width", d.ID)
	}
	switch d.Arity {
	case Fixed:
		if len(d.Layout) == 0 {
			return fmt.Errorf("%s: fixed descriptor without layout", d.ID)
		}
		for _, f := range d.Layout {
			if f.Width() <= 0 {
				return fmt.Errorf("%s: field %q has no width", d.ID, f.Name)
			}
		}
	case Variable:
		if d.Element.Width() <= 0 {
			return fmt.Errorf("%s: variable descriptor without element width", d.ID)
		}
		for _, f := range d.Trailer {
			if f.Width() <= 0 {
				return fmt.Errorf("%s: trailer field %q has no width", d.ID, f.Name)
			}
		}
	case Opaque:
	default:
		return fmt.Errorf("%s: unknown arity %d", d.ID, d.Arity)
	}
	return nil
}

// Registry maps identifiers to descriptors. It is immutable once built.
type Registry struct {
	name  string
	byID  map[ID]*Descriptor
	order []ID
}

// NewRegistry builds a registry from descriptor tables. Later entries with
// the same id replace earlier ones, so a table can alias one type to
// another and then specialize it.
func NewRegistry(name string, tables ...[]Descriptor) *Registry {
	r := &Registry{name: name, byID: map[ID]*Descriptor{}}
	for _, table := range tables {
		for i := range table {
			d := table[i]
			if _, dup := r.byID[d.ID]; !dup {
				r.order = append(r.order, d.ID)
			}
			r.byID[d.ID] = &d
		}
	}
	return r
}

// Name is the protocol family the registry describes.
func (r *Registry) Name() string { return r.name }

// Lookup returns the descriptor for id. An unknown id is a normal outcome.
func (r *Registry) Lookup(id ID) (*Descriptor, bool) {
	if r == nil {
		return nil, false
	}
	d, ok := r.byID[id]
	return d, ok
}

// Len is the number of registered types.
func (r *Registry) Len() int { return len(r.byID) }

// IDs returns the registered identifiers sorted for stable iteration.
func (r *Registry) IDs() []ID {
	out := append([]ID(nil), r.order...)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Num != out[j].Num {
			return out[i].Num < out[j].Num
		}
		return string(out[i].Tag[:]) < string(out[j].Tag[:])
	})
	return out
}

// Validate checks the structural invariants of every descriptor.
func (r *Registry) Validate() error {
	for _, id := range r.order {
		d := r.byID[id]
		if d.ID != id {
			return fmt.Errorf("%s: registered under %s", d.ID, id)
		}
		if err := d.validate(); err != nil {
			return fmt.Errorf("%s registry: %w", r.name, err)
		}
	}
	return nil
}
