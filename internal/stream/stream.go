// Package stream turns a byte source into decoded records: it runs the
// synchronizer, looks each frame up in the protocol registry, verifies its
// checksum and decodes its body.
package stream

import (
	"context"
	"io"

	"github.com/rs/zerolog"

	"gnssbin/internal/checksum"
	"gnssbin/internal/codec"
	"gnssbin/internal/diag"
	"gnssbin/internal/metrics"
)

// Record is one unit of decoder output, in source order.
type Record struct {
	// Seq increases by one per record, noise included.
	Seq   uint64
	Frame codec.Frame

	// Known is false for noise and for ids absent from the registry; the
	// raw frame is still delivered.
	Known      bool
	Descriptor *codec.Descriptor
	Message    *codec.Message

	// Checksum is nil when the frame was not checked.
	Checksum *checksum.Result

	// Err is a *codec.DecodeError for recoverable failures.
	Err error
}

// Options configures a Decoder.
type Options struct {
	// Sync tunes framing. Its Logger is replaced by Logger.
	Sync codec.SyncOptions

	VerifyChecksum bool
	// DropBadChecksum skips records whose checksum does not match.
	DropBadChecksum bool

	// IDs restricts output to these message types. Noise is always
	// delivered. Empty means every type.
	IDs []codec.ID

	Logger   zerolog.Logger
	Metrics  *metrics.Metrics
	Reporter *diag.Reporter
}

// Stats summarizes the records produced so far.
type Stats struct {
	Sync     codec.SyncStats
	Records  uint64
	ByID     map[codec.ID]int
	Errors   map[codec.ErrorKind]int
	Unknown  int
	Filtered int
	Dropped  int
}

// Decoder produces Records from a byte source. It is not safe for
// concurrent use; decode independent streams with independent Decoders.
type Decoder struct {
	sync  *codec.Synchronizer
	a     codec.Adapter
	opts  Options
	log   zerolog.Logger
	ids   map[codec.ID]bool
	seq   uint64
	stats Stats
}

func New(r io.Reader, a codec.Adapter, opts Options) *Decoder {
	opts.Sync.Logger = opts.Logger
	d := &Decoder{
		sync: codec.NewSynchronizer(r, a, opts.Sync),
		a:    a,
		opts: opts,
		log:  opts.Logger.With().Str("protocol", a.Name()).Logger(),
		stats: Stats{
			ByID:   map[codec.ID]int{},
			Errors: map[codec.ErrorKind]int{},
		},
	}
	if len(opts.IDs) > 0 {
		d.ids = make(map[codec.ID]bool, len(opts.IDs))
		for _, id := range opts.IDs {
			d.ids[id] = true
		}
	}
	return d
}

// Next returns the next record. It returns false at the end of the source.
func (d *Decoder) Next() (Record, bool) {
	for {
		f, ok := d.sync.Next()
		if !ok {
			return Record{}, false
		}
		proto := d.a.Name()

		if f.Kind == codec.KindNoise {
			d.opts.Metrics.Frame(proto, "noise")
			d.opts.Metrics.Noise(proto, len(f.Raw))
			return d.emit(Record{Frame: f}), true
		}

		d.opts.Metrics.Frame(proto, "valid")
		if d.ids != nil && !d.ids[f.ID] {
			d.stats.Filtered++
			continue
		}

		rec, keep := d.decode(f)
		if !keep {
			continue
		}
		return d.emit(rec), true
	}
}

func (d *Decoder) emit(rec Record) Record {
	rec.Seq = d.seq
	d.seq++
	d.stats.Records++
	return rec
}

func (d *Decoder) decode(f codec.Frame) (Record, bool) {
	proto := d.a.Name()
	id := f.ID.String()

	desc, known := d.a.Lookup(f.ID)
	rec := Record{Frame: f, Known: known}
	if known {
		rec.Descriptor = desc
	}
	d.stats.ByID[f.ID]++
	d.opts.Metrics.Message(proto, id)

	if !known {
		d.stats.Unknown++
		d.opts.Metrics.Unknown(proto)
		d.log.Debug().Str("id", id).Int("len", f.Len()).Msg("unknown message")
	}

	if d.opts.VerifyChecksum {
		if res, ok := d.a.VerifyChecksum(&f, desc); ok {
			rec.Checksum = &res
			d.opts.Metrics.Checksum(proto, res.Matches)
		}
	}

	if known {
		msg, err := codec.Decode(f, desc)
		if err != nil {
			rec.Err = err
		} else {
			rec.Message = &msg
		}
	} else if f.Truncated() {
		rec.Err = codec.TruncatedError(f)
	}

	badChecksum := rec.Checksum != nil && !rec.Checksum.Matches
	if rec.Err == nil && badChecksum {
		rec.Err = &codec.DecodeError{
			Kind:     codec.ChecksumMismatch,
			ID:       f.ID,
			Expected: int(rec.Checksum.Computed),
			Actual:   int(rec.Checksum.Declared),
			Frame:    f,
		}
	}

	if rec.Err != nil {
		if kind, ok := codec.KindOf(rec.Err); ok {
			d.stats.Errors[kind]++
			d.opts.Metrics.DecodeError(proto, kind.String())
			d.opts.Reporter.Report(kind.String(), id, rec.Err)
		}
	}

	if badChecksum && d.opts.DropBadChecksum {
		d.stats.Dropped++
		return Record{}, false
	}
	return rec, true
}

// Err returns the first error of the byte source, not counting EOF.
func (d *Decoder) Err() error {
	return d.sync.Err()
}

// Stats returns a copy of the counters.
func (d *Decoder) Stats() Stats {
	s := d.stats
	s.Sync = d.sync.Stats()
	s.ByID = make(map[codec.ID]int, len(d.stats.ByID))
	for k, v := range d.stats.ByID {
		s.ByID[k] = v
	}
	s.Errors = make(map[codec.ErrorKind]int, len(d.stats.Errors))
	for k, v := range d.stats.Errors {
		s.Errors[k] = v
	}
	return s
}

// Run calls fn for every record until the source ends, fn fails or ctx is
// canceled. Cancellation is checked between records.
func (d *Decoder) Run(ctx context.Context, fn func(Record) error) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		rec, ok := d.Next()
		if !ok {
			return d.Err()
		}
		if err := fn(rec); err != nil {
			return err
		}
	}
}
