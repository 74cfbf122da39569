package codec

import (
	"bytes"
	"errors"
	"io"

	"github.com/rs/zerolog"
)

// SyncOptions tunes a Synchronizer.
type SyncOptions struct {
	// SkipLineEndings drops noise spans that are exactly "\n" or "\r\n".
	// Some transports interleave line breaks with binary frames.
	SkipLineEndings bool

	// MaxNoise, when positive, emits a noise span as soon as it reaches this
	// many bytes instead of holding it until the next valid header.
	MaxNoise int

	Logger zerolog.Logger
}

// SyncStats counts what the synchronizer has consumed so far.
type SyncStats struct {
	Bytes        int64
	ValidFrames  int
	NoiseFrames  int
	NoiseBytes   int64
	SkippedLines int
}

// maxZeroReads bounds consecutive (0, nil) reads from a misbehaving source.
const maxZeroReads = 100

var (
	lf   = []byte("\n")
	crlf = []byte("\r\n")
)

// Synchronizer cuts a byte stream into Frames. The stream does not have to
// start on a frame boundary: when the lookahead does not hold a valid header
// the oldest byte is moved to a noise span and the check is repeated, so a
// corrupted byte costs one byte of slippage and never stalls the stream.
//
// Use it like bufio.Scanner:
//
//	s := codec.NewSynchronizer(r, adapter, opts)
//	for {
//		f, ok := s.Next()
//		if !ok {
//			break
//		}
//		...
//	}
//	if err := s.Err(); err != nil { ... }
type Synchronizer struct {
	r    io.Reader
	a    Adapter
	opts SyncOptions
	log  zerolog.Logger

	buf []byte // lookahead, buf[0] is at stream offset off
	off int64

	noise    []byte
	noiseOff int64

	pending []Frame
	eof     bool
	done    bool
	err     error
	stats   SyncStats
}

func NewSynchronizer(r io.Reader, a Adapter, opts SyncOptions) *Synchronizer {
	return &Synchronizer{
		r:    r,
		a:    a,
		opts: opts,
		log:  opts.Logger.With().Str("protocol", a.Name()).Logger(),
		buf:  make([]byte, 0, a.MinHeaderLen()),
	}
}

// Next returns the next frame in source order. It returns false once the
// source is exhausted and every buffered byte has been emitted.
func (s *Synchronizer) Next() (Frame, bool) {
	for {
		if len(s.pending) > 0 {
			f := s.pending[0]
			s.pending = s.pending[1:]
			return f, true
		}
		if s.done {
			return Frame{}, false
		}
		s.step()
	}
}

// Err returns the first non-EOF error from the source. End of stream is not
// an error.
func (s *Synchronizer) Err() error {
	return s.err
}

// Stats returns counters for the bytes consumed so far.
func (s *Synchronizer) Stats() SyncStats {
	return s.stats
}

func (s *Synchronizer) step() {
	if !s.fill(s.a.MinHeaderLen()) {
		s.finish()
		return
	}

	for {
		h, need, err := s.a.ParseHeader(s.buf)
		if err == nil && need > len(s.buf) {
			if s.fill(need) {
				continue
			}
			err = ErrHeaderInvalid
		}
		if err != nil {
			s.slip()
			return
		}
		s.emit(h)
		return
	}
}

// fill extends the lookahead to n bytes. It reports false when the source
// ended (or failed) first.
func (s *Synchronizer) fill(n int) bool {
	zeroReads := 0
	for len(s.buf) < n && !s.eof {
		chunk := make([]byte, n-len(s.buf))
		m, err := s.r.Read(chunk)
		s.buf = append(s.buf, chunk[:m]...)
		s.stats.Bytes += int64(m)
		if err != nil {
			s.stop(err)
			break
		}
		if m == 0 {
			zeroReads++
			if zeroReads >= maxZeroReads {
				s.stop(io.ErrNoProgress)
			}
			continue
		}
		zeroReads = 0
	}
	return len(s.buf) >= n
}

// stop ends reading. Running out of source, even inside a body, is the
// natural end of the stream and is not recorded as an error.
func (s *Synchronizer) stop(err error) {
	s.eof = true
	if !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) && s.err == nil {
		s.err = err
	}
}

// slip moves the oldest lookahead byte into the noise span.
func (s *Synchronizer) slip() {
	if len(s.noise) == 0 {
		s.noiseOff = s.off
	}
	s.noise = append(s.noise, s.buf[0])
	s.buf = append(s.buf[:0], s.buf[1:]...)
	s.off++
	if s.opts.MaxNoise > 0 && len(s.noise) >= s.opts.MaxNoise {
		s.flushNoise()
	}
}

func (s *Synchronizer) emit(h Header) {
	header := append([]byte(nil), s.buf[:h.Len]...)

	body := make([]byte, h.BodyLen)
	n := copy(body, s.buf[h.Len:])
	if n < h.BodyLen && !s.eof {
		m, err := io.ReadFull(s.r, body[n:])
		n += m
		s.stats.Bytes += int64(m)
		if err != nil {
			s.stop(err)
		}
	}
	body = body[:n]

	f := Frame{
		Kind:     KindValid,
		Offset:   s.off,
		ID:       h.ID,
		Header:   header,
		Body:     body,
		Declared: h.BodyLen,
		Info:     h.Info,
	}

	s.flushNoise()
	s.pending = append(s.pending, f)
	s.stats.ValidFrames++

	s.off += int64(len(header) + len(body))
	// Bytes past header+body would only exist if an adapter over-asked; they
	// stay in the lookahead for the next header check.
	rest := 0
	if consumed := h.Len + n; consumed < len(s.buf) {
		rest = copy(s.buf, s.buf[consumed:])
	}
	s.buf = s.buf[:rest]

	if f.Truncated() {
		s.log.Debug().Str("id", h.ID.String()).Int("declared", h.BodyLen).Int("read", n).Msg("source ended inside body")
	}
}

func (s *Synchronizer) flushNoise() {
	if len(s.noise) == 0 {
		return
	}
	noise := s.noise
	s.noise = nil
	if s.opts.SkipLineEndings && (bytes.Equal(noise, lf) || bytes.Equal(noise, crlf)) {
		s.stats.SkippedLines++
		return
	}
	s.log.Debug().Int64("offset", s.noiseOff).Int("bytes", len(noise)).Msg("resync")
	s.pending = append(s.pending, Frame{Kind: KindNoise, Offset: s.noiseOff, Raw: noise})
	s.stats.NoiseFrames++
	s.stats.NoiseBytes += int64(len(noise))
}

// finish flushes the lookahead as noise once the source is exhausted.
func (s *Synchronizer) finish() {
	if len(s.buf) > 0 {
		if len(s.noise) == 0 {
			s.noiseOff = s.off
		}
		s.noise = append(s.noise, s.buf...)
		s.off += int64(len(s.buf))
		s.buf = s.buf[:0]
	}
	s.flushNoise()
	s.done = true
}
