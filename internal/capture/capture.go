// Package capture records raw receiver input and plays it back with its
// original timing.
//
// A capture log is line-oriented text:
//
//	# session <uuid>
//	START
//	<t_ns>,<hex>
//
// t_ns counts nanoseconds since the last START and hex is one chunk of raw
// bytes exactly as the receiver delivered it. Blank lines and other '#'
// lines are ignored. Chunk boundaries carry no meaning for the decoder; the
// synchronizer resolves frames across them.
package capture

import (
	"bufio"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	sessionPrefix = "# session "
	startMarker   = "START"
	maxLineLen    = 1 << 20
)

// Record is one captured chunk. A nil Chunk marks START.
type Record struct {
	At    time.Duration
	Chunk []byte
}

// IsStart reports whether r is a START marker.
func (r Record) IsStart() bool { return r.Chunk == nil }

// Log is a parsed capture file.
type Log struct {
	// Session is the id from the last "# session" line, if any.
	Session string
	Records []Record
}

// Parse reads a whole capture log from r.
func Parse(r io.Reader) (Log, error) {
	var lg Log
	sc := bufio.NewScanner(r)
	sc.Buffer(nil, maxLineLen)
	for n := 1; sc.Scan(); n++ {
		line := strings.TrimSpace(sc.Text())
		switch {
		case line == "":
		case strings.HasPrefix(line, sessionPrefix):
			lg.Session = strings.TrimSpace(strings.TrimPrefix(line, sessionPrefix))
		case strings.HasPrefix(line, "#"):
		case line == startMarker:
			lg.Records = append(lg.Records, Record{})
		default:
			rec, err := parseChunk(line)
			if err != nil {
				return Log{}, fmt.Errorf("capture line %d: %w", n, err)
			}
			lg.Records = append(lg.Records, rec)
		}
	}
	if err := sc.Err(); err != nil {
		return Log{}, err
	}
	return lg, nil
}

func parseChunk(line string) (Record, error) {
	ts, payload, ok := strings.Cut(line, ",")
	if !ok {
		return Record{}, fmt.Errorf("missing comma in %q", line)
	}
	ts = strings.TrimSpace(ts)
	payload = strings.ReplaceAll(strings.TrimSpace(payload), " ", "")
	if ts == "" || payload == "" {
		return Record{}, fmt.Errorf("empty field in %q", line)
	}

	ns, err := strconv.ParseInt(ts, 10, 64)
	if err != nil {
		return Record{}, fmt.Errorf("timestamp %q: %w", ts, err)
	}
	if ns < 0 {
		return Record{}, fmt.Errorf("negative timestamp %d", ns)
	}
	chunk, err := hex.DecodeString(payload)
	if err != nil {
		return Record{}, fmt.Errorf("payload: %w", err)
	}
	return Record{At: time.Duration(ns), Chunk: chunk}, nil
}

// ReadFile loads a capture log from disk.
func ReadFile(path string) (Log, error) {
	f, err := os.Open(path)
	if err != nil {
		return Log{}, err
	}
	defer f.Close()
	return Parse(f)
}

// Writer appends chunks to a capture log. Timestamps are taken relative to
// the moment the session header was written.
type Writer struct {
	bw      *bufio.Writer
	closer  io.Closer
	start   time.Time
	session string
	closed  bool
}

// NewWriter writes a fresh session header to w. If w is an io.Closer it is
// closed by Close.
func NewWriter(w io.Writer, start time.Time) (*Writer, error) {
	ww := &Writer{
		bw:      bufio.NewWriterSize(w, 64*1024),
		start:   start,
		session: uuid.NewString(),
	}
	if c, ok := w.(io.Closer); ok {
		ww.closer = c
	}
	if _, err := fmt.Fprintf(ww.bw, "%s%s\n%s\n", sessionPrefix, ww.session, startMarker); err != nil {
		return nil, err
	}
	return ww, nil
}

// CreateWriter truncates path and starts a new session in it.
func CreateWriter(path string) (*Writer, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	ww, err := NewWriter(f, time.Now())
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	return ww, nil
}

// Session returns the id written to the log header.
func (ww *Writer) Session() string {
	return ww.session
}

func (ww *Writer) WriteChunk(now time.Time, chunk []byte) error {
	if ww.closed {
		return errors.New("capture writer is closed")
	}
	if len(chunk) == 0 {
		return errors.New("chunk is empty")
	}
	d := now.Sub(ww.start)
	if d < 0 {
		d = 0
	}
	_, err := fmt.Fprintf(ww.bw, "%d,%x\n", d.Nanoseconds(), chunk)
	return err
}

func (ww *Writer) Flush() error {
	if ww.closed {
		return nil
	}
	return ww.bw.Flush()
}

// Close flushes buffered chunks and closes the destination. It is safe to
// call more than once.
func (ww *Writer) Close() error {
	if ww.closed {
		return nil
	}
	ww.closed = true
	err := ww.bw.Flush()
	if ww.closer != nil {
		if cerr := ww.closer.Close(); err == nil {
			err = cerr
		}
	}
	return err
}
