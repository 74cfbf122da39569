package render

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/rs/zerolog"

	"gnssbin/internal/codec"
	"gnssbin/internal/stream"
)

// ErrExists is returned when a breakout file is already present and
// overwriting was not requested.
var ErrExists = errors.New("render: breakout file exists")

type breakoutFile struct {
	f *os.File
	w *bufio.Writer
}

// Breakout writes each decoded message type to its own file, xds.<id> in
// dir. Files are created on first use.
type Breakout struct {
	dir       string
	overwrite bool
	log       zerolog.Logger

	files map[codec.ID]*breakoutFile
	lines map[codec.ID]int
}

func NewBreakout(dir string, overwrite bool, log zerolog.Logger) *Breakout {
	return &Breakout{
		dir:       dir,
		overwrite: overwrite,
		log:       log,
		files:     map[codec.ID]*breakoutFile{},
		lines:     map[codec.ID]int{},
	}
}

// FileName is the breakout file name for id. Numeric ids are zero padded
// so the files sort by id.
func FileName(id codec.ID) string {
	if id.IsTag() {
		return "xds." + id.String()
	}
	return fmt.Sprintf("xds.%04d", id.Num)
}

// Write appends rec to its type's file. Noise and records without a
// decoded message are skipped.
func (b *Breakout) Write(rec stream.Record) error {
	if rec.Message == nil {
		return nil
	}
	id := rec.Frame.ID
	bf, ok := b.files[id]
	if !ok {
		var err error
		bf, err = b.create(id)
		if err != nil {
			return err
		}
		b.files[id] = bf
	}

	line := Fields(rec)
	if h := Header(rec); h != "" {
		line = h + " " + line
	}
	if _, err := bf.w.WriteString(line + "\n"); err != nil {
		return err
	}
	b.lines[id]++
	return nil
}

func (b *Breakout) create(id codec.ID) (*breakoutFile, error) {
	path := filepath.Join(b.dir, FileName(id))
	if !b.overwrite {
		if _, err := os.Stat(path); err == nil {
			return nil, fmt.Errorf("%w: %s (set output.overwrite to replace it)", ErrExists, path)
		}
	}
	if err := os.MkdirAll(b.dir, 0o755); err != nil {
		return nil, err
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	b.log.Info().Str("path", path).Msg("writing breakout")
	return &breakoutFile{f: f, w: bufio.NewWriter(f)}, nil
}

// Lines returns how many lines were written per id.
func (b *Breakout) Lines() map[codec.ID]int {
	out := make(map[codec.ID]int, len(b.lines))
	for k, v := range b.lines {
		out[k] = v
	}
	return out
}

// Close flushes and closes every file in id order and returns the first
// error.
func (b *Breakout) Close() error {
	ids := make([]codec.ID, 0, len(b.files))
	for id := range b.files {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return lessID(ids[i], ids[j]) })

	var first error
	for _, id := range ids {
		bf := b.files[id]
		if err := bf.w.Flush(); err != nil && first == nil {
			first = err
		}
		if err := bf.f.Close(); err != nil && first == nil {
			first = err
		}
		delete(b.files, id)
	}
	return first
}
