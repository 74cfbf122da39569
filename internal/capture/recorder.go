package capture

import (
	"io"
	"time"

	"github.com/rs/zerolog"
)

// Recorder passes reads through from a live source and logs every chunk it
// returns to a Writer. The first write failure stops recording but not the
// reads.
type Recorder struct {
	r   io.Reader
	w   *Writer
	log zerolog.Logger
	now func() time.Time

	chunks int
	err    error
}

func NewRecorder(r io.Reader, w *Writer, log zerolog.Logger) *Recorder {
	return &Recorder{r: r, w: w, log: log, now: time.Now}
}

func (rec *Recorder) Read(p []byte) (int, error) {
	n, err := rec.r.Read(p)
	if n > 0 && rec.err == nil {
		if werr := rec.w.WriteChunk(rec.now(), p[:n]); werr != nil {
			rec.err = werr
			rec.log.Error().Err(werr).Str("session", rec.w.Session()).Msg("capture stopped")
		} else {
			rec.chunks++
		}
	}
	return n, err
}

// Chunks returns how many chunks were recorded.
func (rec *Recorder) Chunks() int {
	return rec.chunks
}

// Err returns the write error that stopped recording, if any.
func (rec *Recorder) Err() error {
	return rec.err
}

// Close flushes and closes the underlying Writer.
func (rec *Recorder) Close() error {
	return rec.w.Close()
}
