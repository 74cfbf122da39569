package capture

import (
	"errors"
	"fmt"
	"io"
	"time"
)

type Sleeper interface {
	Sleep(d time.Duration)
}

type realSleeper struct{}

func (realSleeper) Sleep(d time.Duration) { time.Sleep(d) }

// timeline walks records and yields each chunk with the wait that precedes
// it. START markers reset the origin and never cause a wait.
type timeline struct {
	records []Record
	speed   float64
	loop    bool

	i        int
	origin   time.Duration
	lastAt   time.Duration
	haveLast bool
}

func newTimeline(records []Record, speed float64, loop bool) (*timeline, error) {
	if speed <= 0 {
		return nil, fmt.Errorf("speedMultiplier must be > 0")
	}
	chunks := 0
	for _, r := range records {
		if !r.IsStart() {
			chunks++
		}
	}
	if chunks == 0 {
		return nil, errors.New("no records")
	}
	return &timeline{records: records, speed: speed, loop: loop}, nil
}

func (tl *timeline) next() (chunk []byte, wait time.Duration, ok bool) {
	for {
		if tl.i >= len(tl.records) {
			if !tl.loop {
				return nil, 0, false
			}
			tl.i = 0
			tl.origin = 0
			tl.haveLast = false
		}
		r := tl.records[tl.i]
		tl.i++

		if r.IsStart() {
			tl.origin = r.At
			tl.lastAt = 0
			tl.haveLast = false
			continue
		}

		at := r.At - tl.origin
		if at < 0 {
			at = 0
		}
		if tl.haveLast {
			wait = at - tl.lastAt
			if wait < 0 {
				wait = 0
			}
			wait = time.Duration(float64(wait) / tl.speed)
		}
		tl.lastAt = at
		tl.haveLast = true
		return r.Chunk, wait, true
	}
}

// Play replays records with their relative timing.
//
// The callback is invoked for each chunk record. START markers are honored
// by resetting the origin.
//
// speedMultiplier: 1.0 = real time, 2.0 = 2x speed (half waits), 0.5 = half speed.
func Play(records []Record, speedMultiplier float64, loop bool, sleeper Sleeper, cb func(chunk []byte) error) error {
	if cb == nil {
		return errors.New("callback is nil")
	}
	tl, err := newTimeline(records, speedMultiplier, loop)
	if err != nil {
		return err
	}
	if sleeper == nil {
		sleeper = realSleeper{}
	}

	for {
		chunk, wait, ok := tl.next()
		if !ok {
			return nil
		}
		if wait > 0 {
			sleeper.Sleep(wait)
		}
		if err := cb(chunk); err != nil {
			return err
		}
	}
}

// PlaybackReader is an io.Reader over replayed chunks. Each Read waits out
// the recorded gap before the next chunk, so a decoder reading from it sees
// the same pacing as the live receiver.
type PlaybackReader struct {
	tl      *timeline
	sleeper Sleeper
	buf     []byte
}

func NewPlaybackReader(records []Record, speedMultiplier float64, loop bool, sleeper Sleeper) (*PlaybackReader, error) {
	tl, err := newTimeline(records, speedMultiplier, loop)
	if err != nil {
		return nil, err
	}
	if sleeper == nil {
		sleeper = realSleeper{}
	}
	return &PlaybackReader{tl: tl, sleeper: sleeper}, nil
}

func (pr *PlaybackReader) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	if len(pr.buf) == 0 {
		chunk, wait, ok := pr.tl.next()
		if !ok {
			return 0, io.EOF
		}
		if wait > 0 {
			pr.sleeper.Sleep(wait)
		}
		pr.buf = chunk
	}
	n := copy(p, pr.buf)
	pr.buf = pr.buf[n:]
	return n, nil
}
