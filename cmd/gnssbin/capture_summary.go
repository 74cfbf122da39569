package main

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"gnssbin/internal/capture"
	"gnssbin/internal/codec"
	"gnssbin/internal/config"
	"gnssbin/internal/render"
	"gnssbin/internal/stream"
)

type captureSummary struct {
	Session     string
	Segments    int
	Chunks      int
	Bytes       int
	MaxDuration time.Duration
	Stats       stream.Stats
}

// summarizeCapture walks the chunk timing of a capture and decodes its
// bytes. Chunk boundaries are ignored for decoding; segments are not, a
// START marker can split a frame when a recording was restarted.
func summarizeCapture(records []capture.Record, a codec.Adapter) captureSummary {
	var s captureSummary

	origin := time.Duration(0)
	hasChunks := false
	segments := 0
	var raw bytes.Buffer

	for _, r := range records {
		if r.IsStart() {
			segments++
			origin = r.At
			continue
		}
		hasChunks = true

		s.Chunks++
		s.Bytes += len(r.Chunk)
		raw.Write(r.Chunk)

		at := r.At - origin
		if at < 0 {
			at = 0
		}
		if at > s.MaxDuration {
			s.MaxDuration = at
		}
	}
	if segments == 0 && hasChunks {
		segments = 1
	}
	s.Segments = segments

	dec := stream.New(&raw, a, stream.Options{
		Sync:           codec.SyncOptions{SkipLineEndings: true},
		VerifyChecksum: true,
		Logger:         zerolog.Nop(),
	})
	for {
		if _, ok := dec.Next(); !ok {
			break
		}
	}
	s.Stats = dec.Stats()
	return s
}

func printCaptureSummary(w io.Writer, path, protocol string) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return fmt.Errorf("path is empty")
	}

	cfg := config.Default()
	cfg.Input.Protocol = protocolOrDefault(protocol)
	a, err := newAdapter(cfg)
	if err != nil {
		return err
	}

	lg, err := capture.ReadFile(path)
	if err != nil {
		return err
	}

	s := summarizeCapture(lg.Records, a)
	s.Session = lg.Session

	fmt.Fprintf(w, "path: %s\n", path)
	if s.Session != "" {
		fmt.Fprintf(w, "session: %s\n", s.Session)
	}
	fmt.Fprintf(w, "protocol: %s\n", a.Name())
	fmt.Fprintf(w, "segments: %d\n", s.Segments)
	fmt.Fprintf(w, "chunks: %d\n", s.Chunks)
	fmt.Fprintf(w, "bytes: %d\n", s.Bytes)
	fmt.Fprintf(w, "max_duration: %s\n", s.MaxDuration)
	return render.WriteSummary(w, s.Stats)
}
