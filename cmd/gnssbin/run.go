package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"gnssbin/internal/capture"
	"gnssbin/internal/codec"
	"gnssbin/internal/config"
	"gnssbin/internal/diag"
	"gnssbin/internal/greis"
	"gnssbin/internal/metrics"
	"gnssbin/internal/novatel"
	"gnssbin/internal/render"
	"gnssbin/internal/serial"
	"gnssbin/internal/stream"
)

type runEnv struct {
	stdin  io.Reader
	stdout io.Writer
	log    zerolog.Logger
	reg    prometheus.Registerer

	// openSerial and sleeper are replaced in tests.
	openSerial func(device string, baud int) (io.ReadWriteCloser, error)
	sleeper    capture.Sleeper
}

func newAdapter(cfg config.Config) (codec.Adapter, error) {
	switch cfg.Input.Protocol {
	case config.ProtocolGREIS:
		return greis.New(), nil
	case config.ProtocolNovatel:
		mode, err := novatel.ParseHeaderMode(cfg.Decode.NovatelHeaders)
		if err != nil {
			return nil, err
		}
		return novatel.New(mode), nil
	default:
		return nil, fmt.Errorf("unsupported protocol %q", cfg.Input.Protocol)
	}
}

func parseIDs(a codec.Adapter, raw []string) ([]codec.ID, error) {
	ids := make([]codec.ID, 0, len(raw))
	for _, s := range raw {
		id, err := a.ParseID(s)
		if err != nil {
			return nil, fmt.Errorf("decode.ids: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// openSource returns the configured byte source and a function that
// releases it.
func openSource(cfg config.Config, env runEnv) (io.Reader, func() error, error) {
	in := cfg.Input
	noop := func() error { return nil }

	switch {
	case in.Replay.Enable:
		lg, err := capture.ReadFile(in.Replay.Path)
		if err != nil {
			return nil, nil, err
		}
		pr, err := capture.NewPlaybackReader(lg.Records, in.Replay.Speed, in.Replay.Loop, env.sleeper)
		if err != nil {
			return nil, nil, fmt.Errorf("replay %s: %w", in.Replay.Path, err)
		}
		env.log.Info().Str("path", in.Replay.Path).Float64("speed", in.Replay.Speed).Bool("loop", in.Replay.Loop).Msg("replay enabled")
		return pr, noop, nil

	case in.Serial.Device != "":
		open := env.openSerial
		if open == nil {
			open = serial.Open
		}
		device := in.Serial.Device
		if device == "auto" {
			if device = serial.AutoDetect(); device == "" {
				return nil, nil, fmt.Errorf("serial auto-detect failed: no /dev/ttyACM* or /dev/ttyUSB* found")
			}
		}
		port, err := open(device, in.Serial.Baud)
		if err != nil {
			return nil, nil, fmt.Errorf("serial open failed device=%s baud=%d: %w", device, in.Serial.Baud, err)
		}
		env.log.Info().Str("device", device).Int("baud", in.Serial.Baud).Msg("serial enabled")
		if !in.Record.Enable {
			return port, port.Close, nil
		}

		w, err := capture.CreateWriter(in.Record.Path)
		if err != nil {
			_ = port.Close()
			return nil, nil, err
		}
		rec := capture.NewRecorder(port, w, env.log)
		env.log.Info().Str("path", in.Record.Path).Str("session", w.Session()).Msg("record enabled")
		return rec, func() error {
			err := rec.Close()
			if cerr := port.Close(); err == nil {
				err = cerr
			}
			return err
		}, nil

	case in.Path == "-":
		return env.stdin, noop, nil

	default:
		f, err := os.Open(in.Path)
		if err != nil {
			return nil, nil, err
		}
		return bufio.NewReaderSize(f, 64*1024), f.Close, nil
	}
}

// run decodes the configured source until it ends or ctx is canceled.
func run(ctx context.Context, cfg config.Config, env runEnv) (err error) {
	a, err := newAdapter(cfg)
	if err != nil {
		return err
	}
	ids, err := parseIDs(a, cfg.Decode.IDs)
	if err != nil {
		return err
	}

	src, release, err := openSource(cfg, env)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := release(); err == nil {
			err = cerr
		}
	}()

	reporter := diag.New(env.log)
	dec := stream.New(src, a, stream.Options{
		Sync: codec.SyncOptions{
			SkipLineEndings: cfg.Decode.SkipLineEndings,
			MaxNoise:        cfg.Decode.MaxNoise,
		},
		VerifyChecksum:  cfg.Decode.VerifyChecksum,
		DropBadChecksum: cfg.Decode.DropBadChecksum,
		IDs:             ids,
		Logger:          env.log,
		Metrics:         metrics.New(env.reg),
		Reporter:        reporter,
	})

	out := bufio.NewWriter(env.stdout)
	defer func() {
		if ferr := out.Flush(); err == nil {
			err = ferr
		}
	}()

	var sink func(stream.Record) error
	var finish func() error
	switch cfg.Output.Format {
	case config.FormatText:
		sink = func(rec stream.Record) error {
			if _, err := fmt.Fprintln(out, render.Line(rec)); err != nil {
				return err
			}
			if env.log.GetLevel() <= zerolog.DebugLevel {
				for _, line := range render.Detail(rec) {
					if _, err := fmt.Fprintln(out, "  "+line); err != nil {
						return err
					}
				}
			}
			return nil
		}
	case config.FormatBreakout:
		bo := render.NewBreakout(cfg.Output.Dir, cfg.Output.Overwrite, env.log)
		sink = bo.Write
		finish = bo.Close
	default:
		sink = func(stream.Record) error { return nil }
	}

	runErr := dec.Run(ctx, sink)
	if finish != nil {
		if ferr := finish(); runErr == nil {
			runErr = ferr
		}
	}

	st := dec.Stats()
	if cfg.Output.Format == config.FormatSummary {
		if err := render.WriteSummary(out, st); err != nil && runErr == nil {
			runErr = err
		}
	}
	reporter.LogSummary(zerolog.DebugLevel)
	env.log.Info().
		Uint64("records", st.Records).
		Int("noise_frames", st.Sync.NoiseFrames).
		Int64("bytes", st.Sync.Bytes).
		Int("unknown", st.Unknown).
		Int("errors", totalErrors(st)).
		Msg("decode finished")
	return runErr
}

func totalErrors(st stream.Stats) int {
	n := 0
	for _, c := range st.Errors {
		n += c
	}
	return n
}

func protocolOrDefault(p string) string {
	p = strings.ToLower(strings.TrimSpace(p))
	if p == "" {
		return config.ProtocolGREIS
	}
	return p
}
