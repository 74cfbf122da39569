package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"gnssbin/internal/config"
	"gnssbin/internal/logging"
)

type flags struct {
	configPath  string
	protocol    string
	input       string
	format      string
	summaryPath string
}

func main() {
	var f flags
	flag.StringVar(&f.configPath, "config", "", "Path to YAML or TOML config")
	flag.StringVar(&f.protocol, "protocol", "", "Stream protocol: greis or novatel (overrides input.protocol)")
	flag.StringVar(&f.input, "input", "", "Binary capture to decode, '-' for stdin (overrides input.path)")
	flag.StringVar(&f.format, "format", "", "Output: text, summary, breakout or none (overrides output.format)")
	flag.StringVar(&f.summaryPath, "summary", "", "Print a summary of a raw capture log and exit")
	flag.Parse()

	if f.summaryPath != "" {
		if err := printCaptureSummary(os.Stdout, f.summaryPath, f.protocol); err != nil {
			fmt.Fprintf(os.Stderr, "capture summary failed: %v\n", err)
			os.Exit(1)
		}
		return
	}

	cfg, err := loadConfig(f)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(2)
	}
	logger := logging.Configure(cfg.Log)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	reg := prometheus.NewRegistry()
	if cfg.Metrics.Listen != "" {
		srv := serveMetrics(cfg.Metrics.Listen, reg, logger)
		defer func() {
			shutdownCtx, done := context.WithTimeout(context.Background(), 2*time.Second)
			defer done()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	logger.Info().Str("protocol", cfg.Input.Protocol).Str("format", cfg.Output.Format).Msg("gnssbin starting")
	err = run(ctx, cfg, runEnv{stdin: os.Stdin, stdout: os.Stdout, log: logger, reg: reg})
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Error().Err(err).Msg("gnssbin failed")
		os.Exit(1)
	}
	logger.Info().Msg("gnssbin stopping")
}

// loadConfig reads the optional config file and layers the command line
// on top before validating.
func loadConfig(f flags) (config.Config, error) {
	cfg := config.Default()
	if f.configPath != "" {
		var err error
		if cfg, err = config.Read(f.configPath); err != nil {
			return config.Config{}, err
		}
	}
	if f.protocol != "" {
		cfg.Input.Protocol = f.protocol
	}
	if f.input != "" {
		cfg.Input.Path = f.input
		cfg.Input.Serial.Device = ""
		cfg.Input.Replay.Enable = false
		cfg.Input.Record.Enable = false
	}
	if f.format != "" {
		cfg.Output.Format = f.format
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func serveMetrics(addr string, reg *prometheus.Registry, log zerolog.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		log.Info().Str("addr", addr).Msg("metrics listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Str("addr", addr).Msg("metrics server stopped")
		}
	}()
	return srv
}
