package logging

import (
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	EnvLogLevel   = "GNSSBIN_LOG_LEVEL"
	EnvLogJSON    = "GNSSBIN_LOG_JSON"
	EnvLogNoColor = "GNSSBIN_LOG_NOCOLOR"
)

// Config selects the log level and output style.
type Config struct {
	Level   string `yaml:"level" toml:"level"`
	JSON    bool   `yaml:"json" toml:"json"`
	NoColor bool   `yaml:"no_color" toml:"no_color"`

	// Out defaults to stderr so decoded output on stdout stays clean.
	Out io.Writer `yaml:"-" toml:"-"`
}

// Configure builds the process logger from cfg and the GNSSBIN_LOG_*
// environment, installs it as the zerolog global and returns it.
func Configure(cfg Config) zerolog.Logger {
	applyEnvOverrides(&cfg)

	level, ok := ParseLevel(cfg.Level)
	if !ok {
		level = zerolog.InfoLevel
	}

	out := cfg.Out
	if out == nil {
		out = os.Stderr
	}
	if !cfg.JSON {
		out = zerolog.ConsoleWriter{
			Out:        out,
			TimeFormat: time.RFC3339,
			NoColor:    cfg.NoColor,
		}
	}

	logger := zerolog.New(out).Level(level).With().Timestamp().Str("app", "gnssbin").Logger()
	log.Logger = logger
	return logger
}

func applyEnvOverrides(cfg *Config) {
	if raw := os.Getenv(EnvLogLevel); strings.TrimSpace(raw) != "" {
		cfg.Level = raw
	}
	if v, ok := parseBool(os.Getenv(EnvLogJSON)); ok {
		cfg.JSON = v
	}
	if v, ok := parseBool(os.Getenv(EnvLogNoColor)); ok {
		cfg.NoColor = v
	}
}

// ParseLevel maps a level name to a zerolog level. Empty or unknown names
// report false.
func ParseLevel(raw string) (zerolog.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "trace":
		return zerolog.TraceLevel, true
	case "debug":
		return zerolog.DebugLevel, true
	case "info":
		return zerolog.InfoLevel, true
	case "warn", "warning":
		return zerolog.WarnLevel, true
	case "error":
		return zerolog.ErrorLevel, true
	case "disabled", "off", "none":
		return zerolog.Disabled, true
	default:
		return zerolog.InfoLevel, false
	}
}

func parseBool(raw string) (bool, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return false, false
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, false
	}
	return v, true
}
