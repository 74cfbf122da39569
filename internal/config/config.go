package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"gnssbin/internal/logging"
)

type Config struct {
	Input   InputConfig    `yaml:"input" toml:"input"`
	Decode  DecodeConfig   `yaml:"decode" toml:"decode"`
	Output  OutputConfig   `yaml:"output" toml:"output"`
	Log     logging.Config `yaml:"log" toml:"log"`
	Metrics MetricsConfig  `yaml:"metrics" toml:"metrics"`
}

type InputConfig struct {
	Protocol string       `yaml:"protocol" toml:"protocol"`
	Path     string       `yaml:"path" toml:"path"`
	Serial   SerialConfig `yaml:"serial" toml:"serial"`
	Record   RecordConfig `yaml:"record" toml:"record"`
	Replay   ReplayConfig `yaml:"replay" toml:"replay"`
}

type SerialConfig struct {
	Device string `yaml:"device" toml:"device"`
	Baud   int    `yaml:"baud" toml:"baud"`
}

type RecordConfig struct {
	Enable bool   `yaml:"enable" toml:"enable"`
	Path   string `yaml:"path" toml:"path"`
}

type ReplayConfig struct {
	Enable bool    `yaml:"enable" toml:"enable"`
	Path   string  `yaml:"path" toml:"path"`
	Speed  float64 `yaml:"speed" toml:"speed"`
	Loop   bool    `yaml:"loop" toml:"loop"`
}

type DecodeConfig struct {
	SkipLineEndings bool     `yaml:"skip_line_endings" toml:"skip_line_endings"`
	VerifyChecksum  bool     `yaml:"verify_checksum" toml:"verify_checksum"`
	DropBadChecksum bool     `yaml:"drop_bad_checksum" toml:"drop_bad_checksum"`
	MaxNoise        int      `yaml:"max_noise" toml:"max_noise"`
	NovatelHeaders  string   `yaml:"novatel_headers" toml:"novatel_headers"`
	IDs             []string `yaml:"ids" toml:"ids"`
}

type OutputConfig struct {
	Format    string `yaml:"format" toml:"format"`
	Dir       string `yaml:"dir" toml:"dir"`
	Overwrite bool   `yaml:"overwrite" toml:"overwrite"`
}

type MetricsConfig struct {
	Listen string `yaml:"listen" toml:"listen"`
}

const (
	ProtocolGREIS   = "greis"
	ProtocolNovatel = "novatel"

	FormatText     = "text"
	FormatSummary  = "summary"
	FormatBreakout = "breakout"
	FormatNone     = "none"

	DefaultBaud      = 115200
	DefaultOutputDir = "xds"
)

// Default returns the configuration used when no file is given. Input is
// left empty; callers fill one in from flags.
func Default() Config {
	return Config{
		Input: InputConfig{
			Protocol: ProtocolGREIS,
			Serial:   SerialConfig{Baud: DefaultBaud},
		},
		Decode: DecodeConfig{
			SkipLineEndings: true,
			VerifyChecksum:  true,
			NovatelHeaders:  "both",
		},
		Output: OutputConfig{
			Format: FormatText,
			Dir:    DefaultOutputDir,
		},
		Log: logging.Config{Level: "info"},
	}
}

// Load reads a YAML file, or a TOML file when the extension is .toml,
// on top of Default and validates the result.
func Load(path string) (Config, error) {
	cfg, err := Read(path)
	if err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Read is Load without validation, for callers that layer flags on top.
func Read(path string) (Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Default()
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		err = decodeTOML(b, &cfg)
	} else {
		err = decodeYAML(b, &cfg)
	}
	if err != nil {
		return Config{}, err
	}
	return cfg, nil
}

var yamlLinePrefix = regexp.MustCompile(`^line \d+: `)

func decodeYAML(b []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	err := dec.Decode(cfg)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}
	var te *yaml.TypeError
	if errors.As(err, &te) {
		unknown := make([]string, 0, len(te.Errors))
		for _, e := range te.Errors {
			msg := yamlLinePrefix.ReplaceAllString(e, "")
			if strings.HasPrefix(msg, "field ") && strings.Contains(msg, " not found in type ") {
				unknown = append(unknown, msg)
			}
		}
		if len(unknown) == len(te.Errors) {
			return fmt.Errorf("config contains unknown fields: %s", strings.Join(unknown, "; "))
		}
	}
	return err
}

func decodeTOML(b []byte, cfg *Config) error {
	md, err := toml.Decode(string(b), cfg)
	if err != nil {
		return err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return fmt.Errorf("config contains unknown fields: %s", strings.Join(keys, ", "))
	}
	return nil
}

// Validate normalizes defaults that depend on other fields and rejects
// inconsistent settings.
func (cfg *Config) Validate() error {
	in := &cfg.Input

	in.Protocol = strings.ToLower(strings.TrimSpace(in.Protocol))
	switch in.Protocol {
	case "":
		in.Protocol = ProtocolGREIS
	case ProtocolGREIS, ProtocolNovatel:
	default:
		return fmt.Errorf("input.protocol must be one of greis, novatel")
	}

	sources := 0
	if in.Path != "" {
		sources++
	}
	if in.Serial.Device != "" {
		sources++
	}
	if in.Replay.Enable {
		sources++
	}
	if sources == 0 {
		return fmt.Errorf("one of input.path, input.serial.device or input.replay is required")
	}
	if sources > 1 {
		return fmt.Errorf("input.path, input.serial.device and input.replay are mutually exclusive")
	}

	if in.Serial.Baud < 0 {
		return fmt.Errorf("input.serial.baud must be > 0")
	}
	if in.Serial.Baud == 0 {
		in.Serial.Baud = DefaultBaud
	}

	if in.Record.Enable {
		if in.Record.Path == "" {
			return fmt.Errorf("input.record.path is required when input.record.enable is true")
		}
		if in.Replay.Enable {
			return fmt.Errorf("input.record and input.replay cannot both be enabled")
		}
		if in.Serial.Device == "" {
			return fmt.Errorf("input.record requires input.serial.device")
		}
	}

	if in.Replay.Enable {
		if in.Replay.Path == "" {
			return fmt.Errorf("input.replay.path is required when input.replay.enable is true")
		}
		if in.Replay.Speed == 0 {
			in.Replay.Speed = 1
		}
		if in.Replay.Speed < 0 {
			return fmt.Errorf("input.replay.speed must be > 0")
		}
	}

	d := &cfg.Decode
	if d.MaxNoise < 0 {
		return fmt.Errorf("decode.max_noise must be >= 0")
	}
	d.NovatelHeaders = strings.ToLower(strings.TrimSpace(d.NovatelHeaders))
	switch d.NovatelHeaders {
	case "":
		d.NovatelHeaders = "both"
	case "both", "long", "short":
	default:
		return fmt.Errorf("decode.novatel_headers must be one of both, long, short")
	}
	for i, id := range d.IDs {
		id = strings.TrimSpace(id)
		if id == "" {
			return fmt.Errorf("decode.ids[%d] must not be empty", i)
		}
		d.IDs[i] = id
	}
	if d.DropBadChecksum && !d.VerifyChecksum {
		return fmt.Errorf("decode.drop_bad_checksum requires decode.verify_checksum")
	}

	out := &cfg.Output
	out.Format = strings.ToLower(strings.TrimSpace(out.Format))
	switch out.Format {
	case "":
		out.Format = FormatText
	case FormatText, FormatSummary, FormatBreakout, FormatNone:
	default:
		return fmt.Errorf("output.format must be one of text, summary, breakout, none")
	}
	if out.Format == FormatBreakout && strings.TrimSpace(out.Dir) == "" {
		return fmt.Errorf("output.dir is required when output.format is 'breakout'")
	}

	if cfg.Log.Level != "" {
		if _, ok := logging.ParseLevel(cfg.Log.Level); !ok {
			return fmt.Errorf("log.level must be one of trace, debug, info, warn, error, off")
		}
	}
	return nil
}
