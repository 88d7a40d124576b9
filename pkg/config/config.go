package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// EnvVar names the configuration file when no path is given.
const EnvVar = "PYRT_CONFIG"

// Config models a runtime configuration file.
type Config struct {
	Path        string
	IO          IO
	Regex       Regex
	Warnings    Warnings
	Diagnostics Diagnostics
}

// IO configures open().
type IO struct {
	BufferSize   int
	Encoding     string
	WarnUnclosed bool
}

// Regex configures pattern compilation.
type Regex struct {
	Engine    string
	Timeout   time.Duration
	CacheSize int
}

// Warnings holds the default warnings action.
type Warnings struct {
	Action string
}

// Diagnostics configures the slog logger.
type Diagnostics struct {
	Format string // text or json
	Level  string // debug, info, warn or error
	Output string // stderr, stdout or discard
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		IO:          IO{BufferSize: 8192, Encoding: "utf-8", WarnUnclosed: true},
		Regex:       Regex{Engine: "regexp2", CacheSize: 512},
		Warnings:    Warnings{Action: "default"},
		Diagnostics: Diagnostics{Format: "text", Level: "warn", Output: "stderr"},
	}
}

// Locate loads path, or the file named by PYRT_CONFIG when path is empty,
// or the defaults when neither is set.
func Locate(path string) (*Config, error) {
	if path == "" {
		path = strings.TrimSpace(os.Getenv(EnvVar))
	}
	if path == "" {
		return Default(), nil
	}
	return Load(path)
}

// Load parses a YAML or TOML file, chosen by extension. Unknown keys are
// errors. Missing keys keep their defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config: empty path")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("config: resolve %s: %w", path, err)
	}
	raw := Default().toDisk()
	switch ext := strings.ToLower(filepath.Ext(abs)); ext {
	case ".yml", ".yaml":
		file, err := os.Open(abs)
		if err != nil {
			return nil, err
		}
		defer file.Close()
		decoder := yaml.NewDecoder(file)
		decoder.KnownFields(true)
		if err := decoder.Decode(&raw); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", abs, err)
		}
	case ".toml":
		meta, err := toml.DecodeFile(abs, &raw)
		if err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", abs, err)
		}
		if undecoded := meta.Undecoded(); len(undecoded) > 0 {
			keys := make([]string, len(undecoded))
			for i, k := range undecoded {
				keys[i] = k.String()
			}
			sort.Strings(keys)
			return nil, fmt.Errorf("config: parse %s: unknown keys %s", abs, strings.Join(keys, ", "))
		}
	default:
		return nil, fmt.Errorf("config: unsupported file type %q", ext)
	}
	cfg, err := raw.toConfig()
	if err != nil {
		return nil, fmt.Errorf("config: %s: %w", abs, err)
	}
	cfg.Path = abs
	return cfg, nil
}

// Encode renders cfg as YAML.
func Encode(cfg *Config) ([]byte, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config: nil config")
	}
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(cfg.toDisk()); err != nil {
		return nil, fmt.Errorf("config: marshal: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("config: encoder close: %w", err)
	}
	return buf.Bytes(), nil
}

// Write stores cfg at path as YAML.
func Write(cfg *Config, path string) error {
	data, err := Encode(cfg)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("config: write %s: %w", path, err)
	}
	return nil
}

func (c *Config) validate() error {
	if c.IO.BufferSize <= 0 {
		return fmt.Errorf("io.buffer_size must be positive, got %d", c.IO.BufferSize)
	}
	if c.Regex.Engine != "regexp2" {
		return fmt.Errorf("unknown regex engine %q", c.Regex.Engine)
	}
	if c.Regex.Timeout < 0 {
		return fmt.Errorf("regex.timeout must not be negative")
	}
	switch c.Warnings.Action {
	case "default", "always", "once", "ignore", "error":
	default:
		return fmt.Errorf("invalid warnings action %q", c.Warnings.Action)
	}
	switch c.Diagnostics.Format {
	case "text", "json":
	default:
		return fmt.Errorf("unknown diagnostics format %q", c.Diagnostics.Format)
	}
	if _, err := parseLevel(c.Diagnostics.Level); err != nil {
		return err
	}
	switch c.Diagnostics.Output {
	case "stderr", "stdout", "discard":
	default:
		return fmt.Errorf("unknown diagnostics output %q", c.Diagnostics.Output)
	}
	return nil
}

func (c *Config) toDisk() configDisk {
	timeout := ""
	if c.Regex.Timeout > 0 {
		timeout = c.Regex.Timeout.String()
	}
	warn := c.IO.WarnUnclosed
	return configDisk{
		IO: ioDisk{
			BufferSize:   c.IO.BufferSize,
			Encoding:     c.IO.Encoding,
			WarnUnclosed: &warn,
		},
		Regex: regexDisk{
			Engine:    c.Regex.Engine,
			Timeout:   timeout,
			CacheSize: c.Regex.CacheSize,
		},
		Warnings: warningsDisk{Action: c.Warnings.Action},
		Diagnostics: diagnosticsDisk{
			Format: c.Diagnostics.Format,
			Level:  c.Diagnostics.Level,
			Output: c.Diagnostics.Output,
		},
	}
}

type configDisk struct {
	IO          ioDisk          `yaml:"io" toml:"io"`
	Regex       regexDisk       `yaml:"regex" toml:"regex"`
	Warnings    warningsDisk    `yaml:"warnings" toml:"warnings"`
	Diagnostics diagnosticsDisk `yaml:"diagnostics" toml:"diagnostics"`
}

type ioDisk struct {
	BufferSize   int    `yaml:"buffer_size" toml:"buffer_size"`
	Encoding     string `yaml:"encoding" toml:"encoding"`
	WarnUnclosed *bool  `yaml:"warn_unclosed" toml:"warn_unclosed"`
}

type regexDisk struct {
	Engine    string `yaml:"engine" toml:"engine"`
	Timeout   string `yaml:"timeout,omitempty" toml:"timeout"`
	CacheSize int    `yaml:"cache_size" toml:"cache_size"`
}

type warningsDisk struct {
	Action string `yaml:"action" toml:"action"`
}

type diagnosticsDisk struct {
	Format string `yaml:"format" toml:"format"`
	Level  string `yaml:"level" toml:"level"`
	Output string `yaml:"output" toml:"output"`
}

func (d configDisk) toConfig() (*Config, error) {
	cfg := &Config{
		IO: IO{
			BufferSize:   d.IO.BufferSize,
			Encoding:     strings.TrimSpace(d.IO.Encoding),
			WarnUnclosed: d.IO.WarnUnclosed == nil || *d.IO.WarnUnclosed,
		},
		Regex: Regex{
			Engine:    strings.ToLower(strings.TrimSpace(d.Regex.Engine)),
			CacheSize: d.Regex.CacheSize,
		},
		Warnings: Warnings{Action: strings.ToLower(strings.TrimSpace(d.Warnings.Action))},
		Diagnostics: Diagnostics{
			Format: strings.ToLower(strings.TrimSpace(d.Diagnostics.Format)),
			Level:  strings.ToLower(strings.TrimSpace(d.Diagnostics.Level)),
			Output: strings.ToLower(strings.TrimSpace(d.Diagnostics.Output)),
		},
	}
	if t := strings.TrimSpace(d.Regex.Timeout); t != "" {
		timeout, err := time.ParseDuration(t)
		if err != nil {
			return nil, fmt.Errorf("regex.timeout: %w", err)
		}
		cfg.Regex.Timeout = timeout
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
