// Package config loads PomoTech settings from a TOML or YAML file and the
// environment.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/hammamikhairi/pomotech/internal/logger"
)

// DefaultPath is the config file read when --config is not given.
const DefaultPath = "pomotech.toml"

// DataDir holds the statistics file and the log by default.
const DataDir = ".pomotech"

// Defaults for unset fields.
const (
	DefaultBackend      = "file"
	DefaultFilePath     = DataDir + "/stats.json"
	DefaultSQLitePath   = DataDir + "/stats.db"
	DefaultLogFile      = DataDir + "/pomotech.log"
	DefaultLogLevel     = "normal"
	DefaultTickInterval = time.Second
)

// Environment variables that override the file.
const (
	EnvTestMode  = "POMOTECH_TEST_MODE"
	EnvStore     = "POMOTECH_STORE"
	EnvStorePath = "POMOTECH_STORE_PATH"
	EnvLogLevel  = "POMOTECH_LOG_LEVEL"
)

// Duration is a time.Duration written as text ("1s", "250ms") in config
// files.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(strings.TrimSpace(string(text)))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", text, err)
	}
	if v <= 0 {
		return fmt.Errorf("duration %q must be positive", text)
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

type StoreConfig struct {
	Backend string `toml:"backend" yaml:"backend"`
	Path    string `toml:"path" yaml:"path"`
}

type TimerConfig struct {
	TestMode bool `toml:"test_mode" yaml:"test_mode"`
	// TickInterval is the wall-clock length of one countdown second. It is
	// honoured only with TestMode on; normal runs always tick once a second.
	TickInterval Duration `toml:"tick_interval" yaml:"tick_interval"`
}

type NotifyConfig struct {
	Sound   *bool `toml:"sound" yaml:"sound"`
	Desktop *bool `toml:"desktop" yaml:"desktop"`
}

type LogConfig struct {
	Level string `toml:"level" yaml:"level"`
	File  string `toml:"file" yaml:"file"`
}

type Config struct {
	Store  StoreConfig  `toml:"store" yaml:"store"`
	Timer  TimerConfig  `toml:"timer" yaml:"timer"`
	Notify NotifyConfig `toml:"notify" yaml:"notify"`
	Log    LogConfig    `toml:"log" yaml:"log"`
}

// SetDefault fills every unset field.
func (c *Config) SetDefault() {
	if c.Store.Backend == "" {
		c.Store.Backend = DefaultBackend
	}
	c.Store.Backend = strings.ToLower(c.Store.Backend)
	if c.Store.Path == "" {
		c.Store.Path = defaultStorePath(c.Store.Backend)
	}
	if c.Timer.TickInterval.Duration <= 0 {
		c.Timer.TickInterval.Duration = DefaultTickInterval
	}
	if c.Notify.Sound == nil {
		v := true
		c.Notify.Sound = &v
	}
	if c.Notify.Desktop == nil {
		v := true
		c.Notify.Desktop = &v
	}
	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
	if c.Log.File == "" {
		c.Log.File = DefaultLogFile
	}
}

// Default returns a config with every field at its default.
func Default() *Config {
	c := &Config{}
	c.SetDefault()
	return c
}

// SoundEnabled reports whether the chime should ring.
func (c *Config) SoundEnabled() bool { return c.Notify.Sound == nil || *c.Notify.Sound }

// DesktopEnabled reports whether desktop notifications are raised.
func (c *Config) DesktopEnabled() bool { return c.Notify.Desktop == nil || *c.Notify.Desktop }

// TickPeriod returns the engine tick period: the configured interval in test
// mode, DefaultTickInterval otherwise.
func (c *Config) TickPeriod() time.Duration {
	if c.Timer.TestMode && c.Timer.TickInterval.Duration > 0 {
		return c.Timer.TickInterval.Duration
	}
	return DefaultTickInterval
}

// LogLevel parses the configured level.
func (c *Config) LogLevel() (logger.Level, error) {
	return logger.ParseLevel(c.Log.Level)
}

// Load reads the file at path. A missing file yields defaults. The format
// is YAML for .yaml/.yml and TOML otherwise.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	return LoadBytes(data, formatOf(path))
}

// Format names a config file syntax.
type Format string

const (
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
)

func formatOf(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatTOML
	}
}

// LoadBytes decodes a config in the given format and fills defaults.
func LoadBytes(data []byte, format Format) (*Config, error) {
	var c Config
	switch format {
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&c); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("decoding yaml config: %w", err)
		}
	default:
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&c); err != nil {
			return nil, fmt.Errorf("decoding toml config: %w", err)
		}
	}
	c.SetDefault()
	return &c, nil
}

// ApplyEnv overrides fields from environment variables. lookup is
// os.LookupEnv outside tests.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvTestMode); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvTestMode, err)
		}
		c.Timer.TestMode = b
	}
	if v, ok := lookup(EnvStore); ok && v != "" {
		c.SetBackend(v)
	}
	if v, ok := lookup(EnvStorePath); ok && v != "" {
		c.Store.Path = v
	}
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		if _, err := logger.ParseLevel(v); err != nil {
			return fmt.Errorf("%s: %w", EnvLogLevel, err)
		}
		c.Log.Level = v
	}
	c.SetDefault()
	return nil
}

// SetBackend switches the store backend. A path still at the old
// backend's default moves to the new backend's default.
func (c *Config) SetBackend(backend string) {
	backend = strings.ToLower(backend)
	if c.Store.Path == defaultStorePath(c.Store.Backend) {
		c.Store.Path = defaultStorePath(backend)
	}
	c.Store.Backend = backend
}

func defaultStorePath(backend string) string {
	if backend == "sqlite" {
		return DefaultSQLitePath
	}
	return DefaultFilePath
}
