// Package config loads the arena settings from YAML or TOML.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/zeusync/arena/internal/core/models"
	"github.com/zeusync/arena/internal/core/observability/log"
)

var ErrInvalidConfig = errors.New("invalid config")

type Config struct {
	Simulation SimulationConfig `yaml:"simulation" toml:"simulation"`
	Intervals  IntervalsConfig  `yaml:"intervals" toml:"intervals"`
	Queue      QueueConfig      `yaml:"queue" toml:"queue"`
	Logging    LoggingConfig    `yaml:"logging" toml:"logging"`
	Output     OutputConfig     `yaml:"output" toml:"output"`
	Roster     RosterConfig     `yaml:"roster" toml:"roster"`
	Journal    JournalConfig    `yaml:"journal" toml:"journal"`
	Spectator  SpectatorConfig  `yaml:"spectator" toml:"spectator"`
}

type SimulationConfig struct {
	Duration   time.Duration `yaml:"duration" toml:"duration"`
	Population int           `yaml:"population" toml:"population"`
	Seed       uint64        `yaml:"seed" toml:"seed"` // 0 = random
	Width      int           `yaml:"width" toml:"width"`
	Height     int           `yaml:"height" toml:"height"`
}

type IntervalsConfig struct {
	Movement time.Duration `yaml:"movement" toml:"movement"`
	Combat   time.Duration `yaml:"combat" toml:"combat"`
	Render   time.Duration `yaml:"render" toml:"render"`
}

type QueueConfig struct {
	Capacity int `yaml:"capacity" toml:"capacity"` // 0 = unbounded
}

type LoggingConfig struct {
	Level    string `yaml:"level" toml:"level" env:"ARENA_LOG_LEVEL"`
	Encoding string `yaml:"encoding" toml:"encoding" env:"ARENA_LOG_ENCODING"` // console or json
}

type OutputConfig struct {
	Console       bool   `yaml:"console" toml:"console"`   // kill lines on stdout
	KillLog       string `yaml:"kill_log" toml:"kill_log"` // kill lines appended to this file
	Render        bool   `yaml:"render" toml:"render"`
	SkipUnchanged bool   `yaml:"skip_unchanged" toml:"skip_unchanged"`
}

type RosterConfig struct {
	Load string `yaml:"load" toml:"load"`
	Save string `yaml:"save" toml:"save"`
}

type JournalConfig struct {
	Path string `yaml:"path" toml:"path" env:"ARENA_JOURNAL"` // sqlite file, empty disables
}

type SpectatorConfig struct {
	Addr   string `yaml:"addr" toml:"addr" env:"ARENA_SPECTATOR_ADDR"` // empty disables
	Buffer int    `yaml:"buffer" toml:"buffer"`
}

// Load reads the file at path, picking the decoder by extension, then
// applies the ARENA_* environment overrides. Missing keys keep their
// defaults. An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := Defaults()
	if path != "" {
		if err := decodeFile(path, cfg); err != nil {
			return nil, err
		}
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func decodeFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, cfg)
	case ".toml":
		err = toml.Unmarshal(data, cfg)
	default:
		return fmt.Errorf("%w: unsupported config format %q", ErrInvalidConfig, ext)
	}
	if err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	return nil
}

func Defaults() *Config {
	return &Config{
		Simulation: SimulationConfig{
			Duration:   30 * time.Second,
			Population: 50,
			Width:      100,
			Height:     100,
		},
		Intervals: IntervalsConfig{
			Movement: 100 * time.Millisecond,
			Combat:   50 * time.Millisecond,
			Render:   time.Second,
		},
		Logging: LoggingConfig{
			Level:    "info",
			Encoding: "console",
		},
		Output: OutputConfig{
			Console: true,
			Render:  true,
		},
		Spectator: SpectatorConfig{
			Buffer: 64,
		},
	}
}

// Validate reports every problem at once, each wrapped in ErrInvalidConfig.
func (c *Config) Validate() error {
	var errs []error
	add := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalidConfig}, args...)...))
	}

	s := c.Simulation
	if s.Duration < 0 {
		add("simulation.duration must not be negative")
	}
	if s.Population < 0 {
		add("simulation.population must not be negative")
	}
	if s.Width < 1 || s.Width > models.MaxCoord+1 {
		add("simulation.width must be in [1, %d], got %d", models.MaxCoord+1, s.Width)
	}
	if s.Height < 1 || s.Height > models.MaxCoord+1 {
		add("simulation.height must be in [1, %d], got %d", models.MaxCoord+1, s.Height)
	}

	if c.Intervals.Movement <= 0 || c.Intervals.Combat <= 0 || c.Intervals.Render <= 0 {
		add("intervals must be positive")
	}
	if c.Queue.Capacity < 0 {
		add("queue.capacity must not be negative")
	}
	if _, err := log.ParseLevel(c.Logging.Level); err != nil {
		add("logging.level: %v", err)
	}
	switch log.Encoding(c.Logging.Encoding) {
	case log.EncodingConsole, log.EncodingJSON:
	default:
		add("logging.encoding must be console or json, got %q", c.Logging.Encoding)
	}
	if c.Spectator.Buffer < 0 {
		add("spectator.buffer must not be negative")
	}

	return errors.Join(errs...)
}
