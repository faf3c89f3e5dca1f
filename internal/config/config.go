// Package config loads run parameters from a YAML file.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"gopkg.in/yaml.v3"

	"qtermsim/internal/sim"
)

// Config is the on-disk form of a run configuration.
type Config struct {
	Shots            int     `yaml:"shots"`
	ErrorProbability float64 `yaml:"error_probability"`
	// Seed 0 picks a seed from the clock, see ResolveSeed.
	Seed          uint64 `yaml:"seed"`
	ShotMode      string `yaml:"shot_mode"`
	MeasurePolicy string `yaml:"measure_policy"`
	LogLevel      string `yaml:"log_level"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Shots:         sim.DefaultShots,
		ShotMode:      sim.ShotFinal.String(),
		MeasurePolicy: sim.MeasureOr.String(),
		LogLevel:      "warn",
	}
}

// Load reads path over the defaults. Keys missing from the file keep their
// default values; unknown keys are an error.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML over the defaults and validates the result.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("yaml unmarshal: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Save writes cfg to path as YAML.
func Save(path string, cfg Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("yaml marshal: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// Validate checks every field without resolving the seed.
func (c Config) Validate() error {
	if c.Shots < 1 {
		return fmt.Errorf("shots must be positive, got %d", c.Shots)
	}
	if c.ErrorProbability < 0 || c.ErrorProbability > 1 {
		return fmt.Errorf("error_probability must be in [0,1], got %g", c.ErrorProbability)
	}
	if _, err := sim.ParseShotMode(c.ShotMode); err != nil {
		return err
	}
	if _, err := sim.ParseMeasurePolicy(c.MeasurePolicy); err != nil {
		return err
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// Level is the parsed log_level; empty means warn.
func (c Config) Level() (log.Level, error) {
	if strings.TrimSpace(c.LogLevel) == "" {
		return log.WarnLevel, nil
	}
	lvl, err := log.ParseLevel(strings.ToLower(c.LogLevel))
	if err != nil {
		return 0, fmt.Errorf("log_level: %w", err)
	}
	return lvl, nil
}

// ResolveSeed replaces a zero seed with one derived from now and returns
// the seed in effect.
func (c *Config) ResolveSeed(now time.Time) uint64 {
	if c.Seed == 0 {
		c.Seed = uint64(now.UnixNano())
	}
	return c.Seed
}

// Sim converts c to driver parameters. The seed is passed through as is.
func (c Config) Sim(logger *log.Logger) (sim.Config, error) {
	mode, err := sim.ParseShotMode(c.ShotMode)
	if err != nil {
		return sim.Config{}, err
	}
	policy, err := sim.ParseMeasurePolicy(c.MeasurePolicy)
	if err != nil {
		return sim.Config{}, err
	}
	return sim.Config{
		Shots:            c.Shots,
		ErrorProbability: c.ErrorProbability,
		Seed:             c.Seed,
		ShotMode:         mode,
		MeasurePolicy:    policy,
		Logger:           logger,
	}, nil
}
