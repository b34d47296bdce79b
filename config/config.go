// Package config loads planner and experiment settings from YAML.
package config

import (
	"errors"
	"fmt"
	"os"

	"pomcp/meta"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

var ErrInvalid = errors.New("invalid config")

type Config struct {
	Simulations int     `yaml:"simulations"`
	Depth       int     `yaml:"depth"`
	Exploration float64 `yaml:"exploration"`
	Goroutines  int     `yaml:"goroutines"`
	Seed        uint64  `yaml:"seed"` // 0 draws a random seed
	Episodes    int     `yaml:"episodes"`
	MaxSteps    int     `yaml:"max_steps"`
	OutputDir   string  `yaml:"output_dir"`
	LogLevel    string  `yaml:"log_level"`
	MetricsAddr string  `yaml:"metrics_addr,omitempty"`
}

func Default() Config {
	return Config{
		Simulations: meta.SIMULATIONS,
		Depth:       meta.DEPTH,
		Exploration: meta.EXPLORATION,
		Goroutines:  meta.GO_ROUTINES,
		Episodes:    meta.EPISODES,
		MaxSteps:    meta.MAX_STEPS,
		OutputDir:   "experiments/results",
		LogLevel:    "info",
	}
}

// Load reads path over the defaults; keys missing from the file keep their
// default value.
func Load(path string) (Config, error) {
	c := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return c, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &c); err != nil {
		return c, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return c, c.Validate()
}

func (c Config) Validate() error {
	switch {
	case c.Simulations < 1:
		return fmt.Errorf("%w: simulations must be at least 1, got %d", ErrInvalid, c.Simulations)
	case c.Depth < 0:
		return fmt.Errorf("%w: depth must not be negative, got %d", ErrInvalid, c.Depth)
	case c.Exploration < 0:
		return fmt.Errorf("%w: exploration must not be negative, got %g", ErrInvalid, c.Exploration)
	case c.Goroutines < 1:
		return fmt.Errorf("%w: goroutines must be at least 1, got %d", ErrInvalid, c.Goroutines)
	case c.Episodes < 1:
		return fmt.Errorf("%w: episodes must be at least 1, got %d", ErrInvalid, c.Episodes)
	case c.MaxSteps < 1:
		return fmt.Errorf("%w: max_steps must be at least 1, got %d", ErrInvalid, c.MaxSteps)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

func (c Config) Level() (zerolog.Level, error) {
	level, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil {
		return zerolog.InfoLevel, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return level, nil
}
