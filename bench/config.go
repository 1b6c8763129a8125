package bench

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/goccy/go-yaml"
)

const (
	TargetSack   = "sack"
	TargetLocked = "locked"
)

var (
	ErrInvalidConfig = errors.New("invalid config")
	ErrUnknownTarget = errors.New("unknown target")
)

type Config struct {
	Workers     int    `yaml:"workers"`
	Iterations  int    `yaml:"iterations"`
	WakeEvery   int    `yaml:"wake_every"`
	Target      string `yaml:"target"`
	LogLevel    string `yaml:"log_level"`
	MetricsAddr string `yaml:"metrics_addr"`
}

// Mirrors the classic wake set benchmark: 4 threads, one wake per 16 steps.
func DefaultConfig() *Config {
	return &Config{
		Workers:    4,
		Iterations: 100_000,
		WakeEvery:  16,
		Target:     TargetSack,
		LogLevel:   "info",
	}
}

func (c *Config) Validate() error {
	if c.Workers <= 0 {
		return fmt.Errorf("%w: workers must be positive, got %d", ErrInvalidConfig, c.Workers)
	}
	if c.Iterations < 0 {
		return fmt.Errorf("%w: iterations must not be negative, got %d", ErrInvalidConfig, c.Iterations)
	}
	if c.WakeEvery <= 0 {
		return fmt.Errorf("%w: wake_every must be positive, got %d", ErrInvalidConfig, c.WakeEvery)
	}
	if c.Target != TargetSack && c.Target != TargetLocked {
		return fmt.Errorf("%w: %q", ErrUnknownTarget, c.Target)
	}
	return nil
}

// Decode overlays YAML from r onto c. Unknown keys are rejected.
func (c *Config) Decode(r io.Reader) error {
	dec := yaml.NewDecoder(r, yaml.Strict())
	if err := dec.Decode(c); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

// LoadConfig reads a file over DefaultConfig. Validation is left to Run so
// that flags can still fix the result.
func LoadConfig(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	c := DefaultConfig()
	if err := c.Decode(f); err != nil {
		return nil, err
	}
	return c, nil
}
