// Package config handles pmtool configuration loading and management.
package config

import (
	"fmt"
	"strings"
)

// Config holds all pmtool settings.
type Config struct {
	Simplify SimplifyConfig `yaml:"simplify"`
	LOD      LODConfig      `yaml:"lod"`
	Output   OutputConfig   `yaml:"output"`
	Archive  ArchiveConfig  `yaml:"archive"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// SimplifyConfig holds collapse engine settings.
type SimplifyConfig struct {
	Method         string  `yaml:"method"`          // binary, midpoint or quadric
	Threshold      float64 `yaml:"threshold"`       // 0 = automatic, negative = edges only
	ThresholdScale float64 `yaml:"threshold_scale"` // multiplier of the average edge length
	AllowFins      bool    `yaml:"allow_fins"`
	Aggressive     bool    `yaml:"aggressive"`
	StrictEdges    bool    `yaml:"strict_edges"`
	Seed           int64   `yaml:"seed"`
	Debug          bool    `yaml:"debug"` // fail on invariant violations
}

// LODConfig holds level of detail navigation steps.
type LODConfig struct {
	StepMultiplier float64 `yaml:"step_multiplier"` // fraction used by grow and shrink
	StepIncrement  float64 `yaml:"step_increment"`  // vertices per step
}

// OutputConfig holds progressive mesh output settings.
type OutputConfig struct {
	Format string `yaml:"format"` // text or binary
}

// ArchiveConfig holds the progressive mesh catalogue location.
type ArchiveConfig struct {
	Path string `yaml:"path"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Simplify: SimplifyConfig{
			Method:         "quadric",
			Threshold:      0,
			ThresholdScale: 5,
			Seed:           1,
		},
		LOD: LODConfig{
			StepMultiplier: 1.0 / 32.0,
			StepIncrement:  1.0 / 16.0,
		},
		Output: OutputConfig{
			Format: "text",
		},
		Archive: ArchiveConfig{
			Path: "pmarchive.db",
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// Validate reports settings no command could run with.
func (c *Config) Validate() error {
	switch strings.ToLower(c.Simplify.Method) {
	case "binary", "midpoint", "quadric":
	default:
		return fmt.Errorf("simplify.method: unknown method %q", c.Simplify.Method)
	}
	if c.Simplify.ThresholdScale <= 0 {
		return fmt.Errorf("simplify.threshold_scale must be positive, got %v", c.Simplify.ThresholdScale)
	}
	switch c.Output.Format {
	case "text", "binary":
	default:
		return fmt.Errorf("output.format: expected text or binary, got %q", c.Output.Format)
	}
	if c.LOD.StepMultiplier < 0 || c.LOD.StepIncrement < 0 {
		return fmt.Errorf("lod steps must not be negative")
	}
	return nil
}
