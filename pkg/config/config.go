// Package config provides configuration loading and management for the
// synthesis tooling. It handles loading configuration from YAML files and
// provides default values.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config represents the synthesis tool configuration loaded from YAML.
type Config struct {
	// Model parameters for the demonstration model the tool builds.
	Model struct {
		// Levels is the number of pyramid levels.
		Levels int `yaml:"levels"`

		// Downscale is the ratio between consecutive pyramid levels.
		Downscale float64 `yaml:"downscale"`

		// PatchBased selects the patch-grid reference frame variant.
		PatchBased bool `yaml:"patchBased"`

		// PatchHeight and PatchWidth give the patch size of the
		// patch-based variant.
		PatchHeight int `yaml:"patchHeight"`
		PatchWidth  int `yaml:"patchWidth"`
	} `yaml:"model"`

	// Synthesis parameters.
	Synthesis struct {
		// Level is the pyramid level to synthesize at; negative values
		// count from the end, -1 being the last level.
		Level int `yaml:"level"`

		// NRandom is the number of random instances to render.
		NRandom int `yaml:"nRandom"`

		// Seed seeds the random instance generator; 0 means time-seeded.
		Seed int64 `yaml:"seed"`

		// ModeRange is the sweep extent of mode sequences, in standard
		// deviations around the mean.
		ModeRange float64 `yaml:"modeRange"`

		// ModeSteps is the number of frames per mode sequence.
		ModeSteps int `yaml:"modeSteps"`
	} `yaml:"synthesis"`

	// Output parameters.
	Output struct {
		// Dir is the directory rendered instances are written to.
		Dir string `yaml:"dir"`

		// Format is the single-instance output format: png, jpg or bmp.
		Format string `yaml:"format"`

		// Verbose controls the level of logging output.
		Verbose bool `yaml:"verbose"`
	} `yaml:"output"`
}

// DefaultConfig returns a configuration with default values.
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Model.Levels = 2
	cfg.Model.Downscale = 2.0
	cfg.Model.PatchBased = false
	cfg.Model.PatchHeight = 8
	cfg.Model.PatchWidth = 8

	cfg.Synthesis.Level = -1
	cfg.Synthesis.NRandom = 4
	cfg.Synthesis.Seed = 0
	cfg.Synthesis.ModeRange = 3.0
	cfg.Synthesis.ModeSteps = 7

	cfg.Output.Dir = "instances"
	cfg.Output.Format = "png"
	cfg.Output.Verbose = true

	return cfg
}

// Validate checks the configuration for values the tool cannot work with.
func (c *Config) Validate() error {
	if c.Model.Levels < 1 {
		return fmt.Errorf("model.levels must be at least 1, got %d", c.Model.Levels)
	}
	if c.Model.Downscale <= 0 {
		return fmt.Errorf("model.downscale must be positive, got %g", c.Model.Downscale)
	}
	if c.Model.PatchBased && (c.Model.PatchHeight < 1 || c.Model.PatchWidth < 1) {
		return fmt.Errorf("invalid patch shape (%d, %d)", c.Model.PatchHeight, c.Model.PatchWidth)
	}
	if c.Synthesis.NRandom < 0 {
		return fmt.Errorf("synthesis.nRandom must be non-negative, got %d", c.Synthesis.NRandom)
	}
	if c.Synthesis.ModeSteps < 2 {
		return fmt.Errorf("synthesis.modeSteps must be at least 2, got %d", c.Synthesis.ModeSteps)
	}
	switch c.Output.Format {
	case "png", "jpg", "jpeg", "bmp":
	default:
		return fmt.Errorf("unsupported output format %q", c.Output.Format)
	}
	return nil
}

// LoadConfig loads configuration from a YAML file.
// If the file doesn't exist, it returns the default configuration.
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	return cfg, nil
}

// SaveConfig saves the configuration to a YAML file.
func SaveConfig(cfg *Config, configPath string) error {
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}

	return nil
}

// CreateDefaultConfigFile creates a default configuration file at the
// specified path.
func CreateDefaultConfigFile(configPath string) error {
	return SaveConfig(DefaultConfig(), configPath)
}
