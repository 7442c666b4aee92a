// Package config loads polycsg command line settings through viper.
package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Config holds the settings for a polycsg run.
// Values are populated from .polycsg.yaml, POLYCSG_* env vars, and CLI flags.
type Config struct {
	// Resolution is the number of segments used for spheres and cylinders.
	// Zero keeps the per-primitive defaults.
	Resolution int    `mapstructure:"resolution"`
	Output     string `mapstructure:"output"`
	Verbose    bool   `mapstructure:"verbose"`
}

// Load reads configuration from viper, applying built-in defaults for any
// values not set by config file, environment, or flags.
func Load() (Config, error) {
	viper.SetDefault("resolution", 0)
	viper.SetDefault("output", "out.stl")
	viper.SetDefault("verbose", false)

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: unmarshal: %w", err)
	}
	if cfg.Resolution < 0 {
		return Config{}, fmt.Errorf("config: resolution must not be negative, got %d", cfg.Resolution)
	}
	if cfg.Output == "" {
		return Config{}, fmt.Errorf("config: output path is empty")
	}
	return cfg, nil
}
