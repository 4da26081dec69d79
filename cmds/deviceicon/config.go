package main

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/safing/audioicons/service/deviceicon"
)

// Config is the YAML configuration of the tool.
type Config struct {
	Cache struct {
		Expiration    time.Duration `yaml:"expiration"`
		SweepInterval time.Duration `yaml:"sweep-interval"`
		Capacity      int           `yaml:"capacity"`
	} `yaml:"cache"`

	Icons struct {
		LargeSize int `yaml:"large-size"`
		SmallSize int `yaml:"small-size"`
	} `yaml:"icons"`

	Log struct {
		Level string `yaml:"level"`
		// Dir enables logging to files in the given directory.
		Dir string `yaml:"dir"`
	} `yaml:"log"`
}

// LoadConfig loads the config at path. An empty path returns the defaults.
func LoadConfig(path string) (*Config, error) {
	cfg := &Config{}
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	opts := cfg.Options()
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Options returns the provider options of the config.
func (cfg *Config) Options() deviceicon.Options {
	return deviceicon.Options{
		Expiration:    cfg.Cache.Expiration,
		SweepInterval: cfg.Cache.SweepInterval,
		Capacity:      cfg.Cache.Capacity,
		LargeSize:     cfg.Icons.LargeSize,
		SmallSize:     cfg.Icons.SmallSize,
	}
}
