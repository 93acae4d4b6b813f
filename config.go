package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v2"
)

// ErrInvalidConfig is wrapped by every validation failure
var ErrInvalidConfig = errors.New("invalid config")

// Config is the on-disk configuration of the planner service
type Config struct {
	Server ServerConfig  `yaml:"server"`
	Grid   GridConfig    `yaml:"grid"`
	Search SearchOptions `yaml:"search"`
	Zones  ZonesConfig   `yaml:"zones"`
}

// ServerConfig controls the HTTP listener and request dispatcher
type ServerConfig struct {
	Addr           string        `yaml:"addr"`
	Workers        int           `yaml:"workers"`
	QueueSize      int           `yaml:"queueSize"`
	RequestTimeout time.Duration `yaml:"requestTimeout"`
}

// GridConfig describes the world region covered by the navigation grid
type GridConfig struct {
	Origin        Point   `yaml:"origin"` // Lower-left corner in world units
	Width         float64 `yaml:"width"`
	Height        float64 `yaml:"height"`
	CellSize      float64 `yaml:"cellSize"`
	Connectivity  int     `yaml:"connectivity"`  // 4 or 8
	CornerCutting bool    `yaml:"cornerCutting"` // Allow diagonals past blocked corners
}

// SearchOptions tunes path search and post-processing
type SearchOptions struct {
	CompressPath bool `yaml:"compressPath"` // Keep only direction-change waypoints
	Debug        bool `yaml:"debug"`        // Log per-search timing
}

// ZonesConfig points at GeoJSON zone files loaded at startup
type ZonesConfig struct {
	Dir             string  `yaml:"dir"`
	SimplifyEpsilon float64 `yaml:"simplifyEpsilon"` // 0 disables simplification
}

// DefaultConfig returns a config that serves a 100x100 open grid
func DefaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Addr:           ":8080",
			Workers:        4,
			QueueSize:      64,
			RequestTimeout: 5 * time.Second,
		},
		Grid: GridConfig{
			Width:         100,
			Height:        100,
			CellSize:      1,
			Connectivity:  8,
			CornerCutting: true,
		},
		Zones: ZonesConfig{
			Dir: "zones",
		},
	}
}

// Validate checks the grid section
func (c GridConfig) Validate() error {
	if c.CellSize <= 0 {
		return fmt.Errorf("%w: cellSize must be positive, got %v", ErrInvalidConfig, c.CellSize)
	}
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("%w: grid size must be positive, got %vx%v", ErrInvalidConfig, c.Width, c.Height)
	}
	if c.Connectivity != 4 && c.Connectivity != 8 {
		return fmt.Errorf("%w: connectivity must be 4 or 8, got %d", ErrInvalidConfig, c.Connectivity)
	}
	return nil
}

// Validate checks the whole config
func (c Config) Validate() error {
	if err := c.Grid.Validate(); err != nil {
		return err
	}
	if c.Server.Workers <= 0 {
		return fmt.Errorf("%w: workers must be positive, got %d", ErrInvalidConfig, c.Server.Workers)
	}
	if c.Server.QueueSize <= 0 {
		return fmt.Errorf("%w: queueSize must be positive, got %d", ErrInvalidConfig, c.Server.QueueSize)
	}
	if c.Zones.SimplifyEpsilon < 0 {
		return fmt.Errorf("%w: simplifyEpsilon must not be negative, got %v", ErrInvalidConfig, c.Zones.SimplifyEpsilon)
	}
	return nil
}

// LoadConfig reads a YAML config file on top of DefaultConfig
func LoadConfig(filename string) (Config, error) {
	cfg := DefaultConfig()
	inBytes, err := os.ReadFile(filename)
	if err != nil {
		return cfg, fmt.Errorf("os.ReadFile(%q): %w", filename, err)
	}
	if err := yaml.Unmarshal(inBytes, &cfg); err != nil {
		return cfg, fmt.Errorf("yaml.Unmarshal: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// WriteConfig writes cfg as YAML, truncating any existing file
func WriteConfig(filename string, cfg Config) error {
	outBytes, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("yaml.Marshal: %w", err)
	}
	if err := os.WriteFile(filename, outBytes, 0644); err != nil {
		return fmt.Errorf("os.WriteFile(%q): %w", filename, err)
	}
	return nil
}
