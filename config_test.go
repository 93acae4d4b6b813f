package main

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfigIsValid(t *testing.T) {
	t.Parallel()

	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

func TestConfig_Validate(t *testing.T) {
	t.Parallel()

	testCases := map[string]struct {
		mutate func(*Config)
	}{
		"zero cell size":   {mutate: func(c *Config) { c.Grid.CellSize = 0 }},
		"negative width":   {mutate: func(c *Config) { c.Grid.Width = -1 }},
		"zero height":      {mutate: func(c *Config) { c.Grid.Height = 0 }},
		"bad connectivity": {mutate: func(c *Config) { c.Grid.Connectivity = 6 }},
		"no workers":       {mutate: func(c *Config) { c.Server.Workers = 0 }},
		"no queue":         {mutate: func(c *Config) { c.Server.QueueSize = 0 }},
		"negative epsilon": {mutate: func(c *Config) { c.Zones.SimplifyEpsilon = -0.5 }},
	}

	for name, tc := range testCases {
		tc := tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			cfg := DefaultConfig()
			tc.mutate(&cfg)
			if err := cfg.Validate(); !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestLoadConfig(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	filename := filepath.Join(dir, "planner.yaml")
	content := `
server:
  addr: ":9090"
  requestTimeout: 250ms
grid:
  origin: {x: -10, y: -20}
  width: 40
  height: 30
  cellSize: 2
  connectivity: 4
search:
  compressPath: true
`
	if err := os.WriteFile(filename, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(filename)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if cfg.Server.Addr != ":9090" {
		t.Errorf("expected addr :9090, got %q", cfg.Server.Addr)
	}
	if cfg.Server.RequestTimeout != 250*time.Millisecond {
		t.Errorf("expected 250ms timeout, got %v", cfg.Server.RequestTimeout)
	}
	if cfg.Server.Workers != DefaultConfig().Server.Workers {
		t.Errorf("expected default workers to survive, got %d", cfg.Server.Workers)
	}
	if cfg.Grid.Origin != (Point{X: -10, Y: -20}) || cfg.Grid.CellSize != 2 || cfg.Grid.Connectivity != 4 {
		t.Errorf("unexpected grid config %+v", cfg.Grid)
	}
	if !cfg.Grid.CornerCutting {
		t.Error("expected default corner cutting to survive")
	}
	if !cfg.Search.CompressPath {
		t.Error("expected compressPath from file")
	}
}

func TestLoadConfig_Errors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	if _, err := LoadConfig(filepath.Join(dir, "missing.yaml")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected not-exist error, got %v", err)
	}

	invalid := filepath.Join(dir, "invalid.yaml")
	if err := os.WriteFile(invalid, []byte("grid:\n  cellSize: -1\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(invalid); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}

	garbage := filepath.Join(dir, "garbage.yaml")
	if err := os.WriteFile(garbage, []byte("grid: [unterminated"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(garbage); err == nil {
		t.Error("expected YAML error")
	}
}

func TestWriteConfig_RoundTrip(t *testing.T) {
	t.Parallel()

	filename := filepath.Join(t.TempDir(), "planner.yaml")
	cfg := DefaultConfig()
	cfg.Grid.Origin = Point{X: 3, Y: 4}
	cfg.Search.Debug = true
	cfg.Server.RequestTimeout = 1500 * time.Millisecond

	if err := WriteConfig(filename, cfg); err != nil {
		t.Fatalf("WriteConfig: %v", err)
	}
	loaded, err := LoadConfig(filename)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if loaded != cfg {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", loaded, cfg)
	}
}
