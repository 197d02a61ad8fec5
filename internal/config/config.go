// Package config centralizes all application configuration into typed structs.
//
// Go Learning Note — Configuration Management:
// Go projects typically manage configuration in one of these ways:
//  1. Struct literals with defaults (the baseline here)
//  2. Environment variables via os.Getenv() or "github.com/kelseyhightower/envconfig"
//  3. Config files (YAML/TOML) — here via "gopkg.in/yaml.v3"
//  4. Command-line flags via the standard "flag" package
//
// This service layers 3 over 1: NewDefaultConfig supplies every value, and an
// optional YAML file overrides the fields it mentions. Using typed structs
// (not raw strings/maps) gives compile-time safety and IDE autocompletion —
// strongly preferred in Go over untyped config.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level configuration container. Grouping related settings
// into sub-structs keeps the config organized as the application grows.
type Config struct {
	Server ServerConfig `yaml:"server"`
	Grid   GridConfig   `yaml:"grid"`
	Search SearchConfig `yaml:"search"`
}

// ServerConfig holds HTTP server settings.
//
// Go Learning Note — time.Duration:
// Go uses time.Duration (an int64 of nanoseconds) instead of raw integers for
// timeouts. You write "10 * time.Second", which is self-documenting, rather
// than guessing whether "10" means seconds or milliseconds. In the YAML file
// the timeouts are plain integer seconds; they're converted on load.
type ServerConfig struct {
	Port         string        `yaml:"port"`
	ReadTimeout  time.Duration `yaml:"-"`
	WriteTimeout time.Duration `yaml:"-"`

	ReadTimeoutSeconds  int `yaml:"read_timeout_seconds"`
	WriteTimeoutSeconds int `yaml:"write_timeout_seconds"`
}

// GridConfig describes the spatial index geometry: the covered region in
// geographic degrees and the cell edge length. The region must enclose every
// edge the service will ingest — segments outside it are silently clipped
// away, which is correct for strays but wrong for a mis-configured region.
type GridConfig struct {
	MinLat float64 `yaml:"min_lat"`
	MinLng float64 `yaml:"min_lng"`
	MaxLat float64 `yaml:"max_lat"`
	MaxLng float64 `yaml:"max_lng"`

	// CellSizeDegrees is the edge length of one grid cell, in degrees.
	// 0.005 degrees is roughly 550 m of latitude — cells small enough that
	// a candidate query reads only a handful of edges, large enough that a
	// city fits in a few hundred thousand cells.
	CellSizeDegrees float64 `yaml:"cell_size_degrees"`
}

// SearchConfig controls candidate search behavior.
type SearchConfig struct {
	DefaultRadiusMeters float64 `yaml:"default_radius_meters"`
	MaxRadiusMeters     float64 `yaml:"max_radius_meters"`
	MaxCandidates       int     `yaml:"max_candidates"`
}

// NewDefaultConfig returns a Config populated with sensible defaults: the
// San Francisco bay region with ~550 m cells.
//
// Go Learning Note — Constructor Functions:
// Go has no constructors. By convention, New<Type>() functions serve the same
// purpose. They return a pointer (*Config) so the caller gets a reference to
// shared state rather than copying the struct at every assignment.
func NewDefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         ":8080",
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
		},
		Grid: GridConfig{
			MinLat:          37.2,
			MinLng:          -122.6,
			MaxLat:          38.0,
			MaxLng:          -121.7,
			CellSizeDegrees: 0.005,
		},
		Search: SearchConfig{
			DefaultRadiusMeters: 100,
			MaxRadiusMeters:     5000,
			MaxCandidates:       20,
		},
	}
}

// LoadFromFile reads a YAML config file over the defaults: fields the file
// omits keep their default values, because yaml.Unmarshal only writes the
// keys it finds.
func LoadFromFile(path string) (*Config, error) {
	cfg := NewDefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}

	if cfg.Server.ReadTimeoutSeconds > 0 {
		cfg.Server.ReadTimeout = time.Duration(cfg.Server.ReadTimeoutSeconds) * time.Second
	}
	if cfg.Server.WriteTimeoutSeconds > 0 {
		cfg.Server.WriteTimeout = time.Duration(cfg.Server.WriteTimeoutSeconds) * time.Second
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects configurations the grid index constructor would refuse,
// so a bad file fails at startup with a config error instead of deep inside
// the index wiring.
func (c *Config) Validate() error {
	if c.Grid.MaxLat <= c.Grid.MinLat {
		return fmt.Errorf("config: grid latitude range [%v, %v] is empty", c.Grid.MinLat, c.Grid.MaxLat)
	}
	if c.Grid.MaxLng <= c.Grid.MinLng {
		return fmt.Errorf("config: grid longitude range [%v, %v] is empty", c.Grid.MinLng, c.Grid.MaxLng)
	}
	if c.Grid.CellSizeDegrees <= 0 {
		return fmt.Errorf("config: cell size %v must be positive", c.Grid.CellSizeDegrees)
	}
	if c.Search.MaxRadiusMeters < c.Search.DefaultRadiusMeters {
		return fmt.Errorf("config: max radius %v below default radius %v",
			c.Search.MaxRadiusMeters, c.Search.DefaultRadiusMeters)
	}
	if c.Search.MaxCandidates <= 0 {
		return fmt.Errorf("config: max candidates %d must be positive", c.Search.MaxCandidates)
	}
	return nil
}
