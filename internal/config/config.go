// Package config loads the application settings and the per-match roster
// book the engines consume. Both are loaded once at startup and passed
// into the pipeline explicitly; nothing reads them as global state.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config holds the application settings. Field defaults mirror the
// canonical analysis parameters.
type Config struct {
	DataDir    string  `koanf:"data_dir"`    // directory of DFL match XML files
	OutDir     string  `koanf:"out_dir"`     // report and heatmap output
	RosterFile string  `koanf:"roster_file"` // per-match roster book (YAML)
	CellSize   float64 `koanf:"cell_size"`   // occupancy bin edge length in metres
	Sigma      float64 `koanf:"sigma"`       // gaussian smoothing bandwidth in bins
	Roles      int     `koanf:"roles"`       // latent roles K
	MaxIter    int     `koanf:"max_iter"`    // factorization iteration cap
	Tol        float64 `koanf:"tol"`         // factorization convergence tolerance
	Seed       int64   `koanf:"seed"`        // factorization init seed
	Verbose    bool    `koanf:"verbose"`
}

// Default returns the built-in defaults.
func Default() *Config {
	return &Config{
		DataDir:    "data",
		OutDir:     "out",
		RosterFile: "config/rosters.yaml",
		CellSize:   5,
		Sigma:      1,
		Roles:      10,
		MaxIter:    500,
		Tol:        1e-4,
		Seed:       42,
	}
}

// Load builds a Config by layering configuration sources.
// Order of precedence (low -> high):
//  1. defaults
//  2. YAML file (path argument, or FORMATIONS_CONFIG when path is empty)
//  3. environment variables with prefix FORMATIONS_
func Load(path string) (*Config, error) {
	cfg := *Default()
	k := koanf.New(".")

	if path == "" {
		path = os.Getenv("FORMATIONS_CONFIG")
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file: %w", err)
		}
	}

	// FORMATIONS_CELL_SIZE -> cell_size, etc.
	envProvider := env.Provider("FORMATIONS_", ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, "FORMATIONS_"))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, err
	}

	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the configuration values.
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return errors.New("data_dir must not be empty")
	}
	if c.CellSize <= 0 {
		return fmt.Errorf("cell_size must be positive, got %v", c.CellSize)
	}
	if c.Sigma < 0 {
		return fmt.Errorf("sigma must not be negative, got %v", c.Sigma)
	}
	if c.Roles < 1 {
		return fmt.Errorf("roles must be at least 1, got %d", c.Roles)
	}
	if c.MaxIter < 1 {
		return fmt.Errorf("max_iter must be at least 1, got %d", c.MaxIter)
	}
	return nil
}
