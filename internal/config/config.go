// Package config loads simulation settings from a TOML file with
// sensible defaults for every field.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/protheus99/econsim-sub000/internal/market"
)

// Config is the full simulation configuration.
type Config struct {
	Seed         int64         `toml:"seed"`
	TickInterval time.Duration `toml:"tick_interval"` // wall-clock time per driver firing
	Speed        int           `toml:"speed"`         // simulated hours per firing

	API     APIConfig     `toml:"api"`
	Market  market.Config `toml:"market"`
	Events  EventsConfig  `toml:"events"`
	Growth  GrowthConfig  `toml:"growth"`
	Archive ArchiveConfig `toml:"archive"`
}

// APIConfig configures the HTTP read surface.
type APIConfig struct {
	Port     int    `toml:"port"`
	AdminKey string `toml:"admin_key"` // empty disables the control surface
}

// EventsConfig tunes daily low-probability event injection.
type EventsConfig struct {
	SupplyShockProb float64 `toml:"supply_shock_prob"`
	DemandSurgeProb float64 `toml:"demand_surge_prob"`
}

// GrowthConfig tunes the monthly city/country drift.
type GrowthConfig struct {
	PopulationRate float64 `toml:"population_rate"` // fractional per month
	SalaryDrift    float64 `toml:"salary_drift"`
}

// ArchiveConfig enables the optional SQLite trade archive.
type ArchiveConfig struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
}

// Default returns the standard configuration.
func Default() Config {
	return Config{
		Seed:         42,
		TickInterval: time.Second,
		Speed:        1,
		API: APIConfig{
			Port: 8080,
		},
		Market: market.DefaultConfig(),
		Events: EventsConfig{
			SupplyShockProb: 0.02,
			DemandSurgeProb: 0.03,
		},
		Growth: GrowthConfig{
			PopulationRate: 0.002,
			SalaryDrift:    0.001,
		},
		Archive: ArchiveConfig{
			Path: "data/trades.db",
		},
	}
}

// Load reads a TOML config file over the defaults. A missing file is
// not an error — defaults apply. ECONSIM_ADMIN_KEY overrides the file.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
			// fall through to defaults
		case err != nil:
			return cfg, fmt.Errorf("read config: %w", err)
		default:
			if err := toml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("parse config: %w", err)
			}
		}
	}

	if key := os.Getenv("ECONSIM_ADMIN_KEY"); key != "" {
		cfg.API.AdminKey = key
	}
	return cfg, nil
}
