package config

import (
	"errors"
	"os"

	"gopkg.in/yaml.v3"

	"depot-twin/internal/physics/evaporation"
	"depot-twin/internal/physics/massbalance"
)

// Climate is the monthly temperature profile used for evaporation
// estimates. Twelve entries each; shorter slices fall back to the
// built-in tropical defaults.
type Climate struct {
	MonthlyAvgTempsC   []float64 `yaml:"monthly_avg_temps_c"`
	MonthlyTempRangesC []float64 `yaml:"monthly_temp_ranges_c"`
}

// Reporting holds loss-report valuation settings.
type Reporting struct {
	PricePerLitre float64 `yaml:"price_per_litre"`
	Currency      string  `yaml:"currency"`
	OutputDir     string  `yaml:"output_dir"`
}

// Config is the file-backed depot configuration. Product and vapor
// entries override the built-in tables per product code.
type Config struct {
	Products  map[string]massbalance.Properties      `yaml:"products"`
	Vapor     map[string]evaporation.VaporProperties `yaml:"vapor"`
	Climate   Climate                                `yaml:"climate"`
	Reporting Reporting                              `yaml:"reporting"`
}

// Load reads configuration from the file named by DEPOT_CONFIG, falling
// back to defaults when the variable is unset.
func Load() (Config, error) {
	cfg := Config{
		Reporting: Reporting{
			Currency:  "GHS",
			OutputDir: "var/reports",
		},
	}
	path := os.Getenv("DEPOT_CONFIG")
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	if cfg.Reporting.Currency == "" {
		cfg.Reporting.Currency = "GHS"
	}
	if cfg.Reporting.OutputDir == "" {
		return cfg, errors.New("config: reporting output dir required")
	}
	return cfg, nil
}

// ProductTable merges the built-in product constants with file overrides.
func (c Config) ProductTable() map[string]massbalance.Properties {
	table := massbalance.DefaultProperties()
	for code, props := range c.Products {
		table[code] = props
	}
	return table
}
