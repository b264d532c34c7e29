// Package config holds the simulation parameters, their defaults and the
// YAML/environment loading used by the command line tools.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/dd0wney/virusnet/pkg/memory"
)

// ErrInvalidConfig is wrapped by every structural validation failure.
var ErrInvalidConfig = errors.New("invalid configuration")

// AgeRange bounds the uniformly drawn host age, in years.
type AgeRange struct {
	Min int `yaml:"min" validate:"gte=0"`
	Max int `yaml:"max" validate:"gte=0"`
}

// Config is the full parameter surface of a run. Probabilities are not
// range-checked: values outside [0, 1] simply make draws always or never
// succeed.
type Config struct {
	NodeCount            int     `yaml:"node_count" validate:"gte=0"`
	AverageDegree        float64 `yaml:"average_degree" validate:"gte=0"`
	InitialOutbreakSize  int     `yaml:"initial_outbreak_size" validate:"gte=0"`
	InitialAntivirusSize int     `yaml:"initial_antivirus_size" validate:"gte=0"`
	InitialDeadCount     int     `yaml:"initial_dead_count" validate:"gte=0"`

	VirusSpreadChance         float64 `yaml:"virus_spread_chance"`
	VirusCheckFrequency       float64 `yaml:"virus_check_frequency"`
	AntivirusCheckFrequency   float64 `yaml:"antivirus_check_frequency"`
	AntivirusStalenessChance  float64 `yaml:"antivirus_staleness_chance"`
	BaseRecoveryChance        float64 `yaml:"base_recovery_chance"`
	GainResistanceChanceVirus float64 `yaml:"gain_resistance_chance_virus"`
	GainResistanceChanceHost  float64 `yaml:"gain_resistance_chance_computer"`

	PortKeySpace int      `yaml:"port_key_space" validate:"gte=0"`
	AgeRange     AgeRange `yaml:"computer_age_range"`
	GridRows     int      `yaml:"grid_rows" validate:"gte=1"`
	GridCols     int      `yaml:"grid_cols" validate:"gte=1"`

	Seed uint64 `yaml:"seed"`
}

// Default returns the parameters of the reference model.
func Default() Config {
	return Config{
		NodeCount:            20,
		AverageDegree:        3,
		InitialOutbreakSize:  5,
		InitialAntivirusSize: 4,
		InitialDeadCount:     0,

		VirusSpreadChance:         0.2,
		VirusCheckFrequency:       0.3,
		AntivirusCheckFrequency:   0.4,
		AntivirusStalenessChance:  0.2,
		BaseRecoveryChance:        0.3,
		GainResistanceChanceVirus: 0.5,
		GainResistanceChanceHost:  1.0,

		PortKeySpace: 50,
		AgeRange:     AgeRange{Min: 0, Max: 12},
		GridRows:     memory.DefaultRows,
		GridCols:     memory.DefaultCols,

		Seed: 1,
	}
}

// Load reads a YAML file on top of the defaults. Keys missing from the file
// keep their default value.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return cfg, nil
}

// Marshal renders cfg as YAML.
func (c Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}

// Normalize clamps seed counts to the node count and repairs inverted or
// negative bounds. It never fails and returns the names of the fields it
// changed so callers can log them.
func (c *Config) Normalize() (clamped []string) {
	clamp := func(name string, v *int) {
		if *v > c.NodeCount {
			*v = c.NodeCount
			clamped = append(clamped, name)
		}
		if *v < 0 {
			*v = 0
			clamped = append(clamped, name)
		}
	}
	clamp("initial_outbreak_size", &c.InitialOutbreakSize)
	clamp("initial_antivirus_size", &c.InitialAntivirusSize)
	clamp("initial_dead_count", &c.InitialDeadCount)

	if c.AgeRange.Max < c.AgeRange.Min {
		c.AgeRange.Min, c.AgeRange.Max = c.AgeRange.Max, c.AgeRange.Min
		clamped = append(clamped, "computer_age_range")
	}
	if c.PortKeySpace < 0 {
		c.PortKeySpace = 0
		clamped = append(clamped, "port_key_space")
	}
	if c.GridRows < 1 {
		c.GridRows = 1
		clamped = append(clamped, "grid_rows")
	}
	if c.GridCols < 1 {
		c.GridCols = 1
		clamped = append(clamped, "grid_cols")
	}
	return clamped
}
