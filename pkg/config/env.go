package config

import (
	"fmt"
	"os"
	"strconv"
)

// EnvPrefix prefixes every environment override, e.g. VIRUSNET_NODE_COUNT.
const EnvPrefix = "VIRUSNET_"

// ApplyEnv overrides fields from VIRUSNET_* environment variables. Unset
// variables are ignored; malformed values are reported.
func (c *Config) ApplyEnv() error {
	return c.applyEnv(os.LookupEnv)
}

type intVar struct {
	name string
	dst  *int
}

type floatVar struct {
	name string
	dst  *float64
}

// applyEnv reads variables in declaration order, so the first malformed one
// is always the one reported.
func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	ints := []intVar{
		{"NODE_COUNT", &c.NodeCount},
		{"INITIAL_OUTBREAK_SIZE", &c.InitialOutbreakSize},
		{"INITIAL_ANTIVIRUS_SIZE", &c.InitialAntivirusSize},
		{"INITIAL_DEAD_COUNT", &c.InitialDeadCount},
		{"PORT_KEY_SPACE", &c.PortKeySpace},
		{"AGE_MIN", &c.AgeRange.Min},
		{"AGE_MAX", &c.AgeRange.Max},
		{"GRID_ROWS", &c.GridRows},
		{"GRID_COLS", &c.GridCols},
	}
	floats := []floatVar{
		{"AVERAGE_DEGREE", &c.AverageDegree},
		{"VIRUS_SPREAD_CHANCE", &c.VirusSpreadChance},
		{"VIRUS_CHECK_FREQUENCY", &c.VirusCheckFrequency},
		{"ANTIVIRUS_CHECK_FREQUENCY", &c.AntivirusCheckFrequency},
		{"ANTIVIRUS_STALENESS_CHANCE", &c.AntivirusStalenessChance},
		{"BASE_RECOVERY_CHANCE", &c.BaseRecoveryChance},
		{"GAIN_RESISTANCE_CHANCE_VIRUS", &c.GainResistanceChanceVirus},
		{"GAIN_RESISTANCE_CHANCE_COMPUTER", &c.GainResistanceChanceHost},
	}

	for _, iv := range ints {
		raw, ok := lookup(EnvPrefix + iv.name)
		if !ok {
			continue
		}
		v, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("%w: %s%s=%q is not an integer", ErrInvalidConfig, EnvPrefix, iv.name, raw)
		}
		*iv.dst = v
	}

	for _, fv := range floats {
		raw, ok := lookup(EnvPrefix + fv.name)
		if !ok {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return fmt.Errorf("%w: %s%s=%q is not a number", ErrInvalidConfig, EnvPrefix, fv.name, raw)
		}
		*fv.dst = v
	}

	if raw, ok := lookup(EnvPrefix + "SEED"); ok {
		v, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return fmt.Errorf("%w: %sSEED=%q is not an unsigned integer", ErrInvalidConfig, EnvPrefix, raw)
		}
		c.Seed = v
	}
	return nil
}
