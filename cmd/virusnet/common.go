package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/dd0wney/virusnet/pkg/config"
	"github.com/dd0wney/virusnet/pkg/logging"
)

// loadConfig layers defaults, the --config file, the environment and flag
// overrides, then validates the result.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg := config.Default()

	path, _ := cmd.Flags().GetString("config")
	if path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return cfg, err
		}
		cfg = loaded
	}

	if err := cfg.ApplyEnv(); err != nil {
		return cfg, err
	}
	applyFlags(cmd, &cfg)

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func applyFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	ints := []struct {
		name string
		dst  *int
	}{
		{"nodes", &cfg.NodeCount},
		{"outbreak", &cfg.InitialOutbreakSize},
		{"antivirus", &cfg.InitialAntivirusSize},
		{"dead", &cfg.InitialDeadCount},
	}
	for _, f := range ints {
		if flags.Changed(f.name) {
			*f.dst, _ = flags.GetInt(f.name)
		}
	}
	floats := []struct {
		name string
		dst  *float64
	}{
		{"degree", &cfg.AverageDegree},
		{"spread", &cfg.VirusSpreadChance},
	}
	for _, f := range floats {
		if flags.Changed(f.name) {
			*f.dst, _ = flags.GetFloat64(f.name)
		}
	}
	if flags.Changed("seed") {
		cfg.Seed, _ = flags.GetUint64("seed")
	}
}

// newLogger builds the stderr JSON logger. The flag wins over the
// environment.
func newLogger(cmd *cobra.Command) logging.Logger {
	logger := logging.NewJSONLogger(cmd.ErrOrStderr(), logging.InfoLevel)
	if level := os.Getenv(logging.EnvLevel); level != "" {
		logger.SetLevel(logging.ParseLevel(level))
	}
	if level, _ := cmd.Flags().GetString("log-level"); level != "" {
		logger.SetLevel(logging.ParseLevel(level))
	}
	return logger
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	return nil
}
