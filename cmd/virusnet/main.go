// Command virusnet simulates a computer virus and its antivirus
// countermeasure spreading over a random network of machines.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	version = "0.1.0-dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "virusnet",
		Short: "Virus and antivirus propagation over a random network",
		Long: `virusnet simulates a computer virus and an antivirus countermeasure
spreading across a randomly generated network of machines, tracking every
host's health state tick by tick.

Configuration is layered: built-in defaults, then --config FILE, then
VIRUSNET_* environment variables, then command-line flags.`,
		SilenceUsage: true,
	}

	// Global flags
	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "YAML configuration file")
	flags.String("log-level", "", "Log level (debug, info, warn, error); defaults to $VIRUSNET_LOG_LEVEL or info")
	flags.Bool("json", false, "Output as JSON")
	flags.Int("nodes", 0, "Override node_count")
	flags.Float64("degree", 0, "Override average_degree")
	flags.Int("outbreak", 0, "Override initial_outbreak_size")
	flags.Int("antivirus", 0, "Override initial_antivirus_size")
	flags.Int("dead", 0, "Override initial_dead_count")
	flags.Float64("spread", 0, "Override virus_spread_chance")
	flags.Uint64("seed", 0, "Override seed")

	rootCmd.AddCommand(
		newVersionCmd(),
		newRunCmd(),
		newEnsembleCmd(),
		newServeCmd(),
		newTopologyCmd(),
		newConfigCmd(),
	)

	return rootCmd
}
