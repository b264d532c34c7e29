package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/dd0wney/virusnet/pkg/ensemble"
)

func newEnsembleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ensemble",
		Short: "Run independent replicates in parallel and aggregate them",
		Long: `Run --replicates populations built from the effective configuration, replicate
i using seed+i, and report the mean, minimum and maximum outcome across them.

Examples:
  virusnet ensemble --replicates 100 --workers 8
  virusnet ensemble --replicates 20 --format yaml --steps 1000`,
		RunE: func(cmd *cobra.Command, args []string) error {
			replicates, _ := cmd.Flags().GetInt("replicates")
			workers, _ := cmd.Flags().GetInt("workers")
			steps, _ := cmd.Flags().GetInt("steps")
			format, _ := cmd.Flags().GetString("format")
			if jsonOut, _ := cmd.Flags().GetBool("json"); jsonOut {
				format = "json"
			}

			switch format {
			case "table", "json", "yaml":
			default:
				return fmt.Errorf("unknown format %q (want table, json or yaml)", format)
			}

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			summary, err := ensemble.Run(ctx, cfg, ensemble.Options{
				Replicates: replicates,
				Workers:    workers,
				MaxSteps:   steps,
				Logger:     newLogger(cmd),
			})
			if summary == nil {
				return err
			}

			out := cmd.OutOrStdout()
			switch format {
			case "json":
				if werr := writeJSON(out, summary); werr != nil {
					return werr
				}
			case "yaml":
				enc := yaml.NewEncoder(out)
				enc.SetIndent(2)
				if werr := enc.Encode(summary); werr != nil {
					return fmt.Errorf("failed to encode output: %w", werr)
				}
				if werr := enc.Close(); werr != nil {
					return werr
				}
			default:
				fmt.Fprintln(out, summary.Render())
			}
			return err
		},
	}

	cmd.Flags().Int("replicates", 10, "Number of independent runs")
	cmd.Flags().Int("workers", 0, "Worker goroutines (0 uses GOMAXPROCS)")
	cmd.Flags().Int("steps", 0, "Maximum ticks per replicate (0 runs until clear)")
	cmd.Flags().String("format", "table", "Output format: table, json or yaml")

	return cmd
}
