package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dd0wney/virusnet/pkg/epidemic"
	"github.com/dd0wney/virusnet/pkg/logging"
	"github.com/dd0wney/virusnet/pkg/randvar"
	"github.com/dd0wney/virusnet/pkg/report"
	"github.com/dd0wney/virusnet/pkg/topology"
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run one simulation until the outbreak clears",
		Long: `Seed a population from the effective configuration and step it until no
host is infected, --steps is reached or the process is interrupted.

Formats:
  summary  final state box on stdout (default)
  jsonl    one snapshot per tick as JSON lines

Examples:
  virusnet run --nodes 200 --outbreak 10 --seed 7
  virusnet run --format jsonl --output trace.jsonl --steps 500`,
		RunE: func(cmd *cobra.Command, args []string) error {
			steps, _ := cmd.Flags().GetInt("steps")
			format, _ := cmd.Flags().GetString("format")
			output, _ := cmd.Flags().GetString("output")

			if format != "summary" && format != "jsonl" {
				return fmt.Errorf("unknown format %q (want summary or jsonl)", format)
			}

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			logger := newLogger(cmd)

			out := cmd.OutOrStdout()
			if output != "" {
				f, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("failed to create output: %w", err)
				}
				defer f.Close()
				out = f
			}

			observers := []epidemic.Observer{report.NewLoggerSink(logger)}
			var lines *report.JSONLines
			if format == "jsonl" {
				lines = report.NewJSONLines(out)
				observers = append(observers, lines)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			pop, err := epidemic.New(cfg, randvar.New(cfg.Seed),
				epidemic.WithLogger(logger),
				epidemic.WithObserver(observers...),
			)
			if err != nil {
				return err
			}

			// Cancellation is the only error; the partial run is still reported.
			if advanced, err := pop.RunUntilClear(ctx, steps); err != nil {
				logger.Warn("run interrupted", logging.Tick(pop.Tick()), logging.Count(advanced), logging.Error(err))
			}

			if lines != nil {
				return lines.Err()
			}
			return writeSummary(out, pop)
		},
	}

	cmd.Flags().Int("steps", 0, "Maximum ticks to run (0 runs until clear)")
	cmd.Flags().String("format", "summary", "Output format: summary or jsonl")
	cmd.Flags().StringP("output", "o", "", "Write output to a file instead of stdout")

	return cmd
}

func writeSummary(w io.Writer, pop *epidemic.Population) error {
	_, err := fmt.Fprintln(w, report.RenderSummary(pop.Snapshot(), topology.Stats(pop.Topology())))
	return err
}
