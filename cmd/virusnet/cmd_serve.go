package main

import (
	"context"
	"errors"
	"time"

	"github.com/spf13/cobra"

	"github.com/dd0wney/virusnet/pkg/health"
	"github.com/dd0wney/virusnet/pkg/logging"
	"github.com/dd0wney/virusnet/pkg/metrics"
	"github.com/dd0wney/virusnet/pkg/report"
	"github.com/dd0wney/virusnet/pkg/server"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run a live simulation behind an HTTP API",
		Long: `Tick a population every --interval and expose it over HTTP: snapshots,
history, a server-sent event stream, health checks and Prometheus metrics.

SIGHUP reloads the configuration and restarts the run. SIGINT and SIGTERM
drain connections for at most --shutdown-timeout.

Examples:
  virusnet serve --addr :8080 --interval 250ms
  virusnet serve --config sim.yaml --restart`,
		RunE: func(cmd *cobra.Command, args []string) error {
			addr, _ := cmd.Flags().GetString("addr")
			interval, _ := cmd.Flags().GetDuration("interval")
			history, _ := cmd.Flags().GetInt("history")
			restart, _ := cmd.Flags().GetBool("restart")
			timeout, _ := cmd.Flags().GetDuration("shutdown-timeout")

			if interval <= 0 {
				return errors.New("--interval must be positive")
			}

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			logger := newLogger(cmd)
			registry := metrics.NewRegistry()

			session, err := server.NewSession(cfg, server.SessionOptions{
				History: history,
				Restart: restart,
				Sinks:   []report.Sink{report.NewMetricsSink(registry), report.NewLoggerSink(logger)},
				Logger:  logger,
			})
			if err != nil {
				return err
			}
			defer session.Close()

			checker := newHealthChecker(session, 10*interval)
			gs := server.NewGracefulServer(addr, server.Routes{
				Session: session,
				Health:  checker,
				Metrics: registry,
			}.Handler(), logger)
			gs.SetReloadFunc(func() error {
				next, err := loadConfig(cmd)
				if err != nil {
					return err
				}
				return session.Reset(next)
			})

			ctx := server.HandleSignals(cmd.Context(), gs)
			ctx, cancel := context.WithCancel(ctx)
			defer cancel()

			go func() {
				if err := session.Run(ctx, interval); err != nil {
					logger.Error("simulation loop stopped", logging.Error(err))
					cancel()
				}
			}()
			go reportSystemMetrics(ctx, registry, 15*time.Second)

			return gs.Serve(ctx, timeout)
		},
	}

	cmd.Flags().String("addr", ":8080", "HTTP listen address")
	cmd.Flags().Duration("interval", 500*time.Millisecond, "Time between ticks")
	cmd.Flags().Int("history", 1000, "Snapshots kept for /history (0 keeps all)")
	cmd.Flags().Bool("restart", false, "Start a new run with seed+1 once the outbreak clears")
	cmd.Flags().Duration("shutdown-timeout", 10*time.Second, "Connection drain timeout")

	return cmd
}

func newHealthChecker(session *server.Session, stallAfter time.Duration) *health.HealthChecker {
	checker := health.NewHealthChecker()

	simulation := health.SimulationCheck(session.RunState, stallAfter)
	stream := health.StreamCheck(session.Broker().Dropped, session.Subscribers)
	memory := health.MemoryCheck(nil)

	checker.RegisterCheck("simulation", simulation)
	checker.RegisterCheck("stream", stream)
	checker.RegisterCheck("memory", memory)
	checker.RegisterReadinessCheck("simulation", simulation)
	checker.RegisterLivenessCheck("memory", memory)
	return checker
}

func reportSystemMetrics(ctx context.Context, registry *metrics.Registry, every time.Duration) {
	start := time.Now()
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	registry.UpdateSystemMetrics(start)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			registry.UpdateSystemMetrics(start)
		}
	}
}
