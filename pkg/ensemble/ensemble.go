// Package ensemble runs independent replicates of one configuration in
// parallel and summarizes their outcomes.
package ensemble

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"time"

	"github.com/dd0wney/virusnet/pkg/config"
	"github.com/dd0wney/virusnet/pkg/epidemic"
	"github.com/dd0wney/virusnet/pkg/logging"
	"github.com/dd0wney/virusnet/pkg/metrics"
	"github.com/dd0wney/virusnet/pkg/parallel"
	"github.com/dd0wney/virusnet/pkg/randvar"
	"github.com/dd0wney/virusnet/pkg/topology"
)

// ErrNoReplicates is returned when fewer than one replicate is requested.
var ErrNoReplicates = errors.New("at least one replicate is required")

// Options controls an ensemble run
type Options struct {
	Replicates int
	Workers    int // defaults to GOMAXPROCS
	MaxSteps   int // per replicate, <= 0 means until clear
	Provider   topology.Provider
	Logger     logging.Logger
	Metrics    *metrics.Registry
}

// Replicate is the outcome of one independent run. Replicate i runs with
// seed cfg.Seed+i.
type Replicate struct {
	Index    int             `json:"index" yaml:"index"`
	Seed     uint64          `json:"seed" yaml:"seed"`
	RunID    string          `json:"run_id" yaml:"run_id"`
	Ticks    int             `json:"ticks" yaml:"ticks"`
	Final    epidemic.Counts `json:"final" yaml:"final"`
	Peak     int             `json:"peak_infected" yaml:"peak_infected"`
	Cleared  bool            `json:"cleared" yaml:"cleared"`
	Duration time.Duration   `json:"duration_ns" yaml:"duration"`
	Err      string          `json:"error,omitempty" yaml:"error,omitempty"`
}

// Run executes opts.Replicates populations built from cfg on a worker pool.
// Replicates that fail are reported in the summary; the returned error is
// non-nil only when no replicate could run or ctx was cancelled.
func Run(ctx context.Context, cfg config.Config, opts Options) (*Summary, error) {
	if opts.Replicates < 1 {
		return nil, ErrNoReplicates
	}
	if opts.Workers <= 0 {
		opts.Workers = runtime.GOMAXPROCS(0)
	}
	if opts.Provider == nil {
		opts.Provider = topology.ErdosRenyi{}
	}
	if opts.Logger == nil {
		opts.Logger = logging.NewNopLogger()
	}
	logger := opts.Logger.With(logging.Component("ensemble"))

	timer := logging.StartTimer(logger, "ensemble")
	results, errs, err := parallel.Map(ctx, opts.Workers, opts.Replicates, logger,
		func(ctx context.Context, i int) (Replicate, error) {
			return runReplicate(ctx, cfg, i, opts, logger)
		})

	for i := range results {
		results[i].Index = i
		results[i].Seed = cfg.Seed + uint64(i)
		if errs[i] != nil {
			results[i].Err = errs[i].Error()
		}
		if opts.Metrics != nil {
			status := "ok"
			if errs[i] != nil {
				status = "error"
			}
			opts.Metrics.RecordReplicate(status, results[i].Duration)
		}
	}

	summary := Summarize(results)
	timer.End(logging.Int("replicates", opts.Replicates), logging.Int("failed", summary.Failed))

	if ctxErr := ctx.Err(); ctxErr != nil {
		return summary, ctxErr
	}
	if summary.Failed == opts.Replicates {
		return summary, fmt.Errorf("all replicates failed: %w", err)
	}
	return summary, nil
}

func runReplicate(ctx context.Context, cfg config.Config, i int, opts Options, logger logging.Logger) (Replicate, error) {
	start := time.Now()
	cfg.Seed += uint64(i)

	p, err := epidemic.New(cfg, randvar.New(cfg.Seed),
		epidemic.WithProvider(opts.Provider),
		epidemic.WithLogger(logger.With(logging.Seed(cfg.Seed))),
	)
	if err != nil {
		return Replicate{Duration: time.Since(start)}, fmt.Errorf("replicate %d: %w", i, err)
	}

	ticks, err := p.RunUntilClear(ctx, opts.MaxSteps)
	r := Replicate{
		RunID:    p.ID(),
		Ticks:    ticks,
		Final:    p.Counts(),
		Peak:     p.PeakInfected(),
		Cleared:  p.Counts().Infected == 0,
		Duration: time.Since(start),
	}

	if opts.Metrics != nil {
		switch {
		case err != nil:
			opts.Metrics.RecordRun(metrics.OutcomeCancelled)
		case r.Cleared:
			opts.Metrics.RecordRun(metrics.OutcomeCleared)
		default:
			opts.Metrics.RecordRun(metrics.OutcomeMaxSteps)
		}
	}
	if err != nil {
		return r, fmt.Errorf("replicate %d: %w", i, err)
	}
	return r, nil
}
