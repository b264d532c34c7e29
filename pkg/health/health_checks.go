package health

import (
	"fmt"
	"runtime"
	"time"
)

// RunState describes a running population as seen by SimulationCheck.
type RunState struct {
	Tick     int
	Finished bool
	LastStep time.Time
	Infected int
	Hosts    int
}

// SimulationCheck reports the serve loop as degraded when no tick has been
// taken for longer than stallAfter while the outbreak is still active, and
// unhealthy when the population is empty.
func SimulationCheck(state func() RunState, stallAfter time.Duration) CheckFunc {
	return func() Check {
		s := state()
		check := Check{
			Name: "simulation",
			Details: map[string]any{
				"tick":     s.Tick,
				"finished": s.Finished,
				"infected": s.Infected,
				"hosts":    s.Hosts,
			},
		}

		switch {
		case s.Hosts == 0:
			check.Status = StatusUnhealthy
			check.Message = "Population is empty"
		case s.Finished:
			check.Status = StatusHealthy
			check.Message = "Outbreak cleared"
		case !s.LastStep.IsZero() && time.Since(s.LastStep) > stallAfter:
			check.Status = StatusDegraded
			check.Message = fmt.Sprintf("No tick for %s", time.Since(s.LastStep).Round(time.Millisecond))
		default:
			check.Status = StatusHealthy
			check.Message = "Running"
		}

		return check
	}
}

// StreamCheck degrades once snapshot subscribers start missing updates
func StreamCheck(dropped func() uint64, subscribers func() int) CheckFunc {
	return func() Check {
		d := dropped()
		check := Check{
			Name: "stream",
			Details: map[string]any{
				"dropped":     d,
				"subscribers": subscribers(),
			},
		}

		if d > 0 {
			check.Status = StatusDegraded
			check.Message = "Subscribers are dropping snapshots"
		} else {
			check.Status = StatusHealthy
		}

		return check
	}
}

// MemoryCheck creates a health check for memory usage. A nil getUsage
// reads the runtime's own statistics.
func MemoryCheck(getUsage func() (alloc, sys uint64)) CheckFunc {
	if getUsage == nil {
		getUsage = runtimeMemory
	}
	return func() Check {
		check := Check{
			Name:    "memory",
			Details: make(map[string]any),
		}

		alloc, sys := getUsage()

		check.Details["alloc_bytes"] = alloc
		check.Details["sys_bytes"] = sys

		var usagePercent float64
		if sys > 0 {
			usagePercent = float64(alloc) / float64(sys) * 100
		}

		if usagePercent > 90 {
			check.Status = StatusDegraded
			check.Message = "High memory usage"
		} else {
			check.Status = StatusHealthy
			check.Message = "Memory usage normal"
		}

		return check
	}
}

func runtimeMemory() (alloc, sys uint64) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return m.Alloc, m.Sys
}
