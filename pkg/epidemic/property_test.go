package epidemic

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/dd0wney/virusnet/pkg/config"
	"github.com/dd0wney/virusnet/pkg/randvar"
)

// invariantsHold checks what must be true of a population between ticks.
func invariantsHold(p *Population, wasDead []bool) bool {
	if p.Counts().Total() != p.Size() {
		return false
	}
	for id := 0; id < p.Size(); id++ {
		h := &p.hosts[id]
		if wasDead[id] && h.state != Dead {
			return false
		}
		switch h.state {
		case Resistant:
			if !h.grid.IsLocked() || !h.virus.IsDormant() {
				return false
			}
		case Dead:
			if !h.grid.IsSaturated() {
				return false
			}
		case Infected:
			if h.virus.IsDormant() {
				return false
			}
		}
		wasDead[id] = h.state == Dead
	}
	return p.PeakInfected() >= p.Counts().Infected
}

// TestPopulationInvariants drives random populations through several ticks
func TestPopulationInvariants(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping property-based test in short mode")
	}

	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 40

	properties := gopter.NewProperties(parameters)

	properties.Property("counts, terminal death and grid states hold every tick", prop.ForAll(
		func(seed uint64, nodes, outbreak, antivirus, dead int) bool {
			cfg := config.Default()
			cfg.NodeCount = nodes
			cfg.InitialOutbreakSize = outbreak
			cfg.InitialAntivirusSize = antivirus
			cfg.InitialDeadCount = dead
			cfg.GridRows = 8
			cfg.GridCols = 8

			p, err := New(cfg, randvar.New(seed))
			if err != nil {
				return false
			}

			wasDead := make([]bool, p.Size())
			if !invariantsHold(p, wasDead) {
				return false
			}
			for i := 0; i < 25 && p.Step(); i++ {
				if !invariantsHold(p, wasDead) {
					return false
				}
			}
			return true
		},
		gen.UInt64(),
		gen.IntRange(1, 40),
		gen.IntRange(0, 10),
		gen.IntRange(0, 10),
		gen.IntRange(0, 5),
	))

	properties.Property("clamped seeds never exceed the population", prop.ForAll(
		func(seed uint64, nodes, outbreak int) bool {
			cfg := config.Default()
			cfg.NodeCount = nodes
			cfg.InitialOutbreakSize = outbreak
			cfg.InitialAntivirusSize = 0
			cfg.InitialDeadCount = 0
			cfg.GridRows = 2
			cfg.GridCols = 2

			p, err := New(cfg, randvar.New(seed))
			if err != nil {
				return false
			}
			want := outbreak
			if want > nodes {
				want = nodes
			}
			return p.Counts().Infected == want
		},
		gen.UInt64(),
		gen.IntRange(1, 30),
		gen.IntRange(0, 60),
	))

	properties.TestingRun(t)
}
