package epidemic

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dd0wney/virusnet/pkg/config"
	"github.com/dd0wney/virusnet/pkg/randvar"
	"github.com/dd0wney/virusnet/pkg/topology"
)

// newTestPopulation builds an all-susceptible population on a fixed graph
// with 4x4 grids.
func newTestPopulation(t *testing.T, n int, edges []topology.Edge, tweak func(*config.Config)) *Population {
	t.Helper()

	g, err := topology.FromEdges(n, edges)
	require.NoError(t, err)

	cfg := config.Default()
	cfg.NodeCount = n
	cfg.InitialOutbreakSize = 0
	cfg.InitialAntivirusSize = 0
	cfg.InitialDeadCount = 0
	cfg.GridRows = 4
	cfg.GridCols = 4
	if tweak != nil {
		tweak(&cfg)
	}

	p, err := New(cfg, randvar.New(cfg.Seed), WithProvider(topology.Fixed(g)))
	require.NoError(t, err)
	return p
}

// infectWith puts h into the infected state with a fresh strain and fills
// cells of its grid.
func infectWith(p *Population, h *Host, cells int) *Virus {
	v := p.newStrain(h)
	h.state = Infected
	h.virus = v
	h.grid.Clear()
	h.grid.SetRandomCellsOn(p.src, cells)
	p.recount()
	return v
}

func host(t *testing.T, p *Population, id int) *Host {
	t.Helper()
	h, err := p.Host(id)
	require.NoError(t, err)
	return h
}
