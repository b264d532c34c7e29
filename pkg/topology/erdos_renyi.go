package topology

import (
	"github.com/dd0wney/virusnet/pkg/randvar"
)

// Provider generates a topology with a target average degree.
type Provider interface {
	Generate(nodeCount int, avgDegree float64, src randvar.Source) (*Graph, error)
}

// ProviderFunc adapts a function to the Provider interface.
type ProviderFunc func(nodeCount int, avgDegree float64, src randvar.Source) (*Graph, error)

// Generate calls f.
func (f ProviderFunc) Generate(nodeCount int, avgDegree float64, src randvar.Source) (*Graph, error) {
	return f(nodeCount, avgDegree, src)
}

// ErdosRenyi is the G(n, p) provider with p = avgDegree / nodeCount.
type ErdosRenyi struct{}

// Generate draws every unordered node pair once and keeps it with
// probability p.
func (ErdosRenyi) Generate(nodeCount int, avgDegree float64, src randvar.Source) (*Graph, error) {
	g, err := New(nodeCount)
	if err != nil {
		return nil, err
	}
	if nodeCount < 2 {
		return g, nil
	}

	p := avgDegree / float64(nodeCount)
	for a := 0; a < nodeCount; a++ {
		for b := a + 1; b < nodeCount; b++ {
			if src.Float64() < p {
				if err := g.addEdge(a, b); err != nil {
					return nil, err
				}
			}
		}
	}

	g.finalize()
	return g, nil
}

// Fixed always returns the same graph, ignoring the requested size. It is
// used to replay a run on a known topology.
func Fixed(g *Graph) Provider {
	return ProviderFunc(func(int, float64, randvar.Source) (*Graph, error) {
		return g, nil
	})
}
