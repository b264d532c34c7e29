package topology

import (
	"container/list"
	"sort"
)

// Component is a connected set of nodes
type Component struct {
	ID    int
	Nodes []int
	Size  int
}

// ComponentResult contains the connected components of a graph
type ComponentResult struct {
	Components    []*Component
	NodeComponent map[int]int // Node ID -> Component ID
}

// Largest returns the biggest component, or nil for an empty graph.
func (r *ComponentResult) Largest() *Component {
	var best *Component
	for _, c := range r.Components {
		if best == nil || c.Size > best.Size {
			best = c
		}
	}
	return best
}

// ConnectedComponents finds all connected components in the graph
func ConnectedComponents(g *Graph) *ComponentResult {
	visited := make([]bool, g.NodeCount())
	nodeComponent := make(map[int]int, g.NodeCount())
	components := make([]*Component, 0)
	componentID := 0

	// BFS to find each component
	for start := 0; start < g.NodeCount(); start++ {
		if visited[start] {
			continue
		}

		component := &Component{
			ID:    componentID,
			Nodes: make([]int, 0),
		}

		queue := list.New()
		queue.PushBack(start)
		visited[start] = true

		for queue.Len() > 0 {
			nodeID, ok := queue.Remove(queue.Front()).(int)
			if !ok {
				continue
			}
			component.Nodes = append(component.Nodes, nodeID)
			nodeComponent[nodeID] = componentID

			for _, n := range g.Neighbors(nodeID) {
				if !visited[n] {
					visited[n] = true
					queue.PushBack(n)
				}
			}
		}

		sort.Ints(component.Nodes)
		component.Size = len(component.Nodes)
		components = append(components, component)
		componentID++
	}

	return &ComponentResult{
		Components:    components,
		NodeComponent: nodeComponent,
	}
}

// Statistics summarizes the shape of a generated network
type Statistics struct {
	NodeCount      int     `json:"node_count" yaml:"node_count"`
	EdgeCount      int     `json:"edge_count" yaml:"edge_count"`
	AverageDegree  float64 `json:"average_degree" yaml:"average_degree"`
	MaxDegree      int     `json:"max_degree" yaml:"max_degree"`
	IsolatedNodes  int     `json:"isolated_nodes" yaml:"isolated_nodes"`
	Components     int     `json:"components" yaml:"components"`
	LargestCluster int     `json:"largest_component" yaml:"largest_component"`
}

// Stats computes degree and connectivity statistics for g.
func Stats(g *Graph) Statistics {
	stats := Statistics{
		NodeCount: g.NodeCount(),
		EdgeCount: g.EdgeCount(),
	}
	if stats.NodeCount == 0 {
		return stats
	}

	for id := 0; id < g.NodeCount(); id++ {
		d := g.Degree(id)
		if d > stats.MaxDegree {
			stats.MaxDegree = d
		}
		if d == 0 {
			stats.IsolatedNodes++
		}
	}
	stats.AverageDegree = 2 * float64(stats.EdgeCount) / float64(stats.NodeCount)

	result := ConnectedComponents(g)
	stats.Components = len(result.Components)
	if largest := result.Largest(); largest != nil {
		stats.LargestCluster = largest.Size
	}
	return stats
}

// DegreeCentrality returns each node's degree normalized by n-1.
func DegreeCentrality(g *Graph) map[int]float64 {
	n := g.NodeCount()
	centrality := make(map[int]float64, n)
	if n <= 1 {
		for id := 0; id < n; id++ {
			centrality[id] = 0
		}
		return centrality
	}
	for id := 0; id < n; id++ {
		centrality[id] = float64(g.Degree(id)) / float64(n-1)
	}
	return centrality
}
