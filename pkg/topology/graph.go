// Package topology provides the undirected network the simulation runs on.
// The engine only reads it: after construction a Graph is never mutated.
package topology

import (
	"sort"
)

// Edge is an undirected edge between two node ids, stored with From < To.
type Edge struct {
	From int
	To   int
}

// Graph is an undirected simple graph over node ids [0, NodeCount).
type Graph struct {
	adj   [][]int
	edges []Edge
}

// New creates a graph with n isolated nodes.
func New(n int) (*Graph, error) {
	if n < 0 {
		return nil, &GraphError{Op: "New", Node: -1, Cause: ErrInvalidNodeSize}
	}
	return &Graph{adj: make([][]int, n)}, nil
}

// FromEdges builds a graph with n nodes and the given undirected edges.
// Duplicate edges are ignored.
func FromEdges(n int, edges []Edge) (*Graph, error) {
	g, err := New(n)
	if err != nil {
		return nil, err
	}
	for _, e := range edges {
		if err := g.addEdge(e.From, e.To); err != nil {
			return nil, err
		}
	}
	g.finalize()
	return g, nil
}

func (g *Graph) addEdge(a, b int) error {
	if a < 0 || a >= len(g.adj) {
		return &GraphError{Op: "AddEdge", Node: a, Cause: ErrInvalidNode}
	}
	if b < 0 || b >= len(g.adj) {
		return &GraphError{Op: "AddEdge", Node: b, Cause: ErrInvalidNode}
	}
	if a == b {
		return &GraphError{Op: "AddEdge", Node: a, Cause: ErrSelfLoop}
	}
	if a > b {
		a, b = b, a
	}
	for _, n := range g.adj[a] {
		if n == b {
			return nil
		}
	}
	g.adj[a] = append(g.adj[a], b)
	g.adj[b] = append(g.adj[b], a)
	g.edges = append(g.edges, Edge{From: a, To: b})
	return nil
}

// finalize sorts adjacency lists so neighbour iteration order depends only
// on the edge set.
func (g *Graph) finalize() {
	for _, list := range g.adj {
		sort.Ints(list)
	}
	sort.Slice(g.edges, func(i, j int) bool {
		if g.edges[i].From != g.edges[j].From {
			return g.edges[i].From < g.edges[j].From
		}
		return g.edges[i].To < g.edges[j].To
	})
}

// NodeCount returns the number of nodes
func (g *Graph) NodeCount() int { return len(g.adj) }

// EdgeCount returns the number of undirected edges
func (g *Graph) EdgeCount() int { return len(g.edges) }

// Neighbors returns the sorted neighbour ids of id, or nil for an unknown
// node. The returned slice must not be modified.
func (g *Graph) Neighbors(id int) []int {
	if id < 0 || id >= len(g.adj) {
		return nil
	}
	return g.adj[id]
}

// Degree returns the number of neighbours of id.
func (g *Graph) Degree(id int) int {
	return len(g.Neighbors(id))
}

// Edges returns a copy of the edge set.
func (g *Graph) Edges() []Edge {
	out := make([]Edge, len(g.edges))
	copy(out, g.edges)
	return out
}
