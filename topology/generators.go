/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package topology

import (
	"math/rand"

	"github.com/pkg/errors"
)

// Complete returns the complete graph K_n on nodes 0..n-1.
func Complete(n int) (*Graph, error) {
	g, err := emptyGraph(n)
	if err != nil {
		return nil, err
	}
	for a := 0; a < n; a++ {
		for b := a + 1; b < n; b++ {
			if err := g.AddEdge(NodeID(a), NodeID(b)); err != nil {
				return nil, err
			}
		}
	}
	return g, nil
}

// Ring returns the cycle graph on nodes 0..n-1. Rings need at least three
// nodes.
func Ring(n int) (*Graph, error) {
	if n < 3 {
		return nil, errors.Errorf("ring topology needs at least 3 nodes, got %d", n)
	}
	g, err := emptyGraph(n)
	if err != nil {
		return nil, err
	}
	for a := 0; a < n; a++ {
		if err := g.AddEdge(NodeID(a), NodeID((a+1)%n)); err != nil {
			return nil, err
		}
	}
	return g, nil
}

// Star returns the star graph with hub 0 and leaves 1..n-1.
func Star(n int) (*Graph, error) {
	if n < 2 {
		return nil, errors.Errorf("star topology needs at least 2 nodes, got %d", n)
	}
	g, err := emptyGraph(n)
	if err != nil {
		return nil, err
	}
	for leaf := 1; leaf < n; leaf++ {
		if err := g.AddEdge(0, NodeID(leaf)); err != nil {
			return nil, err
		}
	}
	return g, nil
}

// Line returns the path graph 0-1-...-(n-1).
func Line(n int) (*Graph, error) {
	if n < 2 {
		return nil, errors.Errorf("line topology needs at least 2 nodes, got %d", n)
	}
	g, err := emptyGraph(n)
	if err != nil {
		return nil, err
	}
	for a := 0; a < n-1; a++ {
		if err := g.AddEdge(NodeID(a), NodeID(a+1)); err != nil {
			return nil, err
		}
	}
	return g, nil
}

// RandomConnected returns a connected random graph on nodes 0..n-1: a random
// spanning path seeded from the given source guarantees connectivity, then
// every remaining pair is joined with probability p. Identical (n, p, seed)
// inputs produce identical graphs.
func RandomConnected(n int, p float64, seed int64) (*Graph, error) {
	if p < 0 || p > 1 {
		return nil, errors.Errorf("edge probability %v outside [0,1]", p)
	}
	g, err := emptyGraph(n)
	if err != nil {
		return nil, err
	}
	rng := rand.New(rand.NewSource(seed))
	order := rng.Perm(n)
	for i := 0; i < n-1; i++ {
		if err := g.AddEdge(NodeID(order[i]), NodeID(order[i+1])); err != nil {
			return nil, err
		}
	}
	for a := 0; a < n; a++ {
		for b := a + 1; b < n; b++ {
			if g.HasEdge(NodeID(a), NodeID(b)) {
				continue
			}
			if rng.Float64() < p {
				if err := g.AddEdge(NodeID(a), NodeID(b)); err != nil {
					return nil, err
				}
			}
		}
	}
	return g, nil
}

func emptyGraph(n int) (*Graph, error) {
	if n < 1 {
		return nil, errors.Errorf("topology needs at least 1 node, got %d", n)
	}
	g := NewGraph()
	for id := 0; id < n; id++ {
		if err := g.AddNode(NodeID(id)); err != nil {
			return nil, err
		}
	}
	return g, nil
}

// Stats summarizes the shape of a graph for diagnostics.
type Stats struct {
	Nodes     int
	Edges     int
	MinDegree int
	MaxDegree int
	AvgDegree float64
}

// GraphStats computes degree and size statistics for a graph.
func GraphStats(g *Graph) Stats {
	s := Stats{
		Nodes: g.NumNodes(),
		Edges: g.NumEdges(),
	}
	if s.Nodes == 0 {
		return s
	}
	first := true
	total := 0
	for _, id := range g.Nodes() {
		degree := len(g.Neighbors(id))
		total += degree
		if first || degree < s.MinDegree {
			s.MinDegree = degree
		}
		if degree > s.MaxDegree {
			s.MaxDegree = degree
		}
		first = false
	}
	s.AvgDegree = float64(total) / float64(s.Nodes)
	return s
}
