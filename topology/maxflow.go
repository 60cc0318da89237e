/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package topology

import (
	"github.com/bits-and-blooms/bitset"
)

// ConnectivityMaxflow computes the vertex connectivity through Menger's
// theorem: for every non-adjacent pair (s, t), the maximum number of
// internally vertex-disjoint s-t paths equals the minimum s-t vertex cut,
// and the graph connectivity is the minimum over those pairs. A complete
// graph has no non-adjacent pair and its connectivity is n-1.
//
// Each max-flow instance runs Edmonds-Karp on the standard node-splitting
// transformation: every vertex v becomes an arc v_in -> v_out of capacity
// one, every undirected edge becomes a pair of unit arcs between the
// corresponding out/in copies. This returns identical results to
// Connectivity on every graph, in polynomial time.
func (g *Graph) ConnectivityMaxflow() int {
	n := g.NumNodes()
	if n <= 1 {
		return 0
	}
	ids := g.Nodes()
	position := g.positions(ids)

	best := n - 1
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if g.HasEdge(ids[i], ids[j]) {
				continue
			}
			if flow := g.maxVertexDisjointPaths(ids, position, i, j); flow < best {
				best = flow
			}
			if best == 0 {
				return 0
			}
		}
	}
	return best
}

// maxVertexDisjointPaths returns the maximum number of internally
// vertex-disjoint paths between the nodes at positions s and t.
func (g *Graph) maxVertexDisjointPaths(ids []NodeID, position map[NodeID]int, s, t int) int {
	n := len(ids)
	// Split digraph: vertex v maps to nodes 2v (in) and 2v+1 (out).
	size := 2 * n
	inf := n

	capacity := make([][]int, size)
	for i := range capacity {
		capacity[i] = make([]int, size)
	}
	for v := 0; v < n; v++ {
		if v == s || v == t {
			capacity[2*v][2*v+1] = inf
		} else {
			capacity[2*v][2*v+1] = 1
		}
	}
	for v := 0; v < n; v++ {
		for _, neighbor := range g.Neighbors(ids[v]) {
			u := position[neighbor]
			capacity[2*v+1][2*u] = inf
		}
	}

	source := 2*s + 1
	sink := 2 * t

	flow := 0
	for {
		parent := g.augmentingPath(capacity, source, sink)
		if parent == nil {
			return flow
		}
		// Unit capacities on the vertex arcs bound each augmentation to 1.
		bottleneck := inf
		for v := sink; v != source; v = parent[v] {
			if capacity[parent[v]][v] < bottleneck {
				bottleneck = capacity[parent[v]][v]
			}
		}
		for v := sink; v != source; v = parent[v] {
			capacity[parent[v]][v] -= bottleneck
			capacity[v][parent[v]] += bottleneck
		}
		flow += bottleneck
	}
}

// augmentingPath BFS-searches the residual network for a source->sink path
// and returns the predecessor table, or nil when no path exists.
func (g *Graph) augmentingPath(capacity [][]int, source, sink int) []int {
	size := len(capacity)
	parent := make([]int, size)
	for i := range parent {
		parent[i] = -1
	}
	visited := bitset.New(uint(size))
	visited.Set(uint(source))
	queue := []int{source}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for next := 0; next < size; next++ {
			if capacity[current][next] <= 0 || visited.Test(uint(next)) {
				continue
			}
			visited.Set(uint(next))
			parent[next] = current
			if next == sink {
				return parent
			}
			queue = append(queue, next)
		}
	}
	return nil
}
