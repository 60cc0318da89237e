/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package topology

import (
	"fmt"
	"sort"

	"github.com/bits-and-blooms/bitset"
	"github.com/pkg/errors"
)

// NodeID identifies a node in a communication graph. IDs are arbitrary
// non-negative integers; generated topologies use dense 0-based IDs.
type NodeID int

// InvalidNodeReferenceError is returned when an operation references a node
// id that has not been registered in the graph.
type InvalidNodeReferenceError struct {
	ID NodeID
}

func (e InvalidNodeReferenceError) Error() string {
	return fmt.Sprintf("node %d is not registered in the graph", e.ID)
}

// Graph is a simple undirected graph: a node set plus symmetric adjacency.
// Self-loops and parallel edges are not representable. A Graph is mutable
// during construction and must not be modified once a consensus run has
// started.
type Graph struct {
	adj map[NodeID]map[NodeID]struct{}
}

// NewGraph creates an empty graph.
func NewGraph() *Graph {
	return &Graph{
		adj: make(map[NodeID]map[NodeID]struct{}),
	}
}

// AddNode registers a node. Registering the same id twice is an error, as is
// a negative id.
func (g *Graph) AddNode(id NodeID) error {
	if id < 0 {
		return errors.Errorf("node id %d is negative", id)
	}
	if _, exists := g.adj[id]; exists {
		return errors.Errorf("node %d is already registered", id)
	}
	g.adj[id] = make(map[NodeID]struct{})
	return nil
}

// AddEdge connects two registered nodes. The graph is undirected, so the
// edge is visible from both endpoints. Adding an existing edge is a no-op.
func (g *Graph) AddEdge(a, b NodeID) error {
	if a == b {
		return errors.Errorf("self-loop on node %d rejected", a)
	}
	if _, exists := g.adj[a]; !exists {
		return InvalidNodeReferenceError{ID: a}
	}
	if _, exists := g.adj[b]; !exists {
		return InvalidNodeReferenceError{ID: b}
	}
	g.adj[a][b] = struct{}{}
	g.adj[b][a] = struct{}{}
	return nil
}

// HasNode reports whether the id is registered.
func (g *Graph) HasNode(id NodeID) bool {
	_, exists := g.adj[id]
	return exists
}

// HasEdge reports whether the two nodes are adjacent.
func (g *Graph) HasEdge(a, b NodeID) bool {
	_, exists := g.adj[a][b]
	return exists
}

// Nodes returns all node ids in ascending order. All iteration over the
// graph uses this order so that runs are reproducible.
func (g *Graph) Nodes() []NodeID {
	ids := make([]NodeID, 0, len(g.adj))
	for id := range g.adj {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Neighbors returns the neighbors of a node in ascending order, or nil if
// the node is not registered.
func (g *Graph) Neighbors(id NodeID) []NodeID {
	adjacent, exists := g.adj[id]
	if !exists {
		return nil
	}
	ids := make([]NodeID, 0, len(adjacent))
	for n := range adjacent {
		ids = append(ids, n)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// NumNodes returns the number of registered nodes.
func (g *Graph) NumNodes() int {
	return len(g.adj)
}

// NumEdges returns the number of undirected edges.
func (g *Graph) NumEdges() int {
	total := 0
	for _, adjacent := range g.adj {
		total += len(adjacent)
	}
	return total / 2
}

// connectedWithout reports whether the graph restricted to the nodes whose
// positions in ids are NOT set in removed is connected. An empty or
// single-node remainder counts as connected.
func (g *Graph) connectedWithout(ids []NodeID, position map[NodeID]int, removed *bitset.BitSet) bool {
	start := -1
	for i := range ids {
		if removed == nil || !removed.Test(uint(i)) {
			start = i
			break
		}
	}
	if start < 0 {
		return true
	}

	visited := bitset.New(uint(len(ids)))
	visited.Set(uint(start))
	queue := []int{start}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for neighbor := range g.adj[ids[current]] {
			i := position[neighbor]
			if removed != nil && removed.Test(uint(i)) {
				continue
			}
			if !visited.Test(uint(i)) {
				visited.Set(uint(i))
				queue = append(queue, i)
			}
		}
	}

	for i := range ids {
		if removed != nil && removed.Test(uint(i)) {
			continue
		}
		if !visited.Test(uint(i)) {
			return false
		}
	}
	return true
}

// positions maps each node id to its index within the ascending id order.
func (g *Graph) positions(ids []NodeID) map[NodeID]int {
	position := make(map[NodeID]int, len(ids))
	for i, id := range ids {
		position[id] = i
	}
	return position
}
