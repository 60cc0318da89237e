/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package routing

import (
	"fmt"
	"strings"

	"github.com/hyperledger-labs/meshbft/topology"
)

// Path is an ordered sequence of node ids, source first. A valid path never
// revisits a node, so every path is simple by construction.
type Path []topology.NodeID

// Key returns a canonical string identity for the path, used to deduplicate
// received messages by the exact route they traveled.
func (p Path) Key() string {
	parts := make([]string, len(p))
	for i, id := range p {
		parts[i] = fmt.Sprintf("%d", id)
	}
	return strings.Join(parts, "->")
}

// Hops returns the number of edges the path traverses.
func (p Path) Hops() int {
	if len(p) == 0 {
		return 0
	}
	return len(p) - 1
}

// Source returns the first node of the path.
func (p Path) Source() topology.NodeID {
	return p[0]
}

// Target returns the last node of the path.
func (p Path) Target() topology.NodeID {
	return p[len(p)-1]
}

// Contains reports whether the path visits the given node.
func (p Path) Contains(id topology.NodeID) bool {
	for _, n := range p {
		if n == id {
			return true
		}
	}
	return false
}

// Clone returns an independent copy of the path.
func (p Path) Clone() Path {
	c := make(Path, len(p))
	copy(c, p)
	return c
}

// edgeKey identifies an undirected edge independent of direction.
type edgeKey struct {
	low, high topology.NodeID
}

func newEdgeKey(a, b topology.NodeID) edgeKey {
	if a > b {
		a, b = b, a
	}
	return edgeKey{low: a, high: b}
}

// edges enumerates the undirected edges of the path.
func (p Path) edges() []edgeKey {
	if len(p) < 2 {
		return nil
	}
	keys := make([]edgeKey, 0, len(p)-1)
	for i := 0; i < len(p)-1; i++ {
		keys = append(keys, newEdgeKey(p[i], p[i+1]))
	}
	return keys
}
