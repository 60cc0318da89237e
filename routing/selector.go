/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package routing

import (
	"sort"

	"github.com/bits-and-blooms/bitset"
	"github.com/hyperledger-labs/meshbft/topology"
)

// AllSimplePaths enumerates every cycle-free path from src to dst of at most
// maxHops edges, using breadth-first expansion with neighbors visited in
// ascending id order. Paths come back shortest first, and within one length
// in discovery order; the ordering is total for a fixed graph, which the
// disjoint-path selection depends on for reproducible runs.
//
// A maxHops of 0 means the natural limit of n-1 hops. src == dst yields no
// paths.
func AllSimplePaths(g *topology.Graph, src, dst topology.NodeID, maxHops int) ([]Path, error) {
	if !g.HasNode(src) {
		return nil, topology.InvalidNodeReferenceError{ID: src}
	}
	if !g.HasNode(dst) {
		return nil, topology.InvalidNodeReferenceError{ID: dst}
	}
	if src == dst {
		return nil, nil
	}
	if maxHops <= 0 {
		maxHops = g.NumNodes() - 1
	}

	var found []Path
	queue := []Path{{src}}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		tail := current.Target()
		if tail == dst {
			found = append(found, current)
			continue
		}
		if current.Hops() >= maxHops {
			continue
		}
		for _, neighbor := range g.Neighbors(tail) {
			if current.Contains(neighbor) {
				continue
			}
			extended := append(current.Clone(), neighbor)
			queue = append(queue, extended)
		}
	}
	return found, nil
}

// DisjointPaths greedily selects up to k pairwise edge-disjoint paths from
// the candidates: candidates are stable-sorted by hop count ascending (so
// equal-length paths keep their discovery order), then accepted one by one
// whenever their edge set does not intersect the union of the already
// accepted edges. Fewer than k paths come back when the supply runs out;
// whether that is acceptable is the caller's call.
func DisjointPaths(candidates []Path, k int) []Path {
	if k <= 0 || len(candidates) == 0 {
		return nil
	}

	ordered := make([]Path, len(candidates))
	copy(ordered, candidates)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Hops() < ordered[j].Hops()
	})

	// Dense edge indices over the candidate set let the disjointness test
	// run on bitsets.
	index := make(map[edgeKey]uint)
	edgeBits := func(p Path) *bitset.BitSet {
		set := bitset.New(uint(len(index) + p.Hops()))
		for _, e := range p.edges() {
			i, known := index[e]
			if !known {
				i = uint(len(index))
				index[e] = i
			}
			set.Set(i)
		}
		return set
	}

	used := bitset.New(0)
	var accepted []Path
	for _, candidate := range ordered {
		set := edgeBits(candidate)
		if used.IntersectionCardinality(set) != 0 {
			continue
		}
		used.InPlaceUnion(set)
		accepted = append(accepted, candidate)
		if len(accepted) == k {
			break
		}
	}
	return accepted
}

// RoutesBetween composes enumeration and selection: the first k edge-disjoint
// simple paths from src to dst, shortest first.
func RoutesBetween(g *topology.Graph, src, dst topology.NodeID, k, maxHops int) ([]Path, error) {
	candidates, err := AllSimplePaths(g, src, dst, maxHops)
	if err != nil {
		return nil, err
	}
	return DisjointPaths(candidates, k), nil
}
