/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package topology

import (
	"math/big"

	"github.com/bits-and-blooms/bitset"
)

// exhaustiveSubsetLimit bounds the number of k-subsets the exhaustive
// connectivity search is allowed to enumerate for a single k. Above the
// limit, Connectivity falls back to the max-flow method, which computes
// the same value in polynomial time.
const exhaustiveSubsetLimit = 1 << 20

// CombinationsExceed computes the number of combinations of choosing K
// elements from N elements, and returns whether the number of combinations
// exceeds a given threshold. If n < k then it returns false.
func CombinationsExceed(n, k, threshold int) bool {
	if n < k {
		return false
	}
	combinations := &big.Int{}
	combinations = combinations.Binomial(int64(n), int64(k))
	t := &big.Int{}
	t.SetInt64(int64(threshold))
	return combinations.Cmp(t) > 0
}

// forEachKSubset visits every k-subset of {0..n-1} in lexicographic order.
// The subset passed to visit is reused between calls and must not be
// retained. Enumeration stops early when visit returns true, and the
// short-circuit result is propagated to the caller.
func forEachKSubset(n, k int, visit func(subset *bitset.BitSet) bool) bool {
	subset := bitset.New(uint(n))
	return pickSubset(n, k, 0, subset, visit)
}

func pickSubset(n, k, next int, subset *bitset.BitSet, visit func(subset *bitset.BitSet) bool) bool {
	if int(subset.Count()) == k {
		return visit(subset)
	}
	// Not enough remaining candidates to complete the subset.
	if k-int(subset.Count()) > n-next {
		return false
	}
	subset.Set(uint(next))
	if pickSubset(n, k, next+1, subset, visit) {
		return true
	}
	subset.Clear(uint(next))
	return pickSubset(n, k, next+1, subset, visit)
}

// Connectivity returns the exact vertex connectivity of the graph: the
// minimum number of nodes whose removal disconnects it, with the convention
// that the complete graph on n nodes has connectivity n-1.
//
// The search is exhaustive: for k = 1 upward it removes every k-subset of
// nodes and checks reachability of the remainder. The first k for which some
// subset disconnects the graph is the connectivity. This is exponential
// in the worst case and intended for small graphs only; when the subset
// count for some k exceeds exhaustiveSubsetLimit the computation switches to
// ConnectivityMaxflow, which returns identical results.
func (g *Graph) Connectivity() int {
	n := g.NumNodes()
	if n <= 1 {
		return 0
	}
	ids := g.Nodes()
	position := g.positions(ids)

	if !g.connectedWithout(ids, position, nil) {
		return 0
	}

	for k := 1; k < n-1; k++ {
		if CombinationsExceed(n, k, exhaustiveSubsetLimit) {
			return g.ConnectivityMaxflow()
		}
		disconnects := forEachKSubset(n, k, func(removed *bitset.BitSet) bool {
			return !g.connectedWithout(ids, position, removed)
		})
		if disconnects {
			return k
		}
	}
	// No removal short of n-1 nodes disconnects the graph.
	return n - 1
}

// VerifyConnectivity checks whether the graph is connected enough to run
// Byzantine agreement with m faulty nodes: oral messages require vertex
// connectivity of at least 2m+1, signed messages at least m+1. It returns
// the required and actual connectivity for diagnostics along with the
// verdict.
func (g *Graph) VerifyConnectivity(m int, signed bool) (required, actual int, ok bool) {
	required = 2*m + 1
	if signed {
		required = m + 1
	}
	actual = g.Connectivity()
	return required, actual, actual >= required
}
