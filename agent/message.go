/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package agent

import (
	"fmt"
	"sort"
	"strings"

	"github.com/hyperledger-labs/meshbft/routing"
	"github.com/hyperledger-labs/meshbft/topology"
)

// Message is one oral-protocol transmission: a value, the node that
// originated it this round, the round number, and the route walked so far.
// The route starts at the round's source and ends at the node that performed
// the latest hop; the addressee is not yet part of it.
type Message struct {
	Value  Order
	Sender topology.NodeID
	Round  int
	Route  routing.Path
}

// SignedValue is a simulated signed message: a value plus the ordered chain
// of nodes that have signed it, the commander first. No real cryptography is
// involved; the chain stands in for a verified signature stack.
type SignedValue struct {
	Value   Order
	Signers []topology.NodeID
}

// Signed reports whether the node already appears in the signer chain.
func (s SignedValue) Signed(id topology.NodeID) bool {
	for _, signer := range s.Signers {
		if signer == id {
			return true
		}
	}
	return false
}

// Extend returns a copy of the signed value carrying one more signature.
func (s SignedValue) Extend(id topology.NodeID) SignedValue {
	signers := make([]topology.NodeID, 0, len(s.Signers)+1)
	signers = append(signers, s.Signers...)
	signers = append(signers, id)
	return SignedValue{Value: s.Value, Signers: signers}
}

// Key identifies the (value, signer-set) combination. Signer order is
// irrelevant: two chains with the same signers carry the same evidence.
func (s SignedValue) Key() string {
	sorted := make([]int, len(s.Signers))
	for i, signer := range s.Signers {
		sorted[i] = int(signer)
	}
	sort.Ints(sorted)
	parts := make([]string, len(sorted))
	for i, signer := range sorted {
		parts[i] = fmt.Sprintf("%d", signer)
	}
	return fmt.Sprintf("%s:{%s}", s.Value, strings.Join(parts, ","))
}

func (s SignedValue) String() string {
	parts := make([]string, len(s.Signers))
	for i, signer := range s.Signers {
		parts[i] = fmt.Sprintf("%d", signer)
	}
	return fmt.Sprintf("%s:%s", s.Value, strings.Join(parts, ":"))
}
