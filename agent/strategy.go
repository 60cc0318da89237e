/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package agent

import (
	"math/rand"

	"github.com/hyperledger-labs/meshbft/topology"
)

// Strategy selects the value a Byzantine node actually transmits in place
// of the one the protocol asked it to relay. Strategies see the target so
// they can lie inconsistently to different receivers; they never see, nor
// need, the rest of the system state.
type Strategy interface {
	Corrupt(value Order, target topology.NodeID) Order
}

// ParityStrategy lies deterministically on the parity of the target id:
// even targets hear Attack, odd targets hear Retreat, regardless of the
// true value. Determinism makes runs reproducible and is the canonical
// adversary for tests.
type ParityStrategy struct{}

func (ParityStrategy) Corrupt(_ Order, target topology.NodeID) Order {
	if target%2 == 0 {
		return Attack
	}
	return Retreat
}

// RandomStrategy lies by coin flip from an explicitly seeded source, so
// identical seeds reproduce identical runs.
type RandomStrategy struct {
	rng *rand.Rand
}

// NewRandomStrategy creates a strategy backed by the given seed.
func NewRandomStrategy(seed int64) *RandomStrategy {
	return &RandomStrategy{rng: rand.New(rand.NewSource(seed))}
}

func (s *RandomStrategy) Corrupt(Order, topology.NodeID) Order {
	if s.rng.Intn(2) == 0 {
		return Attack
	}
	return Retreat
}
