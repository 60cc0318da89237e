/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package voting

import (
	"sort"

	"github.com/hyperledger-labs/meshbft/agent"
	"github.com/hyperledger-labs/meshbft/topology"
)

// Tally counts orders. The majority rule is the protocol's single decision
// rule: Attack only on a strict majority, Retreat otherwise.
type Tally struct {
	attack  int
	retreat int
}

// Add records one vote.
func (t *Tally) Add(o agent.Order) {
	if o == agent.Attack {
		t.attack++
	} else {
		t.retreat++
	}
}

// Majority returns Attack iff strictly more Attack votes were recorded;
// ties and empty tallies resolve to Retreat.
func (t *Tally) Majority() agent.Order {
	if t.attack > t.retreat {
		return agent.Attack
	}
	return agent.Retreat
}

// Total returns the number of recorded votes.
func (t *Tally) Total() int {
	return t.attack + t.retreat
}

// Decisions maps loyal nodes to their final orders. Byzantine nodes get no
// entry: their "decision" is meaningless by definition.
type Decisions map[topology.NodeID]agent.Order

// OrderedIDs returns the decided node ids ascending.
func (d Decisions) OrderedIDs() []topology.NodeID {
	ids := make([]topology.NodeID, 0, len(d))
	for id := range d {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// FinalVoting computes the oral-variant decisions: the loyal commander's
// decision is pinned to its own initial order, and every other loyal node
// takes the majority over every (value, route) pair it logged across every
// round. The computation reads the logs without mutating them, so calling
// it twice yields identical decisions.
func FinalVoting(agents []*agent.Agent) Decisions {
	decisions := make(Decisions)
	for _, a := range agents {
		if !a.Loyal() {
			continue
		}
		if a.Role() == agent.Commander {
			decisions[a.ID()] = a.InitialValue()
			continue
		}
		var tally Tally
		for _, entry := range a.Log().AllEntries() {
			tally.Add(entry.Value)
		}
		decisions[a.ID()] = tally.Majority()
	}
	return decisions
}

// FinalVotingSigned computes the signed-variant decisions: the loyal
// commander keeps its initial order, every other loyal node votes over its
// stored signer chains, one vote per distinct (value, signer-set).
func FinalVotingSigned(agents []*agent.Agent) Decisions {
	decisions := make(Decisions)
	for _, a := range agents {
		if !a.Loyal() {
			continue
		}
		if a.Role() == agent.Commander {
			decisions[a.ID()] = a.InitialValue()
			continue
		}
		decisions[a.ID()] = a.DecideSigned()
	}
	return decisions
}

// Report is the verifier's verdict on a set of decisions.
type Report struct {
	// IC1: all loyal non-commander nodes decided the same order.
	IC1 bool
	// IC2: the loyal commander's order was adopted by every loyal
	// non-commander. Vacuously true under a Byzantine commander.
	IC2 bool
	// Success is IC1, and additionally IC2 whenever the commander is loyal.
	Success bool
	// CommanderLoyal echoes the input for reporting.
	CommanderLoyal bool
	// Agreed is the common decision when IC1 holds and at least one loyal
	// non-commander exists.
	Agreed agent.Order
}

// CheckConsensus checks the two interactive-consistency conditions over the
// decisions of the loyal non-commander nodes. With no such nodes both
// conditions hold vacuously.
func CheckConsensus(d Decisions, commanderID topology.NodeID, commanderLoyal bool, commanderValue agent.Order) Report {
	report := Report{IC1: true, IC2: true, CommanderLoyal: commanderLoyal}

	first := true
	for _, id := range d.OrderedIDs() {
		if id == commanderID {
			continue
		}
		decision := d[id]
		if first {
			report.Agreed = decision
			first = false
		} else if decision != report.Agreed {
			report.IC1 = false
		}
		if commanderLoyal && decision != commanderValue {
			report.IC2 = false
		}
	}

	report.Success = report.IC1 && (!commanderLoyal || report.IC2)
	return report
}
