/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package consensus

import (
	"github.com/hyperledger-labs/meshbft/agent"
	"github.com/hyperledger-labs/meshbft/routing"
	"github.com/hyperledger-labs/meshbft/topology"
	"github.com/hyperledger-labs/meshbft/voting"
	"github.com/pkg/errors"
)

// runState tracks the coordinator through one run. Succeeded means the run
// computed decisions, not that agreement holds; agreement is the verifier's
// verdict.
type runState int

const (
	stateInit runState = iota
	stateConnectivityCheck
	stateRounds
	stateFinalVoting
	stateSucceeded
	stateFailed
)

func (s runState) String() string {
	switch s {
	case stateInit:
		return "init"
	case stateConnectivityCheck:
		return "connectivity-check"
	case stateRounds:
		return "rounds"
	case stateFinalVoting:
		return "final-voting"
	case stateSucceeded:
		return "succeeded"
	case stateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// run carries the per-run context: the frozen graph, the protocol
// parameters, and the state machine position. Execution is single-threaded
// and synchronous; rounds advance strictly in order and nodes are processed
// ascending by id, so a run is a pure function of its inputs.
type run struct {
	net     *Network
	graph   *topology.Graph
	variant Variant
	m       int
	k       int
	state   runState
}

// RunOral executes the oral-message protocol OM(m) and returns the loyal
// nodes' decisions. The connectivity gate requires 2m+1; messages travel
// over 2m+1 edge-disjoint routes per pair for m+1 rounds.
func (n *Network) RunOral(m int, initial agent.Order) (voting.Decisions, error) {
	r, err := n.beginRun(Oral, m, 2*m+1, initial)
	if err != nil {
		return nil, err
	}
	if err := r.connectivityGate(); err != nil {
		return nil, err
	}

	r.state = stateRounds
	for round := 0; round <= m; round++ {
		r.oralRound(round)
		r.completeRound(round)
	}

	return r.finish(voting.FinalVoting(n.orderedAgents())), nil
}

// RunSigned executes the signed-message protocol SM(m) and returns the
// loyal nodes' decisions. Signatures are simulated as ordered signer
// chains; the gate requires connectivity m+1 and messages travel over m+1
// edge-disjoint routes.
func (n *Network) RunSigned(m int, initial agent.Order) (voting.Decisions, error) {
	r, err := n.beginRun(Signed, m, m+1, initial)
	if err != nil {
		return nil, err
	}
	if err := r.connectivityGate(); err != nil {
		return nil, err
	}

	r.state = stateRounds
	for round := 0; round <= m; round++ {
		r.signedRound(round)
		r.completeRound(round)
	}

	return r.finish(voting.FinalVotingSigned(n.orderedAgents())), nil
}

// beginRun validates the network, resets all per-run state, freezes the
// graph, and re-arms the commander's initial order.
func (n *Network) beginRun(variant Variant, m, k int, initial agent.Order) (*run, error) {
	if m < 0 {
		return nil, errors.Errorf("fault bound %d is negative", m)
	}
	if !n.hasCommander {
		return nil, ErrNoCommander
	}
	if len(n.agents) < 2 {
		return nil, errors.Errorf("consensus needs at least 2 nodes, have %d", len(n.agents))
	}

	for _, a := range n.agents {
		a.Reset()
	}
	n.initialValue = initial
	n.agents[n.commanderID].SetInitialValue(initial)

	graph, err := n.buildGraph()
	if err != nil {
		return nil, err
	}

	logger.Debugw("run starting", "variant", variant, "m", m, "paths", k,
		"nodes", graph.NumNodes(), "edges", graph.NumEdges(), "initial", initial)

	return &run{
		net:     n,
		graph:   graph,
		variant: variant,
		m:       m,
		k:       k,
		state:   stateInit,
	}, nil
}

// connectivityGate is the binding pre-flight check: no protocol traffic
// flows unless the graph's vertex connectivity meets the variant's bound.
func (r *run) connectivityGate() error {
	r.state = stateConnectivityCheck

	required, actual, ok := r.graph.VerifyConnectivity(r.m, r.variant == Signed)
	r.net.metrics.GraphConnectivity.Set(float64(actual))
	r.net.reporter.ConnectivityChecked(ConnectivityCheck{
		Variant:  r.variant,
		M:        r.m,
		Required: required,
		Actual:   actual,
		OK:       ok,
	})

	if !ok {
		r.state = stateFailed
		r.net.metrics.RunsCompleted.With("variant", string(r.variant), "outcome", "infeasible").Add(1)
		logger.Warnw("connectivity gate failed",
			"variant", r.variant, "m", r.m, "required", required, "actual", actual)
		return InfeasibleTopologyError{Variant: r.variant, M: r.m, Required: required, Actual: actual}
	}

	logger.Debugw("connectivity gate passed",
		"variant", r.variant, "m", r.m, "required", required, "actual", actual)
	return nil
}

// oralRound executes one oral round. Round 0 is the commander's multipath
// broadcast of its order; in every later round each lieutenant forwards the
// majority of what it heard the round before to every other node, the
// commander included.
func (r *run) oralRound(round int) {
	ids := r.net.NodeIDs()
	if round == 0 {
		value := r.net.agents[r.net.commanderID].InitialValue()
		for _, target := range ids {
			if target == r.net.commanderID {
				continue
			}
			r.multipathSend(r.net.commanderID, target, value, round)
		}
		return
	}

	for _, source := range ids {
		if source == r.net.commanderID {
			continue
		}
		value := r.net.agents[source].OutgoingValue(round - 1)
		for _, target := range ids {
			if target == source {
				continue
			}
			r.multipathSend(source, target, value, round)
		}
	}
}

// multipathSend routes one round value from source to target over up to k
// edge-disjoint paths, delivering hop by hop. Every hop receiver logs the
// partial-path message addressed to it. Each forwarding hop re-sends the
// pristine round value, so a Byzantine relay corrupts only its own
// transmission and corruption never compounds.
func (r *run) multipathSend(source, target topology.NodeID, value agent.Order, round int) {
	routes := r.routes(source, target, round)
	for _, route := range routes {
		r.relayAlong(route, value, round)
	}
}

func (r *run) relayAlong(route routing.Path, value agent.Order, round int) {
	for i := 0; i < len(route)-1; i++ {
		sender := r.net.agents[route[i]]
		receiver := r.net.agents[route[i+1]]

		msg, corrupted := sender.Send(value, route[i+1], round, route[:i])
		if corrupted {
			r.net.metrics.CorruptedSends.With("variant", string(r.variant)).Add(1)
		}
		if receiver.Deliver(msg) {
			r.net.metrics.MessagesDelivered.With("variant", string(r.variant)).Add(1)
		}
	}
}

// routes computes the edge-disjoint routes for one pair and surfaces a
// shortfall as a degraded-routing event. The global gate passing does not
// formally guarantee k routes per pair, so the run continues with what it
// has and leaves the verdict to the verifier.
func (r *run) routes(source, target topology.NodeID, round int) []routing.Path {
	routes, err := routing.RoutesBetween(r.graph, source, target, r.k, r.net.maxHops)
	if err != nil {
		// The graph was validated at build time; an unknown id here is a
		// coordinator bug.
		logger.Panicf("routing over validated graph failed: %s", err)
	}
	if len(routes) < r.k {
		r.net.metrics.DegradedPairs.With("variant", string(r.variant)).Add(1)
		r.net.reporter.DegradedRouting(DegradedRoutingWarning{
			Variant:  r.variant,
			Round:    round,
			Source:   source,
			Target:   target,
			Required: r.k,
			Found:    len(routes),
		})
		logger.Warnw("fewer disjoint routes than required",
			"variant", r.variant, "round", round, "source", source, "target", target,
			"required", r.k, "found", len(routes))
	}
	return routes
}

// signedRound executes one signed round. Round 0 is the commander's
// broadcast of its signed order; in every later round each lieutenant
// extends and relays every chain it has not relayed yet to every node
// outside that chain's signer set. Relays are never tampered with; the only
// lie available in this variant is the commander's original order.
func (r *run) signedRound(round int) {
	ids := r.net.NodeIDs()
	if round == 0 {
		commander := r.net.agents[r.net.commanderID]
		chain := agent.SignedValue{
			Value:   commander.InitialValue(),
			Signers: []topology.NodeID{r.net.commanderID},
		}
		for _, target := range ids {
			if target == r.net.commanderID {
				continue
			}
			r.sendSigned(r.net.commanderID, target, chain, round)
		}
		return
	}

	// Relay what was held at the end of the previous round. Chains stored
	// during this round wait for the next one.
	pending := make(map[topology.NodeID][]agent.SignedValue)
	for _, id := range ids {
		if id == r.net.commanderID {
			continue
		}
		pending[id] = r.net.agents[id].UnrelayedSigned()
	}

	for _, source := range ids {
		if source == r.net.commanderID {
			continue
		}
		for _, chain := range pending[source] {
			extended := chain.Extend(source)
			for _, target := range ids {
				if target == source || chain.Signed(target) {
					continue
				}
				r.sendSigned(source, target, extended, round)
			}
			r.net.agents[source].MarkRelayed(chain)
		}
	}
}

// sendSigned carries one signer chain from source to target over the
// disjoint routes. Transit hops log the passing value for reporting but
// cannot tamper with it; only the addressee ingests the chain, deduplicated
// by (value, signer-set), so redundant routes add resilience without double
// counting.
func (r *run) sendSigned(source, target topology.NodeID, chain agent.SignedValue, round int) {
	routes := r.routes(source, target, round)
	for _, route := range routes {
		for i := 0; i < len(route)-1; i++ {
			sender := r.net.agents[route[i]]
			receiver := r.net.agents[route[i+1]]
			receiver.Deliver(sender.Relay(chain.Value, round, route[:i]))
		}
		if r.net.agents[target].AcceptSigned(chain) {
			r.net.metrics.MessagesDelivered.With("variant", string(r.variant)).Add(1)
		}
	}
}

// completeRound emits the structured round record and counts the round.
func (r *run) completeRound(round int) {
	state := RoundState{Variant: r.variant, Round: round}
	for _, a := range r.net.orderedAgents() {
		entries := a.Log().Entries(round)
		var values []agent.Order
		seen := make(map[agent.Order]bool)
		for _, e := range entries {
			if !seen[e.Value] {
				seen[e.Value] = true
				values = append(values, e.Value)
			}
		}
		state.Nodes = append(state.Nodes, NodeRoundState{
			Node:      a.ID(),
			Role:      a.Role(),
			Loyal:     a.Loyal(),
			Values:    values,
			PathCount: len(entries),
		})
	}
	r.net.reporter.RoundCompleted(state)
	r.net.metrics.RoundsCompleted.With("variant", string(r.variant)).Add(1)
	logger.Debugw("round completed", "variant", r.variant, "round", round)
}

// finish runs final voting and closes out the state machine.
func (r *run) finish(decisions voting.Decisions) voting.Decisions {
	r.state = stateFinalVoting
	r.net.reporter.RunCompleted(RunResult{Variant: r.variant, M: r.m, Decisions: decisions})
	r.net.metrics.RunsCompleted.With("variant", string(r.variant), "outcome", "completed").Add(1)
	r.state = stateSucceeded
	logger.Infow("run completed", "variant", r.variant, "m", r.m, "decisions", len(decisions), "state", r.state)
	return decisions
}
