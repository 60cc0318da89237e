/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package agent

import (
	"github.com/hyperledger-labs/meshbft/routing"
	"github.com/hyperledger-labs/meshbft/topology"
)

// Agent is one participant of a consensus run: an identity, a role tag, a
// fault mode fixed at setup, and the state the protocol accumulates on its
// behalf. The coordinator drives agents strictly through Send/Deliver and
// the signed-value operations; nothing else mutates their state.
type Agent struct {
	id       topology.NodeID
	role     Role
	loyal    bool
	strategy Strategy

	initial Order // populated for the commander role only

	log    *ReceivedLog
	signed *signedStore
}

// New creates an agent. Byzantine agents without an explicit strategy lie
// with the canonical parity strategy.
func New(id topology.NodeID, role Role, loyal bool, strategy Strategy) *Agent {
	if !loyal && strategy == nil {
		strategy = ParityStrategy{}
	}
	return &Agent{
		id:       id,
		role:     role,
		loyal:    loyal,
		strategy: strategy,
		log:      NewReceivedLog(),
		signed:   newSignedStore(),
	}
}

func (a *Agent) ID() topology.NodeID { return a.id }
func (a *Agent) Role() Role          { return a.role }
func (a *Agent) Loyal() bool         { return a.loyal }

// SetInitialValue pins the commander's order for the run.
func (a *Agent) SetInitialValue(o Order) { a.initial = o }

// InitialValue returns the commander's order. Meaningless for lieutenants.
func (a *Agent) InitialValue() Order { return a.initial }

// Send produces the message this agent transmits to target over one hop.
// The prefix is the route walked before this agent; the agent appends
// itself. A Byzantine agent substitutes its strategy's value in rounds
// after the first; round-0 traffic passes through unchanged. The second
// return reports whether the value was corrupted.
func (a *Agent) Send(value Order, target topology.NodeID, round int, prefix routing.Path) (Message, bool) {
	corrupted := false
	if !a.loyal && round > 0 {
		lie := a.strategy.Corrupt(value, target)
		corrupted = lie != value
		value = lie
	}
	route := append(prefix.Clone(), a.id)
	return Message{
		Value:  value,
		Sender: a.id,
		Round:  round,
		Route:  route,
	}, corrupted
}

// Relay produces an uncorrupted transmission. The signed variant's
// transport hops use it: a Byzantine node cannot tamper with a signed value
// in transit, only the commander's original order can lie.
func (a *Agent) Relay(value Order, round int, prefix routing.Path) Message {
	return Message{
		Value:  value,
		Sender: a.id,
		Round:  round,
		Route:  append(prefix.Clone(), a.id),
	}
}

// Deliver logs an incoming message and reports whether it was new. A
// message whose route was already seen this round is dropped.
func (a *Agent) Deliver(m Message) bool {
	return a.log.Record(m.Round, m.Value, m.Route)
}

// MajorityForRound is the value this agent would decide from one round's
// evidence: Attack on a strict majority of logged entries, Retreat
// otherwise, including ties and rounds with no entries. The log already
// deduplicates by route, so each disjoint path contributes one vote.
func (a *Agent) MajorityForRound(round int) Order {
	attack, retreat := 0, 0
	for _, entry := range a.log.Entries(round) {
		if entry.Value == Attack {
			attack++
		} else {
			retreat++
		}
	}
	if attack > retreat {
		return Attack
	}
	return Retreat
}

// OutgoingValue is what this agent forwards in the round after the given
// one: the commander forwards its initial order, everyone else the majority
// of what it heard.
func (a *Agent) OutgoingValue(previousRound int) Order {
	if a.role == Commander {
		return a.initial
	}
	return a.MajorityForRound(previousRound)
}

// Log exposes the received log for reporting. Callers must not mutate it.
func (a *Agent) Log() *ReceivedLog { return a.log }

// AcceptSigned stores a signed value unless a chain with the same value and
// signer set is already held, and reports whether it was stored.
func (a *Agent) AcceptSigned(v SignedValue) bool {
	return a.signed.accept(v)
}

// UnrelayedSigned returns the stored chains this agent has not yet relayed,
// in the order they were stored.
func (a *Agent) UnrelayedSigned() []SignedValue {
	return a.signed.unrelayed()
}

// MarkRelayed records that the chain has been relayed; the same (value,
// signer-set) combination is never relayed twice.
func (a *Agent) MarkRelayed(v SignedValue) {
	a.signed.markRelayed(v)
}

// SignedValues returns every stored chain in storage order.
func (a *Agent) SignedValues() []SignedValue {
	return a.signed.values()
}

// DecideSigned is the signed-variant decision: the majority over the values
// of all stored chains, one vote per distinct (value, signer-set), Retreat
// on ties and empty stores.
func (a *Agent) DecideSigned() Order {
	attack, retreat := 0, 0
	for _, v := range a.signed.values() {
		if v.Value == Attack {
			attack++
		} else {
			retreat++
		}
	}
	if attack > retreat {
		return Attack
	}
	return Retreat
}

// Reset clears all per-run state so the agent can participate in a fresh
// run. Identity, role, fault mode, and strategy survive.
func (a *Agent) Reset() {
	a.log.Reset()
	a.signed = newSignedStore()
}

// signedStore holds signed chains deduplicated by (value, signer-set) and
// remembers which have been relayed. Insertion order is preserved.
type signedStore struct {
	order   []SignedValue
	held    map[string]struct{}
	relayed map[string]struct{}
}

func newSignedStore() *signedStore {
	return &signedStore{
		held:    make(map[string]struct{}),
		relayed: make(map[string]struct{}),
	}
}

func (s *signedStore) accept(v SignedValue) bool {
	key := v.Key()
	if _, dup := s.held[key]; dup {
		return false
	}
	s.held[key] = struct{}{}
	s.order = append(s.order, v)
	return true
}

func (s *signedStore) unrelayed() []SignedValue {
	var pending []SignedValue
	for _, v := range s.order {
		if _, done := s.relayed[v.Key()]; !done {
			pending = append(pending, v)
		}
	}
	return pending
}

func (s *signedStore) markRelayed(v SignedValue) {
	s.relayed[v.Key()] = struct{}{}
}

func (s *signedStore) values() []SignedValue {
	return s.order
}
