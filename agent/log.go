/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package agent

import (
	"sort"

	"github.com/hyperledger-labs/meshbft/routing"
)

// Entry is one logged delivery: the value carried and the route it arrived
// over.
type Entry struct {
	Value Order
	Route routing.Path
}

// ReceivedLog stores what a node heard, round by round. Entries are
// deduplicated by the exact route: evidence that traveled the same path
// twice is counted once, so no single link can inflate a vote. Within a
// round, entries keep their delivery order.
//
// A ReceivedLog is owned by exactly one Agent and is never shared.
type ReceivedLog struct {
	rounds map[int][]Entry
	seen   map[int]map[string]struct{}
}

// NewReceivedLog creates an empty log.
func NewReceivedLog() *ReceivedLog {
	return &ReceivedLog{
		rounds: make(map[int][]Entry),
		seen:   make(map[int]map[string]struct{}),
	}
}

// Record stores a delivery for the round and reports whether it was new.
// A delivery whose route was already logged for this round is dropped.
func (l *ReceivedLog) Record(round int, value Order, route routing.Path) bool {
	key := route.Key()
	if _, dup := l.seen[round][key]; dup {
		return false
	}
	if l.seen[round] == nil {
		l.seen[round] = make(map[string]struct{})
	}
	l.seen[round][key] = struct{}{}
	l.rounds[round] = append(l.rounds[round], Entry{Value: value, Route: route})
	return true
}

// Entries returns the round's deliveries in the order they arrived.
func (l *ReceivedLog) Entries(round int) []Entry {
	return l.rounds[round]
}

// Rounds returns every round with at least one entry, ascending.
func (l *ReceivedLog) Rounds() []int {
	rounds := make([]int, 0, len(l.rounds))
	for r := range l.rounds {
		rounds = append(rounds, r)
	}
	sort.Ints(rounds)
	return rounds
}

// AllEntries returns every logged delivery across all rounds, rounds
// ascending and deliveries in arrival order within each round.
func (l *ReceivedLog) AllEntries() []Entry {
	var all []Entry
	for _, round := range l.Rounds() {
		all = append(all, l.rounds[round]...)
	}
	return all
}

// Reset discards all entries; the log is ready for a fresh run.
func (l *ReceivedLog) Reset() {
	l.rounds = make(map[int][]Entry)
	l.seen = make(map[int]map[string]struct{})
}
