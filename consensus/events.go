/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package consensus

import (
	"github.com/hyperledger-labs/meshbft/agent"
	"github.com/hyperledger-labs/meshbft/common/flogging"
	"github.com/hyperledger-labs/meshbft/topology"
	"github.com/hyperledger-labs/meshbft/voting"
)

// ConnectivityCheck records the outcome of the pre-flight gate.
type ConnectivityCheck struct {
	Variant  Variant
	M        int
	Required int
	Actual   int
	OK       bool
}

// NodeRoundState is what one node heard during one round: the distinct
// values in arrival order and the number of routes they arrived over.
type NodeRoundState struct {
	Node      topology.NodeID
	Role      agent.Role
	Loyal     bool
	Values    []agent.Order
	PathCount int
}

// RoundState is the structured per-round record the coordinator emits in
// place of printing; an external reporting layer decides what to do with it.
type RoundState struct {
	Variant Variant
	Round   int
	Nodes   []NodeRoundState
}

// DegradedRoutingWarning is emitted when a source/target pair yielded fewer
// than the required number of edge-disjoint routes even though the global
// connectivity gate passed. The run continues with the routes found; whether
// the protocol's guarantees survive the shortfall is not established, so the
// condition is surfaced rather than swallowed.
type DegradedRoutingWarning struct {
	Variant  Variant
	Round    int
	Source   topology.NodeID
	Target   topology.NodeID
	Required int
	Found    int
}

// RunResult summarizes a completed run.
type RunResult struct {
	Variant   Variant
	M         int
	Decisions voting.Decisions
}

// Reporter consumes the structured round-by-round records of a run. The
// coordinator never prints; everything observable flows through here.
// Implementations must not retain the slices they are handed.
type Reporter interface {
	ConnectivityChecked(ConnectivityCheck)
	RoundCompleted(RoundState)
	DegradedRouting(DegradedRoutingWarning)
	RunCompleted(RunResult)
}

// NopReporter discards every event; it is the default.
type NopReporter struct{}

func (NopReporter) ConnectivityChecked(ConnectivityCheck)  {}
func (NopReporter) RoundCompleted(RoundState)              {}
func (NopReporter) DegradedRouting(DegradedRoutingWarning) {}
func (NopReporter) RunCompleted(RunResult)                 {}

// LoggingReporter renders events through a named logger. The CLI installs
// one; the library default stays silent.
type LoggingReporter struct {
	Logger *flogging.Logger
}

// NewLoggingReporter creates a reporter over the consensus.reporter logger.
func NewLoggingReporter() *LoggingReporter {
	return &LoggingReporter{Logger: flogging.MustGetLogger("consensus.reporter")}
}

func (r *LoggingReporter) ConnectivityChecked(c ConnectivityCheck) {
	r.Logger.Infow("connectivity check",
		"variant", c.Variant, "m", c.M, "required", c.Required, "actual", c.Actual, "ok", c.OK)
}

func (r *LoggingReporter) RoundCompleted(s RoundState) {
	for _, node := range s.Nodes {
		values := make([]string, len(node.Values))
		for i, v := range node.Values {
			values[i] = v.String()
		}
		r.Logger.Infow("round state",
			"variant", s.Variant, "round", s.Round, "node", node.Node, "role", node.Role,
			"loyal", node.Loyal, "values", values, "paths", node.PathCount)
	}
}

func (r *LoggingReporter) DegradedRouting(w DegradedRoutingWarning) {
	r.Logger.Warnw("degraded routing",
		"variant", w.Variant, "round", w.Round, "source", w.Source, "target", w.Target,
		"required", w.Required, "found", w.Found)
}

func (r *LoggingReporter) RunCompleted(res RunResult) {
	for _, id := range res.Decisions.OrderedIDs() {
		r.Logger.Infow("decision", "variant", res.Variant, "m", res.M, "node", id, "order", res.Decisions[id])
	}
}
