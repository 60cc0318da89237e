/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package consensus_test

import (
	"testing"

	"github.com/hyperledger-labs/meshbft/agent"
	"github.com/hyperledger-labs/meshbft/consensus"
	"github.com/hyperledger-labs/meshbft/topology"
	"github.com/stretchr/testify/require"
)

type recordingReporter struct {
	checks   []consensus.ConnectivityCheck
	rounds   []consensus.RoundState
	degraded []consensus.DegradedRoutingWarning
	results  []consensus.RunResult
}

func (r *recordingReporter) ConnectivityChecked(c consensus.ConnectivityCheck) {
	r.checks = append(r.checks, c)
}

func (r *recordingReporter) RoundCompleted(s consensus.RoundState) {
	r.rounds = append(r.rounds, s)
}

func (r *recordingReporter) DegradedRouting(w consensus.DegradedRoutingWarning) {
	r.degraded = append(r.degraded, w)
}

func (r *recordingReporter) RunCompleted(res consensus.RunResult) {
	r.results = append(r.results, res)
}

func TestReporterReceivesRoundRecords(t *testing.T) {
	reporter := &recordingReporter{}
	net := completeNetwork(t, 4, nil, consensus.WithReporter(reporter))

	decisions, err := net.RunOral(1, agent.Attack)
	require.NoError(t, err)

	require.Len(t, reporter.checks, 1)
	require.Equal(t, consensus.ConnectivityCheck{
		Variant:  consensus.Oral,
		M:        1,
		Required: 3,
		Actual:   3,
		OK:       true,
	}, reporter.checks[0])

	require.Len(t, reporter.rounds, 2, "m+1 rounds")
	round0 := reporter.rounds[0]
	require.Equal(t, 0, round0.Round)
	require.Len(t, round0.Nodes, 4)

	// The commander originates round 0 and receives nothing.
	require.Equal(t, topology.NodeID(0), round0.Nodes[0].Node)
	require.Equal(t, agent.Commander, round0.Nodes[0].Role)
	require.Zero(t, round0.Nodes[0].PathCount)

	// Every lieutenant heard the commander's order; path counts include
	// transit deliveries on the longer disjoint routes.
	for _, node := range round0.Nodes[1:] {
		require.Equal(t, []agent.Order{agent.Attack}, node.Values)
		require.Positive(t, node.PathCount)
	}

	require.Empty(t, reporter.degraded, "complete graph satisfies every pair")

	require.Len(t, reporter.results, 1)
	require.Equal(t, consensus.Oral, reporter.results[0].Variant)
	require.Equal(t, decisions, reporter.results[0].Decisions)
}

func TestDegradedRoutingIsSurfacedAndNonFatal(t *testing.T) {
	// Capping path length at one hop leaves a single route per pair even
	// though the gate passes; the run must flag every shortfall and still
	// complete. Whether agreement survives degraded routing is deliberately
	// left to the verifier.
	reporter := &recordingReporter{}
	net := completeNetwork(t, 4, nil,
		consensus.WithReporter(reporter),
		consensus.WithMaxHops(1))

	decisions, err := net.RunOral(1, agent.Attack)
	require.NoError(t, err, "degraded routing does not abort the run")
	require.Len(t, decisions, 4)

	require.NotEmpty(t, reporter.degraded)
	for _, w := range reporter.degraded {
		require.Equal(t, 3, w.Required)
		require.Equal(t, 1, w.Found)
		require.NotEqual(t, w.Source, w.Target)
	}

	// All loyal, so single-route delivery still agrees.
	report, err := net.CheckConsensus(decisions)
	require.NoError(t, err)
	require.True(t, report.Success)
}

func TestInfeasibleRunReportsCheckOnly(t *testing.T) {
	reporter := &recordingReporter{}
	net := completeNetwork(t, 3, nil, consensus.WithReporter(reporter))

	_, err := net.RunOral(1, agent.Attack)
	require.Error(t, err)

	require.Len(t, reporter.checks, 1)
	require.False(t, reporter.checks[0].OK)
	require.Empty(t, reporter.rounds, "no protocol traffic before the gate passes")
	require.Empty(t, reporter.results)
}
