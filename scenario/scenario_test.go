/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package scenario_test

import (
	"strings"
	"testing"

	"github.com/hyperledger-labs/meshbft/agent"
	"github.com/hyperledger-labs/meshbft/consensus"
	"github.com/hyperledger-labs/meshbft/scenario"
	"github.com/hyperledger-labs/meshbft/topology"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

const fourGenerals = `
name: four-generals
topology:
  kind: complete
  nodes: 4
commander: 0
initial: ATTACK
byzantine: [2]
strategy:
  kind: parity
variant: oral
m: 1
`

func TestLoadScenario(t *testing.T) {
	s, err := scenario.Load(strings.NewReader(fourGenerals))
	require.NoError(t, err)

	require.Equal(t, "four-generals", s.Name)
	require.Equal(t, "complete", s.Topology.Kind)
	require.Equal(t, 4, s.Topology.Nodes)
	require.Equal(t, topology.NodeID(0), s.Commander)
	require.Equal(t, agent.Attack, s.Initial)
	require.Equal(t, []topology.NodeID{2}, s.Byzantine)
	require.Equal(t, consensus.Oral, s.Variant)
	require.Equal(t, 1, s.M)
}

func TestLoadRejectsUnknownFields(t *testing.T) {
	_, err := scenario.Load(strings.NewReader(`
name: typo
topology:
  kind: complete
  nodes: 4
commandr: 0
variant: oral
`))
	require.Error(t, err)
	require.Contains(t, err.Error(), "invalid keys")
}

func TestLoadRejectsBadOrder(t *testing.T) {
	_, err := scenario.Load(strings.NewReader(`
name: bad-order
topology:
  kind: complete
  nodes: 4
initial: CHARGE
variant: oral
`))
	require.Error(t, err)
	require.Contains(t, err.Error(), `unknown order "CHARGE"`)
}

func TestValidate(t *testing.T) {
	base := func() *scenario.Scenario {
		return &scenario.Scenario{
			Name:     "v",
			Topology: scenario.Topology{Kind: "complete", Nodes: 4},
			Variant:  consensus.Oral,
			M:        1,
		}
	}

	require.NoError(t, base().Validate())

	s := base()
	s.Topology.Kind = "mesh"
	require.EqualError(t, s.Validate(), `scenario "v": unknown topology kind "mesh"`)

	s = base()
	s.Variant = ""
	require.EqualError(t, s.Validate(), `scenario "v": variant is required`)

	s = base()
	s.Variant = "pbft"
	require.EqualError(t, s.Validate(), `scenario "v": unknown variant "pbft"`)

	s = base()
	s.M = -1
	require.EqualError(t, s.Validate(), `scenario "v": fault bound -1 is negative`)

	s = base()
	s.Strategy.Kind = "chaotic"
	require.EqualError(t, s.Validate(), `scenario "v": unknown strategy kind "chaotic"`)

	s = base()
	s.Topology = scenario.Topology{Kind: "custom"}
	require.EqualError(t, s.Validate(), `scenario "v": custom topology needs edges`)
}

func TestExecuteOralScenario(t *testing.T) {
	s, err := scenario.Load(strings.NewReader(fourGenerals))
	require.NoError(t, err)

	result, err := s.Execute()
	require.NoError(t, err)

	require.True(t, result.Report.IC1)
	require.True(t, result.Report.IC2)
	require.True(t, result.Report.Success)
	require.Equal(t, agent.Attack, result.Decisions[1])
	require.Equal(t, agent.Attack, result.Decisions[3])
	require.NotContains(t, result.Decisions, topology.NodeID(2))
}

func TestExecuteSignedRingScenario(t *testing.T) {
	s, err := scenario.Load(strings.NewReader(`
name: signed-ring
topology:
  kind: ring
  nodes: 5
commander: 0
initial: RETREAT
variant: signed
m: 1
`))
	require.NoError(t, err)

	result, err := s.Execute()
	require.NoError(t, err)
	require.True(t, result.Report.Success)
	for _, id := range result.Decisions.OrderedIDs() {
		require.Equal(t, agent.Retreat, result.Decisions[id])
	}
}

func TestExecuteInfeasibleScenario(t *testing.T) {
	s, err := scenario.Load(strings.NewReader(`
name: starved
topology:
  kind: star
  nodes: 5
commander: 0
initial: ATTACK
variant: oral
m: 1
`))
	require.NoError(t, err)

	_, err = s.Execute()
	var infeasible consensus.InfeasibleTopologyError
	require.True(t, errors.As(err, &infeasible))
	require.Equal(t, 1, infeasible.Actual)
}

func TestCustomTopology(t *testing.T) {
	s, err := scenario.Load(strings.NewReader(`
name: custom-square
topology:
  kind: custom
  edges: [[0, 1], [1, 2], [2, 3], [3, 0]]
commander: 0
initial: ATTACK
variant: signed
m: 1
`))
	require.NoError(t, err)

	net, err := s.Build()
	require.NoError(t, err)

	decisions, err := net.RunSigned(1, agent.Attack)
	require.NoError(t, err)
	require.Len(t, decisions, 4)
}

func TestBuildRejectsForeignCommander(t *testing.T) {
	s := &scenario.Scenario{
		Name:      "lost-commander",
		Topology:  scenario.Topology{Kind: "complete", Nodes: 3},
		Commander: 9,
		Variant:   consensus.Oral,
	}

	_, err := s.Build()
	var invalidRef topology.InvalidNodeReferenceError
	require.True(t, errors.As(err, &invalidRef))
	require.Equal(t, topology.NodeID(9), invalidRef.ID)
}

func TestRandomStrategyScenarioReproduces(t *testing.T) {
	text := `
name: seeded
topology:
  kind: complete
  nodes: 5
commander: 0
initial: ATTACK
byzantine: [1, 4]
strategy:
  kind: random
  seed: 11
variant: oral
m: 1
`
	load := func() *scenario.Scenario {
		s, err := scenario.Load(strings.NewReader(text))
		require.NoError(t, err)
		return s
	}

	a, err := load().Execute()
	require.NoError(t, err)
	b, err := load().Execute()
	require.NoError(t, err)
	require.Equal(t, a.Decisions, b.Decisions)
	require.Equal(t, a.Report, b.Report)
}
