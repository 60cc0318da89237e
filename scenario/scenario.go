/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package scenario

import (
	"github.com/hyperledger-labs/meshbft/agent"
	"github.com/hyperledger-labs/meshbft/consensus"
	"github.com/hyperledger-labs/meshbft/topology"
	"github.com/hyperledger-labs/meshbft/voting"
	"github.com/pkg/errors"
)

// Scenario is a declarative description of one consensus experiment:
// topology, fault assignment, protocol variant, and parameters.
type Scenario struct {
	Name      string
	Topology  Topology
	Commander topology.NodeID
	Initial   agent.Order
	Byzantine []topology.NodeID
	Strategy  Strategy
	Variant   consensus.Variant
	M         int
}

// Topology selects a generated or hand-built graph.
type Topology struct {
	// Kind is one of complete, ring, star, line, random, or custom.
	Kind  string
	Nodes int
	// Edges lists the adjacency of a custom topology.
	Edges [][2]int
	// P and Seed parameterize the random kind.
	P    float64
	Seed int64
}

// Strategy selects the adversary behavior of the Byzantine nodes.
type Strategy struct {
	// Kind is parity (default) or random.
	Kind string
	// Seed feeds the random strategy; each Byzantine node derives its own
	// stream from it, so runs reproduce exactly.
	Seed int64
}

// Validate checks the scenario for structural problems before any graph is
// built.
func (s *Scenario) Validate() error {
	switch s.Topology.Kind {
	case "complete", "ring", "star", "line", "random":
		if s.Topology.Nodes < 1 {
			return errors.Errorf("scenario %q: topology needs a positive node count", s.Name)
		}
	case "custom":
		if len(s.Topology.Edges) == 0 {
			return errors.Errorf("scenario %q: custom topology needs edges", s.Name)
		}
	default:
		return errors.Errorf("scenario %q: unknown topology kind %q", s.Name, s.Topology.Kind)
	}

	switch s.Variant {
	case consensus.Oral, consensus.Signed:
	case "":
		return errors.Errorf("scenario %q: variant is required", s.Name)
	default:
		return errors.Errorf("scenario %q: unknown variant %q", s.Name, s.Variant)
	}

	switch s.Strategy.Kind {
	case "", "parity", "random":
	default:
		return errors.Errorf("scenario %q: unknown strategy kind %q", s.Name, s.Strategy.Kind)
	}

	if s.M < 0 {
		return errors.Errorf("scenario %q: fault bound %d is negative", s.Name, s.M)
	}
	return nil
}

// Graph materializes the declared topology.
func (t Topology) Graph() (*topology.Graph, error) {
	switch t.Kind {
	case "complete":
		return topology.Complete(t.Nodes)
	case "ring":
		return topology.Ring(t.Nodes)
	case "star":
		return topology.Star(t.Nodes)
	case "line":
		return topology.Line(t.Nodes)
	case "random":
		return topology.RandomConnected(t.Nodes, t.P, t.Seed)
	case "custom":
		g := topology.NewGraph()
		for _, e := range t.Edges {
			for _, end := range e {
				if !g.HasNode(topology.NodeID(end)) {
					if err := g.AddNode(topology.NodeID(end)); err != nil {
						return nil, err
					}
				}
			}
			if err := g.AddEdge(topology.NodeID(e[0]), topology.NodeID(e[1])); err != nil {
				return nil, err
			}
		}
		return g, nil
	default:
		return nil, errors.Errorf("unknown topology kind %q", t.Kind)
	}
}

func (s *Scenario) byzantine(id topology.NodeID) bool {
	for _, b := range s.Byzantine {
		if b == id {
			return true
		}
	}
	return false
}

func (s *Scenario) strategyFor(id topology.NodeID) agent.Strategy {
	if s.Strategy.Kind == "random" {
		return agent.NewRandomStrategy(s.Strategy.Seed + int64(id))
	}
	// Parity is the agent package's default.
	return nil
}

// Build materializes the scenario into a runnable network.
func (s *Scenario) Build(opts ...consensus.Option) (*consensus.Network, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	g, err := s.Topology.Graph()
	if err != nil {
		return nil, err
	}
	if !g.HasNode(s.Commander) {
		return nil, errors.WithMessagef(
			topology.InvalidNodeReferenceError{ID: s.Commander},
			"scenario %q: commander", s.Name)
	}
	for _, b := range s.Byzantine {
		if !g.HasNode(b) {
			return nil, errors.WithMessagef(
				topology.InvalidNodeReferenceError{ID: b},
				"scenario %q: byzantine node", s.Name)
		}
	}

	net := consensus.NewNetwork(opts...)
	for _, id := range g.Nodes() {
		neighbors := g.Neighbors(id)
		switch {
		case id == s.Commander && s.byzantine(id):
			err = net.SetByzantineCommander(id, neighbors, s.Initial,
				consensus.WithStrategy(s.strategyFor(id)))
		case id == s.Commander:
			err = net.SetCommander(id, neighbors, s.Initial)
		default:
			err = net.AddNode(id, neighbors, s.byzantine(id),
				consensus.WithStrategy(s.strategyFor(id)))
		}
		if err != nil {
			return nil, err
		}
	}
	return net, nil
}

// Result is one executed scenario: the decisions and the verifier's verdict.
type Result struct {
	Scenario  *Scenario
	Decisions voting.Decisions
	Report    voting.Report
}

// Execute builds and runs the scenario, then applies the verifier. An
// infeasible topology surfaces as the run's error.
func (s *Scenario) Execute(opts ...consensus.Option) (*Result, error) {
	net, err := s.Build(opts...)
	if err != nil {
		return nil, err
	}

	var decisions voting.Decisions
	switch s.Variant {
	case consensus.Signed:
		decisions, err = net.RunSigned(s.M, s.Initial)
	default:
		decisions, err = net.RunOral(s.M, s.Initial)
	}
	if err != nil {
		return nil, errors.WithMessagef(err, "scenario %q", s.Name)
	}

	report, err := net.CheckConsensus(decisions)
	if err != nil {
		return nil, err
	}
	return &Result{Scenario: s, Decisions: decisions, Report: report}, nil
}
