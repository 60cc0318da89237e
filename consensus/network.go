/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package consensus

import (
	"sort"

	"github.com/hyperledger-labs/meshbft/agent"
	"github.com/hyperledger-labs/meshbft/common/flogging"
	"github.com/hyperledger-labs/meshbft/common/metrics/disabled"
	"github.com/hyperledger-labs/meshbft/topology"
	"github.com/hyperledger-labs/meshbft/voting"
	"github.com/pkg/errors"
)

var logger = flogging.MustGetLogger("consensus")

// Network is the coordinator's view of one consensus deployment: the
// participants, their declared adjacency, and the single commander. It is
// the explicit routing object every delivery goes through; there is no
// process-wide registry.
//
// A Network may be run repeatedly. Each run resets all per-run state first,
// so identical inputs yield identical decisions.
type Network struct {
	agents    map[topology.NodeID]*agent.Agent
	neighbors map[topology.NodeID][]topology.NodeID
	order     []topology.NodeID

	commanderID  topology.NodeID
	hasCommander bool
	initialValue agent.Order

	reporter Reporter
	metrics  *Metrics
	maxHops  int
}

// Option customizes a Network.
type Option func(*Network)

// WithReporter installs the consumer for structured round records.
func WithReporter(r Reporter) Option {
	return func(n *Network) { n.reporter = r }
}

// WithMetrics installs the instruments the coordinator records into.
func WithMetrics(m *Metrics) Option {
	return func(n *Network) { n.metrics = m }
}

// WithMaxHops caps path enumeration length. Zero means the natural n-1
// limit.
func WithMaxHops(h int) Option {
	return func(n *Network) { n.maxHops = h }
}

// NewNetwork creates an empty network.
func NewNetwork(opts ...Option) *Network {
	n := &Network{
		agents:    make(map[topology.NodeID]*agent.Agent),
		neighbors: make(map[topology.NodeID][]topology.NodeID),
		reporter:  NopReporter{},
		metrics:   NewMetrics(&disabled.Provider{}),
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// NodeOption customizes one node.
type NodeOption func(*nodeConfig)

type nodeConfig struct {
	strategy agent.Strategy
}

// WithStrategy overrides the adversary strategy of a Byzantine node. The
// default is the deterministic parity strategy.
func WithStrategy(s agent.Strategy) NodeOption {
	return func(c *nodeConfig) { c.strategy = s }
}

// AddNode registers a lieutenant and its declared neighbors. Neighbors may
// reference nodes registered later; the references are validated when a run
// starts. Byzantine nodes lie per their strategy in every round after the
// first.
func (n *Network) AddNode(id topology.NodeID, neighbors []topology.NodeID, byzantine bool, opts ...NodeOption) error {
	return n.register(id, agent.Lieutenant, neighbors, byzantine, opts...)
}

// SetCommander registers the commander and its initial order. A second
// commander is rejected with DuplicateCommanderError. The commander is
// always loyal to its own order; a Byzantine commander is modeled with
// SetByzantineCommander.
func (n *Network) SetCommander(id topology.NodeID, neighbors []topology.NodeID, initial agent.Order) error {
	return n.setCommander(id, neighbors, initial, false)
}

// SetByzantineCommander registers a Byzantine commander.
func (n *Network) SetByzantineCommander(id topology.NodeID, neighbors []topology.NodeID, initial agent.Order, opts ...NodeOption) error {
	return n.setCommander(id, neighbors, initial, true, opts...)
}

func (n *Network) setCommander(id topology.NodeID, neighbors []topology.NodeID, initial agent.Order, byzantine bool, opts ...NodeOption) error {
	if n.hasCommander {
		return DuplicateCommanderError{Existing: n.commanderID, Proposed: id}
	}
	if err := n.register(id, agent.Commander, neighbors, byzantine, opts...); err != nil {
		return err
	}
	n.commanderID = id
	n.hasCommander = true
	n.initialValue = initial
	n.agents[id].SetInitialValue(initial)
	return nil
}

func (n *Network) register(id topology.NodeID, role agent.Role, neighbors []topology.NodeID, byzantine bool, opts ...NodeOption) error {
	if id < 0 {
		return errors.Errorf("node id %d is negative", id)
	}
	if _, exists := n.agents[id]; exists {
		return errors.Errorf("node %d is already registered", id)
	}
	var cfg nodeConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	n.agents[id] = agent.New(id, role, !byzantine, cfg.strategy)
	n.neighbors[id] = append([]topology.NodeID(nil), neighbors...)
	n.order = append(n.order, id)
	return nil
}

// CommanderID returns the commander's id; the second return is false when no
// commander is designated.
func (n *Network) CommanderID() (topology.NodeID, bool) {
	return n.commanderID, n.hasCommander
}

// Agent returns the agent for a node id, or nil.
func (n *Network) Agent(id topology.NodeID) *agent.Agent {
	return n.agents[id]
}

// NodeIDs returns all registered ids ascending.
func (n *Network) NodeIDs() []topology.NodeID {
	ids := make([]topology.NodeID, 0, len(n.agents))
	for id := range n.agents {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// buildGraph materializes the declared adjacency into an immutable graph for
// one run. A neighbor reference to an unregistered node fails here rather
// than being silently dropped.
func (n *Network) buildGraph() (*topology.Graph, error) {
	g := topology.NewGraph()
	for _, id := range n.NodeIDs() {
		if err := g.AddNode(id); err != nil {
			return nil, err
		}
	}
	for _, id := range n.NodeIDs() {
		for _, neighbor := range n.neighbors[id] {
			if !g.HasNode(neighbor) {
				return nil, errors.WithMessagef(
					topology.InvalidNodeReferenceError{ID: neighbor},
					"node %d declares unknown neighbor", id)
			}
			if err := g.AddEdge(id, neighbor); err != nil {
				return nil, err
			}
		}
	}
	return g, nil
}

// CheckConsensus applies the interactive-consistency verifier to a decision
// map produced by this network's runs.
func (n *Network) CheckConsensus(d voting.Decisions) (voting.Report, error) {
	if !n.hasCommander {
		return voting.Report{}, ErrNoCommander
	}
	commander := n.agents[n.commanderID]
	return voting.CheckConsensus(d, n.commanderID, commander.Loyal(), commander.InitialValue()), nil
}

// orderedAgents returns the agents ascending by id.
func (n *Network) orderedAgents() []*agent.Agent {
	ids := n.NodeIDs()
	agents := make([]*agent.Agent, 0, len(ids))
	for _, id := range ids {
		agents = append(agents, n.agents[id])
	}
	return agents
}
