/*
Copyright IBM Corp All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package integration

import (
	"errors"
	"strings"

	"github.com/hyperledger-labs/meshbft/agent"
	"github.com/hyperledger-labs/meshbft/consensus"
	"github.com/hyperledger-labs/meshbft/scenario"
	"github.com/hyperledger-labs/meshbft/topology"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func load(body string) *scenario.Scenario {
	s, err := scenario.Load(strings.NewReader(body))
	Expect(err).NotTo(HaveOccurred())
	return s
}

type recordingReporter struct {
	checks   []consensus.ConnectivityCheck
	rounds   []consensus.RoundState
	degraded []consensus.DegradedRoutingWarning
	results  []consensus.RunResult
}

func (r *recordingReporter) ConnectivityChecked(c consensus.ConnectivityCheck) {
	r.checks = append(r.checks, c)
}
func (r *recordingReporter) RoundCompleted(s consensus.RoundState) { r.rounds = append(r.rounds, s) }
func (r *recordingReporter) DegradedRouting(w consensus.DegradedRoutingWarning) {
	r.degraded = append(r.degraded, w)
}
func (r *recordingReporter) RunCompleted(res consensus.RunResult) { r.results = append(r.results, res) }

var _ = Describe("Oral consensus", func() {
	When("one lieutenant on the complete four-node graph is Byzantine", func() {
		It("reaches interactive consistency on the commander's order", func() {
			s := load(`
name: four-generals
topology:
  kind: complete
  nodes: 4
commander: 0
initial: ATTACK
byzantine: [2]
variant: oral
m: 1
`)
			result, err := s.Execute()
			Expect(err).NotTo(HaveOccurred())

			Expect(result.Report.IC1).To(BeTrue())
			Expect(result.Report.IC2).To(BeTrue())
			Expect(result.Report.Success).To(BeTrue())
			Expect(result.Decisions[1]).To(Equal(agent.Attack))
			Expect(result.Decisions[3]).To(Equal(agent.Attack))
			Expect(result.Decisions).NotTo(HaveKey(topology.NodeID(2)))
		})
	})

	When("every node is loyal", func() {
		It("adopts the commander's order everywhere", func() {
			s := load(`
name: quiet-camp
topology:
  kind: complete
  nodes: 5
commander: 0
initial: RETREAT
variant: oral
m: 1
`)
			result, err := s.Execute()
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Report.Success).To(BeTrue())
			for _, id := range result.Decisions.OrderedIDs() {
				Expect(result.Decisions[id]).To(Equal(agent.Retreat))
			}
		})
	})

	When("the commander itself is Byzantine", func() {
		It("still lets the loyal lieutenants agree among themselves", func() {
			s := load(`
name: traitor-commander
topology:
  kind: complete
  nodes: 4
commander: 0
initial: ATTACK
byzantine: [0]
variant: oral
m: 1
`)
			result, err := s.Execute()
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Decisions).NotTo(HaveKey(topology.NodeID(0)))
			Expect(result.Report.IC1).To(BeTrue())
			Expect(result.Report.Success).To(BeTrue())
		})
	})

	When("the topology is too thin for the fault bound", func() {
		It("refuses to run and names the shortfall", func() {
			s := load(`
name: starved
topology:
  kind: star
  nodes: 5
commander: 0
initial: ATTACK
variant: oral
m: 1
`)
			_, err := s.Execute()
			var infeasible consensus.InfeasibleTopologyError
			Expect(errors.As(err, &infeasible)).To(BeTrue())
			Expect(infeasible.Required).To(Equal(3))
			Expect(infeasible.Actual).To(Equal(1))
		})
	})
})

var _ = Describe("Signed consensus", func() {
	It("succeeds on a ring the oral variant rejects", func() {
		ring := `
name: thin-ring
topology:
  kind: ring
  nodes: 4
commander: 0
initial: ATTACK
variant: %s
m: 1
`
		_, err := load(strings.Replace(ring, "%s", "oral", 1)).Execute()
		var infeasible consensus.InfeasibleTopologyError
		Expect(errors.As(err, &infeasible)).To(BeTrue())

		result, err := load(strings.Replace(ring, "%s", "signed", 1)).Execute()
		Expect(err).NotTo(HaveOccurred())
		Expect(result.Report.Success).To(BeTrue())
		for _, id := range result.Decisions.OrderedIDs() {
			Expect(result.Decisions[id]).To(Equal(agent.Attack))
		}
	})

	It("tolerates a Byzantine lieutenant on the complete graph", func() {
		s := load(`
name: signed-four
topology:
  kind: complete
  nodes: 4
commander: 0
initial: ATTACK
byzantine: [2]
variant: signed
m: 1
`)
		result, err := s.Execute()
		Expect(err).NotTo(HaveOccurred())
		Expect(result.Report.Success).To(BeTrue())
		Expect(result.Decisions[1]).To(Equal(agent.Attack))
		Expect(result.Decisions[3]).To(Equal(agent.Attack))
	})

	It("runs over a hand-built square topology", func() {
		s := load(`
name: square
topology:
  kind: custom
  edges: [[0, 1], [1, 2], [2, 3], [3, 0]]
commander: 0
initial: RETREAT
variant: signed
m: 1
`)
		result, err := s.Execute()
		Expect(err).NotTo(HaveOccurred())
		Expect(result.Report.Success).To(BeTrue())
		for _, id := range result.Decisions.OrderedIDs() {
			Expect(result.Decisions[id]).To(Equal(agent.Retreat))
		}
	})
})

var _ = Describe("Run observability", func() {
	It("streams the gate check, every round, and the final verdict", func() {
		s := load(`
name: observed
topology:
  kind: complete
  nodes: 4
commander: 0
initial: ATTACK
byzantine: [2]
variant: oral
m: 1
`)
		reporter := &recordingReporter{}
		result, err := s.Execute(consensus.WithReporter(reporter))
		Expect(err).NotTo(HaveOccurred())
		Expect(result.Report.Success).To(BeTrue())

		Expect(reporter.checks).To(HaveLen(1))
		Expect(reporter.checks[0].Required).To(Equal(3))
		Expect(reporter.checks[0].Actual).To(Equal(3))

		Expect(reporter.rounds).To(HaveLen(2), "an m=1 run has rounds 0 and 1")
		Expect(reporter.rounds[0].Round).To(Equal(0))
		Expect(reporter.rounds[1].Round).To(Equal(1))

		Expect(reporter.results).To(HaveLen(1))
		Expect(reporter.results[0].Decisions).To(Equal(result.Decisions))
	})

	It("emits nothing past the gate when the topology is infeasible", func() {
		s := load(`
name: observed-starved
topology:
  kind: ring
  nodes: 5
commander: 0
initial: ATTACK
variant: oral
m: 2
`)
		reporter := &recordingReporter{}
		_, err := s.Execute(consensus.WithReporter(reporter))
		Expect(err).To(HaveOccurred())
		Expect(reporter.checks).To(HaveLen(1))
		Expect(reporter.rounds).To(BeEmpty())
		Expect(reporter.results).To(BeEmpty())
	})
})

var _ = Describe("Deterministic replay", func() {
	It("reproduces a seeded random adversary exactly", func() {
		body := `
name: replay
topology:
  kind: complete
  nodes: 7
commander: 0
initial: ATTACK
byzantine: [3, 5]
strategy:
  kind: random
  seed: 42
variant: oral
m: 1
`
		first, err := load(body).Execute()
		Expect(err).NotTo(HaveOccurred())
		second, err := load(body).Execute()
		Expect(err).NotTo(HaveOccurred())

		Expect(second.Decisions).To(Equal(first.Decisions))
		Expect(second.Report).To(Equal(first.Report))
	})
})
