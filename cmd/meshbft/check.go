/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package main

import (
	"fmt"
	"io"

	"github.com/hyperledger-labs/meshbft/consensus"
	"github.com/hyperledger-labs/meshbft/routing"
	"github.com/hyperledger-labs/meshbft/scenario"
	"github.com/hyperledger-labs/meshbft/topology"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func newCheckCommand() *cobra.Command {
	var scenarioPath string

	cmd := &cobra.Command{
		Use:   "check [scenario-file]",
		Short: "Inspect a scenario's topology and its consensus feasibility",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				scenarioPath = args[0]
			}
			if scenarioPath == "" {
				return errors.New("a scenario file is required, pass it as an argument or with --scenario")
			}

			s, err := scenario.LoadFile(scenarioPath)
			if err != nil {
				return err
			}
			g, err := s.Topology.Graph()
			if err != nil {
				return err
			}
			return printTopologyReport(cmd.OutOrStdout(), s, g)
		},
	}

	cmd.Flags().StringVar(&scenarioPath, "scenario", "", "Path to the scenario YAML file")
	return cmd
}

func printTopologyReport(w io.Writer, s *scenario.Scenario, g *topology.Graph) error {
	stats := topology.GraphStats(g)
	fmt.Fprintf(w, "scenario:     %s\n", s.Name)
	fmt.Fprintf(w, "topology:     %s, %d nodes, %d edges\n", s.Topology.Kind, stats.Nodes, stats.Edges)
	fmt.Fprintf(w, "degree:       min %d, max %d, avg %.2f\n", stats.MinDegree, stats.MaxDegree, stats.AvgDegree)
	fmt.Fprintf(w, "connectivity: %d\n", g.Connectivity())

	for _, signed := range []bool{false, true} {
		variant := consensus.Oral
		if signed {
			variant = consensus.Signed
		}
		required, actual, ok := g.VerifyConnectivity(s.M, signed)
		verdict := "infeasible"
		if ok {
			verdict = "feasible"
		}
		fmt.Fprintf(w, "%-6s m=%d:   %s (connectivity %d, need %d)\n",
			variant, s.M, verdict, actual, required)
	}

	// Disjoint path supply from the commander to every other node, for the
	// variant the scenario declares.
	k := 2*s.M + 1
	if s.Variant == consensus.Signed {
		k = s.M + 1
	}
	for _, id := range g.Nodes() {
		if id == s.Commander {
			continue
		}
		paths, err := routing.RoutesBetween(g, s.Commander, id, k, 0)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "paths %d -> %d: %d of %d disjoint\n", s.Commander, id, len(paths), k)
	}
	return nil
}
