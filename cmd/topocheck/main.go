/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package main

import (
	"fmt"
	"os"

	"github.com/hyperledger-labs/meshbft/routing"
	"github.com/hyperledger-labs/meshbft/topology"
	"gopkg.in/alecthomas/kingpin.v2"
)

var (
	app = kingpin.New("topocheck", "Topology Connectivity Tool")

	kind  = app.Flag("kind", "Generated topology: complete, ring, star, or line.").Default("complete").String()
	nodes = app.Flag("nodes", "Number of nodes in the generated topology.").Default("4").Int()

	connectivity = app.Command("connectivity", "Compute the vertex connectivity of a topology.")

	gate       = app.Command("gate", "Check whether a topology supports consensus with a given fault bound.")
	gateM      = gate.Flag("m", "Maximum number of Byzantine faults.").Required().Int()
	gateSigned = gate.Flag("signed", "Check the signed variant instead of the oral one.").Bool()

	paths       = app.Command("paths", "Enumerate edge-disjoint routes between two nodes.")
	pathsSource = paths.Arg("source", "Source node id.").Required().Int()
	pathsTarget = paths.Arg("target", "Target node id.").Required().Int()
	pathsK      = paths.Flag("k", "Number of disjoint routes wanted.").Default("1").Int()

	args = os.Args[1:]
)

func main() {
	kingpin.Version("0.0.1")

	command, err := app.Parse(args)
	if err != nil {
		kingpin.Fatalf("parsing arguments: %s. Try --help", err)
		return
	}

	g, err := buildGraph(*kind, *nodes)
	if err != nil {
		fmt.Printf("Topology Error: %s\n", err)
		os.Exit(1)
	}

	switch command {

	case connectivity.FullCommand():

		exhaustive := g.Connectivity()
		maxflow := g.ConnectivityMaxflow()
		fmt.Printf("connectivity of %s with %d nodes: %d (maxflow agrees: %t)\n",
			*kind, *nodes, exhaustive, exhaustive == maxflow)

	case gate.FullCommand():

		required, actual, ok := g.VerifyConnectivity(*gateM, *gateSigned)
		variant := "oral"
		if *gateSigned {
			variant = "signed"
		}
		if ok {
			fmt.Printf("%s consensus with m=%d is feasible: connectivity %d meets the required %d\n",
				variant, *gateM, actual, required)
			return
		}
		fmt.Printf("%s consensus with m=%d is infeasible: connectivity %d is below the required %d\n",
			variant, *gateM, actual, required)
		os.Exit(1)

	case paths.FullCommand():

		routes, err := routing.RoutesBetween(g,
			topology.NodeID(*pathsSource), topology.NodeID(*pathsTarget), *pathsK, 0)
		if err != nil {
			fmt.Printf("Routing Error: %s\n", err)
			os.Exit(1)
		}
		fmt.Printf("%d of %d edge-disjoint routes from %d to %d:\n",
			len(routes), *pathsK, *pathsSource, *pathsTarget)
		for _, r := range routes {
			fmt.Println("  " + r.Key())
		}
	}
}

func buildGraph(kind string, n int) (*topology.Graph, error) {
	switch kind {
	case "complete":
		return topology.Complete(n)
	case "ring":
		return topology.Ring(n)
	case "star":
		return topology.Star(n)
	case "line":
		return topology.Line(n)
	default:
		return nil, fmt.Errorf("unknown topology kind %q", kind)
	}
}
