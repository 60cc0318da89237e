/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package main

import (
	"fmt"
	"io"

	"github.com/hyperledger-labs/meshbft/consensus"
	"github.com/hyperledger-labs/meshbft/scenario"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func newRunCommand() *cobra.Command {
	var scenarioPath string

	cmd := &cobra.Command{
		Use:   "run [scenario-file]",
		Short: "Run a consensus scenario and report the outcome",
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

			provider, cleanup, err := newMetricsProvider()
			if err != nil {
				return err
			}
			defer cleanup()

			result, err := s.Execute(
				consensus.WithReporter(consensus.NewLoggingReporter()),
				consensus.WithMetrics(consensus.NewMetrics(provider)),
			)
			if err != nil {
				return err
			}
			printResult(cmd.OutOrStdout(), result)
			return nil
		},
	}

	cmd.Flags().StringVar(&scenarioPath, "scenario", "", "Path to the scenario YAML file")
	return cmd
}

func printResult(w io.Writer, result *scenario.Result) {
	fmt.Fprintf(w, "scenario: %s\n", result.Scenario.Name)
	fmt.Fprintf(w, "variant:  %s, m=%d\n", variantName(result.Scenario.Variant), result.Scenario.M)
	for _, id := range result.Decisions.OrderedIDs() {
		marker := ""
		if id == result.Scenario.Commander {
			marker = " (commander)"
		}
		fmt.Fprintf(w, "node %d: %s%s\n", id, result.Decisions[id], marker)
	}
	fmt.Fprintf(w, "IC1: %t  IC2: %t  success: %t\n",
		result.Report.IC1, result.Report.IC2, result.Report.Success)
}

func variantName(v consensus.Variant) string {
	if v == consensus.Signed {
		return string(consensus.Signed)
	}
	return string(consensus.Oral)
}
