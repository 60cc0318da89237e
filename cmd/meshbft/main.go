/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package main

import (
	"os"
	"strings"

	"github.com/hyperledger-labs/meshbft/common/flogging"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// The meshbft command drives Byzantine-agreement simulations over
// partially-connected topologies: it loads declarative scenarios, runs the
// oral or signed protocol, and reports decisions and the
// interactive-consistency verdict.
func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var loggingSpec, loggingFormat string

	cmd := &cobra.Command{
		Use:           "meshbft",
		Short:         "Byzantine agreement over partially-connected topologies",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			viper.SetEnvPrefix("meshbft")
			viper.AutomaticEnv()
			viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
			if err := viper.BindPFlags(cmd.Root().PersistentFlags()); err != nil {
				return err
			}
			flogging.Init(flogging.Config{
				Format:  loggingFormat,
				LogSpec: loggingSpec,
				Writer:  os.Stderr,
			})
			return nil
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&loggingSpec, "logging-spec", "", "Logging specification, e.g. consensus=debug:info")
	flags.StringVar(&loggingFormat, "logging-format", "", "Log encoding: logfmt, json, or console")
	addMetricsFlags(flags)

	cmd.AddCommand(newRunCommand())
	cmd.AddCommand(newCheckCommand())
	cmd.AddCommand(newVersionCommand())
	return cmd
}
