/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package consensus

import (
	"fmt"

	"github.com/hyperledger-labs/meshbft/topology"
	"github.com/pkg/errors"
)

// Variant names the protocol family of a run.
type Variant string

const (
	// Oral is the oral-message protocol OM(m): connectivity 2m+1, no
	// signatures, m+1 rounds of multipath relay.
	Oral Variant = "oral"
	// Signed is the signed-message protocol SM(m): connectivity m+1,
	// simulated signature chains, m+1 rounds.
	Signed Variant = "signed"
)

// InfeasibleTopologyError reports that the pre-flight connectivity gate
// failed: the graph cannot support deterministic agreement for the declared
// fault bound, and the run produced no decisions. Callers may retry with a
// different topology or a smaller m.
type InfeasibleTopologyError struct {
	Variant  Variant
	M        int
	Required int
	Actual   int
}

func (e InfeasibleTopologyError) Error() string {
	return fmt.Sprintf("topology cannot support %s consensus with %d faults: connectivity is %d, need at least %d",
		e.Variant, e.M, e.Actual, e.Required)
}

// DuplicateCommanderError reports an attempt to designate a second
// commander.
type DuplicateCommanderError struct {
	Existing topology.NodeID
	Proposed topology.NodeID
}

func (e DuplicateCommanderError) Error() string {
	return fmt.Sprintf("node %d cannot be commander: node %d already is", e.Proposed, e.Existing)
}

// ErrNoCommander is returned when a run starts on a network without a
// designated commander.
var ErrNoCommander = errors.New("no commander designated")
