/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package agent

import (
	"strings"

	"github.com/pkg/errors"
)

// Order is the two-valued decision domain of the protocol. Retreat is the
// zero value: every tie, missing vote, and empty log resolves to it, which
// keeps the tie-break deterministic and safe.
type Order uint8

const (
	Retreat Order = iota
	Attack
)

func (o Order) String() string {
	if o == Attack {
		return "ATTACK"
	}
	return "RETREAT"
}

// ParseOrder converts a case-insensitive order name to its value.
func ParseOrder(s string) (Order, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "ATTACK":
		return Attack, nil
	case "RETREAT":
		return Retreat, nil
	default:
		return Retreat, errors.Errorf("unknown order %q, expected ATTACK or RETREAT", s)
	}
}

// Role distinguishes the single commander from its lieutenants.
type Role uint8

const (
	Lieutenant Role = iota
	Commander
)

func (r Role) String() string {
	if r == Commander {
		return "commander"
	}
	return "lieutenant"
}
