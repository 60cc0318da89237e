/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package consensus

import (
	"github.com/hyperledger-labs/meshbft/common/metrics"
)

var (
	roundsCompletedOpts = metrics.CounterOpts{
		Namespace:    "consensus",
		Name:         "rounds_completed",
		Help:         "The number of protocol rounds executed.",
		LabelNames:   []string{"variant"},
		StatsdFormat: "%{#fqname}.%{variant}",
	}
	messagesDeliveredOpts = metrics.CounterOpts{
		Namespace:    "consensus",
		Name:         "messages_delivered",
		Help:         "The number of hop deliveries logged by receiving nodes.",
		LabelNames:   []string{"variant"},
		StatsdFormat: "%{#fqname}.%{variant}",
	}
	corruptedSendsOpts = metrics.CounterOpts{
		Namespace:    "consensus",
		Name:         "corrupted_sends",
		Help:         "The number of transmissions whose value a Byzantine node replaced.",
		LabelNames:   []string{"variant"},
		StatsdFormat: "%{#fqname}.%{variant}",
	}
	degradedPairsOpts = metrics.CounterOpts{
		Namespace:    "consensus",
		Name:         "degraded_pairs",
		Help:         "The number of source/target pairs that yielded fewer disjoint routes than required.",
		LabelNames:   []string{"variant"},
		StatsdFormat: "%{#fqname}.%{variant}",
	}
	runsCompletedOpts = metrics.CounterOpts{
		Namespace:    "consensus",
		Name:         "runs_completed",
		Help:         "The number of consensus runs, labeled by their outcome.",
		LabelNames:   []string{"variant", "outcome"},
		StatsdFormat: "%{#fqname}.%{variant}.%{outcome}",
	}
	connectivityOpts = metrics.GaugeOpts{
		Namespace:    "consensus",
		Name:         "graph_connectivity",
		Help:         "The vertex connectivity computed by the last pre-flight check.",
		StatsdFormat: "%{#fqname}",
	}
)

// Metrics holds the instruments the coordinator records into.
type Metrics struct {
	RoundsCompleted   metrics.Counter
	MessagesDelivered metrics.Counter
	CorruptedSends    metrics.Counter
	DegradedPairs     metrics.Counter
	RunsCompleted     metrics.Counter
	GraphConnectivity metrics.Gauge
}

// NewMetrics creates the coordinator's instruments from a provider.
func NewMetrics(p metrics.Provider) *Metrics {
	return &Metrics{
		RoundsCompleted:   p.NewCounter(roundsCompletedOpts),
		MessagesDelivered: p.NewCounter(messagesDeliveredOpts),
		CorruptedSends:    p.NewCounter(corruptedSendsOpts),
		DegradedPairs:     p.NewCounter(degradedPairsOpts),
		RunsCompleted:     p.NewCounter(runsCompletedOpts),
		GraphConnectivity: p.NewGauge(connectivityOpts),
	}
}
