/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package metrics_test

import (
	"testing"

	flmetrics "github.com/hyperledger-labs/meshbft/common/flogging/metrics"
	"github.com/hyperledger-labs/meshbft/common/metrics"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

type recordingCounter struct {
	labelValues []string
	addCount    int
	parent      *recordingCounter
}

func (r *recordingCounter) With(labelValues ...string) metrics.Counter {
	return &recordingCounter{labelValues: labelValues, parent: r}
}

func (r *recordingCounter) Add(delta float64) {
	if r.parent != nil {
		r.parent.addCount++
		return
	}
	r.addCount++
}

type recordingProvider struct {
	counters map[string]*recordingCounter
}

func (r *recordingProvider) NewCounter(o metrics.CounterOpts) metrics.Counter {
	c := &recordingCounter{}
	r.counters[o.Name] = c
	return c
}

func (r *recordingProvider) NewGauge(o metrics.GaugeOpts) metrics.Gauge             { return nil }
func (r *recordingProvider) NewHistogram(o metrics.HistogramOpts) metrics.Histogram { return nil }

func TestObserver(t *testing.T) {
	provider := &recordingProvider{counters: map[string]*recordingCounter{}}
	observer := flmetrics.NewObserver(provider)

	require.Contains(t, provider.counters, "entries_checked")
	require.Contains(t, provider.counters, "entries_written")

	entry := zapcore.Entry{Level: zapcore.DebugLevel}
	observer.Check(entry, nil)
	observer.Check(entry, nil)
	require.Equal(t, 2, provider.counters["entries_checked"].addCount)

	observer.WriteEntry(entry, nil)
	require.Equal(t, 1, provider.counters["entries_written"].addCount)
}
