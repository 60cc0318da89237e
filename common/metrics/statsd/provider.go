/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package statsd

import (
	kitstatsd "github.com/go-kit/kit/metrics/statsd"
	"github.com/hyperledger-labs/meshbft/common/metrics"
	"github.com/hyperledger-labs/meshbft/common/metrics/internal/namer"
)

const defaultFormat = "%{#fqname}"

type Provider struct {
	Statsd *kitstatsd.Statsd
}

func (p *Provider) NewCounter(o metrics.CounterOpts) metrics.Counter {
	if o.StatsdFormat == "" {
		o.StatsdFormat = defaultFormat
	}
	counter := &Counter{
		statsdProvider: p.Statsd,
		namer:          namer.NewCounterNamer(o),
	}

	if len(o.LabelNames) == 0 {
		counter.Counter = p.Statsd.NewCounter(counter.namer.Format(), 1)
	}

	return counter
}

func (p *Provider) NewGauge(o metrics.GaugeOpts) metrics.Gauge {
	if o.StatsdFormat == "" {
		o.StatsdFormat = defaultFormat
	}
	gauge := &Gauge{
		statsdProvider: p.Statsd,
		namer:          namer.NewGaugeNamer(o),
	}

	if len(o.LabelNames) == 0 {
		gauge.Gauge = p.Statsd.NewGauge(gauge.namer.Format())
	}

	return gauge
}

func (p *Provider) NewHistogram(o metrics.HistogramOpts) metrics.Histogram {
	if o.StatsdFormat == "" {
		o.StatsdFormat = defaultFormat
	}
	histogram := &Histogram{
		statsdProvider: p.Statsd,
		namer:          namer.NewHistogramNamer(o),
	}

	if len(o.LabelNames) == 0 {
		histogram.Timing = p.Statsd.NewTiming(histogram.namer.Format(), 1)
	}

	return histogram
}

type Counter struct {
	Counter        *kitstatsd.Counter
	namer          *namer.Namer
	statsdProvider *kitstatsd.Statsd
	labelValues    []string
}

func (c *Counter) With(labelValues ...string) metrics.Counter {
	return &Counter{
		Counter:        c.Counter,
		namer:          c.namer,
		statsdProvider: c.statsdProvider,
		labelValues:    append(c.labelValues, labelValues...),
	}
}

func (c *Counter) Add(delta float64) {
	if c.Counter == nil {
		formattedName := c.namer.Format(c.labelValues...)
		c.Counter = c.statsdProvider.NewCounter(formattedName, 1)
	}
	c.Counter.Add(delta)
}

type Gauge struct {
	Gauge          *kitstatsd.Gauge
	namer          *namer.Namer
	statsdProvider *kitstatsd.Statsd
	labelValues    []string
}

func (g *Gauge) With(labelValues ...string) metrics.Gauge {
	return &Gauge{
		Gauge:          g.Gauge,
		namer:          g.namer,
		statsdProvider: g.statsdProvider,
		labelValues:    append(g.labelValues, labelValues...),
	}
}

func (g *Gauge) Add(delta float64) {
	if g.Gauge == nil {
		formattedName := g.namer.Format(g.labelValues...)
		g.Gauge = g.statsdProvider.NewGauge(formattedName)
	}
	g.Gauge.Add(delta)
}

func (g *Gauge) Set(value float64) {
	if g.Gauge == nil {
		formattedName := g.namer.Format(g.labelValues...)
		g.Gauge = g.statsdProvider.NewGauge(formattedName)
	}
	g.Gauge.Set(value)
}

type Histogram struct {
	Timing         *kitstatsd.Timing
	namer          *namer.Namer
	statsdProvider *kitstatsd.Statsd
	labelValues    []string
}

func (h *Histogram) With(labelValues ...string) metrics.Histogram {
	return &Histogram{
		Timing:         h.Timing,
		namer:          h.namer,
		statsdProvider: h.statsdProvider,
		labelValues:    append(h.labelValues, labelValues...),
	}
}

func (h *Histogram) Observe(value float64) {
	if h.Timing == nil {
		formattedName := h.namer.Format(h.labelValues...)
		h.Timing = h.statsdProvider.NewTiming(formattedName, 1)
	}
	h.Timing.Observe(value)
}
