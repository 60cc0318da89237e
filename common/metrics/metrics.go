/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package metrics

// A Provider is an abstraction for a metrics provider. It is a factory for
// Counter, Gauge, and Histogram.
type Provider interface {
	// NewCounter creates a new instance of a Counter.
	NewCounter(CounterOpts) Counter
	// NewGauge creates a new instance of a Gauge.
	NewGauge(GaugeOpts) Gauge
	// NewHistogram creates a new instance of a Histogram.
	NewHistogram(HistogramOpts) Histogram
}

// A Counter represents a monotonically increasing value.
type Counter interface {
	// With is used to provide label values when updating a Counter. This
	// must be used to provide values for all LabelNames provided to
	// CounterOpts.
	With(labelValues ...string) Counter

	// Add increments a counter value.
	Add(delta float64)
}

// CounterOpts is used to provide basic information about a counter to be
// created.
type CounterOpts struct {
	// Namespace, Subsystem, and Name are components of the fully qualified
	// name of the Metric. The fully qualified name is created by joining
	// these components with an appropriate separator. Only Name is
	// mandatory, the others merely help structuring the name.
	Namespace string
	Subsystem string
	Name      string

	// Help provides information about this metric.
	Help string

	// LabelNames provides the names of the labels that can be attached to
	// this metric. When a metric is recorded, label values must be provided
	// for each of these label names.
	LabelNames []string

	// StatsdFormat determines how the fully qualified statsd bucket name is
	// constructed from Namespace, Subsystem, Name, and LabelNames. This is
	// done by including the string representation of these fields in a
	// format string. The supported verbs are %{#namespace}, %{#subsystem},
	// %{#name}, %{#fqname}, and %{label_name} for each element of
	// LabelNames.
	StatsdFormat string
}

// A Gauge is a meter that expresses the current value of some metric.
type Gauge interface {
	// With is used to provide label values when recording a Gauge value.
	// This must be used to provide values for all LabelNames provided to
	// GaugeOpts.
	With(labelValues ...string) Gauge

	// Add increments a Gauge value.
	Add(delta float64)

	// Set is used to update the current value associated with a Gauge.
	Set(value float64)
}

// GaugeOpts is used to provide basic information about a gauge to be
// created.
type GaugeOpts struct {
	// Namespace, Subsystem, and Name are components of the fully qualified
	// name of the Metric. The fully qualified name is created by joining
	// these components with an appropriate separator. Only Name is
	// mandatory, the others merely help structuring the name.
	Namespace string
	Subsystem string
	Name      string

	// Help provides information about this metric.
	Help string

	// LabelNames provides the names of the labels that can be attached to
	// this metric. When a metric is recorded, label values must be provided
	// for each of these label names.
	LabelNames []string

	// StatsdFormat determines how the fully qualified statsd bucket name is
	// constructed from Namespace, Subsystem, Name, and LabelNames. See
	// CounterOpts for the supported verbs.
	StatsdFormat string
}

// A Histogram is a meter that records an observed value into quantized
// buckets.
type Histogram interface {
	// With is used to provide label values when recording a Histogram
	// observation. This must be used to provide values for all LabelNames
	// provided to HistogramOpts.
	With(labelValues ...string) Histogram
	Observe(value float64)
}

// HistogramOpts is used to provide basic information about a histogram to
// be created.
type HistogramOpts struct {
	// Namespace, Subsystem, and Name are components of the fully qualified
	// name of the Metric. The fully qualified name is created by joining
	// these components with an appropriate separator. Only Name is
	// mandatory, the others merely help structuring the name.
	Namespace string
	Subsystem string
	Name      string

	// Buckets can be used to provide the bucket boundaries for the
	// histogram. When omitted, the provider chooses its defaults.
	Buckets []float64

	// Help provides information about this metric.
	Help string

	// LabelNames provides the names of the labels that can be attached to
	// this metric. When a metric is recorded, label values must be provided
	// for each of these label names.
	LabelNames []string

	// StatsdFormat determines how the fully qualified statsd bucket name is
	// constructed from Namespace, Subsystem, Name, and LabelNames. See
	// CounterOpts for the supported verbs.
	StatsdFormat string
}
