// Package metrics instruments the reconciliation library with prometheus
// counters, gauges and histograms, following the same promauto-based
// helpers and namespace convention as the rest of the module's ambient
// stack.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Namespace is the namespace every metric in this package is registered
// under.
const Namespace = "ibfsync"

// NewCounter creates a CounterVec under Namespace.
func NewCounter(name, subsystem, help string, labels []string) *prometheus.CounterVec {
	return promauto.NewCounterVec(prometheus.CounterOpts{Namespace: Namespace, Subsystem: subsystem, Name: name, Help: help}, labels)
}

// NewGauge creates a GaugeVec under Namespace.
func NewGauge(name, subsystem, help string, labels []string) *prometheus.GaugeVec {
	return promauto.NewGaugeVec(prometheus.GaugeOpts{Namespace: Namespace, Subsystem: subsystem, Name: name, Help: help}, labels)
}

// NewHistogram creates a HistogramVec under Namespace with default buckets.
func NewHistogram(name, subsystem, help string, labels []string) *prometheus.HistogramVec {
	return promauto.NewHistogramVec(prometheus.HistogramOpts{Namespace: Namespace, Subsystem: subsystem, Name: name, Help: help}, labels)
}

// NewHistogramWithBuckets creates a HistogramVec under Namespace with
// custom buckets.
func NewHistogramWithBuckets(name, subsystem, help string, labels []string, buckets []float64) *prometheus.HistogramVec {
	return promauto.NewHistogramVec(prometheus.HistogramOpts{Namespace: Namespace, Subsystem: subsystem, Name: name, Help: help, Buckets: buckets}, labels)
}

var (
	decodeAttempts = NewCounter(
		"decode_attempts_total",
		"ibf",
		"Number of peeling decode attempts, labeled by outcome.",
		[]string{"outcome"},
	)

	foldOperations = NewCounter(
		"fold_operations_total",
		"ibf",
		"Number of fold operations performed on a sketch.",
		[]string{"reverse"},
	)

	saturationEvents = NewCounter(
		"counter_saturation_total",
		"ibf",
		"Number of times a cell counter saturated instead of wrapping.",
		nil,
	)

	decodeDuration = NewHistogramWithBuckets(
		"decode_duration_seconds",
		"ibf",
		"Wall-clock time spent in a single decode call.",
		nil,
		prometheus.ExponentialBuckets(0.0001, 2, 14),
	)
)

// ReportDecode records a decode attempt's outcome (either "success" or
// "fail") and the time it took.
func ReportDecode(outcome string, seconds float64) {
	decodeAttempts.WithLabelValues(outcome).Inc()
	decodeDuration.WithLabelValues().Observe(seconds)
}

// ReportFold records a fold operation on a reverse or primary filter.
func ReportFold(isReverse bool) {
	reverse := "false"
	if isReverse {
		reverse = "true"
	}
	foldOperations.WithLabelValues(reverse).Inc()
}

// ReportSaturation records a counter saturation event.
func ReportSaturation() {
	saturationEvents.WithLabelValues().Inc()
}
