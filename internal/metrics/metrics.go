// Package metrics exposes Prometheus instrumentation for the appender.
package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var callBuckets = []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30}

// Metrics counts event outcomes and times ticket service calls. A nil
// *Metrics is valid and records nothing.
type Metrics struct {
	events       *prometheus.CounterVec
	callDuration *prometheus.HistogramVec
}

// New creates the collectors and registers them on reg. Collectors that are
// already registered are reused, so several appenders may share a registry.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "jiralog",
			Subsystem: "appender",
			Name:      "events_total",
			Help:      "Number of error events by processing outcome",
		}, []string{"outcome"}),
		callDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "jiralog",
			Subsystem: "appender",
			Name:      "tracker_call_duration_seconds",
			Help:      "Latency of ticket service calls",
			Buckets:   callBuckets,
		}, []string{"op", "result"}),
	}
	if reg == nil {
		return m
	}

	if err := reg.Register(m.events); err != nil {
		var already prometheus.AlreadyRegisteredError
		if errors.As(err, &already) {
			if existing, ok := already.ExistingCollector.(*prometheus.CounterVec); ok {
				m.events = existing
			}
		}
	}
	if err := reg.Register(m.callDuration); err != nil {
		var already prometheus.AlreadyRegisteredError
		if errors.As(err, &already) {
			if existing, ok := already.ExistingCollector.(*prometheus.HistogramVec); ok {
				m.callDuration = existing
			}
		}
	}
	return m
}

// RecordOutcome counts one processed event.
func (m *Metrics) RecordOutcome(outcome string) {
	if m == nil {
		return
	}
	m.events.With(prometheus.Labels{"outcome": outcome}).Inc()
}

// ObserveCall records the latency of one ticket service call.
func (m *Metrics) ObserveCall(op string, d time.Duration, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.callDuration.With(prometheus.Labels{"op": op, "result": result}).Observe(d.Seconds())
}
