package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordOutcome(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.RecordOutcome("created")
	m.RecordOutcome("created")
	m.RecordOutcome("ignored")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.events.WithLabelValues("created")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.events.WithLabelValues("ignored")))
}

func TestObserveCall(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ObserveCall("create", 120*time.Millisecond, nil)
	m.ObserveCall("create", time.Second, errors.New("boom"))

	assert.Equal(t, 2, testutil.CollectAndCount(m.callDuration))
}

func TestSharedRegistryReusesCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	a := New(reg)
	b := New(reg)

	a.RecordOutcome("commented")
	b.RecordOutcome("commented")

	assert.Equal(t, 2.0, testutil.ToFloat64(a.events.WithLabelValues("commented")))
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordOutcome("created")
		m.ObserveCall("create", time.Second, nil)
	})
}
