package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics_NilReceiverIsNoop(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.ObserveHTTPRequest("GET", "/x", 200, time.Millisecond)
		m.ObserveDBQuery("select", time.Millisecond, nil)
		m.ObserveReservation("created")
		m.IncCounterUnderflow()
		m.AddCounterCorrections(3)
		m.SetDBPoolStats(1, 1, 0, 0)
	})
}

func TestMetrics_Reservations(t *testing.T) {
	m := NewWithRegistry(prometheus.NewRegistry(), "test")

	m.ObserveReservation("created")
	m.ObserveReservation("created")
	m.ObserveReservation("slot_full")
	m.IncCounterUnderflow()
	m.AddCounterCorrections(2)
	m.AddCounterCorrections(-1)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.reservationsTotal.WithLabelValues("created")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.reservationsTotal.WithLabelValues("slot_full")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.counterUnderflowTotal))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.counterCorrections))
}
