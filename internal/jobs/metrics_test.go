package jobmetrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestTrackerRecordsOutcome(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	assert.NoError(t, m.Track("job").End(nil))
	boom := errors.New("boom")
	assert.ErrorIs(t, m.Track("job").End(boom), boom)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.runs.WithLabelValues("job", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.runs.WithLabelValues("job", "failure")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.failures.WithLabelValues("job")))
}

func TestNilMetricsAreSafe(t *testing.T) {
	var m *Metrics

	assert.NoError(t, m.Track("job").End(nil))
	m.AddEvent("created")
}

func TestAddEvent(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	m.AddEvent("deleted")
	m.AddEvent("deleted")
	m.AddEvent("")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.events.WithLabelValues("deleted")))
}
