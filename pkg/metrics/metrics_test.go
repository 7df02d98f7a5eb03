package metrics

import (
	"errors"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itohio/gobatt/pkg/sample"
)

func TestCycle_Counters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.CycleRan(sample.Reading{Voltage: 3.3})
	m.CycleRan(sample.Reading{Voltage: 3.25})
	m.Notified(nil)
	m.Persisted(nil)
	m.Persisted(errors.New("open failed"))

	assert.Equal(t, float64(2), testutil.ToFloat64(m.cycles))
	assert.InDelta(t, 3.25, testutil.ToFloat64(m.voltage), 1e-6)
	assert.Equal(t, float64(1), testutil.ToFloat64(m.notify.WithLabelValues("ok")))
	assert.Equal(t, float64(0), testutil.ToFloat64(m.notify.WithLabelValues("error")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.persist.WithLabelValues("ok")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.persist.WithLabelValues("error")))
}

func TestNew_DoubleRegisterPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	New(reg)
	assert.Panics(t, func() { New(reg) })
}

func TestHandler(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)
	m.CycleRan(sample.Reading{Voltage: 3.3})

	rec := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "battery_cycles_total 1")
}
