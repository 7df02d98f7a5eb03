// Package metrics exposes telemetry cycle counters to Prometheus.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/itohio/gobatt/pkg/sample"
	"github.com/itohio/gobatt/pkg/telemetry"
)

var _ telemetry.Recorder = (*Cycle)(nil)

// Cycle records the outcome of every telemetry cycle.
type Cycle struct {
	cycles  prometheus.Counter
	voltage prometheus.Gauge
	notify  *prometheus.CounterVec
	persist *prometheus.CounterVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Cycle {
	m := &Cycle{
		cycles: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "battery_cycles_total",
			Help: "Total number of telemetry cycles run",
		}),
		voltage: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "battery_voltage_volts",
			Help: "Battery voltage of the last reading",
		}),
		notify: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "battery_notifications_total",
			Help: "Notifications pushed to the subscriber by result",
		}, []string{"result"}),
		persist: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "battery_log_writes_total",
			Help: "Log appends by result",
		}, []string{"result"}),
	}

	reg.MustRegister(m.cycles, m.voltage, m.notify, m.persist)
	return m
}

// CycleRan counts a cycle and records its reading.
func (m *Cycle) CycleRan(r sample.Reading) {
	m.cycles.Inc()
	m.voltage.Set(float64(r.Voltage))
}

// Notified counts a notification attempt.
func (m *Cycle) Notified(err error) {
	m.notify.WithLabelValues(result(err)).Inc()
}

// Persisted counts a log append.
func (m *Cycle) Persisted(err error) {
	m.persist.WithLabelValues(result(err)).Inc()
}

// Handler serves the metrics gathered by g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
