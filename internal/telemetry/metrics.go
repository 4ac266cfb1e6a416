// Package telemetry exports composition and call counters to Prometheus
// through a plugin bundle.
package telemetry

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/vk/amalgam/internal/composer"
)

// Metrics holds the collectors the bundle updates.
type Metrics struct {
	composed *prometheus.CounterVec
	calls    *prometheus.CounterVec
	errors   prometheus.Counter
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer, namespace string) (*Metrics, error) {
	m := &Metrics{
		composed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "types_composed_total",
			Help:      "Types assembled, by type name.",
		}, []string{"type"}),
		calls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "method_calls_total",
			Help:      "Completed method calls, by installed method name.",
		}, []string{"method"}),
		errors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "method_errors_total",
			Help:      "Method calls that failed validation, returned an error or panicked.",
		}),
	}
	for _, c := range []prometheus.Collector{m.composed, m.calls, m.errors} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("telemetry: register collector: %w", err)
		}
	}
	return m, nil
}

// Bundle returns a plugin bundle that counts without altering anything it
// observes.
func (m *Metrics) Bundle() composer.Bundle {
	return composer.Bundle{
		Name: "telemetry",
		AfterAssembly: func(t *composer.Type) *composer.Type {
			m.composed.WithLabelValues(t.Name()).Inc()
			return t
		},
		AfterCall: func(method string, result any) any {
			m.calls.WithLabelValues(method).Inc()
			return result
		},
		OnError: func(error) { m.errors.Inc() },
	}
}
