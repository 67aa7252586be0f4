// Package metrics exposes Prometheus collectors for switch dispatches and
// network fan-outs.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/braunma/netans-reconciler/internal/constants"
)

// Result label values
const (
	ResultSuccess = "success"
	ResultFailure = "failure"
)

// Metrics groups the reconciler's collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	dispatchTotal    *prometheus.CounterVec
	dispatchDuration *prometheus.HistogramVec
	fanOutTotal      *prometheus.CounterVec
	fanOutHosts      *prometheus.CounterVec
}

// New creates the collectors and registers them on a fresh registry
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		dispatchTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: constants.MetricsNamespace,
				Subsystem: "dispatcher",
				Name:      "dispatch_total",
				Help:      "Automation engine invocations by task kind and result",
			},
			[]string{"kind", "result"},
		),
		dispatchDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: constants.MetricsNamespace,
				Subsystem: "dispatcher",
				Name:      "dispatch_duration_seconds",
				Help:      "Duration of automation engine invocations in seconds",
				Buckets:   prometheus.ExponentialBuckets(0.5, 2, 10), // 0.5s to ~4min
			},
			[]string{"kind"},
		),
		fanOutTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: constants.MetricsNamespace,
				Subsystem: "coordinator",
				Name:      "fanout_total",
				Help:      "Fleet-wide VLAN operations by operation and result",
			},
			[]string{"operation", "result"},
		),
		fanOutHosts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: constants.MetricsNamespace,
				Subsystem: "coordinator",
				Name:      "fanout_hosts_total",
				Help:      "Hosts touched by fleet-wide VLAN operations by operation and result",
			},
			[]string{"operation", "result"},
		),
	}

	m.registry.MustRegister(m.dispatchTotal, m.dispatchDuration, m.fanOutTotal, m.fanOutHosts)
	return m
}

// ObserveDispatch records one automation engine invocation
func (m *Metrics) ObserveDispatch(kind string, succeeded bool, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.dispatchTotal.WithLabelValues(kind, result(succeeded)).Inc()
	m.dispatchDuration.WithLabelValues(kind).Observe(elapsed.Seconds())
}

// ObserveFanOut records one fleet-wide operation and its per-host outcome
func (m *Metrics) ObserveFanOut(operation string, hosts, failed int) {
	if m == nil {
		return
	}
	m.fanOutTotal.WithLabelValues(operation, result(failed == 0)).Inc()
	m.fanOutHosts.WithLabelValues(operation, ResultSuccess).Add(float64(hosts - failed))
	m.fanOutHosts.WithLabelValues(operation, ResultFailure).Add(float64(failed))
}

// Registry returns the registry holding the collectors
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the collectors in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func result(ok bool) string {
	if ok {
		return ResultSuccess
	}
	return ResultFailure
}
