// Package metrics registers the bridge's prometheus collectors.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the bridge collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	CommandsTotal   *prometheus.CounterVec
	CommandDuration *prometheus.HistogramVec
	OperationsTotal *prometheus.CounterVec
}

// New creates and registers the collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		CommandsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "rigwire",
			Name:      "commands_total",
			Help:      "Commands dispatched through the bridge, by command name and status.",
		}, []string{"command", "status"}),
		CommandDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "rigwire",
			Name:      "command_duration_seconds",
			Help:      "Wall time spent executing a command on the owner thread.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"command"}),
		OperationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "rigwire",
			Name:      "graph_operations_total",
			Help:      "Batch graph operations applied, by operation kind and result.",
		}, []string{"op", "result"}),
	}
	reg.MustRegister(
		m.CommandsTotal,
		m.CommandDuration,
		m.OperationsTotal,
		collectors.NewGoCollector(),
	)
	return m
}

// Handler serves the registry in prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
