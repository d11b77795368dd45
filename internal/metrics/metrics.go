// Package metrics exposes Prometheus instrumentation for the producer service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the service's Prometheus collectors.
type Metrics struct {
	DispatchTotal     *prometheus.CounterVec
	DispatchDuration  *prometheus.HistogramVec
	PublishItemsTotal *prometheus.CounterVec
	PublishBatches    *prometheus.CounterVec
	StageTransitions  *prometheus.CounterVec
}

// New creates and registers the service collectors against reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		DispatchTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "producer_dispatch_total",
			Help: "Upstream dispatches by feature, implementation and outcome.",
		}, []string{"feature", "implementation", "outcome"}),
		DispatchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "producer_dispatch_duration_seconds",
			Help:    "Upstream dispatch duration in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"feature"}),
		PublishItemsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "producer_publish_items_total",
			Help: "Queue items published by platform and outcome.",
		}, []string{"platform", "outcome"}),
		PublishBatches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "producer_publish_batches_total",
			Help: "Publish batches by aggregate outcome.",
		}, []string{"outcome"}),
		StageTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "producer_stage_transitions_total",
			Help: "Pipeline stage transitions by target stage.",
		}, []string{"stage"}),
	}

	reg.MustRegister(
		m.DispatchTotal,
		m.DispatchDuration,
		m.PublishItemsTotal,
		m.PublishBatches,
		m.StageTransitions,
	)
	return m
}

// NewNop creates unregistered collectors for tests.
func NewNop() *Metrics {
	return New(prometheus.NewRegistry())
}
