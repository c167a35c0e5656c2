package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

var (
	// Registry is the dedicated Prometheus registry for the app runtime.
	Registry = prometheus.NewRegistry()
	// ActionsReduced counts reducer actions by action kind.
	ActionsReduced = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "app_actions_reduced_total", Help: "Actions consumed by the state machine."},
		[]string{"action"},
	)
	// ReduceDuration records reducer latencies in seconds.
	ReduceDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{Name: "app_reduce_duration_seconds", Help: "Reducer latency in seconds.", Buckets: prometheus.DefBuckets},
	)
	// EffectsExecuted counts effects by kind and outcome.
	EffectsExecuted = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "app_effects_executed_total", Help: "Effects executed by kind and outcome."},
		[]string{"effect", "outcome"},
	)
	// BackendRequests counts backend calls by operation and outcome.
	BackendRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "backend_requests_total", Help: "Backend requests by operation and outcome."},
		[]string{"op", "outcome"},
	)
	// BackendLatency tracks backend request latencies in milliseconds.
	BackendLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Name: "backend_request_latency_ms", Help: "Backend request latency in ms.", Buckets: []float64{10, 50, 100, 200, 500, 1000, 2000, 5000}},
		[]string{"op"},
	)
	// FlowTransitions counts top-level flow changes.
	FlowTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "app_flow_transitions_total", Help: "Flow variant transitions."},
		[]string{"from", "to"},
	)
)

// RegisterDefault registers collectors to the dedicated registry.
func RegisterDefault() {
	regOnce.Do(func() {
		Registry.MustRegister(ActionsReduced)
		Registry.MustRegister(ReduceDuration)
		Registry.MustRegister(EffectsExecuted)
		Registry.MustRegister(BackendRequests)
		Registry.MustRegister(BackendLatency)
		Registry.MustRegister(FlowTransitions)
		// Go/process collectors on our registry
		Registry.MustRegister(collectors.NewGoCollector())
		Registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	})
}

var regOnce sync.Once
