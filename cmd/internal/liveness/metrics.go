package liveness

import "github.com/prometheus/client_golang/prometheus"

// Metrics exposes the reaper's Prometheus instrumentation.
type Metrics struct {
	Iterations        prometheus.Counter
	IterationFailures prometheus.Counter
	SessionsClosed    *prometheus.CounterVec
	MachinesClosed    prometheus.Counter
	CloseConflicts    *prometheus.CounterVec
	PublishFailures   *prometheus.CounterVec
}

// NewMetrics constructs and registers reaper metrics on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Iterations: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "vigil_reap_iterations_total",
			Help: "Completed reap iterations.",
		}),
		IterationFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "vigil_reap_iteration_failures_total",
			Help: "Reap iterations aborted by a store failure.",
		}),
		SessionsClosed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "vigil_sessions_closed_total",
			Help: "Sessions closed by the reaper, by close reason.",
		}, []string{"reason"}),
		MachinesClosed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "vigil_machines_closed_total",
			Help: "Machines closed by the reaper.",
		}),
		CloseConflicts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "vigil_close_conflicts_total",
			Help: "Conditional closes that lost the race to another writer.",
		}, []string{"kind"}),
		PublishFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "vigil_publish_failures_total",
			Help: "Presence events that failed to publish.",
		}, []string{"kind"}),
	}

	reg.MustRegister(
		m.Iterations,
		m.IterationFailures,
		m.SessionsClosed,
		m.MachinesClosed,
		m.CloseConflicts,
		m.PublishFailures,
	)
	return m
}
