package observability

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/latticehsm/hsm"
)

// Metrics is an hsm.Extension that exposes transition counts as
// Prometheus counters, labeled by event id and outcome.
type Metrics struct {
	transitions *prometheus.CounterVec
	faults      *prometheus.CounterVec
}

// NewMetrics creates counters and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "hsm_transitions_total",
			Help: "Count of transition outcomes by event id and outcome.",
		}, []string{"event", "outcome"}),
		faults: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "hsm_transition_faults_total",
			Help: "Count of guard/action faults recorded during a transition, by event id.",
		}, []string{"event"}),
	}
	reg.MustRegister(m.transitions, m.faults)
	return m
}

func (m *Metrics) TransitionDeclined(e hsm.TransitionDeclinedEvent) {
	m.transitions.WithLabelValues(e.EventID, "declined").Inc()
}

func (m *Metrics) TransitionBegin(e hsm.TransitionBeginEvent) {
	m.transitions.WithLabelValues(e.EventID, "begin").Inc()
}

func (m *Metrics) TransitionCompleted(e hsm.TransitionCompletedEvent) {
	m.transitions.WithLabelValues(e.EventID, "completed").Inc()
}

func (m *Metrics) TransitionExceptionThrown(e hsm.TransitionExceptionThrownEvent) {
	m.faults.WithLabelValues(e.EventID).Add(float64(len(e.Faults)))
}

func (m *Metrics) StartedStateMachine(hsm.StartedStateMachineEvent) {}
func (m *Metrics) StoppedStateMachine(hsm.StoppedStateMachineEvent) {}
func (m *Metrics) EventQueued(hsm.EventQueuedEvent)                 {}
func (m *Metrics) EventQueuedWithPriority(hsm.EventQueuedEvent)     {}
func (m *Metrics) Loaded(hsm.LoadedEvent)                           {}
