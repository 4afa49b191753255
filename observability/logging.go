// Package observability provides hsm.Extension implementations that
// report transition outcomes to the standard logger, to an OpenTelemetry
// tracer, and to Prometheus counters.
package observability

import (
	"log"

	"github.com/latticehsm/hsm"
)

// Logging is an hsm.Extension that writes one log line per transition
// outcome via the standard library logger.
type Logging struct {
	logger *log.Logger
}

// NewLogging wraps logger (or the default logger, if nil) as an
// Extension.
func NewLogging(logger *log.Logger) *Logging {
	if logger == nil {
		logger = log.Default()
	}
	return &Logging{logger: logger}
}

func (l *Logging) TransitionDeclined(e hsm.TransitionDeclinedEvent) {
	l.logger.Printf("hsm: event %q declined in state %q", e.EventID, e.State)
}

func (l *Logging) TransitionBegin(e hsm.TransitionBeginEvent) {
	l.logger.Printf("hsm: event %q firing %q -> %q", e.EventID, e.Source, e.Target)
}

func (l *Logging) TransitionCompleted(e hsm.TransitionCompletedEvent) {
	l.logger.Printf("hsm: event %q settled in %q", e.EventID, e.NewState)
}

func (l *Logging) TransitionExceptionThrown(e hsm.TransitionExceptionThrownEvent) {
	l.logger.Printf("hsm: event %q in %q recorded %d fault(s): %v", e.EventID, e.State, len(e.Faults), e.Faults)
}

func (l *Logging) StartedStateMachine(hsm.StartedStateMachineEvent) {}
func (l *Logging) StoppedStateMachine(hsm.StoppedStateMachineEvent) {}
func (l *Logging) EventQueued(hsm.EventQueuedEvent)                 {}
func (l *Logging) EventQueuedWithPriority(hsm.EventQueuedEvent)     {}
func (l *Logging) Loaded(hsm.LoadedEvent)                           {}
