package observability

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/latticehsm/hsm"
)

// Tracing is an hsm.Extension that opens one span per transition,
// covering TransitionBegin through whichever of TransitionCompleted or
// TransitionExceptionThrown arrives next. A declined event gets its own
// short-lived span rather than none, so a trace shows every event the
// machine saw, not just the ones that matched.
type Tracing struct {
	tracer trace.Tracer
	spans  map[string]spanHandle
}

type spanHandle struct {
	span trace.Span
}

// NewTracing wraps tracer as an Extension.
func NewTracing(tracer trace.Tracer) *Tracing {
	return &Tracing{tracer: tracer, spans: make(map[string]spanHandle)}
}

func (t *Tracing) TransitionDeclined(e hsm.TransitionDeclinedEvent) {
	_, span := t.tracer.Start(context.Background(), "hsm.declined")
	span.SetAttributes(
		attribute.String("hsm.event", e.EventID),
		attribute.String("hsm.state", string(e.State)),
	)
	span.End()
}

func (t *Tracing) TransitionBegin(e hsm.TransitionBeginEvent) {
	_, span := t.tracer.Start(context.Background(), "hsm.transition")
	span.SetAttributes(
		attribute.String("hsm.event", e.EventID),
		attribute.String("hsm.source", string(e.Source)),
		attribute.String("hsm.target", string(e.Target)),
	)
	t.spans[e.EventID] = spanHandle{span: span}
}

func (t *Tracing) TransitionCompleted(e hsm.TransitionCompletedEvent) {
	h, ok := t.spans[e.EventID]
	if !ok {
		return
	}
	delete(t.spans, e.EventID)
	h.span.SetAttributes(attribute.String("hsm.new_state", string(e.NewState)))
	h.span.SetStatus(codes.Ok, "")
	h.span.End()
}

func (t *Tracing) TransitionExceptionThrown(e hsm.TransitionExceptionThrownEvent) {
	h, ok := t.spans[e.EventID]
	if !ok {
		return
	}
	delete(t.spans, e.EventID)
	h.span.SetStatus(codes.Error, "guard or action fault")
	for _, f := range e.Faults {
		h.span.RecordError(f)
	}
	h.span.End()
}

func (t *Tracing) StartedStateMachine(hsm.StartedStateMachineEvent) {}
func (t *Tracing) StoppedStateMachine(hsm.StoppedStateMachineEvent) {}
func (t *Tracing) EventQueued(hsm.EventQueuedEvent)                 {}
func (t *Tracing) EventQueuedWithPriority(hsm.EventQueuedEvent)     {}
func (t *Tracing) Loaded(hsm.LoadedEvent)                           {}
