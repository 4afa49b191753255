package runtime

import "github.com/latticehsm/hsm/internal/model"

// Extension is the pure-observer seam: every transition outcome, plus
// every active-runner lifecycle and queueing event, is delivered
// synchronously, on the firing thread (the worker thread in active
// mode), in registration order. Implementations must not block for
// long — they run inline with Fire, Start, Stop, Fire/FirePriority, and
// Load.
type Extension interface {
	// TransitionDeclined is called when no transition at any level
	// guarded true for the event.
	TransitionDeclined(TransitionDeclinedEvent)
	// TransitionBegin is called once a guard has accepted a candidate,
	// before any exit action runs. CurrentState is pre-exit.
	TransitionBegin(TransitionBeginEvent)
	// TransitionCompleted is called after the entry chain has finished.
	// NewState is post-entry (the resolved leaf).
	TransitionCompleted(TransitionCompletedEvent)
	// TransitionExceptionThrown is called once per Fire that recorded at
	// least one guard/action fault, after the entry chain has finished.
	TransitionExceptionThrown(TransitionExceptionThrownEvent)
	// StartedStateMachine is called on the worker thread once, just
	// before it begins dequeuing events (after any deferred Entry chain
	// from a pending initialize has run).
	StartedStateMachine(StartedStateMachineEvent)
	// StoppedStateMachine is called on the worker thread once it has
	// observed cancellation and is about to exit, after its last event
	// (if any) has finished processing.
	StoppedStateMachine(StoppedStateMachineEvent)
	// EventQueued is called after Fire releases the queue lock for a
	// normal (FIFO, tail-inserted) event.
	EventQueued(EventQueuedEvent)
	// EventQueuedWithPriority is called after FirePriority releases the
	// queue lock for a priority (head-inserted) event.
	EventQueuedWithPriority(EventQueuedEvent)
	// Loaded is called after Load succeeds, carrying the restored
	// current state id (empty if the loader reported none) and history.
	Loaded(LoadedEvent)
}

// TransitionDeclinedEvent describes an event for which no candidate
// transition's guard held.
type TransitionDeclinedEvent struct {
	EventID string
	Arg     any
	State   model.StateID
}

// TransitionBeginEvent describes the start of a matched transition.
type TransitionBeginEvent struct {
	EventID      string
	Arg          any
	CurrentState model.StateID
	Source       model.StateID
	Target       model.StateID // empty for internal transitions
}

// TransitionCompletedEvent describes the end of a matched transition.
type TransitionCompletedEvent struct {
	EventID  string
	Arg      any
	Source   model.StateID
	NewState model.StateID
}

// TransitionExceptionThrownEvent describes one or more guard/action
// faults captured while firing a single event.
type TransitionExceptionThrownEvent struct {
	EventID string
	Arg     any
	State   model.StateID
	Faults  []error
}

// StartedStateMachineEvent marks the moment an active runner's worker
// begins processing, after any deferred initialize has entered the
// initial state.
type StartedStateMachineEvent struct {
	Name string
}

// StoppedStateMachineEvent marks the moment an active runner's worker
// has finished its last event and is exiting. Faults is every error Fire
// returned while this runner was running.
type StoppedStateMachineEvent struct {
	Name   string
	Faults []error
}

// EventQueuedEvent describes one event appended (Fire) or prepended
// (FirePriority) to an active runner's queue.
type EventQueuedEvent struct {
	EventID string
	Arg     any
}

// LoadedEvent describes a completed Load call.
type LoadedEvent struct {
	Current model.StateID // empty if the loader reported no current state
	History []HistoryRecord
}

// multicast fans a call out to every registered extension in
// registration order. A panicking extension is not recovered from:
// extensions are trusted collaborators, unlike guards/actions.
type multicast struct {
	exts []Extension
}

func (m *multicast) declined(e TransitionDeclinedEvent) {
	for _, ext := range m.exts {
		ext.TransitionDeclined(e)
	}
}

func (m *multicast) begin(e TransitionBeginEvent) {
	for _, ext := range m.exts {
		ext.TransitionBegin(e)
	}
}

func (m *multicast) completed(e TransitionCompletedEvent) {
	for _, ext := range m.exts {
		ext.TransitionCompleted(e)
	}
}

func (m *multicast) exception(e TransitionExceptionThrownEvent) {
	for _, ext := range m.exts {
		ext.TransitionExceptionThrown(e)
	}
}

func (m *multicast) started(e StartedStateMachineEvent) {
	for _, ext := range m.exts {
		ext.StartedStateMachine(e)
	}
}

func (m *multicast) stopped(e StoppedStateMachineEvent) {
	for _, ext := range m.exts {
		ext.StoppedStateMachine(e)
	}
}

func (m *multicast) queued(e EventQueuedEvent) {
	for _, ext := range m.exts {
		ext.EventQueued(e)
	}
}

func (m *multicast) queuedWithPriority(e EventQueuedEvent) {
	for _, ext := range m.exts {
		ext.EventQueuedWithPriority(e)
	}
}

func (m *multicast) loaded(e LoadedEvent) {
	for _, ext := range m.exts {
		ext.Loaded(e)
	}
}

// NotifyStarted notifies every registered extension that the active
// runner's worker has begun processing.
func NotifyStarted(c *Container, name string) {
	mc := &multicast{exts: c.extensionsSnapshot()}
	mc.started(StartedStateMachineEvent{Name: name})
}

// NotifyStopped notifies every registered extension that the active
// runner's worker is exiting, carrying every fault it observed.
func NotifyStopped(c *Container, name string, faults []error) {
	mc := &multicast{exts: c.extensionsSnapshot()}
	mc.stopped(StoppedStateMachineEvent{Name: name, Faults: faults})
}

// NotifyEventQueued notifies every registered extension that a normal
// event was appended to the active runner's queue.
func NotifyEventQueued(c *Container, eventID string, arg any) {
	mc := &multicast{exts: c.extensionsSnapshot()}
	mc.queued(EventQueuedEvent{EventID: eventID, Arg: arg})
}

// NotifyEventQueuedWithPriority notifies every registered extension that
// a priority event was prepended to the active runner's queue.
func NotifyEventQueuedWithPriority(c *Container, eventID string, arg any) {
	mc := &multicast{exts: c.extensionsSnapshot()}
	mc.queuedWithPriority(EventQueuedEvent{EventID: eventID, Arg: arg})
}
