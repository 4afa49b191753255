package hsm

import (
	"github.com/latticehsm/hsm/internal/model"
	"github.com/latticehsm/hsm/internal/runtime"
)

// Re-exported sentinel errors from the underlying runtime, so callers
// never need to import internal packages to compare against them.
var (
	ErrNotInitialized      = runtime.ErrNotInitialized
	ErrAlreadyInitialized  = runtime.ErrAlreadyInitialized
	ErrInvalidHistoryState = runtime.ErrInvalidHistoryState
	ErrIllFormedGraph      = model.ErrIllFormedGraph
)

// Extension is the observer seam for transition outcomes (declined
// events, transition begin/end, captured guard/action faults) and for
// active-runner lifecycle, queueing, and Load notifications. See the
// method docs on the underlying interface for delivery guarantees.
type Extension = runtime.Extension

// TransitionDeclinedEvent, TransitionBeginEvent, TransitionCompletedEvent,
// TransitionExceptionThrownEvent, StartedStateMachineEvent,
// StoppedStateMachineEvent, EventQueuedEvent, and LoadedEvent are the
// payloads delivered to an Extension's hooks.
type (
	TransitionDeclinedEvent          = runtime.TransitionDeclinedEvent
	TransitionBeginEvent             = runtime.TransitionBeginEvent
	TransitionCompletedEvent         = runtime.TransitionCompletedEvent
	TransitionExceptionThrownEvent   = runtime.TransitionExceptionThrownEvent
	StartedStateMachineEvent         = runtime.StartedStateMachineEvent
	StoppedStateMachineEvent         = runtime.StoppedStateMachineEvent
	EventQueuedEvent                 = runtime.EventQueuedEvent
	LoadedEvent                      = runtime.LoadedEvent
)

// HistoryRecord is one (super-state id, last-active-descendant id) pair,
// as produced by Machine.Snapshot and consumed by Machine.Load.
type HistoryRecord = runtime.HistoryRecord

// Machine is one runtime instance of a Graph: the current state, its
// per-composite history, and the registered extensions. A Machine is
// safe for use from a single Runner goroutine, or from a single caller
// driving it synchronously via Fire; it does not itself serialize
// concurrent Fire calls from multiple goroutines (see Runner, which
// does).
type Machine struct {
	container *runtime.Container
}

// New creates a Machine bound to graph, uninitialized. Call Initialize
// or Load before firing events.
func New(graph *model.Graph, name string, exts ...Extension) *Machine {
	c := runtime.NewContainer(graph, name)
	for _, e := range exts {
		c.AddExtension(e)
	}
	return &Machine{container: c}
}

// Name returns the machine's display name.
func (m *Machine) Name() string {
	return m.container.Name()
}

// AddExtension registers an additional observer. Safe to call before or
// after Initialize.
func (m *Machine) AddExtension(ext Extension) {
	m.container.AddExtension(ext)
}

// ClearExtensions removes every registered observer.
func (m *Machine) ClearExtensions() {
	m.container.ClearExtensions()
}

// Initialize performs the machine's initial descent from stateID (the
// graph root, if stateID is empty), running every Entry action on the
// path, and fails if the machine's initialize/load slot was already
// claimed or if stateID does not resolve in the graph.
func (m *Machine) Initialize(stateID string) error {
	return runtime.Initialize(m.container, model.StateID(stateID))
}

// PrepareInitialize claims the machine's initialize/load slot and
// records stateID (the graph root, if empty) as the intended initial
// state, without running its Entry chain. Used by Runner so Entry runs
// on the worker thread's first tick instead of the caller's; most
// callers want Initialize instead.
func (m *Machine) PrepareInitialize(stateID string) error {
	return runtime.PrepareInitialize(m.container, model.StateID(stateID))
}

// ConsumeInitialize runs the Entry chain for a pending initial state
// recorded by PrepareInitialize, if any; a no-op otherwise.
func (m *Machine) ConsumeInitialize() error {
	return runtime.ConsumeInitialize(m.container)
}

// Load restores the machine directly to currentID with the given
// history, bypassing the initial Entry chain. Used to rehydrate a
// persisted snapshot. currentID may be empty, meaning the loader
// reported no current state; the machine then remains
// uninitialized-for-firing, but the initialize/load slot is still
// claimed.
func (m *Machine) Load(currentID string, history []HistoryRecord) error {
	return runtime.Load(m.container, model.StateID(currentID), history)
}

// Report renders the machine's graph and current state through r.
func (m *Machine) Report(r Reporter) (string, error) {
	return r.ExportDOT(m.container.Graph(), m.Current())
}

func (m *Machine) notifyStarted() {
	runtime.NotifyStarted(m.container, m.Name())
}

func (m *Machine) notifyStopped(faults []error) {
	runtime.NotifyStopped(m.container, m.Name(), faults)
}

func (m *Machine) notifyEventQueued(eventID string, arg any) {
	runtime.NotifyEventQueued(m.container, eventID, arg)
}

func (m *Machine) notifyEventQueuedWithPriority(eventID string, arg any) {
	runtime.NotifyEventQueuedWithPriority(m.container, eventID, arg)
}

// Current returns the id of the machine's current leaf state, or "" if
// the machine has not yet been initialized or loaded.
func (m *Machine) Current() string {
	s := m.container.Current()
	if s == nil {
		return ""
	}
	return string(s.ID)
}

// Fire synchronously delivers one event, per the C5 passive façade: the
// call blocks for the full exit/action/entry sequence and returns once
// every Extension hook for this event has run. This is fire_sync: for
// the active, queue-backed alternative see Runner.
func (m *Machine) Fire(eventID string, arg any) error {
	return runtime.Fire(m.container, eventID, arg)
}

// Snapshot captures the machine's current state id and its full
// recorded history, suitable for a persistence Saver.
func (m *Machine) Snapshot() Snapshot {
	entries := m.container.HistoryEntries()
	history := make([]HistoryRecord, 0, len(entries))
	for super, leaf := range entries {
		history = append(history, HistoryRecord{Super: super, Leaf: leaf})
	}
	return Snapshot{
		Name:    m.container.Name(),
		Current: m.Current(),
		History: history,
	}
}
