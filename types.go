package hsm

import "github.com/latticehsm/hsm/internal/model"

// Graph is the immutable, finalized state/transition model produced by
// Builder.Build. It is safe for concurrent read access by any number of
// Machines and Reporters.
type Graph = model.Graph

// State is one node of a Graph's hierarchy tree.
type State = model.State

// StateID is the comparable, unique identifier of a State.
type StateID = model.StateID

// Context is passed to every guard and action function invoked while
// firing a single event.
type Context = model.Context

// HistoryKind selects how a composite state is re-entered after having
// been previously exited.
type HistoryKind = model.HistoryKind

const (
	HistoryNone    = model.HistoryNone
	HistoryShallow = model.HistoryShallow
	HistoryDeep    = model.HistoryDeep
)

// ActionFunc is the signature of an entry, exit, or transition action.
type ActionFunc = func(*Context)

// GuardFunc is the signature of a transition guard predicate.
type GuardFunc = func(*Context) bool
