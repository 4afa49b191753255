package model

import (
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// StateID is the comparable, unique identifier of a State.
type StateID string

// HistoryKind selects how a composite state is re-entered after it was
// previously exited.
type HistoryKind int

const (
	// HistoryNone always descends via Initial on entry.
	HistoryNone HistoryKind = iota
	// HistoryShallow restores the immediate child that was last active;
	// deeper descendants are resolved via their own Initial.
	HistoryShallow
	// HistoryDeep restores the full chain of last-active descendants.
	HistoryDeep
)

func (h HistoryKind) String() string {
	switch h {
	case HistoryShallow:
		return "shallow"
	case HistoryDeep:
		return "deep"
	default:
		return "none"
	}
}

// NamedAction pairs an entry/exit/transition action with a label used
// only by reporting (Graph carries no behavior that depends on the
// name beyond that).
type NamedAction struct {
	Name string
	Fn   func(*Context)
}

// Guard is a named predicate guarding a Transition. A nil Fn is
// equivalent to an always-true guard.
type Guard struct {
	Name string
	Fn   func(*Context) bool
}

// State is one node of the hierarchy tree. States are built once by a
// Graph builder and never mutated afterward; the transitions map is
// populated by AddTransition during the build, and Level by
// Graph.Finalize.
type State struct {
	ID      StateID
	Parent  *State
	Initial *State // required on any State with non-empty Children
	History HistoryKind

	Children []*State
	Entry    []NamedAction
	Exit     []NamedAction

	// Level is the depth from the root (root level = 0). Set by Finalize.
	Level int

	// transitions maps event id to the ordered list of transitions
	// declared on this state for that event. Ordered so Reporter output
	// is deterministic regardless of Go's map iteration order.
	transitions *orderedmap.OrderedMap[string, []*Transition]
}

// NewState creates a detached state node. Use a Builder (package hsm) to
// assemble a tree; NewState is the low-level constructor Builder calls.
func NewState(id StateID) *State {
	return &State{ID: id, transitions: orderedmap.New[string, []*Transition]()}
}

// IsLeaf reports whether s has no substates.
func (s *State) IsLeaf() bool {
	return len(s.Children) == 0
}

// IsComposite reports whether s has substates.
func (s *State) IsComposite() bool {
	return len(s.Children) > 0
}

// AddTransition appends t to the ordered list of transitions declared
// for eventID on this state. t.Source must equal s (Graph.Finalize
// checks invariant 4).
func (s *State) AddTransition(eventID string, t *Transition) {
	list, _ := s.transitions.Get(eventID)
	s.transitions.Set(eventID, append(list, t))
}

// TransitionsFor returns the ordered transition list declared for
// eventID on s, or nil if none.
func (s *State) TransitionsFor(eventID string) []*Transition {
	list, _ := s.transitions.Get(eventID)
	return list
}

// AllTransitions returns every transition declared on s across every
// event, in declaration order, for use by reporting/diagram code.
func (s *State) AllTransitions() []*Transition {
	var all []*Transition
	for pair := s.transitions.Oldest(); pair != nil; pair = pair.Next() {
		all = append(all, pair.Value...)
	}
	return all
}

// Events returns the ids of every event this state declares transitions
// for, in declaration order.
func (s *State) Events() []string {
	var ids []string
	for pair := s.transitions.Oldest(); pair != nil; pair = pair.Next() {
		ids = append(ids, pair.Key)
	}
	return ids
}
