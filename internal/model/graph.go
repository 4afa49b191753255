package model

import "fmt"

// Graph is the finalized, read-only state/transition model for one
// machine. Construct one via a builder (package hsm), then call
// Finalize once before handing it to a runtime.
type Graph struct {
	Root   *State
	byID   map[StateID]*State
	states []*State // arena, in the order states were added
}

// NewGraph creates an empty graph rooted at root. root is itself a
// regular State (it may have Entry/Exit actions) and is never exited or
// entered directly by transitions declared outside it — see
// common-ancestor tie-break rules in package runtime.
func NewGraph(root *State) *Graph {
	g := &Graph{Root: root, byID: make(map[StateID]*State)}
	g.addRecursive(root)
	return g
}

func (g *Graph) addRecursive(s *State) {
	g.byID[s.ID] = s
	g.states = append(g.states, s)
	for _, c := range s.Children {
		g.addRecursive(c)
	}
}

// Lookup resolves a state by id.
func (g *Graph) Lookup(id StateID) (*State, bool) {
	s, ok := g.byID[id]
	return s, ok
}

// States returns every state in the graph in arena order (root first,
// depth-first thereafter). Callers must not mutate the returned slice.
func (g *Graph) States() []*State {
	return g.states
}

// IsDescendantOf reports whether s is a (direct or transitive) child of
// ancestor. A state is not considered a descendant of itself.
func (g *Graph) IsDescendantOf(s, ancestor *State) bool {
	for cur := s.Parent; cur != nil; cur = cur.Parent {
		if cur == ancestor {
			return true
		}
	}
	return false
}

// PathToRoot returns the ordered ancestor chain starting at s and ending
// at the graph root, inclusive of both ends.
func (g *Graph) PathToRoot(s *State) []*State {
	var path []*State
	for cur := s; cur != nil; cur = cur.Parent {
		path = append(path, cur)
	}
	return path
}

// CommonAncestor returns the lowest ancestor shared by a and b (which may
// be a or b itself), or (nil, false) if they share no ancestor (only
// possible across disjoint graphs, since every state here is reachable
// from one root).
func (g *Graph) CommonAncestor(a, b *State) (*State, bool) {
	aPath := g.PathToRoot(a) // leaf-to-root
	bAncestors := make(map[*State]struct{}, len(aPath))
	for cur := b; cur != nil; cur = cur.Parent {
		bAncestors[cur] = struct{}{}
	}
	for _, s := range aPath {
		if _, ok := bAncestors[s]; ok {
			return s, true
		}
	}
	return nil, false
}

// Finalize validates every structural invariant of the graph and, on
// success, computes each state's Level. It must be called before the
// graph is used by a runtime. Calling it again on an already-valid graph
// is harmless: it re-validates and recomputes the same levels.
func (g *Graph) Finalize() error {
	for _, s := range g.states {
		if err := validateState(s); err != nil {
			return fmt.Errorf("%w: %v", ErrIllFormedGraph, err)
		}
	}
	setLevels(g.Root, 0)
	return nil
}

func validateState(s *State) error {
	// invariant 1: super_state, if present, lists s among its sub_states.
	if s.Parent != nil {
		found := false
		for _, c := range s.Parent.Children {
			if c == s {
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("state %q is not listed among its parent %q's children", s.ID, s.Parent.ID)
		}
	}

	// invariant 2: a composite state has exactly one initial substate.
	if s.IsComposite() {
		if s.Initial == nil {
			return fmt.Errorf("composite state %q has no initial substate", s.ID)
		}
		found := false
		for _, c := range s.Children {
			if c == s.Initial {
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("state %q's initial substate %q is not one of its children", s.ID, s.Initial.ID)
		}
	} else if s.Initial != nil {
		return fmt.Errorf("leaf state %q must not declare an initial substate", s.ID)
	}

	// invariant 3: history kind is meaningful only with sub_states.
	if s.History != HistoryNone && !s.IsComposite() {
		return fmt.Errorf("leaf state %q must not declare a history kind", s.ID)
	}

	// invariant 4: every transition in s's map has source == s.
	for _, t := range s.AllTransitions() {
		if t.Source != s {
			return fmt.Errorf("transition for event %q stored on state %q has source %q", t.EventID, s.ID, sourceID(t))
		}
	}

	return nil
}

func sourceID(t *Transition) StateID {
	if t.Source == nil {
		return ""
	}
	return t.Source.ID
}

func setLevels(s *State, level int) {
	s.Level = level
	for _, c := range s.Children {
		setLevels(c, level+1)
	}
}
