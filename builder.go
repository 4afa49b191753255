package hsm

import (
	"fmt"

	"github.com/latticehsm/hsm/internal/model"
)

// Builder assembles a state hierarchy fluently, mirroring how a
// statechart diagram reads: nest into a compound state, declare its
// substates and transitions, then Up to its parent. Build resolves
// every declared id into a pointer graph and finalizes it in one pass,
// so states and transitions may be declared in any order — a
// Transition may name a target id that is only declared later in the
// same Builder chain.
type Builder struct {
	rootID model.StateID
	nodes  map[model.StateID]*nodeSpec
	order  []*nodeSpec
	trans  []*transitionSpec
	stack  []*nodeSpec
	err    error
}

type nodeSpec struct {
	id        model.StateID
	parentID  model.StateID
	initialID model.StateID
	history   model.HistoryKind
	entry     []model.NamedAction
	exit      []model.NamedAction
}

type transitionSpec struct {
	sourceID   model.StateID
	eventID    string
	targetID   model.StateID
	isInternal bool
	guard      model.Guard
	actions    []model.NamedAction
}

// NewBuilder starts a Builder whose graph root has the given id. The
// root is itself a regular, possibly composite, state: declare its
// substates via State/Compound and its own initial substate via
// WithInitial before nesting further.
func NewBuilder(rootID string) *Builder {
	b := &Builder{nodes: make(map[model.StateID]*nodeSpec)}
	root := &nodeSpec{id: model.StateID(rootID)}
	b.rootID = root.id
	b.register(root)
	b.stack = []*nodeSpec{root}
	return b
}

func (b *Builder) register(n *nodeSpec) {
	if _, exists := b.nodes[n.id]; exists {
		b.err = fmt.Errorf("hsm: duplicate state id %q", n.id)
		return
	}
	b.nodes[n.id] = n
	b.order = append(b.order, n)
}

func (b *Builder) top() *nodeSpec {
	return b.stack[len(b.stack)-1]
}

// Root returns a StateBuilder positioned at the graph's root, useful
// for declaring the root's own transitions, entry/exit actions, or
// initial substate without renaming the nesting cursor.
func (b *Builder) Root() *StateBuilder {
	return &StateBuilder{node: b.nodes[b.rootID], b: b}
}

// State declares an atomic (leaf) substate of whatever the Builder is
// currently nested in and returns a StateBuilder for it. The nesting
// cursor does not move.
func (b *Builder) State(id string) *StateBuilder {
	n := &nodeSpec{id: model.StateID(id), parentID: b.top().id}
	b.register(n)
	return &StateBuilder{node: n, b: b}
}

// Compound declares a composite substate, pushes it as the new nesting
// cursor, and returns a StateBuilder for it. Pair with Up to return to
// the enclosing level.
func (b *Builder) Compound(id string) *StateBuilder {
	n := &nodeSpec{id: model.StateID(id), parentID: b.top().id}
	b.register(n)
	b.stack = append(b.stack, n)
	return &StateBuilder{node: n, b: b}
}

// Build resolves every declared state and transition into a Graph and
// finalizes it. It returns the first structural error encountered
// either during declaration (duplicate or dangling ids) or during
// Graph.Finalize (ErrIllFormedGraph).
func (b *Builder) Build() (*Graph, error) {
	if b.err != nil {
		return nil, b.err
	}

	states := make(map[model.StateID]*model.State, len(b.order))
	for _, n := range b.order {
		s := model.NewState(n.id)
		s.History = n.history
		s.Entry = n.entry
		s.Exit = n.exit
		states[n.id] = s
	}

	for _, n := range b.order {
		s := states[n.id]
		if n.parentID != "" {
			parent, ok := states[n.parentID]
			if !ok {
				return nil, fmt.Errorf("hsm: state %q declares unknown parent %q", n.id, n.parentID)
			}
			s.Parent = parent
			parent.Children = append(parent.Children, s)
		}
	}

	for _, n := range b.order {
		if n.initialID == "" {
			continue
		}
		initial, ok := states[n.initialID]
		if !ok {
			return nil, fmt.Errorf("hsm: state %q declares unknown initial substate %q", n.id, n.initialID)
		}
		states[n.id].Initial = initial
	}

	for _, ts := range b.trans {
		source, ok := states[ts.sourceID]
		if !ok {
			return nil, fmt.Errorf("hsm: transition for event %q declared on unknown state %q", ts.eventID, ts.sourceID)
		}
		var target *model.State
		if !ts.isInternal {
			target, ok = states[ts.targetID]
			if !ok {
				return nil, fmt.Errorf("hsm: transition %q on %q targets unknown state %q", ts.eventID, ts.sourceID, ts.targetID)
			}
		}
		source.AddTransition(ts.eventID, &model.Transition{
			EventID: ts.eventID,
			Source:  source,
			Target:  target,
			Guard:   ts.guard,
			Actions: ts.actions,
		})
	}

	g := model.NewGraph(states[b.rootID])
	if err := g.Finalize(); err != nil {
		return nil, err
	}
	return g, nil
}

// StateBuilder declares the properties of one state: its entry/exit
// actions, its initial substate and history policy if composite, and
// its outgoing transitions.
type StateBuilder struct {
	node *nodeSpec
	b    *Builder
}

// Up pops the nesting cursor back to the enclosing Compound, or to the
// root if already at the outermost declared Compound. Calling Up on a
// StateBuilder for a state that is not the current cursor (such as an
// atomic State) leaves the cursor where it is and returns a builder for
// it. Up returns a builder for the new cursor, so chaining Up().Up()
// pops two levels.
func (sb *StateBuilder) Up() *StateBuilder {
	stack := sb.b.stack
	if len(stack) > 1 && stack[len(stack)-1] == sb.node {
		sb.b.stack = stack[:len(stack)-1]
	}
	return &StateBuilder{node: sb.b.top(), b: sb.b}
}

// State declares a sibling atomic substate at the same nesting level as
// sb and returns its builder, leaving the nesting cursor untouched.
func (sb *StateBuilder) State(id string) *StateBuilder {
	return sb.b.State(id)
}

// Compound declares a sibling composite substate at the same nesting
// level as sb, pushes it as the new cursor, and returns its builder.
func (sb *StateBuilder) Compound(id string) *StateBuilder {
	return sb.b.Compound(id)
}

// WithInitial sets sb's initial substate, required for any composite
// state.
func (sb *StateBuilder) WithInitial(childID string) *StateBuilder {
	sb.node.initialID = model.StateID(childID)
	return sb
}

// WithHistory sets sb's history policy. Only meaningful on a composite
// state; Graph.Finalize rejects a history kind declared on a leaf.
func (sb *StateBuilder) WithHistory(kind HistoryKind) *StateBuilder {
	sb.node.history = kind
	return sb
}

// Entry appends a named entry action, run when sb is entered.
func (sb *StateBuilder) Entry(name string, fn ActionFunc) *StateBuilder {
	sb.node.entry = append(sb.node.entry, model.NamedAction{Name: name, Fn: fn})
	return sb
}

// Exit appends a named exit action, run when sb is exited.
func (sb *StateBuilder) Exit(name string, fn ActionFunc) *StateBuilder {
	sb.node.exit = append(sb.node.exit, model.NamedAction{Name: name, Fn: fn})
	return sb
}

// Transition declares an external transition from sb to targetID for
// eventID, unguarded and without actions unless further configured via
// the returned TransitionBuilder. A targetID equal to sb's own id
// declares a self-transition (full exit then full re-entry).
func (sb *StateBuilder) Transition(eventID, targetID string) *TransitionBuilder {
	ts := &transitionSpec{sourceID: sb.node.id, eventID: eventID, targetID: model.StateID(targetID)}
	sb.b.trans = append(sb.b.trans, ts)
	return &TransitionBuilder{spec: ts, sb: sb}
}

// Internal declares an internal transition for eventID: its actions run
// with no exit or entry, and the current state does not change.
func (sb *StateBuilder) Internal(eventID string) *TransitionBuilder {
	ts := &transitionSpec{sourceID: sb.node.id, eventID: eventID, isInternal: true}
	sb.b.trans = append(sb.b.trans, ts)
	return &TransitionBuilder{spec: ts, sb: sb}
}

// TransitionBuilder configures one declared transition's guard and
// actions.
type TransitionBuilder struct {
	spec *transitionSpec
	sb   *StateBuilder
}

// Guard sets the named predicate gating this transition. Unset, the
// transition always matches once reached by bubbling.
func (tb *TransitionBuilder) Guard(name string, fn GuardFunc) *TransitionBuilder {
	tb.spec.guard = model.Guard{Name: name, Fn: fn}
	return tb
}

// Action appends a named transition action, run between the exit chain
// and the entry chain (or standalone, for an internal transition).
func (tb *TransitionBuilder) Action(name string, fn ActionFunc) *TransitionBuilder {
	tb.spec.actions = append(tb.spec.actions, model.NamedAction{Name: name, Fn: fn})
	return tb
}

// Done returns to the owning StateBuilder to continue declaring further
// transitions or actions at the same state.
func (tb *TransitionBuilder) Done() *StateBuilder {
	return tb.sb
}
