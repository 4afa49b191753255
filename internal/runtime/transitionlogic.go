package runtime

import (
	"github.com/latticehsm/hsm/internal/model"
)

// computeLCA returns the boundary state up to which an external
// transition's exit chain runs (exclusive; the entry chain runs from
// this state's relevant child down to target). For an ordinary
// transition between unrelated branches this is the lowest proper
// ancestor shared by source and target, and is excluded from both the
// exit and entry chains. The two ancestor/descendant cases are
// asymmetric: when target is a descendant of source, the boundary is
// source itself, so source is not exited and not re-entered (entry
// starts at source's child). When source is a descendant of target,
// the boundary is target's parent, so target is exited and re-entered
// in full (its Entry call drives the usual initial/history descent).
// A self-transition (source == target) is handled by the caller
// before this function runs.
func computeLCA(g *model.Graph, source, target *model.State) *model.State {
	if source == target {
		return source.Parent
	}
	ca, ok := g.CommonAncestor(source, target)
	if !ok {
		return nil
	}
	switch ca {
	case source:
		return source
	case target:
		return target.Parent
	default:
		return ca
	}
}

// enterFromLCA runs Entry actions for every state strictly between lca
// (exclusive) and target (exclusive), root-to-leaf order, then enters
// target itself (and descends further per target's Initial/History).
func enterFromLCA(ctx *model.Context, c *Container, lca, target *model.State) *model.State {
	var between []*model.State
	for cur := target.Parent; cur != nil && cur != lca; cur = cur.Parent {
		between = append(between, cur)
	}
	for i, j := 0, len(between)-1; i < j; i, j = i+1, j-1 {
		between[i], between[j] = between[j], between[i]
	}
	for _, s := range between {
		for _, a := range s.Entry {
			runAction(ctx, a)
		}
	}
	return enter(ctx, c, target, false)
}

// Fire delivers one event to the container's current state. The search
// for a matching transition bubbles from the current leaf up through
// its ancestors: at each level, the state's declared transitions for
// eventID are tried in declaration order, and the first whose guard
// accepts is chosen. A level whose transitions all decline does not
// stop the search — bubbling continues to the next ancestor. If no
// level yields an accepted transition, the event is declined: a
// first-class, non-error outcome reported only via the Extension
// TransitionDeclined hook.
//
// Fire never returns an error for guard or action failures: a panicking
// guard is treated as declining that candidate, and a panicking action
// is recorded on the context's Notifier and surfaced once, after the
// entry chain completes, as a single TransitionExceptionThrown — the
// exit/action/entry sequence already under way always runs to
// completion.
func Fire(c *Container, eventID string, arg any) error {
	current := c.Current()
	if current == nil {
		return ErrNotInitialized
	}

	ctx := model.NewContext(eventID, arg, current)
	mc := &multicast{exts: c.extensionsSnapshot()}

	var chosen *model.Transition
	for s := current; s != nil; s = s.Parent {
		for _, t := range s.TransitionsFor(eventID) {
			if runGuard(ctx, t.Guard) {
				chosen = t
				break
			}
		}
		if chosen != nil {
			break
		}
	}

	if chosen == nil {
		mc.declined(TransitionDeclinedEvent{EventID: eventID, Arg: arg, State: current.ID})
		if faults := ctx.Notifier().Faults(); len(faults) > 0 {
			mc.exception(TransitionExceptionThrownEvent{
				EventID: eventID,
				Arg:     arg,
				State:   current.ID,
				Faults:  faults,
			})
		}
		return nil
	}

	var targetID model.StateID
	if chosen.Target != nil {
		targetID = chosen.Target.ID
	}
	mc.begin(TransitionBeginEvent{
		EventID:      eventID,
		Arg:          arg,
		CurrentState: current.ID,
		Source:       chosen.Source.ID,
		Target:       targetID,
	})

	newState := current
	if chosen.IsInternal() {
		for _, a := range chosen.Actions {
			runAction(ctx, a)
		}
	} else {
		lca := computeLCA(c.Graph(), chosen.Source, chosen.Target)
		exit(ctx, c, current, lca)
		for _, a := range chosen.Actions {
			runAction(ctx, a)
		}
		newState = enterFromLCA(ctx, c, lca, chosen.Target)
		c.SetCurrent(newState)
	}

	mc.completed(TransitionCompletedEvent{
		EventID:  eventID,
		Arg:      arg,
		Source:   chosen.Source.ID,
		NewState: newState.ID,
	})

	if faults := ctx.Notifier().Faults(); len(faults) > 0 {
		mc.exception(TransitionExceptionThrownEvent{
			EventID: eventID,
			Arg:     arg,
			State:   newState.ID,
			Faults:  faults,
		})
	}

	return nil
}
