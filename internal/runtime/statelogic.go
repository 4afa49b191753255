package runtime

import (
	"fmt"

	"github.com/latticehsm/hsm/internal/model"
)

// runAction invokes fn under panic recovery, recording any panic into
// ctx's notifier. Guards and actions are untrusted user code; a panic
// here must never abort an exit/entry chain already in progress.
func runAction(ctx *model.Context, a model.NamedAction) {
	if a.Fn == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			ctx.Notifier().Record(fmt.Errorf("action %q panicked: %v", a.Name, r))
		}
	}()
	a.Fn(ctx)
}

// runGuard invokes g under panic recovery. A panicking guard is treated
// as declining the transition (returns false) and its panic is recorded
// as a fault.
func runGuard(ctx *model.Context, g model.Guard) (accepted bool) {
	if g.Fn == nil {
		return true
	}
	defer func() {
		if r := recover(); r != nil {
			ctx.Notifier().Record(fmt.Errorf("guard %q panicked: %v", g.Name, r))
			accepted = false
		}
	}()
	return g.Fn(ctx)
}

// enter runs target's Entry actions and, if target is composite,
// descends into a substate: Initial by default, or the recorded
// last-active child when target's own History kind calls for it, or
// forceDeep is set by an ancestor's deep history. It returns the leaf
// the descent settles on, which becomes the machine's new current
// state.
func enter(ctx *model.Context, c *Container, target *model.State, forceDeep bool) *model.State {
	for _, a := range target.Entry {
		runAction(ctx, a)
	}

	if target.IsLeaf() {
		return target
	}

	next := target.Initial
	nextForceDeep := false

	switch {
	case forceDeep:
		if last, ok := c.LastActiveFor(target.ID); ok {
			next = last
		}
		nextForceDeep = true
	case target.History == model.HistoryDeep:
		if last, ok := c.LastActiveFor(target.ID); ok {
			next = last
		}
		nextForceDeep = true
	case target.History == model.HistoryShallow:
		if last, ok := c.LastActiveFor(target.ID); ok {
			next = last
		}
	}

	return enter(ctx, c, next, nextForceDeep)
}

// exit runs Exit actions from the leaf "from" up to (exclusive of) stop,
// leaf-to-root, recording each exited state's last-active child on its
// parent so a later History-qualified entry can restore it.
func exit(ctx *model.Context, c *Container, from *model.State, stop *model.State) {
	for cur := from; cur != nil && cur != stop; cur = cur.Parent {
		if cur.Parent != nil {
			c.SetLastActiveFor(cur.Parent.ID, cur)
		}
		for _, a := range cur.Exit {
			runAction(ctx, a)
		}
	}
}
