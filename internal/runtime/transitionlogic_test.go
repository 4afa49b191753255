package runtime

import (
	"testing"

	"github.com/latticehsm/hsm/internal/model"
)

// buildTrafficGraph builds root -> {operational(shallow history) -> {green,
// yellow, red}, flashing}, with timer cycling green->yellow->red->green
// inside operational, and fault/resume crossing to/from flashing.
func buildTrafficGraph(t *testing.T) *model.Graph {
	t.Helper()

	root := model.NewState("root")
	operational := model.NewState("operational")
	flashing := model.NewState("flashing")
	green := model.NewState("green")
	yellow := model.NewState("yellow")
	red := model.NewState("red")

	root.Children = []*model.State{operational, flashing}
	root.Initial = operational
	operational.Parent = root
	flashing.Parent = root

	operational.Children = []*model.State{green, yellow, red}
	operational.Initial = green
	operational.History = model.HistoryShallow
	green.Parent = operational
	yellow.Parent = operational
	red.Parent = operational

	green.AddTransition("timer", &model.Transition{EventID: "timer", Source: green, Target: yellow})
	yellow.AddTransition("timer", &model.Transition{EventID: "timer", Source: yellow, Target: red})
	red.AddTransition("timer", &model.Transition{EventID: "timer", Source: red, Target: green})

	root.AddTransition("fault", &model.Transition{EventID: "fault", Source: root, Target: flashing})
	flashing.AddTransition("resume", &model.Transition{EventID: "resume", Source: flashing, Target: operational})
	root.AddTransition("reset", &model.Transition{EventID: "reset", Source: root, Target: green})

	g := model.NewGraph(root)
	if err := g.Finalize(); err != nil {
		t.Fatalf("finalize: %v", err)
	}
	return g
}

func TestFireSimpleTransition(t *testing.T) {
	g := buildTrafficGraph(t)
	c := NewContainer(g, "light")
	if err := Initialize(c, ""); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	if got := c.Current().ID; got != "green" {
		t.Fatalf("current = %q, want green", got)
	}

	if err := Fire(c, "timer", nil); err != nil {
		t.Fatalf("fire: %v", err)
	}
	if got := c.Current().ID; got != "yellow" {
		t.Fatalf("current after timer = %q, want yellow", got)
	}
}

func TestFireDeclinedEvent(t *testing.T) {
	g := buildTrafficGraph(t)
	c := NewContainer(g, "light")
	Initialize(c, "")

	var declined *TransitionDeclinedEvent
	c.AddExtension(recordingExtension{onDeclined: func(e TransitionDeclinedEvent) { declined = &e }})

	if err := Fire(c, "nonsense", nil); err != nil {
		t.Fatalf("fire: %v", err)
	}
	if declined == nil {
		t.Fatal("expected TransitionDeclined to fire")
	}
	if c.Current().ID != "green" {
		t.Fatalf("declined event must not move current state, got %q", c.Current().ID)
	}
}

func TestFireBubblesToAncestor(t *testing.T) {
	g := buildTrafficGraph(t)
	c := NewContainer(g, "light")
	Initialize(c, "")

	// fault is declared on root, not on green: the search must bubble
	// green -> operational -> root to find it.
	if err := Fire(c, "fault", nil); err != nil {
		t.Fatalf("fire: %v", err)
	}
	if c.Current().ID != "flashing" {
		t.Fatalf("current = %q, want flashing", c.Current().ID)
	}
}

func TestFireRestoresShallowHistory(t *testing.T) {
	g := buildTrafficGraph(t)
	c := NewContainer(g, "light")
	Initialize(c, "")

	Fire(c, "timer", nil) // green -> yellow
	Fire(c, "fault", nil) // yellow -> (exit through operational) -> flashing
	if c.Current().ID != "flashing" {
		t.Fatalf("current = %q, want flashing", c.Current().ID)
	}

	Fire(c, "resume", nil) // flashing -> operational, shallow history restores yellow
	if c.Current().ID != "yellow" {
		t.Fatalf("current after resume = %q, want yellow (restored via shallow history)", c.Current().ID)
	}
}

func TestFireSelfTransitionReenters(t *testing.T) {
	g := buildTrafficGraph(t)
	c := NewContainer(g, "light")
	Initialize(c, "")

	green, _ := g.Lookup("green")
	var entries, exits int
	green.Entry = append(green.Entry, model.NamedAction{Name: "count-entry", Fn: func(*model.Context) { entries++ }})
	green.Exit = append(green.Exit, model.NamedAction{Name: "count-exit", Fn: func(*model.Context) { exits++ }})
	green.AddTransition("reset", &model.Transition{EventID: "reset", Source: green, Target: green})

	if err := Fire(c, "reset", nil); err != nil {
		t.Fatalf("fire: %v", err)
	}
	if c.Current().ID != "green" {
		t.Fatalf("self-transition must end on the same state, got %q", c.Current().ID)
	}
	if exits != 1 || entries != 1 {
		t.Fatalf("self-transition should run exactly one exit and one entry, got exits=%d entries=%d", exits, entries)
	}
}

func TestFireInternalTransitionDoesNotExit(t *testing.T) {
	g := buildTrafficGraph(t)
	c := NewContainer(g, "light")
	Initialize(c, "")

	green, _ := g.Lookup("green")
	var exited bool
	var actionRan bool
	green.Exit = append(green.Exit, model.NamedAction{Name: "mark-exit", Fn: func(*model.Context) { exited = true }})
	green.AddTransition("ping", &model.Transition{
		EventID: "ping",
		Source:  green,
		Target:  nil,
		Actions: []model.NamedAction{{Name: "ack", Fn: func(*model.Context) { actionRan = true }}},
	})

	if err := Fire(c, "ping", nil); err != nil {
		t.Fatalf("fire: %v", err)
	}
	if exited {
		t.Fatal("internal transition must not run exit actions")
	}
	if !actionRan {
		t.Fatal("internal transition's action should have run")
	}
	if c.Current().ID != "green" {
		t.Fatalf("internal transition must not change current state, got %q", c.Current().ID)
	}
}

func TestFireNotInitialized(t *testing.T) {
	g := buildTrafficGraph(t)
	c := NewContainer(g, "light")

	if err := Fire(c, "timer", nil); err != ErrNotInitialized {
		t.Fatalf("fire on uninitialized container: err = %v, want ErrNotInitialized", err)
	}
}

func TestFireBubblingSkipsFullyDeclinedLevel(t *testing.T) {
	g := buildTrafficGraph(t)
	c := NewContainer(g, "light")
	Initialize(c, "")

	operational, _ := g.Lookup("operational")
	green, _ := g.Lookup("green")
	// Declare a same-named event on the inner level with an
	// always-false guard, and on root (bubbled-to) with no guard: the
	// inner decline must not stop the search from reaching root.
	green.AddTransition("fault", &model.Transition{
		EventID: "fault",
		Source:  green,
		Target:  operational.Initial,
		Guard:   model.Guard{Name: "never", Fn: func(*model.Context) bool { return false }},
	})

	if err := Fire(c, "fault", nil); err != nil {
		t.Fatalf("fire: %v", err)
	}
	if c.Current().ID != "flashing" {
		t.Fatalf("current = %q, want flashing (bubbled past green's declined guard to root's transition)", c.Current().ID)
	}
}

func TestFireGuardPanicDeclinesAndRecordsFault(t *testing.T) {
	g := buildTrafficGraph(t)
	c := NewContainer(g, "light")
	Initialize(c, "")

	green, _ := g.Lookup("green")
	green.AddTransition("boom", &model.Transition{
		EventID: "boom",
		Source:  green,
		Target:  green,
		Guard:   model.Guard{Name: "panicky", Fn: func(*model.Context) bool { panic("guard exploded") }},
	})

	var declined bool
	var faults []error
	c.AddExtension(recordingExtension{
		onDeclined:  func(TransitionDeclinedEvent) { declined = true },
		onException: func(e TransitionExceptionThrownEvent) { faults = e.Faults },
	})

	if err := Fire(c, "boom", nil); err != nil {
		t.Fatalf("fire: %v", err)
	}
	if !declined {
		t.Fatal("a panicking guard must decline its candidate rather than aborting Fire")
	}
	if len(faults) != 1 {
		t.Fatalf("expected exactly one recorded fault, got %d", len(faults))
	}
}

func TestFireTargetDescendantOfSourceDoesNotExitSource(t *testing.T) {
	g := buildTrafficGraph(t)
	c := NewContainer(g, "light")
	Initialize(c, "")
	Fire(c, "timer", nil) // green -> yellow

	root, _ := g.Lookup("root")
	var rootExited, rootEntered bool
	root.Exit = append(root.Exit, model.NamedAction{Name: "mark-exit", Fn: func(*model.Context) { rootExited = true }})
	root.Entry = append(root.Entry, model.NamedAction{Name: "mark-entry", Fn: func(*model.Context) { rootEntered = true }})

	// reset is declared on root and targets green, a descendant of root:
	// root itself must not be exited or re-entered.
	if err := Fire(c, "reset", nil); err != nil {
		t.Fatalf("fire: %v", err)
	}
	if c.Current().ID != "green" {
		t.Fatalf("current = %q, want green", c.Current().ID)
	}
	if rootExited || rootEntered {
		t.Fatal("root must not be exited or re-entered when the target is its own descendant")
	}
}

// recordingExtension is a minimal Extension for assertions in tests.
type recordingExtension struct {
	onDeclined  func(TransitionDeclinedEvent)
	onBegin     func(TransitionBeginEvent)
	onCompleted func(TransitionCompletedEvent)
	onException func(TransitionExceptionThrownEvent)
}

func (r recordingExtension) TransitionDeclined(e TransitionDeclinedEvent) {
	if r.onDeclined != nil {
		r.onDeclined(e)
	}
}

func (r recordingExtension) TransitionBegin(e TransitionBeginEvent) {
	if r.onBegin != nil {
		r.onBegin(e)
	}
}

func (r recordingExtension) TransitionCompleted(e TransitionCompletedEvent) {
	if r.onCompleted != nil {
		r.onCompleted(e)
	}
}

func (r recordingExtension) TransitionExceptionThrown(e TransitionExceptionThrownEvent) {
	if r.onException != nil {
		r.onException(e)
	}
}

func (r recordingExtension) StartedStateMachine(StartedStateMachineEvent)    {}
func (r recordingExtension) StoppedStateMachine(StoppedStateMachineEvent)    {}
func (r recordingExtension) EventQueued(EventQueuedEvent)                    {}
func (r recordingExtension) EventQueuedWithPriority(EventQueuedEvent)        {}
func (r recordingExtension) Loaded(LoadedEvent)                              {}
