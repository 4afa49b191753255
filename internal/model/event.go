package model

// Event is the (event_id, argument) pair fired at a machine. Argument is
// an opaque value supplied by the caller; the engine never inspects it.
type Event struct {
	ID  string
	Arg any
}

// Context is passed to every guard and action invoked while firing a
// single event. It carries the event, the state the search started
// from (not necessarily the transition's declared source, since
// bubbling may have walked up from there to find a match), and a
// notifier the engine uses to record guard/action panics so they can
// be surfaced as TransitionExceptionThrown without aborting the
// exit/entry sequence already in progress.
type Context struct {
	EventID  string
	Arg      any
	Started  *State
	notifier *Notifier
}

// NewContext builds a Context for firing eventID/arg starting the search
// from started.
func NewContext(eventID string, arg any, started *State) *Context {
	return &Context{EventID: eventID, Arg: arg, Started: started, notifier: &Notifier{}}
}

// Notifier returns the context's fault-recording sink.
func (c *Context) Notifier() *Notifier {
	return c.notifier
}

// Notifier records every guard or action fault encountered while
// firing one event, so the caller can emit a single
// TransitionExceptionThrown carrying every fault instead of aborting
// mid-sequence. Exit/entry chains always run to completion regardless
// of what Notifier records.
type Notifier struct {
	faults []error
}

// Record appends a fault. Safe to call multiple times; every action or
// guard that panics or errors during one Fire is recorded.
func (n *Notifier) Record(err error) {
	if err != nil {
		n.faults = append(n.faults, err)
	}
}

// Faults returns every fault recorded so far, oldest first.
func (n *Notifier) Faults() []error {
	return n.faults
}
