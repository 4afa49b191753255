package hsm

import (
	"container/list"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"
)

// ErrRunnerNotRunning is returned by Fire/FirePriority/Stop when the
// Runner has not been started, or has already been stopped.
var ErrRunnerNotRunning = errors.New("hsm: runner is not running")

// ErrRunnerAlreadyRunning is returned by Start when the Runner is
// already running.
var ErrRunnerAlreadyRunning = errors.New("hsm: runner is already running")

// WorkerFault wraps every error Fire returned while draining the queue,
// surfaced once from Stop.
type WorkerFault struct {
	Faults []error
}

func (f *WorkerFault) Error() string {
	return fmt.Sprintf("hsm: worker encountered %d fault(s); first: %v", len(f.Faults), f.Faults[0])
}

type queuedEvent struct {
	eventID string
	arg     any
}

type runnerState int

const (
	runnerCreated runnerState = iota
	runnerInitialized
	runnerRunning
	runnerStopped
)

// Runner drives a Machine from a single background goroutine, fed by a
// queue that a caller pushes to from any number of other goroutines.
// Fire enqueues FIFO, at the tail; FirePriority enqueues LIFO, at the
// head, so a priority event is the very next one delivered regardless
// of what is already queued. The queue is a plain doubly linked list
// guarded by a mutex and condition variable rather than a channel,
// since a channel cannot express inserting at the head.
//
// A Runner moves through four states: Created, Initialized (after
// Initialize), Running (after Start), Stopped (after Stop; may
// restart). Initialize records the intended initial state but does not
// run its Entry chain — that is deferred to the worker's first tick, so
// extensions observing entry see the machine already started. If Start
// is called directly from Created, it initializes from the graph root
// on the caller's behalf, preserving the same deferred-entry guarantee.
type Runner struct {
	mu    sync.Mutex
	cond  *sync.Cond
	queue *list.List
	state runnerState

	m      *Machine
	eg     *errgroup.Group
	faults []error
}

// NewRunner creates a Runner bound to m, not yet started.
func NewRunner(m *Machine) *Runner {
	r := &Runner{m: m, queue: list.New()}
	r.cond = sync.NewCond(&r.mu)
	return r
}

// Initialize records stateID (the graph root, if empty) as the Runner's
// intended initial state, without running its Entry chain — Entry is
// deferred to the worker's first tick, once Start launches it. Initialize
// fails with ErrAlreadyInitialized if the Runner is not in the Created
// state, or if the bound Machine's initialize/load slot was already
// claimed some other way (e.g. a direct Load).
func (r *Runner) Initialize(stateID string) error {
	r.mu.Lock()
	if r.state != runnerCreated {
		r.mu.Unlock()
		return ErrAlreadyInitialized
	}
	r.mu.Unlock()

	if err := r.m.PrepareInitialize(stateID); err != nil {
		return err
	}

	r.mu.Lock()
	r.state = runnerInitialized
	r.mu.Unlock()
	return nil
}

// Start launches the worker goroutine. If the Runner is still Created
// (Initialize was never called), Start initializes it from the graph
// root first, under the same deferred-entry guarantee. Start fails if
// the Runner is already running.
func (r *Runner) Start() error {
	r.mu.Lock()
	switch r.state {
	case runnerRunning:
		r.mu.Unlock()
		return ErrRunnerAlreadyRunning
	case runnerCreated:
		r.mu.Unlock()
		if err := r.m.PrepareInitialize(""); err != nil {
			return err
		}
		r.mu.Lock()
	}
	r.state = runnerRunning
	r.mu.Unlock()

	r.eg = &errgroup.Group{}
	r.eg.Go(r.loop)
	return nil
}

// IsRunning reports whether the worker goroutine is currently running.
func (r *Runner) IsRunning() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state == runnerRunning
}

func (r *Runner) loop() error {
	if err := r.m.ConsumeInitialize(); err != nil {
		return err
	}
	r.m.notifyStarted()

	for {
		r.mu.Lock()
		for r.queue.Len() == 0 && r.state == runnerRunning {
			r.cond.Wait()
		}
		if r.queue.Len() == 0 {
			r.mu.Unlock()
			break
		}
		front := r.queue.Remove(r.queue.Front()).(queuedEvent)
		r.mu.Unlock()

		if err := r.m.Fire(front.eventID, front.arg); err != nil {
			r.mu.Lock()
			r.faults = append(r.faults, err)
			r.mu.Unlock()
		}
	}

	r.mu.Lock()
	faults := append([]error(nil), r.faults...)
	r.mu.Unlock()
	r.m.notifyStopped(faults)
	return nil
}

// Fire enqueues eventID/arg at the tail of the queue for FIFO delivery.
// Extensions observe EventQueued after the queue lock is released.
func (r *Runner) Fire(eventID string, arg any) error {
	r.mu.Lock()
	if r.state != runnerRunning {
		r.mu.Unlock()
		return ErrRunnerNotRunning
	}
	r.queue.PushBack(queuedEvent{eventID, arg})
	r.cond.Signal()
	r.mu.Unlock()

	r.m.notifyEventQueued(eventID, arg)
	return nil
}

// FirePriority enqueues eventID/arg at the head of the queue: it is
// delivered before anything already waiting, but after whatever the
// worker is currently firing. Extensions observe EventQueuedWithPriority
// after the queue lock is released.
func (r *Runner) FirePriority(eventID string, arg any) error {
	r.mu.Lock()
	if r.state != runnerRunning {
		r.mu.Unlock()
		return ErrRunnerNotRunning
	}
	r.queue.PushFront(queuedEvent{eventID, arg})
	r.cond.Signal()
	r.mu.Unlock()

	r.m.notifyEventQueuedWithPriority(eventID, arg)
	return nil
}

// Stop drains the worker, waits for it to exit, and returns a
// *WorkerFault wrapping every Fire error observed while draining, if
// any. Stop fails with ErrRunnerNotRunning if the Runner is not
// currently running.
func (r *Runner) Stop() error {
	r.mu.Lock()
	if r.state != runnerRunning {
		r.mu.Unlock()
		return ErrRunnerNotRunning
	}
	r.state = runnerStopped
	r.cond.Broadcast()
	r.mu.Unlock()

	_ = r.eg.Wait()

	r.mu.Lock()
	faults := r.faults
	r.mu.Unlock()
	if len(faults) > 0 {
		return &WorkerFault{Faults: faults}
	}
	return nil
}
