// Package hsm implements a hierarchical finite state machine engine:
// composite states with initial-substate selection and shallow/deep
// history, guarded transitions (external, internal, and self), and
// hierarchical event bubbling up the ancestor chain.
//
// A machine is assembled once with Builder, finalized into an immutable
// Graph, then driven through a Machine either synchronously (Fire) or,
// via Runner, from a background worker goroutine fed by a FIFO/priority
// queue. Persistence, event-source, and observability adapters live in
// the sibling persistence, eventsource, observability, and report
// packages and depend only on the types exported here.
package hsm
