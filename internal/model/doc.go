// Package model defines the immutable, post-build graph of states and
// transitions that a hierarchical state machine runs against.
//
// Apart from github.com/wk8/go-ordered-map, which backs each state's
// event-to-transitions map, everything here is stdlib-only. The graph is
// read-only once Finalize succeeds:
// states are never mutated after a Graph is built, and the only mutable
// runtime state (current state, history) lives in package runtime.
package model
