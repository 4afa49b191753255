package runtime

import "errors"

var (
	// ErrNotInitialized is returned by Fire when the container has no
	// current state yet.
	ErrNotInitialized = errors.New("runtime: machine not initialized")
	// ErrAlreadyInitialized is returned by Initialize/PrepareInitialize/
	// Load when the container's once-only initialize/load slot was
	// already claimed by one of the three, whether or not that call
	// succeeded.
	ErrAlreadyInitialized = errors.New("runtime: machine already initialized")
	// ErrInvalidHistoryState is returned by Load when a restored history
	// entry's leaf is not a descendant of its claimed super state, or when
	// Load's current-state id does not resolve in the graph.
	ErrInvalidHistoryState = errors.New("runtime: history entry is not a descendant of its super state")
	// ErrUnknownState is returned by Initialize/PrepareInitialize when a
	// given initial state id does not resolve in the graph.
	ErrUnknownState = errors.New("runtime: state id not found in graph")
)
