package model

import "errors"

// ErrIllFormedGraph is returned by Graph.Finalize when the state/transition
// graph violates one of the structural invariants (a super_state not
// listing its child, a composite with no initial substate or one that is
// not among its children, a leaf declaring an initial substate or a
// history kind, or a transition's source not matching its owning state).
var ErrIllFormedGraph = errors.New("model: ill-formed state graph")
