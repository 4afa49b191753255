package runtime

import "github.com/latticehsm/hsm/internal/model"

// resolveInitial returns the state named by stateID, or the graph root if
// stateID is empty.
func resolveInitial(c *Container, stateID model.StateID) (*model.State, error) {
	if stateID == "" {
		return c.Graph().Root, nil
	}
	s, ok := c.Graph().Lookup(stateID)
	if !ok {
		return nil, ErrUnknownState
	}
	return s, nil
}

// PrepareInitialize claims the container's once-only initialize/load slot
// and records stateID (or the graph root, if stateID is empty) as the
// intended initial state, without running its Entry chain yet. Entry is
// deferred until ConsumeInitialize runs, so that an active runner can
// start its worker and only then enter the initial state, on the
// worker's own thread — extensions observing entry see the machine
// already started. PrepareInitialize fails with ErrAlreadyInitialized if
// the slot was already claimed (by a prior, possibly failed, initialize
// or load), and with ErrUnknownState if stateID does not resolve in the
// graph — a failure that still consumes the slot.
func PrepareInitialize(c *Container, stateID model.StateID) error {
	if !c.claimInitializeSlot() {
		return ErrAlreadyInitialized
	}
	initial, err := resolveInitial(c, stateID)
	if err != nil {
		return err
	}
	c.setPendingInitial(initial)
	return nil
}

// ConsumeInitialize runs the Entry chain for a pending initial state
// recorded by PrepareInitialize, if any; it is a no-op if nothing is
// pending. Called from the active runner's worker loop, before the first
// event is dequeued.
func ConsumeInitialize(c *Container) error {
	initial, ok := c.takePendingInitial()
	if !ok {
		return nil
	}
	ctx := model.NewContext("", nil, nil)
	leaf := enter(ctx, c, initial, false)
	c.SetCurrent(leaf)
	return nil
}

// Initialize enters the container's graph from stateID (the graph root,
// if stateID is empty) immediately, running every Entry action along the
// initial descent path, and sets the resolved leaf as current. Used by
// the passive façade, where there is no worker thread to defer entry to.
// Initialize fails if the container's initialize/load slot was already
// claimed, or if stateID does not resolve in the graph.
func Initialize(c *Container, stateID model.StateID) error {
	if err := PrepareInitialize(c, stateID); err != nil {
		return err
	}
	return ConsumeInitialize(c)
}

// HistoryRecord is one restored (super-state, last-active-descendant)
// pair, as persisted by a Saver and read back by a Loader (C7).
type HistoryRecord struct {
	Super model.StateID
	Leaf  model.StateID
}

// Load restores a container directly to currentID with a given set of
// history records, bypassing the initial-descent Entry chain — this is
// how a persisted snapshot is rehydrated rather than freshly started.
// Load fails with ErrAlreadyInitialized if the initialize/load slot was
// already claimed, and with ErrInvalidHistoryState if currentID is
// non-empty but does not resolve in the graph, or if any history
// record's leaf is not a descendant of its claimed super state.
//
// currentID may be empty, meaning the loader reported no current state
// (a null-valued slot, as written by Machine.Snapshot for a machine that
// was never initialized). In that case Load still claims the slot —
// initialize/load cannot be retried afterward — but leaves current unset,
// so the container remains uninitialized-for-firing.
func Load(c *Container, currentID model.StateID, history []HistoryRecord) error {
	if !c.claimInitializeSlot() {
		return ErrAlreadyInitialized
	}
	for _, rec := range history {
		super, ok := c.Graph().Lookup(rec.Super)
		if !ok {
			return ErrInvalidHistoryState
		}
		leaf, ok := c.Graph().Lookup(rec.Leaf)
		if !ok {
			return ErrInvalidHistoryState
		}
		if err := c.RestoreHistoryEntry(super, leaf); err != nil {
			return err
		}
	}
	if currentID != "" {
		current, ok := c.Graph().Lookup(currentID)
		if !ok {
			return ErrInvalidHistoryState
		}
		c.SetCurrent(current)
	}
	mc := &multicast{exts: c.extensionsSnapshot()}
	mc.loaded(LoadedEvent{Current: currentID, History: history})
	return nil
}
