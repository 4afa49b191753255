package runtime

import (
	"sync"

	"github.com/latticehsm/hsm/internal/model"
)

// Container is the mutable runtime state of one machine instance: the
// current state, per-composite history, the registered extensions, and
// a display name. In active mode only the worker goroutine mutates a
// Container; in passive mode the caller must not fire concurrently —
// the RWMutex here guards against concurrent *readers* (Current,
// extension iteration) racing a single writer, not against concurrent
// firers.
type Container struct {
	mu             sync.RWMutex
	graph          *model.Graph
	current        *model.State
	slotUsed       bool
	pendingInitial *model.State
	lastActive     map[model.StateID]*model.State
	extensions     []Extension
	name           string
}

// NewContainer creates an uninitialized container bound to graph.
func NewContainer(graph *model.Graph, name string) *Container {
	return &Container{
		graph:      graph,
		lastActive: make(map[model.StateID]*model.State),
		name:       name,
	}
}

// Graph returns the bound, finalized state graph.
func (c *Container) Graph() *model.Graph {
	return c.graph
}

// Current returns the current state, or nil if uninitialized.
func (c *Container) Current() *model.State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.current
}

// SetCurrent updates the current state.
func (c *Container) SetCurrent(s *model.State) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = s
}

// claimInitializeSlot marks the container's once-only initialize/load
// slot as used, returning false if it was already claimed by a prior
// Initialize, PrepareInitialize, or Load call — whether or not that
// call went on to succeed. A failed initialize still consumes the slot:
// a subsequent load is not permitted to retry where initialize left off.
func (c *Container) claimInitializeSlot() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.slotUsed {
		return false
	}
	c.slotUsed = true
	return true
}

// setPendingInitial records s as the intended initial state without
// entering it yet. Callers must have already claimed the initialize slot.
func (c *Container) setPendingInitial(s *model.State) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pendingInitial = s
}

// takePendingInitial clears and returns the recorded pending initial
// state, if any. Used by the worker's first tick to run the deferred
// Entry chain.
func (c *Container) takePendingInitial() (*model.State, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.pendingInitial
	c.pendingInitial = nil
	return s, s != nil
}

// LastActiveFor returns the recorded history entry for a composite state
// id, if any.
func (c *Container) LastActiveFor(super model.StateID) (*model.State, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s, ok := c.lastActive[super]
	return s, ok
}

// SetLastActiveFor records the last active descendant for a composite
// state id.
func (c *Container) SetLastActiveFor(super model.StateID, leaf *model.State) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastActive[super] = leaf
}

// HistoryEntries returns a snapshot copy of every recorded history
// entry, keyed by composite state id.
func (c *Container) HistoryEntries() map[model.StateID]model.StateID {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[model.StateID]model.StateID, len(c.lastActive))
	for k, v := range c.lastActive {
		out[k] = v.ID
	}
	return out
}

// RestoreHistoryEntry re-establishes one history entry, verifying leaf is
// a descendant of super first. Used by Load (C7).
func (c *Container) RestoreHistoryEntry(super, leaf *model.State) error {
	if !c.graph.IsDescendantOf(leaf, super) {
		return ErrInvalidHistoryState
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastActive[super.ID] = leaf
	return nil
}

// AddExtension appends ext to the observer list.
func (c *Container) AddExtension(ext Extension) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.extensions = append(c.extensions, ext)
}

// ClearExtensions removes every registered observer.
func (c *Container) ClearExtensions() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.extensions = nil
}

// extensionsSnapshot returns the current observer list for a multicast
// call; extensions themselves are never invoked under the container's
// lock.
func (c *Container) extensionsSnapshot() []Extension {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Extension, len(c.extensions))
	copy(out, c.extensions)
	return out
}

// Name returns the container's display name.
func (c *Container) Name() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.name
}

// SetName updates the container's display name.
func (c *Container) SetName(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.name = name
}
