package hsm

import (
	"context"
	"errors"
	"fmt"
)

// Snapshot is the serializable runtime state of one Machine: enough to
// fully restore it via Load without replaying its event history.
type Snapshot struct {
	Name    string          `json:"name" yaml:"name"`
	Current string          `json:"current" yaml:"current"`
	History []HistoryRecord `json:"history" yaml:"history"`
}

// ErrSnapshotNotFound is returned by LoadCurrentState/LoadHistoryStates
// when key has no saved record at all.
var ErrSnapshotNotFound = errors.New("hsm: snapshot not found")

// Saver persists a Machine's state under a key (a machine instance id,
// run id, or similar caller-chosen identifier), as two ordered
// operations rather than one atomic write: SaveCurrentState must
// complete before SaveHistoryStates is called, mirroring the order a
// Loader must read them back in. Implementations live in package
// persistence.
type Saver interface {
	// SaveCurrentState persists the machine's current leaf state id.
	// current is "" if the machine has no current state (never
	// initialized).
	SaveCurrentState(ctx context.Context, key string, current string) error
	// SaveHistoryStates persists the machine's full recorded history.
	// Called only after SaveCurrentState has returned successfully.
	SaveHistoryStates(ctx context.Context, key string, history []HistoryRecord) error
}

// Loader retrieves a previously saved Machine state for a key, as two
// ordered operations: LoadCurrentState must be called, and return,
// before LoadHistoryStates. Both return ErrSnapshotNotFound if key has
// no record at all; LoadCurrentState returns ("", nil) if a record
// exists but no current state was ever saved for it (the machine was
// persisted before its first Initialize).
type Loader interface {
	LoadCurrentState(ctx context.Context, key string) (string, error)
	LoadHistoryStates(ctx context.Context, key string) ([]HistoryRecord, error)
}

// SaveSnapshot writes snap through s in the order the Saver contract
// requires: current state first, then history.
func SaveSnapshot(ctx context.Context, s Saver, key string, snap Snapshot) error {
	if err := s.SaveCurrentState(ctx, key, snap.Current); err != nil {
		return fmt.Errorf("save current state: %w", err)
	}
	if err := s.SaveHistoryStates(ctx, key, snap.History); err != nil {
		return fmt.Errorf("save history states: %w", err)
	}
	return nil
}

// LoadSnapshot reads a Snapshot through l in the order the Loader
// contract requires: current state first, then history. A record whose
// current state was never saved comes back with Current == "": the
// caller's subsequent Machine.Load still succeeds, and still consumes
// the machine's initialize/load slot, per the uninitialized-current-
// state edge case.
func LoadSnapshot(ctx context.Context, l Loader, key string) (Snapshot, error) {
	current, err := l.LoadCurrentState(ctx, key)
	if err != nil {
		return Snapshot{}, fmt.Errorf("load current state: %w", err)
	}
	history, err := l.LoadHistoryStates(ctx, key)
	if err != nil {
		return Snapshot{}, fmt.Errorf("load history states: %w", err)
	}
	return Snapshot{Name: key, Current: current, History: history}, nil
}
