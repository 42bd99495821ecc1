// Package snapshot holds the single active ruleset snapshot and
// mediates its atomic replacement. Readers never block writers and
// writers never block readers: Current returns a snapshot that is
// immutable for its entire lifetime, so a selection in flight keeps
// using the snapshot it observed even if Install runs concurrently.
// Reclamation of a superseded snapshot is left to the garbage
// collector — once no reader still holds a reference to it, it is
// collected like any other value.
package snapshot

import (
	"sync/atomic"
	"time"

	"github.com/TimurManjosov/gwselect/internal/ruleset"
)

// Registry holds the currently active snapshot, if any.
type Registry struct {
	current atomic.Pointer[ruleset.Snapshot]
}

// NewRegistry returns an empty registry with no active snapshot.
func NewRegistry() *Registry {
	return &Registry{}
}

// Install atomically replaces the active snapshot and returns the
// prior one (nil if this is the first install).
func (r *Registry) Install(snap *ruleset.Snapshot) *ruleset.Snapshot {
	return r.current.Swap(snap)
}

// Current returns the active snapshot, or nil if none has been
// installed yet. The returned pointer is safe to hold and evaluate
// against for as long as the caller needs, regardless of subsequent
// Install calls.
func (r *Registry) Current() *ruleset.Snapshot {
	return r.current.Load()
}

// ActiveID reports the id, version, and compile time of the active
// snapshot. ok is false if no snapshot has been installed.
func (r *Registry) ActiveID() (id, version int64, compiledAt time.Time, ok bool) {
	snap := r.current.Load()
	if snap == nil {
		return 0, 0, time.Time{}, false
	}
	return snap.ID, snap.Version, snap.CompiledAt, true
}
