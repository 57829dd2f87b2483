package probe

import (
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// Registry is the collection of active probes. Scene-update logic mutates
// it between frames; the shading stage reads it only through Snapshot, so
// registry mutation and resolution never overlap on the same data.
type Registry struct {
	mu      sync.RWMutex
	log     *zap.Logger
	entries map[ID]*entry
	order   []ID
	nextID  ID
	nextSeq uint64
}

// entry is a registered probe plus derived state. active is false while the
// probe's transform is invalid; an inactive probe contributes nothing.
type entry struct {
	id     ID
	seq    uint64
	probe  Probe
	vol    Volume
	active bool
}

// NewRegistry creates an empty registry. A nil logger disables logging.
func NewRegistry(log *zap.Logger) *Registry {
	if log == nil {
		log = zap.NewNop()
	}
	return &Registry{
		log:     log,
		entries: make(map[ID]*entry),
	}
}

// Add registers a probe and returns its ID. If the probe's transform is not
// invertible the probe is still registered but inactive, and the returned
// error wraps ErrInvalidTransform; a later Update with a valid transform
// activates it.
func (r *Registry) Add(p Probe) (ID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	r.nextSeq++
	e := &entry{
		id:    r.nextID,
		seq:   r.nextSeq,
		probe: p,
	}
	r.entries[e.id] = e
	r.order = append(r.order, e.id)

	vol, err := NewVolume(p.Transform)
	if err != nil {
		r.log.Warn("probe registered inactive",
			zap.Uint32("id", uint32(e.id)),
			zap.String("kind", p.Kind.String()),
			zap.Error(err),
		)
		return e.id, fmt.Errorf("probe %d: %w", e.id, err)
	}

	e.vol = vol
	e.active = true
	r.log.Debug("probe registered",
		zap.Uint32("id", uint32(e.id)),
		zap.String("kind", p.Kind.String()),
	)
	return e.id, nil
}

// Update replaces a registered probe's data. The registration sequence is
// preserved, so tie-breaks are unaffected. An invalid transform deactivates
// the probe until corrected and returns an error wrapping
// ErrInvalidTransform.
func (r *Registry) Update(id ID, p Probe) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[id]
	if !ok {
		return fmt.Errorf("probe %d: %w", id, ErrUnknownProbe)
	}

	e.probe = p
	vol, err := NewVolume(p.Transform)
	if err != nil {
		e.active = false
		r.log.Warn("probe deactivated by update",
			zap.Uint32("id", uint32(id)),
			zap.Error(err),
		)
		return fmt.Errorf("probe %d: %w", id, err)
	}

	e.vol = vol
	e.active = true
	return nil
}

// Remove unregisters a probe. Removing an unknown ID is a no-op, so
// register-then-remove leaves the registry exactly as it was.
func (r *Registry) Remove(id ID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.entries[id]; !ok {
		return
	}
	delete(r.entries, id)
	for i, oid := range r.order {
		if oid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
}

// Len returns the number of registered probes, active or not.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}
