// Package world holds the shared registry of tracked entities.
package world

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/zeusync/arena/internal/core/models"
)

var (
	ErrDuplicateEntity = errors.New("entity id already registered")
	ErrEntityRemoved   = errors.New("entity id was removed and cannot be reused")
	ErrNilEntity       = errors.New("entity is nil")
)

// Registry is the single source of truth for which entities exist. Membership
// changes take the write lock; snapshots take the read lock only while
// copying references.
type Registry struct {
	mu       sync.RWMutex
	entities map[models.EntityID]*models.Entity
	removed  map[models.EntityID]struct{}

	lastID atomic.Uint64
}

func NewRegistry() *Registry {
	return &Registry{
		entities: make(map[models.EntityID]*models.Entity),
		removed:  make(map[models.EntityID]struct{}),
	}
}

// NextID hands out ids that are never reused by this registry.
func (r *Registry) NextID() models.EntityID {
	return models.EntityID(r.lastID.Add(1))
}

// Spawn builds an entity from rec with a fresh id and inserts it.
func (r *Registry) Spawn(rec models.Record) (*models.Entity, error) {
	e, err := models.NewEntity(r.NextID(), rec)
	if err != nil {
		return nil, err
	}
	if err = r.Insert(e); err != nil {
		return nil, err
	}
	return e, nil
}

// Insert tracks a new entity. Ids must be unique over the registry lifetime.
func (r *Registry) Insert(e *models.Entity) error {
	if e == nil {
		return ErrNilEntity
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, gone := r.removed[e.ID()]; gone {
		return fmt.Errorf("insert %d: %w", e.ID(), ErrEntityRemoved)
	}
	if _, exists := r.entities[e.ID()]; exists {
		return fmt.Errorf("insert %d: %w", e.ID(), ErrDuplicateEntity)
	}
	r.entities[e.ID()] = e

	// keep NextID ahead of externally assigned ids
	for {
		last := r.lastID.Load()
		if uint64(e.ID()) <= last || r.lastID.CompareAndSwap(last, uint64(e.ID())) {
			break
		}
	}
	return nil
}

// Remove drops the entity if present. It reports whether anything was removed.
func (r *Registry) Remove(id models.EntityID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.entities[id]; !exists {
		return false
	}
	delete(r.entities, id)
	r.removed[id] = struct{}{}
	return true
}

func (r *Registry) Get(id models.EntityID) (*models.Entity, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.entities[id]
	return e, ok
}

// SnapshotAlive returns the currently alive entities ordered by id.
func (r *Registry) SnapshotAlive() []*models.Entity {
	r.mu.RLock()
	out := make([]*models.Entity, 0, len(r.entities))
	for _, e := range r.entities {
		if e.IsAlive() {
			out = append(out, e)
		}
	}
	r.mu.RUnlock()

	slices.SortFunc(out, func(a, b *models.Entity) int {
		return cmp.Compare(a.ID(), b.ID())
	})
	return out
}

// Count is the number of tracked entities, alive or not.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entities)
}
