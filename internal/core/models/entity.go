package models

import (
	"fmt"
	"sync"
	"sync/atomic"
)

type EntityID uint64

// Record is the persistable blueprint of an entity: everything but identity
// and liveness.
type Record struct {
	Kind Kind
	Name string
	X, Y int
}

// Entity is one simulated actor. Identity, kind and name never change.
// Position is swapped as a whole value so concurrent readers never observe a
// torn (x, y) pair, and alive only ever goes from true to false. Writers of
// either hold mu, so no move lands after Kill.
type Entity struct {
	id   EntityID
	kind Kind
	name string

	mu    sync.Mutex
	pos   atomic.Pointer[Position]
	alive atomic.Bool
}

// NewEntity validates the record and builds a live entity.
func NewEntity(id EntityID, rec Record) (*Entity, error) {
	if !rec.Kind.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownKind, rec.Kind)
	}
	if !InBounds(rec.X, rec.Y) {
		return nil, fmt.Errorf("%w: got (%d, %d)", ErrOutOfBounds, rec.X, rec.Y)
	}

	e := &Entity{id: id, kind: rec.Kind, name: rec.Name}
	e.pos.Store(&Position{X: rec.X, Y: rec.Y})
	e.alive.Store(true)
	return e, nil
}

func (e *Entity) ID() EntityID       { return e.id }
func (e *Entity) Kind() Kind         { return e.kind }
func (e *Entity) Name() string       { return e.name }
func (e *Entity) IsAlive() bool      { return e.alive.Load() }
func (e *Entity) Position() Position { return *e.pos.Load() }

// Kill flips the entity to dead. It reports false if it was already dead, so
// exactly one caller ever wins.
func (e *Entity) Kill() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.alive.CompareAndSwap(true, false)
}

// MoveBy displaces the entity by (dx, dy). Each axis is applied only if it
// keeps the entity inside the grid. Dead entities never move. It returns the
// resulting position.
func (e *Entity) MoveBy(dx, dy int) Position {
	e.mu.Lock()
	defer e.mu.Unlock()

	cur := e.pos.Load()
	if !e.IsAlive() {
		return *cur
	}

	next := *cur
	if x := cur.X + dx; x >= MinCoord && x <= MaxCoord {
		next.X = x
	}
	if y := cur.Y + dy; y >= MinCoord && y <= MaxCoord {
		next.Y = y
	}
	if next != *cur {
		e.pos.Store(&next)
	}
	return next
}

// DistanceTo is the Euclidean distance between the two current positions.
func (e *Entity) DistanceTo(other *Entity) float64 {
	return Distance(e.Position(), other.Position())
}

// Record captures the entity's current persistable state.
func (e *Entity) Record() Record {
	p := e.Position()
	return Record{Kind: e.kind, Name: e.name, X: p.X, Y: p.Y}
}

func (e *Entity) String() string {
	p := e.Position()
	return fmt.Sprintf("%s %s at (%d, %d)", e.kind, e.name, p.X, p.Y)
}
