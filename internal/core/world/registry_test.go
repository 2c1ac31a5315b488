package world

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/arena/internal/core/models"
)

func spawn(t *testing.T, r *Registry, kind models.Kind, name string, x, y int) *models.Entity {
	t.Helper()
	e, err := r.Spawn(models.Record{Kind: kind, Name: name, X: x, Y: y})
	require.NoError(t, err)
	return e
}

func TestSpawnAssignsUniqueIDs(t *testing.T) {
	r := NewRegistry()
	a := spawn(t, r, models.KindToad, "a", 1, 1)
	b := spawn(t, r, models.KindDragon, "b", 2, 2)

	assert.NotEqual(t, a.ID(), b.ID())
	assert.Equal(t, 2, r.Count())

	got, ok := r.Get(a.ID())
	require.True(t, ok)
	assert.Same(t, a, got)
}

func TestSpawnRejectsOutOfBounds(t *testing.T) {
	r := NewRegistry()
	_, err := r.Spawn(models.Record{Kind: models.KindToad, Name: "x", X: 101, Y: 0})
	assert.ErrorIs(t, err, models.ErrOutOfBounds)
	assert.Zero(t, r.Count())
}

func TestInsertDuplicateAndRemoved(t *testing.T) {
	r := NewRegistry()
	e, err := models.NewEntity(42, models.Record{Kind: models.KindKnight, Name: "k", X: 5, Y: 5})
	require.NoError(t, err)

	require.NoError(t, r.Insert(e))
	assert.ErrorIs(t, r.Insert(e), ErrDuplicateEntity)
	assert.Greater(t, r.NextID(), models.EntityID(42), "ids stay ahead of inserted ones")

	assert.True(t, r.Remove(e.ID()))
	assert.False(t, r.Remove(e.ID()), "remove is idempotent")
	assert.False(t, r.Remove(9999))

	assert.ErrorIs(t, r.Insert(e), ErrEntityRemoved)
	_, ok := r.Get(e.ID())
	assert.False(t, ok)
	assert.ErrorIs(t, r.Insert(nil), ErrNilEntity)
}

func TestSnapshotAliveOrderedAndFiltered(t *testing.T) {
	r := NewRegistry()
	var all []*models.Entity
	for i := 0; i < 10; i++ {
		all = append(all, spawn(t, r, models.KindToad, "t", i, i))
	}
	all[3].Kill()
	all[7].Kill()

	snap := r.SnapshotAlive()
	require.Len(t, snap, 8)
	for i := 1; i < len(snap); i++ {
		assert.Less(t, snap[i-1].ID(), snap[i].ID())
	}
	for _, e := range snap {
		assert.True(t, e.IsAlive())
	}
	assert.Equal(t, 10, r.Count(), "dead but not removed entities are still tracked")
}

func TestConcurrentReadersAndWriter(t *testing.T) {
	r := NewRegistry()
	for i := 0; i < 50; i++ {
		spawn(t, r, models.KindDragon, "d", i, i)
	}

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				_ = r.SnapshotAlive()
				_ = r.Count()
			}
		}()
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		for id := models.EntityID(1); id <= 50; id += 2 {
			r.Remove(id)
		}
	}()
	wg.Wait()

	assert.Equal(t, 25, r.Count())
}
