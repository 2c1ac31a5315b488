package queue

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/arena/internal/core/models"
)

func task(a, d uint64) FightTask {
	return FightTask{AttackerID: models.EntityID(a), DefenderID: models.EntityID(d)}
}

func TestDrainEmptiesQueue(t *testing.T) {
	q := New(0)
	assert.Empty(t, q.Drain())

	assert.Equal(t, 2, q.Push(task(1, 2), task(3, 4)))
	assert.Equal(t, 1, q.Push(task(5, 6)))
	assert.Equal(t, 3, q.Len())

	got := q.Drain()
	assert.Equal(t, []FightTask{task(1, 2), task(3, 4), task(5, 6)}, got)
	assert.Zero(t, q.Len())
	assert.Empty(t, q.Drain())
	assert.Equal(t, uint64(3), q.Pushed())
}

func TestBoundedQueueDropsOverflow(t *testing.T) {
	q := New(2)
	assert.Equal(t, 2, q.Push(task(1, 2), task(2, 3), task(3, 4)))
	assert.Equal(t, 0, q.Push(task(4, 5)))
	assert.Equal(t, uint64(2), q.Dropped())

	require.Len(t, q.Drain(), 2)
	assert.Equal(t, 1, q.Push(task(6, 7)))
}

func TestConcurrentProducerConsumer(t *testing.T) {
	q := New(0)
	const total = 10_000

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < total; i++ {
			q.Push(task(uint64(i), uint64(i+1)))
		}
	}()

	seen := 0
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	for {
		seen += len(q.Drain())
		select {
		case <-done:
			seen += len(q.Drain())
			assert.Equal(t, total, seen)
			return
		default:
		}
	}
}
