// Package queue hands pending fights from movement over to combat.
package queue

import (
	"sync"
	"sync/atomic"

	"github.com/zeusync/arena/internal/core/models"
)

// FightTask is one pending attacker/defender pair.
type FightTask struct {
	AttackerID models.EntityID
	DefenderID models.EntityID
}

// FightQueue is a single-producer/single-consumer hand-off. The consumer takes
// the whole backlog in one swap so the lock is held only for a slice header
// exchange.
type FightQueue struct {
	mu       sync.Mutex
	tasks    []FightTask
	capacity int

	pushed  atomic.Uint64
	dropped atomic.Uint64
}

// New creates a queue. A capacity of zero means unbounded; otherwise tasks
// pushed while the queue is full are dropped and counted.
func New(capacity int) *FightQueue {
	if capacity < 0 {
		capacity = 0
	}
	return &FightQueue{capacity: capacity}
}

// Push appends tasks in order and returns how many were accepted.
func (q *FightQueue) Push(tasks ...FightTask) int {
	if len(tasks) == 0 {
		return 0
	}

	q.mu.Lock()
	accepted := len(tasks)
	if q.capacity > 0 {
		if room := q.capacity - len(q.tasks); room < accepted {
			accepted = max(room, 0)
		}
	}
	q.tasks = append(q.tasks, tasks[:accepted]...)
	q.mu.Unlock()

	q.pushed.Add(uint64(accepted))
	if rejected := len(tasks) - accepted; rejected > 0 {
		q.dropped.Add(uint64(rejected))
	}
	return accepted
}

// Drain empties the queue and returns everything that was in it.
func (q *FightQueue) Drain() []FightTask {
	q.mu.Lock()
	tasks := q.tasks
	q.tasks = nil
	q.mu.Unlock()
	return tasks
}

func (q *FightQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.tasks)
}

// Pushed is the total number of tasks ever accepted.
func (q *FightQueue) Pushed() uint64 { return q.pushed.Load() }

// Dropped is the total number of tasks rejected for lack of capacity.
func (q *FightQueue) Dropped() uint64 { return q.dropped.Load() }
