package combat

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/zeusync/arena/internal/core/models"
	"github.com/zeusync/arena/internal/core/observability/log"
	"github.com/zeusync/arena/internal/core/queue"
	"github.com/zeusync/arena/internal/core/world"
)

// DefaultInterval is the pause between combat cycles. It is shorter than the
// movement interval so the queue is drained promptly.
const DefaultInterval = 50 * time.Millisecond

// Stats are cumulative agent counters.
type Stats struct {
	Cycles    uint64
	Resolved  uint64
	Kills     uint64
	Discarded uint64
}

// BatchStats describes one drained batch.
type BatchStats struct {
	Drained   int
	Resolved  int
	Kills     int
	Discarded int
}

// Agent serializes combat resolution: it drains the fight queue, re-checks
// liveness, resolves each task and removes the defeated.
type Agent struct {
	registry *world.Registry
	queue    *queue.FightQueue
	observer Observer
	dice     Dice
	interval time.Duration
	logger   log.Log

	cycles    atomic.Uint64
	resolved  atomic.Uint64
	kills     atomic.Uint64
	discarded atomic.Uint64
}

type AgentOption func(*Agent)

func WithDice(d Dice) AgentOption {
	return func(a *Agent) { a.dice = d }
}

func WithInterval(d time.Duration) AgentOption {
	return func(a *Agent) {
		if d > 0 {
			a.interval = d
		}
	}
}

func WithLogger(l log.Log) AgentOption {
	return func(a *Agent) { a.logger = l }
}

func NewAgent(registry *world.Registry, q *queue.FightQueue, observer Observer, opts ...AgentOption) *Agent {
	if observer == nil {
		observer = Discard
	}
	a := &Agent{
		registry: registry,
		queue:    q,
		observer: observer,
		dice:     NewDice(nil),
		interval: DefaultInterval,
		logger:   log.Nop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	a.logger = a.logger.With(log.String("component", "combat"))
	return a
}

// Run resolves batches until ctx is cancelled. The current batch always
// completes before cancellation is observed.
func (a *Agent) Run(ctx context.Context) error {
	a.logger.Info("Combat agent started", log.Duration("interval", a.interval))
	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()

	for {
		if b := a.Step(); b.Drained > 0 {
			a.logger.Debug("Batch resolved",
				log.Int("drained", b.Drained),
				log.Int("resolved", b.Resolved),
				log.Int("kills", b.Kills),
				log.Int("discarded", b.Discarded))
		}

		select {
		case <-ctx.Done():
			s := a.Stats()
			a.logger.Info("Combat agent stopped",
				log.Uint64("resolved", s.Resolved),
				log.Uint64("kills", s.Kills),
				log.Uint64("discarded", s.Discarded))
			return nil
		case <-ticker.C:
		}
	}
}

// Step drains the queue once and resolves every task in the batch.
func (a *Agent) Step() BatchStats {
	tasks := a.queue.Drain()
	a.cycles.Add(1)

	b := BatchStats{Drained: len(tasks)}
	for _, task := range tasks {
		resolved, killed := a.resolve(task)
		switch {
		case !resolved:
			b.Discarded++
		case killed:
			b.Resolved++
			b.Kills++
		default:
			b.Resolved++
		}
	}

	a.resolved.Add(uint64(b.Resolved))
	a.kills.Add(uint64(b.Kills))
	a.discarded.Add(uint64(b.Discarded))
	return b
}

// resolve handles one task. A task whose participants are gone is discarded
// without notifying the observer.
func (a *Agent) resolve(task queue.FightTask) (resolved, killed bool) {
	attacker, ok := a.liveEntity(task.AttackerID)
	if !ok {
		return false, false
	}
	defender, ok := a.liveEntity(task.DefenderID)
	if !ok {
		return false, false
	}

	outcome := Resolve(attacker.Kind(), defender.Kind(), a.dice)
	if outcome.Success {
		if !defender.Kill() {
			return false, false
		}
		a.registry.Remove(defender.ID())
	}

	a.observer.OnFight(attacker, defender, outcome.Success)
	return true, outcome.Success
}

func (a *Agent) liveEntity(id models.EntityID) (*models.Entity, bool) {
	e, ok := a.registry.Get(id)
	if !ok || !e.IsAlive() {
		return nil, false
	}
	return e, true
}

func (a *Agent) Stats() Stats {
	return Stats{
		Cycles:    a.cycles.Load(),
		Resolved:  a.resolved.Load(),
		Kills:     a.kills.Load(),
		Discarded: a.discarded.Load(),
	}
}
