// Package movement advances entity positions and turns proximity into fights.
package movement

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/zeusync/arena/internal/core/models"
	"github.com/zeusync/arena/internal/core/observability/log"
	"github.com/zeusync/arena/internal/core/queue"
	"github.com/zeusync/arena/internal/core/random"
	"github.com/zeusync/arena/internal/core/world"
)

const DefaultInterval = 100 * time.Millisecond

// Displace moves e by a random step: each axis independently picks -1, 0 or
// +1 and scales it by the kind's move range. Axes that would leave the grid
// are left unchanged.
func Displace(e *models.Entity, src random.Source) models.Position {
	step := e.Kind().MoveRange()
	dx := (src.IntN(3) - 1) * step
	dy := (src.IntN(3) - 1) * step
	return e.MoveBy(dx, dy)
}

// DetectFights scans every unordered pair of alive entities and returns one
// task per pair within kill range of either side. When both sides reach each
// other the attacker is picked by a coin flip.
func DetectFights(entities []*models.Entity, src random.Source) []queue.FightTask {
	var tasks []queue.FightTask
	for i := 0; i < len(entities); i++ {
		a := entities[i]
		if !a.IsAlive() {
			continue
		}
		for j := i + 1; j < len(entities); j++ {
			b := entities[j]
			if !b.IsAlive() {
				continue
			}

			dist := a.DistanceTo(b)
			aReaches := dist <= float64(a.Kind().KillRange())
			bReaches := dist <= float64(b.Kind().KillRange())

			switch {
			case aReaches && bReaches:
				if src.IntN(2) == 0 {
					tasks = append(tasks, queue.FightTask{AttackerID: a.ID(), DefenderID: b.ID()})
				} else {
					tasks = append(tasks, queue.FightTask{AttackerID: b.ID(), DefenderID: a.ID()})
				}
			case aReaches:
				tasks = append(tasks, queue.FightTask{AttackerID: a.ID(), DefenderID: b.ID()})
			case bReaches:
				tasks = append(tasks, queue.FightTask{AttackerID: b.ID(), DefenderID: a.ID()})
			}
		}
	}
	return tasks
}

// CycleStats describes one movement cycle.
type CycleStats struct {
	Moved    int
	Detected int
	Enqueued int
}

// Agent periodically moves every alive entity and enqueues fight tasks.
type Agent struct {
	registry *world.Registry
	queue    *queue.FightQueue
	src      random.Source
	interval time.Duration
	logger   log.Log

	cycles   atomic.Uint64
	enqueued atomic.Uint64
}

type AgentOption func(*Agent)

func WithSource(src random.Source) AgentOption {
	return func(a *Agent) {
		if src != nil {
			a.src = src
		}
	}
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

func NewAgent(registry *world.Registry, q *queue.FightQueue, opts ...AgentOption) *Agent {
	a := &Agent{
		registry: registry,
		queue:    q,
		src:      random.Global(),
		interval: DefaultInterval,
		logger:   log.Nop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	a.logger = a.logger.With(log.String("component", "movement"))
	return a
}

// Step runs one cycle over a single consistent snapshot. No registry lock is
// held while moving or measuring.
func (a *Agent) Step() CycleStats {
	alive := a.registry.SnapshotAlive()
	for _, e := range alive {
		Displace(e, a.src)
	}

	tasks := DetectFights(alive, a.src)
	enqueued := a.queue.Push(tasks...)

	a.cycles.Add(1)
	a.enqueued.Add(uint64(enqueued))

	if dropped := len(tasks) - enqueued; dropped > 0 {
		a.logger.Warn("Fight queue full, tasks dropped", log.Int("dropped", dropped))
	}
	return CycleStats{Moved: len(alive), Detected: len(tasks), Enqueued: enqueued}
}

// Run steps until ctx is cancelled, finishing the current cycle first.
func (a *Agent) Run(ctx context.Context) error {
	a.logger.Info("Movement agent started", log.Duration("interval", a.interval))
	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()

	for {
		s := a.Step()
		a.logger.Debug("Movement cycle",
			log.Int("moved", s.Moved),
			log.Int("detected", s.Detected),
			log.Int("enqueued", s.Enqueued))

		select {
		case <-ctx.Done():
			a.logger.Info("Movement agent stopped",
				log.Uint64("cycles", a.cycles.Load()),
				log.Uint64("enqueued", a.enqueued.Load()))
			return nil
		case <-ticker.C:
		}
	}
}

func (a *Agent) Cycles() uint64 { return a.cycles.Load() }
