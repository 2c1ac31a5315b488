// Package sim owns the shared simulation state and runs the movement, combat
// and clock agents against it.
package sim

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/zeusync/arena/internal/core/clock"
	"github.com/zeusync/arena/internal/core/combat"
	"github.com/zeusync/arena/internal/core/models"
	"github.com/zeusync/arena/internal/core/movement"
	"github.com/zeusync/arena/internal/core/observability/log"
	"github.com/zeusync/arena/internal/core/queue"
	"github.com/zeusync/arena/internal/core/random"
	"github.com/zeusync/arena/internal/core/world"
)

const (
	DefaultDuration   = 30 * time.Second
	DefaultPopulation = 50
	DefaultWidth      = 100
	DefaultHeight     = 100
)

var ErrAlreadyRunning = errors.New("simulation already running")

// Status is the view handed to the tick hook once per clock tick.
type Status struct {
	Elapsed  time.Duration
	Duration time.Duration
	Alive    []*models.Entity
	Pending  int
}

type TickHook func(Status)

// Simulation is the context object shared by all agents: the registry, the
// fight queue and, while running, the clock that owns cancellation.
type Simulation struct {
	registry *world.Registry
	queue    *queue.FightQueue
	observer combat.Observer
	source   random.Source
	dice     combat.Dice
	logger   log.Log
	onTick   TickHook

	duration         time.Duration
	movementInterval time.Duration
	combatInterval   time.Duration
	tickInterval     time.Duration
	queueCapacity    int
	width, height    int

	movement *movement.Agent
	combat   *combat.Agent

	mu      sync.Mutex
	clock   *clock.SimulationClock
	initial atomic.Int64
	elapsed atomic.Int64
	running atomic.Bool
}

type Option func(*Simulation)

func WithDuration(d time.Duration) Option {
	return func(s *Simulation) { s.duration = d }
}

// WithIntervals sets the movement, combat and clock tick periods. Zero keeps
// the default for that agent.
func WithIntervals(movementEvery, combatEvery, tickEvery time.Duration) Option {
	return func(s *Simulation) {
		s.movementInterval = movementEvery
		s.combatInterval = combatEvery
		if tickEvery > 0 {
			s.tickInterval = tickEvery
		}
	}
}

func WithQueueCapacity(n int) Option {
	return func(s *Simulation) { s.queueCapacity = n }
}

// WithArena limits where Populate places entities: x in [0, width) and
// y in [0, height).
func WithArena(width, height int) Option {
	return func(s *Simulation) {
		if width > 0 {
			s.width = width
		}
		if height > 0 {
			s.height = height
		}
	}
}

func WithSource(src random.Source) Option {
	return func(s *Simulation) {
		if src != nil {
			s.source = src
		}
	}
}

// WithDice overrides the combat dice. By default they share the simulation source.
func WithDice(d combat.Dice) Option {
	return func(s *Simulation) { s.dice = d }
}

func WithLogger(l log.Log) Option {
	return func(s *Simulation) {
		if l != nil {
			s.logger = l
		}
	}
}

func WithTickHook(fn TickHook) Option {
	return func(s *Simulation) { s.onTick = fn }
}

func New(observer combat.Observer, opts ...Option) *Simulation {
	s := &Simulation{
		registry:     world.NewRegistry(),
		observer:     observer,
		source:       random.Global(),
		logger:       log.Nop(),
		duration:     DefaultDuration,
		tickInterval: clock.DefaultTick,
		width:        DefaultWidth,
		height:       DefaultHeight,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.dice == nil {
		s.dice = combat.NewDice(s.source)
	}

	s.queue = queue.New(s.queueCapacity)
	s.movement = movement.NewAgent(s.registry, s.queue,
		movement.WithSource(s.source),
		movement.WithInterval(s.movementInterval),
		movement.WithLogger(s.logger))
	s.combat = combat.NewAgent(s.registry, s.queue, s.observer,
		combat.WithDice(s.dice),
		combat.WithInterval(s.combatInterval),
		combat.WithLogger(s.logger))
	s.logger = s.logger.With(log.String("component", "simulation"))
	return s
}

func (s *Simulation) Registry() *world.Registry { return s.registry }
func (s *Simulation) Queue() *queue.FightQueue  { return s.queue }
func (s *Simulation) Movement() *movement.Agent { return s.movement }
func (s *Simulation) Combat() *combat.Agent     { return s.combat }
func (s *Simulation) Duration() time.Duration   { return s.duration }

// Initial is the number of entities added before the run.
func (s *Simulation) Initial() int { return int(s.initial.Load()) }

// Populate adds n entities of uniformly random kind named "<Kind>_<i>" at
// uniformly random positions inside the arena.
func (s *Simulation) Populate(n int) error {
	for i := 0; i < n; i++ {
		kind := models.Kinds[s.source.IntN(len(models.Kinds))]
		rec := models.Record{
			Kind: kind,
			Name: fmt.Sprintf("%s_%d", kind, i),
			X:    s.source.IntN(s.width),
			Y:    s.source.IntN(s.height),
		}
		if _, err := s.registry.Spawn(rec); err != nil {
			return fmt.Errorf("populate %q: %w", rec.Name, err)
		}
		s.initial.Add(1)
	}
	s.logger.Info("Population created", log.Int("count", n))
	return nil
}

// Load adds one entity per record. The first invalid record aborts the load.
func (s *Simulation) Load(records []models.Record) error {
	for _, rec := range records {
		if _, err := s.registry.Spawn(rec); err != nil {
			return fmt.Errorf("load %q: %w", rec.Name, err)
		}
		s.initial.Add(1)
	}
	s.logger.Info("Roster loaded", log.Int("count", len(records)))
	return nil
}

// Clock returns the clock of the current run, or nil before Run.
func (s *Simulation) Clock() *clock.SimulationClock {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clock
}

// Stop cancels a running simulation. It is a no-op before Run.
func (s *Simulation) Stop() {
	if c := s.Clock(); c != nil {
		c.Cancel()
	}
}

// Run starts the three agents and blocks until all of them have exited.
// The run ends when the duration elapses, Stop is called or ctx is done.
func (s *Simulation) Run(ctx context.Context) error {
	if !s.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer s.running.Store(false)

	clk := clock.New(ctx, s.duration, s.tickInterval)
	s.mu.Lock()
	s.clock = clk
	s.mu.Unlock()

	s.logger.Info("Simulation started",
		log.Int("alive", s.registry.Count()),
		log.Duration("duration", s.duration))

	agentCtx := clk.Context()
	var g errgroup.Group
	g.Go(func() error {
		defer clk.Cancel()
		return s.movement.Run(agentCtx)
	})
	g.Go(func() error {
		defer clk.Cancel()
		return s.combat.Run(agentCtx)
	})
	g.Go(func() error {
		defer func() { s.elapsed.Store(int64(clk.Elapsed())) }()
		return clk.Run(s.tick)
	})
	err := g.Wait()

	stats := s.combat.Stats()
	s.logger.Info("Simulation finished",
		log.Duration("elapsed", s.Elapsed()),
		log.Int("survivors", s.registry.Count()),
		log.Uint64("resolved", stats.Resolved),
		log.Uint64("kills", stats.Kills),
		log.Uint64("dropped", s.queue.Dropped()))
	return err
}

func (s *Simulation) tick(elapsed time.Duration) {
	if s.onTick == nil {
		return
	}
	s.onTick(Status{
		Elapsed:  elapsed,
		Duration: s.duration,
		Alive:    s.registry.SnapshotAlive(),
		Pending:  s.queue.Len(),
	})
}

// Elapsed is how long the last run lasted, zero before the first one ends.
func (s *Simulation) Elapsed() time.Duration { return time.Duration(s.elapsed.Load()) }

// Survivors is the alive snapshot ordered by id.
func (s *Simulation) Survivors() []*models.Entity {
	return s.registry.SnapshotAlive()
}

// Report captures the end-of-run summary.
func (s *Simulation) Report() Report {
	return Report{
		Duration:  s.duration,
		Elapsed:   s.Elapsed(),
		Initial:   s.Initial(),
		Survivors: s.Survivors(),
	}
}
