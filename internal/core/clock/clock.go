// Package clock owns the run duration and the shared cancellation signal.
package clock

import (
	"context"
	"sync/atomic"
	"time"
)

const DefaultTick = time.Second

// TickFunc is invoked once per tick with the elapsed run time.
type TickFunc func(elapsed time.Duration)

// SimulationClock cancels its context once the configured duration has
// passed. Every agent observes the same context, checking it once per loop.
type SimulationClock struct {
	duration time.Duration
	tick     time.Duration

	ctx    context.Context
	cancel context.CancelFunc

	startedAt atomic.Int64
}

// New derives the cancellation token from parent. A zero duration runs until
// Cancel is called or parent is done.
func New(parent context.Context, duration, tick time.Duration) *SimulationClock {
	if tick <= 0 {
		tick = DefaultTick
	}
	ctx, cancel := context.WithCancel(parent)
	return &SimulationClock{
		duration: duration,
		tick:     tick,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Context is the cancellation token handed to agents.
func (c *SimulationClock) Context() context.Context { return c.ctx }

func (c *SimulationClock) Done() <-chan struct{} { return c.ctx.Done() }

func (c *SimulationClock) Cancelled() bool { return c.ctx.Err() != nil }

// Cancel stops the run early. Safe to call more than once.
func (c *SimulationClock) Cancel() { c.cancel() }

func (c *SimulationClock) Duration() time.Duration { return c.duration }

// Elapsed is the time since Run started, zero before that.
func (c *SimulationClock) Elapsed() time.Duration {
	start := c.startedAt.Load()
	if start == 0 {
		return 0
	}
	return time.Since(time.Unix(0, start))
}

// Run ticks until the duration is reached or the token is cancelled, then
// makes sure the token is cancelled before returning.
func (c *SimulationClock) Run(onTick TickFunc) error {
	c.startedAt.CompareAndSwap(0, time.Now().UnixNano())
	defer c.cancel()

	var deadline <-chan time.Time
	if c.duration > 0 {
		timer := time.NewTimer(c.duration)
		defer timer.Stop()
		deadline = timer.C
	}

	ticker := time.NewTicker(c.tick)
	defer ticker.Stop()

	for {
		if onTick != nil {
			onTick(c.Elapsed())
		}

		select {
		case <-c.ctx.Done():
			return nil
		case <-deadline:
			return nil
		case <-ticker.C:
		}
	}
}
