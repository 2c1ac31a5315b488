package observers

import (
	"sync/atomic"

	"github.com/zeusync/arena/internal/core/models"
)

// Counter tallies resolved fights.
type Counter struct {
	attempts atomic.Uint64
	kills    atomic.Uint64
}

func (c *Counter) OnFight(_, _ *models.Entity, success bool) {
	c.attempts.Add(1)
	if success {
		c.kills.Add(1)
	}
}

func (c *Counter) Attempts() uint64 { return c.attempts.Load() }
func (c *Counter) Kills() uint64    { return c.kills.Load() }
