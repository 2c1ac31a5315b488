// Package observers holds the combat.Observer sinks and the event bus
// fan-out that connects them to the combat agent.
package observers

import (
	"time"

	"github.com/zeusync/arena/internal/core/combat"
	"github.com/zeusync/arena/internal/core/events/bus"
	"github.com/zeusync/arena/internal/core/models"
	"github.com/zeusync/arena/internal/core/observability/log"
)

const (
	EventFightResolved = "fight.resolved"
	eventSource        = "combat"
)

// Fight is the payload of a fight.resolved event.
type Fight struct {
	Attacker *models.Entity
	Defender *models.Entity
	Success  bool
	At       time.Time
}

// Bus publishes every resolved fight on an event bus so any number of
// sinks can attach with Subscribe.
type Bus struct {
	bus    bus.EventBus
	logger log.Log
}

var _ combat.Observer = (*Bus)(nil)

func NewBus(b bus.EventBus, logger log.Log) *Bus {
	if logger == nil {
		logger = log.Nop()
	}
	return &Bus{bus: b, logger: logger.With(log.String("component", "observers"))}
}

func (o *Bus) OnFight(attacker, defender *models.Entity, success bool) {
	ev := bus.NewEvent(EventFightResolved, eventSource, Fight{
		Attacker: attacker,
		Defender: defender,
		Success:  success,
		At:       time.Now(),
	})
	if err := o.bus.Publish(ev); err != nil {
		o.logger.Warn("Fight sink failed", log.Error(err))
	}
}

// Subscribe attaches obs to fight.resolved events on b.
func Subscribe(b bus.EventBus, obs combat.Observer) (bus.Subscription, error) {
	return b.Subscribe(EventFightResolved, func(e bus.Event) error {
		f, ok := e.Data().(Fight)
		if !ok {
			return nil
		}
		obs.OnFight(f.Attacker, f.Defender, f.Success)
		return nil
	})
}
