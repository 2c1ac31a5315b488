package combat

import "github.com/zeusync/arena/internal/core/models"

// Observer is notified once for every resolved combat attempt. It runs on the
// combat goroutine, so it must return quickly and must not touch the registry.
type Observer interface {
	OnFight(attacker, defender *models.Entity, success bool)
}

// ObserverFunc adapts a plain function to Observer.
type ObserverFunc func(attacker, defender *models.Entity, success bool)

func (f ObserverFunc) OnFight(attacker, defender *models.Entity, success bool) {
	f(attacker, defender, success)
}

// Discard ignores every notification.
var Discard Observer = ObserverFunc(func(*models.Entity, *models.Entity, bool) {})
