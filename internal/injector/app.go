// Package injector wires a runnable arena from its configuration.
package injector

import (
	"context"
	"fmt"
	"io"

	"golang.org/x/sync/errgroup"

	"github.com/zeusync/arena/internal/config"
	"github.com/zeusync/arena/internal/core/events/bus"
	"github.com/zeusync/arena/internal/core/observability/log"
	"github.com/zeusync/arena/internal/core/sim"
	"github.com/zeusync/arena/internal/storage/record"
)

type App struct {
	Config     *config.Config
	Logger     log.Log
	Bus        bus.EventBus
	Sinks      *Sinks
	Simulation *sim.Simulation
}

// Prepare fills the arena, from the roster file when one is configured and
// with a random population otherwise.
func (a *App) Prepare() error {
	if path := a.Config.Roster.Load; path != "" {
		records, skipped, err := record.LoadFile(path)
		if err != nil {
			return err
		}
		if skipped > 0 {
			a.Logger.Warn("Skipped malformed roster lines",
				log.String("path", path),
				log.Int("skipped", skipped))
		}
		return a.Simulation.Load(records)
	}
	return a.Simulation.Populate(a.Config.Simulation.Population)
}

// Run blocks until the simulation ends. The spectator feed, when enabled,
// is served for the lifetime of the run.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	if a.Sinks.Hub != nil {
		g.Go(func() error {
			return a.Sinks.Hub.Serve(gctx, a.Config.Spectator.Addr)
		})
	}
	g.Go(func() error {
		defer cancel()
		return a.Simulation.Run(gctx)
	})
	return g.Wait()
}

// Finish prints the survivor report and saves the roster when configured.
func (a *App) Finish(w io.Writer) error {
	if _, err := fmt.Fprintf(w, "\n     --- GAME OVER ---     \n"); err != nil {
		return err
	}
	report := a.Simulation.Report()
	if _, err := report.WriteTo(w); err != nil {
		return err
	}

	a.Logger.Info("Fights resolved",
		log.Uint64("attempts", a.Sinks.Counter.Attempts()),
		log.Uint64("kills", a.Sinks.Counter.Kills()))

	if path := a.Config.Roster.Save; path != "" {
		if err := record.SaveFile(path, record.Records(report.Survivors)); err != nil {
			return err
		}
		a.Logger.Info("Roster saved", log.String("path", path), log.Int("count", len(report.Survivors)))
	}
	_ = a.Logger.Sync()
	return nil
}
