package injector

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/google/wire"

	"github.com/zeusync/arena/internal/config"
	"github.com/zeusync/arena/internal/core/combat"
	"github.com/zeusync/arena/internal/core/events/bus"
	"github.com/zeusync/arena/internal/core/observability/log"
	"github.com/zeusync/arena/internal/core/random"
	"github.com/zeusync/arena/internal/core/sim"
	"github.com/zeusync/arena/internal/observers"
	"github.com/zeusync/arena/internal/render"
	"github.com/zeusync/arena/internal/spectator"
	"github.com/zeusync/arena/internal/storage/journal"
)

var ProviderSet = wire.NewSet(
	ProvideLogger,
	ProvideConsole,
	ProvideSource,
	ProvideEventBus,
	ProvideObserver,
	ProvideSinks,
	ProvideRenderer,
	ProvideSimulation,
	wire.Struct(new(App), "*"),
)

// Output is where console sinks write. Tests replace it.
var Output io.Writer = os.Stdout

type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}

// ProvideConsole serializes writes to Output so frames and kill lines never
// interleave.
func ProvideConsole() io.Writer {
	return &lockedWriter{w: Output}
}

func ProvideLogger(cfg *config.Config) (log.Log, error) {
	level, err := log.ParseLevel(cfg.Logging.Level)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", config.ErrInvalidConfig, err)
	}
	return log.NewWithEncoding(level, log.Encoding(cfg.Logging.Encoding)), nil
}

func ProvideSource(cfg *config.Config) random.Source {
	return random.FromSeed(cfg.Simulation.Seed)
}

func ProvideEventBus() bus.EventBus {
	return bus.New()
}

func ProvideObserver(b bus.EventBus, logger log.Log) combat.Observer {
	return observers.NewBus(b, logger)
}

// Sinks are the fight consumers attached to the event bus.
type Sinks struct {
	Counter *observers.Counter
	Console *observers.KillLog
	File    *observers.KillLog
	Journal *journal.Journal
	Hub     *spectator.Hub
}

func (s *Sinks) close() {
	if s.File != nil {
		_ = s.File.Close()
	}
	if s.Journal != nil {
		_ = s.Journal.Close()
	}
	if s.Hub != nil {
		s.Hub.Close()
	}
}

// ProvideSinks opens every configured sink and subscribes it to b. The
// cleanup closes files, the journal and watcher connections.
func ProvideSinks(cfg *config.Config, console io.Writer, b bus.EventBus, logger log.Log) (*Sinks, func(), error) {
	s := &Sinks{Counter: &observers.Counter{}}
	attach := func(obs combat.Observer) error {
		_, err := observers.Subscribe(b, obs)
		return err
	}

	if err := attach(s.Counter); err != nil {
		return nil, nil, err
	}
	if cfg.Output.Console {
		s.Console = observers.NewKillLog(console, logger)
		if err := attach(s.Console); err != nil {
			return nil, nil, err
		}
	}
	if cfg.Output.KillLog != "" {
		f, err := observers.OpenKillLog(cfg.Output.KillLog, logger)
		if err != nil {
			return nil, nil, err
		}
		s.File = f
		if err = attach(f); err != nil {
			s.close()
			return nil, nil, err
		}
	}
	if cfg.Journal.Path != "" {
		j, err := journal.Open(cfg.Journal.Path, "", logger)
		if err != nil {
			s.close()
			return nil, nil, err
		}
		s.Journal = j
		if err = attach(j); err != nil {
			s.close()
			return nil, nil, err
		}
	}
	if cfg.Spectator.Addr != "" {
		s.Hub = spectator.NewHub(cfg.Spectator.Buffer, logger)
		if err := attach(s.Hub); err != nil {
			s.close()
			return nil, nil, err
		}
	}
	return s, s.close, nil
}

// ProvideRenderer returns nil when rendering is disabled.
func ProvideRenderer(cfg *config.Config, console io.Writer, logger log.Log) *render.Renderer {
	if !cfg.Output.Render {
		return nil
	}
	opts := []render.Option{render.WithLogger(logger)}
	if cfg.Output.SkipUnchanged {
		opts = append(opts, render.WithSkipUnchanged())
	}
	return render.New(console, cfg.Simulation.Width, cfg.Simulation.Height, opts...)
}

func ProvideSimulation(
	cfg *config.Config,
	observer combat.Observer,
	src random.Source,
	logger log.Log,
	sinks *Sinks,
	renderer *render.Renderer,
) *sim.Simulation {
	var hooks []sim.TickHook
	if renderer != nil {
		hooks = append(hooks, renderer.OnTick)
	}
	if sinks.Hub != nil {
		hooks = append(hooks, sinks.Hub.OnTick)
	}

	return sim.New(observer,
		sim.WithDuration(cfg.Simulation.Duration),
		sim.WithIntervals(cfg.Intervals.Movement, cfg.Intervals.Combat, cfg.Intervals.Render),
		sim.WithQueueCapacity(cfg.Queue.Capacity),
		sim.WithArena(cfg.Simulation.Width, cfg.Simulation.Height),
		sim.WithSource(src),
		sim.WithLogger(logger),
		sim.WithTickHook(func(st sim.Status) {
			for _, h := range hooks {
				h(st)
			}
		}),
	)
}
