package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestEmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Defaults(), cfg)
	assert.Equal(t, 30*time.Second, cfg.Simulation.Duration)
	assert.Equal(t, 50, cfg.Simulation.Population)
	assert.Equal(t, 100*time.Millisecond, cfg.Intervals.Movement)
	assert.Equal(t, 50*time.Millisecond, cfg.Intervals.Combat)
	assert.Equal(t, time.Second, cfg.Intervals.Render)
	assert.NoError(t, cfg.Validate())
}

func TestLoadYAML(t *testing.T) {
	path := writeFile(t, "arena.yaml", `
simulation:
  duration: 5s
  population: 12
  seed: 42
intervals:
  movement: 20ms
queue:
  capacity: 128
logging:
  level: debug
  encoding: json
output:
  kill_log: battle.txt
  render: false
roster:
  load: in.txt
journal:
  path: fights.db
spectator:
  addr: ":8090"
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 5*time.Second, cfg.Simulation.Duration)
	assert.Equal(t, 12, cfg.Simulation.Population)
	assert.Equal(t, uint64(42), cfg.Simulation.Seed)
	assert.Equal(t, 100, cfg.Simulation.Width)
	assert.Equal(t, 20*time.Millisecond, cfg.Intervals.Movement)
	assert.Equal(t, 50*time.Millisecond, cfg.Intervals.Combat)
	assert.Equal(t, 128, cfg.Queue.Capacity)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Encoding)
	assert.Equal(t, "battle.txt", cfg.Output.KillLog)
	assert.True(t, cfg.Output.Console)
	assert.False(t, cfg.Output.Render)
	assert.Equal(t, "in.txt", cfg.Roster.Load)
	assert.Equal(t, "fights.db", cfg.Journal.Path)
	assert.Equal(t, ":8090", cfg.Spectator.Addr)
}

func TestLoadTOML(t *testing.T) {
	path := writeFile(t, "arena.toml", `
[simulation]
duration = "1m"
population = 3
width = 40
height = 20

[intervals]
combat = "10ms"

[output]
console = false
skip_unchanged = true
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, time.Minute, cfg.Simulation.Duration)
	assert.Equal(t, 3, cfg.Simulation.Population)
	assert.Equal(t, 40, cfg.Simulation.Width)
	assert.Equal(t, 20, cfg.Simulation.Height)
	assert.Equal(t, 10*time.Millisecond, cfg.Intervals.Combat)
	assert.Equal(t, 100*time.Millisecond, cfg.Intervals.Movement)
	assert.False(t, cfg.Output.Console)
	assert.True(t, cfg.Output.SkipUnchanged)
	assert.True(t, cfg.Output.Render)
}

func TestLoadRejectsInvalid(t *testing.T) {
	path := writeFile(t, "bad.yaml", `
simulation:
  width: 0
  population: -1
intervals:
  combat: 0s
logging:
  level: loud
  encoding: xml
`)
	_, err := Load(path)
	require.ErrorIs(t, err, ErrInvalidConfig)
	for _, part := range []string{"width", "population", "intervals", "logging.level", "logging.encoding"} {
		assert.Contains(t, err.Error(), part)
	}
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = Load(writeFile(t, "arena.ini", "x=1"))
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = Load(writeFile(t, "broken.yaml", "simulation: [\n"))
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidConfig)
}

func TestEnvOverridesFile(t *testing.T) {
	path := writeFile(t, "arena.yml", "logging:\n  level: warn\njournal:\n  path: a.db\n")
	t.Setenv("ARENA_LOG_LEVEL", "debug")
	t.Setenv("ARENA_SPECTATOR_ADDR", "127.0.0.1:9000")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "console", cfg.Logging.Encoding)
	assert.Equal(t, "a.db", cfg.Journal.Path)
	assert.Equal(t, "127.0.0.1:9000", cfg.Spectator.Addr)
}
