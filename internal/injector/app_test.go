package injector

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/arena/internal/config"
	"github.com/zeusync/arena/internal/storage/journal"
	"github.com/zeusync/arena/internal/storage/record"
)

func quickConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Defaults()
	cfg.Simulation.Duration = 80 * time.Millisecond
	cfg.Simulation.Population = 10
	cfg.Simulation.Seed = 3
	cfg.Intervals.Movement = 2 * time.Millisecond
	cfg.Intervals.Combat = time.Millisecond
	cfg.Intervals.Render = 20 * time.Millisecond
	cfg.Logging.Level = "error"
	cfg.Output.Console = false
	cfg.Output.Render = false
	cfg.Journal.Path = journal.MemoryPath
	require.NoError(t, cfg.Validate())
	return cfg
}

func TestAppRunsAndReports(t *testing.T) {
	cfg := quickConfig(t)
	cfg.Roster.Save = filepath.Join(t.TempDir(), "survivors.txt")

	app, cleanup, err := InitializeApp(cfg)
	require.NoError(t, err)
	defer cleanup()

	require.NoError(t, app.Prepare())
	assert.Equal(t, 10, app.Simulation.Initial())
	require.NoError(t, app.Run(context.Background()))

	var out bytes.Buffer
	require.NoError(t, app.Finish(&out))

	survivors := app.Simulation.Survivors()
	assert.Contains(t, out.String(), "--- GAME OVER ---")
	assert.Contains(t, out.String(), fmt.Sprintf("Total survivors: %d/10\n", len(survivors)))

	saved, skipped, err := record.LoadFile(cfg.Roster.Save)
	require.NoError(t, err)
	assert.Zero(t, skipped)
	assert.Len(t, saved, len(survivors))

	n, err := app.Sinks.Journal.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int(app.Sinks.Counter.Attempts()), n)
	assert.Equal(t, 10-len(survivors), int(app.Sinks.Counter.Kills()))
}

func TestAppLoadsRoster(t *testing.T) {
	path := filepath.Join(t.TempDir(), "roster.txt")
	require.NoError(t, os.WriteFile(path, []byte("Toad a 1 1\nGoblin b 2 2\nKnight c 90 90\n"), 0o644))

	cfg := quickConfig(t)
	cfg.Roster.Load = path
	app, cleanup, err := InitializeApp(cfg)
	require.NoError(t, err)
	defer cleanup()

	require.NoError(t, app.Prepare())
	assert.Equal(t, 2, app.Simulation.Initial())
}

func TestConsoleAndRenderOutput(t *testing.T) {
	var out bytes.Buffer
	prev := Output
	Output = &out
	defer func() { Output = prev }()

	cfg := quickConfig(t)
	cfg.Output.Render = true
	cfg.Output.Console = true
	cfg.Journal.Path = ""

	app, cleanup, err := InitializeApp(cfg)
	require.NoError(t, err)
	defer cleanup()
	assert.Nil(t, app.Sinks.Journal)
	assert.NotNil(t, app.Sinks.Console)

	require.NoError(t, app.Prepare())
	require.NoError(t, app.Run(context.Background()))
	assert.Contains(t, out.String(), "--------- NPC BATTLE --------")
	assert.Contains(t, out.String(), "T=Toad(1/10) D=Dragon(50/30) K=Knight(30/10)")
}

func TestInvalidLoggingLevel(t *testing.T) {
	cfg := config.Defaults()
	cfg.Logging.Level = "loud"
	_, _, err := InitializeApp(cfg)
	assert.ErrorIs(t, err, config.ErrInvalidConfig)
}
